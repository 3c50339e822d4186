package ws

import "encoding/json"

// TagPrefix namespaces every application tag on the wire.
const TagPrefix = "cws_"

// Reserved wire tags.
const (
	TagBroadcast        = TagPrefix + "broadcast"
	TagUpload           = TagPrefix + "upload"
	TagClientConnection = TagPrefix + "client_connection"
)

// Envelope is the JSON wrapper carried by text-mode application messages.
// Binary messages carry no envelope; their tag arrives out of band via a
// preceding upload envelope.
type Envelope struct {
	Tag     string `json:"tag"`
	Message string `json:"message"`
}

// Marshal serializes the envelope for a text frame payload.
func (e Envelope) Marshal() ([]byte, error) {
	return json.Marshal(e)
}

// UnmarshalFrom parses a text frame payload into the envelope.
func (e *Envelope) UnmarshalFrom(data []byte) error {
	return json.Unmarshal(data, e)
}

func encodeEnvelope(tag, message string) ([]byte, error) {
	return Envelope{Tag: tag, Message: message}.Marshal()
}

func decodeEnvelope(data []byte) (Envelope, error) {
	var env Envelope
	if err := env.UnmarshalFrom(data); err != nil {
		return Envelope{}, err
	}

	return env, nil
}

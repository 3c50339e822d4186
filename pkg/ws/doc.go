// Package ws implements a WebSocket server protocol engine:
//   - Opening handshake (Sec-WebSocket-Accept computation, 101 response)
//   - Frame codec (masking, fragmentation, extended payload lengths)
//   - Per-connection keepalive pings
//   - Tag-addressed publish/subscribe routing with broadcast fan-out
//
// # Server
//
//	server := ws.NewServer(ws.DefaultServerConfig())
//	server.Subscribe("action", func(clientID string, payload []byte) {
//	    server.Send(clientID, ws.ModeText, []byte("ok"), "action")
//	})
//	http.Handle("/ws", server)
//
// # Message protocol
//
// Text frames carry a JSON envelope whose tag is namespaced with "cws_":
//
//	{"tag": "cws_action", "message": "..."}
//
// Two tags are reserved. "cws_broadcast" fans the message out to every
// other client before normal dispatch. "cws_upload" marks the next binary
// frame from the same client as an upload: its raw bytes are dispatched
// under "cws_upload" instead of being parsed as an envelope.
//
// On connect the server announces the new client's id to it under
// "cws_client_connection" and notifies the other clients with a broadcast;
// a matching broadcast is sent on disconnect.
//
// # Client
//
// The companion package ws/client dials a server and speaks the same
// envelope protocol:
//
//	c := client.New(client.DefaultConfig("ws://localhost:8080/ws"))
//	c.Connect(ctx)
//	c.Subscribe("action", func(payload []byte) { ... })
//	c.SendMessage("action", "hello")
package ws

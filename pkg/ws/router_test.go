package ws

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRouter_DispatchMatchesPrefixedTag(t *testing.T) {
	r := newRouter()

	var gotClient string
	var gotPayload []byte

	r.subscribe("action", func(clientID string, payload []byte) {
		gotClient = clientID
		gotPayload = payload
	})

	r.dispatch("client-1", "cws_action", []byte("data"))

	assert.Equal(t, "client-1", gotClient)
	assert.Equal(t, []byte("data"), gotPayload)
}

func TestRouter_UnmatchedTagIsSilentlyDropped(t *testing.T) {
	r := newRouter()

	called := false
	r.subscribe("action", func(string, []byte) { called = true })

	// Unprefixed and unknown tags both miss.
	r.dispatch("client-1", "action", nil)
	r.dispatch("client-1", "cws_other", nil)

	assert.False(t, called)
}

func TestRouter_ResubscribeReplacesHandler(t *testing.T) {
	r := newRouter()

	var hit string
	r.subscribe("action", func(string, []byte) { hit = "first" })
	r.subscribe("action", func(string, []byte) { hit = "second" })

	r.dispatch("client-1", "cws_action", nil)

	assert.Equal(t, "second", hit)
}

func TestRouter_Unsubscribe(t *testing.T) {
	r := newRouter()

	called := false
	r.subscribe("action", func(string, []byte) { called = true })
	r.unsubscribe("action")
	r.unsubscribe("action") // no-op on absent tag

	r.dispatch("client-1", "cws_action", nil)

	assert.False(t, called)
}

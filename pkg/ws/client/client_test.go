package client_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/cimo/websocket/pkg/ws"
	"github.com/cimo/websocket/pkg/ws/client"
)

func setupServer(t *testing.T) (*ws.Server, string) {
	t.Helper()

	cfg := ws.DefaultServerConfig()
	cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))

	server := ws.NewServer(cfg)

	server.Subscribe("echo", func(clientID string, payload []byte) {
		server.Send(clientID, ws.ModeText, payload, "echo")
	})

	ts := httptest.NewServer(server)
	t.Cleanup(ts.Close)

	return server, "ws" + strings.TrimPrefix(ts.URL, "http")
}

func newClient(t *testing.T, wsURL string) *client.Client {
	t.Helper()

	cfg := client.DefaultConfig(wsURL)
	cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))

	return client.New(cfg)
}

func TestClient_Echo(t *testing.T) {
	_, wsURL := setupServer(t)

	c := newClient(t, wsURL)

	received := make(chan string, 1)
	c.Subscribe("echo", func(payload []byte) {
		received <- string(payload)
	})

	if err := c.Connect(context.Background()); err != nil {
		t.Fatalf("failed to connect: %v", err)
	}
	defer c.Close()

	if err := c.SendMessage("echo", "ping-pong"); err != nil {
		t.Fatalf("send failed: %v", err)
	}

	select {
	case got := <-received:
		if got != "ping-pong" {
			t.Errorf("echo = %q, want %q", got, "ping-pong")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("echo never arrived")
	}
}

func TestClient_Unsubscribe(t *testing.T) {
	_, wsURL := setupServer(t)

	c := newClient(t, wsURL)

	received := make(chan string, 1)
	c.Subscribe("echo", func(payload []byte) {
		received <- string(payload)
	})
	c.Unsubscribe("echo")

	if err := c.Connect(context.Background()); err != nil {
		t.Fatalf("failed to connect: %v", err)
	}
	defer c.Close()

	if err := c.SendMessage("echo", "dropped"); err != nil {
		t.Fatalf("send failed: %v", err)
	}

	select {
	case got := <-received:
		t.Errorf("unexpected dispatch after unsubscribe: %q", got)
	case <-time.After(150 * time.Millisecond):
	}
}

func TestClient_Close(t *testing.T) {
	_, wsURL := setupServer(t)

	c := newClient(t, wsURL)

	if err := c.Connect(context.Background()); err != nil {
		t.Fatalf("failed to connect: %v", err)
	}

	if err := c.Close(); err != nil {
		t.Errorf("close error: %v", err)
	}

	if !c.IsClosed() {
		t.Error("expected client to be closed")
	}

	if err := c.SendMessage("echo", "x"); !errors.Is(err, client.ErrConnectionClosed) {
		t.Errorf("expected connection closed error, got: %v", err)
	}

	select {
	case <-c.Done():
	case <-time.After(2 * time.Second):
		t.Error("read loop never exited")
	}
}

func TestClient_ReconnectAfterClose(t *testing.T) {
	_, wsURL := setupServer(t)

	c := newClient(t, wsURL)

	ctx := context.Background()
	if err := c.Connect(ctx); err != nil {
		t.Fatalf("failed to connect: %v", err)
	}

	if err := c.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	if err := c.Reconnect(ctx); err != nil {
		t.Fatalf("reconnect failed: %v", err)
	}
	defer c.Close()

	if c.IsClosed() {
		t.Error("client still reports closed after reconnect")
	}

	if err := c.SendMessage("echo", "again"); err != nil {
		t.Errorf("send after reconnect failed: %v", err)
	}
}

func TestClient_ReconnectGivesUpAfterMaxAttempts(t *testing.T) {
	cfg := client.DefaultConfig("ws://127.0.0.1:1/unreachable")
	cfg.ReconnectInterval = 10 * time.Millisecond
	cfg.MaxReconnectAttempts = 2
	cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))

	c := client.New(cfg)

	if err := c.Reconnect(context.Background()); !errors.Is(err, client.ErrMaxReconnectAttempts) {
		t.Errorf("expected max attempts error, got: %v", err)
	}
}

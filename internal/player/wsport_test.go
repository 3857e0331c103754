package player

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"golang.org/x/net/websocket"
)

func dialPort(t *testing.T, handler websocket.Handler) *WebSocketPort {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	conn, err := websocket.Dial("ws"+strings.TrimPrefix(server.URL, "http"), "", server.URL)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	port := NewWebSocketPort(conn)
	t.Cleanup(func() { port.Close() })
	return port
}

func TestWebSocketPortRoundTrip(t *testing.T) {
	port := dialPort(t, func(conn *websocket.Conn) {
		// echo server
		for {
			var data []byte
			if err := websocket.Message.Receive(conn, &data); err != nil {
				return
			}
			if err := websocket.Message.Send(conn, data); err != nil {
				return
			}
		}
	})

	received := make(chan []byte, 1)
	off := port.OnMessage(func(data []byte) { received <- data })
	defer off()

	if err := port.Post([]byte(`{"event":"ready"}`)); err != nil {
		t.Fatalf("post: %v", err)
	}

	select {
	case data := <-received:
		if string(data) != `{"event":"ready"}` {
			t.Errorf("unexpected echo %q", data)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for echo")
	}
}

func TestWebSocketPortUnsubscribe(t *testing.T) {
	port := dialPort(t, func(conn *websocket.Conn) {
		for {
			var data []byte
			if err := websocket.Message.Receive(conn, &data); err != nil {
				return
			}
			if err := websocket.Message.Send(conn, data); err != nil {
				return
			}
		}
	})

	first := make(chan []byte, 4)
	second := make(chan []byte, 4)
	off := port.OnMessage(func(data []byte) { first <- data })
	port.OnMessage(func(data []byte) { second <- data })

	off()
	if err := port.Post([]byte("ping")); err != nil {
		t.Fatalf("post: %v", err)
	}

	select {
	case <-second:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for delivery")
	}

	select {
	case data := <-first:
		t.Errorf("unsubscribed handler received %q", data)
	default:
	}
}

func TestWebSocketPortDrivesPostMessageAdapter(t *testing.T) {
	port := dialPort(t, func(conn *websocket.Conn) {
		// play the embed's side of the protocol: acknowledge the subscribe
		// frames, then report a play event
		websocket.Message.Send(conn, []byte(`{"event":"ready"}`))
		for {
			var data []byte
			if err := websocket.Message.Receive(conn, &data); err != nil {
				return
			}
			if strings.Contains(string(data), "getDuration") {
				websocket.Message.Send(conn, []byte(`{"method":"getDuration","value":300}`))
				websocket.Message.Send(conn, []byte(`{"event":"play","data":{"seconds":0,"duration":300}}`))
			}
		}
	})

	started := make(chan struct{}, 4)
	adapter := NewPostMessageAdapter(port, Hooks{
		OnStarted: func() { started <- struct{}{} },
	})
	defer adapter.Dispose()
	adapter.Attach(context.Background(), 0)

	select {
	case <-started:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for play through the websocket bridge")
	}

	if d := adapter.Duration(); d != 300 {
		t.Errorf("expected duration 300 through the bridge, got %v", d)
	}
}

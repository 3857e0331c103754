package player

import (
	"log/slog"
	"sync"

	"github.com/dchest/uniuri"
	"golang.org/x/net/websocket"
)

// WebSocketPort adapts a websocket connection to the MessagePort interface.
// The dev harness uses it to bridge a simulated embed running out of
// process; the web shell uses window.postMessage directly instead.
type WebSocketPort struct {
	conn *websocket.Conn

	mu       sync.Mutex
	handlers map[string]func(data []byte)
	closed   bool
}

func NewWebSocketPort(conn *websocket.Conn) *WebSocketPort {
	p := &WebSocketPort{
		conn:     conn,
		handlers: make(map[string]func(data []byte)),
	}
	go p.pump()
	return p
}

func (p *WebSocketPort) pump() {
	for {
		var data []byte
		if err := websocket.Message.Receive(p.conn, &data); err != nil {
			slog.Debug("WebSocket port closed", "err", err)
			p.mu.Lock()
			p.closed = true
			p.mu.Unlock()
			return
		}

		p.mu.Lock()
		handlers := make([]func([]byte), 0, len(p.handlers))
		for _, fn := range p.handlers {
			handlers = append(handlers, fn)
		}
		p.mu.Unlock()

		for _, fn := range handlers {
			fn(data)
		}
	}
}

func (p *WebSocketPort) Post(data []byte) error {
	return websocket.Message.Send(p.conn, data)
}

func (p *WebSocketPort) OnMessage(fn func(data []byte)) (off func()) {
	id := uniuri.New()
	p.mu.Lock()
	p.handlers[id] = fn
	p.mu.Unlock()

	return func() {
		p.mu.Lock()
		delete(p.handlers, id)
		p.mu.Unlock()
	}
}

func (p *WebSocketPort) Close() error {
	return p.conn.Close()
}

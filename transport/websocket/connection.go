package websocket

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// connection serializes writes: gorilla allows one concurrent writer per conn.
type connection struct {
	ws       *websocket.Conn
	playerID string

	outbox    chan []byte
	closeOnce sync.Once
	closed    chan struct{}
}

func newConnection(ws *websocket.Conn) *connection {
	return &connection{
		ws:     ws,
		outbox: make(chan []byte, sendBuffer),
		closed: make(chan struct{}),
	}
}

// send queues a message. It drops the message when the client can't keep up.
func (that *connection) send(action string, payload Response) bool {
	data, err := json.Marshal(Message{Action: action, Payload: mustMarshal(payload)})
	if err != nil {
		return false
	}

	select {
	case <-that.closed:
		return false
	default:
	}

	select {
	case that.outbox <- data:
		return true
	case <-that.closed:
		return false
	default:
		return false
	}
}

// writeLoop owns the socket writer and pings idle clients.
func (that *connection) writeLoop() error {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	defer that.ws.Close()

	for {
		select {
		case <-that.closed:
			deadline := time.Now().Add(writeTimeout)
			_ = that.ws.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
			return nil

		case data := <-that.outbox:
			_ = that.ws.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := that.ws.WriteMessage(websocket.TextMessage, data); err != nil {
				that.close()
				return err
			}

		case <-ticker.C:
			deadline := time.Now().Add(writeTimeout)
			if err := that.ws.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				that.close()
				return err
			}
		}
	}
}

func (that *connection) close() {
	that.closeOnce.Do(func() {
		close(that.closed)
	})
}

func mustMarshal(v any) json.RawMessage {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}

	return b
}

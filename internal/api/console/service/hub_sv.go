package consoleService

import (
	"time"

	"avril/internal/api/console"
	"avril/pkg/metrics"

	"github.com/gofiber/websocket/v2"
	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func (h *hub) Serve(conn Conn) {
	c := &client{
		conn: conn,
		send: make(chan []byte, sendBuffer),
		done: make(chan struct{}),
	}

	h.attach(c)
	defer h.detach(c)

	go h.writePump(c)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.WithField("error", err.Error()).Warn("Console connection lost")
			}
			return
		}
		h.dispatch(data)
	}
}

func (h *hub) attach(c *client) {
	h.mu.Lock()
	previous := h.current
	h.current = c
	h.listening = false
	status := h.lastStatus
	h.mu.Unlock()

	if previous != nil {
		h.log.Info("Console replaced by a new connection")
		previous.close()
	}
	metrics.ConsoleConnected.Set(1)
	h.log.Info("Console connected")

	if status != "" {
		h.send(console.OutStatus, console.StatusPayload{Text: status})
	}
	h.post(func(in Inbound) { in.ClientJoined() })
}

func (h *hub) detach(c *client) {
	c.close()

	h.mu.Lock()
	if h.current != c {
		h.mu.Unlock()
		return
	}
	h.current = nil
	h.listening = false
	pending, id := h.speaking, h.speakingID
	h.speaking = false
	finished := h.onFinished
	h.mu.Unlock()

	metrics.ConsoleConnected.Set(0)
	h.log.Info("Console disconnected")

	if pending && finished != nil {
		finished(id, console.ErrNoClient)
	}
	h.post(func(in Inbound) { in.ClientLeft() })
}

func (h *hub) writePump(c *client) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case data := <-c.send:
			if err := h.write(c, websocket.TextMessage, data); err != nil {
				c.close()
				return
			}
		case <-ticker.C:
			if err := h.write(c, websocket.PingMessage, nil); err != nil {
				c.close()
				return
			}
		}
	}
}

func (h *hub) write(c *client, messageType int, data []byte) error {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		return err
	}
	if err := c.conn.WriteMessage(messageType, data); err != nil {
		h.log.WithField("error", err.Error()).Warn("Failed to write to console")
		return err
	}
	return nil
}

// send queues a message for the current console. It reports false when no
// console is connected.
func (h *hub) send(kind string, payload interface{}) bool {
	h.mu.Lock()
	c := h.current
	h.mu.Unlock()
	if c == nil {
		return false
	}

	data, err := json.Marshal(console.OutboundMessage{Type: kind, Payload: payload})
	if err != nil {
		h.log.WithFields(logrus.Fields{
			"type":  kind,
			"error": err.Error(),
		}).Error("Failed to encode console message")
		return false
	}

	select {
	case c.send <- data:
		return true
	case <-c.done:
		return false
	default:
		h.log.WithField("type", kind).Warn("Console send buffer full, message dropped")
		return false
	}
}

func (h *hub) Emit(event string, payload interface{}) {
	h.send(event, payload)
}

package consoleService

import (
	"sync"
	"time"

	"avril/internal/api/idle"
	"avril/internal/api/speech"
	"avril/pkg/eventloop"

	"github.com/sirupsen/logrus"
)

const (
	sendBuffer   = 64
	pingInterval = 30 * time.Second
	writeTimeout = 5 * time.Second
)

// Conn is the part of a websocket connection the hub uses.
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

// Inbound receives console events that are not recognizer or synthesizer
// callbacks. Every method is called on the loop.
type Inbound interface {
	ClientJoined()
	ClientLeft()
	Capture(granted bool, reason string)
	Activity(ev idle.ActivityEvent)
	Mic(action string)
	Command(text string)
	Connectivity(online bool)
}

// IHub connects the engine to the single browser console. The console owns
// the microphone, the recognizer, the voice and the chimes.
type IHub interface {
	speech.Recognizer
	speech.Synthesizer
	speech.Chimer
	speech.StatusSink

	Emit(event string, payload interface{})
	// Serve runs one console connection and returns when it closes. A new
	// connection replaces the current one.
	Serve(conn Conn)
	SetInbound(in Inbound)
	Connected() bool
}

type Config struct {
	Lang string
}

type client struct {
	conn Conn
	send chan []byte
	done chan struct{}
	once sync.Once
}

func (c *client) close() {
	c.once.Do(func() {
		close(c.done)
		_ = c.conn.Close()
	})
}

type hub struct {
	log  *logrus.Entry
	loop eventloop.Loop
	cfg  Config

	mu         sync.Mutex
	current    *client
	inbound    Inbound
	handlers   speech.RecognizerHandlers
	onFinished func(id uint64, err error)
	listening  bool
	speakingID uint64
	speaking   bool
	lastStatus string
}

func New(log *logrus.Logger, loop eventloop.Loop, cfg Config) IHub {
	if cfg.Lang == "" {
		cfg.Lang = "en-GB"
	}
	return &hub{
		log:  log.WithField("component", "console"),
		loop: loop,
		cfg:  cfg,
	}
}

func (h *hub) SetInbound(in Inbound) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.inbound = in
}

func (h *hub) SetHandlers(handlers speech.RecognizerHandlers) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.handlers = handlers
}

func (h *hub) SetOnFinished(fn func(id uint64, err error)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onFinished = fn
}

func (h *hub) Connected() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.current != nil
}

// post runs fn on the loop with the inbound receiver, if one is set.
func (h *hub) post(fn func(in Inbound)) {
	h.mu.Lock()
	in := h.inbound
	h.mu.Unlock()
	if in == nil {
		return
	}
	h.loop.Post(func() { fn(in) })
}

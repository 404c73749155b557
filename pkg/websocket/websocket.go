package websocketPkg

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os/exec"
	"strings"
	"sync"
	"time"

	"avril/internal/api/speech"

	"github.com/gorilla/websocket"
	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	DefaultChunkBytes       = 3200
	DefaultHandshakeTimeout = 10 * time.Second
	writeTimeout            = 5 * time.Second
)

// AudioSource yields raw PCM for one recognition session. Closing the reader
// ends the capture.
type AudioSource interface {
	Open(ctx context.Context) (io.ReadCloser, error)
}

// CommandSource captures from an external recorder such as
// "arecord -q -f S16_LE -r 16000 -c 1 -t raw".
type CommandSource struct {
	Args []string
}

type commandReader struct {
	io.ReadCloser
	cmd *exec.Cmd
}

func (r *commandReader) Close() error {
	err := r.ReadCloser.Close()
	_ = r.cmd.Wait()
	return err
}

func (s CommandSource) Open(ctx context.Context) (io.ReadCloser, error) {
	if len(s.Args) == 0 {
		return nil, errors.New("no capture command configured")
	}
	cmd := exec.CommandContext(ctx, s.Args[0], s.Args[1:]...)
	out, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	if err := cmd.Start(); err != nil {
		return nil, err
	}
	return &commandReader{ReadCloser: out, cmd: cmd}, nil
}

type StreamConfig struct {
	URL              string
	Token            string
	ChunkBytes       int
	HandshakeTimeout time.Duration
}

type streamResult struct {
	Type        string `json:"type"`
	IsFinal     bool   `json:"is_final"`
	SpeechFinal bool   `json:"speech_final"`
	Channel     struct {
		Alternatives []struct {
			Transcript string `json:"transcript"`
		} `json:"alternatives"`
	} `json:"channel"`
}

// StreamRecognizer streams microphone audio to a speech-to-text websocket and
// reports final transcripts. It satisfies speech.Recognizer for headless
// deployments without a browser console.
type StreamRecognizer struct {
	log    *logrus.Logger
	cfg    StreamConfig
	source AudioSource
	dialer *websocket.Dialer

	mu       sync.Mutex
	writeMu  sync.Mutex
	handlers speech.RecognizerHandlers
	cancel   context.CancelFunc
}

func NewStreamRecognizer(log *logrus.Logger, cfg StreamConfig, source AudioSource) *StreamRecognizer {
	if cfg.ChunkBytes <= 0 {
		cfg.ChunkBytes = DefaultChunkBytes
	}
	if cfg.HandshakeTimeout <= 0 {
		cfg.HandshakeTimeout = DefaultHandshakeTimeout
	}
	return &StreamRecognizer{
		log:    log,
		cfg:    cfg,
		source: source,
		dialer: &websocket.Dialer{HandshakeTimeout: cfg.HandshakeTimeout},
	}
}

func (r *StreamRecognizer) SetHandlers(h speech.RecognizerHandlers) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers = h
}

// Start opens a session in the background. Failures surface through OnError
// followed by OnEnd.
func (r *StreamRecognizer) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cfg.URL == "" || r.source == nil {
		return speech.ErrRecognizerUnavailable
	}
	if r.cancel != nil {
		return speech.ErrInvalidState
	}

	ctx, cancel := context.WithCancel(context.Background())
	r.cancel = cancel
	go r.session(ctx)

	return nil
}

func (r *StreamRecognizer) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel != nil {
		r.cancel()
	}
}

func (r *StreamRecognizer) session(ctx context.Context) {
	code := r.stream(ctx)

	r.mu.Lock()
	r.cancel()
	r.cancel = nil
	h := r.handlers
	r.mu.Unlock()

	if code != "" && h.OnError != nil {
		h.OnError(code)
	}
	if h.OnEnd != nil {
		h.OnEnd()
	}
}

func (r *StreamRecognizer) stream(ctx context.Context) string {
	header := http.Header{}
	if r.cfg.Token != "" {
		header.Set("Authorization", "Token "+r.cfg.Token)
	}

	conn, resp, err := r.dialer.DialContext(ctx, r.cfg.URL, header)
	if err != nil {
		if ctx.Err() != nil {
			return ""
		}
		fields := logrus.Fields{"error": err.Error()}
		if resp != nil {
			fields["status"] = resp.StatusCode
		}
		r.log.WithFields(fields).Warn("Failed to connect to speech stream")
		if resp != nil && (resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden) {
			return speech.ErrorNotAllowed
		}
		return speech.ErrorNetwork
	}
	defer conn.Close()

	audio, err := r.source.Open(ctx)
	if err != nil {
		r.log.WithField("error", err.Error()).Warn("Failed to open audio capture")
		return speech.ErrorAudioCapture
	}
	defer audio.Close()

	results := make(chan string, 2)
	go func() { results <- r.pump(ctx, conn, audio) }()
	go func() { results <- r.read(conn) }()

	select {
	case code := <-results:
		if ctx.Err() != nil {
			return ""
		}
		return code
	case <-ctx.Done():
		r.write(conn, websocket.TextMessage, []byte(`{"type":"CloseStream"}`))
		return ""
	}
}

func (r *StreamRecognizer) pump(ctx context.Context, conn *websocket.Conn, audio io.Reader) string {
	buf := make([]byte, r.cfg.ChunkBytes)
	for {
		n, err := audio.Read(buf)
		if n > 0 {
			if werr := r.write(conn, websocket.BinaryMessage, buf[:n]); werr != nil {
				return speech.ErrorNetwork
			}
		}
		if err != nil {
			if ctx.Err() != nil {
				return ""
			}
			return speech.ErrorAudioCapture
		}
	}
}

func (r *StreamRecognizer) read(conn *websocket.Conn) string {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return ""
			}
			return speech.ErrorNetwork
		}

		var res streamResult
		if err := json.Unmarshal(data, &res); err != nil {
			r.log.WithField("error", err.Error()).Debug("Skipping malformed stream message")
			continue
		}
		if res.Type != "Results" || !(res.IsFinal || res.SpeechFinal) || len(res.Channel.Alternatives) == 0 {
			continue
		}

		transcript := strings.TrimSpace(res.Channel.Alternatives[0].Transcript)
		if transcript == "" {
			continue
		}

		r.mu.Lock()
		onResult := r.handlers.OnResult
		r.mu.Unlock()
		if onResult != nil {
			onResult(transcript)
		}
	}
}

func (r *StreamRecognizer) write(conn *websocket.Conn, messageType int, data []byte) error {
	r.writeMu.Lock()
	defer r.writeMu.Unlock()
	_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return conn.WriteMessage(messageType, data)
}

package audio

import (
	"context"
	"errors"
	"io"
	"os/exec"
	"sync"
	"time"

	"avril/internal/api/speech"
	"avril/internal/entity"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sirupsen/logrus"
)

const DefaultSpeechTimeout = 30 * time.Second

type SpeechClient interface {
	CreateSpeech(ctx context.Context, request openai.CreateSpeechRequest) (openai.RawResponse, error)
}

// Player plays one encoded clip and returns when it has finished or ctx is
// cancelled.
type Player interface {
	Play(ctx context.Context, audio io.Reader) error
}

// CommandPlayer pipes the clip into an external player such as
// "mpg123 -q -".
type CommandPlayer struct {
	Args []string
}

func (p CommandPlayer) Play(ctx context.Context, audio io.Reader) error {
	if len(p.Args) == 0 {
		return errors.New("no audio player configured")
	}
	cmd := exec.CommandContext(ctx, p.Args[0], p.Args[1:]...)
	cmd.Stdin = audio
	return cmd.Run()
}

type SynthesizerConfig struct {
	Model   openai.SpeechModel
	Voice   openai.SpeechVoice
	Timeout time.Duration
}

// Synthesizer speaks through OpenAI text to speech and a local player. It
// satisfies speech.Synthesizer.
type Synthesizer struct {
	log    *logrus.Logger
	client SpeechClient
	player Player
	cfg    SynthesizerConfig

	mu         sync.Mutex
	cancel     context.CancelFunc
	onFinished func(id uint64, err error)
}

func NewSynthesizer(log *logrus.Logger, client SpeechClient, player Player, cfg SynthesizerConfig) *Synthesizer {
	if cfg.Model == "" {
		cfg.Model = openai.TTSModel1
	}
	if cfg.Voice == "" {
		cfg.Voice = openai.VoiceNova
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultSpeechTimeout
	}
	return &Synthesizer{
		log:    log,
		client: client,
		player: player,
		cfg:    cfg,
	}
}

func (s *Synthesizer) SetOnFinished(fn func(id uint64, err error)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onFinished = fn
}

func (s *Synthesizer) Speak(u entity.Utterance) error {
	if s.client == nil || s.player == nil {
		return speech.ErrSynthesizerUnavailable
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.Timeout)

	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.cancel = cancel
	s.mu.Unlock()

	go func() {
		defer cancel()
		err := s.say(ctx, u)
		if err != nil {
			s.log.WithFields(logrus.Fields{
				"utterance_id": u.ID,
				"error":        err.Error(),
			}).Warn("Speech playback ended with error")
		}

		s.mu.Lock()
		finished := s.onFinished
		s.mu.Unlock()
		if finished != nil {
			finished(u.ID, err)
		}
	}()

	return nil
}

func (s *Synthesizer) say(ctx context.Context, u entity.Utterance) error {
	resp, err := s.client.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model:          s.cfg.Model,
		Input:          u.Text,
		Voice:          s.cfg.Voice,
		ResponseFormat: openai.SpeechResponseFormatMp3,
		Speed:          u.Rate,
	})
	if err != nil {
		return err
	}
	defer resp.Close()

	return s.player.Play(ctx, resp)
}

func (s *Synthesizer) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

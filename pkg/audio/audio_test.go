package audio

import (
	"context"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"avril/internal/api/speech"
	"avril/internal/entity"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSpeechClient struct {
	mu       sync.Mutex
	requests []openai.CreateSpeechRequest
}

func (f *fakeSpeechClient) CreateSpeech(_ context.Context, req openai.CreateSpeechRequest) (openai.RawResponse, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()
	return openai.RawResponse{ReadCloser: io.NopCloser(strings.NewReader("mp3:" + req.Input))}, nil
}

type fakePlayer struct {
	block bool
	mu    sync.Mutex
	clips []string
}

func (p *fakePlayer) Play(ctx context.Context, audio io.Reader) error {
	data, err := io.ReadAll(audio)
	if err != nil {
		return err
	}
	p.mu.Lock()
	p.clips = append(p.clips, string(data))
	p.mu.Unlock()

	if p.block {
		<-ctx.Done()
		return ctx.Err()
	}
	return nil
}

type finish struct {
	id  uint64
	err error
}

func newSynth(client SpeechClient, player Player) (*Synthesizer, chan finish) {
	log := logrus.New()
	log.SetOutput(io.Discard)

	done := make(chan finish, 4)
	s := NewSynthesizer(log, client, player, SynthesizerConfig{})
	s.SetOnFinished(func(id uint64, err error) { done <- finish{id, err} })
	return s, done
}

func TestSynthesizer_SpeaksWithRate(t *testing.T) {
	client := &fakeSpeechClient{}
	player := &fakePlayer{}
	s, done := newSynth(client, player)

	require.NoError(t, s.Speak(entity.Utterance{ID: 7, Text: "Timer finished.", Rate: 1.1}))

	select {
	case f := <-done:
		assert.Equal(t, uint64(7), f.id)
		assert.NoError(t, f.err)
	case <-time.After(time.Second):
		t.Fatal("utterance did not finish")
	}

	require.Len(t, client.requests, 1)
	assert.Equal(t, 1.1, client.requests[0].Speed)
	assert.Equal(t, openai.TTSModel1, client.requests[0].Model)
	assert.Equal(t, []string{"mp3:Timer finished."}, player.clips)
}

func TestSynthesizer_CancelStopsPlayback(t *testing.T) {
	s, done := newSynth(&fakeSpeechClient{}, &fakePlayer{block: true})

	require.NoError(t, s.Speak(entity.Utterance{ID: 1, Text: "A long weather report."}))
	s.Cancel()

	select {
	case f := <-done:
		assert.Equal(t, uint64(1), f.id)
		assert.ErrorIs(t, f.err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("cancelled utterance did not finish")
	}
}

func TestSynthesizer_Unavailable(t *testing.T) {
	s, _ := newSynth(nil, &fakePlayer{})
	assert.ErrorIs(t, s.Speak(entity.Utterance{ID: 1}), speech.ErrSynthesizerUnavailable)
}

type fakeTranscriptionClient struct{ req openai.AudioRequest }

func (f *fakeTranscriptionClient) CreateTranscription(_ context.Context, req openai.AudioRequest) (openai.AudioResponse, error) {
	f.req = req
	return openai.AudioResponse{Text: "set a timer for five minutes"}, nil
}

func TestTranscriber(t *testing.T) {
	client := &fakeTranscriptionClient{}
	text, err := NewTranscriber(client, "en").Transcribe(context.Background(), "clip.webm", strings.NewReader("audio"))

	require.NoError(t, err)
	assert.Equal(t, "set a timer for five minutes", text)
	assert.Equal(t, openai.Whisper1, client.req.Model)
	assert.Equal(t, "clip.webm", client.req.FilePath)
	assert.Equal(t, "en", client.req.Language)
}

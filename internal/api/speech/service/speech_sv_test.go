package speechService

import (
	"errors"
	"io"
	"testing"
	"time"

	"avril/internal/api/speech"
	"avril/internal/entity"
	"avril/pkg/eventloop"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRecognizer struct {
	starts   int
	stops    int
	startErr error
	handlers speech.RecognizerHandlers
}

func (f *fakeRecognizer) Start() error {
	if f.startErr != nil {
		return f.startErr
	}
	f.starts++
	return nil
}

func (f *fakeRecognizer) Stop() { f.stops++ }

func (f *fakeRecognizer) SetHandlers(h speech.RecognizerHandlers) { f.handlers = h }

type fakeSynth struct {
	spoken   []entity.Utterance
	cancels  int
	finished func(uint64, error)
}

func (f *fakeSynth) Speak(u entity.Utterance) error {
	f.spoken = append(f.spoken, u)
	return nil
}

func (f *fakeSynth) Cancel() { f.cancels++ }

func (f *fakeSynth) SetOnFinished(fn func(uint64, error)) { f.finished = fn }

type fakeChimer struct{ kinds []speech.ChimeKind }

func (f *fakeChimer) Chime(kind speech.ChimeKind) { f.kinds = append(f.kinds, kind) }

type fakeStatus struct{ lines []string }

func (f *fakeStatus) Status(text string) { f.lines = append(f.lines, text) }

type harness struct {
	loop   *eventloop.Manual
	state  *entity.EngineState
	rec    *fakeRecognizer
	synth  *fakeSynth
	chimer *fakeChimer
	status *fakeStatus
	mgr    IRecognitionManager
	gate   ISpeechGate
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)

	h := &harness{
		loop:   eventloop.NewManual(time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)),
		state:  entity.NewEngineState(),
		rec:    &fakeRecognizer{},
		synth:  &fakeSynth{},
		chimer: &fakeChimer{},
		status: &fakeStatus{},
	}
	h.mgr = NewRecognitionManager(log, h.loop, h.state, h.rec, h.chimer, h.status)
	h.gate = NewSpeechGate(log, h.loop, h.state, h.synth, h.mgr, GateConfig{})
	return h
}

func (h *harness) stream(t *testing.T) {
	t.Helper()
	h.mgr.RequestCapture()
	h.mgr.CaptureGranted()
	require.Equal(t, entity.RecognitionStreaming, h.state.Recognition.State())
	require.True(t, h.state.Recognition.Active)
}

func TestCaptureGranted_StartsWithChime(t *testing.T) {
	h := newHarness(t)
	h.stream(t)

	assert.Equal(t, 1, h.rec.starts)
	assert.Equal(t, []speech.ChimeKind{speech.ChimeStart}, h.chimer.kinds)
}

func TestOnEnd_RestartsAfterDelay(t *testing.T) {
	h := newHarness(t)
	h.stream(t)

	h.rec.handlers.OnEnd()
	h.loop.Flush()
	assert.False(t, h.state.Recognition.Active)

	h.loop.Advance(EndRestartDelay - time.Millisecond)
	assert.Equal(t, 1, h.rec.starts)

	h.loop.Advance(time.Millisecond)
	assert.Equal(t, 2, h.rec.starts)
	assert.True(t, h.state.Recognition.Active)
	assert.Len(t, h.chimer.kinds, 1, "automatic restarts are silent")
}

func TestRecoverableError_RestartsAfterErrorDelay(t *testing.T) {
	h := newHarness(t)
	h.stream(t)

	h.rec.handlers.OnError(speech.ErrorNoSpeech)
	h.rec.handlers.OnEnd()
	h.loop.Flush()

	h.loop.Advance(EndRestartDelay)
	assert.Equal(t, 1, h.rec.starts)

	h.loop.Advance(ErrorRestartDelay - EndRestartDelay)
	assert.Equal(t, 2, h.rec.starts)
}

func TestUnknownError_DoesNotRestart(t *testing.T) {
	h := newHarness(t)
	h.stream(t)

	h.rec.handlers.OnError("language-not-supported")
	h.rec.handlers.OnEnd()
	h.loop.Flush()
	h.loop.Advance(5 * time.Second)

	assert.Equal(t, 1, h.rec.starts)
}

func TestNotAllowed_DegradesToFallbackOnce(t *testing.T) {
	h := newHarness(t)
	h.stream(t)

	h.rec.handlers.OnError(speech.ErrorNotAllowed)
	h.loop.Flush()
	h.mgr.CaptureDenied("again")

	assert.Equal(t, entity.RecognitionFallback, h.state.Recognition.State())
	count := 0
	for _, line := range h.status.lines {
		if line == fallbackStatus {
			count++
		}
	}
	assert.Equal(t, 1, count)

	h.loop.Advance(5 * time.Second)
	assert.Equal(t, 1, h.rec.starts)
}

func TestInvalidStateOnStart_IsSwallowed(t *testing.T) {
	h := newHarness(t)
	h.rec.startErr = speech.ErrInvalidState
	h.mgr.RequestCapture()
	h.mgr.CaptureGranted()

	assert.True(t, h.state.Recognition.Active)
}

func TestChimeCooldown(t *testing.T) {
	h := newHarness(t)
	h.stream(t)

	h.mgr.ReleaseCapture()
	h.mgr.RequestCapture()
	h.mgr.CaptureGranted()

	starts := 0
	for _, k := range h.chimer.kinds {
		if k == speech.ChimeStart {
			starts++
		}
	}
	assert.Equal(t, 1, starts)
	assert.Equal(t, 2, h.rec.starts)
}

func TestToggleMute(t *testing.T) {
	h := newHarness(t)
	h.stream(t)

	assert.True(t, h.mgr.ToggleMute())
	assert.True(t, h.state.Recognition.Muted())
	assert.False(t, h.state.Recognition.Active)
	assert.Equal(t, 1, h.rec.stops)

	h.rec.handlers.OnEnd()
	h.loop.Flush()
	h.loop.Advance(time.Second)
	assert.Equal(t, 1, h.rec.starts, "muted recognizer must not restart")

	assert.False(t, h.mgr.ToggleMute())
	assert.True(t, h.state.Recognition.Streaming())
	assert.Equal(t, 2, h.rec.starts)
}

func TestStateChangeHandlers(t *testing.T) {
	h := newHarness(t)

	var seen []entity.RecognitionState
	h.mgr.OnStateChange(func(_, to entity.RecognitionState) { seen = append(seen, to) })
	h.stream(t)
	h.mgr.ReleaseCapture()

	assert.Equal(t, []entity.RecognitionState{
		entity.RecognitionRequesting,
		entity.RecognitionStreaming,
		entity.RecognitionIdle,
	}, seen)
}

func TestTranscripts_DeliveredOnlyWhileStreaming(t *testing.T) {
	h := newHarness(t)

	var got []string
	h.mgr.OnFinalTranscript(func(s string) { got = append(got, s) })

	h.stream(t)
	h.rec.handlers.OnResult("  hello there ")
	h.rec.handlers.OnResult("   ")
	h.loop.Flush()

	h.mgr.ToggleMute()
	h.rec.handlers.OnResult("ignored")
	h.loop.Flush()

	assert.Equal(t, []string{"hello there"}, got)
}

func TestSpeak_PausesAndResumesAfterEchoSettle(t *testing.T) {
	h := newHarness(t)
	h.stream(t)

	h.gate.Speak("What is your command?")
	assert.True(t, h.gate.Speaking())
	assert.True(t, h.state.Recognition.PausedForSpeech)
	assert.False(t, h.state.Recognition.Active)
	require.Len(t, h.synth.spoken, 1)

	// the recognizer's end event for our own stop must not restart it
	h.rec.handlers.OnEnd()
	h.loop.Flush()
	h.loop.Advance(time.Second)
	assert.Equal(t, 1, h.rec.starts)

	h.synth.finished(h.synth.spoken[0].ID, nil)
	h.loop.Flush()
	assert.False(t, h.gate.Speaking())

	h.loop.Advance(EchoSettleDelay - time.Millisecond)
	assert.Equal(t, 1, h.rec.starts)
	h.loop.Advance(time.Millisecond)
	assert.Equal(t, 2, h.rec.starts)
	assert.False(t, h.state.Recognition.PausedForSpeech)
}

func TestSpeak_DuringPendingRestartResumesAfterSpeech(t *testing.T) {
	h := newHarness(t)
	h.stream(t)

	h.rec.handlers.OnEnd()
	h.loop.Flush()
	h.loop.Advance(EndRestartDelay / 2)

	h.gate.Speak("Reminder: call mom.")
	assert.True(t, h.state.Recognition.PausedForSpeech)

	h.loop.Advance(EndRestartDelay)
	assert.Equal(t, 1, h.rec.starts, "restart waits for speech to end")

	h.synth.finished(h.synth.spoken[0].ID, nil)
	h.loop.Flush()
	h.loop.Advance(10 * time.Second)

	assert.Equal(t, 2, h.rec.starts)
	assert.True(t, h.state.Recognition.Active)
	assert.False(t, h.state.Recognition.PausedForSpeech)
}

func TestSpeak_DuringErrorRestartResumesAfterSpeech(t *testing.T) {
	h := newHarness(t)
	h.stream(t)

	h.rec.handlers.OnError(speech.ErrorNetwork)
	h.rec.handlers.OnEnd()
	h.loop.Flush()

	h.gate.Speak("It is sunny.")
	h.synth.finished(h.synth.spoken[0].ID, nil)
	h.loop.Flush()
	h.loop.Advance(10 * time.Second)

	assert.Equal(t, 2, h.rec.starts)
	assert.True(t, h.state.Recognition.Active)
}

func TestSpeak_NewUtteranceCancelsPendingResume(t *testing.T) {
	h := newHarness(t)
	h.stream(t)

	h.gate.Speak("first")
	h.synth.finished(h.synth.spoken[0].ID, nil)
	h.loop.Flush()
	h.loop.Advance(EchoSettleDelay / 2)

	h.gate.Speak("second")
	assert.True(t, h.state.Recognition.PausedForSpeech, "pending pause is preserved")

	h.loop.Advance(EchoSettleDelay)
	assert.Equal(t, 1, h.rec.starts)

	h.synth.finished(h.synth.spoken[1].ID, nil)
	h.loop.Flush()
	h.loop.Advance(EchoSettleDelay)
	assert.Equal(t, 2, h.rec.starts)
}

func TestSpeak_IgnoresLateEndOfCancelledUtterance(t *testing.T) {
	h := newHarness(t)
	h.stream(t)

	h.gate.Speak("first")
	h.gate.Speak("second")
	assert.Equal(t, 1, h.synth.cancels)

	h.synth.finished(h.synth.spoken[0].ID, nil)
	h.loop.Flush()
	assert.True(t, h.gate.Speaking())
	assert.Equal(t, h.synth.spoken[1].ID, h.state.Speech.UtteranceID)
}

func TestSpeak_SynthFailureStillResumes(t *testing.T) {
	h := newHarness(t)
	h.stream(t)

	h.gate.Speak("hello")
	h.synth.finished(h.synth.spoken[0].ID, errors.New("device lost"))
	h.loop.Flush()
	assert.False(t, h.gate.Speaking())

	h.loop.Advance(EchoSettleDelay)
	assert.True(t, h.state.Recognition.Active)
}

func TestSpeak_WhileMutedDoesNotOpenMic(t *testing.T) {
	h := newHarness(t)
	h.stream(t)
	h.mgr.ToggleMute()

	h.gate.Speak("Microphone muted.")
	h.synth.finished(h.synth.spoken[0].ID, nil)
	h.loop.Flush()
	h.loop.Advance(5 * time.Second)

	assert.False(t, h.state.Recognition.Active)
	assert.Equal(t, 1, h.rec.starts)
}

func TestRateFor(t *testing.T) {
	assert.Equal(t, 1.1, RateFor("It is 7:30 AM."))
	assert.Equal(t, 1.0, RateFor("This answer is a little longer than forty characters."))
	long := make([]byte, 170)
	for i := range long {
		long[i] = 'a'
	}
	assert.Equal(t, 0.9, RateFor(string(long)))
}

func TestUtteranceDefaults(t *testing.T) {
	h := newHarness(t)
	h.gate.Speak("Alarm stopped.")

	require.Len(t, h.synth.spoken, 1)
	u := h.synth.spoken[0]
	assert.Equal(t, "en-GB", u.Lang)
	assert.Equal(t, 0.9, u.Pitch)
	assert.Equal(t, 1.0, u.Volume)
}

package speechService

import (
	"strings"

	"avril/internal/entity"
	"avril/pkg/metrics"

	"github.com/sirupsen/logrus"
)

// RateFor slows long answers down and speeds short ones up.
func RateFor(text string) float64 {
	switch n := len(text); {
	case n <= 40:
		return 1.1
	case n >= 160:
		return 0.9
	default:
		return 1
	}
}

func (g *speechGate) Speaking() bool {
	return g.state.Speech.Speaking
}

func (g *speechGate) Speak(text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}

	g.cancelResume()
	if g.state.Speech.Speaking {
		g.synth.Cancel()
	}

	g.nextID++
	id := g.nextID
	g.state.Speech = entity.SpeechStatus{Speaking: true, UtteranceID: id}
	g.recognition.PauseForSpeech()

	utterance := entity.Utterance{
		ID:     id,
		Text:   text,
		Rate:   RateFor(text),
		Pitch:  g.cfg.Pitch,
		Volume: 1,
		Lang:   g.cfg.Lang,
		Voice:  g.cfg.Voice,
	}

	g.log.WithFields(logrus.Fields{
		"utterance_id": id,
		"chars":        len(text),
	}).Debug("Speaking")
	metrics.Utterances.Inc()

	if err := g.synth.Speak(utterance); err != nil {
		g.finished(id, err)
	}
}

func (g *speechGate) Cancel() {
	if !g.state.Speech.Speaking {
		return
	}
	g.synth.Cancel()
	g.finished(g.state.Speech.UtteranceID, nil)
}

func (g *speechGate) finished(id uint64, err error) {
	if id != g.state.Speech.UtteranceID || !g.state.Speech.Speaking {
		return
	}
	if err != nil {
		g.log.WithFields(logrus.Fields{
			"utterance_id": id,
			"error":        err.Error(),
		}).Warn("Speech synthesis failed")
	}

	g.state.Speech.Speaking = false
	if !g.state.Recognition.PausedForSpeech {
		return
	}

	g.cancelResume()
	g.resumeTimer = g.loop.AfterFunc(g.cfg.EchoSettle, func() {
		g.resumeTimer = nil
		if g.state.Speech.Speaking {
			return
		}
		g.recognition.ResumeAfterSpeech()
	})
}

func (g *speechGate) cancelResume() {
	if g.resumeTimer != nil {
		g.resumeTimer.Stop()
		g.resumeTimer = nil
	}
}

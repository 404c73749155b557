package nlp

type Answer uint8

const (
	AnswerUnknown Answer = 0
	AnswerYes     Answer = 1
	AnswerNo      Answer = 2
)

var affirmativeWords = []string{
	"yes", "yeah", "yep", "yup", "sure", "ok", "okay", "please",
	"of course", "go ahead", "do it", "correct", "right", "absolutely",
}

var negativeWords = []string{
	"no", "nope", "nah", "not now", "no thanks", "no thank you",
	"that s all", "thats all", "never mind", "nevermind",
}

// These only count as an answer on their own; "stop the timer" is a command.
var bareNegatives = []string{"stop", "cancel", "stop it", "cancel it"}

// ClassifyAnswer reads a sanitised utterance as a reply to a yes/no question.
// Negatives are checked first so "no thank you" is not taken as "yes".
func ClassifyAnswer(text string) Answer {
	if matchesWord(text, negativeWords) || equalsAny(text, bareNegatives) {
		return AnswerNo
	}
	if matchesWord(text, affirmativeWords) {
		return AnswerYes
	}
	return AnswerUnknown
}

func matchesWord(text string, words []string) bool {
	padded := " " + text + " "
	for _, w := range words {
		if text == w || ContainsAny(padded, " "+w+" ") {
			return true
		}
	}
	return false
}

func equalsAny(text string, words []string) bool {
	for _, w := range words {
		if text == w {
			return true
		}
	}
	return false
}

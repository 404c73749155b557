// Package nlp holds the phrase normalisation shared by wake detection, intent
// matching and custom commands.
package nlp

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

func isMn(r rune) bool {
	return unicode.Is(unicode.Mn, r)
}

func foldAccents(text string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.Predicate(isMn)), norm.NFC)
	result, _, err := transform.String(t, text)
	if err != nil {
		return text
	}
	return result
}

// Sanitize lower-cases text, folds accents and replaces everything that is
// not an ASCII letter, digit or space with a space, collapsing runs of
// whitespace. "What's the time?" becomes "what s the time".
func Sanitize(text string) string {
	return clean(text, func(r rune) bool {
		return (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
	})
}

// Letters is Sanitize without digits.
func Letters(text string) string {
	return clean(text, func(r rune) bool {
		return r >= 'a' && r <= 'z'
	})
}

func clean(text string, keep func(rune) bool) string {
	text = foldAccents(strings.ToLower(text))

	result := strings.Map(func(r rune) rune {
		if keep(r) {
			return r
		}
		return ' '
	}, text)

	return strings.Join(strings.Fields(result), " ")
}

// Squash drops apostrophes before sanitising so contractions stay whole:
// "what's the time" becomes "whats the time".
func Squash(text string) string {
	text = strings.NewReplacer("'", "", "’", "").Replace(text)
	return Sanitize(text)
}

func WordCount(text string) int {
	return len(strings.Fields(text))
}

func ContainsAny(text string, phrases ...string) bool {
	for _, p := range phrases {
		if strings.Contains(text, p) {
			return true
		}
	}
	return false
}

// TitleCase capitalises each word for display, e.g. "new york" -> "New York".
func TitleCase(text string) string {
	words := strings.Fields(text)
	for i, w := range words {
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}

package commandService

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"avril/internal/entity"
	"avril/pkg/nlp"
)

// Ordered from most to least specific; the first match wins.
var timePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(\d{1,2}):(\d{2})\s*(am|pm)`),
	regexp.MustCompile(`(\d{1,2})\s+(\d{2})\s*(am|pm)`),
	regexp.MustCompile(`(\d{1,2}):(\d{2})`),
	regexp.MustCompile(`(\d{1,2})\s+(\d{2})`),
	regexp.MustCompile(`(\d{1,2})\s*(am|pm)`),
}

var meridiemReplacer = strings.NewReplacer("a.m.", "am", "p.m.", "pm", "a m", "am", "p m", "pm", ".", ":")

// ParseTime reads a clock time such as "7:30 AM", "7 30 am", "19:05" or
// "7pm". Without am/pm the hour is taken as 24-hour.
func ParseTime(text string) (entity.AlarmSpec, bool) {
	text = meridiemReplacer.Replace(strings.ToLower(text))

	for _, pattern := range timePatterns {
		m := pattern.FindStringSubmatch(text)
		if m == nil {
			continue
		}

		hours, _ := strconv.Atoi(m[1])
		minutes := 0
		meridiem := ""
		switch len(m) {
		case 4:
			minutes, _ = strconv.Atoi(m[2])
			meridiem = m[3]
		case 3:
			if m[2] == "am" || m[2] == "pm" {
				meridiem = m[2]
			} else {
				minutes, _ = strconv.Atoi(m[2])
			}
		}

		if meridiem == "pm" && hours != 12 {
			hours += 12
		} else if meridiem == "am" && hours == 12 {
			hours = 0
		}

		spec := entity.AlarmSpec{Hours: hours, Minutes: minutes}
		if meridiem != "" && (hours > 23 || m[1] == "0") {
			continue
		}
		if spec.Valid() {
			return spec, true
		}
	}

	return entity.AlarmSpec{}, false
}

var exactTime = regexp.MustCompile(`^\d{1,2}(?:(?::|\s)\d{2})?\s*(?:am|pm)?$`)

// parseTimeExact accepts text that is nothing but a time.
func parseTimeExact(text string) (entity.AlarmSpec, bool) {
	text = strings.TrimSpace(meridiemReplacer.Replace(strings.ToLower(text)))
	if !exactTime.MatchString(text) {
		return entity.AlarmSpec{}, false
	}
	return ParseTime(text)
}

var weekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

var dayFiller = map[string]bool{"on": true, "at": true, "this": true, "next": true, "coming": true, "by": true}

func dayToken(w string) (entity.DaySpec, bool) {
	switch w {
	case "today", "tonight":
		return entity.DaySpec{Kind: entity.DayToday}, true
	case "tomorrow":
		return entity.DaySpec{Kind: entity.DayTomorrow}, true
	}
	if wd, ok := weekdays[w]; ok {
		return entity.DaySpec{Kind: entity.DayWeekday, Weekday: wd}, true
	}
	return entity.DaySpec{}, false
}

// ParseDay finds a day token (weekday name, today, tonight, tomorrow) and
// returns it with the remaining words, minus filler like "on" or "next".
func ParseDay(text string) (entity.DaySpec, string) {
	words := strings.Fields(text)

	for i, w := range words {
		day, ok := dayToken(w)
		if !ok {
			continue
		}

		rest := make([]string, 0, len(words))
		for j, other := range words {
			if j == i || dayFiller[other] {
				continue
			}
			rest = append(rest, other)
		}
		return day, strings.Join(rest, " ")
	}

	return entity.DaySpec{}, strings.TrimSpace(text)
}

var numberWords = map[string]string{
	"one": "1", "two": "2", "three": "3", "four": "4", "five": "5", "six": "6",
	"seven": "7", "eight": "8", "nine": "9", "ten": "10", "eleven": "11", "twelve": "12",
	"fifteen": "15", "twenty": "20", "thirty": "30", "forty": "40", "forty five": "45",
	"fifty": "50", "sixty": "60", "ninety": "90",
}

func wordsToDigits(text string) string {
	text = strings.ReplaceAll(text, "forty five", "45")
	words := strings.Fields(text)
	for i, w := range words {
		if d, ok := numberWords[w]; ok {
			words[i] = d
		}
	}
	return strings.Join(words, " ")
}

var (
	durationUnits = regexp.MustCompile(`(\d+)\s*(hours?|hrs?|h|minutes?|mins?|m|seconds?|secs?|s)\b`)
	andAHalf      = regexp.MustCompile(`(\d+)\s+and\s+a\s+half\s+(hours?|minutes?)`)
	bareHourMin   = regexp.MustCompile(`^(\d+)\s+and\s+(\d+)$`)
	bareNumber    = regexp.MustCompile(`^(\d+)$`)
)

var durationReplacer = strings.NewReplacer(
	"half an hour", "30 minutes",
	"an hour", "1 hour",
	"a hour", "1 hour",
	"a minute", "1 minute",
	"a second", "1 second",
)

// ParseDuration reads a countdown length in seconds from text such as
// "5 minutes", "1 hour and 30 minutes", "2 and 15", "half an hour" or
// "an hour and a half". A bare number is taken as minutes.
func ParseDuration(text string) (int, bool) {
	text = wordsToDigits(nlp.Sanitize(text))
	text = durationReplacer.Replace(text)
	text = strings.ReplaceAll(text, "1 hour and a half", "90 minutes")

	total := 0
	text = andAHalf.ReplaceAllStringFunc(text, func(s string) string {
		m := andAHalf.FindStringSubmatch(s)
		n, _ := strconv.Atoi(m[1])
		if strings.HasPrefix(m[2], "hour") {
			total += n*3600 + 1800
		} else {
			total += n*60 + 30
		}
		return ""
	})

	for _, m := range durationUnits.FindAllStringSubmatch(text, -1) {
		n, _ := strconv.Atoi(m[1])
		switch m[2][0] {
		case 'h':
			total += n * 3600
		case 'm':
			total += n * 60
		case 's':
			total += n
		}
	}
	if total > 0 {
		return total, true
	}

	rest := strings.TrimSpace(text)
	if m := bareHourMin.FindStringSubmatch(rest); m != nil {
		h, _ := strconv.Atoi(m[1])
		mins, _ := strconv.Atoi(m[2])
		total = h*3600 + mins*60
	} else if m := bareNumber.FindStringSubmatch(rest); m != nil {
		n, _ := strconv.Atoi(m[1])
		total = n * 60
	}

	return total, total > 0
}

// FormatDuration renders seconds the way they are spoken, e.g.
// "1 hour and 30 minutes".
func FormatDuration(seconds int) string {
	h, m, s := seconds/3600, (seconds%3600)/60, seconds%60

	var parts []string
	add := func(n int, unit string) {
		if n == 0 {
			return
		}
		if n != 1 {
			unit += "s"
		}
		parts = append(parts, fmt.Sprintf("%d %s", n, unit))
	}
	add(h, "hour")
	add(m, "minute")
	add(s, "second")

	switch len(parts) {
	case 0:
		return "0 seconds"
	case 1:
		return parts[0]
	default:
		return strings.Join(parts[:len(parts)-1], ", ") + " and " + parts[len(parts)-1]
	}
}

// IsWakePhrase accepts "hello", anything starting with "hello ", a phrase
// containing " hello ", "hey <name>" in the same three positions, and any
// phrase containing "wake up".
func IsWakePhrase(text, name string) bool {
	sanitized := nlp.Letters(text)
	if sanitized == "" {
		return false
	}

	for _, phrase := range []string{"hello", "hey " + nlp.Letters(name)} {
		if sanitized == phrase ||
			strings.HasPrefix(sanitized, phrase+" ") ||
			strings.Contains(sanitized, " "+phrase+" ") {
			return true
		}
	}
	return strings.Contains(sanitized, "wake up")
}

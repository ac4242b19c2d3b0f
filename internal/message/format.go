// Package message renders word-of-the-day texts from subscriber preferences.
// Everything here is pure: the reference instant and the word entry are passed
// in explicitly, so rendering is testable without clock or transport.
package message

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/lexibot/word-of-the-day-bot/internal/dal"
)

// Render produces the daily message for one subscriber. A nil entry yields the
// "no word available" fallback, never an empty string. The date clause is
// rendered from ref, which must already be in the subscriber's location.
func Render(prefs dal.FormatPrefs, entry *dal.WordEntry, ref time.Time) string {
	if entry == nil {
		if prefs.IncludeDate {
			return fmt.Sprintf("Today is %s, and there is no Word of the Day today.", FormatDate(prefs, ref))
		}
		return "There is no Word of the Day today."
	}

	var b strings.Builder
	if prefs.IncludeDate {
		fmt.Fprintf(&b, "Today is %s, and the Word of the Day is \"%s\"", FormatDate(prefs, ref), capitalize(entry.Word))
	} else {
		fmt.Fprintf(&b, "The Word of the Day is \"%s\"", capitalize(entry.Word))
	}
	writeBody(&b, prefs, entry)
	return b.String()
}

// RenderForDate produces the answer to a historic lookup ("what was the word
// on D"). The entry's own date is rendered, not the current one.
func RenderForDate(prefs dal.FormatPrefs, entry *dal.WordEntry, date time.Time, today bool) string {
	formatted := FormatDate(prefs, date)
	if entry == nil {
		return fmt.Sprintf("The Word of the Day for %s is not available.", formatted)
	}

	var b strings.Builder
	if today {
		fmt.Fprintf(&b, "The Word of the Day for today (%s) is \"%s\"", formatted, capitalize(entry.Word))
	} else {
		fmt.Fprintf(&b, "The Word of the Day for %s was \"%s\"", formatted, capitalize(entry.Word))
	}
	writeBody(&b, prefs, entry)
	return b.String()
}

func writeBody(b *strings.Builder, prefs dal.FormatPrefs, entry *dal.WordEntry) {
	if prefs.IncludeIPA && entry.IPA != "" {
		fmt.Fprintf(b, " (%s), ", entry.IPA)
	} else {
		b.WriteString(", ")
	}
	fmt.Fprintf(b, "which is defined as: (%s) %s", entry.PartOfSpeech, entry.Definition)
}

// FormatDate renders a calendar date according to the subscriber's date order
// and style preferences.
func FormatDate(prefs dal.FormatPrefs, t time.Time) string {
	day, month, year := t.Day(), t.Month(), t.Year()
	mdy := prefs.DateOrder == dal.DateOrderMDY

	switch prefs.DateStyle {
	case dal.DateStyleLong:
		if mdy {
			return fmt.Sprintf("%s, %s %d%s, %d", t.Weekday(), month, day, ordinalSuffix(day), year)
		}
		return fmt.Sprintf("%s, %d %s %d", t.Weekday(), day, month, year)
	case dal.DateStyleShortHyphen:
		if mdy {
			return fmt.Sprintf("%02d-%02d-%04d", month, day, year)
		}
		return fmt.Sprintf("%02d-%02d-%04d", day, month, year)
	case dal.DateStyleShortSlash:
		if mdy {
			return fmt.Sprintf("%02d/%02d/%04d", month, day, year)
		}
		return fmt.Sprintf("%02d/%02d/%04d", day, month, year)
	default: // medium
		if mdy {
			return fmt.Sprintf("%s %d%s, %d", month, day, ordinalSuffix(day), year)
		}
		return fmt.Sprintf("%d %s %d", day, month, year)
	}
}

// ordinalSuffix follows English ordinals: 1st, 2nd, 3rd, 4th, with 11th-13th
// as the usual exception.
func ordinalSuffix(day int) string {
	if day >= 11 && day <= 13 {
		return "th"
	}
	switch day % 10 {
	case 1:
		return "st"
	case 2:
		return "nd"
	case 3:
		return "rd"
	default:
		return "th"
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(s)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

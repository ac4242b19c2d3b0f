package message

import (
	"testing"
	"time"

	"github.com/lexibot/word-of-the-day-bot/internal/dal"
)

var sesquipedalian = dal.WordEntry{
	Date:         "2025-06-03",
	Word:         "sesquipedalian",
	IPA:          "/ˌsɛskwɪpɪˈdeɪliən/",
	PartOfSpeech: "Adjective",
	Definition:   "Long; polysyllabic.",
}

func TestRender(t *testing.T) {
	ref := time.Date(2025, time.June, 3, 8, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		prefs dal.FormatPrefs
		entry *dal.WordEntry
		want  string
	}{
		{
			name: "full message",
			prefs: dal.FormatPrefs{
				IncludeDate: true,
				IncludeIPA:  true,
				DateOrder:   dal.DateOrderMDY,
				DateStyle:   dal.DateStyleMedium,
			},
			entry: &sesquipedalian,
			want:  `Today is June 3rd, 2025, and the Word of the Day is "Sesquipedalian" (/ˌsɛskwɪpɪˈdeɪliən/), which is defined as: (Adjective) Long; polysyllabic.`,
		},
		{
			name: "without date",
			prefs: dal.FormatPrefs{
				IncludeIPA: true,
			},
			entry: &sesquipedalian,
			want:  `The Word of the Day is "Sesquipedalian" (/ˌsɛskwɪpɪˈdeɪliən/), which is defined as: (Adjective) Long; polysyllabic.`,
		},
		{
			name: "without ipa",
			prefs: dal.FormatPrefs{
				IncludeDate: true,
				DateOrder:   dal.DateOrderDMY,
				DateStyle:   dal.DateStyleMedium,
			},
			entry: &sesquipedalian,
			want:  `Today is 3 June 2025, and the Word of the Day is "Sesquipedalian", which is defined as: (Adjective) Long; polysyllabic.`,
		},
		{
			name: "ipa preference without ipa data",
			prefs: dal.FormatPrefs{
				IncludeIPA: true,
			},
			entry: &dal.WordEntry{Word: "ephemeral", PartOfSpeech: "Adjective", Definition: "Short-lived."},
			want:  `The Word of the Day is "Ephemeral", which is defined as: (Adjective) Short-lived.`,
		},
		{
			name: "no word with date",
			prefs: dal.FormatPrefs{
				IncludeDate: true,
				DateOrder:   dal.DateOrderDMY,
				DateStyle:   dal.DateStyleMedium,
			},
			entry: nil,
			want:  "Today is 3 June 2025, and there is no Word of the Day today.",
		},
		{
			name:  "no word without date",
			prefs: dal.FormatPrefs{},
			entry: nil,
			want:  "There is no Word of the Day today.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Render(tt.prefs, tt.entry, ref)
			if got != tt.want {
				t.Errorf("Render() =\n%q\nwant\n%q", got, tt.want)
			}
		})
	}
}

func TestRenderForDate(t *testing.T) {
	date := time.Date(2025, time.June, 3, 0, 0, 0, 0, time.UTC)
	prefs := dal.FormatPrefs{IncludeIPA: true, DateOrder: dal.DateOrderMDY, DateStyle: dal.DateStyleMedium}

	t.Run("historic", func(t *testing.T) {
		got := RenderForDate(prefs, &sesquipedalian, date, false)
		want := `The Word of the Day for June 3rd, 2025 was "Sesquipedalian" (/ˌsɛskwɪpɪˈdeɪliən/), which is defined as: (Adjective) Long; polysyllabic.`
		if got != want {
			t.Errorf("RenderForDate() =\n%q\nwant\n%q", got, want)
		}
	})

	t.Run("today", func(t *testing.T) {
		got := RenderForDate(prefs, &sesquipedalian, date, true)
		want := `The Word of the Day for today (June 3rd, 2025) is "Sesquipedalian" (/ˌsɛskwɪpɪˈdeɪliən/), which is defined as: (Adjective) Long; polysyllabic.`
		if got != want {
			t.Errorf("RenderForDate() =\n%q\nwant\n%q", got, want)
		}
	})

	t.Run("missing entry", func(t *testing.T) {
		got := RenderForDate(prefs, nil, date, false)
		want := "The Word of the Day for June 3rd, 2025 is not available."
		if got != want {
			t.Errorf("RenderForDate() = %q, want %q", got, want)
		}
	})
}

func TestFormatDate(t *testing.T) {
	date := time.Date(2025, time.June, 3, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		order dal.DateOrder
		style dal.DateStyle
		want  string
	}{
		{"long dmy", dal.DateOrderDMY, dal.DateStyleLong, "Tuesday, 3 June 2025"},
		{"long mdy", dal.DateOrderMDY, dal.DateStyleLong, "Tuesday, June 3rd, 2025"},
		{"medium dmy", dal.DateOrderDMY, dal.DateStyleMedium, "3 June 2025"},
		{"medium mdy", dal.DateOrderMDY, dal.DateStyleMedium, "June 3rd, 2025"},
		{"short dmy", dal.DateOrderDMY, dal.DateStyleShortHyphen, "03-06-2025"},
		{"short mdy", dal.DateOrderMDY, dal.DateStyleShortHyphen, "06-03-2025"},
		{"slash dmy", dal.DateOrderDMY, dal.DateStyleShortSlash, "03/06/2025"},
		{"slash mdy", dal.DateOrderMDY, dal.DateStyleShortSlash, "06/03/2025"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatDate(dal.FormatPrefs{DateOrder: tt.order, DateStyle: tt.style}, date)
			if got != tt.want {
				t.Errorf("FormatDate() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestOrdinalSuffix(t *testing.T) {
	tests := []struct {
		day  int
		want string
	}{
		{1, "st"}, {2, "nd"}, {3, "rd"}, {4, "th"},
		{11, "th"}, {12, "th"}, {13, "th"},
		{21, "st"}, {22, "nd"}, {23, "rd"}, {24, "th"},
		{31, "st"},
	}

	for _, tt := range tests {
		if got := ordinalSuffix(tt.day); got != tt.want {
			t.Errorf("ordinalSuffix(%d) = %q, want %q", tt.day, got, tt.want)
		}
	}
}

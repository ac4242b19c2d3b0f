package data

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/lexibot/word-of-the-day-bot/internal/dal"
)

func TestParseEntry(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		want    dal.WordEntry
		wantErr bool
	}{
		{
			name: "with date",
			line: "2025-06-03;sesquipedalian;/ˌsɛskwɪpɪˈdeɪliən/;Adjective;Long; polysyllabic.",
			// the definition may not contain a semicolon, the last field wins
			wantErr: true,
		},
		{
			name: "full line",
			line: "2025-06-03;sesquipedalian;/ipa/;Adjective;Polysyllabic.",
			want: dal.WordEntry{
				Date:         "2025-06-03",
				Word:         "sesquipedalian",
				IPA:          "/ipa/",
				PartOfSpeech: "Adjective",
				Definition:   "Polysyllabic.",
			},
		},
		{
			name: "without date",
			line: "ephemeral;;Adjective;Short-lived.",
			want: dal.WordEntry{
				Word:         "ephemeral",
				PartOfSpeech: "Adjective",
				Definition:   "Short-lived.",
			},
		},
		{
			name: "fields are trimmed",
			line: " ephemeral ; /ipa/ ; Adjective ; Short-lived. ",
			want: dal.WordEntry{
				Word:         "ephemeral",
				IPA:          "/ipa/",
				PartOfSpeech: "Adjective",
				Definition:   "Short-lived.",
			},
		},
		{name: "invalid date", line: "03/06/2025;word;;Noun;Def.", wantErr: true},
		{name: "too few fields", line: "word;definition", wantErr: true},
		{name: "missing word", line: ";ipa;Noun;Def.", wantErr: true},
		{name: "missing definition", line: "word;ipa;Noun;", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseEntry(tt.line)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseEntry(%q) succeeded, want error", tt.line)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseEntry(%q) failed: %v", tt.line, err)
			}
			if got != tt.want {
				t.Errorf("ParseEntry(%q) = %+v, want %+v", tt.line, got, tt.want)
			}
		})
	}
}

func TestParse(t *testing.T) {
	input := strings.Join([]string{
		"2025-06-03;alpha;;Noun;First.",
		"",
		"not a valid line",
		"beta;;Noun;Second.",
	}, "\n")

	out := make(chan dal.WordEntry, 10)
	err := Parse(context.Background(), io.NopCloser(strings.NewReader(input)), out)

	var parsingErr *ParsingError
	if !errors.As(err, &parsingErr) {
		t.Fatalf("Parse() = %v, want ParsingError", err)
	}
	if len(parsingErr.InvalidLines) != 1 || parsingErr.InvalidLines[0] != 3 {
		t.Errorf("InvalidLines = %v, want [3]", parsingErr.InvalidLines)
	}

	var entries []dal.WordEntry
	for entry := range out {
		entries = append(entries, entry)
	}
	if len(entries) != 2 {
		t.Fatalf("parsed %d entries, want 2", len(entries))
	}
	if entries[0].Word != "alpha" || entries[1].Word != "beta" {
		t.Errorf("entries = %+v", entries)
	}
}

func TestParseCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out := make(chan dal.WordEntry) // unbuffered, the writer must block
	err := Parse(ctx, io.NopCloser(strings.NewReader("alpha;;Noun;First.")), out)
	if err != nil {
		t.Errorf("Parse() with canceled context = %v, want nil", err)
	}
}

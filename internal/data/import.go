// Package data parses the semicolon-separated word list format used for bulk
// import and the /append command.
package data

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/lexibot/word-of-the-day-bot/internal/dal"
)

type ParsingError struct {
	InvalidLines []int
}

func (e *ParsingError) Error() string {
	return fmt.Sprintf("parsing error: invalidLines=%v", e.InvalidLines)
}

// ParseEntry parses one line of the form
//
//	[date;]word;ipa;part of speech;definition
//
// where date is YYYY-MM-DD. A line without a date yields an entry with an
// empty Date, which the caller assigns on append.
func ParseEntry(line string) (dal.WordEntry, error) {
	parts := strings.Split(line, ";")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	var date string
	switch len(parts) {
	case 4:
	case 5:
		date = parts[0]
		if _, err := time.Parse(dal.DateLayout, date); err != nil {
			return dal.WordEntry{}, fmt.Errorf("invalid date %q", date)
		}
		parts = parts[1:]
	default:
		return dal.WordEntry{}, fmt.Errorf("expected 4 or 5 fields, got %d", len(parts))
	}

	if parts[0] == "" || parts[3] == "" {
		return dal.WordEntry{}, fmt.Errorf("word and definition are required")
	}

	return dal.WordEntry{
		Date:         date,
		Word:         parts[0],
		IPA:          parts[1],
		PartOfSpeech: parts[2],
		Definition:   parts[3],
	}, nil
}

// Parse streams entries from a word list, one per line. Lines that do not
// parse are skipped and reported together as a ParsingError after the rest of
// the file has been delivered.
func Parse(ctx context.Context, in io.ReadCloser, out chan<- dal.WordEntry) error {
	defer close(out)
	defer in.Close()

	scanner := bufio.NewScanner(in)
	invalidLines := make([]int, 0, 10)
	linNum := 0
	for scanner.Scan() {
		linNum++
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}

		entry, err := ParseEntry(line)
		if err != nil {
			invalidLines = append(invalidLines, linNum)
			continue
		}

		select {
		case <-ctx.Done():
			return nil
		case out <- entry: // continue
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scan file: %w", err)
	}
	if len(invalidLines) > 0 {
		return &ParsingError{InvalidLines: invalidLines}
	}

	return nil
}

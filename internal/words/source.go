// Package words is the read side of the word-of-the-day content table, with a
// short-lived cache in front so a tick serving many subscribers hits the
// database once per date.
package words

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/lexibot/word-of-the-day-bot/internal/dal"
	"github.com/lexibot/word-of-the-day-bot/pkg/cache"
)

const cacheTTL = 5 * time.Minute

type (
	Cache interface {
		Get(key string) (*dal.WordEntry, bool)
		Set(key string, value *dal.WordEntry, ttl time.Duration)
	}

	Source struct {
		repo  dal.WordRepository
		cache Cache
		log   *slog.Logger
	}
)

func NewSource(repo dal.WordRepository, log *slog.Logger) *Source {
	return &Source{
		repo:  repo,
		cache: cache.NewInMemory[*dal.WordEntry](),
		log:   log,
	}
}

// WordForDate returns the entry for a calendar date, or nil when the date has
// no word. Misses are cached too: a date without an entry does not trigger a
// query per subscriber.
func (s *Source) WordForDate(ctx context.Context, date string) (*dal.WordEntry, error) {
	if entry, ok := s.cache.Get(date); ok {
		return entry, nil
	}

	entry, err := s.repo.FindWordByDate(ctx, date)
	if err != nil {
		if errors.Is(err, dal.ErrNotFound) {
			s.cache.Set(date, nil, cacheTTL)
			return nil, nil
		}
		return nil, fmt.Errorf("find word by date: %w", err)
	}

	s.cache.Set(date, entry, cacheTTL)
	return entry, nil
}

// FindDates lists the dates a word was (or is scheduled to be) published on.
func (s *Source) FindDates(ctx context.Context, word string) ([]string, error) {
	dates, err := s.repo.FindWordDates(ctx, word)
	if err != nil {
		return nil, fmt.Errorf("find word dates: %w", err)
	}
	return dates, nil
}

// Append stores a new entry. An empty date assigns the day after the latest
// dated entry, or tomorrow when the table is empty, so sequential appends
// build an unbroken run of days.
func (s *Source) Append(ctx context.Context, entry dal.WordEntry) (dal.WordEntry, error) {
	if entry.Date == "" {
		next, err := s.nextFreeDate(ctx)
		if err != nil {
			return dal.WordEntry{}, err
		}
		entry.Date = next
	} else if _, err := time.Parse(dal.DateLayout, entry.Date); err != nil {
		return dal.WordEntry{}, fmt.Errorf("invalid date %q: %w", entry.Date, err)
	}

	if err := s.repo.InsertWordEntry(ctx, entry); err != nil {
		return dal.WordEntry{}, fmt.Errorf("insert word entry: %w", err)
	}
	s.cache.Set(entry.Date, &entry, cacheTTL)

	s.log.InfoContext(ctx, "word entry appended", "date", entry.Date, "word", entry.Word)
	return entry, nil
}

func (s *Source) nextFreeDate(ctx context.Context) (string, error) {
	latest, err := s.repo.LatestWordDate(ctx)
	if err != nil {
		if errors.Is(err, dal.ErrNotFound) {
			return time.Now().UTC().AddDate(0, 0, 1).Format(dal.DateLayout), nil
		}
		return "", fmt.Errorf("latest word date: %w", err)
	}

	t, err := time.Parse(dal.DateLayout, latest)
	if err != nil {
		return "", fmt.Errorf("parse latest date %q: %w", latest, err)
	}
	return t.AddDate(0, 0, 1).Format(dal.DateLayout), nil
}

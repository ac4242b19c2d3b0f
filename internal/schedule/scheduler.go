// Package schedule runs the delivery engine: a minute-aligned tick loop that
// computes which subscribers are due in their own timezone, and a dispatcher
// that delivers to them with bounded concurrency and failure handling.
package schedule

import (
	"context"
	"log/slog"
	"time"

	"github.com/lexibot/word-of-the-day-bot/internal/dal"
	"github.com/lexibot/word-of-the-day-bot/internal/message"
)

type (
	WordSource interface {
		WordForDate(ctx context.Context, date string) (*dal.WordEntry, error)
	}

	SubscriberSource interface {
		Snapshot() []dal.Subscriber
	}

	BatchDispatcher interface {
		Dispatch(ctx context.Context, batch []Delivery)
	}

	// Delivery is one rendered message bound for one subscriber.
	Delivery struct {
		Subscriber dal.Subscriber
		Text       string
	}

	Scheduler struct {
		subscribers SubscriberSource
		words       WordSource
		dispatcher  BatchDispatcher
		log         *slog.Logger
	}
)

func NewScheduler(subscribers SubscriberSource, words WordSource, dispatcher BatchDispatcher, log *slog.Logger) *Scheduler {
	return &Scheduler{
		subscribers: subscribers,
		words:       words,
		dispatcher:  dispatcher,
		log:         log,
	}
}

// Run ticks once per wall-clock minute until the context is canceled. Each
// tick sleeps until the next minute boundary rather than a fixed interval, so
// ticks do not accumulate skew. Dispatching runs off the loop goroutine: a
// slow batch never delays the next tick.
func (s *Scheduler) Run(ctx context.Context) {
	s.log.InfoContext(ctx, "scheduler started")
	defer s.log.InfoContext(ctx, "scheduler stopped")

	for {
		now := time.Now()
		next := now.Truncate(time.Minute).Add(time.Minute)

		select {
		case <-ctx.Done():
			return
		case <-time.After(next.Sub(now)):
		}

		s.tick(ctx, next)
	}
}

func (s *Scheduler) tick(ctx context.Context, tick time.Time) {
	defer func() {
		if r := recover(); r != nil {
			s.log.ErrorContext(ctx, "panic in scheduler tick", "error", r)
		}
	}()

	due := DueSet(tick, s.subscribers.Snapshot(), s.log)
	if len(due) == 0 {
		return
	}

	batch := make([]Delivery, 0, len(due))
	for _, sub := range due {
		local := tick.In(locationOf(sub, s.log))
		entry, err := s.words.WordForDate(ctx, local.Format(dal.DateLayout))
		if err != nil {
			s.log.ErrorContext(ctx, "failed to fetch word entry",
				"identity", sub.Identity.Key(), "date", local.Format(dal.DateLayout), "error", err)
			entry = nil
		}
		batch = append(batch, Delivery{
			Subscriber: sub,
			Text:       message.Render(sub.Prefs, entry, local),
		})
	}

	s.log.InfoContext(ctx, "dispatching due set", "count", len(batch))
	go s.dispatcher.Dispatch(ctx, batch)
}

// DueSet returns the subscribers whose scheduled minute for the current
// weekday matches the tick instant, both evaluated on the subscriber's own
// wall clock. Local time is re-derived from the UTC instant on every call, so
// DST shifts and fractional offsets need no special handling.
func DueSet(tick time.Time, subs []dal.Subscriber, log *slog.Logger) []dal.Subscriber {
	due := make([]dal.Subscriber, 0)
	for _, sub := range subs {
		local := tick.In(locationOf(sub, log))
		minute := local.Hour()*60 + local.Minute()
		if sub.Schedule[local.Weekday()] == minute {
			due = append(due, sub)
		}
	}
	return due
}

// locationOf resolves the subscriber's timezone, falling back to UTC for rows
// whose stored name no longer loads.
func locationOf(sub dal.Subscriber, log *slog.Logger) *time.Location {
	loc, err := time.LoadLocation(sub.Timezone)
	if err != nil {
		log.Warn("unknown subscriber timezone, defaulting to UTC",
			"identity", sub.Identity.Key(), "timezone", sub.Timezone)
		return time.UTC
	}
	return loc
}

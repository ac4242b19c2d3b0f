// Package subscription holds the registry of delivery targets: a durable
// repository mirrored in memory so the scheduler can scan every subscriber
// once a minute without touching storage.
package subscription

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/lexibot/word-of-the-day-bot/internal/dal"
)

const minutesPerDay = 24 * 60

var (
	ErrAlreadySubscribed = errors.New("already subscribed")
	ErrNotSubscribed     = errors.New("not subscribed")
	ErrGroupLimitReached = errors.New("group subscription limit reached")
	ErrInvalidIdentity   = errors.New("identity must be either a user or a group channel")
	ErrInvalidTimezone   = errors.New("unknown timezone")
)

type Store struct {
	repo     dal.SubscriberRepository
	groupCap int

	mx     sync.RWMutex
	mirror map[string]dal.Subscriber

	log *slog.Logger
}

// NewStore loads all subscription records into the in-memory mirror.
func NewStore(ctx context.Context, repo dal.SubscriberRepository, groupCap int, log *slog.Logger) (*Store, error) {
	subs, err := repo.FindAllSubscribers(ctx)
	if err != nil {
		return nil, fmt.Errorf("load subscribers: %w", err)
	}

	mirror := make(map[string]dal.Subscriber, len(subs))
	for _, sub := range subs {
		mirror[sub.Identity.Key()] = sub
	}
	log.InfoContext(ctx, "subscriber store loaded", "count", len(mirror))

	return &Store{
		repo:     repo,
		groupCap: groupCap,
		mirror:   mirror,
		log:      log,
	}, nil
}

func (s *Store) IsSubscribed(id dal.Identity) bool {
	s.mx.RLock()
	defer s.mx.RUnlock()

	_, ok := s.mirror[id.Key()]
	return ok
}

func (s *Store) Get(id dal.Identity) (dal.Subscriber, bool) {
	s.mx.RLock()
	defer s.mx.RUnlock()

	sub, ok := s.mirror[id.Key()]
	return sub, ok
}

// Snapshot returns a copy of all records at call time. Mutations after the
// call do not affect the returned slice.
func (s *Store) Snapshot() []dal.Subscriber {
	s.mx.RLock()
	defer s.mx.RUnlock()

	res := make([]dal.Subscriber, 0, len(s.mirror))
	for _, sub := range s.mirror {
		res = append(res, sub)
	}
	return res
}

// Subscribe registers a new target with default settings. Re-subscribing an
// existing identity fails with ErrAlreadySubscribed; a channel identity is
// also rejected when its group already holds groupCap subscriptions.
func (s *Store) Subscribe(ctx context.Context, id dal.Identity) error {
	if !id.Valid() {
		return ErrInvalidIdentity
	}

	s.mx.Lock()
	defer s.mx.Unlock()

	if _, ok := s.mirror[id.Key()]; ok {
		return ErrAlreadySubscribed
	}
	if id.IsChannel() && s.groupCap > 0 && s.countForGroupLocked(id.GroupID) >= s.groupCap {
		return ErrGroupLimitReached
	}

	sub := dal.DefaultSubscriber(id)
	sub.CreatedAt = time.Now()
	if err := s.repo.InsertSubscriber(ctx, sub); err != nil {
		return fmt.Errorf("insert subscriber: %w", err)
	}
	s.mirror[id.Key()] = sub

	s.log.InfoContext(ctx, "subscribed", "identity", id.Key())
	return nil
}

// Unsubscribe removes the record. Removing an identity that is not subscribed
// is a no-op.
func (s *Store) Unsubscribe(ctx context.Context, id dal.Identity) error {
	s.mx.Lock()
	defer s.mx.Unlock()

	if _, ok := s.mirror[id.Key()]; !ok {
		return nil
	}

	if err := s.repo.DeleteSubscriber(ctx, id); err != nil {
		return fmt.Errorf("delete subscriber: %w", err)
	}
	delete(s.mirror, id.Key())

	s.log.InfoContext(ctx, "unsubscribed", "identity", id.Key())
	return nil
}

// Configure applies a partial settings update. Fields the patch does not carry
// keep their stored value. An invalid timezone rejects the whole call without
// mutating anything; schedule minutes are canonicalized into [0, 1440).
func (s *Store) Configure(ctx context.Context, id dal.Identity, patch dal.SubscriberPatch) error {
	if patch.Timezone != nil {
		if _, err := time.LoadLocation(*patch.Timezone); err != nil {
			return fmt.Errorf("%w: %q", ErrInvalidTimezone, *patch.Timezone)
		}
	}
	if patch.Schedule != nil {
		canonical := *patch.Schedule
		for i, m := range canonical {
			canonical[i] = ((m % minutesPerDay) + minutesPerDay) % minutesPerDay
		}
		patch.Schedule = &canonical
	}

	s.mx.Lock()
	defer s.mx.Unlock()

	current, ok := s.mirror[id.Key()]
	if !ok {
		return ErrNotSubscribed
	}
	if patch.IsEmpty() {
		return nil
	}

	if err := s.repo.UpdateSubscriber(ctx, id, patch); err != nil {
		return fmt.Errorf("update subscriber: %w", err)
	}
	s.mirror[id.Key()] = patch.Apply(current)

	s.log.InfoContext(ctx, "configured", "identity", id.Key())
	return nil
}

// StartRefresh reloads the mirror from the repository on the given interval
// until ctx is done. Writes made by another process sharing the database show
// up here after at most one interval.
func (s *Store) StartRefresh(ctx context.Context, interval time.Duration) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-time.After(interval):
			subs, err := s.repo.FindAllSubscribers(ctx)
			if err != nil {
				s.log.ErrorContext(ctx, "failed to refresh subscriber mirror", "error", err)
				continue
			}

			mirror := make(map[string]dal.Subscriber, len(subs))
			for _, sub := range subs {
				mirror[sub.Identity.Key()] = sub
			}

			s.mx.Lock()
			s.mirror = mirror
			s.mx.Unlock()
		}
	}
}

func (s *Store) CountForGroup(groupID int64) int {
	s.mx.RLock()
	defer s.mx.RUnlock()

	return s.countForGroupLocked(groupID)
}

func (s *Store) countForGroupLocked(groupID int64) int {
	count := 0
	for _, sub := range s.mirror {
		if sub.Identity.GroupID == groupID {
			count++
		}
	}
	return count
}

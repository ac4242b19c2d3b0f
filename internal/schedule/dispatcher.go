package schedule

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/lexibot/word-of-the-day-bot/internal/dal"
	"github.com/lexibot/word-of-the-day-bot/internal/transport"
)

const (
	// DefaultSendConcurrency stays below the platform's requests-per-second
	// ceiling.
	DefaultSendConcurrency = 45
	DefaultSendTimeout     = 30 * time.Second
)

type (
	Unsubscriber interface {
		Unsubscribe(ctx context.Context, id dal.Identity) error
	}

	// Dispatcher delivers rendered messages through the transport. Failures
	// are classified: permanent ones unsubscribe the recipient, throttling
	// gets a single bounded retry, anything else is skipped until the next
	// scheduled occurrence.
	Dispatcher struct {
		transport   transport.Transport
		store       Unsubscriber
		sem         *semaphore.Weighted
		sendTimeout time.Duration
		sleep       func(ctx context.Context, d time.Duration) error
		log         *slog.Logger
	}

	DispatcherOption func(*Dispatcher)
)

func WithSendTimeout(d time.Duration) DispatcherOption {
	return func(dp *Dispatcher) {
		dp.sendTimeout = d
	}
}

func WithConcurrency(n int64) DispatcherOption {
	return func(dp *Dispatcher) {
		dp.sem = semaphore.NewWeighted(n)
	}
}

// withSleep replaces the throttle wait, used by tests to avoid real sleeps.
func withSleep(sleep func(ctx context.Context, d time.Duration) error) DispatcherOption {
	return func(dp *Dispatcher) {
		dp.sleep = sleep
	}
}

func NewDispatcher(t transport.Transport, store Unsubscriber, log *slog.Logger, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		transport:   t,
		store:       store,
		sem:         semaphore.NewWeighted(DefaultSendConcurrency),
		sendTimeout: DefaultSendTimeout,
		sleep:       sleepCtx,
		log:         log,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dispatch delivers one batch. Duplicate recipients within the batch are sent
// to once. The call blocks until every delivery attempt has finished; callers
// that must not wait run it on its own goroutine.
func (d *Dispatcher) Dispatch(ctx context.Context, batch []Delivery) {
	seen := make(map[string]struct{}, len(batch))
	var wg sync.WaitGroup

	for _, delivery := range batch {
		key := delivery.Subscriber.Identity.Key()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}

		if err := d.sem.Acquire(ctx, 1); err != nil {
			d.log.WarnContext(ctx, "dispatch canceled while waiting for send slot", "error", err)
			return
		}

		wg.Add(1)
		go func(delivery Delivery) {
			defer wg.Done()
			defer d.sem.Release(1)
			d.deliver(ctx, delivery)
		}(delivery)
	}

	wg.Wait()
}

func (d *Dispatcher) deliver(ctx context.Context, delivery Delivery) {
	defer func() {
		if r := recover(); r != nil {
			d.log.ErrorContext(ctx, "panic in delivery", "error", r,
				"identity", delivery.Subscriber.Identity.Key())
		}
	}()

	id := delivery.Subscriber.Identity
	err := d.send(ctx, delivery)
	if err == nil {
		return
	}

	var sendErr *transport.SendError
	if !errors.As(err, &sendErr) {
		d.log.WarnContext(ctx, "delivery failed, skipping", "identity", id.Key(), "error", err)
		return
	}

	switch {
	case sendErr.Permanent():
		d.log.WarnContext(ctx, "recipient unreachable, unsubscribing",
			"identity", id.Key(), "kind", sendErr.Kind.String())
		if err := d.store.Unsubscribe(ctx, id); err != nil {
			d.log.ErrorContext(ctx, "failed to unsubscribe unreachable recipient",
				"identity", id.Key(), "error", err)
		}
	case sendErr.Kind == transport.ErrorRateLimited:
		d.retryAfterThrottle(ctx, delivery, sendErr.RetryAfter)
	default:
		d.log.WarnContext(ctx, "delivery failed, skipping", "identity", id.Key(), "error", err)
	}
}

// retryAfterThrottle waits the platform-specified delay and retries exactly
// once. Any failure of the retry, of any kind, is a skip.
func (d *Dispatcher) retryAfterThrottle(ctx context.Context, delivery Delivery, wait time.Duration) {
	id := delivery.Subscriber.Identity
	d.log.InfoContext(ctx, "throttled, retrying after delay", "identity", id.Key(), "retry_after", wait)

	if err := d.sleep(ctx, wait); err != nil {
		return
	}
	if err := d.send(ctx, delivery); err != nil {
		d.log.WarnContext(ctx, "retry after throttle failed, skipping",
			"identity", id.Key(), "error", err)
	}
}

func (d *Dispatcher) send(ctx context.Context, delivery Delivery) error {
	ctx, cancel := context.WithTimeout(ctx, d.sendTimeout)
	defer cancel()

	sub := delivery.Subscriber
	if sub.Identity.IsUser() {
		return d.transport.SendDirect(ctx, sub.Identity.UserID, delivery.Text, sub.Prefs.Silent)
	}
	return d.transport.SendChannel(ctx, sub.Identity.GroupID, sub.Identity.ChannelID, delivery.Text)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

package subscription

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/lexibot/word-of-the-day-bot/internal/dal"
)

type fakeRepo struct {
	subs map[string]dal.Subscriber

	failInsert bool
	failUpdate bool
	failDelete bool
}

var errRepo = errors.New("repo failure")

func newFakeRepo(subs ...dal.Subscriber) *fakeRepo {
	m := make(map[string]dal.Subscriber, len(subs))
	for _, sub := range subs {
		m[sub.Identity.Key()] = sub
	}
	return &fakeRepo{subs: m}
}

func (r *fakeRepo) InsertSubscriber(_ context.Context, sub dal.Subscriber) error {
	if r.failInsert {
		return errRepo
	}
	r.subs[sub.Identity.Key()] = sub
	return nil
}

func (r *fakeRepo) DeleteSubscriber(_ context.Context, id dal.Identity) error {
	if r.failDelete {
		return errRepo
	}
	delete(r.subs, id.Key())
	return nil
}

func (r *fakeRepo) UpdateSubscriber(_ context.Context, id dal.Identity, patch dal.SubscriberPatch) error {
	if r.failUpdate {
		return errRepo
	}
	sub, ok := r.subs[id.Key()]
	if !ok {
		return dal.ErrNotFound
	}
	r.subs[id.Key()] = patch.Apply(sub)
	return nil
}

func (r *fakeRepo) FindSubscriber(_ context.Context, id dal.Identity) (*dal.Subscriber, error) {
	sub, ok := r.subs[id.Key()]
	if !ok {
		return nil, dal.ErrNotFound
	}
	return &sub, nil
}

func (r *fakeRepo) FindAllSubscribers(_ context.Context) ([]dal.Subscriber, error) {
	res := make([]dal.Subscriber, 0, len(r.subs))
	for _, sub := range r.subs {
		res = append(res, sub)
	}
	return res, nil
}

func newTestStore(t *testing.T, repo *fakeRepo, groupCap int) *Store {
	t.Helper()
	store, err := NewStore(context.Background(), repo, groupCap, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("NewStore() failed: %v", err)
	}
	return store
}

func TestStoreSubscribe(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	store := newTestStore(t, repo, 0)
	id := dal.UserIdentity(42)

	if err := store.Subscribe(ctx, id); err != nil {
		t.Fatalf("Subscribe() failed: %v", err)
	}
	if !store.IsSubscribed(id) {
		t.Error("IsSubscribed() = false after Subscribe()")
	}

	sub, ok := store.Get(id)
	if !ok {
		t.Fatal("Get() did not find subscriber")
	}
	if sub.Timezone != "UTC" {
		t.Errorf("default timezone = %q, want UTC", sub.Timezone)
	}
	for day, minutes := range sub.Schedule {
		if minutes != 0 {
			t.Errorf("default schedule day %d = %d, want 0", day, minutes)
		}
	}
	if !sub.Prefs.IncludeDate || !sub.Prefs.IncludeIPA {
		t.Errorf("default prefs = %+v, want date and ipa included", sub.Prefs)
	}

	if err := store.Subscribe(ctx, id); !errors.Is(err, ErrAlreadySubscribed) {
		t.Errorf("second Subscribe() = %v, want ErrAlreadySubscribed", err)
	}
}

func TestStoreSubscribeInvalidIdentity(t *testing.T) {
	store := newTestStore(t, newFakeRepo(), 0)

	if err := store.Subscribe(context.Background(), dal.Identity{}); !errors.Is(err, ErrInvalidIdentity) {
		t.Errorf("Subscribe(empty identity) = %v, want ErrInvalidIdentity", err)
	}
	both := dal.Identity{UserID: 1, GroupID: 2, ChannelID: 3}
	if err := store.Subscribe(context.Background(), both); !errors.Is(err, ErrInvalidIdentity) {
		t.Errorf("Subscribe(user and channel) = %v, want ErrInvalidIdentity", err)
	}
}

func TestStoreSubscribeGroupCap(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, newFakeRepo(), 2)

	if err := store.Subscribe(ctx, dal.ChannelIdentity(-100, 1)); err != nil {
		t.Fatalf("Subscribe() failed: %v", err)
	}
	if err := store.Subscribe(ctx, dal.ChannelIdentity(-100, 2)); err != nil {
		t.Fatalf("Subscribe() failed: %v", err)
	}
	if err := store.Subscribe(ctx, dal.ChannelIdentity(-100, 3)); !errors.Is(err, ErrGroupLimitReached) {
		t.Errorf("Subscribe() over cap = %v, want ErrGroupLimitReached", err)
	}

	// another group is unaffected
	if err := store.Subscribe(ctx, dal.ChannelIdentity(-200, 1)); err != nil {
		t.Errorf("Subscribe() to another group failed: %v", err)
	}
}

func TestStoreUnsubscribeIdempotent(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, newFakeRepo(), 0)
	id := dal.UserIdentity(42)

	if err := store.Subscribe(ctx, id); err != nil {
		t.Fatalf("Subscribe() failed: %v", err)
	}

	if err := store.Unsubscribe(ctx, id); err != nil {
		t.Fatalf("Unsubscribe() failed: %v", err)
	}
	if store.IsSubscribed(id) {
		t.Error("IsSubscribed() = true after Unsubscribe()")
	}
	if err := store.Unsubscribe(ctx, id); err != nil {
		t.Errorf("second Unsubscribe() = %v, want nil", err)
	}
}

func TestStoreConfigurePartial(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, newFakeRepo(), 0)
	id := dal.UserIdentity(42)

	if err := store.Subscribe(ctx, id); err != nil {
		t.Fatalf("Subscribe() failed: %v", err)
	}

	tz := "America/New_York"
	off := false
	if err := store.Configure(ctx, id, dal.SubscriberPatch{Timezone: &tz, IncludeIPA: &off}); err != nil {
		t.Fatalf("Configure() failed: %v", err)
	}

	sub, _ := store.Get(id)
	if sub.Timezone != tz {
		t.Errorf("timezone = %q, want %q", sub.Timezone, tz)
	}
	if sub.Prefs.IncludeIPA {
		t.Error("IncludeIPA was not patched")
	}
	if !sub.Prefs.IncludeDate {
		t.Error("IncludeDate changed although the patch did not carry it")
	}
}

func TestStoreConfigureInvalidTimezone(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, newFakeRepo(), 0)
	id := dal.UserIdentity(42)

	if err := store.Subscribe(ctx, id); err != nil {
		t.Fatalf("Subscribe() failed: %v", err)
	}

	tz := "Not/AZone"
	schedule := [7]int{60, 60, 60, 60, 60, 60, 60}
	err := store.Configure(ctx, id, dal.SubscriberPatch{Timezone: &tz, Schedule: &schedule})
	if !errors.Is(err, ErrInvalidTimezone) {
		t.Fatalf("Configure() = %v, want ErrInvalidTimezone", err)
	}

	// the whole patch is rejected, including the valid schedule part
	sub, _ := store.Get(id)
	if sub.Timezone != "UTC" || sub.Schedule[0] != 0 {
		t.Errorf("subscriber mutated by rejected patch: %+v", sub)
	}
}

func TestStoreConfigureCanonicalizesSchedule(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, newFakeRepo(), 0)
	id := dal.UserIdentity(42)

	if err := store.Subscribe(ctx, id); err != nil {
		t.Fatalf("Subscribe() failed: %v", err)
	}

	schedule := [7]int{-60, 1440, 1500, 0, 2880, -1, 480}
	if err := store.Configure(ctx, id, dal.SubscriberPatch{Schedule: &schedule}); err != nil {
		t.Fatalf("Configure() failed: %v", err)
	}

	sub, _ := store.Get(id)
	want := [7]int{1380, 0, 60, 0, 0, 1439, 480}
	if sub.Schedule != want {
		t.Errorf("schedule = %v, want %v", sub.Schedule, want)
	}
}

func TestStoreConfigureNotSubscribed(t *testing.T) {
	store := newTestStore(t, newFakeRepo(), 0)

	tz := "UTC"
	err := store.Configure(context.Background(), dal.UserIdentity(1), dal.SubscriberPatch{Timezone: &tz})
	if !errors.Is(err, ErrNotSubscribed) {
		t.Errorf("Configure() = %v, want ErrNotSubscribed", err)
	}
}

func TestStoreMirrorUntouchedOnWriteFailure(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	store := newTestStore(t, repo, 0)
	id := dal.UserIdentity(42)

	repo.failInsert = true
	if err := store.Subscribe(ctx, id); err == nil {
		t.Fatal("Subscribe() succeeded although insert failed")
	}
	if store.IsSubscribed(id) {
		t.Error("mirror holds subscriber although insert failed")
	}

	repo.failInsert = false
	if err := store.Subscribe(ctx, id); err != nil {
		t.Fatalf("Subscribe() failed: %v", err)
	}

	repo.failUpdate = true
	tz := "Europe/Kyiv"
	if err := store.Configure(ctx, id, dal.SubscriberPatch{Timezone: &tz}); err == nil {
		t.Fatal("Configure() succeeded although update failed")
	}
	sub, _ := store.Get(id)
	if sub.Timezone != "UTC" {
		t.Error("mirror mutated although update failed")
	}

	repo.failDelete = true
	if err := store.Unsubscribe(ctx, id); err == nil {
		t.Fatal("Unsubscribe() succeeded although delete failed")
	}
	if !store.IsSubscribed(id) {
		t.Error("mirror dropped subscriber although delete failed")
	}
}

func TestStoreSnapshotIsCopy(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, newFakeRepo(), 0)

	if err := store.Subscribe(ctx, dal.UserIdentity(1)); err != nil {
		t.Fatalf("Subscribe() failed: %v", err)
	}

	snap := store.Snapshot()
	if len(snap) != 1 {
		t.Fatalf("Snapshot() returned %d records, want 1", len(snap))
	}

	if err := store.Unsubscribe(ctx, dal.UserIdentity(1)); err != nil {
		t.Fatalf("Unsubscribe() failed: %v", err)
	}
	if len(snap) != 1 {
		t.Error("snapshot changed after store mutation")
	}
}

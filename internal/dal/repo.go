package dal

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("not found")

type (
	// SubscriberPatch is a partial update: nil fields keep their stored value.
	SubscriberPatch struct {
		Timezone    *string
		Schedule    *[7]int
		IncludeDate *bool
		IncludeIPA  *bool
		DateOrder   *DateOrder
		DateStyle   *DateStyle
		Silent      *bool
	}

	SubscriberRepository interface {
		InsertSubscriber(ctx context.Context, sub Subscriber) error
		DeleteSubscriber(ctx context.Context, id Identity) error
		UpdateSubscriber(ctx context.Context, id Identity, patch SubscriberPatch) error
		FindSubscriber(ctx context.Context, id Identity) (*Subscriber, error)
		FindAllSubscribers(ctx context.Context) ([]Subscriber, error)
	}

	WordRepository interface {
		FindWordByDate(ctx context.Context, date string) (*WordEntry, error)
		FindWordDates(ctx context.Context, word string) ([]string, error)
		LatestWordDate(ctx context.Context) (string, error)
		InsertWordEntry(ctx context.Context, entry WordEntry) error
	}

	ConfigLinkRepository interface {
		InsertConfigLink(ctx context.Context, link ConfigLink) error
		FindConfigLink(ctx context.Context, token string) (*ConfigLink, error)
		DeleteConfigLink(ctx context.Context, token string) error
	}

	Repository interface {
		SubscriberRepository
		WordRepository
		ConfigLinkRepository
	}
)

// IsEmpty reports whether the patch would change nothing.
func (p SubscriberPatch) IsEmpty() bool {
	return p.Timezone == nil && p.Schedule == nil && p.IncludeDate == nil &&
		p.IncludeIPA == nil && p.DateOrder == nil && p.DateStyle == nil && p.Silent == nil
}

// Apply returns a copy of sub with the patch fields set.
func (p SubscriberPatch) Apply(sub Subscriber) Subscriber {
	if p.Timezone != nil {
		sub.Timezone = *p.Timezone
	}
	if p.Schedule != nil {
		sub.Schedule = *p.Schedule
	}
	if p.IncludeDate != nil {
		sub.Prefs.IncludeDate = *p.IncludeDate
	}
	if p.IncludeIPA != nil {
		sub.Prefs.IncludeIPA = *p.IncludeIPA
	}
	if p.DateOrder != nil {
		sub.Prefs.DateOrder = *p.DateOrder
	}
	if p.DateStyle != nil {
		sub.Prefs.DateStyle = *p.DateStyle
	}
	if p.Silent != nil {
		sub.Prefs.Silent = *p.Silent
	}
	return sub
}

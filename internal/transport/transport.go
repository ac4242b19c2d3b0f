// Package transport defines the send primitive the dispatcher delivers
// through, and the error taxonomy it reacts to.
package transport

import (
	"context"
	"fmt"
	"time"
)

const (
	// ErrorOther is any failure that is neither permanent nor throttling.
	ErrorOther ErrorKind = iota
	// ErrorForbidden means the recipient blocked the sender or the sender
	// lacks permission to post. The recipient will never be reachable again.
	ErrorForbidden
	// ErrorNotFound means the recipient no longer exists (deleted account,
	// deleted chat or channel).
	ErrorNotFound
	// ErrorRateLimited is platform throttling; RetryAfter carries the wait
	// the platform asked for.
	ErrorRateLimited
)

type (
	ErrorKind int

	SendError struct {
		Kind       ErrorKind
		RetryAfter time.Duration
		Cause      error
	}

	Transport interface {
		SendDirect(ctx context.Context, userID int64, text string, silent bool) error
		SendChannel(ctx context.Context, groupID, channelID int64, text string) error
	}
)

func (k ErrorKind) String() string {
	switch k {
	case ErrorForbidden:
		return "forbidden"
	case ErrorNotFound:
		return "not_found"
	case ErrorRateLimited:
		return "rate_limited"
	default:
		return "other"
	}
}

func (e *SendError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("send failed: %s", e.Kind)
	}
	return fmt.Sprintf("send failed: %s: %v", e.Kind, e.Cause)
}

func (e *SendError) Unwrap() error {
	return e.Cause
}

// Permanent reports whether the recipient can never be reached again.
func (e *SendError) Permanent() bool {
	return e.Kind == ErrorForbidden || e.Kind == ErrorNotFound
}

package sql

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/lexibot/word-of-the-day-bot/internal/dal"
)

const schema = `
CREATE TABLE IF NOT EXISTS subscribers (
	user_id INTEGER NOT NULL DEFAULT 0,
	group_id INTEGER NOT NULL DEFAULT 0,
	channel_id INTEGER NOT NULL DEFAULT 0,
	timezone TEXT NOT NULL DEFAULT 'UTC',
	sched_sunday INTEGER NOT NULL DEFAULT 0,
	sched_monday INTEGER NOT NULL DEFAULT 0,
	sched_tuesday INTEGER NOT NULL DEFAULT 0,
	sched_wednesday INTEGER NOT NULL DEFAULT 0,
	sched_thursday INTEGER NOT NULL DEFAULT 0,
	sched_friday INTEGER NOT NULL DEFAULT 0,
	sched_saturday INTEGER NOT NULL DEFAULT 0,
	include_date BOOLEAN NOT NULL DEFAULT 1,
	include_ipa BOOLEAN NOT NULL DEFAULT 1,
	date_order INTEGER NOT NULL DEFAULT 0,
	date_style INTEGER NOT NULL DEFAULT 1,
	silent BOOLEAN NOT NULL DEFAULT 0,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	UNIQUE (user_id, group_id, channel_id)
);

CREATE TABLE IF NOT EXISTS words (
	date TEXT PRIMARY KEY,
	word TEXT NOT NULL,
	ipa TEXT NOT NULL,
	part_of_speech TEXT NOT NULL,
	definition TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS config_links (
	token TEXT PRIMARY KEY,
	user_id INTEGER NOT NULL DEFAULT 0,
	group_id INTEGER NOT NULL DEFAULT 0,
	channel_id INTEGER NOT NULL DEFAULT 0,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	expires_at TIMESTAMP NOT NULL
);
`

type (
	Client interface {
		ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
		QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
		QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	}

	Repository struct {
		client Client
		log    *slog.Logger
	}
)

// NewRepository creates the SQL-backed repository and starts the background
// cleanup job for expired configuration links.
func NewRepository(ctx context.Context, client Client, log *slog.Logger) *Repository {
	res := &Repository{client: client, log: log}
	go res.cleanupConfigLinksJob(ctx)
	return res
}

// Bootstrap creates the schema if it does not exist yet.
func (r *Repository) Bootstrap(ctx context.Context) error {
	if _, err := r.client.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

func (r *Repository) cleanupConfigLinksJob(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-time.After(time.Hour):
			query := dal.DeleteExpiredConfigLinksQuery()

			sql, args, err := query.ToSql()
			if err != nil {
				r.log.ErrorContext(ctx, "failed to build cleanup query", "error", err)
				continue
			}

			if _, err = r.client.ExecContext(ctx, sql, args...); err != nil {
				r.log.ErrorContext(ctx, "failed to cleanup config links", "error", err)
			}
		}
	}
}

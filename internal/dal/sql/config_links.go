package sql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lexibot/word-of-the-day-bot/internal/dal"
)

func (r *Repository) InsertConfigLink(ctx context.Context, link dal.ConfigLink) error {
	if link.Token == "" {
		return errors.New("token is required")
	}
	if link.ExpiresAt.IsZero() {
		return errors.New("expires at is required")
	}

	query := dal.InsertConfigLinkQuery(link)

	sql, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("build insert query: %w", err)
	}

	if _, err = r.client.ExecContext(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert config link: %w", err)
	}
	return nil
}

func (r *Repository) FindConfigLink(ctx context.Context, token string) (*dal.ConfigLink, error) {
	query := dal.FindConfigLinkQuery(token)

	sqlQuery, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select query: %w", err)
	}

	var (
		link      dal.ConfigLink
		createdAt time.Time
		expiresAt time.Time
	)
	err = r.client.QueryRowContext(ctx, sqlQuery, args...).
		Scan(&link.Token, &link.Identity.UserID, &link.Identity.GroupID, &link.Identity.ChannelID, &createdAt, &expiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, dal.ErrNotFound
		}
		return nil, fmt.Errorf("find config link: %w", err)
	}
	link.CreatedAt = createdAt
	link.ExpiresAt = expiresAt

	return &link, nil
}

func (r *Repository) DeleteConfigLink(ctx context.Context, token string) error {
	query := dal.DeleteConfigLinkQuery(token)

	sql, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("build delete query: %w", err)
	}

	if _, err = r.client.ExecContext(ctx, sql, args...); err != nil {
		return fmt.Errorf("delete config link: %w", err)
	}
	return nil
}

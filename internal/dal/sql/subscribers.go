package sql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lexibot/word-of-the-day-bot/internal/dal"
)

func (r *Repository) InsertSubscriber(ctx context.Context, sub dal.Subscriber) error {
	if !sub.Identity.Valid() {
		return errors.New("identity must be either a user or a group channel")
	}

	query := dal.InsertSubscriberQuery(sub)

	sql, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("build insert query: %w", err)
	}

	if _, err = r.client.ExecContext(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert subscriber: %w", err)
	}
	return nil
}

func (r *Repository) DeleteSubscriber(ctx context.Context, id dal.Identity) error {
	query := dal.DeleteSubscriberQuery(id)

	sql, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("build delete query: %w", err)
	}

	if _, err = r.client.ExecContext(ctx, sql, args...); err != nil {
		return fmt.Errorf("delete subscriber: %w", err)
	}
	return nil
}

func (r *Repository) UpdateSubscriber(ctx context.Context, id dal.Identity, patch dal.SubscriberPatch) error {
	if patch.IsEmpty() {
		return nil
	}

	query := dal.UpdateSubscriberQuery(id, patch)

	sql, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("build update query: %w", err)
	}

	if _, err = r.client.ExecContext(ctx, sql, args...); err != nil {
		return fmt.Errorf("update subscriber: %w", err)
	}
	return nil
}

func (r *Repository) FindSubscriber(ctx context.Context, id dal.Identity) (*dal.Subscriber, error) {
	query := dal.FindSubscriberQuery(id)

	sqlQuery, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select query: %w", err)
	}

	sub, err := hydrateSubscriber(r.client.QueryRowContext(ctx, sqlQuery, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, dal.ErrNotFound
		}
		return nil, fmt.Errorf("find subscriber: %w", err)
	}

	return sub, nil
}

func (r *Repository) FindAllSubscribers(ctx context.Context) ([]dal.Subscriber, error) {
	query := dal.FindAllSubscribersQuery()

	sqlQuery, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select query: %w", err)
	}

	rows, err := r.client.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("find subscribers: %w", err)
	}
	defer rows.Close()

	res := make([]dal.Subscriber, 0)
	for rows.Next() {
		sub, err := hydrateSubscriber(rows)
		if err != nil {
			return nil, fmt.Errorf("scan subscriber: %w", err)
		}
		res = append(res, *sub)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate subscribers: %w", rows.Err())
	}

	return res, nil
}

type scannable interface {
	Scan(dest ...any) error
}

func hydrateSubscriber(row scannable) (*dal.Subscriber, error) {
	var (
		sub       dal.Subscriber
		createdAt time.Time
	)
	err := row.Scan(
		&sub.Identity.UserID, &sub.Identity.GroupID, &sub.Identity.ChannelID, &sub.Timezone,
		&sub.Schedule[time.Sunday], &sub.Schedule[time.Monday], &sub.Schedule[time.Tuesday],
		&sub.Schedule[time.Wednesday], &sub.Schedule[time.Thursday], &sub.Schedule[time.Friday],
		&sub.Schedule[time.Saturday],
		&sub.Prefs.IncludeDate, &sub.Prefs.IncludeIPA, &sub.Prefs.DateOrder, &sub.Prefs.DateStyle,
		&sub.Prefs.Silent, &createdAt,
	)
	if err != nil {
		return nil, err
	}
	sub.CreatedAt = createdAt
	return &sub, nil
}

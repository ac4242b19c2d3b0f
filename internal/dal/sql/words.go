package sql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lexibot/word-of-the-day-bot/internal/dal"
)

func (r *Repository) FindWordByDate(ctx context.Context, date string) (*dal.WordEntry, error) {
	query := dal.FindWordByDateQuery(date)

	sqlQuery, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select query: %w", err)
	}

	var entry dal.WordEntry
	err = r.client.QueryRowContext(ctx, sqlQuery, args...).
		Scan(&entry.Date, &entry.Word, &entry.IPA, &entry.PartOfSpeech, &entry.Definition)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, dal.ErrNotFound
		}
		return nil, fmt.Errorf("find word by date: %w", err)
	}

	return &entry, nil
}

func (r *Repository) FindWordDates(ctx context.Context, word string) ([]string, error) {
	query := dal.FindWordDatesQuery(word)

	sqlQuery, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select query: %w", err)
	}

	rows, err := r.client.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("find word dates: %w", err)
	}
	defer rows.Close()

	dates := make([]string, 0)
	for rows.Next() {
		var date string
		if err = rows.Scan(&date); err != nil {
			return nil, fmt.Errorf("scan word date: %w", err)
		}
		dates = append(dates, date)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate word dates: %w", rows.Err())
	}

	return dates, nil
}

func (r *Repository) LatestWordDate(ctx context.Context) (string, error) {
	query := dal.LatestWordDateQuery()

	sqlQuery, args, err := query.ToSql()
	if err != nil {
		return "", fmt.Errorf("build select query: %w", err)
	}

	var date sql.NullString
	if err = r.client.QueryRowContext(ctx, sqlQuery, args...).Scan(&date); err != nil {
		return "", fmt.Errorf("latest word date: %w", err)
	}
	if !date.Valid {
		return "", dal.ErrNotFound
	}

	return date.String, nil
}

func (r *Repository) InsertWordEntry(ctx context.Context, entry dal.WordEntry) error {
	query := dal.InsertWordEntryQuery(entry)

	sql, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("build insert query: %w", err)
	}

	if _, err = r.client.ExecContext(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert word entry: %w", err)
	}
	return nil
}

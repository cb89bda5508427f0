package queue

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// UpsertIfAbsent inserts a newly enumerated video. Videos already present
// keep their existing status and artifacts untouched, which is what makes
// re-enumeration on every run safe. It reports whether a row was inserted.
func (s *Store) UpsertIfAbsent(ctx context.Context, item Item) (bool, error) {
	if item.VideoID == "" {
		return false, errors.New("video id is empty")
	}
	status := item.Status
	if status == "" {
		status = StatusPending
	}
	timestamp := nowTimestamp()

	res, err := s.execWithRetry(
		ctx,
		`INSERT OR IGNORE INTO videos (
            video_id, url, title, duration, channel, status, created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		item.VideoID,
		item.URL,
		item.Title,
		item.DurationSec,
		item.Channel,
		status,
		timestamp,
		timestamp,
	)
	if err != nil {
		return false, fmt.Errorf("insert video: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

// GetByID fetches a video by identifier. Missing ids return nil.
func (s *Store) GetByID(ctx context.Context, videoID string) (*Item, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+itemColumns+` FROM videos WHERE video_id = ?`, videoID)
	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get video: %w", err)
	}
	return item, nil
}

// ItemsByStatus returns a channel's videos matching any of the provided
// statuses, shortest first so cheap items complete early and a partial run
// still makes visible progress.
func (s *Store) ItemsByStatus(ctx context.Context, channel string, statuses ...Status) ([]*Item, error) {
	if len(statuses) == 0 {
		return nil, nil
	}

	placeholders := makePlaceholders(len(statuses))
	args := make([]any, 0, len(statuses)+1)
	query := `SELECT ` + itemColumns + ` FROM videos WHERE status IN (` + placeholders + `)`
	for _, status := range statuses {
		args = append(args, status)
	}
	if channel != "" {
		query += ` AND channel = ?`
		args = append(args, channel)
	}
	query += ` ORDER BY duration ASC, video_id ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query by status: %w", err)
	}
	defer rows.Close()

	var items []*Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// List returns every video, optionally filtered by channel, ordered by
// creation time.
func (s *Store) List(ctx context.Context, channel string) ([]*Item, error) {
	query := `SELECT ` + itemColumns + ` FROM videos`
	var args []any
	if channel != "" {
		query += ` WHERE channel = ?`
		args = append(args, channel)
	}
	query += ` ORDER BY created_at, video_id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list videos: %w", err)
	}
	defer rows.Close()

	var items []*Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// Channels returns the distinct channel names present in the store.
func (s *Store) Channels(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT channel FROM videos WHERE channel != '' ORDER BY channel`)
	if err != nil {
		return nil, fmt.Errorf("list channels: %w", err)
	}
	defer rows.Close()

	var channels []string
	for rows.Next() {
		var channel string
		if err := rows.Scan(&channel); err != nil {
			return nil, err
		}
		channels = append(channels, channel)
	}
	return channels, rows.Err()
}

package queue

import (
	"context"
	"fmt"
)

// Stats aggregates per-status counts and duration totals, scoped to a channel
// when one is given.
func (s *Store) Stats(ctx context.Context, channel string) (Stats, error) {
	query := `SELECT status, COUNT(1), COALESCE(SUM(duration), 0) FROM videos`
	var args []any
	if channel != "" {
		query += ` WHERE channel = ?`
		args = append(args, channel)
	}
	query += ` GROUP BY status`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return Stats{}, fmt.Errorf("query stats: %w", err)
	}
	defer rows.Close()

	var stats Stats
	for rows.Next() {
		var (
			statusStr string
			count     int
			duration  int64
		)
		if err := rows.Scan(&statusStr, &count, &duration); err != nil {
			return Stats{}, err
		}
		stats.Total += count
		stats.TotalDurationSec += duration
		switch Status(statusStr) {
		case StatusPending:
			stats.Pending = count
		case StatusDownloading:
			stats.Downloading = count
		case StatusDownloaded:
			stats.Downloaded = count
		case StatusTranscribing:
			stats.Transcribing = count
		case StatusCompleted:
			stats.Completed = count
			stats.CompletedDurationSec = duration
		case StatusError:
			stats.Errored = count
		}
	}
	return stats, rows.Err()
}

// ResetChannel forces every one of a channel's videos back to pending and
// clears both recorded paths, so the next run redoes the whole channel from
// scratch. Pending rows never reference artifacts.
func (s *Store) ResetChannel(ctx context.Context, channel string) (int64, error) {
	query := `UPDATE videos SET status = ?, audio_path = NULL, transcript_path = NULL, error_message = NULL, updated_at = ?`
	args := []any{StatusPending, nowTimestamp()}
	if channel != "" {
		query += ` WHERE channel = ?`
		args = append(args, channel)
	}
	res, err := s.execWithRetry(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("reset channel: %w", err)
	}
	return res.RowsAffected()
}

// ResetErrored moves only a channel's errored videos back to pending so a
// rerun retries them. Completed items are left alone.
func (s *Store) ResetErrored(ctx context.Context, channel string) (int64, error) {
	query := `UPDATE videos SET status = ?, audio_path = NULL, transcript_path = NULL, error_message = NULL, updated_at = ? WHERE status = ?`
	args := []any{StatusPending, nowTimestamp(), StatusError}
	if channel != "" {
		query += ` AND channel = ?`
		args = append(args, channel)
	}
	res, err := s.execWithRetry(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("reset errored: %w", err)
	}
	return res.RowsAffected()
}

// PurgeChannel deletes every row for a channel.
func (s *Store) PurgeChannel(ctx context.Context, channel string) (int64, error) {
	res, err := s.execWithRetry(ctx, `DELETE FROM videos WHERE channel = ?`, channel)
	if err != nil {
		return 0, fmt.Errorf("purge channel: %w", err)
	}
	return res.RowsAffected()
}

// Purge deletes every row in the store.
func (s *Store) Purge(ctx context.Context) (int64, error) {
	res, err := s.execWithRetry(ctx, `DELETE FROM videos`)
	if err != nil {
		return 0, fmt.Errorf("purge store: %w", err)
	}
	return res.RowsAffected()
}

package queue

import (
	"context"
	"fmt"
)

// transition updates a video's status plus any accompanying columns. All
// status changes funnel through here so the lifecycle stays a closed set.
func (s *Store) transition(ctx context.Context, videoID string, setClause string, args ...any) error {
	query := `UPDATE videos SET ` + setClause + `, updated_at = ? WHERE video_id = ?`
	args = append(args, nowTimestamp(), videoID)
	res, err := s.execWithRetry(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update video %s: %w", videoID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("video %s: %w", videoID, ErrNotFound)
	}
	return nil
}

// MarkDownloading marks a video as claimed by a download worker.
func (s *Store) MarkDownloading(ctx context.Context, videoID string) error {
	return s.transition(ctx, videoID, `status = ?, error_message = NULL`, StatusDownloading)
}

// MarkDownloaded records the downloaded audio location.
func (s *Store) MarkDownloaded(ctx context.Context, videoID, audioPath string) error {
	return s.transition(ctx, videoID, `status = ?, audio_path = ?, error_message = NULL`, StatusDownloaded, audioPath)
}

// MarkTranscribing marks a video as claimed by the transcription stage.
func (s *Store) MarkTranscribing(ctx context.Context, videoID string) error {
	return s.transition(ctx, videoID, `status = ?, error_message = NULL`, StatusTranscribing)
}

// MarkCompleted records the finished transcript location.
func (s *Store) MarkCompleted(ctx context.Context, videoID, transcriptPath string) error {
	return s.transition(ctx, videoID, `status = ?, transcript_path = ?, error_message = NULL`, StatusCompleted, transcriptPath)
}

// MarkError records a stage failure. The item stays in the store so a later
// run (or 'scribe channel reset') can retry it.
func (s *Store) MarkError(ctx context.Context, videoID, message string) error {
	return s.transition(ctx, videoID, `status = ?, error_message = ?`, StatusError, nullableString(message))
}

// ResetStuck returns items a crashed run left in transient states back to
// the start of their stage: downloading becomes pending, transcribing
// becomes downloaded.
func (s *Store) ResetStuck(ctx context.Context, channel string) (int64, error) {
	query := `UPDATE videos
        SET status = CASE status
            WHEN ? THEN ?
            WHEN ? THEN ?
            ELSE status
        END,
            updated_at = ?
        WHERE status IN (?, ?)`
	args := []any{
		StatusDownloading, StatusPending,
		StatusTranscribing, StatusDownloaded,
		nowTimestamp(),
		StatusDownloading, StatusTranscribing,
	}
	if channel != "" {
		query += ` AND channel = ?`
		args = append(args, channel)
	}
	res, err := s.execWithRetry(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("reset stuck items: %w", err)
	}
	return res.RowsAffected()
}

package queue

import (
	"database/sql"
	"errors"
	"time"
)

const itemColumns = "video_id, url, title, duration, channel, status, audio_path, transcript_path, error_message, created_at, updated_at"

func scanItem(scanner interface{ Scan(dest ...any) error }) (*Item, error) {
	var (
		videoID        string
		url            string
		title          string
		duration       int64
		channel        string
		statusStr      string
		audioPath      sql.NullString
		transcriptPath sql.NullString
		errorMessage   sql.NullString
		createdRaw     string
		updatedRaw     string
	)

	if err := scanner.Scan(
		&videoID,
		&url,
		&title,
		&duration,
		&channel,
		&statusStr,
		&audioPath,
		&transcriptPath,
		&errorMessage,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}

	item := &Item{
		VideoID:        videoID,
		URL:            url,
		Title:          title,
		DurationSec:    duration,
		Channel:        channel,
		Status:         Status(statusStr),
		AudioPath:      audioPath.String,
		TranscriptPath: transcriptPath.String,
		ErrorMessage:   errorMessage.String,
	}

	if created, err := parseTimeString(createdRaw); err == nil {
		item.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw); err == nil {
		item.UpdatedAt = updated
	}
	return item, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}

func makePlaceholders(count int) string {
	if count <= 0 {
		return ""
	}
	placeholders := make([]byte, 0, count*2)
	for i := 0; i < count; i++ {
		if i > 0 {
			placeholders = append(placeholders, ',')
		}
		placeholders = append(placeholders, '?')
	}
	return string(placeholders)
}

func nowTimestamp() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

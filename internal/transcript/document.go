package transcript

import (
	"fmt"
	"strings"
	"time"

	"scribe/internal/textutil"
)

const bannerWidth = 80

// Segment is one timestamped span of transcribed speech.
type Segment struct {
	StartSec float64 `json:"start"`
	Text     string  `json:"text"`
}

// Document holds everything needed to render a transcript artifact.
type Document struct {
	VideoID     string
	Title       string
	Model       string
	Device      string
	Language    string
	GeneratedAt time.Time
	Text        string
	Segments    []Segment
}

// Render produces the transcript file contents.
func (d Document) Render() string {
	banner := strings.Repeat("=", bannerWidth)
	rule := strings.Repeat("-", bannerWidth)

	language := d.Language
	if language == "" {
		language = "unknown"
	}
	generated := d.GeneratedAt
	if generated.IsZero() {
		generated = time.Now()
	}

	lines := []string{
		banner,
		"TRANSCRIPT: " + d.Title,
		"Video ID: " + d.VideoID,
		banner,
		"Transcription Date: " + generated.Format("2006-01-02 15:04:05"),
		fmt.Sprintf("Model: Whisper %s (GPU: %s)", d.Model, d.Device),
		"Language: " + language,
		banner,
		"\n",
		"FULL TRANSCRIPT",
		rule,
		strings.TrimSpace(d.Text),
		"\n\n\n",
		"DETAILED TRANSCRIPT WITH TIMESTAMPS",
		rule,
		"\n",
	}

	for _, segment := range d.Segments {
		lines = append(lines, fmt.Sprintf("[%s] %s", FormatTimestamp(segment.StartSec), strings.TrimSpace(segment.Text)))
	}

	lines = append(lines,
		"\n\n",
		banner,
		"END OF TRANSCRIPT",
		banner,
	)

	return strings.Join(lines, "\n")
}

// FullText joins segment texts when the engine did not supply a combined
// transcript.
func FullText(segments []Segment) string {
	parts := make([]string, 0, len(segments))
	for _, segment := range segments {
		if text := strings.TrimSpace(segment.Text); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, " ")
}

// ParseFullText extracts the full-text section from a rendered transcript.
func ParseFullText(content string) (string, error) {
	rule := strings.Repeat("-", bannerWidth)
	marker := "FULL TRANSCRIPT\n" + rule + "\n"
	start := strings.Index(content, marker)
	if start < 0 {
		return "", fmt.Errorf("no full transcript section")
	}
	rest := content[start+len(marker):]
	end := strings.Index(rest, "DETAILED TRANSCRIPT WITH TIMESTAMPS")
	if end < 0 {
		return "", fmt.Errorf("unterminated full transcript section")
	}
	return strings.TrimSpace(rest[:end]), nil
}

// FormatTimestamp renders seconds as MM:SS, or HH:MM:SS once an hour is
// reached.
func FormatTimestamp(seconds float64) string {
	total := int(seconds)
	hours := total / 3600
	minutes := (total % 3600) / 60
	secs := total % 60
	if hours > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, secs)
	}
	return fmt.Sprintf("%02d:%02d", minutes, secs)
}

// FileName builds the transcript filename for a video: the sanitized title
// followed by the immutable video id, so artifacts stay unique even when two
// videos share a title.
func FileName(title, videoID string) string {
	return fmt.Sprintf("%s_%s.txt", textutil.SanitizeTitle(title), videoID)
}

package transcript_test

import (
	"strings"
	"testing"
	"time"

	"scribe/internal/transcript"
)

func TestRenderIncludesHeaderAndSections(t *testing.T) {
	doc := transcript.Document{
		VideoID:     "dQw4w9WgXcQ",
		Title:       "Never Gonna Give You Up",
		Model:       "base",
		Device:      "cpu",
		Language:    "en",
		GeneratedAt: time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC),
		Text:        "We're no strangers to love.",
		Segments: []transcript.Segment{
			{StartSec: 0, Text: "We're no strangers"},
			{StartSec: 2.5, Text: "to love."},
		},
	}

	out := doc.Render()

	banner := strings.Repeat("=", 80)
	for _, want := range []string{
		banner,
		"TRANSCRIPT: Never Gonna Give You Up",
		"Video ID: dQw4w9WgXcQ",
		"Transcription Date: 2024-03-15 10:30:00",
		"Model: Whisper base (GPU: cpu)",
		"Language: en",
		"FULL TRANSCRIPT",
		strings.Repeat("-", 80),
		"We're no strangers to love.",
		"DETAILED TRANSCRIPT WITH TIMESTAMPS",
		"[00:00] We're no strangers",
		"[00:02] to love.",
		"END OF TRANSCRIPT",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("rendered transcript missing %q", want)
		}
	}

	if !strings.HasPrefix(out, banner+"\n") {
		t.Fatal("transcript should open with a banner line")
	}
	if !strings.HasSuffix(out, banner) {
		t.Fatal("transcript should close with a banner line")
	}
}

func TestRenderUnknownLanguage(t *testing.T) {
	doc := transcript.Document{VideoID: "abcdefghijk", Title: "Untitled"}
	if !strings.Contains(doc.Render(), "Language: unknown") {
		t.Fatal("empty language should render as unknown")
	}
}

func TestParseFullTextRoundTrip(t *testing.T) {
	segments := []transcript.Segment{
		{StartSec: 0, Text: "first part"},
		{StartSec: 4, Text: "second part"},
	}
	doc := transcript.Document{
		VideoID:  "abcdefghijk",
		Title:    "Round Trip",
		Text:     transcript.FullText(segments),
		Segments: segments,
	}

	parsed, err := transcript.ParseFullText(doc.Render())
	if err != nil {
		t.Fatalf("ParseFullText: %v", err)
	}
	if parsed != "first part second part" {
		t.Fatalf("ParseFullText = %q", parsed)
	}

	if _, err := transcript.ParseFullText("not a transcript"); err == nil {
		t.Fatal("expected error for malformed content")
	}
}

func TestFormatTimestamp(t *testing.T) {
	cases := []struct {
		seconds float64
		want    string
	}{
		{0, "00:00"},
		{59.9, "00:59"},
		{61, "01:01"},
		{600, "10:00"},
		{3599, "59:59"},
		{3600, "01:00:00"},
		{3725, "01:02:05"},
		{7322.7, "02:02:02"},
	}
	for _, tc := range cases {
		if got := transcript.FormatTimestamp(tc.seconds); got != tc.want {
			t.Errorf("FormatTimestamp(%v) = %q, want %q", tc.seconds, got, tc.want)
		}
	}
}

func TestFullTextJoinsSegments(t *testing.T) {
	segments := []transcript.Segment{
		{Text: " first "},
		{Text: ""},
		{Text: "second"},
	}
	if got := transcript.FullText(segments); got != "first second" {
		t.Fatalf("FullText = %q", got)
	}
}

func TestFileName(t *testing.T) {
	got := transcript.FileName("How to: Build & Ship!", "abcdefghijk")
	if got != "How to Build  Ship_abcdefghijk.txt" {
		t.Fatalf("FileName = %q", got)
	}

	long := strings.Repeat("a", 120)
	got = transcript.FileName(long, "abcdefghijk")
	if got != strings.Repeat("a", 80)+"_abcdefghijk.txt" {
		t.Fatalf("long title not truncated: %q", got)
	}
}

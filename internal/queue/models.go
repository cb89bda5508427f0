package queue

import "time"

// Status represents the lifecycle of a video work item.
type Status string

const (
	StatusPending      Status = "pending"
	StatusDownloading  Status = "downloading"
	StatusDownloaded   Status = "downloaded"
	StatusTranscribing Status = "transcribing"
	StatusCompleted    Status = "completed"
	StatusError        Status = "error"
)

var allStatuses = []Status{
	StatusPending,
	StatusDownloading,
	StatusDownloaded,
	StatusTranscribing,
	StatusCompleted,
	StatusError,
}

// AllStatuses returns every status in lifecycle order.
func AllStatuses() []Status {
	out := make([]Status, len(allStatuses))
	copy(out, allStatuses)
	return out
}

// inFlightStatuses are the transient states a crashed run can leave behind.
var inFlightStatuses = []Status{StatusDownloading, StatusTranscribing}

// Item represents a video work item persisted in SQLite.
type Item struct {
	VideoID        string
	URL            string
	Title          string
	DurationSec    int64
	Channel        string
	Status         Status
	AudioPath      string
	TranscriptPath string
	ErrorMessage   string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Stats aggregates per-status counts and duration totals for a channel (or
// the whole store when channel is empty).
type Stats struct {
	Total        int
	Pending      int
	Downloading  int
	Downloaded   int
	Transcribing int
	Completed    int
	Errored      int

	TotalDurationSec     int64
	CompletedDurationSec int64
}

// Remaining reports how many items still need work.
func (s Stats) Remaining() int {
	return s.Total - s.Completed
}

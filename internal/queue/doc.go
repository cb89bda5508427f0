// Package queue persists per-video pipeline progress in SQLite.
//
// Every video discovered on a channel becomes a row in the videos table,
// keyed by its immutable video id. Stages advance a row through a closed set
// of status transitions (pending, downloading, downloaded, transcribing,
// completed, error), which is what makes the pipeline resumable: a rerun
// re-enumerates the channel, inserts only unseen ids, and picks up wherever
// the previous run stopped.
//
// The store hands out a shared *sql.DB. WAL journaling plus a busy timeout
// covers concurrent writers; short busy-retry loops absorb the rare lock
// contention that still surfaces.
package queue

// Command scribe transcribes entire YouTube channels: it enumerates a
// channel, downloads audio in parallel, and runs Whisper over the backlog,
// tracking per-video progress in SQLite so interrupted runs resume where
// they stopped.
package main

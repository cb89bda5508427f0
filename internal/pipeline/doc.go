// Package pipeline orchestrates a full channel run: enumerate the channel,
// record unseen videos, then alternate batched parallel downloads with
// serial transcription until the backlog drains. Batching bounds how much
// raw audio ever sits on disk. A file lock keeps runs exclusive per store;
// everything else about resumability comes from the queue package.
package pipeline

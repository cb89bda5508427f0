// Package fetch downloads audio for work items with a bounded worker pool.
// Download is the network-bound stage, so it gets the parallelism;
// transcription stays serialized behind the engine.
package fetch

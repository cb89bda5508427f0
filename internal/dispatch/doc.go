// Package dispatch ships downloaded audio to a remote transcription pool
// over Redis. Jobs are all submitted up front so remote workers stay
// saturated, then results are gathered in submission order. A failed or
// timed-out job leaves its item untouched in the store, still eligible for
// local transcription or another dispatch.
package dispatch

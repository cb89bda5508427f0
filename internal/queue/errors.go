package queue

import "errors"

// ErrNotFound indicates a status transition referenced a video id that is not
// in the store.
var ErrNotFound = errors.New("video not found")

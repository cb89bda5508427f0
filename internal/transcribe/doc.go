// Package transcribe turns downloaded audio into transcript artifacts. Items
// run one at a time: a single Whisper model load already saturates the GPU
// or all CPU cores, so serializing here is what frees the download stage to
// run wide.
package transcribe

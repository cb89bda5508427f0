// Package transcript renders transcription results into the plain-text
// artifact format written to disk: a banner header with video metadata, the
// full transcript text, and a timestamped segment listing.
package transcript

// Package ytdlp wraps the yt-dlp binary for channel enumeration and audio
// download. All invocations go through an injectable command runner so tests
// can stand in for the real tool.
package ytdlp

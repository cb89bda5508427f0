package textutil

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	// MaxTitleLength caps sanitized video titles used in transcript filenames.
	MaxTitleLength = 80
	// MaxChannelLength caps sanitized channel names used as directory names.
	MaxChannelLength = 100
)

// asciiFolder decomposes accented characters and drops the combining marks so
// "Café" sanitizes to "Cafe" instead of losing the letter entirely.
var asciiFolder = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

func foldToASCII(value string) string {
	folded, _, err := transform.String(asciiFolder, value)
	if err != nil {
		return value
	}
	return folded
}

// SanitizeName keeps letters, digits, spaces, hyphens, and underscores and
// trims the result to maxLen bytes. Everything else is dropped. Returns an
// empty string when nothing safe remains.
func SanitizeName(value string, maxLen int) string {
	value = foldToASCII(strings.TrimSpace(value))
	var b strings.Builder
	for _, r := range value {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '_':
			b.WriteRune(r)
		}
	}
	out := strings.TrimSpace(b.String())
	if maxLen > 0 && len(out) > maxLen {
		out = strings.TrimSpace(out[:maxLen])
	}
	return out
}

// SanitizeTitle sanitizes a video title for use in a transcript filename.
func SanitizeTitle(title string) string {
	return SanitizeName(title, MaxTitleLength)
}

// SanitizeChannel sanitizes a channel name for use as a directory name.
// Returns "unknown-channel" when the name sanitizes to nothing.
func SanitizeChannel(channel string) string {
	out := SanitizeName(channel, MaxChannelLength)
	if out == "" {
		return "unknown-channel"
	}
	return out
}

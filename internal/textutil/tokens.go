package textutil

import (
	"regexp"
	"strings"
)

// tokenPattern matches runs of lowercase alphanumerics at least two characters
// long. Two, not three, so short handles like "AI" are kept.
var tokenPattern = regexp.MustCompile(`[a-z0-9]{2,}`)

// delimiterReplacer turns common URL and handle delimiters into spaces before
// tokenization.
var delimiterReplacer = strings.NewReplacer("@", " ", "/", " ", "-", " ", "_", " ")

// tokenStopWords are URL scaffolding terms that carry no channel identity.
var tokenStopWords = map[string]struct{}{
	"http":    {},
	"https":   {},
	"www":     {},
	"youtube": {},
	"com":     {},
	"channel": {},
	"the":     {},
}

// Tokens extracts the normalized keyword set from a channel reference or
// channel name. URL scaffolding terms are removed.
func Tokens(value string) map[string]struct{} {
	lowered := delimiterReplacer.Replace(strings.ToLower(value))
	out := make(map[string]struct{})
	for _, token := range tokenPattern.FindAllString(lowered, -1) {
		if _, skip := tokenStopWords[token]; skip {
			continue
		}
		out[token] = struct{}{}
	}
	return out
}

// TokenOverlap counts tokens present in both sets.
func TokenOverlap(a, b map[string]struct{}) int {
	if len(b) < len(a) {
		a, b = b, a
	}
	count := 0
	for token := range a {
		if _, ok := b[token]; ok {
			count++
		}
	}
	return count
}

// nonAlnumPattern strips everything but lowercase alphanumerics.
var nonAlnumPattern = regexp.MustCompile(`[^a-z0-9]+`)

// Squash lowercases value and removes every non-alphanumeric character.
// Used for substring containment matching when token overlap finds nothing
// (e.g. "How I AI" squashes to "howiai", which appears in "howiaipodcast").
func Squash(value string) string {
	return nonAlnumPattern.ReplaceAllString(strings.ToLower(value), "")
}

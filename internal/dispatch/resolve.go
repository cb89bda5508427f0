package dispatch

import (
	"fmt"
	"strings"

	"scribe/internal/textutil"
)

// ResolutionError reports that a channel reference could not be matched to
// exactly one stored channel. Candidates lists what the store holds so the
// caller can show the user their options instead of guessing.
type ResolutionError struct {
	Ref        string
	Candidates []string
	Ambiguous  bool
}

func (e *ResolutionError) Error() string {
	kind := "no stored channel matches"
	if e.Ambiguous {
		kind = "multiple stored channels match"
	}
	return fmt.Sprintf("%s %q (candidates: %s)", kind, e.Ref, strings.Join(e.Candidates, ", "))
}

// ResolveChannel maps a channel reference (URL, handle, or name fragment) to
// one of the channel names present in the store. Matching is two-tier:
// token overlap first, then substring containment on fully squashed strings
// for references whose tokens never intersect the stored name (handles like
// "@howiai" against the stored "How I AI").
func ResolveChannel(ref string, stored []string) (string, error) {
	if len(stored) == 0 {
		return "", &ResolutionError{Ref: ref}
	}

	refTokens := textutil.Tokens(ref)

	best := 0
	var matches []string
	for _, channel := range stored {
		score := textutil.TokenOverlap(refTokens, textutil.Tokens(channel))
		switch {
		case score > best:
			best = score
			matches = []string{channel}
		case score == best && score > 0:
			matches = append(matches, channel)
		}
	}

	if best == 0 {
		matches = containmentMatches(ref, stored)
	}

	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
		return "", &ResolutionError{Ref: ref, Candidates: stored}
	default:
		return "", &ResolutionError{Ref: ref, Candidates: matches, Ambiguous: true}
	}
}

func containmentMatches(ref string, stored []string) []string {
	squashedRef := textutil.Squash(ref)
	if squashedRef == "" {
		return nil
	}
	var matches []string
	for _, channel := range stored {
		squashed := textutil.Squash(channel)
		if squashed == "" {
			continue
		}
		if strings.Contains(squashedRef, squashed) || strings.Contains(squashed, squashedRef) {
			matches = append(matches, channel)
		}
	}
	return matches
}

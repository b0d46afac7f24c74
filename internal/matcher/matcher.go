// Package matcher scores transcriptions against configured keyphrases and
// selects the single best-matching command.
package matcher

import (
	"strings"
	"unicode/utf8"

	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"

	"github.com/harkd/hark/internal/config"
)

// DefaultThreshold is the normalized distance above which a best candidate
// is still rejected. 0.3 accepts one-word drift on a short keyphrase while
// rejecting unrelated utterances.
const DefaultThreshold = 0.3

// Match is the selected command plus its score for one transcription.
type Match struct {
	Command  config.Command
	Index    int
	Distance float64
}

// Normalize lower-cases a string and collapses all whitespace runs to
// single spaces. Matching operates on normalized strings only.
func Normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// Distance returns the Levenshtein edit distance between the normalized
// forms of a and b, divided by the rune length of the longer form.
// The result is symmetric, lies in [0, 1], and is zero iff the normalized
// forms are identical.
func Distance(a, b string) float64 {
	na := Normalize(a)
	nb := Normalize(b)
	if na == nb {
		return 0
	}

	longest := utf8.RuneCountInString(na)
	if n := utf8.RuneCountInString(nb); n > longest {
		longest = n
	}
	return float64(fuzzy.EditDistance(na, nb)) / float64(longest)
}

// SelectBest returns the command whose keyphrase is closest to the
// transcription, provided its distance does not exceed threshold. Ties
// resolve to the earliest index. A non-positive threshold selects
// DefaultThreshold. The second return is false when no command qualifies.
func SelectBest(transcription string, commands []config.Command, threshold float64) (Match, bool) {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	if len(commands) == 0 || Normalize(transcription) == "" {
		return Match{}, false
	}

	best := Match{Index: -1}
	for i, cmd := range commands {
		d := Distance(transcription, cmd.Message)
		if best.Index < 0 || d < best.Distance {
			best = Match{Command: cmd, Index: i, Distance: d}
		}
	}

	if best.Index < 0 || best.Distance > threshold {
		return Match{}, false
	}
	return best, true
}

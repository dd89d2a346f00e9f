package diag

import (
	"github.com/texttheater/golang-levenshtein/levenshtein"
)

// Closest returns the candidate nearest to name within maxDist edits.
// Ties resolve to the earliest candidate.
func Closest(name string, candidates []string, maxDist int) (string, bool) {
	best, bestDist := "", maxDist+1
	src := []rune(name)
	for _, c := range candidates {
		if c == name || c == "" {
			continue
		}
		d := levenshtein.DistanceForStrings(src, []rune(c), levenshtein.DefaultOptions)
		if d < bestDist {
			best, bestDist = c, d
		}
	}
	return best, best != ""
}

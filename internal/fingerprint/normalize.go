package fingerprint

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// handleFold performs Unicode case folding, so "JohnDoe" and "johndoe"
// compare equal across scripts, not just ASCII.
var handleFold = cases.Fold()

// NormalizeHandle canonicalizes a handle for comparison: NFKC
// normalization collapses compatibility variants (fullwidth letters,
// ligatures), case folding removes case distinctions, and common
// separator characters are dropped.
func NormalizeHandle(handle string) string {
	normalized := norm.NFKC.String(handle)
	normalized = handleFold.String(normalized)
	return strings.Map(func(r rune) rune {
		switch r {
		case '-', '_', '.', ' ':
			return -1
		}
		return r
	}, normalized)
}

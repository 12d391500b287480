package types

import (
	"fmt"
	"strings"
)

// FillPattern selects how an ordered generation emits its sequence.
type FillPattern string

const (
	// Ascending emits the sequence in build order.
	Ascending FillPattern = "ascending"
	// Descending emits the sequence reversed.
	Descending FillPattern = "descending"
	// Shuffled emits a random permutation of the same multiset.
	Shuffled FillPattern = "random"
)

// ParseFillPattern parses a pattern name, case-insensitively.
// "asc" and "desc" are accepted as shorthands.
func ParseFillPattern(s string) (FillPattern, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "ascending", "asc":
		return Ascending, nil
	case "descending", "desc":
		return Descending, nil
	case "random", "shuffled":
		return Shuffled, nil
	default:
		return "", fmt.Errorf("invalid fill pattern %q (must be ascending, descending, or random)", s)
	}
}

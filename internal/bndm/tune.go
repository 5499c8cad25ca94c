package bndm

import "fmt"

// TuneQValue picks the q-gram width BNDMq should use for a pattern of the
// given length, following the empirical table from Ďurian et al.: wider
// q-grams pay off only once the pattern is long enough to amortize the
// extra per-byte AND in the seed step. Patterns over WordWidth bytes have
// no valid q and return an error.
func TuneQValue(length int) (int, error) {
	switch {
	case length <= 0:
		return 0, ErrEmptyPattern
	case length <= 1:
		return 1, nil
	case length <= 3:
		return 2, nil
	case length <= 8:
		return 3, nil
	case length <= 30:
		return 4, nil
	case length <= 55:
		return 5, nil
	case length <= WordWidth:
		return 6, nil
	default:
		return 0, fmt.Errorf("bndm: pattern length %d exceeds maximum of %d: %w", length, WordWidth, ErrPatternTooLong)
	}
}

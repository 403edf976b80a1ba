package analysis

import "errors"

// Errors returned by the parsers and the equity engine. Callers should match
// them with errors.Is; the returned errors wrap them with the offending input.
var (
	ErrInvalidNotation     = errors.New("invalid hand notation")
	ErrInvalidRangeToken   = errors.New("invalid range token")
	ErrEmptyRange          = errors.New("empty range")
	ErrInvalidBoard        = errors.New("invalid board")
	ErrNoValidCombinations = errors.New("no valid card combinations")
)

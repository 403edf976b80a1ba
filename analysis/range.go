package analysis

import (
	"fmt"
	"strings"

	"github.com/lox/pokerequity/poker"
)

// Range is an insertion-ordered set of starting hands. Hands that share a
// HandKey are stored once.
type Range struct {
	hands []StartingHand
	index map[HandKey]int
}

// NewRange creates a new empty range.
func NewRange(hands ...StartingHand) *Range {
	r := &Range{index: make(map[HandKey]int)}
	for _, h := range hands {
		r.Add(h)
	}
	return r
}

// ParseRange creates a range from comma-separated notation.
// Examples: "AA,KK", "AKs,AKo", "TT+", "A5s+", "KJo+", "AT+", "AsKh"
//
// A "+" suffix on a pair walks up to aces ("55+" is 55 through AA). On a
// suited or offsuit base it walks the low card up to one below the high card
// ("A5s+" is A5s through AKs). A base without a qualifier ("AT+") is offsuit.
func ParseRange(notation string) (*Range, error) {
	r := NewRange()

	for part := range strings.SplitSeq(notation, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if err := r.addToken(part); err != nil {
			return nil, err
		}
	}

	if r.Len() == 0 {
		return nil, fmt.Errorf("%w: %q contains no hands", ErrEmptyRange, notation)
	}
	return r, nil
}

// MustParseRange parses a range and panics on error (for tests).
func MustParseRange(notation string) *Range {
	r, err := ParseRange(notation)
	if err != nil {
		panic(err)
	}
	return r
}

func (r *Range) addToken(token string) error {
	base, plus := strings.CutSuffix(token, "+")
	if !plus {
		h, err := ParseHand(token)
		if err != nil {
			return fmt.Errorf("%w %q: %w", ErrInvalidRangeToken, token, err)
		}
		r.Add(h)
		return nil
	}

	hands, err := expandPlus(strings.Join(strings.Fields(base), ""))
	if err != nil {
		return fmt.Errorf("%w %q: %w", ErrInvalidRangeToken, token, err)
	}
	for _, h := range hands {
		r.Add(h)
	}
	return nil
}

// expandPlus expands the base of a "+" token.
func expandPlus(base string) ([]StartingHand, error) {
	if len(base) != 2 && len(base) != 3 {
		return nil, fmt.Errorf("base %q must be two ranks with an optional s/o qualifier", base)
	}
	a, err := poker.ParseRank(base[0])
	if err != nil {
		return nil, err
	}
	b, err := poker.ParseRank(base[1])
	if err != nil {
		return nil, err
	}
	high, low := max(a, b), min(a, b)

	suited := false
	if len(base) == 3 {
		switch base[2] {
		case 's', 'S':
			suited = true
		case 'o', 'O':
		default:
			return nil, fmt.Errorf("unknown suit qualifier %q, use s or o", base[2])
		}
	}

	if high == low {
		if suited {
			return nil, fmt.Errorf("pocket pairs cannot be suited")
		}
		if len(base) == 3 {
			return nil, fmt.Errorf("pocket pairs cannot be offsuit")
		}
		hands := make([]StartingHand, 0, int(poker.Ace-low)+1)
		for rank := low; rank <= poker.Ace; rank++ {
			hands = append(hands, StartingHand{high: rank, low: rank, kind: Pair})
		}
		return hands, nil
	}

	kind := Offsuit
	if suited {
		kind = Suited
	}
	hands := make([]StartingHand, 0, int(high-low))
	for rank := low; rank < high; rank++ {
		hands = append(hands, StartingHand{high: high, low: rank, kind: kind})
	}
	return hands, nil
}

// Add inserts h unless a hand with the same key is present. It reports
// whether the range grew.
func (r *Range) Add(h StartingHand) bool {
	key := h.Key()
	if _, ok := r.index[key]; ok {
		return false
	}
	r.index[key] = len(r.hands)
	r.hands = append(r.hands, h)
	return true
}

// Contains reports whether a hand with the same key is in the range.
func (r *Range) Contains(h StartingHand) bool {
	_, ok := r.index[h.Key()]
	return ok
}

// Len returns the number of distinct starting hands.
func (r *Range) Len() int {
	return len(r.hands)
}

// Hands returns the hands in insertion order.
func (r *Range) Hands() []StartingHand {
	out := make([]StartingHand, len(r.hands))
	copy(out, r.hands)
	return out
}

// ComboCount returns the number of physical holdings across all hands.
func (r *Range) ComboCount() int {
	n := 0
	for _, h := range r.hands {
		n += h.ComboCount()
	}
	return n
}

// Equal reports whether both ranges hold the same set of hands, ignoring order.
func (r *Range) Equal(other *Range) bool {
	if r.Len() != other.Len() {
		return false
	}
	for key := range r.index {
		if _, ok := other.index[key]; !ok {
			return false
		}
	}
	return true
}

// String serialises the range so that ParseRange(r.String()) equals r.
func (r *Range) String() string {
	parts := make([]string, len(r.hands))
	for i, h := range r.hands {
		parts[i] = h.String()
	}
	return strings.Join(parts, ",")
}

// Package analysis provides starting-hand and range notation, board parsing
// and Monte Carlo equity estimation for heads-up matchups.
package analysis

import (
	"fmt"
	"strings"

	"github.com/lox/pokerequity/poker"
)

// Kind classifies a starting hand by the relationship of its two cards.
type Kind uint8

const (
	Offsuit Kind = iota
	Suited
	Pair
)

// String returns "offsuit", "suited" or "pair".
func (k Kind) String() string {
	switch k {
	case Suited:
		return "suited"
	case Pair:
		return "pair"
	default:
		return "offsuit"
	}
}

// comboSuits is the suit order used when enumerating combos.
var comboSuits = [poker.NumSuits]poker.Suit{poker.Hearts, poker.Diamonds, poker.Clubs, poker.Spades}

// Combo is one concrete two-card holding.
type Combo [2]poker.Card

// Set returns the combo's cards as a CardSet.
func (c Combo) Set() poker.CardSet {
	return poker.NewCardSet(c[0], c[1])
}

// String returns e.g. "AhKd".
func (c Combo) String() string {
	return c[0].String() + c[1].String()
}

// HandKey identifies a starting hand inside a Range. Class hands are keyed by
// (high, low, kind). A concrete holding shares the key of its class, so "AKo"
// and "AsKh" in one range keep whichever came first.
type HandKey struct {
	High poker.Rank
	Low  poker.Rank
	Kind Kind
}

// StartingHand is either a concrete two-card holding or a class of holdings
// (a pocket pair, or a suited/offsuit two-rank combination). The zero value is
// not a valid hand; use ParseHand, NewClassHand or NewConcreteHand.
type StartingHand struct {
	high, low poker.Rank
	kind      Kind
	concrete  bool
	cards     Combo
}

// NewClassHand builds a class hand. Rank order does not matter. Equal ranks
// always produce a pair; asking for a suited pair is an error.
func NewClassHand(a, b poker.Rank, suited bool) (StartingHand, error) {
	if !a.Valid() || !b.Valid() {
		return StartingHand{}, fmt.Errorf("%w: invalid rank", ErrInvalidNotation)
	}
	high, low := a, b
	if low > high {
		high, low = low, high
	}
	if high == low {
		if suited {
			return StartingHand{}, fmt.Errorf("%w: pocket pairs cannot be suited (%s%s)", ErrInvalidNotation, high, low)
		}
		return StartingHand{high: high, low: low, kind: Pair}, nil
	}
	kind := Offsuit
	if suited {
		kind = Suited
	}
	return StartingHand{high: high, low: low, kind: kind}, nil
}

// NewConcreteHand builds a holding of exactly these two cards.
func NewConcreteHand(a, b poker.Card) (StartingHand, error) {
	if !a.Valid() || !b.Valid() {
		return StartingHand{}, fmt.Errorf("%w: invalid card", ErrInvalidNotation)
	}
	if a == b {
		return StartingHand{}, fmt.Errorf("%w: duplicate card %s", ErrInvalidNotation, a)
	}
	if b.Rank > a.Rank || (b.Rank == a.Rank && b.Suit > a.Suit) {
		a, b = b, a
	}
	kind := Offsuit
	switch {
	case a.Rank == b.Rank:
		kind = Pair
	case a.Suit == b.Suit:
		kind = Suited
	}
	return StartingHand{high: a.Rank, low: b.Rank, kind: kind, concrete: true, cards: Combo{a, b}}, nil
}

// ParseHand parses one starting hand. Accepted forms, ignoring whitespace and
// case: "QQ" (pair), "AKs"/"AKo" (suited/offsuit class) and "AsKh" (concrete).
func ParseHand(text string) (StartingHand, error) {
	s := strings.Join(strings.Fields(text), "")

	switch len(s) {
	case 2:
		high, low, err := parseRanks(s)
		if err != nil {
			return StartingHand{}, err
		}
		if high != low {
			return StartingHand{}, fmt.Errorf("%w: %q needs a suited (s) or offsuit (o) suffix", ErrInvalidNotation, text)
		}
		return NewClassHand(high, low, false)

	case 3:
		high, low, err := parseRanks(s)
		if err != nil {
			return StartingHand{}, err
		}
		var suited bool
		switch s[2] {
		case 's', 'S':
			suited = true
		case 'o', 'O':
		default:
			return StartingHand{}, fmt.Errorf("%w: unknown suit qualifier %q in %q", ErrInvalidNotation, s[2], text)
		}
		h, err := NewClassHand(high, low, suited)
		if err != nil {
			return StartingHand{}, fmt.Errorf("%w (%q)", err, text)
		}
		return h, nil

	case 4:
		cards, err := poker.ParseCards(s)
		if err != nil {
			return StartingHand{}, fmt.Errorf("%w: %q: %w", ErrInvalidNotation, text, err)
		}
		return NewConcreteHand(cards[0], cards[1])

	default:
		return StartingHand{}, fmt.Errorf("%w: %q (use a form like 22, AKs, AKo or AsKh)", ErrInvalidNotation, text)
	}
}

// MustParseHand parses a hand and panics on error (for tests).
func MustParseHand(text string) StartingHand {
	h, err := ParseHand(text)
	if err != nil {
		panic(err)
	}
	return h
}

func parseRanks(s string) (poker.Rank, poker.Rank, error) {
	a, err := poker.ParseRank(s[0])
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %w", ErrInvalidNotation, err)
	}
	b, err := poker.ParseRank(s[1])
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %w", ErrInvalidNotation, err)
	}
	return a, b, nil
}

// High returns the higher rank.
func (h StartingHand) High() poker.Rank { return h.high }

// Low returns the lower rank.
func (h StartingHand) Low() poker.Rank { return h.low }

// Kind returns whether the hand is a pair, suited or offsuit.
func (h StartingHand) Kind() Kind { return h.kind }

// IsPair reports whether both cards share a rank.
func (h StartingHand) IsPair() bool { return h.kind == Pair }

// IsSuited reports whether both cards share a suit.
func (h StartingHand) IsSuited() bool { return h.kind == Suited }

// IsConcrete reports whether the hand names two specific cards.
func (h StartingHand) IsConcrete() bool { return h.concrete }

// Key returns the identity used for de-duplication inside a Range.
func (h StartingHand) Key() HandKey {
	return HandKey{High: h.high, Low: h.low, Kind: h.kind}
}

// String returns notation that ParseHand accepts: "QQ", "AKs", "AKo" or "AsKh".
func (h StartingHand) String() string {
	if h.concrete {
		return h.cards.String()
	}
	switch h.kind {
	case Pair:
		return h.high.String() + h.low.String()
	case Suited:
		return h.high.String() + h.low.String() + "s"
	default:
		return h.high.String() + h.low.String() + "o"
	}
}

// DisplayName returns "Pocket Qs" for pairs and "AK suited"/"AK offsuit" otherwise.
func (h StartingHand) DisplayName() string {
	if h.kind == Pair {
		return fmt.Sprintf("Pocket %ss", h.high)
	}
	return fmt.Sprintf("%s%s %s", h.high, h.low, h.kind)
}

// Combos enumerates every physical holding the hand represents: one for a
// concrete hand, 6 for a pair, 4 for suited and 12 for offsuit. The order is
// stable.
func (h StartingHand) Combos() []Combo {
	if h.concrete {
		return []Combo{h.cards}
	}

	var combos []Combo
	switch h.kind {
	case Pair:
		combos = make([]Combo, 0, 6)
		for i := 0; i < len(comboSuits); i++ {
			for j := i + 1; j < len(comboSuits); j++ {
				combos = append(combos, Combo{
					poker.NewCard(h.high, comboSuits[i]),
					poker.NewCard(h.high, comboSuits[j]),
				})
			}
		}
	case Suited:
		combos = make([]Combo, 0, 4)
		for _, s := range comboSuits {
			combos = append(combos, Combo{poker.NewCard(h.high, s), poker.NewCard(h.low, s)})
		}
	default:
		combos = make([]Combo, 0, 12)
		for _, s1 := range comboSuits {
			for _, s2 := range comboSuits {
				if s1 != s2 {
					combos = append(combos, Combo{poker.NewCard(h.high, s1), poker.NewCard(h.low, s2)})
				}
			}
		}
	}
	return combos
}

// ComboCount returns len(h.Combos()) without allocating.
func (h StartingHand) ComboCount() int {
	if h.concrete {
		return 1
	}
	switch h.kind {
	case Pair:
		return 6
	case Suited:
		return 4
	default:
		return 12
	}
}

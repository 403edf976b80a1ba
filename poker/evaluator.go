package poker

import (
	"fmt"
	"math/bits"
	"strings"
)

// Category enumerates the poker hand categories ordered from weakest to strongest.
type Category uint8

const (
	HighCard Category = iota
	OnePair
	TwoPair
	ThreeOfAKind
	Straight
	Flush
	FullHouse
	FourOfAKind
	StraightFlush
)

// NumCategories is the number of hand categories.
const NumCategories = 9

// String returns a human-readable category name.
func (c Category) String() string {
	switch c {
	case HighCard:
		return "High Card"
	case OnePair:
		return "One Pair"
	case TwoPair:
		return "Two Pair"
	case ThreeOfAKind:
		return "Three of a Kind"
	case Straight:
		return "Straight"
	case Flush:
		return "Flush"
	case FullHouse:
		return "Full House"
	case FourOfAKind:
		return "Four of a Kind"
	case StraightFlush:
		return "Straight Flush"
	default:
		return "Unknown"
	}
}

// EvaluatedHand is the category of a 5-card hand plus the ranks used to break
// ties between two hands of the same category.
type EvaluatedHand struct {
	Category Category
	values   [5]Rank
	n        uint8
}

// Values returns the tie-break ranks, most significant first.
func (h EvaluatedHand) Values() []Rank {
	out := make([]Rank, h.n)
	copy(out, h.values[:h.n])
	return out
}

// String returns e.g. "Full House [K Q]".
func (h EvaluatedHand) String() string {
	parts := make([]string, h.n)
	for i := range parts {
		parts[i] = h.values[i].String()
	}
	return fmt.Sprintf("%s [%s]", h.Category, strings.Join(parts, " "))
}

// Compare returns 1 if a beats b, -1 if b beats a and 0 for a tie.
func Compare(a, b EvaluatedHand) int {
	if a.Category != b.Category {
		if a.Category > b.Category {
			return 1
		}
		return -1
	}
	for i := uint8(0); i < a.n && i < b.n; i++ {
		if a.values[i] != b.values[i] {
			if a.values[i] > b.values[i] {
				return 1
			}
			return -1
		}
	}
	switch {
	case a.n > b.n:
		return 1
	case a.n < b.n:
		return -1
	}
	return 0
}

// Evaluate5 ranks exactly five distinct cards.
func Evaluate5(cards [5]Card) EvaluatedHand {
	var counts [Ace + 1]uint8
	var rankMask uint16
	flush := true
	for i, c := range cards {
		counts[c.Rank]++
		rankMask |= 1 << (c.Rank - Two)
		if i > 0 && c.Suit != cards[0].Suit {
			flush = false
		}
	}

	straightTop := straightHigh(rankMask)

	if flush && straightTop != 0 {
		return EvaluatedHand{Category: StraightFlush, values: [5]Rank{straightTop}, n: 1}
	}

	// Group ranks by multiplicity, each group in descending rank order.
	var quad, trip Rank
	var pairs [2]Rank
	var singles [5]Rank
	np, ns := 0, 0
	for r := Ace; r >= Two; r-- {
		switch counts[r] {
		case 4:
			quad = r
		case 3:
			trip = r
		case 2:
			pairs[np] = r
			np++
		case 1:
			singles[ns] = r
			ns++
		}
	}

	switch {
	case quad != 0:
		return EvaluatedHand{Category: FourOfAKind, values: [5]Rank{quad, singles[0]}, n: 2}
	case trip != 0 && np == 1:
		return EvaluatedHand{Category: FullHouse, values: [5]Rank{trip, pairs[0]}, n: 2}
	case flush:
		return EvaluatedHand{Category: Flush, values: singles, n: 5}
	case straightTop != 0:
		return EvaluatedHand{Category: Straight, values: [5]Rank{straightTop}, n: 1}
	case trip != 0:
		return EvaluatedHand{Category: ThreeOfAKind, values: [5]Rank{trip, singles[0], singles[1]}, n: 3}
	case np == 2:
		return EvaluatedHand{Category: TwoPair, values: [5]Rank{pairs[0], pairs[1], singles[0]}, n: 3}
	case np == 1:
		return EvaluatedHand{Category: OnePair, values: [5]Rank{pairs[0], singles[0], singles[1], singles[2]}, n: 4}
	default:
		return EvaluatedHand{Category: HighCard, values: singles, n: 5}
	}
}

// EvaluateBest returns the strongest 5-card hand that can be made from 5 to 7
// cards by checking every 5-card subset.
func EvaluateBest(cards []Card) (EvaluatedHand, error) {
	n := len(cards)
	if n < 5 || n > 7 {
		return EvaluatedHand{}, fmt.Errorf("evaluate: need 5 to 7 cards, got %d", n)
	}
	if NewCardSet(cards...).Len() != n {
		return EvaluatedHand{}, fmt.Errorf("evaluate: duplicate card in %s", FormatCards(cards))
	}
	return evaluateBestUnchecked(cards), nil
}

// evaluateBestUnchecked assumes 5..7 distinct cards.
func evaluateBestUnchecked(cards []Card) EvaluatedHand {
	n := len(cards)
	if n == 5 {
		return Evaluate5([5]Card(cards))
	}

	var best EvaluatedHand
	found := false
	var five [5]Card
	for a := 0; a < n-4; a++ {
		for b := a + 1; b < n-3; b++ {
			for c := b + 1; c < n-2; c++ {
				for d := c + 1; d < n-1; d++ {
					for e := d + 1; e < n; e++ {
						five = [5]Card{cards[a], cards[b], cards[c], cards[d], cards[e]}
						h := Evaluate5(five)
						if !found || Compare(h, best) > 0 {
							best = h
							found = true
						}
					}
				}
			}
		}
	}
	return best
}

// EvaluateHoldem ranks two hole cards against a complete five-card board.
func EvaluateHoldem(hole [2]Card, board [5]Card) EvaluatedHand {
	seven := [7]Card{hole[0], hole[1], board[0], board[1], board[2], board[3], board[4]}
	return evaluateBestUnchecked(seven[:])
}

// straightHigh returns the top rank of the straight in a five-rank mask, or 0.
// The wheel (A-2-3-4-5) reports Five. The mask uses bit 0 for deuce through
// bit 12 for ace.
func straightHigh(mask uint16) Rank {
	const wheelMask = 0x100F // Ace + 2-3-4-5

	if bits.OnesCount16(mask) != 5 {
		return 0
	}
	if mask == wheelMask {
		return Five
	}

	seq := mask & (mask >> 1) & (mask >> 2) & (mask >> 3) & (mask >> 4)
	if seq == 0 {
		return 0
	}
	low := Rank(bits.Len16(seq) - 1)
	return low + 4 + Two
}

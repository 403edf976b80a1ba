package poker

import (
	rand "math/rand/v2"
)

// NewDeck returns all 52 cards in rank-then-suit order.
func NewDeck() []Card {
	cards := make([]Card, 0, 52)
	for rank := Two; rank <= Ace; rank++ {
		for suit := Clubs; suit < NumSuits; suit++ {
			cards = append(cards, NewCard(rank, suit))
		}
	}
	return cards
}

// Stub is the pool of undealt cards for one simulation setup. Drawing uses a
// partial Fisher-Yates shuffle, so the pool's order changes between draws but
// its contents never do.
type Stub struct {
	cards []Card
	rng   *rand.Rand
}

// NewStub builds the pool of cards not contained in dead.
func NewStub(dead CardSet, rng *rand.Rand) *Stub {
	cards := make([]Card, 0, 52-dead.Len())
	for _, c := range NewDeck() {
		if !dead.Contains(c) {
			cards = append(cards, c)
		}
	}
	return &Stub{cards: cards, rng: rng}
}

// Len returns the number of cards available.
func (s *Stub) Len() int {
	return len(s.cards)
}

// Draw returns n distinct cards chosen uniformly at random. The returned slice
// aliases the stub and is only valid until the next call. Returns nil when
// fewer than n cards remain.
func (s *Stub) Draw(n int) []Card {
	if n > len(s.cards) {
		return nil
	}
	for i := 0; i < n; i++ {
		j := i + s.rng.IntN(len(s.cards)-i)
		s.cards[i], s.cards[j] = s.cards[j], s.cards[i]
	}
	return s.cards[:n]
}

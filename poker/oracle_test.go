package poker

import (
	"testing"

	ph "github.com/paulhankin/poker"
	"github.com/stretchr/testify/require"

	"github.com/lox/pokerequity/internal/randutil"
)

// toOracle converts a card into paulhankin/poker's encoding, where the ace is
// rank 1 and suits run clubs, diamonds, hearts, spades.
func toOracle(t *testing.T, c Card) ph.Card {
	t.Helper()
	rank := int(c.Rank)
	if c.Rank == Ace {
		rank = 1
	}
	oc, err := ph.MakeCard(ph.Suit(c.Suit), ph.Rank(rank))
	require.NoError(t, err)
	return oc
}

func oracleScore(t *testing.T, hole []Card, board []Card) int16 {
	t.Helper()
	var seven [7]ph.Card
	for i, c := range append(append([]Card{}, hole...), board...) {
		seven[i] = toOracle(t, c)
	}
	return ph.Eval7(&seven)
}

func sign(x int) int {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	}
	return 0
}

// TestShowdownsAgreeWithOracle deals random heads-up showdowns and checks that
// every winner/tie decision matches an independent evaluator.
func TestShowdownsAgreeWithOracle(t *testing.T) {
	t.Parallel()
	stub := NewStub(0, randutil.New(2024))

	for i := range 5000 {
		cards := append([]Card(nil), stub.Draw(9)...)
		a, b, board := cards[0:2], cards[2:4], cards[4:9]

		ours := Compare(
			EvaluateHoldem([2]Card(a), [5]Card(board)),
			EvaluateHoldem([2]Card(b), [5]Card(board)),
		)
		theirs := sign(int(oracleScore(t, a, board)) - int(oracleScore(t, b, board)))

		require.Equal(t, theirs, ours, "deal %d: %s vs %s on %s", i,
			FormatCards(a), FormatCards(b), FormatCards(board))
	}
}

package analysis

import (
	"fmt"

	"github.com/lox/pokerequity/poker"
)

// MaxBoardCards is the size of a complete community board.
const MaxBoardCards = 5

// Board is the fixed part of the community cards, 0 to 5 distinct cards.
type Board []poker.Card

// ParseBoard parses board text such as "As Kd 2c" or "askd2c". Empty text is
// an empty board.
func ParseBoard(text string) (Board, error) {
	cards, err := poker.ParseCards(text)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrInvalidBoard, text, err)
	}
	if len(cards) > MaxBoardCards {
		return nil, fmt.Errorf("%w: too many board cards: %d, maximum is %d", ErrInvalidBoard, len(cards), MaxBoardCards)
	}
	if poker.NewCardSet(cards...).Len() != len(cards) {
		return nil, fmt.Errorf("%w: %q repeats a card", ErrInvalidBoard, text)
	}
	return Board(cards), nil
}

// Set returns the board's cards as a CardSet.
func (b Board) Set() poker.CardSet {
	return poker.NewCardSet(b...)
}

// Missing returns how many community cards remain to be dealt.
func (b Board) Missing() int {
	return MaxBoardCards - len(b)
}

// String returns the cards separated by spaces.
func (b Board) String() string {
	return poker.FormatCards(b)
}

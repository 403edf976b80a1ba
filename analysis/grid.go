package analysis

import "github.com/lox/pokerequity/poker"

// GridSize is the width and height of the starting-hand chart.
const GridSize = poker.NumRanks

// GridHand returns the class hand at a cell of the standard 13x13 chart.
// Rows and columns run from ace (0) down to deuce (12). Pairs sit on the
// diagonal, suited hands above it and offsuit hands below it.
func GridHand(row, col int) StartingHand {
	rowRank := poker.Ace - poker.Rank(row)
	colRank := poker.Ace - poker.Rank(col)
	switch {
	case row == col:
		return StartingHand{high: rowRank, low: rowRank, kind: Pair}
	case row < col:
		return StartingHand{high: rowRank, low: colRank, kind: Suited}
	default:
		return StartingHand{high: colRank, low: rowRank, kind: Offsuit}
	}
}

// GridPosition returns the chart cell for a class hand. Concrete holdings map
// to the cell of their class.
func GridPosition(h StartingHand) (row, col int) {
	high := int(poker.Ace - h.high)
	low := int(poker.Ace - h.low)
	switch h.kind {
	case Suited:
		return high, low
	case Offsuit:
		return low, high
	default:
		return high, high
	}
}

// GridMembership returns a 13x13 membership chart. A cell is set when the range holds
// the class hand itself or any concrete holding of that class.
func (r *Range) GridMembership() [GridSize][GridSize]bool {
	var grid [GridSize][GridSize]bool
	for _, h := range r.hands {
		row, col := GridPosition(h)
		grid[row][col] = true
	}
	return grid
}

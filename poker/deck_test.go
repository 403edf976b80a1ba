package poker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/pokerequity/internal/randutil"
)

func TestStubExcludesDeadCards(t *testing.T) {
	t.Parallel()
	dead := NewCardSet(MustParseCards("AhKd2c")...)
	stub := NewStub(dead, randutil.New(7))
	require.Equal(t, 49, stub.Len())

	for range 500 {
		drawn := stub.Draw(5)
		require.Len(t, drawn, 5)
		seen := NewCardSet(drawn...)
		assert.Equal(t, 5, seen.Len(), "draw returned a duplicate: %s", FormatCards(drawn))
		assert.False(t, seen.Overlaps(dead), "draw returned a dead card: %s", FormatCards(drawn))
	}
}

func TestStubDrawTooMany(t *testing.T) {
	t.Parallel()
	var dead CardSet
	for _, c := range NewDeck()[:50] {
		dead.Add(c)
	}
	stub := NewStub(dead, randutil.New(1))
	assert.Nil(t, stub.Draw(3))
	assert.Len(t, stub.Draw(2), 2)
	assert.Empty(t, stub.Draw(0))
}

func TestStubIsReproducible(t *testing.T) {
	t.Parallel()
	a := NewStub(0, randutil.New(42))
	b := NewStub(0, randutil.New(42))
	for range 20 {
		assert.Equal(t, FormatCards(a.Draw(5)), FormatCards(b.Draw(5)))
	}
}

func TestStubCoversWholePool(t *testing.T) {
	t.Parallel()
	stub := NewStub(NewCardSet(MustParseCards("AsAh")...), randutil.New(3))
	var seen CardSet
	for range 2000 {
		seen |= NewCardSet(stub.Draw(1)...)
	}
	assert.Equal(t, 50, seen.Len())
}

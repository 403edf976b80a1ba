package poker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCardCreation(t *testing.T) {
	t.Parallel()
	aceSpades := NewCard(Ace, Spades)
	if aceSpades.Rank != Ace {
		t.Errorf("Expected rank Ace, got %d", aceSpades.Rank)
	}
	if aceSpades.Suit != Spades {
		t.Errorf("Expected suit Spades, got %d", aceSpades.Suit)
	}
	if aceSpades.String() != "As" {
		t.Errorf("Expected 'As', got %s", aceSpades.String())
	}
	if aceSpades.Pretty() != "A♠" {
		t.Errorf("Expected 'A♠', got %s", aceSpades.Pretty())
	}

	twoClubs := NewCard(Two, Clubs)
	if twoClubs.String() != "2c" {
		t.Errorf("Expected '2c', got %s", twoClubs.String())
	}
}

func TestParseCard(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		input    string
		wantCard Card
		wantErr  bool
	}{
		{name: "ace of spades", input: "As", wantCard: NewCard(Ace, Spades)},
		{name: "two of hearts", input: "2h", wantCard: NewCard(Two, Hearts)},
		{name: "lowercase king", input: "kd", wantCard: NewCard(King, Diamonds)},
		{name: "uppercase suit", input: "TC", wantCard: NewCard(Ten, Clubs)},
		{name: "nine of spades", input: "9s", wantCard: NewCard(Nine, Spades)},
		{name: "invalid rank", input: "Xs", wantErr: true},
		{name: "invalid suit", input: "Ax", wantErr: true},
		{name: "one is not a rank", input: "1s", wantErr: true},
		{name: "empty string", input: "", wantErr: true},
		{name: "too short", input: "A", wantErr: true},
		{name: "too long", input: "Asd", wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			card, err := ParseCard(tc.input)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.wantCard, card)
		})
	}
}

func TestParseCards(t *testing.T) {
	t.Parallel()

	spaced, err := ParseCards("As Kd 2c")
	require.NoError(t, err)
	packed, err := ParseCards("askd2c")
	require.NoError(t, err)
	assert.Equal(t, spaced, packed)
	assert.Equal(t, "As Kd 2c", FormatCards(spaced))

	empty, err := ParseCards("   ")
	require.NoError(t, err)
	assert.Empty(t, empty)

	_, err = ParseCards("AsK")
	assert.Error(t, err)
	_, err = ParseCards("AsKx")
	assert.Error(t, err)
}

func TestAll52Cards(t *testing.T) {
	t.Parallel()
	deck := NewDeck()
	require.Len(t, deck, 52)

	seen := make(map[string]bool)
	indexes := make(map[int]bool)
	for _, card := range deck {
		str := card.String()
		if seen[str] {
			t.Errorf("Duplicate card: %s", str)
		}
		seen[str] = true
		indexes[card.Index()] = true

		parsed, err := ParseCard(str)
		require.NoError(t, err)
		if parsed != card {
			t.Errorf("Round-trip failed for %s", str)
		}
	}
	assert.Len(t, indexes, 52)
	for i := range 52 {
		assert.True(t, indexes[i], "missing index %d", i)
	}
}

func TestCardSet(t *testing.T) {
	t.Parallel()
	as := MustParseCard("As")
	kh := MustParseCard("Kh")
	qd := MustParseCard("Qd")

	set := NewCardSet(as, kh)
	assert.True(t, set.Contains(as))
	assert.True(t, set.Contains(kh))
	assert.False(t, set.Contains(qd))
	assert.Equal(t, 2, set.Len())

	set.Add(qd)
	assert.Equal(t, 3, set.Len())

	assert.True(t, set.Overlaps(NewCardSet(qd)))
	assert.False(t, set.Overlaps(NewCardSet(MustParseCard("2c"))))

	// Adding twice is a no-op.
	set.Add(as)
	assert.Equal(t, 3, set.Len())
}

func BenchmarkParseCard(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_, _ = ParseCard("As")
	}
}

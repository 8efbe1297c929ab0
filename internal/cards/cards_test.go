package cards

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/deckforge/internal/command"
	"github.com/lox/deckforge/internal/game"
)

func TestCardTable(t *testing.T) {
	set := NewBasicSet()

	tests := []struct {
		name string
		kind command.Kind
		cost int
	}{
		{Copper, command.KindTreasure, 0},
		{Silver, command.KindTreasure, 3},
		{Gold, command.KindTreasure, 6},
		{Estate, command.KindVictory, 2},
		{Province, command.KindVictory, 8},
		{Bazaar, command.KindAction, 5},
		{Courier, command.KindAction, 4},
		{Raider, command.KindAction, 5},
		{Palisade, command.KindAction, 2},
		{Scribe, command.KindAction, 3},
		{Forge, command.KindAction, 3},
	}
	for _, tt := range tests {
		info, ok := set.Card(tt.name)
		require.True(t, ok, tt.name)
		assert.Equal(t, tt.kind, info.Kind, tt.name)
		assert.Equal(t, tt.cost, info.Cost, tt.name)
	}

	_, ok := set.Card("Dragon")
	assert.False(t, ok)
}

func TestPalisadeIsTheOnlyReaction(t *testing.T) {
	set := NewBasicSet()
	for _, name := range []string{Copper, Estate, Bazaar, Raider, Scribe, Forge} {
		info, _ := set.Card(name)
		assert.False(t, info.Reaction, name)
	}
	palisade, _ := set.Card(Palisade)
	assert.True(t, palisade.Reaction)
}

func TestStartingDeck(t *testing.T) {
	deck := NewBasicSet().StartingDeck()
	require.Len(t, deck, 10)
	counts := map[string]int{}
	for _, c := range deck {
		counts[c]++
	}
	assert.Equal(t, 7, counts[Copper])
	assert.Equal(t, 3, counts[Estate])
}

func TestSupplyFor(t *testing.T) {
	set := NewBasicSet()

	two := set.SupplyFor(2)
	assert.Equal(t, 8, two[Province])
	assert.Equal(t, 8, two[Duchy])
	assert.Equal(t, 8+3*2, two[Estate], "victory pile plus starting estates")
	assert.Equal(t, 10, two[Bazaar])

	four := set.SupplyFor(4)
	assert.Equal(t, 12, four[Province])
	assert.Equal(t, 12+3*4, four[Estate])
}

func TestGameOver(t *testing.T) {
	set := NewBasicSet()
	supply := set.SupplyFor(2)
	assert.False(t, set.GameOver(supply))

	t.Run("provinces exhausted", func(t *testing.T) {
		s := set.SupplyFor(2)
		s[Province] = 0
		assert.True(t, set.GameOver(s))
	})
	t.Run("three empty piles", func(t *testing.T) {
		s := set.SupplyFor(2)
		s[Bazaar] = 0
		s[Scribe] = 0
		assert.False(t, set.GameOver(s), "two empty piles is not enough")
		s[Courier] = 0
		assert.True(t, set.GameOver(s))
	})
}

func TestScoreCountsAllZones(t *testing.T) {
	st := game.NewState()
	st.Players = map[string]*game.PlayerState{
		"alice": {
			ID:      "alice",
			Deck:    []string{Estate, Copper},
			Hand:    []string{Duchy},
			Discard: []string{Province, Silver},
			InPlay:  []string{Estate},
		},
	}

	// 1 + 3 + 6 + 1; treasures score nothing.
	assert.Equal(t, 11, Score(st, "alice"))
	assert.Equal(t, 0, Score(st, "bob"))
}

package randutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewIsDeterministic(t *testing.T) {
	a, b := New(42), New(42)
	for i := 0; i < 20; i++ {
		assert.Equal(t, a.Uint64(), b.Uint64())
	}
}

func TestDifferentSeedsDiverge(t *testing.T) {
	a, b := New(1), New(2)
	same := true
	for i := 0; i < 8; i++ {
		if a.Uint64() != b.Uint64() {
			same = false
		}
	}
	assert.False(t, same)
}

func TestShuffleReproducible(t *testing.T) {
	deal := func() []int {
		rng := New(7)
		cards := []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}
		rng.Shuffle(len(cards), func(i, j int) {
			cards[i], cards[j] = cards[j], cards[i]
		})
		return cards
	}
	assert.Equal(t, deal(), deal())
}

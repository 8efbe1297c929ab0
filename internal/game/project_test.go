package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/deckforge/internal/event"
)

// sampleLog builds a small but representative log: a two-player start,
// some card movement, a resource change and a decision round trip.
func sampleLog() []event.Event {
	return []event.Event{
		{Type: event.TypeGameStarted, ID: "e1", Players: []string{"alice", "bob"},
			Supply: map[string]int{"Copper": 10, "Estate": 8, "Courier": 10}},
		{Type: event.TypeCardGained, ID: "e2", CausedBy: "e1", Player: "alice", Card: "Copper"},
		{Type: event.TypeCardGained, ID: "e3", CausedBy: "e1", Player: "alice", Card: "Estate"},
		{Type: event.TypeDeckShuffled, ID: "e4", CausedBy: "e1", Player: "alice", Cards: []string{"Copper", "Estate"}},
		{Type: event.TypeCardMoved, ID: "e5", CausedBy: "e1", Player: "alice", Card: "Copper", From: ZoneDeck, To: ZoneHand},
		{Type: event.TypeTurnStarted, ID: "e6", CausedBy: "e1", Player: "alice", Turn: 1},
		{Type: event.TypeResourceChanged, ID: "e7", Player: "alice", Resource: ResourceCoins, Amount: 2},
		{Type: event.TypeDecisionRequested, ID: "e8", Player: "alice", Prompt: "discard_then_draw", Optional: true},
		{Type: event.TypeDecisionResolved, ID: "e9", CausedBy: "e8", Player: "alice", Cards: []string{"Copper"}},
	}
}

func TestProjectDeterminism(t *testing.T) {
	log := sampleLog()
	assert.Equal(t, Project(log), Project(log))
}

func TestProjectSplitFoldContinuation(t *testing.T) {
	// Folding a prefix and continuing with Apply matches a full fold,
	// for every split point.
	log := sampleLog()
	want := Project(log)
	for k := 0; k <= len(log); k++ {
		st := Project(log[:k])
		for _, e := range log[k:] {
			Apply(st, e)
		}
		assert.Equal(t, want, st, "split at %d", k)
	}
}

func TestProjectTransitions(t *testing.T) {
	st := Project(sampleLog())

	require.True(t, st.Started)
	assert.Equal(t, []string{"alice", "bob"}, st.Order)
	assert.Equal(t, "alice", st.Current)
	assert.Equal(t, 1, st.Turn)
	assert.Equal(t, PhaseAction, st.Phase)

	alice := st.Player("alice")
	require.NotNil(t, alice)
	assert.Equal(t, []string{"Estate"}, alice.Deck)
	assert.Equal(t, []string{"Copper"}, alice.Hand)
	assert.Equal(t, 2, alice.Coins)
	assert.Equal(t, 1, alice.Actions)

	// Both gains came out of the supply.
	assert.Equal(t, 9, st.Supply["Copper"])
	assert.Equal(t, 7, st.Supply["Estate"])

	// The decision was requested and resolved, leaving no pending prompt.
	assert.Nil(t, st.ActivePrompt())
}

func TestProjectSkipsUnknownAndMalformedEvents(t *testing.T) {
	log := sampleLog()
	withNoise := append(append([]event.Event(nil), log...),
		event.Event{Type: "FUTURE_EVENT", ID: "e90", Player: "alice"},
		event.Event{Type: event.TypeCardMoved, ID: "e91", Player: "nobody", Card: "Gold", From: ZoneDeck, To: ZoneHand},
		event.Event{Type: event.TypeCardMoved, ID: "e92", Player: "alice", Card: "Gold", From: "void", To: ZoneHand},
		event.Event{Type: event.TypeResourceChanged, ID: "e93", Player: "alice", Resource: "mana", Amount: 5},
	)
	assert.Equal(t, Project(log), Project(withNoise))
}

func TestProjectEmptyLog(t *testing.T) {
	st := Project(nil)
	assert.False(t, st.Started)
	assert.Empty(t, st.Players)
}

func TestApplyCardPlayed(t *testing.T) {
	st := NewState()
	st.Players["p"] = &PlayerState{ID: "p", Hand: []string{"Courier", "Copper"}}

	Apply(st, event.Event{Type: event.TypeCardPlayed, ID: "e1", Player: "p", Card: "Courier"})
	assert.Equal(t, []string{"Copper"}, st.Players["p"].Hand)
	assert.Equal(t, []string{"Courier"}, st.Players["p"].InPlay)

	// Playing a card not in hand is skipped, not fatal.
	Apply(st, event.Event{Type: event.TypeCardPlayed, ID: "e2", Player: "p", Card: "Gold"})
	assert.Equal(t, []string{"Courier"}, st.Players["p"].InPlay)
}

func TestApplyTrashMove(t *testing.T) {
	st := NewState()
	st.Players["p"] = &PlayerState{ID: "p", Hand: []string{"Estate"}}

	Apply(st, event.Event{Type: event.TypeCardMoved, ID: "e1", Player: "p", Card: "Estate", From: ZoneHand, To: ZoneTrash})
	assert.Empty(t, st.Players["p"].Hand)
	assert.Equal(t, []string{"Estate"}, st.Trash)
}

func TestApplyPromptMismatchSkipped(t *testing.T) {
	st := NewState()
	st.Players["a"] = &PlayerState{ID: "a"}
	st.Players["b"] = &PlayerState{ID: "b"}
	Apply(st, event.Event{Type: event.TypeDecisionRequested, ID: "e1", Player: "a", Prompt: "discard_to", Max: 3})

	// A resolution from the wrong player leaves the queue untouched.
	Apply(st, event.Event{Type: event.TypeDecisionResolved, ID: "e2", Player: "b"})
	require.NotNil(t, st.ActivePrompt())
	assert.Equal(t, "a", st.ActivePrompt().Player)
}

func TestStateClone(t *testing.T) {
	st := Project(sampleLog())
	c := st.Clone()
	require.Equal(t, st, c)

	c.Players["alice"].Hand = append(c.Players["alice"].Hand, "Gold")
	c.Supply["Copper"] = 0
	c.Order[0] = "mallory"

	assert.NotEqual(t, st.Players["alice"].Hand, c.Players["alice"].Hand)
	assert.Equal(t, 9, st.Supply["Copper"])
	assert.Equal(t, "alice", st.Order[0])
}

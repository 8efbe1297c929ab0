package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/deckforge/internal/cards"
	"github.com/lox/deckforge/internal/command"
	"github.com/lox/deckforge/internal/event"
	"github.com/lox/deckforge/internal/game"
)

func testEngine(t *testing.T) *Engine {
	t.Helper()
	return New(Config{
		Resolver: cards.NewBasicSet(),
		Seed:     7,
	})
}

func startGame(t *testing.T, e *Engine, players ...string) {
	t.Helper()
	require.NoError(t, e.Dispatch(command.Command{
		Type:    command.TypeStartGame,
		Players: players,
	}, ""))
}

func TestDispatchAppendsAndNotifies(t *testing.T) {
	e := testEngine(t)

	var gotEvents []event.Event
	var gotState *game.State
	calls := 0
	e.Subscribe(func(newEvents []event.Event, st *game.State) {
		calls++
		gotEvents = newEvents
		gotState = st
	})

	startGame(t, e, "alice", "bob")

	require.Equal(t, 1, calls, "notification is synchronous with dispatch")
	assert.Equal(t, e.Events(), gotEvents)
	assert.True(t, gotState.Started)
	assert.Same(t, e.State(), gotState)
}

func TestDispatchRejectionChangesNothing(t *testing.T) {
	e := testEngine(t)
	startGame(t, e, "alice", "bob")
	before := e.Events()

	calls := 0
	e.Subscribe(func([]event.Event, *game.State) { calls++ })

	err := e.Dispatch(command.Command{
		Type: command.TypeEndPhase, Player: "bob",
	}, "bob")
	assert.ErrorIs(t, err, command.ErrNotYourTurn)
	assert.Equal(t, before, e.Events())
	assert.Zero(t, calls)
}

func TestEveryEventGetsAnID(t *testing.T) {
	e := testEngine(t)
	startGame(t, e, "alice", "bob")

	seen := map[string]bool{}
	for _, evt := range e.Events() {
		require.NotEmpty(t, evt.ID)
		require.False(t, seen[evt.ID], "duplicate id %s", evt.ID)
		seen[evt.ID] = true
	}
}

func TestStateIsMemoized(t *testing.T) {
	e := testEngine(t)
	startGame(t, e, "alice", "bob")

	first := e.State()
	assert.Same(t, first, e.State())

	require.NoError(t, e.Dispatch(command.Command{
		Type: command.TypeEndPhase, Player: "alice",
	}, "alice"))
	second := e.State()
	assert.NotSame(t, first, second)
	assert.Equal(t, game.PhaseBuy, second.Phase)
}

func TestForkIsIndependent(t *testing.T) {
	e := testEngine(t)
	startGame(t, e, "alice", "bob")
	baseline := e.Events()

	f := e.Fork()
	require.NoError(t, f.Dispatch(command.Command{
		Type: command.TypeEndPhase, Player: "alice",
	}, "alice"))

	assert.Equal(t, baseline, e.Events(), "fork mutation must not leak back")
	assert.Len(t, f.Events(), len(baseline)+1)
	assert.Equal(t, game.PhaseAction, e.State().Phase)
	assert.Equal(t, game.PhaseBuy, f.State().Phase)

	// Fresh ids on the original continue past the fork's history.
	require.NoError(t, e.Dispatch(command.Command{
		Type: command.TypeEndPhase, Player: "alice",
	}, "alice"))
	assert.Equal(t, f.Events()[len(baseline)].ID, e.Events()[len(baseline)].ID)
}

func TestForkCarriesNoSubscribers(t *testing.T) {
	e := testEngine(t)
	calls := 0
	e.Subscribe(func([]event.Event, *game.State) { calls++ })
	startGame(t, e, "alice", "bob")
	require.Equal(t, 1, calls)

	f := e.Fork()
	require.NoError(t, f.Dispatch(command.Command{
		Type: command.TypeEndPhase, Player: "alice",
	}, "alice"))
	assert.Equal(t, 1, calls)
}

func TestStateAtEvent(t *testing.T) {
	e := testEngine(t)
	startGame(t, e, "alice", "bob")
	events := e.Events()

	// After only the root event the game has started but no cards moved.
	atRoot, err := e.StateAtEvent(events[0].ID)
	require.NoError(t, err)
	assert.True(t, atRoot.Started)
	assert.Empty(t, atRoot.Player("alice").Hand)

	// The full prefix reproduces the current state.
	atLast, err := e.StateAtEvent(events[len(events)-1].ID)
	require.NoError(t, err)
	assert.Equal(t, e.State(), atLast)

	_, err = e.StateAtEvent("e999")
	assert.ErrorIs(t, err, ErrEventNotFound)
}

func TestLoadEventsReplacesNotAppends(t *testing.T) {
	sender := testEngine(t)
	startGame(t, sender, "alice", "bob")
	require.NoError(t, sender.Dispatch(command.Command{
		Type: command.TypeEndPhase, Player: "alice",
	}, "alice"))

	// The receiver is ahead of the payload, as after an undo truncation.
	receiver := testEngine(t)
	startGame(t, receiver, "alice", "bob")
	for _, cmd := range []command.Command{
		{Type: command.TypeEndPhase, Player: "alice"},
		{Type: command.TypeEndPhase, Player: "alice"},
	} {
		require.NoError(t, receiver.Dispatch(cmd, "alice"))
	}
	require.Greater(t, len(receiver.Events()), len(sender.Events()))

	var notified []event.Event
	receiver.Subscribe(func(newEvents []event.Event, _ *game.State) {
		notified = newEvents
	})
	receiver.LoadEvents(sender.Events())

	assert.Equal(t, sender.Events(), receiver.Events())
	assert.Equal(t, sender.Events(), notified)
	assert.Equal(t, game.PhaseBuy, receiver.State().Phase)
}

func TestLoadEventsAssignsMissingIDs(t *testing.T) {
	e := testEngine(t)
	e.LoadEvents([]event.Event{
		{Type: event.TypeGameStarted, ID: "e1", Players: []string{"alice", "bob"},
			Supply: map[string]int{cards.Copper: 60}},
		{Type: event.TypeTurnStarted, CausedBy: "e1", Player: "alice", Turn: 1},
	})

	events := e.Events()
	require.Len(t, events, 2)
	assert.Equal(t, "e2", events[1].ID, "generator must skip past existing ids")
}

func TestLoadEventsSilent(t *testing.T) {
	e := testEngine(t)
	calls := 0
	e.Subscribe(func([]event.Event, *game.State) { calls++ })

	e.LoadEventsSilent([]event.Event{
		{Type: event.TypeGameStarted, ID: "e1", Players: []string{"alice", "bob"}},
	})
	assert.Zero(t, calls)
	assert.Len(t, e.Events(), 1)
}

func TestApplyExternalEventsAppends(t *testing.T) {
	e := testEngine(t)
	startGame(t, e, "alice", "bob")
	before := len(e.Events())

	var notified []event.Event
	e.Subscribe(func(newEvents []event.Event, _ *game.State) { notified = newEvents })

	ext := []event.Event{
		{Type: event.TypePhaseChanged, ID: "e900", Player: "alice", Phase: string(game.PhaseBuy)},
		{Type: event.TypeResourceChanged, CausedBy: "e900", Player: "alice",
			Resource: game.ResourceCoins, Amount: 2},
	}
	e.ApplyExternalEvents(ext)

	events := e.Events()
	require.Len(t, events, before+2)
	assert.Equal(t, "e900", events[before].ID, "existing ids are preserved")
	assert.Equal(t, "e901", events[before+1].ID, "missing ids continue past the max")
	assert.Len(t, notified, 2)
	assert.Equal(t, 2, e.State().Player("alice").Coins)
}

func TestSerializeRoundTrip(t *testing.T) {
	e := testEngine(t)
	startGame(t, e, "alice", "bob")
	require.NoError(t, e.Dispatch(command.Command{
		Type: command.TypeEndPhase, Player: "alice",
	}, "alice"))

	data, err := e.Serialize()
	require.NoError(t, err)

	restored := testEngine(t)
	require.NoError(t, restored.Deserialize(data))
	assert.Equal(t, e.Events(), restored.Events())
	assert.Equal(t, e.State(), restored.State())
}

func TestDeserializeMalformed(t *testing.T) {
	e := testEngine(t)
	assert.Error(t, e.Deserialize([]byte("{broken")))
}

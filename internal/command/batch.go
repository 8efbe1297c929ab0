package command

import (
	rand "math/rand/v2"

	"github.com/lox/deckforge/internal/event"
	"github.com/lox/deckforge/internal/game"
)

// Ref identifies the cause of an event being added to a Batch: either an
// earlier event in the same batch (by index, before ids exist) or an
// event id already present in the log.
type Ref struct {
	idx int
	id  string
}

// NoCause marks an event as a root-cause event.
func NoCause() Ref {
	return Ref{idx: -1}
}

// ByID links to an event id already present in the log, used when a
// decision or reaction resolves against its originating event.
func ByID(id string) Ref {
	return Ref{idx: -1, id: id}
}

// Batch accumulates the events produced by one command, tracking their
// causal links positionally so the engine can assign ids at append time
// and stamp CausedBy afterwards. The batch also maintains a private
// clone of the state, folded forward with each added event, so effect
// generation can consult intermediate state (deck contents mid-draw,
// prompt queues) without touching the canonical state.
type Batch struct {
	state  *game.State
	rng    *rand.Rand
	events []event.Event
	causes []Ref
}

// NewBatch starts a batch against a clone of st. The RNG decides shuffle
// orders, which are recorded as events so projection stays pure.
func NewBatch(st *game.State, rng *rand.Rand) *Batch {
	return &Batch{state: st.Clone(), rng: rng}
}

// Add appends an event with the given cause and folds it into the
// batch's state clone. Returns a Ref to the added event for chaining.
func (b *Batch) Add(e event.Event, cause Ref) Ref {
	b.events = append(b.events, e)
	b.causes = append(b.causes, cause)
	game.Apply(b.state, e)
	return Ref{idx: len(b.events) - 1}
}

// State returns the batch's working state: the input state with every
// added event already applied.
func (b *Batch) State() *game.State {
	return b.state
}

// Len returns the number of events accumulated so far.
func (b *Batch) Len() int {
	return len(b.events)
}

// Stamp assigns ids from gen to every id-less event and resolves the
// recorded causal links into CausedBy fields. Called by the engine at
// append time.
func (b *Batch) Stamp(gen *event.Generator) []event.Event {
	out := make([]event.Event, len(b.events))
	copy(out, b.events)
	for i := range out {
		if out[i].ID == "" {
			out[i].ID = gen.Next()
		}
	}
	for i, cause := range b.causes {
		switch {
		case cause.id != "":
			out[i].CausedBy = cause.id
		case cause.idx >= 0:
			out[i].CausedBy = out[cause.idx].ID
		}
	}
	return out
}

// Draw emits the events drawing n cards for player, shuffling the
// discard pile under the deck when the deck runs out. Drawing stops
// silently when both piles are empty.
func (b *Batch) Draw(player string, n int, cause Ref) {
	for i := 0; i < n; i++ {
		p := b.state.Player(player)
		if p == nil {
			return
		}
		if len(p.Deck) == 0 {
			if len(p.Discard) == 0 {
				return
			}
			b.Shuffle(player, cause)
			p = b.state.Player(player)
		}
		top := p.Deck[0]
		b.Add(event.Event{
			Type:   event.TypeCardMoved,
			Player: player,
			Card:   top,
			From:   game.ZoneDeck,
			To:     game.ZoneHand,
		}, cause)
	}
}

// Shuffle emits a DECK_SHUFFLED event carrying the new deck order, with
// the discard pile folded in.
func (b *Batch) Shuffle(player string, cause Ref) {
	p := b.state.Player(player)
	if p == nil {
		return
	}
	pool := make([]string, 0, len(p.Deck)+len(p.Discard))
	pool = append(pool, p.Deck...)
	pool = append(pool, p.Discard...)
	b.rng.Shuffle(len(pool), func(i, j int) {
		pool[i], pool[j] = pool[j], pool[i]
	})
	b.Add(event.Event{
		Type:   event.TypeDeckShuffled,
		Player: player,
		Cards:  pool,
	}, cause)
}

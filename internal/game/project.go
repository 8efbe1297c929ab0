package game

import "github.com/lox/deckforge/internal/event"

// Project folds an event log into a State. The fold is pure and
// deterministic: the same prefix always yields the same state, which is
// what time-travel preview and multi-client replay rely on.
//
// Projection never fails. Unknown event types and structurally malformed
// events (references to players or zones the state does not know) are
// skipped, because externally-sourced logs may legitimately be ahead of
// this receiver's understanding.
func Project(events []event.Event) *State {
	st := NewState()
	for _, e := range events {
		Apply(st, e)
	}
	return st
}

// Apply executes the single state-transition rule for one event. It is
// the fold step of Project, exported so callers can continue a fold from
// a previously projected prefix.
func Apply(st *State, e event.Event) {
	switch e.Type {
	case event.TypeGameStarted:
		applyGameStarted(st, e)
	case event.TypeTurnStarted:
		applyTurnStarted(st, e)
	case event.TypePhaseChanged:
		if e.Phase != "" {
			st.Phase = Phase(e.Phase)
		}
	case event.TypeGameEnded:
		st.Over = true
	case event.TypeCardPlayed:
		if p := st.Player(e.Player); p != nil {
			if removeFirst(&p.Hand, e.Card) {
				p.InPlay = append(p.InPlay, e.Card)
			}
		}
	case event.TypeCardMoved:
		applyCardMoved(st, e)
	case event.TypeCardGained:
		applyCardGained(st, e)
	case event.TypeDeckShuffled:
		if p := st.Player(e.Player); p != nil {
			p.Deck = append([]string(nil), e.Cards...)
			p.Discard = nil
		}
	case event.TypeResourceChanged:
		applyResourceChanged(st, e)
	case event.TypeDecisionRequested:
		if st.Player(e.Player) != nil {
			st.Prompts = append(st.Prompts, Prompt{
				Kind:     PromptDecision,
				Player:   e.Player,
				Card:     e.Card,
				Name:     e.Prompt,
				Max:      e.Max,
				Optional: e.Optional,
				CauseID:  e.ID,
			})
		}
	case event.TypeReactionRequested:
		if st.Player(e.Player) != nil {
			st.Prompts = append(st.Prompts, Prompt{
				Kind:     PromptReaction,
				Player:   e.Player,
				Card:     e.Card,
				Name:     e.Prompt,
				Reaction: e.Reaction,
				CauseID:  e.ID,
			})
		}
	case event.TypeDecisionResolved, event.TypeDecisionSkipped:
		popPrompt(st, PromptDecision, e.Player)
	case event.TypeReactionRevealed, event.TypeReactionDeclined:
		popPrompt(st, PromptReaction, e.Player)
	case event.TypeUndoRequested, event.TypeUndoDenied, event.TypeUndoExecuted:
		// Undo arbitration is engine-level bookkeeping, not game state.
	default:
		// Unknown event type, possibly from a newer peer. Skip.
	}
}

func applyGameStarted(st *State, e event.Event) {
	st.Started = true
	st.Order = append([]string(nil), e.Players...)
	st.Players = make(map[string]*PlayerState, len(e.Players))
	for _, id := range e.Players {
		st.Players[id] = &PlayerState{ID: id}
	}
	st.Supply = make(map[string]int, len(e.Supply))
	for card, n := range e.Supply {
		st.Supply[card] = n
	}
}

func applyTurnStarted(st *State, e event.Event) {
	p := st.Player(e.Player)
	if p == nil {
		return
	}
	st.Current = e.Player
	st.Turn = e.Turn
	st.Phase = PhaseAction
	p.Actions = 1
	p.Buys = 1
	p.Coins = 0
}

func applyCardMoved(st *State, e event.Event) {
	p := st.Player(e.Player)
	if p == nil {
		return
	}
	if e.From == ZoneTrash || e.To == ZoneTrash {
		if e.To == ZoneTrash {
			if from := p.zone(e.From); from != nil && removeFirst(from, e.Card) {
				st.Trash = append(st.Trash, e.Card)
			}
		}
		return
	}
	from, to := p.zone(e.From), p.zone(e.To)
	if from == nil || to == nil {
		return
	}
	if removeFirst(from, e.Card) {
		*to = append(*to, e.Card)
	}
}

func applyCardGained(st *State, e event.Event) {
	p := st.Player(e.Player)
	if p == nil || st.Supply[e.Card] <= 0 {
		return
	}
	st.Supply[e.Card]--
	zoneName := e.To
	if zoneName == "" {
		zoneName = ZoneDiscard
	}
	if zone := p.zone(zoneName); zone != nil {
		*zone = append(*zone, e.Card)
	}
}

func applyResourceChanged(st *State, e event.Event) {
	p := st.Player(e.Player)
	if p == nil {
		return
	}
	switch e.Resource {
	case ResourceActions:
		p.Actions += e.Amount
	case ResourceBuys:
		p.Buys += e.Amount
	case ResourceCoins:
		p.Coins += e.Amount
	}
}

// popPrompt removes the head prompt if it matches the given kind and
// player. Mismatches are skipped rather than failed: a malformed or
// ahead-of-us log must never abort projection.
func popPrompt(st *State, kind PromptKind, player string) {
	if len(st.Prompts) == 0 {
		return
	}
	head := st.Prompts[0]
	if head.Kind != kind || head.Player != player {
		return
	}
	st.Prompts = append([]Prompt(nil), st.Prompts[1:]...)
}

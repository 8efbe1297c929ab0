// Package event defines the immutable event record that forms the game's
// source of truth, the monotonic id generator, and the causal-chain
// queries the undo machinery is built on.
//
// An event log is a flat ordered slice of Event values. Causality is a
// single back-pointer per event (CausedBy), which makes the log a forest:
// every event without a cause is the root of a tree of effect events.
package event

// Type identifies the kind of game event.
type Type string

// Game lifecycle events.
const (
	// TypeGameStarted records the seating order and supply composition.
	TypeGameStarted Type = "GAME_STARTED"
	// TypeTurnStarted records the start of a player's turn.
	TypeTurnStarted Type = "TURN_STARTED"
	// TypePhaseChanged records a phase transition within a turn.
	TypePhaseChanged Type = "PHASE_CHANGED"
	// TypeGameEnded records the end of the game.
	TypeGameEnded Type = "GAME_ENDED"
)

// Card and resource events.
const (
	// TypeCardPlayed records a card moving from hand into play.
	TypeCardPlayed Type = "CARD_PLAYED"
	// TypeCardMoved records a card relocating between two named zones.
	TypeCardMoved Type = "CARD_MOVED"
	// TypeCardGained records a card leaving the supply for a player zone.
	TypeCardGained Type = "CARD_GAINED"
	// TypeDeckShuffled records a shuffle result: the discard pile folds
	// into the deck and the new deck order is carried in Cards.
	TypeDeckShuffled Type = "DECK_SHUFFLED"
	// TypeResourceChanged records a signed delta to a turn resource.
	TypeResourceChanged Type = "RESOURCE_CHANGED"
)

// Decision and reaction events.
const (
	// TypeDecisionRequested records that a player owes follow-up input.
	TypeDecisionRequested Type = "DECISION_REQUESTED"
	// TypeDecisionResolved records the player's submitted choice.
	TypeDecisionResolved Type = "DECISION_RESOLVED"
	// TypeDecisionSkipped records an optional decision being skipped.
	TypeDecisionSkipped Type = "DECISION_SKIPPED"
	// TypeReactionRequested records a reaction window opening for a player.
	TypeReactionRequested Type = "REACTION_REQUESTED"
	// TypeReactionRevealed records a reaction card being revealed.
	TypeReactionRevealed Type = "REACTION_REVEALED"
	// TypeReactionDeclined records a reaction window being passed on.
	TypeReactionDeclined Type = "REACTION_DECLINED"
)

// Undo arbitration events. Only the request, denial and execution are
// persisted; partial approvals live in the engine's pending record.
const (
	TypeUndoRequested Type = "UNDO_REQUESTED"
	TypeUndoDenied    Type = "UNDO_DENIED"
	TypeUndoExecuted  Type = "UNDO_EXECUTED"
)

// String returns the string representation of the event type.
func (t Type) String() string {
	return string(t)
}

// Event is a single immutable record in the game log. ID and CausedBy are
// structural; every other field is variant payload and serializes only
// when set. The whole log persists as one JSON array of these records.
type Event struct {
	Type Type `json:"type"`

	// ID is assigned by the engine at append time when absent. Unique
	// within one causal history.
	ID string `json:"id,omitempty"`

	// CausedBy is the id of the event that directly produced this one.
	// Empty marks a root-cause event attributable to player intent.
	CausedBy string `json:"causedBy,omitempty"`

	// Player is the acting or affected player.
	Player string `json:"player,omitempty"`
	// Card names a single card.
	Card string `json:"card,omitempty"`
	// Cards carries an ordered card list (shuffle results, decision picks).
	Cards []string `json:"cards,omitempty"`
	// From and To name zones for CARD_MOVED and CARD_GAINED.
	From string `json:"from,omitempty"`
	To   string `json:"to,omitempty"`
	// Resource and Amount carry a signed delta for RESOURCE_CHANGED.
	Resource string `json:"resource,omitempty"`
	Amount   int    `json:"amount,omitempty"`
	// Phase is the new phase for PHASE_CHANGED.
	Phase string `json:"phase,omitempty"`
	// Turn is the turn number for TURN_STARTED.
	Turn int `json:"turn,omitempty"`
	// Players is the seating order for GAME_STARTED.
	Players []string `json:"players,omitempty"`
	// Supply is the initial pile composition for GAME_STARTED.
	Supply map[string]int `json:"supply,omitempty"`
	// Prompt identifies the kind of follow-up input requested.
	Prompt string `json:"prompt,omitempty"`
	// Reaction names the card a REACTION_REQUESTED window offers to reveal.
	Reaction string `json:"reaction,omitempty"`
	// Max is a prompt constraint (e.g. target hand size, max gain cost).
	Max int `json:"max,omitempty"`
	// Optional marks a prompt the player may skip.
	Optional bool `json:"optional,omitempty"`

	// Undo arbitration payload.
	RequestID string `json:"requestId,omitempty"`
	TargetID  string `json:"targetId,omitempty"`
	Reason    string `json:"reason,omitempty"`
	// LastID is the id of the event that was last in the log before an
	// undo truncation, carried on UNDO_EXECUTED so receivers can detect
	// that the log shrank.
	LastID string `json:"lastId,omitempty"`
}

// Root reports whether the event is a root-cause event.
func (e Event) Root() bool {
	return e.CausedBy == ""
}

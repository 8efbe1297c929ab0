// Package game defines the derived game state and the projector that
// folds an event log into it. State is a view, never ground truth: it is
// always recomputable from the log and is never persisted directly.
package game

// Phase identifies the current phase of a turn.
type Phase string

const (
	// PhaseAction is the phase in which action cards may be played.
	PhaseAction Phase = "action"
	// PhaseBuy is the phase in which treasures are played and cards bought.
	PhaseBuy Phase = "buy"
	// PhaseCleanup is the transient end-of-turn phase.
	PhaseCleanup Phase = "cleanup"
)

// Zone names used by CARD_MOVED and CARD_GAINED events.
const (
	ZoneDeck    = "deck"
	ZoneHand    = "hand"
	ZoneDiscard = "discard"
	ZoneInPlay  = "inplay"
	ZoneTrash   = "trash"
)

// Resource names used by RESOURCE_CHANGED events.
const (
	ResourceActions = "actions"
	ResourceBuys    = "buys"
	ResourceCoins   = "coins"
)

// PromptKind distinguishes queued follow-up input requests.
type PromptKind string

const (
	// PromptDecision awaits a SUBMIT_DECISION or SKIP_DECISION command.
	PromptDecision PromptKind = "decision"
	// PromptReaction awaits a REVEAL_REACTION or DECLINE_REACTION command.
	PromptReaction PromptKind = "reaction"
)

// Prompt is a queued request for follow-up input from a player. The head
// of State.Prompts is the one currently awaiting input.
type Prompt struct {
	Kind   PromptKind
	Player string
	// Card is the card that raised the prompt (the attack, for reactions).
	Card string
	// Name identifies the prompt shape, e.g. "discard_to", "discard_then_draw".
	Name string
	// Reaction is the card the player may reveal, for reaction prompts.
	Reaction string
	Max      int
	Optional bool
	// CauseID is the id of the originating event; events produced by
	// resolving the prompt are caused by it.
	CauseID string
}

// PlayerState holds one player's zones and turn resources. Deck index 0
// is the top of the deck.
type PlayerState struct {
	ID      string
	Deck    []string
	Hand    []string
	Discard []string
	InPlay  []string
	Actions int
	Buys    int
	Coins   int
}

// State is the projected view of an event log.
type State struct {
	Started bool
	Over    bool
	Turn    int
	Phase   Phase
	// Current is the id of the turn-holder.
	Current string
	// Order is the seating order; turn rotation follows it.
	Order   []string
	Players map[string]*PlayerState
	Supply  map[string]int
	Trash   []string
	Prompts []Prompt
}

// NewState returns the empty pre-game state the projector folds from.
func NewState() *State {
	return &State{
		Players: make(map[string]*PlayerState),
		Supply:  make(map[string]int),
	}
}

// Player returns the state for a player id, or nil if unknown.
func (s *State) Player(id string) *PlayerState {
	return s.Players[id]
}

// ActivePrompt returns the prompt currently awaiting input, or nil.
func (s *State) ActivePrompt() *Prompt {
	if len(s.Prompts) == 0 {
		return nil
	}
	return &s.Prompts[0]
}

// Clone returns a deep copy sharing no mutable data with the original.
func (s *State) Clone() *State {
	c := &State{
		Started: s.Started,
		Over:    s.Over,
		Turn:    s.Turn,
		Phase:   s.Phase,
		Current: s.Current,
		Order:   append([]string(nil), s.Order...),
		Players: make(map[string]*PlayerState, len(s.Players)),
		Supply:  make(map[string]int, len(s.Supply)),
		Trash:   append([]string(nil), s.Trash...),
		Prompts: append([]Prompt(nil), s.Prompts...),
	}
	for id, p := range s.Players {
		c.Players[id] = &PlayerState{
			ID:      p.ID,
			Deck:    append([]string(nil), p.Deck...),
			Hand:    append([]string(nil), p.Hand...),
			Discard: append([]string(nil), p.Discard...),
			InPlay:  append([]string(nil), p.InPlay...),
			Actions: p.Actions,
			Buys:    p.Buys,
			Coins:   p.Coins,
		}
	}
	for card, n := range s.Supply {
		c.Supply[card] = n
	}
	return c
}

// zone returns a pointer to the named zone slice of a player, or nil for
// an unknown zone name.
func (p *PlayerState) zone(name string) *[]string {
	switch name {
	case ZoneDeck:
		return &p.Deck
	case ZoneHand:
		return &p.Hand
	case ZoneDiscard:
		return &p.Discard
	case ZoneInPlay:
		return &p.InPlay
	default:
		return nil
	}
}

// removeFirst removes the first occurrence of card from the slice and
// reports whether it was found.
func removeFirst(cards *[]string, card string) bool {
	for i, c := range *cards {
		if c == card {
			*cards = append((*cards)[:i], (*cards)[i+1:]...)
			return true
		}
	}
	return false
}

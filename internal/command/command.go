// Package command turns player intent into validated, causally-linked
// events. Commands are transient: they are consumed once and either
// rejected with an error or translated into a batch of new events. The
// command layer never mutates the log itself; that is the engine's job.
package command

// Type identifies the kind of command.
type Type string

const (
	TypeStartGame Type = "START_GAME"
	TypePlayCard  Type = "PLAY_CARD"
	TypeBuyCard   Type = "BUY_CARD"
	TypeEndPhase  Type = "END_PHASE"

	TypeSubmitDecision  Type = "SUBMIT_DECISION"
	TypeSkipDecision    Type = "SKIP_DECISION"
	TypeRevealReaction  Type = "REVEAL_REACTION"
	TypeDeclineReaction Type = "DECLINE_REACTION"

	// Undo arbitration commands are routed to the engine's consensus
	// machinery, not to the command handler.
	TypeRequestUndo Type = "REQUEST_UNDO"
	TypeApproveUndo Type = "APPROVE_UNDO"
	TypeDenyUndo    Type = "DENY_UNDO"
)

// Command represents a single actor's request.
type Command struct {
	Type   Type
	Player string
	// Card names the card to play or buy.
	Card string
	// Cards carries decision picks.
	Cards []string
	// Players is the seating order for START_GAME.
	Players []string

	// Undo arbitration fields.
	TargetID  string
	RequestID string
	Reason    string
}

// IsUndo reports whether the command belongs to the undo protocol.
func (c Command) IsUndo() bool {
	switch c.Type {
	case TypeRequestUndo, TypeApproveUndo, TypeDenyUndo:
		return true
	}
	return false
}

// turnScoped reports whether the command may only be issued by the
// current turn-holder.
func turnScoped(t Type) bool {
	switch t {
	case TypePlayCard, TypeBuyCard, TypeEndPhase:
		return true
	}
	return false
}

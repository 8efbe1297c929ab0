package command

import "github.com/lox/deckforge/internal/game"

// Kind classifies a card for phase and validation checks.
type Kind string

const (
	KindTreasure Kind = "treasure"
	KindVictory  Kind = "victory"
	KindAction   Kind = "action"
)

// CardInfo is the static card data the command layer needs for
// validation. Everything behavioral lives behind the resolver.
type CardInfo struct {
	Kind Kind
	Cost int
	// Reaction marks a card revealable during reaction windows.
	Reaction bool
}

// EffectResolver is the contract to the card content table. The command
// layer does not know which cards exist or what they do; it only threads
// causality and validation around whatever the resolver returns.
type EffectResolver interface {
	// Card returns static info for a card name, and whether it is known.
	Card(name string) (CardInfo, bool)

	// SupplyFor returns the initial supply piles for a player count,
	// including the piles the starting decks are gained from.
	SupplyFor(players int) map[string]int

	// StartingDeck returns the cards each player begins the game with.
	StartingDeck() []string

	// GameOver reports whether the supply has reached an end condition.
	GameOver(supply map[string]int) bool

	// Play appends the effect events of player playing card, each caused
	// by root or chained further for multi-stage effects.
	Play(b *Batch, player, card string, root Ref) error

	// ResolveDecision validates picks against the prompt and appends the
	// resulting events, caused by resolved (the DECISION_RESOLVED event).
	ResolveDecision(b *Batch, prompt game.Prompt, picks []string, resolved Ref) error

	// OnReactionDeclined appends the deferred attack effects for the
	// prompt's player, caused by declined.
	OnReactionDeclined(b *Batch, prompt game.Prompt, declined Ref) error
}

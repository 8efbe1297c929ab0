// Package cards ships the base card set. The engine core never imports
// this package; it consumes card behavior strictly through the
// command.EffectResolver contract, the same way it would consume any
// other rules table.
package cards

import (
	"fmt"

	"github.com/lox/deckforge/internal/command"
	"github.com/lox/deckforge/internal/event"
	"github.com/lox/deckforge/internal/game"
)

// Card names in the base set.
const (
	Copper   = "Copper"
	Silver   = "Silver"
	Gold     = "Gold"
	Estate   = "Estate"
	Duchy    = "Duchy"
	Province = "Province"
	Bazaar   = "Bazaar"   // +1 card, +2 actions, +1 coin
	Courier  = "Courier"  // +3 cards
	Raider   = "Raider"   // +2 coins, others discard down to 3
	Palisade = "Palisade" // +2 cards; reveal to block an attack
	Scribe   = "Scribe"   // discard any number, draw that many
	Forge    = "Forge"    // gain a card costing up to 4
)

// Prompt names raised by base set cards.
const (
	PromptDiscardTo       = "discard_to"
	PromptDiscardThenDraw = "discard_then_draw"
	PromptGainCard        = "gain_card"
	PromptRevealReaction  = "reveal_reaction"
)

type card struct {
	command.CardInfo
	coins int // treasure value
	vp    int // victory points
}

var table = map[string]card{
	Copper:   {CardInfo: command.CardInfo{Kind: command.KindTreasure, Cost: 0}, coins: 1},
	Silver:   {CardInfo: command.CardInfo{Kind: command.KindTreasure, Cost: 3}, coins: 2},
	Gold:     {CardInfo: command.CardInfo{Kind: command.KindTreasure, Cost: 6}, coins: 3},
	Estate:   {CardInfo: command.CardInfo{Kind: command.KindVictory, Cost: 2}, vp: 1},
	Duchy:    {CardInfo: command.CardInfo{Kind: command.KindVictory, Cost: 5}, vp: 3},
	Province: {CardInfo: command.CardInfo{Kind: command.KindVictory, Cost: 8}, vp: 6},
	Bazaar:   {CardInfo: command.CardInfo{Kind: command.KindAction, Cost: 5}},
	Courier:  {CardInfo: command.CardInfo{Kind: command.KindAction, Cost: 4}},
	Raider:   {CardInfo: command.CardInfo{Kind: command.KindAction, Cost: 5}},
	Palisade: {CardInfo: command.CardInfo{Kind: command.KindAction, Cost: 2, Reaction: true}},
	Scribe:   {CardInfo: command.CardInfo{Kind: command.KindAction, Cost: 3}},
	Forge:    {CardInfo: command.CardInfo{Kind: command.KindAction, Cost: 3}},
}

// BasicSet implements command.EffectResolver for the base card set.
type BasicSet struct{}

// NewBasicSet returns the base set resolver.
func NewBasicSet() *BasicSet {
	return &BasicSet{}
}

// Card implements command.EffectResolver.
func (s *BasicSet) Card(name string) (command.CardInfo, bool) {
	c, ok := table[name]
	return c.CardInfo, ok
}

// StartingDeck implements command.EffectResolver: seven Coppers and
// three Estates.
func (s *BasicSet) StartingDeck() []string {
	return []string{
		Copper, Copper, Copper, Copper, Copper, Copper, Copper,
		Estate, Estate, Estate,
	}
}

// SupplyFor implements command.EffectResolver. Victory piles scale with
// the player count; the Estate pile additionally covers starting decks.
func (s *BasicSet) SupplyFor(players int) map[string]int {
	victory := 8
	if players > 2 {
		victory = 12
	}
	return map[string]int{
		Copper:   60,
		Silver:   40,
		Gold:     30,
		Estate:   victory + 3*players,
		Duchy:    victory,
		Province: victory,
		Bazaar:   10,
		Courier:  10,
		Raider:   10,
		Palisade: 10,
		Scribe:   10,
		Forge:    10,
	}
}

// GameOver implements command.EffectResolver: the game ends when the
// Province pile or any three piles are empty.
func (s *BasicSet) GameOver(supply map[string]int) bool {
	if supply[Province] == 0 {
		return true
	}
	empty := 0
	for _, n := range supply {
		if n == 0 {
			empty++
		}
	}
	return empty >= 3
}

// Play implements command.EffectResolver.
func (s *BasicSet) Play(b *command.Batch, player, name string, root command.Ref) error {
	c, ok := table[name]
	if !ok {
		return fmt.Errorf("unknown card %q", name)
	}

	if c.Kind == command.KindTreasure {
		addCoins(b, player, c.coins, root)
		return nil
	}

	switch name {
	case Bazaar:
		b.Draw(player, 1, root)
		b.Add(event.Event{
			Type: event.TypeResourceChanged, Player: player,
			Resource: game.ResourceActions, Amount: 2,
		}, root)
		addCoins(b, player, 1, root)
	case Courier:
		b.Draw(player, 3, root)
	case Palisade:
		b.Draw(player, 2, root)
	case Raider:
		addCoins(b, player, 2, root)
		s.attack(b, player, name, root)
	case Scribe:
		b.Add(event.Event{
			Type: event.TypeDecisionRequested, Player: player,
			Card: name, Prompt: PromptDiscardThenDraw, Optional: true,
		}, root)
	case Forge:
		b.Add(event.Event{
			Type: event.TypeDecisionRequested, Player: player,
			Card: name, Prompt: PromptGainCard, Max: 4,
		}, root)
	default:
		return fmt.Errorf("no play effect for %q", name)
	}
	return nil
}

// attack opens a reaction window for each opponent holding a reaction
// card, and a discard decision for everyone else over the hand limit.
// Opponents are visited in seating order starting after the attacker.
func (s *BasicSet) attack(b *command.Batch, attacker, name string, root command.Ref) {
	st := b.State()
	for _, opp := range turnOrderAfter(st.Order, attacker) {
		p := st.Player(opp)
		if p == nil {
			continue
		}
		if reaction := firstReaction(p.Hand); reaction != "" {
			b.Add(event.Event{
				Type: event.TypeReactionRequested, Player: opp,
				Card: name, Prompt: PromptRevealReaction, Reaction: reaction,
			}, root)
			continue
		}
		if len(p.Hand) > 3 {
			b.Add(event.Event{
				Type: event.TypeDecisionRequested, Player: opp,
				Card: name, Prompt: PromptDiscardTo, Max: 3,
			}, root)
		}
	}
}

// ResolveDecision implements command.EffectResolver.
func (s *BasicSet) ResolveDecision(b *command.Batch, prompt game.Prompt, picks []string, resolved command.Ref) error {
	switch prompt.Name {
	case PromptDiscardTo:
		return s.resolveDiscardTo(b, prompt, picks, resolved)
	case PromptDiscardThenDraw:
		return s.resolveDiscardThenDraw(b, prompt, picks, resolved)
	case PromptGainCard:
		return s.resolveGainCard(b, prompt, picks, resolved)
	default:
		return fmt.Errorf("unknown decision %q", prompt.Name)
	}
}

func (s *BasicSet) resolveDiscardTo(b *command.Batch, prompt game.Prompt, picks []string, resolved command.Ref) error {
	// The batch state already popped the prompt; the hand is unchanged.
	hand := b.State().Player(prompt.Player).Hand
	if len(hand)-len(picks) != prompt.Max {
		return fmt.Errorf("must discard down to %d cards", prompt.Max)
	}
	if err := inHand(hand, picks); err != nil {
		return err
	}
	discard(b, prompt.Player, picks, resolved)
	return nil
}

func (s *BasicSet) resolveDiscardThenDraw(b *command.Batch, prompt game.Prompt, picks []string, resolved command.Ref) error {
	if err := inHand(b.State().Player(prompt.Player).Hand, picks); err != nil {
		return err
	}
	discard(b, prompt.Player, picks, resolved)
	b.Draw(prompt.Player, len(picks), resolved)
	return nil
}

func (s *BasicSet) resolveGainCard(b *command.Batch, prompt game.Prompt, picks []string, resolved command.Ref) error {
	if len(picks) != 1 {
		return fmt.Errorf("choose exactly one card to gain")
	}
	name := picks[0]
	c, ok := table[name]
	if !ok {
		return fmt.Errorf("unknown card %q", name)
	}
	if c.Cost > prompt.Max {
		return fmt.Errorf("%s costs %d, limit is %d", name, c.Cost, prompt.Max)
	}
	if b.State().Supply[name] < 1 {
		return fmt.Errorf("the %s pile is empty", name)
	}
	b.Add(event.Event{
		Type: event.TypeCardGained, Player: prompt.Player,
		Card: name, To: game.ZoneDiscard,
	}, resolved)
	return nil
}

// OnReactionDeclined implements command.EffectResolver: the declined
// attack's discard decision is issued, caused by the decline.
func (s *BasicSet) OnReactionDeclined(b *command.Batch, prompt game.Prompt, declined command.Ref) error {
	p := b.State().Player(prompt.Player)
	if p != nil && len(p.Hand) > 3 {
		b.Add(event.Event{
			Type: event.TypeDecisionRequested, Player: prompt.Player,
			Card: prompt.Card, Prompt: PromptDiscardTo, Max: 3,
		}, declined)
	}
	return nil
}

// Score returns a player's victory points across all zones.
func Score(st *game.State, player string) int {
	p := st.Player(player)
	if p == nil {
		return 0
	}
	total := 0
	for _, zone := range [][]string{p.Deck, p.Hand, p.Discard, p.InPlay} {
		for _, name := range zone {
			total += table[name].vp
		}
	}
	return total
}

func addCoins(b *command.Batch, player string, n int, cause command.Ref) {
	b.Add(event.Event{
		Type: event.TypeResourceChanged, Player: player,
		Resource: game.ResourceCoins, Amount: n,
	}, cause)
}

func discard(b *command.Batch, player string, picks []string, cause command.Ref) {
	for _, card := range picks {
		b.Add(event.Event{
			Type: event.TypeCardMoved, Player: player,
			Card: card, From: game.ZoneHand, To: game.ZoneDiscard,
		}, cause)
	}
}

// inHand verifies picks are a sub-multiset of hand.
func inHand(hand, picks []string) error {
	remaining := make(map[string]int, len(hand))
	for _, c := range hand {
		remaining[c]++
	}
	for _, c := range picks {
		if remaining[c] < 1 {
			return fmt.Errorf("%s is not in hand", c)
		}
		remaining[c]--
	}
	return nil
}

func firstReaction(hand []string) string {
	for _, c := range hand {
		if table[c].Reaction {
			return c
		}
	}
	return ""
}

// turnOrderAfter returns the other players in seating order, starting
// with the player after current.
func turnOrderAfter(order []string, current string) []string {
	i := 0
	for j, p := range order {
		if p == current {
			i = j
			break
		}
	}
	out := make([]string, 0, len(order)-1)
	for k := 1; k < len(order); k++ {
		out = append(out, order[(i+k)%len(order)])
	}
	return out
}

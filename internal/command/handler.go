package command

import (
	"errors"
	"fmt"
	rand "math/rand/v2"

	"github.com/lox/deckforge/internal/event"
	"github.com/lox/deckforge/internal/game"
)

// ErrNotYourTurn is the single authorization failure in the core: a
// turn-scoped command carrying a player identity that is not the current
// turn-holder.
var ErrNotYourTurn = errors.New("not your turn")

// Handler validates commands against a state and generates the resulting
// event batches. It holds no mutable game state of its own; the RNG is
// only consulted for shuffle orders, which are recorded as events.
type Handler struct {
	resolver EffectResolver
	rng      *rand.Rand
}

// NewHandler creates a handler backed by the given card resolver.
func NewHandler(resolver EffectResolver, rng *rand.Rand) *Handler {
	return &Handler{resolver: resolver, rng: rng}
}

// Handle validates cmd against st and returns the batch of events it
// produces. actor, when non-empty, is the authenticated identity issuing
// the command. Validation is an ordered list of checks; the first
// failure short-circuits with no events emitted and no state touched.
func (h *Handler) Handle(st *game.State, cmd Command, actor string) (*Batch, error) {
	if cmd.IsUndo() {
		return nil, fmt.Errorf("undo command %s must be dispatched through the engine", cmd.Type)
	}

	if actor != "" && turnScoped(cmd.Type) && cmd.Player != st.Current {
		return nil, ErrNotYourTurn
	}

	b := NewBatch(st, h.rng)
	var err error
	switch cmd.Type {
	case TypeStartGame:
		err = h.startGame(b, cmd)
	case TypePlayCard:
		err = h.playCard(b, cmd)
	case TypeBuyCard:
		err = h.buyCard(b, cmd)
	case TypeEndPhase:
		err = h.endPhase(b, cmd)
	case TypeSubmitDecision:
		err = h.submitDecision(b, cmd)
	case TypeSkipDecision:
		err = h.skipDecision(b, cmd)
	case TypeRevealReaction:
		err = h.revealReaction(b, cmd)
	case TypeDeclineReaction:
		err = h.declineReaction(b, cmd)
	default:
		err = fmt.Errorf("unknown command type %q", cmd.Type)
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

// run executes validation checks in order, short-circuiting on the
// first failure.
func run(checks ...func() error) error {
	for _, check := range checks {
		if err := check(); err != nil {
			return err
		}
	}
	return nil
}

func (h *Handler) startGame(b *Batch, cmd Command) error {
	st := b.State()
	err := run(
		func() error {
			if st.Started {
				return errors.New("game has already started")
			}
			return nil
		},
		func() error {
			if len(cmd.Players) < 2 || len(cmd.Players) > 4 {
				return fmt.Errorf("need 2-4 players, got %d", len(cmd.Players))
			}
			return nil
		},
		func() error {
			seen := map[string]bool{}
			for _, p := range cmd.Players {
				if p == "" || seen[p] {
					return fmt.Errorf("player ids must be unique and non-empty")
				}
				seen[p] = true
			}
			return nil
		},
	)
	if err != nil {
		return err
	}

	root := b.Add(event.Event{
		Type:    event.TypeGameStarted,
		Players: cmd.Players,
		Supply:  h.resolver.SupplyFor(len(cmd.Players)),
	}, NoCause())

	for _, player := range cmd.Players {
		for _, card := range h.resolver.StartingDeck() {
			b.Add(event.Event{
				Type:   event.TypeCardGained,
				Player: player,
				Card:   card,
				To:     game.ZoneDiscard,
			}, root)
		}
		b.Shuffle(player, root)
		b.Draw(player, 5, root)
	}

	b.Add(event.Event{
		Type:   event.TypeTurnStarted,
		Player: cmd.Players[0],
		Turn:   1,
	}, root)
	return nil
}

func (h *Handler) playCard(b *Batch, cmd Command) error {
	st := b.State()
	var info CardInfo
	err := run(
		inProgress(st),
		noPendingPrompt(st),
		isTurnHolder(st, cmd.Player),
		func() error {
			var ok bool
			info, ok = h.resolver.Card(cmd.Card)
			if !ok {
				return fmt.Errorf("unknown card %q", cmd.Card)
			}
			return nil
		},
		func() error {
			switch info.Kind {
			case KindAction:
				if st.Phase != game.PhaseAction {
					return fmt.Errorf("cannot play action cards during the %s phase", st.Phase)
				}
				if st.Player(cmd.Player).Actions < 1 {
					return errors.New("no actions remaining")
				}
			case KindTreasure:
				if st.Phase != game.PhaseBuy {
					return fmt.Errorf("treasures can only be played during the buy phase")
				}
			default:
				return fmt.Errorf("%s cannot be played", cmd.Card)
			}
			return nil
		},
		cardInHand(st, cmd.Player, cmd.Card),
	)
	if err != nil {
		return err
	}

	root := b.Add(event.Event{
		Type:   event.TypeCardPlayed,
		Player: cmd.Player,
		Card:   cmd.Card,
	}, NoCause())

	if info.Kind == KindAction {
		b.Add(event.Event{
			Type:     event.TypeResourceChanged,
			Player:   cmd.Player,
			Resource: game.ResourceActions,
			Amount:   -1,
		}, root)
	}
	return h.resolver.Play(b, cmd.Player, cmd.Card, root)
}

func (h *Handler) buyCard(b *Batch, cmd Command) error {
	st := b.State()
	var info CardInfo
	err := run(
		inProgress(st),
		noPendingPrompt(st),
		isTurnHolder(st, cmd.Player),
		func() error {
			if st.Phase != game.PhaseBuy {
				return fmt.Errorf("cannot buy during the %s phase", st.Phase)
			}
			return nil
		},
		func() error {
			var ok bool
			info, ok = h.resolver.Card(cmd.Card)
			if !ok {
				return fmt.Errorf("unknown card %q", cmd.Card)
			}
			return nil
		},
		func() error {
			if st.Supply[cmd.Card] < 1 {
				return fmt.Errorf("the %s pile is empty", cmd.Card)
			}
			return nil
		},
		func() error {
			if st.Player(cmd.Player).Buys < 1 {
				return errors.New("no buys remaining")
			}
			return nil
		},
		func() error {
			if st.Player(cmd.Player).Coins < info.Cost {
				return fmt.Errorf("%s costs %d, have %d coins", cmd.Card, info.Cost, st.Player(cmd.Player).Coins)
			}
			return nil
		},
	)
	if err != nil {
		return err
	}

	root := b.Add(event.Event{
		Type:   event.TypeCardGained,
		Player: cmd.Player,
		Card:   cmd.Card,
		To:     game.ZoneDiscard,
	}, NoCause())
	b.Add(event.Event{
		Type:     event.TypeResourceChanged,
		Player:   cmd.Player,
		Resource: game.ResourceBuys,
		Amount:   -1,
	}, root)
	if info.Cost > 0 {
		b.Add(event.Event{
			Type:     event.TypeResourceChanged,
			Player:   cmd.Player,
			Resource: game.ResourceCoins,
			Amount:   -info.Cost,
		}, root)
	}
	return nil
}

func (h *Handler) endPhase(b *Batch, cmd Command) error {
	st := b.State()
	err := run(
		inProgress(st),
		noPendingPrompt(st),
		isTurnHolder(st, cmd.Player),
	)
	if err != nil {
		return err
	}

	if st.Phase == game.PhaseAction {
		b.Add(event.Event{
			Type:   event.TypePhaseChanged,
			Player: cmd.Player,
			Phase:  string(game.PhaseBuy),
		}, NoCause())
		return nil
	}

	// Ending the buy phase runs cleanup: discard everything, draw a new
	// hand, then either end the game or pass the turn.
	root := b.Add(event.Event{
		Type:   event.TypePhaseChanged,
		Player: cmd.Player,
		Phase:  string(game.PhaseCleanup),
	}, NoCause())

	p := b.State().Player(cmd.Player)
	for _, card := range append([]string(nil), p.InPlay...) {
		b.Add(event.Event{
			Type:   event.TypeCardMoved,
			Player: cmd.Player,
			Card:   card,
			From:   game.ZoneInPlay,
			To:     game.ZoneDiscard,
		}, root)
	}
	for _, card := range append([]string(nil), p.Hand...) {
		b.Add(event.Event{
			Type:   event.TypeCardMoved,
			Player: cmd.Player,
			Card:   card,
			From:   game.ZoneHand,
			To:     game.ZoneDiscard,
		}, root)
	}
	b.Draw(cmd.Player, 5, root)

	if h.resolver.GameOver(b.State().Supply) {
		b.Add(event.Event{Type: event.TypeGameEnded}, root)
		return nil
	}

	next := nextPlayer(st.Order, cmd.Player)
	b.Add(event.Event{
		Type:   event.TypeTurnStarted,
		Player: next,
		Turn:   st.Turn + 1,
	}, root)
	return nil
}

func (h *Handler) submitDecision(b *Batch, cmd Command) error {
	st := b.State()
	prompt, err := activePrompt(st, game.PromptDecision, cmd.Player)
	if err != nil {
		return err
	}

	resolved := b.Add(event.Event{
		Type:   event.TypeDecisionResolved,
		Player: cmd.Player,
		Cards:  cmd.Cards,
	}, ByID(prompt.CauseID))
	return h.resolver.ResolveDecision(b, prompt, cmd.Cards, resolved)
}

func (h *Handler) skipDecision(b *Batch, cmd Command) error {
	st := b.State()
	prompt, err := activePrompt(st, game.PromptDecision, cmd.Player)
	if err != nil {
		return err
	}
	if !prompt.Optional {
		return fmt.Errorf("the %s decision cannot be skipped", prompt.Name)
	}

	b.Add(event.Event{
		Type:   event.TypeDecisionSkipped,
		Player: cmd.Player,
	}, ByID(prompt.CauseID))
	return nil
}

func (h *Handler) revealReaction(b *Batch, cmd Command) error {
	st := b.State()
	prompt, err := activePrompt(st, game.PromptReaction, cmd.Player)
	if err != nil {
		return err
	}
	if err := cardInHand(st, cmd.Player, prompt.Reaction)(); err != nil {
		return err
	}

	b.Add(event.Event{
		Type:   event.TypeReactionRevealed,
		Player: cmd.Player,
		Card:   prompt.Reaction,
	}, ByID(prompt.CauseID))
	return nil
}

func (h *Handler) declineReaction(b *Batch, cmd Command) error {
	st := b.State()
	prompt, err := activePrompt(st, game.PromptReaction, cmd.Player)
	if err != nil {
		return err
	}

	declined := b.Add(event.Event{
		Type:   event.TypeReactionDeclined,
		Player: cmd.Player,
	}, ByID(prompt.CauseID))
	return h.resolver.OnReactionDeclined(b, prompt, declined)
}

// Shared validation checks.

func inProgress(st *game.State) func() error {
	return func() error {
		if !st.Started {
			return errors.New("game has not started")
		}
		if st.Over {
			return errors.New("game is over")
		}
		return nil
	}
}

func noPendingPrompt(st *game.State) func() error {
	return func() error {
		if p := st.ActivePrompt(); p != nil {
			return fmt.Errorf("waiting on %s from %s", p.Name, p.Player)
		}
		return nil
	}
}

func isTurnHolder(st *game.State, player string) func() error {
	return func() error {
		if player != st.Current {
			return ErrNotYourTurn
		}
		return nil
	}
}

func cardInHand(st *game.State, player, card string) func() error {
	return func() error {
		p := st.Player(player)
		if p == nil {
			return fmt.Errorf("unknown player %q", player)
		}
		for _, c := range p.Hand {
			if c == card {
				return nil
			}
		}
		return fmt.Errorf("%s is not in hand", card)
	}
}

// activePrompt validates that the head of the prompt queue matches the
// given kind and player, returning a copy of it.
func activePrompt(st *game.State, kind game.PromptKind, player string) (game.Prompt, error) {
	head := st.ActivePrompt()
	if head == nil {
		return game.Prompt{}, errors.New("no pending prompt")
	}
	if head.Kind != kind {
		return game.Prompt{}, fmt.Errorf("pending prompt is a %s, not a %s", head.Kind, kind)
	}
	if head.Player != player {
		return game.Prompt{}, fmt.Errorf("pending prompt belongs to %s", head.Player)
	}
	return *head, nil
}

func nextPlayer(order []string, current string) string {
	for i, p := range order {
		if p == current {
			return order[(i+1)%len(order)]
		}
	}
	if len(order) > 0 {
		return order[0]
	}
	return current
}

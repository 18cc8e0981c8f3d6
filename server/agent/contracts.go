package agent

import (
	"context"
	"fmt"

	"tbge/server/engine"
	"tbge/server/game"
)

// Dealable is implemented by statuses that can be dealt from: a shared
// stack and the target decks in dealing order.
type Dealable interface {
	DealPlan() (stack engine.Deck, targets []engine.Deck)
}

// Dealer always deals one card to every target. With four targets the
// move is a Hit.
type Dealer struct {
	PlayerName string
}

var _ game.Player[engine.Deck] = Dealer{}

func (d Dealer) Name() string { return d.PlayerName }

func (d Dealer) String() string { return "dealer " + d.PlayerName }

func (d Dealer) Play(_ context.Context, st game.Status[engine.Deck]) (game.Move[engine.Deck], error) {
	plan, ok := st.(Dealable)
	if !ok {
		return nil, fmt.Errorf("status %T cannot be dealt from", st)
	}
	stack, targets := plan.DealPlan()
	var (
		mv  *engine.Deal
		err error
	)
	if len(targets) == engine.HitTargets {
		mv, err = engine.NewHit(stack, targets[0], targets[1], targets[2], targets[3])
	} else {
		mv, err = engine.NewDeal(stack, targets...)
	}
	if err != nil {
		return nil, err
	}
	return mv, nil
}

// Scripted plays prepared moves in order, regardless of the status.
type Scripted[S any] struct {
	PlayerName string
	Moves      []game.Move[S]
}

func (s *Scripted[S]) Name() string { return s.PlayerName }

func (s *Scripted[S]) Play(context.Context, game.Status[S]) (game.Move[S], error) {
	if len(s.Moves) == 0 {
		return nil, fmt.Errorf("%s: no moves left", s.PlayerName)
	}
	m := s.Moves[0]
	s.Moves = s.Moves[1:]
	return m, nil
}

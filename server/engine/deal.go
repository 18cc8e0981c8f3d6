package engine

import (
	"fmt"
	"iter"

	"tbge/server/game"
)

// HitTargets is the number of decks a Hit deals to.
const HitTargets = 4

// Deal moves the top card of a shared stack onto each target deck in order,
// then yields the depleted stack as a trailing Nothing. The first target
// receives the card that was on top of the stack.
//
// A Deal owns its decks and can be drained once.
type Deal struct {
	name    string
	stack   Deck
	targets []Deck
	drained bool
}

var _ game.Move[Deck] = (*Deal)(nil)

// NewDeal checks up front that stack holds a card for every target, so a
// failing deal never yields a partial sequence.
func NewDeal(stack Deck, targets ...Deck) (*Deal, error) {
	if len(targets) == 0 {
		return nil, game.NewError(game.CodeInsufficientResources, "deal needs at least one target deck")
	}
	if stack.Len() < len(targets) {
		return nil, game.Errorf(game.CodeInsufficientResources,
			"deal to %d decks needs %d cards, stack holds %d", len(targets), len(targets), stack.Len())
	}
	return &Deal{
		name:    fmt.Sprintf("Deal %d", len(targets)),
		stack:   stack,
		targets: append([]Deck{}, targets...),
	}, nil
}

// NewHit is the four-way deal.
func NewHit(stack, d1, d2, d3, d4 Deck) (*Deal, error) {
	d, err := NewDeal(stack, d1, d2, d3, d4)
	if err != nil {
		return nil, err
	}
	d.name = "Hit"
	return d, nil
}

// Stack returns the source deck as owned by the deal.
func (d *Deal) Stack() Deck { return d.stack }

// Targets returns the destination decks in dealing order.
func (d *Deal) Targets() []Deck { return append([]Deck{}, d.targets...) }

// Drained reports whether Acts has already been iterated.
func (d *Deal) Drained() bool { return d.drained }

// Len is the number of acts the deal yields.
func (d *Deal) Len() int { return len(d.targets) + 1 }

// Acts yields one Push per target followed by Nothing on the remaining
// stack. Acts are produced lazily; a second call yields nothing.
func (d *Deal) Acts() iter.Seq[game.Act[Deck]] {
	return func(yield func(game.Act[Deck]) bool) {
		if d.drained {
			return
		}
		d.drained = true
		stack, targets := d.stack, d.targets
		d.stack, d.targets = Deck{}, nil

		for _, t := range targets {
			c, rest, err := stack.Pop()
			if err != nil {
				// unreachable: NewDeal checked the stack size
				return
			}
			stack = rest
			if !yield(NewPush(c, t)) {
				return
			}
		}
		yield(NewNothing(stack))
	}
}

func (d *Deal) String() string { return d.name }

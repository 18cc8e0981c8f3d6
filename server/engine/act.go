package engine

import (
	"fmt"

	"tbge/server/game"
)

// Act is a single-use transition over a Deck. The zero value is not usable;
// build acts with NewPop, NewPush or NewNothing.
type Act struct {
	Kind ActKind
	Card Card // push only
	On   Deck

	consumed bool
}

var _ game.Act[Deck] = (*Act)(nil)

func NewPop(d Deck) *Act { return &Act{Kind: Pop, On: d} }

func NewPush(c Card, on Deck) *Act { return &Act{Kind: Push, Card: c, On: on} }

func NewNothing(d Deck) *Act { return &Act{Kind: Nothing, On: d} }

// Effect consumes the act and returns the resulting deck.
// Pop on an empty deck fails with ErrEmptyDeck.
func (a *Act) Effect() (Deck, error) {
	if a.consumed {
		return Deck{}, game.Errorf(game.CodeActConsumed, "%s: already consumed", a.Kind)
	}
	a.consumed = true
	on := a.On
	a.On = Deck{}

	switch a.Kind {
	case Pop:
		_, rest, err := on.Pop()
		if err != nil {
			return Deck{}, err
		}
		return rest, nil
	case Push:
		return on.Push(a.Card), nil
	case Nothing:
		return on, nil
	default:
		return Deck{}, fmt.Errorf("unknown act kind %q", a.Kind)
	}
}

// Consumed reports whether Effect has been called.
func (a *Act) Consumed() bool { return a.consumed }

func (a *Act) String() string {
	switch a.Kind {
	case Pop:
		if top, ok := a.On.Top(); ok {
			return fmt.Sprintf("Pop %s from %s", top, a.On)
		}
		return fmt.Sprintf("Pop from %s", a.On)
	case Push:
		return fmt.Sprintf("Add %s to %s", a.Card, a.On)
	case Nothing:
		return "Nothing"
	default:
		return fmt.Sprintf("act(%s)", a.Kind)
	}
}

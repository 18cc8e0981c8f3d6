package engine

import (
	"encoding/json"
	"slices"
	"strings"

	"tbge/server/game"
)

// Deck is an ordered stack of cards; the last card is the top.
// Decks are values: no method mutates the receiver, transitions return a
// new Deck with its own backing array.
type Deck struct {
	cards []Card
}

var _ game.State[Deck] = Deck{}

// ErrEmptyDeck is returned when popping from an empty deck.
var ErrEmptyDeck = game.NewError(game.CodeEmptyResource, "deck is empty")

func NewDeck() Deck { return WithCapacity(DeckSize) }

func WithCapacity(n int) Deck {
	if n < 0 {
		n = 0
	}
	return Deck{cards: make([]Card, 0, n)}
}

// FromCards builds a deck bottom-first: the last argument is the top.
func FromCards(cards ...Card) Deck {
	return Deck{cards: slices.Clone(cards)}
}

// NewShuffled returns the 52 non-joker cards in the order given by sh.
func NewShuffled(sh Shuffler) (Deck, error) {
	perm, err := sh.Permutation(DeckSize)
	if err != nil {
		return Deck{}, game.Wrap(game.CodeShuffleFailure, "shuffle", err)
	}
	if err := checkPermutation(perm, DeckSize); err != nil {
		return Deck{}, err
	}
	d := WithCapacity(DeckSize)
	for _, v := range perm {
		d.cards = append(d.cards, Card{Suit: Suit(v / 13), Rank: v%13 + 1})
	}
	return d, nil
}

func (d Deck) Len() int { return len(d.cards) }

// Top returns the top card, if any.
func (d Deck) Top() (Card, bool) {
	if len(d.cards) == 0 {
		return Card{}, false
	}
	return d.cards[len(d.cards)-1], true
}

// Cards returns a copy of the cards, bottom first.
func (d Deck) Cards() []Card { return slices.Clone(d.cards) }

// Equal compares card sequences; capacity is irrelevant.
func (d Deck) Equal(other Deck) bool { return slices.Equal(d.cards, other.cards) }

// Pop splits off the top card and returns it with the remaining deck.
func (d Deck) Pop() (Card, Deck, error) {
	top, ok := d.Top()
	if !ok {
		return Card{}, d, ErrEmptyDeck
	}
	return top, Deck{cards: slices.Clone(d.cards[:len(d.cards)-1])}, nil
}

// Push returns a deck with c on top.
func (d Deck) Push(c Card) Deck {
	out := make([]Card, len(d.cards), len(d.cards)+1)
	copy(out, d.cards)
	return Deck{cards: append(out, c)}
}

// Diff returns the act that reconciles d with other:
//   - equal sequences give Nothing,
//   - a longer other gives Pop on d,
//   - otherwise Push of other's top card onto d.
//
// The result is relative to d only; it is not a minimal edit script and
// applying it does not in general produce other.
func (d Deck) Diff(other Deck) game.Act[Deck] {
	if d.Equal(other) {
		return NewNothing(d)
	}
	if other.Len() > d.Len() {
		return NewPop(d)
	}
	top, ok := other.Top()
	if !ok {
		// other is empty and d is not; removing from d is the only move toward it.
		return NewPop(d)
	}
	return NewPush(top, d)
}

func (d Deck) String() string {
	parts := make([]string, len(d.cards))
	for i, c := range d.cards {
		parts[i] = c.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func (d Deck) MarshalJSON() ([]byte, error) {
	if d.cards == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(d.cards)
}

func (d *Deck) UnmarshalJSON(b []byte) error {
	var cards []Card
	if err := json.Unmarshal(b, &cards); err != nil {
		return err
	}
	d.cards = cards
	return nil
}

// Package table is a dealing table: a shared stack and one hand per seat.
// Seats take turns as dealer; every turn deals one card to each seat,
// starting with the seat after the dealer.
package table

import (
	"errors"
	"fmt"
	"strings"

	"tbge/server/agent"
	"tbge/server/engine"
	"tbge/server/game"
)

// Table is an immutable Status snapshot; Next returns a new Table.
type Table struct {
	seats  []game.Player[engine.Deck]
	stack  engine.Deck
	hands  []engine.Deck
	dealer int
	round  int
}

var (
	_ game.Status[engine.Deck] = (*Table)(nil)
	_ agent.Dealable           = (*Table)(nil)
)

// NewTable seats players with empty hands around stack. The first player
// deals first.
func NewTable(stack engine.Deck, players ...game.Player[engine.Deck]) (*Table, error) {
	if len(players) == 0 {
		return nil, errors.New("table needs at least one player")
	}
	seen := map[string]bool{}
	for _, p := range players {
		if seen[p.Name()] {
			return nil, fmt.Errorf("duplicate player name %q", p.Name())
		}
		seen[p.Name()] = true
	}
	hands := make([]engine.Deck, len(players))
	for i := range hands {
		hands[i] = engine.WithCapacity(engine.DeckSize / len(players))
	}
	return &Table{
		seats: append([]game.Player[engine.Deck]{}, players...),
		stack: stack,
		hands: hands,
	}, nil
}

// NewGame shuffles a fresh deck and seats a Dealer per name.
// A shuffle failure prevents the game from starting.
func NewGame(sh engine.Shuffler, names ...string) (*game.Game[engine.Deck], error) {
	stack, err := engine.NewShuffled(sh)
	if err != nil {
		return nil, err
	}
	players := make([]game.Player[engine.Deck], len(names))
	for i, n := range names {
		players[i] = agent.Dealer{PlayerName: strings.TrimSpace(n)}
	}
	t, err := NewTable(stack, players...)
	if err != nil {
		return nil, err
	}
	return game.New[engine.Deck](t, players...), nil
}

func (t *Table) Stack() engine.Deck { return t.stack }

// Hand returns the hand of the named player.
func (t *Table) Hand(name string) (engine.Deck, bool) {
	i := t.seatOf(name)
	if i < 0 {
		return engine.Deck{}, false
	}
	return t.hands[i], true
}

func (t *Table) Round() int { return t.round }

// States lists the stack followed by the hands in seat order.
func (t *Table) States() []engine.Deck {
	out := make([]engine.Deck, 0, len(t.hands)+1)
	out = append(out, t.stack)
	return append(out, t.hands...)
}

func (t *Table) Turn() game.Player[engine.Deck] { return t.seats[t.dealer] }

// Over once the stack cannot serve every seat.
func (t *Table) Over() bool { return t.stack.Len() < len(t.seats) }

// order returns seat indices in dealing order for the current dealer.
func (t *Table) order() []int {
	n := len(t.seats)
	out := make([]int, n)
	for i := range out {
		out[i] = (t.dealer + 1 + i) % n
	}
	return out
}

func (t *Table) DealPlan() (engine.Deck, []engine.Deck) {
	targets := make([]engine.Deck, 0, len(t.hands))
	for _, i := range t.order() {
		targets = append(targets, t.hands[i])
	}
	return t.stack, targets
}

// Validate accepts an undrained deal over exactly this table's decks.
func (t *Table) Validate(m game.Move[engine.Deck]) bool {
	d, ok := m.(*engine.Deal)
	if !ok || d == nil || d.Drained() {
		return false
	}
	if !d.Stack().Equal(t.stack) {
		return false
	}
	targets := d.Targets()
	if len(targets) != len(t.hands) {
		return false
	}
	for k, i := range t.order() {
		if !targets[k].Equal(t.hands[i]) {
			return false
		}
	}
	return true
}

// Next expects one result per seat in dealing order plus the remaining stack.
func (t *Table) Next(results []engine.Deck) (game.Status[engine.Deck], error) {
	n := len(t.seats)
	if len(results) != n+1 {
		return nil, fmt.Errorf("table expects %d results, got %d", n+1, len(results))
	}
	hands := make([]engine.Deck, n)
	for k, i := range t.order() {
		hands[i] = results[k]
	}
	return &Table{
		seats:  t.seats,
		stack:  results[n],
		hands:  hands,
		dealer: (t.dealer + 1) % n,
		round:  t.round + 1,
	}, nil
}

type scoreText string

func (s scoreText) String() string { return string(s) }

// Score describes the best poker hand the player holds.
func (t *Table) Score(p game.Player[engine.Deck]) fmt.Stringer {
	if p == nil {
		return scoreText("no player")
	}
	hand, ok := t.Hand(p.Name())
	if !ok {
		return scoreText(p.Name() + " is not seated")
	}
	h, err := engine.Describe(hand)
	if err != nil {
		return scoreText(fmt.Sprintf("%d cards (unrated: %v)", hand.Len(), err))
	}
	return h
}

func (t *Table) seatOf(name string) int {
	for i, p := range t.seats {
		if p.Name() == name {
			return i
		}
	}
	return -1
}

func (t *Table) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "round %d, dealer %s, stack %d cards", t.round, t.Turn().Name(), t.stack.Len())
	for i, p := range t.seats {
		fmt.Fprintf(&b, "; %s %s", p.Name(), t.hands[i])
	}
	return b.String()
}

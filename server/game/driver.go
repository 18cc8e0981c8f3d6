package game

import (
	"context"
	"fmt"
	"iter"
	"strings"
)

// Turn records one applied move for audit logs.
type Turn[S any] struct {
	Number  int
	Player  string
	Move    string
	Acts    []string
	Results []S
	// Applied holds the spent acts, in order.
	Applied []Act[S]
}

func (t Turn[S]) String() string {
	return fmt.Sprintf("#%d %s %s: %s", t.Number, t.Player, t.Move, strings.Join(t.Acts, "; "))
}

// Game owns the players and the growing list of Status snapshots.
// A Game is not safe for concurrent use; run independent sessions instead.
type Game[S any] struct {
	players []Player[S]
	history []Status[S]
}

// New starts a game at the given status.
func New[S any](initial Status[S], players ...Player[S]) *Game[S] {
	return &Game[S]{
		players: append([]Player[S]{}, players...),
		history: []Status[S]{initial},
	}
}

func (g *Game[S]) Players() []Player[S] { return append([]Player[S]{}, g.players...) }

// Status returns the live status.
func (g *Game[S]) Status() Status[S] { return g.history[len(g.history)-1] }

// History yields every status snapshot, oldest first.
func (g *Game[S]) History() iter.Seq2[int, Status[S]] {
	return func(yield func(int, Status[S]) bool) {
		for i, st := range g.history {
			if !yield(i, st) {
				return
			}
		}
	}
}

func (g *Game[S]) String() string {
	names := make([]string, len(g.players))
	for i, p := range g.players {
		names[i] = p.Name()
	}
	return fmt.Sprintf("Game[%s] turn %d: %s", strings.Join(names, ","), len(g.history)-1, g.Status())
}

// Step plays a single turn: the current player proposes a move, the status
// validates it and every act is applied in order. A rejected move leaves the
// game untouched. If an act fails midway the status is not advanced; the
// returned Turn still carries the acts attempted and the states reached by
// the ones that succeeded, so callers can resume from that intermediate
// state or discard it.
func (g *Game[S]) Step(ctx context.Context) (Turn[S], error) {
	if err := ctx.Err(); err != nil {
		return Turn[S]{}, err
	}
	st := g.Status()
	p := st.Turn()
	if p == nil {
		return Turn[S]{}, fmt.Errorf("no player to move")
	}
	mv, err := p.Play(ctx, st)
	if err != nil {
		return Turn[S]{}, fmt.Errorf("%s play: %w", p.Name(), err)
	}
	if mv == nil || !st.Validate(mv) {
		return Turn[S]{}, Errorf(CodeInvalidMove, "move %v by %s rejected", mv, p.Name())
	}

	turn := Turn[S]{Number: len(g.history), Player: p.Name(), Move: mv.String()}
	for act := range mv.Acts() {
		turn.Acts = append(turn.Acts, act.String())
		next, err := act.Effect()
		if err != nil {
			return turn, fmt.Errorf("apply %q: %w", turn.Acts[len(turn.Acts)-1], err)
		}
		turn.Results = append(turn.Results, next)
		turn.Applied = append(turn.Applied, act)
	}

	nst, err := st.Next(turn.Results)
	if err != nil {
		return turn, fmt.Errorf("fold turn %d: %w", turn.Number, err)
	}
	g.history = append(g.history, nst)
	return turn, nil
}

// Run steps until the status reports Over, maxTurns turns were played
// (maxTurns <= 0 means no limit) or an error occurs. observe, if non-nil,
// sees every applied turn.
func (g *Game[S]) Run(ctx context.Context, maxTurns int, observe func(Turn[S])) error {
	for n := 0; maxTurns <= 0 || n < maxTurns; n++ {
		if g.Status().Over() {
			return nil
		}
		t, err := g.Step(ctx)
		if err != nil {
			return err
		}
		if observe != nil {
			observe(t)
		}
	}
	return nil
}

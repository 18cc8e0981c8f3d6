// Package game defines the State/Act contracts of a turn-based game and a
// generic driver that sequences Status snapshots.
//
// A State is an immutable snapshot. An Act is a single-use transition: Effect
// consumes it and returns the next State. A Move is the ordered, lazily
// produced list of Acts a player performs in one turn.
package game

import (
	"context"
	"fmt"
	"iter"
)

// Act is one legal transition over a State of type S.
type Act[S any] interface {
	fmt.Stringer
	// Effect consumes the act and returns the resulting state.
	Effect() (S, error)
}

// State is a snapshot that can be reconciled with another snapshot of the
// same type.
type State[S any] interface {
	fmt.Stringer
	// Diff returns the act that separates the receiver from other.
	Diff(other S) Act[S]
	Equal(other S) bool
}

// Move is a finite, single-pass sequence of acts.
type Move[S any] interface {
	fmt.Stringer
	Acts() iter.Seq[Act[S]]
}

// Status is the whole game situation at one instant.
type Status[S any] interface {
	fmt.Stringer
	// States lists the component states in a fixed order.
	States() []S
	Score(p Player[S]) fmt.Stringer
	// Turn is the player expected to move next.
	Turn() Player[S]
	// Validate is the only gate before a move's acts may be applied.
	Validate(m Move[S]) bool
	// Next folds the effect results of a validated move, in act order,
	// into the following status.
	Next(results []S) (Status[S], error)
	Over() bool
}

// Player decides moves.
type Player[S any] interface {
	Name() string
	Play(ctx context.Context, st Status[S]) (Move[S], error)
}

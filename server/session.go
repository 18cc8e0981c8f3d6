package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"

	"tbge/server/engine"
	"tbge/server/game"
	"tbge/server/replay"
	"tbge/server/store"
	"tbge/server/table"
)

var errBadPlayers = errors.New("bad player list")

// session is the outcome of one table game.
type session struct {
	ID     uuid.UUID
	Game   *game.Game[engine.Deck]
	Turns  int
	Mix    replay.Mix
	Scores map[string]string
	Hands  map[string]engine.Hand
	Stack  engine.Deck
	Stats  map[string]*SeatStats
}

// playGame shuffles a fresh deck from seed, seats one dealer per name and runs
// the game to completion or maxTurns. Every applied turn is persisted when db
// is non-nil; observe, if set, sees each turn as it happens.
func playGame(ctx context.Context, db GameStore, seed int64, players []string, maxTurns int, observe func(game.Turn[engine.Deck])) (*session, error) {
	if len(players) == 0 {
		return nil, fmt.Errorf("%w: no players", errBadPlayers)
	}
	// table.NewGame seats players under their trimmed names
	players = trimNames(players)
	g, err := table.NewGame(engine.NewSeededShuffler(seed), players...)
	if err != nil {
		if game.CodeOf(err) == "" {
			err = fmt.Errorf("%w: %v", errBadPlayers, err)
		}
		return nil, err
	}

	s := &session{
		ID:     uuid.New(),
		Game:   g,
		Scores: map[string]string{},
		Hands:  map[string]engine.Hand{},
		Stats:  map[string]*SeatStats{},
	}
	for _, name := range players {
		s.Stats[name] = &SeatStats{}
	}

	if db != nil {
		if err := db.CreateGame(ctx, s.ID, seed, players); err != nil {
			return nil, fmt.Errorf("create game: %w", err)
		}
	}

	var persistErr error
	err = g.Run(ctx, maxTurns, func(t game.Turn[engine.Deck]) {
		s.Turns++
		s.Mix.Add(t)
		s.record(t)
		if observe != nil {
			observe(t)
		}
		if db == nil || persistErr != nil {
			return
		}
		if err := db.AppendTurn(ctx, s.ID, toStored(t)); err != nil {
			persistErr = fmt.Errorf("turn %d: %w", t.Number, err)
		}
	})
	if err != nil {
		return s, err
	}
	if persistErr != nil {
		return s, persistErr
	}

	s.finish()
	if db != nil {
		if err := db.EndGame(ctx, s.ID); err != nil {
			log.Printf("end game %s: %v", s.ID, err)
		}
	}
	return s, nil
}

// record credits the dealer and every seat that received a card.
func (s *session) record(t game.Turn[engine.Deck]) {
	if st, ok := s.Stats[t.Player]; ok {
		st.Dealt++
	}
	tb, ok := s.Game.Status().(*table.Table)
	if !ok {
		return
	}
	for name, st := range s.Stats {
		if h, ok := tb.Hand(name); ok {
			st.Cards = h.Len()
		}
	}
}

func (s *session) finish() {
	st := s.Game.Status()
	tb, ok := st.(*table.Table)
	if ok {
		s.Stack = tb.Stack()
	}
	for _, p := range s.Game.Players() {
		s.Scores[p.Name()] = st.Score(p).String()
		if !ok {
			continue
		}
		hand, _ := tb.Hand(p.Name())
		if h, err := engine.Describe(hand); err == nil {
			s.Hands[p.Name()] = h
			if seat, ok := s.Stats[p.Name()]; ok {
				seat.Score = h.Score
			}
		}
	}
}

// Winners returns the players holding the highest rated hand.
func (s *session) Winners() []string {
	var (
		best  int16 = -1
		names []string
	)
	for _, p := range s.Game.Players() {
		h, ok := s.Hands[p.Name()]
		if !ok {
			continue
		}
		switch {
		case h.Score > best:
			best, names = h.Score, []string{p.Name()}
		case h.Score == best:
			names = append(names, p.Name())
		}
	}
	return names
}

func trimNames(names []string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = strings.TrimSpace(n)
	}
	return out
}

func toStored(t game.Turn[engine.Deck]) store.Turn {
	return store.Turn{
		Turn:   t.Number,
		Player: t.Player,
		Move:   t.Move,
		Acts:   t.Acts,
		States: t.Results,
	}
}

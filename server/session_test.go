package main

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"tbge/server/engine"
	"tbge/server/game"
)

func TestPlayGameWithoutStore(t *testing.T) {
	var seen []int
	s, err := playGame(context.Background(), nil, 11, testPlayers, 0, func(tr game.Turn[engine.Deck]) {
		seen = append(seen, tr.Number)
	})
	if err != nil {
		t.Fatal(err)
	}
	if s.Turns != 13 || len(seen) != 13 || seen[12] != 13 {
		t.Fatalf("turns=%d seen=%v", s.Turns, seen)
	}
	if s.Mix.Push != 52 || s.Mix.Nothing != 13 || s.Mix.Pop != 0 {
		t.Fatalf("mix = %+v", s.Mix)
	}
	if s.Stack.Len() != 0 {
		t.Fatalf("stack left %s", s.Stack)
	}
	for _, name := range testPlayers {
		st := s.Stats[name]
		if st.Dealt != 3 && st.Dealt != 4 {
			t.Fatalf("%s dealt %d turns", name, st.Dealt)
		}
		if st.Cards != 13 {
			t.Fatalf("%s holds %d cards", name, st.Cards)
		}
		if h, ok := s.Hands[name]; !ok || h.Score != st.Score {
			t.Fatalf("%s unrated", name)
		}
	}
	if len(s.Winners()) == 0 {
		t.Fatalf("no winner")
	}
}

func TestPlayGameSameSeedSameHands(t *testing.T) {
	a, err := playGame(context.Background(), nil, 99, testPlayers, 0, nil)
	if err != nil {
		t.Fatal(err)
	}
	b, err := playGame(context.Background(), nil, 99, testPlayers, 0, nil)
	if err != nil {
		t.Fatal(err)
	}
	for _, name := range testPlayers {
		if a.Scores[name] != b.Scores[name] {
			t.Fatalf("%s: %q vs %q", name, a.Scores[name], b.Scores[name])
		}
	}
}

func TestPlayGamePaddedNames(t *testing.T) {
	db := newMemStore()
	s, err := playGame(context.Background(), db, 7, []string{" alice", "bob ", "carol", "\tdave"}, 2, nil)
	if err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"alice", "bob", "carol", "dave"} {
		st, ok := s.Stats[name]
		if !ok {
			t.Fatalf("no stats for %q", name)
		}
		if st.Cards != 2 {
			t.Fatalf("%s holds %d cards", name, st.Cards)
		}
		if _, ok := s.Scores[name]; !ok {
			t.Fatalf("no score for %q", name)
		}
	}
	if g := db.games[s.ID]; g.Players[0] != "alice" || g.Players[3] != "dave" {
		t.Fatalf("stored players = %q", g.Players)
	}
	if !db.ended[s.ID] {
		t.Fatalf("game not marked ended")
	}
}

func TestPlayGameBadPlayers(t *testing.T) {
	_, err := playGame(context.Background(), nil, 1, nil, 0, nil)
	if !errors.Is(err, errBadPlayers) {
		t.Fatalf("err = %v", err)
	}
	_, err = playGame(context.Background(), nil, 1, []string{"x", "x"}, 0, nil)
	if !errors.Is(err, errBadPlayers) {
		t.Fatalf("err = %v", err)
	}
}

func TestPlayGameCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s, err := playGame(ctx, newMemStore(), 1, testPlayers, 0, nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v", err)
	}
	if s == nil || s.Turns != 0 {
		t.Fatalf("session = %+v", s)
	}
}

func TestTally(t *testing.T) {
	totals := map[string]*PlayerStats{}
	for seed := int64(1); seed <= 3; seed++ {
		s, err := playGame(context.Background(), nil, seed, testPlayers, 0, nil)
		if err != nil {
			t.Fatal(err)
		}
		tally(totals, s)
	}
	var wins, ties int
	for _, name := range testPlayers {
		p := totals[name]
		if p.Games != 3 || len(p.Scores) != 3 {
			t.Fatalf("%s: %+v", name, p)
		}
		wins += p.Wins
		ties += p.Ties
	}
	if wins+ties < 3 {
		t.Fatalf("only %d wins and %d ties over 3 games", wins, ties)
	}
}

func TestWilsonCI95(t *testing.T) {
	lo, hi := WilsonCI95(0, 0, 0)
	if lo != 0 || hi != 1 {
		t.Fatalf("empty = [%v, %v]", lo, hi)
	}
	lo, hi = WilsonCI95(50, 0, 100)
	if lo >= 0.5 || hi <= 0.5 || lo < 0.35 || hi > 0.65 {
		t.Fatalf("50/100 = [%v, %v]", lo, hi)
	}
}

func TestBootstrapCI95(t *testing.T) {
	vals := []float64{1, 2, 3, 4, 5}
	lo, hi := BootstrapCI95(vals, 500, rand.New(rand.NewSource(1)))
	if lo < 1 || hi > 5 || lo > 3 || hi < 3 {
		t.Fatalf("CI = [%v, %v]", lo, hi)
	}
	if lo, hi := BootstrapCI95(nil, 500, rand.New(rand.NewSource(1))); lo != 0 || hi != 0 {
		t.Fatalf("empty CI = [%v, %v]", lo, hi)
	}
}

func TestSeedStreamDeterministic(t *testing.T) {
	a, b := newSeedStream(5), newSeedStream(5)
	for i := 0; i < 4; i++ {
		if x, y := a.next(), b.next(); x != y {
			t.Fatalf("step %d: %d != %d", i, x, y)
		}
	}
}

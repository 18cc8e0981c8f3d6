package main

import (
	"math"
	"math/rand"
	"sort"
)

// SeatStats is what one player did during a single game.
type SeatStats struct {
	Dealt int   // turns spent as dealer
	Cards int   // cards held at the end
	Score int16 // best hand rating, 0 when unrated
}

// PlayerStats aggregates a player's results over a run of games.
type PlayerStats struct {
	Games  int
	Wins   int
	Ties   int
	Dealt  int
	Scores []float64
}

func (p *PlayerStats) add(s *SeatStats, won, shared bool) {
	p.Games++
	p.Dealt += s.Dealt
	p.Scores = append(p.Scores, float64(s.Score))
	switch {
	case won && shared:
		p.Ties++
	case won:
		p.Wins++
	}
}

func (p *PlayerStats) MeanScore() float64 {
	if len(p.Scores) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range p.Scores {
		sum += v
	}
	return sum / float64(len(p.Scores))
}

// tally folds one finished session into the running totals.
func tally(totals map[string]*PlayerStats, s *session) {
	winners := s.Winners()
	shared := len(winners) > 1
	for name, st := range s.Stats {
		p, ok := totals[name]
		if !ok {
			p = &PlayerStats{}
			totals[name] = p
		}
		won := false
		for _, w := range winners {
			if w == name {
				won = true
				break
			}
		}
		p.add(st, won, shared)
	}
}

// --------- CI helpers ---------

// WilsonCI95 for Bernoulli win rate using wins/ties/total over games.
func WilsonCI95(wins, ties, total int) (low, hi float64) {
	if total <= 0 {
		return 0, 1
	}
	z := 1.96
	n := float64(total)
	p := (float64(wins) + 0.5*float64(ties)) / n
	den := 1 + (z*z)/n
	center := p + (z*z)/(2*n)
	half := z * math.Sqrt((p*(1-p))/n+(z*z)/(4*n*n))
	return (center - half) / den, (center + half) / den
}

// BootstrapCI95 for the mean of values (e.g., final hand ratings).
func BootstrapCI95(vals []float64, B int, rng *rand.Rand) (low, hi float64) {
	n := len(vals)
	if n == 0 || B <= 1 {
		return 0, 0
	}
	res := make([]float64, B)
	for b := 0; b < B; b++ {
		sum := 0.0
		for i := 0; i < n; i++ {
			sum += vals[rng.Intn(n)]
		}
		res[b] = sum / float64(n)
	}
	sort.Float64s(res)
	l := int(0.025 * float64(B-1))
	h := int(0.975 * float64(B-1))
	return res[l], res[h]
}

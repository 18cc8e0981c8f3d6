package main

import (
	"math"
	"sort"
)

// Glicko-2 constants (paper values).
const (
	g2Scale = 173.7178
	q       = math.Ln10 / 400.0
	pi2     = math.Pi * math.Pi
	g2Tau   = 0.5
)

// Rating is a player's Glicko-2 standing on the public 1500 scale.
type Rating struct {
	Rating     float64
	RD         float64
	Volatility float64
	Games      int
}

func NewRating() *Rating { return &Rating{Rating: 1500, RD: 350, Volatility: 0.06} }

// outcome is one opponent faced during a rating period; S is 1 win, 0.5 tie, 0 loss.
type outcome struct {
	Opp Rating
	S   float64
}

func toMuPhi(r, rd float64) (mu, phi float64)   { return (r - 1500.0) / g2Scale, rd / g2Scale }
func fromMuPhi(mu, phi float64) (r, rd float64) { return mu*g2Scale + 1500.0, phi * g2Scale }

func g(phi float64) float64 { return 1.0 / math.Sqrt(1.0+3.0*q*q*phi*phi/pi2) }
func gExp(mu, muj, phij float64) float64 {
	return 1.0 / (1.0 + math.Exp(-g(phij)*(mu-muj)))
}

// update applies one rating period. With no outcomes only RD grows.
func (a *Rating) update(results []outcome) {
	mu, phi := toMuPhi(a.Rating, a.RD)
	a.Games++
	if len(results) == 0 {
		a.Rating, a.RD = fromMuPhi(mu, math.Sqrt(phi*phi+a.Volatility*a.Volatility))
		return
	}

	var sumG2E, sumGSE float64
	for _, r := range results {
		muB, phiB := toMuPhi(r.Opp.Rating, r.Opp.RD)
		gB := g(phiB)
		e := gExp(mu, muB, phiB)
		sumG2E += gB * gB * e * (1.0 - e)
		sumGSE += gB * (r.S - e)
	}
	v := 1.0 / (q * q * sumG2E)
	delta := v * q * sumGSE

	vol := a.Volatility
	if math.Abs(delta) >= 1e-12 {
		vol = solveVolatility(phi, v, delta, a.Volatility)
	}
	phiStar := math.Sqrt(phi*phi + vol*vol)
	phiNew := 1.0 / math.Sqrt(1.0/(phiStar*phiStar)+1.0/v)
	muNew := mu + phiNew*phiNew*q*sumGSE

	a.Rating, a.RD = fromMuPhi(muNew, phiNew)
	a.Volatility = vol
}

// solveVolatility finds sigma' with the Illinois iteration from the Glicko-2 paper.
func solveVolatility(phi, v, delta, sigma float64) float64 {
	a := math.Log(sigma * sigma)
	f := func(x float64) float64 {
		ex := math.Exp(x)
		num := ex * (delta*delta - phi*phi - v - ex)
		den := 2.0 * (phi*phi + v + ex) * (phi*phi + v + ex)
		return num/den - (x-a)/(g2Tau*g2Tau)
	}

	A := a
	var B float64
	if delta*delta > phi*phi+v {
		B = math.Log(delta*delta - phi*phi - v)
	} else {
		k := 1.0
		for f(a-k) < 0 && k < 1e6 {
			k *= 2.0
		}
		B = a - k
	}
	fA, fB := f(A), f(B)
	for it := 0; it < 60 && math.Abs(B-A) > 1e-6; it++ {
		C := A + (A-B)*fA/(fB-fA)
		fC := f(C)
		if math.IsNaN(fC) || math.IsInf(fC, 0) {
			break
		}
		if fC*fB < 0 {
			A, fA = B, fB
		} else {
			fA /= 2
		}
		B, fB = C, fC
	}
	return math.Exp(A / 2.0)
}

// Ladder rates players over a run of table games.
type Ladder map[string]*Rating

// Rate treats a finished session as one rating period: every pair of seated
// players is compared by final hand rating.
func (l Ladder) Rate(s *session) {
	names := make([]string, 0, len(s.Stats))
	for name := range s.Stats {
		names = append(names, name)
		if l[name] == nil {
			l[name] = NewRating()
		}
	}
	sort.Strings(names)

	// opponents are read at their pre-period values
	before := make(map[string]Rating, len(names))
	for _, n := range names {
		before[n] = *l[n]
	}
	for _, me := range names {
		var results []outcome
		for _, opp := range names {
			if opp == me {
				continue
			}
			results = append(results, outcome{Opp: before[opp], S: versus(s.Stats[me].Score, s.Stats[opp].Score)})
		}
		l[me].update(results)
	}
}

func versus(a, b int16) float64 {
	switch {
	case a > b:
		return 1
	case a < b:
		return 0
	default:
		return 0.5
	}
}

// Standings lists player names by descending rating.
func (l Ladder) Standings() []string {
	out := make([]string, 0, len(l))
	for n := range l {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool {
		if l[out[i]].Rating != l[out[j]].Rating {
			return l[out[i]].Rating > l[out[j]].Rating
		}
		return out[i] < out[j]
	})
	return out
}

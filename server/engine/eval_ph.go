package engine

import (
	"fmt"

	poker "github.com/paulhankin/poker"
)

// Hand is the poker reading of a deck. Higher Score is stronger.
type Hand struct {
	Cards int
	Score int16
	Desc  string
}

func (h Hand) String() string {
	if h.Desc == "" {
		return fmt.Sprintf("%d cards", h.Cards)
	}
	return fmt.Sprintf("%s (%d cards)", h.Desc, h.Cards)
}

// Convert our engine.Card -> library card.
func toPH(c Card) (poker.Card, error) {
	var s poker.Suit
	switch c.Suit {
	case Clubs:
		s = poker.Club
	case Diamonds:
		s = poker.Diamond
	case Hearts:
		s = poker.Heart
	case Spades:
		s = poker.Spade
	default:
		var zero poker.Card
		return zero, fmt.Errorf("card %s has no poker suit", c)
	}
	return poker.MakeCard(s, poker.Rank(c.Rank))
}

// Describe rates the best five-card hand in d. Decks of three or four cards
// are rated by their best three-card subset; smaller decks are only counted.
func Describe(d Deck) (Hand, error) {
	h := Hand{Cards: d.Len()}
	pcs := make([]poker.Card, 0, d.Len())
	for _, c := range d.cards {
		pc, err := toPH(c)
		if err != nil {
			return h, err
		}
		pcs = append(pcs, pc)
	}

	var best []poker.Card
	switch {
	case len(pcs) >= 5:
		best, h.Score = bestOfFiveSubsets(pcs)
	case len(pcs) >= 3:
		best, h.Score = bestOfThreeSubsets(pcs)
	default:
		return h, nil
	}
	desc, err := poker.Describe(best)
	if err != nil {
		return h, err
	}
	h.Desc = desc
	return h, nil
}

func bestOfThreeSubsets(pcs []poker.Card) ([]poker.Card, int16) {
	n := len(pcs)
	best := int16(-32768)
	var bestThree, three [3]poker.Card
	for i := 0; i < n-2; i++ {
		for j := i + 1; j < n-1; j++ {
			for k := j + 1; k < n; k++ {
				three = [3]poker.Card{pcs[i], pcs[j], pcs[k]}
				if score := poker.Eval3(&three); score > best {
					best = score
					bestThree = three
				}
			}
		}
	}
	return bestThree[:], best
}

func bestOfFiveSubsets(pcs []poker.Card) ([]poker.Card, int16) {
	n := len(pcs)
	best := int16(-32768)
	var bestFive [5]poker.Card
	choose := [5]int{}
	var five [5]poker.Card
	var rec func(start, k int)
	rec = func(start, k int) {
		if k == 5 {
			for i := 0; i < 5; i++ {
				five[i] = pcs[choose[i]]
			}
			score := poker.Eval5(&five)
			if score > best {
				best = score
				bestFive = five
			}
			return
		}
		for i := start; i <= n-(5-k); i++ {
			choose[k] = i
			rec(i+1, k+1)
		}
	}
	rec(0, 0)
	return bestFive[:], best
}

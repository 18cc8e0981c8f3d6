package engine

type Suit byte

const (
	Spades Suit = iota
	Hearts
	Clubs
	Diamonds
	Joker
)

const (
	Ace   = 1
	Jack  = 11
	Queen = 12
	King  = 13
)

// Card is a plain value; two cards with equal fields are interchangeable.
type Card struct {
	Suit Suit
	Rank int // 1..13, Ace=1
}

// Valid reports whether the card has a known suit and a rank in 1..13.
func (c Card) Valid() bool {
	return c.Suit <= Joker && c.Rank >= Ace && c.Rank <= King
}

type ActKind string

const (
	Pop     ActKind = "pop"
	Push    ActKind = "push"
	Nothing ActKind = "nothing"
)

// DeckSize is the number of cards produced by NewShuffled.
const DeckSize = 52

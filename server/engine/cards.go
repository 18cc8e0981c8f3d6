package engine

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

const (
	rankChars = "A23456789TJQK"
	suitChars = "shcdj"
)

func (s Suit) String() string {
	switch s {
	case Spades:
		return "♠"
	case Hearts:
		return "♥"
	case Clubs:
		return "♣"
	case Diamonds:
		return "♦"
	case Joker:
		return "🃏"
	default:
		return fmt.Sprintf("suit(%d)", byte(s))
	}
}

func (c Card) String() string {
	var r string
	switch c.Rank {
	case Ace:
		r = "A"
	case Jack:
		r = "J"
	case Queen:
		r = "Q"
	case King:
		r = "K"
	default:
		r = strconv.Itoa(c.Rank)
	}
	return r + c.Suit.String()
}

// Literal encodes a card as two characters: "As", "Th", "2c", "Kj" (joker).
func (c Card) Literal() (string, error) {
	if !c.Valid() {
		return "", fmt.Errorf("invalid card: rank %d suit %d", c.Rank, c.Suit)
	}
	return string([]byte{rankChars[c.Rank-1], suitChars[c.Suit]}), nil
}

// ParseCard decodes a two-character literal. Case is ignored; ten must be 'T'.
func ParseCard(s string) (Card, error) {
	s = strings.TrimSpace(s)
	if len(s) != 2 {
		return Card{}, fmt.Errorf("invalid card literal %q (want 2 chars like As, Td)", s)
	}
	r := strings.IndexByte(rankChars, upper(s[0]))
	if r < 0 {
		return Card{}, fmt.Errorf("invalid rank char %q", s[0])
	}
	u := s[1]
	if u >= 'A' && u <= 'Z' {
		u += 'a' - 'A'
	}
	st := strings.IndexByte(suitChars, u)
	if st < 0 {
		return Card{}, fmt.Errorf("invalid suit char %q", s[1])
	}
	return Card{Suit: Suit(st), Rank: r + 1}, nil
}

// MustParseCards parses space-separated literals and panics on error.
// Intended for tests and fixtures.
func MustParseCards(s string) []Card {
	var out []Card
	for _, f := range strings.Fields(s) {
		c, err := ParseCard(f)
		if err != nil {
			panic(err)
		}
		out = append(out, c)
	}
	return out
}

func upper(b byte) byte {
	if b >= 'a' && b <= 'z' {
		return b - ('a' - 'A')
	}
	return b
}

func (c Card) MarshalJSON() ([]byte, error) {
	s, err := c.Literal()
	if err != nil {
		return nil, err
	}
	return json.Marshal(s)
}

func (c *Card) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseCard(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

package deck

import (
	"encoding/json"
	"fmt"
	"strings"

	"holdem-server/pkg/poker"
)

// Suit represents a card suit
type Suit string

// suit constants
const (
	Hearts   Suit = "hearts"
	Clubs    Suit = "clubs"
	Diamonds Suit = "diamonds"
	Spades   Suit = "spades"
)

// Suits are all four suits in deck order
var Suits = []Suit{Clubs, Diamonds, Hearts, Spades}

// Card is an individual playing card
// Cards are values. Two cards are the same card if their rank and suit match.
type Card struct {
	Rank int  `json:"rank"`
	Suit Suit `json:"suit"`
}

// face cards
const (
	Two     = 2
	Ten     = 10
	Jack    = 11
	Queen   = 12
	King    = 13
	Ace     = 14
	HighAce = Ace
	LowAce  = 1
)

// Char returns the single character used for the suit in a card code
func (s Suit) Char() byte {
	switch s {
	case Clubs:
		return 'c'
	case Diamonds:
		return 'd'
	case Hearts:
		return 'h'
	case Spades:
		return 's'
	}

	panic(fmt.Sprintf("unknown suit: %s", string(s)))
}

// Index returns the position of the suit in deck order
func (s Suit) Index() int {
	for i, suit := range Suits {
		if suit == s {
			return i
		}
	}

	return -1
}

// RankChar returns the single character used for a rank in a card code
func RankChar(rank int) byte {
	switch rank {
	case Ten:
		return 'T'
	case Jack:
		return 'J'
	case Queen:
		return 'Q'
	case King:
		return 'K'
	case Ace, LowAce:
		return 'A'
	}

	if rank >= Two && rank < Ten {
		return byte('0' + rank)
	}

	panic(fmt.Sprintf("unknown rank: %d", rank))
}

// RankName returns the name of the rank, i.e., "Queen"
func RankName(rank int) string {
	switch rank {
	case Jack:
		return "Jack"
	case Queen:
		return "Queen"
	case King:
		return "King"
	case Ace, LowAce:
		return "Ace"
	}

	return fmt.Sprintf("%d", rank)
}

// String returns the card code, i.e., "Ah" or "Td"
func (c Card) String() string {
	return string([]byte{RankChar(c.Rank), c.Suit.Char()})
}

// Symbol returns the card with a suit symbol, i.e., "A♠"
func (c Card) Symbol() string {
	var suit string
	switch c.Suit {
	case Clubs:
		suit = "♣"
	case Diamonds:
		suit = "♢"
	case Hearts:
		suit = "♡"
	case Spades:
		suit = "♠"
	default:
		panic("unknown suit")
	}

	rank := string(RankChar(c.Rank))
	if c.Rank == Ten {
		rank = "10"
	}

	return rank + suit
}

// Index returns a unique number in [0, 52) for the card
func (c Card) Index() int {
	return c.Suit.Index()*13 + c.Rank - Two
}

// IsValid returns true if the rank and suit are within range
func (c Card) IsValid() bool {
	return c.Rank >= Two && c.Rank <= Ace && c.Suit.Index() >= 0
}

// MarshalJSON encodes the card as its code
func (c Card) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

// UnmarshalJSON decodes a card from its code
func (c *Card) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}

	card, err := ParseCard(s)
	if err != nil {
		return err
	}

	*c = card
	return nil
}

// ParseCard returns a Card from its code
// The code is a rank (2-9, T, J, Q, K, A) followed by a lowercase suit (s, h, d, c).
// "10" is accepted as an alias for "T".
func ParseCard(s string) (Card, error) {
	var rankPart, suitPart string
	switch len(s) {
	case 2:
		rankPart, suitPart = s[:1], s[1:]
	case 3:
		if s[:2] != "10" {
			return Card{}, invalidCard(s)
		}

		rankPart, suitPart = "T", s[2:]
	default:
		return Card{}, invalidCard(s)
	}

	var rank int
	switch r := strings.ToUpper(rankPart)[0]; r {
	case 'T':
		rank = Ten
	case 'J':
		rank = Jack
	case 'Q':
		rank = Queen
	case 'K':
		rank = King
	case 'A':
		rank = Ace
	default:
		if r < '2' || r > '9' {
			return Card{}, invalidCard(s)
		}

		rank = int(r - '0')
	}

	var suit Suit
	switch suitPart {
	case "c":
		suit = Clubs
	case "d":
		suit = Diamonds
	case "h":
		suit = Hearts
	case "s":
		suit = Spades
	default:
		return Card{}, invalidCard(s)
	}

	return Card{Rank: rank, Suit: suit}, nil
}

func invalidCard(s string) error {
	return poker.NewError(poker.CodeInvalidCard, "invalid card: %q", s)
}

// MustParseCard is like ParseCard, but panics on error
// This is intended for tests and constants
func MustParseCard(s string) Card {
	c, err := ParseCard(s)
	if err != nil {
		panic(err)
	}

	return c
}

// ParseCards parses a list of card codes
func ParseCards(codes []string) ([]Card, error) {
	cards := make([]Card, len(codes))
	for i, code := range codes {
		c, err := ParseCard(strings.TrimSpace(code))
		if err != nil {
			return nil, err
		}

		cards[i] = c
	}

	return cards, nil
}

// CardsFromString will returns a slice of cards from a comma-separated list, i.e., "Ah,Kd,10c"
// It panics on a malformed card and is intended for tests
func CardsFromString(s string) []Card {
	if s == "" {
		return []Card{}
	}

	cards, err := ParseCards(strings.Split(s, ","))
	if err != nil {
		panic(err)
	}

	return cards
}

// CardsToString will convert a slice of cards to a string in the format of Ah,Kd,Tc
func CardsToString(cards []Card) string {
	c := make([]string, len(cards))
	for i, card := range cards {
		c[i] = card.String()
	}

	return strings.Join(c, ",")
}

// HasDuplicates returns the first card that appears more than once
func HasDuplicates(cards ...[]Card) (Card, bool) {
	seen := make(map[Card]bool)
	for _, set := range cards {
		for _, c := range set {
			if seen[c] {
				return c, true
			}

			seen[c] = true
		}
	}

	return Card{}, false
}

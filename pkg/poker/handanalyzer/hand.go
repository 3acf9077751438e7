package handanalyzer

import (
	"encoding/json"
	"fmt"
)

// Hand is a poker hand category, i.e., royal flush
type Hand int

// Constants for hand
const (
	HighCard Hand = iota + 1
	OnePair
	TwoPair
	ThreeOfAKind
	Straight
	Flush
	FullHouse
	FourOfAKind
	StraightFlush
	RoyalFlush
)

// Hands lists every category, weakest first
var Hands = []Hand{
	HighCard,
	OnePair,
	TwoPair,
	ThreeOfAKind,
	Straight,
	Flush,
	FullHouse,
	FourOfAKind,
	StraightFlush,
	RoyalFlush,
}

// String returns the string representation of a hand
func (h Hand) String() string {
	switch h {
	case HighCard:
		return "High card"
	case OnePair:
		return "Pair"
	case TwoPair:
		return "Two pair"
	case ThreeOfAKind:
		return "Three of a kind"
	case Straight:
		return "Straight"
	case Flush:
		return "Flush"
	case FullHouse:
		return "Full house"
	case FourOfAKind:
		return "Four of a kind"
	case StraightFlush:
		return "Straight flush"
	case RoyalFlush:
		return "Royal flush"
	default:
		panic(fmt.Sprintf("unknown hand: %d", h))
	}
}

// Key returns the machine-readable name of the hand, i.e., "TWO_PAIR"
func (h Hand) Key() string {
	switch h {
	case HighCard:
		return "HIGH_CARD"
	case OnePair:
		return "ONE_PAIR"
	case TwoPair:
		return "TWO_PAIR"
	case ThreeOfAKind:
		return "THREE_OF_A_KIND"
	case Straight:
		return "STRAIGHT"
	case Flush:
		return "FLUSH"
	case FullHouse:
		return "FULL_HOUSE"
	case FourOfAKind:
		return "FOUR_OF_A_KIND"
	case StraightFlush:
		return "STRAIGHT_FLUSH"
	case RoyalFlush:
		return "ROYAL_FLUSH"
	default:
		panic(fmt.Sprintf("unknown hand: %d", h))
	}
}

// MarshalJSON encodes the hand as its key
func (h Hand) MarshalJSON() ([]byte, error) {
	return json.Marshal(h.Key())
}

// UnmarshalJSON decodes a hand from its key
func (h *Hand) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}

	return h.UnmarshalText([]byte(s))
}

// MarshalText allows a hand to be used as a JSON object key
func (h Hand) MarshalText() ([]byte, error) {
	return []byte(h.Key()), nil
}

// UnmarshalText decodes a hand from its key
func (h *Hand) UnmarshalText(b []byte) error {
	for _, hand := range Hands {
		if hand.Key() == string(b) {
			*h = hand
			return nil
		}
	}

	return fmt.Errorf("unknown hand: %s", string(b))
}

var rankNames = map[int][2]string{
	2:  {"Two", "Twos"},
	3:  {"Three", "Threes"},
	4:  {"Four", "Fours"},
	5:  {"Five", "Fives"},
	6:  {"Six", "Sixes"},
	7:  {"Seven", "Sevens"},
	8:  {"Eight", "Eights"},
	9:  {"Nine", "Nines"},
	10: {"Ten", "Tens"},
	11: {"Jack", "Jacks"},
	12: {"Queen", "Queens"},
	13: {"King", "Kings"},
	14: {"Ace", "Aces"},
}

func rankName(rank int) string {
	return rankNames[rank][0]
}

func rankPlural(rank int) string {
	return rankNames[rank][1]
}

// describe returns a human-readable description of the hand, i.e., "Two pair, Aces and Kings"
func describe(hand Hand, kickers []int) string {
	switch hand {
	case RoyalFlush:
		return "Royal flush"
	case StraightFlush, Straight:
		return fmt.Sprintf("%s, %s high", hand, rankName(kickers[0]))
	case FourOfAKind, ThreeOfAKind:
		return fmt.Sprintf("%s, %s", hand, rankPlural(kickers[0]))
	case FullHouse:
		return fmt.Sprintf("Full house, %s full of %s", rankPlural(kickers[0]), rankPlural(kickers[1]))
	case Flush:
		return fmt.Sprintf("Flush, %s high", rankName(kickers[0]))
	case TwoPair:
		return fmt.Sprintf("Two pair, %s and %s", rankPlural(kickers[0]), rankPlural(kickers[1]))
	case OnePair:
		return fmt.Sprintf("Pair of %s", rankPlural(kickers[0]))
	default:
		return fmt.Sprintf("High card, %s", rankName(kickers[0]))
	}
}

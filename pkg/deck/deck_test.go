package deck

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"holdem-server/internal/rng"
)

func TestNewDeck(t *testing.T) {
	deck := New()

	assert.Equal(t, 52, deck.CardsLeft())
	assert.Equal(t, Card{Rank: 2, Suit: Clubs}, deck.Cards[0])
	assert.Equal(t, Card{Rank: 14, Suit: Spades}, deck.Cards[51])

	_, dup := HasDuplicates(deck.Cards)
	assert.False(t, dup)

	unshuffled := deck.HashCode()
	assert.Equal(t, unshuffled, New().HashCode())

	deck.Shuffle(rng.Seeded(1))
	assert.Equal(t, 52, deck.CardsLeft())
	shuffled := deck.HashCode()
	assert.NotEqual(t, unshuffled, shuffled)

	again := New()
	again.Shuffle(rng.Seeded(1))
	assert.Equal(t, shuffled, again.HashCode())

	deck.Shuffle(rng.Seeded(2))
	assert.NotEqual(t, shuffled, deck.HashCode())
}

func TestNewWithout(t *testing.T) {
	a := assert.New(t)

	d := NewWithout(CardsFromString("Ah,Kh"), CardsFromString("2c,3c,4c"), CardsFromString("Ah"))
	a.Equal(47, d.CardsLeft())
	for _, c := range d.Cards {
		a.NotEqual("Ah", c.String())
		a.NotEqual("3c", c.String())
	}
}

func TestDeck_Draw(t *testing.T) {
	a := assert.New(t)
	deck := New()

	a.True(deck.CanDraw(52))
	a.False(deck.CanDraw(53))

	for i := 0; i < 52; i++ {
		card, err := deck.Draw()
		a.NoError(err)
		a.True(card.IsValid())
	}

	a.False(deck.CanDraw(1))

	_, err := deck.Draw()
	a.Equal(ErrEndOfDeck, err)
}

func TestDeck_Deal(t *testing.T) {
	a := assert.New(t)
	d := New()
	d.Cards = CardsFromString("2c,3c,4c,5c")

	cards, err := d.Deal(3)
	a.NoError(err)
	a.Equal("2c,3c,4c", CardsToString(cards))
	a.Equal(1, d.CardsLeft())

	cards, err = d.Deal(2)
	a.Equal(ErrEndOfDeck, err)
	a.Nil(cards)
	a.Equal(1, d.CardsLeft())
}

func TestDeck_Remove(t *testing.T) {
	a := assert.New(t)
	d := New()
	a.Equal(1, d.Remove(MustParseCard("5s")))
	a.Equal(0, d.Remove(MustParseCard("5s")))
	a.Equal(51, len(d.Cards))

	a.Equal(2, d.Remove(CardsFromString("5c,6c,5s")...))
	a.Equal(49, len(d.Cards))
	a.Equal(0, d.Remove())
}

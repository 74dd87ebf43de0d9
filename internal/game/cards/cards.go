// Package cards models a standard 52-card deck.
package cards

import (
	"errors"
	"strconv"
	"strings"

	"github.com/samber/lo"

	"telegram-casino-bot/internal/pkg/random"
)

// ErrEmptyDeck is returned when drawing from an exhausted deck.
var ErrEmptyDeck = errors.New("deck is empty")

// Suit is a card suit.
type Suit int

const (
	Spades Suit = iota
	Hearts
	Diamonds
	Clubs
)

var suitSymbols = [...]string{"♠", "♥", "♦", "♣"}

func (s Suit) String() string {
	if s < Spades || s > Clubs {
		return "?"
	}
	return suitSymbols[s]
}

// Rank is 1 (ace) through 13 (king).
type Rank int

const (
	Ace   Rank = 1
	Jack  Rank = 11
	Queen Rank = 12
	King  Rank = 13
)

func (r Rank) String() string {
	switch r {
	case Ace:
		return "A"
	case Jack:
		return "J"
	case Queen:
		return "Q"
	case King:
		return "K"
	}
	if r >= 2 && r <= 10 {
		return strconv.Itoa(int(r))
	}
	return "?"
}

// IsFace reports whether r is J, Q or K.
func (r Rank) IsFace() bool {
	return r >= Jack && r <= King
}

// Card is a playing card.
type Card struct {
	Rank Rank
	Suit Suit
}

func (c Card) String() string {
	return c.Suit.String() + c.Rank.String()
}

// Format renders cards separated by spaces.
func Format(cs []Card) string {
	return strings.Join(lo.Map(cs, func(c Card, _ int) string { return c.String() }), " ")
}

// Deck is an ordered pile; Draw takes from the top.
type Deck struct {
	cards []Card
}

// Standard returns the 52 cards in suit-major order.
func Standard() []Card {
	all := make([]Card, 0, 52)
	for s := Spades; s <= Clubs; s++ {
		for r := Ace; r <= King; r++ {
			all = append(all, Card{Rank: r, Suit: s})
		}
	}
	return all
}

// NewDeck returns a shuffled 52-card deck.
func NewDeck() *Deck {
	return Shuffled(Standard())
}

// Shuffled returns a deck of cs in random order.
func Shuffled(cs []Card) *Deck {
	d := &Deck{cards: append([]Card(nil), cs...)}
	random.Shuffle(len(d.cards), func(i, j int) { d.cards[i], d.cards[j] = d.cards[j], d.cards[i] })
	return d
}

// Stacked returns a deck that deals cs in the given order.
func Stacked(cs ...Card) *Deck {
	return &Deck{cards: append([]Card(nil), cs...)}
}

// Draw removes and returns the top card.
func (d *Deck) Draw() (Card, error) {
	if len(d.cards) == 0 {
		return Card{}, ErrEmptyDeck
	}
	c := d.cards[0]
	d.cards = d.cards[1:]
	return c, nil
}

// DrawN draws n cards.
func (d *Deck) DrawN(n int) ([]Card, error) {
	out := make([]Card, 0, n)
	for i := 0; i < n; i++ {
		c, err := d.Draw()
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// Remaining returns the number of undealt cards.
func (d *Deck) Remaining() int {
	return len(d.cards)
}

package mocks

import (
	"github.com/phrazzld/crossplay/internal/domain"
)

// StackDealer implements game.Dealer with a fixed, unshuffled deck.
// Cards are dealt and drawn from the end of Cards.
type StackDealer struct {
	Cards []domain.CardDefinition
}

// NewStackDealer creates a dealer that always returns a copy of cards.
func NewStackDealer(cards []domain.CardDefinition) *StackDealer {
	return &StackDealer{Cards: cards}
}

// ShuffledDeck returns a copy of the fixed deck in its original order.
func (d *StackDealer) ShuffledDeck() []domain.CardDefinition {
	deck := make([]domain.CardDefinition, len(d.Cards))
	copy(deck, d.Cards)
	return deck
}

// Deal hands out perPlayer cards to each player, one at a time in turn.
func (d *StackDealer) Deal(deck *[]domain.CardDefinition, playerIDs []string, perPlayer int) map[string][]domain.CardDefinition {
	hands := make(map[string][]domain.CardDefinition, len(playerIDs))
	for _, pid := range playerIDs {
		hands[pid] = []domain.CardDefinition{}
	}
	for i := 0; i < perPlayer; i++ {
		for _, pid := range playerIDs {
			if c, ok := d.Draw(deck); ok {
				hands[pid] = append(hands[pid], c)
			}
		}
	}
	return hands
}

// Draw pops the last card of deck.
func (d *StackDealer) Draw(deck *[]domain.CardDefinition) (domain.CardDefinition, bool) {
	if len(*deck) == 0 {
		return domain.CardDefinition{}, false
	}
	last := len(*deck) - 1
	c := (*deck)[last]
	*deck = (*deck)[:last]
	return c, true
}

// Card builds a card definition; non-positive metrics are left unset.
func Card(id string, width, height float64) domain.CardDefinition {
	c := domain.CardDefinition{ID: id, Name: id}
	if width > 0 {
		c.Width = domain.FloatPtr(width)
	}
	if height > 0 {
		c.Height = domain.FloatPtr(height)
	}
	return c
}

// LandmarkDeck is a small deck for two players with a hand size of two.
// Dealing gives the first player eiffel and big-ben, the second colosseum
// and burj; pyramid is the first replacement drawn.
func LandmarkDeck() []domain.CardDefinition {
	return []domain.CardDefinition{
		Card("filler-1", 10, 10),
		Card("filler-2", 20, 20),
		Card("filler-3", 30, 30),
		Card("statue", 0, 93),
		Card("pyramid", 230, 139),
		Card("burj", 0, 828),
		Card("big-ben", 15, 96),
		Card("colosseum", 188, 0),
		Card("eiffel", 125, 330),
	}
}

package board

import (
	"fmt"
	"sort"

	"github.com/phrazzld/crossplay/internal/domain"
)

// Board maps positions to placed cards on the cross.
type Board struct {
	cards map[Position]*PlacedCard
}

// Neighbors holds the four axis-aligned cards around a cell. Above is y+1.
type Neighbors struct {
	Left  *PlacedCard
	Right *PlacedCard
	Above *PlacedCard
	Below *PlacedCard
}

// Stats summarizes the board layout.
type Stats struct {
	Total      int  `json:"total"`
	Horizontal int  `json:"horizontal"`
	Vertical   int  `json:"vertical"`
	HasOrigin  bool `json:"has_origin"`
	Empty      bool `json:"empty"`
}

// New creates an empty board.
func New() *Board {
	return &Board{cards: make(map[Position]*PlacedCard)}
}

// Place puts a card at (x,y) on the given axis without any legality check.
// An existing card at that position is replaced.
func (b *Board) Place(card domain.CardDefinition, x, y int, axis domain.Axis) *PlacedCard {
	pc := newPlacedCard(card, x, y, axis)
	b.cards[Position{X: x, Y: y}] = pc
	return pc
}

// Remove deletes the card at (x,y). It reports whether a card was removed.
func (b *Board) Remove(x, y int) bool {
	pos := Position{X: x, Y: y}
	if _, ok := b.cards[pos]; !ok {
		return false
	}
	delete(b.cards, pos)
	return true
}

// Move relocates the card at (fromX,fromY) to (toX,toY). The target must be
// free; Move does not check it. It reports whether a card was moved.
func (b *Board) Move(fromX, fromY, toX, toY int) bool {
	from := Position{X: fromX, Y: fromY}
	pc, ok := b.cards[from]
	if !ok {
		return false
	}
	delete(b.cards, from)
	pc.X, pc.Y = toX, toY
	b.cards[Position{X: toX, Y: toY}] = pc
	return true
}

// Card returns the card at (x,y), or nil.
func (b *Board) Card(x, y int) *PlacedCard {
	return b.cards[Position{X: x, Y: y}]
}

// Occupied reports whether a card sits at (x,y).
func (b *Board) Occupied(x, y int) bool {
	_, ok := b.cards[Position{X: x, Y: y}]
	return ok
}

// Len returns the number of placed cards.
func (b *Board) Len() int {
	return len(b.cards)
}

// IsEmpty reports whether no card has been placed.
func (b *Board) IsEmpty() bool {
	return len(b.cards) == 0
}

// Origin returns the card at (0,0), or nil.
func (b *Board) Origin() *PlacedCard {
	return b.Card(0, 0)
}

// CardsOnAxis returns the cards lying on an arm, the origin included, sorted
// by running coordinate ascending. For AxisOrigin it returns the origin alone.
func (b *Board) CardsOnAxis(axis domain.Axis) []*PlacedCard {
	var out []*PlacedCard
	switch axis {
	case domain.AxisHorizontal:
		for pos, pc := range b.cards {
			if pos.Y == 0 {
				out = append(out, pc)
			}
		}
	case domain.AxisVertical:
		for pos, pc := range b.cards {
			if pos.X == 0 {
				out = append(out, pc)
			}
		}
	case domain.AxisOrigin:
		if origin := b.Origin(); origin != nil {
			out = append(out, origin)
		}
		return out
	default:
		return nil
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].coordinate(axis) < out[j].coordinate(axis)
	})
	return out
}

// Neighbors returns the cards adjacent to (x,y).
func (b *Board) Neighbors(x, y int) Neighbors {
	return Neighbors{
		Left:  b.Card(x-1, y),
		Right: b.Card(x+1, y),
		Above: b.Card(x, y+1),
		Below: b.Card(x, y-1),
	}
}

// DetermineAxis maps a position onto the cross. The boolean is false for
// positions that lie on neither arm.
func DetermineAxis(x, y int) (domain.Axis, bool) {
	switch {
	case x == 0 && y == 0:
		return domain.AxisOrigin, true
	case y == 0:
		return domain.AxisHorizontal, true
	case x == 0:
		return domain.AxisVertical, true
	default:
		return "", false
	}
}

// DetermineAxis is the method form of the package-level DetermineAxis.
func (b *Board) DetermineAxis(x, y int) (domain.Axis, bool) {
	return DetermineAxis(x, y)
}

// Cards returns every placed card ordered by x, then y.
func (b *Board) Cards() []*PlacedCard {
	out := make([]*PlacedCard, 0, len(b.cards))
	for _, pc := range b.cards {
		out = append(out, pc)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].X != out[j].X {
			return out[i].X < out[j].X
		}
		return out[i].Y < out[j].Y
	})
	return out
}

// Stats counts the cards per arm.
func (b *Board) Stats() Stats {
	s := Stats{Total: len(b.cards), Empty: len(b.cards) == 0}
	for _, pc := range b.cards {
		switch pc.Axis {
		case domain.AxisOrigin:
			s.HasOrigin = true
		case domain.AxisHorizontal:
			s.Horizontal++
		case domain.AxisVertical:
			s.Vertical++
		}
	}
	return s
}

// CheckOrder verifies the cross topology and the strict ordering of every arm.
func (b *Board) CheckOrder() error {
	for pos, pc := range b.cards {
		axis, ok := DetermineAxis(pos.X, pos.Y)
		if !ok || axis != pc.Axis {
			return &RuleViolation{
				Err:    ErrInvalidPoint,
				Reason: fmt.Sprintf("%s is not on the %s axis at (%d,%d)", pc.Card.Name, pc.Axis, pos.X, pos.Y),
			}
		}
		if pc.Axis.IsArm() && pc.Value == nil {
			return &RuleViolation{
				Err:    ErrMetricMissing,
				Reason: fmt.Sprintf("%s has no %s", pc.Card.Name, domain.MetricName(pc.Axis)),
			}
		}
	}

	for _, axis := range domain.Arms() {
		cards := b.CardsOnAxis(axis)
		for i := 1; i < len(cards); i++ {
			prev, _ := cards[i-1].EffectiveValue(axis)
			cur, _ := cards[i].EffectiveValue(axis)
			if !(prev < cur) {
				return &RuleViolation{
					Err: ErrOrderViolation,
					Reason: fmt.Sprintf("%s (%s %g) must be smaller than %s (%s %g)",
						cards[i-1].Card.Name, domain.MetricName(axis), prev,
						cards[i].Card.Name, domain.MetricName(axis), cur),
				}
			}
		}
	}
	return nil
}

// armPosition converts a running coordinate on an arm into a cell.
func armPosition(axis domain.Axis, c int) (int, int) {
	if axis == domain.AxisVertical {
		return 0, c
	}
	return c, 0
}

// cardOnArm returns the card at running coordinate c of an arm, or nil.
func (b *Board) cardOnArm(axis domain.Axis, c int) *PlacedCard {
	x, y := armPosition(axis, c)
	return b.Card(x, y)
}

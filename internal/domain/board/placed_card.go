package board

import (
	"github.com/phrazzld/crossplay/internal/domain"
)

// Orientation labels describe how a placed card is drawn.
const (
	OrientationCrossroad = "crossroad"
	OrientationLandscape = "landscape"
	OrientationPortrait  = "portrait"
)

// Position is a cell on the board.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// PlacedCard is a card sitting on the board.
type PlacedCard struct {
	Card domain.CardDefinition `json:"card"`
	X    int                   `json:"x"`
	Y    int                   `json:"y"`
	Axis domain.Axis           `json:"axis"`

	// Value caches the metric for the card's arm. It is nil for the origin,
	// which resolves its value per comparison axis.
	Value *float64 `json:"value,omitempty"`
}

func newPlacedCard(card domain.CardDefinition, x, y int, axis domain.Axis) *PlacedCard {
	pc := &PlacedCard{
		Card: card,
		X:    x,
		Y:    y,
		Axis: axis,
	}
	if v, ok := card.Metric(axis); ok {
		pc.Value = &v
	}
	return pc
}

// IsOrigin reports whether the card is the crossroad card.
func (pc *PlacedCard) IsOrigin() bool {
	return pc.Axis == domain.AxisOrigin
}

// EffectiveValue returns the value used when comparing along the given arm.
func (pc *PlacedCard) EffectiveValue(axis domain.Axis) (float64, bool) {
	if pc.IsOrigin() {
		return pc.Card.Metric(axis)
	}
	if axis != pc.Axis || pc.Value == nil {
		return 0, false
	}
	return *pc.Value, true
}

// Orientation returns the drawing orientation for the card's axis.
func (pc *PlacedCard) Orientation() string {
	switch pc.Axis {
	case domain.AxisOrigin:
		return OrientationCrossroad
	case domain.AxisVertical:
		return OrientationPortrait
	default:
		return OrientationLandscape
	}
}

// Position returns the card's cell.
func (pc *PlacedCard) Position() Position {
	return Position{X: pc.X, Y: pc.Y}
}

// coordinate returns the running coordinate of the card along an arm.
func (pc *PlacedCard) coordinate(axis domain.Axis) int {
	if axis == domain.AxisVertical {
		return pc.Y
	}
	return pc.X
}

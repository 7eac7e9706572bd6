package board

import (
	"errors"
	"fmt"

	"github.com/phrazzld/crossplay/internal/domain"
)

// Kind classifies an insertion point.
type Kind string

// Insertion point kinds
const (
	KindOrigin Kind = "origin"
	KindExtend Kind = "extend"
	KindGap    Kind = "gap"
	KindShift  Kind = "shift"
)

// InsertionPoint is a candidate cell for the next card.
type InsertionPoint struct {
	X           int         `json:"x"`
	Y           int         `json:"y"`
	Axis        domain.Axis `json:"axis"`
	Kind        Kind        `json:"kind"`
	ShiftsCards bool        `json:"shifts_cards"`
	Description string      `json:"description"`
}

// InsertionPoints groups the candidates by axis.
type InsertionPoints struct {
	Origin     []InsertionPoint `json:"origin"`
	Horizontal []InsertionPoint `json:"horizontal"`
	Vertical   []InsertionPoint `json:"vertical"`
}

// All returns every candidate: origin first, then horizontal, then vertical.
func (p InsertionPoints) All() []InsertionPoint {
	all := make([]InsertionPoint, 0, len(p.Origin)+len(p.Horizontal)+len(p.Vertical))
	all = append(all, p.Origin...)
	all = append(all, p.Horizontal...)
	all = append(all, p.Vertical...)
	return all
}

// Count returns the number of candidates.
func (p InsertionPoints) Count() int {
	return len(p.Origin) + len(p.Horizontal) + len(p.Vertical)
}

// Result is the outcome of an insertion attempt.
type Result struct {
	Valid  bool           `json:"valid"`
	Reason string         `json:"reason,omitempty"`
	Err    error          `json:"-"`
	Placed *PlacedCard    `json:"placed,omitempty"`
	Point  InsertionPoint `json:"point"`
}

// Engine enumerates, validates and executes insertions on a board.
type Engine struct {
	board *Board
}

// NewEngine creates an engine operating on b.
func NewEngine(b *Board) *Engine {
	return &Engine{board: b}
}

// Board returns the board the engine mutates.
func (e *Engine) Board() *Board {
	return e.board
}

// Enumerate lists every insertion point for the current board.
func (e *Engine) Enumerate() InsertionPoints {
	var points InsertionPoints
	if e.board.IsEmpty() {
		points.Origin = []InsertionPoint{{
			X:           0,
			Y:           0,
			Axis:        domain.AxisOrigin,
			Kind:        KindOrigin,
			Description: "place the first card at the crossroad",
		}}
		return points
	}

	points.Horizontal = e.enumerateArm(domain.AxisHorizontal)
	points.Vertical = e.enumerateArm(domain.AxisVertical)
	return points
}

func (e *Engine) enumerateArm(axis domain.Axis) []InsertionPoint {
	cards := e.board.CardsOnAxis(axis)

	if len(cards) <= 1 {
		anchor := "the crossroad"
		centre := 0
		if len(cards) == 1 {
			anchor = cards[0].Card.Name
			centre = cards[0].coordinate(axis)
		}
		return []InsertionPoint{
			e.point(axis, centre-1, KindExtend, fmt.Sprintf("extend %s %s", lowSide(axis), anchor)),
			e.point(axis, centre+1, KindExtend, fmt.Sprintf("extend %s %s", highSide(axis), anchor)),
		}
	}

	first, last := cards[0], cards[len(cards)-1]
	points := []InsertionPoint{
		e.point(axis, first.coordinate(axis)-1, KindExtend,
			fmt.Sprintf("extend %s %s", lowSide(axis), first.Card.Name)),
	}

	for i := 0; i+1 < len(cards); i++ {
		lo, hi := cards[i], cards[i+1]
		loC, hiC := lo.coordinate(axis), hi.coordinate(axis)
		switch {
		case hiC-loC > 1:
			points = append(points, e.point(axis, loC+1, KindGap,
				fmt.Sprintf("fill the gap between %s and %s", lo.Card.Name, hi.Card.Name)))
		case hiC-loC == 1:
			// The farther card from the origin gets pushed outward.
			target, pushed := hiC, hi
			if loC < 0 {
				target, pushed = loC, lo
			}
			p := e.point(axis, target, KindShift,
				fmt.Sprintf("insert between %s and %s, shifting %s outward", lo.Card.Name, hi.Card.Name, pushed.Card.Name))
			p.ShiftsCards = true
			points = append(points, p)
		}
	}

	points = append(points, e.point(axis, last.coordinate(axis)+1, KindExtend,
		fmt.Sprintf("extend %s %s", highSide(axis), last.Card.Name)))
	return points
}

func (e *Engine) point(axis domain.Axis, c int, kind Kind, desc string) InsertionPoint {
	x, y := armPosition(axis, c)
	return InsertionPoint{X: x, Y: y, Axis: axis, Kind: kind, Description: desc}
}

func lowSide(axis domain.Axis) string {
	if axis == domain.AxisVertical {
		return "below"
	}
	return "left of"
}

func highSide(axis domain.Axis) string {
	if axis == domain.AxisVertical {
		return "above"
	}
	return "right of"
}

// Validate checks whether card may be inserted at point. A non-nil error is
// always a *RuleViolation.
func (e *Engine) Validate(card domain.CardDefinition, point InsertionPoint) error {
	axis, ok := DetermineAxis(point.X, point.Y)
	if !ok || axis != point.Axis {
		return violation(ErrInvalidPoint,
			fmt.Sprintf("(%d,%d) is not a %s position", point.X, point.Y, point.Axis))
	}

	if point.Kind != KindShift && e.board.Occupied(point.X, point.Y) {
		return violation(ErrPositionOccupied,
			fmt.Sprintf("position (%d,%d) is already occupied", point.X, point.Y))
	}

	if axis == domain.AxisOrigin {
		if !card.CanBeOrigin() {
			return violation(ErrOriginNeedsBothMetrics,
				fmt.Sprintf("%s needs both width and height to start the crossroad", card.Name))
		}
	} else if !card.HasMetric(axis) {
		return violation(ErrMetricMissing,
			fmt.Sprintf("%s has no %s for the %s axis", card.Name, domain.MetricName(axis), axis))
	}

	if !e.isCandidate(point) {
		return violation(ErrInvalidPoint,
			fmt.Sprintf("(%d,%d) %s is not an available insertion point", point.X, point.Y, point.Kind))
	}

	if axis == domain.AxisOrigin {
		return nil
	}

	value, _ := card.Metric(axis)
	lower, upper := e.bounds(axis, point)

	if lower != nil {
		if lv, ok := lower.EffectiveValue(axis); ok && !(lv < value) {
			return violation(ErrOrderViolation,
				fmt.Sprintf("%s (%s %g) must be greater than %s (%s %g)",
					card.Name, domain.MetricName(axis), value,
					lower.Card.Name, domain.MetricName(axis), lv))
		}
	}
	if upper != nil {
		if uv, ok := upper.EffectiveValue(axis); ok && !(value < uv) {
			return violation(ErrOrderViolation,
				fmt.Sprintf("%s (%s %g) must be less than %s (%s %g)",
					card.Name, domain.MetricName(axis), value,
					upper.Card.Name, domain.MetricName(axis), uv))
		}
	}
	return nil
}

// bounds returns the cards that will sit directly below and above the new card
// along the arm once the insertion is done. For a shift the current occupant
// is displaced outward and becomes the outer bound.
func (e *Engine) bounds(axis domain.Axis, point InsertionPoint) (lower, upper *PlacedCard) {
	c := coordinateOf(axis, point.X, point.Y)
	if point.Kind != KindShift {
		return e.board.cardOnArm(axis, c-1), e.board.cardOnArm(axis, c+1)
	}

	occupant := e.board.cardOnArm(axis, c)
	if c > 0 {
		return e.board.cardOnArm(axis, c-1), occupant
	}
	return occupant, e.board.cardOnArm(axis, c+1)
}

func (e *Engine) isCandidate(point InsertionPoint) bool {
	for _, p := range e.Enumerate().All() {
		if p.X == point.X && p.Y == point.Y && p.Axis == point.Axis && p.Kind == point.Kind {
			return true
		}
	}
	return false
}

// Execute validates the insertion and, when legal, shifts cards as needed and
// places the card. A rejected insertion leaves the board untouched.
func (e *Engine) Execute(card domain.CardDefinition, point InsertionPoint) Result {
	if err := e.Validate(card, point); err != nil {
		return Result{Valid: false, Reason: Reason(err), Err: err, Point: point}
	}

	if point.Kind == KindShift {
		e.shiftOutward(point.Axis, coordinateOf(point.Axis, point.X, point.Y))
	}

	placed := e.board.Place(card, point.X, point.Y, point.Axis)
	return Result{Valid: true, Placed: placed, Point: point}
}

// shiftOutward moves every card at or beyond c one step away from the origin,
// starting with the farthest so no card is overwritten.
func (e *Engine) shiftOutward(axis domain.Axis, c int) {
	cards := e.board.CardsOnAxis(axis)
	if c > 0 {
		for i := len(cards) - 1; i >= 0; i-- {
			pc := cards[i]
			if pc.coordinate(axis) < c {
				break
			}
			fromX, fromY := pc.X, pc.Y
			toX, toY := armPosition(axis, pc.coordinate(axis)+1)
			e.board.Move(fromX, fromY, toX, toY)
		}
		return
	}

	for _, pc := range cards {
		if pc.coordinate(axis) > c {
			break
		}
		fromX, fromY := pc.X, pc.Y
		toX, toY := armPosition(axis, pc.coordinate(axis)-1)
		e.board.Move(fromX, fromY, toX, toY)
	}
}

func coordinateOf(axis domain.Axis, x, y int) int {
	if axis == domain.AxisVertical {
		return y
	}
	return x
}

// Reason extracts the human-readable reason from an insertion error.
func Reason(err error) string {
	var v *RuleViolation
	if errors.As(err, &v) {
		return v.Error()
	}
	if err != nil {
		return err.Error()
	}
	return ""
}

package domain

// Axis identifies where a card sits on the cross-shaped board.
type Axis string

// Possible axis values
const (
	// AxisOrigin is the single crossing point at (0,0).
	AxisOrigin Axis = "origin"
	// AxisHorizontal is the arm along y=0, ordered by width.
	AxisHorizontal Axis = "horizontal"
	// AxisVertical is the arm along x=0, ordered by height.
	AxisVertical Axis = "vertical"
)

// IsArm reports whether the axis is one of the two arms.
func (a Axis) IsArm() bool {
	return a == AxisHorizontal || a == AxisVertical
}

// IsValid reports whether the axis is a known value.
func (a Axis) IsValid() bool {
	return a == AxisOrigin || a.IsArm()
}

// Arms lists the two arms in a fixed order.
func Arms() []Axis {
	return []Axis{AxisHorizontal, AxisVertical}
}

package domain

import (
	"errors"
	"strings"
)

// Card-specific validation errors
var (
	// ErrCardIDEmpty is returned when a card ID is empty.
	ErrCardIDEmpty = errors.New("card ID cannot be empty")

	// ErrCardNameEmpty is returned when a card name is empty.
	ErrCardNameEmpty = errors.New("card name cannot be empty")

	// ErrCardNoMetrics is returned when a card has neither width nor height.
	ErrCardNoMetrics = errors.New("card must have at least one metric (height or width)")

	// ErrCardMetricNotPositive is returned when a metric is zero or negative.
	ErrCardMetricNotPositive = errors.New("card metric must be positive")
)

// CardDefinition is an immutable card from the catalog. Width orders the
// horizontal arm, Height orders the vertical arm; either may be absent.
type CardDefinition struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Width       *float64       `json:"width"`
	Height      *float64       `json:"height"`
	ImageURL    string         `json:"image_url,omitempty"`
	AllowedAxes []Axis         `json:"allowed_axes,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// FloatPtr is a small helper for building optional metric values.
func FloatPtr(v float64) *float64 {
	return &v
}

// Validate checks if the CardDefinition has valid data.
func (c CardDefinition) Validate() error {
	if strings.TrimSpace(c.ID) == "" {
		return ErrCardIDEmpty
	}

	if strings.TrimSpace(c.Name) == "" {
		return ErrCardNameEmpty
	}

	if c.Width == nil && c.Height == nil {
		return ErrCardNoMetrics
	}

	if (c.Width != nil && *c.Width <= 0) || (c.Height != nil && *c.Height <= 0) {
		return ErrCardMetricNotPositive
	}

	return nil
}

// HasMetric reports whether the card carries the metric ordering the given arm.
// The origin requires both metrics.
func (c CardDefinition) HasMetric(axis Axis) bool {
	switch axis {
	case AxisHorizontal:
		return c.Width != nil
	case AxisVertical:
		return c.Height != nil
	case AxisOrigin:
		return c.CanBeOrigin()
	default:
		return false
	}
}

// Metric returns the metric ordering the given arm and whether it is present.
func (c CardDefinition) Metric(axis Axis) (float64, bool) {
	switch axis {
	case AxisHorizontal:
		if c.Width != nil {
			return *c.Width, true
		}
	case AxisVertical:
		if c.Height != nil {
			return *c.Height, true
		}
	}
	return 0, false
}

// CanBeOrigin reports whether the card may be the first card on the board.
func (c CardDefinition) CanBeOrigin() bool {
	return c.Width != nil && c.Height != nil
}

// MetricName returns the display name of the metric used on an arm.
func MetricName(axis Axis) string {
	switch axis {
	case AxisHorizontal:
		return "width"
	case AxisVertical:
		return "height"
	case AxisOrigin:
		return "crossroad"
	default:
		return "unknown"
	}
}

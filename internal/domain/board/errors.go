package board

import "errors"

// Insertion rule errors. They are returned wrapped in a RuleViolation that
// carries the human-readable reason.
var (
	// ErrPositionOccupied is returned when a non-shift insertion targets a taken cell.
	ErrPositionOccupied = errors.New("position occupied")

	// ErrMetricMissing is returned when a card lacks the metric of the target arm.
	ErrMetricMissing = errors.New("metric missing for axis")

	// ErrOrderViolation is returned when a placement breaks the ordering of an arm.
	ErrOrderViolation = errors.New("ordering violated")

	// ErrOriginNeedsBothMetrics is returned when the first card lacks width or height.
	ErrOriginNeedsBothMetrics = errors.New("origin card needs both metrics")

	// ErrInvalidPoint is returned for points that are not current insertion candidates.
	ErrInvalidPoint = errors.New("invalid insertion point")
)

// RuleViolation describes why an insertion was rejected.
type RuleViolation struct {
	Err    error
	Reason string
}

// Error returns the human-readable reason.
func (v *RuleViolation) Error() string {
	if v.Reason == "" {
		return v.Err.Error()
	}
	return v.Reason
}

// Unwrap returns the rule error to support errors.Is/errors.As.
func (v *RuleViolation) Unwrap() error {
	return v.Err
}

func violation(err error, reason string) *RuleViolation {
	return &RuleViolation{Err: err, Reason: reason}
}

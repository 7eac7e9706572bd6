package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCardDefinition_Validate(t *testing.T) {
	tests := []struct {
		name    string
		card    CardDefinition
		wantErr error
	}{
		{
			name: "both metrics",
			card: CardDefinition{ID: "eiffel", Name: "Eiffel Tower", Width: FloatPtr(125), Height: FloatPtr(330)},
		},
		{
			name: "width only",
			card: CardDefinition{ID: "bridge", Name: "Golden Gate", Width: FloatPtr(2737)},
		},
		{
			name: "height only",
			card: CardDefinition{ID: "tower", Name: "CN Tower", Height: FloatPtr(553)},
		},
		{
			name:    "empty id",
			card:    CardDefinition{ID: " ", Name: "Nameless", Width: FloatPtr(1)},
			wantErr: ErrCardIDEmpty,
		},
		{
			name:    "empty name",
			card:    CardDefinition{ID: "x", Width: FloatPtr(1)},
			wantErr: ErrCardNameEmpty,
		},
		{
			name:    "no metrics",
			card:    CardDefinition{ID: "x", Name: "X"},
			wantErr: ErrCardNoMetrics,
		},
		{
			name:    "zero width",
			card:    CardDefinition{ID: "x", Name: "X", Width: FloatPtr(0), Height: FloatPtr(3)},
			wantErr: ErrCardMetricNotPositive,
		},
		{
			name:    "negative height",
			card:    CardDefinition{ID: "x", Name: "X", Height: FloatPtr(-2)},
			wantErr: ErrCardMetricNotPositive,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.card.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, tt.wantErr), "expected %v, got %v", tt.wantErr, err)
		})
	}
}

func TestCardDefinition_Metrics(t *testing.T) {
	both := CardDefinition{ID: "a", Name: "A", Width: FloatPtr(10), Height: FloatPtr(20)}
	widthOnly := CardDefinition{ID: "b", Name: "B", Width: FloatPtr(5)}
	heightOnly := CardDefinition{ID: "c", Name: "C", Height: FloatPtr(7)}

	assert.True(t, both.CanBeOrigin())
	assert.False(t, widthOnly.CanBeOrigin())
	assert.False(t, heightOnly.CanBeOrigin())

	assert.True(t, widthOnly.HasMetric(AxisHorizontal))
	assert.False(t, widthOnly.HasMetric(AxisVertical))
	assert.False(t, widthOnly.HasMetric(AxisOrigin))
	assert.True(t, heightOnly.HasMetric(AxisVertical))
	assert.True(t, both.HasMetric(AxisOrigin))
	assert.False(t, both.HasMetric(Axis("diagonal")))

	v, ok := both.Metric(AxisHorizontal)
	assert.True(t, ok)
	assert.Equal(t, 10.0, v)

	v, ok = both.Metric(AxisVertical)
	assert.True(t, ok)
	assert.Equal(t, 20.0, v)

	_, ok = heightOnly.Metric(AxisHorizontal)
	assert.False(t, ok)

	_, ok = both.Metric(AxisOrigin)
	assert.False(t, ok)
}

func TestMetricName(t *testing.T) {
	assert.Equal(t, "width", MetricName(AxisHorizontal))
	assert.Equal(t, "height", MetricName(AxisVertical))
	assert.Equal(t, "crossroad", MetricName(AxisOrigin))
}

func TestValidationError(t *testing.T) {
	err := NewValidationError("player_id", "cannot be empty", nil)

	assert.True(t, errors.Is(err, ErrValidation))
	assert.Equal(t, "player_id cannot be empty: validation failed", err.Error())

	var ve *ValidationError
	assert.True(t, errors.As(error(err), &ve))
	assert.Equal(t, "player_id", ve.Field)

	wrapped := NewValidationError("axis", "is unknown", ErrInvalidAxis)
	assert.True(t, errors.Is(wrapped, ErrInvalidAxis))
}

func TestAxis(t *testing.T) {
	assert.True(t, AxisOrigin.IsValid())
	assert.False(t, AxisOrigin.IsArm())
	assert.True(t, AxisHorizontal.IsArm())
	assert.True(t, AxisVertical.IsArm())
	assert.False(t, Axis("diagonal").IsValid())
	assert.Equal(t, []Axis{AxisHorizontal, AxisVertical}, Arms())
}

package grading

import (
	"testing"

	"github.com/Aleshka-08-12-00/navuchai-back-sub000/internal/models"
	"github.com/stretchr/testify/assert"
)

func fivePointScale() models.Scale {
	return models.NewScale(
		models.ScaleBand{Min: 0, Max: 49, Grade: "2", Color: "red"},
		models.ScaleBand{Min: 80, Max: 100, Grade: "5", Color: "green", Pass: true},
		models.ScaleBand{Min: 50, Max: 79, Grade: "3", Color: "yellow"},
	)
}

func TestResolveGrade(t *testing.T) {
	tests := []struct {
		name        string
		value       float64
		expectGrade string
		expectPass  bool
	}{
		{name: "top band", value: 85, expectGrade: "5", expectPass: true},
		{name: "upper bound inclusive", value: 100, expectGrade: "5", expectPass: true},
		{name: "lower bound inclusive", value: 80, expectGrade: "5", expectPass: true},
		{name: "middle band", value: 50, expectGrade: "3"},
		{name: "bottom band", value: 0, expectGrade: "2"},
		{name: "gap falls back to lowest band", value: 79.5, expectGrade: "2"},
		{name: "above every band", value: 120, expectGrade: "2"},
		{name: "below every band", value: -5, expectGrade: "2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			band, ok := ResolveGrade(tt.value, fivePointScale())

			assert.True(t, ok)
			assert.Equal(t, tt.expectGrade, band.Grade)
			assert.Equal(t, tt.expectPass, band.Pass)
		})
	}
}

func TestResolveGrade_OverlapFirstHighestMinWins(t *testing.T) {
	scale := models.NewScale(
		models.ScaleBand{Min: 0, Max: 100, Grade: "wide"},
		models.ScaleBand{Min: 60, Max: 100, Grade: "narrow", Pass: true},
	)

	band, ok := ResolveGrade(70, scale)
	assert.True(t, ok)
	assert.Equal(t, "narrow", band.Grade)

	band, _ = ResolveGrade(30, scale)
	assert.Equal(t, "wide", band.Grade)
}

func TestResolveGrade_EmptyScale(t *testing.T) {
	_, ok := ResolveGrade(50, nil)
	assert.False(t, ok)
}

func TestResolveGrade_Monotonic(t *testing.T) {
	scale := fivePointScale()
	prevMin := -1.0
	for v := 0.0; v <= 100; v += 0.5 {
		if v > 49 && v < 50 || v > 79 && v < 80 {
			continue
		}
		band, _ := ResolveGrade(v, scale)
		assert.GreaterOrEqual(t, band.Min, prevMin, "value %.1f", v)
		prevMin = band.Min
	}
}

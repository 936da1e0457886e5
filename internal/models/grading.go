package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

type ScaleType string

const (
	ScalePercent ScaleType = "percent"
	ScalePoints  ScaleType = "points"
)

func (t ScaleType) IsValid() bool {
	return t == ScalePercent || t == ScalePoints
}

// ScaleBand maps the inclusive range [Min, Max] to a grade.
type ScaleBand struct {
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Grade string  `json:"grade"`
	Color string  `json:"color"`
	Pass  bool    `json:"pass"`
}

func (b ScaleBand) Contains(value float64) bool {
	return value >= b.Min && value <= b.Max
}

// UnmarshalJSON accepts the grade as either a string or a number.
func (b *ScaleBand) UnmarshalJSON(data []byte) error {
	type bandAlias ScaleBand
	var raw struct {
		bandAlias
		Grade json.RawMessage `json:"grade"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*b = ScaleBand(raw.bandAlias)
	b.Grade = ""

	grade := bytes.TrimSpace(raw.Grade)
	if len(grade) == 0 || bytes.Equal(grade, []byte("null")) {
		return nil
	}
	if grade[0] == '"' {
		return json.Unmarshal(grade, &b.Grade)
	}
	var num json.Number
	if err := json.Unmarshal(grade, &num); err != nil {
		return fmt.Errorf("invalid grade %s: %w", grade, err)
	}
	b.Grade = num.String()
	return nil
}

// Scale is an ordered set of bands, highest Min first. Build it with NewScale.
type Scale []ScaleBand

// NewScale copies the bands and sorts them by Min descending. Bands with equal Min
// keep their configured order.
func NewScale(bands ...ScaleBand) Scale {
	scale := make(Scale, len(bands))
	copy(scale, bands)
	sort.SliceStable(scale, func(i, j int) bool {
		return scale[i].Min > scale[j].Min
	})
	return scale
}

// Lowest returns the band with the smallest Min.
func (s Scale) Lowest() (ScaleBand, bool) {
	if len(s) == 0 {
		return ScaleBand{}, false
	}
	return s[len(s)-1], true
}

// GradeOptions is the grading configuration owned by a test.
type GradeOptions struct {
	ScaleType ScaleType `json:"scaleType" validate:"omitempty,scale_type"`
	Scale     Scale     `json:"scale" validate:"dive"`
	AutoGrade bool      `json:"autoGrade"`
}

// NewGradeOptions builds options with the scale already ordered.
func NewGradeOptions(scaleType ScaleType, autoGrade bool, bands ...ScaleBand) *GradeOptions {
	return &GradeOptions{
		ScaleType: scaleType,
		Scale:     NewScale(bands...),
		AutoGrade: autoGrade,
	}
}

// EffectiveScaleType defaults to percent when the scale type is missing or unknown.
func (o *GradeOptions) EffectiveScaleType() ScaleType {
	if o == nil || o.ScaleType != ScalePoints {
		return ScalePercent
	}
	return ScalePoints
}

func (o *GradeOptions) UnmarshalJSON(data []byte) error {
	type optionsAlias GradeOptions
	var raw optionsAlias
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*o = GradeOptions(raw)
	o.Scale = NewScale(raw.Scale...)
	return nil
}

package validator

import (
	"fmt"

	"github.com/Aleshka-08-12-00/navuchai-back-sub000/internal/models"
)

// BusinessValidator checks rules that struct tags cannot express.
type BusinessValidator struct{}

func NewBusinessValidator() *BusinessValidator {
	return &BusinessValidator{}
}

// Validate dispatches on the concrete type. Types without business rules pass.
func (b *BusinessValidator) Validate(s interface{}) ValidationErrors {
	switch v := s.(type) {
	case *models.GradeOptions:
		return b.ValidateGradeOptions(v)
	case models.GradeOptions:
		return b.ValidateGradeOptions(&v)
	}
	return nil
}

// ValidateGradeOptions reports bands whose range is inverted, and percent bands that
// fall outside 0..100. Overlaps and gaps are allowed.
func (b *BusinessValidator) ValidateGradeOptions(opts *models.GradeOptions) ValidationErrors {
	if opts == nil {
		return nil
	}

	var errs ValidationErrors
	for i, band := range opts.Scale {
		field := fmt.Sprintf("scale[%d]", i)
		if band.Min > band.Max {
			errs = append(errs, *NewValidationErrorWithRule(field, "min must not exceed max", "scale_band_range", band))
		}
		if opts.EffectiveScaleType() == models.ScalePercent && (band.Min < 0 || band.Max > 100) {
			errs = append(errs, *NewValidationErrorWithRule(field, "must be between 0 and 100 for a percent scale", "grade_value", band))
		}
	}
	return errs
}

package grading

import "github.com/Aleshka-08-12-00/navuchai-back-sub000/internal/models"

// ResolveGrade returns the first band of scale that contains value. When no band
// matches, the band with the lowest Min is returned instead. The scale must already
// be ordered by Min descending, as models.NewScale builds it.
//
// ok is false only for an empty scale.
func ResolveGrade(value float64, scale models.Scale) (band models.ScaleBand, ok bool) {
	for _, b := range scale {
		if b.Contains(value) {
			return b, true
		}
	}
	return scale.Lowest()
}

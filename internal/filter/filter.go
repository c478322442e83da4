// Package filter holds the read-side transformations applied to every
// blueprint the service returns. Exactly one filter is active per process.
package filter

import "github.com/arsw/blueprints/internal/blueprint"

// Filter transforms a blueprint for display. Implementations must not modify
// their argument and must not fail; a filter with nothing sensible to do
// returns its input unchanged.
type Filter interface {
	Apply(bp blueprint.Blueprint) blueprint.Blueprint
}

// Func adapts an ordinary function to the Filter interface.
type Func func(bp blueprint.Blueprint) blueprint.Blueprint

// Apply calls f(bp).
func (f Func) Apply(bp blueprint.Blueprint) blueprint.Blueprint {
	return f(bp)
}

// Identity returns every blueprint unchanged.
type Identity struct{}

// Apply returns bp.
func (Identity) Apply(bp blueprint.Blueprint) blueprint.Blueprint {
	return bp
}

// Redundancy drops points that repeat the point immediately before them.
type Redundancy struct{}

// Apply returns a copy of bp without consecutive duplicate points.
func (Redundancy) Apply(bp blueprint.Blueprint) blueprint.Blueprint {
	if len(bp.Points) < 2 {
		return bp
	}

	out := make([]blueprint.Point, 0, len(bp.Points))
	for i, p := range bp.Points {
		if i > 0 && p == bp.Points[i-1] {
			continue
		}
		out = append(out, p)
	}

	bp.Points = out
	return bp
}

// Undersampling keeps every other point, starting with the first.
type Undersampling struct{}

// minUndersample is the smallest point count worth thinning; shorter drawings
// would lose their end point.
const minUndersample = 3

// Apply returns a copy of bp holding the points at even positions.
func (Undersampling) Apply(bp blueprint.Blueprint) blueprint.Blueprint {
	if len(bp.Points) < minUndersample {
		return bp
	}

	out := make([]blueprint.Point, 0, (len(bp.Points)+1)/2)
	for i := 0; i < len(bp.Points); i += 2 {
		out = append(out, bp.Points[i])
	}

	bp.Points = out
	return bp
}

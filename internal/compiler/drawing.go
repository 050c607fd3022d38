// Package compiler turns a normalized vector drawing into a deterministic,
// ordered sequence of SSG lines (spec §4.5). It is grounded on the
// teacher's xplot.go in its separation of "shape the data" (here: simplify
// and order polylines) from "format the data" (emit one deterministic
// ssg.Line per instruction), and on packet.go's closed, explicit struct
// shapes for the wire-adjacent types.
package compiler

import "github.com/saucerun/ssgcore/internal/units"

// Point is one vertex of a polyline, in millimeters.
type Point = units.Point

// Polyline is one compiler input path: an ordered list of points sharing a
// single flow duty and feed rate (spec §6 "Polyline compiler input").
type Polyline struct {
	Points   []Point
	FlowDuty int
	FeedRate float64
}

// Closed reports whether the polyline's last point coincides with its
// first (spec §6 glossary "Polyline").
func (p Polyline) Closed() bool {
	if len(p.Points) < 2 {
		return false
	}
	return p.Points[0].Equal(p.Points[len(p.Points)-1])
}

// Drawing is the full compiler input: an ordered set of polylines plus the
// travel feed rate used between them.
type Drawing struct {
	Polylines []Polyline
	RapidFeed float64
	// Park, if true, appends a final G0 X0 Y0 travel (spec §4.5 step 3).
	Park bool
}

// Config bounds and tunables for compilation (spec §4.5 "Validation").
type Config struct {
	SoftMinX, SoftMaxX units.Millimeters
	SoftMinY, SoftMaxY units.Millimeters
	MaxPathLengthMM    float64
	MaxVertices        int
	// SimplifyEpsilonMM, when > 0, applies Ramer-Douglas-Peucker with this
	// tolerance to every polyline before ordering and emission.
	SimplifyEpsilonMM float64
	// Optimize2Opt enables the optional 2-opt improvement pass after the
	// nearest-neighbor ordering heuristic.
	Optimize2Opt bool
}

// DefaultConfig matches spec §4.5's stated defaults.
func DefaultConfig() Config {
	return Config{
		SoftMinX: -120, SoftMaxX: 120,
		SoftMinY: -120, SoftMaxY: 120,
		MaxPathLengthMM: 3000,
		MaxVertices:     10000,
	}
}

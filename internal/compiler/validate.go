package compiler

import (
	"fmt"
	"math"
)

// ValidationError names the offending polyline and vertex (spec §4.5
// "Validation... reporting which polyline and vertex failed").
type ValidationError struct {
	PolylineIndex int
	VertexIndex   int
	Reason        string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("compiler: polyline %d vertex %d: %s", e.PolylineIndex, e.VertexIndex, e.Reason)
}

// Validate checks d against cfg's soft limits, max path length and max
// vertex count, returning the first violation found.
func Validate(d Drawing, cfg Config) error {
	totalVertices := 0
	for pi, poly := range d.Polylines {
		if len(poly.Points) < 2 {
			return &ValidationError{pi, 0, "polyline has fewer than 2 points"}
		}
		length := 0.0
		for vi, pt := range poly.Points {
			if pt.X < cfg.SoftMinX || pt.X > cfg.SoftMaxX || pt.Y < cfg.SoftMinY || pt.Y > cfg.SoftMaxY {
				return &ValidationError{pi, vi, "point outside configured soft limits"}
			}
			if vi > 0 {
				prev := poly.Points[vi-1]
				if prev.Equal(pt) {
					return &ValidationError{pi, vi, "coincident consecutive points"}
				}
				dx := float64(pt.X - prev.X)
				dy := float64(pt.Y - prev.Y)
				length += math.Hypot(dx, dy)
			}
			totalVertices++
		}
		if length > cfg.MaxPathLengthMM {
			return &ValidationError{pi, len(poly.Points) - 1, fmt.Sprintf("path length %.3fmm exceeds maximum %.3fmm", length, cfg.MaxPathLengthMM)}
		}
	}
	if totalVertices > cfg.MaxVertices {
		return &ValidationError{-1, totalVertices, fmt.Sprintf("total vertex count %d exceeds maximum %d", totalVertices, cfg.MaxVertices)}
	}
	return nil
}

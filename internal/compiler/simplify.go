package compiler

import "math"

// Simplify runs Ramer-Douglas-Peucker on points with tolerance epsilon
// millimeters, returning a reduced point set that stays within epsilon of
// the original polyline (spec §4.5 "Simplification"). Endpoints are always
// kept. epsilon <= 0 returns points unchanged.
func Simplify(points []Point, epsilon float64) []Point {
	if epsilon <= 0 || len(points) < 3 {
		return points
	}
	keep := make([]bool, len(points))
	keep[0] = true
	keep[len(points)-1] = true
	rdp(points, 0, len(points)-1, epsilon, keep)

	out := make([]Point, 0, len(points))
	for i, k := range keep {
		if k {
			out = append(out, points[i])
		}
	}
	return out
}

func rdp(points []Point, lo, hi int, epsilon float64, keep []bool) {
	if hi <= lo+1 {
		return
	}
	maxDist := -1.0
	maxIdx := -1
	for i := lo + 1; i < hi; i++ {
		d := perpendicularDistance(points[i], points[lo], points[hi])
		if d > maxDist {
			maxDist = d
			maxIdx = i
		}
	}
	if maxDist > epsilon {
		keep[maxIdx] = true
		rdp(points, lo, maxIdx, epsilon, keep)
		rdp(points, maxIdx, hi, epsilon, keep)
	}
}

func perpendicularDistance(p, a, b Point) float64 {
	dx := float64(b.X - a.X)
	dy := float64(b.Y - a.Y)
	if dx == 0 && dy == 0 {
		return math.Hypot(float64(p.X-a.X), float64(p.Y-a.Y))
	}
	num := math.Abs(dy*float64(p.X-a.X) - dx*float64(p.Y-a.Y))
	den := math.Hypot(dx, dy)
	return num / den
}

package compiler

import "math"

// orientedPolyline is a Polyline paired with the traversal direction the
// ordering pass chose, so emission can start at the nearer endpoint
// without mutating or reversing Points in place for closed loops.
type orientedPolyline struct {
	poly     Polyline
	reversed bool
}

func (o orientedPolyline) entry() Point {
	if o.reversed {
		return o.poly.Points[len(o.poly.Points)-1]
	}
	return o.poly.Points[0]
}

func (o orientedPolyline) exit() Point {
	if o.reversed {
		return o.poly.Points[0]
	}
	return o.poly.Points[len(o.poly.Points)-1]
}

func (o orientedPolyline) orderedPoints() []Point {
	if !o.reversed {
		return o.poly.Points
	}
	rev := make([]Point, len(o.poly.Points))
	for i, p := range o.poly.Points {
		rev[len(rev)-1-i] = p
	}
	return rev
}

func dist(a, b Point) float64 {
	return math.Hypot(float64(a.X-b.X), float64(a.Y-b.Y))
}

// order runs a nearest-neighbor heuristic over polyline endpoints starting
// from origin, optionally followed by 2-opt, to minimize total rapid
// travel (spec §4.5 "Ordering optimization"). Closed polylines never
// reverse, since any start vertex is equivalent; open polylines may be
// traversed in either direction.
func order(polys []Polyline, origin Point, twoOpt bool) []orientedPolyline {
	remaining := make([]orientedPolyline, len(polys))
	for i, p := range polys {
		remaining[i] = orientedPolyline{poly: p}
	}

	ordered := make([]orientedPolyline, 0, len(polys))
	cur := origin
	for len(remaining) > 0 {
		bestIdx, bestRev := 0, false
		bestDist := math.Inf(1)
		for i, o := range remaining {
			if d := dist(cur, o.entry()); d < bestDist {
				bestDist, bestIdx, bestRev = d, i, false
			}
			if !o.poly.Closed() {
				if d := dist(cur, o.exit()); d < bestDist {
					bestDist, bestIdx, bestRev = d, i, true
				}
			}
		}
		chosen := remaining[bestIdx]
		chosen.reversed = bestRev
		ordered = append(ordered, chosen)
		cur = chosen.exit()
		remaining = append(remaining[:bestIdx], remaining[bestIdx+1:]...)
	}

	if twoOpt {
		ordered = twoOptImprove(ordered, origin)
	}
	return ordered
}

// twoOptImprove repeatedly reverses segments of the tour (treating each
// polyline as a fixed-orientation node between its own entry/exit) when
// doing so shortens total travel, stopping at the first local optimum.
func twoOptImprove(tour []orientedPolyline, origin Point) []orientedPolyline {
	improved := true
	for improved {
		improved = false
		for i := 0; i < len(tour)-1; i++ {
			for j := i + 1; j < len(tour); j++ {
				if delta := twoOptGain(tour, origin, i, j); delta < -1e-9 {
					reverseRange(tour, i, j)
					improved = true
				}
			}
		}
	}
	return tour
}

func prevExit(tour []orientedPolyline, origin Point, i int) Point {
	if i == 0 {
		return origin
	}
	return tour[i-1].exit()
}

func twoOptGain(tour []orientedPolyline, origin Point, i, j int) float64 {
	before := dist(prevExit(tour, origin, i), tour[i].entry())
	after := dist(prevExit(tour, origin, i), tour[j].entry())
	if j+1 < len(tour) {
		before += dist(tour[j].exit(), tour[j+1].entry())
		after += dist(tour[i].exit(), tour[j+1].entry())
	}
	// Reversing the range also reverses the travel between its members.
	for k := i; k < j; k++ {
		before += dist(tour[k].exit(), tour[k+1].entry())
		after += dist(tour[k+1].exit(), tour[k].entry())
	}
	return after - before
}

func reverseRange(tour []orientedPolyline, i, j int) {
	for lo, hi := i, j; lo < hi; lo, hi = lo+1, hi-1 {
		tour[lo], tour[hi] = tour[hi], tour[lo]
	}
}

package motion

import (
	"math"

	"github.com/saucerun/ssgcore/internal/units"
)

func sign(v float64) int8 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}

// PlanSegment computes a time-synchronized two-axis trapezoidal move from
// ax/ay's current position to (targetX, targetY). feed is the commanded
// Cartesian feed rate; if nil, each axis cruises at its own MaxSpeed (spec
// §9 "Potential ambiguities": single-axis moves apply F directly to that
// axis, which falls out naturally here since splitting by direction cosine
// degenerates to 1.0 on the moving axis and 0 on the idle one).
func PlanSegment(ax, ay *Axis, targetX, targetY units.Millimeters, feed *units.FeedRate) Segment {
	startX, startY := ax.PosSteps(), ay.PosSteps()
	targetXSteps, targetYSteps := ax.ToSteps(targetX), ay.ToSteps(targetY)

	dx := float64(targetXSteps - startX)
	dy := float64(targetYSteps - startY)
	distX, distY := math.Abs(dx), math.Abs(dy)

	vx, vy := float64(ax.MaxSpeed), float64(ay.MaxSpeed)
	if feed != nil {
		dxmm := float64(targetX - ax.PosMM())
		dymm := float64(targetY - ay.PosMM())
		dist := math.Hypot(dxmm, dymm)
		vxy := feed.PerSecond()
		if dist > 0 {
			vx = math.Min(vxy*math.Abs(dxmm)/dist*ax.StepsPerMM, float64(ax.MaxSpeed))
			vy = math.Min(vxy*math.Abs(dymm)/dist*ay.StepsPerMM, float64(ay.MaxSpeed))
		} else {
			vx, vy = 0, 0
		}
	}

	px := computeProfile(distX, vx, float64(ax.MaxAccel))
	py := computeProfile(distY, vy, float64(ay.MaxAccel))
	duration := math.Max(px.Duration, py.Duration)
	if duration > 0 {
		if px.Duration < duration {
			px = px.scaleToDuration(duration)
		}
		if py.Duration < duration {
			py = py.scaleToDuration(duration)
		}
	}

	return Segment{
		StartX: startX, StartY: startY,
		TargetX: targetXSteps, TargetY: targetYSteps,
		DirX: sign(dx), DirY: sign(dy),
		ProfileX: px, ProfileY: py,
		Duration: duration,
	}
}

// PositionAt returns the absolute step position of each axis at elapsed
// time t seconds into the segment.
func (s Segment) PositionAt(t float64) (x, y units.Steps) {
	x = s.StartX + units.Steps(float64(s.DirX)*s.ProfileX.Position(t))
	y = s.StartY + units.Steps(float64(s.DirY)*s.ProfileY.Position(t))
	return
}

// Done reports whether the segment has fully executed by elapsed time t.
func (s Segment) Done(t float64) bool {
	return t >= s.Duration
}

// Apply advances ax/ay to the segment's target position, as if elapsed
// time had reached completion. Used by the controller when a tick observes
// the segment is Done.
func (s Segment) Apply(ax, ay *Axis) {
	ax.SetPosSteps(s.TargetX)
	ay.SetPosSteps(s.TargetY)
}

package motion

import (
	"math"

	"github.com/saucerun/ssgcore/internal/units"
)

// Profile is a single axis's trapezoidal (or triangular, when the distance
// is too short to reach cruise speed) velocity profile over a fixed
// duration: accelerate at Accel to Vmax, cruise, then decelerate so the
// axis arrives at Distance steps exactly at Duration.
//
// Profile is a pure value: given Distance, Duration is derived once and
// never mutated, so Position(t) is referentially transparent and safe to
// call repeatedly from the controller's tick loop.
type Profile struct {
	Distance float64 // unsigned, in steps
	Vmax     float64 // steps/s, unsigned peak speed actually reached
	Accel    float64 // steps/s^2, unsigned
	Duration float64 // seconds
	ta       float64 // accel (and decel) phase duration
}

// computeProfile derives the trapezoid for a single axis moving the given
// unsigned distance (steps) with the given speed cap and acceleration. If
// distance is 0 the profile has zero duration.
func computeProfile(distance, vmax, accel float64) Profile {
	if distance <= 0 || vmax <= 0 || accel <= 0 {
		return Profile{Distance: distance}
	}
	ta := vmax / accel
	accelDist := 0.5 * vmax * ta // == vmax^2/(2*accel)
	if 2*accelDist >= distance {
		// Triangular: never reaches vmax.
		peak := math.Sqrt(distance * accel)
		ta = peak / accel
		return Profile{Distance: distance, Vmax: peak, Accel: accel, Duration: 2 * ta, ta: ta}
	}
	cruiseDist := distance - 2*accelDist
	cruiseTime := cruiseDist / vmax
	return Profile{Distance: distance, Vmax: vmax, Accel: accel, Duration: 2*ta + cruiseTime, ta: ta}
}

// scaleToDuration returns a profile covering the same Distance but taking
// exactly targetDuration, by uniformly time-scaling the original trapezoid:
// stretching time by r = targetDuration/p.Duration and shrinking velocity
// everywhere by 1/r preserves the distance (the area under the velocity
// curve), since area scales by r * (1/r) = 1. This is how the planner
// brings a faster axis down to finish simultaneously with the slower one
// (spec §4.3 "both axes reach their targets simultaneously") without
// changing its accel/decel shape.
func (p Profile) scaleToDuration(targetDuration float64) Profile {
	if p.Duration <= 0 || targetDuration <= 0 {
		return Profile{Distance: p.Distance, Duration: targetDuration}
	}
	r := targetDuration / p.Duration
	return Profile{
		Distance: p.Distance,
		Vmax:     p.Vmax / r,
		Accel:    p.Accel / (r * r),
		Duration: targetDuration,
		ta:       p.ta * r,
	}
}

// Position returns the unsigned distance traveled (steps) at elapsed time t
// seconds into the profile, clamped to [0, Distance].
func (p Profile) Position(t float64) float64 {
	if p.Distance <= 0 {
		return 0
	}
	if t <= 0 {
		return 0
	}
	if t >= p.Duration {
		return p.Distance
	}
	switch {
	case t < p.ta:
		return 0.5 * p.Accel * t * t
	case t < p.Duration-p.ta:
		accelDist := 0.5 * p.Accel * p.ta * p.ta
		return accelDist + p.Vmax*(t-p.ta)
	default:
		td := p.Duration - t
		return p.Distance - 0.5*p.Accel*td*td
	}
}

// Done reports whether elapsed time t has reached the profile's duration.
func (p Profile) Done(t float64) bool {
	return t >= p.Duration
}

// Segment is a planned two-axis move: independent, time-synchronized
// trapezoidal profiles for X and Y such that both finish at the same
// Duration (spec §4.3). DirX/DirY are +1/-1/0 step directions.
type Segment struct {
	StartX, StartY units.Steps
	TargetX, TargetY units.Steps
	DirX, DirY     int8
	ProfileX, ProfileY Profile
	Duration       float64
}

// Package motion implements per-axis kinematics, the trapezoidal segment
// planner and the homing procedure (spec §4.3, C1/C2).
package motion

import (
	"math"

	"github.com/saucerun/ssgcore/internal/units"
)

// Axis holds one stepper axis's configuration and live step position. Each
// axis is fully owned by the planner (spec §9 "Global mutable state"); it is
// never shared outside the controller that created it.
type Axis struct {
	Name        string
	StepsPerMM  float64
	MaxSpeed    units.StepRate
	MaxAccel    units.StepAccel
	SoftMin     units.Millimeters
	SoftMax     units.Millimeters
	HomingFast  units.StepRate
	HomingSlow  units.StepRate
	BackoffMM   units.Millimeters

	posSteps units.Steps
}

// NewAxis returns an Axis with its position undefined until Home zeroes it.
func NewAxis(name string, stepsPerMM float64, maxSpeed units.StepRate, maxAccel units.StepAccel, min, max units.Millimeters) *Axis {
	return &Axis{
		Name:       name,
		StepsPerMM: stepsPerMM,
		MaxSpeed:   maxSpeed,
		MaxAccel:   maxAccel,
		SoftMin:    min,
		SoftMax:    max,
		HomingFast: 800,
		HomingSlow: 200,
		BackoffMM:  5,
	}
}

// ToSteps converts a millimeter position to its nearest step count.
func (a *Axis) ToSteps(mm units.Millimeters) units.Steps {
	return units.Steps(math.Round(float64(mm) * a.StepsPerMM))
}

// ToMM converts a step count to millimeters.
func (a *Axis) ToMM(s units.Steps) units.Millimeters {
	return units.Millimeters(float64(s) / a.StepsPerMM)
}

// PosSteps returns the axis's current absolute step position.
func (a *Axis) PosSteps() units.Steps {
	return a.posSteps
}

// PosMM returns the axis's current position in millimeters.
func (a *Axis) PosMM() units.Millimeters {
	return a.ToMM(a.posSteps)
}

// SetPosSteps forcibly sets the axis's step position (used when homing
// zeroes an axis, or when an endstop trip redefines the origin).
func (a *Axis) SetPosSteps(s units.Steps) {
	a.posSteps = s
}

// WithinLimits reports whether mm is inside the inclusive soft-limit range
// (spec §8 "Commands with coordinates exactly at X_min/X_max... are
// accepted (closed bounds)").
func (a *Axis) WithinLimits(mm units.Millimeters) bool {
	return mm >= a.SoftMin && mm <= a.SoftMax
}

// MaxSpeedMMPerSec returns the axis's speed cap in millimeters per second.
func (a *Axis) MaxSpeedMMPerSec() float64 {
	return float64(a.MaxSpeed) / a.StepsPerMM
}

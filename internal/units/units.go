// Package units defines the small typed quantities shared by the motion,
// compiler and protocol layers, so a bare float64 never has to carry an
// implicit unit in a function signature.
package units

import (
	"fmt"
	"strconv"
)

// Millimeters is a position or length on the plate, in millimeters.
type Millimeters float64

func (m Millimeters) String() string {
	return strconv.FormatFloat(float64(m), 'f', -1, 64)
}

// Steps is a motor step count, signed so it can express a relative target.
type Steps int64

// StepRate is a stepper rate in steps per second.
type StepRate float64

// StepAccel is a stepper acceleration in steps per second squared.
type StepAccel float64

// FeedRate is a commanded Cartesian feed rate in millimeters per minute, the
// unit G-code-style SSG lines use on the wire (the `F` parameter).
type FeedRate float64

// PerSecond returns the feed rate in millimeters per second.
func (f FeedRate) PerSecond() float64 {
	return float64(f) / 60
}

// Duty is a pump PWM duty cycle, 0..100 inclusive.
type Duty int

// Valid reports whether the duty cycle is in the legal 0..100 range.
func (d Duty) Valid() bool {
	return d >= 0 && d <= 100
}

func (d Duty) String() string {
	return fmt.Sprintf("%d", int(d))
}

// Point is a 2D position in millimeters.
type Point struct {
	X, Y Millimeters
}

// Equal reports whether p and o are exactly equal.
func (p Point) Equal(o Point) bool {
	return p.X == o.X && p.Y == o.Y
}

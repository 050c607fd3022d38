package motion

import (
	"context"
	"fmt"
	"time"
)

// Endstop reports whether an axis's minimum-travel endstop switch is
// currently asserted.
type Endstop interface {
	Asserted() bool
}

// ErrHomingFailed is returned when an endstop fails to reach the awaited
// state within HomingTimeout, or when poll reports false; the controller maps this to ssg.CodeHOMING_FAIL and enters
// Error (spec §4.3).
var ErrHomingFailed = fmt.Errorf("motion: endstop did not assert before timeout")

// HomingTimeout bounds each homing approach phase.
const HomingTimeout = 10 * time.Second

// HomeAxis drives a through the fast-approach / back-off / slow-approach
// sequence against e and zeros its position. It never queries the clock
// itself beyond what's needed to detect a stuck endstop; all actual pulse
// generation is left to the caller's StepDirIO, since HomeAxis only
// needs to know when the endstop has asserted, which poll reports.
//
// poll is called in a tight loop and must itself advance simulated motion
// and return promptly; HomeAxis does not sleep internally so tests can
// drive it with a fake poll that completes instantly.
func HomeAxis(ctx context.Context, a *Axis, e Endstop, poll func() bool) error {
	deadline := time.Now().Add(HomingTimeout)
	waitForAssert := func(want bool) error {
		for e.Asserted() != want {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			if time.Now().After(deadline) {
				return ErrHomingFailed
			}
			if !poll() {
				return ErrHomingFailed
			}
		}
		return nil
	}

	// 1. Fast approach toward min until endstop asserts.
	if err := waitForAssert(true); err != nil {
		return err
	}
	// 2. Zero at the endstop.
	a.SetPosSteps(0)
	// 3. Back off by BackoffMM and wait for the switch to release, since
	// physically the axis has moved off it.
	a.SetPosSteps(a.ToSteps(a.BackoffMM))
	if err := waitForAssert(false); err != nil {
		return err
	}
	// 4. Slow approach until endstop re-asserts.
	if err := waitForAssert(true); err != nil {
		return err
	}
	// 5. Zero and leave the axis at 0.
	a.SetPosSteps(0)
	return nil
}

// SimEndstop is a test/simulation Endstop whose assertion is driven
// explicitly, standing in for a real GPIO-backed switch.
type SimEndstop struct {
	asserted bool
}

func (s *SimEndstop) Asserted() bool { return s.asserted }
func (s *SimEndstop) Assert()        { s.asserted = true }
func (s *SimEndstop) Release()       { s.asserted = false }

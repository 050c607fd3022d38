package motion

// StepDirIO is the hardware boundary for C1 (Step/flow IO): emitting step
// and direction pulses and driving the pump PWM duty. The planner owns
// timing; StepDirIO only ever observes the axis's already-computed target
// position and duty, the same separation of concerns as a simulated link
// layer driven at a fixed rate while the queueing layer above it owns
// admission.
type StepDirIO interface {
	// SetPosition is called whenever the planner advances an axis to a new
	// step count; real hardware would instead emit the step/dir pulse
	// train needed to get there, but the net effect the controller and
	// tests observe is the resulting absolute position.
	SetPosition(axis string, steps int64)
	// SetPumpDuty sets the pump PWM duty cycle, 0..100.
	SetPumpDuty(duty int)
}

// SimIO is an in-memory StepDirIO recording every call, used by tests and
// by a controller run without physical hardware attached.
type SimIO struct {
	Positions map[string]int64
	PumpDuty  int
	calls     int
}

// NewSimIO returns a ready-to-use SimIO.
func NewSimIO() *SimIO {
	return &SimIO{Positions: make(map[string]int64)}
}

func (s *SimIO) SetPosition(axis string, steps int64) {
	s.Positions[axis] = steps
	s.calls++
}

func (s *SimIO) SetPumpDuty(duty int) {
	s.PumpDuty = duty
	s.calls++
}

// Calls returns the total number of IO calls observed, for tests asserting
// an operation did (or did not) touch hardware.
func (s *SimIO) Calls() int {
	return s.calls
}

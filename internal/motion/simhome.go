package motion

import "time"

// SimHomeSequence returns a poll function that automatically drives ex and
// ey through the canonical fast-approach / back-off / slow-approach assert
// pattern HomeAxis expects (spec §4.3 steps 1-4, run once per axis), for a
// controller with no physical endstop switches attached. Real hardware
// would instead report genuine GPIO transitions as the gantry travels;
// this stands in for that signal on simulated rather than real timers.
func SimHomeSequence(ex, ey *SimEndstop) func() bool {
	calls := 0
	return func() bool {
		calls++
		switch calls {
		case 1:
			ex.Assert()
		case 2:
			ex.Release()
		case 3:
			ex.Assert()
		case 4:
			ey.Assert()
		case 5:
			ey.Release()
		case 6:
			ey.Assert()
		}
		time.Sleep(time.Millisecond)
		return true
	}
}

package compiler

import "sort"

// FlowCurve maps a pump PWM duty cycle to its nominal deposited line width
// in millimeters (spec §6 "Persistent configuration... flow_curve (table
// mapping duty -> nominal line width, used by the compiler only)"). It is
// built from the loaded YAML configuration document by
// config.FlowCurveTable (SPEC_FULL.md "Config-driven flow curve lookup").
type FlowCurve []FlowCurvePoint

// FlowCurvePoint is one calibration sample: at Duty percent, the nozzle
// lays down a line WidthMM wide.
type FlowCurvePoint struct {
	Duty    int
	WidthMM float64
}

// WidthForDuty returns the line width that duty is expected to produce,
// linearly interpolating between the two nearest calibration points.
// Values outside the calibrated range clamp to the nearest endpoint. An
// empty curve returns 0.
func (c FlowCurve) WidthForDuty(duty int) float64 {
	if len(c) == 0 {
		return 0
	}
	pts := append(FlowCurve(nil), c...)
	sort.Slice(pts, func(i, j int) bool { return pts[i].Duty < pts[j].Duty })

	if duty <= pts[0].Duty {
		return pts[0].WidthMM
	}
	if duty >= pts[len(pts)-1].Duty {
		return pts[len(pts)-1].WidthMM
	}
	for i := 1; i < len(pts); i++ {
		if duty <= pts[i].Duty {
			lo, hi := pts[i-1], pts[i]
			span := hi.Duty - lo.Duty
			if span == 0 {
				return lo.WidthMM
			}
			frac := float64(duty-lo.Duty) / float64(span)
			return lo.WidthMM + frac*(hi.WidthMM-lo.WidthMM)
		}
	}
	return pts[len(pts)-1].WidthMM
}

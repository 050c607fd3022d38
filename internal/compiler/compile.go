package compiler

import "github.com/saucerun/ssgcore/internal/ssg"

// Compile simplifies, validates, orders and emits d per cfg, producing the
// SSG line sequence the streamer will send (spec §4.5 "Emission
// algorithm"). Compile is pure: given identical d and cfg, it returns
// byte-identical output (ssg.Line.String() is deterministic by
// construction), satisfying spec §4.5 "Determinism".
func Compile(d Drawing, cfg Config) ([]ssg.Line, error) {
	simplified := d
	if cfg.SimplifyEpsilonMM > 0 {
		simplified.Polylines = make([]Polyline, len(d.Polylines))
		for i, p := range d.Polylines {
			simplified.Polylines[i] = p
			simplified.Polylines[i].Points = Simplify(p.Points, cfg.SimplifyEpsilonMM)
		}
	}

	if err := Validate(simplified, cfg); err != nil {
		return nil, err
	}

	origin := Point{}
	tour := order(simplified.Polylines, origin, cfg.Optimize2Opt)

	var lines []ssg.Line
	seq := uint64(1)
	emit := func(l ssg.Line) {
		l.Seq = seq
		l.SeqGiven = true
		lines = append(lines, l)
		seq++
	}

	emit(ssg.Line{Op: ssg.OpHome})

	rapid := d.RapidFeed
	for _, o := range tour {
		pts := o.orderedPoints()
		first := pts[0]
		fx, fy, ff := float64(first.X), float64(first.Y), rapid
		emit(ssg.Line{Op: ssg.OpRapid, X: &fx, Y: &fy, F: &ff})

		duty := o.poly.FlowDuty
		emit(ssg.Line{Op: ssg.OpFlowOn, S: &duty})

		feed := o.poly.FeedRate
		for _, p := range pts[1:] {
			px, py, pf := float64(p.X), float64(p.Y), feed
			emit(ssg.Line{Op: ssg.OpDraw, X: &px, Y: &py, F: &pf})
		}
		emit(ssg.Line{Op: ssg.OpFlowOff})
	}

	if d.Park {
		zx, zy, zf := 0.0, 0.0, rapid
		emit(ssg.Line{Op: ssg.OpRapid, X: &zx, Y: &zy, F: &zf})
	}

	return lines, nil
}

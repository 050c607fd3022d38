package compiler

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/saucerun/ssgcore/internal/units"
)

// DrawingDoc is the JSON wire shape upstream producers hand the compiler
// (spec §6 "Polyline compiler input (structural)"). ParseDrawingDoc
// converts it to the Drawing type Compile consumes.
type DrawingDoc struct {
	SoftLimits SoftLimitsDoc `json:"soft_limits"`
	RapidFeed  float64       `json:"rapid_feed"`
	Polylines  []PolylineDoc `json:"polylines"`
}

// SoftLimitsDoc is the plate's declared soft-limit rectangle. A zero value
// means the document doesn't declare one, in which case the host's
// configured limits apply unchecked.
type SoftLimitsDoc struct {
	MinX float64 `json:"min_x"`
	MaxX float64 `json:"max_x"`
	MinY float64 `json:"min_y"`
	MaxY float64 `json:"max_y"`
}

func (sl SoftLimitsDoc) isZero() bool {
	return sl == SoftLimitsDoc{}
}

// PolylineDoc is one polyline as it arrives over JSON.
type PolylineDoc struct {
	Points   [][2]float64 `json:"points"`
	FlowDuty int          `json:"flow_duty"`
	FeedRate float64      `json:"feed_rate_mm_min"`
}

// ErrSoftLimitMismatch is returned when a drawing document declares soft
// limits that disagree with the host's configured compiler limits: spec §6
// defines only one soft-limit rectangle per job, so a declared mismatch is
// a caller error rather than something silently overridden by either side.
var ErrSoftLimitMismatch = errors.New("compiler: drawing's declared soft limits do not match host configuration")

// ParseDrawingDoc decodes raw JSON into a Drawing ready for Compile. If the
// document declares soft limits, they must match cfg's configured limits
// exactly; a declared-but-mismatched rectangle fails loud rather than being
// silently ignored in favor of the host's own config.
func ParseDrawingDoc(raw []byte, cfg Config) (Drawing, error) {
	var doc DrawingDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return Drawing{}, fmt.Errorf("compiler: decoding drawing json: %w", err)
	}
	if !doc.SoftLimits.isZero() {
		if err := checkSoftLimits(doc.SoftLimits, cfg); err != nil {
			return Drawing{}, err
		}
	}
	d := Drawing{RapidFeed: doc.RapidFeed, Park: true}
	d.Polylines = make([]Polyline, len(doc.Polylines))
	for i, p := range doc.Polylines {
		pts := make([]Point, len(p.Points))
		for j, xy := range p.Points {
			pts[j] = Point{X: units.Millimeters(xy[0]), Y: units.Millimeters(xy[1])}
		}
		d.Polylines[i] = Polyline{Points: pts, FlowDuty: p.FlowDuty, FeedRate: p.FeedRate}
	}
	return d, nil
}

func checkSoftLimits(sl SoftLimitsDoc, cfg Config) error {
	if units.Millimeters(sl.MinX) != cfg.SoftMinX || units.Millimeters(sl.MaxX) != cfg.SoftMaxX ||
		units.Millimeters(sl.MinY) != cfg.SoftMinY || units.Millimeters(sl.MaxY) != cfg.SoftMaxY {
		return fmt.Errorf("%w: doc=[%g,%g]x[%g,%g] config=[%g,%g]x[%g,%g]",
			ErrSoftLimitMismatch,
			sl.MinX, sl.MaxX, sl.MinY, sl.MaxY,
			float64(cfg.SoftMinX), float64(cfg.SoftMaxX), float64(cfg.SoftMinY), float64(cfg.SoftMaxY))
	}
	return nil
}

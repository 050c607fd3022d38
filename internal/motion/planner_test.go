package motion

import (
	"math"
	"testing"

	"github.com/saucerun/ssgcore/internal/units"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAxes() (*Axis, *Axis) {
	x := NewAxis("X", 80, 4000, 20000, -120, 120)
	y := NewAxis("Y", 80, 4000, 20000, -120, 120)
	return x, y
}

func TestPlanSegmentSynchronizesFinish(t *testing.T) {
	x, y := newTestAxes()
	feed := units.FeedRate(600)
	seg := PlanSegment(x, y, 10, 2, &feed)
	require.Greater(t, seg.Duration, 0.0)

	curX, curY := seg.PositionAt(seg.Duration)
	assert.Equal(t, seg.TargetX, curX)
	assert.Equal(t, seg.TargetY, curY)

	// Both axes' profiles must complete in the same duration (within a
	// single step period), per spec §4.3.
	assert.InDelta(t, seg.Duration, seg.ProfileX.Duration, 1e-9)
	assert.InDelta(t, seg.Duration, seg.ProfileY.Duration, 1e-9)
}

func TestPlanSegmentSingleAxisMove(t *testing.T) {
	x, y := newTestAxes()
	feed := units.FeedRate(600)
	seg := PlanSegment(x, y, 10, 0, &feed)
	assert.Equal(t, int8(1), seg.DirX)
	assert.Equal(t, int8(0), seg.DirY)
	assert.Equal(t, seg.Duration, seg.ProfileY.Duration)
}

func TestPlanSegmentNoOpMove(t *testing.T) {
	x, y := newTestAxes()
	seg := PlanSegment(x, y, 0, 0, nil)
	assert.Equal(t, 0.0, seg.Duration)
	curX, curY := seg.PositionAt(0)
	assert.Equal(t, units.Steps(0), curX)
	assert.Equal(t, units.Steps(0), curY)
}

func TestProfileMonotonicPosition(t *testing.T) {
	p := computeProfile(1000, 500, 2000)
	last := -1.0
	steps := 50
	for i := 0; i <= steps; i++ {
		tt := p.Duration * float64(i) / float64(steps)
		pos := p.Position(tt)
		assert.GreaterOrEqual(t, pos, last)
		last = pos
	}
	assert.InDelta(t, p.Distance, p.Position(p.Duration), 1e-6)
}

func TestAxisLimits(t *testing.T) {
	x, _ := newTestAxes()
	assert.True(t, x.WithinLimits(120))
	assert.True(t, x.WithinLimits(-120))
	assert.False(t, x.WithinLimits(120.1))
	assert.False(t, x.WithinLimits(-120.1))
}

func TestAxisStepConversionRoundTrip(t *testing.T) {
	x, _ := newTestAxes()
	mm := units.Millimeters(12.5)
	steps := x.ToSteps(mm)
	assert.Equal(t, units.Steps(math.Round(12.5*80)), steps)
	assert.Equal(t, mm, x.ToMM(steps))
}

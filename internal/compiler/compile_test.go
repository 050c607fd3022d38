package compiler

import (
	"testing"

	"github.com/saucerun/ssgcore/internal/ssg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func square() Polyline {
	return Polyline{
		Points: []Point{
			{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}, {X: 0, Y: 10}, {X: 0, Y: 0},
		},
		FlowDuty: 50,
		FeedRate: 600,
	}
}

func TestCompileEmitsHomeFirst(t *testing.T) {
	d := Drawing{Polylines: []Polyline{square()}, RapidFeed: 3000}
	lines, err := Compile(d, DefaultConfig())
	require.NoError(t, err)
	require.NotEmpty(t, lines)
	assert.Equal(t, ssg.OpHome, lines[0].Op)
	assert.Equal(t, uint64(1), lines[0].Seq)
}

func TestCompileSequenceIsConsecutive(t *testing.T) {
	d := Drawing{Polylines: []Polyline{square()}, RapidFeed: 3000}
	lines, err := Compile(d, DefaultConfig())
	require.NoError(t, err)
	for i, l := range lines {
		assert.Equal(t, uint64(i+1), l.Seq)
	}
}

func TestCompileIsDeterministic(t *testing.T) {
	d := Drawing{Polylines: []Polyline{square(), square()}, RapidFeed: 3000}
	l1, err := Compile(d, DefaultConfig())
	require.NoError(t, err)
	l2, err := Compile(d, DefaultConfig())
	require.NoError(t, err)
	require.Equal(t, len(l1), len(l2))
	for i := range l1 {
		assert.Equal(t, l1[i].String(), l2[i].String())
	}
}

func TestCompileEmitsFlowOnAfterTravel(t *testing.T) {
	d := Drawing{Polylines: []Polyline{square()}, RapidFeed: 3000}
	lines, err := Compile(d, DefaultConfig())
	require.NoError(t, err)
	// lines[0]=G28, lines[1]=G0 travel, lines[2]=M3
	assert.Equal(t, ssg.OpRapid, lines[1].Op)
	assert.Equal(t, ssg.OpFlowOn, lines[2].Op)
}

func TestCompileEmitsFlowOffAfterPolyline(t *testing.T) {
	d := Drawing{Polylines: []Polyline{square()}, RapidFeed: 3000}
	lines, err := Compile(d, DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, ssg.OpFlowOff, lines[len(lines)-1].Op)
}

func TestCompileParksWhenRequested(t *testing.T) {
	d := Drawing{Polylines: []Polyline{square()}, RapidFeed: 3000, Park: true}
	lines, err := Compile(d, DefaultConfig())
	require.NoError(t, err)
	last := lines[len(lines)-1]
	require.Equal(t, ssg.OpRapid, last.Op)
	assert.Equal(t, 0.0, *last.X)
	assert.Equal(t, 0.0, *last.Y)
}

func TestValidateRejectsOutOfBoundsPoint(t *testing.T) {
	poly := square()
	poly.Points[1].X = 500
	d := Drawing{Polylines: []Polyline{poly}, RapidFeed: 3000}
	_, err := Compile(d, DefaultConfig())
	require.Error(t, err)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, 0, verr.PolylineIndex)
	assert.Equal(t, 1, verr.VertexIndex)
}

func TestValidateRejectsExcessivePathLength(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxPathLengthMM = 1
	d := Drawing{Polylines: []Polyline{square()}, RapidFeed: 3000}
	_, err := Compile(d, cfg)
	require.Error(t, err)
}

func TestSimplifyPreservesEndpoints(t *testing.T) {
	pts := []Point{{X: 0, Y: 0}, {X: 1, Y: 0.01}, {X: 2, Y: -0.01}, {X: 10, Y: 0}}
	out := Simplify(pts, 0.5)
	require.GreaterOrEqual(t, len(out), 2)
	assert.Equal(t, pts[0], out[0])
	assert.Equal(t, pts[len(pts)-1], out[len(out)-1])
	assert.Less(t, len(out), len(pts))
}

func TestOrderPicksNearestEndpoint(t *testing.T) {
	near := Polyline{Points: []Point{{X: 1, Y: 0}, {X: 2, Y: 0}}}
	far := Polyline{Points: []Point{{X: 100, Y: 0}, {X: 101, Y: 0}}}
	ordered := order([]Polyline{far, near}, Point{}, false)
	require.Len(t, ordered, 2)
	assert.Equal(t, near.Points[0], ordered[0].entry())
}

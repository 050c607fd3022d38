package compiler

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseDrawingDoc(t *testing.T) {
	raw := []byte(`{
		"soft_limits": {"min_x": -120, "max_x": 120, "min_y": -120, "max_y": 120},
		"rapid_feed": 3000,
		"polylines": [
			{"points": [[0,0],[10,0],[10,10]], "flow_duty": 60, "feed_rate_mm_min": 600}
		]
	}`)
	d, err := ParseDrawingDoc(raw, DefaultConfig())
	require.NoError(t, err)
	require.Equal(t, 3000.0, d.RapidFeed)
	require.Len(t, d.Polylines, 1)
	require.Equal(t, 60, d.Polylines[0].FlowDuty)
	require.Equal(t, 600.0, d.Polylines[0].FeedRate)
	require.Len(t, d.Polylines[0].Points, 3)
}

func TestParseDrawingDocNoDeclaredLimits(t *testing.T) {
	raw := []byte(`{
		"rapid_feed": 1000,
		"polylines": [{"points": [[0,0],[1,1]], "flow_duty": 50, "feed_rate_mm_min": 500}]
	}`)
	_, err := ParseDrawingDoc(raw, DefaultConfig())
	require.NoError(t, err)
}

func TestParseDrawingDocSoftLimitMismatch(t *testing.T) {
	raw := []byte(`{
		"soft_limits": {"min_x": -50, "max_x": 50, "min_y": -50, "max_y": 50},
		"rapid_feed": 1000,
		"polylines": [{"points": [[0,0],[1,1]], "flow_duty": 50, "feed_rate_mm_min": 500}]
	}`)
	_, err := ParseDrawingDoc(raw, DefaultConfig())
	require.ErrorIs(t, err, ErrSoftLimitMismatch)
}

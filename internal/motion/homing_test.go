package motion

import (
	"context"
	"testing"

	"github.com/saucerun/ssgcore/internal/units"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHomeAxisSucceeds(t *testing.T) {
	x, _ := newTestAxes()
	x.SetPosSteps(4000)
	e := &SimEndstop{}
	polls := 0
	poll := func() bool {
		polls++
		switch polls {
		case 1:
			e.Assert()
		case 2:
			e.Release()
		case 3:
			e.Assert()
		}
		return true
	}
	err := HomeAxis(context.Background(), x, e, poll)
	require.NoError(t, err)
	assert.Equal(t, units.Steps(0), x.PosSteps())
}

func TestHomeAxisTimesOutWhenPollFails(t *testing.T) {
	x, _ := newTestAxes()
	e := &SimEndstop{}
	err := HomeAxis(context.Background(), x, e, func() bool { return false })
	assert.ErrorIs(t, err, ErrHomingFailed)
}

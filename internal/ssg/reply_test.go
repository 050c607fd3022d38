package ssg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseReplyRoundTrip(t *testing.T) {
	cases := []Reply{
		Ack{Seq: 7},
		ErrReply{Seq: 3, HasSeq: true, Code: CodeGAP},
		ErrReply{Code: CodeHEARTBEAT},
		Busy{Q: 12, State: "Printing"},
		PosReply{X: 10.5, Y: -2},
		StatusReply{State: "Ready", Q: 0, Flow: 0, Sauce: false, LastAck: 40},
	}
	for _, c := range cases {
		r, err := ParseReply(c.String())
		require.NoError(t, err, c.String())
		assert.Equal(t, c, r)
	}
}

func TestParseTelemetry(t *testing.T) {
	in := Telemetry{Pos: TelemetryPos{X: 1, Y: 2}, Flow: 50, Q: 3, State: "Printing"}
	r, err := ParseReply(in.String())
	require.NoError(t, err)
	assert.Equal(t, in, r)
}

func TestParseReplyUnrecognized(t *testing.T) {
	_, err := ParseReply("what N1")
	require.Error(t, err)
	assert.True(t, IsParseError(err))
}

func TestCodeFatal(t *testing.T) {
	assert.True(t, CodeLIMIT.Fatal())
	assert.True(t, CodeENDSTOP.Fatal())
	assert.True(t, CodeHOMING_FAIL.Fatal())
	assert.True(t, CodeHEARTBEAT.Fatal())
	assert.False(t, CodeGAP.Fatal())
	assert.False(t, CodeBUSY_STATE.Fatal())
}

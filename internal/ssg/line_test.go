package ssg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLineRoundTrip(t *testing.T) {
	cases := []string{
		"N1 G28",
		"N2 G1 X10 Y0 F600",
		"N3 M3 S60",
		"M5",
		"N0 G0 X0 Y0",
	}
	for _, c := range cases {
		l, err := ParseLine(c)
		require.NoError(t, err, c)
		assert.Equal(t, c, l.String(), "round trip")
	}
}

func TestParseLineParamOrderIsNormalized(t *testing.T) {
	l, err := ParseLine("N4 G1 F600 Y10 X10")
	require.NoError(t, err)
	assert.Equal(t, "N4 G1 X10 Y10 F600", l.String())
}

func TestParseLineErrors(t *testing.T) {
	cases := []string{"", "N1", "N1 G99", "N1 G1 Q5", "Nfoo G1", "N1 G1 Xfoo"}
	for _, c := range cases {
		_, err := ParseLine(c)
		require.Error(t, err, c)
		assert.True(t, IsParseError(err), c)
	}
}

func TestOutOfBand(t *testing.T) {
	l, err := ParseLine("G28")
	require.NoError(t, err)
	assert.True(t, l.OutOfBand())

	l2, err := ParseLine("N5 G28")
	require.NoError(t, err)
	assert.False(t, l2.OutOfBand())
}

func TestOpClassification(t *testing.T) {
	assert.True(t, OpRapid.Motion())
	assert.True(t, OpDraw.Motion())
	assert.False(t, OpHome.Motion())
	assert.True(t, OpHome.Immediate())
	assert.True(t, OpFlowOn.Immediate())
	assert.False(t, OpRapid.Immediate())
}

package transport

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestPipeRoundTrip(t *testing.T) {
	a, b := NewPipe()
	require.NoError(t, a.WriteLine("N1 G28"))
	line, err := b.ReadLine(time.Second)
	require.NoError(t, err)
	require.Equal(t, "N1 G28", line)
}

func TestPipeReadTimeout(t *testing.T) {
	a, _ := NewPipe()
	_, err := a.ReadLine(10 * time.Millisecond)
	require.True(t, IsTimeout(err))
}

func TestPipeCloseUnblocksRead(t *testing.T) {
	a, b := NewPipe()
	done := make(chan error, 1)
	go func() {
		_, err := b.ReadLine(time.Second)
		done <- err
	}()
	time.Sleep(10 * time.Millisecond)
	require.NoError(t, a.Close())
	err := <-done
	require.True(t, IsClosed(err))
}

func TestPipeOversizeLineRejected(t *testing.T) {
	a, _ := NewPipe()
	big := make([]byte, MaxLineBytes+1)
	err := a.WriteLine(string(big))
	require.ErrorIs(t, err, ErrLineTooLong)
}

package queue

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueFIFOOrder(t *testing.T) {
	q := New[int](3)
	require.True(t, q.Enqueue(1))
	require.True(t, q.Enqueue(2))
	require.True(t, q.Enqueue(3))
	assert.True(t, q.Full())
	assert.False(t, q.Enqueue(4), "overflow must be rejected, not dropped silently")
	assert.Equal(t, 3, q.Len())

	v, ok := q.Peek()
	require.True(t, ok)
	assert.Equal(t, 1, v)

	for _, want := range []int{1, 2, 3} {
		got, ok := q.Dequeue()
		require.True(t, ok)
		assert.Equal(t, want, got)
	}
	_, ok = q.Dequeue()
	assert.False(t, ok)
}

func TestQueueCapacityInvariant(t *testing.T) {
	q := New[string](64)
	assert.Equal(t, 64, q.Cap())
	assert.Equal(t, 0, q.Len())
}

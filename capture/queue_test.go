package capture

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opd-ai/gencamsrc/device"
)

func TestFilledQueueOrdering(t *testing.T) {
	q := NewFilledQueue(4)
	frames := []*device.Frame{{ID: 1}, {ID: 2}, {ID: 3}}
	for _, f := range frames {
		q.Push(f)
	}
	require.Equal(t, 3, q.Len())

	// Frames come out in completion order.
	for _, want := range frames {
		got, ok := q.PopTimeout(time.Second)
		require.True(t, ok)
		assert.Same(t, want, got)
	}
	assert.Equal(t, 0, q.Len())
}

func TestFilledQueuePopTimeout(t *testing.T) {
	q := NewFilledQueue(1)

	start := time.Now()
	frame, ok := q.PopTimeout(5 * time.Millisecond)
	assert.False(t, ok)
	assert.Nil(t, frame)
	assert.GreaterOrEqual(t, time.Since(start), 5*time.Millisecond)
}

func TestFilledQueuePushNeverBlocks(t *testing.T) {
	q := NewFilledQueue(1)
	q.Push(&device.Frame{ID: 1})

	// Pushing into a full queue signals an ownership violation but must
	// return immediately rather than stall the driver callback thread.
	done := make(chan struct{})
	go func() {
		q.Push(&device.Frame{ID: 2})
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Push blocked on a full queue")
	}

	got, ok := q.PopTimeout(time.Second)
	require.True(t, ok)
	assert.Equal(t, uint64(1), got.ID, "overflow frame must be dropped, not reordered")
	assert.Equal(t, 0, q.Len())
}

func TestDeliverRoutesThroughFrameContext(t *testing.T) {
	old := NewFilledQueue(2)
	replacement := NewFilledQueue(2)

	frame := &device.Frame{ID: 7, Context: old}
	Deliver(frame)
	assert.Equal(t, 1, old.Len())

	// Retargeting the descriptor reroutes later completions to the
	// replacement queue.
	frame.Context = replacement
	Deliver(frame)
	assert.Equal(t, 1, old.Len())
	assert.Equal(t, 1, replacement.Len())
}

func TestDeliverWithoutQueueDropsFrame(t *testing.T) {
	assert.NotPanics(t, func() {
		Deliver(&device.Frame{ID: 9})
		Deliver(&device.Frame{ID: 10, Context: "not a queue"})
	})
}

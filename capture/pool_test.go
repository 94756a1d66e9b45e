package capture

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opd-ai/gencamsrc/device"
	"github.com/opd-ai/gencamsrc/device/devicetest"
)

func openTestCamera(t *testing.T) *devicetest.Camera {
	t.Helper()
	cam := devicetest.New()
	require.NoError(t, cam.Open(""))
	return cam
}

func TestPoolAllocateAnnouncesEveryBuffer(t *testing.T) {
	cam := openTestCamera(t)
	pool := NewPool(cam, 4, false)
	queue := NewFilledQueue(4)

	require.NoError(t, pool.Allocate(queue))

	payload, err := cam.PayloadSize()
	require.NoError(t, err)

	assert.Equal(t, 4, cam.AnnouncedFrames())
	assert.Equal(t, payload, pool.Capacity())
	for _, frame := range pool.Frames() {
		assert.Len(t, frame.Buffer, int(payload))
		assert.Same(t, queue, frame.Context.(*FilledQueue))
	}
}

func TestPoolAllocateRespectsAlignment(t *testing.T) {
	cam := openTestCamera(t)
	cam.AddIntFeature(device.FeatureStreamBufferAlignment, devicetest.IntFeature{
		Value: 64, Min: 1, Max: 4096, Increment: 1,
	})
	pool := NewPool(cam, 2, false)

	require.NoError(t, pool.Allocate(NewFilledQueue(2)))
	for _, frame := range pool.Frames() {
		assert.NotNil(t, frame.Buffer)
	}
}

func TestPoolDeviceAllocationAnnouncesEmptyDescriptors(t *testing.T) {
	cam := openTestCamera(t)
	pool := NewPool(cam, 3, true)

	require.NoError(t, pool.Allocate(NewFilledQueue(3)))

	// The simulated transport attaches buffer memory on announce.
	payload, err := cam.PayloadSize()
	require.NoError(t, err)
	for _, frame := range pool.Frames() {
		assert.Len(t, frame.Buffer, int(payload))
	}
}

func TestPoolAllocationFailureReleasesEverything(t *testing.T) {
	cam := openTestCamera(t)
	pool := NewPool(cam, 3, false)
	allocs := 0
	pool.alloc = func(alignment int64, size uint32) []byte {
		allocs++
		if allocs == 2 {
			return nil
		}
		return make([]byte, size)
	}

	err := pool.Allocate(NewFilledQueue(3))
	require.ErrorIs(t, err, device.ErrResourceExhausted)
	for _, frame := range pool.Frames() {
		assert.Nil(t, frame.Buffer)
		assert.Zero(t, frame.Capacity)
	}
	assert.Zero(t, pool.Capacity())
}

func TestPoolAnnounceFailureZeroesFailedDescriptor(t *testing.T) {
	cam := openTestCamera(t)
	boom := errors.New("announce rejected")
	pool := NewPool(cam, 3, false)

	require.NoError(t, pool.Allocate(NewFilledQueue(3)))
	pool.Revoke()

	cam.FailWith("Announce", boom)
	err := pool.Allocate(NewFilledQueue(3))
	require.ErrorIs(t, err, boom)
	assert.Zero(t, pool.frames[0].Capacity, "failed descriptor must be zeroed")
}

func TestPoolRevokeIsIdempotentAndZeroesAllDescriptors(t *testing.T) {
	cam := openTestCamera(t)
	pool := NewPool(cam, 4, false)
	require.NoError(t, pool.Allocate(NewFilledQueue(4)))

	pool.Revoke()
	assert.Equal(t, 0, cam.AnnouncedFrames())
	for _, frame := range pool.Frames() {
		assert.Equal(t, device.Frame{}, *frame)
	}

	// A second revoke finds zeroed descriptors and touches nothing.
	calls := len(cam.Calls())
	pool.Revoke()
	assert.Len(t, cam.Calls(), calls)
}

func TestPoolRevokeZeroesDeviceAllocatedDescriptors(t *testing.T) {
	cam := openTestCamera(t)
	pool := NewPool(cam, 2, true)
	require.NoError(t, pool.Allocate(NewFilledQueue(2)))

	pool.Revoke()
	assert.Equal(t, 0, cam.AnnouncedFrames())
	for _, frame := range pool.Frames() {
		assert.Equal(t, device.Frame{}, *frame)
	}
}

func TestPoolRevokeBeforeAllocate(t *testing.T) {
	cam := openTestCamera(t)
	pool := NewPool(cam, 2, false)
	assert.NotPanics(t, func() { pool.Revoke() })
	assert.Equal(t, 0, cam.AnnouncedFrames())
}

func TestPoolRetarget(t *testing.T) {
	cam := openTestCamera(t)
	pool := NewPool(cam, 3, false)
	old := NewFilledQueue(3)
	require.NoError(t, pool.Allocate(old))

	replacement := NewFilledQueue(3)
	pool.Retarget(replacement)
	for _, frame := range pool.Frames() {
		assert.Same(t, replacement, frame.Context.(*FilledQueue))
	}
}

func TestPoolCountDefaults(t *testing.T) {
	cam := openTestCamera(t)
	assert.Equal(t, DefaultBufferCount, NewPool(cam, 0, false).Count())
	assert.Equal(t, DefaultBufferCount, NewPool(cam, -1, false).Count())
	assert.Equal(t, 5, NewPool(cam, 5, false).Count())
}

func TestAlignedAlloc(t *testing.T) {
	for _, alignment := range []int64{1, 2, 64, 4096} {
		buf := alignedAlloc(alignment, 1024)
		require.Len(t, buf, 1024)
	}
}

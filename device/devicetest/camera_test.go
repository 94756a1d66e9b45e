package devicetest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opd-ai/gencamsrc/device"
)

func TestCameraOpenTwice(t *testing.T) {
	cam := New()
	require.NoError(t, cam.Open("CAM-1"))
	assert.Equal(t, "CAM-1", cam.ID())
	assert.ErrorIs(t, cam.Open("CAM-1"), device.ErrAlreadyOpen)
}

func TestCameraRejectsOutOfRangeValues(t *testing.T) {
	cam := New()
	require.NoError(t, cam.Open(""))

	assert.ErrorIs(t, cam.SetIntFeature(device.FeatureWidth, 100000), device.ErrInvalidValue)
	assert.ErrorIs(t, cam.SetEnumFeature(device.FeaturePixelFormat, "Mono1024"), device.ErrInvalidValue)
	assert.ErrorIs(t, cam.SetIntFeature("Nonexistent", 1), device.ErrFeatureNotFound)
}

func TestCameraQueueRequiresAnnouncement(t *testing.T) {
	cam := New()
	require.NoError(t, cam.Open(""))

	frame := &device.Frame{Buffer: make([]byte, 16), Capacity: 16}
	err := cam.QueueFrame(frame, func(*device.Frame) {})
	assert.ErrorIs(t, err, device.ErrDeviceRejected)

	require.NoError(t, cam.AnnounceFrame(frame))
	assert.NoError(t, cam.QueueFrame(frame, func(*device.Frame) {}))

	// Revoking an unknown descriptor is rejected too.
	assert.ErrorIs(t, cam.RevokeFrame(&device.Frame{}), device.ErrDeviceRejected)
}

func TestCameraCompleteNextFrameNeedsRunningEngine(t *testing.T) {
	cam := New()
	require.NoError(t, cam.Open(""))

	frame := &device.Frame{Buffer: make([]byte, 4), Capacity: 4}
	require.NoError(t, cam.AnnounceFrame(frame))
	require.NoError(t, cam.QueueFrame(frame, func(*device.Frame) {}))

	assert.False(t, cam.CompleteNextFrame(device.FrameStatusComplete),
		"no frame completes while the capture engine is disengaged")

	require.NoError(t, cam.StartCapture())
	delivered := 0
	cam.capture[0].callback = func(f *device.Frame) {
		delivered++
		assert.Equal(t, uint64(1), f.ID)
		assert.Equal(t, device.FrameStatusComplete, f.Status)
	}
	assert.True(t, cam.CompleteNextFrame(device.FrameStatusComplete))
	assert.Equal(t, 1, delivered)
	assert.False(t, cam.CompleteNextFrame(device.FrameStatusComplete), "queue drained")
}

func TestCameraCommandLatency(t *testing.T) {
	cam := New()
	require.NoError(t, cam.Open(""))
	cam.SetCommandLatency(device.CommandAcquisitionStart, 3)

	require.NoError(t, cam.RunCommand(device.CommandAcquisitionStart))
	for i := 0; i < 2; i++ {
		done, err := cam.CommandDone(device.CommandAcquisitionStart)
		require.NoError(t, err)
		assert.False(t, done)
	}
	done, err := cam.CommandDone(device.CommandAcquisitionStart)
	require.NoError(t, err)
	assert.True(t, done)
}

func TestCameraPayloadTracksFormatAndGeometry(t *testing.T) {
	cam := New()
	require.NoError(t, cam.Open(""))

	payload, err := cam.PayloadSize()
	require.NoError(t, err)
	assert.Equal(t, uint32(1920*1080), payload, "Mono8 full sensor")

	require.NoError(t, cam.SetEnumFeature(device.FeaturePixelFormat, "RGB8"))
	require.NoError(t, cam.SetIntFeature(device.FeatureWidth, 640))
	require.NoError(t, cam.SetIntFeature(device.FeatureHeight, 480))
	payload, err = cam.PayloadSize()
	require.NoError(t, err)
	assert.Equal(t, uint32(640*480*3), payload)
}

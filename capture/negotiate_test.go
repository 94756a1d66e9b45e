package capture

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opd-ai/gencamsrc/device"
	"github.com/opd-ai/gencamsrc/device/devicetest"
)

func newNegotiatorFixture(t *testing.T) (*Negotiator, *Dispatcher, *testFixture) {
	t.Helper()
	f := newFixture(t, 3)
	d := NewDispatcher(f.cam, newRunState(true))
	d.SetQueue(f.queue)

	n := NewNegotiator(f.cam, f.pool, f.session, d)
	n.SetQueue(f.queue)
	require.NoError(t, n.MapSupportedFormats())
	return n, d, f
}

func TestMapSupportedFormatsIntersectsWithTable(t *testing.T) {
	n, _, _ := newNegotiatorFixture(t)

	var pipeline []string
	for _, m := range n.Supported() {
		pipeline = append(pipeline, m.PipelineFormat)
	}

	// The simulated camera reports Mono8, RGB8, BayerRG8, the NV12
	// semiplanar layout and Mono14; Mono14 has no pipeline counterpart and
	// is dropped.
	assert.ElementsMatch(t, []string{"GRAY8", "RGB", "rggb", "NV12"}, pipeline)
}

func TestMapSupportedFormatsSkipsUnavailableEntries(t *testing.T) {
	cam := openTestCamera(t)
	pool := NewPool(cam, 2, false)
	queue := NewFilledQueue(2)
	require.NoError(t, pool.Allocate(queue))
	n := NewNegotiator(cam, pool, NewSession(cam, pool), NewDispatcher(cam, newRunState(true)))

	// RGB8 is enumerable but switched off, as on cameras where another
	// feature gates the format list.
	f, err := cam.EnumEntries(device.FeaturePixelFormat)
	require.NoError(t, err)
	require.Contains(t, f, "RGB8")
	camSetAvailable(cam, "RGB8", false)

	require.NoError(t, n.MapSupportedFormats())
	for _, m := range n.Supported() {
		assert.NotEqual(t, "RGB", m.PipelineFormat)
	}
}

func TestTemplateCapsCoverWholeTable(t *testing.T) {
	caps := TemplateCaps()
	require.Len(t, caps.Alternatives, 2)

	raw, mosaic := caps.Alternatives[0], caps.Alternatives[1]
	assert.False(t, raw.Mosaic)
	assert.True(t, mosaic.Mosaic)
	assert.Contains(t, raw.Formats, "GRAY8")
	assert.Contains(t, raw.Formats, "NV12")
	assert.NotContains(t, raw.Formats, "rggb")
	assert.ElementsMatch(t, []string{"grbg", "rggb", "gbrg", "bggr"}, mosaic.Formats)
	assert.Equal(t, 1, raw.WidthMin)
	assert.Greater(t, raw.WidthMax, 1<<20, "template geometry must be unconstrained")
}

func TestCapsReportFixedCurrentGeometry(t *testing.T) {
	n, _, f := newNegotiatorFixture(t)
	require.NoError(t, f.cam.SetIntFeature(device.FeatureWidth, 640))
	require.NoError(t, f.cam.SetIntFeature(device.FeatureHeight, 480))

	caps, err := n.Caps()
	require.NoError(t, err)
	require.Len(t, caps.Alternatives, 2)
	for _, alt := range caps.Alternatives {
		assert.Equal(t, 640, alt.WidthMin)
		assert.Equal(t, 640, alt.WidthMax)
		assert.Equal(t, 480, alt.HeightMin)
		assert.Equal(t, 480, alt.HeightMax)
	}
	assert.Contains(t, caps.Alternatives[0].Formats, "GRAY8")
	assert.Contains(t, caps.Alternatives[1].Formats, "rggb")
}

func TestApplyUnknownFormat(t *testing.T) {
	n, _, _ := newNegotiatorFixture(t)
	err := n.Apply("I420")
	assert.ErrorIs(t, err, device.ErrFormatNotSupported)
}

func TestApplyStartsAcquisition(t *testing.T) {
	n, _, f := newNegotiatorFixture(t)

	require.NoError(t, n.Apply("GRAY8"))
	assert.Equal(t, StateAcquiring, f.session.State())
	assert.Equal(t, 3, f.cam.QueuedFrames())

	pixel, err := f.cam.EnumFeature(device.FeaturePixelFormat)
	require.NoError(t, err)
	assert.Equal(t, "Mono8", pixel)
}

func TestApplyReplacesQueueAndRetargetsDescriptors(t *testing.T) {
	n, d, f := newNegotiatorFixture(t)
	old := n.Queue()

	require.NoError(t, n.Apply("GRAY8"))
	require.NotSame(t, old, n.Queue())

	// Frames completing after the switch land in the replacement queue, so
	// the dispatcher drains the new queue seamlessly.
	require.True(t, f.cam.CompleteNextFrame(device.FrameStatusComplete))
	assert.Equal(t, 0, old.Len())
	assert.Equal(t, 1, n.Queue().Len())

	out, err := d.Produce()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), out.FrameID)
}

func TestApplyGrowingPayloadReallocates(t *testing.T) {
	n, _, f := newNegotiatorFixture(t)
	require.NoError(t, n.Apply("GRAY8"))
	grayCapacity := f.pool.Capacity()

	// RGB triples the payload; the pool must be revoked and reallocated.
	require.NoError(t, n.Apply("RGB"))
	assert.Equal(t, grayCapacity*3, f.pool.Capacity())
	assert.Equal(t, f.pool.Count(), f.cam.AnnouncedFrames())
	assert.Equal(t, StateAcquiring, f.session.State())
}

func TestApplyShrinkingPayloadKeepsBuffers(t *testing.T) {
	n, _, f := newNegotiatorFixture(t)
	require.NoError(t, n.Apply("RGB"))
	rgbCapacity := f.pool.Capacity()
	f.cam.ResetCalls()

	// Buffers only grow; switching to a smaller payload reuses them.
	require.NoError(t, n.Apply("GRAY8"))
	assert.Equal(t, rgbCapacity, f.pool.Capacity())
	for _, call := range f.cam.Calls() {
		assert.NotEqual(t, "Revoke", call)
		assert.NotEqual(t, "Announce", call)
	}
}

func TestApplySetFormatFailureLeavesAcquisitionStopped(t *testing.T) {
	n, _, f := newNegotiatorFixture(t)
	require.NoError(t, n.Apply("GRAY8"))

	f.cam.FailWith("SetEnum:"+device.FeaturePixelFormat, device.ErrInvalidValue)
	err := n.Apply("RGB")
	require.ErrorIs(t, err, device.ErrInvalidValue)
	assert.Equal(t, StateIdle, f.session.State())
}

func TestApplyVideoInfoReflectsDeviceGeometry(t *testing.T) {
	n, d, f := newNegotiatorFixture(t)
	require.NoError(t, f.cam.SetIntFeature(device.FeatureWidth, 640))
	require.NoError(t, f.cam.SetIntFeature(device.FeatureHeight, 480))

	require.NoError(t, n.Apply("GRAY8"))
	require.True(t, f.cam.CompleteNextFrame(device.FrameStatusComplete))

	out, err := d.Produce()
	require.NoError(t, err)
	assert.Equal(t, 640, out.Width)
	assert.Equal(t, 480, out.Height)
	assert.Equal(t, "GRAY8", out.Format)
}

// camSetAvailable flips the availability of a pixel format entry on the
// simulated camera.
func camSetAvailable(cam *devicetest.Camera, entry string, available bool) {
	cam.SetEnumAvailability(device.FeaturePixelFormat, entry, available)
}

package format

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestByDeviceName(t *testing.T) {
	m, ok := ByDeviceName("Mono8")
	require.True(t, ok)
	assert.Equal(t, "GRAY8", m.PipelineFormat)
	assert.Equal(t, 8, m.BitsPerPixel)
	assert.False(t, m.Mosaic)

	_, ok = ByDeviceName("Mono14")
	assert.False(t, ok, "unmapped device format must not resolve")
}

func TestByPipelineName(t *testing.T) {
	m, ok := ByPipelineName("NV12")
	require.True(t, ok)
	assert.Equal(t, "YCbCr420_8_YY_CbCr_Semiplanar", m.DeviceFormat)
	assert.Equal(t, 2, m.PlaneCount)

	// Several Mono variants map to GRAY16_LE; the first table entry wins.
	m, ok = ByPipelineName("GRAY16_LE")
	require.True(t, ok)
	assert.Equal(t, "Mono10", m.DeviceFormat)

	_, ok = ByPipelineName("I420")
	assert.False(t, ok)
}

func TestBayerFormatsAreMosaic(t *testing.T) {
	for _, name := range []string{"BayerGR8", "BayerRG8", "BayerGB8", "BayerBG8"} {
		m, ok := ByDeviceName(name)
		require.True(t, ok, name)
		assert.True(t, m.Mosaic, name)
	}
}

func TestPayloadSize(t *testing.T) {
	tests := []struct {
		device string
		width  int
		height int
		want   int
	}{
		{"Mono8", 640, 480, 640 * 480},
		{"RGB8", 640, 480, 640 * 480 * 3},
		{"YCbCr422_8", 640, 480, 640 * 480 * 2},
		// NV12: full-res luma plane plus half-height interleaved chroma.
		{"YCbCr420_8_YY_CbCr_Semiplanar", 640, 480, 640*480 + 640*2*240},
	}
	for _, tt := range tests {
		m, ok := ByDeviceName(tt.device)
		require.True(t, ok, tt.device)
		assert.Equal(t, tt.want, m.PayloadSize(tt.width, tt.height), tt.device)
	}
}

func TestPlaneLayout(t *testing.T) {
	m, ok := ByDeviceName("YCbCr420_8_YY_CbCr_Semiplanar")
	require.True(t, ok)

	planes := m.PlaneLayout(640, 480)
	require.Len(t, planes, 2)
	assert.Equal(t, 0, planes[0].Offset)
	assert.Equal(t, 640, planes[0].Stride)
	assert.Equal(t, 640*480, planes[1].Offset)
	assert.Equal(t, 1280, planes[1].Stride)

	m, ok = ByDeviceName("RGB8")
	require.True(t, ok)
	planes = m.PlaneLayout(800, 600)
	require.Len(t, planes, 1)
	assert.Equal(t, 0, planes[0].Offset)
	assert.Equal(t, 2400, planes[0].Stride)
}

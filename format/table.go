package format

import "fmt"

// MaxPlanes is the largest number of planes any supported format uses.
const MaxPlanes = 4

// Plane describes where one plane of a frame lives inside the payload.
type Plane struct {
	// Offset is the byte offset of the plane from the start of the payload.
	Offset int
	// Stride is the number of bytes per pixel row of the plane.
	Stride int
}

// Match is one entry of the device/pipeline format table.
type Match struct {
	// DeviceFormat is the GenICam pixel format name.
	DeviceFormat string

	// PipelineFormat is the corresponding pipeline video format name.
	PipelineFormat string

	// BitsPerPixel is the average storage size of one pixel across all
	// planes, used for logging and payload sanity checks.
	BitsPerPixel int

	// PlaneCount is the number of planes in the payload.
	PlaneCount int

	// PixelStride holds the bytes per pixel of each plane. The row stride
	// of plane i is width * PixelStride[i].
	PixelStride [MaxPlanes]int

	// VSub holds the vertical subsampling divisor of each plane: plane i
	// has height / VSub[i] rows.
	VSub [MaxPlanes]int

	// Mosaic marks Bayer-layout formats, which are negotiated as a
	// capability alternative separate from conventional layouts.
	Mosaic bool
}

// Table is the static bidirectional device/pipeline format mapping. Order
// matters only for the stability of reported capability lists.
var Table = []Match{
	{DeviceFormat: "Mono8", PipelineFormat: "GRAY8", BitsPerPixel: 8, PlaneCount: 1, PixelStride: [MaxPlanes]int{1}, VSub: [MaxPlanes]int{1}},
	{DeviceFormat: "Mono10", PipelineFormat: "GRAY16_LE", BitsPerPixel: 16, PlaneCount: 1, PixelStride: [MaxPlanes]int{2}, VSub: [MaxPlanes]int{1}},
	{DeviceFormat: "Mono12", PipelineFormat: "GRAY16_LE", BitsPerPixel: 16, PlaneCount: 1, PixelStride: [MaxPlanes]int{2}, VSub: [MaxPlanes]int{1}},
	{DeviceFormat: "Mono16", PipelineFormat: "GRAY16_LE", BitsPerPixel: 16, PlaneCount: 1, PixelStride: [MaxPlanes]int{2}, VSub: [MaxPlanes]int{1}},
	{DeviceFormat: "RGB8", PipelineFormat: "RGB", BitsPerPixel: 24, PlaneCount: 1, PixelStride: [MaxPlanes]int{3}, VSub: [MaxPlanes]int{1}},
	{DeviceFormat: "BGR8", PipelineFormat: "BGR", BitsPerPixel: 24, PlaneCount: 1, PixelStride: [MaxPlanes]int{3}, VSub: [MaxPlanes]int{1}},
	{DeviceFormat: "RGBa8", PipelineFormat: "RGBA", BitsPerPixel: 32, PlaneCount: 1, PixelStride: [MaxPlanes]int{4}, VSub: [MaxPlanes]int{1}},
	{DeviceFormat: "BGRa8", PipelineFormat: "BGRA", BitsPerPixel: 32, PlaneCount: 1, PixelStride: [MaxPlanes]int{4}, VSub: [MaxPlanes]int{1}},
	{DeviceFormat: "YCbCr422_8", PipelineFormat: "YUY2", BitsPerPixel: 16, PlaneCount: 1, PixelStride: [MaxPlanes]int{2}, VSub: [MaxPlanes]int{1}},
	{DeviceFormat: "YCbCr422_8_CbYCrY", PipelineFormat: "UYVY", BitsPerPixel: 16, PlaneCount: 1, PixelStride: [MaxPlanes]int{2}, VSub: [MaxPlanes]int{1}},
	{DeviceFormat: "YCbCr420_8_YY_CbCr_Semiplanar", PipelineFormat: "NV12", BitsPerPixel: 12, PlaneCount: 2, PixelStride: [MaxPlanes]int{1, 2}, VSub: [MaxPlanes]int{1, 2}},
	{DeviceFormat: "BayerGR8", PipelineFormat: "grbg", BitsPerPixel: 8, PlaneCount: 1, PixelStride: [MaxPlanes]int{1}, VSub: [MaxPlanes]int{1}, Mosaic: true},
	{DeviceFormat: "BayerRG8", PipelineFormat: "rggb", BitsPerPixel: 8, PlaneCount: 1, PixelStride: [MaxPlanes]int{1}, VSub: [MaxPlanes]int{1}, Mosaic: true},
	{DeviceFormat: "BayerGB8", PipelineFormat: "gbrg", BitsPerPixel: 8, PlaneCount: 1, PixelStride: [MaxPlanes]int{1}, VSub: [MaxPlanes]int{1}, Mosaic: true},
	{DeviceFormat: "BayerBG8", PipelineFormat: "bggr", BitsPerPixel: 8, PlaneCount: 1, PixelStride: [MaxPlanes]int{1}, VSub: [MaxPlanes]int{1}, Mosaic: true},
}

// ByDeviceName looks up the table entry for a device-native format name.
func ByDeviceName(name string) (Match, bool) {
	for _, m := range Table {
		if m.DeviceFormat == name {
			return m, true
		}
	}
	return Match{}, false
}

// ByPipelineName looks up the table entry for a pipeline-native format name.
// Where several device formats map to the same pipeline format, the first
// table entry wins.
func ByPipelineName(name string) (Match, bool) {
	for _, m := range Table {
		if m.PipelineFormat == name {
			return m, true
		}
	}
	return Match{}, false
}

// PayloadSize returns the number of bytes one frame of the given geometry
// occupies in this format.
func (m Match) PayloadSize(width, height int) int {
	size := 0
	for i := 0; i < m.PlaneCount; i++ {
		size += width * m.PixelStride[i] * (height / m.VSub[i])
	}
	return size
}

// PlaneLayout computes the per-plane offsets and strides of a frame of the
// given geometry. Strides are width * pixel stride of the plane; offsets are
// cumulative over the preceding planes.
func (m Match) PlaneLayout(width, height int) []Plane {
	planes := make([]Plane, m.PlaneCount)
	offset := 0
	for i := 0; i < m.PlaneCount; i++ {
		stride := width * m.PixelStride[i]
		planes[i] = Plane{Offset: offset, Stride: stride}
		offset += stride * (height / m.VSub[i])
	}
	return planes
}

// String implements fmt.Stringer for log output.
func (m Match) String() string {
	return fmt.Sprintf("%s/%s", m.DeviceFormat, m.PipelineFormat)
}

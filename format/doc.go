// Package format maps device-native pixel format names to pipeline-native
// video formats and carries the byte-layout metadata needed to describe a
// frame to downstream consumers.
//
// The mapping is a static table: GenICam pixel format names (Mono8, RGB8,
// BayerRG8, ...) on one side, pipeline video format names (GRAY8, RGB,
// rggb, ...) on the other. Each entry records the plane count, the pixel
// stride of every plane and the vertical chroma subsampling, from which the
// payload size and the per-plane offset/stride layout of a frame are
// computed.
//
// Bayer/mosaic formats are flagged so that capability negotiation can keep
// them in a separate alternative from conventional-layout formats; consumers
// negotiate one layout family at a time.
package format

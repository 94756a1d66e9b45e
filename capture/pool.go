package capture

import (
	"fmt"
	"unsafe"

	"github.com/sirupsen/logrus"

	"github.com/opd-ai/gencamsrc/device"
)

// DefaultBufferCount is the number of frame buffers a source announces to
// the driver. The count is fixed for the lifetime of the pool; only the
// per-buffer capacity changes across reallocations.
const DefaultBufferCount = 10

// Pool owns the fixed-size array of frame buffer descriptors exchanged with
// the driver. It allocates payload memory (unless allocation is delegated to
// the transport layer), announces every descriptor, and revokes them again
// on teardown or reallocation.
//
// Pool is not safe for concurrent use; the embedding source serializes
// configuration against acquisition.
type Pool struct {
	cam         device.Camera
	frames      []device.Frame
	deviceAlloc bool

	// alloc is swapped out by tests to exercise allocation failure.
	alloc func(alignment int64, size uint32) []byte
}

// NewPool creates a pool of count descriptors for the given camera. When
// deviceAlloc is true the transport layer supplies buffer memory and the
// descriptors are announced empty.
func NewPool(cam device.Camera, count int, deviceAlloc bool) *Pool {
	if count <= 0 {
		count = DefaultBufferCount
	}
	return &Pool{
		cam:         cam,
		frames:      make([]device.Frame, count),
		deviceAlloc: deviceAlloc,
		alloc:       alignedAlloc,
	}
}

// Count reports the fixed number of buffer descriptors.
func (p *Pool) Count() int { return len(p.frames) }

// Capacity reports the byte capacity the buffers were allocated with. All
// buffers share one size, so the first descriptor speaks for all of them.
func (p *Pool) Capacity() uint32 { return p.frames[0].Capacity }

// Frames returns the descriptors for queueing at the device.
func (p *Pool) Frames() []*device.Frame {
	frames := make([]*device.Frame, len(p.frames))
	for i := range p.frames {
		frames[i] = &p.frames[i]
	}
	return frames
}

// Allocate reads the current payload size from the camera, sizes every
// buffer to it respecting the stream buffer alignment requirement, points
// each descriptor at queue for requeue routing, and announces it to the
// driver.
//
// A memory allocation failure releases everything allocated so far and
// returns ErrResourceExhausted. An announcement failure releases that
// buffer, zeroes its descriptor and aborts with the device's error; buffers
// announced before the failure stay announced until Revoke.
func (p *Pool) Allocate(queue *FilledQueue) error {
	payloadSize, err := p.cam.PayloadSize()
	if err != nil {
		return fmt.Errorf("failed to read payload size: %w", err)
	}

	// Some transport layers perform better with aligned buffers. If the
	// camera reports no alignment requirement the default of 1 stands.
	alignment := int64(1)
	if v, err := p.cam.IntFeature(device.FeatureStreamBufferAlignment); err == nil && v > 0 {
		alignment = v
	}

	logrus.WithFields(logrus.Fields{
		"function":     "Pool.Allocate",
		"payload_size": payloadSize,
		"alignment":    alignment,
		"count":        len(p.frames),
		"device_alloc": p.deviceAlloc,
	}).Debug("Allocating and announcing frame buffers")

	for i := range p.frames {
		frame := &p.frames[i]
		if !p.deviceAlloc {
			frame.Buffer = p.alloc(alignment, payloadSize)
			if frame.Buffer == nil {
				p.release()
				return fmt.Errorf("allocating buffer %d of %d: %w",
					i+1, len(p.frames), device.ErrResourceExhausted)
			}
		} else {
			// The transport layer attaches suitable memory on announce.
			frame.Buffer = nil
		}
		frame.Capacity = payloadSize
		frame.Context = queue

		if err := p.cam.AnnounceFrame(frame); err != nil {
			*frame = device.Frame{}
			return fmt.Errorf("failed to announce buffer %d: %w", i+1, err)
		}
	}
	return nil
}

// Revoke detaches every buffer from the driver, frees self-owned memory and
// zeroes all descriptors. Idempotent; safe to call when nothing was
// allocated.
func (p *Pool) Revoke() {
	for i := range p.frames {
		frame := &p.frames[i]
		// Capacity marks a descriptor that made it to announcement; zeroed
		// descriptors have nothing to detach.
		if frame.Capacity != 0 {
			if err := p.cam.RevokeFrame(frame); err != nil {
				logrus.WithFields(logrus.Fields{
					"function": "Pool.Revoke",
					"buffer":   i,
					"error":    err,
				}).Warn("Failed to revoke frame buffer")
			}
		}
		*frame = device.Frame{}
	}
}

// Retarget points every live descriptor at a replacement filled queue.
// Required after a format change replaces the queue without reallocating
// the buffers, so that frames completing later do not land in the retired
// queue.
func (p *Pool) Retarget(queue *FilledQueue) {
	for i := range p.frames {
		if p.frames[i].Capacity != 0 {
			p.frames[i].Context = queue
		}
	}
}

// release drops self-allocated memory without touching the driver; used
// when allocation fails partway before anything was announced past the
// failing buffer.
func (p *Pool) release() {
	for i := range p.frames {
		p.frames[i] = device.Frame{}
	}
}

// alignedAlloc returns a size-byte slice whose backing array starts on an
// alignment-byte boundary. Alignment must be a power of two or 1.
func alignedAlloc(alignment int64, size uint32) []byte {
	if alignment <= 1 {
		return make([]byte, size)
	}
	raw := make([]byte, int64(size)+alignment-1)
	offset := int64(0)
	if rem := int64(uintptr(unsafe.Pointer(&raw[0]))) % alignment; rem != 0 {
		offset = alignment - rem
	}
	return raw[offset : offset+int64(size) : offset+int64(size)]
}

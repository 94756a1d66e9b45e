package device

// FrameStatus reports how the transfer of a frame finished. The values match
// the receive status codes used by GenICam-style transport layers.
type FrameStatus int32

const (
	// FrameStatusComplete indicates the frame payload was transferred in full.
	FrameStatusComplete FrameStatus = 0
	// FrameStatusIncomplete indicates the transfer ended early; the payload
	// may contain stale or undefined pixel data.
	FrameStatusIncomplete FrameStatus = -1
	// FrameStatusTooSmall indicates the announced buffer was too small for
	// the payload.
	FrameStatusTooSmall FrameStatus = -2
	// FrameStatusInvalid indicates the frame descriptor itself was invalid.
	FrameStatusInvalid FrameStatus = -3
)

// String returns a readable name for logging.
func (s FrameStatus) String() string {
	switch s {
	case FrameStatusComplete:
		return "Complete"
	case FrameStatusIncomplete:
		return "Incomplete"
	case FrameStatusTooSmall:
		return "TooSmall"
	case FrameStatusInvalid:
		return "Invalid"
	}
	return "Unknown"
}

// Frame is the buffer descriptor exchanged with the device driver.
//
// The buffer pool fills in Buffer, Capacity and Context before announcing the
// descriptor. The driver fills in ID and Status when it completes a capture
// into the buffer. While a frame is queued at the device the driver owns the
// right to write into Buffer; between callback delivery and requeue the
// application may read it.
type Frame struct {
	// Buffer is the payload memory. Nil when allocation is delegated to the
	// transport layer until the driver attaches its own memory.
	Buffer []byte

	// Capacity is the usable size of Buffer in bytes.
	Capacity uint32

	// ID is the device-assigned identifier of the most recent capture into
	// this buffer.
	ID uint64

	// Status is the receive status of the most recent capture.
	Status FrameStatus

	// Context routes the completed frame back to its owner. The buffer pool
	// points it at the filled-frame queue the dispatcher drains.
	Context any
}

// FrameCallback is invoked by the driver on a thread it owns whenever a
// queued frame completes. Implementations must not block.
type FrameCallback func(frame *Frame)

package capture

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/opd-ai/gencamsrc/device"
)

// FilledQueue is the FIFO hand-off of completed frames from the driver
// callback context to the dispatcher. It is bounded by the buffer pool size:
// since at most that many buffers exist, Push can never find the queue full
// while the ownership discipline holds.
type FilledQueue struct {
	frames chan *device.Frame
}

// NewFilledQueue creates a queue with room for capacity frames. Capacity
// must equal the buffer pool size.
func NewFilledQueue(capacity int) *FilledQueue {
	return &FilledQueue{frames: make(chan *device.Frame, capacity)}
}

// Push appends a completed frame. It is called only from the driver
// callback context and never blocks. A full queue means a buffer ownership
// violation elsewhere; the frame is dropped and the violation logged.
func (q *FilledQueue) Push(frame *device.Frame) {
	select {
	case q.frames <- frame:
	default:
		logrus.WithFields(logrus.Fields{
			"function": "FilledQueue.Push",
			"frame_id": frame.ID,
		}).Error("Filled frame queue full; buffer ownership discipline violated")
	}
}

// PopTimeout removes the oldest frame, waiting at most the given duration.
// The second return value is false when the wait timed out.
func (q *FilledQueue) PopTimeout(timeout time.Duration) (*device.Frame, bool) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case frame := <-q.frames:
		return frame, true
	case <-timer.C:
		return nil, false
	}
}

// Len reports the number of frames currently waiting.
func (q *FilledQueue) Len() int { return len(q.frames) }

// Deliver is the FrameCallback handed to the driver when frames are queued.
// It routes the completed frame to the queue its descriptor points at, so
// that frames completed after a queue replacement land in the replacement.
func Deliver(frame *device.Frame) {
	queue, ok := frame.Context.(*FilledQueue)
	if !ok || queue == nil {
		logrus.WithFields(logrus.Fields{
			"function": "Deliver",
			"frame_id": frame.ID,
		}).Error("Completed frame has no filled queue attached")
		return
	}
	queue.Push(frame)
}

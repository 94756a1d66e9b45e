package capture

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/opd-ai/gencamsrc/config"
	"github.com/opd-ai/gencamsrc/device"
	"github.com/opd-ai/gencamsrc/format"
)

// DefaultPollTimeout bounds each wait for a filled frame. The dispatcher
// re-checks the pipeline run state once per elapsed timeout, so this value
// is also the worst-case cancellation latency. Tens of microseconds trade
// polling overhead against responsiveness.
const DefaultPollTimeout = 10 * time.Microsecond

// RunState exposes the externally owned pipeline run state. The dispatcher
// polls it between frame waits; it never owns or changes it.
type RunState interface {
	// Playing reports whether the pipeline still wants data.
	Playing() bool
}

// VideoInfo is the negotiated output geometry the dispatcher stamps onto
// every frame it emits.
type VideoInfo struct {
	Width  int
	Height int
	Match  format.Match
}

// OutputFrame is one filled frame handed to the pipeline.
type OutputFrame struct {
	// Data is the frame payload, copied out of the capture buffer.
	Data []byte

	// Timestamp was taken before the payload copy, keeping it as close to
	// hardware capture time as feasible.
	Timestamp time.Time

	// Sequence increases by one per emitted frame, starting at zero.
	Sequence uint64

	// FrameID is the device-assigned capture identifier.
	FrameID uint64

	Width  int
	Height int

	// Format is the pipeline-native format name of the payload.
	Format string

	// Planes holds the per-plane offset and stride layout of Data.
	Planes []format.Plane

	// Incomplete marks frames emitted under the submit policy whose
	// transfer did not finish; their pixel data may be stale.
	Incomplete bool
}

// Dispatcher is the consumer half of the acquisition hand-off. One
// dispatcher serves one streaming thread; Produce must not be called
// concurrently.
type Dispatcher struct {
	cam         device.Camera
	run         RunState
	queue       *FilledQueue
	policy      config.IncompleteFramePolicy
	pollTimeout time.Duration
	video       VideoInfo
	sequence    uint64
}

// NewDispatcher creates a dispatcher polling the given run state. Queue and
// video info are attached during negotiation.
func NewDispatcher(cam device.Camera, run RunState) *Dispatcher {
	return &Dispatcher{
		cam:         cam,
		run:         run,
		policy:      config.DropIncomplete,
		pollTimeout: DefaultPollTimeout,
	}
}

// SetQueue attaches the filled-frame queue to drain. Called on startup and
// whenever negotiation replaces the queue.
func (d *Dispatcher) SetQueue(queue *FilledQueue) { d.queue = queue }

// SetPolicy selects the incomplete-frame policy.
func (d *Dispatcher) SetPolicy(policy config.IncompleteFramePolicy) { d.policy = policy }

// SetPollTimeout overrides the per-wait timeout that bounds cancellation
// latency.
func (d *Dispatcher) SetPollTimeout(timeout time.Duration) {
	if timeout > 0 {
		d.pollTimeout = timeout
	}
}

// SetVideoInfo records the negotiated geometry stamped onto output frames.
func (d *Dispatcher) SetVideoInfo(video VideoInfo) { d.video = video }

// Produce blocks until a filled frame is available, copies it into a fresh
// output buffer and requeues the capture buffer to the driver.
//
// While waiting it re-checks the pipeline run state once per poll timeout;
// if the pipeline is no longer playing it returns ErrFlushing without
// consuming or producing anything. Frames whose transfer was incomplete are
// dropped (requeued immediately) or submitted flagged, per the configured
// policy.
func (d *Dispatcher) Produce() (*OutputFrame, error) {
	// No queue is attached until a format has been committed.
	if d.queue == nil {
		return nil, ErrNotAllocated
	}

	var frame *device.Frame
	for frame == nil {
		popped, ok := d.queue.PopTimeout(d.pollTimeout)
		if !ok {
			if !d.run.Playing() {
				logrus.WithFields(logrus.Fields{
					"function": "Dispatcher.Produce",
				}).Info("Pipeline is no longer playing. Aborting produce call")
				return nil, ErrFlushing
			}
			continue
		}

		if popped.Status == device.FrameStatusIncomplete {
			logrus.WithFields(logrus.Fields{
				"function": "Dispatcher.Produce",
				"frame_id": popped.ID,
			}).Warn("Received incomplete frame")
			if d.policy == config.DropIncomplete {
				logrus.WithFields(logrus.Fields{
					"function": "Dispatcher.Produce",
					"frame_id": popped.ID,
				}).Debug("Dropping incomplete frame and requeueing buffer")
				d.requeue(popped)
				continue
			}
			logrus.WithFields(logrus.Fields{
				"function": "Dispatcher.Produce",
				"frame_id": popped.ID,
			}).Debug("Submitting incomplete frame as requested")
		}
		frame = popped
	}

	// Timestamp before copying so it stays close to acquisition time.
	timestamp := time.Now()

	out := &OutputFrame{
		Data:       make([]byte, frame.Capacity),
		Timestamp:  timestamp,
		Sequence:   d.sequence,
		FrameID:    frame.ID,
		Width:      d.video.Width,
		Height:     d.video.Height,
		Format:     d.video.Match.PipelineFormat,
		Planes:     d.video.Match.PlaneLayout(d.video.Width, d.video.Height),
		Incomplete: frame.Status == device.FrameStatusIncomplete,
	}
	copy(out.Data, frame.Buffer)
	d.sequence++

	// The payload is copied out; the device may write into the buffer again.
	d.requeue(frame)

	return out, nil
}

// Sequence reports the number of frames emitted so far.
func (d *Dispatcher) Sequence() uint64 { return d.sequence }

func (d *Dispatcher) requeue(frame *device.Frame) {
	if err := d.cam.QueueFrame(frame, Deliver); err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "Dispatcher.requeue",
			"frame_id": frame.ID,
			"error":    err,
		}).Warn("Failed to requeue frame buffer")
	}
}

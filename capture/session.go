package capture

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/opd-ai/gencamsrc/device"
)

// State is the acquisition state of a capture session.
type State int32

const (
	// StateDisconnected means no camera connection exists yet.
	StateDisconnected State = iota
	// StateIdle means the camera is connected but not acquiring.
	StateIdle
	// StateAcquiring means the capture engine is running and frames are
	// being delivered.
	StateAcquiring
)

// String returns a readable name for logging.
func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "Disconnected"
	case StateIdle:
		return "Idle"
	case StateAcquiring:
		return "Acquiring"
	}
	return "Unknown"
}

// Session wraps the device acquisition lifecycle: engaging the capture
// engine, queueing the announced buffers, and running the blocking
// acquisition start/stop commands.
//
// State transitions happen only through Start and Stop, never concurrently;
// callers quiesce acquisition before configuration changes.
type Session struct {
	cam   device.Camera
	pool  *Pool
	state State
}

// NewSession creates a session over an announced buffer pool.
func NewSession(cam device.Camera, pool *Pool) *Session {
	return &Session{cam: cam, pool: pool, state: StateIdle}
}

// State reports the current acquisition state.
func (s *Session) State() State { return s.state }

// Start engages the capture engine, queues every announced buffer at the
// driver (transferring write ownership of the buffers to the device), and
// runs AcquisitionStart, blocking until the device confirms completion.
//
// Calling Start while already acquiring returns ErrAlreadyAcquiring.
func (s *Session) Start(callback device.FrameCallback) error {
	if s.state == StateAcquiring {
		return ErrAlreadyAcquiring
	}
	if s.pool.Capacity() == 0 {
		return ErrNotAllocated
	}

	logrus.WithFields(logrus.Fields{
		"function": "Session.Start",
	}).Debug("Starting the capture engine")
	if err := s.cam.StartCapture(); err != nil {
		return fmt.Errorf("failed to start capture engine: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"function": "Session.Start",
		"count":    s.pool.Count(),
	}).Debug("Queueing frame buffers")
	for i, frame := range s.pool.Frames() {
		if err := s.cam.QueueFrame(frame, callback); err != nil {
			return fmt.Errorf("failed to queue buffer %d: %w", i+1, err)
		}
	}

	if err := runBlockingCommand(s.cam, device.CommandAcquisitionStart); err != nil {
		return err
	}
	s.state = StateAcquiring
	return nil
}

// Stop runs AcquisitionStop, blocking until the device confirms completion,
// then disengages the capture engine and flushes any buffers still queued at
// the driver.
//
// Calling Stop while not acquiring returns ErrNotAcquiring.
func (s *Session) Stop() error {
	if s.state != StateAcquiring {
		return ErrNotAcquiring
	}

	if err := runBlockingCommand(s.cam, device.CommandAcquisitionStop); err != nil {
		return err
	}
	s.state = StateIdle

	logrus.WithFields(logrus.Fields{
		"function": "Session.Stop",
	}).Debug("Stopping the capture engine")
	if err := s.cam.StopCapture(); err != nil {
		return fmt.Errorf("failed to stop capture engine: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"function": "Session.Stop",
	}).Debug("Flushing the capture queue")
	if err := s.cam.FlushCaptureQueue(); err != nil {
		return fmt.Errorf("failed to flush capture queue: %w", err)
	}
	return nil
}

// runBlockingCommand fires a command feature and polls until the device
// confirms completion. There is no timeout: a device that never confirms is
// a fatal condition the poll surfaces as soon as the completion query itself
// errors.
func runBlockingCommand(cam device.Camera, name string) error {
	logrus.WithFields(logrus.Fields{
		"function": "runBlockingCommand",
		"command":  name,
	}).Debug("Running device command")
	if err := cam.RunCommand(name); err != nil {
		return fmt.Errorf("command %s: %w: %v", name, device.ErrCommandFailed, err)
	}
	for {
		done, err := cam.CommandDone(name)
		if err != nil {
			return fmt.Errorf("command %s completion query: %w: %v",
				name, device.ErrCommandFailed, err)
		}
		if done {
			return nil
		}
	}
}

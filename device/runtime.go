package device

import (
	"sync"

	"github.com/sirupsen/logrus"
)

// Runtime reference counts the process-wide startup and shutdown of the
// vendor SDK. The first Acquire runs the startup hook, the last Release runs
// the shutdown hook. Construct one Runtime per process and pass it to every
// source that needs the SDK.
type Runtime struct {
	mu       sync.Mutex
	refs     int
	startup  func() error
	shutdown func()
}

// NewRuntime creates a runtime guard around the given startup and shutdown
// hooks. Either hook may be nil.
func NewRuntime(startup func() error, shutdown func()) *Runtime {
	return &Runtime{startup: startup, shutdown: shutdown}
}

// Acquire registers a user of the SDK, starting it up if this is the first
// acquisition. If the startup hook fails, the reference is not counted.
func (r *Runtime) Acquire() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.refs == 0 && r.startup != nil {
		if err := r.startup(); err != nil {
			logrus.WithFields(logrus.Fields{
				"function": "Runtime.Acquire",
				"error":    err,
			}).Error("SDK startup failed")
			return err
		}
	}
	r.refs++
	logrus.WithFields(logrus.Fields{
		"function": "Runtime.Acquire",
		"refs":     r.refs,
	}).Debug("SDK runtime acquired")
	return nil
}

// Release drops a reference, shutting the SDK down when the last user is
// gone. Releasing an unacquired runtime is an error.
func (r *Runtime) Release() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.refs == 0 {
		return ErrRuntimeNotAcquired
	}
	r.refs--
	logrus.WithFields(logrus.Fields{
		"function": "Runtime.Release",
		"refs":     r.refs,
	}).Debug("SDK runtime released")
	if r.refs == 0 && r.shutdown != nil {
		r.shutdown()
	}
	return nil
}

// Refs reports the current number of outstanding acquisitions.
func (r *Runtime) Refs() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.refs
}

package gencamsrc

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/opd-ai/gencamsrc/capture"
	"github.com/opd-ai/gencamsrc/config"
	"github.com/opd-ai/gencamsrc/device"
)

// packetSizePollInterval is how often Start polls the packet size
// adjustment command for completion, and packetSizePollLimit bounds the
// wait so a stuck transport cannot hang bring-up.
const (
	packetSizePollInterval = time.Millisecond
	packetSizePollLimit    = 100
)

// Option configures a Source at construction time.
type Option func(*Source)

// WithSettings supplies the feature settings applied during Start. The
// Source takes ownership of the value.
func WithSettings(settings *config.Settings) Option {
	return func(s *Source) { s.settings = settings }
}

// WithSettingsFile loads feature settings from a YAML file during Start
// and reapplies them whenever the file changes on disk.
func WithSettingsFile(path string) Option {
	return func(s *Source) { s.settingsPath = path }
}

// WithBufferCount overrides the number of frame buffers in the pool.
func WithBufferCount(count int) Option {
	return func(s *Source) { s.bufferCount = count }
}

// WithPollTimeout overrides the dispatcher's queue poll timeout, which
// determines how quickly Produce observes a pipeline state change.
func WithPollTimeout(timeout time.Duration) Option {
	return func(s *Source) { s.pollTimeout = timeout }
}

// Source acquires frames from one GenICam-style camera and hands them to
// a video pipeline. Methods are not safe for concurrent use except
// Produce, which may run on the pipeline's streaming goroutine while
// lifecycle methods run elsewhere; coordination between the two happens
// through the RunState provider.
type Source struct {
	instanceID string

	cam     device.Camera
	runtime *device.Runtime
	run     capture.RunState

	settings     *config.Settings
	settingsPath string
	bufferCount  int
	pollTimeout  time.Duration

	mu         sync.Mutex
	pool       *capture.Pool
	session    *capture.Session
	dispatcher *capture.Dispatcher
	negotiator *capture.Negotiator
	watcher    *config.Watcher
	opened     bool
	acquired   bool
}

// New creates a Source around the given camera. The runtime tracks shared
// SDK startup and shutdown; run reports whether the pipeline is playing.
func New(cam device.Camera, runtime *device.Runtime, run capture.RunState, opts ...Option) *Source {
	s := &Source{
		instanceID:  uuid.New().String(),
		cam:         cam,
		runtime:     runtime,
		run:         run,
		settings:    config.DefaultSettings(),
		bufferCount: capture.DefaultBufferCount,
		pollTimeout: capture.DefaultPollTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// InstanceID returns the unique identifier of this Source, used to tell
// apart log streams of multiple cameras in one process.
func (s *Source) InstanceID() string { return s.instanceID }

// Start acquires the shared runtime, opens the camera, adjusts the
// transport packet size, maps the supported pixel formats and applies the
// configured feature settings. After Start the Source can report Caps and
// accept CommitFormat.
func (s *Source) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	log := s.log("Start")

	if s.opened {
		return nil
	}

	if err := s.runtime.Acquire(); err != nil {
		return fmt.Errorf("acquiring runtime: %w", err)
	}
	s.acquired = true

	if s.settingsPath != "" {
		settings, err := config.Load(s.settingsPath)
		if err != nil {
			s.releaseRuntime()
			return fmt.Errorf("loading settings file: %w", err)
		}
		s.settings = settings
	}

	if err := s.cam.Open(s.settings.CameraID); err != nil {
		s.releaseRuntime()
		return fmt.Errorf("opening camera %q: %w", s.settings.CameraID, err)
	}
	s.opened = true
	log.WithField("camera", s.cam.ID()).Debug("camera opened")

	s.adjustPacketSize()

	deviceAlloc := s.settings.AllocationMode == config.AllocDevice
	s.pool = capture.NewPool(s.cam, s.bufferCount, deviceAlloc)
	s.session = capture.NewSession(s.cam, s.pool)
	s.dispatcher = capture.NewDispatcher(s.cam, s.run)
	s.dispatcher.SetPolicy(s.settings.IncompleteFrameHandling)
	s.dispatcher.SetPollTimeout(s.pollTimeout)
	s.negotiator = capture.NewNegotiator(s.cam, s.pool, s.session, s.dispatcher)

	if err := s.negotiator.MapSupportedFormats(); err != nil {
		s.teardownLocked()
		return fmt.Errorf("mapping supported formats: %w", err)
	}

	if err := capture.ApplyFeatureSettings(s.cam, s.settings); err != nil {
		s.teardownLocked()
		return fmt.Errorf("applying feature settings: %w", err)
	}

	if s.settingsPath != "" {
		watcher, err := config.Watch(s.settingsPath, s.onSettingsChange)
		if err != nil {
			log.WithError(err).Warn("settings file watch unavailable, hot reload disabled")
		} else {
			s.watcher = watcher
		}
	}

	log.WithFields(logrus.Fields{
		"camera":  s.cam.ID(),
		"formats": len(s.negotiator.Supported()),
	}).Debug("source started")
	return nil
}

// Caps reports the formats and geometry the Source can currently offer.
// Before Start it returns the full template of pipeline formats the
// implementation understands; after Start it is narrowed to what the
// connected camera supports at its current geometry.
func (s *Source) Caps() (*capture.Caps, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.opened {
		return capture.TemplateCaps(), nil
	}
	return s.negotiator.Caps()
}

// CommitFormat switches the camera to the device format backing the given
// pipeline format and starts acquisition. Frames produced before the call
// are discarded. On partial failure acquisition is left stopped and the
// error reports the first failing step.
func (s *Source) CommitFormat(pipelineFormat string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.opened {
		return device.ErrNotConnected
	}
	return s.negotiator.Apply(pipelineFormat)
}

// Produce blocks until a filled frame is available and returns it as an
// OutputFrame owned by the caller. When the pipeline leaves the playing
// state it returns capture.ErrFlushing.
func (s *Source) Produce() (*capture.OutputFrame, error) {
	s.mu.Lock()
	dispatcher := s.dispatcher
	s.mu.Unlock()
	if dispatcher == nil {
		return nil, device.ErrNotConnected
	}
	return dispatcher.Produce()
}

// ApplySettings applies new feature settings to the connected camera. If
// acquisition is running it is stopped, the settings applied, buffers
// reallocated when the payload size changed, and acquisition restarted.
func (s *Source) ApplySettings(settings *config.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	log := s.log("ApplySettings")

	if !s.opened {
		return device.ErrNotConnected
	}

	wasAcquiring := s.session.State() == capture.StateAcquiring
	if wasAcquiring {
		if err := s.session.Stop(); err != nil {
			return fmt.Errorf("stopping acquisition: %w", err)
		}
	}

	if err := capture.ApplyFeatureSettings(s.cam, settings); err != nil {
		return fmt.Errorf("applying feature settings: %w", err)
	}
	s.settings = settings
	s.dispatcher.SetPolicy(settings.IncompleteFrameHandling)

	if wasAcquiring {
		// Frames completed before the stop may still sit in the filled
		// queue while Start re-queues every descriptor, so the queue is
		// replaced and the descriptors retargeted; holding on to the old
		// queue would leave a descriptor both queued at the device and
		// waiting for dispatch.
		queue := capture.NewFilledQueue(s.pool.Count())
		s.negotiator.SetQueue(queue)
		s.pool.Retarget(queue)
		s.dispatcher.SetQueue(queue)

		payload, err := s.cam.PayloadSize()
		if err != nil || payload != s.pool.Capacity() {
			log.WithFields(logrus.Fields{
				"payload":  payload,
				"capacity": s.pool.Capacity(),
			}).Debug("reallocating frame buffers")
			s.pool.Revoke()
			if err := s.pool.Allocate(queue); err != nil {
				return fmt.Errorf("reallocating buffers: %w", err)
			}
		}
		if err := s.session.Start(capture.Deliver); err != nil {
			return fmt.Errorf("restarting acquisition: %w", err)
		}
	}
	return nil
}

// Settings returns a copy of the settings currently held by the Source.
func (s *Source) Settings() *config.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings.Clone()
}

// ExposureAuto reads the camera's exposure automation mode. Without a
// connected camera it reports the configured value.
func (s *Source) ExposureAuto() config.AutoMode {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.opened {
		if value, err := s.cam.EnumFeature(device.FeatureExposureAuto); err == nil {
			if mode, err := config.ParseAutoMode(value); err == nil {
				s.settings.ExposureAuto = mode
			}
		}
	}
	return s.settings.ExposureAuto
}

// BalanceWhiteAuto reads the camera's white balance automation mode.
// Without a connected camera it reports the configured value.
func (s *Source) BalanceWhiteAuto() config.AutoMode {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.opened {
		if value, err := s.cam.EnumFeature(device.FeatureBalanceWhiteAuto); err == nil {
			if mode, err := config.ParseAutoMode(value); err == nil {
				s.settings.BalanceWhiteAuto = mode
			}
		}
	}
	return s.settings.BalanceWhiteAuto
}

// IncompleteFrameHandling reports the configured policy for frames the
// transport delivered incomplete.
func (s *Source) IncompleteFrameHandling() config.IncompleteFramePolicy {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings.IncompleteFrameHandling
}

// AllocationMode reports who allocates frame buffer memory.
func (s *Source) AllocationMode() config.AllocationMode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings.AllocationMode
}

// State reports the acquisition state of the Source.
func (s *Source) State() capture.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil {
		return capture.StateDisconnected
	}
	return s.session.State()
}

// Stop ends acquisition and returns all frame buffers. The camera stays
// open; CommitFormat starts a fresh acquisition.
func (s *Source) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.opened {
		return nil
	}
	if err := s.session.Stop(); err != nil && !errors.Is(err, capture.ErrNotAcquiring) {
		return err
	}
	s.pool.Revoke()
	return nil
}

// Close releases the camera and the shared runtime. The Source cannot be
// reused afterwards.
func (s *Source) Close() error {
	// The watcher goroutine calls ApplySettings, which takes the mutex, so
	// it must be drained before the lock is held.
	s.mu.Lock()
	watcher := s.watcher
	s.watcher = nil
	s.mu.Unlock()
	if watcher != nil {
		if err := watcher.Close(); err != nil {
			s.log("Close").WithError(err).Warn("closing settings watcher")
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.teardownLocked()
	return nil
}

func (s *Source) teardownLocked() {
	log := s.log("Close")
	if s.session != nil {
		if err := s.session.Stop(); err != nil && !errors.Is(err, capture.ErrNotAcquiring) {
			log.WithError(err).Warn("stopping acquisition during teardown")
		}
	}
	if s.pool != nil {
		s.pool.Revoke()
	}
	if s.opened {
		if err := s.cam.Close(); err != nil {
			log.WithError(err).Warn("closing camera")
		}
		s.opened = false
	}
	s.session = nil
	s.pool = nil
	s.dispatcher = nil
	s.negotiator = nil
	s.releaseRuntime()
}

func (s *Source) releaseRuntime() {
	if !s.acquired {
		return
	}
	if err := s.runtime.Release(); err != nil {
		s.log("releaseRuntime").WithError(err).Warn("releasing runtime")
	}
	s.acquired = false
}

// adjustPacketSize asks a GigE transport to negotiate its streaming
// packet size. Cameras on other transports do not expose the command, so
// every failure here is non-fatal.
func (s *Source) adjustPacketSize() {
	log := s.log("adjustPacketSize")
	if err := s.cam.RunCommand(device.CommandGVSPAdjustPacketSize); err != nil {
		log.WithError(err).Debug("packet size adjustment not supported")
		return
	}
	for i := 0; i < packetSizePollLimit; i++ {
		done, err := s.cam.CommandDone(device.CommandGVSPAdjustPacketSize)
		if err != nil {
			log.WithError(err).Warn("polling packet size adjustment")
			return
		}
		if done {
			return
		}
		time.Sleep(packetSizePollInterval)
	}
	log.Warn("packet size adjustment did not complete")
}

func (s *Source) onSettingsChange(settings *config.Settings) {
	log := s.log("onSettingsChange")
	if err := s.ApplySettings(settings); err != nil {
		log.WithError(err).Error("applying reloaded settings")
		return
	}
	log.Debug("settings reloaded")
}

func (s *Source) log(function string) *logrus.Entry {
	return logrus.WithFields(logrus.Fields{
		"function": function,
		"instance": s.instanceID,
	})
}

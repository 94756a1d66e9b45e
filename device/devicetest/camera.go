package devicetest

import (
	"fmt"
	"sync"

	"github.com/opd-ai/gencamsrc/device"
	"github.com/opd-ai/gencamsrc/format"
)

// IntFeature is a simulated integer feature with its accepted range and
// step size.
type IntFeature struct {
	Value     int64
	Min, Max  int64
	Increment int64
}

// EnumFeature is a simulated enumerated feature. Entries not present in
// Available are reported as unavailable.
type EnumFeature struct {
	Value     string
	Entries   []string
	Available map[string]bool
}

type command struct {
	latency int // completion polls before done
	pending int
}

type queuedFrame struct {
	frame    *device.Frame
	callback device.FrameCallback
}

// Camera is a simulated device.Camera. The zero value is not usable;
// construct instances with New.
type Camera struct {
	mu sync.Mutex

	open bool
	id   string

	ints     map[string]*IntFeature
	floats   map[string]float64
	enums    map[string]*EnumFeature
	commands map[string]*command

	announced map[*device.Frame]bool
	capture   []queuedFrame
	capturing bool

	payloadOverride uint32
	failures        map[string]error
	calls           []string

	nextFrameID uint64
}

// New creates a simulated camera with a 1920x1080 sensor, offset increments
// of 2, a handful of mapped and unmapped pixel formats, and immediate
// command completion.
func New() *Camera {
	c := &Camera{
		ints: map[string]*IntFeature{
			device.FeatureWidth:   {Value: 1920, Min: 16, Max: 1920, Increment: 2},
			device.FeatureHeight:  {Value: 1080, Min: 16, Max: 1080, Increment: 2},
			device.FeatureOffsetX: {Value: 0, Min: 0, Max: 1904, Increment: 2},
			device.FeatureOffsetY: {Value: 0, Min: 0, Max: 1064, Increment: 2},
		},
		floats: map[string]float64{
			device.FeatureExposureTime: 5000,
			device.FeatureGain:         0,
		},
		enums: map[string]*EnumFeature{
			device.FeaturePixelFormat: {
				Value:   "Mono8",
				Entries: []string{"Mono8", "RGB8", "BayerRG8", "YCbCr420_8_YY_CbCr_Semiplanar", "Mono14"},
				Available: map[string]bool{
					"Mono8": true, "RGB8": true, "BayerRG8": true,
					"YCbCr420_8_YY_CbCr_Semiplanar": true, "Mono14": true,
				},
			},
			device.FeatureExposureAuto:     autoEnum(),
			device.FeatureBalanceWhiteAuto: autoEnum(),
			device.FeatureTriggerSelector: {
				Value:   "FrameStart",
				Entries: []string{"AcquisitionStart", "FrameStart", "ExposureStart"},
				Available: map[string]bool{
					"AcquisitionStart": true, "FrameStart": true, "ExposureStart": true,
				},
			},
			device.FeatureTriggerMode: {
				Value:     "Off",
				Entries:   []string{"Off", "On"},
				Available: map[string]bool{"Off": true, "On": true},
			},
			device.FeatureTriggerSource: {
				Value:   "Line0",
				Entries: []string{"Line0", "Line1", "Action0"},
				Available: map[string]bool{
					"Line0": true, "Line1": true, "Action0": true,
				},
			},
			device.FeatureTriggerActivation: {
				Value:     "RisingEdge",
				Entries:   []string{"RisingEdge", "FallingEdge", "LevelHigh"},
				Available: map[string]bool{"RisingEdge": true, "FallingEdge": true, "LevelHigh": true},
			},
		},
		commands: map[string]*command{
			device.CommandAcquisitionStart:     {latency: 1},
			device.CommandAcquisitionStop:      {latency: 1},
			device.CommandGVSPAdjustPacketSize: {latency: 1},
		},
		announced: make(map[*device.Frame]bool),
		failures:  make(map[string]error),
	}
	return c
}

func autoEnum() *EnumFeature {
	return &EnumFeature{
		Value:     "Off",
		Entries:   []string{"Off", "Once", "Continuous"},
		Available: map[string]bool{"Off": true, "Once": true, "Continuous": true},
	}
}

// FailWith injects an error for the next calls matching key. Keys combine
// the operation and feature name, e.g. "SetEnum:TriggerSource",
// "SetInt:Width", "Run:AcquisitionStart", "Done:AcquisitionStop",
// "Payload", "Announce", "Queue", "StartCapture". Injecting nil clears the
// failure.
func (c *Camera) FailWith(key string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err == nil {
		delete(c.failures, key)
		return
	}
	c.failures[key] = err
}

// SetCommandLatency sets how many completion polls a command needs before
// reporting done.
func (c *Camera) SetCommandLatency(name string, polls int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.commands[name] = &command{latency: polls}
}

// AddIntFeature registers or replaces an integer feature.
func (c *Camera) AddIntFeature(name string, f IntFeature) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ints[name] = &f
}

// SetEnumAvailability flips the availability of one entry of an enumerated
// feature, modeling entries gated by other camera state.
func (c *Camera) SetEnumAvailability(name, entry string, available bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if f, ok := c.enums[name]; ok {
		f.Available[entry] = available
	}
}

// AddFloatFeature registers or replaces a float feature.
func (c *Camera) AddFloatFeature(name string, value float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.floats[name] = value
}

// FloatValue reads a float feature without going through the device
// interface; it never fails and does not log a call.
func (c *Camera) FloatValue(name string) float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.floats[name]
}

// RemoveFloatFeature deletes a float feature so that accessing it reports
// device.ErrFeatureNotFound. Used to model legacy cameras.
func (c *Camera) RemoveFloatFeature(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.floats, name)
}

// Calls returns the recorded mutating operations in order.
func (c *Camera) Calls() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	calls := make([]string, len(c.calls))
	copy(calls, c.calls)
	return calls
}

// ResetCalls clears the recorded operation log.
func (c *Camera) ResetCalls() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = nil
}

// QueuedFrames reports how many frames are currently queued at the driver.
func (c *Camera) QueuedFrames() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.capture)
}

// AnnouncedFrames reports how many descriptors are currently announced.
func (c *Camera) AnnouncedFrames() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.announced)
}

// Capturing reports whether the capture engine is engaged.
func (c *Camera) Capturing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.capturing
}

// CompleteNextFrame pops the oldest queued frame, stamps it with the given
// status and the next frame ID, fills its buffer with a per-frame byte
// pattern and invokes the registered callback the way a driver thread
// would. Returns false when no frame is queued.
func (c *Camera) CompleteNextFrame(status device.FrameStatus) bool {
	c.mu.Lock()
	if len(c.capture) == 0 || !c.capturing {
		c.mu.Unlock()
		return false
	}
	q := c.capture[0]
	c.capture = c.capture[1:]
	c.nextFrameID++
	q.frame.ID = c.nextFrameID
	q.frame.Status = status
	for i := range q.frame.Buffer {
		q.frame.Buffer[i] = byte(q.frame.ID)
	}
	c.mu.Unlock()

	// Invoked unlocked, mirroring the driver-owned callback thread.
	q.callback(q.frame)
	return true
}

func (c *Camera) record(call string) {
	c.calls = append(c.calls, call)
}

func (c *Camera) failure(key string) error {
	if err, ok := c.failures[key]; ok {
		return err
	}
	return nil
}

// Open implements device.Camera.
func (c *Camera) Open(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.failure("Open"); err != nil {
		return err
	}
	if c.open {
		return device.ErrAlreadyOpen
	}
	if id == "" {
		id = "SIM-0"
	}
	c.open = true
	c.id = id
	c.record("Open:" + id)
	return nil
}

// Close implements device.Camera.
func (c *Camera) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.open = false
	c.capturing = false
	c.capture = nil
	return nil
}

// ID implements device.Camera.
func (c *Camera) ID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.id
}

// IntFeature implements device.Camera.
func (c *Camera) IntFeature(name string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.failure("GetInt:" + name); err != nil {
		return 0, err
	}
	f, ok := c.ints[name]
	if !ok {
		return 0, fmt.Errorf("%s: %w", name, device.ErrFeatureNotFound)
	}
	return f.Value, nil
}

// SetIntFeature implements device.Camera.
func (c *Camera) SetIntFeature(name string, value int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.record(fmt.Sprintf("SetInt:%s=%d", name, value))
	if err := c.failure("SetInt:" + name); err != nil {
		return err
	}
	f, ok := c.ints[name]
	if !ok {
		return fmt.Errorf("%s: %w", name, device.ErrFeatureNotFound)
	}
	if value < f.Min || value > f.Max {
		return fmt.Errorf("%s=%d: %w", name, value, device.ErrInvalidValue)
	}
	f.Value = value
	return nil
}

// IntRange implements device.Camera.
func (c *Camera) IntRange(name string) (int64, int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.failure("Range:" + name); err != nil {
		return 0, 0, err
	}
	f, ok := c.ints[name]
	if !ok {
		return 0, 0, fmt.Errorf("%s: %w", name, device.ErrFeatureNotFound)
	}
	return f.Min, f.Max, nil
}

// IntIncrement implements device.Camera.
func (c *Camera) IntIncrement(name string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.failure("Increment:" + name); err != nil {
		return 0, err
	}
	f, ok := c.ints[name]
	if !ok {
		return 0, fmt.Errorf("%s: %w", name, device.ErrFeatureNotFound)
	}
	return f.Increment, nil
}

// FloatFeature implements device.Camera.
func (c *Camera) FloatFeature(name string) (float64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.failure("GetFloat:" + name); err != nil {
		return 0, err
	}
	v, ok := c.floats[name]
	if !ok {
		return 0, fmt.Errorf("%s: %w", name, device.ErrFeatureNotFound)
	}
	return v, nil
}

// SetFloatFeature implements device.Camera.
func (c *Camera) SetFloatFeature(name string, value float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.record(fmt.Sprintf("SetFloat:%s=%g", name, value))
	if err := c.failure("SetFloat:" + name); err != nil {
		return err
	}
	if _, ok := c.floats[name]; !ok {
		return fmt.Errorf("%s: %w", name, device.ErrFeatureNotFound)
	}
	c.floats[name] = value
	return nil
}

// EnumFeature implements device.Camera.
func (c *Camera) EnumFeature(name string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.failure("GetEnum:" + name); err != nil {
		return "", err
	}
	f, ok := c.enums[name]
	if !ok {
		return "", fmt.Errorf("%s: %w", name, device.ErrFeatureNotFound)
	}
	return f.Value, nil
}

// SetEnumFeature implements device.Camera.
func (c *Camera) SetEnumFeature(name, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.record(fmt.Sprintf("SetEnum:%s=%s", name, value))
	if err := c.failure("SetEnum:" + name); err != nil {
		return err
	}
	f, ok := c.enums[name]
	if !ok {
		return fmt.Errorf("%s: %w", name, device.ErrFeatureNotFound)
	}
	if !f.Available[value] {
		return fmt.Errorf("%s=%s: %w", name, value, device.ErrInvalidValue)
	}
	f.Value = value
	return nil
}

// EnumEntries implements device.Camera.
func (c *Camera) EnumEntries(name string) ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	f, ok := c.enums[name]
	if !ok {
		return nil, fmt.Errorf("%s: %w", name, device.ErrFeatureNotFound)
	}
	entries := make([]string, len(f.Entries))
	copy(entries, f.Entries)
	return entries, nil
}

// EnumAvailable implements device.Camera.
func (c *Camera) EnumAvailable(name, value string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	f, ok := c.enums[name]
	if !ok {
		return false, fmt.Errorf("%s: %w", name, device.ErrFeatureNotFound)
	}
	return f.Available[value], nil
}

// RunCommand implements device.Camera.
func (c *Camera) RunCommand(name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.record("Run:" + name)
	if err := c.failure("Run:" + name); err != nil {
		return err
	}
	cmd, ok := c.commands[name]
	if !ok {
		return fmt.Errorf("%s: %w", name, device.ErrFeatureNotFound)
	}
	cmd.pending = cmd.latency
	return nil
}

// CommandDone implements device.Camera.
func (c *Camera) CommandDone(name string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.failure("Done:" + name); err != nil {
		return false, err
	}
	cmd, ok := c.commands[name]
	if !ok {
		return false, fmt.Errorf("%s: %w", name, device.ErrFeatureNotFound)
	}
	if cmd.pending > 0 {
		cmd.pending--
		return cmd.pending == 0, nil
	}
	return true, nil
}

// PayloadSize implements device.Camera. The size derives from the current
// geometry and pixel format unless a failure or override is injected.
func (c *Camera) PayloadSize() (uint32, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.failure("Payload"); err != nil {
		return 0, err
	}
	if c.payloadOverride != 0 {
		return c.payloadOverride, nil
	}
	width := c.ints[device.FeatureWidth].Value
	height := c.ints[device.FeatureHeight].Value
	match, ok := format.ByDeviceName(c.enums[device.FeaturePixelFormat].Value)
	if !ok {
		// Unmapped formats still have a device-side payload.
		return uint32(width * height * 2), nil
	}
	return uint32(match.PayloadSize(int(width), int(height))), nil
}

// OverridePayloadSize forces PayloadSize to report a fixed value. Zero
// restores the computed size.
func (c *Camera) OverridePayloadSize(size uint32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.payloadOverride = size
}

// AnnounceFrame implements device.Camera. Descriptors announced without a
// buffer get transport-layer memory attached, modeling delegated
// allocation.
func (c *Camera) AnnounceFrame(frame *device.Frame) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.record("Announce")
	if err := c.failure("Announce"); err != nil {
		return err
	}
	if frame.Buffer == nil {
		frame.Buffer = make([]byte, frame.Capacity)
	}
	c.announced[frame] = true
	return nil
}

// RevokeFrame implements device.Camera.
func (c *Camera) RevokeFrame(frame *device.Frame) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.record("Revoke")
	if !c.announced[frame] {
		return fmt.Errorf("frame not announced: %w", device.ErrDeviceRejected)
	}
	delete(c.announced, frame)
	return nil
}

// QueueFrame implements device.Camera.
func (c *Camera) QueueFrame(frame *device.Frame, callback device.FrameCallback) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.record("Queue")
	if err := c.failure("Queue"); err != nil {
		return err
	}
	if !c.announced[frame] {
		return fmt.Errorf("frame not announced: %w", device.ErrDeviceRejected)
	}
	c.capture = append(c.capture, queuedFrame{frame: frame, callback: callback})
	return nil
}

// StartCapture implements device.Camera.
func (c *Camera) StartCapture() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.record("StartCapture")
	if err := c.failure("StartCapture"); err != nil {
		return err
	}
	c.capturing = true
	return nil
}

// StopCapture implements device.Camera.
func (c *Camera) StopCapture() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.record("StopCapture")
	c.capturing = false
	return nil
}

// FlushCaptureQueue implements device.Camera.
func (c *Camera) FlushCaptureQueue() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.record("Flush")
	c.capture = nil
	return nil
}

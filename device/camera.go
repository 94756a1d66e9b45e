package device

// Well-known feature names shared by GenICam-compliant devices. Keeping them
// here avoids scattering string literals across the configuration layers.
const (
	FeatureWidth            = "Width"
	FeatureHeight           = "Height"
	FeatureOffsetX          = "OffsetX"
	FeatureOffsetY          = "OffsetY"
	FeaturePixelFormat      = "PixelFormat"
	FeatureExposureTime     = "ExposureTime"
	FeatureExposureTimeAbs  = "ExposureTimeAbs"
	FeatureExposureAuto     = "ExposureAuto"
	FeatureBalanceWhiteAuto = "BalanceWhiteAuto"
	FeatureGain             = "Gain"

	FeatureTriggerSelector   = "TriggerSelector"
	FeatureTriggerMode       = "TriggerMode"
	FeatureTriggerSource     = "TriggerSource"
	FeatureTriggerActivation = "TriggerActivation"

	FeatureStreamBufferAlignment = "StreamBufferAlignment"

	CommandAcquisitionStart     = "AcquisitionStart"
	CommandAcquisitionStop      = "AcquisitionStop"
	CommandGVSPAdjustPacketSize = "GVSPAdjustPacketSize"
)

// Camera is the surface a vendor SDK binding must provide.
//
// Feature access follows the GenICam naming convention: features are
// addressed by string name and have a type known to both sides. Stream-level
// features such as StreamBufferAlignment are reachable through the same
// handle; bindings with separate stream handles fold the first stream into
// this interface.
//
// Implementations must be safe for use from the caller's goroutine plus the
// driver-owned callback thread delivering completed frames.
type Camera interface {
	// Open establishes the connection to the camera with the given
	// identifier. An empty identifier selects the first available camera.
	Open(id string) error

	// Close tears down the connection. Safe to call when not open.
	Close() error

	// ID returns the identifier of the connected camera.
	ID() string

	// IntFeature reads an integer feature value.
	IntFeature(name string) (int64, error)

	// SetIntFeature writes an integer feature value.
	SetIntFeature(name string, value int64) error

	// IntRange reports the minimum and maximum accepted values of an
	// integer feature.
	IntRange(name string) (min, max int64, err error)

	// IntIncrement reports the step size between accepted values of an
	// integer feature.
	IntIncrement(name string) (int64, error)

	// FloatFeature reads a floating-point feature value.
	FloatFeature(name string) (float64, error)

	// SetFloatFeature writes a floating-point feature value.
	SetFloatFeature(name string, value float64) error

	// EnumFeature reads the current entry of an enumerated feature.
	EnumFeature(name string) (string, error)

	// SetEnumFeature selects an entry of an enumerated feature.
	SetEnumFeature(name, value string) error

	// EnumEntries lists all entries of an enumerated feature, including
	// entries that are not currently selectable.
	EnumEntries(name string) ([]string, error)

	// EnumAvailable reports whether an entry is currently selectable.
	EnumAvailable(name, value string) (bool, error)

	// RunCommand fires a command feature. Completion is confirmed
	// separately through CommandDone.
	RunCommand(name string) error

	// CommandDone polls whether a previously run command has completed.
	CommandDone(name string) (bool, error)

	// PayloadSize reports the number of bytes one frame occupies at the
	// currently configured format and geometry.
	PayloadSize() (uint32, error)

	// AnnounceFrame registers a frame descriptor with the driver so it may
	// later be queued for capture.
	AnnounceFrame(frame *Frame) error

	// RevokeFrame detaches a previously announced frame descriptor.
	RevokeFrame(frame *Frame) error

	// QueueFrame hands an announced frame to the driver for the next
	// capture. The callback is invoked when the capture completes.
	QueueFrame(frame *Frame, callback FrameCallback) error

	// StartCapture engages the capture engine. Frames must be queued and
	// acquisition started separately.
	StartCapture() error

	// StopCapture disengages the capture engine.
	StopCapture() error

	// FlushCaptureQueue discards all frames still queued at the driver
	// without invoking their callbacks.
	FlushCaptureQueue() error
}

package config

// Sentinel values for ROI and analog settings. The zero/negative sentinels
// mean "resolve against the device" rather than "set this literal value".
const (
	// AutoDimension resolves a ROI width or height to the full sensor
	// extent.
	AutoDimension = 0

	// AutoOffset resolves a ROI offset to the value that centers the ROI on
	// the sensor.
	AutoOffset = -1

	// UnsetExposure leaves the device exposure time untouched.
	UnsetExposure = 0.0

	// UnsetGain leaves the device gain untouched.
	UnsetGain = -1.0
)

// ROI is the rectangular sensor subregion to capture. Width and Height of
// AutoDimension resolve to the full sensor extent; offsets of AutoOffset
// resolve to the nearest valid centered position.
type ROI struct {
	Width   int `yaml:"width"`
	Height  int `yaml:"height"`
	OffsetX int `yaml:"offset_x"`
	OffsetY int `yaml:"offset_y"`
}

// Trigger bundles the four trigger features. Any field left at its
// "unchanged" zero value is skipped entirely during application.
type Trigger struct {
	Selector   TriggerSelector   `yaml:"selector"`
	Activation TriggerActivation `yaml:"activation"`
	Source     TriggerSource     `yaml:"source"`
	Mode       TriggerMode       `yaml:"mode"`
}

// Settings is the full configuration surface of a camera source.
type Settings struct {
	// CameraID selects the camera to open. Empty selects the first
	// available camera.
	CameraID string `yaml:"camera"`

	// ExposureTime is the exposure duration in microseconds. Values of
	// UnsetExposure or below leave the device value untouched.
	ExposureTime float64 `yaml:"exposure_time"`

	// ExposureAuto controls automatic exposure adjustment.
	ExposureAuto AutoMode `yaml:"exposure_auto"`

	// BalanceWhiteAuto controls automatic white balance adjustment.
	BalanceWhiteAuto AutoMode `yaml:"balance_white_auto"`

	// Gain is the analog gain in device units. Negative values leave the
	// device value untouched.
	Gain float64 `yaml:"gain"`

	// ROI is the captured sensor subregion.
	ROI ROI `yaml:"roi"`

	// Trigger holds the trigger configuration.
	Trigger Trigger `yaml:"trigger"`

	// IncompleteFrameHandling decides whether incomplete frames are dropped
	// or submitted.
	IncompleteFrameHandling IncompleteFramePolicy `yaml:"incomplete_frame_handling"`

	// AllocationMode decides whether the application or the transport layer
	// allocates frame buffer memory.
	AllocationMode AllocationMode `yaml:"allocation_mode"`
}

// DefaultSettings returns the settings a freshly constructed source uses:
// full-sensor centered ROI, all trigger features unchanged, manual exposure
// and white balance, incomplete frames dropped, application-side allocation.
func DefaultSettings() *Settings {
	return &Settings{
		ExposureTime:            UnsetExposure,
		ExposureAuto:            AutoOff,
		BalanceWhiteAuto:        AutoOff,
		Gain:                    UnsetGain,
		ROI:                     ROI{Width: AutoDimension, Height: AutoDimension, OffsetX: AutoOffset, OffsetY: AutoOffset},
		Trigger:                 Trigger{},
		IncompleteFrameHandling: DropIncomplete,
		AllocationMode:          AllocAnnounce,
	}
}

// Clone returns an independent copy of the settings.
func (s *Settings) Clone() *Settings {
	c := *s
	return &c
}

package config

import "fmt"

// AutoMode selects the automatic adjustment behavior of a camera feature
// such as exposure or white balance.
type AutoMode int

const (
	// AutoOff leaves the feature under manual control.
	AutoOff AutoMode = iota
	// AutoOnce lets the device adjust the feature once until it converges,
	// then return to manual control.
	AutoOnce
	// AutoContinuous lets the device adjust the feature continuously.
	AutoContinuous
)

var autoModeNames = map[AutoMode]string{
	AutoOff:        "Off",
	AutoOnce:       "Once",
	AutoContinuous: "Continuous",
}

// DeviceString returns the device-native entry name for the mode.
func (m AutoMode) DeviceString() string { return autoModeNames[m] }

// String implements fmt.Stringer.
func (m AutoMode) String() string { return autoModeNames[m] }

// ParseAutoMode converts a device-native entry name back to an AutoMode.
func ParseAutoMode(s string) (AutoMode, error) {
	for mode, name := range autoModeNames {
		if name == s {
			return mode, nil
		}
	}
	return AutoOff, fmt.Errorf("unknown auto mode %q", s)
}

// TriggerSelector names the trigger channel subsequent trigger settings
// apply to. The zero value leaves the device selection unchanged.
type TriggerSelector int

const (
	// SelectorUnchanged keeps the trigger selector currently set on the
	// device.
	SelectorUnchanged TriggerSelector = iota
	SelectorAcquisitionStart
	SelectorAcquisitionEnd
	SelectorAcquisitionActive
	SelectorFrameStart
	SelectorFrameEnd
	SelectorFrameActive
	SelectorFrameBurstStart
	SelectorFrameBurstEnd
	SelectorFrameBurstActive
	SelectorLineStart
	SelectorExposureStart
	SelectorExposureEnd
	SelectorExposureActive
)

var triggerSelectorNames = map[TriggerSelector]string{
	SelectorUnchanged:         "UNCHANGED",
	SelectorAcquisitionStart:  "AcquisitionStart",
	SelectorAcquisitionEnd:    "AcquisitionEnd",
	SelectorAcquisitionActive: "AcquisitionActive",
	SelectorFrameStart:        "FrameStart",
	SelectorFrameEnd:          "FrameEnd",
	SelectorFrameActive:       "FrameActive",
	SelectorFrameBurstStart:   "FrameBurstStart",
	SelectorFrameBurstEnd:     "FrameBurstEnd",
	SelectorFrameBurstActive:  "FrameBurstActive",
	SelectorLineStart:         "LineStart",
	SelectorExposureStart:     "ExposureStart",
	SelectorExposureEnd:       "ExposureEnd",
	SelectorExposureActive:    "ExposureActive",
}

// DeviceString returns the device-native entry name for the selector.
func (t TriggerSelector) DeviceString() string { return triggerSelectorNames[t] }

// String implements fmt.Stringer.
func (t TriggerSelector) String() string { return triggerSelectorNames[t] }

// ParseTriggerSelector converts a device-native entry name back to a
// TriggerSelector.
func ParseTriggerSelector(s string) (TriggerSelector, error) {
	for sel, name := range triggerSelectorNames {
		if name == s {
			return sel, nil
		}
	}
	return SelectorUnchanged, fmt.Errorf("unknown trigger selector %q", s)
}

// TriggerMode enables or disables the selected trigger. The zero value
// leaves the device value unchanged.
type TriggerMode int

const (
	// TriggerModeUnchanged keeps the trigger mode currently set on the
	// device.
	TriggerModeUnchanged TriggerMode = iota
	// TriggerModeOff disables the selected trigger.
	TriggerModeOff
	// TriggerModeOn enables the selected trigger.
	TriggerModeOn
)

var triggerModeNames = map[TriggerMode]string{
	TriggerModeUnchanged: "UNCHANGED",
	TriggerModeOff:       "Off",
	TriggerModeOn:        "On",
}

// DeviceString returns the device-native entry name for the mode.
func (t TriggerMode) DeviceString() string { return triggerModeNames[t] }

// String implements fmt.Stringer.
func (t TriggerMode) String() string { return triggerModeNames[t] }

// ParseTriggerMode converts a device-native entry name back to a
// TriggerMode.
func ParseTriggerMode(s string) (TriggerMode, error) {
	for mode, name := range triggerModeNames {
		if name == s {
			return mode, nil
		}
	}
	return TriggerModeUnchanged, fmt.Errorf("unknown trigger mode %q", s)
}

// TriggerSource selects the signal that fires the selected trigger. The zero
// value leaves the device value unchanged.
type TriggerSource int

const (
	// SourceUnchanged keeps the trigger source currently set on the device.
	SourceUnchanged TriggerSource = iota
	SourceLine0
	SourceLine1
	SourceLine2
	SourceLine3
	SourceAction0
	SourceAction1
	SourceAction2
	SourceAction3
)

var triggerSourceNames = map[TriggerSource]string{
	SourceUnchanged: "UNCHANGED",
	SourceLine0:     "Line0",
	SourceLine1:     "Line1",
	SourceLine2:     "Line2",
	SourceLine3:     "Line3",
	SourceAction0:   "Action0",
	SourceAction1:   "Action1",
	SourceAction2:   "Action2",
	SourceAction3:   "Action3",
}

// DeviceString returns the device-native entry name for the source.
func (t TriggerSource) DeviceString() string { return triggerSourceNames[t] }

// String implements fmt.Stringer.
func (t TriggerSource) String() string { return triggerSourceNames[t] }

// ParseTriggerSource converts a device-native entry name back to a
// TriggerSource.
func ParseTriggerSource(s string) (TriggerSource, error) {
	for src, name := range triggerSourceNames {
		if name == s {
			return src, nil
		}
	}
	return SourceUnchanged, fmt.Errorf("unknown trigger source %q", s)
}

// TriggerActivation selects the signal transition or level that fires the
// selected trigger. The zero value leaves the device value unchanged.
type TriggerActivation int

const (
	// ActivationUnchanged keeps the trigger activation currently set on the
	// device.
	ActivationUnchanged TriggerActivation = iota
	ActivationRisingEdge
	ActivationFallingEdge
	ActivationAnyEdge
	ActivationLevelHigh
	ActivationLevelLow
)

var triggerActivationNames = map[TriggerActivation]string{
	ActivationUnchanged:   "UNCHANGED",
	ActivationRisingEdge:  "RisingEdge",
	ActivationFallingEdge: "FallingEdge",
	ActivationAnyEdge:     "AnyEdge",
	ActivationLevelHigh:   "LevelHigh",
	ActivationLevelLow:    "LevelLow",
}

// DeviceString returns the device-native entry name for the activation.
func (t TriggerActivation) DeviceString() string { return triggerActivationNames[t] }

// String implements fmt.Stringer.
func (t TriggerActivation) String() string { return triggerActivationNames[t] }

// ParseTriggerActivation converts a device-native entry name back to a
// TriggerActivation.
func ParseTriggerActivation(s string) (TriggerActivation, error) {
	for act, name := range triggerActivationNames {
		if name == s {
			return act, nil
		}
	}
	return ActivationUnchanged, fmt.Errorf("unknown trigger activation %q", s)
}

// IncompleteFramePolicy decides what the dispatcher does with frames whose
// transfer did not complete.
type IncompleteFramePolicy int

const (
	// DropIncomplete requeues incomplete frames without emitting them.
	DropIncomplete IncompleteFramePolicy = iota
	// SubmitIncomplete emits incomplete frames as-is, flagged so consumers
	// can detect the incompleteness.
	SubmitIncomplete
)

var incompletePolicyNames = map[IncompleteFramePolicy]string{
	DropIncomplete:   "drop",
	SubmitIncomplete: "submit",
}

// String implements fmt.Stringer.
func (p IncompleteFramePolicy) String() string { return incompletePolicyNames[p] }

// ParseIncompleteFramePolicy converts a policy name back to a policy value.
func ParseIncompleteFramePolicy(s string) (IncompleteFramePolicy, error) {
	for policy, name := range incompletePolicyNames {
		if name == s {
			return policy, nil
		}
	}
	return DropIncomplete, fmt.Errorf("unknown incomplete frame policy %q", s)
}

// AllocationMode decides who allocates frame buffer memory.
type AllocationMode int

const (
	// AllocAnnounce lets the application allocate buffer memory and
	// announce it to the driver.
	AllocAnnounce AllocationMode = iota
	// AllocDevice delegates buffer allocation to the transport layer; the
	// application announces empty descriptors.
	AllocDevice
)

var allocationModeNames = map[AllocationMode]string{
	AllocAnnounce: "announce",
	AllocDevice:   "device",
}

// String implements fmt.Stringer.
func (m AllocationMode) String() string { return allocationModeNames[m] }

// ParseAllocationMode converts a mode name back to a mode value.
func ParseAllocationMode(s string) (AllocationMode, error) {
	for mode, name := range allocationModeNames {
		if name == s {
			return mode, nil
		}
	}
	return AllocAnnounce, fmt.Errorf("unknown allocation mode %q", s)
}

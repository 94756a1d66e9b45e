package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestDefaultSettings(t *testing.T) {
	s := DefaultSettings()

	assert.Equal(t, "", s.CameraID)
	assert.Equal(t, UnsetExposure, s.ExposureTime)
	assert.Equal(t, AutoOff, s.ExposureAuto)
	assert.Equal(t, AutoOff, s.BalanceWhiteAuto)
	assert.Equal(t, UnsetGain, s.Gain)
	assert.Equal(t, AutoDimension, s.ROI.Width)
	assert.Equal(t, AutoDimension, s.ROI.Height)
	assert.Equal(t, AutoOffset, s.ROI.OffsetX)
	assert.Equal(t, AutoOffset, s.ROI.OffsetY)
	assert.Equal(t, SelectorUnchanged, s.Trigger.Selector)
	assert.Equal(t, TriggerModeUnchanged, s.Trigger.Mode)
	assert.Equal(t, DropIncomplete, s.IncompleteFrameHandling)
	assert.Equal(t, AllocAnnounce, s.AllocationMode)
}

func TestSettingsClone(t *testing.T) {
	s := DefaultSettings()
	s.CameraID = "CAM-1"

	c := s.Clone()
	c.CameraID = "CAM-2"
	c.ROI.Width = 640

	assert.Equal(t, "CAM-1", s.CameraID)
	assert.Equal(t, AutoDimension, s.ROI.Width)
}

func TestEnumParsing(t *testing.T) {
	mode, err := ParseAutoMode("Continuous")
	require.NoError(t, err)
	assert.Equal(t, AutoContinuous, mode)

	_, err = ParseAutoMode("Sometimes")
	assert.Error(t, err)

	sel, err := ParseTriggerSelector("FrameStart")
	require.NoError(t, err)
	assert.Equal(t, SelectorFrameStart, sel)

	policy, err := ParseIncompleteFramePolicy("submit")
	require.NoError(t, err)
	assert.Equal(t, SubmitIncomplete, policy)

	alloc, err := ParseAllocationMode("device")
	require.NoError(t, err)
	assert.Equal(t, AllocDevice, alloc)
}

func TestEnumDeviceStrings(t *testing.T) {
	// The device-native names are the literal GenICam entry names; they go
	// over the wire, so they are pinned here.
	assert.Equal(t, "Off", AutoOff.DeviceString())
	assert.Equal(t, "FrameStart", SelectorFrameStart.DeviceString())
	assert.Equal(t, "RisingEdge", ActivationRisingEdge.DeviceString())
	assert.Equal(t, "Line1", SourceLine1.DeviceString())
	assert.Equal(t, "On", TriggerModeOn.DeviceString())
	assert.Equal(t, "UNCHANGED", SelectorUnchanged.DeviceString())
}

func TestSettingsYAMLRoundTrip(t *testing.T) {
	s := DefaultSettings()
	s.CameraID = "DEV_1AB22C000000"
	s.ExposureTime = 2500
	s.ExposureAuto = AutoOnce
	s.Gain = 12
	s.ROI = ROI{Width: 640, Height: 480, OffsetX: 2, OffsetY: 4}
	s.Trigger = Trigger{
		Selector:   SelectorFrameStart,
		Activation: ActivationFallingEdge,
		Source:     SourceLine2,
		Mode:       TriggerModeOn,
	}
	s.IncompleteFrameHandling = SubmitIncomplete
	s.AllocationMode = AllocDevice

	data, err := yaml.Marshal(s)
	require.NoError(t, err)

	got := DefaultSettings()
	require.NoError(t, yaml.Unmarshal(data, got))
	assert.Equal(t, s, got)
}

func TestLoadPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	content := `
camera: CAM-7
exposure_auto: Continuous
roi:
  width: 320
trigger:
  mode: "Off"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	s, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "CAM-7", s.CameraID)
	assert.Equal(t, AutoContinuous, s.ExposureAuto)
	assert.Equal(t, 320, s.ROI.Width)
	assert.Equal(t, TriggerModeOff, s.Trigger.Mode)

	// Absent fields keep their defaults.
	assert.Equal(t, AutoDimension, s.ROI.Height)
	assert.Equal(t, AutoOffset, s.ROI.OffsetX)
	assert.Equal(t, SelectorUnchanged, s.Trigger.Selector)
	assert.Equal(t, UnsetGain, s.Gain)
}

func TestLoadRejectsBadValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("exposure_auto: Sometimes\n"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

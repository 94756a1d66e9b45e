package capture

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/opd-ai/gencamsrc/config"
	"github.com/opd-ai/gencamsrc/device"
)

// ApplyFeatureSettings applies the structured settings to their camera
// features: exposure, auto modes and gain best-effort, then the ROI and the
// trigger configuration in their required orders.
//
// Best-effort steps log a warning and continue on rejection; a failure in
// the ROI or trigger sequence aborts and is surfaced as a failed
// configuration. The caller is responsible for stopping and restarting
// acquisition around this call when the session is acquiring.
func ApplyFeatureSettings(cam device.Camera, settings *config.Settings) error {
	if settings.ExposureTime > config.UnsetExposure {
		setExposureTime(cam, settings.ExposureTime)
	}

	setEnumBestEffort(cam, device.FeatureExposureAuto, settings.ExposureAuto.DeviceString())
	setEnumBestEffort(cam, device.FeatureBalanceWhiteAuto, settings.BalanceWhiteAuto.DeviceString())

	if settings.Gain >= 0 {
		logrus.WithFields(logrus.Fields{
			"function": "ApplyFeatureSettings",
			"value":    settings.Gain,
		}).Debug("Setting \"Gain\"")
		if err := cam.SetFloatFeature(device.FeatureGain, settings.Gain); err != nil {
			logrus.WithFields(logrus.Fields{
				"function": "ApplyFeatureSettings",
				"value":    settings.Gain,
				"error":    err,
			}).Warn("Failed to set \"Gain\"")
		}
	}

	if err := ApplyROI(cam, &settings.ROI); err != nil {
		return err
	}
	return ApplyTrigger(cam, &settings.Trigger)
}

// setExposureTime writes the exposure duration, falling back to the legacy
// ExposureTimeAbs feature on cameras that predate the ExposureTime name.
func setExposureTime(cam device.Camera, value float64) {
	logrus.WithFields(logrus.Fields{
		"function": "setExposureTime",
		"value":    value,
	}).Debug("Setting \"ExposureTime\"")
	err := cam.SetFloatFeature(device.FeatureExposureTime, value)
	if err == nil {
		return
	}
	if errors.Is(err, device.ErrFeatureNotFound) {
		logrus.WithFields(logrus.Fields{
			"function": "setExposureTime",
			"value":    value,
			"error":    err,
		}).Warn("Failed to set \"ExposureTime\". Attempting \"ExposureTimeAbs\"")
		if err := cam.SetFloatFeature(device.FeatureExposureTimeAbs, value); err != nil {
			logrus.WithFields(logrus.Fields{
				"function": "setExposureTime",
				"value":    value,
				"error":    err,
			}).Warn("Failed to set \"ExposureTimeAbs\"")
		}
		return
	}
	logrus.WithFields(logrus.Fields{
		"function": "setExposureTime",
		"value":    value,
		"error":    err,
	}).Warn("Failed to set \"ExposureTime\"")
}

// ApplyROI applies the region of interest in the order devices require.
//
// The offsets are reset to zero first: offset ranges are defined relative to
// the current width and height on most devices, so resetting guarantees the
// full sensor extent is visible while auto dimensions are resolved. Width is
// resolved and set, then height, then each offset (centered and rounded to
// the nearest valid value when set to AutoOffset). Every set is attempted;
// the returned error reports the first failure of a width, height or offset
// set.
//
// Resolved auto values are written back into roi so read-back reflects what
// was applied.
func ApplyROI(cam device.Camera, roi *config.ROI) error {
	logrus.WithFields(logrus.Fields{
		"function": "ApplyROI",
	}).Debug("Temporarily resetting \"OffsetX\" and \"OffsetY\" to 0")
	if err := cam.SetIntFeature(device.FeatureOffsetX, 0); err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "ApplyROI",
			"error":    err,
		}).Warn("Failed to reset \"OffsetX\" to 0")
	}
	if err := cam.SetIntFeature(device.FeatureOffsetY, 0); err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "ApplyROI",
			"error":    err,
		}).Warn("Failed to reset \"OffsetY\" to 0")
	}

	var firstErr error
	record := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}

	_, sensorWidth, err := cam.IntRange(device.FeatureWidth)
	if roi.Width == config.AutoDimension {
		logrus.WithFields(logrus.Fields{
			"function":     "ApplyROI",
			"sensor_width": sensorWidth,
			"range_error":  err,
		}).Debug("Setting \"Width\" to full sensor width")
		roi.Width = int(sensorWidth)
	}
	record(setIntFeature(cam, device.FeatureWidth, int64(roi.Width)))

	_, sensorHeight, err := cam.IntRange(device.FeatureHeight)
	if roi.Height == config.AutoDimension {
		logrus.WithFields(logrus.Fields{
			"function":      "ApplyROI",
			"sensor_height": sensorHeight,
			"range_error":   err,
		}).Debug("Setting \"Height\" to full sensor height")
		roi.Height = int(sensorHeight)
	}
	record(setIntFeature(cam, device.FeatureHeight, int64(roi.Height)))

	if roi.OffsetX == config.AutoOffset {
		roi.OffsetX = int(resolveCenteredOffset(cam, device.FeatureOffsetX,
			sensorWidth, int64(roi.Width)))
	}
	record(setIntFeature(cam, device.FeatureOffsetX, int64(roi.OffsetX)))

	if roi.OffsetY == config.AutoOffset {
		roi.OffsetY = int(resolveCenteredOffset(cam, device.FeatureOffsetY,
			sensorHeight, int64(roi.Height)))
	}
	record(setIntFeature(cam, device.FeatureOffsetY, int64(roi.OffsetY)))

	return firstErr
}

// resolveCenteredOffset computes the offset that centers a ROI dimension on
// the sensor, rounded to the nearest value the device accepts. When the
// range or increment query fails the raw centered value is used as-is.
func resolveCenteredOffset(cam device.Camera, feature string, sensor, resolved int64) int64 {
	desired := (sensor - resolved) / 2
	logrus.WithFields(logrus.Fields{
		"function": "resolveCenteredOffset",
		"feature":  feature,
		"desired":  desired,
	}).Debug("ROI centering requested")

	min, max, err := cam.IntRange(feature)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "resolveCenteredOffset",
			"feature":  feature,
			"error":    err,
		}).Debug("Range query failed. Using desired value unrounded")
		return desired
	}
	increment, err := cam.IntIncrement(feature)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "resolveCenteredOffset",
			"feature":  feature,
			"error":    err,
		}).Debug("Increment query failed. Using desired value unrounded")
		return desired
	}

	valid := roundToValid(desired, min, max, increment)
	if valid != desired {
		logrus.WithFields(logrus.Fields{
			"function": "resolveCenteredOffset",
			"feature":  feature,
			"desired":  desired,
			"valid":    valid,
		}).Debug("Desired offset was not valid. Using nearest valid value")
	}
	return valid
}

// roundToValid clamps value into [min, max] and rounds it to the nearest
// multiple of increment above min.
func roundToValid(value, min, max, increment int64) int64 {
	if value < min {
		return min
	}
	if value > max {
		value = max
	}
	if increment <= 1 {
		return value
	}
	steps := (value - min + increment/2) / increment
	value = min + steps*increment
	if value > max {
		value -= increment
	}
	return value
}

func setIntFeature(cam device.Camera, name string, value int64) error {
	logrus.WithFields(logrus.Fields{
		"function": "setIntFeature",
		"feature":  name,
		"value":    value,
	}).Debug("Setting integer feature")
	if err := cam.SetIntFeature(name, value); err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "setIntFeature",
			"feature":  name,
			"value":    value,
			"error":    err,
		}).Warn("Failed to set integer feature")
		return fmt.Errorf("failed to set %s to %d: %w", name, value, err)
	}
	return nil
}

// ApplyTrigger applies the trigger configuration in the fixed order
// TriggerSelector, TriggerActivation, TriggerSource, TriggerMode. The
// activation, source and mode of a trigger are defined relative to the
// currently selected trigger, so the selector must be set first. Fields left
// at their "unchanged" value issue no device set at all.
//
// A rejected selector aborts the sequence: applying the remaining fields
// would silently repoint them at the wrong trigger channel. Rejections of
// the other fields are applied best-effort but reported in the result.
func ApplyTrigger(cam device.Camera, trigger *config.Trigger) error {
	logrus.WithFields(logrus.Fields{
		"function": "ApplyTrigger",
	}).Debug("Applying trigger settings")

	if trigger.Selector == config.SelectorUnchanged {
		logrus.WithFields(logrus.Fields{
			"function": "ApplyTrigger",
			"feature":  device.FeatureTriggerSelector,
		}).Debug("Trigger selector unchanged. Not touching camera value")
	} else if err := setTriggerEnum(cam, device.FeatureTriggerSelector,
		trigger.Selector.DeviceString()); err != nil {
		return err
	}

	var firstErr error
	record := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}

	if trigger.Activation == config.ActivationUnchanged {
		logrus.WithFields(logrus.Fields{
			"function": "ApplyTrigger",
			"feature":  device.FeatureTriggerActivation,
		}).Debug("Trigger activation unchanged. Not touching camera value")
	} else {
		record(setTriggerEnum(cam, device.FeatureTriggerActivation,
			trigger.Activation.DeviceString()))
	}

	if trigger.Source == config.SourceUnchanged {
		logrus.WithFields(logrus.Fields{
			"function": "ApplyTrigger",
			"feature":  device.FeatureTriggerSource,
		}).Debug("Trigger source unchanged. Not touching camera value")
	} else {
		record(setTriggerEnum(cam, device.FeatureTriggerSource,
			trigger.Source.DeviceString()))
	}

	if trigger.Mode == config.TriggerModeUnchanged {
		logrus.WithFields(logrus.Fields{
			"function": "ApplyTrigger",
			"feature":  device.FeatureTriggerMode,
		}).Debug("Trigger mode unchanged. Not touching camera value")
	} else {
		record(setTriggerEnum(cam, device.FeatureTriggerMode,
			trigger.Mode.DeviceString()))
	}

	return firstErr
}

func setTriggerEnum(cam device.Camera, name, value string) error {
	logrus.WithFields(logrus.Fields{
		"function": "setTriggerEnum",
		"feature":  name,
		"value":    value,
	}).Debug("Setting trigger feature")
	err := cam.SetEnumFeature(name, value)
	if err == nil {
		return nil
	}
	logrus.WithFields(logrus.Fields{
		"function": "setTriggerEnum",
		"feature":  name,
		"value":    value,
		"error":    err,
	}).Error("Failed to set trigger feature")
	if errors.Is(err, device.ErrInvalidValue) {
		logAvailableEnumEntries(cam, name)
	}
	return fmt.Errorf("failed to set %s to %s: %w", name, value, err)
}

func setEnumBestEffort(cam device.Camera, name, value string) {
	logrus.WithFields(logrus.Fields{
		"function": "setEnumBestEffort",
		"feature":  name,
		"value":    value,
	}).Debug("Setting enumerated feature")
	if err := cam.SetEnumFeature(name, value); err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "setEnumBestEffort",
			"feature":  name,
			"value":    value,
			"error":    err,
		}).Warn("Failed to set enumerated feature")
	}
}

// logAvailableEnumEntries dumps the currently selectable entries of an
// enumerated feature after the device rejected a value, so the operator can
// see what the camera would have accepted.
func logAvailableEnumEntries(cam device.Camera, name string) {
	entries, err := cam.EnumEntries(name)
	if err != nil {
		return
	}
	available := make([]string, 0, len(entries))
	for _, entry := range entries {
		if ok, err := cam.EnumAvailable(name, entry); err == nil && ok {
			available = append(available, entry)
		}
	}
	logrus.WithFields(logrus.Fields{
		"function":  "logAvailableEnumEntries",
		"feature":   name,
		"available": available,
	}).Error("The listed values are available for the rejected feature")
}

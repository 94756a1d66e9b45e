package device

import "errors"

// Sentinel errors for device operations.
// These errors enable reliable error classification using errors.Is().

// Feature access errors.
var (
	// ErrDeviceRejected indicates the device returned an error for a feature
	// get, set or range query.
	ErrDeviceRejected = errors.New("device rejected feature access")

	// ErrFeatureNotFound indicates the named feature does not exist on the
	// connected device.
	ErrFeatureNotFound = errors.New("feature not found")

	// ErrInvalidValue indicates the device rejected the value passed to a
	// feature set as outside its accepted range or entry list.
	ErrInvalidValue = errors.New("invalid feature value")
)

// Acquisition and buffer errors.
var (
	// ErrResourceExhausted indicates a frame buffer allocation failed.
	ErrResourceExhausted = errors.New("buffer allocation failed")

	// ErrFormatNotSupported indicates the requested pipeline format has no
	// device-native counterpart.
	ErrFormatNotSupported = errors.New("pixel format not supported")

	// ErrCommandFailed indicates a blocking device command never confirmed
	// completion or the completion query itself errored. This is fatal for
	// the current session.
	ErrCommandFailed = errors.New("device command failed to complete")
)

// Connection errors.
var (
	// ErrNotConnected indicates the operation requires an open camera
	// connection.
	ErrNotConnected = errors.New("camera not connected")

	// ErrAlreadyOpen indicates Open was called on an already opened camera.
	ErrAlreadyOpen = errors.New("camera already open")

	// ErrRuntimeNotAcquired indicates Release was called on a Runtime with
	// no outstanding acquisitions.
	ErrRuntimeNotAcquired = errors.New("runtime has no outstanding acquisitions")
)

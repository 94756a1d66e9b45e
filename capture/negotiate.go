package capture

import (
	"errors"
	"fmt"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/opd-ai/gencamsrc/device"
	"github.com/opd-ai/gencamsrc/format"
)

// CapsAlternative is one negotiable capability set. Conventional-layout and
// mosaic/Bayer-layout formats are reported as disjoint alternatives because
// consumers negotiate one layout family at a time.
type CapsAlternative struct {
	// Formats lists the pipeline-native format names of this alternative.
	Formats []string

	// Width and height bounds. Equal min and max report a fixed dimension.
	WidthMin, WidthMax   int
	HeightMin, HeightMax int

	// Mosaic marks the Bayer-layout alternative.
	Mosaic bool
}

// Caps is the reportable capability set of a source. The frame rate is
// always variable: acquisition may be trigger-gated, so no fixed rate can be
// advertised.
type Caps struct {
	Alternatives []CapsAlternative
}

// TemplateCaps returns the static capability set reported while no camera
// is connected: every format the table knows, unconstrained geometry.
func TemplateCaps() *Caps {
	var raw, mosaic []string
	for _, m := range format.Table {
		if m.Mosaic {
			mosaic = append(mosaic, m.PipelineFormat)
		} else {
			raw = append(raw, m.PipelineFormat)
		}
	}
	return &Caps{Alternatives: []CapsAlternative{
		{Formats: raw, WidthMin: 1, WidthMax: math.MaxInt32, HeightMin: 1, HeightMax: math.MaxInt32},
		{Formats: mosaic, WidthMin: 1, WidthMax: math.MaxInt32, HeightMin: 1, HeightMax: math.MaxInt32, Mosaic: true},
	}}
}

// Negotiator computes reportable capabilities from device state and drives
// pool and session reconfiguration when the committed pipeline format
// changes.
type Negotiator struct {
	cam        device.Camera
	pool       *Pool
	session    *Session
	dispatcher *Dispatcher

	supported []format.Match
	queue     *FilledQueue
}

// NewNegotiator wires a negotiator over the acquisition components it
// reconfigures.
func NewNegotiator(cam device.Camera, pool *Pool, session *Session, dispatcher *Dispatcher) *Negotiator {
	return &Negotiator{cam: cam, pool: pool, session: session, dispatcher: dispatcher}
}

// Queue returns the currently live filled-frame queue.
func (n *Negotiator) Queue() *FilledQueue { return n.queue }

// SetQueue installs the initial filled-frame queue created at startup.
func (n *Negotiator) SetQueue(queue *FilledQueue) { n.queue = queue }

// Supported returns the intersection of device formats and the format table,
// as computed by the last MapSupportedFormats call.
func (n *Negotiator) Supported() []format.Match { return n.supported }

// MapSupportedFormats reads the enumerable and currently available pixel
// formats from the camera and intersects them with the format table. Called
// whenever a device connects.
func (n *Negotiator) MapSupportedFormats() error {
	entries, err := n.cam.EnumEntries(device.FeaturePixelFormat)
	if err != nil {
		return fmt.Errorf("failed to enumerate pixel formats: %w", err)
	}
	logrus.WithFields(logrus.Fields{
		"function": "Negotiator.MapSupportedFormats",
		"count":    len(entries),
	}).Debug("Camera returned supported formats")

	n.supported = n.supported[:0]
	for _, entry := range entries {
		available, err := n.cam.EnumAvailable(device.FeaturePixelFormat, entry)
		if err != nil || !available {
			logrus.WithFields(logrus.Fields{
				"function":      "Negotiator.MapSupportedFormats",
				"device_format": entry,
			}).Debug("Reported format is not available")
			continue
		}
		match, ok := format.ByDeviceName(entry)
		if !ok {
			logrus.WithFields(logrus.Fields{
				"function":      "Negotiator.MapSupportedFormats",
				"device_format": entry,
			}).Debug("No corresponding pipeline format found")
			continue
		}
		logrus.WithFields(logrus.Fields{
			"function":        "Negotiator.MapSupportedFormats",
			"device_format":   entry,
			"pipeline_format": match.PipelineFormat,
		}).Debug("Mapped device format to pipeline format")
		n.supported = append(n.supported, match)
	}
	return nil
}

// Caps reads the current sensor geometry and reports the mapped formats,
// partitioned into conventional and mosaic alternatives with fixed width and
// height.
func (n *Negotiator) Caps() (*Caps, error) {
	width, err := n.cam.IntFeature(device.FeatureWidth)
	if err != nil {
		return nil, fmt.Errorf("failed to read width: %w", err)
	}
	height, err := n.cam.IntFeature(device.FeatureHeight)
	if err != nil {
		return nil, fmt.Errorf("failed to read height: %w", err)
	}

	var raw, mosaic []string
	for _, m := range n.supported {
		if m.Mosaic {
			mosaic = append(mosaic, m.PipelineFormat)
		} else {
			raw = append(raw, m.PipelineFormat)
		}
	}
	w, h := int(width), int(height)
	return &Caps{Alternatives: []CapsAlternative{
		{Formats: raw, WidthMin: w, WidthMax: w, HeightMin: h, HeightMax: h},
		{Formats: mosaic, WidthMin: w, WidthMax: w, HeightMin: h, HeightMax: h, Mosaic: true},
	}}, nil
}

// Apply commits the requested pipeline format: it quiesces acquisition,
// retires the filled-frame queue (frames queued under the old format are
// discarded), sets the device pixel format, reallocates buffers when the new
// payload no longer fits, and resumes acquisition.
//
// Any failing step aborts and leaves acquisition stopped; resuming on
// undersized buffers is never attempted.
func (n *Negotiator) Apply(pipelineFormat string) error {
	match, ok := n.lookup(pipelineFormat)
	if !ok {
		logrus.WithFields(logrus.Fields{
			"function":        "Negotiator.Apply",
			"pipeline_format": pipelineFormat,
		}).Error("No matching device pixel format")
		return fmt.Errorf("format %q: %w", pipelineFormat, device.ErrFormatNotSupported)
	}
	logrus.WithFields(logrus.Fields{
		"function":        "Negotiator.Apply",
		"pipeline_format": pipelineFormat,
		"device_format":   match.DeviceFormat,
	}).Debug("Found matching device pixel format")

	// Pixel format changes are rejected while images are acquired.
	if err := n.session.Stop(); err != nil && !errors.Is(err, ErrNotAcquiring) {
		return err
	}

	// Frames queued under the old format layout are no longer valid, so the
	// queue is replaced and every descriptor retargeted at the replacement.
	n.queue = NewFilledQueue(n.pool.Count())
	n.pool.Retarget(n.queue)
	n.dispatcher.SetQueue(n.queue)

	if err := n.cam.SetEnumFeature(device.FeaturePixelFormat, match.DeviceFormat); err != nil {
		logrus.WithFields(logrus.Fields{
			"function":      "Negotiator.Apply",
			"device_format": match.DeviceFormat,
			"error":         err,
		}).Error("Could not set device pixel format")
		return fmt.Errorf("failed to set pixel format %s: %w", match.DeviceFormat, err)
	}

	// Buffers only grow. A payload size that cannot be read is treated as
	// grown, since it might have.
	payload, err := n.cam.PayloadSize()
	if err != nil || payload > n.pool.Capacity() {
		logrus.WithFields(logrus.Fields{
			"function": "Negotiator.Apply",
		}).Debug("Payload size increased or unknown. Reallocating frame buffers")
		n.pool.Revoke()
		if err := n.pool.Allocate(n.queue); err != nil {
			return err
		}
	}

	width, err := n.cam.IntFeature(device.FeatureWidth)
	if err != nil {
		return fmt.Errorf("failed to read width: %w", err)
	}
	height, err := n.cam.IntFeature(device.FeatureHeight)
	if err != nil {
		return fmt.Errorf("failed to read height: %w", err)
	}
	n.dispatcher.SetVideoInfo(VideoInfo{Width: int(width), Height: int(height), Match: match})

	return n.session.Start(Deliver)
}

func (n *Negotiator) lookup(pipelineFormat string) (format.Match, bool) {
	for _, m := range n.supported {
		if m.PipelineFormat == pipelineFormat {
			return m, true
		}
	}
	return format.Match{}, false
}

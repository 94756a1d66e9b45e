// Package gencamsrc implements frame acquisition from GenICam-style
// industrial cameras for video pipelines.
//
// A Source owns one camera connection and drives it through the standard
// lifecycle: open the device, negotiate a pixel format, announce a pool of
// frame buffers, start the acquisition engine and hand filled frames to
// the pipeline one at a time through Produce. Device-side feature
// configuration (exposure, white balance, gain, region of interest and
// hardware triggering) is applied from a config.Settings value, which can
// also be loaded from a YAML file and hot-reloaded.
//
// # Getting Started
//
// Create a Source around a device.Camera and a run-state provider, then
// walk the lifecycle:
//
//	src := gencamsrc.New(cam, runtime, run)
//	if err := src.Start(); err != nil {
//	    log.Fatal(err)
//	}
//	defer src.Close()
//
//	caps, _ := src.Caps()
//	if err := src.CommitFormat(caps.Alternatives[0].Formats[0]); err != nil {
//	    log.Fatal(err)
//	}
//
//	for {
//	    frame, err := src.Produce()
//	    if errors.Is(err, capture.ErrFlushing) {
//	        break
//	    }
//	    // hand frame downstream
//	}
//
// The heavy lifting lives in the subpackages: device defines the camera
// SDK boundary, format maps device pixel formats to pipeline video
// formats, capture implements buffer pooling, the acquisition session and
// frame dispatch, and config holds the settings model. Source ties them
// together behind a small surface.
package gencamsrc

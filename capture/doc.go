// Package capture implements the frame-acquisition and buffering core of a
// camera source: the hand-off between the driver's asynchronous completion
// callback and the pipeline's synchronous pull-based consumer.
//
// # Components
//
//   - Pool: owns the fixed-size set of frame buffer descriptors, their
//     allocation against the device alignment requirement, announcement to
//     the driver, and revocation.
//   - Session: the acquisition state machine around the device capture
//     engine and the blocking AcquisitionStart/AcquisitionStop commands.
//   - FilledQueue: the thread-safe FIFO carrying completed frames from the
//     driver callback to the dispatcher.
//   - Dispatcher: the pull side. Waits for filled frames, applies the
//     incomplete-frame policy, timestamps, copies payloads out and requeues
//     the source buffers.
//   - Negotiator: computes reportable capabilities from device state and
//     drives pool/session reconfiguration when the committed format changes.
//   - ApplyROI / ApplyTrigger / ApplyFeatureSettings: the configuration
//     sequencer, which applies region-of-interest and trigger settings in
//     the order devices require.
//
// # Concurrency and ownership
//
// Two execution contexts touch this package: the driver callback context,
// scheduled by the SDK, and the consumer context calling Dispatcher.Produce.
// The FilledQueue push/pop pair is the only synchronization between them;
// every buffer-ownership transition (device -> queue -> dispatcher ->
// device) rides on that hand-off and nothing else. A buffer is in exactly
// one of three places at any instant: queued at the device, waiting in the
// FilledQueue, or held by the dispatcher mid-copy.
//
// Configuration calls (format, ROI, trigger) must be serialized by the
// caller with respect to Session start/stop and Produce. That obligation
// belongs to the embedding source, not to this package.
package capture

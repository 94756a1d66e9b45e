// Package device defines the boundary between the frame source and the
// vendor camera SDK.
//
// The package does not talk to hardware itself. It declares the Camera
// interface that concrete SDK bindings implement, the Frame descriptor that
// is announced to and filled by the driver, the error taxonomy shared by all
// higher layers, and the process-wide Runtime guard that reference counts
// SDK startup and shutdown.
//
// # Camera
//
// Camera mirrors the surface of GenICam-style transport layers: features are
// addressed by name and accessed through typed get/set/range calls, commands
// are fired and polled for completion, and frame buffers are announced,
// queued and revoked explicitly. A completed buffer is handed back through a
// FrameCallback that the SDK invokes on a thread it owns; the callback must
// never block.
//
// # Frames
//
// A Frame is a descriptor, not an owner: the buffer pool in package capture
// owns the memory (unless allocation is delegated to the transport layer)
// and the driver owns the right to write into it while the frame is queued.
// See the capture package for the full ownership hand-off discipline.
//
// # Runtime
//
// Several sources may share one process. The Runtime guard wraps the SDK's
// global startup/shutdown pair behind Acquire/Release so that the first
// acquirer starts the library and the last releaser shuts it down. Construct
// one Runtime per process and inject it into every source rather than
// reaching for ambient global state.
package device

package capture

import "errors"

// Sentinel errors for acquisition state and the consumer pull path.
var (
	// ErrFlushing signals that the pipeline left the playing state while
	// the dispatcher was waiting for a frame. It is a control-flow signal,
	// not a failure.
	ErrFlushing = errors.New("source is flushing")

	// ErrAlreadyAcquiring indicates Start was called on a session that is
	// already acquiring.
	ErrAlreadyAcquiring = errors.New("session already acquiring")

	// ErrNotAcquiring indicates Stop was called on a session that is not
	// acquiring.
	ErrNotAcquiring = errors.New("session not acquiring")

	// ErrNotAllocated indicates an operation that needs announced buffers
	// ran against an empty pool.
	ErrNotAllocated = errors.New("buffer pool not allocated")
)

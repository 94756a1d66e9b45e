// Package devicetest provides an in-memory simulated camera implementing
// device.Camera for tests and examples.
//
// The simulated camera models the parts of a GenICam transport layer the
// acquisition core interacts with: named features with ranges, increments
// and enumerated entries, command features with controllable completion
// latency, buffer announcement and capture queueing, and frame completion
// delivered through the registered callback. Every mutating call is recorded
// so tests can assert on ordering, and any call can be made to fail with an
// injected error.
package devicetest

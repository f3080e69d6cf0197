// Package env scopes host values to a single boundary crossing.
//
// A Manager issues one Env per call. Host values the call touches are held in
// the Env's arena and addressed by Handle, a (generation, index) pair:
//
//	e := mgr.Open()
//	defer e.Close()
//
//	h, err := e.Number(42)
//	ref, err := e.Escape(h) // retained, outlives the call
//
// # Handle Lifecycle
//
//	Created     - returned by Wrap or a host operation
//	Valid       - usable with its own Env until Close
//	Invalidated - Close released the arena
//
// Using a Handle with an Env of another generation, or with any Env after
// Close, fails with a handle_scope_violation error. The arena is never read
// in that case.
//
// Every host operation on an Env counts one round trip; RoundTrips exposes
// the total so conversion cost can be measured.
//
// # Thread Safety
//
// Manager and Env are NOT thread-safe. A call runs on one goroutine and
// nested calls open nested Envs with their own generations.
package env

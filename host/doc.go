// Package host implements the dynamically-typed host runtime the bridge talks to.
//
// The Heap holds host values (undefined, null, booleans, numbers, strings,
// buffers, objects, arrays) addressed by Ref. String and buffer payloads live in
// a wazero-backed linear memory, strings as UTF-16LE code units, the way a
// JavaScript engine compiled to WebAssembly would hold them.
//
// # References
//
// Refs are reference counted. Constructors return a Ref owned by the caller;
// Retain and Release adjust the count and a value is freed, together with its
// payload, when the count reaches zero. Objects and arrays retain their members.
// The refs for undefined, null, true and false are reserved and immortal:
//
//	ref := heap.NewObject()
//	defer heap.Release(ref)
//
//	name, _ := heap.NewString("world")
//	heap.Set(ref, "name", name)
//	heap.Release(name) // the object keeps it alive
//
// Reference cycles between objects are never collected.
//
// # Thread Safety
//
// Heap is NOT thread-safe. The host runtime is single-threaded; every call into
// it is serialized by its owner.
package host

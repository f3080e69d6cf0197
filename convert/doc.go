// Package convert implements the conversion rules between native Go values and
// host values.
//
// A Rule[T] pairs a value.Type with two directions:
//
//	ToNative(env, handle) (T, error)      host -> Go
//	ToHost(env, T) (env.Handle, error)    Go -> host
//
// Rules compose: ArrayOf, MapOf and Option wrap an element rule, and the shape
// package builds rules for structs. Conversion errors carry the path to the
// failing member, e.g. "param[0].dependencies.react".
//
// # Numbers
//
// Host numbers are float64. Integer kinds accept only finite integral values
// inside their range; i64 is limited to the exactly representable range
// ±(2^53-1) in both directions. f64 accepts every float64 including NaN and
// infinities. Anything else is a range_overflow error.
//
// # Buffers
//
// Buffer copies bytes in both directions. BufferView hands out a zero-copy
// *env.BufferView whose lifetime ends with the Env of the call.
//
// # Cost
//
// Scalars cost one or two host operations. Strings and buffers are O(n) copies.
// Arrays and objects make one host round trip per element or key on top of
// the member conversions.
package convert

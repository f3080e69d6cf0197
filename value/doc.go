// Package value is the value category registry.
//
// Every value crossing the boundary belongs to exactly one Category. Number is
// split by width and signedness into NumberKind. A Type adds the parameters a
// category needs (element type, shape, nullability) and is the single source
// both the conversion engine and the declaration synthesizer read from.
//
//	Category    Go type                 Host representation
//	────────────────────────────────────────────────────────
//	undefined   value.Undefined         undefined
//	null        value.Null              null
//	number      int32/uint32/int64/f64  float64 number
//	string      string                  UTF-16 string
//	boolean     bool                    boolean
//	buffer      []byte                  byte buffer
//	object      map[string]T / struct   property table
//	array       []T                     element table
//	bigint      reserved                -
//	typedarray  reserved                -
//
// Lookup maps a Go type to its Type and fails with an unsupported_type error
// for anything outside the table, including the reserved categories.
package value

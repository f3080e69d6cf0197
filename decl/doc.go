// Package decl synthesizes static declarations for exported functions from
// the same value types their conversion rules use at runtime.
//
// Three targets are supported:
//
//   - TypeScript, the canonical form: TypeScript, Signature, Interface
//   - WIT: WITType and WIT, built on go.bytecodealliance.org/wit types
//   - JSON Schema: Schema, built on github.com/invopop/jsonschema
//
// All functions are pure. Output order follows the order of the input
// functions, with shapes emitted in first-use order.
package decl

package convert

import (
	stderrors "errors"
	"fmt"

	"github.com/wippyai/hostbridge/env"
	"github.com/wippyai/hostbridge/errors"
	"github.com/wippyai/hostbridge/value"
)

// ToNativeFunc converts the host value behind h. path locates h for errors.
type ToNativeFunc[T any] func(e *env.Env, h env.Handle, path []string) (T, error)

// ToHostFunc converts v into a new host value.
type ToHostFunc[T any] func(e *env.Env, v T, path []string) (env.Handle, error)

// Rule converts between T and host values of one Type.
type Rule[T any] struct {
	toNative ToNativeFunc[T]
	toHost   ToHostFunc[T]
	typ      value.Type
	cost     value.Cost
}

// New builds a rule from its two directions.
func New[T any](typ value.Type, cost value.Cost, toNative ToNativeFunc[T], toHost ToHostFunc[T]) Rule[T] {
	return Rule[T]{typ: typ, cost: cost, toNative: toNative, toHost: toHost}
}

// Type returns the host type the rule produces and accepts.
func (r Rule[T]) Type() value.Type {
	return r.typ
}

// Cost returns the rule's cost class.
func (r Rule[T]) Cost() value.Cost {
	return r.cost
}

// Valid reports whether the rule has both directions.
func (r Rule[T]) Valid() bool {
	return r.toNative != nil && r.toHost != nil
}

// ToNative converts a host value to T.
func (r Rule[T]) ToNative(e *env.Env, h env.Handle) (T, error) {
	return r.ToNativeAt(e, h)
}

// ToNativeAt converts a host value to T, reporting errors at path.
func (r Rule[T]) ToNativeAt(e *env.Env, h env.Handle, path ...string) (T, error) {
	v, err := r.toNative(e, h, path)
	if err != nil {
		var zero T
		return zero, errors.At(errors.PhaseToNative, err, path)
	}
	return v, nil
}

// ToHost converts v to a new host value owned by e.
func (r Rule[T]) ToHost(e *env.Env, v T) (env.Handle, error) {
	return r.ToHostAt(e, v)
}

// ToHostAt converts v to a host value, reporting errors at path.
func (r Rule[T]) ToHostAt(e *env.Env, v T, path ...string) (env.Handle, error) {
	h, err := r.toHost(e, v, path)
	if err != nil {
		return env.Handle{}, errors.At(errors.PhaseToHost, err, path)
	}
	return h, nil
}

// For returns the default rule for a scalar or dynamic Go type. Composite
// types are built explicitly with ArrayOf, MapOf, Option and shape rules.
func For[T any]() (Rule[T], error) {
	var zero T
	var r any
	switch any(zero).(type) {
	case uint32:
		r = U32()
	case int32:
		r = I32()
	case int64:
		r = I64()
	case float64:
		r = F64()
	case string:
		r = String()
	case bool:
		r = Bool()
	case []byte:
		r = Buffer()
	case *env.BufferView:
		r = BufferView()
	case value.Undefined:
		r = Undefined()
	case value.Null:
		r = Null()
	case map[string]any:
		r = Object()
	default:
		if _, err := value.Of[T](); err != nil {
			return Rule[T]{}, err
		}
		return Rule[T]{}, errors.UnsupportedType(fmt.Sprintf("%T", zero),
			"no default rule; build it with ArrayOf, MapOf, Option or a shape")
	}
	return r.(Rule[T]), nil
}

func sub(path []string, seg string) []string {
	out := make([]string, len(path), len(path)+1)
	copy(out, path)
	return append(out, seg)
}

func index(path []string, i int) []string {
	return sub(path, fmt.Sprintf("[%d]", i))
}

// expected turns a host-level kind mismatch into a conversion error naming
// the Go type.
func expected(err error, goType string, path []string) error {
	var e *errors.Error
	if stderrors.As(err, &e) && e.Phase == errors.PhaseHost && e.Kind == errors.KindTypeMismatch {
		return errors.TypeMismatch(errors.PhaseToNative, path, goType, e.HostType)
	}
	return errors.At(errors.PhaseToNative, err, path)
}

package convert

import (
	"fmt"
	"maps"
	"reflect"
	"slices"

	"github.com/wippyai/hostbridge/env"
	"github.com/wippyai/hostbridge/errors"
	"github.com/wippyai/hostbridge/host"
	"github.com/wippyai/hostbridge/value"
)

// Object converts host objects to map[string]any and back without a declared
// shape. Members convert by their dynamic kind:
//
//	undefined -> value.Undefined{}   null   -> nil
//	boolean   -> bool                number -> float64
//	string    -> string              buffer -> []byte (copy)
//	array     -> []any               object -> map[string]any
//
// Nesting deeper than the Env's MaxDepth and values that contain themselves
// are range_overflow errors.
func Object() Rule[map[string]any] {
	return New[map[string]any](value.Scalar(value.CategoryObject), value.CostPerMember,
		func(e *env.Env, h env.Handle, path []string) (map[string]any, error) {
			if err := exact(e, h, host.KindObject, "map[string]any", path); err != nil {
				return nil, err
			}
			return dynamicObject(e, h, path, 1, hostPath{})
		},
		func(e *env.Env, v map[string]any, path []string) (env.Handle, error) {
			return dynamicToHost(e, v, path, 1, nativePath{})
		},
	)
}

// hostPath holds the host objects and arrays enclosing the value being
// converted.
type hostPath map[host.Ref]struct{}

func (p hostPath) enter(e *env.Env, h env.Handle, path []string) (host.Ref, error) {
	ref, err := e.Ref(h)
	if err != nil {
		return host.Invalid, errors.At(errors.PhaseToNative, err, path)
	}
	if _, ok := p[ref]; ok {
		return host.Invalid, errors.Cycle(errors.PhaseToNative, path)
	}
	p[ref] = struct{}{}
	return ref, nil
}

// nativeKey identifies a Go map or slice by its backing storage.
type nativeKey struct {
	ptr uintptr
	len int
}

// nativePath holds the Go maps and slices enclosing the value being
// converted.
type nativePath map[nativeKey]struct{}

func (p nativePath) enter(v any, path []string) (nativeKey, bool, error) {
	rv := reflect.ValueOf(v)
	if rv.Len() == 0 {
		return nativeKey{}, false, nil
	}
	k := nativeKey{ptr: rv.Pointer(), len: rv.Len()}
	if _, ok := p[k]; ok {
		return k, false, errors.Cycle(errors.PhaseToHost, path)
	}
	p[k] = struct{}{}
	return k, true, nil
}

func checkDepth(e *env.Env, phase errors.Phase, path []string, depth int) error {
	if limit := e.Limits().MaxDepth; limit > 0 && depth > limit {
		return errors.LimitExceeded(phase, path, "nesting", depth, limit)
	}
	return nil
}

func dynamicObject(e *env.Env, h env.Handle, path []string, depth int, seen hostPath) (map[string]any, error) {
	if err := checkDepth(e, errors.PhaseToNative, path, depth); err != nil {
		return nil, err
	}
	ref, err := seen.enter(e, h, path)
	if err != nil {
		return nil, err
	}
	defer delete(seen, ref)

	keys, err := e.PropertyNames(h)
	if err != nil {
		return nil, err
	}
	out := make(map[string]any, len(keys))
	for _, k := range keys {
		el, err := e.GetNamed(h, k)
		if err != nil {
			return nil, err
		}
		if out[k], err = dynamicToNative(e, el, sub(path, k), depth, seen); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func dynamicToNative(e *env.Env, h env.Handle, path []string, depth int, seen hostPath) (any, error) {
	k, err := e.TypeOf(h)
	if err != nil {
		return nil, errors.At(errors.PhaseToNative, err, path)
	}

	switch k {
	case host.KindUndefined:
		return value.Undefined{}, nil
	case host.KindNull:
		return nil, nil
	case host.KindBoolean:
		return Bool().ToNativeAt(e, h, path...)
	case host.KindNumber:
		return F64().ToNativeAt(e, h, path...)
	case host.KindString:
		return String().ToNativeAt(e, h, path...)
	case host.KindBuffer:
		return Buffer().ToNativeAt(e, h, path...)
	case host.KindObject:
		v, err := dynamicObject(e, h, path, depth+1, seen)
		if err != nil {
			return nil, errors.At(errors.PhaseToNative, err, path)
		}
		return v, nil
	case host.KindArray:
		if err := checkDepth(e, errors.PhaseToNative, path, depth+1); err != nil {
			return nil, err
		}
		ref, err := seen.enter(e, h, path)
		if err != nil {
			return nil, err
		}
		defer delete(seen, ref)

		n, err := e.ArrayLength(h)
		if err != nil {
			return nil, errors.At(errors.PhaseToNative, err, path)
		}
		if limit := e.Limits().MaxArrayLength; limit > 0 && n > limit {
			return nil, errors.LimitExceeded(errors.PhaseToNative, path, "array", n, limit)
		}
		out := make([]any, n)
		for i := range out {
			el, err := e.GetElement(h, i)
			if err != nil {
				return nil, errors.At(errors.PhaseToNative, err, path)
			}
			if out[i], err = dynamicToNative(e, el, index(path, i), depth+1, seen); err != nil {
				return nil, err
			}
		}
		return out, nil
	}
	return nil, errors.TypeMismatch(errors.PhaseToNative, path, "any", k.String())
}

func dynamicToHost(e *env.Env, v any, path []string, depth int, seen nativePath) (env.Handle, error) {
	if err := checkDepth(e, errors.PhaseToHost, path, depth); err != nil {
		return env.Handle{}, err
	}

	switch x := v.(type) {
	case nil, value.Null:
		return e.Null()
	case value.Undefined:
		return e.Undefined()
	case bool:
		return e.Boolean(x)
	case float64:
		return e.Number(x)
	case int32:
		return e.Number(float64(x))
	case uint32:
		return e.Number(float64(x))
	case int:
		return I64().ToHostAt(e, int64(x), path...)
	case int64:
		return I64().ToHostAt(e, x, path...)
	case string:
		return String().ToHostAt(e, x, path...)
	case []byte:
		return Buffer().ToHostAt(e, x, path...)
	case *env.BufferView:
		return BufferView().ToHostAt(e, x, path...)
	case []any:
		if limit := e.Limits().MaxArrayLength; limit > 0 && len(x) > limit {
			return env.Handle{}, errors.LimitExceeded(errors.PhaseToHost, path, "array", len(x), limit)
		}
		k, entered, err := seen.enter(x, path)
		if err != nil {
			return env.Handle{}, err
		}
		if entered {
			defer delete(seen, k)
		}
		arr, err := e.CreateArray(len(x))
		if err != nil {
			return env.Handle{}, err
		}
		for i, el := range x {
			eh, err := dynamicToHost(e, el, index(path, i), depth+1, seen)
			if err != nil {
				return env.Handle{}, err
			}
			if err := e.SetElement(arr, i, eh); err != nil {
				return env.Handle{}, err
			}
		}
		return arr, nil
	case map[string]any:
		k, entered, err := seen.enter(x, path)
		if err != nil {
			return env.Handle{}, err
		}
		if entered {
			defer delete(seen, k)
		}
		obj, err := e.CreateObject()
		if err != nil {
			return env.Handle{}, err
		}
		for _, key := range slices.Sorted(maps.Keys(x)) {
			eh, err := dynamicToHost(e, x[key], sub(path, key), depth+1, seen)
			if err != nil {
				return env.Handle{}, err
			}
			if err := e.SetNamed(obj, key, eh); err != nil {
				return env.Handle{}, err
			}
		}
		return obj, nil
	}

	return env.Handle{}, errors.New(errors.PhaseToHost, errors.KindUnsupportedType).
		Path(path...).
		GoType(fmt.Sprintf("%T", v)).
		Detail("no host representation for dynamic value").
		Build()
}

package convert

import (
	"maps"
	"slices"

	"github.com/wippyai/hostbridge/env"
	"github.com/wippyai/hostbridge/errors"
	"github.com/wippyai/hostbridge/value"
)

// ArrayOf converts slices element by element. Every element is validated; the
// first failure reports its index. A nil slice becomes an empty array.
func ArrayOf[T any](elem Rule[T]) Rule[[]T] {
	return New[[]T](value.ArrayOf(elem.typ), value.CostPerMember,
		func(e *env.Env, h env.Handle, path []string) ([]T, error) {
			n, err := e.ArrayLength(h)
			if err != nil {
				return nil, expected(err, "[]"+elem.typ.String(), path)
			}
			if limit := e.Limits().MaxArrayLength; limit > 0 && n > limit {
				return nil, errors.LimitExceeded(errors.PhaseToNative, path, "array", n, limit)
			}
			out := make([]T, n)
			for i := range out {
				el, err := e.GetElement(h, i)
				if err != nil {
					return nil, err
				}
				if out[i], err = elem.ToNativeAt(e, el, index(path, i)...); err != nil {
					return nil, err
				}
			}
			return out, nil
		},
		func(e *env.Env, v []T, path []string) (env.Handle, error) {
			if limit := e.Limits().MaxArrayLength; limit > 0 && len(v) > limit {
				return env.Handle{}, errors.LimitExceeded(errors.PhaseToHost, path, "array", len(v), limit)
			}
			arr, err := e.CreateArray(len(v))
			if err != nil {
				return env.Handle{}, err
			}
			for i, x := range v {
				el, err := elem.ToHostAt(e, x, index(path, i)...)
				if err != nil {
					return env.Handle{}, err
				}
				if err := e.SetElement(arr, i, el); err != nil {
					return env.Handle{}, err
				}
			}
			return arr, nil
		},
	)
}

// MapOf converts string-keyed maps to host objects with one property per key.
// Keys are written in sorted order.
func MapOf[T any](elem Rule[T]) Rule[map[string]T] {
	return New[map[string]T](value.MapOf(elem.typ), value.CostPerMember,
		func(e *env.Env, h env.Handle, path []string) (map[string]T, error) {
			keys, err := e.PropertyNames(h)
			if err != nil {
				return nil, expected(err, "map[string]"+elem.typ.String(), path)
			}
			out := make(map[string]T, len(keys))
			for _, k := range keys {
				el, err := e.GetNamed(h, k)
				if err != nil {
					return nil, err
				}
				v, err := elem.ToNativeAt(e, el, sub(path, k)...)
				if err != nil {
					return nil, err
				}
				out[k] = v
			}
			return out, nil
		},
		func(e *env.Env, v map[string]T, path []string) (env.Handle, error) {
			obj, err := e.CreateObject()
			if err != nil {
				return env.Handle{}, err
			}
			for _, k := range slices.Sorted(maps.Keys(v)) {
				el, err := elem.ToHostAt(e, v[k], sub(path, k)...)
				if err != nil {
					return env.Handle{}, err
				}
				if err := e.SetNamed(obj, k, el); err != nil {
					return env.Handle{}, err
				}
			}
			return obj, nil
		},
	)
}

// Option makes a rule nullable. Host null and undefined convert to nil; nil
// converts to null.
func Option[T any](inner Rule[T]) Rule[*T] {
	return New[*T](value.OptionOf(inner.typ), inner.cost,
		func(e *env.Env, h env.Handle, path []string) (*T, error) {
			k, err := e.TypeOf(h)
			if err != nil {
				return nil, err
			}
			if k.IsNullish() {
				return nil, nil
			}
			v, err := inner.ToNativeAt(e, h, path...)
			if err != nil {
				return nil, err
			}
			return &v, nil
		},
		func(e *env.Env, v *T, path []string) (env.Handle, error) {
			if v == nil {
				return e.Null()
			}
			return inner.ToHostAt(e, *v, path...)
		},
	)
}

// Nullish reports whether h is null or undefined.
func Nullish(e *env.Env, h env.Handle) (bool, error) {
	k, err := e.TypeOf(h)
	if err != nil {
		return false, err
	}
	return k.IsNullish(), nil
}

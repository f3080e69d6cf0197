package shape

import (
	"reflect"

	"github.com/wippyai/hostbridge/convert"
	"github.com/wippyai/hostbridge/env"
	"github.com/wippyai/hostbridge/errors"
	"github.com/wippyai/hostbridge/host"
	"github.com/wippyai/hostbridge/value"
)

// Field is one declared field of a struct T.
type Field[T any] struct {
	toNative func(e *env.Env, h env.Handle, dst *T, path []string) error
	toHost   func(e *env.Env, src *T, path []string) (env.Handle, error)
	addr     func(*T) any
	goType   reflect.Type
	name     string
	typ      value.Type
	optional bool
}

// Required declares a field that must be present on the host object.
func Required[T, F any](name string, rule convert.Rule[F], get func(*T) *F) Field[T] {
	return Field[T]{
		name:   name,
		typ:    rule.Type(),
		goType: reflect.TypeFor[F](),
		addr:   func(t *T) any { return get(t) },
		toNative: func(e *env.Env, h env.Handle, dst *T, path []string) error {
			undefined, err := isUndefined(e, h)
			if err != nil {
				return err
			}
			if undefined {
				return errors.FieldMissing(errors.PhaseToNative, path, name)
			}
			v, err := rule.ToNativeAt(e, h, path...)
			if err != nil {
				return err
			}
			*get(dst) = v
			return nil
		},
		toHost: func(e *env.Env, src *T, path []string) (env.Handle, error) {
			return rule.ToHostAt(e, *get(src), path...)
		},
	}
}

// Optional declares a nullable field. Missing, undefined and null host values
// convert to nil; nil converts to null.
func Optional[T, F any](name string, rule convert.Rule[F], get func(*T) **F) Field[T] {
	return Field[T]{
		name:     name,
		typ:      value.OptionOf(rule.Type()),
		goType:   reflect.TypeFor[*F](),
		optional: true,
		addr:     func(t *T) any { return get(t) },
		toNative: func(e *env.Env, h env.Handle, dst *T, path []string) error {
			nullish, err := convert.Nullish(e, h)
			if err != nil {
				return err
			}
			if nullish {
				*get(dst) = nil
				return nil
			}
			v, err := rule.ToNativeAt(e, h, path...)
			if err != nil {
				return err
			}
			*get(dst) = &v
			return nil
		},
		toHost: func(e *env.Env, src *T, path []string) (env.Handle, error) {
			p := *get(src)
			if p == nil {
				return e.Null()
			}
			return rule.ToHostAt(e, *p, path...)
		},
	}
}

func isUndefined(e *env.Env, h env.Handle) (bool, error) {
	k, err := e.TypeOf(h)
	if err != nil {
		return false, err
	}
	return k == host.KindUndefined, nil
}

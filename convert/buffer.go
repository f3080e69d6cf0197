package convert

import (
	"github.com/wippyai/hostbridge/env"
	"github.com/wippyai/hostbridge/errors"
	"github.com/wippyai/hostbridge/value"
)

// Buffer copies bytes to and from host buffers. A nil slice becomes an empty
// buffer.
func Buffer() Rule[[]byte] {
	return New[[]byte](value.Scalar(value.CategoryBuffer), value.CostLinear,
		func(e *env.Env, h env.Handle, path []string) ([]byte, error) {
			n, err := e.BufferLength(h)
			if err != nil {
				return nil, expected(err, "[]byte", path)
			}
			if limit := e.Limits().MaxBufferSize; limit > 0 && n > limit {
				return nil, errors.LimitExceeded(errors.PhaseToNative, path, "buffer", n, limit)
			}
			return e.BufferCopy(h)
		},
		func(e *env.Env, v []byte, path []string) (env.Handle, error) {
			if limit := e.Limits().MaxBufferSize; limit > 0 && len(v) > limit {
				return env.Handle{}, errors.LimitExceeded(errors.PhaseToHost, path, "buffer", len(v), limit)
			}
			return e.CreateBuffer(v)
		},
	)
}

// BufferView exposes host buffers without copying. The view is valid only
// while the Env that produced it is open.
//
// Converting a view back to the host reuses the buffer when the view belongs
// to the same Env and copies it otherwise.
func BufferView() Rule[*env.BufferView] {
	return New[*env.BufferView](value.Scalar(value.CategoryBuffer), value.CostZeroCopy,
		func(e *env.Env, h env.Handle, path []string) (*env.BufferView, error) {
			v, err := e.BufferView(h)
			if err != nil {
				return nil, expected(err, "*env.BufferView", path)
			}
			return v, nil
		},
		func(e *env.Env, v *env.BufferView, path []string) (env.Handle, error) {
			if v == nil {
				return env.Handle{}, errors.InvalidInput(errors.PhaseToHost, "nil buffer view")
			}
			if v.Env() == e {
				if _, err := e.Ref(v.Handle()); err != nil {
					return env.Handle{}, err
				}
				return v.Handle(), nil
			}
			data, err := v.Bytes()
			if err != nil {
				return env.Handle{}, err
			}
			if limit := e.Limits().MaxBufferSize; limit > 0 && len(data) > limit {
				return env.Handle{}, errors.LimitExceeded(errors.PhaseToHost, path, "buffer", len(data), limit)
			}
			return e.CreateBuffer(data)
		},
	)
}

package convert

import (
	"github.com/wippyai/hostbridge/convert/internal/coerce"
	"github.com/wippyai/hostbridge/env"
	"github.com/wippyai/hostbridge/errors"
	"github.com/wippyai/hostbridge/host"
	"github.com/wippyai/hostbridge/value"
)

func number(e *env.Env, h env.Handle, goType string, path []string) (float64, error) {
	f, err := e.NumberValue(h)
	if err != nil {
		return 0, expected(err, goType, path)
	}
	return f, nil
}

// U32 converts uint32 to and from host numbers.
func U32() Rule[uint32] {
	return New[uint32](value.Num(value.U32), value.CostConstant,
		func(e *env.Env, h env.Handle, path []string) (uint32, error) {
			f, err := number(e, h, "uint32", path)
			if err != nil {
				return 0, err
			}
			v, ok := coerce.Uint32(f)
			if !ok {
				return 0, errors.RangeOverflow(errors.PhaseToNative, path, f, "u32")
			}
			return v, nil
		},
		func(e *env.Env, v uint32, path []string) (env.Handle, error) {
			return e.Number(float64(v))
		},
	)
}

// I32 converts int32 to and from host numbers.
func I32() Rule[int32] {
	return New[int32](value.Num(value.I32), value.CostConstant,
		func(e *env.Env, h env.Handle, path []string) (int32, error) {
			f, err := number(e, h, "int32", path)
			if err != nil {
				return 0, err
			}
			v, ok := coerce.Int32(f)
			if !ok {
				return 0, errors.RangeOverflow(errors.PhaseToNative, path, f, "i32")
			}
			return v, nil
		},
		func(e *env.Env, v int32, path []string) (env.Handle, error) {
			return e.Number(float64(v))
		},
	)
}

// I64 converts int64 to and from host numbers within ±(2^53-1).
func I64() Rule[int64] {
	return New[int64](value.Num(value.I64), value.CostConstant,
		func(e *env.Env, h env.Handle, path []string) (int64, error) {
			f, err := number(e, h, "int64", path)
			if err != nil {
				return 0, err
			}
			v, ok := coerce.Int64(f)
			if !ok {
				return 0, errors.RangeOverflow(errors.PhaseToNative, path, f, "i64")
			}
			return v, nil
		},
		func(e *env.Env, v int64, path []string) (env.Handle, error) {
			if !coerce.SafeInt64(v) {
				return env.Handle{}, errors.RangeOverflow(errors.PhaseToHost, path, v, "number")
			}
			return e.Number(float64(v))
		},
	)
}

// F64 converts float64 to and from host numbers unchanged.
func F64() Rule[float64] {
	return New[float64](value.Num(value.F64), value.CostConstant,
		func(e *env.Env, h env.Handle, path []string) (float64, error) {
			return number(e, h, "float64", path)
		},
		func(e *env.Env, v float64, path []string) (env.Handle, error) {
			return e.Number(v)
		},
	)
}

// Bool converts bool to and from host booleans.
func Bool() Rule[bool] {
	return New[bool](value.Scalar(value.CategoryBoolean), value.CostConstant,
		func(e *env.Env, h env.Handle, path []string) (bool, error) {
			b, err := e.BoolValue(h)
			if err != nil {
				return false, expected(err, "bool", path)
			}
			return b, nil
		},
		func(e *env.Env, v bool, path []string) (env.Handle, error) {
			return e.Boolean(v)
		},
	)
}

// String converts UTF-8 Go strings to and from UTF-16 host strings.
// Unpaired surrogates and invalid UTF-8 are encoding errors.
func String() Rule[string] {
	return New[string](value.Scalar(value.CategoryString), value.CostLinear,
		func(e *env.Env, h env.Handle, path []string) (string, error) {
			n, err := e.StringLength(h)
			if err != nil {
				return "", expected(err, "string", path)
			}
			if limit := e.Limits().MaxStringLength; limit > 0 && n > limit {
				return "", errors.LimitExceeded(errors.PhaseToNative, path, "string", n, limit)
			}
			return e.StringValue(h)
		},
		func(e *env.Env, v string, path []string) (env.Handle, error) {
			if limit := e.Limits().MaxStringLength; limit > 0 {
				if n := coerce.UTF16Len(v); n > limit {
					return env.Handle{}, errors.LimitExceeded(errors.PhaseToHost, path, "string", n, limit)
				}
			}
			return e.CreateString(v)
		},
	)
}

func exact(e *env.Env, h env.Handle, want host.Kind, goType string, path []string) error {
	k, err := e.TypeOf(h)
	if err != nil {
		return err
	}
	if k != want {
		return errors.TypeMismatch(errors.PhaseToNative, path, goType, k.String())
	}
	return nil
}

// Undefined accepts only the host undefined.
func Undefined() Rule[value.Undefined] {
	return New[value.Undefined](value.Scalar(value.CategoryUndefined), value.CostConstant,
		func(e *env.Env, h env.Handle, path []string) (value.Undefined, error) {
			return value.Undefined{}, exact(e, h, host.KindUndefined, "value.Undefined", path)
		},
		func(e *env.Env, _ value.Undefined, path []string) (env.Handle, error) {
			return e.Undefined()
		},
	)
}

// Null accepts only the host null.
func Null() Rule[value.Null] {
	return New[value.Null](value.Scalar(value.CategoryNull), value.CostConstant,
		func(e *env.Env, h env.Handle, path []string) (value.Null, error) {
			return value.Null{}, exact(e, h, host.KindNull, "value.Null", path)
		},
		func(e *env.Env, _ value.Null, path []string) (env.Handle, error) {
			return e.Null()
		},
	)
}

package registry

import (
	"context"
	stderrors "errors"
	"fmt"
	"reflect"

	"go.uber.org/zap"

	"github.com/wippyai/hostbridge/convert"
	"github.com/wippyai/hostbridge/env"
	"github.com/wippyai/hostbridge/errors"
	"github.com/wippyai/hostbridge/naming"
	"github.com/wippyai/hostbridge/value"
)

// Param declares one function parameter.
type Param[T any] struct {
	rule convert.Rule[T]
	name string
}

// P declares a parameter named name (snake_case) converted by rule.
func P[T any](name string, rule convert.Rule[T]) Param[T] {
	return Param[T]{name: name, rule: rule}
}

type invoker func(ctx context.Context, e *env.Env, args []env.Handle) (env.Handle, error)

// Function is a native function exported across the boundary.
type Function struct {
	invoke invoker
	sig    value.Function
}

// Signature returns the function's data view.
func (f *Function) Signature() value.Function {
	return f.sig
}

// Name returns the native snake_case name.
func (f *Function) Name() string {
	return f.sig.Name
}

// HostName returns the camelCase name visible to the host.
func (f *Function) HostName() string {
	return f.sig.HostName
}

// Invoke converts args, runs the native body and converts its result. Missing
// arguments read as undefined and extra arguments are ignored. A conversion
// failure aborts the call before the body runs.
func (f *Function) Invoke(ctx context.Context, e *env.Env, args []env.Handle) (env.Handle, error) {
	if n := len(f.sig.Params); len(args) < n {
		padded := make([]env.Handle, n)
		copy(padded, args)
		for i := len(args); i < n; i++ {
			h, err := e.Undefined()
			if err != nil {
				return env.Handle{}, err
			}
			padded[i] = h
		}
		args = padded
	}
	return f.invoke(ctx, e, args)
}

type param struct {
	goType reflect.Type
	typ    value.Type
	name   string
	valid  bool
}

func build(name string, ret value.Type, retGo reflect.Type, params []param, invoke invoker) (*Function, error) {
	fail := func(cause error) (*Function, error) {
		return nil, errors.Registration("function "+name, cause)
	}

	if err := naming.Validate(name); err != nil {
		return fail(err)
	}

	sig := value.Function{
		Name:     name,
		HostName: naming.Camel(name),
		Params:   make([]value.Param, len(params)),
		Result:   ret,
	}

	seen := make(map[string]bool, len(params))
	for i, p := range params {
		if err := naming.Validate(p.name); err != nil {
			return fail(err)
		}
		if seen[p.name] {
			return fail(errors.Duplicate("parameter", p.name))
		}
		seen[p.name] = true

		if !p.valid {
			return fail(errors.InvalidInput(errors.PhaseRegister, "parameter "+p.name+" has an incomplete rule"))
		}
		if err := value.Check(p.goType, p.typ); err != nil {
			return fail(err)
		}
		sig.Params[i] = value.Param{Name: p.name, Key: naming.Camel(p.name), Type: p.typ}
	}

	if err := value.Check(retGo, ret); err != nil {
		return fail(err)
	}

	return &Function{sig: sig, invoke: invoke}, nil
}

func describe[T any](p Param[T]) param {
	return param{name: p.name, typ: p.rule.Type(), goType: reflect.TypeFor[T](), valid: p.rule.Valid()}
}

func arg[T any](e *env.Env, args []env.Handle, i int, p Param[T]) (T, error) {
	v, err := p.rule.ToNativeAt(e, args[i], fmt.Sprintf("param[%d]", i))
	if err != nil {
		return v, withParam(err, p.name)
	}
	return v, nil
}

func withParam(err error, name string) error {
	var ce *errors.Error
	if !stderrors.As(err, &ce) {
		return err
	}
	c := *ce
	if c.Detail == "" {
		c.Detail = fmt.Sprintf("parameter %q", name)
	} else {
		c.Detail = fmt.Sprintf("parameter %q: %s", name, c.Detail)
	}
	return &c
}

func result[R any](e *env.Env, rule convert.Rule[R], v R) (env.Handle, error) {
	return rule.ToHostAt(e, v, "result")
}

// run calls the native body, turning returned errors and panics into
// native_error.
func run[R any](name string, body func() (R, error)) (r R, err error) {
	defer func() {
		if p := recover(); p != nil {
			Logger().Warn("native function panicked",
				zap.String("function", name),
				zap.Any("panic", p))
			err = errors.Native(name, fmt.Errorf("panic: %v", p))
		}
	}()
	r, err = body()
	if err != nil {
		return r, errors.Native(name, err)
	}
	return r, nil
}

// Func0 declares a function without parameters.
func Func0[R any](name string, ret convert.Rule[R],
	fn func(ctx context.Context) (R, error)) (*Function, error) {
	return build(name, ret.Type(), reflect.TypeFor[R](), nil,
		func(ctx context.Context, e *env.Env, args []env.Handle) (env.Handle, error) {
			r, err := run(name, func() (R, error) { return fn(ctx) })
			if err != nil {
				return env.Handle{}, err
			}
			return result(e, ret, r)
		})
}

// Func1 declares a function of one parameter.
func Func1[A, R any](name string, a Param[A], ret convert.Rule[R],
	fn func(ctx context.Context, a A) (R, error)) (*Function, error) {
	return build(name, ret.Type(), reflect.TypeFor[R](), []param{describe(a)},
		func(ctx context.Context, e *env.Env, args []env.Handle) (env.Handle, error) {
			av, err := arg(e, args, 0, a)
			if err != nil {
				return env.Handle{}, err
			}
			r, err := run(name, func() (R, error) { return fn(ctx, av) })
			if err != nil {
				return env.Handle{}, err
			}
			return result(e, ret, r)
		})
}

// Func2 declares a function of two parameters.
func Func2[A, B, R any](name string, a Param[A], b Param[B], ret convert.Rule[R],
	fn func(ctx context.Context, a A, b B) (R, error)) (*Function, error) {
	return build(name, ret.Type(), reflect.TypeFor[R](), []param{describe(a), describe(b)},
		func(ctx context.Context, e *env.Env, args []env.Handle) (env.Handle, error) {
			av, err := arg(e, args, 0, a)
			if err != nil {
				return env.Handle{}, err
			}
			bv, err := arg(e, args, 1, b)
			if err != nil {
				return env.Handle{}, err
			}
			r, err := run(name, func() (R, error) { return fn(ctx, av, bv) })
			if err != nil {
				return env.Handle{}, err
			}
			return result(e, ret, r)
		})
}

// Func3 declares a function of three parameters.
func Func3[A, B, C, R any](name string, a Param[A], b Param[B], c Param[C], ret convert.Rule[R],
	fn func(ctx context.Context, a A, b B, c C) (R, error)) (*Function, error) {
	return build(name, ret.Type(), reflect.TypeFor[R](), []param{describe(a), describe(b), describe(c)},
		func(ctx context.Context, e *env.Env, args []env.Handle) (env.Handle, error) {
			av, err := arg(e, args, 0, a)
			if err != nil {
				return env.Handle{}, err
			}
			bv, err := arg(e, args, 1, b)
			if err != nil {
				return env.Handle{}, err
			}
			cv, err := arg(e, args, 2, c)
			if err != nil {
				return env.Handle{}, err
			}
			r, err := run(name, func() (R, error) { return fn(ctx, av, bv, cv) })
			if err != nil {
				return env.Handle{}, err
			}
			return result(e, ret, r)
		})
}

package registry

import (
	"context"
	stderrors "errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wippyai/hostbridge/convert"
	"github.com/wippyai/hostbridge/env"
	"github.com/wippyai/hostbridge/errors"
	"github.com/wippyai/hostbridge/host"
	"github.com/wippyai/hostbridge/shape"
	"github.com/wippyai/hostbridge/value"
)

func sumFunc(t *testing.T, called *bool) *Function {
	t.Helper()
	f, err := Func2("sum", P("a", convert.U32()), P("b", convert.U32()), convert.U32(),
		func(_ context.Context, a, b uint32) (uint32, error) {
			if called != nil {
				*called = true
			}
			return a + b, nil
		})
	require.NoError(t, err)
	return f
}

func newTestEnv(t *testing.T) *env.Env {
	t.Helper()
	mem, err := host.NewLinearMemory(context.Background(), 1, 16)
	require.NoError(t, err)
	heap := host.NewHeap(mem)
	e := env.NewManager(heap, env.DefaultLimits()).Open()
	t.Cleanup(func() {
		e.Close()
		_ = heap.Close(context.Background())
	})
	return e
}

func numbers(t *testing.T, e *env.Env, fs ...float64) []env.Handle {
	t.Helper()
	out := make([]env.Handle, len(fs))
	for i, f := range fs {
		h, err := e.Number(f)
		require.NoError(t, err)
		out[i] = h
	}
	return out
}

func TestFunction_Signature(t *testing.T) {
	f, err := Func1("read_package_json", P("dir_name", convert.String()), convert.Bool(),
		func(context.Context, string) (bool, error) { return true, nil })
	require.NoError(t, err)

	sig := f.Signature()
	assert.Equal(t, "read_package_json", sig.Name)
	assert.Equal(t, "readPackageJson", sig.HostName)
	require.Len(t, sig.Params, 1)
	assert.Equal(t, "dirName", sig.Params[0].Key)
	assert.Equal(t, value.Scalar(value.CategoryString), sig.Params[0].Type)
	assert.Equal(t, value.Scalar(value.CategoryBoolean), sig.Result)
}

func TestFunction_Invoke(t *testing.T) {
	e := newTestEnv(t)
	f := sumFunc(t, nil)

	h, err := f.Invoke(context.Background(), e, numbers(t, e, 2, 3))
	require.NoError(t, err)
	n, err := e.NumberValue(h)
	require.NoError(t, err)
	assert.Equal(t, 5.0, n)

	// extra arguments are ignored
	h, err = f.Invoke(context.Background(), e, numbers(t, e, 1, 1, 99))
	require.NoError(t, err)
	n, _ = e.NumberValue(h)
	assert.Equal(t, 2.0, n)
}

func TestFunction_ArgumentErrors(t *testing.T) {
	e := newTestEnv(t)
	called := false
	f := sumFunc(t, &called)

	s, err := e.CreateString("x")
	require.NoError(t, err)
	a := numbers(t, e, 1)[0]

	_, err = f.Invoke(context.Background(), e, []env.Handle{a, s})
	require.Error(t, err)
	assert.False(t, called, "body must not run")

	var ce *errors.Error
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, errors.KindTypeMismatch, ce.Kind)
	assert.Equal(t, []string{"param[1]"}, ce.Path)
	assert.Contains(t, ce.Error(), `parameter "b"`)

	// a missing argument is undefined
	_, err = f.Invoke(context.Background(), e, []env.Handle{a})
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "undefined", ce.HostType)
	assert.False(t, called)
}

func TestWithParam_Wrapped(t *testing.T) {
	src := errors.RangeOverflow(errors.PhaseToNative, []string{"param[1]"}, -1.0, "u32")
	err := withParam(fmt.Errorf("strict u32: %w", src), "b")

	var ce *errors.Error
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, errors.KindRangeOverflow, ce.Kind)
	assert.Contains(t, ce.Detail, `parameter "b"`)
	assert.NotContains(t, src.Detail, "parameter", "source error untouched")

	plain := stderrors.New("plain")
	assert.Same(t, plain, withParam(plain, "b"))
}

func TestFunction_NativeErrors(t *testing.T) {
	e := newTestEnv(t)
	boom := stderrors.New("boom")

	failing, err := Func0("fail", convert.Undefined(),
		func(context.Context) (value.Undefined, error) { return value.Undefined{}, boom })
	require.NoError(t, err)
	_, err = failing.Invoke(context.Background(), e, nil)
	assert.True(t, errors.IsKind(err, errors.KindNative))
	assert.ErrorIs(t, err, boom)

	panicking, err := Func1("explode", P("n", convert.I32()), convert.I32(),
		func(_ context.Context, n int32) (int32, error) { return 10 / (n - n), nil })
	require.NoError(t, err)
	_, err = panicking.Invoke(context.Background(), e, numbers(t, e, 1))
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindNative))
	assert.Contains(t, err.Error(), "panic")
}

func TestFunction_ResultErrors(t *testing.T) {
	e := newTestEnv(t)

	f, err := Func0("huge", convert.I64(),
		func(context.Context) (int64, error) { return 1 << 60, nil })
	require.NoError(t, err)

	_, err = f.Invoke(context.Background(), e, nil)
	var ce *errors.Error
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, errors.PhaseToHost, ce.Phase)
	assert.Equal(t, errors.KindRangeOverflow, ce.Kind)
	assert.Equal(t, []string{"result"}, ce.Path)
}

func TestFunc3(t *testing.T) {
	e := newTestEnv(t)

	f, err := Func3("clamp", P("v", convert.F64()), P("lo", convert.F64()), P("hi", convert.F64()), convert.F64(),
		func(_ context.Context, v, lo, hi float64) (float64, error) {
			return max(lo, min(v, hi)), nil
		})
	require.NoError(t, err)

	h, err := f.Invoke(context.Background(), e, numbers(t, e, 12, 0, 10))
	require.NoError(t, err)
	n, _ := e.NumberValue(h)
	assert.Equal(t, 10.0, n)
}

func TestFunction_RegistrationErrors(t *testing.T) {
	noop := func(context.Context, uint32) (uint32, error) { return 0, nil }

	_, err := Func1("Bad", P("a", convert.U32()), convert.U32(), noop)
	assert.True(t, errors.IsKind(err, errors.KindRegistration))

	_, err = Func1("sha_256", P("a", convert.U32()), convert.U32(), noop)
	assert.Error(t, err, "names must round-trip")

	_, err = Func2("dup", P("a", convert.U32()), P("a", convert.U32()), convert.U32(),
		func(context.Context, uint32, uint32) (uint32, error) { return 0, nil })
	assert.Error(t, err)

	intRule := convert.New[int](value.Num(value.I64), value.CostConstant,
		func(*env.Env, env.Handle, []string) (int, error) { return 0, nil },
		func(*env.Env, int, []string) (env.Handle, error) { return env.Handle{}, nil })
	_, err = Func1("wide", P("n", intRule), convert.U32(),
		func(context.Context, int) (uint32, error) { return 0, nil })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported_type")

	incomplete := convert.New[uint32](value.Num(value.U32), value.CostConstant, nil, nil)
	_, err = Func1("incomplete", P("a", incomplete), convert.U32(), noop)
	assert.Error(t, err)
}

func TestRegistry(t *testing.T) {
	r := New()
	f := r.MustRegister(Func2("sum", P("a", convert.U32()), P("b", convert.U32()), convert.U32(),
		func(_ context.Context, a, b uint32) (uint32, error) { return a + b, nil }))

	got, ok := r.Lookup("sum")
	require.True(t, ok)
	assert.Same(t, f, got)

	err := r.Register(sumFunc(t, nil))
	assert.True(t, errors.IsKind(err, errors.KindDuplicate))

	greet := r.MustRegister(Func1("greet_user", P("name", convert.String()), convert.String(),
		func(_ context.Context, name string) (string, error) { return "hi " + name, nil }))

	got, ok = r.Lookup("greetUser")
	require.True(t, ok)
	assert.Same(t, greet, got)
	got, ok = r.LookupNative("greet_user")
	require.True(t, ok)
	assert.Same(t, greet, got)

	_, ok = r.Lookup("greet_user")
	assert.False(t, ok)

	resolved, err := r.Resolve("greet_user")
	require.NoError(t, err)
	assert.Same(t, greet, resolved)
	_, err = r.Resolve("missing")
	assert.True(t, errors.IsKind(err, errors.KindNotFound))

	assert.Equal(t, 2, r.Len())
	sigs := r.Signatures()
	assert.Equal(t, "sum", sigs[0].Name)
	assert.Equal(t, "greet_user", sigs[1].Name)

	assert.Panics(t, func() {
		r.MustRegister(Func0("Bad", convert.Bool(), func(context.Context) (bool, error) { return true, nil }))
	})
}

func TestRegistry_Concurrent(t *testing.T) {
	r := New()
	names := []string{"alpha", "beta", "gamma", "delta", "epsilon", "zeta", "eta", "theta"}

	var wg sync.WaitGroup
	for _, name := range names {
		wg.Add(1)
		go func() {
			defer wg.Done()
			f, err := Func0(name, convert.Bool(), func(context.Context) (bool, error) { return true, nil })
			if err == nil {
				_ = r.Register(f)
			}
			r.Lookup(name)
			r.Functions()
		}()
	}
	wg.Wait()
	assert.Equal(t, len(names), r.Len())
}

type item struct {
	Label string
	Tags  *[]string
}

type order struct {
	ID    uint32
	Items []item
}

func TestRegistry_Shapes(t *testing.T) {
	itemShape := shape.MustDescribe("item",
		shape.Required("label", convert.String(), func(i *item) *string { return &i.Label }),
		shape.Optional("tags", convert.ArrayOf(convert.String()), func(i *item) **[]string { return &i.Tags }),
	)
	orderShape := shape.MustDescribe("order",
		shape.Required("id", convert.U32(), func(o *order) *uint32 { return &o.ID }),
		shape.Required("items", convert.ArrayOf(itemShape.Rule()), func(o *order) *[]item { return &o.Items }),
	)

	r := New()
	r.MustRegister(Func1("first_item", P("order", orderShape.Rule()), convert.Option(itemShape.Rule()),
		func(_ context.Context, o order) (*item, error) {
			if len(o.Items) == 0 {
				return nil, nil
			}
			return &o.Items[0], nil
		}))
	r.MustRegister(Func1("make_item", P("label", convert.String()), itemShape.Rule(),
		func(_ context.Context, label string) (item, error) { return item{Label: label}, nil }))

	shapes := r.Shapes()
	require.Len(t, shapes, 2)
	assert.Equal(t, "Order", shapes[0].Name)
	assert.Equal(t, "Item", shapes[1].Name)
}

type pointA struct{ X uint32 }

type pointB struct{ Y string }

func TestRegistry_ShapeNameConflict(t *testing.T) {
	aShape := shape.MustDescribe("item",
		shape.Required("x", convert.U32(), func(p *pointA) *uint32 { return &p.X }))
	bShape := shape.MustDescribe("item",
		shape.Required("y", convert.String(), func(p *pointB) *string { return &p.Y }))

	r := New()
	r.MustRegister(Func0("get_a", aShape.Rule(),
		func(context.Context) (pointA, error) { return pointA{X: 1}, nil }))

	getB, err := Func0("get_b", bShape.Rule(),
		func(context.Context) (pointB, error) { return pointB{Y: "y"}, nil })
	require.NoError(t, err)

	err = r.Register(getB)
	var ce *errors.Error
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, errors.KindDuplicate, ce.Kind)
	assert.Contains(t, ce.Detail, "Item")

	_, ok := r.Lookup("getB")
	assert.False(t, ok, "rejected function must not be registered")
	require.Len(t, r.Shapes(), 1)
	assert.Same(t, aShape.Info(), r.Shapes()[0])

	assert.True(t, errors.IsKind(r.RegisterShape(bShape), errors.KindDuplicate))

	// the same descriptor again is fine
	require.NoError(t, r.RegisterShape(aShape))
	r.MustRegister(Func1("echo_a", P("a", aShape.Rule()), aShape.Rule(),
		func(_ context.Context, a pointA) (pointA, error) { return a, nil }))
	assert.Len(t, r.Shapes(), 1)
}

func TestRegistry_RegisterShapeOrder(t *testing.T) {
	aShape := shape.MustDescribe("point_a",
		shape.Required("x", convert.U32(), func(p *pointA) *uint32 { return &p.X }))
	bShape := shape.MustDescribe("point_b",
		shape.Required("y", convert.String(), func(p *pointB) *string { return &p.Y }))

	r := New()
	r.MustRegisterShape(bShape)
	r.MustRegister(Func0("get_a", aShape.Rule(),
		func(context.Context) (pointA, error) { return pointA{}, nil }))
	r.MustRegisterShape(aShape)

	shapes := r.Shapes()
	require.Len(t, shapes, 2)
	assert.Equal(t, "PointB", shapes[0].Name, "registered shape without any function")
	assert.Equal(t, "PointA", shapes[1].Name)

	assert.True(t, errors.IsKind(r.RegisterShape(nil), errors.KindInvalidInput))
}

func TestDefault(t *testing.T) {
	assert.Same(t, Default(), Default())
}

package convert

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wippyai/hostbridge/env"
	"github.com/wippyai/hostbridge/errors"
	"github.com/wippyai/hostbridge/value"
)

func TestBuffer_Copy(t *testing.T) {
	_, e := newTestEnv(t)

	in := []byte{1, 2, 3}
	h, err := Buffer().ToHost(e, in)
	require.NoError(t, err)

	in[0] = 99
	out, err := Buffer().ToNative(e, h)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, out, "host keeps its own copy")

	out[1] = 99
	again, err := Buffer().ToNative(e, h)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, again, "native result is an owned copy")

	empty := roundTrip(t, e, Buffer(), nil)
	assert.Empty(t, empty)
}

func TestBuffer_Limit(t *testing.T) {
	limits := env.DefaultLimits()
	limits.MaxBufferSize = 2
	_, e := newTestEnvWithLimits(t, limits)

	_, err := Buffer().ToHost(e, []byte{1, 2, 3})
	assert.True(t, errors.IsKind(err, errors.KindRangeOverflow))
}

func TestBufferView_ZeroCopy(t *testing.T) {
	m, _ := newTestEnv(t)
	e := m.Open()

	h, err := e.CreateBuffer([]byte("abc"))
	require.NoError(t, err)

	before := m.Heap().Memory().InUse()
	view, err := BufferView().ToNative(e, h)
	require.NoError(t, err)
	assert.Equal(t, before, m.Heap().Memory().InUse(), "view must not allocate")

	b, err := view.Bytes()
	require.NoError(t, err)
	b[0] = 'x'

	cp, err := Buffer().ToNative(e, h)
	require.NoError(t, err)
	assert.Equal(t, []byte("xbc"), cp)

	// same env: the buffer is reused
	back, err := BufferView().ToHost(e, view)
	require.NoError(t, err)
	assert.Equal(t, h, back)

	e.Close()

	_, err = view.Bytes()
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindScopeViolation))

	next := m.Open()
	defer next.Close()
	_, err = BufferView().ToHost(next, view)
	assert.True(t, errors.IsKind(err, errors.KindScopeViolation))
}

func TestArrayOf(t *testing.T) {
	_, e := newTestEnv(t)
	r := ArrayOf(U32())

	assert.Equal(t, "array<u32>", r.Type().String())
	assert.Equal(t, value.CostPerMember, r.Cost())
	assert.Equal(t, []uint32{1, 2, 3}, roundTrip(t, e, r, []uint32{1, 2, 3}))
	assert.Empty(t, roundTrip(t, e, r, nil))

	nested := ArrayOf(ArrayOf(String()))
	assert.Equal(t, [][]string{{"a"}, {}, {"b", "c"}}, roundTrip(t, e, nested, [][]string{{"a"}, {}, {"b", "c"}}))
}

func TestArrayOf_ElementError(t *testing.T) {
	m, e := newTestEnv(t)

	h := mustImport(t, e, m, []any{1.0, "two", 3.0})
	_, err := ArrayOf(U32()).ToNativeAt(e, h, "param[0]")
	require.Error(t, err)

	var ce *errors.Error
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, errors.KindTypeMismatch, ce.Kind)
	assert.Equal(t, []string{"param[0]", "[1]"}, ce.Path)
	assert.Contains(t, err.Error(), "param[0][1]")

	h = mustImport(t, e, m, []any{1.0, -2.0})
	_, err = ArrayOf(U32()).ToNative(e, h)
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, errors.KindRangeOverflow, ce.Kind)
	assert.Equal(t, []string{"[1]"}, ce.Path)

	notArray := mustImport(t, e, m, map[string]any{})
	_, err = ArrayOf(U32()).ToNative(e, notArray)
	assert.True(t, errors.IsKind(err, errors.KindTypeMismatch))
}

func TestArrayOf_Limit(t *testing.T) {
	limits := env.DefaultLimits()
	limits.MaxArrayLength = 2
	m, e := newTestEnvWithLimits(t, limits)

	_, err := ArrayOf(Bool()).ToHost(e, []bool{true, false, true})
	assert.True(t, errors.IsKind(err, errors.KindRangeOverflow))

	h := mustImport(t, e, m, []any{true, true, true})
	_, err = ArrayOf(Bool()).ToNative(e, h)
	assert.True(t, errors.IsKind(err, errors.KindRangeOverflow))
}

func TestArrayOf_RoundTripCount(t *testing.T) {
	m, e := newTestEnv(t)
	h := mustImport(t, e, m, []any{1.0, 2.0, 3.0})

	start := e.RoundTrips()
	_, err := ArrayOf(U32()).ToNative(e, h)
	require.NoError(t, err)
	// length, then one fetch and one read per element
	assert.Equal(t, 1+2*3, e.RoundTrips()-start)

	start = e.RoundTrips()
	_, err = ArrayOf(U32()).ToHost(e, []uint32{1, 2, 3, 4})
	require.NoError(t, err)
	assert.Equal(t, 1+2*4, e.RoundTrips()-start)
}

func TestMapOf(t *testing.T) {
	m, e := newTestEnv(t)
	r := MapOf(String())

	assert.Equal(t, "map<string>", r.Type().String())
	in := map[string]string{"react": "^18.0.0", "zod": "3.22.0"}
	assert.Equal(t, in, roundTrip(t, e, r, in))

	h, err := r.ToHost(e, in)
	require.NoError(t, err)
	keys, err := e.PropertyNames(h)
	require.NoError(t, err)
	assert.Equal(t, []string{"react", "zod"}, keys)

	start := e.RoundTrips()
	_, err = r.ToNative(e, h)
	require.NoError(t, err)
	// names, then per key: fetch, length, decode
	assert.Equal(t, 1+3*2, e.RoundTrips()-start)

	bad := mustImport(t, e, m, map[string]any{"react": 18.0})
	_, err = r.ToNativeAt(e, bad, "param[0]")
	var ce *errors.Error
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, []string{"param[0]", "react"}, ce.Path)
}

func TestOption(t *testing.T) {
	_, e := newTestEnv(t)
	r := Option(U32())

	assert.True(t, r.Type().Nullable)
	assert.Equal(t, "option<u32>", r.Type().String())

	null, _ := e.Null()
	v, err := r.ToNative(e, null)
	require.NoError(t, err)
	assert.Nil(t, v)

	undef, _ := e.Undefined()
	v, err = r.ToNative(e, undef)
	require.NoError(t, err)
	assert.Nil(t, v)

	n := uint32(7)
	out := roundTrip(t, e, r, &n)
	require.NotNil(t, out)
	assert.Equal(t, uint32(7), *out)

	h, err := r.ToHost(e, nil)
	require.NoError(t, err)
	k, _ := e.TypeOf(h)
	assert.Equal(t, "null", k.String())

	s, _ := e.CreateString("x")
	_, err = r.ToNative(e, s)
	assert.True(t, errors.IsKind(err, errors.KindTypeMismatch))
}

func TestObject_Dynamic(t *testing.T) {
	_, e := newTestEnv(t)

	in := map[string]any{
		"name":    "demo",
		"count":   3.0,
		"private": false,
		"tags":    []any{"a", nil},
		"nested":  map[string]any{"blob": []byte{1}, "u": value.Undefined{}},
	}
	assert.Equal(t, in, roundTrip(t, e, Object(), in))
	assert.Equal(t, map[string]any{}, roundTrip(t, e, Object(), nil))

	arr, _ := e.CreateArray(0)
	_, err := Object().ToNative(e, arr)
	assert.True(t, errors.IsKind(err, errors.KindTypeMismatch))

	_, err = Object().ToHost(e, map[string]any{"ch": make(chan int)})
	var ce *errors.Error
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, errors.KindUnsupportedType, ce.Kind)
	assert.Equal(t, []string{"ch"}, ce.Path)
}

func TestObject_Depth(t *testing.T) {
	limits := env.DefaultLimits()
	limits.MaxDepth = 3
	m, e := newTestEnvWithLimits(t, limits)

	ok := map[string]any{"a": map[string]any{"b": map[string]any{}}}
	assert.Equal(t, ok, roundTrip(t, e, Object(), ok))

	deep := map[string]any{"a": map[string]any{"b": map[string]any{"c": map[string]any{}}}}
	_, err := Object().ToHost(e, deep)
	assert.True(t, errors.IsKind(err, errors.KindRangeOverflow))

	h := mustImport(t, e, m, deep)
	_, err = Object().ToNative(e, h)
	assert.True(t, errors.IsKind(err, errors.KindRangeOverflow))
}

func TestObject_Cycles(t *testing.T) {
	limits := env.DefaultLimits()
	limits.MaxDepth = 0
	_, e := newTestEnvWithLimits(t, limits)

	self, err := e.CreateObject()
	require.NoError(t, err)
	require.NoError(t, e.SetNamed(self, "self", self))

	_, err = Object().ToNative(e, self)
	var ce *errors.Error
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, errors.KindRangeOverflow, ce.Kind)
	assert.Equal(t, []string{"self"}, ce.Path)

	arr, err := e.CreateArray(1)
	require.NoError(t, err)
	require.NoError(t, e.SetElement(arr, 0, arr))
	holder, err := e.CreateObject()
	require.NoError(t, err)
	require.NoError(t, e.SetNamed(holder, "list", arr))
	_, err = Object().ToNative(e, holder)
	assert.True(t, errors.IsKind(err, errors.KindRangeOverflow))

	// a value reachable twice without enclosing itself is not a cycle
	shared, err := e.CreateObject()
	require.NoError(t, err)
	one, _ := e.Number(1)
	require.NoError(t, e.SetNamed(shared, "x", one))
	twice, err := e.CreateObject()
	require.NoError(t, err)
	require.NoError(t, e.SetNamed(twice, "a", shared))
	require.NoError(t, e.SetNamed(twice, "b", shared))
	out, err := Object().ToNative(e, twice)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": map[string]any{"x": 1.0}, "b": map[string]any{"x": 1.0}}, out)
}

func TestObject_NativeCycles(t *testing.T) {
	limits := env.DefaultLimits()
	limits.MaxDepth = 0
	_, e := newTestEnvWithLimits(t, limits)

	m := map[string]any{}
	m["self"] = m
	_, err := Object().ToHost(e, m)
	var ce *errors.Error
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, errors.KindRangeOverflow, ce.Kind)
	assert.Equal(t, []string{"self"}, ce.Path)

	s := []any{nil}
	s[0] = s
	_, err = Object().ToHost(e, map[string]any{"list": s})
	assert.True(t, errors.IsKind(err, errors.KindRangeOverflow))

	shared := map[string]any{"x": 1.0}
	in := map[string]any{"a": shared, "b": shared}
	assert.Equal(t, in, roundTrip(t, e, Object(), in))
}

func TestObject_DynamicNumberKinds(t *testing.T) {
	_, e := newTestEnv(t)

	_, err := Object().ToHost(e, map[string]any{"f": float32(1.5)})
	var ce *errors.Error
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, errors.KindUnsupportedType, ce.Kind)
	assert.Equal(t, "float32", ce.GoType)

	h, err := Object().ToHost(e, map[string]any{"u": uint32(7), "i": int32(-7), "n": 2})
	require.NoError(t, err)
	out, err := Object().ToNative(e, h)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"u": 7.0, "i": -7.0, "n": 2.0}, out)
}

package convert

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wippyai/hostbridge/env"
	"github.com/wippyai/hostbridge/errors"
	"github.com/wippyai/hostbridge/value"
)

func TestScalars_RoundTrip(t *testing.T) {
	_, e := newTestEnv(t)

	assert.Equal(t, uint32(42), roundTrip(t, e, U32(), 42))
	assert.Equal(t, uint32(math.MaxUint32), roundTrip(t, e, U32(), math.MaxUint32))
	assert.Equal(t, int32(-5), roundTrip(t, e, I32(), -5))
	assert.Equal(t, int64(1<<53-1), roundTrip(t, e, I64(), 1<<53-1))
	assert.Equal(t, int64(-(1<<53 - 1)), roundTrip(t, e, I64(), -(1<<53 - 1)))
	assert.Equal(t, 0.1, roundTrip(t, e, F64(), 0.1))
	assert.True(t, math.IsInf(roundTrip(t, e, F64(), math.Inf(1)), 1))
	assert.True(t, math.IsNaN(roundTrip(t, e, F64(), math.NaN())))
	assert.Equal(t, "héllo 🌍", roundTrip(t, e, String(), "héllo 🌍"))
	assert.Equal(t, "", roundTrip(t, e, String(), ""))
	assert.True(t, roundTrip(t, e, Bool(), true))
	assert.False(t, roundTrip(t, e, Bool(), false))
	assert.Equal(t, value.Undefined{}, roundTrip(t, e, Undefined(), value.Undefined{}))
	assert.Equal(t, value.Null{}, roundTrip(t, e, Null(), value.Null{}))
}

func TestNumbers_RangeOverflow(t *testing.T) {
	_, e := newTestEnv(t)

	tests := []struct {
		name string
		in   float64
	}{
		{"u32 negative", -1},
		{"u32 fraction", 1.5},
		{"u32 too large", math.MaxUint32 + 1},
		{"u32 nan", math.NaN()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, err := e.Number(tt.in)
			require.NoError(t, err)
			_, err = U32().ToNative(e, h)
			require.Error(t, err)
			assert.True(t, errors.IsKind(err, errors.KindRangeOverflow), "got %v", err)
		})
	}

	h, _ := e.Number(math.MaxInt32 + 1)
	_, err := I32().ToNative(e, h)
	assert.True(t, errors.IsKind(err, errors.KindRangeOverflow))

	h, _ = e.Number(1 << 53)
	_, err = I64().ToNative(e, h)
	assert.True(t, errors.IsKind(err, errors.KindRangeOverflow))

	_, err = I64().ToHost(e, 1<<53)
	require.Error(t, err)
	var ce *errors.Error
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, errors.PhaseToHost, ce.Phase)
	assert.Equal(t, errors.KindRangeOverflow, ce.Kind)
}

func TestScalars_TypeMismatch(t *testing.T) {
	_, e := newTestEnv(t)

	s, err := e.CreateString("five")
	require.NoError(t, err)

	_, err = U32().ToNativeAt(e, s, "param[0]")
	require.Error(t, err)

	var ce *errors.Error
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, errors.PhaseToNative, ce.Phase)
	assert.Equal(t, errors.KindTypeMismatch, ce.Kind)
	assert.Equal(t, "uint32", ce.GoType)
	assert.Equal(t, "string", ce.HostType)
	assert.Equal(t, []string{"param[0]"}, ce.Path)

	n, _ := e.Number(1)
	_, err = Bool().ToNative(e, n)
	assert.True(t, errors.IsKind(err, errors.KindTypeMismatch))
	_, err = String().ToNative(e, n)
	assert.True(t, errors.IsKind(err, errors.KindTypeMismatch))
	_, err = Null().ToNative(e, n)
	assert.True(t, errors.IsKind(err, errors.KindTypeMismatch))

	u, _ := e.Undefined()
	_, err = Null().ToNative(e, u)
	assert.True(t, errors.IsKind(err, errors.KindTypeMismatch), "undefined is not null")
}

func TestString_Encoding(t *testing.T) {
	_, e := newTestEnv(t)

	lone, err := e.CreateStringUTF16([]uint16{'o', 'k', 0xDC01})
	require.NoError(t, err)

	_, err = String().ToNativeAt(e, lone, "param[0]")
	var ce *errors.Error
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, errors.KindEncoding, ce.Kind)
	assert.Equal(t, errors.PhaseToNative, ce.Phase)
	assert.Equal(t, []string{"param[0]"}, ce.Path)

	_, err = String().ToHost(e, "bad\xc3")
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, errors.KindEncoding, ce.Kind)
	assert.Equal(t, errors.PhaseToHost, ce.Phase)
}

func TestString_Limits(t *testing.T) {
	limits := env.DefaultLimits()
	limits.MaxStringLength = 4
	_, e := newTestEnvWithLimits(t, limits)

	_, err := String().ToHost(e, "🌍🌍🌍")
	assert.True(t, errors.IsKind(err, errors.KindRangeOverflow))

	h, err := e.CreateString("abcde")
	require.NoError(t, err)
	_, err = String().ToNative(e, h)
	assert.True(t, errors.IsKind(err, errors.KindRangeOverflow))

	assert.Equal(t, "abcd", roundTrip(t, e, String(), "abcd"))
}

func TestFor(t *testing.T) {
	r, err := For[uint32]()
	require.NoError(t, err)
	assert.Equal(t, value.Num(value.U32), r.Type())
	assert.Equal(t, value.CostConstant, r.Cost())

	s, err := For[string]()
	require.NoError(t, err)
	assert.Equal(t, value.CostLinear, s.Cost())

	v, err := For[*env.BufferView]()
	require.NoError(t, err)
	assert.Equal(t, value.CostZeroCopy, v.Cost())

	o, err := For[map[string]any]()
	require.NoError(t, err)
	assert.True(t, o.Valid())

	_, err = For[int]()
	assert.True(t, errors.IsKind(err, errors.KindUnsupportedType))

	_, err = For[[]uint32]()
	assert.True(t, errors.IsKind(err, errors.KindUnsupportedType))
}

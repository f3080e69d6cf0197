package convert

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wippyai/hostbridge/env"
	"github.com/wippyai/hostbridge/host"
)

func newTestEnv(t *testing.T) (*env.Manager, *env.Env) {
	t.Helper()
	return newTestEnvWithLimits(t, env.DefaultLimits())
}

func newTestEnvWithLimits(t *testing.T, limits env.Limits) (*env.Manager, *env.Env) {
	t.Helper()
	mem, err := host.NewLinearMemory(context.Background(), 1, 64)
	require.NoError(t, err)
	heap := host.NewHeap(mem)
	m := env.NewManager(heap, limits)
	e := m.Open()
	t.Cleanup(func() {
		e.Close()
		_ = heap.Close(context.Background())
	})
	return m, e
}

// roundTrip converts v to the host and back.
func roundTrip[T any](t *testing.T, e *env.Env, r Rule[T], v T) T {
	t.Helper()
	h, err := r.ToHost(e, v)
	require.NoError(t, err)
	out, err := r.ToNative(e, h)
	require.NoError(t, err)
	return out
}

func mustImport(t *testing.T, e *env.Env, m *env.Manager, v any) env.Handle {
	t.Helper()
	ref, err := m.Heap().Import(v)
	require.NoError(t, err)
	h, err := e.Wrap(ref)
	require.NoError(t, err)
	m.Heap().Release(ref)
	return h
}

package runtime

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/wippyai/hostbridge/config"
	"github.com/wippyai/hostbridge/env"
	"github.com/wippyai/hostbridge/errors"
	"github.com/wippyai/hostbridge/host"
	"github.com/wippyai/hostbridge/registry"
)

// Runtime owns a host heap and dispatches calls to a registry.
type Runtime struct {
	heap *host.Heap
	envs *env.Manager
	reg  *registry.Registry
	log  *zap.Logger
}

// New creates a runtime with a fresh host heap sized by cfg.
func New(ctx context.Context, cfg *config.Config, reg *registry.Registry) (*Runtime, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if reg == nil {
		return nil, errors.InvalidInput(errors.PhaseConfig, "registry cannot be nil")
	}

	mem, err := host.NewLinearMemory(ctx, cfg.Memory.InitialPages, cfg.Memory.MaxPages)
	if err != nil {
		return nil, err
	}
	heap := host.NewHeap(mem)

	log := Logger()
	envs := env.NewManager(heap, cfg.EnvLimits())
	envs.Subscribe(&logObserver{log: log})

	log.Debug("runtime created",
		zap.Uint32("initial_pages", cfg.Memory.InitialPages),
		zap.Uint32("max_pages", cfg.Memory.MaxPages),
		zap.Int("functions", reg.Len()))

	return &Runtime{heap: heap, envs: envs, reg: reg, log: log}, nil
}

// Close releases the host heap. Refs returned by Call become invalid.
func (r *Runtime) Close(ctx context.Context) error {
	return r.heap.Close(ctx)
}

// Host returns the host heap.
func (r *Runtime) Host() *host.Heap {
	return r.heap
}

// Envs returns the Env manager, for observers and diagnostics.
func (r *Runtime) Envs() *env.Manager {
	return r.envs
}

// Registry returns the registry calls are dispatched to.
func (r *Runtime) Registry() *registry.Registry {
	return r.reg
}

// Call invokes the function registered under name with host arguments. The
// arguments stay owned by the caller. The returned ref is owned by the caller
// and must be released.
func (r *Runtime) Call(ctx context.Context, name string, args ...host.Ref) (host.Ref, error) {
	fn, err := r.reg.Resolve(name)
	if err != nil {
		return host.Invalid, err
	}

	e := r.envs.Open()
	defer e.Close()

	start := time.Now()
	handles := make([]env.Handle, len(args))
	for i, a := range args {
		if handles[i], err = e.Wrap(a); err != nil {
			return host.Invalid, errors.At(errors.PhaseCall, err, []string{argPath(i)})
		}
	}

	h, err := fn.Invoke(ctx, e, handles)
	if err != nil {
		r.logFailure(e, fn, err)
		return host.Invalid, err
	}

	ref, err := e.Escape(h)
	if err != nil {
		return host.Invalid, err
	}

	r.log.Debug("call completed",
		zap.String("call_id", e.ID().String()),
		zap.String("function", fn.HostName()),
		zap.Int("round_trips", e.RoundTrips()),
		zap.Duration("elapsed", time.Since(start)))
	return ref, nil
}

// CallValues is Call with dynamic Go values on both sides, as accepted by
// host.Heap.Import and produced by host.Heap.Export.
func (r *Runtime) CallValues(ctx context.Context, name string, args ...any) (any, error) {
	refs := make([]host.Ref, 0, len(args))
	defer func() {
		for _, ref := range refs {
			r.heap.Release(ref)
		}
	}()

	for i, a := range args {
		ref, err := r.heap.Import(a)
		if err != nil {
			return nil, errors.At(errors.PhaseCall, err, []string{argPath(i)})
		}
		refs = append(refs, ref)
	}

	ref, err := r.Call(ctx, name, refs...)
	if err != nil {
		return nil, err
	}
	defer r.heap.Release(ref)
	return r.heap.Export(ref)
}

// logFailure logs conversion failures as rejected calls and everything else
// as failed calls.
func (r *Runtime) logFailure(e *env.Env, fn *registry.Function, err error) {
	msg := "call failed"
	if errors.IsConversion(err) {
		msg = "call rejected"
	}
	kind, _ := errors.KindOf(err)
	r.log.Debug(msg,
		zap.String("call_id", e.ID().String()),
		zap.String("function", fn.HostName()),
		zap.String("kind", string(kind)),
		zap.Int("round_trips", e.RoundTrips()),
		zap.Error(err))
}

func argPath(i int) string {
	return fmt.Sprintf("arg[%d]", i)
}

package registry

import (
	"sync"

	"go.uber.org/zap"

	"github.com/wippyai/hostbridge/errors"
	"github.com/wippyai/hostbridge/naming"
	"github.com/wippyai/hostbridge/value"
)

// Registry holds exported functions by host name. It is safe for concurrent
// registration and lookup.
type Registry struct {
	funcs  map[string]*Function
	order  []*Function
	shapes value.ShapeSet
	mu     sync.RWMutex
}

// Described is implemented by shape descriptors.
type Described interface {
	Info() *value.Shape
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{funcs: make(map[string]*Function)}
}

var defaultRegistry = New()

// Default returns the process-wide registry that packages register into
// from init functions.
func Default() *Registry {
	return defaultRegistry
}

// Register adds f and binds the shapes it references. Registering a second
// function with the same name fails, as does referencing a shape whose name is
// already bound to a different shape.
func (r *Registry) Register(f *Function) error {
	if f == nil {
		return errors.InvalidInput(errors.PhaseRegister, "nil function")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.funcs[f.HostName()]; ok {
		return errors.Duplicate("function", f.Name())
	}
	if err := r.shapes.Add(f.sig.Types()...); err != nil {
		return err
	}
	r.funcs[f.HostName()] = f
	r.order = append(r.order, f)

	Logger().Debug("function registered",
		zap.String("name", f.Name()),
		zap.String("host_name", f.HostName()),
		zap.Int("params", len(f.sig.Params)))
	return nil
}

// MustRegister registers the result of a FuncN constructor and panics on any
// error:
//
//	registry.Default().MustRegister(registry.Func1("greet", ...))
func (r *Registry) MustRegister(f *Function, err error) *Function {
	if err != nil {
		panic(err)
	}
	if err := r.Register(f); err != nil {
		panic(err)
	}
	return f
}

// RegisterShape declares a shape ahead of any function that uses it. Shapes
// are declared in registration order. Registering the same shape twice is a
// no-op; a different shape under a bound name fails.
func (r *Registry) RegisterShape(d Described) error {
	if d == nil || d.Info() == nil {
		return errors.InvalidInput(errors.PhaseRegister, "nil shape")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.shapes.Add(value.ShapeOf(d.Info())); err != nil {
		return err
	}
	Logger().Debug("shape registered", zap.String("name", d.Info().Name))
	return nil
}

// MustRegisterShape registers d and panics on error.
func (r *Registry) MustRegisterShape(d Described) {
	if err := r.RegisterShape(d); err != nil {
		panic(err)
	}
}

// Lookup finds a function by its camelCase host name.
func (r *Registry) Lookup(hostName string) (*Function, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.funcs[hostName]
	return f, ok
}

// LookupNative finds a function by its snake_case native name.
func (r *Registry) LookupNative(name string) (*Function, bool) {
	f, ok := r.Lookup(naming.Camel(name))
	if !ok || f.Name() != name {
		return nil, false
	}
	return f, true
}

// Resolve finds a function by host or native name.
func (r *Registry) Resolve(name string) (*Function, error) {
	if f, ok := r.Lookup(name); ok {
		return f, nil
	}
	if f, ok := r.LookupNative(name); ok {
		return f, nil
	}
	return nil, errors.NotFound(errors.PhaseCall, "function", name)
}

// Functions returns the registered functions in registration order.
func (r *Registry) Functions() []*Function {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]*Function(nil), r.order...)
}

// Len returns the number of registered functions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// Signatures returns the data view of every function in registration order.
func (r *Registry) Signatures() []value.Function {
	funcs := r.Functions()
	out := make([]value.Function, len(funcs))
	for i, f := range funcs {
		out[i] = f.Signature()
	}
	return out
}

// Shapes returns every bound shape in registration order. A shape first seen
// through a function follows the shapes registered before that function.
func (r *Registry) Shapes() []*value.Shape {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.shapes.Shapes()
}

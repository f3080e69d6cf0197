package env

import (
	"github.com/google/uuid"

	"github.com/wippyai/hostbridge/errors"
	"github.com/wippyai/hostbridge/host"
)

// Env is the scope of one boundary crossing.
type Env struct {
	mgr        *Manager
	arena      *[]host.Ref
	gen        uint64
	roundTrips int
	id         uuid.UUID
	closed     bool
}

// ID returns the call id used for log correlation.
func (e *Env) ID() uuid.UUID {
	return e.id
}

// Generation returns the Env's generation.
func (e *Env) Generation() uint64 {
	return e.gen
}

// Limits returns the conversion limits in force.
func (e *Env) Limits() Limits {
	return e.mgr.limits
}

// RoundTrips returns the number of host operations performed so far.
func (e *Env) RoundTrips() int {
	return e.roundTrips
}

// Closed reports whether Close has been called.
func (e *Env) Closed() bool {
	return e.closed
}

// Handles returns the number of handles issued.
func (e *Env) Handles() int {
	if e.closed {
		return 0
	}
	return len(*e.arena)
}

// Close invalidates every handle of the Env and releases the host values it
// holds. Close is idempotent.
func (e *Env) Close() {
	if e.closed {
		return
	}
	n := len(*e.arena)
	e.closed = true
	e.mgr.release(e.arena)
	e.arena = nil
	e.mgr.notify(Event{
		Type:       EventClosed,
		EnvID:      e.id,
		Generation: e.gen,
		Handles:    n,
		RoundTrips: e.roundTrips,
	})
}

// Wrap issues a handle for a host value owned by someone else. The Env
// retains ref until Close.
func (e *Env) Wrap(ref host.Ref) (Handle, error) {
	if err := e.live(); err != nil {
		return Handle{}, err
	}
	if err := e.mgr.heap.Retain(ref); err != nil {
		return Handle{}, err
	}
	return e.adopt(ref), nil
}

// Ref returns the host ref behind h. The ref is borrowed from the Env.
func (e *Env) Ref(h Handle) (host.Ref, error) {
	return e.resolve(h)
}

// Escape returns the host ref behind h, retained for the caller. This is the
// only way for a value to outlive its Env; the caller must release it.
func (e *Env) Escape(h Handle) (host.Ref, error) {
	ref, err := e.resolve(h)
	if err != nil {
		return host.Invalid, err
	}
	if err := e.mgr.heap.Retain(ref); err != nil {
		return host.Invalid, err
	}
	e.mgr.notify(Event{Type: EventEscaped, EnvID: e.id, Generation: e.gen, Handle: h})
	return ref, nil
}

// adopt takes ownership of a ref the heap just created.
func (e *Env) adopt(ref host.Ref) Handle {
	*e.arena = append(*e.arena, ref)
	h := Handle{gen: e.gen, idx: uint32(len(*e.arena) - 1)}
	if len(e.mgr.observers) > 0 {
		e.mgr.notify(Event{Type: EventHandleCreated, EnvID: e.id, Generation: e.gen, Handle: h})
	}
	return h
}

// borrow issues a handle for a ref the heap lent out, such as a property.
func (e *Env) borrow(ref host.Ref) (Handle, error) {
	if err := e.mgr.heap.Retain(ref); err != nil {
		return Handle{}, err
	}
	return e.adopt(ref), nil
}

func (e *Env) live() error {
	if e.closed {
		return e.violation(Handle{}, errors.ScopeViolation("env %d is closed", e.gen))
	}
	return nil
}

func (e *Env) resolve(h Handle) (host.Ref, error) {
	if e.closed {
		return host.Invalid, e.violation(h, errors.ScopeViolation("%s used after env %d closed", h, e.gen))
	}
	if h.gen != e.gen {
		return host.Invalid, e.violation(h, errors.ScopeViolation("%s used in env %d", h, e.gen))
	}
	if int(h.idx) >= len(*e.arena) {
		return host.Invalid, e.violation(h, errors.ScopeViolation("%s was never issued", h))
	}
	return (*e.arena)[h.idx], nil
}

func (e *Env) violation(h Handle, err *errors.Error) error {
	e.mgr.notify(Event{
		Type:       EventScopeViolation,
		EnvID:      e.id,
		Generation: e.gen,
		Handle:     h,
		Detail:     err.Detail,
	})
	return err
}

func (e *Env) trip() error {
	if err := e.live(); err != nil {
		return err
	}
	e.roundTrips++
	return nil
}

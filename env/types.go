package env

import (
	"fmt"

	"github.com/google/uuid"
)

// Handle addresses a host value inside one Env. The zero Handle is never valid.
type Handle struct {
	gen uint64
	idx uint32
}

// Generation returns the generation of the Env that issued h.
func (h Handle) Generation() uint64 {
	return h.gen
}

// IsZero reports whether h is the zero Handle.
func (h Handle) IsZero() bool {
	return h.gen == 0
}

func (h Handle) String() string {
	return fmt.Sprintf("handle(%d:%d)", h.gen, h.idx)
}

// EventType is an Env lifecycle event.
type EventType uint8

const (
	EventOpened EventType = iota
	EventHandleCreated
	EventEscaped
	EventClosed
	EventScopeViolation
)

func (t EventType) String() string {
	switch t {
	case EventOpened:
		return "opened"
	case EventHandleCreated:
		return "handle_created"
	case EventEscaped:
		return "escaped"
	case EventClosed:
		return "closed"
	case EventScopeViolation:
		return "scope_violation"
	}
	return "unknown"
}

// Event describes an Env lifecycle change.
type Event struct {
	Detail     string
	Handle     Handle
	Generation uint64
	Handles    int
	RoundTrips int
	EnvID      uuid.UUID
	Type       EventType
}

// Observer receives Env lifecycle events.
type Observer interface {
	OnEnvEvent(Event)
}

// Limits bounds the size of values converted inside an Env.
// A zero field means unlimited.
type Limits struct {
	MaxStringLength int // UTF-16 code units
	MaxBufferSize   int // bytes
	MaxArrayLength  int
	MaxDepth        int // nesting of untyped objects and arrays
}

// DefaultLimits returns the limits used when none are configured.
func DefaultLimits() Limits {
	return Limits{
		MaxStringLength: 16 << 20,
		MaxBufferSize:   64 << 20,
		MaxArrayLength:  1 << 20,
		MaxDepth:        64,
	}
}

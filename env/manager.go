package env

import (
	"sync"

	"github.com/google/uuid"

	"github.com/wippyai/hostbridge/host"
)

// Manager issues Envs over a single host heap.
type Manager struct {
	heap      *host.Heap
	arenas    sync.Pool
	observers []Observer
	limits    Limits
	nextGen   uint64
	open      int
}

// NewManager creates a Manager for heap.
func NewManager(heap *host.Heap, limits Limits) *Manager {
	return &Manager{
		heap:   heap,
		limits: limits,
		arenas: sync.Pool{
			New: func() any {
				a := make([]host.Ref, 0, 16)
				return &a
			},
		},
	}
}

// Heap returns the host heap.
func (m *Manager) Heap() *host.Heap {
	return m.heap
}

// Limits returns the conversion limits applied to every Env.
func (m *Manager) Limits() Limits {
	return m.limits
}

// Active returns the number of Envs opened and not yet closed.
func (m *Manager) Active() int {
	return m.open
}

// Subscribe adds an observer for lifecycle events.
func (m *Manager) Subscribe(o Observer) {
	m.observers = append(m.observers, o)
}

// Unsubscribe removes an observer.
func (m *Manager) Unsubscribe(o Observer) {
	for i, obs := range m.observers {
		if obs == o {
			m.observers = append(m.observers[:i], m.observers[i+1:]...)
			return
		}
	}
}

// Open issues a fresh Env with a new generation.
func (m *Manager) Open() *Env {
	m.nextGen++
	m.open++

	arena := m.arenas.Get().(*[]host.Ref)
	e := &Env{
		mgr:   m,
		id:    uuid.New(),
		gen:   m.nextGen,
		arena: arena,
	}
	m.notify(Event{Type: EventOpened, EnvID: e.id, Generation: e.gen})
	return e
}

func (m *Manager) release(arena *[]host.Ref) {
	for _, r := range *arena {
		m.heap.Release(r)
	}
	clear(*arena)
	*arena = (*arena)[:0]
	m.arenas.Put(arena)
	m.open--
}

func (m *Manager) notify(e Event) {
	for _, o := range m.observers {
		o.OnEnvEvent(e)
	}
}

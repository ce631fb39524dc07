package status

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/matheus3301/gemchat/internal/bus"
)

// State represents a daemon runtime state.
type State string

const (
	Booting   State = "BOOTING"
	Hydrating State = "HYDRATING"
	Ready     State = "READY"
	Degraded  State = "DEGRADED"
	Stopping  State = "STOPPING"
	Error     State = "ERROR"
)

// validTransitions defines allowed state transitions.
var validTransitions = map[State][]State{
	Booting:   {Hydrating, Stopping, Error},
	Hydrating: {Ready, Degraded, Stopping, Error},
	Ready:     {Degraded, Stopping, Error},
	Degraded:  {Ready, Stopping, Error},
	Stopping:  {},
	Error:     {Booting, Stopping},
}

// Machine tracks and enforces daemon runtime state transitions.
type Machine struct {
	mu      sync.RWMutex
	current State
	bus     *bus.Bus
}

// NewMachine creates a new state machine starting in Booting state.
func NewMachine(b *bus.Bus) *Machine {
	return &Machine{
		current: Booting,
		bus:     b,
	}
}

// Current returns the current state.
func (m *Machine) Current() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Transition attempts to move to a new state. Returns error if transition is invalid.
func (m *Machine) Transition(to State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.transitionLocked(to)
}

// TransitionFrom moves to a new state only when the machine is currently in
// from. It reports whether the transition happened.
func (m *Machine) TransitionFrom(from, to State) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current != from {
		return false
	}
	return m.transitionLocked(to) == nil
}

func (m *Machine) transitionLocked(to State) error {
	allowed := validTransitions[m.current]
	if !slices.Contains(allowed, to) {
		return fmt.Errorf("invalid transition from %s to %s", m.current, to)
	}
	from := m.current
	m.current = to
	m.bus.Publish(bus.Event{
		Kind: bus.KindStatusChanged,
		Payload: StatusChange{
			From: from,
			To:   to,
		},
	})
	return nil
}

// Follow subscribes to store events on b and flips between Ready and Degraded:
// a failed write degrades the daemon and the next successful mutation restores
// it. The returned function stops following.
func (m *Machine) Follow(b *bus.Bus) func() {
	ch, unsub := b.Subscribe("", 256)
	done := make(chan struct{})
	stopped := make(chan struct{})

	go func() {
		defer close(stopped)
		for {
			select {
			case evt := <-ch:
				m.apply(evt.Kind)
			case <-done:
				return
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			unsub()
			close(done)
			<-stopped
		})
	}
}

func (m *Machine) apply(kind string) {
	switch {
	case kind == bus.KindStoreWriteFailed:
		m.TransitionFrom(Ready, Degraded)
	case strings.HasPrefix(kind, "room."), strings.HasPrefix(kind, "message."):
		m.TransitionFrom(Degraded, Ready)
	}
}

// StatusChange is the payload for status change events.
type StatusChange struct {
	From State `json:"from"`
	To   State `json:"to"`
}

// Package gamestate provides the top-level mode machine (menu, playing,
// inventory, paused) and the session counters kept alongside it. The mode
// decides which subsystems receive input and update ticks.
package gamestate

import (
	"fmt"
	"sync"
)

// Mode is the top-level game mode.
type Mode int

const (
	Menu Mode = iota
	Playing
	InventoryOpen
	Paused
)

func (m Mode) String() string {
	switch m {
	case Menu:
		return "menu"
	case Playing:
		return "playing"
	case InventoryOpen:
		return "inventory"
	case Paused:
		return "paused"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// ParseMode is the inverse of Mode.String.
func ParseMode(s string) (Mode, error) {
	for m := Menu; m <= Paused; m++ {
		if m.String() == s {
			return m, nil
		}
	}
	return Menu, fmt.Errorf("unknown game mode %q", s)
}

// Counter names kept by the session.
const (
	CounterTicks        = "ticks"
	CounterChestsOpened = "chests_opened"
	CounterSwings       = "swings"
	CounterFootsteps    = "footsteps"
)

// Machine holds the current mode and the session counters.
type Machine struct {
	mu sync.RWMutex

	mode Mode

	// Counters are integer values (e.g., "chests_opened", "footsteps")
	counters map[string]int

	// OnTransition is called after every successful mode change.
	OnTransition func(from, to Mode)
}

// New creates a machine in Menu mode.
func New() *Machine {
	return &Machine{counters: make(map[string]int)}
}

// Mode returns the current mode.
func (m *Machine) Mode() Mode {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.mode
}

// transition moves from one of the allowed modes to to. It reports false and
// leaves the mode unchanged if the current mode is not in from.
func (m *Machine) transition(to Mode, from ...Mode) bool {
	m.mu.Lock()
	cur := m.mode
	ok := false
	for _, f := range from {
		if cur == f {
			ok = true
			break
		}
	}
	if ok {
		m.mode = to
	}
	m.mu.Unlock()

	if ok && m.OnTransition != nil {
		m.OnTransition(cur, to)
	}
	return ok
}

// StartGame moves Menu to Playing.
func (m *Machine) StartGame() bool { return m.transition(Playing, Menu) }

// TogglePause flips between Playing and Paused.
func (m *Machine) TogglePause() bool {
	if m.Mode() == Paused {
		return m.transition(Playing, Paused)
	}
	return m.transition(Paused, Playing)
}

// OpenInventory moves Playing to InventoryOpen.
func (m *Machine) OpenInventory() bool { return m.transition(InventoryOpen, Playing) }

// CloseInventory moves InventoryOpen back to Playing. The caller is expected
// to unlink any open container.
func (m *Machine) CloseInventory() bool { return m.transition(Playing, InventoryOpen) }

// ReturnToMenu moves Paused to Menu and clears the counters.
func (m *Machine) ReturnToMenu() bool {
	if !m.transition(Menu, Paused) {
		return false
	}
	m.Reset()
	return true
}

// Simulates reports whether entities and the player advance this tick.
func (m *Machine) Simulates() bool { return m.Mode() == Playing }

// AcceptsMovement reports whether movement and look input apply.
func (m *Machine) AcceptsMovement() bool { return m.Mode() == Playing }

// AcceptsPointer reports whether the mouse cursor is free for UI.
func (m *Machine) AcceptsPointer() bool {
	mode := m.Mode()
	return mode == InventoryOpen || mode == Paused
}

// AcceptsMenu reports whether the main menu handles input.
func (m *Machine) AcceptsMenu() bool { return m.Mode() == Menu }

// --- Counter operations ---

// Counter returns the value of a counter (0 if not set)
func (m *Machine) Counter(name string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.counters[name]
}

// SetCounter sets a counter to a specific value
func (m *Machine) SetCounter(name string, value int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counters[name] = value
}

// IncrementCounter adds delta to a counter (can be negative)
func (m *Machine) IncrementCounter(name string, delta int) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counters[name] += delta
	return m.counters[name]
}

// Counters returns a copy of all counters.
func (m *Machine) Counters() map[string]int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]int, len(m.counters))
	for k, v := range m.counters {
		out[k] = v
	}
	return out
}

// Reset clears all counters (for new game)
func (m *Machine) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counters = make(map[string]int)
}

// Restore forces the machine into mode with the given counters. It is for
// loading a saved session and does not fire OnTransition.
func (m *Machine) Restore(mode Mode, counters map[string]int) error {
	if mode < Menu || mode > Paused {
		return fmt.Errorf("unknown game mode %d", int(mode))
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mode = mode
	m.counters = make(map[string]int, len(counters))
	for k, v := range counters {
		m.counters[k] = v
	}
	return nil
}

// Debug returns a string representation of the machine for debugging
func (m *Machine) Debug() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return fmt.Sprintf("Machine{Mode: %s, Counters: %d}", m.mode, len(m.counters))
}

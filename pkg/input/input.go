// Package input turns keyboard press/release events into the per-frame
// driving controls read by the vehicle models.
package input

import "strings"

// Action is one of the fixed driving controls.
type Action int

const (
	Forward Action = iota
	Backward
	Left
	Right
	Brake

	actionCount
)

var actionNames = [...]string{"forward", "backward", "left", "right", "brake"}

func (a Action) String() string {
	if a < 0 || a >= actionCount {
		return "unknown"
	}
	return actionNames[a]
}

// Actions lists every action in declaration order.
func Actions() []Action {
	return []Action{Forward, Backward, Left, Right, Brake}
}

// State is a read-only snapshot of which actions are held.
type State struct {
	pressed [actionCount]bool
}

// NewState builds a snapshot with the given actions held. Used by scripted drivers and tests.
func NewState(held ...Action) State {
	var s State
	for _, a := range held {
		if a >= 0 && a < actionCount {
			s.pressed[a] = true
		}
	}
	return s
}

// Pressed reports whether a is held.
func (s State) Pressed(a Action) bool {
	if a < 0 || a >= actionCount {
		return false
	}
	return s.pressed[a]
}

func (s State) Forward() bool  { return s.pressed[Forward] }
func (s State) Backward() bool { return s.pressed[Backward] }
func (s State) Left() bool     { return s.pressed[Left] }
func (s State) Right() bool    { return s.pressed[Right] }
func (s State) Brake() bool    { return s.pressed[Brake] }

// Steering returns +1 for left, -1 for right and 0 otherwise. Left wins when both are held.
func (s State) Steering() float64 {
	switch {
	case s.pressed[Left]:
		return 1
	case s.pressed[Right]:
		return -1
	default:
		return 0
	}
}

// String lists the held actions, e.g. "forward+left".
func (s State) String() string {
	var held []string
	for _, a := range Actions() {
		if s.pressed[a] {
			held = append(held, a.String())
		}
	}
	if len(held) == 0 {
		return "none"
	}
	return strings.Join(held, "+")
}

// KeyMap binds key names to actions.
type KeyMap map[string]Action

// DefaultKeyMap is WASD plus arrows, with space as the brake.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		"w":          Forward,
		"arrowup":    Forward,
		"s":          Backward,
		"arrowdown":  Backward,
		"a":          Left,
		"arrowleft":  Left,
		"d":          Right,
		"arrowright": Right,
		" ":          Brake,
		"space":      Brake,
	}
}

// Lookup resolves a key name case-insensitively.
func (m KeyMap) Lookup(key string) (Action, bool) {
	a, ok := m[strings.ToLower(key)]
	return a, ok
}

// Collector accumulates press/release events between frames.
// Event handlers only ever flip booleans here; the frame reads a Snapshot.
type Collector struct {
	keys  KeyMap
	state State
}

// NewCollector creates a collector using keys, or DefaultKeyMap when keys is nil.
func NewCollector(keys KeyMap) *Collector {
	if keys == nil {
		keys = DefaultKeyMap()
	}
	return &Collector{keys: keys}
}

// KeyDown handles a key-down event. It reports whether the key is bound.
func (c *Collector) KeyDown(key string) bool {
	a, ok := c.keys.Lookup(key)
	if ok {
		c.Press(a)
	}
	return ok
}

// KeyUp handles a key-up event. It reports whether the key is bound.
func (c *Collector) KeyUp(key string) bool {
	a, ok := c.keys.Lookup(key)
	if ok {
		c.Release(a)
	}
	return ok
}

// Press marks a as held. Repeated presses are idempotent.
func (c *Collector) Press(a Action) {
	if a >= 0 && a < actionCount {
		c.state.pressed[a] = true
	}
}

// Release marks a as released.
func (c *Collector) Release(a Action) {
	if a >= 0 && a < actionCount {
		c.state.pressed[a] = false
	}
}

// ReleaseAll clears every action, e.g. when the window loses focus.
func (c *Collector) ReleaseAll() {
	c.state = State{}
}

// Snapshot returns a copy of the current state.
func (c *Collector) Snapshot() State {
	return c.state
}

package input

import (
	"fmt"
	"strconv"
	"strings"
)

// Step holds a set of actions for a number of frames.
type Step struct {
	State  State
	Frames int
}

// Script is a scripted driver: a list of steps played back frame by frame.
type Script []Step

// ParseScript parses a comma separated list of "actions:frames" steps,
// e.g. "forward:120,forward+left:45,none:60,brake:30".
func ParseScript(s string) (Script, error) {
	var script Script
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		actions, frames, ok := strings.Cut(part, ":")
		if !ok {
			return nil, fmt.Errorf("script step %q: missing frame count", part)
		}
		n, err := strconv.Atoi(strings.TrimSpace(frames))
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("script step %q: invalid frame count", part)
		}
		state, err := parseActions(actions)
		if err != nil {
			return nil, fmt.Errorf("script step %q: %w", part, err)
		}
		script = append(script, Step{State: state, Frames: n})
	}
	if len(script) == 0 {
		return nil, fmt.Errorf("empty script")
	}
	return script, nil
}

func parseActions(s string) (State, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "none" || s == "" {
		return State{}, nil
	}

	var held []Action
	for _, name := range strings.Split(s, "+") {
		a, ok := actionByName(strings.TrimSpace(name))
		if !ok {
			return State{}, fmt.Errorf("unknown action %q", name)
		}
		held = append(held, a)
	}
	return NewState(held...), nil
}

func actionByName(name string) (Action, bool) {
	for _, a := range Actions() {
		if a.String() == name {
			return a, true
		}
	}
	return 0, false
}

// Frames is the total length of the script.
func (s Script) Frames() int {
	total := 0
	for _, step := range s {
		total += step.Frames
	}
	return total
}

// At returns the input for frame (zero based). Past the end it holds nothing.
func (s Script) At(frame int) State {
	for _, step := range s {
		if frame < step.Frames {
			return step.State
		}
		frame -= step.Frames
	}
	return State{}
}

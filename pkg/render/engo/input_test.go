// pkg/render/engo/input_test.go
package engo

import (
	"reflect"
	"testing"

	"github.com/opd-ai/go-trackdrive/pkg/input"
)

type recordingSink struct {
	events []string
}

func (s *recordingSink) KeyDown(key string) bool {
	s.events = append(s.events, "down:"+key)
	return true
}

func (s *recordingSink) KeyUp(key string) bool {
	s.events = append(s.events, "up:"+key)
	return true
}

func TestDriveBindings_AllBound(t *testing.T) {
	keys := input.DefaultKeyMap()
	seen := map[string]bool{}

	for _, b := range DriveBindings() {
		if _, ok := keys.Lookup(b.Name); !ok {
			t.Errorf("binding %q is not in the default key map", b.Name)
		}
		if seen[b.Name] {
			t.Errorf("binding %q registered twice", b.Name)
		}
		seen[b.Name] = true
	}

	for _, a := range input.Actions() {
		bound := false
		for name := range seen {
			if got, _ := keys.Lookup(name); got == a {
				bound = true
			}
		}
		if !bound {
			t.Errorf("action %v has no key", a)
		}
	}
}

func TestInputSystem_ApplyForwardsEdges(t *testing.T) {
	sink := &recordingSink{}
	is := NewInputSystem(sink)

	is.apply([]string{"w", "a"}, []string{"space"})

	want := []string{"up:space", "down:w", "down:a"}
	if !reflect.DeepEqual(sink.events, want) {
		t.Errorf("events = %v, want %v", sink.events, want)
	}
}

func TestInputSystem_DrivesCollector(t *testing.T) {
	c := input.NewCollector(nil)
	is := NewInputSystem(c)

	is.apply([]string{"arrowup", "arrowleft"}, nil)
	state := c.Snapshot()
	if !state.Forward() || !state.Left() || state.Right() {
		t.Errorf("unexpected state after presses: %v", state)
	}

	is.apply(nil, []string{"arrowleft"})
	state = c.Snapshot()
	if !state.Forward() || state.Left() {
		t.Errorf("unexpected state after release: %v", state)
	}
}

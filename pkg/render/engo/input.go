// pkg/render/engo/input.go
package engo

import (
	"github.com/EngoEngine/ecs"
	"github.com/EngoEngine/engo"
	"github.com/EngoEngine/engo/common"
)

const buttonResetZoom = "resetZoom"

// KeySink receives key events by name, as engine.Session does.
type KeySink interface {
	KeyDown(key string) bool
	KeyUp(key string) bool
}

// KeyBinding ties a key name understood by the input collector to a physical key.
type KeyBinding struct {
	Name string
	Key  engo.Key
}

// DriveBindings are the driving keys: WASD, the arrows and space.
func DriveBindings() []KeyBinding {
	return []KeyBinding{
		{"w", engo.KeyW},
		{"s", engo.KeyS},
		{"a", engo.KeyA},
		{"d", engo.KeyD},
		{"arrowup", engo.KeyArrowUp},
		{"arrowdown", engo.KeyArrowDown},
		{"arrowleft", engo.KeyArrowLeft},
		{"arrowright", engo.KeyArrowRight},
		{"space", engo.KeySpace},
	}
}

// InputSystem turns engo key edges into key events for the session.
// It only forwards edges; the session's collector holds the state.
type InputSystem struct {
	sink     KeySink
	bindings []KeyBinding
}

// NewInputSystem creates a new input system
func NewInputSystem(sink KeySink) *InputSystem {
	return &InputSystem{
		sink:     sink,
		bindings: DriveBindings(),
	}
}

// Add satisfies the ecs.System interface
func (is *InputSystem) Add(basic *ecs.BasicEntity, render *common.RenderComponent, space *common.SpaceComponent) {
}

// Remove satisfies the ecs.System interface
func (is *InputSystem) Remove(basic ecs.BasicEntity) {
}

// Priority orders the system within the engo world.
func (is *InputSystem) Priority() int { return priorityInput }

// Update forwards the key edges of this frame.
func (is *InputSystem) Update(dt float32) {
	var pressed, released []string
	for _, b := range is.bindings {
		button := engo.Input.Button(b.Name)
		if button.JustPressed() {
			pressed = append(pressed, b.Name)
		}
		if button.JustReleased() {
			released = append(released, b.Name)
		}
	}
	is.apply(pressed, released)
}

// apply forwards releases before presses.
func (is *InputSystem) apply(pressed, released []string) {
	for _, name := range released {
		is.sink.KeyUp(name)
	}
	for _, name := range pressed {
		is.sink.KeyDown(name)
	}
}

// SetupInputBindings registers one engo button per driving key plus the camera keys.
func SetupInputBindings() {
	for _, b := range DriveBindings() {
		engo.Input.RegisterButton(b.Name, b.Key)
	}
	engo.Input.RegisterButton(buttonResetZoom, engo.KeyR)
}

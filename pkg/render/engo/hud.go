// pkg/render/engo/hud.go
package engo

import (
	"fmt"
	"image/color"
	"strings"
	"sync"

	"github.com/EngoEngine/ecs"
	"github.com/EngoEngine/engo"
	"github.com/EngoEngine/engo/common"

	"github.com/opd-ai/go-trackdrive/pkg/engine"
	"github.com/opd-ai/go-trackdrive/pkg/event"
)

// noticeDuration is how long a notice stays on screen, in seconds.
const noticeDuration = 3.0

// Notice is a transient HUD message.
type Notice struct {
	Text string
	TTL  float32
}

// HUDSystem manages the heads-up display: the speedometer plus notices
// raised by session events.
type HUDSystem struct {
	mu      sync.Mutex
	speed   string
	mode    string
	notices []Notice
	subs    []*event.Subscription

	// Text entity, present only once a font is attached
	text     *sprite
	font     *common.Font
	shown    string
	hudColor color.Color
}

// NewHUDSystem creates a new HUD system listening on bus.
func NewHUDSystem(bus *event.Bus) *HUDSystem {
	hud := &HUDSystem{
		speed:    engine.Telemetry{}.String(),
		hudColor: color.RGBA{255, 255, 255, 255},
	}
	if bus != nil {
		hud.subs = append(hud.subs,
			bus.Subscribe(event.VehicleReset, hud.onReset),
			bus.Subscribe(event.MeshSkipped, hud.onMeshSkipped),
			bus.Subscribe(event.AssetLoadFailed, hud.onLoadFailed),
		)
	}
	return hud
}

// Add satisfies the ecs.System interface
func (hud *HUDSystem) Add(basic *ecs.BasicEntity, render *common.RenderComponent, space *common.SpaceComponent) {
}

// Remove satisfies the ecs.System interface
func (hud *HUDSystem) Remove(basic ecs.BasicEntity) {
}

// Priority orders the system within the engo world.
func (hud *HUDSystem) Priority() int { return priorityHUD }

// Update ages notices and refreshes the text entity.
func (hud *HUDSystem) Update(dt float32) {
	hud.mu.Lock()
	kept := hud.notices[:0]
	for _, n := range hud.notices {
		n.TTL -= dt
		if n.TTL > 0 {
			kept = append(kept, n)
		}
	}
	hud.notices = kept
	hud.mu.Unlock()

	hud.refreshText()
}

// AttachText creates the on-screen text entity in rs using font.
func (hud *HUDSystem) AttachText(rs *common.RenderSystem, font *common.Font) {
	if rs == nil || font == nil {
		return
	}
	hud.font = font
	hud.text = &sprite{BasicEntity: ecs.NewBasic()}
	hud.text.RenderComponent = common.RenderComponent{
		Drawable: common.Text{Font: font, Text: hud.Text()},
		Color:    hud.hudColor,
	}
	hud.text.RenderComponent.SetShader(common.TextHUDShader)
	hud.text.RenderComponent.SetZIndex(100)
	hud.text.SpaceComponent = common.SpaceComponent{Position: engo.Point{X: 10, Y: 10}}
	rs.Add(&hud.text.BasicEntity, &hud.text.RenderComponent, &hud.text.SpaceComponent)
}

func (hud *HUDSystem) refreshText() {
	if hud.text == nil {
		return
	}
	text := hud.Text()
	if text == hud.shown {
		return
	}
	hud.text.Drawable = common.Text{Font: hud.font, Text: text}
	hud.shown = text
}

// SetTelemetry updates the speedometer.
func (hud *HUDSystem) SetTelemetry(t engine.Telemetry) {
	hud.mu.Lock()
	defer hud.mu.Unlock()
	hud.speed = t.String()
	hud.mode = string(t.Mode)
}

// AddNotice shows text for a few seconds.
func (hud *HUDSystem) AddNotice(text string) {
	hud.mu.Lock()
	defer hud.mu.Unlock()
	hud.notices = append(hud.notices, Notice{Text: text, TTL: noticeDuration})
}

// Notices returns the notices currently on screen.
func (hud *HUDSystem) Notices() []Notice {
	hud.mu.Lock()
	defer hud.mu.Unlock()
	return append([]Notice(nil), hud.notices...)
}

// Text is the full HUD text, one line per item.
func (hud *HUDSystem) Text() string {
	hud.mu.Lock()
	defer hud.mu.Unlock()

	lines := []string{hud.speed}
	if hud.mode != "" {
		lines = append(lines, "Mode: "+hud.mode)
	}
	for _, n := range hud.notices {
		lines = append(lines, n.Text)
	}
	return strings.Join(lines, "\n")
}

// Close stops listening for session events.
func (hud *HUDSystem) Close() {
	for _, s := range hud.subs {
		s.Cancel()
	}
	hud.subs = nil
}

func (hud *HUDSystem) onReset(e event.Event) {
	if r, ok := e.(*event.ResetEvent); ok {
		hud.AddNotice(fmt.Sprintf("Off track at y=%.1f, back to start", r.FellFrom.Y()))
	}
}

func (hud *HUDSystem) onMeshSkipped(e event.Event) {
	if a, ok := e.(*event.AssetEvent); ok {
		hud.AddNotice("Skipped track mesh " + a.Name)
	}
}

func (hud *HUDSystem) onLoadFailed(e event.Event) {
	if a, ok := e.(*event.AssetEvent); ok {
		hud.AddNotice("Failed to load " + a.Path)
	}
}

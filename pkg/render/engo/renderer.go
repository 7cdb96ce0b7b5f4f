// pkg/render/engo/renderer.go
package engo

import (
	"image/color"

	"github.com/EngoEngine/ecs"
	"github.com/EngoEngine/engo"
	"github.com/EngoEngine/engo/common"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/opd-ai/go-trackdrive/pkg/assets"
	"github.com/opd-ai/go-trackdrive/pkg/engine"
	"github.com/opd-ai/go-trackdrive/pkg/render"
)

// Car footprint in metres.
const (
	carWidth  = 1.2
	carLength = 2.5

	cameraMargin = 200
)

var (
	roadColor = color.RGBA{70, 70, 75, 255}
	carColor  = color.RGBA{210, 40, 40, 255}
)

// sprite is one drawable entity.
type sprite struct {
	ecs.BasicEntity
	common.RenderComponent
	common.SpaceComponent
}

// EngoRenderer implements render.Renderer on top of engo's RenderSystem.
// The track entity is built on the first frame that has meshes; the car
// entity is moved every frame.
type EngoRenderer struct {
	renderSystem *common.RenderSystem
	projection   Projection
	assets       *AssetManager
	hud          *HUDSystem

	track *sprite
	car   *sprite
}

var _ render.Renderer = (*EngoRenderer)(nil)

// NewEngoRenderer creates a new Engo-based renderer
func NewEngoRenderer(rs *common.RenderSystem, projection Projection, am *AssetManager, hud *HUDSystem) *EngoRenderer {
	return &EngoRenderer{
		renderSystem: rs,
		projection:   projection,
		assets:       am,
		hud:          hud,
	}
}

// Clear implements render.Renderer. Engo clears the frame itself.
func (r *EngoRenderer) Clear() {}

// Present implements render.Renderer. Engo presents the frame itself.
func (r *EngoRenderer) Present() {}

// RenderTrack implements render.Renderer.
func (r *EngoRenderer) RenderTrack(meshes []assets.MeshInstance) {
	if r.track != nil {
		return
	}
	space, points, ok := trackShape(meshes, r.projection)
	if !ok {
		return
	}

	r.track = &sprite{BasicEntity: ecs.NewBasic(), SpaceComponent: space}
	r.track.RenderComponent = common.RenderComponent{
		Drawable: common.ComplexTriangles{Points: points},
		Color:    roadColor,
	}
	r.track.RenderComponent.SetZIndex(0)
	r.renderSystem.Add(&r.track.BasicEntity, &r.track.RenderComponent, &r.track.SpaceComponent)

	common.CameraBounds = engo.AABB{
		Min: engo.Point{X: space.Position.X - cameraMargin, Y: space.Position.Y - cameraMargin},
		Max: engo.Point{X: space.Position.X + space.Width + cameraMargin, Y: space.Position.Y + space.Height + cameraMargin},
	}
}

// RenderVehicle implements render.Renderer.
func (r *EngoRenderer) RenderVehicle(t engine.Telemetry) {
	if r.car == nil {
		r.car = &sprite{BasicEntity: ecs.NewBasic()}
		r.car.RenderComponent = common.RenderComponent{
			Drawable: r.assets.CarSprite(),
			Color:    carColor,
		}
		r.car.RenderComponent.SetZIndex(10)
		r.renderSystem.Add(&r.car.BasicEntity, &r.car.RenderComponent, &r.car.SpaceComponent)
	}
	r.car.SpaceComponent = carSpace(t, r.projection)
}

// RenderHUD implements render.Renderer.
func (r *EngoRenderer) RenderHUD(t engine.Telemetry) {
	if r.hud != nil {
		r.hud.SetTelemetry(t)
	}
}

// trackShape flattens meshes into triangle points relative to the box
// they span, as ComplexTriangles expects.
func trackShape(meshes []assets.MeshInstance, p Projection) (common.SpaceComponent, []engo.Point, bool) {
	var abs []engo.Point
	for _, m := range meshes {
		pos, idx := m.Geometry.Positions, m.Geometry.Indices
		for i := 0; i+2 < len(idx); i += 3 {
			tri, ok := projectTriangle(pos, idx[i:i+3], p)
			if ok {
				abs = append(abs, tri[:]...)
			}
		}
	}
	if len(abs) == 0 {
		return common.SpaceComponent{}, nil, false
	}

	lo, hi := abs[0], abs[0]
	for _, pt := range abs[1:] {
		lo.X, lo.Y = min(lo.X, pt.X), min(lo.Y, pt.Y)
		hi.X, hi.Y = max(hi.X, pt.X), max(hi.Y, pt.Y)
	}
	w, h := hi.X-lo.X, hi.Y-lo.Y
	if w <= 0 || h <= 0 {
		return common.SpaceComponent{}, nil, false
	}

	rel := make([]engo.Point, len(abs))
	for i, pt := range abs {
		rel[i] = engo.Point{X: (pt.X - lo.X) / w, Y: (pt.Y - lo.Y) / h}
	}
	return common.SpaceComponent{Position: lo, Width: w, Height: h}, rel, true
}

func projectTriangle(pos []float64, idx []uint32, p Projection) ([3]engo.Point, bool) {
	var tri [3]engo.Point
	for k, i := range idx {
		j := int(i) * 3
		if j+2 >= len(pos) {
			return tri, false
		}
		tri[k] = p.Point(mgl64.Vec3{pos[j], pos[j+1], pos[j+2]})
	}
	return tri, true
}

// carSpace places the car footprint centred on the vehicle and turned to its heading.
func carSpace(t engine.Telemetry, p Projection) common.SpaceComponent {
	space := common.SpaceComponent{
		Width:    p.Length(carWidth),
		Height:   p.Length(carLength),
		Rotation: p.Rotation(t.Heading),
	}
	space.SetCenter(p.Point(t.Position))
	return space
}

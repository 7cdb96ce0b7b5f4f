// pkg/render/engo/scene.go
package engo

import (
	"image/color"

	"github.com/EngoEngine/ecs"
	"github.com/EngoEngine/engo"
	"github.com/EngoEngine/engo/common"

	"github.com/opd-ai/go-trackdrive/pkg/engine"
	"github.com/opd-ai/go-trackdrive/pkg/render"
)

var grassColor = color.RGBA{60, 110, 50, 255}

// System priorities; higher runs first, rendering runs last.
const (
	priorityInput   = 30
	prioritySession = 20
	priorityCamera  = 10
	priorityHUD     = 5
)

// DriveScene shows a session from above: the track, the car and the HUD.
// Engo's frame drives the session, so the session must not also be run
// with Session.Run.
type DriveScene struct {
	session    *engine.Session
	projection Projection

	// Rendering components
	renderer *EngoRenderer
	camera   *CameraSystem
	input    *InputSystem
	hud      *HUDSystem
	assets   *AssetManager
	draw     engine.FrameFunc
}

// NewDriveScene creates a scene for session at the given map scale.
func NewDriveScene(session *engine.Session, pixelsPerMetre float32) *DriveScene {
	if pixelsPerMetre <= 0 {
		pixelsPerMetre = DefaultPixelsPerMetre
	}
	return &DriveScene{
		session:    session,
		projection: Projection{PixelsPerMetre: pixelsPerMetre},
		assets:     NewAssetManager(),
	}
}

// Type returns the scene type (required by Engo)
func (scene *DriveScene) Type() string {
	return "DriveScene"
}

// Preload is called before the scene starts (required by Engo).
// Assets are generated in code, so there is nothing to fetch.
func (scene *DriveScene) Preload() {}

// Setup is called when the scene starts (required by Engo)
func (scene *DriveScene) Setup(u engo.Updater) {
	world, ok := u.(*ecs.World)
	if !ok {
		scene.session.Logger().Error(scene.session.Context(), "Unexpected updater type", nil)
		return
	}
	common.SetBackground(grassColor)

	rs := &common.RenderSystem{}
	world.AddSystem(rs)

	if err := scene.assets.LoadAssets(); err != nil {
		scene.session.Logger().Warn(scene.session.Context(), "Failed to load HUD assets, drawing without text",
			"error", err.Error(),
		)
	}

	SetupInputBindings()
	scene.input = NewInputSystem(scene.session)
	world.AddSystem(scene.input)

	world.AddSystem(&sessionSystem{scene: scene})

	scene.camera = NewCameraSystem(scene.projection)
	world.AddSystem(scene.camera)

	scene.hud = NewHUDSystem(scene.session.EventBus)
	scene.hud.AttachText(rs, scene.assets.Font())
	world.AddSystem(scene.hud)

	scene.renderer = NewEngoRenderer(rs, scene.projection, scene.assets, scene.hud)
	scene.draw = render.FrameFunc(scene.renderer)

	scene.session.Start()
}

// Exit is called when the window closes (Engo's Exiter).
func (scene *DriveScene) Exit() {
	if scene.hud != nil {
		scene.hud.Close()
	}
	scene.session.ReleaseAll()
	scene.session.Stop()
}

// frame advances the session by dt and redraws it.
func (scene *DriveScene) frame(dt float32) {
	if !scene.session.Update(float64(dt)) {
		return
	}
	if scene.camera != nil {
		scene.camera.SetTarget(scene.session.Camera().Target)
	}
	if scene.draw != nil {
		scene.draw(scene.session)
	}
}

// sessionSystem steps the session once per engo frame, after input is read.
type sessionSystem struct {
	scene *DriveScene
}

func (s *sessionSystem) Update(dt float32) { s.scene.frame(dt) }

func (s *sessionSystem) Priority() int { return prioritySession }

func (s *sessionSystem) Remove(ecs.BasicEntity) {}

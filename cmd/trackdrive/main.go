// cmd/trackdrive/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/EngoEngine/engo"
	"golang.org/x/sync/errgroup"

	"github.com/opd-ai/go-trackdrive/pkg/assets"
	"github.com/opd-ai/go-trackdrive/pkg/config"
	"github.com/opd-ai/go-trackdrive/pkg/engine"
	"github.com/opd-ai/go-trackdrive/pkg/health"
	"github.com/opd-ai/go-trackdrive/pkg/input"
	"github.com/opd-ai/go-trackdrive/pkg/logging"
	"github.com/opd-ai/go-trackdrive/pkg/render"
	engorender "github.com/opd-ai/go-trackdrive/pkg/render/engo"
)

// options are the command line flags.
type options struct {
	configPath   string
	writeDefault bool
	mode         string
	renderer     string
	width        int
	height       int
	cols         int
	rows         int
	fullscreen   bool
	scale        float64
	frames       int
	every        int
	script       string
	healthAddr   string
}

func parseFlags() options {
	var o options
	flag.StringVar(&o.configPath, "config", "trackdrive.yaml", "Path to a JSON or YAML configuration file")
	flag.BoolVar(&o.writeDefault, "default", false, "Write the default configuration to -config and exit")
	flag.StringVar(&o.mode, "mode", "", "Vehicle model: 'physics' or 'kinematic' (overrides config)")
	flag.StringVar(&o.renderer, "renderer", "engo", "Renderer type: 'engo', 'terminal' or 'null'")
	flag.IntVar(&o.width, "width", 1024, "Window width (engo only)")
	flag.IntVar(&o.height, "height", 768, "Window height (engo only)")
	flag.IntVar(&o.cols, "cols", 80, "Map columns (terminal only)")
	flag.IntVar(&o.rows, "rows", 24, "Map rows (terminal only)")
	flag.BoolVar(&o.fullscreen, "fullscreen", false, "Run in fullscreen mode (engo only)")
	flag.Float64Var(&o.scale, "scale", engorender.DefaultPixelsPerMetre, "Pixels per metre (engo only)")
	flag.IntVar(&o.frames, "frames", 0, "Simulate this many frames without a clock and exit (terminal/null only)")
	flag.IntVar(&o.every, "every", 1, "Draw every n-th frame (terminal/null only)")
	flag.StringVar(&o.script, "script", "", "Scripted input, e.g. 'forward:120,forward+left:45,none:60'")
	flag.StringVar(&o.healthAddr, "health", "", "Serve /health and /ready on this address, e.g. ':8080'")
	flag.Parse()
	return o
}

func main() {
	logger := logging.NewLogger()
	ctx := context.Background()
	opts := parseFlags()

	if opts.writeDefault {
		if err := config.SaveConfig(config.DefaultConfig(), opts.configPath); err != nil {
			logger.Error(ctx, "Failed to create default configuration", err, "config_path", opts.configPath)
			os.Exit(1)
		}
		logger.Info(ctx, "Created default configuration file", "config_path", opts.configPath)
		return
	}

	cfg, err := loadConfig(ctx, logger, opts)
	if err != nil {
		logger.Error(ctx, "Failed to load configuration", err, "config_path", opts.configPath)
		os.Exit(1)
	}

	var script input.Script
	if opts.script != "" {
		if script, err = input.ParseScript(opts.script); err != nil {
			logger.Error(ctx, "Invalid input script", err)
			os.Exit(1)
		}
	}

	session := engine.NewSession(cfg, logger)
	sctx := session.Context()
	future := assets.LoadBundle(sctx, assets.NewRetryLoader(assets.NewBuiltinLoader(), cfg.Assets.Loading, logger), cfg.Assets.Vehicle, cfg.Assets.Track)

	if opts.renderer == "engo" {
		runEngo(session, future, opts)
		return
	}

	if err := runHeadless(session, future, script, opts); err != nil {
		logger.Error(sctx, "Session failed", err)
		os.Exit(1)
	}
}

// loadConfig reads the file if it exists, then applies the environment and flags.
func loadConfig(ctx context.Context, logger *logging.Logger, opts options) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if _, err := os.Stat(opts.configPath); err == nil {
		if cfg, err = config.LoadConfig(opts.configPath); err != nil {
			return nil, err
		}
	} else {
		logger.Info(ctx, "Configuration file not found, using default configuration",
			"config_path", opts.configPath,
		)
	}

	if err := config.ApplyEnv(cfg); err != nil {
		return nil, err
	}
	if opts.mode != "" {
		cfg.Mode = config.Mode(opts.mode)
	}
	return cfg, config.Validate(cfg)
}

// runEngo opens a window. Assets attach in the background; the scene
// draws nothing but the HUD until they arrive.
func runEngo(session *engine.Session, future *assets.Future, opts options) {
	go func() {
		if err := session.AttachFuture(session.Context(), future); err != nil {
			session.Logger().Error(session.Context(), "Assets failed to load", err)
		}
	}()

	scene := engorender.NewDriveScene(session, float32(opts.scale))
	engo.Run(engo.RunOptions{
		Title:      "Track Drive",
		Width:      opts.width,
		Height:     opts.height,
		Fullscreen: opts.fullscreen,
		VSync:      true,
	}, scene)
}

// runHeadless drives the session with the terminal or null renderer until
// the frame budget is spent or a signal arrives.
func runHeadless(session *engine.Session, future *assets.Future, script input.Script, opts options) error {
	ctx, stop := signal.NotifyContext(session.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := session.AttachFuture(ctx, future); err != nil {
		return err
	}

	r, err := newRenderer(session, opts)
	if err != nil {
		return err
	}
	draw := everyNth(opts.every, render.FrameFunc(r))

	g, gctx := errgroup.WithContext(ctx)
	runCtx, cancelRun := context.WithCancel(gctx)
	defer cancelRun()

	if opts.healthAddr != "" {
		checker := health.NewChecker()
		checker.Add(health.NewAssetsCheck(session.Ready))
		checker.Add(health.NewFrameCheck(func() uint64 { return session.Telemetry().Frame }, 2*time.Second))
		checker.Add(health.NewMemoryCheck(512, nil))
		g.Go(func() error { return checker.Serve(runCtx, opts.healthAddr, session.Logger()) })
	}

	g.Go(func() error {
		defer cancelRun()
		if opts.frames > 0 {
			dt := 1.0 / float64(session.Config.Loop.TargetFPS)
			session.RunFrames(runCtx, opts.frames, dt, script, draw)
			return nil
		}
		err := session.Run(runCtx, script, draw)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})

	err = g.Wait()
	t := session.Telemetry()
	session.Logger().Info(session.Context(), "Session finished",
		"frames", t.Frame,
		"resets", t.Resets,
		"speed_kmh", t.SpeedKMH,
		"x", t.Position.X(),
		"y", t.Position.Y(),
		"z", t.Position.Z(),
	)
	return err
}

func newRenderer(session *engine.Session, opts options) (render.Renderer, error) {
	switch opts.renderer {
	case "terminal":
		r := render.NewTerminalRenderer(opts.cols, opts.rows, 1, os.Stdout)
		r.Fit(session.Bundle().Track.WorldMeshes())
		r.ClearScreen = opts.frames == 0
		return r, nil
	case "null":
		return render.NewNullRenderer(session.Logger()), nil
	default:
		return nil, fmt.Errorf("unknown renderer %q", opts.renderer)
	}
}

// everyNth calls draw on every n-th simulated frame only.
func everyNth(n int, draw engine.FrameFunc) engine.FrameFunc {
	if n <= 1 {
		return draw
	}
	return func(s *engine.Session) bool {
		if s.Telemetry().Frame%uint64(n) != 0 {
			return true
		}
		return draw(s)
	}
}

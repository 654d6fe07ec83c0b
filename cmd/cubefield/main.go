package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/sync/errgroup"

	"github.com/gekko3d/cubefield"
)

func init() {
	// GLFW calls must come from the main thread.
	runtime.LockOSThread()
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "cubefield:", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "YAML config file (default $"+cubefield.ConfigEnv+")")
	debug := flag.Bool("debug", false, "Enable debug logging")
	headless := flag.Bool("headless", false, "Run without a window, recording frames instead of drawing")
	ticks := flag.Uint64("ticks", 0, "Stop after this many ticks (0 runs until closed)")
	metricsAddr := flag.String("metrics", "", "Serve Prometheus metrics on this address, e.g. :2112")
	texture := flag.String("texture", "", "Cube texture image (png, jpeg, webp or bmp)")
	flag.Parse()

	cfg, err := cubefield.LoadConfig(*configPath)
	if err != nil {
		return err
	}
	if *debug {
		cfg.Log.Debug = true
	}
	if *metricsAddr != "" {
		cfg.Metrics.Addr = *metricsAddr
	}
	if *texture != "" {
		cfg.Render.Texture = *texture
	}
	bindings, err := cubefield.ParseKeyBindings(cfg.Keys)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics := cubefield.NewMetrics()
	cam := cfg.Camera
	builder := cubefield.NewAppBuilder().
		UseModule(
			cubefield.LoggingModule{Debug: cfg.Log.Debug, Encoding: cfg.Log.Encoding},
			cubefield.TimeModule{},
			cubefield.InputModule{Bindings: bindings},
			cubefield.FlyingCameraModule{
				Position:     mgl32.Vec3(cam.Position),
				Yaw:          cam.Yaw,
				Pitch:        cam.Pitch,
				MaxPitch:     mgl32.DegToRad(cam.MaxPitchDeg),
				SensitivityX: cam.SensitivityX,
				SensitivityY: cam.SensitivityY,
				MoveSpeed:    cam.MoveSpeed,
			},
			cubefield.SceneModule{Def: cubefield.SceneDefFromConfig(cfg.Scene)},
			cubefield.SpinModule{},
			cubefield.InstancesModule{},
		)

	projection := cubefield.ProjectionModule{
		FovYDeg: cam.FovYDeg,
		ZNear:   cam.ZNear,
		ZFar:    cam.ZFar,
		Width:   cfg.Window.Width,
		Height:  cfg.Window.Height,
	}
	if *headless {
		builder.UseModule(
			projection,
			cubefield.RenderModule{Name: cubefield.RendererRecording, Renderer: cubefield.NewRecordingRenderer()},
		)
	} else {
		builder.UseModule(
			cubefield.PlatformWindowModule{Width: cfg.Window.Width, Height: cfg.Window.Height, Title: cfg.Window.Title},
			cubefield.AssetServerModule{},
			projection,
			cubefield.ClientModule{
				ClearColor: cfg.Render.ClearColor,
				LightPos:   mgl32.Vec3(cfg.Render.LightPos),
				MinShade:   cfg.Render.MinShade,
				Texture:    cfg.Render.Texture,
			},
		)
	}
	builder.UseModule(
		cubefield.MetricsModule{Metrics: metrics},
		cubefield.LifecycleModule{Ticks: *ticks},
	)

	app, err := builder.Build()
	if err != nil {
		return err
	}
	if *headless {
		app.SetPace(cfg.Headless.TickInterval())
	}

	g, gctx := errgroup.WithContext(ctx)
	if cfg.Metrics.Addr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler())
		srv := &http.Server{Addr: cfg.Metrics.Addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		g.Go(func() error {
			app.Logger().Infof("metrics on %s/metrics", cfg.Metrics.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	runErr := app.Run(gctx)
	stop()
	return errors.Join(runErr, g.Wait())
}

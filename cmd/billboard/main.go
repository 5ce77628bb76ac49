// Command billboard plays a frame sequence in a window and composites the
// rotating ads onto the best-scoring quad. Click four corners in edit mode
// (E) to add a quad, or press D to detect one.
package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/phanxgames/billboard"
	"github.com/phanxgames/billboard/config"
	"github.com/phanxgames/billboard/debugserver"
	"github.com/phanxgames/billboard/detect/contour"
	"github.com/phanxgames/billboard/ebitenbackend"
	"github.com/sirupsen/logrus"
)

func main() {
	var (
		cfgPath   = flag.String("config", "billboard.yaml", "YAML config file (missing file = defaults)")
		frames    = flag.String("frames", "", "directory of video frames (overrides config)")
		fps       = flag.Float64("fps", 0, "frame rate (overrides config)")
		width     = flag.Float64("width", -1, "container width in display units, 0 = media width")
		density   = flag.Float64("density", 0, "pixel density, 0 = monitor scale factor")
		rotation  = flag.String("rotation", "", "ad rotation mode: interval, frame or manual")
		seed      = flag.Uint64("seed", 0, "rotation seed, 0 = from config or time")
		telemetry = flag.String("telemetry", "", "telemetry HTTP address, e.g. :8090")
		script    = flag.String("script", "", "JSON test script to run")
		debug     = flag.Bool("debug", false, "log per-frame stage timings")
		logLevel  = flag.String("log-level", "", "log level (overrides config)")
	)
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		logrus.WithError(err).Fatal("load config")
	}
	applyFlags(cfg, *frames, *fps, *width, *density, *rotation, *seed, *telemetry, *script, *debug, *logLevel)
	if err := cfg.Validate(); err != nil {
		logrus.WithError(err).Fatal("invalid flags")
	}

	logger := logrus.StandardLogger()
	logger.SetLevel(cfg.LogLevel())
	if cfg.Debug.Stats && logger.GetLevel() < logrus.DebugLevel {
		logger.SetLevel(logrus.DebugLevel)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.WithError(err).Fatal("billboard exited")
	}
}

func applyFlags(cfg *config.Config, frames string, fps, width, density float64,
	rotation string, seed uint64, telemetry, script string, debug bool, logLevel string) {
	if frames != "" {
		cfg.Media.FramesDir = frames
	}
	if fps > 0 {
		cfg.Media.FPS = fps
	}
	if width >= 0 {
		cfg.Display.ContainerWidth = width
	}
	if density > 0 {
		cfg.Display.PixelDensity = density
	}
	if rotation != "" {
		cfg.Rotation.Mode = rotation
	}
	if seed != 0 {
		cfg.Rotation.Seed = seed
	}
	if telemetry != "" {
		cfg.Debug.TelemetryAddr = telemetry
	}
	if script != "" {
		cfg.Debug.TestScript = script
	}
	if debug {
		cfg.Debug.Stats = true
	}
	if logLevel != "" {
		cfg.Debug.LogLevel = logLevel
	}
}

func run(ctx context.Context, cfg *config.Config, logger *logrus.Logger) error {
	media, err := billboard.LoadImageSequence(cfg.Media.FramesDir, cfg.Media.FPS, cfg.Media.Loop)
	if err != nil {
		return err
	}
	ads, err := billboard.LoadAds(ctx, cfg.Ads)
	if err != nil {
		return err
	}

	var det billboard.Detector
	if d, err := contour.New(contour.DefaultConfig()); err == nil {
		det = d
	} else if errors.Is(err, contour.ErrUnavailable) {
		logger.WithField("function", "run").Warn("built without gocv, auto-detect disabled")
	} else {
		return err
	}

	surface, err := ebitenbackend.NewSurface(1, 1)
	if err != nil {
		return err
	}
	defer surface.Dispose()

	opts := cfg.SessionOptions(ads, det)
	opts.Logger = logger
	session := billboard.NewSession(media, surface, opts)
	session.SetDebugMode(cfg.Debug.Stats)
	session.WarmUpDetector(ctx)

	if cfg.Debug.TestScript != "" {
		data, err := os.ReadFile(cfg.Debug.TestScript)
		if err != nil {
			return err
		}
		runner, err := billboard.LoadTestScript(data)
		if err != nil {
			return err
		}
		session.SetTestRunner(runner)
	}

	if cfg.Debug.TelemetryAddr != "" {
		srv := debugserver.New(session, session.Logger())
		srv.DetectContext = ctx
		go func() {
			if err := srv.ListenAndServe(ctx, cfg.Debug.TelemetryAddr); err != nil {
				session.Logger().WithError(err).Error("telemetry server stopped")
			}
		}()
	}

	sched := billboard.NewScheduler(session)
	game := ebitenbackend.NewGame(sched, surface)
	game.SetMedia(media)
	game.DetectContext = ctx
	if cfg.Display.PixelDensity > 0 {
		game.FixedDensity = cfg.Display.PixelDensity
	}
	media.Play(0)

	w, h := media.Size()
	winW := cfg.Display.ContainerWidth
	if winW <= 0 {
		winW = float64(w)
	}
	winH := winW * float64(h) / float64(max(w, 1))
	session.Logger().WithFields(logrus.Fields{
		"function": "run",
		"frames":   cfg.Media.FramesDir,
		"media":    []int{w, h},
		"ads":      len(ads),
	}).Info("starting")
	return ebitenbackend.Run(game, cfg.Display.WindowTitle, int(winW), int(winH))
}

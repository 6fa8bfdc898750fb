package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/RyanBlaney/pcmscope/configs"
	"github.com/RyanBlaney/pcmscope/internal/metrics"
	"github.com/RyanBlaney/pcmscope/internal/render/summary"
	"github.com/RyanBlaney/pcmscope/internal/render/terminal"
	"github.com/RyanBlaney/pcmscope/internal/visualizer"
	"github.com/RyanBlaney/pcmscope/pkg/audio"
	"github.com/RyanBlaney/pcmscope/pkg/logging"
	"github.com/RyanBlaney/pcmscope/pkg/plot"
	"github.com/RyanBlaney/pcmscope/pkg/stream"
	"github.com/RyanBlaney/pcmscope/pkg/stream/common"
)

// Context holds the application context and configuration
type Context struct {
	// CLI arguments
	ConfigFile   string
	OutputFile   string
	OutputFormat string
	Frames       int           // capture only, 0 means until cancelled
	Interval     time.Duration // capture only, 0 means 1/fps
	Verbose      bool

	// Runtime context
	Logger logging.Logger
	Config *configs.Config
}

// App owns the source, window and driver for one run
type App struct {
	ctx     *Context
	config  *configs.Config
	logger  logging.Logger
	source  common.Source
	driver  *visualizer.Driver
	metrics metrics.Recorder
}

// NewApp creates a new application. When ctx.Config is nil the global
// configuration is loaded and validated.
func NewApp(ctx *Context) (*App, error) {
	config := ctx.Config
	if config == nil {
		loaded, err := configs.LoadConfig()
		if err != nil {
			return nil, fmt.Errorf("failed to load configuration: %w", err)
		}
		config = loaded
	}
	if ctx.Verbose {
		config.Verbose = true
	}
	if err := configs.ValidateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	ctx.Config = config

	if config.Render.Renderer == configs.RendererSummary {
		format, err := summary.ParseFormat(ctx.OutputFormat)
		if err != nil {
			return nil, err
		}
		ctx.OutputFormat = format
	}

	logger, err := setupLogging(ctx)
	if err != nil {
		return nil, err
	}
	ctx.Logger = logger

	source, err := stream.NewFactory().Open(config.StreamConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to open sample source: %w", err)
	}

	recorder, err := metrics.New(config.MetricsRecorderConfig(), logger)
	if err != nil {
		return nil, multierr.Append(fmt.Errorf("failed to set up metrics: %w", err), source.Close())
	}

	driver, err := newDriver(config, source, recorder, logger)
	if err != nil {
		return nil, multierr.Combine(err, source.Close(), recorder.Close())
	}

	logger.Debug("Application initialized", logging.Fields{
		"config_file":     ctx.ConfigFile,
		"source_type":     source.Type(),
		"source_path":     source.Path(),
		"window_capacity": config.Window.Capacity,
		"fps":             config.Render.FPS,
		"renderer":        config.Render.Renderer,
	})

	return &App{
		ctx:     ctx,
		config:  config,
		logger:  logger,
		source:  source,
		driver:  driver,
		metrics: recorder,
	}, nil
}

func newDriver(config *configs.Config, source common.Source, recorder metrics.Recorder, logger logging.Logger) (*visualizer.Driver, error) {
	spectrum, err := plot.NewSpectrumTransform(config.SpectrumTransformConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to build spectrum transform: %w", err)
	}

	initial, err := plot.ParseMode(config.Render.InitialMode)
	if err != nil {
		return nil, err
	}

	return visualizer.NewDriver(
		source,
		audio.NewSampleWindow(config.Window.Capacity),
		plot.NewModeCycle(initial),
		plot.NewWaveformTransform(config.WaveformTransformConfig()),
		spectrum,
		visualizer.WithMetrics(recorder),
		visualizer.WithLogger(logger),
	), nil
}

// setupLogging configures the root logger. The terminal renderer owns the
// screen, so without a log file its output is discarded.
func setupLogging(ctx *Context) (logging.Logger, error) {
	config := ctx.Config

	level := config.LogLevel
	if config.Verbose {
		level = "debug"
	}

	opts := logging.Options{Level: level}
	switch {
	case config.LogFile != "":
		opts.OutputPaths = []string{config.LogFile}
	case config.Render.Renderer == configs.RendererTerminal:
		opts.OutputPaths = []string{os.DevNull}
	}

	if err := logging.Configure(opts); err != nil {
		return nil, fmt.Errorf("failed to configure logging: %w", err)
	}
	return logging.NewDefaultLogger(), nil
}

// Driver exposes the frame driver
func (app *App) Driver() *visualizer.Driver {
	return app.driver
}

// Run starts the configured renderer and drives frames until the context is
// cancelled or the user quits
func (app *App) Run(ctx context.Context) error {
	switch app.config.Render.Renderer {
	case configs.RendererSummary:
		return app.Capture(ctx, os.Stdout)
	default:
		return app.RunTerminal(ctx)
	}
}

// RunTerminal runs the interactive terminal visualizer
func (app *App) RunTerminal(ctx context.Context) error {
	renderer, err := terminal.New(terminal.Config{
		StatusLine: app.config.Render.StatusLine,
	}, app.logger)
	if err != nil {
		return err
	}
	defer renderer.Close()

	events := make(chan visualizer.Event, 16)
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return renderer.PollEvents(gctx, events)
	})
	g.Go(func() error {
		// closing the screen unblocks the event pump
		defer renderer.Close()
		return app.loop(gctx, renderer, events, 0, app.frameInterval())
	})

	return g.Wait()
}

// Capture runs headless for ctx.Frames frames and writes the report to w
// (or ctx.OutputFile when set)
func (app *App) Capture(ctx context.Context, w io.Writer) error {
	renderer := summary.New(plot.Canvas{
		Width:  float64(app.config.Render.Width),
		Height: float64(app.config.Render.Height),
	}, app.config.Verbose)

	interval := app.ctx.Interval
	if interval <= 0 {
		interval = app.frameInterval()
	}

	if err := app.loop(ctx, renderer, nil, app.ctx.Frames, interval); err != nil {
		return err
	}

	if app.ctx.OutputFile != "" {
		f, err := os.Create(app.ctx.OutputFile)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		err = renderer.Write(f, app.ctx.OutputFormat)
		return multierr.Append(err, f.Close())
	}
	return renderer.Write(w, app.ctx.OutputFormat)
}

func (app *App) frameInterval() time.Duration {
	return time.Duration(float64(time.Second) / app.config.Render.FPS)
}

// loop is the single frame loop: ticks drive the driver, events toggle the
// mode or stop the loop. maxFrames of 0 runs until cancelled.
func (app *App) loop(ctx context.Context, renderer visualizer.Renderer, events <-chan visualizer.Event, maxFrames int, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	frames := 0
	for {
		select {
		case <-ctx.Done():
			return nil
		case evt, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			switch evt.Kind {
			case visualizer.EventToggle:
				app.driver.Toggle()
			case visualizer.EventResize:
				// the renderer reports the new canvas on the next tick
			case visualizer.EventQuit:
				app.logger.Debug("Quit requested", logging.Fields{"frames": frames})
				return nil
			}
		case <-ticker.C:
			app.driver.Step(renderer)
			frames++
			if maxFrames > 0 && frames >= maxFrames {
				return nil
			}
		}
	}
}

// Close releases the source and flushes metrics
func (app *App) Close() error {
	err := multierr.Combine(
		app.source.Close(),
		app.metrics.Close(),
	)
	_ = logging.Sync()
	return err
}

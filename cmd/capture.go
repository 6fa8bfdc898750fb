package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/RyanBlaney/pcmscope/configs"
	"github.com/RyanBlaney/pcmscope/internal/app"
	"github.com/RyanBlaney/pcmscope/internal/render/summary"
)

var (
	captureFrames   int
	captureInterval time.Duration
	captureOutput   string
	captureFile     string
	captureWidth    int
	captureHeight   int
)

// captureCmd runs the frame loop without a terminal
var captureCmd = &cobra.Command{
	Use:   "capture",
	Short: "Run the visualizer headless and report frame geometry",
	Long: `Drive the same frame loop as visualize against a fixed-size canvas and
print a summary of every frame: mode, read outcome, window fill, point
counts and bounds.

Examples:
  # 100 frames from the fifo as JSON
  pcmscope capture --frames 100

  # Fast replay of a capture file, YAML report written to disk
  pcmscope capture --source capture.pcm --source-type file --interval 1ms --output yaml --file report.yaml`,
	RunE: runCapture,
}

func init() {
	addSourceFlags(captureCmd)
	captureCmd.Flags().String("mode", "waveform", "plot mode (waveform, spectrum)")
	captureCmd.Flags().Bool("unpaced", false, "read file sources as fast as frames are requested")
	captureCmd.Flags().IntVarP(&captureFrames, "frames", "n", 100, "number of frames to capture (0 runs until interrupted)")
	captureCmd.Flags().DurationVar(&captureInterval, "interval", 0, "time between frames (default 1/fps)")
	captureCmd.Flags().StringVarP(&captureOutput, "output", "o", summary.FormatJSON, "report format (json, yaml)")
	captureCmd.Flags().StringVarP(&captureFile, "file", "f", "", "write the report to this file instead of stdout")
	captureCmd.Flags().IntVar(&captureWidth, "width", 0, "canvas width (default render.width)")
	captureCmd.Flags().IntVar(&captureHeight, "height", 0, "canvas height (default render.height)")

	registerFlagKeys(captureCmd.Name(), withSourceKeys(map[string]string{
		"mode": "render.initial_mode",
	}))

	rootCmd.AddCommand(captureCmd)
}

func runCapture(cmd *cobra.Command, args []string) error {
	format, err := summary.ParseFormat(captureOutput)
	if err != nil {
		return err
	}

	config, err := configs.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	config.Render.Renderer = configs.RendererSummary
	if captureWidth > 0 {
		config.Render.Width = captureWidth
	}
	if captureHeight > 0 {
		config.Render.Height = captureHeight
	}
	if unpaced, _ := cmd.Flags().GetBool("unpaced"); unpaced {
		config.Source.Paced = false
	}

	application, err := app.NewApp(&app.Context{
		ConfigFile:   configFile,
		OutputFile:   captureFile,
		OutputFormat: format,
		Frames:       captureFrames,
		Interval:     captureInterval,
		Verbose:      verbose,
		Config:       config,
	})
	if err != nil {
		return err
	}
	defer application.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return application.Run(ctx)
}

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/RyanBlaney/pcmscope/configs"
	"github.com/RyanBlaney/pcmscope/internal/app"
)

// visualizeCmd represents the interactive visualizer
var visualizeCmd = &cobra.Command{
	Use:   "visualize",
	Short: "Draw the live PCM stream in the terminal",
	Long: `Open the sample source and draw it in the terminal until quit.

Keys:
  space        toggle waveform / spectrum
  q, Esc, ^C   quit

Examples:
  # Visualize mpd's default fifo output
  pcmscope visualize

  # Create the fifo if needed and start in spectrum mode
  pcmscope visualize --source /tmp/mpd.fifo --create-fifo --mode spectrum

  # Replay a raw S16LE capture in a loop
  pcmscope visualize --source capture.pcm --source-type file --loop

  # Read from a pipeline
  sox song.flac -t raw -r 44100 -b 16 -c 2 -e signed - | pcmscope visualize --source -`,
	RunE: runVisualize,
}

func init() {
	addSourceFlags(visualizeCmd)
	visualizeCmd.Flags().String("mode", "waveform", "initial plot mode (waveform, spectrum)")
	visualizeCmd.Flags().Float64("fps", 30, "frames per second")
	visualizeCmd.Flags().Bool("no-status", false, "hide the status line")

	registerFlagKeys(visualizeCmd.Name(), withSourceKeys(map[string]string{
		"mode": "render.initial_mode",
		"fps":  "render.fps",
	}))

	rootCmd.AddCommand(visualizeCmd)
}

// addSourceFlags adds the flags shared by every command that opens a source
func addSourceFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("source", "s", "", "sample source path, - for stdin (default /tmp/mpd.fifo)")
	cmd.Flags().String("source-type", "", "source type (auto, fifo, file, stdin)")
	cmd.Flags().Bool("create-fifo", false, "create the fifo if it does not exist")
	cmd.Flags().Bool("loop", false, "loop file sources at EOF")
	cmd.Flags().Bool("metrics", false, "send DogStatsD metrics")
}

func withSourceKeys(keys map[string]string) map[string]string {
	keys["source"] = "source.path"
	keys["source-type"] = "source.type"
	keys["create-fifo"] = "source.create_fifo"
	keys["loop"] = "source.loop"
	keys["metrics"] = "metrics.enabled"
	return keys
}

func runVisualize(cmd *cobra.Command, args []string) error {
	config, err := configs.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	config.Render.Renderer = configs.RendererTerminal
	if noStatus, _ := cmd.Flags().GetBool("no-status"); noStatus {
		config.Render.StatusLine = false
	}

	application, err := app.NewApp(&app.Context{
		ConfigFile: configFile,
		Verbose:    verbose,
		Config:     config,
	})
	if err != nil {
		return err
	}
	defer application.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return application.Run(ctx)
}

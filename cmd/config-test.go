package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/RyanBlaney/pcmscope/configs"
	"github.com/RyanBlaney/pcmscope/pkg/stream"
)

var configTestYAML bool

// configTestCmd represents the config test command
var configTestCmd = &cobra.Command{
	Use:   "config-test",
	Short: "Test and display all configuration values",
	Long: `Test configuration loading and display all values to verify proper parsing.

This command loads the configuration and displays all values in a structured format
to help verify that your YAML configuration and PCMSCOPE_* environment variables
are being applied correctly.

Examples:
  # Test with default config file
  pcmscope config-test

  # Test with specific config file, print the merged result as YAML
  pcmscope --config /path/to/pcmscope.yaml config-test --yaml`,
	RunE: runConfigTest,
}

func init() {
	configTestCmd.Flags().BoolVar(&configTestYAML, "yaml", false,
		"print the effective configuration as YAML")
	rootCmd.AddCommand(configTestCmd)
}

func runConfigTest(cmd *cobra.Command, args []string) error {
	config, err := configs.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if configTestYAML {
		encoder := yaml.NewEncoder(os.Stdout)
		encoder.SetIndent(2)
		if err := encoder.Encode(config); err != nil {
			return fmt.Errorf("failed to encode configuration: %w", err)
		}
		if err := encoder.Close(); err != nil {
			return err
		}
		return configs.ValidateConfig(config)
	}

	fmt.Println("PCMSCOPE CONFIGURATION TEST")
	fmt.Println(strings.Repeat("=", 80))

	printSection("APPLICATION SETTINGS")
	printKeyValue("Config File", GetConfig().ConfigFileUsed())
	printKeyValue("Verbose", fmt.Sprintf("%t", config.Verbose))
	printKeyValue("Log Level", config.LogLevel)
	printKeyValue("Log File", config.LogFile)

	printSection("SOURCE CONFIGURATION")
	printKeyValue("Type", config.Source.Type)
	printKeyValue("Path", config.Source.Path)
	printKeyValue("Read Buffer Size", fmt.Sprintf("%d bytes", config.Source.ReadBufferSize))
	printKeyValue("Create FIFO", fmt.Sprintf("%t", config.Source.CreateFIFO))
	printKeyValue("Sample Rate", fmt.Sprintf("%d Hz", config.Source.SampleRate))
	printKeyValue("Channels", fmt.Sprintf("%d", config.Source.Channels))
	printKeyValue("Loop", fmt.Sprintf("%t", config.Source.Loop))
	printKeyValue("Paced", fmt.Sprintf("%t", config.Source.Paced))
	if metadata, err := stream.NewDetector().ProbeSource(config.StreamConfig()); err != nil {
		printKeyValue("Detected Type", "error: "+err.Error())
	} else {
		printKeyValue("Detected Type", string(metadata.Type))
	}

	printSection("WINDOW CONFIGURATION")
	printKeyValue("Capacity", fmt.Sprintf("%d samples", config.Window.Capacity))

	printSection("WAVEFORM CONFIGURATION")
	printKeyValue("Max Samples", fmt.Sprintf("%d", config.Waveform.MaxSamples))
	printKeyValue("Amplitude Divisor", fmt.Sprintf("%.1f", config.Waveform.AmplitudeDivisor))
	printKeyValue("Upper Band", fmt.Sprintf("%.2f", config.Waveform.UpperBand))
	printKeyValue("Lower Band", fmt.Sprintf("%.2f", config.Waveform.LowerBand))

	printSection("SPECTRUM CONFIGURATION")
	printKeyValue("Min Channel Samples", fmt.Sprintf("%d", config.Spectrum.MinChannelSamples))
	printKeyValue("FFT Size", fmt.Sprintf("%d", config.Spectrum.FFTSize))
	printKeyValue("Sample Rate", fmt.Sprintf("%d Hz", config.Spectrum.SampleRate))
	printKeyValue("Magnitude Divisor", fmt.Sprintf("%.1f", config.Spectrum.MagnitudeDivisor))
	printKeyValue("Scaling", config.Spectrum.Scaling)
	printKeyValue("Window Function", config.Spectrum.Window)
	printKeyValue("X Axis", config.Spectrum.XAxis)
	printKeyValue("Channel", fmt.Sprintf("offset %d, stride %d",
		config.Spectrum.ChannelOffset, config.Spectrum.ChannelStride))

	printSection("RENDER CONFIGURATION")
	printKeyValue("FPS", fmt.Sprintf("%.1f", config.Render.FPS))
	printKeyValue("Initial Mode", config.Render.InitialMode)
	printKeyValue("Status Line", fmt.Sprintf("%t", config.Render.StatusLine))
	printKeyValue("Renderer", config.Render.Renderer)
	printKeyValue("Headless Canvas", fmt.Sprintf("%dx%d", config.Render.Width, config.Render.Height))

	printSection("METRICS CONFIGURATION")
	printKeyValue("Enabled", fmt.Sprintf("%t", config.Metrics.Enabled))
	printKeyValue("Address", config.Metrics.Address)
	printKeyValue("Namespace", config.Metrics.Namespace)
	printKeyValue("Tags", fmt.Sprintf("(%d) %v", len(config.Metrics.Tags), config.Metrics.Tags))

	printSection("VALIDATION")
	if err := configs.ValidateConfig(config); err != nil {
		printKeyValue("Status", "INVALID")
		printKeyValue("Error", err.Error())
		return err
	}
	printKeyValue("Status", "OK")

	fmt.Println()
	return nil
}

func printSection(title string) {
	fmt.Printf("\n%s\n", title)
	fmt.Println(strings.Repeat("-", len(title)))
}

func printKeyValue(key, value string) {
	if value == "" {
		fmt.Printf("%-35s\n", key)
	} else {
		fmt.Printf("%-35s %s\n", key+":", value)
	}
}

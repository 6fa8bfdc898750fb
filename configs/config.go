package configs

import (
	"fmt"
	"math/bits"

	"github.com/spf13/viper"

	"github.com/RyanBlaney/pcmscope/pkg/audio/analyzers"
	"github.com/RyanBlaney/pcmscope/pkg/plot"
)

// Renderer names accepted by render.renderer
const (
	RendererTerminal = "terminal"
	RendererSummary  = "summary"
)

// Config represents the application configuration
type Config struct {
	// Application settings
	Verbose  bool   `mapstructure:"verbose" yaml:"verbose"`
	LogLevel string `mapstructure:"log_level" yaml:"log_level"`
	LogFile  string `mapstructure:"log_file" yaml:"log_file"`

	// Sample source configuration
	Source SourceConfig `mapstructure:"source" yaml:"source"`

	// Sample window configuration
	Window WindowConfig `mapstructure:"window" yaml:"window"`

	// Transform tuning
	Waveform WaveformConfig `mapstructure:"waveform" yaml:"waveform"`
	Spectrum SpectrumConfig `mapstructure:"spectrum" yaml:"spectrum"`

	// Frame loop and renderer configuration
	Render RenderConfig `mapstructure:"render" yaml:"render"`

	// DogStatsD metrics
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics"`
}

// SourceConfig contains sample source settings
type SourceConfig struct {
	Type           string `mapstructure:"type" yaml:"type"`
	Path           string `mapstructure:"path" yaml:"path"`
	ReadBufferSize int    `mapstructure:"read_buffer_size" yaml:"read_buffer_size"`
	CreateFIFO     bool   `mapstructure:"create_fifo" yaml:"create_fifo"`
	SampleRate     int    `mapstructure:"sample_rate" yaml:"sample_rate"`
	Channels       int    `mapstructure:"channels" yaml:"channels"`
	Loop           bool   `mapstructure:"loop" yaml:"loop"`
	Paced          bool   `mapstructure:"paced" yaml:"paced"`
}

// WindowConfig contains sample window settings
type WindowConfig struct {
	Capacity int `mapstructure:"capacity" yaml:"capacity"`
}

// WaveformConfig contains time-domain plot settings
type WaveformConfig struct {
	MaxSamples       int     `mapstructure:"max_samples" yaml:"max_samples"`
	AmplitudeDivisor float64 `mapstructure:"amplitude_divisor" yaml:"amplitude_divisor"`
	UpperBand        float64 `mapstructure:"upper_band" yaml:"upper_band"`
	LowerBand        float64 `mapstructure:"lower_band" yaml:"lower_band"`
}

// SpectrumConfig contains frequency-domain plot settings
type SpectrumConfig struct {
	MinChannelSamples int     `mapstructure:"min_channel_samples" yaml:"min_channel_samples"`
	FFTSize           int     `mapstructure:"fft_size" yaml:"fft_size"`
	SampleRate        int     `mapstructure:"sample_rate" yaml:"sample_rate"`
	MagnitudeDivisor  float64 `mapstructure:"magnitude_divisor" yaml:"magnitude_divisor"`
	Scaling           string  `mapstructure:"scaling" yaml:"scaling"`
	Window            string  `mapstructure:"window" yaml:"window"`
	XAxis             string  `mapstructure:"x_axis" yaml:"x_axis"`
	ChannelOffset     int     `mapstructure:"channel_offset" yaml:"channel_offset"`
	ChannelStride     int     `mapstructure:"channel_stride" yaml:"channel_stride"`
}

// RenderConfig contains frame loop settings
type RenderConfig struct {
	FPS         float64 `mapstructure:"fps" yaml:"fps"`
	InitialMode string  `mapstructure:"initial_mode" yaml:"initial_mode"`
	StatusLine  bool    `mapstructure:"status_line" yaml:"status_line"`
	Renderer    string  `mapstructure:"renderer" yaml:"renderer"`
	Width       int     `mapstructure:"width" yaml:"width"`   // headless canvas
	Height      int     `mapstructure:"height" yaml:"height"` // headless canvas
}

// MetricsConfig contains DogStatsD settings
type MetricsConfig struct {
	Enabled   bool     `mapstructure:"enabled" yaml:"enabled"`
	Address   string   `mapstructure:"address" yaml:"address"`
	Namespace string   `mapstructure:"namespace" yaml:"namespace"`
	Tags      []string `mapstructure:"tags" yaml:"tags"`
}

// LoadConfig loads configuration from the global viper instance
func LoadConfig() (*Config, error) {
	return LoadConfigFrom(viper.GetViper())
}

// LoadConfigFrom applies defaults to v and decodes it
func LoadConfigFrom(v *viper.Viper) (*Config, error) {
	SetDefaults(v)

	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("unable to decode configuration: %w", err)
	}

	return config, nil
}

// ValidateConfig validates the configuration
func ValidateConfig(config *Config) error {
	if config.Source.ReadBufferSize <= 0 {
		return fmt.Errorf("source read buffer size must be positive")
	}
	if config.Source.ReadBufferSize%2 != 0 {
		return fmt.Errorf("source read buffer size must be a whole number of samples, got %d",
			config.Source.ReadBufferSize)
	}

	if config.Source.SampleRate <= 0 {
		return fmt.Errorf("source sample rate must be positive")
	}

	if config.Source.Channels <= 0 {
		return fmt.Errorf("source channels must be positive")
	}

	if config.Window.Capacity <= 0 {
		return fmt.Errorf("window capacity must be positive")
	}

	if config.Waveform.MaxSamples <= 0 {
		return fmt.Errorf("waveform max samples must be positive")
	}

	if config.Waveform.AmplitudeDivisor == 0 {
		return fmt.Errorf("waveform amplitude divisor cannot be zero")
	}

	if err := validateSpectrum(config); err != nil {
		return err
	}

	if config.Render.FPS <= 0 {
		return fmt.Errorf("render fps must be positive")
	}

	if _, err := plot.ParseMode(config.Render.InitialMode); err != nil {
		return fmt.Errorf("invalid render initial mode: %w", err)
	}

	switch config.Render.Renderer {
	case RendererTerminal, RendererSummary:
	default:
		return fmt.Errorf("unknown renderer %q", config.Render.Renderer)
	}

	if config.Render.Width <= 0 || config.Render.Height <= 0 {
		return fmt.Errorf("render width and height must be positive")
	}

	return nil
}

func validateSpectrum(config *Config) error {
	s := config.Spectrum

	if s.FFTSize < 2 || bits.OnesCount(uint(s.FFTSize)) != 1 {
		return fmt.Errorf("spectrum fft size must be a power of two, got %d", s.FFTSize)
	}

	if s.MinChannelSamples < s.FFTSize {
		return fmt.Errorf("spectrum min channel samples (%d) must be at least the fft size (%d)",
			s.MinChannelSamples, s.FFTSize)
	}

	if s.ChannelStride <= 0 || s.ChannelOffset < 0 || s.ChannelOffset >= s.ChannelStride {
		return fmt.Errorf("invalid spectrum channel selection offset=%d stride=%d",
			s.ChannelOffset, s.ChannelStride)
	}

	if perChannel := config.Window.Capacity / s.ChannelStride; s.MinChannelSamples > perChannel {
		return fmt.Errorf("spectrum min channel samples (%d) exceeds the window's per-channel capacity (%d)",
			s.MinChannelSamples, perChannel)
	}

	if s.SampleRate <= 0 {
		return fmt.Errorf("spectrum sample rate must be positive")
	}

	if s.MagnitudeDivisor == 0 {
		return fmt.Errorf("spectrum magnitude divisor cannot be zero")
	}

	if _, err := analyzers.ParseScalingMode(s.Scaling); err != nil {
		return err
	}

	if _, err := analyzers.ParseWindowType(s.Window); err != nil {
		return err
	}

	if _, err := plot.ParseXAxis(s.XAxis); err != nil {
		return err
	}

	return nil
}

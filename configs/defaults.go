package configs

import (
	"github.com/spf13/viper"

	"github.com/RyanBlaney/pcmscope/internal/metrics"
	"github.com/RyanBlaney/pcmscope/pkg/audio"
	"github.com/RyanBlaney/pcmscope/pkg/plot"
	"github.com/RyanBlaney/pcmscope/pkg/stream"
	"github.com/RyanBlaney/pcmscope/pkg/stream/fifo"
)

// SetDefaults sets default configuration values for all components
func SetDefaults(v *viper.Viper) {
	// Application defaults
	if !v.IsSet("verbose") {
		v.Set("verbose", false)
	}
	if !v.IsSet("log_level") {
		v.Set("log_level", "info")
	}
	if !v.IsSet("log_file") {
		v.Set("log_file", "")
	}

	setSourceDefaults(v)
	setTransformDefaults(v)
	setRenderDefaults(v)

	// Metrics defaults
	if !v.IsSet("metrics.enabled") {
		v.Set("metrics.enabled", false)
	}
	if !v.IsSet("metrics.address") {
		v.Set("metrics.address", metrics.DefaultAddress)
	}
	if !v.IsSet("metrics.namespace") {
		v.Set("metrics.namespace", "pcmscope")
	}
	if !v.IsSet("metrics.tags") {
		v.Set("metrics.tags", []string{})
	}
}

// setSourceDefaults sets sample source and window defaults
func setSourceDefaults(v *viper.Viper) {
	if !v.IsSet("source.type") {
		v.Set("source.type", stream.TypeAuto)
	}
	if !v.IsSet("source.path") {
		v.Set("source.path", fifo.DefaultPath)
	}
	if !v.IsSet("source.read_buffer_size") {
		v.Set("source.read_buffer_size", fifo.DefaultReadBufferSize)
	}
	if !v.IsSet("source.create_fifo") {
		v.Set("source.create_fifo", false)
	}
	if !v.IsSet("source.sample_rate") {
		v.Set("source.sample_rate", 44100)
	}
	if !v.IsSet("source.channels") {
		v.Set("source.channels", 2)
	}
	if !v.IsSet("source.loop") {
		v.Set("source.loop", false)
	}
	if !v.IsSet("source.paced") {
		v.Set("source.paced", true)
	}

	if !v.IsSet("window.capacity") {
		v.Set("window.capacity", audio.DefaultWindowCapacity)
	}
}

// setTransformDefaults sets waveform and spectrum tuning defaults
func setTransformDefaults(v *viper.Viper) {
	waveform := plot.DefaultWaveformConfig()
	if !v.IsSet("waveform.max_samples") {
		v.Set("waveform.max_samples", waveform.MaxSamples)
	}
	if !v.IsSet("waveform.amplitude_divisor") {
		v.Set("waveform.amplitude_divisor", waveform.AmplitudeDivisor)
	}
	if !v.IsSet("waveform.upper_band") {
		v.Set("waveform.upper_band", waveform.UpperBand)
	}
	if !v.IsSet("waveform.lower_band") {
		v.Set("waveform.lower_band", waveform.LowerBand)
	}

	spectrum := plot.DefaultSpectrumConfig()
	if !v.IsSet("spectrum.min_channel_samples") {
		v.Set("spectrum.min_channel_samples", spectrum.MinChannelSamples)
	}
	if !v.IsSet("spectrum.fft_size") {
		v.Set("spectrum.fft_size", spectrum.FFTSize)
	}
	if !v.IsSet("spectrum.sample_rate") {
		v.Set("spectrum.sample_rate", spectrum.SampleRate)
	}
	if !v.IsSet("spectrum.magnitude_divisor") {
		v.Set("spectrum.magnitude_divisor", spectrum.MagnitudeDivisor)
	}
	if !v.IsSet("spectrum.scaling") {
		v.Set("spectrum.scaling", spectrum.Scaling)
	}
	if !v.IsSet("spectrum.window") {
		v.Set("spectrum.window", spectrum.Window)
	}
	if !v.IsSet("spectrum.x_axis") {
		v.Set("spectrum.x_axis", spectrum.XAxis)
	}
	if !v.IsSet("spectrum.channel_offset") {
		v.Set("spectrum.channel_offset", spectrum.ChannelOffset)
	}
	if !v.IsSet("spectrum.channel_stride") {
		v.Set("spectrum.channel_stride", spectrum.ChannelStride)
	}
}

// setRenderDefaults sets frame loop defaults
func setRenderDefaults(v *viper.Viper) {
	if !v.IsSet("render.fps") {
		v.Set("render.fps", 30.0)
	}
	if !v.IsSet("render.initial_mode") {
		v.Set("render.initial_mode", plot.ModeWaveform.String())
	}
	if !v.IsSet("render.status_line") {
		v.Set("render.status_line", true)
	}
	if !v.IsSet("render.renderer") {
		v.Set("render.renderer", RendererTerminal)
	}
	if !v.IsSet("render.width") {
		v.Set("render.width", 1280)
	}
	if !v.IsSet("render.height") {
		v.Set("render.height", 720)
	}
}

// GetDefaultConfig returns a Config struct with all default values set
func GetDefaultConfig() *Config {
	waveform := plot.DefaultWaveformConfig()
	spectrum := plot.DefaultSpectrumConfig()

	return &Config{
		Verbose:  false,
		LogLevel: "info",

		Source: SourceConfig{
			Type:           stream.TypeAuto,
			Path:           fifo.DefaultPath,
			ReadBufferSize: fifo.DefaultReadBufferSize,
			SampleRate:     44100,
			Channels:       2,
			Paced:          true,
		},

		Window: WindowConfig{Capacity: audio.DefaultWindowCapacity},

		Waveform: WaveformConfig{
			MaxSamples:       waveform.MaxSamples,
			AmplitudeDivisor: waveform.AmplitudeDivisor,
			UpperBand:        waveform.UpperBand,
			LowerBand:        waveform.LowerBand,
		},

		Spectrum: SpectrumConfig{
			MinChannelSamples: spectrum.MinChannelSamples,
			FFTSize:           spectrum.FFTSize,
			SampleRate:        spectrum.SampleRate,
			MagnitudeDivisor:  spectrum.MagnitudeDivisor,
			Scaling:           spectrum.Scaling,
			Window:            spectrum.Window,
			XAxis:             spectrum.XAxis,
			ChannelOffset:     spectrum.ChannelOffset,
			ChannelStride:     spectrum.ChannelStride,
		},

		Render: RenderConfig{
			FPS:         30,
			InitialMode: plot.ModeWaveform.String(),
			StatusLine:  true,
			Renderer:    RendererTerminal,
			Width:       1280,
			Height:      720,
		},

		Metrics: MetricsConfig{
			Address:   metrics.DefaultAddress,
			Namespace: "pcmscope",
			Tags:      []string{},
		},
	}
}

// WaveformTransformConfig converts the waveform section for the plot package
func (c *Config) WaveformTransformConfig() plot.WaveformConfig {
	return plot.WaveformConfig{
		MaxSamples:       c.Waveform.MaxSamples,
		AmplitudeDivisor: c.Waveform.AmplitudeDivisor,
		UpperBand:        c.Waveform.UpperBand,
		LowerBand:        c.Waveform.LowerBand,
	}
}

// SpectrumTransformConfig converts the spectrum section for the plot package
func (c *Config) SpectrumTransformConfig() plot.SpectrumConfig {
	return plot.SpectrumConfig{
		MinChannelSamples: c.Spectrum.MinChannelSamples,
		FFTSize:           c.Spectrum.FFTSize,
		SampleRate:        c.Spectrum.SampleRate,
		MagnitudeDivisor:  c.Spectrum.MagnitudeDivisor,
		Window:            c.Spectrum.Window,
		Scaling:           c.Spectrum.Scaling,
		XAxis:             c.Spectrum.XAxis,
		ChannelOffset:     c.Spectrum.ChannelOffset,
		ChannelStride:     c.Spectrum.ChannelStride,
	}
}

// StreamConfig converts the source section for the stream factory
func (c *Config) StreamConfig() *stream.Config {
	return &stream.Config{
		Type:           c.Source.Type,
		Path:           c.Source.Path,
		ReadBufferSize: c.Source.ReadBufferSize,
		CreateFIFO:     c.Source.CreateFIFO,
		SampleRate:     c.Source.SampleRate,
		Channels:       c.Source.Channels,
		Loop:           c.Source.Loop,
		Paced:          c.Source.Paced,
	}
}

// MetricsRecorderConfig converts the metrics section for the recorder
func (c *Config) MetricsRecorderConfig() metrics.Config {
	return metrics.Config{
		Enabled:   c.Metrics.Enabled,
		Address:   c.Metrics.Address,
		Namespace: c.Metrics.Namespace,
		Tags:      c.Metrics.Tags,
	}
}

package plot

import (
	"fmt"
	"strings"

	"github.com/RyanBlaney/pcmscope/pkg/audio"
	"github.com/RyanBlaney/pcmscope/pkg/audio/analyzers"
)

// XAxis selects what drives the horizontal position of a spectrum bin
type XAxis string

const (
	// XAxisFrequency places bin k at f_k*W/bins. With bins 0..N/2 this
	// stretches the plot past the right edge; only the low end is visible.
	XAxisFrequency XAxis = "frequency"
	// XAxisBin places bin k at k*W/bins, fitting DC..Nyquist on screen
	XAxisBin XAxis = "bin"
)

// ParseXAxis normalizes a configured x-axis name
func ParseXAxis(name string) (XAxis, error) {
	switch x := XAxis(strings.ToLower(strings.TrimSpace(name))); x {
	case XAxisFrequency, XAxisBin:
		return x, nil
	case "":
		return XAxisFrequency, nil
	default:
		return "", fmt.Errorf("unknown spectrum x axis %q", name)
	}
}

// SpectrumConfig tunes the frequency-domain plot
type SpectrumConfig struct {
	MinChannelSamples int     `json:"min_channel_samples"` // below this nothing is drawn
	FFTSize           int     `json:"fft_size"`
	SampleRate        int     `json:"sample_rate"`
	MagnitudeDivisor  float64 `json:"magnitude_divisor"` // vertical sensitivity
	Window            string  `json:"window"`
	Scaling           string  `json:"scaling"`
	XAxis             string  `json:"x_axis"`
	ChannelOffset     int     `json:"channel_offset"`
	ChannelStride     int     `json:"channel_stride"`
}

// DefaultSpectrumConfig returns the stock spectrum tuning
func DefaultSpectrumConfig() SpectrumConfig {
	return SpectrumConfig{
		MinChannelSamples: 22050,
		FFTSize:           16384,
		SampleRate:        44100,
		MagnitudeDivisor:  2000,
		Window:            string(analyzers.WindowHann),
		Scaling:           string(analyzers.ScaleSqrtN),
		XAxis:             string(XAxisFrequency),
		ChannelOffset:     0,
		ChannelStride:     2,
	}
}

// SpectrumTransform turns one channel of the sample window into a magnitude
// spectrum polyline. All per-size state lives in an immutable plan built at
// construction, so identical input always yields identical output.
type SpectrumTransform struct {
	config   SpectrumConfig
	xAxis    XAxis
	analyzer *analyzers.SpectralAnalyzer
}

// NewSpectrumTransform validates the tuning and builds the FFT plan
func NewSpectrumTransform(config SpectrumConfig) (*SpectrumTransform, error) {
	if config.MinChannelSamples < config.FFTSize {
		return nil, fmt.Errorf("min channel samples (%d) must cover the fft size (%d)",
			config.MinChannelSamples, config.FFTSize)
	}
	if config.MagnitudeDivisor == 0 {
		return nil, fmt.Errorf("magnitude divisor must be non-zero")
	}
	if config.ChannelStride <= 0 || config.ChannelOffset < 0 || config.ChannelOffset >= config.ChannelStride {
		return nil, fmt.Errorf("invalid channel selection offset=%d stride=%d",
			config.ChannelOffset, config.ChannelStride)
	}

	windowType, err := analyzers.ParseWindowType(config.Window)
	if err != nil {
		return nil, err
	}
	scaling, err := analyzers.ParseScalingMode(config.Scaling)
	if err != nil {
		return nil, err
	}
	xAxis, err := ParseXAxis(config.XAxis)
	if err != nil {
		return nil, err
	}

	plan, err := analyzers.NewSpectralPlan(analyzers.PlanConfig{
		Size:       config.FFTSize,
		SampleRate: config.SampleRate,
		Window:     windowType,
		Scaling:    scaling,
	}, analyzers.NewWindowGenerator())
	if err != nil {
		return nil, fmt.Errorf("failed to build spectral plan: %w", err)
	}

	return &SpectrumTransform{
		config:   config,
		xAxis:    xAxis,
		analyzer: analyzers.NewSpectralAnalyzer(plan),
	}, nil
}

// Config returns the effective tuning
func (t *SpectrumTransform) Config() SpectrumConfig {
	return t.config
}

// Bins returns the fixed number of points a non-empty Compute produces
func (t *SpectrumTransform) Bins() int {
	return t.analyzer.Plan().Bins()
}

// Analyze extracts the analysed channel and computes its spectrum. ok is
// false when the channel holds fewer than MinChannelSamples samples.
func (t *SpectrumTransform) Analyze(snapshot []int16) (*analyzers.Spectrum, bool) {
	channel := audio.Channel(snapshot, t.config.ChannelOffset, t.config.ChannelStride)
	if len(channel) < t.config.MinChannelSamples {
		return nil, false
	}

	spectrum, err := t.analyzer.ComputeSpectrum(channel)
	if err != nil {
		// unreachable: MinChannelSamples >= FFTSize is enforced at construction
		return nil, false
	}
	return spectrum, true
}

// Compute returns the spectrum polyline, or an empty one when there is not
// enough data yet
func (t *SpectrumTransform) Compute(snapshot []int16, canvas Canvas) Polyline {
	spectrum, ok := t.Analyze(snapshot)
	if !ok {
		return Polyline{}
	}
	return t.Project(spectrum, canvas)
}

// Project maps every bin of spectrum into canvas space. Higher magnitudes
// draw upward from the vertical centre.
func (t *SpectrumTransform) Project(spectrum *analyzers.Spectrum, canvas Canvas) Polyline {
	binCount := float64(len(spectrum.Magnitudes))
	centre := canvas.Height / 2

	line := make(Polyline, len(spectrum.Magnitudes))
	for k, mag := range spectrum.Magnitudes {
		xv := float64(k)
		if t.xAxis == XAxisFrequency {
			xv = spectrum.Frequency(k)
		}
		line[k] = Point{
			X: xv * canvas.Width / binCount,
			Y: -mag/t.config.MagnitudeDivisor + centre,
		}
	}
	return line
}

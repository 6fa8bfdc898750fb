package analyzers

import (
	"fmt"
	"math"
	"math/bits"
	"math/cmplx"
	"strings"

	"github.com/mjibson/go-dsp/fft"
	"gonum.org/v1/gonum/floats"

	"github.com/RyanBlaney/pcmscope/pkg/logging"
)

// ScalingMode selects how FFT magnitudes are normalized
type ScalingMode string

const (
	// ScaleSqrtN divides by sqrt(N), keeping amplitude independent of size
	ScaleSqrtN ScalingMode = "sqrt_n"
	// ScaleN divides by N
	ScaleN ScalingMode = "n"
	// ScaleNone keeps raw magnitudes
	ScaleNone ScalingMode = "none"
)

// ParseScalingMode normalizes a configured scaling name
func ParseScalingMode(name string) (ScalingMode, error) {
	switch sm := ScalingMode(strings.ToLower(strings.TrimSpace(name))); sm {
	case ScaleSqrtN, ScaleN, ScaleNone:
		return sm, nil
	case "":
		return ScaleSqrtN, nil
	default:
		return "", fmt.Errorf("unknown spectrum scaling %q", name)
	}
}

// PlanConfig fixes everything a SpectralPlan derives once
type PlanConfig struct {
	Size       int         // FFT length, power of two
	SampleRate int         // Hz
	Window     WindowType  // tapering function
	Scaling    ScalingMode // magnitude normalization
}

// SpectralPlan holds the immutable per-size state of the analysis: window
// coefficients, scale factor and bin layout. Safe for concurrent reads.
type SpectralPlan struct {
	size       int
	sampleRate int
	window     WindowType
	scaling    ScalingMode
	coeffs     []float64
	scale      float64
	bins       int
}

// NewSpectralPlan validates the config and precomputes the plan
func NewSpectralPlan(config PlanConfig, generator *WindowGenerator) (*SpectralPlan, error) {
	if config.Size < 2 || bits.OnesCount(uint(config.Size)) != 1 {
		return nil, fmt.Errorf("fft size must be a power of two >= 2, got %d", config.Size)
	}
	if config.SampleRate <= 0 {
		return nil, fmt.Errorf("sample rate must be positive, got %d", config.SampleRate)
	}
	if generator == nil {
		generator = NewWindowGenerator()
	}

	coeffs, err := generator.Generate(config.Window, config.Size)
	if err != nil {
		return nil, err
	}

	scale := 1.0
	switch config.Scaling {
	case ScaleSqrtN, "":
		scale = 1 / math.Sqrt(float64(config.Size))
	case ScaleN:
		scale = 1 / float64(config.Size)
	case ScaleNone:
	default:
		return nil, fmt.Errorf("unknown spectrum scaling %q", config.Scaling)
	}

	// go-dsp memoizes twiddle factors per size; compute them up front so the
	// first frame doesn't pay for it
	fft.EnsureRadix2Factors(config.Size)

	return &SpectralPlan{
		size:       config.Size,
		sampleRate: config.SampleRate,
		window:     config.Window,
		scaling:    config.Scaling,
		coeffs:     coeffs,
		scale:      scale,
		bins:       config.Size/2 + 1,
	}, nil
}

// Size returns the FFT length
func (p *SpectralPlan) Size() int { return p.size }

// Bins returns the number of output bins, DC through Nyquist inclusive
func (p *SpectralPlan) Bins() int { return p.bins }

// FreqResolution returns the width of one bin in Hz
func (p *SpectralPlan) FreqResolution() float64 {
	return float64(p.sampleRate) / float64(p.size)
}

// Spectrum is a single-frame magnitude spectrum
type Spectrum struct {
	Magnitudes     []float64 `json:"magnitudes"`
	SampleRate     int       `json:"sample_rate"`
	WindowSize     int       `json:"window_size"`
	FreqBins       int       `json:"freq_bins"`
	FreqResolution float64   `json:"freq_resolution"` // Hz per bin
}

// Frequency returns the centre frequency of bin k in Hz
func (s *Spectrum) Frequency(k int) float64 {
	return float64(k) * s.FreqResolution
}

// Peak returns the frequency and magnitude of the strongest non-DC bin
func (s *Spectrum) Peak() (float64, float64) {
	if len(s.Magnitudes) < 2 {
		return 0, 0
	}
	k := floats.MaxIdx(s.Magnitudes[1:]) + 1
	return s.Frequency(k), s.Magnitudes[k]
}

// SpectralAnalyzer computes windowed FFT magnitude spectra against a plan
type SpectralAnalyzer struct {
	plan   *SpectralPlan
	logger logging.Logger
}

// NewSpectralAnalyzer creates a new spectral analyzer
func NewSpectralAnalyzer(plan *SpectralPlan) *SpectralAnalyzer {
	analyzer := &SpectralAnalyzer{
		plan: plan,
		logger: logging.WithFields(logging.Fields{
			"component":   "spectral_analyzer",
			"fft_size":    plan.size,
			"sample_rate": plan.sampleRate,
		}),
	}

	analyzer.logger.Debug("Spectral plan ready", logging.Fields{
		"window":          plan.window,
		"scaling":         plan.scaling,
		"freq_bins":       plan.bins,
		"freq_resolution": plan.FreqResolution(),
	})

	return analyzer
}

// Plan returns the shared plan
func (sa *SpectralAnalyzer) Plan() *SpectralPlan {
	return sa.plan
}

// ComputeSpectrum windows the first plan.Size() samples of signal, runs a
// forward FFT and returns the scaled magnitudes of bins 0..N/2.
func (sa *SpectralAnalyzer) ComputeSpectrum(signal []float64) (*Spectrum, error) {
	n := sa.plan.size
	if len(signal) < n {
		return nil, fmt.Errorf("signal too short: need %d samples, got %d", n, len(signal))
	}

	windowed := make([]float64, n)
	floats.MulTo(windowed, signal[:n], sa.plan.coeffs)

	fftResult := sa.FFT(windowed)

	magnitude := make([]float64, sa.plan.bins)
	for k := range magnitude {
		magnitude[k] = cmplx.Abs(fftResult[k])
	}
	if sa.plan.scale != 1 {
		floats.Scale(sa.plan.scale, magnitude)
	}

	return &Spectrum{
		Magnitudes:     magnitude,
		SampleRate:     sa.plan.sampleRate,
		WindowSize:     n,
		FreqBins:       sa.plan.bins,
		FreqResolution: sa.plan.FreqResolution(),
	}, nil
}

// FFT computes the forward transform of a real signal using mjibson/go-dsp
func (sa *SpectralAnalyzer) FFT(x []float64) []complex128 {
	if len(x) == 0 {
		return []complex128{}
	}
	return fft.FFTReal(x)
}

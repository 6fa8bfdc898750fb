package analyzers

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type SpectralAnalyzerTestSuite struct {
	suite.Suite
	generator *WindowGenerator
	analyzer  *SpectralAnalyzer
	size      int
	rate      int
}

func (s *SpectralAnalyzerTestSuite) SetupSuite() {
	s.size = 4096
	s.rate = 44100
	s.generator = NewWindowGenerator()

	plan, err := NewSpectralPlan(PlanConfig{
		Size:       s.size,
		SampleRate: s.rate,
		Window:     WindowHann,
		Scaling:    ScaleSqrtN,
	}, s.generator)
	s.Require().NoError(err)
	s.analyzer = NewSpectralAnalyzer(plan)
}

func (s *SpectralAnalyzerTestSuite) sine(bin int, amplitude float64, n int) []float64 {
	freq := float64(bin) * float64(s.rate) / float64(s.size)
	out := make([]float64, n)
	for i := range out {
		out[i] = amplitude * math.Sin(2*math.Pi*freq*float64(i)/float64(s.rate))
	}
	return out
}

func (s *SpectralAnalyzerTestSuite) TestBinLayout() {
	spectrum, err := s.analyzer.ComputeSpectrum(make([]float64, s.size))
	s.Require().NoError(err)

	s.Equal(s.size/2+1, spectrum.FreqBins)
	s.Len(spectrum.Magnitudes, s.size/2+1)
	s.InDelta(float64(s.rate)/float64(s.size), spectrum.FreqResolution, 1e-12)
	s.InDelta(float64(s.rate)/2, spectrum.Frequency(spectrum.FreqBins-1), 1e-9)
}

func (s *SpectralAnalyzerTestSuite) TestSinePeak() {
	spectrum, err := s.analyzer.ComputeSpectrum(s.sine(200, 10000, s.size))
	s.Require().NoError(err)

	hz, mag := spectrum.Peak()
	s.InDelta(spectrum.Frequency(200), hz, 1e-9)
	s.Greater(mag, 0.0)
}

func (s *SpectralAnalyzerTestSuite) TestUsesOnlyFirstWindow() {
	signal := s.sine(64, 5000, s.size)
	extended := append(append([]float64{}, signal...), s.sine(900, 30000, s.size)...)

	a, err := s.analyzer.ComputeSpectrum(signal)
	s.Require().NoError(err)
	b, err := s.analyzer.ComputeSpectrum(extended)
	s.Require().NoError(err)

	s.Equal(a.Magnitudes, b.Magnitudes)
}

func (s *SpectralAnalyzerTestSuite) TestDeterministic() {
	signal := s.sine(321, 1234, s.size)
	a, err := s.analyzer.ComputeSpectrum(signal)
	s.Require().NoError(err)
	b, err := s.analyzer.ComputeSpectrum(signal)
	s.Require().NoError(err)

	s.Equal(a.Magnitudes, b.Magnitudes)
}

func (s *SpectralAnalyzerTestSuite) TestShortSignal() {
	_, err := s.analyzer.ComputeSpectrum(make([]float64, s.size-1))
	s.Error(err)
}

func TestSpectralAnalyzerTestSuite(t *testing.T) {
	suite.Run(t, new(SpectralAnalyzerTestSuite))
}

func TestScalingModes(t *testing.T) {
	type test struct {
		scaling ScalingMode
		wantDC  float64
	}

	const n = 256
	tests := []test{
		{ScaleNone, 2 * n},
		{ScaleSqrtN, 2 * math.Sqrt(n)},
		{ScaleN, 2},
	}

	signal := make([]float64, n)
	for i := range signal {
		signal[i] = 2
	}

	for _, tt := range tests {
		plan, err := NewSpectralPlan(PlanConfig{Size: n, SampleRate: 8000, Window: WindowRectangular, Scaling: tt.scaling}, nil)
		require.NoError(t, err)

		spectrum, err := NewSpectralAnalyzer(plan).ComputeSpectrum(signal)
		require.NoError(t, err)
		assert.InDelta(t, tt.wantDC, spectrum.Magnitudes[0], 1e-9, string(tt.scaling))
		assert.InDelta(t, 0, spectrum.Magnitudes[1], 1e-9, string(tt.scaling))
	}
}

func TestNewSpectralPlanValidation(t *testing.T) {
	type test struct {
		name   string
		config PlanConfig
	}

	tests := []test{
		{"not power of two", PlanConfig{Size: 1000, SampleRate: 44100, Window: WindowHann}},
		{"too small", PlanConfig{Size: 1, SampleRate: 44100, Window: WindowHann}},
		{"bad rate", PlanConfig{Size: 1024, SampleRate: 0, Window: WindowHann}},
		{"bad window", PlanConfig{Size: 1024, SampleRate: 44100, Window: "kaiser"}},
		{"bad scaling", PlanConfig{Size: 1024, SampleRate: 44100, Window: WindowHann, Scaling: "log"}},
	}

	for _, tt := range tests {
		_, err := NewSpectralPlan(tt.config, nil)
		assert.Error(t, err, tt.name)
	}
}

func TestWindowGenerator(t *testing.T) {
	wg := NewWindowGenerator()

	hann, err := wg.Generate(WindowHann, 64)
	require.NoError(t, err)
	require.Len(t, hann, 64)
	assert.InDelta(t, 0, hann[0], 1e-12)
	for _, c := range hann {
		assert.True(t, c >= 0 && c <= 1)
	}

	again, err := wg.Generate(WindowHann, 64)
	require.NoError(t, err)
	assert.Same(t, &hann[0], &again[0])

	rect, err := wg.Generate(WindowRectangular, 8)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 1, 1, 1, 1, 1, 1, 1}, rect)

	_, err = wg.Generate(WindowHann, 0)
	assert.Error(t, err)
}

func TestParseNames(t *testing.T) {
	wt, err := ParseWindowType(" Hanning ")
	require.NoError(t, err)
	assert.Equal(t, WindowHann, wt)

	wt, err = ParseWindowType("")
	require.NoError(t, err)
	assert.Equal(t, WindowHann, wt)

	wt, err = ParseWindowType("none")
	require.NoError(t, err)
	assert.Equal(t, WindowRectangular, wt)

	_, err = ParseWindowType("kaiser")
	assert.Error(t, err)

	sm, err := ParseScalingMode("")
	require.NoError(t, err)
	assert.Equal(t, ScaleSqrtN, sm)

	_, err = ParseScalingMode("db")
	assert.Error(t, err)
}

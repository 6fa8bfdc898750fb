package plot

// WaveformConfig tunes the time-domain plot
type WaveformConfig struct {
	MaxSamples       int     `json:"max_samples"`       // horizontal compression
	AmplitudeDivisor float64 `json:"amplitude_divisor"` // vertical sensitivity
	UpperBand        float64 `json:"upper_band"`        // channel A baseline, fraction of height
	LowerBand        float64 `json:"lower_band"`        // channel B baseline, fraction of height
}

// DefaultWaveformConfig returns the stock waveform tuning
func DefaultWaveformConfig() WaveformConfig {
	return WaveformConfig{
		MaxSamples:       40000,
		AmplitudeDivisor: 500,
		UpperBand:        0.25,
		LowerBand:        0.75,
	}
}

// WaveformTransform maps the front of a sample window onto two polylines,
// one per interleaved channel, drawn in separate horizontal bands
type WaveformTransform struct {
	config WaveformConfig
}

// NewWaveformTransform creates a transform, filling zero fields with defaults
func NewWaveformTransform(config WaveformConfig) *WaveformTransform {
	def := DefaultWaveformConfig()
	if config.MaxSamples <= 0 {
		config.MaxSamples = def.MaxSamples
	}
	if config.AmplitudeDivisor == 0 {
		config.AmplitudeDivisor = def.AmplitudeDivisor
	}
	if config.UpperBand == 0 && config.LowerBand == 0 {
		config.UpperBand = def.UpperBand
		config.LowerBand = def.LowerBand
	}
	return &WaveformTransform{config: config}
}

// Config returns the effective tuning
func (t *WaveformTransform) Config() WaveformConfig {
	return t.config
}

// Compute de-interleaves up to MaxSamples samples from the front of snapshot.
// Even indices go to the first polyline, odd to the second; x advances with
// the sample index across both so the channels stay time-aligned.
func (t *WaveformTransform) Compute(snapshot []int16, canvas Canvas) (Polyline, Polyline) {
	n := min(len(snapshot), t.config.MaxSamples)

	a := make(Polyline, 0, (n+1)/2)
	b := make(Polyline, 0, n/2)

	maxSamples := float64(t.config.MaxSamples)
	upper := canvas.Height * t.config.UpperBand
	lower := canvas.Height * t.config.LowerBand

	for i := range n {
		x := float64(i) * canvas.Width / maxSamples
		y := float64(snapshot[i]) / t.config.AmplitudeDivisor
		if i%2 == 0 {
			a = append(a, Point{X: x, Y: y + upper})
		} else {
			b = append(b, Point{X: x, Y: y + lower})
		}
	}

	return a, b
}

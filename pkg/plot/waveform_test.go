package plot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ramp(n int) []int16 {
	out := make([]int16, n)
	for i := range out {
		out[i] = int16(i % 1000)
	}
	return out
}

func TestWaveformPointCounts(t *testing.T) {
	type test struct {
		name  string
		len   int
		wantA int
		wantB int
	}

	tests := []test{
		{"empty", 0, 0, 0},
		{"single", 1, 1, 0},
		{"odd", 7, 4, 3},
		{"even", 10, 5, 5},
		{"capped", 44100, 20000, 20000},
	}

	transform := NewWaveformTransform(DefaultWaveformConfig())
	canvas := Canvas{Width: 800, Height: 600}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, b := transform.Compute(ramp(tt.len), canvas)
			assert.Len(t, a, tt.wantA)
			assert.Len(t, b, tt.wantB)
		})
	}
}

func TestWaveformCoordinates(t *testing.T) {
	transform := NewWaveformTransform(WaveformConfig{
		MaxSamples:       4,
		AmplitudeDivisor: 500,
		UpperBand:        0.25,
		LowerBand:        0.75,
	})
	canvas := Canvas{Width: 400, Height: 200}

	a, b := transform.Compute([]int16{500, -1000, 0, 250, 9999}, canvas)
	require.Len(t, a, 2)
	require.Len(t, b, 2)

	assert.Equal(t, Point{X: 0, Y: 1 + 50}, a[0])
	assert.Equal(t, Point{X: 100, Y: -2 + 150}, b[0])
	assert.Equal(t, Point{X: 200, Y: 50}, a[1])
	assert.Equal(t, Point{X: 300, Y: 0.5 + 150}, b[1])
}

func TestWaveformSilenceSitsOnBands(t *testing.T) {
	transform := NewWaveformTransform(DefaultWaveformConfig())
	canvas := Canvas{Width: 1000, Height: 400}

	a, b := transform.Compute(make([]int16, 100), canvas)
	for _, p := range a {
		assert.Equal(t, 100.0, p.Y)
	}
	for _, p := range b {
		assert.Equal(t, 300.0, p.Y)
	}
}

func TestWaveformXStrictlyIncreasing(t *testing.T) {
	transform := NewWaveformTransform(DefaultWaveformConfig())
	a, b := transform.Compute(ramp(44100), Canvas{Width: 1280, Height: 720})

	for _, line := range []Polyline{a, b} {
		for i := 1; i < len(line); i++ {
			require.Greater(t, line[i].X, line[i-1].X, "index %d", i)
		}
		assert.Less(t, line[len(line)-1].X, 1280.0)
	}
}

func TestWaveformDefaultsFilled(t *testing.T) {
	transform := NewWaveformTransform(WaveformConfig{})
	assert.Equal(t, DefaultWaveformConfig(), transform.Config())
}

package analyzers

import (
	"fmt"
	"strings"
	"sync"

	"github.com/mjibson/go-dsp/window"
)

// WindowType names a tapering function applied before the FFT
type WindowType string

const (
	WindowHann        WindowType = "hann"
	WindowHamming     WindowType = "hamming"
	WindowBlackman    WindowType = "blackman"
	WindowRectangular WindowType = "rectangular"
)

// ParseWindowType normalizes a configured window name. An empty name
// selects Hann.
func ParseWindowType(name string) (WindowType, error) {
	switch wt := WindowType(strings.ToLower(strings.TrimSpace(name))); wt {
	case WindowHann, WindowHamming, WindowBlackman, WindowRectangular:
		return wt, nil
	case "", "hanning":
		return WindowHann, nil
	case "none", "rect":
		return WindowRectangular, nil
	default:
		return "", fmt.Errorf("unknown window function %q", name)
	}
}

type windowKey struct {
	windowType WindowType
	size       int
}

// WindowGenerator builds and caches window coefficients. Returned slices are
// shared and must be treated as read-only.
type WindowGenerator struct {
	mu    sync.Mutex
	cache map[windowKey][]float64
}

func NewWindowGenerator() *WindowGenerator {
	return &WindowGenerator{cache: make(map[windowKey][]float64)}
}

// Generate returns the coefficients of the given window
func (wg *WindowGenerator) Generate(windowType WindowType, size int) ([]float64, error) {
	if size <= 0 {
		return nil, fmt.Errorf("window size must be positive, got %d", size)
	}

	key := windowKey{windowType: windowType, size: size}

	wg.mu.Lock()
	defer wg.mu.Unlock()

	if coeffs, ok := wg.cache[key]; ok {
		return coeffs, nil
	}

	var coeffs []float64
	switch windowType {
	case WindowHann:
		coeffs = window.Hann(size)
	case WindowHamming:
		coeffs = window.Hamming(size)
	case WindowBlackman:
		coeffs = window.Blackman(size)
	case WindowRectangular:
		coeffs = window.Rectangular(size)
	default:
		return nil, fmt.Errorf("unknown window function %q", windowType)
	}

	wg.cache[key] = coeffs
	return coeffs, nil
}

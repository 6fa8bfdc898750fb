package plot

import (
	"fmt"
	"strings"
)

// Mode is a visualization mode
type Mode int

const (
	ModeWaveform Mode = iota
	ModeSpectrum
)

var modes = []Mode{ModeWaveform, ModeSpectrum}

// Modes returns every mode in cycle order
func Modes() []Mode {
	return append([]Mode(nil), modes...)
}

func (m Mode) String() string {
	switch m {
	case ModeWaveform:
		return "waveform"
	case ModeSpectrum:
		return "spectrum"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// ParseMode accepts the String form of a mode
func ParseMode(name string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "waveform", "wave":
		return ModeWaveform, nil
	case "spectrum", "fft":
		return ModeSpectrum, nil
	default:
		return 0, fmt.Errorf("unknown plot mode %q", name)
	}
}

// ModeCycle holds the active mode and advances round-robin. Callers feed it
// one Advance per discrete toggle event.
type ModeCycle struct {
	index int
}

// NewModeCycle starts the cycle at the given mode
func NewModeCycle(initial Mode) *ModeCycle {
	c := &ModeCycle{}
	for i, m := range modes {
		if m == initial {
			c.index = i
		}
	}
	return c
}

// Current returns the active mode without advancing
func (c *ModeCycle) Current() Mode {
	return modes[c.index]
}

// Advance moves to the next mode, wrapping after the last, and returns it
func (c *ModeCycle) Advance() Mode {
	c.index = (c.index + 1) % len(modes)
	return modes[c.index]
}

// MarshalText encodes the mode by name
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

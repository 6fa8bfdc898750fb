package visualizer

import (
	"github.com/RyanBlaney/pcmscope/pkg/plot"
	"github.com/RyanBlaney/pcmscope/pkg/stream/common"
)

// Frame is the geometry produced by one tick, ready for a renderer
type Frame struct {
	Sequence  uint64             `json:"sequence" yaml:"sequence"`
	Mode      plot.Mode          `json:"mode" yaml:"mode"`
	Canvas    plot.Canvas        `json:"canvas" yaml:"canvas"`
	Polylines []plot.Polyline    `json:"-" yaml:"-"`
	Outcome   common.OutcomeKind `json:"outcome" yaml:"outcome"`
	WindowLen int                `json:"window_len" yaml:"window_len"`
	WindowCap int                `json:"window_cap" yaml:"window_cap"`
	PeakHz    float64            `json:"peak_hz,omitempty" yaml:"peak_hz,omitempty"` // spectrum mode only
}

// Fill returns the window occupancy in [0, 1]
func (f *Frame) Fill() float64 {
	if f.WindowCap == 0 {
		return 0
	}
	return float64(f.WindowLen) / float64(f.WindowCap)
}

// Points returns the total number of points across all polylines
func (f *Frame) Points() int {
	n := 0
	for _, line := range f.Polylines {
		n += len(line)
	}
	return n
}

// Renderer turns frames into something visible. Canvas is queried every
// tick so resizes take effect on the next frame.
type Renderer interface {
	Canvas() plot.Canvas
	Render(frame *Frame) error
}

// EventKind is a discrete input event delivered to the frame loop
type EventKind int

const (
	EventToggle EventKind = iota
	EventResize
	EventQuit
)

func (k EventKind) String() string {
	switch k {
	case EventToggle:
		return "toggle"
	case EventResize:
		return "resize"
	case EventQuit:
		return "quit"
	default:
		return "unknown"
	}
}

// Event is one input event
type Event struct {
	Kind EventKind
}

package summary

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/RyanBlaney/pcmscope/internal/metrics"
	"github.com/RyanBlaney/pcmscope/internal/visualizer"
	"github.com/RyanBlaney/pcmscope/pkg/plot"
)

// Output formats accepted by Write
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// ParseFormat normalizes a report format name. Empty selects JSON.
func ParseFormat(format string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case FormatJSON, "":
		return FormatJSON, nil
	case FormatYAML:
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unsupported output format %q", format)
	}
}

// FrameRecord is the geometry digest of a single rendered frame
type FrameRecord struct {
	Sequence   uint64     `json:"sequence" yaml:"sequence"`
	Mode       string     `json:"mode" yaml:"mode"`
	Outcome    string     `json:"outcome" yaml:"outcome"`
	WindowLen  int        `json:"window_len" yaml:"window_len"`
	WindowFill float64    `json:"window_fill" yaml:"window_fill"`
	Polylines  []int      `json:"polylines" yaml:"polylines"` // point count per polyline
	Points     int        `json:"points" yaml:"points"`
	PeakHz     float64    `json:"peak_hz,omitempty" yaml:"peak_hz,omitempty"`
	Bounds     *BoundsBox `json:"bounds,omitempty" yaml:"bounds,omitempty"`
}

// BoundsBox is the bounding box of every point in a frame
type BoundsBox struct {
	MinX float64 `json:"min_x" yaml:"min_x"`
	MinY float64 `json:"min_y" yaml:"min_y"`
	MaxX float64 `json:"max_x" yaml:"max_x"`
	MaxY float64 `json:"max_y" yaml:"max_y"`
}

// Report aggregates a capture run
type Report struct {
	Canvas   plot.Canvas    `json:"canvas" yaml:"canvas"`
	Frames   int            `json:"frames" yaml:"frames"`
	Modes    map[string]int `json:"modes" yaml:"modes"`
	Outcomes map[string]int `json:"outcomes" yaml:"outcomes"`
	Points   *metrics.Stats `json:"points" yaml:"points"`
	Started  time.Time      `json:"started" yaml:"started"`
	Records  []FrameRecord  `json:"records,omitempty" yaml:"records,omitempty"`
}

// Renderer is a headless renderer with a fixed canvas that records what it
// would have drawn
type Renderer struct {
	canvas  plot.Canvas
	verbose bool
	started time.Time
	records []FrameRecord
}

// New creates a headless renderer. With verbose set, per-frame records are
// included in the report.
func New(canvas plot.Canvas, verbose bool) *Renderer {
	return &Renderer{
		canvas:  canvas,
		verbose: verbose,
		started: time.Now(),
	}
}

func (r *Renderer) Canvas() plot.Canvas {
	return r.canvas
}

func (r *Renderer) Render(frame *visualizer.Frame) error {
	if frame == nil {
		return fmt.Errorf("nil frame")
	}

	record := FrameRecord{
		Sequence:   frame.Sequence,
		Mode:       frame.Mode.String(),
		Outcome:    frame.Outcome.String(),
		WindowLen:  frame.WindowLen,
		WindowFill: frame.Fill(),
		Polylines:  make([]int, len(frame.Polylines)),
		Points:     frame.Points(),
		PeakHz:     frame.PeakHz,
	}

	var box *BoundsBox
	for i, line := range frame.Polylines {
		record.Polylines[i] = len(line)
		lo, hi, ok := line.Bounds()
		if !ok {
			continue
		}
		if box == nil {
			box = &BoundsBox{MinX: lo.X, MinY: lo.Y, MaxX: hi.X, MaxY: hi.Y}
			continue
		}
		box.MinX = min(box.MinX, lo.X)
		box.MinY = min(box.MinY, lo.Y)
		box.MaxX = max(box.MaxX, hi.X)
		box.MaxY = max(box.MaxY, hi.Y)
	}
	record.Bounds = box

	r.records = append(r.records, record)
	return nil
}

// Records returns the frames rendered so far
func (r *Renderer) Records() []FrameRecord {
	return r.records
}

// Report summarizes everything rendered so far
func (r *Renderer) Report() *Report {
	report := &Report{
		Canvas:   r.canvas,
		Frames:   len(r.records),
		Modes:    map[string]int{},
		Outcomes: map[string]int{},
		Started:  r.started,
	}

	points := make([]float64, 0, len(r.records))
	for _, rec := range r.records {
		report.Modes[rec.Mode]++
		report.Outcomes[rec.Outcome]++
		points = append(points, float64(rec.Points))
	}
	report.Points = metrics.Summarize(points)

	if r.verbose {
		report.Records = r.records
	}
	return report
}

// Write encodes the report in the given format
func (r *Renderer) Write(w io.Writer, format string) error {
	format, err := ParseFormat(format)
	if err != nil {
		return err
	}
	report := r.Report()

	switch format {
	case FormatJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(report); err != nil {
			return fmt.Errorf("failed to encode report as json: %w", err)
		}
	case FormatYAML:
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2)
		if err := encoder.Encode(report); err != nil {
			return fmt.Errorf("failed to encode report as yaml: %w", err)
		}
		return encoder.Close()
	}
	return nil
}

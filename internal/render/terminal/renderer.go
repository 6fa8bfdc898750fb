package terminal

import (
	"context"
	"fmt"
	"sync"

	"github.com/gdamore/tcell/v2"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/RyanBlaney/pcmscope/internal/visualizer"
	"github.com/RyanBlaney/pcmscope/pkg/logging"
	"github.com/RyanBlaney/pcmscope/pkg/plot"
)

var titleCaser = cases.Title(language.English)

// Config configures the terminal renderer
type Config struct {
	StatusLine bool
}

// pen styles, one per polyline index
var penStyles = []tcell.Style{
	tcell.StyleDefault.Foreground(tcell.ColorAqua),
	tcell.StyleDefault.Foreground(tcell.ColorFuchsia),
}

// Renderer draws frames as braille line art on a tcell screen
type Renderer struct {
	screen      tcell.Screen
	raster      *Braille
	statusLine  bool
	statusStyle tcell.Style
	logger      logging.Logger
	closeOnce   sync.Once
}

// New initializes the terminal and returns a renderer owning it
func New(config Config, logger logging.Logger) (*Renderer, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("failed to create terminal screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize terminal screen: %w", err)
	}
	return NewWithScreen(screen, config, logger), nil
}

// NewWithScreen wraps an already initialized screen
func NewWithScreen(screen tcell.Screen, config Config, logger logging.Logger) *Renderer {
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}

	screen.HideCursor()
	screen.Clear()

	return &Renderer{
		screen:      screen,
		raster:      NewBraille(0, 0),
		statusLine:  config.StatusLine,
		statusStyle: tcell.StyleDefault.Reverse(true),
		logger:      logger.WithFields(logging.Fields{"component": "terminal_renderer"}),
	}
}

// Canvas returns the plot area in braille dots, excluding the status line
func (r *Renderer) Canvas() plot.Canvas {
	cols, rows := r.plotSize()
	return plot.Canvas{Width: float64(cols * dotsX), Height: float64(rows * dotsY)}
}

func (r *Renderer) plotSize() (int, int) {
	cols, rows := r.screen.Size()
	if r.statusLine && rows > 0 {
		rows--
	}
	return max(cols, 0), max(rows, 0)
}

// Render rasterizes the frame and flushes it to the terminal
func (r *Renderer) Render(frame *visualizer.Frame) error {
	if frame == nil {
		return fmt.Errorf("nil frame")
	}

	cols := int(frame.Canvas.Width) / dotsX
	rows := int(frame.Canvas.Height) / dotsY
	r.raster.Resize(cols, rows)
	for i, line := range frame.Polylines {
		r.raster.SetPen(uint8(i % len(penStyles)))
		r.raster.Polyline(line)
	}

	r.screen.Clear()
	for row := range rows {
		for col := range cols {
			ch, pen, ok := r.raster.Cell(col, row)
			if !ok {
				continue
			}
			r.screen.SetContent(col, row, ch, nil, penStyles[pen])
		}
	}

	if r.statusLine {
		r.drawStatus(frame)
	}

	r.screen.Show()
	return nil
}

func (r *Renderer) drawStatus(frame *visualizer.Frame) {
	width, height := r.screen.Size()
	if height == 0 {
		return
	}

	status := fmt.Sprintf(" %s | window %5.1f%% | source %s | frame %d",
		titleCaser.String(frame.Mode.String()),
		frame.Fill()*100,
		frame.Outcome,
		frame.Sequence,
	)
	if frame.Mode == plot.ModeSpectrum && frame.PeakHz > 0 {
		status += fmt.Sprintf(" | peak %.1f Hz", frame.PeakHz)
	}
	status += " | space: toggle  q: quit "

	row := height - 1
	col := 0
	for _, ch := range status {
		if col >= width {
			break
		}
		r.screen.SetContent(col, row, ch, nil, r.statusStyle)
		col++
	}
	for ; col < width; col++ {
		r.screen.SetContent(col, row, ' ', nil, r.statusStyle)
	}
}

// PollEvents translates terminal input into frame-loop events until the
// screen is closed or ctx is done. Space toggles; q, Esc and Ctrl-C quit.
func (r *Renderer) PollEvents(ctx context.Context, out chan<- visualizer.Event) error {
	for {
		ev := r.screen.PollEvent()
		if ev == nil {
			return nil
		}

		var event visualizer.Event
		switch ev := ev.(type) {
		case *tcell.EventKey:
			kind, ok := keyEvent(ev)
			if !ok {
				continue
			}
			event.Kind = kind
		case *tcell.EventResize:
			r.screen.Sync()
			event.Kind = visualizer.EventResize
		default:
			continue
		}

		r.logger.Debug("Input event", logging.Fields{"event": event.Kind.String()})

		select {
		case out <- event:
		case <-ctx.Done():
			return nil
		}
	}
}

func keyEvent(ev *tcell.EventKey) (visualizer.EventKind, bool) {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return visualizer.EventQuit, true
	case tcell.KeyRune:
		switch ev.Rune() {
		case ' ':
			return visualizer.EventToggle, true
		case 'q', 'Q':
			return visualizer.EventQuit, true
		}
	}
	return 0, false
}

// Close restores the terminal. Safe to call more than once; it also
// unblocks PollEvents.
func (r *Renderer) Close() error {
	r.closeOnce.Do(r.screen.Fini)
	return nil
}

package terminal

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/suite"

	"github.com/RyanBlaney/pcmscope/internal/visualizer"
	"github.com/RyanBlaney/pcmscope/pkg/logging"
	"github.com/RyanBlaney/pcmscope/pkg/plot"
	"github.com/RyanBlaney/pcmscope/pkg/stream/common"
)

type RendererTestSuite struct {
	suite.Suite
	screen   tcell.SimulationScreen
	renderer *Renderer
}

func (s *RendererTestSuite) SetupTest() {
	s.screen = tcell.NewSimulationScreen("UTF-8")
	s.Require().NoError(s.screen.Init())
	s.screen.SetSize(20, 6)
	s.renderer = NewWithScreen(s.screen, Config{StatusLine: true}, logging.Nop())
}

func (s *RendererTestSuite) TearDownTest() {
	s.NoError(s.renderer.Close())
}

func (s *RendererTestSuite) row(y int) string {
	cells, width, _ := s.screen.GetContents()
	var sb strings.Builder
	for x := range width {
		runes := cells[y*width+x].Runes
		if len(runes) == 0 {
			sb.WriteRune(' ')
			continue
		}
		sb.WriteRune(runes[0])
	}
	return sb.String()
}

func (s *RendererTestSuite) TestCanvasExcludesStatusLine() {
	s.Equal(plot.Canvas{Width: 40, Height: 20}, s.renderer.Canvas())

	s.screen.SetSize(30, 11)
	s.Equal(plot.Canvas{Width: 60, Height: 40}, s.renderer.Canvas())
}

func (s *RendererTestSuite) TestRenderDrawsPolylineAndStatus() {
	canvas := s.renderer.Canvas()
	frame := &visualizer.Frame{
		Sequence:  42,
		Mode:      plot.ModeWaveform,
		Canvas:    canvas,
		Outcome:   common.OutcomeData,
		WindowLen: 50,
		WindowCap: 100,
		Polylines: []plot.Polyline{
			{{X: 0, Y: 1}, {X: canvas.Width - 1, Y: 1}},
		},
	}
	s.Require().NoError(s.renderer.Render(frame))

	s.Equal(strings.Repeat("⠒", 20), s.row(0))
	s.Equal(strings.Repeat(" ", 20), s.row(1))

	status := s.row(5)
	s.True(strings.HasPrefix(status, " Waveform | window"), status)
}

func (s *RendererTestSuite) TestRenderNilFrame() {
	s.Error(s.renderer.Render(nil))
}

func (s *RendererTestSuite) TestPollEvents() {
	events := make(chan visualizer.Event, 8)
	done := make(chan error, 1)
	go func() {
		done <- s.renderer.PollEvents(context.Background(), events)
	}()

	s.screen.InjectKey(tcell.KeyRune, 'x', tcell.ModNone)
	s.screen.InjectKey(tcell.KeyRune, ' ', tcell.ModNone)
	s.screen.InjectKey(tcell.KeyRune, 'q', tcell.ModNone)
	s.screen.InjectKey(tcell.KeyEscape, 0, tcell.ModNone)

	var kinds []visualizer.EventKind
	timeout := time.After(2 * time.Second)
	for len(kinds) < 3 {
		select {
		case ev := <-events:
			if ev.Kind != visualizer.EventResize {
				kinds = append(kinds, ev.Kind)
			}
		case <-timeout:
			s.FailNow("timed out waiting for events", "got %v", kinds)
		}
	}
	s.Equal([]visualizer.EventKind{visualizer.EventToggle, visualizer.EventQuit, visualizer.EventQuit}, kinds)

	s.NoError(s.renderer.Close())
	select {
	case err := <-done:
		s.NoError(err)
	case <-time.After(2 * time.Second):
		s.FailNow("event pump did not stop after Close")
	}
}

func TestRendererTestSuite(t *testing.T) {
	suite.Run(t, new(RendererTestSuite))
}

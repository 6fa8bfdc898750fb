package visualizer

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/RyanBlaney/pcmscope/internal/metrics"
	"github.com/RyanBlaney/pcmscope/pkg/audio"
	"github.com/RyanBlaney/pcmscope/pkg/logging"
	"github.com/RyanBlaney/pcmscope/pkg/plot"
	"github.com/RyanBlaney/pcmscope/pkg/stream/common"
	"github.com/RyanBlaney/pcmscope/pkg/stream/file"
)

// scriptedSource replays a fixed list of outcomes, then reports NoData. A
// tick keeps reading through Data entries, so scripts separate ticks with
// NoData, Closed or Fatal.
type scriptedSource struct {
	script []common.ReadOutcome
	reads  int
}

func (s *scriptedSource) ReadAvailable() common.ReadOutcome {
	if s.reads >= len(s.script) {
		s.reads++
		return common.NoData()
	}
	outcome := s.script[s.reads]
	s.reads++
	return outcome
}

func (s *scriptedSource) Type() common.SourceType { return common.SourceTypeFIFO }
func (s *scriptedSource) Path() string            { return "/tmp/test.fifo" }
func (s *scriptedSource) Close() error            { return nil }

type recordingRenderer struct {
	canvas plot.Canvas
	frames []*Frame
	err    error
}

func (r *recordingRenderer) Canvas() plot.Canvas { return r.canvas }

func (r *recordingRenderer) Render(frame *Frame) error {
	r.frames = append(r.frames, frame)
	return r.err
}

type countingRecorder struct {
	counts map[string]int64
	gauges map[string]float64
	timed  int
}

func newCountingRecorder() *countingRecorder {
	return &countingRecorder{counts: map[string]int64{}, gauges: map[string]float64{}}
}

func (r *countingRecorder) Count(name string, value int64, _ ...string) { r.counts[name] += value }
func (r *countingRecorder) Gauge(name string, value float64, _ ...string) {
	r.gauges[name] = value
}
func (r *countingRecorder) Timing(string, time.Duration, ...string) { r.timed++ }
func (r *countingRecorder) Close() error                            { return nil }

func pcm(values ...int16) []byte {
	return audio.EncodeS16LE(values)
}

type DriverTestSuite struct {
	suite.Suite
	canvas plot.Canvas
}

func (s *DriverTestSuite) SetupTest() {
	s.canvas = plot.Canvas{Width: 800, Height: 600}
}

func (s *DriverTestSuite) newDriver(source common.Source, capacity int, opts ...Option) *Driver {
	spectrum, err := plot.NewSpectrumTransform(plot.DefaultSpectrumConfig())
	s.Require().NoError(err)

	opts = append([]Option{WithLogger(logging.Nop())}, opts...)
	return NewDriver(
		source,
		audio.NewSampleWindow(capacity),
		plot.NewModeCycle(plot.ModeWaveform),
		plot.NewWaveformTransform(plot.DefaultWaveformConfig()),
		spectrum,
		opts...,
	)
}

func (s *DriverTestSuite) TestDataFlowsIntoWaveform() {
	source := &scriptedSource{script: []common.ReadOutcome{
		common.Data(pcm(100, -100, 200, -200, 300)),
	}}
	driver := s.newDriver(source, 16)

	frame := driver.Tick(s.canvas)
	s.Equal(uint64(1), frame.Sequence)
	s.Equal(plot.ModeWaveform, frame.Mode)
	s.Equal(common.OutcomeData, frame.Outcome)
	s.Equal(5, frame.WindowLen)
	s.Require().Len(frame.Polylines, 2)
	s.Len(frame.Polylines[0], 3)
	s.Len(frame.Polylines[1], 2)
	s.Equal(5, frame.Points())
	s.InDelta(5.0/16, frame.Fill(), 1e-12)
}

func (s *DriverTestSuite) TestOddByteDropped() {
	recorder := newCountingRecorder()
	raw := append(pcm(1, 2), 0x7f)
	source := &scriptedSource{script: []common.ReadOutcome{common.Data(raw)}}
	driver := s.newDriver(source, 16, WithMetrics(recorder))

	frame := driver.Tick(s.canvas)
	s.Equal(2, frame.WindowLen)
	s.Equal([]int16{1, 2}, driver.Window().Snapshot())
	s.EqualValues(1, recorder.counts[metrics.MetricDroppedBytes])
	s.EqualValues(2, recorder.counts[metrics.MetricSamplesIngested])
}

func (s *DriverTestSuite) TestClosedKeepsPreviousContent() {
	source := &scriptedSource{script: []common.ReadOutcome{
		common.Data(pcm(1, 2)),
		common.NoData(),
		common.NoData(),
		common.Data(pcm(3, 4)),
		common.NoData(),
		common.Data(pcm(5, 6)),
		common.NoData(),
		common.Closed(),
		common.Closed(),
	}}
	driver := s.newDriver(source, 16)

	var frames []*Frame
	for range 6 {
		frames = append(frames, driver.Tick(s.canvas))
	}

	s.Equal(common.OutcomeClosed, frames[4].Outcome)
	s.Equal(frames[3].WindowLen, frames[4].WindowLen)
	s.Equal(frames[3].Polylines, frames[4].Polylines)
	s.Equal(frames[4].Polylines, frames[5].Polylines)
	s.Equal([]int16{1, 2, 3, 4, 5, 6}, driver.Window().Snapshot())
}

func (s *DriverTestSuite) TestTickDrainsSource() {
	source := &scriptedSource{script: []common.ReadOutcome{
		common.Data(pcm(1, 2)),
		common.Data(pcm(3, 4)),
		common.Data(pcm(5, 6)),
		common.Closed(),
	}}
	driver := s.newDriver(source, 16)

	frame := driver.Tick(s.canvas)
	s.Equal(common.OutcomeData, frame.Outcome)
	s.Equal([]int16{1, 2, 3, 4, 5, 6}, driver.Window().Snapshot())
	s.Equal(4, source.reads)

	frame = driver.Tick(s.canvas)
	s.Equal(common.OutcomeNoData, frame.Outcome)
	s.Equal(6, frame.WindowLen)
}

func (s *DriverTestSuite) TestTickReadBudget() {
	source := &scriptedSource{script: []common.ReadOutcome{
		common.Data(pcm(1, 2, 3, 4)),
		common.Data(pcm(5, 6, 7, 8)),
		common.Data(pcm(9, 10, 11, 12)),
	}}
	driver := s.newDriver(source, 4)

	driver.Tick(s.canvas)
	s.Equal(2, source.reads)
	s.Equal([]int16{5, 6, 7, 8}, driver.Window().Snapshot())

	driver.Tick(s.canvas)
	s.Equal([]int16{9, 10, 11, 12}, driver.Window().Snapshot())
}

func (s *DriverTestSuite) TestPacedFileKeepsUp() {
	const (
		rate     = 44100
		channels = 2
		seconds  = 12
		fps      = 30
	)

	samples := make([]int16, rate*channels*seconds)
	for i := range samples {
		samples[i] = int16(i / (rate * channels))
	}
	path := filepath.Join(s.T().TempDir(), "seconds.pcm")
	s.Require().NoError(os.WriteFile(path, audio.EncodeS16LE(samples), 0o644))

	config := file.DefaultConfig()
	config.Path = path
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	now := start
	source, err := file.Open(config, file.WithClock(func() time.Time { return now }))
	s.Require().NoError(err)
	defer source.Close()

	driver := s.newDriver(source, audio.DefaultWindowCapacity)
	for frame := range 10 * fps {
		now = start.Add(time.Duration(frame) * time.Second / fps)
		driver.Tick(s.canvas)
	}

	snapshot := driver.Window().Snapshot()
	s.Require().Len(snapshot, audio.DefaultWindowCapacity)
	s.Equal(int16(9), snapshot[len(snapshot)-1])
	s.Equal(int16(9), snapshot[0])
}

func (s *DriverTestSuite) TestFatalIsNotTerminal() {
	core, logs := observer.New(zapcore.DebugLevel)
	source := &scriptedSource{script: []common.ReadOutcome{
		common.Data(pcm(7, 8)),
		common.NoData(),
		common.Fatal(errors.New("input/output error")),
		common.Data(pcm(9, 10)),
	}}
	driver := s.newDriver(source, 16, WithLogger(logging.NewWithCore(core)))

	driver.Tick(s.canvas)
	frame := driver.Tick(s.canvas)
	s.Equal(common.OutcomeFatal, frame.Outcome)
	s.Equal(2, frame.WindowLen)

	frame = driver.Tick(s.canvas)
	s.Equal(4, frame.WindowLen)

	s.Equal(1, logs.FilterMessage("Failed to read sample source").Len())
}

func (s *DriverTestSuite) TestClosedLoggedOncePerTransition() {
	core, logs := observer.New(zapcore.DebugLevel)
	source := &scriptedSource{script: []common.ReadOutcome{
		common.Closed(),
		common.Closed(),
		common.Data(pcm(1, 2)),
		common.Closed(),
	}}
	driver := s.newDriver(source, 16, WithLogger(logging.NewWithCore(core)))

	for range 4 {
		driver.Tick(s.canvas)
	}
	s.Equal(2, logs.FilterMessage("Sample source closed by producer, holding last window").Len())
	s.Equal(1, logs.FilterMessage("Sample source resumed").Len())
}

func (s *DriverTestSuite) TestSpectrumNeedsEnoughSamples() {
	source := &scriptedSource{script: []common.ReadOutcome{
		common.Data(pcm(make([]int16, 2*22049)...)),
		common.NoData(),
		common.Data(pcm(make([]int16, 2)...)),
	}}
	driver := s.newDriver(source, audio.DefaultWindowCapacity)
	s.Equal(plot.ModeSpectrum, driver.Toggle())

	frame := driver.Tick(s.canvas)
	s.Require().Len(frame.Polylines, 1)
	s.Empty(frame.Polylines[0])
	s.Zero(frame.PeakHz)

	frame = driver.Tick(s.canvas)
	s.Equal(audio.DefaultWindowCapacity, frame.WindowLen)
	s.Len(frame.Polylines[0], 8193)
}

func (s *DriverTestSuite) TestToggleParity() {
	driver := s.newDriver(&scriptedSource{}, 16)
	for range 3 {
		driver.Toggle()
	}
	s.Equal(plot.ModeSpectrum, driver.Mode())
	s.Equal(plot.ModeSpectrum, driver.Tick(s.canvas).Mode)
	driver.Toggle()
	s.Equal(plot.ModeWaveform, driver.Tick(s.canvas).Mode)
}

func (s *DriverTestSuite) TestStepUsesRendererCanvas() {
	renderer := &recordingRenderer{canvas: plot.Canvas{Width: 100, Height: 50}}
	recorder := newCountingRecorder()
	driver := s.newDriver(&scriptedSource{}, 16, WithMetrics(recorder))

	frame := driver.Step(renderer)
	s.Require().Len(renderer.frames, 1)
	s.Same(frame, renderer.frames[0])
	s.Equal(renderer.canvas, frame.Canvas)

	renderer.canvas = plot.Canvas{Width: 200, Height: 80}
	renderer.err = errors.New("screen gone")
	frame = driver.Step(renderer)
	s.Equal(renderer.canvas, frame.Canvas)
	s.Equal(uint64(2), frame.Sequence)

	s.EqualValues(2, recorder.counts[metrics.MetricFrames])
	s.EqualValues(1, recorder.counts[metrics.MetricRenderError])
	s.EqualValues(2, recorder.counts[metrics.MetricReadNoData])
	s.Equal(2, recorder.timed)
}

func TestDriverTestSuite(t *testing.T) {
	suite.Run(t, new(DriverTestSuite))
}

func TestEventKindString(t *testing.T) {
	assert.Equal(t, "toggle", EventToggle.String())
	assert.Equal(t, "resize", EventResize.String())
	assert.Equal(t, "quit", EventQuit.String())
	assert.Equal(t, "unknown", EventKind(9).String())
}

func TestFramePoints(t *testing.T) {
	frame := &Frame{Polylines: []plot.Polyline{{{X: 1}}, {}, {{X: 1}, {X: 2}}}}
	require.Equal(t, 3, frame.Points())
}

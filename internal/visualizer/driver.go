package visualizer

import (
	"time"

	"github.com/RyanBlaney/pcmscope/internal/metrics"
	"github.com/RyanBlaney/pcmscope/pkg/audio"
	"github.com/RyanBlaney/pcmscope/pkg/logging"
	"github.com/RyanBlaney/pcmscope/pkg/plot"
	"github.com/RyanBlaney/pcmscope/pkg/stream/common"
)

// Driver runs one tick of the pipeline: read the source, update the window,
// transform it for the current mode. It is not safe for concurrent use; the
// frame loop owns it.
type Driver struct {
	source   common.Source
	window   *audio.SampleWindow
	cycle    *plot.ModeCycle
	waveform *plot.WaveformTransform
	spectrum *plot.SpectrumTransform
	metrics  metrics.Recorder
	logger   logging.Logger
	now      func() time.Time

	sequence    uint64
	lastOutcome common.OutcomeKind
}

// Option customizes a Driver
type Option func(*Driver)

// WithMetrics sets the metrics recorder
func WithMetrics(recorder metrics.Recorder) Option {
	return func(d *Driver) {
		if recorder != nil {
			d.metrics = recorder
		}
	}
}

// WithLogger sets the logger
func WithLogger(logger logging.Logger) Option {
	return func(d *Driver) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// NewDriver assembles a driver from its owned parts
func NewDriver(
	source common.Source,
	window *audio.SampleWindow,
	cycle *plot.ModeCycle,
	waveform *plot.WaveformTransform,
	spectrum *plot.SpectrumTransform,
	opts ...Option,
) *Driver {
	d := &Driver{
		source:      source,
		window:      window,
		cycle:       cycle,
		waveform:    waveform,
		spectrum:    spectrum,
		metrics:     metrics.Noop(),
		logger:      logging.NewDefaultLogger(),
		now:         time.Now,
		lastOutcome: common.OutcomeNoData,
	}
	for _, opt := range opts {
		opt(d)
	}
	d.logger = d.logger.WithFields(logging.Fields{
		"component":   "frame_driver",
		"source_type": source.Type(),
		"source_path": source.Path(),
	})
	return d
}

// Window returns the sample window the driver writes into
func (d *Driver) Window() *audio.SampleWindow {
	return d.window
}

// Mode returns the active plot mode
func (d *Driver) Mode() plot.Mode {
	return d.cycle.Current()
}

// Toggle advances the plot mode once
func (d *Driver) Toggle() plot.Mode {
	mode := d.cycle.Advance()
	d.logger.Debug("Plot mode changed", logging.Fields{"mode": mode.String()})
	return mode
}

// Tick performs one frame of work. It never blocks and never fails: source
// faults are logged and the previous window content is rendered again.
func (d *Driver) Tick(canvas plot.Canvas) *Frame {
	start := d.now()
	d.sequence++

	outcome := d.drain()

	snapshot := d.window.Snapshot()
	frame := &Frame{
		Sequence:  d.sequence,
		Mode:      d.cycle.Current(),
		Canvas:    canvas,
		Outcome:   outcome.Kind,
		WindowLen: len(snapshot),
		WindowCap: d.window.Capacity(),
	}

	switch frame.Mode {
	case plot.ModeWaveform:
		a, b := d.waveform.Compute(snapshot, canvas)
		frame.Polylines = []plot.Polyline{a, b}
	case plot.ModeSpectrum:
		if spectrum, ok := d.spectrum.Analyze(snapshot); ok {
			frame.Polylines = []plot.Polyline{d.spectrum.Project(spectrum, canvas)}
			frame.PeakHz, _ = spectrum.Peak()
		} else {
			frame.Polylines = []plot.Polyline{{}}
		}
	}

	d.metrics.Count(metrics.MetricFrames, 1, "mode:"+frame.Mode.String())
	d.metrics.Gauge(metrics.MetricWindowFill, frame.Fill())
	d.metrics.Timing(metrics.MetricFrameDuration, d.now().Sub(start))

	return frame
}

// Step ticks against the renderer's current canvas and hands it the frame.
// Render errors are logged; the loop keeps going.
func (d *Driver) Step(renderer Renderer) *Frame {
	frame := d.Tick(renderer.Canvas())
	if err := renderer.Render(frame); err != nil {
		d.metrics.Count(metrics.MetricRenderError, 1)
		d.logger.Error(err, "Failed to render frame", logging.Fields{
			"sequence": frame.Sequence,
		})
	}
	return frame
}

// drain reads until the source has nothing more to give, so a producer
// writing faster than one read buffer per frame cannot fall behind the
// display. A tick takes at most two windows worth of bytes. The returned
// outcome is Data when anything was ingested, otherwise the last read's.
func (d *Driver) drain() common.ReadOutcome {
	budget := 2 * d.window.Capacity() * audio.BytesPerSample
	ingested := false
	for {
		outcome := d.source.ReadAvailable()
		d.ingest(outcome)
		if outcome.Kind != common.OutcomeData || len(outcome.Data) == 0 {
			if ingested {
				return common.ReadOutcome{Kind: common.OutcomeData}
			}
			return outcome
		}

		ingested = true
		budget -= len(outcome.Data)
		if budget <= 0 {
			return common.ReadOutcome{Kind: common.OutcomeData}
		}
	}
}

func (d *Driver) ingest(outcome common.ReadOutcome) {
	previous := d.lastOutcome
	d.lastOutcome = outcome.Kind

	switch outcome.Kind {
	case common.OutcomeData:
		samples, dropped := audio.DecodeS16LE(outcome.Data)
		if dropped > 0 {
			d.metrics.Count(metrics.MetricDroppedBytes, int64(dropped))
			d.logger.Debug("Dropped trailing partial sample", logging.Fields{
				"bytes_read":    len(outcome.Data),
				"dropped_bytes": dropped,
			})
		}
		d.window.PushOverwrite(samples)
		d.metrics.Count(metrics.MetricSamplesIngested, int64(len(samples)))
		if previous == common.OutcomeClosed {
			d.logger.Debug("Sample source resumed")
		}

	case common.OutcomeNoData:
		d.metrics.Count(metrics.MetricReadNoData, 1)

	case common.OutcomeClosed:
		d.metrics.Count(metrics.MetricReadClosed, 1)
		if previous != common.OutcomeClosed {
			d.logger.Debug("Sample source closed by producer, holding last window")
		}

	case common.OutcomeFatal:
		d.metrics.Count(metrics.MetricReadError, 1)
		d.logger.Error(outcome.Err, "Failed to read sample source")
	}
}

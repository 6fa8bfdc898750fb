package metrics

import (
	"fmt"
	"strings"
	"time"

	"github.com/DataDog/datadog-go/v5/statsd"

	"github.com/RyanBlaney/pcmscope/pkg/logging"
)

// Metric names emitted by the frame loop
const (
	MetricFrames          = "frames"
	MetricSamplesIngested = "samples_ingested"
	MetricReadNoData      = "read.no_data"
	MetricReadClosed      = "read.closed"
	MetricReadError       = "read.error"
	MetricDroppedBytes    = "decode.dropped_bytes"
	MetricRenderError     = "render.error"
	MetricWindowFill      = "window.fill"
	MetricFrameDuration   = "frame.duration"
)

// DefaultAddress is the local dogstatsd agent
const DefaultAddress = "127.0.0.1:8125"

// Config selects and configures the metrics backend
type Config struct {
	Enabled   bool     `json:"enabled" yaml:"enabled"`
	Address   string   `json:"address" yaml:"address"`
	Namespace string   `json:"namespace" yaml:"namespace"`
	Tags      []string `json:"tags" yaml:"tags"`
}

// Recorder receives per-frame measurements. Implementations never fail the
// caller; delivery problems are logged.
type Recorder interface {
	Count(name string, value int64, tags ...string)
	Gauge(name string, value float64, tags ...string)
	Timing(name string, value time.Duration, tags ...string)
	Close() error
}

// New returns a statsd-backed recorder when enabled, otherwise a no-op one
func New(config Config, logger logging.Logger) (Recorder, error) {
	if !config.Enabled {
		return Noop(), nil
	}
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}

	address := config.Address
	if address == "" {
		address = DefaultAddress
	}

	options := []statsd.Option{
		statsd.WithoutTelemetry(),
	}
	if ns := config.Namespace; ns != "" {
		if !strings.HasSuffix(ns, ".") {
			ns += "."
		}
		options = append(options, statsd.WithNamespace(ns))
	}
	if len(config.Tags) > 0 {
		options = append(options, statsd.WithTags(config.Tags))
	}

	client, err := statsd.New(address, options...)
	if err != nil {
		return nil, fmt.Errorf("failed to create statsd client for %s: %w", address, err)
	}

	logger.Debug("Metrics enabled", logging.Fields{
		"address":   address,
		"namespace": config.Namespace,
		"tags":      config.Tags,
	})

	return NewStatsd(client, logger), nil
}

// StatsdRecorder forwards measurements to a dogstatsd client
type StatsdRecorder struct {
	client statsd.ClientInterface
	logger logging.Logger
}

// NewStatsd wraps an existing client
func NewStatsd(client statsd.ClientInterface, logger logging.Logger) *StatsdRecorder {
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}
	return &StatsdRecorder{
		client: client,
		logger: logger.WithFields(logging.Fields{"component": "metrics"}),
	}
}

func (r *StatsdRecorder) Count(name string, value int64, tags ...string) {
	r.check(name, r.client.Count(name, value, tags, 1))
}

func (r *StatsdRecorder) Gauge(name string, value float64, tags ...string) {
	r.check(name, r.client.Gauge(name, value, tags, 1))
}

func (r *StatsdRecorder) Timing(name string, value time.Duration, tags ...string) {
	r.check(name, r.client.Timing(name, value, tags, 1))
}

// Close flushes pending metrics and releases the socket
func (r *StatsdRecorder) Close() error {
	return r.client.Close()
}

func (r *StatsdRecorder) check(name string, err error) {
	if err != nil {
		r.logger.Debug("Failed to send metric", logging.Fields{
			"metric": name,
			"error":  err.Error(),
		})
	}
}

type noopRecorder struct{}

// Noop returns a recorder that drops everything
func Noop() Recorder {
	return noopRecorder{}
}

func (noopRecorder) Count(string, int64, ...string)          {}
func (noopRecorder) Gauge(string, float64, ...string)        {}
func (noopRecorder) Timing(string, time.Duration, ...string) {}
func (noopRecorder) Close() error                            { return nil }

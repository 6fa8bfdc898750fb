package file

import (
	"errors"
	"io"
	"os"
	"time"

	"github.com/RyanBlaney/pcmscope/pkg/logging"
	"github.com/RyanBlaney/pcmscope/pkg/stream/common"
)

const bytesPerSample = 2

// Config holds configuration for raw PCM file replay
type Config struct {
	Path           string `json:"path"`
	SampleRate     int    `json:"sample_rate"`
	Channels       int    `json:"channels"`
	ReadBufferSize int    `json:"read_buffer_size"`
	Loop           bool   `json:"loop"`
	Paced          bool   `json:"paced"`
}

// DefaultConfig returns the default replay configuration
func DefaultConfig() *Config {
	return &Config{
		SampleRate:     44100,
		Channels:       2,
		ReadBufferSize: 4096,
		Paced:          true,
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Path == "" {
		return common.NewStreamError(common.SourceTypeFile, "",
			common.ErrCodeInvalidConfig, "file path must be set", nil)
	}
	if c.SampleRate <= 0 || c.Channels <= 0 {
		return common.NewStreamErrorWithFields(common.SourceTypeFile, c.Path,
			common.ErrCodeInvalidConfig, "sample rate and channels must be positive", nil,
			logging.Fields{"sample_rate": c.SampleRate, "channels": c.Channels})
	}
	if c.ReadBufferSize < bytesPerSample || c.ReadBufferSize%bytesPerSample != 0 {
		return common.NewStreamErrorWithFields(common.SourceTypeFile, c.Path,
			common.ErrCodeInvalidConfig, "read buffer must hold a whole number of samples", nil,
			logging.Fields{"read_buffer_size": c.ReadBufferSize})
	}
	return nil
}

// BytesPerSecond is the producer byte rate implied by the configuration
func (c *Config) BytesPerSecond() int {
	return c.SampleRate * c.Channels * bytesPerSample
}

// Source replays a raw S16LE file. When paced it releases bytes no faster
// than the configured sample rate, so a recording behaves like a live pipe.
type Source struct {
	file     *os.File
	config   *Config
	buf      []byte
	clock    func() time.Time
	start    time.Time
	consumed int64
	closed   bool
	logger   logging.Logger
}

// Option customises a Source
type Option func(*Source)

// WithClock replaces time.Now for pacing
func WithClock(clock func() time.Time) Option {
	return func(s *Source) {
		s.clock = clock
	}
}

// Open opens the configured file for replay
func Open(config *Config, opts ...Option) (*Source, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	f, err := os.Open(config.Path)
	if err != nil {
		return nil, common.NewStreamError(common.SourceTypeFile, config.Path,
			common.ErrCodeOpen, "failed to open pcm file", err)
	}

	s := &Source{
		file:   f,
		config: config,
		buf:    make([]byte, config.ReadBufferSize),
		clock:  time.Now,
		logger: logging.WithFields(logging.Fields{
			"component": "file_source",
			"path":      config.Path,
		}),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.logger.Debug("Opened pcm file", logging.Fields{
		"paced":            config.Paced,
		"loop":             config.Loop,
		"bytes_per_second": config.BytesPerSecond(),
	})

	return s, nil
}

// ReadAvailable returns the bytes due since the previous call
func (s *Source) ReadAvailable() common.ReadOutcome {
	if s.closed {
		return common.Fatal(common.NewStreamError(common.SourceTypeFile, s.config.Path,
			common.ErrCodeRead, "source is closed", os.ErrClosed))
	}

	limit := int64(len(s.buf))
	if s.config.Paced {
		now := s.clock()
		if s.start.IsZero() {
			s.start = now
		}
		due := int64(now.Sub(s.start).Seconds() * float64(s.config.BytesPerSecond()))
		due -= due % bytesPerSample
		pending := due - s.consumed
		if pending <= 0 {
			return common.NoData()
		}
		limit = min(limit, pending)
	}

	n, err := s.file.Read(s.buf[:limit])
	if n > 0 {
		s.consumed += int64(n)
		return common.Data(s.buf[:n])
	}

	if err == nil || errors.Is(err, io.EOF) {
		if s.config.Loop {
			if _, serr := s.file.Seek(0, io.SeekStart); serr != nil {
				return common.Fatal(common.NewStreamError(common.SourceTypeFile, s.config.Path,
					common.ErrCodeRead, "failed to rewind pcm file", serr))
			}
			s.logger.Debug("Rewound pcm file")
			return common.NoData()
		}
		return common.Closed()
	}

	return common.Fatal(common.NewStreamError(common.SourceTypeFile, s.config.Path,
		common.ErrCodeRead, "read failed", err))
}

// Type returns the source type
func (s *Source) Type() common.SourceType {
	return common.SourceTypeFile
}

// Path returns the replayed file path
func (s *Source) Path() string {
	return s.config.Path
}

// Close closes the underlying file
func (s *Source) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	if err := s.file.Close(); err != nil {
		return common.NewStreamError(common.SourceTypeFile, s.config.Path,
			common.ErrCodeClose, "failed to close pcm file", err)
	}
	return nil
}

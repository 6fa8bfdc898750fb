package stream

import (
	"fmt"
	"sync"

	"github.com/RyanBlaney/pcmscope/pkg/logging"
	"github.com/RyanBlaney/pcmscope/pkg/stream/common"
	"github.com/RyanBlaney/pcmscope/pkg/stream/fifo"
	"github.com/RyanBlaney/pcmscope/pkg/stream/file"
)

// TypeAuto asks the factory to detect the source type from the path
const TypeAuto = "auto"

// Config describes the sample source to open
type Config struct {
	Type           string `json:"type"`
	Path           string `json:"path"`
	ReadBufferSize int    `json:"read_buffer_size"`
	CreateFIFO     bool   `json:"create_fifo"`
	SampleRate     int    `json:"sample_rate"`
	Channels       int    `json:"channels"`
	Loop           bool   `json:"loop"`
	Paced          bool   `json:"paced"`
}

// SourceConstructor opens a source of one type
type SourceConstructor func(config *Config) (common.Source, error)

// Factory maps source types to constructors
type Factory struct {
	handlers map[common.SourceType]SourceConstructor
	detector common.SourceDetector
	mu       sync.RWMutex
}

// NewFactory creates a new source factory with default constructors
func NewFactory() *Factory {
	f := &Factory{
		handlers: make(map[common.SourceType]SourceConstructor),
		detector: NewDetector(),
	}

	f.RegisterSource(common.SourceTypeFIFO, func(c *Config) (common.Source, error) {
		return fifo.Open(&fifo.Config{
			Path:            c.Path,
			ReadBufferSize:  c.ReadBufferSize,
			CreateIfMissing: c.CreateFIFO,
			Perm:            fifo.DefaultConfig().Perm,
		})
	})
	f.RegisterSource(common.SourceTypeStdin, func(c *Config) (common.Source, error) {
		return fifo.OpenStdin(c.ReadBufferSize)
	})
	f.RegisterSource(common.SourceTypeFile, func(c *Config) (common.Source, error) {
		return file.Open(&file.Config{
			Path:           c.Path,
			SampleRate:     c.SampleRate,
			Channels:       c.Channels,
			ReadBufferSize: c.ReadBufferSize,
			Loop:           c.Loop,
			Paced:          c.Paced,
		})
	})

	return f
}

// Open creates the source described by config, detecting its type when
// config.Type is empty or "auto"
func (f *Factory) Open(config *Config) (common.Source, error) {
	sourceType := common.SourceType(config.Type)
	if config.Type == "" || config.Type == TypeAuto {
		detected, err := f.detector.DetectType(config.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to detect source type: %w", err)
		}
		sourceType = detected
	}

	f.mu.RLock()
	constructor, exists := f.handlers[sourceType]
	f.mu.RUnlock()

	if !exists {
		return nil, common.NewStreamError(
			sourceType, config.Path, common.ErrCodeUnsupported,
			fmt.Sprintf("unsupported source type: %s", sourceType),
			nil,
		)
	}

	source, err := constructor(config)
	if err != nil {
		return nil, err
	}

	logging.WithFields(logging.Fields{
		"component": "source_factory",
		"path":      config.Path,
	}).Info("Sample source opened", logging.Fields{
		"type": sourceType,
	})

	return source, nil
}

// RegisterSource registers a constructor, replacing any previous one
func (f *Factory) RegisterSource(sourceType common.SourceType, constructor SourceConstructor) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.handlers[sourceType] = constructor
}

// SetDetector replaces the path detector
func (f *Factory) SetDetector(detector common.SourceDetector) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.detector = detector
}

// SupportedTypes returns list of supported source types
func (f *Factory) SupportedTypes() []common.SourceType {
	f.mu.RLock()
	defer f.mu.RUnlock()

	types := make([]common.SourceType, 0, len(f.handlers))
	for sourceType := range f.handlers {
		types = append(types, sourceType)
	}
	return types
}

//go:build !unix

package fifo

import (
	"github.com/RyanBlaney/pcmscope/pkg/stream/common"
)

// Source is unavailable on this platform
type Source struct{}

// Open is not supported on non-unix systems
func Open(config *Config) (*Source, error) {
	path := ""
	if config != nil {
		path = config.Path
	}
	return nil, common.NewStreamError(common.SourceTypeFIFO, path,
		common.ErrCodeUnsupported, "named pipes require a unix platform", nil)
}

// OpenStdin is not supported on non-unix systems
func OpenStdin(readBufferSize int) (*Source, error) {
	return nil, common.NewStreamError(common.SourceTypeStdin, "-",
		common.ErrCodeUnsupported, "non-blocking stdin requires a unix platform", nil)
}

func (s *Source) ReadAvailable() common.ReadOutcome { return common.Closed() }
func (s *Source) Type() common.SourceType           { return common.SourceTypeUnsupported }
func (s *Source) Path() string                      { return "" }
func (s *Source) Close() error                      { return nil }

package fifo

import (
	"github.com/RyanBlaney/pcmscope/pkg/logging"
	"github.com/RyanBlaney/pcmscope/pkg/stream/common"
)

// DefaultPath is where mpd's fifo output writes by default
const DefaultPath = "/tmp/mpd.fifo"

// DefaultReadBufferSize bounds the bytes taken from the pipe per read
const DefaultReadBufferSize = 4096

// Config holds configuration for named pipe sources
type Config struct {
	Path            string `json:"path"`
	ReadBufferSize  int    `json:"read_buffer_size"`
	CreateIfMissing bool   `json:"create_if_missing"`
	Perm            uint32 `json:"perm"`
}

// DefaultConfig returns the default named pipe configuration
func DefaultConfig() *Config {
	return &Config{
		Path:            DefaultPath,
		ReadBufferSize:  DefaultReadBufferSize,
		CreateIfMissing: false,
		Perm:            0o644,
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Path == "" {
		return common.NewStreamError(common.SourceTypeFIFO, "",
			common.ErrCodeInvalidConfig, "fifo path must be set", nil)
	}

	if c.ReadBufferSize < 2 || c.ReadBufferSize%2 != 0 {
		return common.NewStreamErrorWithFields(common.SourceTypeFIFO, c.Path,
			common.ErrCodeInvalidConfig, "read buffer must hold a whole number of samples", nil,
			logging.Fields{"read_buffer_size": c.ReadBufferSize})
	}

	return nil
}

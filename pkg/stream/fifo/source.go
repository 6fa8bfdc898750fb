//go:build unix

package fifo

import (
	"errors"
	"os"

	"golang.org/x/sys/unix"

	"github.com/RyanBlaney/pcmscope/pkg/logging"
	"github.com/RyanBlaney/pcmscope/pkg/stream/common"
)

// Source reads a named pipe (or any fd) without ever blocking the caller.
//
// Reads go through unix.Read on the raw descriptor. Wrapping the fd in an
// *os.File would register it with the runtime poller and turn EAGAIN into a
// parked goroutine.
type Source struct {
	fd         int
	path       string
	sourceType common.SourceType
	ownsFD     bool
	buf        []byte
	closed     bool
	logger     logging.Logger
}

// Open opens the configured named pipe read-only and non-blocking. Opening
// succeeds even when no writer is attached; reads then report Closed until a
// producer connects.
func Open(config *Config) (*Source, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	logger := logging.WithFields(logging.Fields{
		"component": "fifo_source",
		"path":      config.Path,
	})

	if config.CreateIfMissing {
		if err := ensureFIFO(config.Path, config.Perm); err != nil {
			return nil, err
		}
	}

	fd, err := unix.Open(config.Path, unix.O_RDONLY|unix.O_NONBLOCK|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, common.NewStreamError(common.SourceTypeFIFO, config.Path,
			common.ErrCodeOpen, "failed to open fifo", err)
	}

	logger.Debug("Opened fifo", logging.Fields{
		"fd":               fd,
		"read_buffer_size": config.ReadBufferSize,
	})

	return &Source{
		fd:         fd,
		path:       config.Path,
		sourceType: common.SourceTypeFIFO,
		ownsFD:     true,
		buf:        make([]byte, config.ReadBufferSize),
		logger:     logger,
	}, nil
}

// OpenStdin switches standard input to non-blocking mode and reads from it
func OpenStdin(readBufferSize int) (*Source, error) {
	return NewFromFD(int(os.Stdin.Fd()), "-", common.SourceTypeStdin, readBufferSize, false)
}

// NewFromFD wraps an already open descriptor. When owns is false Close
// restores blocking mode instead of closing the descriptor.
func NewFromFD(fd int, path string, sourceType common.SourceType, readBufferSize int, owns bool) (*Source, error) {
	if readBufferSize < 2 {
		readBufferSize = DefaultConfig().ReadBufferSize
	}
	if err := unix.SetNonblock(fd, true); err != nil {
		return nil, common.NewStreamError(sourceType, path,
			common.ErrCodeOpen, "failed to set non-blocking mode", err)
	}

	return &Source{
		fd:         fd,
		path:       path,
		sourceType: sourceType,
		ownsFD:     owns,
		buf:        make([]byte, readBufferSize),
		logger: logging.WithFields(logging.Fields{
			"component": "fd_source",
			"path":      path,
			"fd":        fd,
		}),
	}, nil
}

// ReadAvailable performs exactly one non-blocking read
func (s *Source) ReadAvailable() common.ReadOutcome {
	if s.closed {
		return common.Fatal(common.NewStreamError(s.sourceType, s.path,
			common.ErrCodeRead, "source is closed", os.ErrClosed))
	}

	n, err := unix.Read(s.fd, s.buf)
	if err != nil {
		if errors.Is(err, unix.EAGAIN) || errors.Is(err, unix.EWOULDBLOCK) || errors.Is(err, unix.EINTR) {
			return common.NoData()
		}

		fields := logging.Fields{"fd": s.fd}
		var errno unix.Errno
		if errors.As(err, &errno) {
			fields["errno"] = int(errno)
		}
		return common.Fatal(common.NewStreamErrorWithFields(s.sourceType, s.path,
			common.ErrCodeRead, "read failed", err, fields))
	}

	if n == 0 {
		return common.Closed()
	}

	return common.Data(s.buf[:n])
}

// Type returns the source type
func (s *Source) Type() common.SourceType {
	return s.sourceType
}

// Path returns the path the source was opened from
func (s *Source) Path() string {
	return s.path
}

// Close releases the descriptor
func (s *Source) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	if !s.ownsFD {
		if err := unix.SetNonblock(s.fd, false); err != nil {
			return common.NewStreamError(s.sourceType, s.path,
				common.ErrCodeClose, "failed to restore blocking mode", err)
		}
		return nil
	}

	if err := unix.Close(s.fd); err != nil {
		return common.NewStreamError(s.sourceType, s.path,
			common.ErrCodeClose, "failed to close fifo", err)
	}

	s.logger.Debug("Closed fifo")
	return nil
}

func ensureFIFO(path string, perm uint32) error {
	info, err := os.Stat(path)
	if err == nil {
		if info.Mode()&os.ModeNamedPipe == 0 {
			return common.NewStreamErrorWithFields(common.SourceTypeFIFO, path,
				common.ErrCodeOpen, "path exists and is not a fifo", nil,
				logging.Fields{"mode": info.Mode().String()})
		}
		return nil
	}
	if !os.IsNotExist(err) {
		return common.NewStreamError(common.SourceTypeFIFO, path,
			common.ErrCodeOpen, "failed to stat fifo", err)
	}

	if err := unix.Mkfifo(path, perm); err != nil && !errors.Is(err, unix.EEXIST) {
		return common.NewStreamError(common.SourceTypeFIFO, path,
			common.ErrCodeOpen, "failed to create fifo", err)
	}
	return nil
}

package stream

import (
	"os"

	"github.com/RyanBlaney/pcmscope/pkg/logging"
	"github.com/RyanBlaney/pcmscope/pkg/stream/common"
)

// StdinPath selects standard input as the sample source
const StdinPath = "-"

// Detector picks a source type from what lives at a path
type Detector struct {
	stat func(string) (os.FileInfo, error)
}

func NewDetector() *Detector {
	return &Detector{stat: os.Stat}
}

// DetectType inspects the path. A missing path is reported as a fifo, since
// producers such as mpd create their pipe lazily.
func (d *Detector) DetectType(path string) (common.SourceType, error) {
	if path == StdinPath {
		return common.SourceTypeStdin, nil
	}
	if path == "" {
		return common.SourceTypeUnsupported, common.NewStreamError(
			common.SourceTypeUnsupported, path, common.ErrCodeInvalidConfig,
			"source path is empty", nil)
	}

	info, err := d.stat(path)
	if os.IsNotExist(err) {
		return common.SourceTypeFIFO, nil
	}
	if err != nil {
		return common.SourceTypeUnsupported, common.NewStreamError(
			common.SourceTypeUnsupported, path, common.ErrCodeOpen,
			"failed to stat source path", err)
	}

	mode := info.Mode()
	switch {
	case mode&os.ModeNamedPipe != 0:
		return common.SourceTypeFIFO, nil
	case mode.IsRegular():
		return common.SourceTypeFile, nil
	}

	return common.SourceTypeUnsupported, common.NewStreamErrorWithFields(
		common.SourceTypeUnsupported, path, common.ErrCodeUnsupported,
		"unable to determine source type from path", nil,
		logging.Fields{"mode": mode.String()})
}

// ProbeSource performs a lightweight probe to gather basic info
func (d *Detector) ProbeSource(config *Config) (*common.SourceMetadata, error) {
	sourceType, err := d.DetectType(config.Path)
	if err != nil {
		return nil, err
	}

	return &common.SourceMetadata{
		Path:       config.Path,
		Type:       sourceType,
		SampleRate: config.SampleRate,
		Channels:   config.Channels,
	}, nil
}

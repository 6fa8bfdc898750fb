package common

// SourceType represents the kind of byte source feeding the sample window
type SourceType string

const (
	SourceTypeFIFO        SourceType = "fifo"
	SourceTypeFile        SourceType = "file"
	SourceTypeStdin       SourceType = "stdin"
	SourceTypeUnsupported SourceType = "unsupported"
)

// OutcomeKind classifies the result of a single non-blocking read
type OutcomeKind int

const (
	// OutcomeNoData means the producer has nothing buffered right now
	OutcomeNoData OutcomeKind = iota
	// OutcomeData carries freshly read bytes
	OutcomeData
	// OutcomeClosed means the producer end is closed
	OutcomeClosed
	// OutcomeFatal carries an unexpected I/O error
	OutcomeFatal
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeNoData:
		return "no_data"
	case OutcomeData:
		return "data"
	case OutcomeClosed:
		return "closed"
	case OutcomeFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// MarshalText encodes the kind by name
func (k OutcomeKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// ReadOutcome is the result of Source.ReadAvailable. Data is only valid
// until the next call on the same source.
type ReadOutcome struct {
	Kind OutcomeKind
	Data []byte
	Err  error
}

// NoData returns a no-data outcome
func NoData() ReadOutcome { return ReadOutcome{Kind: OutcomeNoData} }

// Closed returns a closed outcome
func Closed() ReadOutcome { return ReadOutcome{Kind: OutcomeClosed} }

// Data wraps freshly read bytes
func Data(b []byte) ReadOutcome { return ReadOutcome{Kind: OutcomeData, Data: b} }

// Fatal wraps an unexpected read error
func Fatal(err error) ReadOutcome { return ReadOutcome{Kind: OutcomeFatal, Err: err} }

// Source is a non-blocking reader over an external PCM producer.
// ReadAvailable must never block the calling frame.
type Source interface {
	ReadAvailable() ReadOutcome
	Type() SourceType
	Path() string
	Close() error
}

// SourceDetector decides which source type serves a path
type SourceDetector interface {
	DetectType(path string) (SourceType, error)
}

// SourceMetadata describes an opened source
type SourceMetadata struct {
	Path       string     `json:"path" yaml:"path"`
	Type       SourceType `json:"type" yaml:"type"`
	SampleRate int        `json:"sample_rate" yaml:"sample_rate"`
	Channels   int        `json:"channels" yaml:"channels"`
}

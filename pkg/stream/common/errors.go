package common

import "github.com/RyanBlaney/pcmscope/pkg/logging"

func (e *StreamError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

// StreamError represents sample-source errors
type StreamError struct {
	Type    SourceType     `json:"type"`
	Path    string         `json:"path"`
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Cause   error          `json:"-"`
	Fields  logging.Fields `json:"fields,omitempty"`
}

func (e *StreamError) Unwrap() error {
	return e.Cause
}

// Common error codes
const (
	ErrCodeOpen          = "OPEN_FAILED"
	ErrCodeRead          = "READ_FAILED"
	ErrCodeClose         = "CLOSE_FAILED"
	ErrCodeUnsupported   = "UNSUPPORTED_SOURCE"
	ErrCodeInvalidConfig = "INVALID_CONFIG"
)

// NewStreamError creates a new stream error
func NewStreamError(sourceType SourceType, path, code, message string, cause error) *StreamError {
	return &StreamError{
		Type:    sourceType,
		Path:    path,
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// NewStreamErrorWithFields creates a stream error carrying extra log fields
func NewStreamErrorWithFields(sourceType SourceType, path, code, message string, cause error, fields logging.Fields) *StreamError {
	err := NewStreamError(sourceType, path, code, message, cause)
	err.Fields = fields
	return err
}

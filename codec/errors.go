package codec

import "fmt"

// EncodeError reports a concrete value that violates its field descriptor,
// a missing or out-of-range type ID, or an encoded size over the declared
// ceiling. The caller decides whether to retry with a corrected value.
type EncodeError struct {
	Field   string // offending field, empty when the failure is not field-specific
	Message string
	Err     error // underlying cause, if any
}

// Error implements error.
func (e *EncodeError) Error() string {
	str := "encode"
	if e.Field != "" {
		str += ": field " + e.Field
	}
	str += ": " + e.Message
	if e.Err != nil {
		str += ": " + e.Err.Error()
	}
	return str
}

// Unwrap implements errors's Unwrap().
func (e *EncodeError) Unwrap() error { return e.Err }

func encodeError(field, format string, args ...interface{}) *EncodeError {
	return &EncodeError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// DecodeError reports a truncated bit stream, an invalid reconstructed
// value, or a type-ID mismatch. Field names the field being decoded when
// the failure occurred; Stage identifies non-field phases such as the
// routing header or the type tag.
type DecodeError struct {
	Field   string
	Stage   string
	Message string
	Err     error
}

// Error implements error.
func (e *DecodeError) Error() string {
	str := "decode"
	if e.Stage != "" {
		str += ": " + e.Stage
	}
	if e.Field != "" {
		str += ": field " + e.Field
	}
	str += ": " + e.Message
	if e.Err != nil {
		str += ": " + e.Err.Error()
	}
	return str
}

// Unwrap implements errors's Unwrap().
func (e *DecodeError) Unwrap() error { return e.Err }

func decodeError(field, format string, args ...interface{}) *DecodeError {
	return &DecodeError{Field: field, Message: fmt.Sprintf(format, args...)}
}

func stageError(stage string, err error, format string, args ...interface{}) *DecodeError {
	return &DecodeError{Stage: stage, Message: fmt.Sprintf(format, args...), Err: err}
}

// Package errors provides the coded error type shared by the service.
// Import it as perr.
package errors

import (
	stderrs "errors"
	"fmt"
	"net/http"
)

// ErrorCode classifies failures. Values are stable; add sparingly.
type ErrorCode uint16

const (
	// ErrorCodeUnknown is for unclassified errors
	ErrorCodeUnknown ErrorCode = iota

	// ErrorCodeValidation is for rejected input, e.g. a stop without a phone
	ErrorCodeValidation

	// ErrorCodeJSON is for malformed request bodies
	ErrorCodeJSON

	// ErrorCodeNotFound is for missing batches or unknown senders
	ErrorCodeNotFound

	// ErrorCodeDataIntegrity is for stored rows that contradict each other
	ErrorCodeDataIntegrity

	// ErrorCodeExtractionDegraded marks a text-understanding call that fell back
	ErrorCodeExtractionDegraded

	// ErrorCodeTransportFailure is for outbound messages the gateway did not accept
	ErrorCodeTransportFailure

	// ErrorCodeStoreUnavailable is for failed loads or saves against the batch store
	ErrorCodeStoreUnavailable
)

func (c ErrorCode) String() string {
	switch c {
	case ErrorCodeValidation:
		return "validation"
	case ErrorCodeJSON:
		return "json"
	case ErrorCodeNotFound:
		return "not_found"
	case ErrorCodeDataIntegrity:
		return "data_integrity"
	case ErrorCodeExtractionDegraded:
		return "extraction_degraded"
	case ErrorCodeTransportFailure:
		return "transport_failure"
	case ErrorCodeStoreUnavailable:
		return "store_unavailable"
	default:
		return "unknown"
	}
}

// HTTPStatusCode maps an ErrorCode to an HTTP status.
func HTTPStatusCode(c ErrorCode) int {
	switch c {
	case ErrorCodeValidation, ErrorCodeJSON:
		return http.StatusBadRequest
	case ErrorCodeNotFound:
		return http.StatusNotFound
	case ErrorCodeTransportFailure:
		return http.StatusBadGateway
	case ErrorCodeStoreUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Error carries a machine code, a message, an optional field and the wrapped cause.
type Error struct {
	orig  error
	msg   string
	code  ErrorCode
	field string
}

// Wire is the JSON form returned by the API.
type Wire struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.orig != nil {
		return fmt.Sprintf("%s: %v", e.msg, e.orig)
	}
	return e.msg
}

// Unwrap returns the wrapped cause.
func (e *Error) Unwrap() error { return e.orig }

// Code returns the error code.
func (e *Error) Code() ErrorCode { return e.code }

// Field returns the offending input field, if any.
func (e *Error) Field() string { return e.field }

// ToWire converts e to its API payload.
func (e *Error) ToWire() Wire { return Wire{Code: e.code.String(), Message: e.msg, Field: e.field} }

// WireFrom converts any error to a Wire payload.
func WireFrom(err error) Wire {
	if err == nil {
		return Wire{}
	}
	if e, ok := As(err); ok {
		return e.ToWire()
	}
	return Wire{Code: ErrorCodeUnknown.String(), Message: "internal server error"}
}

// As returns the first *Error in err's chain.
func As(err error) (*Error, bool) {
	var e *Error
	if stderrs.As(err, &e) {
		return e, true
	}
	return nil, false
}

// CodeOf extracts the ErrorCode from err, defaulting to Unknown.
func CodeOf(err error) ErrorCode {
	if e, ok := As(err); ok {
		return e.code
	}
	return ErrorCodeUnknown
}

// IsCode reports whether err carries code.
func IsCode(err error, code ErrorCode) bool { return CodeOf(err) == code }

// HTTPStatus returns the mapped HTTP status for err.
func HTTPStatus(err error) int { return HTTPStatusCode(CodeOf(err)) }

// WithField attaches a field name (copy-on-write). Foreign errors are returned unchanged.
func WithField(err error, field string) error {
	if e, ok := As(err); ok {
		c := *e
		c.field = field
		return &c
	}
	return err
}

// New returns an *Error with code and message.
func New(code ErrorCode, msg string) error { return &Error{code: code, msg: msg} }

// Newf returns an *Error with code and a formatted message.
func Newf(code ErrorCode, format string, a ...any) error {
	return &Error{code: code, msg: fmt.Sprintf(format, a...)}
}

// Wrap wraps orig with code and message.
func Wrap(orig error, code ErrorCode, msg string) error {
	return &Error{code: code, msg: msg, orig: orig}
}

// Wrapf wraps orig with code and a formatted message.
func Wrapf(orig error, code ErrorCode, format string, a ...any) error {
	return &Error{code: code, msg: fmt.Sprintf(format, a...), orig: orig}
}

// Validationf returns a validation error for field.
func Validationf(field, format string, a ...any) error {
	return &Error{code: ErrorCodeValidation, msg: fmt.Sprintf(format, a...), field: field}
}

// NotFoundf returns a not found error.
func NotFoundf(format string, a ...any) error { return Newf(ErrorCodeNotFound, format, a...) }

// Integrityf returns a data integrity error.
func Integrityf(format string, a ...any) error { return Newf(ErrorCodeDataIntegrity, format, a...) }

// JSONErrf returns a JSON error.
func JSONErrf(format string, a ...any) error { return Newf(ErrorCodeJSON, format, a...) }

// HTTP bundles status and wire payload for handlers.
func HTTP(err error) (int, Wire) {
	if err == nil {
		return http.StatusOK, Wire{}
	}
	return HTTPStatus(err), WireFrom(err)
}

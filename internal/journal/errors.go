package journal

import (
	"errors"
	"fmt"
)

var (
	errMissingBackend   = errors.New("storage backend is required")
	errMissingNamespace = errors.New("storage namespace key is required")
)

// ErrMoodNotFinite rejects NaN and infinite mood scores, which JSON cannot hold.
var ErrMoodNotFinite = errors.New("journal: mood must be a finite number")

// ServiceError carries a stable operation.reason code alongside the cause.
type ServiceError struct {
	code string
	err  error
}

func (e *ServiceError) Error() string {
	if e.err == nil {
		return e.code
	}
	return fmt.Sprintf("%s: %v", e.code, e.err)
}

func (e *ServiceError) Unwrap() error {
	return e.err
}

func (e *ServiceError) Code() string {
	return e.code
}

func newServiceError(operation, reason string, cause error) error {
	code := fmt.Sprintf("%s.%s", operation, reason)
	return &ServiceError{code: code, err: cause}
}

// FormatError reports an import payload that does not have the database shape.
type FormatError struct {
	Reason string
	err    error
}

func (e *FormatError) Error() string {
	if e.err == nil {
		return "journal: invalid import format: " + e.Reason
	}
	return fmt.Sprintf("journal: invalid import format: %s: %v", e.Reason, e.err)
}

func (e *FormatError) Unwrap() error {
	return e.err
}

func newFormatError(reason string, cause error) error {
	return &FormatError{Reason: reason, err: cause}
}

// IsFormatError reports whether err is or wraps a FormatError.
func IsFormatError(err error) bool {
	var formatErr *FormatError
	return errors.As(err, &formatErr)
}

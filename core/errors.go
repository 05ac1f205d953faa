package core

import "github.com/pkg/errors"

// FieldError reports a problem with a single field of a submitted form,
// keyed the way the client rendered it.
type FieldError struct {
	Field string
	Error string
}

// ValidationError carries rejected input back to the delivery layer. The
// error handler flattens Fields into the response body; Err is used as the
// message when no field breakdown applies.
type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{Err: err, Fields: flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		return ""
	}
	return err.Err.Error()
}

// shutdown signals an unrecoverable service state. Handlers return it to
// request a graceful stop of the whole server.
type shutdown struct {
	message string
}

func NewShutdownError(msg string) error {
	return &shutdown{message: msg}
}

func (s shutdown) Error() string {
	return s.message
}

// IsShutdown checks the cause chain for a shutdown error.
func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdown)
	return ok
}

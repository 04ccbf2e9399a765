package core

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	ErrConnection   = errors.New("database unavailable")
	ErrQuery        = errors.New("query failed")
	ErrMalformedRow = errors.New("malformed row")
	ErrValidation   = errors.New("invalid parameter")
)

// Error is the failure returned by the store and the dashboard. Class is one
// of the sentinels above, errors.Is matches against it.
type Error struct {
	Class  error
	Sensor string
	Err    error
}

func (e *Error) Error() string {
	if e.Sensor != "" {
		return fmt.Sprintf("%s: %v: %v", e.Sensor, e.Class, e.Err)
	}
	return fmt.Sprintf("%v: %v", e.Class, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	return target == e.Class
}

func newError(class error, sensor string, err error) *Error {
	return &Error{Class: class, Sensor: sensor, Err: err}
}

func validationError(format string, args ...interface{}) *Error {
	return newError(ErrValidation, "", errors.Errorf(format, args...))
}

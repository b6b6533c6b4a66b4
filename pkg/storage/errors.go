package storage

import "fmt"

var ErrAlreadyExists = fmt.Errorf("already exists")
var ErrBadResponse = fmt.Errorf("bad response")
var ErrInternal = fmt.Errorf("internal error")
var ErrInvalidType = fmt.Errorf("invalid type")
var ErrMissingStore = fmt.Errorf("missing model store")
var ErrNotFound = fmt.Errorf("not found")
var ErrRequest = fmt.Errorf("request error")
var ErrUnknownTenant = fmt.Errorf("unknown tenant")

type myError struct {
	msg    string
	target error
}

func (m myError) Error() string        { return m.msg }
func (m myError) Is(target error) bool { return target == m.target }

func NewAlreadyExistsError(msg string) error {
	return &myError{
		msg:    msg,
		target: ErrAlreadyExists,
	}
}

func NewInternalError(msg string) error {
	return &myError{
		msg:    msg,
		target: ErrInternal,
	}
}

func NewInvalidTypeError(msg string) error {
	return &myError{
		msg:    msg,
		target: ErrInvalidType,
	}
}

func NewMissingStoreError(msg string) error {
	return &myError{
		msg:    msg,
		target: ErrMissingStore,
	}
}

func NewNotFoundError(msg string) error {
	return &myError{
		msg:    msg,
		target: ErrNotFound,
	}
}

func NewUnknownTenantError(msg string) error {
	return &myError{
		msg:    msg,
		target: ErrUnknownTenant,
	}
}

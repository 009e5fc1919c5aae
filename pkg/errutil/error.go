package errutil

import (
	"errors"
	"fmt"
)

type BaseError struct {
	Code    CoreStatus `json:"code"`
	Message string     `json:"message"`
	Err     error      `json:"-"`
}

func (e BaseError) Status() CoreStatus {
	return e.Code
}

func (e BaseError) JSON() interface{} {
	return map[string]interface{}{
		"error": map[string]interface{}{
			"code":    e.Code,
			"message": e.Message,
		},
	}
}

func (e BaseError) Unwrap() error {
	return e.Err
}

func (e BaseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func New(code CoreStatus, message string, err error) error {
	return BaseError{Code: code, Message: message, Err: err}
}

func BadRequest(msg string, err error) error   { return New(StatusBadRequest, msg, err) }
func Unauthorized(msg string, err error) error { return New(StatusUnauthorized, msg, err) }
func Forbidden(msg string, err error) error    { return New(StatusForbidden, msg, err) }
func NotFound(msg string, err error) error     { return New(StatusNotFound, msg, err) }
func Conflict(msg string, err error) error     { return New(StatusConflict, msg, err) }
func Timeout(msg string, err error) error      { return New(StatusTimeout, msg, err) }
func Internal(msg string, err error) error     { return New(StatusInternal, msg, err) }
func BadGateway(msg string, err error) error   { return New(StatusBadGateway, msg, err) }

// CodeOf extracts the CoreStatus from any error produced by this package,
// falling back to StatusInternal.
func CodeOf(err error) CoreStatus {
	var base BaseError
	if errors.As(err, &base) {
		return base.Code
	}
	return StatusInternal
}

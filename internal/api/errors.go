package api

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a failed request.
type Kind int

const (
	// KindNetwork: transport failure, nothing usable came back.
	KindNetwork Kind = iota + 1
	// KindStatus: the server answered with a non-2xx status.
	KindStatus
	// KindDecode: a 2xx body that is not JSON.
	KindDecode
	// KindValidation: a JSON payload that does not match the expected record.
	KindValidation
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindStatus:
		return "status"
	case KindDecode:
		return "decode"
	case KindValidation:
		return "validation"
	}
	return "unknown"
}

// Error is the error returned by Client for every failed request.
type Error struct {
	Kind     Kind
	Endpoint string
	Status   int
	Message  string
	Err      error
}

func (e *Error) Error() string {
	switch {
	case e.Kind == KindStatus && e.Message != "":
		return fmt.Sprintf("api %s: status %d: %s", e.Endpoint, e.Status, e.Message)
	case e.Kind == KindStatus:
		return fmt.Sprintf("api %s: status %d", e.Endpoint, e.Status)
	case e.Err != nil:
		return fmt.Sprintf("api %s: %s error: %v", e.Endpoint, e.Kind, e.Err)
	}
	return fmt.Sprintf("api %s: %s error: %s", e.Endpoint, e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Title is the toast title for e.
func (e *Error) Title() string {
	if e.Kind == KindStatus {
		return fmt.Sprintf("Error %d", e.Status)
	}
	return "Network Error"
}

// Detail is the toast body for e.
func (e *Error) Detail() string {
	switch {
	case e.Message != "":
		return e.Message
	case e.Kind == KindStatus:
		return http.StatusText(e.Status)
	}
	return "Please check your internet connection and try again"
}

// KindOf returns the Kind of err, or 0 when err is not an *Error.
func KindOf(err error) Kind {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return 0
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

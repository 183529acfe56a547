package client

import (
	"errors"
	"fmt"
)

// NetworkError is a transport failure: the request never produced a usable
// response (connection error, timeout, 5xx or an unreadable body).
type NetworkError struct {
	Op     string
	Status int
	Err    error
}

func (e *NetworkError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: server returned %d", e.Op, e.Status)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// Timeout reports whether the request ran past its deadline.
func (e *NetworkError) Timeout() bool {
	var t interface{ Timeout() bool }
	return errors.As(e.Err, &t) && t.Timeout()
}

// ValidationError is a 4xx rejection of the request input.
type ValidationError struct {
	Status  int
	Message string
	Fields  map[string]string
}

func (e *ValidationError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("request rejected (%d)", e.Status)
	}
	return e.Message
}

// NotFoundError reports that the addressed entity no longer exists.
type NotFoundError struct {
	Resource string
	Message  string
}

func (e *NotFoundError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Resource == "" {
		return "not found"
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

// Is enables errors.Is matching against ErrNotFound.
func (e *NotFoundError) Is(target error) bool {
	_, ok := target.(*NotFoundError)
	return ok
}

// ErrNotFound matches any *NotFoundError with errors.Is.
var ErrNotFound = &NotFoundError{}

// Kind classifies an error for callers that branch on failure category.
type Kind int

const (
	KindUnknown Kind = iota
	KindNetwork
	KindValidation
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not found"
	}
	return "unknown"
}

// KindOf returns the category of err.
func KindOf(err error) Kind {
	var (
		ne *NetworkError
		ve *ValidationError
		nf *NotFoundError
	)
	switch {
	case err == nil:
		return KindUnknown
	case errors.As(err, &nf):
		return KindNotFound
	case errors.As(err, &ve):
		return KindValidation
	case errors.As(err, &ne):
		return KindNetwork
	}
	return KindUnknown
}

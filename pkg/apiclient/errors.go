package apiclient

import (
	"errors"
	"fmt"
)

// ErrorKind classifies why a generation attempt failed.
type ErrorKind int

const (
	// KindValidation means the prompt was empty after trimming. The client
	// never produces it; the session does, before any request is built.
	KindValidation ErrorKind = iota
	// KindServer means the backend answered with a non-2xx status.
	KindServer
	// KindNoResponse means the request went out but nothing came back
	// (timeout, refused connection, reset).
	KindNoResponse
	// KindRequest covers every other failure: building or encoding the
	// request, or decoding the reply.
	KindRequest
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindServer:
		return "server"
	case KindNoResponse:
		return "no_response"
	case KindRequest:
		return "request"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

// User-facing messages for the fixed-text kinds.
const (
	ValidationMessage = "Please enter a prompt before generating."
	NoResponseMessage = "No response from server. Please check if the backend is running."
)

// ErrUnreachable is returned by CheckHealth for every kind of failure.
var ErrUnreachable = errors.New("backend is not responding")

// GenerationError is the normalized failure of a generation attempt. Error
// returns the short message meant for the user; the wrapped cause holds the
// technical detail.
type GenerationError struct {
	Kind       ErrorKind
	Detail     string // server detail (KindServer) or cause message (KindRequest)
	StatusCode int    // set for KindServer
	Err        error
}

// NewValidationError returns the error for an empty prompt.
func NewValidationError() *GenerationError {
	return &GenerationError{Kind: KindValidation}
}

func (e *GenerationError) Error() string {
	switch e.Kind {
	case KindValidation:
		return ValidationMessage
	case KindServer:
		return "Server error: " + e.Detail
	case KindNoResponse:
		return NoResponseMessage
	default:
		return "Request failed: " + e.Detail
	}
}

func (e *GenerationError) Unwrap() error { return e.Err }

// AsGenerationError returns err as a *GenerationError. Errors outside the
// taxonomy are reported as KindRequest so callers always get a kind.
func AsGenerationError(err error) *GenerationError {
	if err == nil {
		return nil
	}

	var ge *GenerationError
	if errors.As(err, &ge) {
		return ge
	}

	return &GenerationError{Kind: KindRequest, Detail: err.Error(), Err: err}
}

func serverError(status int, detail string) *GenerationError {
	return &GenerationError{
		Kind:       KindServer,
		Detail:     detail,
		StatusCode: status,
		Err:        fmt.Errorf("unexpected status %d: %s", status, detail),
	}
}

func noResponseError(err error) *GenerationError {
	return &GenerationError{Kind: KindNoResponse, Detail: err.Error(), Err: err}
}

func requestError(err error) *GenerationError {
	return &GenerationError{Kind: KindRequest, Detail: err.Error(), Err: err}
}

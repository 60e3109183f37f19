package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// Kind tags the failure mode of a RequestError.
type Kind int

const (
	// KindNetwork means the request never produced an HTTP response.
	KindNetwork Kind = iota + 1
	// KindTimeout means a deadline expired before a response arrived.
	KindTimeout
	// KindHTTPStatus means the backend answered with a non-2xx status.
	KindHTTPStatus
	// KindDecode means the response body could not be decoded.
	KindDecode
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindTimeout:
		return "timeout"
	case KindHTTPStatus:
		return "http_status"
	case KindDecode:
		return "decode"
	default:
		return "unknown"
	}
}

// Sentinels for errors.Is. A *RequestError matches the sentinel of its Kind.
var (
	ErrNetwork    = errors.New("network error")
	ErrTimeout    = errors.New("request timed out")
	ErrHTTPStatus = errors.New("unexpected http status")
	ErrDecode     = errors.New("malformed response body")
)

// RequestError is the only error the client returns for a failed call.
type RequestError struct {
	Op      string
	Kind    Kind
	Status  int // set for KindHTTPStatus, 0 otherwise
	Message string
	Err     error
}

func (e *RequestError) Error() string {
	if e.Kind == KindHTTPStatus {
		return fmt.Sprintf("%s: %s (status %d)", e.Op, e.Message, e.Status)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

func (e *RequestError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrTimeout) and friends match on Kind.
func (e *RequestError) Is(target error) bool {
	switch target {
	case ErrNetwork:
		return e.Kind == KindNetwork
	case ErrTimeout:
		return e.Kind == KindTimeout
	case ErrHTTPStatus:
		return e.Kind == KindHTTPStatus
	case ErrDecode:
		return e.Kind == KindDecode
	}
	return false
}

// Retryable reports whether repeating the same call could succeed: transport
// failures and 5xx answers are, client errors and undecodable bodies are not.
func (e *RequestError) Retryable() bool {
	switch e.Kind {
	case KindNetwork, KindTimeout:
		return true
	case KindHTTPStatus:
		return e.Status >= http.StatusInternalServerError
	default:
		return false
	}
}

// KindOf returns the Kind of err, or 0 when err is not a *RequestError.
func KindOf(err error) Kind {
	var re *RequestError
	if errors.As(err, &re) {
		return re.Kind
	}
	return 0
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var re *RequestError
	if errors.As(err, &re) {
		return re.Status
	}
	return 0
}

func transportError(op string, err error) *RequestError {
	kind := KindNetwork
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		kind = KindTimeout
	}
	return &RequestError{
		Op:      op,
		Kind:    kind,
		Message: fmt.Sprintf("%s request failed: %v", op, err),
		Err:     err,
	}
}

func statusError(op string, status int, body errorBody) *RequestError {
	msg := body.Message
	if msg == "" {
		msg = body.Error
	}
	if msg == "" {
		msg = fmt.Sprintf("%s request failed with status %d", op, status)
	}
	return &RequestError{
		Op:      op,
		Kind:    KindHTTPStatus,
		Status:  status,
		Message: msg,
	}
}

func decodeError(op string, err error) *RequestError {
	return &RequestError{
		Op:      op,
		Kind:    KindDecode,
		Message: fmt.Sprintf("%s response could not be decoded: %v", op, err),
		Err:     err,
	}
}

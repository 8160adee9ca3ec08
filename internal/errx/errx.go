// Package errx defines the application error kinds the HTTP layer maps to
// status codes. Rate-limited errors additionally carry a retry-after hint.
package errx

import (
	"errors"
	"fmt"
	"time"
)

type Kind uint8

const (
	Unknown Kind = iota
	Invalid
	NotFound
	Unauthorized
	RateLimited
	Internal
)

type Error struct {
	Op         string
	Kind       Kind
	RetryAfter time.Duration // only meaningful for RateLimited
	Err        error
}

// E wraps err with an operation name and a kind. Returns nil for a nil err.
func E(op string, kind Kind, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Kind: kind, Err: err}
}

// Retry builds a RateLimited error carrying the time the caller must wait
// before the operation can succeed again.
func Retry(op string, retryAfter time.Duration, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Kind: RateLimited, RetryAfter: retryAfter, Err: err}
}

func (k Kind) String() string {
	switch k {
	case Invalid:
		return "Invalid"
	case NotFound:
		return "NotFound"
	case Unauthorized:
		return "Unauthorized"
	case RateLimited:
		return "RateLimited"
	case Internal:
		return "Internal"
	case Unknown:
		return "Unknown"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Op
	}
	if e.Op == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the kind of the first *Error in err's chain, or Unknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Unknown
}

// RetryAfterOf returns the retry-after hint carried by err, or zero.
func RetryAfterOf(err error) time.Duration {
	var e *Error
	if errors.As(err, &e) {
		return e.RetryAfter
	}
	return 0
}

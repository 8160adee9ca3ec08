// Package httpx holds the JSON request/response plumbing shared by all
// handlers: bounded body decoding and the uniform {ok:false,...} error shape.
package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/MrSnakeDoc/linkdrop/internal/errx"
)

// MaxRequestBodySize bounds admin/claim request bodies (64KB is generous for
// a title and a URL).
const MaxRequestBodySize = 64 << 10

// DecodeJSON decodes the request body into T with size limits and strict
// field checking.
func DecodeJSON[T any](r *http.Request) (T, error) {
	var zero T

	r.Body = http.MaxBytesReader(nil, r.Body, MaxRequestBodySize)
	defer func() { _ = r.Body.Close() }()

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	var v T
	if err := dec.Decode(&v); err != nil {
		var syntaxErr *json.SyntaxError
		var typeErr *json.UnmarshalTypeError
		var maxBytesErr *http.MaxBytesError

		switch {
		case errors.As(err, &syntaxErr):
			return zero, fmt.Errorf("malformed JSON at position %d", syntaxErr.Offset)
		case errors.As(err, &typeErr):
			return zero, fmt.Errorf("invalid value for field %q", typeErr.Field)
		case errors.As(err, &maxBytesErr):
			return zero, fmt.Errorf("request body too large (max %d bytes)", MaxRequestBodySize)
		case errors.Is(err, io.EOF):
			return zero, errors.New("request body is empty")
		default:
			return zero, fmt.Errorf("decode JSON: %w", err)
		}
	}

	if dec.More() {
		return zero, errors.New("request body contains trailing data")
	}

	return v, nil
}

// WriteJSON writes v as a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// failBody is the uniform failure shape. RetryAfter is in whole seconds and
// only present on rate-limited responses.
type failBody struct {
	OK         bool   `json:"ok"`
	Error      string `json:"error"`
	RetryAfter int64  `json:"retryAfter,omitempty"`
}

// Fail maps an errx error onto the wire: status code, error code, optional
// retryAfter body field and Retry-After header. Internal details never reach
// the client.
func Fail(w http.ResponseWriter, err error) {
	kind := errx.KindOf(err)
	status := statusOf(kind)

	body := failBody{Error: codeOf(kind)}
	if kind == errx.RateLimited {
		secs := int64(errx.RetryAfterOf(err).Seconds())
		if secs < 1 {
			secs = 1
		}
		body.RetryAfter = secs
		w.Header().Set("Retry-After", strconv.FormatInt(secs, 10))
	}

	WriteJSON(w, status, body)
}

// FailRetry is like Fail but with an explicit retry-after value in seconds,
// for callers that computed it outside the error chain.
func FailRetry(w http.ResponseWriter, secs int64) {
	if secs < 1 {
		secs = 1
	}
	w.Header().Set("Retry-After", strconv.FormatInt(secs, 10))
	WriteJSON(w, http.StatusTooManyRequests, failBody{Error: "rate_limited", RetryAfter: secs})
}

func statusOf(kind errx.Kind) int {
	switch kind {
	case errx.Invalid:
		return http.StatusBadRequest
	case errx.NotFound:
		return http.StatusNotFound
	case errx.Unauthorized:
		return http.StatusUnauthorized
	case errx.RateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

func codeOf(kind errx.Kind) string {
	switch kind {
	case errx.Invalid:
		return "invalid_input"
	case errx.NotFound:
		return "not_found"
	case errx.Unauthorized:
		return "unauthorized"
	case errx.RateLimited:
		return "rate_limited"
	default:
		return "internal_error"
	}
}

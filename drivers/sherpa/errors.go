package sherpa

import (
	"errors"
	"fmt"
)

var (
	// ErrRequestFailed marks a request that exhausted its retry budget or hit
	// a non-retryable backend response. Fatal to the current stream's sync.
	ErrRequestFailed = errors.New("request failed")

	// ErrPaginationStalled marks a backend page whose tokens did not advance
	// past the requested one. Treated as a backend contract violation rather
	// than looping forever.
	ErrPaginationStalled = errors.New("pagination stalled")

	// ErrInvalidToken marks a record whose Token field is missing or not an
	// integer. Failing the stream here keeps the persisted watermark numeric;
	// a non-numeric bookmark would poison every later comparison.
	ErrInvalidToken = errors.New("invalid token")
)

// RequestError carries the last observed status and body of a failed request.
type RequestError struct {
	Service    string
	StatusCode int
	Body       string
	Attempts   int
	Err        error
}

func (e *RequestError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("service %s failed after %d attempts: %s", e.Service, e.Attempts, e.Err)
	}
	return fmt.Sprintf("service %s failed after %d attempts: status %d: %s", e.Service, e.Attempts, e.StatusCode, e.Body)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

func (e *RequestError) Is(target error) bool {
	return target == ErrRequestFailed
}

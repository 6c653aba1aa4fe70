package analysis

import (
	"errors"
	"fmt"
)

// ErrMalformedResponse marks model output that is not a usable analysis.
var ErrMalformedResponse = errors.New("malformed response")

// MalformedResponseError carries the missing or unusable field, the parse
// failure, or both.
type MalformedResponseError struct {
	Field string
	Cause error
}

func (e *MalformedResponseError) Error() string {
	if e.Field != "" && e.Cause != nil {
		return fmt.Sprintf("%s: field %q: %v", ErrMalformedResponse, e.Field, e.Cause)
	}
	if e.Field != "" {
		return fmt.Sprintf("%s: missing required field %q", ErrMalformedResponse, e.Field)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", ErrMalformedResponse, e.Cause)
	}
	return ErrMalformedResponse.Error()
}

// Is matches ErrMalformedResponse.
func (e *MalformedResponseError) Is(target error) bool {
	return target == ErrMalformedResponse
}

func (e *MalformedResponseError) Unwrap() error {
	return e.Cause
}

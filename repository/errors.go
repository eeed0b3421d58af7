package repository

import (
	"errors"
	"fmt"
)

// ErrFetchFailure is matched by every *FetchError through errors.Is
var ErrFetchFailure = errors.New("fetch failure")

// FetchError reports a failed call to the remote catalog.
// StatusCode is 0 when the request never got a response.
type FetchError struct {
	Resource   string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	msg := fmt.Sprintf("failed to fetch %s", e.Resource)
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s: upstream returned status %d", msg, e.StatusCode)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

func (e *FetchError) Is(target error) bool {
	return target == ErrFetchFailure
}

// Message returns the short text shown to shoppers
func (e *FetchError) Message() string {
	return fmt.Sprintf("Failed to fetch %s", e.Resource)
}

package callapi

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrCallEnded    = errors.New("call has ended")
	ErrClosed       = errors.New("client is closed")
	ErrUnauthorized = errors.New("not signed in")
)

// APIError is a non-2xx answer of the backend.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend: %d %s", e.Status, http.StatusText(e.Status))
	}

	return fmt.Sprintf("backend: %d %s", e.Status, e.Message)
}

// Is lets callers match a 401 with errors.Is(err, ErrUnauthorized).
func (e *APIError) Is(target error) bool {
	return target == ErrUnauthorized && e.Status == http.StatusUnauthorized
}

package api

import "fmt"

// RequestError is returned for non-success HTTP responses or a
// backend-reported failure flag. Message carries the backend-supplied
// text when the response body included one.
type RequestError struct {
	Status  int
	Message string
}

func (e *RequestError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("backend request failed (status %d): %s", e.Status, e.Message)
	}
	return fmt.Sprintf("backend request failed (status %d)", e.Status)
}

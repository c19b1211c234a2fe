package radiobrowser

import (
	"errors"
	"fmt"

	rwhttp "github.com/handiism/radiowave/internal/http"
)

// User-facing messages for failed directory queries.
const (
	msgStations  = "Failed to fetch stations. Please check your connection and try again."
	msgCountries = "Failed to fetch countries. Please check your connection and try again."
	msgGenres    = "Failed to fetch genres. Please check your connection and try again."
)

// ErrStationNotFound is returned by StationByID when the directory has no
// station with the requested id.
var ErrStationNotFound = errors.New("station not found")

// NetworkError reports a failed directory query.
//
// Error returns Message, which is stable and safe to show to a user. The
// transport failure or rejected status is kept in Err and reachable with
// errors.Unwrap / errors.As.
type NetworkError struct {
	// Op names the query, e.g. "search" or "countries".
	Op string

	// Message is the human-readable description shown to users.
	Message string

	// Status is the HTTP status code, or 0 if no response was received.
	Status int

	// Err is the underlying cause.
	Err error
}

func (e *NetworkError) Error() string {
	return e.Message
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// Detail describes the underlying cause for logs.
func (e *NetworkError) Detail() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: status %d: %v", e.Op, e.Status, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func newNetworkError(op, message string, err error) *NetworkError {
	nerr := &NetworkError{Op: op, Message: message, Err: err}
	var se *rwhttp.StatusError
	if errors.As(err, &se) {
		nerr.Status = se.Code
	}
	return nerr
}

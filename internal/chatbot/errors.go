package chatbot

import "fmt"

// InputError signals a malformed client request (missing message, malformed
// or out-of-range coordinates). It is surfaced before any network call.
type InputError struct {
	Message string
}

func (e *InputError) Error() string { return e.Message }

// ServiceError signals that an upstream geocoding/weather call failed after
// exhausting retries or returned a non-success status. Err carries the
// upstream message.
type ServiceError struct {
	Op  string
	Err error
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ServiceError) Unwrap() error { return e.Err }

// ResolutionError signals that no time zone could be determined. Zone holds
// the offending identifier when one was found but could not be loaded.
type ResolutionError struct {
	Zone   string
	Reason string
}

func (e *ResolutionError) Error() string {
	if e.Zone != "" {
		return fmt.Sprintf("zona horaria no reconocida: %s", e.Zone)
	}
	return e.Reason
}

// NotFoundError signals that geocoding returned zero results for a place.
type NotFoundError struct {
	Location string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no pude encontrar la ubicación: %s", e.Location)
}

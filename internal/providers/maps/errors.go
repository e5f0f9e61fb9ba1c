package maps

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNotFound is returned when the provider does not know the place
	ErrNotFound = errors.New("place not found")
	// ErrMissingAPIKey is returned when no Google Maps API key is configured
	ErrMissingAPIKey = errors.New("google maps api key not configured")
	// ErrRequestDenied marks authorization failures (REQUEST_DENIED or HTTP 403)
	ErrRequestDenied = errors.New("google maps request denied")
	// ErrInvalidArgument marks caller input the gateway refuses to send
	ErrInvalidArgument = errors.New("invalid argument")
)

// Provider status values
const (
	statusOK             = "OK"
	statusZeroResults    = "ZERO_RESULTS"
	statusNotFound       = "NOT_FOUND"
	statusRequestDenied  = "REQUEST_DENIED"
	statusOverQueryLimit = "OVER_QUERY_LIMIT"
	statusInvalidRequest = "INVALID_REQUEST"
)

// ProviderError describes a failed Google Maps call
type ProviderError struct {
	Operation  string
	Status     string
	HTTPStatus int
	Message    string
}

func (e *ProviderError) Error() string {
	msg := fmt.Sprintf("google maps %s failed", e.Operation)
	if e.Status != "" {
		msg += ": " + e.Status
	}
	if e.HTTPStatus != 0 && e.HTTPStatus != http.StatusOK {
		msg += fmt.Sprintf(" (http %d)", e.HTTPStatus)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}

// Unwrap lets callers test the status class with errors.Is
func (e *ProviderError) Unwrap() error {
	switch {
	case e.Status == statusRequestDenied || e.HTTPStatus == http.StatusForbidden:
		return ErrRequestDenied
	case e.Status == statusNotFound:
		return ErrNotFound
	}
	return nil
}

// checkStatus maps an HTTP status and provider status onto the error policy:
// OK and ZERO_RESULTS succeed, anything else is a *ProviderError.
func checkStatus(op string, httpStatus int, body googleStatus) error {
	if httpStatus != http.StatusOK {
		return &ProviderError{
			Operation:  op,
			Status:     body.Status,
			HTTPStatus: httpStatus,
			Message:    body.ErrorMessage,
		}
	}
	switch body.Status {
	case statusOK, statusZeroResults:
		return nil
	case "":
		return &ProviderError{Operation: op, HTTPStatus: httpStatus, Message: "response carried no status"}
	default:
		return &ProviderError{
			Operation:  op,
			Status:     body.Status,
			HTTPStatus: httpStatus,
			Message:    body.ErrorMessage,
		}
	}
}

// isDegradable reports whether err should degrade the call instead of failing it
func isDegradable(err error) bool {
	return errors.Is(err, ErrRequestDenied) || errors.Is(err, ErrMissingAPIKey)
}

func denialReason(err error) string {
	if errors.Is(err, ErrMissingAPIKey) {
		return "Maps lookups are unavailable: the Google Maps API key is not configured."
	}
	var pe *ProviderError
	if errors.As(err, &pe) && pe.Message != "" {
		return "Maps lookups are unavailable: Google Maps denied the request (" + pe.Message + ")."
	}
	return "Maps lookups are unavailable: Google Maps denied the request. Check the API key and enabled APIs."
}

// Package errors provides the structured error types used across the
// application. We prefer these over raw fmt.Errorf strings to enable reliable
// checks with errors.Is / errors.As and to carry the upstream error shape the
// UI layer renders (code, HTTP status, target, details).
package errors

import (
	"errors"
	"fmt"
)

// Source identifies which upstream system produced an API error.
type Source string

const (
	SourceGeocoder Source = "geocoder"
	SourceHostAPI  Source = "hostapi"
	SourceUnknown  Source = "unknown"
)

// CodeUnknown is assigned to errors that reach the surface without a
// provider-assigned code, so the UI always has a consistent shape to render.
const CodeUnknown = "UnknownError"

// APIError represents a failure reported by (or while talking to) an upstream
// provider. One flavor per upstream, tagged by Source.
type APIError struct {
	Source     Source
	Code       string
	HTTPStatus int // 0 when the failure happened before an HTTP status existed
	Message    string
	Target     string // optional subsystem tag, e.g. "retrieve-user-settings"
	Details    []string
	Err        error // underlying cause (optional)
}

func (e *APIError) Error() string {
	if e == nil {
		return "<nil>"
	}
	src := e.Source
	if src == "" {
		src = SourceUnknown
	}
	if e.HTTPStatus > 0 {
		return fmt.Sprintf("%s: %s (http %d): %s", src, e.Code, e.HTTPStatus, e.Message)
	}
	return fmt.Sprintf("%s: %s: %s", src, e.Code, e.Message)
}

func (e *APIError) Unwrap() error { return e.Err }

// NewGeocoder builds an APIError for the geocoding provider.
func NewGeocoder(code string, httpStatus int, msg string) *APIError {
	return &APIError{Source: SourceGeocoder, Code: code, HTTPStatus: httpStatus, Message: msg}
}

// NewHostAPI builds an APIError for the host platform web API.
func NewHostAPI(code string, httpStatus int, target, msg string, err error) *APIError {
	return &APIError{Source: SourceHostAPI, Code: code, HTTPStatus: httpStatus, Target: target, Message: msg, Err: err}
}

// WrapUnknown normalizes an arbitrary error into the APIError shape. Errors
// that already are APIErrors pass through unchanged.
func WrapUnknown(err error) *APIError {
	if err == nil {
		return nil
	}
	var ae *APIError
	if errors.As(err, &ae) {
		return ae
	}
	return &APIError{Source: SourceUnknown, Code: CodeUnknown, Message: err.Error(), Err: err}
}

// AsAPIError is a convenience wrapper around errors.As.
func AsAPIError(err error) (*APIError, bool) {
	var ae *APIError
	ok := errors.As(err, &ae)
	return ae, ok
}

// IsSource reports whether err is an APIError from the given upstream.
func IsSource(err error, src Source) bool {
	ae, ok := AsAPIError(err)
	return ok && ae.Source == src
}

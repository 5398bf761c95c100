// Package errs provides the trusted error support for the node's web
// surface. Storage faults never leave the service as query responses;
// they surface here as transport-level failures.
package errs

import (
	"errors"
	"net/http"
)

// Response is the form used for API responses from failures in the API.
// Code carries a stable stateful error code when the failure originated
// in the ledger's input handling; transport failures leave it zero.
type Response struct {
	Error  string            `json:"error"`
	Code   uint32            `json:"code,omitempty"`
	Fields map[string]string `json:"fields,omitempty"`
}

// Trusted is used to pass an error during the request through the
// application with web specific context. Code is set when the error
// belongs to the ledger's stable error-code surface.
type Trusted struct {
	Err    error
	Status int
	Code   uint32
}

// NewTrusted wraps a provided error with an HTTP status code. This
// function should be used when handlers encounter expected errors.
func NewTrusted(err error, status int) error {
	return &Trusted{Err: err, Status: status}
}

// NewQueryRejected marks a request that failed the schema boundary
// before reaching the engine: a malformed identifier or hash. The bad
// input rides the same code the engine uses for bad input, so clients
// see one code surface.
func NewQueryRejected(err error, code uint32) error {
	return &Trusted{Err: err, Status: http.StatusBadRequest, Code: code}
}

// NewStorageFault reports that the world-state or block store failed
// under a query. The backing fault stays in the logs; the caller only
// learns the query could not be served.
func NewStorageFault() error {
	return &Trusted{Err: errors.New("ledger storage unavailable"), Status: http.StatusServiceUnavailable}
}

// Error implements the error interface. It uses the default message of the
// wrapped error. This is what will be shown in the services' logs.
func (re *Trusted) Error() string {
	return re.Err.Error()
}

// IsTrusted checks if an error of type Trusted exists.
func IsTrusted(err error) bool {
	var re *Trusted
	return errors.As(err, &re)
}

// GetTrusted returns a copy of the Trusted pointer.
func GetTrusted(err error) *Trusted {
	var re *Trusted
	if !errors.As(err, &re) {
		return nil
	}
	return re
}

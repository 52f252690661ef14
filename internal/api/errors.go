package api

import (
	"errors"
	"fmt"
	"net/http"
)

// TransportError covers connection failures, timeouts and non-2xx statuses.
// Status is zero when no HTTP response was received.
type TransportError struct {
	Status int
	Body   string
	Err    error
}

func (e *TransportError) Error() string {
	if e.Status != 0 {
		msg := e.Body
		if msg == "" {
			msg = http.StatusText(e.Status)
		}
		return fmt.Sprintf("endpoint returned HTTP %d: %s", e.Status, msg)
	}
	return fmt.Sprintf("transport error: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// MalformedResponseError means the endpoint answered 2xx but the body did not
// carry choices[0].message.content as a string.
type MalformedResponseError struct {
	Reason string
	Err    error
}

func (e *MalformedResponseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed response: %s: %v", e.Reason, e.Err)
	}
	return "malformed response: " + e.Reason
}

func (e *MalformedResponseError) Unwrap() error {
	return e.Err
}

func IsTransportError(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

func IsMalformedResponse(err error) bool {
	var me *MalformedResponseError
	return errors.As(err, &me)
}

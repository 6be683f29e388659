package mealapi

import (
	"errors"
	"fmt"
)

// ErrChat matches every error returned by Client.Chat.
var ErrChat = errors.New("chat request failed")

var (
	// ErrTransport: the request could not be sent or no response arrived.
	ErrTransport = fmt.Errorf("%w: transport", ErrChat)
	// ErrStatus: a response arrived with a non-2xx status.
	ErrStatus = fmt.Errorf("%w: status", ErrChat)
	// ErrPayload: the body was not JSON or lacked required fields.
	ErrPayload = fmt.Errorf("%w: payload", ErrChat)
)

// StatusError carries the status code of a failed response.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%v %d", ErrStatus, e.Code)
	}
	return fmt.Sprintf("%v %d: %s", ErrStatus, e.Code, e.Body)
}

// Unwrap lets errors.Is match ErrStatus and ErrChat.
func (e *StatusError) Unwrap() error { return ErrStatus }

// Kind names the failure class of err for log fields.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrTransport):
		return "transport"
	case errors.Is(err, ErrStatus):
		return "status"
	case errors.Is(err, ErrPayload):
		return "payload"
	default:
		return "unknown"
	}
}

package shared

import (
	"errors"
	"fmt"
)

// ClientError is a custom error that we will use in our API responses
type ClientError struct {
	message string
}

// Error - implementing this on ClientError makes it compatible for places where want to return errors
func (err *ClientError) Error() string {
	return fmt.Sprintf("client error: %s", err.message)
}

// NewClientError - use this to return client errors from your service
func NewClientError(message string) *ClientError {
	return &ClientError{
		message: message,
	}
}

// ErrForbidden marks a caller who is neither the room leader nor the admin
// attempting a moderated action. The controller maps it to a 403.
var ErrForbidden = errors.New("forbidden")

// ErrUnknownAction marks an action name outside the dispatch table.
var ErrUnknownAction = errors.New("unknown action")

package archive

import (
	"errors"
	"fmt"
)

// ErrNotFound is matched by every NotFoundError via errors.Is.
var ErrNotFound = errors.New("item not found")

// NetworkError wraps a transport-level failure reaching the remote service.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network failure reaching archive: %v", e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// NotFoundError reports that the remote item does not exist.
type NotFoundError struct {
	Identifier string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("item %q not found", e.Identifier)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// RemoteError reports a non-success status other than 404 from the remote
// service.
type RemoteError struct {
	Status int
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("archive returned status %d", e.Status)
}

// FormatError reports a response body that violates the expected metadata
// contract.
type FormatError struct {
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("malformed metadata response: %s", e.Reason)
}

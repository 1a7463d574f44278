package cloudflare

import (
	"errors"
	"fmt"
)

// ErrEmptyQuery rejects a blank query before any network activity.
var ErrEmptyQuery = errors.New("query must not be empty")

// GatewayError reports a non-success status from the remote endpoint. The
// whole run aborts; no partial results are available.
type GatewayError struct {
	Status int
	Body   string
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("gateway returned status %d: %s", e.Status, e.Body)
}

// MalformedResponseError reports a success response whose body could not be
// parsed into the expected shape. Surfaced like a GatewayError.
type MalformedResponseError struct {
	Body string
	Err  error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed gateway response: %v", e.Err)
}

func (e *MalformedResponseError) Unwrap() error { return e.Err }

package qualpay

import (
	"errors"
	"fmt"
)

// ErrProcessing wraps any failure for which no usable gateway response
// exists. Callers that only need a go/no-go signal can errors.Is against it;
// the underlying ConfigurationError or TransportError stays reachable
// through errors.As.
var ErrProcessing = errors.New("payment processing error")

// ConfigurationError means the merchant settings were missing or malformed.
// No network call is attempted.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("qualpay configuration error: %s %s", e.Field, e.Reason)
}

// TransportError means the call failed and no structured response body could
// be recovered. StatusCode is zero when the request never reached the remote.
type TransportError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("qualpay transport error: %v", e.Err)
	}
	return fmt.Sprintf("qualpay returned status %d: %s", e.StatusCode, e.Body)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// RemoteError means a response body was parsed (from a 2xx or a recovered
// error payload) but its result code signals failure. Code values from the
// platform family (integer codes, 0 = success) and the payment gateway
// family (three-digit rcode strings, "000" = approved) are never comparable.
type RemoteError struct {
	Family  string
	Code    string
	Message string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("qualpay %s error [%s]: %s", e.Family, e.Code, e.Message)
}

func IsRemoteError(err error) (*RemoteError, bool) {
	var remoteErr *RemoteError
	ok := errors.As(err, &remoteErr)
	return remoteErr, ok
}

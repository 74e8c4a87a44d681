package progres

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an APIError.
type Kind int

const (
	// KindHTTPStatus: the API answered with a non-2xx status.
	KindHTTPStatus Kind = iota + 1
	// KindNetwork: the request never got an answer.
	KindNetwork
	// KindConfig: the composed URL is not https.
	KindConfig
	// KindDecode: a 2xx body that is not the expected JSON.
	KindDecode
)

func (k Kind) String() string {
	switch k {
	case KindHTTPStatus:
		return "http_status"
	case KindNetwork:
		return "network"
	case KindConfig:
		return "config"
	case KindDecode:
		return "decode"
	}
	return "unknown"
}

// APIError is the only error type the client returns.
type APIError struct {
	Kind     Kind
	Status   int
	Message  string
	Endpoint string
	Err      error
}

func (e *APIError) Error() string {
	switch e.Kind {
	case KindHTTPStatus:
		return e.Message
	case KindNetwork:
		return fmt.Sprintf("Network error: %v", e.Err)
	case KindConfig:
		return "configuration error: " + e.Message
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *APIError) Unwrap() error { return e.Err }

// AuthExpired reports a 401/403, which usually means the upstream token is
// no longer accepted.
func (e *APIError) AuthExpired() bool {
	return e.Kind == KindHTTPStatus && (e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden)
}

// AsAPIError unwraps err into an *APIError.
func AsAPIError(err error) (*APIError, bool) {
	var ae *APIError
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

// IsAuthExpired is a shorthand used by callers that only log the advisory.
func IsAuthExpired(err error) bool {
	ae, ok := AsAPIError(err)
	return ok && ae.AuthExpired()
}

func statusError(endpoint string, status int, body string) *APIError {
	return &APIError{
		Kind:     KindHTTPStatus,
		Status:   status,
		Endpoint: endpoint,
		Message:  fmt.Sprintf("API Error %d: %s - %s", status, http.StatusText(status), body),
	}
}

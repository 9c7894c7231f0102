package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/almirah-shop/storefront/internal/types"
)

// GenericMessage is shown when an error carries nothing a user can act on.
const GenericMessage = "Something went wrong. Please try again."

// APIError is a non-2xx response from the backend.
type APIError struct {
	Method  string
	Path    string
	Status  int
	Kind    types.ErrorKind
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s %s: status %d", e.Method, e.Path, e.Status)
	}
	return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.Status, e.Message)
}

// AuthorizationDenied reports a 403 or 404, which role probes read as
// "not this role".
func (e *APIError) AuthorizationDenied() bool {
	return e.Status == http.StatusForbidden || e.Status == http.StatusNotFound
}

// NetworkError is a transport failure: no response was received.
type NetworkError struct {
	Method string
	Path   string
	Err    error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s %s: failed to send request: %v", e.Method, e.Path, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

func newAPIError(method, path string, status int, body []byte) *APIError {
	e := &APIError{Method: method, Path: path, Status: status}
	var resp types.ErrorResponse
	if len(body) > 0 && json.Unmarshal(body, &resp) == nil {
		e.Code = resp.Code
		e.Message = detailMessage(resp.Detail)
		if e.Code == "" {
			if m, ok := resp.Detail.(map[string]any); ok {
				if code, ok := m["code"].(string); ok {
					e.Code = code
				}
			}
		}
	}
	e.Kind = classify(status, e.Code, e.Message)
	return e
}

func detailMessage(detail any) string {
	switch d := detail.(type) {
	case string:
		return d
	case []any:
		msgs := make([]string, 0, len(d))
		for _, item := range d {
			if m, ok := item.(map[string]any); ok {
				if msg, ok := m["msg"].(string); ok {
					msgs = append(msgs, msg)
				}
			}
		}
		return strings.Join(msgs, "; ")
	case map[string]any:
		for _, key := range []string{"message", "msg", "detail"} {
			if msg, ok := d[key].(string); ok {
				return msg
			}
		}
	}
	return ""
}

func classify(status int, code, message string) types.ErrorKind {
	switch code {
	case types.CodeAddressRequired:
		return types.KindAddressRequired
	case types.CodeNotVerified:
		return types.KindNotVerified
	case types.CodeNotApproved:
		return types.KindNotApproved
	case types.CodeForbidden:
		return types.KindForbidden
	case types.CodeUnauthenticated:
		return types.KindUnauthenticated
	case types.CodeNotFound:
		return types.KindNotFound
	case types.CodeValidation:
		return types.KindValidation
	}
	if code == "" {
		if kind, ok := classifyLegacyDetail(message); ok {
			return kind
		}
	}
	switch {
	case status == http.StatusUnauthorized:
		return types.KindUnauthenticated
	case status == http.StatusForbidden:
		return types.KindForbidden
	case status == http.StatusNotFound:
		return types.KindNotFound
	case status == http.StatusBadRequest, status == http.StatusConflict, status == http.StatusUnprocessableEntity:
		return types.KindValidation
	case status >= 500:
		return types.KindServer
	}
	return types.KindUnknown
}

// classifyLegacyDetail recognises the free-text messages of backends that do
// not send structured codes yet. Nothing else in the client matches on text.
func classifyLegacyDetail(message string) (types.ErrorKind, bool) {
	lower := strings.ToLower(message)
	switch {
	case strings.Contains(lower, "address required"):
		return types.KindAddressRequired, true
	case strings.Contains(lower, "not verified"):
		return types.KindNotVerified, true
	case strings.Contains(lower, "not approved"):
		return types.KindNotApproved, true
	}
	return types.KindUnknown, false
}

// KindOf classifies any error returned by the client.
func KindOf(err error) types.ErrorKind {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	var netErr *NetworkError
	if errors.As(err, &netErr) {
		return types.KindNetwork
	}
	return types.KindUnknown
}

func IsKind(err error, kind types.ErrorKind) bool {
	return err != nil && KindOf(err) == kind
}

// UserMessage returns the text to show a user for err.
func UserMessage(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return GenericMessage
}

package censys

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrMissingToken is returned by NewClient when no bearer token is supplied
var ErrMissingToken = errors.New("censys: API token is required")

// PaywallHint is appended to errors for statuses that usually mean the
// endpoint is not included in the caller's plan or role
const PaywallHint = "this endpoint may require a paid plan or additional permissions for your organization (check CENSYS_ORGANIZATION_ID)"

// APIError represents a non-success response from the Censys Platform API
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("Censys API returned status %d: %s", e.StatusCode, strings.TrimSpace(e.Body))
	if hint := e.Hint(); hint != "" {
		msg += "\nHint: " + hint
	}
	return msg
}

// Hint returns a likely cause for the status code, or an empty string
func (e *APIError) Hint() string {
	switch e.StatusCode {
	case http.StatusPaymentRequired, http.StatusForbidden:
		return PaywallHint
	default:
		return ""
	}
}

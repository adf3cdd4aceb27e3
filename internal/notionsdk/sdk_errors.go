package notionsdk

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/imroc/req/v3"
)

var (
	// sdk common
	ErrNoClientID     = errors.New("sdk: oauth client id missing")
	ErrNoClientSecret = errors.New("sdk: oauth client secret missing")

	// ErrUnauthorized is the sole distinguished "token invalid" signal.
	// The API answers 401/403 for revoked or malformed bearer tokens;
	// every other failure mode gets its own APIError.
	ErrUnauthorized = errors.New("sdk: unauthorized")
)

// APIError is the error envelope the workspace API returns on failure.
type APIError struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error: %s - %s", e.Code, e.Message)
}

// handleAPIError is a helper function that handles the common error pattern
func handleAPIError(resp *req.Response, requestErr error, operation string) error {
	if requestErr != nil {
		return fmt.Errorf("http request error: %s %w", operation, requestErr)
	}

	// got a response, but api returned an error
	if resp.IsErrorState() {
		if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
			return fmt.Errorf("%s: %w", operation, ErrUnauthorized)
		}

		if apiErr, ok := resp.ErrorResult().(*APIError); ok && apiErr.Code != "" {
			return fmt.Errorf("%s %w", operation, apiErr)
		}

		return fmt.Errorf("api error: %s %s", operation, resp.String())
	}

	return nil
}

// IsUnauthorized reports whether err was caused by a rejected bearer token.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}

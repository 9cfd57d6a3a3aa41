package youtube

import (
	"errors"
	"fmt"
)

// Quota-related reasons returned by the API error body. The API signals
// exhaustion as HTTP 403 with one of these reasons, not only as HTTP 429.
var rateLimitReasons = map[string]bool{
	"quotaExceeded":         true,
	"dailyLimitExceeded":    true,
	"rateLimitExceeded":     true,
	"userRateLimitExceeded": true,
}

// APIError is a classified remote error from the Data API.
type APIError struct {
	StatusCode int
	Reason     string
	Message    string
}

func (e *APIError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("youtube API error: status %d (%s): %s", e.StatusCode, e.Reason, e.Message)
	}
	return fmt.Sprintf("youtube API error: status %d: %s", e.StatusCode, e.Message)
}

// RateLimited reports whether this error is a transient quota/rate signal.
func (e *APIError) RateLimited() bool {
	return e.StatusCode == 429 || rateLimitReasons[e.Reason]
}

// IsRateLimited reports whether err (anywhere in its chain) is a
// rate-limit/quota signal from the remote API.
func IsRateLimited(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.RateLimited()
}

// apiErrorResponse is the error body shape returned by the Data API.
type apiErrorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Errors  []struct {
			Reason string `json:"reason"`
		} `json:"errors"`
	} `json:"error"`
}

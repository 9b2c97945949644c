package youtube

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/api/googleapi"
)

// APIError is the normalized form of a remote call failure. Code carries the
// YouTube error reason when one is present, otherwise a coarse fallback.
type APIError struct {
	Code       string
	Message    string
	HTTPStatus int
}

func (e *APIError) Error() string {
	if e.HTTPStatus != 0 {
		return fmt.Sprintf("youtube: %s (%d): %s", e.Code, e.HTTPStatus, e.Message)
	}
	return fmt.Sprintf("youtube: %s: %s", e.Code, e.Message)
}

// ParseAPIError normalizes any error coming out of the YouTube client.
// googleapi errors keep their HTTP status and first reason; an *APIError
// passes through unchanged; everything else becomes unknown_error.
func ParseAPIError(err error) *APIError {
	if err == nil {
		return nil
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		parsed := &APIError{
			Code:       fmt.Sprintf("%d", gerr.Code),
			Message:    gerr.Message,
			HTTPStatus: gerr.Code,
		}
		if len(gerr.Errors) > 0 {
			item := gerr.Errors[0]
			if item.Reason != "" {
				parsed.Code = item.Reason
			}
			if item.Message != "" {
				parsed.Message = item.Message
			}
		}
		if parsed.Message == "" {
			parsed.Message = gerr.Error()
		}
		return parsed
	}
	return &APIError{Code: "unknown_error", Message: err.Error()}
}

// transientReasons are the remote signals safe to retry. Daily quota
// exhaustion (quotaExceeded) is deliberately absent: retrying it only burns
// more budget.
var transientReasons = map[string]struct{}{
	"backenderror":          {},
	"internalerror":         {},
	"ratelimitexceeded":     {},
	"userratelimitexceeded": {},
	"service_unavailable":   {},
	"aborted":               {},
}

// IsTransient classifies a parsed error as retryable. Pure function of the
// error's status, code and message.
func IsTransient(e *APIError) bool {
	if e == nil {
		return false
	}
	switch e.HTTPStatus {
	case http.StatusTooManyRequests, http.StatusInternalServerError, http.StatusServiceUnavailable:
		return true
	}
	if _, ok := transientReasons[strings.ToLower(e.Code)]; ok {
		return true
	}
	msg := strings.ToLower(e.Message)
	return strings.Contains(msg, "aborted") ||
		strings.Contains(msg, "temporary") ||
		strings.Contains(msg, "unavailable") ||
		strings.Contains(msg, "backend error")
}

// IsNotFound reports whether the error says the playlist item is already
// gone. For deletes that is the target state, not a failure.
func IsNotFound(e *APIError) bool {
	if e == nil {
		return false
	}
	if e.HTTPStatus == http.StatusNotFound {
		return true
	}
	switch strings.ToLower(e.Code) {
	case "playlistitemnotfound", "notfound", "videonotfound":
		return true
	}
	return strings.Contains(strings.ToLower(e.Message), "not found")
}

package uploads

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
)

// Failure classes carried on job results. Every error escaping the upload
// pipeline wraps exactly one of these sentinels.
var (
	ErrInvalidInput   = errors.New("invalid upload input")
	ErrConstraints    = errors.New("video cannot be covered by allowed chunking")
	ErrAuth           = errors.New("access token rejected")
	ErrRemoteRejected = errors.New("request rejected by platform")
	ErrTransient      = errors.New("transient upstream failure")
	ErrChunkUpload    = errors.New("chunk upload failed")
	ErrStatusTimeout  = errors.New("publish status polling timed out")
	ErrPublishFailed  = errors.New("platform reported publish failure")
	ErrLocalIO        = errors.New("local video i/o failure")
)

const (
	ReasonInvalidInput   = "invalid_input"
	ReasonConstraints    = "constraint_violation"
	ReasonAuth           = "auth"
	ReasonRemoteRejected = "remote_rejected"
	ReasonTransient      = "transient"
	ReasonChunkUpload    = "chunk_upload_failed"
	ReasonStatusTimeout  = "status_timeout"
	ReasonPublishFailed  = "publish_failed"
	ReasonLocalIO        = "io"
	ReasonCancelled      = "cancelled"
	ReasonInternal       = "internal"
)

// FailureClass buckets err into the job result reason taxonomy.
func FailureClass(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrAuth):
		return ReasonAuth
	case errors.Is(err, ErrStatusTimeout):
		return ReasonStatusTimeout
	case errors.Is(err, ErrChunkUpload):
		return ReasonChunkUpload
	case errors.Is(err, ErrPublishFailed):
		return ReasonPublishFailed
	case errors.Is(err, ErrConstraints):
		return ReasonConstraints
	case errors.Is(err, ErrInvalidInput):
		return ReasonInvalidInput
	case errors.Is(err, ErrRemoteRejected):
		return ReasonRemoteRejected
	case errors.Is(err, ErrLocalIO):
		return ReasonLocalIO
	case errors.Is(err, ErrTransient):
		return ReasonTransient
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return ReasonCancelled
	default:
		return ReasonInternal
	}
}

// IsTransient reports whether err is worth retrying as-is.
func IsTransient(err error) bool {
	return errors.Is(err, ErrTransient)
}

// APIError preserves the platform's error envelope verbatim alongside the
// HTTP status it arrived with. Unwrap yields the failure class sentinel so
// errors.Is sees through it.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
	LogID      string
	class      error
}

func (e *APIError) Error() string {
	return fmt.Sprintf("tiktok api: status=%d code=%q message=%q log_id=%s", e.StatusCode, e.Code, e.Message, e.LogID)
}

func (e *APIError) Unwrap() error {
	return e.class
}

// Token errors come back as in-band codes with a 200 status as often as
// proper 401s, so both paths are mapped here.
var authErrorCodes = map[string]bool{
	"access_token_invalid":    true,
	"access_token_expired":    true,
	"scope_not_authorized":    true,
	"scope_permission_missed": true,
}

func NewAPIError(statusCode int, code, message, logID string) *APIError {
	e := &APIError{
		StatusCode: statusCode,
		Code:       code,
		Message:    message,
		LogID:      logID,
	}
	switch {
	case authErrorCodes[code]:
		e.class = ErrAuth
	case statusCode == 401 || statusCode == 403:
		e.class = ErrAuth
	case statusCode >= 500 || code == "rate_limit_exceeded" || code == "internal_error":
		e.class = ErrTransient
	default:
		e.class = ErrRemoteRejected
	}
	return e
}

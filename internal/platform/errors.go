package platform

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/EmreGunner/Leda-instagram-dm-tool-sub000/internal/model"
)

var (
	// ErrInvalidProxyAddress is returned when the proxy address is not "host:port".
	ErrInvalidProxyAddress = errors.New("invalid proxy address format: expected host:port")

	// ErrNoSession is returned when a request is made before InstallSession.
	ErrNoSession = errors.New("no session installed")

	// ErrUnexpectedResponse is returned when a 2xx response cannot be decoded.
	ErrUnexpectedResponse = errors.New("unexpected platform response")
)

// Platform error messages and error types observed in failure envelopes.
const (
	msgCheckpointRequired = "checkpoint_required"
	msgChallengeRequired  = "challenge_required"
	msgLoginRequired      = "login_required"
	msgFeedbackRequired   = "feedback_required"
	msgUserNotFound       = "user_not_found"
	msgRateLimit          = "rate_limit_error"
)

// APIError is a failure envelope returned by the platform, or a synthesized
// one for responses that redirected to a login or challenge page.
type APIError struct {
	// StatusCode is the HTTP status of the response.
	StatusCode int

	// Message is the envelope's "message" field.
	Message string

	// ErrorType is the envelope's "error_type" field.
	ErrorType string

	// CheckpointURL is set when the platform demands a checkpoint.
	CheckpointURL string

	// Spam is the envelope's "spam" flag, set on spam blocks.
	Spam bool

	// FeedbackTitle is the human-readable title of a feedback_required block.
	FeedbackTitle string

	// Body is the raw response body, truncated.
	Body string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	detail := e.Message
	if detail == "" {
		detail = e.ErrorType
	}
	if detail == "" {
		detail = http.StatusText(e.StatusCode)
	}
	return fmt.Sprintf("platform api error (status %d): %s", e.StatusCode, detail)
}

func (e *APIError) has(values ...string) bool {
	msg := strings.ToLower(e.Message)
	typ := strings.ToLower(e.ErrorType)
	for _, v := range values {
		if msg == v || typ == v || strings.Contains(msg, v) {
			return true
		}
	}
	return false
}

// IsCheckpoint reports whether the platform requires an identity challenge.
func (e *APIError) IsCheckpoint() bool {
	return e.CheckpointURL != "" || e.has(msgCheckpointRequired, msgChallengeRequired)
}

// IsLoginRequired reports whether the session cookies were rejected.
func (e *APIError) IsLoginRequired() bool {
	return e.StatusCode == http.StatusUnauthorized || e.has(msgLoginRequired)
}

// IsNotFound reports whether the addressed user or resource does not exist.
func (e *APIError) IsNotFound() bool {
	return e.StatusCode == http.StatusNotFound || e.has(msgUserNotFound, "user not found", "target user not found")
}

// IsRateLimited reports throttling or a spam block.
func (e *APIError) IsRateLimited() bool {
	return e.StatusCode == http.StatusTooManyRequests ||
		e.Spam ||
		e.has(msgFeedbackRequired, msgRateLimit, "please wait a few minutes", "spam")
}

// Classify maps any error onto the shared taxonomy. The order is fixed:
// checkpoint, not found, login required, rate limited, then unknown. An
// error that is already a *model.Failure keeps its kind.
func Classify(err error) model.ErrorKind {
	if err == nil {
		return ""
	}

	var failure *model.Failure
	if errors.As(err, &failure) {
		return failure.Kind
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return model.ErrorKindUnknown
	}

	switch {
	case apiErr.IsCheckpoint():
		return model.ErrorKindCheckpointRequired
	case apiErr.IsNotFound():
		return model.ErrorKindRecipientNotFound
	case apiErr.IsLoginRequired():
		return model.ErrorKindLoginRequired
	case apiErr.IsRateLimited():
		return model.ErrorKindRateLimited
	default:
		return model.ErrorKindUnknown
	}
}

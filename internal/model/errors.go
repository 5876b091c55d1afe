package model

import (
	"errors"
	"fmt"
)

// ErrorKind is the closed failure taxonomy shared by every package.
// Callers switch on ErrorKind instead of inspecting library error shapes.
type ErrorKind string

const (
	// ErrorKindInvalidInput means the caller supplied malformed input.
	// No network call was made.
	ErrorKindInvalidInput ErrorKind = "invalid-input"

	// ErrorKindCheckpointRequired means the platform demands a human
	// identity-verification challenge before further actions.
	ErrorKindCheckpointRequired ErrorKind = "checkpoint-required"

	// ErrorKindLoginRequired means the session cookies were rejected while
	// building a client.
	ErrorKindLoginRequired ErrorKind = "login-required"

	// ErrorKindSessionExpired means a previously working session was rejected
	// mid-operation.
	ErrorKindSessionExpired ErrorKind = "session-expired"

	// ErrorKindRecipientNotFound means the message recipient does not exist.
	ErrorKindRecipientNotFound ErrorKind = "recipient-not-found"

	// ErrorKindRateLimited covers throttling and spam blocks.
	ErrorKindRateLimited ErrorKind = "rate-limited"

	// ErrorKindDecryptionFailed means a stored credential blob could not be decoded.
	ErrorKindDecryptionFailed ErrorKind = "decryption-failed"

	// ErrorKindExtractionExhausted means every media extraction stage ran
	// without a validated result.
	ErrorKindExtractionExhausted ErrorKind = "extraction-exhausted"

	// ErrorKindBlocked means the fetched post markup was a login wall or too
	// short to contain post data.
	ErrorKindBlocked ErrorKind = "blocked"

	// ErrorKindUnknown is everything else. Detail carries the raw text.
	ErrorKindUnknown ErrorKind = "unknown"
)

// String implements fmt.Stringer.
func (k ErrorKind) String() string {
	if k == "" {
		return "none"
	}
	return string(k)
}

// Known reports whether k is part of the taxonomy.
func (k ErrorKind) Known() bool {
	switch k {
	case ErrorKindInvalidInput, ErrorKindCheckpointRequired, ErrorKindLoginRequired,
		ErrorKindSessionExpired, ErrorKindRecipientNotFound, ErrorKindRateLimited,
		ErrorKindDecryptionFailed, ErrorKindExtractionExhausted, ErrorKindBlocked,
		ErrorKindUnknown:
		return true
	default:
		return false
	}
}

// ErrIncompleteCredential is returned when a credential lacks a required cookie.
var ErrIncompleteCredential = errors.New("incomplete session credential")

// Failure is the value form of an error, returned by operations that report
// failures as data rather than as Go errors.
type Failure struct {
	// Kind classifies the failure.
	Kind ErrorKind `json:"kind"`

	// Stage names the last processing stage reached, when relevant.
	Stage string `json:"stage,omitempty"`

	// Detail is the raw diagnostic text.
	Detail string `json:"detail,omitempty"`
}

// NewFailure creates a Failure of the given kind.
func NewFailure(kind ErrorKind, detail string) *Failure {
	return &Failure{Kind: kind, Detail: detail}
}

// Error implements the error interface so a Failure can be wrapped or logged.
func (f *Failure) Error() string {
	msg := string(f.Kind)
	if f.Stage != "" {
		msg += " at " + f.Stage
	}
	if f.Detail != "" {
		msg = fmt.Sprintf("%s: %s", msg, f.Detail)
	}
	return msg
}

package session

import (
	"fmt"

	"github.com/EmreGunner/Leda-instagram-dm-tool-sub000/internal/model"
)

// Error is returned when a verified client cannot be produced.
// Kind is one of invalid-input, decryption-failed, checkpoint-required,
// login-required, or unknown.
type Error struct {
	Kind     model.ErrorKind
	Identity string
	Err      error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Identity == "" {
		return fmt.Sprintf("session %s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("session %s for account %s: %v", e.Kind, e.Identity, e.Err)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// probeKind narrows a probe failure to the kinds a session error may carry.
func probeKind(kind model.ErrorKind) model.ErrorKind {
	switch kind {
	case model.ErrorKindCheckpointRequired, model.ErrorKindLoginRequired:
		return kind
	default:
		return model.ErrorKindUnknown
	}
}

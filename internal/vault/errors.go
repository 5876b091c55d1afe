package vault

import "errors"

var (
	// ErrKeyTooShort is returned when the configured secret has fewer than
	// KeySize bytes.
	ErrKeyTooShort = errors.New("encryption key too short: need at least 32 characters")

	// ErrDecryptionFailed wraps every failure to turn a blob back into a
	// credential. Callers match it with errors.Is.
	ErrDecryptionFailed = errors.New("credential decryption failed")

	// ErrInvalidPadding is returned when PKCS#7 padding does not verify.
	ErrInvalidPadding = errors.New("invalid padding")

	// ErrMalformedBlob is returned when a blob does not match either format.
	ErrMalformedBlob = errors.New("malformed credential blob")
)

// Package messaging sends direct text messages through a verified session.
//
// Every send returns a model.MessageResult and never a Go error. Input is
// validated before any network call. Failures are classified in a fixed priority
// order: invalid-input, checkpoint-required, recipient-not-found,
// session-expired, rate-limited, and finally unknown with the raw diagnostic
// text kept in Detail. The gateway never retries and stores nothing.
package messaging

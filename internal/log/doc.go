// Package log provides secure logging built on the standard slog package.
//
// The SecureHandler masks sensitive values before they reach the output:
//   - Session cookies (sessionid, csrftoken, ds_user_id, mid, rur) by key
//   - Raw Cookie headers and CSRF headers
//   - Values that look like cookie strings or long opaque tokens
//   - Encryption secrets and encrypted credential blobs
//
// Even in verbose mode the harvested session cookies never appear in logs.
//
// # Usage
//
//	logger := log.NewSecureLogger(os.Stderr, verbose)
//	logger.Debug("probe ok", "account", cred.Identity(), "sessionid", cred.SessionID)
//	// sessionid=***REDACTED***
package log

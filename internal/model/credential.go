package model

import (
	"fmt"
	"strings"
)

// Cookie names used by the platform for an authenticated browser session.
const (
	CookieSessionID    = "sessionid"
	CookieCSRFToken    = "csrftoken"
	CookieDeviceUserID = "ds_user_id"
	CookieDeviceID     = "ig_did"
	CookieMID          = "mid"
	CookieRegion       = "rur"
)

// SessionCredential is the cookie bundle captured from an authenticated browser.
// DeviceUserID is the identity key: one account, one credential, one cached client.
//
// The engine never persists a SessionCredential in plaintext. Use the vault
// package to produce an encrypted blob for storage.
type SessionCredential struct {
	// SessionID is the value of the sessionid cookie.
	SessionID string `json:"sessionId"`

	// CSRFToken is the value of the csrftoken cookie. It is also echoed in the
	// X-CSRFToken header on mutating requests.
	CSRFToken string `json:"csrfToken"`

	// DeviceUserID is the value of the ds_user_id cookie, the numeric account id.
	DeviceUserID string `json:"dsUserId"`

	// DeviceID is the optional ig_did cookie.
	DeviceID string `json:"igDid,omitempty"`

	// MID is the optional mid cookie.
	MID string `json:"mid,omitempty"`

	// RegionToken is the optional rur cookie.
	RegionToken string `json:"rur,omitempty"`
}

// Identity returns the key under which clients for this credential are cached.
func (c SessionCredential) Identity() string {
	return c.DeviceUserID
}

// Validate reports whether the required cookies are present.
func (c SessionCredential) Validate() error {
	var missing []string
	if strings.TrimSpace(c.SessionID) == "" {
		missing = append(missing, CookieSessionID)
	}
	if strings.TrimSpace(c.CSRFToken) == "" {
		missing = append(missing, CookieCSRFToken)
	}
	if strings.TrimSpace(c.DeviceUserID) == "" {
		missing = append(missing, CookieDeviceUserID)
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrIncompleteCredential, strings.Join(missing, ", "))
	}
	return nil
}

// Cookies returns the credential as cookie name/value pairs in a stable order.
// Optional cookies are only included when set.
func (c SessionCredential) Cookies() [][2]string {
	pairs := [][2]string{
		{CookieSessionID, c.SessionID},
		{CookieCSRFToken, c.CSRFToken},
		{CookieDeviceUserID, c.DeviceUserID},
	}
	if c.DeviceID != "" {
		pairs = append(pairs, [2]string{CookieDeviceID, c.DeviceID})
	}
	if c.MID != "" {
		pairs = append(pairs, [2]string{CookieMID, c.MID})
	}
	if c.RegionToken != "" {
		pairs = append(pairs, [2]string{CookieRegion, c.RegionToken})
	}
	return pairs
}

// CookieHeader renders the credential as a raw Cookie header value,
// e.g. "sessionid=abc; csrftoken=def; ds_user_id=123".
func (c SessionCredential) CookieHeader() string {
	pairs := c.Cookies()
	parts := make([]string, 0, len(pairs))
	for _, p := range pairs {
		parts = append(parts, p[0]+"="+p[1])
	}
	return strings.Join(parts, "; ")
}

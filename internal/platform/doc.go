// Package platform is a cookie-authenticated HTTP client for the social
// platform's private web API and public post pages.
//
// A Client is built from harvested browser cookies rather than an API token.
// It installs the cookies in its cookie jar, sends the headers a browser
// session would send (CSRF token echo, app id, device id), and decodes the
// platform's JSON envelopes. Error envelopes are surfaced as *APIError, and
// Classify maps any error onto the model.ErrorKind taxonomy so that callers
// never inspect platform error shapes themselves.
//
// Connections are direct by default. When a SOCKS5 proxy address is
// configured, every connection is dialed through it.
package platform

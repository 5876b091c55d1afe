// Package session builds, verifies, and caches authenticated platform clients.
//
// A Manager turns a harvested SessionCredential into a *platform.Client,
// proving the cookies are live with an identity probe before handing the
// client out. Verified clients are held in an explicit Store keyed by account
// identity and expire after a TTL (30 minutes by default).
//
// Concurrent GetClient calls for the same identity are not de-duplicated.
// Each builds and probes its own client and the last one stored wins.
package session

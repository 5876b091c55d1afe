// Package database provides SQLite-based storage for encrypted session
// credentials used by the leda command line.
//
// The AccountDB stores one vault blob per account identity. Blobs are
// opaque here: the database never sees a plaintext cookie, and callers
// decrypt through the vault package on demand.
//
// SQLite is provided by modernc.org/sqlite, a CGO-free driver, so the
// database is a single file under the XDG data directory.
package database

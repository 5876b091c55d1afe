// Package vault encrypts and decrypts session credentials for storage at rest.
//
// Blobs are self-describing. The current format is "hex(iv):hex(ciphertext)"
// using AES-256-CBC with PKCS#7 padding, keyed by the first 32 bytes of the
// configured secret. Older blobs are base64-encoded JSON without a colon and
// are still accepted by Decrypt.
package vault

package vault

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/EmreGunner/Leda-instagram-dm-tool-sub000/internal/model"
)

// KeySize is the AES-256 key length in bytes.
const KeySize = 32

// ivSize is the AES block size, used as the CBC IV length.
const ivSize = aes.BlockSize

// Vault encrypts and decrypts credential bundles.
// A Vault is safe for concurrent use.
type Vault struct {
	secret string
	random io.Reader
	logger *slog.Logger
}

// Option configures a Vault.
type Option func(*Vault)

// WithLogger sets the logger used to report cipher fallbacks.
func WithLogger(logger *slog.Logger) Option {
	return func(v *Vault) {
		v.logger = logger
	}
}

// WithRandom replaces the IV source. Tests use it to force cipher failures.
func WithRandom(r io.Reader) Option {
	return func(v *Vault) {
		v.random = r
	}
}

// New creates a Vault for the given secret. The secret is not validated
// until the first Encrypt or Decrypt call.
func New(secret string, opts ...Option) *Vault {
	v := &Vault{
		secret: secret,
		random: rand.Reader,
	}
	for _, opt := range opts {
		opt(v)
	}
	if v.logger == nil {
		v.logger = slog.Default()
	}
	return v
}

// key returns the first KeySize bytes of the secret.
func (v *Vault) key() ([]byte, error) {
	if len(v.secret) < KeySize {
		return nil, ErrKeyTooShort
	}
	return []byte(v.secret[:KeySize]), nil
}

// Encrypt serializes the credential and encrypts it.
//
// A secret shorter than KeySize fails with ErrKeyTooShort before anything is
// encoded. If the cipher itself fails, the credential is stored as
// base64(JSON) instead and a warning is logged.
func (v *Vault) Encrypt(cred model.SessionCredential) (string, error) {
	key, err := v.key()
	if err != nil {
		return "", err
	}

	plaintext, err := json.Marshal(cred)
	if err != nil {
		return "", fmt.Errorf("failed to serialize credential: %w", err)
	}

	blob, err := v.encryptAES(key, plaintext)
	if err != nil {
		v.logger.Warn("credential encryption failed, storing legacy encoding",
			"account", cred.Identity(),
			"error", err,
		)
		return base64.StdEncoding.EncodeToString(plaintext), nil
	}
	return blob, nil
}

func (v *Vault) encryptAES(key, plaintext []byte) (string, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return "", err
	}

	iv := make([]byte, ivSize)
	if _, err := io.ReadFull(v.random, iv); err != nil {
		return "", fmt.Errorf("failed to generate iv: %w", err)
	}

	padded := pkcs7Pad(plaintext, aes.BlockSize)
	ciphertext := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ciphertext, padded)

	return hex.EncodeToString(iv) + ":" + hex.EncodeToString(ciphertext), nil
}

// Decrypt turns a blob back into a credential. The format is detected by the
// presence of a colon. Every failure wraps ErrDecryptionFailed; on failure
// the returned credential is always the zero value. A short secret is
// rejected for both formats.
func (v *Vault) Decrypt(blob string) (model.SessionCredential, error) {
	key, err := v.key()
	if err != nil {
		return model.SessionCredential{}, fmt.Errorf("%w: %w", ErrDecryptionFailed, err)
	}

	blob = strings.TrimSpace(blob)
	if blob == "" {
		return model.SessionCredential{}, fmt.Errorf("%w: %w", ErrDecryptionFailed, ErrMalformedBlob)
	}

	var plaintext []byte
	if strings.Contains(blob, ":") {
		plaintext, err = v.decryptAES(key, blob)
	} else {
		plaintext, err = base64.StdEncoding.DecodeString(blob)
	}
	if err != nil {
		return model.SessionCredential{}, fmt.Errorf("%w: %w", ErrDecryptionFailed, err)
	}

	var cred model.SessionCredential
	if err := json.Unmarshal(plaintext, &cred); err != nil {
		return model.SessionCredential{}, fmt.Errorf("%w: %w", ErrDecryptionFailed, err)
	}
	if err := cred.Validate(); err != nil {
		return model.SessionCredential{}, fmt.Errorf("%w: %w", ErrDecryptionFailed, err)
	}
	return cred, nil
}

func (v *Vault) decryptAES(key []byte, blob string) ([]byte, error) {
	ivHex, cipherHex, ok := strings.Cut(blob, ":")
	if !ok {
		return nil, ErrMalformedBlob
	}
	iv, err := hex.DecodeString(ivHex)
	if err != nil || len(iv) != ivSize {
		return nil, fmt.Errorf("%w: bad iv", ErrMalformedBlob)
	}
	ciphertext, err := hex.DecodeString(cipherHex)
	if err != nil || len(ciphertext) == 0 || len(ciphertext)%aes.BlockSize != 0 {
		return nil, fmt.Errorf("%w: bad ciphertext", ErrMalformedBlob)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	plaintext := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(plaintext, ciphertext)
	return pkcs7Unpad(plaintext, aes.BlockSize)
}

func pkcs7Pad(data []byte, blockSize int) []byte {
	n := blockSize - len(data)%blockSize
	return append(append([]byte{}, data...), bytes.Repeat([]byte{byte(n)}, n)...)
}

func pkcs7Unpad(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 || len(data)%blockSize != 0 {
		return nil, ErrInvalidPadding
	}
	n := int(data[len(data)-1])
	if n == 0 || n > blockSize || n > len(data) {
		return nil, ErrInvalidPadding
	}
	for _, b := range data[len(data)-n:] {
		if int(b) != n {
			return nil, ErrInvalidPadding
		}
	}
	return data[:len(data)-n], nil
}

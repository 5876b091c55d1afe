package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "leda"

	// EncryptionKeyEnv is the environment variable holding the credential
	// encryption secret. The secret must be at least 32 characters.
	EncryptionKeyEnv = "LEDA_ENCRYPTION_KEY"

	// DefaultAPIBaseURL is the platform's private API root.
	DefaultAPIBaseURL = "https://i.instagram.com/api/v1"

	// DefaultWebBaseURL is the public web root that serves post pages.
	DefaultWebBaseURL = "https://www.instagram.com"

	// DefaultAppID is the web application id sent in the X-IG-App-ID header.
	DefaultAppID = "936619743392459"

	// DefaultUserAgent matches a current desktop browser so that requests
	// made with browser cookies look like the browser that produced them.
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

	// DefaultTimeout applies to each HTTP request.
	DefaultTimeout = 30 * time.Second

	// DefaultSessionTTL is how long a verified client stays cached before the
	// identity probe must run again.
	DefaultSessionTTL = 30 * time.Minute

	// DefaultPageDelay is the pause between paginated feed fetches.
	DefaultPageDelay = 500 * time.Millisecond

	// DefaultProfileDelay is the pause between per-candidate profile fetches
	// during a bio keyword search.
	DefaultProfileDelay = 300 * time.Millisecond

	// DefaultMinMarkupSize is the size floor below which a fetched post page
	// is treated as a block page. Real post pages are several hundred KB.
	DefaultMinMarkupSize = 5000

	// DefaultMaxBodySize limits how much of a response body is read.
	DefaultMaxBodySize = 8 * 1024 * 1024 // 8MB

	// DefaultResolveConcurrency bounds how many shortcodes the CLI resolves at once.
	DefaultResolveConcurrency = 4

	// DefaultDBFile is the SQLite file holding encrypted credential blobs.
	DefaultDBFile = "leda.db"
)

// Config holds all configuration options for leda.
// It is populated from defaults, the optional YAML file, and CLI flags, and
// passed to components explicitly rather than read from global state.
type Config struct {
	// APIBaseURL is the private API root, without trailing slash.
	APIBaseURL string

	// WebBaseURL is the web root used for post pages, without trailing slash.
	WebBaseURL string

	// AppID is sent as X-IG-App-ID on API requests.
	AppID string

	// UserAgent is the User-Agent header sent with every request.
	UserAgent string

	// Timeout is the per-request HTTP timeout.
	Timeout time.Duration

	// ProxyAddress is an optional SOCKS5 proxy in "host:port" format.
	// Empty means direct connections.
	ProxyAddress string

	// SessionTTL is the lifetime of a cached, probed client.
	SessionTTL time.Duration

	// PageDelay is the pause between page fetches in a crawl.
	PageDelay time.Duration

	// ProfileDelay is the pause between profile fetches in a bio search.
	ProfileDelay time.Duration

	// MinMarkupSize is the degenerate-response floor for post markup, in bytes.
	MinMarkupSize int

	// MaxBodySize is the maximum response body size in bytes to read.
	MaxBodySize int64

	// ResolveConcurrency bounds concurrent shortcode resolution in the CLI.
	ResolveConcurrency int

	// Verbose enables debug logging.
	Verbose bool

	// JSONReport selects JSON output. Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport selects Markdown output. Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ConfigFilePath is an explicit configuration file path.
	ConfigFilePath string

	// DBDir is the directory holding the credential blob database.
	DBDir string

	// Resolver holds media resolver URL rule overrides from the config file.
	Resolver ResolverConfig
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		APIBaseURL:         DefaultAPIBaseURL,
		WebBaseURL:         DefaultWebBaseURL,
		AppID:              DefaultAppID,
		UserAgent:          DefaultUserAgent,
		Timeout:            DefaultTimeout,
		SessionTTL:         DefaultSessionTTL,
		PageDelay:          DefaultPageDelay,
		ProfileDelay:       DefaultProfileDelay,
		MinMarkupSize:      DefaultMinMarkupSize,
		MaxBodySize:        DefaultMaxBodySize,
		ResolveConcurrency: DefaultResolveConcurrency,
		DBDir:              XDGDataDir(),
	}
}

// XDGDataDir returns the XDG data directory for leda.
// On Linux: ~/.local/share/leda
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for leda.
// On Linux: ~/.config/leda
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// EncryptionKeyFromEnv returns the credential encryption secret from the
// environment. Its length is not checked here; the vault rejects short
// secrets on first use.
func EncryptionKeyFromEnv() string {
	return os.Getenv(EncryptionKeyEnv)
}

// Validate checks if the configuration is valid.
// It returns the first problem found as a sentinel error.
func (c *Config) Validate() error {
	if c.APIBaseURL == "" || c.WebBaseURL == "" {
		return ErrMissingBaseURL
	}
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.SessionTTL <= 0 {
		return ErrInvalidSessionTTL
	}
	if c.PageDelay < 0 || c.ProfileDelay < 0 {
		return ErrInvalidDelay
	}
	if c.MinMarkupSize < 0 {
		return ErrInvalidMinMarkupSize
	}
	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}
	if c.ResolveConcurrency <= 0 {
		return ErrInvalidConcurrency
	}
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}
	return nil
}

package config

import "time"

// ResolverConfig lists media resolver URL rules from the configuration file.
// Non-empty lists replace the built-in defaults for that rule; empty lists
// keep the defaults. The platform's CDN layout drifts, so these rules are
// expected to be edited without a new release.
type ResolverConfig struct {
	// VideoHosts are host suffixes a video URL must belong to.
	VideoHosts []string `yaml:"videoHosts,omitempty"`

	// VideoPathSignatures are path fragments identifying video assets.
	VideoPathSignatures []string `yaml:"videoPathSignatures,omitempty"`

	// VideoExtensions are accepted file extensions, including the dot.
	VideoExtensions []string `yaml:"videoExtensions,omitempty"`

	// BlockMarkers are substrings that disqualify a candidate URL
	// (scripts, styles, thumbnails, previews).
	BlockMarkers []string `yaml:"blockMarkers,omitempty"`

	// BlockedExtensions are file extensions, including the dot, that
	// disqualify a candidate URL.
	BlockedExtensions []string `yaml:"blockedExtensions,omitempty"`

	// LoginMarkers are substrings identifying an anonymous login page.
	LoginMarkers []string `yaml:"loginMarkers,omitempty"`

	// MinMarkupSize overrides the degenerate-response floor when positive.
	MinMarkupSize int `yaml:"minMarkupSize,omitempty"`
}

// Defaults holds transport and pacing overrides from the configuration file.
type Defaults struct {
	UserAgent    string        `yaml:"userAgent,omitempty"`
	ProxyAddress string        `yaml:"proxy,omitempty"`
	Timeout      time.Duration `yaml:"timeout,omitempty"`
	PageDelay    time.Duration `yaml:"pageDelay,omitempty"`
	ProfileDelay time.Duration `yaml:"profileDelay,omitempty"`
	SessionTTL   time.Duration `yaml:"sessionTTL,omitempty"`
}

// File represents the structure of the .leda.yaml configuration file.
type File struct {
	// Defaults overrides transport and pacing settings.
	Defaults Defaults `yaml:"defaults,omitempty"`

	// Resolver overrides media resolver URL rules.
	Resolver ResolverConfig `yaml:"resolver,omitempty"`
}

// Apply copies every value set in the file onto cfg.
// Zero values in the file leave cfg unchanged.
func (f *File) Apply(cfg *Config) {
	d := f.Defaults
	if d.UserAgent != "" {
		cfg.UserAgent = d.UserAgent
	}
	if d.ProxyAddress != "" {
		cfg.ProxyAddress = d.ProxyAddress
	}
	if d.Timeout > 0 {
		cfg.Timeout = d.Timeout
	}
	if d.PageDelay > 0 {
		cfg.PageDelay = d.PageDelay
	}
	if d.ProfileDelay > 0 {
		cfg.ProfileDelay = d.ProfileDelay
	}
	if d.SessionTTL > 0 {
		cfg.SessionTTL = d.SessionTTL
	}
	if f.Resolver.MinMarkupSize > 0 {
		cfg.MinMarkupSize = f.Resolver.MinMarkupSize
	}
	cfg.Resolver = f.Resolver
}

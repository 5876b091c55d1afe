package session

import (
	"context"
	"log/slog"
	"time"

	"github.com/EmreGunner/Leda-instagram-dm-tool-sub000/internal/config"
	"github.com/EmreGunner/Leda-instagram-dm-tool-sub000/internal/model"
	"github.com/EmreGunner/Leda-instagram-dm-tool-sub000/internal/platform"
)

// Decrypter turns an encrypted credential blob back into a credential.
// *vault.Vault satisfies it.
type Decrypter interface {
	Decrypt(blob string) (model.SessionCredential, error)
}

// ClientFactory constructs an unauthenticated platform client.
type ClientFactory func(platform.Options) (*platform.Client, error)

// Manager hands out verified platform clients, one per account identity.
type Manager struct {
	// store caches verified clients.
	store *Store

	// options are passed to every client the factory builds.
	options platform.Options

	// newClient builds clients; platform.NewClient unless replaced.
	newClient ClientFactory

	logger *slog.Logger
}

// Option configures a Manager.
type Option func(*Manager)

// WithStore replaces the Manager's Store. Use it to share a Store or to
// control the clock in tests.
func WithStore(store *Store) Option {
	return func(m *Manager) {
		m.store = store
	}
}

// WithClientFactory replaces platform.NewClient.
func WithClientFactory(factory ClientFactory) Option {
	return func(m *Manager) {
		m.newClient = factory
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager creates a Manager whose clients are built with opts. The default
// Store uses config.DefaultSessionTTL.
func NewManager(opts platform.Options, options ...Option) *Manager {
	m := &Manager{
		options:   opts,
		newClient: platform.NewClient,
		logger:    slog.Default(),
	}
	for _, opt := range options {
		opt(m)
	}
	if m.store == nil {
		m.store = NewStore(config.DefaultSessionTTL)
	}
	if m.options.Logger == nil {
		m.options.Logger = m.logger
	}
	return m
}

// NewManagerFromConfig creates a Manager using the config's client settings
// and session TTL.
func NewManagerFromConfig(cfg *config.Config, logger *slog.Logger, options ...Option) *Manager {
	base := []Option{WithLogger(logger), WithStore(NewStore(cfg.SessionTTL))}
	return NewManager(platform.OptionsFromConfig(cfg, logger), append(base, options...)...)
}

// Store returns the Manager's client cache.
func (m *Manager) Store() *Store {
	return m.store
}

// GetClient returns the cached client for the credential's identity, or
// builds and verifies a new one.
func (m *Manager) GetClient(ctx context.Context, cred model.SessionCredential) (*platform.Client, error) {
	if err := cred.Validate(); err != nil {
		return nil, &Error{Kind: model.ErrorKindInvalidInput, Identity: cred.Identity(), Err: err}
	}
	if client, ok := m.store.Get(cred.Identity()); ok {
		return client, nil
	}
	return m.CreateClient(ctx, cred)
}

// CreateClient builds a client, installs the credential's cookies, and probes
// the current user. Only a client whose probe succeeded is cached and
// returned.
func (m *Manager) CreateClient(ctx context.Context, cred model.SessionCredential) (*platform.Client, error) {
	identity := cred.Identity()
	if err := cred.Validate(); err != nil {
		return nil, &Error{Kind: model.ErrorKindInvalidInput, Identity: identity, Err: err}
	}

	client, err := m.newClient(m.options)
	if err != nil {
		return nil, &Error{Kind: model.ErrorKindInvalidInput, Identity: identity, Err: err}
	}
	if err := client.InstallSession(cred); err != nil {
		return nil, &Error{Kind: model.ErrorKindInvalidInput, Identity: identity, Err: err}
	}

	start := time.Now()
	user, err := client.CurrentUser(ctx)
	if err != nil {
		kind := probeKind(platform.Classify(err))
		m.logger.Warn("session probe failed",
			"account", identity,
			"kind", kind.String(),
			"error", err,
		)
		return nil, &Error{Kind: kind, Identity: identity, Err: err}
	}

	expiresAt := m.store.Put(identity, client)
	m.logger.Debug("session verified",
		"account", identity,
		"username", user.Username,
		"probe_duration", time.Since(start),
		"expires_at", expiresAt,
	)
	return client, nil
}

// Invalidate drops the cached client for identity so the next GetClient
// probes again.
func (m *Manager) Invalidate(identity string) {
	if m.store.Evict(identity) {
		m.logger.Debug("session invalidated", "account", identity)
	}
}

// GetClientFromBlob decrypts an encrypted credential blob and returns a
// verified client for it.
func (m *Manager) GetClientFromBlob(ctx context.Context, d Decrypter, blob string) (*platform.Client, error) {
	cred, err := d.Decrypt(blob)
	if err != nil {
		return nil, &Error{Kind: model.ErrorKindDecryptionFailed, Err: err}
	}
	return m.GetClient(ctx, cred)
}

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/EmreGunner/Leda-instagram-dm-tool-sub000/internal/config"
	"github.com/EmreGunner/Leda-instagram-dm-tool-sub000/internal/database"
	ledalog "github.com/EmreGunner/Leda-instagram-dm-tool-sub000/internal/log"
	"github.com/EmreGunner/Leda-instagram-dm-tool-sub000/internal/model"
	"github.com/EmreGunner/Leda-instagram-dm-tool-sub000/internal/report"
	"github.com/EmreGunner/Leda-instagram-dm-tool-sub000/internal/session"
	"github.com/EmreGunner/Leda-instagram-dm-tool-sub000/internal/vault"
)

// errMissingEncryptionKey is returned when a command needs the vault but
// LEDA_ENCRYPTION_KEY is unset.
var errMissingEncryptionKey = fmt.Errorf("%s is not set", config.EncryptionKeyEnv)

// app carries the wiring shared by every command. Commands build one with
// newApp and tests build one directly against a fake platform.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
	out    io.Writer
	writer report.Writer
	secret string

	sessions *session.Manager
}

// newApp loads the configuration for cmd and sets up logging and output.
func newApp(cmd *cobra.Command) (*app, error) {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration error: %w", err)
	}

	logger := ledalog.NewSecureLogger(cmd.ErrOrStderr(), cfg.Verbose)
	slog.SetDefault(logger)

	out := cmd.OutOrStdout()
	return &app{
		cfg:    cfg,
		logger: logger,
		out:    out,
		writer: newWriter(cfg, out),
		secret: config.EncryptionKeyFromEnv(),
	}, nil
}

// buildConfig creates a Config from defaults, the config file and flags.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()

	var err error
	if cfg.Verbose, err = cmd.Flags().GetBool("verbose"); err != nil {
		return nil, err
	}
	if cfg.ConfigFilePath, err = cmd.Flags().GetString("config"); err != nil {
		return nil, err
	}
	if cfg.JSONReport, err = cmd.Flags().GetBool("json"); err != nil {
		return nil, err
	}
	if cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown"); err != nil {
		return nil, err
	}

	// An explicitly requested file must exist; otherwise a missing file
	// means defaults.
	configPath := config.FindConfigFile(cfg.ConfigFilePath)
	switch {
	case configPath != "":
		file, err := config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		file.Apply(cfg)
	case cfg.ConfigFilePath != "":
		return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, cfg.ConfigFilePath)
	}

	return cfg, nil
}

// newWriter picks the report writer for the configured output format.
func newWriter(cfg *config.Config, out io.Writer) report.Writer {
	switch {
	case cfg.JSONReport:
		return report.NewEnvelopeJSONWriter(out, getVersion(), report.WithPrettyPrint())
	case cfg.MarkdownReport:
		return report.NewMarkdownWriter(out)
	default:
		return report.NewTextWriter(out, report.WithVerbose(cfg.Verbose))
	}
}

// openDB opens the account database in the configured data directory.
func (a *app) openDB() (*database.AccountDB, error) {
	db, err := database.Open(a.cfg.DBDir, database.DefaultOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to open account database: %w", err)
	}
	a.logger.Debug("account database opened", "path", db.Path())
	return db, nil
}

// vault returns the credential vault for the configured secret.
func (a *app) vault() (*vault.Vault, error) {
	if a.secret == "" {
		return nil, errMissingEncryptionKey
	}
	return vault.New(a.secret, vault.WithLogger(a.logger)), nil
}

// manager returns the session manager, creating it on first use.
func (a *app) manager() *session.Manager {
	if a.sessions == nil {
		a.sessions = session.NewManagerFromConfig(a.cfg, a.logger)
	}
	return a.sessions
}

// credential loads and decrypts the stored credential for account.
func (a *app) credential(ctx context.Context, account string) (model.SessionCredential, error) {
	blob, err := a.blob(ctx, account)
	if err != nil {
		return model.SessionCredential{}, err
	}

	v, err := a.vault()
	if err != nil {
		return model.SessionCredential{}, err
	}
	cred, err := v.Decrypt(blob)
	if err != nil {
		return model.SessionCredential{}, fmt.Errorf("account %s: %w", account, err)
	}
	return cred, nil
}

// blob returns the stored encrypted blob for account.
func (a *app) blob(ctx context.Context, account string) (string, error) {
	db, err := a.openDB()
	if err != nil {
		return "", err
	}
	defer db.Close()

	stored, err := db.Get(ctx, account)
	if err != nil {
		if errors.Is(err, database.ErrAccountNotFound) {
			return "", fmt.Errorf("%w (add it with 'leda account add %s')", err, account)
		}
		return "", err
	}
	return stored.Blob, nil
}

// describe turns an engine error into a message for the terminal.
func describe(err error) error {
	var se *session.Error
	if errors.As(err, &se) {
		switch se.Kind {
		case model.ErrorKindCheckpointRequired:
			return fmt.Errorf("session for %s needs a checkpoint: complete the challenge in a browser and capture fresh cookies: %w", se.Identity, err)
		case model.ErrorKindLoginRequired:
			return fmt.Errorf("session for %s was rejected: capture fresh cookies and run 'leda account add' again: %w", se.Identity, err)
		}
	}
	return err
}

// exitError is returned by commands whose result was already written but
// that must still exit non-zero.
type exitError struct {
	kind model.ErrorKind
}

func (e *exitError) Error() string {
	return "failed: " + e.kind.String()
}

// commandContext returns a context cancelled on interrupt or SIGTERM.
func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

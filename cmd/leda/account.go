package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/EmreGunner/Leda-instagram-dm-tool-sub000/internal/model"
	"github.com/EmreGunner/Leda-instagram-dm-tool-sub000/internal/report"
)

// NewAccountCmd creates the account command group.
func NewAccountCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Manage stored session credentials",
		Long: `Account stores browser session cookies encrypted with LEDA_ENCRYPTION_KEY.

Copy the sessionid, csrftoken and ds_user_id cookies from a logged-in
browser. The plaintext cookies are never written to disk.`,
	}

	cmd.AddCommand(newAccountAddCmd())
	cmd.AddCommand(newAccountListCmd())
	cmd.AddCommand(newAccountRemoveCmd())
	cmd.AddCommand(newAccountVerifyCmd())

	return cmd
}

func newAccountAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add [name]",
		Short: "Encrypt and store a session credential",
		Long: `Add encrypts a session credential and stores it under name.
The name defaults to the ds_user_id value.

Examples:
  # Store a session under the name "main"
  leda account add main --session-id '1001%3Aabc%3A4' --csrf-token xyz --user-id 1001

  # Probe the session before storing it
  leda account add main --session-id ... --csrf-token ... --user-id 1001 --verify`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}

			cred, err := credentialFromFlags(cmd)
			if err != nil {
				return err
			}
			name := cred.DeviceUserID
			if len(args) == 1 {
				name = args[0]
			}
			verify, err := cmd.Flags().GetBool("verify")
			if err != nil {
				return err
			}

			ctx, cancel := commandContext(cmd)
			defer cancel()
			return runAccountAdd(ctx, a, name, cred, verify)
		},
	}

	cmd.Flags().String("session-id", "", "Value of the sessionid cookie (required)")
	cmd.Flags().String("csrf-token", "", "Value of the csrftoken cookie (required)")
	cmd.Flags().String("user-id", "", "Value of the ds_user_id cookie (required)")
	cmd.Flags().String("device-id", "", "Value of the ig_did cookie")
	cmd.Flags().String("mid", "", "Value of the mid cookie")
	cmd.Flags().String("region", "", "Value of the rur cookie")
	cmd.Flags().Bool("verify", false, "Probe the session before storing it")
	for _, name := range []string{"session-id", "csrf-token", "user-id"} {
		_ = cmd.MarkFlagRequired(name) //nolint:errcheck // flag is defined above
	}

	return cmd
}

// credentialFromFlags builds a credential from the account add flags.
func credentialFromFlags(cmd *cobra.Command) (model.SessionCredential, error) {
	values := make(map[string]string, 6)
	for _, name := range []string{"session-id", "csrf-token", "user-id", "device-id", "mid", "region"} {
		v, err := cmd.Flags().GetString(name)
		if err != nil {
			return model.SessionCredential{}, err
		}
		values[name] = strings.TrimSpace(v)
	}

	return model.SessionCredential{
		SessionID:    values["session-id"],
		CSRFToken:    values["csrf-token"],
		DeviceUserID: values["user-id"],
		DeviceID:     values["device-id"],
		MID:          values["mid"],
		RegionToken:  values["region"],
	}, nil
}

// runAccountAdd encrypts cred and stores it under name.
func runAccountAdd(ctx context.Context, a *app, name string, cred model.SessionCredential, verify bool) error {
	if err := cred.Validate(); err != nil {
		return err
	}

	v, err := a.vault()
	if err != nil {
		return err
	}

	if verify {
		if _, err := a.manager().CreateClient(ctx, cred); err != nil {
			return describe(err)
		}
	}

	blob, err := v.Encrypt(cred)
	if err != nil {
		return fmt.Errorf("failed to encrypt credential: %w", err)
	}

	db, err := a.openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.Save(ctx, name, blob); err != nil {
		return err
	}

	a.logger.Info("account stored", "account", name, "user_id", cred.DeviceUserID)
	fmt.Fprintf(a.out, "Stored account %s\n", name)
	return nil
}

func newAccountListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			return runAccountList(cmd.Context(), a)
		},
	}
}

// runAccountList writes the stored account names without their blobs.
func runAccountList(ctx context.Context, a *app) error {
	db, err := a.openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	stored, err := db.List(ctx)
	if err != nil {
		return err
	}

	accounts := make([]report.Account, len(stored))
	for i, s := range stored {
		accounts[i] = report.Account{Identity: s.Identity, CreatedAt: s.CreatedAt, UpdatedAt: s.UpdatedAt}
	}
	_, err = a.writer.WriteAccounts(accounts)
	return err
}

func newAccountRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "remove <name>",
		Aliases: []string{"rm"},
		Short:   "Delete a stored account",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			return runAccountRemove(cmd.Context(), a, args[0])
		},
	}
}

func runAccountRemove(ctx context.Context, a *app, name string) error {
	db, err := a.openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.Delete(ctx, name); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Removed account %s\n", name)
	return nil
}

func newAccountVerifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify <name>",
		Short: "Check that a stored session is still accepted",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}

			ctx, cancel := commandContext(cmd)
			defer cancel()
			return runAccountVerify(ctx, a, args[0])
		},
	}
}

// runAccountVerify decrypts the stored blob and probes the session.
func runAccountVerify(ctx context.Context, a *app, name string) error {
	blob, err := a.blob(ctx, name)
	if err != nil {
		return err
	}
	v, err := a.vault()
	if err != nil {
		return err
	}

	client, err := a.manager().GetClientFromBlob(ctx, v, blob)
	if err != nil {
		return describe(err)
	}
	fmt.Fprintf(a.out, "Session for account %s is valid (user id %s)\n", name, client.Identity())
	return nil
}

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for leda.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "leda",
		Short: "Cookie-session automation for discovery, messaging and media lookup",
		Long: `leda runs platform automation on top of a browser session you already own.

Session cookies are encrypted with the secret in LEDA_ENCRYPTION_KEY
(at least 32 characters) and stored in a local SQLite database. Every
command takes the name of a stored account and verifies the session
before doing any work.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().StringP("config", "c", "",
		"Configuration file path (default: .leda.yaml in current or home directory)")
	cmd.PersistentFlags().BoolP("json", "j", false,
		"Output JSON (mutually exclusive with --markdown)")
	cmd.PersistentFlags().BoolP("markdown", "m", false,
		"Output Markdown (mutually exclusive with --json)")
	cmd.MarkFlagsMutuallyExclusive("json", "markdown")

	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewAccountCmd())
	cmd.AddCommand(NewFollowersCmd())
	cmd.AddCommand(NewFollowingCmd())
	cmd.AddCommand(NewHashtagCmd())
	cmd.AddCommand(NewSearchCmd())
	cmd.AddCommand(NewSendCmd())
	cmd.AddCommand(NewResolveCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

package main

import (
	"context"
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"github.com/EmreGunner/Leda-instagram-dm-tool-sub000/internal/messaging"
	"github.com/EmreGunner/Leda-instagram-dm-tool-sub000/internal/model"
)

// errNoRecipient is returned when neither --to-handle nor --to-id is given.
var errNoRecipient = errors.New("a recipient is required: use --to-handle or --to-id")

// NewSendCmd creates the send command.
func NewSendCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "send <account> <text...>",
		Short: "Send a direct message",
		Long: `Send delivers one text message to a single recipient.
The attempt is made exactly once; failures are reported, never retried.

Examples:
  leda send main --to-handle alice "Hi Alice, loved your latte art"
  leda send main --to-id 25025320 "Thanks for the follow"`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			handle, err := cmd.Flags().GetString("to-handle")
			if err != nil {
				return err
			}
			id, err := cmd.Flags().GetString("to-id")
			if err != nil {
				return err
			}

			ctx, cancel := commandContext(cmd)
			defer cancel()
			return runSend(ctx, a, args[0], handle, id, strings.Join(args[1:], " "))
		},
	}

	cmd.Flags().String("to-handle", "", "Recipient handle, with or without a leading '@'")
	cmd.Flags().String("to-id", "", "Recipient numeric user id")
	cmd.MarkFlagsMutuallyExclusive("to-handle", "to-id")

	return cmd
}

// runSend sends text from account and writes the result. A failed send is
// written like a successful one and then reported as an exitError.
func runSend(ctx context.Context, a *app, account, handle, id, text string) error {
	if handle == "" && id == "" {
		return errNoRecipient
	}

	cred, err := a.credential(ctx, account)
	if err != nil {
		return err
	}

	gateway := messaging.NewGateway(a.manager(), messaging.WithLogger(a.logger))

	var result model.MessageResult
	if handle != "" {
		result = gateway.SendByHandle(ctx, cred, handle, text)
	} else {
		result = gateway.SendByID(ctx, cred, id, text)
	}

	if _, err := a.writer.WriteMessage(result); err != nil {
		return err
	}
	if !result.Success {
		return &exitError{kind: result.ErrorKind}
	}
	return nil
}

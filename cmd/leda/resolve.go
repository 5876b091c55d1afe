package main

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/EmreGunner/Leda-instagram-dm-tool-sub000/internal/media"
)

// errFileNeedsOneShortcode is returned when --file is combined with an
// account or several shortcodes.
var errFileNeedsOneShortcode = errors.New("--file takes exactly one shortcode and no account")

// NewResolveCmd creates the resolve command.
func NewResolveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolve <account> <shortcode|post-url>...",
		Short: "Resolve post metadata and video URLs",
		Long: `Resolve fetches post pages with the account's session and extracts the
post metadata and, for videos, a playable CDN URL.

Shortcodes are resolved concurrently, bounded by the resolveConcurrency
setting. Full post URLs (/p/, /reel/, /tv/) are accepted in place of a shortcode.

With --file the markup is read from a saved page instead of the network
and no account is needed.

Examples:
  leda resolve main CvIdeo12345 https://www.instagram.com/reel/CxYz123abcd/
  leda resolve --file saved-post.html CvIdeo12345 --json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			file, err := cmd.Flags().GetString("file")
			if err != nil {
				return err
			}

			ctx, cancel := commandContext(cmd)
			defer cancel()

			if file != "" {
				if len(args) != 1 {
					return errFileNeedsOneShortcode
				}
				return runResolveFile(ctx, a, file, args[0])
			}
			if len(args) < 2 {
				return errors.New("an account and at least one shortcode are required")
			}
			return runResolve(ctx, a, args[0], args[1:])
		},
	}

	cmd.Flags().StringP("file", "f", "", "Resolve a saved post page instead of fetching it")

	return cmd
}

// runResolve resolves every shortcode for account and writes the results in
// argument order.
func runResolve(ctx context.Context, a *app, account string, inputs []string) error {
	cred, err := a.credential(ctx, account)
	if err != nil {
		return err
	}

	resolver := media.NewResolverFromConfig(a.cfg, a.manager(), a.logger)

	// Verify the session once so concurrent workers share the cached client
	// instead of each probing it.
	if _, err := a.manager().GetClient(ctx, cred); err != nil {
		return describe(err)
	}

	results := make([]media.Result, len(inputs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.cfg.ResolveConcurrency)
	for i, input := range inputs {
		g.Go(func() error {
			results[i] = resolver.ResolveByShortcode(gctx, cred, shortcodeFrom(input))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	return a.writeMedia(results)
}

// runResolveFile resolves shortcode against markup saved in path.
func runResolveFile(ctx context.Context, a *app, path, input string) error {
	markup, err := os.ReadFile(path) //nolint:gosec // user-selected input file
	if err != nil {
		return fmt.Errorf("failed to read markup: %w", err)
	}

	resolver := media.NewResolverFromConfig(a.cfg, nil, a.logger)
	return a.writeMedia([]media.Result{resolver.ResolveMarkup(ctx, shortcodeFrom(input), markup)})
}

// writeMedia writes results and reports the first failure as an exitError.
func (a *app) writeMedia(results []media.Result) error {
	if _, err := a.writer.WriteMedia(results); err != nil {
		return err
	}
	for _, r := range results {
		if !r.OK() {
			return &exitError{kind: r.Failure.Kind}
		}
	}
	return nil
}

// shortcodeFrom extracts the shortcode from a post URL. Anything that is not
// a post URL is returned trimmed, for the resolver to validate.
func shortcodeFrom(input string) string {
	input = strings.TrimSpace(input)
	u, err := url.Parse(input)
	if err != nil || u.Host == "" {
		return input
	}

	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	for i := 0; i+1 < len(parts); i++ {
		switch parts[i] {
		case "p", "reel", "reels", "tv":
			return parts[i+1]
		}
	}
	return input
}

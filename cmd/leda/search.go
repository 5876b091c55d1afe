package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/EmreGunner/Leda-instagram-dm-tool-sub000/internal/report"
	"github.com/EmreGunner/Leda-instagram-dm-tool-sub000/internal/search"
)

// NewSearchCmd creates the search command.
func NewSearchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <account> <keyword>",
		Short: "Find profiles by keyword",
		Long: `Search finds profiles matching a keyword.

Sources:
  posts  authors of posts under the keyword as a hashtag
  bio    accounts whose biography contains the keyword (case-insensitive)
  both   posts first, then bio matches, each asked for half of the limit

Examples:
  leda search main "specialty coffee" --source posts
  leda search main barista --source bio --limit 20`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			source, err := cmd.Flags().GetString("source")
			if err != nil {
				return err
			}
			limit, err := cmd.Flags().GetInt("limit")
			if err != nil {
				return err
			}

			ctx, cancel := commandContext(cmd)
			defer cancel()
			return runSearch(ctx, a, args[0], args[1], source, limit)
		},
	}

	cmd.Flags().StringP("source", "s", string(search.SourceBoth), "Match source: posts, bio or both")
	cmd.Flags().IntP("limit", "l", defaultLimit, "Maximum number of profiles to return")

	return cmd
}

// runSearch runs a keyword search for account and writes the profiles.
func runSearch(ctx context.Context, a *app, account, keyword, sourceName string, limit int) error {
	source, err := search.ParseSource(sourceName)
	if err != nil {
		return err
	}

	cred, err := a.credential(ctx, account)
	if err != nil {
		return err
	}

	engine := search.NewEngine(a.manager(), a.crawler(),
		search.WithProfileDelay(a.cfg.ProfileDelay),
		search.WithLogger(a.logger),
	)

	profiles, err := engine.SearchByKeyword(ctx, cred, keyword, source, limit)
	if err != nil && len(profiles) == 0 {
		return describe(err)
	}

	title := fmt.Sprintf("%s matches for %q", source, keyword)
	if _, werr := a.writer.WriteProfiles(report.Profiles{Title: title, Profiles: profiles}); werr != nil {
		return werr
	}
	return err
}

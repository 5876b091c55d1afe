package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/EmreGunner/Leda-instagram-dm-tool-sub000/internal/discovery"
	"github.com/EmreGunner/Leda-instagram-dm-tool-sub000/internal/model"
	"github.com/EmreGunner/Leda-instagram-dm-tool-sub000/internal/report"
)

// defaultLimit is the default number of profiles a crawl collects.
const defaultLimit = 50

// feed names a crawl the discovery commands can run.
type feed int

const (
	feedFollowers feed = iota
	feedFollowing
	feedHashtag
)

// NewFollowersCmd creates the followers command.
func NewFollowersCmd() *cobra.Command {
	return newCrawlCmd(feedFollowers, "followers <account> <user-id>",
		"List followers of a user",
		`Followers pages through the followers of a numeric user id.

Examples:
  leda followers main 25025320 --limit 200`)
}

// NewFollowingCmd creates the following command.
func NewFollowingCmd() *cobra.Command {
	return newCrawlCmd(feedFollowing, "following <account> <user-id>",
		"List accounts a user follows",
		`Following pages through the accounts a numeric user id follows.

Examples:
  leda following main 25025320 --limit 200`)
}

// NewHashtagCmd creates the hashtag command.
func NewHashtagCmd() *cobra.Command {
	return newCrawlCmd(feedHashtag, "hashtag <account> <tag>",
		"List authors of posts under a hashtag",
		`Hashtag pages through recent posts under a tag and returns each author
once, in feed order. A leading '#' is ignored.

Examples:
  leda hashtag main coffee --limit 100
  leda hashtag main '#latteart' --json`)
}

func newCrawlCmd(f feed, use, short, long string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Long:  long,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			limit, err := cmd.Flags().GetInt("limit")
			if err != nil {
				return err
			}

			ctx, cancel := commandContext(cmd)
			defer cancel()
			return runCrawl(ctx, a, f, args[0], args[1], limit)
		},
	}

	cmd.Flags().IntP("limit", "l", defaultLimit, "Maximum number of profiles to collect")

	return cmd
}

// crawler builds a discovery crawler paced by the configured page delay.
func (a *app) crawler() *discovery.Crawler {
	return discovery.NewCrawler(a.manager(),
		discovery.WithPageDelay(a.cfg.PageDelay),
		discovery.WithLogger(a.logger),
		discovery.WithStatsHook(func(name string, s discovery.Stats) {
			if s.Truncated {
				a.logger.Warn("crawl ended early, results are partial",
					"feed", name,
					"pages", s.Pages,
					"collected", s.Collected,
				)
			}
		}),
	)
}

// runCrawl runs one discovery feed for account and writes the profiles.
func runCrawl(ctx context.Context, a *app, f feed, account, target string, limit int) error {
	cred, err := a.credential(ctx, account)
	if err != nil {
		return err
	}

	c := a.crawler()

	var (
		profiles []model.DiscoveredProfile
		title    string
	)
	switch f {
	case feedFollowers:
		title = "followers of " + target
		profiles, err = c.GetFollowers(ctx, cred, target, limit)
	case feedFollowing:
		title = "following of " + target
		profiles, err = c.GetFollowing(ctx, cred, target, limit)
	case feedHashtag:
		title = "participants of #" + discovery.NormalizeTag(target)
		profiles, err = c.GetHashtagParticipants(ctx, cred, target, limit)
	default:
		return fmt.Errorf("unknown feed %d", f)
	}
	if err != nil && len(profiles) == 0 {
		return describe(err)
	}

	if _, werr := a.writer.WriteProfiles(report.Profiles{Title: title, Profiles: profiles}); werr != nil {
		return werr
	}
	return err
}

package discovery

import (
	"context"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/EmreGunner/Leda-instagram-dm-tool-sub000/internal/config"
	"github.com/EmreGunner/Leda-instagram-dm-tool-sub000/internal/model"
	"github.com/EmreGunner/Leda-instagram-dm-tool-sub000/internal/platform"
)

var (
	userIDPattern = regexp.MustCompile(`^\d+$`)
	tagPattern    = regexp.MustCompile(`^[\p{L}\p{N}_]+$`)
)

// Sessions provides verified clients. *session.Manager satisfies it.
type Sessions interface {
	GetClient(ctx context.Context, cred model.SessionCredential) (*platform.Client, error)
}

// Sleeper pauses for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// Sleep is the default Sleeper.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Stats describes one finished crawl.
type Stats struct {
	// Pages is the number of pages fetched successfully.
	Pages int

	// RawItems is the number of feed entries seen, duplicates included.
	RawItems int

	// Duplicates is the number of entries skipped because their author was
	// already collected.
	Duplicates int

	// Collected is the number of profiles returned.
	Collected int

	// Truncated is set when a page failed and the crawl ended early.
	Truncated bool
}

// Crawler pages through followers, following, and hashtag feeds.
type Crawler struct {
	sessions  Sessions
	pageDelay time.Duration
	sleep     Sleeper
	onDone    func(feed string, s Stats)
	logger    *slog.Logger
}

// Option configures a Crawler.
type Option func(*Crawler)

// WithPageDelay sets the pause between page fetches.
func WithPageDelay(d time.Duration) Option {
	return func(c *Crawler) {
		c.pageDelay = d
	}
}

// WithSleeper replaces the function used to pause between pages.
func WithSleeper(s Sleeper) Option {
	return func(c *Crawler) {
		c.sleep = s
	}
}

// WithStatsHook registers fn to receive the stats of every finished crawl.
func WithStatsHook(fn func(feed string, s Stats)) Option {
	return func(c *Crawler) {
		c.onDone = fn
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Crawler) {
		c.logger = logger
	}
}

// NewCrawler creates a Crawler that acquires clients from sessions.
func NewCrawler(sessions Sessions, opts ...Option) *Crawler {
	c := &Crawler{
		sessions:  sessions,
		pageDelay: config.DefaultPageDelay,
		sleep:     Sleep,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetFollowers returns up to limit followers of the account userID.
func (c *Crawler) GetFollowers(ctx context.Context, cred model.SessionCredential, userID string, limit int) ([]model.DiscoveredProfile, error) {
	return c.friendships(ctx, cred, userID, limit, model.ProvenanceFollower)
}

// GetFollowing returns up to limit accounts followed by userID.
func (c *Crawler) GetFollowing(ctx context.Context, cred model.SessionCredential, userID string, limit int) ([]model.DiscoveredProfile, error) {
	return c.friendships(ctx, cred, userID, limit, model.ProvenanceFollowing)
}

func (c *Crawler) friendships(ctx context.Context, cred model.SessionCredential, userID string, limit int, provenance model.Provenance) ([]model.DiscoveredProfile, error) {
	if limit <= 0 {
		return []model.DiscoveredProfile{}, nil
	}
	if !userIDPattern.MatchString(userID) {
		return nil, model.NewFailure(model.ErrorKindInvalidInput, "invalid user id: "+userID)
	}

	client, err := c.sessions.GetClient(ctx, cred)
	if err != nil {
		return nil, err
	}

	list := client.Followers
	if provenance == model.ProvenanceFollowing {
		list = client.Following
	}
	fetch := func(ctx context.Context, cursor string) (page, error) {
		resp, err := list(ctx, userID, cursor)
		if err != nil {
			return page{}, err
		}
		p := page{profiles: make([]model.DiscoveredProfile, 0, len(resp.Users))}
		for _, u := range resp.Users {
			p.profiles = append(p.profiles, u.Profile(provenance, ""))
		}
		if resp.HasMore() {
			p.next = resp.NextMaxID
		}
		return p, nil
	}
	return c.crawl(ctx, string(provenance), userID, limit, fetch)
}

// GetHashtagParticipants returns up to limit distinct authors of recent posts
// under tag, in feed order. A leading "#" is ignored.
func (c *Crawler) GetHashtagParticipants(ctx context.Context, cred model.SessionCredential, tag string, limit int) ([]model.DiscoveredProfile, error) {
	if limit <= 0 {
		return []model.DiscoveredProfile{}, nil
	}
	tag = NormalizeTag(tag)
	if !tagPattern.MatchString(tag) {
		return nil, model.NewFailure(model.ErrorKindInvalidInput, "invalid hashtag: "+tag)
	}

	client, err := c.sessions.GetClient(ctx, cred)
	if err != nil {
		return nil, err
	}

	fetch := func(ctx context.Context, cursor string) (page, error) {
		resp, err := client.HashtagFeed(ctx, tag, cursor)
		if err != nil {
			return page{}, err
		}
		p := page{profiles: make([]model.DiscoveredProfile, 0, len(resp.Items))}
		for _, item := range resp.Items {
			p.profiles = append(p.profiles, item.User.Profile(model.ProvenanceHashtagPost, tag))
		}
		if resp.HasMore() {
			p.next = resp.NextMaxID
		}
		return p, nil
	}
	return c.crawl(ctx, "hashtag", tag, limit, fetch)
}

// NormalizeTag strips surrounding space and a leading "#".
func NormalizeTag(tag string) string {
	return strings.TrimPrefix(strings.TrimSpace(tag), "#")
}

// page is one normalized feed page. An empty next cursor ends the feed.
type page struct {
	profiles []model.DiscoveredProfile
	next     string
}

type fetchFunc func(ctx context.Context, cursor string) (page, error)

// crawl drives fetch until limit profiles are collected, the feed ends, or a
// page fails. Only context cancellation is returned as an error, alongside
// the profiles collected so far.
func (c *Crawler) crawl(ctx context.Context, feed, target string, limit int, fetch fetchFunc) ([]model.DiscoveredProfile, error) {
	var stats Stats
	profiles := make([]model.DiscoveredProfile, 0, min(limit, 64))
	seen := make(map[string]struct{})

	defer func() {
		stats.Collected = len(profiles)
		c.logger.Debug("crawl finished",
			"feed", feed,
			"target", target,
			"pages", stats.Pages,
			"raw_items", stats.RawItems,
			"duplicates", stats.Duplicates,
			"collected", stats.Collected,
			"truncated", stats.Truncated,
		)
		if c.onDone != nil {
			c.onDone(feed, stats)
		}
	}()

	cursor := ""
	for {
		if stats.Pages > 0 {
			if err := c.sleep(ctx, c.pageDelay); err != nil {
				return profiles, err
			}
		}

		p, err := fetch(ctx, cursor)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return profiles, ctxErr
			}
			stats.Truncated = true
			c.logger.Warn("page fetch failed, ending crawl",
				"feed", feed,
				"target", target,
				"page", stats.Pages+1,
				"kind", platform.Classify(err).String(),
				"error", err,
			)
			return profiles, nil
		}
		stats.Pages++

		for _, profile := range p.profiles {
			stats.RawItems++
			if profile.PlatformID == "" {
				continue
			}
			if _, dup := seen[profile.PlatformID]; dup {
				stats.Duplicates++
				continue
			}
			seen[profile.PlatformID] = struct{}{}
			profiles = append(profiles, profile)
			if len(profiles) == limit {
				return profiles, nil
			}
		}

		if p.next == "" {
			return profiles, nil
		}
		cursor = p.next
	}
}

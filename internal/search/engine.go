package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/text/cases"

	"github.com/EmreGunner/Leda-instagram-dm-tool-sub000/internal/config"
	"github.com/EmreGunner/Leda-instagram-dm-tool-sub000/internal/discovery"
	"github.com/EmreGunner/Leda-instagram-dm-tool-sub000/internal/model"
	"github.com/EmreGunner/Leda-instagram-dm-tool-sub000/internal/platform"
)

// Source selects where keyword matches come from.
type Source string

const (
	// SourcePosts matches authors of posts under the keyword as a hashtag.
	SourcePosts Source = "posts"

	// SourceBio matches accounts whose biography contains the keyword.
	SourceBio Source = "bio"

	// SourceBoth merges posts and bio matches, posts first.
	SourceBoth Source = "both"
)

// ParseSource validates a source name.
func ParseSource(s string) (Source, error) {
	switch src := Source(strings.ToLower(strings.TrimSpace(s))); src {
	case SourcePosts, SourceBio, SourceBoth:
		return src, nil
	default:
		return "", model.NewFailure(model.ErrorKindInvalidInput, fmt.Sprintf("unknown source %q: expected posts, bio, or both", s))
	}
}

// Sessions provides verified clients. *session.Manager satisfies it.
type Sessions interface {
	GetClient(ctx context.Context, cred model.SessionCredential) (*platform.Client, error)
}

// HashtagCrawler returns hashtag participants. *discovery.Crawler satisfies it.
type HashtagCrawler interface {
	GetHashtagParticipants(ctx context.Context, cred model.SessionCredential, tag string, limit int) ([]model.DiscoveredProfile, error)
}

// Engine runs keyword searches.
type Engine struct {
	sessions     Sessions
	crawler      HashtagCrawler
	profileDelay time.Duration
	sleep        discovery.Sleeper
	logger       *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithProfileDelay sets the pause between per-candidate profile fetches.
func WithProfileDelay(d time.Duration) Option {
	return func(e *Engine) {
		e.profileDelay = d
	}
}

// WithSleeper replaces the function used to pause between profile fetches.
func WithSleeper(s discovery.Sleeper) Option {
	return func(e *Engine) {
		e.sleep = s
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// NewEngine creates an Engine.
func NewEngine(sessions Sessions, crawler HashtagCrawler, opts ...Option) *Engine {
	e := &Engine{
		sessions:     sessions,
		crawler:      crawler,
		profileDelay: config.DefaultProfileDelay,
		sleep:        discovery.Sleep,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// SearchByKeyword returns up to limit profiles matching keyword from source.
// With SourceBoth each half is asked for ceil(limit/2) profiles and the first
// occurrence of a platform id wins, so a hashtag_post match is never replaced
// by a bio_match of the same account. A keyword that is not a valid hashtag
// contributes no posts to SourceBoth instead of failing the search.
func (e *Engine) SearchByKeyword(ctx context.Context, cred model.SessionCredential, keyword string, source Source, limit int) ([]model.DiscoveredProfile, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return nil, model.NewFailure(model.ErrorKindInvalidInput, "keyword is empty")
	}
	if _, err := ParseSource(string(source)); err != nil {
		return nil, err
	}
	if limit <= 0 {
		return []model.DiscoveredProfile{}, nil
	}

	switch source {
	case SourcePosts:
		return e.searchPosts(ctx, cred, keyword, limit)
	case SourceBio:
		return e.searchBio(ctx, cred, keyword, limit)
	default:
		half := (limit + 1) / 2
		posts, err := e.searchPosts(ctx, cred, keyword, half)
		var failure *model.Failure
		if errors.As(err, &failure) && failure.Kind == model.ErrorKindInvalidInput {
			// Keywords like "node.js" are valid bio queries but not hashtags.
			e.logger.Debug("keyword is not a hashtag, searching bios only",
				"keyword", keyword,
				"detail", failure.Detail,
			)
			posts, err = nil, nil
		}
		if err != nil {
			return nil, err
		}
		bio, err := e.searchBio(ctx, cred, keyword, half)
		if err != nil {
			return nil, err
		}
		return Merge(limit, posts, bio), nil
	}
}

func (e *Engine) searchPosts(ctx context.Context, cred model.SessionCredential, keyword string, limit int) ([]model.DiscoveredProfile, error) {
	tag := strings.Join(strings.Fields(discovery.NormalizeTag(keyword)), "")
	return e.crawler.GetHashtagParticipants(ctx, cred, tag, limit)
}

// searchBio runs a user search and keeps candidates whose full biography
// contains keyword, compared with Unicode case folding.
func (e *Engine) searchBio(ctx context.Context, cred model.SessionCredential, keyword string, limit int) ([]model.DiscoveredProfile, error) {
	client, err := e.sessions.GetClient(ctx, cred)
	if err != nil {
		return nil, err
	}

	candidates, err := client.SearchUsers(ctx, keyword)
	if err != nil {
		e.logger.Warn("user search failed",
			"keyword", keyword,
			"kind", platform.Classify(err).String(),
			"error", err,
		)
		return []model.DiscoveredProfile{}, nil
	}

	fold := cases.Fold()
	needle := fold.String(keyword)
	matches := make([]model.DiscoveredProfile, 0, min(limit, len(candidates)))
	seen := make(map[string]struct{})
	fetched := 0

	for _, candidate := range candidates {
		if len(matches) == limit {
			break
		}
		id := candidate.PK.String()
		if _, dup := seen[id]; dup || id == "" {
			continue
		}
		seen[id] = struct{}{}

		if fetched > 0 {
			if err := e.sleep(ctx, e.profileDelay); err != nil {
				return matches, err
			}
		}
		fetched++

		user, err := client.UserInfo(ctx, id)
		if err != nil {
			e.logger.Debug("skipping candidate",
				"user_id", id,
				"kind", platform.Classify(err).String(),
				"error", err,
			)
			continue
		}
		if strings.Contains(fold.String(user.Biography), needle) {
			matches = append(matches, user.Profile(model.ProvenanceBioMatch, keyword))
		}
	}
	return matches, nil
}

// Merge concatenates lists, keeping the first profile seen for each platform
// id, and truncates the result to limit.
func Merge(limit int, lists ...[]model.DiscoveredProfile) []model.DiscoveredProfile {
	merged := make([]model.DiscoveredProfile, 0, limit)
	seen := make(map[string]struct{})
	for _, list := range lists {
		for _, p := range list {
			if len(merged) == limit {
				return merged
			}
			if _, dup := seen[p.PlatformID]; dup {
				continue
			}
			seen[p.PlatformID] = struct{}{}
			merged = append(merged, p)
		}
	}
	return merged
}

package media

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"

	"github.com/EmreGunner/Leda-instagram-dm-tool-sub000/internal/config"
	"github.com/EmreGunner/Leda-instagram-dm-tool-sub000/internal/model"
	"github.com/EmreGunner/Leda-instagram-dm-tool-sub000/internal/platform"
	"github.com/EmreGunner/Leda-instagram-dm-tool-sub000/internal/session"
)

// Stages reported in failures that happen before the strategy chain.
const (
	StageValidate = "validate"
	StageSession  = "session"
	StageFetch    = "fetch"
	StageGuard    = "guard"
	StageParse    = "parse"
)

var shortcodePattern = regexp.MustCompile(`^[A-Za-z0-9_-]{5,64}$`)

// Sessions provides verified clients. *session.Manager satisfies it.
type Sessions interface {
	GetClient(ctx context.Context, cred model.SessionCredential) (*platform.Client, error)
}

// Result is the outcome of one resolution: a record and the stage that
// produced it, or a failure.
type Result struct {
	Shortcode string             `json:"shortcode"`
	Record    *model.MediaRecord `json:"record,omitempty"`
	Stage     string             `json:"stage,omitempty"`
	Failure   *model.Failure     `json:"failure,omitempty"`
}

// OK reports whether the resolution produced a record.
func (r Result) OK() bool {
	return r.Record != nil
}

// Err returns the failure as an error, or nil on success.
func (r Result) Err() error {
	if r.Failure == nil {
		return nil
	}
	return r.Failure
}

func failed(shortcode string, kind model.ErrorKind, stage, detail string) Result {
	return Result{
		Shortcode: shortcode,
		Failure:   &model.Failure{Kind: kind, Stage: stage, Detail: detail},
	}
}

// Resolver turns shortcodes into media records.
type Resolver struct {
	sessions      Sessions
	rules         *Rules
	strategies    []Strategy
	minMarkupSize int
	logger        *slog.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithRules replaces the URL rules used by the default strategies and the
// login-page guard.
func WithRules(rules *Rules) Option {
	return func(r *Resolver) {
		r.rules = rules
	}
}

// WithStrategies replaces the strategy chain.
func WithStrategies(strategies ...Strategy) Option {
	return func(r *Resolver) {
		r.strategies = strategies
	}
}

// WithMinMarkupSize sets the size floor, in bytes, below which fetched
// markup is treated as blocked.
func WithMinMarkupSize(n int) Option {
	return func(r *Resolver) {
		r.minMarkupSize = n
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) {
		r.logger = logger
	}
}

// NewResolver creates a Resolver. sessions may be nil when only
// ResolveMarkup is used.
func NewResolver(sessions Sessions, opts ...Option) *Resolver {
	r := &Resolver{
		sessions:      sessions,
		minMarkupSize: config.DefaultMinMarkupSize,
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.rules == nil {
		r.rules = DefaultRules()
	}
	if r.strategies == nil {
		r.strategies = DefaultStrategies(r.rules)
	}
	return r
}

// NewResolverFromConfig creates a Resolver with rules and size floor taken
// from cfg.
func NewResolverFromConfig(cfg *config.Config, sessions Sessions, logger *slog.Logger) *Resolver {
	return NewResolver(sessions,
		WithRules(RulesFromConfig(cfg.Resolver)),
		WithMinMarkupSize(cfg.MinMarkupSize),
		WithLogger(logger),
	)
}

// ResolveByShortcode fetches the post page for shortcode with the session's
// cookies and resolves it. Fetching goes through the client's cookie jar
// first and falls back to a plain request with a hand-built Cookie header.
func (r *Resolver) ResolveByShortcode(ctx context.Context, cred model.SessionCredential, shortcode string) Result {
	if !shortcodePattern.MatchString(shortcode) {
		return failed(shortcode, model.ErrorKindInvalidInput, StageValidate, "invalid shortcode")
	}
	if r.sessions == nil {
		return failed(shortcode, model.ErrorKindUnknown, StageSession, "resolver has no session source")
	}

	client, err := r.sessions.GetClient(ctx, cred)
	if err != nil {
		kind := model.ErrorKindUnknown
		var se *session.Error
		if errors.As(err, &se) {
			kind = se.Kind
		}
		return failed(shortcode, kind, StageSession, err.Error())
	}

	postURL := client.PostURL(shortcode)
	markup, err := client.FetchMarkup(ctx, postURL)
	if err != nil {
		r.logger.Warn("post fetch failed, retrying without cookie jar",
			"shortcode", shortcode,
			"error", err,
		)
		markup, err = client.RawFetch(ctx, postURL, cred.CookieHeader())
		if err != nil {
			return failed(shortcode, platform.Classify(err), StageFetch, err.Error())
		}
	}

	return r.ResolveMarkup(ctx, shortcode, markup)
}

// ResolveMarkup resolves already fetched post markup. It applies the
// degenerate-response guard, then runs the strategy chain.
func (r *Resolver) ResolveMarkup(ctx context.Context, shortcode string, markup []byte) Result {
	if !shortcodePattern.MatchString(shortcode) {
		return failed(shortcode, model.ErrorKindInvalidInput, StageValidate, "invalid shortcode")
	}
	if len(markup) < r.minMarkupSize {
		return failed(shortcode, model.ErrorKindBlocked, StageGuard,
			fmt.Sprintf("markup is %d bytes, below the %d byte floor", len(markup), r.minMarkupSize))
	}
	if r.rules.IsLoginPage(string(markup)) {
		return failed(shortcode, model.ErrorKindBlocked, StageGuard, "markup is a login page")
	}

	doc, err := ParseDocument(shortcode, markup)
	if err != nil {
		return failed(shortcode, model.ErrorKindUnknown, StageParse, err.Error())
	}

	var held *Result
	last := ""
	for _, strategy := range r.strategies {
		if err := ctx.Err(); err != nil {
			return failed(shortcode, model.ErrorKindUnknown, last, err.Error())
		}
		last = strategy.Name()

		rec, ok := strategy.Attempt(doc)
		if !ok {
			r.logger.Debug("stage found nothing", "shortcode", shortcode, "stage", last)
			continue
		}
		if rec.Shortcode == "" {
			rec.Shortcode = shortcode
		}
		rec.Normalize()

		if rec.IsVideo && rec.VideoURL == "" {
			// A recognized video post without a usable URL; keep looking.
			if held == nil {
				held = &Result{Shortcode: shortcode, Record: &rec, Stage: last}
			}
			r.logger.Debug("stage recognized video without url", "shortcode", shortcode, "stage", last)
			continue
		}

		r.logger.Debug("media resolved", "shortcode", shortcode, "stage", last, "is_video", rec.IsVideo)
		return Result{Shortcode: shortcode, Record: &rec, Stage: last}
	}

	if held != nil {
		return *held
	}
	return failed(shortcode, model.ErrorKindExtractionExhausted, last, "no stage produced a validated media url")
}

package messaging

import (
	"context"
	"errors"
	"log/slog"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/EmreGunner/Leda-instagram-dm-tool-sub000/internal/model"
	"github.com/EmreGunner/Leda-instagram-dm-tool-sub000/internal/platform"
	"github.com/EmreGunner/Leda-instagram-dm-tool-sub000/internal/session"
)

// MaxTextLength is the longest message, in characters, the platform accepts.
const MaxTextLength = 1000

var (
	userIDPattern = regexp.MustCompile(`^\d+$`)
	handlePattern = regexp.MustCompile(`^@?[A-Za-z0-9._]{1,30}$`)
)

// Sessions provides verified clients. *session.Manager satisfies it.
type Sessions interface {
	GetClient(ctx context.Context, cred model.SessionCredential) (*platform.Client, error)
}

// Gateway sends direct messages.
type Gateway struct {
	sessions Sessions
	logger   *slog.Logger
}

// Option configures a Gateway.
type Option func(*Gateway)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Gateway) {
		g.logger = logger
	}
}

// NewGateway creates a Gateway that acquires clients from sessions.
func NewGateway(sessions Sessions, opts ...Option) *Gateway {
	g := &Gateway{
		sessions: sessions,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// SendByHandle resolves handle to an account and sends text to it.
// A leading "@" is accepted.
func (g *Gateway) SendByHandle(ctx context.Context, cred model.SessionCredential, handle, text string) model.MessageResult {
	if !handlePattern.MatchString(handle) {
		return model.NewMessageFailure(model.ErrorKindInvalidInput, "invalid handle: "+handle)
	}
	if detail, ok := validateText(text); !ok {
		return model.NewMessageFailure(model.ErrorKindInvalidInput, detail)
	}

	client, failure := g.client(ctx, cred)
	if failure != nil {
		return *failure
	}

	user, err := client.UserByUsername(ctx, strings.TrimPrefix(handle, "@"))
	if err != nil {
		return g.fail("resolve recipient", err)
	}
	return g.broadcast(ctx, client, user.PK.String(), text)
}

// SendByID confirms the account exists and sends text to it. userID must be
// all digits; anything else is rejected before a session is acquired.
func (g *Gateway) SendByID(ctx context.Context, cred model.SessionCredential, userID, text string) model.MessageResult {
	if !userIDPattern.MatchString(userID) {
		return model.NewMessageFailure(model.ErrorKindInvalidInput, "invalid user id: "+userID)
	}
	if detail, ok := validateText(text); !ok {
		return model.NewMessageFailure(model.ErrorKindInvalidInput, detail)
	}

	client, failure := g.client(ctx, cred)
	if failure != nil {
		return *failure
	}

	if _, err := client.UserInfo(ctx, userID); err != nil {
		return g.fail("confirm recipient", err)
	}
	return g.broadcast(ctx, client, userID, text)
}

func (g *Gateway) broadcast(ctx context.Context, client *platform.Client, userID, text string) model.MessageResult {
	res, err := client.BroadcastText(ctx, []string{userID}, text)
	if err != nil {
		return g.fail("broadcast", err)
	}
	g.logger.Debug("message sent",
		"account", client.Identity(),
		"thread_id", res.ThreadID,
	)
	return model.MessageResult{Success: true, ThreadID: res.ThreadID, ItemID: res.ItemID}
}

// client acquires a verified client, converting session errors to results.
func (g *Gateway) client(ctx context.Context, cred model.SessionCredential) (*platform.Client, *model.MessageResult) {
	client, err := g.sessions.GetClient(ctx, cred)
	if err == nil {
		return client, nil
	}

	var se *session.Error
	kind := model.ErrorKindUnknown
	if errors.As(err, &se) {
		kind = se.Kind
		if kind == model.ErrorKindLoginRequired {
			kind = model.ErrorKindSessionExpired
		}
	}
	g.logger.Warn("message not sent", "step", "acquire session", "kind", kind.String(), "error", err)
	result := model.NewMessageFailure(kind, err.Error())
	return nil, &result
}

func (g *Gateway) fail(step string, err error) model.MessageResult {
	kind := Classify(err)
	g.logger.Warn("message not sent", "step", step, "kind", kind.String(), "error", err)
	return model.NewMessageFailure(kind, detail(err))
}

// Classify maps a platform error to a message failure kind. Login failures
// during a send mean the cached session has expired.
func Classify(err error) model.ErrorKind {
	kind := platform.Classify(err)
	if kind == model.ErrorKindLoginRequired {
		return model.ErrorKindSessionExpired
	}
	return kind
}

// detail returns the most useful raw text for a failure.
func detail(err error) string {
	var apiErr *platform.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.FeedbackTitle != "":
			return apiErr.Message + ": " + apiErr.FeedbackTitle
		case apiErr.Message != "":
			return apiErr.Message
		case apiErr.Body != "":
			return apiErr.Body
		}
	}
	return err.Error()
}

func validateText(text string) (string, bool) {
	if strings.TrimSpace(text) == "" {
		return "message text is empty", false
	}
	if utf8.RuneCountInString(text) > MaxTextLength {
		return "message text exceeds 1000 characters", false
	}
	return "", true
}

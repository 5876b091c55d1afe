package messaging_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/EmreGunner/Leda-instagram-dm-tool-sub000/internal/messaging"
	"github.com/EmreGunner/Leda-instagram-dm-tool-sub000/internal/model"
	"github.com/EmreGunner/Leda-instagram-dm-tool-sub000/internal/platform/platformtest"
	"github.com/EmreGunner/Leda-instagram-dm-tool-sub000/internal/session"
)

const broadcastPath = "/direct_v2/threads/broadcast/text/"

func newGateway(srv *platformtest.Server) *messaging.Gateway {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	m := session.NewManager(srv.Options(), session.WithLogger(logger))
	return messaging.NewGateway(m, messaging.WithLogger(logger))
}

func okBroadcast() http.Handler {
	return platformtest.JSON(http.StatusOK, map[string]any{
		"status":  "ok",
		"payload": map[string]any{"thread_id": "340282366841710300949128", "item_id": "3099"},
	})
}

func TestSendByID(t *testing.T) {
	t.Parallel()

	t.Run("rejects non-numeric ids without network calls", func(t *testing.T) {
		t.Parallel()

		for _, id := range []string{"", "abc", "12a", " 12", "-5", "1.0", "@user"} {
			srv := platformtest.NewServer(t)
			g := newGateway(srv)

			res := g.SendByID(context.Background(), platformtest.Credential(), id, "hi")
			if res.Success || res.ErrorKind != model.ErrorKindInvalidInput {
				t.Errorf("id %q: expected invalid-input, got %+v", id, res)
			}
			if srv.TotalHits() != 0 {
				t.Errorf("id %q: expected zero transport calls, got %d", id, srv.TotalHits())
			}
		}
	})

	t.Run("confirms recipient then broadcasts", func(t *testing.T) {
		t.Parallel()

		srv := platformtest.NewServer(t)
		srv.Handle("/users/42/info/", platformtest.JSON(http.StatusOK, map[string]any{
			"user": map[string]any{"pk": 42, "username": "target"},
		}))
		srv.Handle(broadcastPath, okBroadcast())
		g := newGateway(srv)

		res := g.SendByID(context.Background(), platformtest.Credential(), "42", "hello there")
		want := model.MessageResult{Success: true, ThreadID: "340282366841710300949128", ItemID: "3099"}
		if diff := cmp.Diff(want, res); diff != "" {
			t.Errorf("result mismatch (-want +got):\n%s", diff)
		}
		if srv.Hits(broadcastPath) != 1 {
			t.Errorf("expected one broadcast, got %d", srv.Hits(broadcastPath))
		}
	})

	t.Run("unknown id is recipient-not-found", func(t *testing.T) {
		t.Parallel()

		srv := platformtest.NewServer(t)
		g := newGateway(srv)

		res := g.SendByID(context.Background(), platformtest.Credential(), "999", "hello")
		if res.ErrorKind != model.ErrorKindRecipientNotFound {
			t.Errorf("ErrorKind = %q, expected recipient-not-found", res.ErrorKind)
		}
		if srv.Hits(broadcastPath) != 0 {
			t.Error("expected no broadcast for a missing recipient")
		}
	})
}

func TestSendByHandle(t *testing.T) {
	t.Parallel()

	t.Run("nonexistent handle", func(t *testing.T) {
		t.Parallel()

		srv := platformtest.NewServer(t)
		srv.Handle("/users/ghost.user/usernameinfo/", platformtest.Fail(http.StatusNotFound, "User not found"))
		g := newGateway(srv)

		res := g.SendByHandle(context.Background(), platformtest.Credential(), "ghost.user", "hello")
		if res.Success {
			t.Fatal("expected failure")
		}
		if res.ErrorKind != model.ErrorKindRecipientNotFound {
			t.Errorf("ErrorKind = %q, expected recipient-not-found", res.ErrorKind)
		}
	})

	t.Run("at-prefixed handle resolves", func(t *testing.T) {
		t.Parallel()

		srv := platformtest.NewServer(t)
		srv.Handle("/users/alice/usernameinfo/", platformtest.JSON(http.StatusOK, map[string]any{
			"user": map[string]any{"pk": "77", "username": "alice"},
		}))
		var recipients string
		srv.HandleFunc(broadcastPath, func(w http.ResponseWriter, r *http.Request) {
			_ = r.ParseForm() //nolint:errcheck // test
			recipients = r.PostForm.Get("recipient_users")
			okBroadcast().ServeHTTP(w, r)
		})
		g := newGateway(srv)

		res := g.SendByHandle(context.Background(), platformtest.Credential(), "@alice", "hello")
		if !res.Success {
			t.Fatalf("expected success, got %+v", res)
		}
		if recipients != `[["77"]]` {
			t.Errorf("recipient_users = %q", recipients)
		}
	})

	t.Run("input validation", func(t *testing.T) {
		t.Parallel()

		tests := []struct {
			name   string
			handle string
			text   string
		}{
			{name: "empty handle", handle: "", text: "hi"},
			{name: "handle with space", handle: "a b", text: "hi"},
			{name: "handle too long", handle: strings.Repeat("a", 31), text: "hi"},
			{name: "blank text", handle: "alice", text: "   "},
			{name: "text too long", handle: "alice", text: strings.Repeat("é", messaging.MaxTextLength+1)},
		}

		for _, tt := range tests {
			srv := platformtest.NewServer(t)
			g := newGateway(srv)

			res := g.SendByHandle(context.Background(), platformtest.Credential(), tt.handle, tt.text)
			if res.ErrorKind != model.ErrorKindInvalidInput {
				t.Errorf("%s: ErrorKind = %q, expected invalid-input", tt.name, res.ErrorKind)
			}
			if srv.TotalHits() != 0 {
				t.Errorf("%s: expected zero transport calls, got %d", tt.name, srv.TotalHits())
			}
		}
	})
}

func TestSendFailureClassification(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		probe     http.Handler
		broadcast http.Handler
		want      model.ErrorKind
		detail    string
	}{
		{
			name:  "checkpoint on probe",
			probe: platformtest.Fail(http.StatusBadRequest, "challenge_required"),
			want:  model.ErrorKindCheckpointRequired,
		},
		{
			name:  "expired session on probe",
			probe: platformtest.Fail(http.StatusForbidden, "login_required"),
			want:  model.ErrorKindSessionExpired,
		},
		{
			name:      "expired session on send",
			broadcast: platformtest.Fail(http.StatusForbidden, "login_required"),
			want:      model.ErrorKindSessionExpired,
		},
		{
			name: "spam block on send",
			broadcast: platformtest.JSON(http.StatusBadRequest, map[string]any{
				"status":         "fail",
				"message":        "feedback_required",
				"spam":           true,
				"feedback_title": "Try Again Later",
			}),
			want:   model.ErrorKindRateLimited,
			detail: "feedback_required: Try Again Later",
		},
		{
			name:      "unrecognized failure keeps raw text",
			broadcast: platformtest.Fail(http.StatusBadRequest, "thread is archived"),
			want:      model.ErrorKindUnknown,
			detail:    "thread is archived",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			srv := platformtest.NewServer(t)
			if tt.probe != nil {
				srv.Handle("/accounts/current_user/", tt.probe)
			}
			srv.Handle("/users/42/info/", platformtest.JSON(http.StatusOK, map[string]any{
				"user": map[string]any{"pk": 42},
			}))
			if tt.broadcast != nil {
				srv.Handle(broadcastPath, tt.broadcast)
			} else {
				srv.Handle(broadcastPath, okBroadcast())
			}
			g := newGateway(srv)

			res := g.SendByID(context.Background(), platformtest.Credential(), "42", "hello")
			if res.Success {
				t.Fatal("expected failure")
			}
			if res.ErrorKind != tt.want {
				t.Errorf("ErrorKind = %q, expected %q", res.ErrorKind, tt.want)
			}
			if tt.detail != "" && res.Detail != tt.detail {
				t.Errorf("Detail = %q, expected %q", res.Detail, tt.detail)
			}
		})
	}
}

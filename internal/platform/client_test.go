package platform_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/EmreGunner/Leda-instagram-dm-tool-sub000/internal/model"
	"github.com/EmreGunner/Leda-instagram-dm-tool-sub000/internal/platform"
	"github.com/EmreGunner/Leda-instagram-dm-tool-sub000/internal/platform/platformtest"
)

func newSessionClient(t *testing.T, srv *platformtest.Server) *platform.Client {
	t.Helper()

	client, err := platform.NewClient(srv.Options())
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	if err := client.InstallSession(platformtest.Credential()); err != nil {
		t.Fatalf("InstallSession() error = %v", err)
	}
	return client
}

func TestNewClient(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		proxy   string
		wantErr bool
	}{
		{name: "no proxy", proxy: ""},
		{name: "valid proxy", proxy: "127.0.0.1:1080"},
		{name: "hostname proxy", proxy: "localhost:9050"},
		{name: "missing port", proxy: "127.0.0.1", wantErr: true},
		{name: "empty host", proxy: ":1080", wantErr: true},
		{name: "port out of range", proxy: "127.0.0.1:70000", wantErr: true},
		{name: "non-numeric port", proxy: "127.0.0.1:socks", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			client, err := platform.NewClient(platform.Options{ProxyAddress: tt.proxy})
			if tt.wantErr {
				if !errors.Is(err, platform.ErrInvalidProxyAddress) {
					t.Errorf("expected ErrInvalidProxyAddress, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if client == nil {
				t.Fatal("expected non-nil client")
			}
		})
	}
}

func TestInstallSession(t *testing.T) {
	t.Parallel()

	t.Run("incomplete credential is rejected", func(t *testing.T) {
		t.Parallel()

		client, err := platform.NewClient(platform.Options{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		err = client.InstallSession(model.SessionCredential{SessionID: "x"})
		if !errors.Is(err, model.ErrIncompleteCredential) {
			t.Errorf("expected ErrIncompleteCredential, got %v", err)
		}
	})

	t.Run("cookies and headers reach the API", func(t *testing.T) {
		t.Parallel()

		srv := platformtest.NewServer(t)
		var got *http.Request
		srv.HandleFunc("/accounts/current_user/", func(w http.ResponseWriter, r *http.Request) {
			got = r.Clone(context.Background())
			platformtest.JSON(http.StatusOK, map[string]any{
				"user": map[string]any{"pk": "1001", "username": "owner"},
			}).ServeHTTP(w, r)
		})

		client := newSessionClient(t, srv)
		user, err := client.CurrentUser(context.Background())
		if err != nil {
			t.Fatalf("CurrentUser() error = %v", err)
		}
		if user.PK != "1001" || user.Username != "owner" {
			t.Errorf("unexpected user: %+v", user)
		}

		cred := platformtest.Credential()
		for name, want := range map[string]string{
			model.CookieSessionID:    cred.SessionID,
			model.CookieCSRFToken:    cred.CSRFToken,
			model.CookieDeviceUserID: cred.DeviceUserID,
		} {
			c, err := got.Cookie(name)
			if err != nil {
				t.Errorf("cookie %s missing", name)
				continue
			}
			if c.Value != want {
				t.Errorf("cookie %s = %q, expected %q", name, c.Value, want)
			}
		}
		if got.Header.Get("X-CSRFToken") != cred.CSRFToken {
			t.Errorf("X-CSRFToken = %q", got.Header.Get("X-CSRFToken"))
		}
		if got.Header.Get("X-IG-App-ID") == "" {
			t.Error("expected X-IG-App-ID header")
		}
		if got.Header.Get("X-IG-Device-ID") == "" {
			t.Error("expected generated X-IG-Device-ID header")
		}
		if got.URL.Query().Get("edit") != "true" {
			t.Errorf("expected edit=true query, got %q", got.URL.RawQuery)
		}
	})

	t.Run("request before session fails", func(t *testing.T) {
		t.Parallel()

		srv := platformtest.NewServer(t)
		client, err := platform.NewClient(srv.Options())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, err := client.CurrentUser(context.Background()); !errors.Is(err, platform.ErrNoSession) {
			t.Errorf("expected ErrNoSession, got %v", err)
		}
		if srv.TotalHits() != 0 {
			t.Errorf("expected no requests, got %d", srv.TotalHits())
		}
	})
}

func TestFailureEnvelopes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		handler http.Handler
		want    model.ErrorKind
	}{
		{
			name:    "checkpoint message",
			handler: platformtest.Fail(http.StatusBadRequest, "checkpoint_required"),
			want:    model.ErrorKindCheckpointRequired,
		},
		{
			name: "challenge object",
			handler: platformtest.JSON(http.StatusBadRequest, map[string]any{
				"status":    "fail",
				"challenge": map[string]any{"url": "https://example.com/challenge/1/"},
			}),
			want: model.ErrorKindCheckpointRequired,
		},
		{
			name:    "login required",
			handler: platformtest.Fail(http.StatusForbidden, "login_required"),
			want:    model.ErrorKindLoginRequired,
		},
		{
			name:    "unauthorized status",
			handler: platformtest.JSON(http.StatusUnauthorized, map[string]any{}),
			want:    model.ErrorKindLoginRequired,
		},
		{
			name:    "not found status",
			handler: platformtest.JSON(http.StatusNotFound, map[string]any{}),
			want:    model.ErrorKindRecipientNotFound,
		},
		{
			name:    "rate limited status",
			handler: platformtest.JSON(http.StatusTooManyRequests, map[string]any{}),
			want:    model.ErrorKindRateLimited,
		},
		{
			name: "spam block on 200 fail envelope",
			handler: platformtest.JSON(http.StatusOK, map[string]any{
				"status": "fail", "message": "feedback_required", "spam": true,
			}),
			want: model.ErrorKindRateLimited,
		},
		{
			name:    "server error",
			handler: platformtest.JSON(http.StatusInternalServerError, map[string]any{}),
			want:    model.ErrorKindUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			srv := platformtest.NewServer(t)
			srv.Handle("/accounts/current_user/", tt.handler)
			client := newSessionClient(t, srv)

			_, err := client.CurrentUser(context.Background())
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			var apiErr *platform.APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("expected *APIError, got %T", err)
			}
			if got := platform.Classify(err); got != tt.want {
				t.Errorf("Classify() = %q, expected %q", got, tt.want)
			}
		})
	}
}

func TestRedirectToWall(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		to   string
		want model.ErrorKind
	}{
		{name: "login wall", to: "/accounts/login/", want: model.ErrorKindLoginRequired},
		{name: "challenge wall", to: "/challenge/123/", want: model.ErrorKindCheckpointRequired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			srv := platformtest.NewServer(t)
			srv.HandleFunc("/accounts/current_user/", func(w http.ResponseWriter, r *http.Request) {
				http.Redirect(w, r, tt.to, http.StatusFound)
			})
			srv.HandleFunc(tt.to, func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte("<html>wall</html>")) //nolint:errcheck // test
			})
			client := newSessionClient(t, srv)

			_, err := client.CurrentUser(context.Background())
			if got := platform.Classify(err); got != tt.want {
				t.Errorf("Classify() = %q, expected %q (err %v)", got, tt.want, err)
			}
		})
	}
}

func TestClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want model.ErrorKind
	}{
		{name: "nil", err: nil, want: ""},
		{name: "plain error", err: errors.New("boom"), want: model.ErrorKindUnknown},
		{
			name: "failure keeps kind",
			err:  model.NewFailure(model.ErrorKindBlocked, "short"),
			want: model.ErrorKindBlocked,
		},
		{
			name: "checkpoint beats not found",
			err:  &platform.APIError{StatusCode: http.StatusNotFound, Message: "checkpoint_required"},
			want: model.ErrorKindCheckpointRequired,
		},
		{
			name: "not found beats login",
			err:  &platform.APIError{StatusCode: http.StatusUnauthorized, Message: "User not found"},
			want: model.ErrorKindRecipientNotFound,
		},
		{
			name: "wrapped api error",
			err:  errors.Join(errors.New("context"), &platform.APIError{StatusCode: http.StatusTooManyRequests}),
			want: model.ErrorKindRateLimited,
		},
		{
			name: "please wait message",
			err:  &platform.APIError{StatusCode: http.StatusBadRequest, Message: "Please wait a few minutes before you try again."},
			want: model.ErrorKindRateLimited,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := platform.Classify(tt.err); got != tt.want {
				t.Errorf("Classify() = %q, expected %q", got, tt.want)
			}
		})
	}
}

func TestEndpoints(t *testing.T) {
	t.Parallel()

	t.Run("user by username", func(t *testing.T) {
		t.Parallel()

		srv := platformtest.NewServer(t)
		srv.Handle("/users/alice/usernameinfo/", platformtest.JSON(http.StatusOK, map[string]any{
			"user": map[string]any{"pk": 42, "username": "alice", "biography": "hi"},
		}))
		client := newSessionClient(t, srv)

		user, err := client.UserByUsername(context.Background(), "alice")
		if err != nil {
			t.Fatalf("UserByUsername() error = %v", err)
		}
		want := &platform.User{PK: "42", Username: "alice", Biography: "hi"}
		if diff := cmp.Diff(want, user); diff != "" {
			t.Errorf("user mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("user info without pk is not found", func(t *testing.T) {
		t.Parallel()

		srv := platformtest.NewServer(t)
		srv.Handle("/users/7/info/", platformtest.JSON(http.StatusOK, map[string]any{"status": "ok"}))
		client := newSessionClient(t, srv)

		_, err := client.UserInfo(context.Background(), "7")
		if got := platform.Classify(err); got != model.ErrorKindRecipientNotFound {
			t.Errorf("Classify() = %q, expected recipient-not-found", got)
		}
	})

	t.Run("followers pagination cursor", func(t *testing.T) {
		t.Parallel()

		srv := platformtest.NewServer(t)
		var cursors []string
		srv.HandleFunc("/friendships/9/followers/", func(w http.ResponseWriter, r *http.Request) {
			cursors = append(cursors, r.URL.Query().Get("max_id"))
			platformtest.JSON(http.StatusOK, map[string]any{
				"users":       []any{map[string]any{"pk": 1, "username": "a"}},
				"next_max_id": "c2",
			}).ServeHTTP(w, r)
		})
		client := newSessionClient(t, srv)

		page, err := client.Followers(context.Background(), "9", "")
		if err != nil {
			t.Fatalf("Followers() error = %v", err)
		}
		if !page.HasMore() || page.NextMaxID != "c2" {
			t.Errorf("unexpected page cursor: %+v", page)
		}
		if _, err := client.Followers(context.Background(), "9", page.NextMaxID); err != nil {
			t.Fatalf("Followers() error = %v", err)
		}
		if diff := cmp.Diff([]string{"", "c2"}, cursors); diff != "" {
			t.Errorf("cursors mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("hashtag feed", func(t *testing.T) {
		t.Parallel()

		srv := platformtest.NewServer(t)
		srv.Handle("/feed/tag/golang/", platformtest.JSON(http.StatusOK, map[string]any{
			"items": []any{
				map[string]any{"pk": "5", "code": "ABCDE", "user": map[string]any{"pk": 11, "username": "u"}},
			},
			"more_available": false,
			"next_max_id":    "x",
		}))
		client := newSessionClient(t, srv)

		page, err := client.HashtagFeed(context.Background(), "golang", "")
		if err != nil {
			t.Fatalf("HashtagFeed() error = %v", err)
		}
		if page.HasMore() {
			t.Error("expected HasMore() false when more_available is false")
		}
		if len(page.Items) != 1 || page.Items[0].User.PK != "11" {
			t.Errorf("unexpected items: %+v", page.Items)
		}
	})

	t.Run("broadcast text", func(t *testing.T) {
		t.Parallel()

		srv := platformtest.NewServer(t)
		var form url.Values
		srv.HandleFunc("/direct_v2/threads/broadcast/text/", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				t.Errorf("expected POST, got %s", r.Method)
			}
			_ = r.ParseForm() //nolint:errcheck // test
			form = r.PostForm
			platformtest.JSON(http.StatusOK, map[string]any{
				"status":  "ok",
				"payload": map[string]any{"thread_id": "t1", "item_id": "i1"},
			}).ServeHTTP(w, r)
		})
		client := newSessionClient(t, srv)

		res, err := client.BroadcastText(context.Background(), []string{"42"}, "hello")
		if err != nil {
			t.Fatalf("BroadcastText() error = %v", err)
		}
		if diff := cmp.Diff(&platform.BroadcastResult{ThreadID: "t1", ItemID: "i1"}, res); diff != "" {
			t.Errorf("result mismatch (-want +got):\n%s", diff)
		}
		var recipients [][]string
		if err := json.Unmarshal([]byte(form.Get("recipient_users")), &recipients); err != nil {
			t.Fatalf("recipient_users is not JSON: %v", err)
		}
		if diff := cmp.Diff([][]string{{"42"}}, recipients); diff != "" {
			t.Errorf("recipients mismatch (-want +got):\n%s", diff)
		}
		if form.Get("text") != "hello" || form.Get("client_context") == "" {
			t.Errorf("unexpected form: %v", form)
		}
	})
}

func TestMarkup(t *testing.T) {
	t.Parallel()

	t.Run("fetch sends jar cookies", func(t *testing.T) {
		t.Parallel()

		srv := platformtest.NewServer(t)
		srv.HandleFunc("/p/ABCDE/", func(w http.ResponseWriter, r *http.Request) {
			if _, err := r.Cookie(model.CookieSessionID); err != nil {
				http.Error(w, "no cookie", http.StatusForbidden)
				return
			}
			_, _ = w.Write([]byte("<html>post</html>")) //nolint:errcheck // test
		})
		client := newSessionClient(t, srv)

		body, err := client.FetchMarkup(context.Background(), client.PostURL("ABCDE"))
		if err != nil {
			t.Fatalf("FetchMarkup() error = %v", err)
		}
		if string(body) != "<html>post</html>" {
			t.Errorf("unexpected body %q", body)
		}
	})

	t.Run("raw fetch sends manual cookie header", func(t *testing.T) {
		t.Parallel()

		srv := platformtest.NewServer(t)
		var header string
		srv.HandleFunc("/p/ABCDE/", func(w http.ResponseWriter, r *http.Request) {
			header = r.Header.Get("Cookie")
		})
		client := newSessionClient(t, srv)
		cred := platformtest.Credential()

		if _, err := client.RawFetch(context.Background(), client.PostURL("ABCDE"), cred.CookieHeader()); err != nil {
			t.Fatalf("RawFetch() error = %v", err)
		}
		if !strings.Contains(header, "sessionid="+cred.SessionID) {
			t.Errorf("Cookie header = %q", header)
		}
	})

	t.Run("non-2xx page is an api error", func(t *testing.T) {
		t.Parallel()

		srv := platformtest.NewServer(t)
		client := newSessionClient(t, srv)

		_, err := client.FetchMarkup(context.Background(), client.PostURL("MISSING"))
		var apiErr *platform.APIError
		if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusNotFound {
			t.Errorf("expected 404 APIError, got %v", err)
		}
	})
}

func TestIDUnmarshal(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		want    platform.ID
		wantErr bool
	}{
		{name: "number", input: `123456789012`, want: "123456789012"},
		{name: "string", input: `"987"`, want: "987"},
		{name: "null", input: `null`, want: ""},
		{name: "float", input: `1.5`, wantErr: true},
		{name: "object", input: `{}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var id platform.ID
			err := json.Unmarshal([]byte(tt.input), &id)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if id != tt.want {
				t.Errorf("ID = %q, expected %q", id, tt.want)
			}
		})
	}
}

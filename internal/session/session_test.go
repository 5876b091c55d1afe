package session_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/EmreGunner/Leda-instagram-dm-tool-sub000/internal/model"
	"github.com/EmreGunner/Leda-instagram-dm-tool-sub000/internal/platform"
	"github.com/EmreGunner/Leda-instagram-dm-tool-sub000/internal/platform/platformtest"
	"github.com/EmreGunner/Leda-instagram-dm-tool-sub000/internal/session"
	"github.com/EmreGunner/Leda-instagram-dm-tool-sub000/internal/vault"
)

const probePath = "/accounts/current_user/"

// fakeClock is a settable clock for TTL tests.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newManager(srv *platformtest.Server, opts ...session.Option) *session.Manager {
	return session.NewManager(srv.Options(), append([]session.Option{session.WithLogger(quietLogger())}, opts...)...)
}

func TestGetClient(t *testing.T) {
	t.Parallel()

	t.Run("probes once and caches", func(t *testing.T) {
		t.Parallel()

		srv := platformtest.NewServer(t)
		m := newManager(srv)
		cred := platformtest.Credential()

		first, err := m.GetClient(context.Background(), cred)
		if err != nil {
			t.Fatalf("GetClient() error = %v", err)
		}
		if srv.Hits(probePath) != 1 {
			t.Fatalf("expected 1 probe, got %d", srv.Hits(probePath))
		}

		second, err := m.GetClient(context.Background(), cred)
		if err != nil {
			t.Fatalf("GetClient() error = %v", err)
		}
		if first != second {
			t.Error("expected the cached client on the second call")
		}
		if srv.Hits(probePath) != 1 {
			t.Errorf("expected no additional probes, got %d total", srv.Hits(probePath))
		}
		if m.Store().Len() != 1 {
			t.Errorf("expected 1 cached entry, got %d", m.Store().Len())
		}
	})

	t.Run("reprobes after ttl", func(t *testing.T) {
		t.Parallel()

		srv := platformtest.NewServer(t)
		clock := &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
		store := session.NewStore(30*time.Minute, session.WithClock(clock.Now))
		m := newManager(srv, session.WithStore(store))
		cred := platformtest.Credential()

		first, err := m.GetClient(context.Background(), cred)
		if err != nil {
			t.Fatalf("GetClient() error = %v", err)
		}

		clock.Advance(29 * time.Minute)
		if _, err := m.GetClient(context.Background(), cred); err != nil {
			t.Fatalf("GetClient() error = %v", err)
		}
		if srv.Hits(probePath) != 1 {
			t.Fatalf("expected cache hit inside ttl, got %d probes", srv.Hits(probePath))
		}

		clock.Advance(time.Minute)
		second, err := m.GetClient(context.Background(), cred)
		if err != nil {
			t.Fatalf("GetClient() error = %v", err)
		}
		if srv.Hits(probePath) != 2 {
			t.Errorf("expected a second probe after ttl, got %d", srv.Hits(probePath))
		}
		if first == second {
			t.Error("expected a new client after expiry")
		}
	})

	t.Run("incomplete credential fails before network", func(t *testing.T) {
		t.Parallel()

		srv := platformtest.NewServer(t)
		m := newManager(srv)

		_, err := m.GetClient(context.Background(), model.SessionCredential{DeviceUserID: "1"})
		var se *session.Error
		if !errors.As(err, &se) {
			t.Fatalf("expected *session.Error, got %v", err)
		}
		if se.Kind != model.ErrorKindInvalidInput {
			t.Errorf("Kind = %q, expected invalid-input", se.Kind)
		}
		if !errors.Is(err, model.ErrIncompleteCredential) {
			t.Errorf("expected wrapped ErrIncompleteCredential, got %v", err)
		}
		if srv.TotalHits() != 0 {
			t.Errorf("expected no requests, got %d", srv.TotalHits())
		}
	})

	t.Run("invalidate forces a new probe", func(t *testing.T) {
		t.Parallel()

		srv := platformtest.NewServer(t)
		m := newManager(srv)
		cred := platformtest.Credential()

		if _, err := m.GetClient(context.Background(), cred); err != nil {
			t.Fatalf("GetClient() error = %v", err)
		}
		m.Invalidate(cred.Identity())
		if _, err := m.GetClient(context.Background(), cred); err != nil {
			t.Fatalf("GetClient() error = %v", err)
		}
		if srv.Hits(probePath) != 2 {
			t.Errorf("expected 2 probes, got %d", srv.Hits(probePath))
		}
	})
}

func TestCreateClientProbeFailures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		handler http.Handler
		want    model.ErrorKind
	}{
		{
			name:    "checkpoint",
			handler: platformtest.Fail(http.StatusBadRequest, "checkpoint_required"),
			want:    model.ErrorKindCheckpointRequired,
		},
		{
			name:    "login required",
			handler: platformtest.Fail(http.StatusForbidden, "login_required"),
			want:    model.ErrorKindLoginRequired,
		},
		{
			name:    "rate limit narrows to unknown",
			handler: platformtest.JSON(http.StatusTooManyRequests, map[string]any{}),
			want:    model.ErrorKindUnknown,
		},
		{
			name:    "garbage body",
			handler: http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { _, _ = w.Write([]byte("<html>")) }), //nolint:errcheck // test
			want:    model.ErrorKindUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			srv := platformtest.NewServer(t)
			srv.Handle(probePath, tt.handler)
			m := newManager(srv)

			client, err := m.CreateClient(context.Background(), platformtest.Credential())
			if client != nil {
				t.Error("expected no client on probe failure")
			}
			var se *session.Error
			if !errors.As(err, &se) {
				t.Fatalf("expected *session.Error, got %v", err)
			}
			if se.Kind != tt.want {
				t.Errorf("Kind = %q, expected %q", se.Kind, tt.want)
			}
			if m.Store().Len() != 0 {
				t.Error("failed probe must not be cached")
			}
		})
	}
}

func TestClientFactory(t *testing.T) {
	t.Parallel()

	srv := platformtest.NewServer(t)
	calls := 0
	m := newManager(srv, session.WithClientFactory(func(opts platform.Options) (*platform.Client, error) {
		calls++
		return platform.NewClient(opts)
	}))

	if _, err := m.GetClient(context.Background(), platformtest.Credential()); err != nil {
		t.Fatalf("GetClient() error = %v", err)
	}
	if calls != 1 {
		t.Errorf("expected factory to be called once, got %d", calls)
	}
}

func TestGetClientFromBlob(t *testing.T) {
	t.Parallel()

	const secret = "0123456789abcdef0123456789abcdef"

	t.Run("encrypted blob", func(t *testing.T) {
		t.Parallel()

		srv := platformtest.NewServer(t)
		m := newManager(srv)
		v := vault.New(secret)
		blob, err := v.Encrypt(platformtest.Credential())
		if err != nil {
			t.Fatalf("Encrypt() error = %v", err)
		}

		client, err := m.GetClientFromBlob(context.Background(), v, blob)
		if err != nil {
			t.Fatalf("GetClientFromBlob() error = %v", err)
		}
		if client.Identity() != platformtest.UserID {
			t.Errorf("Identity() = %q", client.Identity())
		}
	})

	t.Run("undecryptable blob", func(t *testing.T) {
		t.Parallel()

		srv := platformtest.NewServer(t)
		m := newManager(srv)

		_, err := m.GetClientFromBlob(context.Background(), vault.New(secret), "zz:zz")
		var se *session.Error
		if !errors.As(err, &se) || se.Kind != model.ErrorKindDecryptionFailed {
			t.Fatalf("expected decryption-failed session error, got %v", err)
		}
		if !errors.Is(err, vault.ErrDecryptionFailed) {
			t.Errorf("expected wrapped ErrDecryptionFailed, got %v", err)
		}
		if srv.TotalHits() != 0 {
			t.Errorf("expected no requests, got %d", srv.TotalHits())
		}
	})
}

func TestStore(t *testing.T) {
	t.Parallel()

	clock := &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	store := session.NewStore(time.Minute, session.WithClock(clock.Now))
	a, err := platform.NewClient(platform.Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := platform.NewClient(platform.Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	store.Put("1", a)
	store.Put("1", b)
	if got, ok := store.Get("1"); !ok || got != b {
		t.Error("expected Put to overwrite the entry")
	}

	clock.Advance(30 * time.Second)
	store.Put("2", a)
	clock.Advance(30 * time.Second)

	if n := store.Purge(); n != 1 {
		t.Errorf("Purge() = %d, expected 1", n)
	}
	if _, ok := store.Get("1"); ok {
		t.Error("expected entry 1 to be gone")
	}
	if _, ok := store.Get("2"); !ok {
		t.Error("expected entry 2 to survive")
	}
	if !store.Evict("2") || store.Evict("2") {
		t.Error("expected Evict to report presence once")
	}
	if store.Len() != 0 {
		t.Errorf("Len() = %d, expected 0", store.Len())
	}
}

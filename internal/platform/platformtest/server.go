// Package platformtest provides an in-process stand-in for the platform API
// for use in tests.
package platformtest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/EmreGunner/Leda-instagram-dm-tool-sub000/internal/model"
	"github.com/EmreGunner/Leda-instagram-dm-tool-sub000/internal/platform"
)

// UserID is the account id of the credential returned by Credential.
const UserID = "1001"

// Credential returns a complete credential for the account UserID.
func Credential() model.SessionCredential {
	return model.SessionCredential{
		SessionID:    UserID + "%3AabcDEF123%3A4",
		CSRFToken:    "csrf-token-value",
		DeviceUserID: UserID,
	}
}

// Server is a fake platform. Handlers are registered per exact URL path and
// every request is counted by its path. Unregistered paths answer 404.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	handlers map[string]http.Handler
	hits     map[string]int
}

// NewServer starts a Server that is closed when the test ends. The
// current-user probe succeeds for UserID until replaced with Handle.
func NewServer(t testing.TB) *Server {
	t.Helper()

	s := &Server{
		handlers: make(map[string]http.Handler),
		hits:     make(map[string]int),
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serve))
	t.Cleanup(s.Close)

	s.Handle("/accounts/current_user/", JSON(http.StatusOK, map[string]any{
		"status": "ok",
		"user":   map[string]any{"pk": 1001, "username": "owner"},
	}))
	return s
}

func (s *Server) serve(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.hits[r.URL.Path]++
	h, ok := s.handlers[r.URL.Path]
	s.mu.Unlock()

	if !ok {
		http.NotFound(w, r)
		return
	}
	h.ServeHTTP(w, r)
}

// Handle registers handler for path, replacing any earlier registration.
func (s *Server) Handle(path string, handler http.Handler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers[path] = handler
}

// HandleFunc registers a handler function for path.
func (s *Server) HandleFunc(path string, fn func(http.ResponseWriter, *http.Request)) {
	s.Handle(path, http.HandlerFunc(fn))
}

// Hits returns how many requests reached path.
func (s *Server) Hits(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[path]
}

// TotalHits returns the number of requests served.
func (s *Server) TotalHits() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, v := range s.hits {
		n += v
	}
	return n
}

// Options returns client options pointing both API and web hosts at s.
func (s *Server) Options() platform.Options {
	return platform.Options{
		APIBaseURL: s.URL,
		WebBaseURL: s.URL,
	}
}

// JSON returns a handler that writes v with the given status.
func JSON(status int, v any) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(v) //nolint:errcheck // test server
	})
}

// Fail returns a handler that writes a platform failure envelope.
func Fail(status int, message string) http.Handler {
	return JSON(status, map[string]any{"status": "fail", "message": message})
}

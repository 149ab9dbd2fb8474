package testutil

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/ndewijer/Currency-Exchange-Backend/internal/exchangerate"
)

// RecordedRequest is what the fake provider saw of one request.
type RecordedRequest struct {
	Method    string
	Path      string
	APIKey    string
	RequestID string
}

// ProviderServer is an httptest server standing in for the rate provider.
// It records every request and delegates the answer to a handler.
type ProviderServer struct {
	*httptest.Server

	mu       sync.Mutex
	requests []RecordedRequest
}

// NewProviderServer starts a fake provider answering with handler.
// The server is closed when the test ends.
func NewProviderServer(t *testing.T, handler http.HandlerFunc) *ProviderServer {
	t.Helper()

	ps := &ProviderServer{}
	ps.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ps.mu.Lock()
		ps.requests = append(ps.requests, RecordedRequest{
			Method:    r.Method,
			Path:      r.URL.EscapedPath(),
			APIKey:    r.Header.Get(exchangerate.APIKeyHeader),
			RequestID: r.Header.Get(middleware.RequestIDHeader),
		})
		ps.mu.Unlock()

		handler(w, r)
	}))
	t.Cleanup(ps.Close)

	return ps
}

// Requests returns a copy of the recorded requests.
func (ps *ProviderServer) Requests() []RecordedRequest {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	return append([]RecordedRequest(nil), ps.requests...)
}

// JSONHandler answers every request with status and body.
func JSONHandler(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}
}

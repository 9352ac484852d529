package testutil

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

// Server is an httptest server that counts the requests it receives.
type Server struct {
	*httptest.Server
	calls atomic.Int32
}

// NewServer starts a server answering every request with handler, which is
// given the 1-based request number. The server is closed when t ends.
func NewServer(t testing.TB, handler func(n int32, w http.ResponseWriter, r *http.Request)) *Server {
	t.Helper()
	s := &Server{}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handler(s.calls.Add(1), w, r)
	}))
	t.Cleanup(s.Close)
	return s
}

// Calls returns the number of requests received so far.
func (s *Server) Calls() int32 { return s.calls.Load() }

// WriteXML writes body as a text/xml response.
func WriteXML(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "text/xml")
	_, _ = w.Write([]byte(body))
}

// Reply returns a handler that always answers with body.
func Reply(body string) func(int32, http.ResponseWriter, *http.Request) {
	return func(_ int32, w http.ResponseWriter, _ *http.Request) {
		WriteXML(w, body)
	}
}

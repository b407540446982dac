package apitest

import (
	"net/http/httptest"
	"testing"
)

// Server is a running Fake.
type Server struct {
	*Fake
	URL string
}

// Start serves a new Fake on a local port until the test ends.
func Start(tb testing.TB, opts ...Option) *Server {
	tb.Helper()
	f := New(opts...)
	ts := httptest.NewServer(f.Handler())
	tb.Cleanup(ts.Close)
	return &Server{Fake: f, URL: ts.URL}
}

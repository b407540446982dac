package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"tableflip.dev/moodlog/pkg/model"
)

func TestDoSetsHeaders(t *testing.T) {
	var got http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	err := c.Do(context.Background(), http.MethodGet, "/x", "tok", nil, nil,
		WithHeader("Authorization", "Bearer other"),
		WithHeader("content-type", "text/plain"),
		WithHeader("X-Trace", "abc"))
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	if v := got.Get("Authorization"); v != "Bearer tok" {
		t.Fatalf("expected bearer header, got %q", v)
	}
	if v := got.Get("Content-Type"); v != "application/json" {
		t.Fatalf("expected json content type, got %q", v)
	}
	if v := got.Get("X-Trace"); v != "abc" {
		t.Fatalf("expected caller header, got %q", v)
	}
	if got.Get("X-Request-ID") == "" {
		t.Fatalf("expected request id")
	}
}

func TestDoWithoutTokenSendsNoAuthorization(t *testing.T) {
	var auth []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Values("Authorization")
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	if err := New(srv.URL).Do(context.Background(), http.MethodGet, "/x", "", nil, nil); err != nil {
		t.Fatalf("do: %v", err)
	}
	if len(auth) != 0 {
		t.Fatalf("expected no authorization header, got %v", auth)
	}
}

func TestDoNon2xxIsHTTPError(t *testing.T) {
	for _, status := range []int{http.StatusUnauthorized, http.StatusInternalServerError} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
			_, _ = w.Write([]byte(`{"detail":"Invalid token"}`))
		}))

		err := New(srv.URL).Do(context.Background(), http.MethodGet, "/x", "tok", nil, nil)
		srv.Close()

		var he *HTTPError
		if !errors.As(err, &he) {
			t.Fatalf("expected HTTPError, got %v", err)
		}
		if he.Status != status {
			t.Fatalf("expected %d, got %d", status, he.Status)
		}
		if he.Detail() != "Invalid token" {
			t.Fatalf("unexpected detail %q", he.Detail())
		}
		if IsUnauthorized(err) != (status == http.StatusUnauthorized) {
			t.Fatalf("IsUnauthorized mismatch for %d", status)
		}
	}
}

func TestDoNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	err := New(url).Do(context.Background(), http.MethodGet, "/x", "", nil, nil)
	var ne *NetworkError
	if !errors.As(err, &ne) {
		t.Fatalf("expected NetworkError, got %v", err)
	}
}

func TestDoDecodeError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>`))
	}))
	defer srv.Close()

	var out map[string]any
	err := New(srv.URL).Do(context.Background(), http.MethodGet, "/x", "", nil, &out)
	var de *DecodeError
	if !errors.As(err, &de) {
		t.Fatalf("expected DecodeError, got %v", err)
	}
}

func TestLoginEscapesUsernameAndRejectsUnknown(t *testing.T) {
	var query string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.Query().Get("username")
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		_, _ = w.Write([]byte(`{"error":"Unknown user","allowed":["demo","admin"]}`))
	}))
	defer srv.Close()

	_, err := New(srv.URL).Login(context.Background(), "a b&c")
	if query != "a b&c" {
		t.Fatalf("expected escaped username round trip, got %q", query)
	}
	var le *LoginRejectedError
	if !errors.As(err, &le) {
		t.Fatalf("expected LoginRejectedError, got %v", err)
	}
	if le.Error() != "Unknown user (try: demo, admin)" {
		t.Fatalf("unexpected message %q", le.Error())
	}
}

func TestCreateEntrySendsBody(t *testing.T) {
	var body model.NewEntry
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != PathJournal || r.Method != http.MethodPost {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		_, _ = w.Write([]byte(`{"item":{"id":"e1","text":"Great day","mood":8,"entry_datetime":"2025-11-02T08:00:00"}}`))
	}))
	defer srv.Close()

	e, err := New(srv.URL).CreateEntry(context.Background(), "tok", model.NewEntry{Text: "Great day", Mood: 8})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if body.Text != "Great day" || body.Mood != 8 {
		t.Fatalf("unexpected body %+v", body)
	}
	if e.ID != "e1" || e.Mood != 8 {
		t.Fatalf("unexpected entry %+v", e)
	}
}

func TestNewDefaultsBaseURL(t *testing.T) {
	c := New(" ")
	if c.BaseURL() != DefaultBaseURL {
		t.Fatalf("expected default base url, got %q", c.BaseURL())
	}
	if got := New("http://example.test/").GoogleLoginURL(); got != "http://example.test/auth/google/login" {
		t.Fatalf("unexpected google url %q", got)
	}
}

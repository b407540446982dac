package journal

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"tableflip.dev/moodlog/pkg/api"
	"tableflip.dev/moodlog/pkg/apitest"
	"tableflip.dev/moodlog/pkg/app"
	"tableflip.dev/moodlog/pkg/model"
	"tableflip.dev/moodlog/pkg/printers"
)

func signedIn(t *testing.T) (*app.Service, *apitest.Server) {
	t.Helper()
	srv := apitest.Start(t)
	svc := app.New(api.New(srv.URL))
	if err := svc.Login(context.Background(), "demo"); err != nil {
		t.Fatalf("login: %v", err)
	}
	return svc, srv
}

func quiet() (*printers.PrettyPrint, *bytes.Buffer) {
	var buf bytes.Buffer
	pp := printers.New(&buf)
	pp.NoColor = true
	return pp, &buf
}

func TestWrite(t *testing.T) {
	svc, srv := signedIn(t)
	pp, buf := quiet()
	w := &Write{Service: svc, Printer: pp, Text: "  Great day ", Mood: 8}
	if err := w.Do(context.Background()); err != nil {
		t.Fatalf("do: %v", err)
	}
	stored := srv.Entries("user-1")
	if len(stored) != 1 || stored[0].Text != "Great day" || stored[0].Mood != 8 {
		t.Fatalf("unexpected stored entries %+v", stored)
	}
	if !bytes.Contains(buf.Bytes(), []byte("Entry saved. Nice work.")) {
		t.Fatalf("missing status in %q", buf.String())
	}
}

func TestWriteValidation(t *testing.T) {
	svc, srv := signedIn(t)
	pp, _ := quiet()
	err := (&Write{Service: svc, Printer: pp, Text: "fine", Mood: 12}).Do(context.Background())
	if !model.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(srv.Entries("user-1")) != 0 {
		t.Fatalf("nothing should be stored")
	}
}

func TestHistoryRequiresLogin(t *testing.T) {
	srv := apitest.Start(t)
	svc := app.New(api.New(srv.URL))
	pp, _ := quiet()
	err := (&History{Service: svc, Printer: pp}).Do(context.Background())
	if !errors.Is(err, app.ErrNoSession) {
		t.Fatalf("expected ErrNoSession, got %v", err)
	}
	if err.Error() != "not logged in" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestHistoryLimitJSON(t *testing.T) {
	svc, srv := signedIn(t)
	base := time.Date(2025, time.November, 1, 8, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		srv.Seed("user-1", "entry", i+1, base.Add(time.Duration(i)*time.Hour))
	}
	pp, buf := quiet()
	if err := (&History{Service: svc, Printer: pp, Limit: 2, JSON: true}).Do(context.Background()); err != nil {
		t.Fatalf("do: %v", err)
	}
	var out struct {
		Items []model.JournalEntry `json:"items"`
	}
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out.Items) != 2 || out.Items[0].Mood != 3 {
		t.Fatalf("expected the two newest entries, got %+v", out.Items)
	}
}

func TestHistorySince(t *testing.T) {
	svc, srv := signedIn(t)
	now := time.Date(2025, time.November, 10, 12, 0, 0, 0, time.UTC)
	srv.Seed("user-1", "last month", 4, now.AddDate(0, -1, 0))
	srv.Seed("user-1", "two days ago", 6, now.Add(-48*time.Hour))
	srv.Seed("user-1", "this morning", 8, now.Add(-4*time.Hour))

	pp, buf := quiet()
	h := &History{Service: svc, Printer: pp, Since: 72 * time.Hour, Now: func() time.Time { return now }, JSON: true}
	if err := h.Do(context.Background()); err != nil {
		t.Fatalf("do: %v", err)
	}
	var out struct {
		Items []model.JournalEntry `json:"items"`
	}
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out.Items) != 2 || out.Items[1].Text != "two days ago" {
		t.Fatalf("expected entries from the last three days, got %+v", out.Items)
	}
}

package calendar

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"tableflip.dev/moodlog/pkg/api"
	"tableflip.dev/moodlog/pkg/apitest"
	"tableflip.dev/moodlog/pkg/app"
	"tableflip.dev/moodlog/pkg/model"
	"tableflip.dev/moodlog/pkg/printers"
)

func TestCalendarFiltersMonth(t *testing.T) {
	srv := apitest.Start(t)
	srv.Seed("user-1", "november", 8, time.Date(2025, time.November, 2, 9, 0, 0, 0, time.UTC))
	srv.Seed("user-1", "october", 3, time.Date(2025, time.October, 30, 9, 0, 0, 0, time.UTC))

	svc := app.New(api.New(srv.URL))
	if err := svc.Login(context.Background(), "demo"); err != nil {
		t.Fatalf("login: %v", err)
	}

	var buf bytes.Buffer
	pp := printers.New(&buf)
	pp.NoColor = true
	month, err := ParseMonth("2025-11")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	c := &Calendar{Service: svc, Printer: pp, Month: month, JSON: true}
	if err := c.Do(context.Background()); err != nil {
		t.Fatalf("do: %v", err)
	}

	var out struct {
		Days []model.MoodDay `json:"days"`
	}
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", buf.String(), err)
	}
	if len(out.Days) != 1 || out.Days[0].Date != "2025-11-02" || out.Days[0].Average != 8 {
		t.Fatalf("unexpected days %+v", out.Days)
	}
}

func TestParseMonth(t *testing.T) {
	if m, err := ParseMonth(""); err != nil || !m.IsZero() {
		t.Fatalf("empty month: %v %v", m, err)
	}
	if _, err := ParseMonth("November"); !model.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

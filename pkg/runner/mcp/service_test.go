package mcp

import (
	"context"
	"strings"
	"testing"
	"time"

	"tableflip.dev/moodlog/pkg/api"
	"tableflip.dev/moodlog/pkg/apitest"
	"tableflip.dev/moodlog/pkg/app"
	"tableflip.dev/moodlog/pkg/model"
)

func newTestService(t *testing.T) (*Service, *apitest.Server) {
	t.Helper()
	srv := apitest.Start(t)
	a := app.New(api.New(srv.URL))
	if err := a.Login(context.Background(), "demo"); err != nil {
		t.Fatalf("login: %v", err)
	}
	return NewService(a), srv
}

func TestServiceRequiresLogin(t *testing.T) {
	srv := apitest.Start(t)
	svc := NewService(app.New(api.New(srv.URL)))
	if _, err := svc.ListEntries(context.Background(), "", 0); err == nil || !strings.Contains(err.Error(), "not logged in") {
		t.Fatalf("expected not logged in, got %v", err)
	}
}

func TestServiceWriteAndList(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	dto, err := svc.WriteEntry(ctx, "Ran 5k", 9)
	if err != nil {
		t.Fatalf("WriteEntry failed: %v", err)
	}
	if dto.ID == "" || dto.CreatedISO == "" || dto.Mood != 9 {
		t.Fatalf("unexpected dto %+v", dto)
	}
	if _, err := svc.WriteEntry(ctx, "Rainy", 4); err != nil {
		t.Fatalf("WriteEntry failed: %v", err)
	}

	all, err := svc.ListEntries(ctx, "", 0)
	if err != nil {
		t.Fatalf("ListEntries failed: %v", err)
	}
	if len(all) != 2 || all[0].Text != "Rainy" {
		t.Fatalf("expected newest first, got %+v", all)
	}

	found, err := svc.ListEntries(ctx, "ran", 0)
	if err != nil {
		t.Fatalf("ListEntries failed: %v", err)
	}
	if len(found) != 1 || found[0].Text != "Ran 5k" {
		t.Fatalf("unexpected search result %+v", found)
	}

	limited, err := svc.ListEntries(ctx, "", 1)
	if err != nil || len(limited) != 1 {
		t.Fatalf("limit not applied: %+v %v", limited, err)
	}
}

func TestServiceWriteValidates(t *testing.T) {
	svc, srv := newTestService(t)
	if _, err := svc.WriteEntry(context.Background(), " ", 5); !model.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(srv.Entries("user-1")) != 0 {
		t.Fatalf("nothing should be stored")
	}
}

func TestServiceCalendarMonth(t *testing.T) {
	svc, srv := newTestService(t)
	srv.Seed("user-1", "a", 6, time.Date(2025, time.March, 3, 12, 0, 0, 0, time.UTC))
	srv.Seed("user-1", "b", 2, time.Date(2025, time.April, 1, 12, 0, 0, 0, time.UTC))

	days, err := svc.Calendar(context.Background(), "2025-03")
	if err != nil {
		t.Fatalf("Calendar failed: %v", err)
	}
	if len(days) != 1 || days[0].Date != "2025-03-03" {
		t.Fatalf("unexpected days %+v", days)
	}
	if _, err := svc.Calendar(context.Background(), "March"); !model.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestServiceUpdateSettingsKeepsOtherFields(t *testing.T) {
	svc, srv := newTestService(t)
	theme, tz := "citrus", "UTC"
	saved, err := svc.UpdateSettings(context.Background(), SettingsUpdate{Theme: &theme, Timezone: &tz})
	if err != nil {
		t.Fatalf("UpdateSettings failed: %v", err)
	}
	if saved.Theme != model.ThemeCitrus || saved.DisplayName != model.DefaultDisplayName || saved.ReminderTime != model.DefaultReminderTime {
		t.Fatalf("unexpected settings %+v", saved)
	}
	if stored, _ := srv.StoredSettings("user-1"); stored != saved {
		t.Fatalf("server has %+v, want %+v", stored, saved)
	}
}

func TestTemplateArg(t *testing.T) {
	if got := templateArg([]string{"2025-01"}); got != "2025-01" {
		t.Fatalf("got %q", got)
	}
	if got := templateArg("2025-02"); got != "2025-02" {
		t.Fatalf("got %q", got)
	}
	if got := templateArg(nil); got != "" {
		t.Fatalf("got %q", got)
	}
}

package calendar

import (
	"strings"
	"testing"
	"time"
)

func TestRenderLayout(t *testing.T) {
	month := time.Date(2025, time.November, 1, 0, 0, 0, 0, time.UTC)
	out := Render(month, []Day{{Day: 2, Mood: 7, Entries: 1}}, Options{ShowHeader: true})
	lines := strings.Split(out, "\n")
	if lines[0] != "Su Mo Tu We Th Fr Sa" {
		t.Fatalf("unexpected header %q", lines[0])
	}
	// November 2025 starts on a Saturday and spans six weeks.
	if len(lines) != 7 {
		t.Fatalf("expected 6 week rows, got %d:\n%s", len(lines)-1, out)
	}
	if !strings.HasSuffix(lines[1], " 1") {
		t.Fatalf("first row should end with day 1: %q", lines[1])
	}
	if !strings.HasPrefix(lines[2], " 2") {
		t.Fatalf("second row should start with day 2: %q", lines[2])
	}
}

func TestRenderZeroMonth(t *testing.T) {
	if Render(time.Time{}, nil, Options{}) != "" {
		t.Fatalf("expected empty output")
	}
}

func TestDaysIn(t *testing.T) {
	if got := DaysIn(time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC)); got != 29 {
		t.Fatalf("got %d", got)
	}
}

package app

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"tableflip.dev/moodlog/pkg/model"
)

const dateLayout = "2006-01-02"

// LoadCalendar replaces the cached mood days with the server's aggregate.
func (s *Service) LoadCalendar(ctx context.Context) error {
	token, _, gen := s.sess.Snapshot()
	if token == "" {
		return ErrNoSession
	}
	if err := s.loadCalendar(ctx, token, gen); err != nil {
		return s.fail("Failed loading calendar", gen, err)
	}
	return nil
}

func (s *Service) loadCalendar(ctx context.Context, token string, gen uint64) error {
	days, err := s.client.MoodCalendar(ctx, token)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.current(gen) {
		s.log.Debug("dropping stale calendar", zap.Uint64("generation", gen))
		return nil
	}
	s.calendar = days
	return nil
}

// MonthGrid indexes days falling in month by day of month. Days whose date
// does not parse are skipped.
func MonthGrid(days []model.MoodDay, month time.Time) map[int]model.MoodDay {
	grid := make(map[int]model.MoodDay)
	for _, d := range days {
		t, err := time.Parse(dateLayout, d.Date)
		if err != nil {
			continue
		}
		if t.Year() == month.Year() && t.Month() == month.Month() {
			grid[t.Day()] = d
		}
	}
	return grid
}

// Months lists the distinct months present in days, newest first.
func Months(days []model.MoodDay) []time.Time {
	seen := make(map[time.Time]struct{})
	var out []time.Time
	for _, d := range days {
		t, err := time.Parse(dateLayout, d.Date)
		if err != nil {
			continue
		}
		m := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
		if _, ok := seen[m]; ok {
			continue
		}
		seen[m] = struct{}{}
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].After(out[j]) })
	return out
}

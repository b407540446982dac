package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// EventType describes the nature of a persistence change notification.
type EventType int

const (
	// EventSessionChanged means the stored session was written or erased,
	// usually by a login or logout in another process.
	EventSessionChanged EventType = iota
)

// Event is emitted by Watch when the stored session changes.
type Event struct {
	Type EventType
}

// Watch streams change events until ctx is cancelled. The channel is closed
// once ctx is done or the watcher fails.
func Watch(ctx context.Context, p Persistence) (<-chan Event, error) {
	base := p.BasePath()
	if base == "" {
		return nil, errors.New("store: persistence base path unknown")
	}
	if err := os.MkdirAll(base, 0o700); err != nil {
		return nil, fmt.Errorf("store: ensure base path: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("store: create watcher: %w", err)
	}
	if err := watcher.Add(base); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("store: watch %s: %w", base, err)
	}

	events := make(chan Event, 8)
	target := filepath.Join(base, sessionKey)

	go func() {
		defer close(events)
		defer watcher.Close()

		send := func(ev Event) {
			select {
			case events <- ev:
			default:
				// The consumer reloads the whole session on any event, so a
				// dropped duplicate loses nothing.
			}
		}

		throttle := newEventThrottle(100 * time.Millisecond)
		defer throttle.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-watcher.Errors:
				if !ok {
					return
				}
				throttle.Enqueue(Event{Type: EventSessionChanged}, send)
			case evt, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(evt.Name) != target {
					continue
				}
				throttle.Enqueue(Event{Type: EventSessionChanged}, send)
			}
		}
	}()

	return events, nil
}

// eventThrottle coalesces bursts of filesystem notifications (diskv writes
// through a temp file and a rename) into one event.
type eventThrottle struct {
	mu      sync.Mutex
	timer   *time.Timer
	pending map[EventType]struct{}
	delay   time.Duration
}

func newEventThrottle(delay time.Duration) *eventThrottle {
	return &eventThrottle{
		delay:   delay,
		pending: make(map[EventType]struct{}),
	}
}

func (t *eventThrottle) Enqueue(ev Event, send func(Event)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pending[ev.Type] = struct{}{}
	if t.timer == nil {
		t.timer = time.AfterFunc(t.delay, func() {
			t.flush(send)
		})
	}
}

func (t *eventThrottle) flush(send func(Event)) {
	t.mu.Lock()
	pending := t.pending
	t.pending = make(map[EventType]struct{})
	t.timer = nil
	t.mu.Unlock()

	for eventType := range pending {
		send(Event{Type: eventType})
	}
}

func (t *eventThrottle) Stop() {
	t.mu.Lock()
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	t.mu.Unlock()
}

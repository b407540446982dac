// Package voice turns speech recognition results into entry text.
//
// A Recognizer is an optional host capability. A Capture records one
// dictation session on top of it: recognized text is appended after the
// text that was in the entry box when recording started.
package voice

import (
	"context"
	"errors"
	"strings"
	"sync"
)

// Error codes a Recognizer reports through Handler.OnError.
const (
	CodeNoSpeech = "no-speech"
	CodeAborted  = "aborted"
)

// ErrUnavailable is returned by Start when the host has no recognizer.
var ErrUnavailable = errors.New("voice: speech recognition unavailable")

// Segment is one recognized phrase. Interim segments may be replaced by
// later events of the same recording.
type Segment struct {
	Transcript string
	Final      bool
}

// Handler receives recognizer events. OnResult is always given every
// segment of the current recording, not just the new ones.
type Handler interface {
	OnResult(segments []Segment)
	OnError(code string)
	OnEnd()
}

// Recognizer is a speech to text capability.
type Recognizer interface {
	Available() bool
	Start(ctx context.Context, h Handler) error
	Stop() error
}

// Unavailable is the Recognizer of a host without speech support.
type Unavailable struct{}

func (Unavailable) Available() bool                      { return false }
func (Unavailable) Start(context.Context, Handler) error { return ErrUnavailable }
func (Unavailable) Stop() error                          { return nil }

// Capture is a dictation session bound to an entry's text.
type Capture struct {
	rec Recognizer

	mu        sync.Mutex
	baseline  string
	text      string
	listening bool
	message   string
	// pending is set when text changed since the last Take.
	pending bool
	// dropped recordings ignore late results until the next Start.
	dropped bool

	updates chan struct{}
}

// NewCapture returns an idle Capture. A nil Recognizer means Unavailable.
func NewCapture(rec Recognizer) *Capture {
	if rec == nil {
		rec = Unavailable{}
	}
	return &Capture{rec: rec, updates: make(chan struct{}, 1)}
}

// Available reports whether dictation can be offered at all.
func (c *Capture) Available() bool {
	return c.rec.Available()
}

// Updates signals whenever Text, Listening or Message changed. Signals are
// coalesced.
func (c *Capture) Updates() <-chan struct{} {
	return c.updates
}

// Start begins a recording. current is the entry text right now; it
// becomes the baseline the recognized words are appended to.
func (c *Capture) Start(ctx context.Context, current string) error {
	if !c.rec.Available() {
		return ErrUnavailable
	}
	c.mu.Lock()
	if c.listening {
		c.mu.Unlock()
		return nil
	}
	c.baseline = strings.TrimRight(current, " \t\n")
	c.text = current
	c.listening = true
	c.message = ""
	c.pending = false
	c.dropped = false
	c.mu.Unlock()

	if err := c.rec.Start(ctx, c); err != nil {
		c.mu.Lock()
		c.listening = false
		c.message = "Voice input failed: " + err.Error()
		c.mu.Unlock()
		c.notify()
		return err
	}
	c.notify()
	return nil
}

// Stop ends the recording. The recognizer reports the stop as aborted,
// which is not shown to the user.
func (c *Capture) Stop() error {
	c.mu.Lock()
	listening := c.listening
	c.listening = false
	c.mu.Unlock()
	if !listening {
		return nil
	}
	c.notify()
	return c.rec.Stop()
}

// Reset stops the recording and forgets its text. Results the recognizer
// still delivers for it are ignored.
func (c *Capture) Reset() error {
	err := c.Stop()
	c.mu.Lock()
	c.baseline = ""
	c.text = ""
	c.message = ""
	c.pending = false
	c.dropped = true
	c.mu.Unlock()
	return err
}

// Take returns the entry text if it changed since the last Take.
func (c *Capture) Take() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.pending {
		return "", false
	}
	c.pending = false
	return c.text, true
}

// Text is the entry text including what has been recognized so far.
func (c *Capture) Text() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.text
}

// Listening reports whether a recording is running.
func (c *Capture) Listening() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.listening
}

// Message is the last user visible problem, empty if none.
func (c *Capture) Message() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.message
}

// OnResult implements Handler.
func (c *Capture) OnResult(segments []Segment) {
	parts := make([]string, 0, len(segments))
	for _, s := range segments {
		if t := strings.TrimSpace(s.Transcript); t != "" {
			parts = append(parts, t)
		}
	}
	spoken := strings.Join(parts, " ")

	c.mu.Lock()
	if c.dropped {
		c.mu.Unlock()
		return
	}
	c.pending = true
	switch {
	case spoken == "":
		c.text = c.baseline
	case c.baseline == "":
		c.text = spoken
	default:
		c.text = c.baseline + " " + spoken
	}
	c.mu.Unlock()
	c.notify()
}

// OnError implements Handler.
func (c *Capture) OnError(code string) {
	msg := Describe(code)
	c.mu.Lock()
	c.listening = false
	if msg != "" {
		c.message = msg
	}
	c.mu.Unlock()
	c.notify()
}

// OnEnd implements Handler.
func (c *Capture) OnEnd() {
	c.mu.Lock()
	c.listening = false
	c.mu.Unlock()
	c.notify()
}

func (c *Capture) notify() {
	select {
	case c.updates <- struct{}{}:
	default:
	}
}

// Describe maps a recognizer error code to a status message. Aborted
// recordings are expected after a manual stop and map to "".
func Describe(code string) string {
	switch code {
	case CodeAborted:
		return ""
	case CodeNoSpeech:
		return "No speech detected. Try again."
	default:
		return "Voice input failed. Check your microphone and try again."
	}
}

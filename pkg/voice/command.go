package voice

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"sync"

	"go.uber.org/zap"

	"tableflip.dev/moodlog/pkg/logging"
)

// CodeCommandFailed is reported when the dictation command exits with an
// error.
const CodeCommandFailed = "command-failed"

// CommandRecognizer runs an external dictation program. Every line it
// prints on stdout is one final segment.
type CommandRecognizer struct {
	name string
	args []string
	log  *zap.Logger

	mu      sync.Mutex
	cancel  context.CancelFunc
	stopped bool
}

// NewCommandRecognizer splits command on whitespace into a program and its
// arguments. An empty command yields a recognizer that is not available.
func NewCommandRecognizer(command string, log *zap.Logger) *CommandRecognizer {
	fields := strings.Fields(command)
	r := &CommandRecognizer{log: logging.OrNop(log)}
	if len(fields) > 0 {
		r.name, r.args = fields[0], fields[1:]
	}
	return r
}

// Available reports whether the command can be found.
func (r *CommandRecognizer) Available() bool {
	if r.name == "" {
		return false
	}
	_, err := exec.LookPath(r.name)
	return err == nil
}

// Start launches the command and feeds its output to h until it exits.
func (r *CommandRecognizer) Start(ctx context.Context, h Handler) error {
	if r.name == "" {
		return ErrUnavailable
	}
	r.mu.Lock()
	if r.cancel != nil {
		r.mu.Unlock()
		return errors.New("voice: already recording")
	}
	ctx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.stopped = false
	r.mu.Unlock()

	cmd := exec.CommandContext(ctx, r.name, r.args...)
	out, err := cmd.StdoutPipe()
	if err != nil {
		r.finish()
		return fmt.Errorf("voice: stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		r.finish()
		return fmt.Errorf("voice: start %s: %w", r.name, err)
	}
	r.log.Debug("dictation started", zap.String("command", r.name))

	go func() {
		var segments []Segment
		sc := bufio.NewScanner(out)
		for sc.Scan() {
			line := strings.TrimSpace(sc.Text())
			if line == "" {
				continue
			}
			segments = append(segments, Segment{Transcript: line, Final: true})
			h.OnResult(append([]Segment(nil), segments...))
		}
		werr := cmd.Wait()
		stopped := r.finish()

		switch {
		case stopped:
			h.OnError(CodeAborted)
		case werr != nil:
			r.log.Warn("dictation command failed", zap.String("command", r.name), zap.Error(werr))
			h.OnError(CodeCommandFailed)
		case len(segments) == 0:
			h.OnError(CodeNoSpeech)
		}
		h.OnEnd()
	}()
	return nil
}

// Stop kills a running command.
func (r *CommandRecognizer) Stop() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel != nil {
		r.stopped = true
		r.cancel()
	}
	return nil
}

// finish releases the running command and reports whether Stop ended it.
func (r *CommandRecognizer) finish() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
	return r.stopped
}

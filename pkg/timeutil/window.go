// Package timeutil parses the compact time windows accepted by
// `moodlog history --since`.
package timeutil

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	Day  = 24 * time.Hour
	Week = 7 * Day
)

var units = []struct {
	suffix byte
	size   time.Duration
}{
	{'w', Week},
	{'d', Day},
	{'h', time.Hour},
	{'m', time.Minute},
}

// ParseWindow reads windows such as "3d", "1w" or "1w2d12h".
func ParseWindow(input string) (time.Duration, error) {
	rest := strings.ToLower(strings.TrimSpace(input))
	if rest == "" {
		return 0, fmt.Errorf("empty window")
	}

	var total time.Duration
	for rest != "" {
		i := strings.IndexFunc(rest, func(r rune) bool { return r < '0' || r > '9' })
		if i <= 0 {
			return 0, fmt.Errorf("invalid window %q: expected a number followed by w, d, h or m", input)
		}
		n, err := strconv.Atoi(rest[:i])
		if err != nil {
			return 0, fmt.Errorf("invalid window %q: %w", input, err)
		}
		size, ok := unitSize(rest[i])
		if !ok {
			return 0, fmt.Errorf("invalid window %q: unknown unit %q", input, rest[i:i+1])
		}
		total += time.Duration(n) * size
		rest = rest[i+1:]
	}
	if total <= 0 {
		return 0, fmt.Errorf("window must be greater than zero")
	}
	return total, nil
}

// FormatWindow renders d with the largest units first. Seconds are dropped.
func FormatWindow(d time.Duration) string {
	var b strings.Builder
	for _, u := range units {
		if n := d / u.size; n > 0 {
			fmt.Fprintf(&b, "%d%c", n, u.suffix)
			d -= n * u.size
		}
	}
	if b.Len() == 0 {
		return "0m"
	}
	return b.String()
}

func unitSize(c byte) (time.Duration, bool) {
	for _, u := range units {
		if u.suffix == c {
			return u.size, true
		}
	}
	return 0, false
}

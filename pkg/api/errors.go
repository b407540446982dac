package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/muesli/reflow/truncate"
)

// maxDetailWidth caps plain text error bodies shown to the user.
const maxDetailWidth = 120

// NetworkError is a transport level failure: the request never produced an
// HTTP response.
type NetworkError struct {
	Op  string
	URL string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// HTTPError is any non-2xx response. Status codes are not otherwise
// differentiated; see IsUnauthorized.
type HTTPError struct {
	Method string
	Path   string
	Status int
	Body   []byte
}

func (e *HTTPError) Error() string {
	msg := fmt.Sprintf("request failed: %d %s", e.Status, http.StatusText(e.Status))
	if detail := e.Detail(); detail != "" {
		msg += ": " + detail
	}
	return msg
}

// Detail extracts the "detail" message FastAPI style servers send with an
// error, or the first line of a plain body.
func (e *HTTPError) Detail() string {
	if len(e.Body) == 0 {
		return ""
	}
	var body struct {
		Detail json.RawMessage `json:"detail"`
		Error  string          `json:"error"`
	}
	if err := json.Unmarshal(e.Body, &body); err == nil {
		var s string
		if json.Unmarshal(body.Detail, &s) == nil && s != "" {
			return s
		}
		if body.Error != "" {
			return body.Error
		}
		return ""
	}
	line := strings.TrimSpace(strings.SplitN(string(e.Body), "\n", 2)[0])
	return truncate.String(line, maxDetailWidth)
}

// DecodeError means the server answered 2xx with a body that is not the
// expected JSON.
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %v", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// LoginRejectedError is returned when the login endpoint answers without a
// token, for example for an unknown username.
type LoginRejectedError struct {
	Message string
	Allowed []string
}

func (e *LoginRejectedError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = "login rejected"
	}
	if len(e.Allowed) > 0 {
		msg += fmt.Sprintf(" (try: %s)", strings.Join(e.Allowed, ", "))
	}
	return msg
}

// IsUnauthorized reports whether err is an HTTP 401.
func IsUnauthorized(err error) bool {
	return StatusCode(err) == http.StatusUnauthorized
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var he *HTTPError
	if errors.As(err, &he) {
		return he.Status
	}
	return 0
}

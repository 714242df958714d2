package client

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/goccy/go-json"
)

// ErrTransport matches every *TransportError with errors.Is.
var ErrTransport = errors.New("transport failure")

// ErrUnsupported is returned by resource operations the backend does not
// expose, such as creating a subscriber.
var ErrUnsupported = errors.New("operation not supported by resource")

// TransportError is a failure to get any HTTP response from the backend.
type TransportError struct {
	Method string
	URL    string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

func (e *TransportError) Is(target error) bool { return target == ErrTransport }

// ServerError is a non-2xx response. Message comes from the structured
// error body when the backend sent one.
type ServerError struct {
	Status  int
	Message string
	Body    []byte
}

func (e *ServerError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("backend %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("backend %d: %s", e.Status, http.StatusText(e.Status))
}

// IsUnauthorized reports whether err is a 401 from the backend.
func IsUnauthorized(err error) bool {
	var se *ServerError
	return errors.As(err, &se) && se.Status == http.StatusUnauthorized
}

// IsNotFound reports whether err is a 404 from the backend.
func IsNotFound(err error) bool {
	var se *ServerError
	return errors.As(err, &se) && se.Status == http.StatusNotFound
}

// Message returns a short human-readable description of err for flash
// messages and inline error states.
func Message(err error) string {
	var se *ServerError
	if errors.As(err, &se) {
		if se.Message != "" {
			return se.Message
		}
		return http.StatusText(se.Status)
	}
	if errors.Is(err, ErrTransport) {
		return "The server could not be reached. Try again later."
	}
	if err == nil {
		return ""
	}
	return err.Error()
}

type errorBody struct {
	Message string `json:"message"`
	Error   any    `json:"error"`
	Errors  any    `json:"errors"`
}

func newServerError(status int, body []byte) *ServerError {
	se := &ServerError{Status: status, Body: body}
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil {
		return se
	}
	switch {
	case eb.Message != "":
		se.Message = eb.Message
	case eb.Error != nil:
		se.Message = describe(eb.Error)
	case eb.Errors != nil:
		se.Message = describe(eb.Errors)
	}
	return se
}

func describe(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case map[string]any:
		if m, ok := t["message"].(string); ok {
			return m
		}
	case []any:
		if len(t) > 0 {
			return describe(t[0])
		}
	}
	return ""
}

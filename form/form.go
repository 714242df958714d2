// Package form describes dialog fields and validates submitted values.
package form

import (
	"fmt"
	"net/mail"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"
)

// Kind selects the input control and the format check for a field.
type Kind string

const (
	Text     Kind = "text"
	TextArea Kind = "textarea"
	Email    Kind = "email"
	URL      Kind = "url"
	Date     Kind = "date"
	File     Kind = "file"
)

// DateLayout is the value format of <input type="date">.
const DateLayout = "2006-01-02"

// Field is one input of a create or update dialog.
type Field struct {
	Name     string
	Label    string
	Kind     Kind
	Required bool
	MaxLen   int
	Help     string
}

// InputType returns the HTML input type for single-line kinds.
func (f Field) InputType() string {
	switch f.Kind {
	case Email, URL, Date, File:
		return string(f.Kind)
	default:
		return "text"
	}
}

// Errors maps a field name to its message. Empty means valid.
type Errors map[string]string

func (e Errors) Has(name string) bool {
	_, ok := e[name]
	return ok
}

func (e Errors) Get(name string) string {
	return e[name]
}

// Error joins the messages so Errors can be returned as an error.
func (e Errors) Error() string {
	parts := make([]string, 0, len(e))
	for k, v := range e {
		parts = append(parts, k+": "+v)
	}
	return "form: " + strings.Join(parts, "; ")
}

// Validate checks values against fields. File fields are only checked for
// presence when present is supplied; their content is handled by the caller.
func Validate(fields []Field, values url.Values, present map[string]bool) Errors {
	errs := Errors{}
	for _, f := range fields {
		v := strings.TrimSpace(values.Get(f.Name))
		if f.Kind == File {
			if f.Required && v == "" && !present[f.Name] {
				errs[f.Name] = fmt.Sprintf("%s is required", f.Label)
			}
			continue
		}
		if v == "" {
			if f.Required {
				errs[f.Name] = fmt.Sprintf("%s is required", f.Label)
			}
			continue
		}
		if f.MaxLen > 0 && utf8.RuneCountInString(v) > f.MaxLen {
			errs[f.Name] = fmt.Sprintf("%s must be at most %d characters", f.Label, f.MaxLen)
			continue
		}
		if msg := checkFormat(f, v); msg != "" {
			errs[f.Name] = msg
		}
	}
	return errs
}

func checkFormat(f Field, v string) string {
	switch f.Kind {
	case Email:
		addr, err := mail.ParseAddress(v)
		if err != nil || addr.Address != v {
			return "Enter a valid email address"
		}
	case URL:
		u, err := url.Parse(v)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return "Enter a valid http(s) URL"
		}
	case Date:
		if _, err := time.Parse(DateLayout, v); err != nil {
			return "Enter a date as YYYY-MM-DD"
		}
	}
	return ""
}

// Values returns the trimmed submitted value for every field, in field order.
func Values(fields []Field, values url.Values) map[string]string {
	out := make(map[string]string, len(fields))
	for _, f := range fields {
		out[f.Name] = strings.TrimSpace(values.Get(f.Name))
	}
	return out
}

// Package formutil provides helpers for reading console forms and
// re-rendering them with validation errors.
//
// When a form submission fails validation, the form is re-rendered with
// the values the operator entered, an error message, and whatever lookup
// data the form needs (dropdowns, etc.).
//
// Example usage:
//
//	type teamFormData struct {
//		formutil.Base
//		NomEquipe string
//	}
//
//	data := teamFormData{NomEquipe: formutil.Text(r, "nomEquipe")}
//	formutil.SetBase(&data.Base, w, r, "New Team", "/teams")
//	data.SetError("Team name is required.")
//	formutil.Render(w, r, "team_new", "team_form", data)
package formutil

import (
	"html/template"
	"net/http"
	"strconv"
	"strings"

	"github.com/dalemusser/deskhub/internal/app/system/viewdata"
	"github.com/dalemusser/deskhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/microcosm-cc/bluemonday"
)

// Base contains common fields for form pages that can be embedded in form data structs.
type Base struct {
	viewdata.BaseVM
	Error  template.HTML
	Errors map[string]string // per-field messages
}

// SetBase populates the common Base fields from the request context.
// w may be nil when the form is rendered as a fragment.
func SetBase(b *Base, w http.ResponseWriter, r *http.Request, title, backDefault string) {
	b.BaseVM = viewdata.NewBaseVM(w, r, title, backDefault)
}

// SetError sets the form-level error message. msg is escaped.
func (b *Base) SetError(msg string) {
	b.Error = template.HTML(template.HTMLEscapeString(msg))
}

// FieldError records a message for one field.
func (b *Base) FieldError(field, msg string) {
	if b.Errors == nil {
		b.Errors = map[string]string{}
	}
	b.Errors[field] = msg
}

// HasErrors reports whether any form or field error is set.
func (b *Base) HasErrors() bool {
	return b.Error != "" || len(b.Errors) > 0
}

// Require records a field error when value is empty.
func (b *Base) Require(field, label, value string) bool {
	if value == "" {
		b.FieldError(field, label+" is required.")
		return false
	}
	return true
}

// MaxLen records a field error when value is longer than n runes.
func (b *Base) MaxLen(field, label, value string, n int) bool {
	if len([]rune(value)) > n {
		b.FieldError(field, label+" must be at most "+strconv.Itoa(n)+" characters.")
		return false
	}
	return true
}

// FirstError returns the form-level error, or any field error, as text.
func (b *Base) FirstError() string {
	if b.Error != "" {
		return string(b.Error)
	}
	for _, msg := range b.Errors {
		return msg
	}
	return ""
}

// Option is one entry of a parent select. ID 0 is the "None" entry.
type Option struct {
	ID       int64
	Label    string
	Selected bool
}

// Options builds select entries for items, marking selected. When none is
// true a leading "None" entry is added.
func Options[T any](items []T, id func(T) int64, label func(T) string, selected int64, none bool) []Option {
	out := make([]Option, 0, len(items)+1)
	if none {
		out = append(out, Option{ID: 0, Label: "None", Selected: selected == 0})
	}
	for _, it := range items {
		i := id(it)
		out = append(out, Option{ID: i, Label: label(it), Selected: i == selected})
	}
	return out
}

// Ref turns a select value into a reference. 0 means unassigned.
func Ref(id int64) *models.Ref {
	if id <= 0 {
		return nil
	}
	return models.NewRef(id)
}

var strict = bluemonday.StrictPolicy()

// Clean strips all markup from s and trims surrounding space. Values sent
// to the backend are plain text and are rendered elsewhere without escaping.
func Clean(s string) string {
	return strings.TrimSpace(strict.Sanitize(s))
}

// Text returns the cleaned form value for key.
func Text(r *http.Request, key string) string {
	return Clean(r.FormValue(key))
}

// Secret returns the raw form value for key. Passwords are never sanitized.
func Secret(r *http.Request, key string) string {
	return r.FormValue(key)
}

// ID parses a positive integer form value. It returns 0 when the value is
// empty, malformed, or not positive.
func ID(r *http.Request, key string) int64 {
	return ParseID(r.FormValue(key))
}

// ParseID parses a positive integer id, returning 0 on failure.
func ParseID(s string) int64 {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || n <= 0 {
		return 0
	}
	return n
}

// IsHTMX reports whether r was issued by htmx.
func IsHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// Render shows a form. htmx requests get the modal fragment, swapped into
// #modal; plain requests get the full page.
func Render(w http.ResponseWriter, r *http.Request, page, modal string, data any) {
	if IsHTMX(r) {
		templates.RenderSnippet(w, modal, data)
		return
	}
	templates.Render(w, r, page, data)
}

// Done ends a successful submission by sending the browser to dest.
func Done(w http.ResponseWriter, r *http.Request, dest string) {
	if IsHTMX(r) {
		w.Header().Set("HX-Redirect", dest)
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, dest, http.StatusSeeOther)
}

// Bool reads a checkbox-style form value.
func Bool(r *http.Request, key string) bool {
	switch strings.ToLower(strings.TrimSpace(r.FormValue(key))) {
	case "1", "on", "true", "yes":
		return true
	}
	return false
}

package view

import (
	"bytes"
	"fmt"
	"html/template"
	"net/http"
	"strings"

	"github.com/atelier-sur-mesure/atelier-admin/internal/shared"
	"github.com/atelier-sur-mesure/atelier-admin/web"
)

// Engine renders HTML templates.
type Engine struct {
	templates *template.Template
	format    *Formatter
}

// TemplateData contains values shared across templates.
type TemplateData struct {
	Title       string
	Section     string
	CSRFToken   string
	Flashes     []shared.FlashMessage
	CurrentPath string
	Errors      shared.FieldErrors
	Data        map[string]any
}

// FieldError returns the inline message for a form field.
func (d TemplateData) FieldError(field string) string {
	return d.Errors.Get(field)
}

// NewEngine parses the embedded templates. currency is an ISO 4217 code.
func NewEngine(currency string) (*Engine, error) {
	format, err := NewFormatter(currency)
	if err != nil {
		return nil, err
	}
	funcMap := template.FuncMap{
		"money":    format.Money,
		"number":   format.Number,
		"currency": format.Symbol,
		"date":     Date,
		"datetime": DateTime,
		"badge":    BadgeClass,
		"label":    Label,
		"add":      func(a, b int) int { return a + b },
		"lower":    strings.ToLower,
		"dict":     dict,
		"contains": func(list []string, v string) bool {
			for _, item := range list {
				if item == v {
					return true
				}
			}
			return false
		},
	}
	tpl, err := template.New("root").Funcs(funcMap).ParseFS(web.Templates,
		"templates/layouts/*.html",
		"templates/partials/*.html",
		"templates/pages/*/*.html",
	)
	if err != nil {
		return nil, err
	}
	return &Engine{templates: tpl, format: format}, nil
}

// Formatter exposes the formatter used by templates, for exports.
func (e *Engine) Formatter() *Formatter {
	return e.format
}

// Render executes a named template into a buffer, then writes it with status.
func (e *Engine) Render(w http.ResponseWriter, status int, name string, data TemplateData) error {
	if e == nil {
		return fmt.Errorf("template engine not initialised")
	}
	var buf bytes.Buffer
	if err := e.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return err
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}

// RenderString executes a named template and returns the HTML, for PDF sheets.
func (e *Engine) RenderString(name string, data TemplateData) (string, error) {
	if e == nil {
		return "", fmt.Errorf("template engine not initialised")
	}
	var buf bytes.Buffer
	if err := e.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// BadgeClass maps a server supplied colour to a CSS class; unknown colours
// fall back to the neutral badge.
func BadgeClass(color string) string {
	switch strings.ToLower(strings.TrimSpace(color)) {
	case "success", "green", "vert":
		return "badge badge-success"
	case "warning", "orange", "yellow", "jaune":
		return "badge badge-warning"
	case "danger", "red", "rouge":
		return "badge badge-danger"
	case "info", "blue", "bleu", "primary":
		return "badge badge-info"
	}
	return "badge"
}

// Label returns the server label, falling back to a humanised status code.
func Label(label, code string) string {
	if strings.TrimSpace(label) != "" {
		return label
	}
	if code == "" {
		return "—"
	}
	s := strings.ReplaceAll(code, "_", " ")
	return strings.ToUpper(s[:1]) + s[1:]
}

func dict(pairs ...any) (map[string]any, error) {
	if len(pairs)%2 != 0 {
		return nil, fmt.Errorf("dict: odd number of arguments")
	}
	out := make(map[string]any, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		key, ok := pairs[i].(string)
		if !ok {
			return nil, fmt.Errorf("dict: key %v is not a string", pairs[i])
		}
		out[key] = pairs[i+1]
	}
	return out, nil
}

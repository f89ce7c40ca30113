package view

import (
	"log/slog"
	"net/http"

	"github.com/atelier-sur-mesure/atelier-admin/internal/shared"
)

// Responder renders pages with the session toasts and CSRF token filled in.
type Responder struct {
	logger    *slog.Logger
	templates *Engine
	csrf      *shared.CSRFManager
}

// Page describes one render.
type Page struct {
	Template string
	Title    string
	Section  string
	Status   int
	Errors   shared.FieldErrors
	Data     map[string]any
}

// NewResponder builds a Responder.
func NewResponder(logger *slog.Logger, templates *Engine, csrf *shared.CSRFManager) *Responder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Responder{logger: logger, templates: templates, csrf: csrf}
}

// Render writes page, consuming pending toasts.
func (rs *Responder) Render(w http.ResponseWriter, r *http.Request, page Page) {
	sess := shared.SessionFromContext(r.Context())
	var token string
	var flashes []shared.FlashMessage
	if sess != nil {
		token, _ = rs.csrf.EnsureToken(sess)
		flashes = sess.PopFlashes()
	}
	status := page.Status
	if status == 0 {
		status = http.StatusOK
	}
	errs := page.Errors
	if errs == nil {
		errs = shared.FieldErrors{}
	}
	data := TemplateData{
		Title:       page.Title,
		Section:     page.Section,
		CSRFToken:   token,
		Flashes:     flashes,
		CurrentPath: r.URL.Path,
		Errors:      errs,
		Data:        page.Data,
	}
	if err := rs.templates.Render(w, status, page.Template, data); err != nil {
		rs.logger.Error("render template", "error", err, "template", page.Template)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

// Redirect queues a toast and redirects with 303.
func (rs *Responder) Redirect(w http.ResponseWriter, r *http.Request, location, kind, message string) {
	if message != "" {
		shared.Flash(r.Context(), kind, message)
	}
	http.Redirect(w, r, location, http.StatusSeeOther)
}

// Fail logs err and redirects with an error toast carrying the user message.
func (rs *Responder) Fail(w http.ResponseWriter, r *http.Request, location, action string, err error) {
	rs.logger.Error(action+" failed", "error", err, "path", r.URL.Path)
	rs.Redirect(w, r, location, shared.FlashError, shared.UserSafeMessage(err))
}

// Logger exposes the logger for handler specific messages.
func (rs *Responder) Logger() *slog.Logger {
	return rs.logger
}

// Templates exposes the engine, for handlers rendering documents.
func (rs *Responder) Templates() *Engine {
	return rs.templates
}

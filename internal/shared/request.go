package shared

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
)

// ParseID parses a positive identifier taken from the URL or a form.
func ParseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, ErrInvalidID
	}
	return id, nil
}

// ParseForm parses urlencoded and multipart bodies alike. Multipart bodies are
// bounded by MaxUploadSize plus some room for the text fields.
func ParseForm(r *http.Request) error {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(MaxUploadSize + 1<<20); err != nil {
			if errors.Is(err, http.ErrNotMultipart) {
				return r.ParseForm()
			}
			return err
		}
		return nil
	}
	return r.ParseForm()
}

// FormBool reads a checkbox value.
func FormBool(r *http.Request, field string) bool {
	switch strings.ToLower(strings.TrimSpace(r.PostFormValue(field))) {
	case "1", "on", "true", "yes", "oui":
		return true
	}
	return false
}

// FormString reads a trimmed form value.
func FormString(r *http.Request, field string) string {
	return strings.TrimSpace(r.PostFormValue(field))
}

// SafeReturn accepts a local return path from a form and falls back otherwise.
func SafeReturn(raw, fallback string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" || !strings.HasPrefix(raw, "/") || strings.HasPrefix(raw, "//") || strings.Contains(raw, "\\") {
		return fallback
	}
	return raw
}

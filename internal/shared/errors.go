package shared

import (
	"context"
	"errors"

	"github.com/atelier-sur-mesure/atelier-admin/internal/platform/api"
)

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrInvalidID indicates a malformed identifier in the URL.
	ErrInvalidID = errors.New("invalid id")
	// ErrActionNotAllowed is returned when the current status does not offer the action.
	ErrActionNotAllowed = errors.New("action not allowed in current status")
	// ErrCSRFTokenMissing occurs when CSRF token missing.
	ErrCSRFTokenMissing = errors.New("csrf token missing")
	// ErrCSRFTokenMismatch occurs when CSRF tokens do not match.
	ErrCSRFTokenMismatch = errors.New("csrf token mismatch")
)

// UserSafeMessage maps an error to the message shown in a toast. Backend
// messages are passed through because the API writes them for end users.
func UserSafeMessage(err error) string {
	if err == nil {
		return ""
	}
	if verr, ok := api.AsValidation(err); ok {
		if verr.Message != "" {
			return verr.Message
		}
		return "Certains champs sont invalides."
	}
	switch {
	case errors.Is(err, ErrActionNotAllowed):
		return "Cette action n'est pas disponible pour ce statut."
	case errors.Is(err, ErrInvalidID), errors.Is(err, ErrNotFound), errors.Is(err, api.ErrNotFound):
		return "Élément introuvable."
	case errors.Is(err, api.ErrUnauthorized):
		return "Session API expirée, veuillez vérifier le jeton d'accès."
	case errors.Is(err, api.ErrForbidden):
		return "Vous n'avez pas les droits pour cette action."
	case errors.Is(err, api.ErrUnavailable), errors.Is(err, context.DeadlineExceeded):
		return "Le serveur ne répond pas, réessayez dans un instant."
	}
	var apiErr *api.Error
	if errors.As(err, &apiErr) && apiErr.Message != "" && apiErr.Status < 500 {
		return apiErr.Message
	}
	return "Une erreur est survenue."
}

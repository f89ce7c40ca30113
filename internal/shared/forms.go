package shared

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/atelier-sur-mesure/atelier-admin/internal/platform/api"
)

// FieldErrors maps a form field name to the message shown under it.
type FieldErrors map[string]string

// Add records msg for field unless a message is already present.
func (fe FieldErrors) Add(field, msg string) {
	if _, ok := fe[field]; ok {
		return
	}
	fe[field] = msg
}

// Has reports whether field has an error.
func (fe FieldErrors) Has(field string) bool {
	_, ok := fe[field]
	return ok
}

// Get returns the message for field.
func (fe FieldErrors) Get(field string) string {
	return fe[field]
}

// Any reports whether at least one error is recorded.
func (fe FieldErrors) Any() bool {
	return len(fe) > 0
}

// FieldErrorsFrom extracts inline messages from a backend validation error.
// Laravel reports nested fields with dots (articles.0.quantite); they are kept as is.
func FieldErrorsFrom(err error) FieldErrors {
	fe := FieldErrors{}
	if verr, ok := api.AsValidation(err); ok {
		for _, name := range verr.FieldNames() {
			fe.Add(name, verr.First(name))
		}
		return fe
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, ve := range verrs {
			fe.Add(ve.Field(), validationMessage(ve))
		}
	}
	return fe
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// Validator returns the shared validator, reporting field names from `form` tags.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(field reflect.StructField) string {
			name := strings.SplitN(field.Tag.Get("form"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				return field.Name
			}
			return name
		})
	})
	return validate
}

// ValidateForm checks v and returns inline errors, or nil when v is valid.
func ValidateForm(v any) FieldErrors {
	err := Validator().Struct(v)
	if err == nil {
		return nil
	}
	fe := FieldErrorsFrom(err)
	if len(fe) == 0 {
		fe.Add("general", "Formulaire invalide.")
	}
	return fe
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "required_if", "required_with":
		return "Ce champ est obligatoire."
	case "email":
		return "Adresse e-mail invalide."
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("Au moins %s caractères.", fe.Param())
		}
		return fmt.Sprintf("Doit être supérieur ou égal à %s.", fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("Au plus %s caractères.", fe.Param())
		}
		return fmt.Sprintf("Doit être inférieur ou égal à %s.", fe.Param())
	case "gt":
		return fmt.Sprintf("Doit être supérieur à %s.", fe.Param())
	case "gte":
		return fmt.Sprintf("Doit être supérieur ou égal à %s.", fe.Param())
	case "oneof":
		return "Valeur non autorisée."
	case "e164", "numeric":
		return "Numéro invalide."
	case "datetime":
		return "Date invalide."
	}
	return "Valeur invalide."
}

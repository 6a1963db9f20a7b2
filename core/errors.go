package core

import "github.com/pkg/errors"

// FieldError is used to indicate an error with a specific input field.
type FieldError struct {
	Field string
	Error string
}

type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		return ""
	}
	return err.Err.Error()
}

// AuthErrorKind classifies identity-service and document-store failures into
// the categories surfaced to users. The remote layers return these explicitly;
// callers match on the kind, never on concrete SDK error types.
type AuthErrorKind int

const (
	AuthErrUnknown AuthErrorKind = iota
	AuthErrInvalidCredentials
	AuthErrEmailExists
	AuthErrWeakPassword
	AuthErrInvalidEmail
	AuthErrUserDisabled
	AuthErrRateLimited
	AuthErrNetwork
	AuthErrNotFound
)

type AuthError struct {
	Kind AuthErrorKind
	Err  error
}

func NewAuthError(kind AuthErrorKind, err error) error {
	return &AuthError{Kind: kind, Err: err}
}

func (err AuthError) Error() string {
	if err.Err == nil {
		return err.Message()
	}
	return err.Err.Error()
}

func (err AuthError) Unwrap() error { return err.Err }

// Message is the user-facing text for this failure category.
func (err AuthError) Message() string {
	switch err.Kind {
	case AuthErrInvalidCredentials:
		return "Email o contraseña incorrectos. Verifica tus datos."
	case AuthErrEmailExists:
		return "Este correo electrónico ya está registrado."
	case AuthErrWeakPassword:
		return "La contraseña es demasiado débil. Usa al menos 6 caracteres."
	case AuthErrInvalidEmail:
		return "El formato del correo electrónico no es válido."
	case AuthErrUserDisabled:
		return "Esta cuenta ha sido deshabilitada."
	case AuthErrRateLimited:
		return "Demasiados intentos. Espera unos minutos e intenta nuevamente."
	case AuthErrNetwork:
		return "Error de conexión. Verifica tu internet e intenta nuevamente."
	case AuthErrNotFound:
		return "No encontrado."
	}
	return "Ocurrió un error inesperado. Intenta nuevamente."
}

// AuthErrorOf returns the AuthError in err's chain, if any.
func AuthErrorOf(err error) (*AuthError, bool) {
	aerr, ok := errors.Cause(err).(*AuthError)
	return aerr, ok
}

package shared

import "errors"

// DomainError represents a domain-level error.
// Message is user facing and therefore written in French.
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// Is matches domain errors by code so that a freshly built error with the
// same code satisfies errors.Is against the sentinels below.
func (e *DomainError) Is(target error) bool {
	var t *DomainError
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrNotFound            = NewDomainError("NOT_FOUND", "Ressource introuvable")
	ErrAlreadyExists       = NewDomainError("ALREADY_EXISTS", "Cette ressource existe déjà")
	ErrInvalidInput        = NewDomainError("INVALID_INPUT", "Données invalides")
	ErrConcurrencyConflict = NewDomainError("CONCURRENT_MODIFICATION", "La ressource a été modifiée entre-temps, veuillez réessayer")
	ErrUnauthorized        = NewDomainError("UNAUTHORIZED", "Vous devez être connecté")
	ErrForbidden           = NewDomainError("FORBIDDEN", "Vous n'avez pas accès à cette ressource")
	ErrInvalidState        = NewDomainError("INVALID_STATE", "Opération impossible dans l'état actuel")
	ErrInsufficientStock   = NewDomainError("INSUFFICIENT_STOCK", "Stock insuffisant pour ce produit")
	ErrInUse               = NewDomainError("IN_USE", "Cette ressource est encore utilisée")
)

// IsDomainError reports whether err carries a DomainError and returns it
func IsDomainError(err error) (*DomainError, bool) {
	var de *DomainError
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

package shared

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// Is reports whether target carries the same domain error code, so callers
// can use errors.Is against the sentinel values below even when a wrapped
// copy with a more specific message is returned.
func (e *DomainError) Is(target error) bool {
	if other, ok := target.(*DomainError); ok {
		return e.Code == other.Code
	}
	return false
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
	ErrNotFound      = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput  = NewDomainError("INVALID_INPUT", "Invalid input provided")

	// ErrAccessDenied is returned when the permission gate or module gate denies an action.
	ErrAccessDenied = NewDomainError("ACCESS_DENIED", "Not authorized to perform this action")

	// ErrScopeViolation is returned when a record's owning entity is outside the
	// caller's resolved entity set. Handled like ErrAccessDenied but logged
	// separately: it indicates a stale session or a cross-tenant probe.
	ErrScopeViolation = NewDomainError("SCOPE_VIOLATION", "Record is outside the accessible entity scope")

	// ErrSequenceExhausted is returned when the bounded collision walk for a
	// short reference code runs out of candidates.
	ErrSequenceExhausted = NewDomainError("SEQUENCE_EXHAUSTED", "Unable to generate a unique code, supply one manually")

	// ErrInvalidCodeFormat is returned when a caller-supplied code fails the
	// fixed format check, before any storage probe.
	ErrInvalidCodeFormat = NewDomainError("INVALID_CODE_FORMAT", "Code must be exactly three uppercase letters")

	// ErrTransientStorage is returned when an atomic storage step could not
	// complete. No partial state is visible, so the call is safe to retry.
	ErrTransientStorage = NewDomainError("TRANSIENT_STORAGE", "Storage operation failed, retry the request")

	// ErrUnknownTaxStatus is returned for a counterparty tax status outside the
	// enumerated set. This is a data-integrity fault, never silently defaulted.
	ErrUnknownTaxStatus = NewDomainError("UNKNOWN_TAX_STATUS", "Unknown counterparty tax status")
)

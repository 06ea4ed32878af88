package dto

// Error codes of the JSON mirror.
const (
	CodeValidation           = "VALIDATION_ERROR"
	CodeUnauthenticated      = "UNAUTHENTICATED"
	CodeForbidden            = "FORBIDDEN"
	CodeNotFound             = "NOT_FOUND"
	CodeConflict             = "CONFLICT"
	CodeConfirmationRequired = "CONFIRMATION_REQUIRED"
	CodeRemote               = "REMOTE_API_ERROR"
	CodeInternal             = "INTERNAL_ERROR"
)

type APIErrorResponse struct {
	Code    string       `json:"code"`
	Message string       `json:"message"`
	Details []FieldError `json:"details,omitempty"`
}

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

package usecase

// Synchronous-phase failure codes. Everything after the stream starts is
// reported through the broadcast channel, never through these.
const (
	CodeValidationError = "VALIDATION_ERROR"
	CodeInvalidLeadID   = "INVALID_LEAD_ID"
	CodeLeadNotFound    = "LEAD_NOT_FOUND"
	CodeEmailRequired   = "EMAIL_REQUIRED"
	CodeDatabaseError   = "DATABASE_ERROR"
)


type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}


func IsDomainError(err error) bool {
	_, ok := err.(*DomainError)
	return ok
}


type TechnicalError struct {
	Code    string
	Message string
}

func (e *TechnicalError) Error() string {
	return e.Message
}


func IsTechnicalError(err error) bool {
	_, ok := err.(*TechnicalError)
	return ok
}

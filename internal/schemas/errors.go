package schemas

// CustomError is the error body returned to clients
// Code is a stable machine readable identifier
// Message is a human readable description
// Details maps request fields to validation messages
type CustomError struct {
	Message string            `json:"message"`
	Code    string            `json:"code"`
	Details map[string]string `json:"details,omitempty"`
}

var (
	BadRequest = &CustomError{
		Message: "The request body is invalid. Please check the request body and try again.",
		Code:    "ERR-000",
	}
	ValidationFailed = &CustomError{
		Message: "The given data was invalid.",
		Code:    "ERR-001",
	}
	InvalidCredentials = &CustomError{
		Message: "Invalid credentials.",
		Code:    "ERR-002",
	}
	AccountDoesNotExist = &CustomError{
		Message: "Account does not exist.",
		Code:    "ERR-003",
	}
	InvalidVerificationToken = &CustomError{
		Message: "The verification token is invalid or has expired.",
		Code:    "ERR-004",
	}
	Unauthorized = &CustomError{
		Message: "Unauthorised.",
		Code:    "ERR-005",
	}
	TooManyRequests = &CustomError{
		Message: "Too many requests. Please try again later.",
		Code:    "ERR-006",
	}
	UploadMaxFileSize = &CustomError{
		Message: "The request body is too large.",
		Code:    "UploadMaxFileSizeError",
	}
	InternalServerError = &CustomError{
		Message: "An internal server error occurred. Please try again later.",
		Code:    "ERR-500",
	}
)

// WithDetails returns a copy of the error carrying the given field details.
func (e *CustomError) WithDetails(details map[string]string) *CustomError {
	return &CustomError{Message: e.Message, Code: e.Code, Details: details}
}

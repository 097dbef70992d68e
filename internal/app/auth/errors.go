package auth

// Error is an application-layer error that can be mapped to an HTTP response.
type Error struct {
	Status  int
	Code    string
	Message string
	Details map[string]any

	cause error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Message != "" {
		return e.Message
	}
	return e.Code
}

// Unwrap exposes the failure from an external collaborator, if any.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

func validationError(missing map[string]any) *Error {
	return &Error{Status: 400, Code: "VALIDATION_ERROR", Message: "missing required fields", Details: missing}
}

func passwordTooLong() *Error {
	return &Error{
		Status:  400,
		Code:    "VALIDATION_ERROR",
		Message: "password is too long",
		Details: map[string]any{"password": "too long"},
	}
}

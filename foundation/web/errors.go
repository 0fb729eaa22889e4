package web

// Error is used to pass an error during the request through the
// application with web specific context.
type Error struct {
	Err    error
	Status int
	Fields []FieldError
}

// FieldError is used to indicate an error with a specific request field.
type FieldError struct {
	Field string `json:"field"`
	Error string `json:"error"`
}

// NewRequestError wraps a provided error with an HTTP status code. This
// function should be used when handlers encounter expected errors.
func NewRequestError(err error, status int) error {
	return &Error{Err: err, Status: status}
}

func (err *Error) Error() string {
	return err.Err.Error()
}

// IsRequestError checks if an error of type Error exists.
func IsRequestError(err error) (*Error, bool) {
	if re, ok := err.(*Error); ok {
		return re, true
	}
	return nil, false
}

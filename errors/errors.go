package errors

import "fmt"

// AppError is the error type every kvbridge operation returns.
type AppError struct {
	Code       ErrorCode      `json:"code"`
	Message    string         `json:"message"`
	Retryable  bool           `json:"retryable"`
	HTTPStatus int            `json:"-"`
	Details    map[string]any `json:"details,omitempty"`
	Cause      error          `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap exposes the cause to errors.Is and errors.As.
func (e *AppError) Unwrap() error { return e.Cause }

// WithCause sets the cause and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetail sets one detail and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New builds an AppError whose status and retryability follow from code.
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: StatusOf(code),
		Retryable:  IsRetryableCode(code),
	}
}

// ServiceUnavailable reports that service has no usable client.
func ServiceUnavailable(service string) *AppError {
	return New(ErrCodeServiceUnavailable, fmt.Sprintf("%s client is not available.", service)).
		WithDetail("service", service)
}

// Timeout reports that operation did not finish before its deadline.
func Timeout(operation string) *AppError {
	return New(ErrCodeTimeout, fmt.Sprintf("%s operation timed out.", operation)).
		WithDetail("operation", operation)
}

// StoreFailure wraps an error reported by the store while running op
// ("get", "set", "rpush", "ping").
func StoreFailure(op string, cause error) *AppError {
	return New(ErrCodeStore, fmt.Sprintf("Store %s failed.", op)).
		WithDetail("operation", op).
		WithCause(cause)
}

// InvalidInput reports a field that resolved to nothing usable. reason is
// the message as given.
func InvalidInput(field, reason string) *AppError {
	err := New(ErrCodeInvalidInput, reason)
	if field != "" {
		err.WithDetail("field", field)
	}
	return err
}

// Validation reports failed struct validation.
func Validation(message string) *AppError {
	return New(ErrCodeInvalidInput, message)
}

// MissingField reports a required field that is absent.
func MissingField(field string) *AppError {
	return New(ErrCodeMissingField, fmt.Sprintf("Missing required field: %s", field)).
		WithDetail("field", field)
}

// InvalidFormat reports a field that could not be decoded.
func InvalidFormat(field, expectedFormat string) *AppError {
	return New(ErrCodeInvalidFormat, fmt.Sprintf("Invalid format for %s. Expected: %s", field, expectedFormat)).
		WithDetail("field", field).
		WithDetail("expected_format", expectedFormat)
}

// PayloadTooLarge reports a request body above limit bytes.
func PayloadTooLarge(limit int64) *AppError {
	return New(ErrCodePayloadTooLarge, "Request body too large.").
		WithDetail("limit_bytes", limit)
}

// Internal hides cause behind a generic message.
func Internal(cause error) *AppError {
	return New(ErrCodeInternal, "An unexpected error occurred.").WithCause(cause)
}

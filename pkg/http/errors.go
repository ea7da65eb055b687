package http

import (
	"fmt"
	"net/http"
	"time"
)

// AppError is an error the API reports to clients. Status and the wrapped
// cause never leave the server.
type AppError struct {
	Code      string                 `json:"code"`
	Message   string                 `json:"message"`
	Field     string                 `json:"field,omitempty"`
	Params    map[string]interface{} `json:"params,omitempty"`
	Retryable bool                   `json:"retryable,omitempty"`

	Status     int           `json:"-"`
	RetryAfter time.Duration `json:"-"`
	Err        error         `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *AppError) Unwrap() error { return e.Err }

func NewAppError(code, field, message string, status int) *AppError {
	return &AppError{Code: code, Field: field, Message: message, Status: status}
}

func (e *AppError) WithParam(key string, value interface{}) *AppError {
	if e.Params == nil {
		e.Params = map[string]interface{}{}
	}
	e.Params[key] = value
	return e
}

// WithError attaches the cause for logging and errors.Is checks.
func (e *AppError) WithError(err error) *AppError {
	e.Err = err
	return e
}

// WithRetryAfter marks the error retryable and sets the Retry-After hint.
func (e *AppError) WithRetryAfter(d time.Duration) *AppError {
	e.Retryable = true
	e.RetryAfter = d
	return e
}

func BadRequestError(message string) *AppError {
	return NewAppError("ERR_BAD_REQUEST", "", message, http.StatusBadRequest)
}

func TooManyRequestsError(message string) *AppError {
	return NewAppError("ERR_RATE_LIMITED", "", message, http.StatusTooManyRequests).WithRetryAfter(time.Second)
}

// ServiceUnavailableError reports a missing upstream dependency under code.
func ServiceUnavailableError(code, message string) *AppError {
	e := NewAppError(code, "", message, http.StatusServiceUnavailable)
	e.Retryable = true
	return e
}

func GatewayTimeoutError(message string) *AppError {
	e := NewAppError("ERR_TIMEOUT", "", message, http.StatusGatewayTimeout)
	e.Retryable = true
	return e
}

func InternalError(message string) *AppError {
	return NewAppError("ERR_INTERNAL", "", message, http.StatusInternalServerError)
}

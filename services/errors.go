package services

import (
	"fmt"
	"net/http"
)

// AppError carries the HTTP status a failure should be reported with.
type AppError struct {
	Status  int
	Message string
	Details any
}

func (e *AppError) Error() string {
	return e.Message
}

func NewAppError(status int, message string) *AppError {
	return &AppError{Status: status, Message: message}
}

func (e *AppError) WithDetails(details any) *AppError {
	return &AppError{Status: e.Status, Message: e.Message, Details: details}
}

func BadRequest(format string, args ...any) *AppError {
	return NewAppError(http.StatusBadRequest, fmt.Sprintf(format, args...))
}

func Unauthorized(format string, args ...any) *AppError {
	return NewAppError(http.StatusUnauthorized, fmt.Sprintf(format, args...))
}

func Forbidden(format string, args ...any) *AppError {
	return NewAppError(http.StatusForbidden, fmt.Sprintf(format, args...))
}

func NotFound(format string, args ...any) *AppError {
	return NewAppError(http.StatusNotFound, fmt.Sprintf(format, args...))
}

func Conflict(format string, args ...any) *AppError {
	return NewAppError(http.StatusConflict, fmt.Sprintf(format, args...))
}

func Internal(format string, args ...any) *AppError {
	return NewAppError(http.StatusInternalServerError, fmt.Sprintf(format, args...))
}

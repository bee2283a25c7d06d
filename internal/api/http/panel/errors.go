package panel

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
)

// APIError is the JSON body of every error response.
type APIError struct {
	// Status is the HTTP status code.
	Status int `json:"-"`
	// Code is a stable machine-readable error code.
	Code string `json:"code"`
	// Message is the human-readable description.
	Message string `json:"message"`
	// Details carries the underlying cause, if any.
	Details string `json:"details,omitempty"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func newBadRequestError(message string, cause error) *APIError {
	err := &APIError{
		Status:  http.StatusBadRequest,
		Code:    "BAD_REQUEST",
		Message: message,
	}

	if cause != nil {
		err.Details = cause.Error()
	}

	return err
}

func newConflictError(message string, cause error) *APIError {
	return &APIError{
		Status:  http.StatusConflict,
		Code:    "CONFLICT",
		Message: message,
		Details: cause.Error(),
	}
}

func newInternalError(message string) *APIError {
	return &APIError{
		Status:  http.StatusInternalServerError,
		Code:    "INTERNAL_ERROR",
		Message: message,
	}
}

// ErrorHandler renders every handler error as an APIError.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var (
		apiErr  *APIError
		httpErr *echo.HTTPError
	)

	switch {
	case errors.As(err, &apiErr):
	case errors.As(err, &httpErr):
		apiErr = &APIError{
			Status:  httpErr.Code,
			Code:    "HTTP_ERROR",
			Message: fmt.Sprintf("%v", httpErr.Message),
		}
	default:
		apiErr = newInternalError("an unexpected error occurred")
	}

	_ = c.JSON(apiErr.Status, apiErr)
}

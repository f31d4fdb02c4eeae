package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/beforest/brandvoice/pkg/errors"
)

const genericMessage = "something went wrong"

// HTTPError captures the metadata required to serialize an error response consistently.
type HTTPError struct {
	Status  int
	Code    string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *HTTPError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

func (e *HTTPError) Unwrap() error { return e.Err }

// NewHTTPError is a helper to build an HTTPError instance.
func NewHTTPError(status int, code, message string, err error) *HTTPError {
	return &HTTPError{Status: status, Code: code, Message: message, Err: err}
}

// fromDomainError maps an apperrors code to a status. Server side failures keep
// their code but never leak the underlying message.
func fromDomainError(err error, generic string) *HTTPError {
	code := apperrors.CodeOf(err)
	status := statusForCode(code)
	if status >= http.StatusInternalServerError {
		if code == "" {
			code = "internal_error"
		}
		if generic == "" {
			generic = genericMessage
		}
		return NewHTTPError(status, code, generic, err)
	}
	message := apperrors.MessageOf(err)
	if message == "" {
		message = err.Error()
	}
	return NewHTTPError(status, code, message, err)
}

func statusForCode(code string) int {
	switch code {
	case "invalid_input":
		return http.StatusBadRequest
	case "unauthorized", "invalid_token", "invalid_credentials", "account_disabled":
		return http.StatusUnauthorized
	case "forbidden":
		return http.StatusForbidden
	case "not_found":
		return http.StatusNotFound
	case "email_exists", "username_exists":
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func asHTTPError(err error) *HTTPError {
	if err == nil {
		return nil
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}
	return &HTTPError{
		Status:  http.StatusInternalServerError,
		Code:    "internal_error",
		Message: genericMessage,
		Err:     err,
	}
}

func abortWithError(c *gin.Context, err *HTTPError) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func badRequest(c *gin.Context, message string, err error) {
	abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_input", message, err))
}

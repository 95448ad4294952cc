package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v5"

	"github.com/samcharles93/mtnkit/internal/platform"
	"github.com/samcharles93/mtnkit/pkg/mtn"
)

var ErrInvalidRequest = errors.New("invalid_request")

type invalidRequestError struct {
	msg string
}

func (e invalidRequestError) Error() string { return e.msg }

func (e invalidRequestError) Unwrap() error { return ErrInvalidRequest }

func newInvalidRequest(msg string) error {
	return invalidRequestError{msg: msg}
}

// ErrorBody is the JSON error envelope.
type ErrorBody struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Message   string   `json:"message"`
	Type      string   `json:"type"`
	Supported []string `json:"supported,omitempty"`
}

func writeError(c *echo.Context, status int, errType, msg string) error {
	return c.JSON(status, ErrorBody{Error: ErrorDetail{Message: msg, Type: errType}})
}

func writeNotFound(c *echo.Context, msg string) error {
	return writeError(c, http.StatusNotFound, "not_found_error", msg)
}

// writeErr maps domain errors to status codes.
func writeErr(c *echo.Context, err error) error {
	var ue *platform.UnsupportedPlatformError
	switch {
	case errors.As(err, &ue):
		return c.JSON(http.StatusBadRequest, ErrorBody{Error: ErrorDetail{
			Message:   err.Error(),
			Type:      "unsupported_platform",
			Supported: ue.Supported,
		}})
	case errors.Is(err, ErrInvalidRequest):
		return writeError(c, http.StatusBadRequest, "invalid_request_error", err.Error())
	case errors.Is(err, errBodyTooLarge):
		return writeError(c, http.StatusRequestEntityTooLarge, "invalid_request_error", err.Error())
	case errors.Is(err, mtn.ErrTruncated), errors.Is(err, mtn.ErrInvalidHeader), errors.Is(err, mtn.ErrStringTooLong):
		return writeError(c, http.StatusUnprocessableEntity, "invalid_motion", err.Error())
	default:
		return writeError(c, http.StatusInternalServerError, "server_error", err.Error())
	}
}

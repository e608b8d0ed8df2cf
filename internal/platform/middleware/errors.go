package middleware

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/climavet/climavet/internal/platform/apperr"
)

// ErrorBody is the payload of every failed request.
type ErrorBody struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// StatusOf resolves the HTTP status an error will be answered with.
func StatusOf(err error) int {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code
	}
	return apperr.HTTPStatus(err)
}

// MessageOf returns the client-facing message for err. Unexpected errors are
// reduced to a generic message so internals do not leak.
func MessageOf(err error) string {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		if msg, ok := he.Message.(string); ok {
			return msg
		}
		return http.StatusText(he.Code)
	}
	if apperr.HTTPStatus(err) == http.StatusInternalServerError {
		return "internal server error"
	}
	return err.Error()
}

// ErrorHandler renders errors returned by handlers as ErrorBody. Internal
// errors are logged with the request id.
func ErrorHandler(logger zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status := StatusOf(err)
		if status >= http.StatusInternalServerError {
			rid, _ := c.Get("request_id").(string)
			logger.Error().Err(err).
				Str("request_id", rid).
				Str("path", c.Request().URL.Path).
				Msg("request failed")
		}

		var werr error
		if c.Request().Method == http.MethodHead {
			werr = c.NoContent(status)
		} else {
			werr = c.JSON(status, ErrorBody{Success: false, Message: MessageOf(err)})
		}
		if werr != nil {
			logger.Error().Err(werr).Msg("write error response")
		}
	}
}

// Ack is the payload of a successful acknowledgement.
type Ack struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Acknowledge answers 200 with a success Ack.
func Acknowledge(c echo.Context, message string) error {
	return c.JSON(http.StatusOK, Ack{Success: true, Message: message})
}

package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/bluecarbon/registry/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors. Error
// carries the underlying cause and is only filled in development mode.
type errorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps domain errors to the status of their kind.
//   - Turns echo's unmatched-route and wrong-method errors into "Route not found".
//   - Logs unexpected errors and renders them as a generic 500.
func NewHTTPErrorHandler(log zerolog.Logger, development bool) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err, log, c)
		resp := errorResponse{Success: false, Message: msg}
		if development && code >= http.StatusInternalServerError {
			resp.Error = err.Error()
		}

		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, resp)
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	var de *domain.Error
	if errors.As(err, &de) {
		code := de.Kind.HTTPStatus()
		if de.Kind == domain.KindServer {
			logUnexpected(log, c, err)
			if de.Message == "" {
				return code, "Server error"
			}
		}
		return code, de.Message
	}

	// Echo's own errors (router 404/405, body limit, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		switch he.Code {
		case http.StatusNotFound, http.StatusMethodNotAllowed:
			return http.StatusNotFound, "Route not found"
		case http.StatusTooManyRequests:
			return he.Code, domain.ErrTooManyRequests.Message
		}
		if he.Code >= http.StatusInternalServerError {
			logUnexpected(log, c, err)
			return he.Code, "Server error"
		}
		if msg, ok := he.Message.(string); ok {
			return he.Code, msg
		}
		return he.Code, http.StatusText(he.Code)
	}

	logUnexpected(log, c, err)
	return http.StatusInternalServerError, "Server error"
}

func logUnexpected(log zerolog.Logger, c echo.Context, err error) {
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
		Msg("unhandled error")
}

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/sweet_shop/internal/domain"
)

type ErrorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrUnauthenticated),
		errors.Is(err, domain.ErrInvalidCredentials),
		errors.Is(err, domain.ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrPermissionDenied):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func responseOf(code int, err error) ErrorResponse {
	switch {
	case code == http.StatusInternalServerError:
		return ErrorResponse{Error: "internal server error"}
	case errors.Is(err, domain.ErrValidation):
		return ErrorResponse{Error: domain.ErrValidation.Error(), Fields: domain.FieldErrors(err)}
	default:
		return ErrorResponse{Error: err.Error()}
	}
}

// fail logs err under event and converts it into an HTTP error carrying
// the public response body.
func fail(l *slog.Logger, event string, err error) error {
	code := statusOf(err)
	if code == http.StatusInternalServerError {
		l.Error(event, "status", code, "error", err)
	} else {
		l.Warn(event, "status", code, "reason", http.StatusText(code), "error", err)
	}
	return echo.NewHTTPError(code, responseOf(code, err)).SetInternal(err)
}

func badRequest(l *slog.Logger, event string, err error) error {
	l.Warn(event, "status", http.StatusBadRequest, "reason", "bind", "error", err)
	return echo.NewHTTPError(http.StatusBadRequest, ErrorResponse{Error: "malformed request"}).SetInternal(err)
}

// ErrorHandler renders every error with the same body shape.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var he *echo.HTTPError
	if !errors.As(err, &he) {
		code := statusOf(err)
		he = echo.NewHTTPError(code, responseOf(code, err))
	}

	var body any = he.Message
	switch m := he.Message.(type) {
	case string:
		body = ErrorResponse{Error: m}
	case error:
		body = ErrorResponse{Error: m.Error()}
	}

	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(he.Code)
		return
	}
	_ = c.JSON(he.Code, body)
}

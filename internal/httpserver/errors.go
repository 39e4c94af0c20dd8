package httpserver

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/local_store/internal/service"
)

var statusBySentinel = []struct {
	err      error
	status   int
	fallback string
}{
	{service.ErrValidation, http.StatusBadRequest, "invalid request"},
	{service.ErrUnauthenticated, http.StatusUnauthorized, "authentication required"},
	{service.ErrForbidden, http.StatusForbidden, "forbidden"},
	{service.ErrNotFound, http.StatusNotFound, "not found"},
	{service.ErrConflict, http.StatusConflict, "conflict"},
}

// classify maps a service error onto a status and a client-safe message.
// Anything not wrapping a service sentinel is reported as a 500.
func classify(err error) (int, string) {
	for _, s := range statusBySentinel {
		if !errors.Is(err, s.err) {
			continue
		}
		msg := strings.TrimSuffix(err.Error(), ": "+s.err.Error())
		if err == s.err || msg == err.Error() {
			msg = s.fallback
		}
		return s.status, msg
	}
	return http.StatusInternalServerError, "internal server error"
}

func fail(l *slog.Logger, event string, err error) error {
	status, msg := classify(err)
	if status >= http.StatusInternalServerError {
		l.Error(event, "status", status, "error", err)
	} else {
		l.Warn(event, "status", status, "reason", msg)
	}
	return echo.NewHTTPError(status, msg).SetInternal(err)
}

func badBody(l *slog.Logger, event string, err error) error {
	l.Warn(event, "status", http.StatusBadRequest, "error", err)
	return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
}

package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/local_store/internal/service"
	"github.com/Skotchmaster/local_store/pkg/logging"
	"github.com/Skotchmaster/local_store/pkg/tokens"
)

const authKey = "auth"

// SessionAuth resolves the session cookie into a service.AuthContext.
type SessionAuth struct {
	Auth *service.AuthService
}

func (m *SessionAuth) resolve(c echo.Context) (service.AuthContext, error) {
	ck, err := c.Cookie(tokens.SessionCookie)
	if err != nil || ck.Value == "" {
		return service.AuthContext{}, service.ErrUnauthenticated
	}
	return m.Auth.Authenticate(c.Request().Context(), ck.Value)
}

func bind(c echo.Context, ac service.AuthContext) {
	c.Set(authKey, ac)
	c.Set("user_id", ac.UserID)
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("user_id", ac.UserID)
	c.SetRequest(c.Request().WithContext(logging.IntoContext(ctx, l)))
}

func (m *SessionAuth) Require(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		l := logging.FromContext(c.Request().Context()).With("mw", "session.require")

		ac, err := m.resolve(c)
		if err != nil {
			if errors.Is(err, service.ErrUnauthenticated) {
				l.Warn("session_rejected", "status", http.StatusUnauthorized, "error", err)
				return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
			}
			l.Error("session_lookup_error", "status", http.StatusInternalServerError, "error", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
		}
		bind(c, ac)
		return next(c)
	}
}

// Optional lets anonymous callers through. A session that cannot be
// resolved is treated as no session.
func (m *SessionAuth) Optional(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ac, err := m.resolve(c)
		if err != nil {
			if !errors.Is(err, service.ErrUnauthenticated) {
				logging.FromContext(c.Request().Context()).Warn("session_lookup_error", "mw", "session.optional", "error", err)
			}
			return next(c)
		}
		bind(c, ac)
		return next(c)
	}
}

// AuthFrom returns the caller bound by the session middleware, or the
// anonymous caller.
func AuthFrom(c echo.Context) service.AuthContext {
	ac, _ := c.Get(authKey).(service.AuthContext)
	return ac
}

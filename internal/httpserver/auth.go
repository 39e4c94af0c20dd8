package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/local_store/internal/service"
	"github.com/Skotchmaster/local_store/internal/transport"
	"github.com/Skotchmaster/local_store/pkg/logging"
	"github.com/Skotchmaster/local_store/pkg/tokens"
)

type AuthHTTP struct {
	Svc          *service.AuthService
	SecureCookie bool
}

func (h *AuthHTTP) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.register")

	var req transport.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return badBody(l, "register_error", err)
	}
	if err := c.Validate(&req); err != nil {
		l.Warn("register_error", "status", http.StatusBadRequest, "error", err)
		return err
	}

	user, err := h.Svc.Register(ctx, req)
	if err != nil {
		return fail(l, "register_error", err)
	}

	l.Info("user registered", "user_id", user.ID)
	return c.JSON(http.StatusCreated, echo.Map{
		"message": "User registered successfully",
		"user":    user,
	})
}

func (h *AuthHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.login")

	var req transport.LoginRequest
	if err := c.Bind(&req); err != nil {
		return badBody(l, "login_error", err)
	}
	if err := c.Validate(&req); err != nil {
		l.Warn("login_error", "status", http.StatusBadRequest, "error", err)
		return err
	}

	res, err := h.Svc.Login(ctx, req.Email, req.Password)
	if err != nil {
		return fail(l, "login_error", err)
	}

	c.SetCookie(tokens.CreateCookie(tokens.SessionCookie, res.Token, "/", res.ExpiresAt, h.SecureCookie))
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Login successful",
		"user":    res.User,
	})
}

func (h *AuthHTTP) Logout(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.logout")

	c.SetCookie(tokens.DeleteCookie(tokens.SessionCookie, "/", h.SecureCookie))
	if err := h.Svc.Logout(ctx, AuthFrom(c)); err != nil {
		l.Error("logout_error", "status", http.StatusInternalServerError, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "error during logout")
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Logout successful"})
}

func (h *AuthHTTP) Me(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.me")

	user, err := h.Svc.Me(ctx, AuthFrom(c))
	if err != nil {
		return fail(l, "me_error", err)
	}
	return c.JSON(http.StatusOK, user)
}

func (h *AuthHTTP) UpdateProfile(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.update_profile")

	var req transport.UpdateProfileRequest
	if err := c.Bind(&req); err != nil {
		return badBody(l, "update_profile_error", err)
	}
	if err := c.Validate(&req); err != nil {
		l.Warn("update_profile_error", "status", http.StatusBadRequest, "error", err)
		return err
	}

	user, err := h.Svc.UpdateProfile(ctx, AuthFrom(c), req.Username, req.Email)
	if err != nil {
		return fail(l, "update_profile_error", err)
	}
	return c.JSON(http.StatusOK, user)
}

func (h *AuthHTTP) ChangePassword(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.change_password")

	var req transport.ChangePasswordRequest
	if err := c.Bind(&req); err != nil {
		return badBody(l, "change_password_error", err)
	}
	if err := c.Validate(&req); err != nil {
		l.Warn("change_password_error", "status", http.StatusBadRequest, "error", err)
		return err
	}

	if err := h.Svc.ChangePassword(ctx, AuthFrom(c), req.CurrentPassword, req.NewPassword); err != nil {
		return fail(l, "change_password_error", err)
	}
	l.Info("password changed")
	return c.JSON(http.StatusOK, echo.Map{"message": "Password updated successfully"})
}

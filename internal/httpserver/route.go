package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

type Deps struct {
	CartHandler     *CartHTTP
	CheckoutHandler *CheckoutHTTP
	CatalogHandler  *CatalogHTTP
	AuthHandler     *AuthHTTP
	Sessions        *SessionAuth
	// AuthLimiter throttles login and registration per client IP. Nil disables it.
	AuthLimiter *RateLimiter
	Ready       func(ctx context.Context) error
	AssetsDir   string
}

func Register(e *echo.Echo, d *Deps) {
	if e.Validator == nil {
		e.Validator = NewValidator()
	}

	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error {
		if d.Ready == nil {
			return c.NoContent(http.StatusOK)
		}
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()
		if err := d.Ready(ctx); err != nil {
			return c.NoContent(http.StatusServiceUnavailable)
		}
		return c.NoContent(http.StatusOK)
	})

	if d.AssetsDir != "" {
		e.Static("/assets", d.AssetsDir)
	}

	api := e.Group("/api")
	api.GET("", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"message": "Welcome to the Local Store API"})
	})

	var throttle []echo.MiddlewareFunc
	if d.AuthLimiter != nil {
		throttle = append(throttle, d.AuthLimiter.Middleware)
	}

	auth := api.Group("/auth")
	auth.POST("/register", d.AuthHandler.Register, throttle...)
	auth.POST("/login", d.AuthHandler.Login, throttle...)
	auth.POST("/logout", d.AuthHandler.Logout, d.Sessions.Optional)
	auth.GET("/me", d.AuthHandler.Me, d.Sessions.Require)
	auth.PUT("/update", d.AuthHandler.UpdateProfile, d.Sessions.Require)
	auth.PUT("/change-password", d.AuthHandler.ChangePassword, d.Sessions.Require)

	products := api.Group("/products")
	products.GET("", d.CatalogHandler.ListProducts)
	products.GET("/categories", d.CatalogHandler.ListCategories)
	products.GET("/:id", d.CatalogHandler.GetProduct)

	cart := api.Group("/cart")
	cart.Use(d.Sessions.Require)

	cart.GET("", d.CartHandler.GetCart)
	cart.POST("", d.CartHandler.AddItem)
	cart.PUT("/:itemId", d.CartHandler.UpdateItem)
	cart.DELETE("/:itemId", d.CartHandler.RemoveItem)

	api.POST("/payments", d.CheckoutHandler.RecordPayment, d.Sessions.Optional)
}

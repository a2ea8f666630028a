package user

import (
	"github.com/labstack/echo/v4"

	"github.com/Knight069/ecommerce-microservice/internal/ratelimit"
)

func Register(e *echo.Echo, h *Handler, loginLimiter *ratelimit.Limiter) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(200) })

	e.POST("/api/user/create", h.Create)
	if loginLimiter != nil {
		e.POST("/api/user/login", h.Login, loginLimiter.Middleware())
	} else {
		e.POST("/api/user/login", h.Login)
	}
	e.POST("/api/user/logout", h.Logout)
	e.GET("/api/user", h.GetUser)
	e.GET("/api/user/:username/exists", h.Exists)
	e.GET("/api/users", h.ListUsers)
}

package frontend

import (
	"github.com/labstack/echo/v4"
)

func Register(e *echo.Echo, h *Handler) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(200) })

	e.GET("/", h.Home)
	e.GET("/register", h.RegisterForm)
	e.POST("/register", h.Register)
	e.GET("/login", h.LoginForm)
	e.POST("/login", h.Login)
	e.GET("/logout", h.Logout)
	e.GET("/product/:slug", h.ProductPage)
	e.POST("/product/:slug", h.AddToCart)
	e.GET("/checkout", h.Checkout)
	e.GET("/order/thank-you", h.ThankYou)
}

package order

import (
	"github.com/labstack/echo/v4"
)

func Register(e *echo.Echo, h *Handler) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(200) })

	e.GET("/api/order", h.GetOrder)
	e.POST("/api/order/add-item", h.AddItem)
	e.POST("/api/order/checkout", h.Checkout)
	e.GET("/api/orders", h.ListOrders)
}

package product

import (
	"github.com/labstack/echo/v4"
)

func Register(e *echo.Echo, h *Handler) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(200) })

	e.GET("/api/products", h.ListProducts)
	e.GET("/api/product/:slug", h.GetProduct)
	e.POST("/api/product/create", h.CreateProduct)

	// Search needs a reachable Elasticsearch; the route is absent otherwise.
	if h.ES != nil {
		e.GET("/api/products/search", h.Search)
	}
}

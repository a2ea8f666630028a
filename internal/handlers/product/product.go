package product

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/Knight069/ecommerce-microservice/internal/logging"
	"github.com/Knight069/ecommerce-microservice/internal/models"
	"github.com/Knight069/ecommerce-microservice/internal/mykafka"
	"github.com/Knight069/ecommerce-microservice/internal/service/search"
	"github.com/Knight069/ecommerce-microservice/internal/util"
)

type Handler struct {
	DB       *gorm.DB
	Producer mykafka.Publisher
	ES       *elasticsearch.Client
	Index    string
}

func (h *Handler) publish(c echo.Context, event map[string]any) {
	if h.Producer == nil {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, "product_events", fmt.Sprint(event["productID"]), event); err != nil {
		c.Logger().Errorf("kafka publish error: %v", err)
	}
}

func (h *Handler) ListProducts(c echo.Context) error {
	var products []models.Product
	if err := h.DB.Order("id ASC").Find(&products).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	return c.JSON(http.StatusOK, echo.Map{"results": products})
}

func (h *Handler) GetProduct(c echo.Context) error {
	slug := c.Param("slug")

	var product models.Product
	if err := h.DB.Where("slug = ?", slug).First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Product not found"})
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	return c.JSON(http.StatusOK, echo.Map{"result": product})
}

func (h *Handler) CreateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product_create")

	name := c.FormValue("name")
	slug := c.FormValue("slug")
	image := c.FormValue("image")
	priceRaw := c.FormValue("price")

	if name == "" || slug == "" || image == "" || priceRaw == "" {
		l.Warn("create_failed", "status", 400, "reason", "missing_fields")
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Missing required fields"})
	}

	price, err := strconv.ParseFloat(priceRaw, 64)
	if err != nil {
		l.Warn("create_failed", "status", 400, "reason", "invalid_price")
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid price"})
	}

	var existing models.Product
	if err := h.DB.Where("slug = ?", slug).First(&existing).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			l.Error("create_failed", "status", 500, "reason", "db_error", "error", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
		}
	} else {
		l.Warn("create_failed", "status", 409, "reason", "slug_exists")
		return c.JSON(http.StatusConflict, echo.Map{"message": "Product already exists"})
	}

	product := models.Product{
		Name:  name,
		Slug:  slug,
		Image: image,
		Price: price,
	}
	if err := h.DB.Create(&product).Error; err != nil {
		l.Error("create_failed", "status", 500, "reason", "db_error", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	if h.ES != nil {
		if err := search.Index(ctx, h.ES, h.Index, product); err != nil {
			l.Warn("index_failed", "slug", product.Slug, "error", err)
		}
	}

	h.publish(c, map[string]any{
		"type":      "product_created",
		"productID": product.ID,
		"name":      product.Name,
	})

	l.Info("create_success", "slug", product.Slug)
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Product added successfully",
		"product": product,
	})
}

func (h *Handler) Search(c echo.Context) error {
	q := c.QueryParam("q")
	if q == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Missing query"})
	}

	page, _ := strconv.Atoi(c.QueryParam("page"))
	size, _ := strconv.Atoi(c.QueryParam("size"))
	from, size := util.Calculate(page, size)

	total, products, err := search.Search(c.Request().Context(), h.ES, h.Index, q, from, size)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "search unavailable")
	}

	return c.JSON(http.StatusOK, echo.Map{"total": total, "results": products})
}

package order

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Knight069/ecommerce-microservice/internal/apikey"
	"github.com/Knight069/ecommerce-microservice/internal/email"
	"github.com/Knight069/ecommerce-microservice/internal/logging"
	"github.com/Knight069/ecommerce-microservice/internal/models"
	"github.com/Knight069/ecommerce-microservice/internal/mykafka"
)

// UserResolver is the auth relay: every order request hands its bearer key
// to the user service and gets an identity back. Satisfied by
// userclient.Client.
type UserResolver interface {
	GetUser(ctx context.Context, apiKey string) (*models.User, bool, error)
}

type Handler struct {
	DB       *gorm.DB
	Users    UserResolver
	Producer mykafka.Publisher
	Email    email.Sender
}

func (h *Handler) publish(c echo.Context, event map[string]any) {
	if h.Producer == nil {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, "order_events", fmt.Sprint(event["userID"]), event); err != nil {
		c.Logger().Errorf("kafka publish error: %v", err)
	}
}

// authenticate resolves the caller or replies for us: unknown/missing keys
// are a 401 body, a dead user service is a hard 502.
func (h *Handler) authenticate(c echo.Context) (*models.User, error) {
	key := apikey.FromHeader(c.Request().Header.Get("Authorization"))
	if key == "" {
		return nil, c.JSON(http.StatusUnauthorized, echo.Map{"message": "Not logged in"})
	}

	user, ok, err := h.Users.GetUser(c.Request().Context(), key)
	if err != nil {
		logging.FromContext(c.Request().Context()).Error("auth_relay_failed", "error", err)
		return nil, echo.NewHTTPError(http.StatusBadGateway, "user service unavailable")
	}
	if !ok {
		return nil, c.JSON(http.StatusUnauthorized, echo.Map{"message": "Not logged in"})
	}
	return user, nil
}

func (h *Handler) openOrder(userID uint) (*models.Order, error) {
	var order models.Order
	err := h.DB.Preload("Items").
		Where("user_id = ? AND is_open = ?", userID, true).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (h *Handler) GetOrder(c echo.Context) error {
	user, err := h.authenticate(c)
	if user == nil {
		return err
	}

	order, err := h.openOrder(user.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusOK, echo.Map{"message": "No open order found"})
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	return c.JSON(http.StatusOK, echo.Map{"result": order})
}

func (h *Handler) AddItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order_add_item")

	user, err := h.authenticate(c)
	if user == nil {
		return err
	}

	productID, err := strconv.ParseUint(c.FormValue("product_id"), 10, 32)
	if err != nil || productID == 0 {
		l.Warn("add_item_failed", "status", 400, "reason", "invalid_product_id")
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid product id"})
	}

	qty := 1
	if raw := c.FormValue("qty"); raw != "" {
		qty, err = strconv.Atoi(raw)
		if err != nil || qty < 1 {
			l.Warn("add_item_failed", "status", 400, "reason", "invalid_qty")
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid quantity"})
		}
	}

	var orderID uint
	txErr := h.DB.Transaction(func(tx *gorm.DB) error {
		var open models.Order

		// The row lock serializes concurrent first adds for one user, so
		// only a single open order can ever be created. SQLite locks the
		// whole database and has no FOR UPDATE.
		query := tx.Where("user_id = ? AND is_open = ?", user.ID, true)
		if tx.Dialector.Name() == "postgres" {
			query = query.Clauses(clause.Locking{Strength: "UPDATE"})
		}
		if err := query.First(&open).Error; err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			open = models.Order{UserID: user.ID, IsOpen: true}
			if err := tx.Create(&open).Error; err != nil {
				return err
			}
		}
		orderID = open.ID

		var item models.OrderItem
		err := tx.Where("order_id = ? AND product_id = ?", open.ID, productID).First(&item).Error
		switch {
		case err == nil:
			item.Quantity += uint(qty)
			return tx.Save(&item).Error
		case errors.Is(err, gorm.ErrRecordNotFound):
			item = models.OrderItem{
				OrderID:   open.ID,
				ProductID: uint(productID),
				Quantity:  uint(qty),
			}
			return tx.Create(&item).Error
		default:
			return err
		}
	})
	if txErr != nil {
		l.Error("add_item_failed", "status", 500, "reason", "db_error", "error", txErr)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	var order models.Order
	if err := h.DB.Preload("Items").First(&order, orderID).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	h.publish(c, map[string]any{
		"type":      "order_item_added",
		"userID":    user.ID,
		"orderID":   order.ID,
		"productID": productID,
		"qty":       qty,
	})

	l.Info("add_item_success", "orderID", order.ID, "productID", productID, "qty", qty)
	return c.JSON(http.StatusOK, echo.Map{"result": order})
}

func (h *Handler) Checkout(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order_checkout")

	user, err := h.authenticate(c)
	if user == nil {
		return err
	}

	order, err := h.openOrder(user.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			l.Warn("checkout_failed", "status", 400, "reason", "no_open_order")
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "No open order to checkout"})
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	order.IsOpen = false
	if err := h.DB.Save(order).Error; err != nil {
		l.Error("checkout_failed", "status", 500, "reason", "db_error", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	if h.Email != nil && user.Email != "" {
		body := fmt.Sprintf("Thanks %s! Your order #%d has been received.", user.FirstName, order.ID)
		if err := h.Email.Send(user.Email, "Order confirmation", body); err != nil {
			l.Warn("confirmation_mail_failed", "orderID", order.ID, "error", err)
		}
	}

	h.publish(c, map[string]any{
		"type":    "order_checked_out",
		"userID":  user.ID,
		"orderID": order.ID,
	})

	l.Info("checkout_success", "orderID", order.ID)
	return c.JSON(http.StatusOK, echo.Map{"result": order})
}

func (h *Handler) ListOrders(c echo.Context) error {
	var orders []models.Order
	if err := h.DB.Preload("Items").Order("id ASC").Find(&orders).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	return c.JSON(http.StatusOK, orders)
}

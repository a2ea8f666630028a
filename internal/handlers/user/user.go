package user

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/Knight069/ecommerce-microservice/internal/apikey"
	"github.com/Knight069/ecommerce-microservice/internal/hash"
	"github.com/Knight069/ecommerce-microservice/internal/logging"
	"github.com/Knight069/ecommerce-microservice/internal/models"
	"github.com/Knight069/ecommerce-microservice/internal/mykafka"
)

type Handler struct {
	DB       *gorm.DB
	Producer mykafka.Publisher
}

func (h *Handler) publish(c echo.Context, event map[string]any) {
	if h.Producer == nil {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, "user_events", fmt.Sprint(event["userID"]), event); err != nil {
		c.Logger().Errorf("kafka publish error: %v", err)
	}
}

// byAPIKey resolves the Authorization header to a user. A nil result with a
// nil error means the key matched nobody.
func (h *Handler) byAPIKey(c echo.Context) (*models.User, error) {
	key := apikey.FromHeader(c.Request().Header.Get("Authorization"))
	if key == "" {
		return nil, nil
	}

	var user models.User
	if err := h.DB.Where("api_key = ?", key).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (h *Handler) Create(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user_create")

	email := c.FormValue("email")
	password := c.FormValue("password")
	firstName := c.FormValue("first_name")
	lastName := c.FormValue("last_name")
	username := c.FormValue("username")

	if email == "" || password == "" || username == "" {
		l.Warn("create_failed", "status", 400, "reason", "missing_fields")
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Missing required fields"})
	}

	var existing models.User
	if err := h.DB.Where("username = ?", username).First(&existing).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			l.Error("create_failed", "status", 500, "reason", "db_error", "error", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
		}
	} else {
		l.Warn("create_failed", "status", 409, "reason", "user_exists")
		return c.JSON(http.StatusConflict, echo.Map{"message": "User already exists"})
	}

	pwHash, err := hash.HashPassword(password)
	if err != nil {
		l.Error("create_failed", "status", 500, "reason", "cannot hash the password", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	user := models.User{
		Username:     username,
		Email:        email,
		FirstName:    firstName,
		LastName:     lastName,
		PasswordHash: pwHash,
	}
	if err := h.DB.Create(&user).Error; err != nil {
		l.Error("create_failed", "status", 500, "reason", "db_error", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	h.publish(c, map[string]any{
		"type":     "user_created",
		"userID":   user.ID,
		"username": user.Username,
	})

	l.Info("create_success", "status", 200, "username", user.Username)
	return c.JSON(http.StatusOK, echo.Map{
		"message": "User created successfully",
		"result":  user,
	})
}

func (h *Handler) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user_login")

	username := c.FormValue("username")
	password := c.FormValue("password")

	var user models.User
	if err := h.DB.Where("username = ?", username).First(&user).Error; err != nil {
		l.Warn("login_failed", "status", 401, "reason", "invalid username or password")
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Not logged in"})
	}

	if !hash.CheckPassword(user.PasswordHash, password) {
		l.Warn("login_failed", "status", 401, "reason", "invalid username or password")
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Not logged in"})
	}

	// A fresh key invalidates whatever key the previous login handed out.
	user.APIKey = apikey.New()
	if err := h.DB.Save(&user).Error; err != nil {
		l.Error("login_failed", "status", 500, "reason", "db_error", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	h.publish(c, map[string]any{
		"type":     "user_logged_in",
		"userID":   user.ID,
		"username": user.Username,
	})

	l.Info("login_success", "username", user.Username)
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Logged in",
		"api_key": user.APIKey,
	})
}

// Logout acknowledges the session end. The API key itself stays valid
// until the next login replaces it.
func (h *Handler) Logout(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user_logout")

	user, err := h.byAPIKey(c)
	if err != nil {
		l.Error("logout_failed", "status", 500, "reason", "db_error", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	if user == nil {
		l.Warn("logout_failed", "status", 401, "reason", "not_logged_in")
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "You are not logged in"})
	}

	l.Info("logout_success", "username", user.Username)
	return c.JSON(http.StatusOK, echo.Map{"message": "You are logged out"})
}

func (h *Handler) GetUser(c echo.Context) error {
	user, err := h.byAPIKey(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	if user == nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Not logged in"})
	}

	return c.JSON(http.StatusOK, echo.Map{"result": user})
}

func (h *Handler) Exists(c echo.Context) error {
	username := c.Param("username")

	var user models.User
	if err := h.DB.Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Username not found"})
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	return c.JSON(http.StatusOK, echo.Map{"result": true})
}

func (h *Handler) ListUsers(c echo.Context) error {
	var users []models.User
	if err := h.DB.Find(&users).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	return c.JSON(http.StatusOK, users)
}

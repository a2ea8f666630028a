package frontend

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Knight069/ecommerce-microservice/internal/clients/orderclient"
	"github.com/Knight069/ecommerce-microservice/internal/clients/productclient"
	"github.com/Knight069/ecommerce-microservice/internal/clients/userclient"
	"github.com/Knight069/ecommerce-microservice/internal/logging"
	"github.com/Knight069/ecommerce-microservice/internal/models"
	"github.com/Knight069/ecommerce-microservice/internal/session"
)

type Handler struct {
	Sessions *session.Manager
	Users    *userclient.Client
	Products *productclient.Client
	Orders   *orderclient.Client
}

type viewData struct {
	User     *models.User
	Order    *models.Order
	Flashes  []session.Flash
	Products []models.Product
	Product  *models.Product
}

// view assembles template data from the session, draining pending flashes.
func (h *Handler) view(c echo.Context, s *session.Session) viewData {
	var data viewData
	if s == nil {
		return data
	}
	data.User = s.User
	data.Order = s.Order
	data.Flashes = s.PopFlashes()
	if len(data.Flashes) > 0 {
		if err := h.Sessions.Save(c, s); err != nil {
			c.Logger().Errorf("session save error: %v", err)
		}
	}
	return data
}

func (h *Handler) flashAndRedirect(c echo.Context, s *session.Session, message, category, target string) error {
	if s != nil {
		s.AddFlash(message, category)
		if err := h.Sessions.Save(c, s); err != nil {
			c.Logger().Errorf("session save error: %v", err)
		}
	}
	return c.Redirect(http.StatusFound, target)
}

func (h *Handler) Home(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "frontend_home")

	s, err := h.Sessions.Load(c)
	if err != nil {
		s = nil
	}

	// Opportunistic refresh of the cached order snapshot.
	if s.LoggedIn() {
		if order, ok, err := h.Orders.GetOrder(ctx, s.APIKey); err == nil {
			if ok {
				s.Order = order
			} else {
				s.Order = nil
			}
			if err := h.Sessions.Save(c, s); err != nil {
				l.Error("session_save_failed", "error", err)
			}
		} else {
			l.Warn("order_refresh_failed", "error", err)
		}
	}

	data := h.view(c, s)
	products, err := h.Products.GetProducts(ctx)
	if err != nil {
		l.Error("products_fetch_failed", "error", err)
		data.Flashes = append(data.Flashes, session.Flash{
			Message:  "Failed to retrieve products. Please try again later.",
			Category: "error",
		})
	}
	data.Products = products

	return c.Render(http.StatusOK, "home", data)
}

func (h *Handler) RegisterForm(c echo.Context) error {
	s, _ := h.Sessions.Load(c)
	return c.Render(http.StatusOK, "register", h.view(c, s))
}

func (h *Handler) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "frontend_register")

	s, err := h.Sessions.LoadOrIssue(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "session unavailable")
	}

	username := c.FormValue("username")
	email := c.FormValue("email")
	password := c.FormValue("password")
	if username == "" || email == "" || password == "" {
		return h.flashAndRedirect(c, s, "Registration form errors. Please check the fields.", "error", "/register")
	}

	taken, err := h.Users.Exists(ctx, username)
	if err != nil {
		l.Error("exists_check_failed", "error", err)
		return h.flashAndRedirect(c, s, "Registration is temporarily unavailable.", "error", "/register")
	}
	if taken {
		return h.flashAndRedirect(c, s, "Username already exists. Please choose another.", "error", "/register")
	}

	_, err = h.Users.CreateUser(ctx, userclient.CreateUserRequest{
		Email:     email,
		Password:  password,
		FirstName: c.FormValue("first_name"),
		LastName:  c.FormValue("last_name"),
		Username:  username,
	})
	if err != nil {
		l.Error("create_user_failed", "error", err)
		return h.flashAndRedirect(c, s, "Registration failed. Please try again.", "error", "/register")
	}

	return h.flashAndRedirect(c, s, "Registration successful. Please login.", "success", "/login")
}

func (h *Handler) LoginForm(c echo.Context) error {
	s, _ := h.Sessions.Load(c)
	if s.LoggedIn() {
		return c.Redirect(http.StatusFound, "/")
	}
	return c.Render(http.StatusOK, "login", h.view(c, s))
}

func (h *Handler) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "frontend_login")

	s, err := h.Sessions.LoadOrIssue(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "session unavailable")
	}

	key, ok, err := h.Users.Login(ctx, c.FormValue("username"), c.FormValue("password"))
	if err != nil {
		l.Error("login_failed", "error", err)
		return h.flashAndRedirect(c, s, "Login is temporarily unavailable.", "error", "/login")
	}
	if !ok {
		return h.flashAndRedirect(c, s, "Invalid login credentials. Please try again.", "error", "/login")
	}

	s.APIKey = key
	if user, ok, err := h.Users.GetUser(ctx, key); err == nil && ok {
		s.User = user
	} else if err != nil {
		l.Warn("user_snapshot_failed", "error", err)
	}
	if order, ok, err := h.Orders.GetOrder(ctx, key); err == nil && ok {
		s.Order = order
	} else if err != nil {
		l.Warn("order_snapshot_failed", "error", err)
	}

	welcome := "Welcome back"
	if s.User != nil {
		welcome = "Welcome back, " + s.User.Username
	}
	return h.flashAndRedirect(c, s, welcome, "success", "/")
}

func (h *Handler) Logout(c echo.Context) error {
	s, err := h.Sessions.Load(c)
	if err == nil {
		if err := h.Sessions.Destroy(c, s); err != nil {
			c.Logger().Errorf("session destroy error: %v", err)
		}
	}
	return c.Redirect(http.StatusFound, "/")
}

func (h *Handler) ProductPage(c echo.Context) error {
	ctx := c.Request().Context()

	s, _ := h.Sessions.Load(c)

	product, ok, err := h.Products.GetProduct(ctx, c.Param("slug"))
	if err != nil {
		return h.flashAndRedirect(c, s, "Failed to retrieve the product. Please try again later.", "error", "/")
	}
	if !ok {
		return h.flashAndRedirect(c, s, "Product not found.", "error", "/")
	}

	data := h.view(c, s)
	data.Product = product
	return c.Render(http.StatusOK, "product", data)
}

func (h *Handler) AddToCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "frontend_add_to_cart")

	s, err := h.Sessions.LoadOrIssue(c)
	if err != nil || !s.LoggedIn() {
		return h.flashAndRedirect(c, s, "Please login to add items to your cart.", "error", "/login")
	}

	product, ok, err := h.Products.GetProduct(ctx, c.Param("slug"))
	if err != nil || !ok {
		return h.flashAndRedirect(c, s, "Product not found.", "error", "/")
	}

	order, err := h.Orders.AddItem(ctx, s.APIKey, product.ID, 1)
	if err != nil {
		l.Error("add_item_failed", "error", err)
		return h.flashAndRedirect(c, s, "Could not add the item to your cart.", "error", "/product/"+product.Slug)
	}

	s.Order = order
	return h.flashAndRedirect(c, s, "Item added to your cart.", "success", "/product/"+product.Slug)
}

func (h *Handler) Checkout(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "frontend_checkout")

	s, err := h.Sessions.LoadOrIssue(c)
	if err != nil || !s.LoggedIn() {
		return h.flashAndRedirect(c, s, "Please login to proceed with checkout.", "error", "/login")
	}

	order, ok, err := h.Orders.GetOrder(ctx, s.APIKey)
	if err != nil {
		l.Error("order_fetch_failed", "error", err)
		return h.flashAndRedirect(c, s, "Checkout is temporarily unavailable.", "error", "/")
	}
	if !ok || len(order.Items) == 0 {
		return h.flashAndRedirect(c, s, "No items found in your cart.", "error", "/")
	}

	if _, err := h.Orders.Checkout(ctx, s.APIKey); err != nil {
		l.Error("checkout_failed", "error", err)
		return h.flashAndRedirect(c, s, "Checkout failed. Please try again.", "error", "/")
	}

	// The closed order no longer belongs in the cart snapshot.
	s.Order = nil
	if err := h.Sessions.Save(c, s); err != nil {
		l.Error("session_save_failed", "error", err)
	}

	return c.Redirect(http.StatusFound, "/order/thank-you")
}

func (h *Handler) ThankYou(c echo.Context) error {
	s, err := h.Sessions.Load(c)
	if err != nil || !s.LoggedIn() {
		return c.Redirect(http.StatusFound, "/")
	}
	return c.Render(http.StatusOK, "thankyou", h.view(c, s))
}

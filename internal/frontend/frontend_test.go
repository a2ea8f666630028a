package frontend

import (
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Knight069/ecommerce-microservice/internal/clients/orderclient"
	"github.com/Knight069/ecommerce-microservice/internal/clients/productclient"
	"github.com/Knight069/ecommerce-microservice/internal/clients/userclient"
	"github.com/Knight069/ecommerce-microservice/internal/handlers/order"
	"github.com/Knight069/ecommerce-microservice/internal/handlers/product"
	"github.com/Knight069/ecommerce-microservice/internal/handlers/user"
	"github.com/Knight069/ecommerce-microservice/internal/models"
	"github.com/Knight069/ecommerce-microservice/internal/session"
)

func newDB(t *testing.T, migrate ...any) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(migrate...))
	return db
}

type testStack struct {
	frontend *httptest.Server
	client   *http.Client
}

// newTestStack runs real user/product/order services behind httptest and a
// frontend wired to them, plus a cookie-carrying browser stand-in.
func newTestStack(t *testing.T) *testStack {
	t.Helper()

	userEcho := echo.New()
	user.Register(userEcho, &user.Handler{DB: newDB(t, &models.User{})}, nil)
	userSrv := httptest.NewServer(userEcho)
	t.Cleanup(userSrv.Close)

	productEcho := echo.New()
	product.Register(productEcho, &product.Handler{DB: newDB(t, &models.Product{})})
	productSrv := httptest.NewServer(productEcho)
	t.Cleanup(productSrv.Close)

	orderEcho := echo.New()
	order.Register(orderEcho, &order.Handler{
		DB:    newDB(t, &models.Order{}, &models.OrderItem{}),
		Users: userclient.NewClient(userSrv.URL),
	})
	orderSrv := httptest.NewServer(orderEcho)
	t.Cleanup(orderSrv.Close)

	renderer, err := NewRenderer()
	require.NoError(t, err)

	frontendEcho := echo.New()
	frontendEcho.Renderer = renderer
	Register(frontendEcho, &Handler{
		Sessions: session.NewManager(session.NewMemoryStore(), []byte("test-secret")),
		Users:    userclient.NewClient(userSrv.URL),
		Products: productclient.NewClient(productSrv.URL),
		Orders:   orderclient.NewClient(orderSrv.URL),
	})
	frontendSrv := httptest.NewServer(frontendEcho)
	t.Cleanup(frontendSrv.Close)

	// seed the catalog
	form := url.Values{}
	form.Set("name", "Widget")
	form.Set("slug", "widget")
	form.Set("image", "widget.png")
	form.Set("price", "9.99")
	resp, err := http.PostForm(productSrv.URL+"/api/product/create", form)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	return &testStack{
		frontend: frontendSrv,
		client:   &http.Client{Jar: jar},
	}
}

func (ts *testStack) get(t *testing.T, path string) (int, string) {
	t.Helper()

	resp, err := ts.client.Get(ts.frontend.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func (ts *testStack) post(t *testing.T, path string, form url.Values) (int, string) {
	t.Helper()

	resp, err := ts.client.PostForm(ts.frontend.URL+path, form)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func registerAndLogin(t *testing.T, ts *testStack, username, password string) {
	t.Helper()

	form := url.Values{}
	form.Set("username", username)
	form.Set("email", username+"@example.com")
	form.Set("password", password)
	form.Set("first_name", "Alice")
	form.Set("last_name", "Smith")
	code, body := ts.post(t, "/register", form)
	require.Equal(t, http.StatusOK, code)
	require.Contains(t, body, "Registration successful")

	login := url.Values{}
	login.Set("username", username)
	login.Set("password", password)
	code, body = ts.post(t, "/login", login)
	require.Equal(t, http.StatusOK, code)
	require.Contains(t, body, "Welcome back, "+username)
}

func TestHomeListsProducts(t *testing.T) {
	ts := newTestStack(t)

	code, body := ts.get(t, "/")
	require.Equal(t, http.StatusOK, code)
	require.Contains(t, body, "Widget")
	require.Contains(t, body, "/product/widget")
}

func TestRegisterDuplicateUsername(t *testing.T) {
	ts := newTestStack(t)
	registerAndLogin(t, ts, "alice", "pw123")
	ts.get(t, "/logout")

	form := url.Values{}
	form.Set("username", "alice")
	form.Set("email", "alice2@example.com")
	form.Set("password", "pw456")
	code, body := ts.post(t, "/register", form)
	require.Equal(t, http.StatusOK, code)
	require.Contains(t, body, "Username already exists")
}

func TestLoginBadCredentials(t *testing.T) {
	ts := newTestStack(t)

	form := url.Values{}
	form.Set("username", "ghost")
	form.Set("password", "nope")
	code, body := ts.post(t, "/login", form)
	require.Equal(t, http.StatusOK, code)
	require.Contains(t, body, "Invalid login credentials")
}

func TestAddToCartRequiresLogin(t *testing.T) {
	ts := newTestStack(t)

	code, body := ts.post(t, "/product/widget", nil)
	require.Equal(t, http.StatusOK, code)
	require.Contains(t, body, "Please login")
}

func TestShoppingScenario(t *testing.T) {
	ts := newTestStack(t)
	registerAndLogin(t, ts, "alice", "pw123")

	code, body := ts.get(t, "/product/widget")
	require.Equal(t, http.StatusOK, code)
	require.Contains(t, body, "Add to cart")

	code, body = ts.post(t, "/product/widget", nil)
	require.Equal(t, http.StatusOK, code)
	require.Contains(t, body, "Item added to your cart")

	code, _ = ts.post(t, "/product/widget", nil)
	require.Equal(t, http.StatusOK, code)

	// the cached order snapshot shows the accumulated quantity
	code, body = ts.get(t, "/")
	require.Equal(t, http.StatusOK, code)
	require.Contains(t, body, "Your cart")
	require.Contains(t, body, "× 2")

	code, body = ts.get(t, "/checkout")
	require.Equal(t, http.StatusOK, code)
	require.Contains(t, body, "Thank you")

	// the open order is gone now
	code, body = ts.get(t, "/")
	require.Equal(t, http.StatusOK, code)
	require.NotContains(t, body, "Your cart")
}

func TestCheckoutWithEmptyCart(t *testing.T) {
	ts := newTestStack(t)
	registerAndLogin(t, ts, "alice", "pw123")

	code, body := ts.get(t, "/checkout")
	require.Equal(t, http.StatusOK, code)
	require.Contains(t, body, "No items found in your cart")
}

func TestCheckoutRequiresLogin(t *testing.T) {
	ts := newTestStack(t)

	code, body := ts.get(t, "/checkout")
	require.Equal(t, http.StatusOK, code)
	require.Contains(t, body, "Please login to proceed with checkout")
}

func TestHomeDegradesWhenCatalogDown(t *testing.T) {
	_ = newTestStack(t)

	// point the frontend at a dead catalog
	deadSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	deadSrv.Close()

	renderer, err := NewRenderer()
	require.NoError(t, err)
	e := echo.New()
	e.Renderer = renderer
	Register(e, &Handler{
		Sessions: session.NewManager(session.NewMemoryStore(), []byte("test-secret")),
		Users:    userclient.NewClient(deadSrv.URL),
		Products: productclient.NewClient(deadSrv.URL),
		Orders:   orderclient.NewClient(deadSrv.URL),
	})
	srv := httptest.NewServer(e)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, string(body), "Failed to retrieve products")
}

func TestLogoutDropsSession(t *testing.T) {
	ts := newTestStack(t)
	registerAndLogin(t, ts, "alice", "pw123")

	code, body := ts.get(t, "/logout")
	require.Equal(t, http.StatusOK, code)
	require.NotContains(t, body, "Hello, alice")

	code, body = ts.get(t, "/")
	require.Equal(t, http.StatusOK, code)
	require.Contains(t, body, "Login")
}

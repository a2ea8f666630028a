package order

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Knight069/ecommerce-microservice/internal/clients/userclient"
	"github.com/Knight069/ecommerce-microservice/internal/handlers/user"
	"github.com/Knight069/ecommerce-microservice/internal/models"
)

// Runs the order handler against a real user service over HTTP, the way it
// is deployed: the bearer key is resolved by a remote call, not a stub.
func TestAuthRelayAgainstUserService(t *testing.T) {
	userDB, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := userDB.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, userDB.AutoMigrate(&models.User{}))

	userEcho := echo.New()
	user.Register(userEcho, &user.Handler{DB: userDB}, nil)
	userSrv := httptest.NewServer(userEcho)
	defer userSrv.Close()

	h, _ := newTestHandler(t)
	h.Users = userclient.NewClient(userSrv.URL)

	// register and login through the service to obtain a live key
	form := url.Values{}
	form.Set("email", "alice@example.com")
	form.Set("password", "pw123")
	form.Set("username", "alice")
	resp, err := http.PostForm(userSrv.URL+"/api/user/create", form)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	key, ok, err := h.Users.(*userclient.Client).Login(t.Context(), "alice", "pw123")
	require.NoError(t, err)
	require.True(t, ok)

	rec := addItem(t, h, key, "7", "2")
	require.Equal(t, http.StatusOK, rec.Code)

	order := decodeOrder(t, rec)
	require.True(t, order.IsOpen)
	require.Len(t, order.Items, 1)

	// a made-up key is rejected by the relay
	rec, c := doRequest(t, http.MethodGet, "/api/order", "made-up", nil)
	require.NoError(t, h.GetOrder(c))
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

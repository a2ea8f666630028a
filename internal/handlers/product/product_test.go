package product

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Knight069/ecommerce-microservice/internal/models"
)

func newTestHandler(t *testing.T) *Handler {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&models.Product{}))

	return &Handler{DB: db}
}

func doForm(t *testing.T, method, path string, form url.Values) (*httptest.ResponseRecorder, echo.Context) {
	t.Helper()

	var body string
	if form != nil {
		body = form.Encode()
	}
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if form != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	}
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(req, rec)
	return rec, c
}

func createProduct(t *testing.T, h *Handler, name, slug, image, price string) {
	t.Helper()

	form := url.Values{}
	form.Set("name", name)
	form.Set("slug", slug)
	form.Set("image", image)
	form.Set("price", price)

	rec, c := doForm(t, http.MethodPost, "/api/product/create", form)
	require.NoError(t, h.CreateProduct(c))
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestCreateAndGetBySlug(t *testing.T) {
	h := newTestHandler(t)
	createProduct(t, h, "Widget", "widget", "widget.png", "9.99")

	rec, c := doForm(t, http.MethodGet, "/api/product/widget", nil)
	c.SetParamNames("slug")
	c.SetParamValues("widget")
	require.NoError(t, h.GetProduct(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Result models.Product `json:"result"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "Widget", resp.Result.Name)
	require.Equal(t, "widget", resp.Result.Slug)
	require.Equal(t, "widget.png", resp.Result.Image)
	require.Equal(t, 9.99, resp.Result.Price)
}

func TestGetUnknownSlug(t *testing.T) {
	h := newTestHandler(t)

	rec, c := doForm(t, http.MethodGet, "/api/product/nope", nil)
	c.SetParamNames("slug")
	c.SetParamValues("nope")
	require.NoError(t, h.GetProduct(c))
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Contains(t, rec.Body.String(), "Product not found")
}

func TestListProducts(t *testing.T) {
	h := newTestHandler(t)
	createProduct(t, h, "Widget", "widget", "widget.png", "9.99")
	createProduct(t, h, "Gadget", "gadget", "gadget.png", "19.99")

	rec, c := doForm(t, http.MethodGet, "/api/products", nil)
	require.NoError(t, h.ListProducts(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Results []models.Product `json:"results"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Results, 2)
	require.Equal(t, "widget", resp.Results[0].Slug)
}

func TestCreateMissingFields(t *testing.T) {
	h := newTestHandler(t)

	form := url.Values{}
	form.Set("name", "Widget")
	form.Set("slug", "widget")

	rec, c := doForm(t, http.MethodPost, "/api/product/create", form)
	require.NoError(t, h.CreateProduct(c))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateInvalidPrice(t *testing.T) {
	h := newTestHandler(t)

	form := url.Values{}
	form.Set("name", "Widget")
	form.Set("slug", "widget")
	form.Set("image", "widget.png")
	form.Set("price", "cheap")

	rec, c := doForm(t, http.MethodPost, "/api/product/create", form)
	require.NoError(t, h.CreateProduct(c))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateDuplicateSlug(t *testing.T) {
	h := newTestHandler(t)
	createProduct(t, h, "Widget", "widget", "widget.png", "9.99")

	form := url.Values{}
	form.Set("name", "Widget II")
	form.Set("slug", "widget")
	form.Set("image", "widget2.png")
	form.Set("price", "12.50")

	rec, c := doForm(t, http.MethodPost, "/api/product/create", form)
	require.NoError(t, h.CreateProduct(c))
	require.Equal(t, http.StatusConflict, rec.Code)
}

func TestSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"hits": {
				"total": {"value": 1},
				"hits": [{"_source": {"id": 1, "name": "Widget", "slug": "widget", "price": 9.99}}]
			}
		}`))
	}))
	defer srv.Close()

	esClient, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)

	h := newTestHandler(t)
	h.ES = esClient
	h.Index = "product"

	rec, c := doForm(t, http.MethodGet, "/api/products/search?q=widget", nil)
	require.NoError(t, h.Search(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Total   int64            `json:"total"`
		Results []models.Product `json:"results"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, int64(1), resp.Total)
	require.Len(t, resp.Results, 1)
	require.Equal(t, "widget", resp.Results[0].Slug)
}

func TestSearchMissingQuery(t *testing.T) {
	h := newTestHandler(t)

	rec, c := doForm(t, http.MethodGet, "/api/products/search", nil)
	require.NoError(t, h.Search(c))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

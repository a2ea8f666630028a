package orderclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Knight069/ecommerce-microservice/internal/models"
)

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(orderServiceURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(orderServiceURL, "/"),
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// GetOrder fetches the caller's open order. ok=false covers both an
// unknown key and "no open order yet".
func (c *Client) GetOrder(ctx context.Context, apiKey string) (*models.Order, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/order", nil)
	if err != nil {
		return nil, false, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Basic "+apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, false, fmt.Errorf("order service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, false, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, false, fmt.Errorf("order service: status %d", resp.StatusCode)
	}

	var body struct {
		Result  *models.Order `json:"result"`
		Message string        `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, false, fmt.Errorf("decode order: %w", err)
	}
	if body.Result == nil {
		return nil, false, nil
	}
	return body.Result, true, nil
}

func (c *Client) AddItem(ctx context.Context, apiKey string, productID uint, qty int) (*models.Order, error) {
	form := url.Values{}
	form.Set("product_id", strconv.FormatUint(uint64(productID), 10))
	form.Set("qty", strconv.Itoa(qty))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/order/add-item", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Basic "+apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("order service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("order service: status %d", resp.StatusCode)
	}

	var body struct {
		Result models.Order `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode order: %w", err)
	}
	return &body.Result, nil
}

func (c *Client) Checkout(ctx context.Context, apiKey string) (*models.Order, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/order/checkout", nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Basic "+apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("order service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("order service: status %d", resp.StatusCode)
	}

	var body struct {
		Result models.Order `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode order: %w", err)
	}
	return &body.Result, nil
}

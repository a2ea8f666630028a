package userclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Knight069/ecommerce-microservice/internal/models"
)

// Client talks to the user service. The order service uses GetUser as its
// auth relay; the frontend uses the full surface.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(userServiceURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(userServiceURL, "/"),
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

// GetUser resolves an opaque API key into the owning user. ok=false means
// the key matched nobody (401 from the service); err is reserved for
// transport-level failures.
func (c *Client) GetUser(ctx context.Context, apiKey string) (*models.User, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/user", nil)
	if err != nil {
		return nil, false, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Basic "+apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, false, fmt.Errorf("user service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, false, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, false, fmt.Errorf("user service: status %d", resp.StatusCode)
	}

	var body struct {
		Result models.User `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, false, fmt.Errorf("decode user: %w", err)
	}
	return &body.Result, true, nil
}

// Login returns the fresh API key, or ok=false on bad credentials.
func (c *Client) Login(ctx context.Context, username, password string) (string, bool, error) {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)

	resp, err := c.postForm(ctx, "/api/user/login", form)
	if err != nil {
		return "", false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return "", false, nil
	}
	if resp.StatusCode != http.StatusOK {
		return "", false, fmt.Errorf("user service: status %d", resp.StatusCode)
	}

	var body struct {
		APIKey string `json:"api_key"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", false, fmt.Errorf("decode login: %w", err)
	}
	return body.APIKey, body.APIKey != "", nil
}

type CreateUserRequest struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Username  string
}

func (c *Client) CreateUser(ctx context.Context, r CreateUserRequest) (*models.User, error) {
	form := url.Values{}
	form.Set("email", r.Email)
	form.Set("password", r.Password)
	form.Set("first_name", r.FirstName)
	form.Set("last_name", r.LastName)
	form.Set("username", r.Username)

	resp, err := c.postForm(ctx, "/api/user/create", form)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("user service: status %d", resp.StatusCode)
	}

	var body struct {
		Result models.User `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode user: %w", err)
	}
	return &body.Result, nil
}

// Exists reports whether the username is already taken.
func (c *Client) Exists(ctx context.Context, username string) (bool, error) {
	u := c.baseURL + "/api/user/" + url.PathEscape(username) + "/exists"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return false, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("user service: %w", err)
	}
	defer resp.Body.Close()

	return resp.StatusCode == http.StatusOK, nil
}

func (c *Client) postForm(ctx context.Context, path string, form url.Values) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("user service: %w", err)
	}
	return resp, nil
}

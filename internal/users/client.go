package users

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"api_sales/internal/sales"

	"go.uber.org/zap"
	"resty.dev/v3"
)

// Client looks users up in the user service over HTTP. It implements
// sales.UserStore.
type Client struct {
	http   *resty.Client
	logger *zap.Logger
}

// NewClient creates a client for the user service at baseURL.
func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")

	return &Client{http: c, logger: logger}
}

// FindByID calls GET /users/{id}. A 404 maps to sales.ErrNotFound.
func (c *Client) FindByID(ctx context.Context, id string) (*sales.User, error) {
	var u sales.User
	res, err := c.http.R().
		SetContext(ctx).
		SetPathParam("id", id).
		SetResult(&u).
		Get("/users/{id}")
	if err != nil {
		c.logger.Error("error making request to user API", zap.String("user_id", id), zap.Error(err))
		return nil, fmt.Errorf("error making request to user API: %w", err)
	}

	switch res.StatusCode() {
	case http.StatusOK:
		if u.ID == "" {
			u.ID = id
		}
		return &u, nil
	case http.StatusNotFound:
		return nil, sales.ErrNotFound
	default:
		return nil, fmt.Errorf("user API returned unexpected status: %d", res.StatusCode())
	}
}

// Close releases idle connections.
func (c *Client) Close() error {
	return c.http.Close()
}

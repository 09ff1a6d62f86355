package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"foodify-backend/internal/cart"
	"foodify-backend/internal/workflow"
)

// ErrRemoteSync wraps any failed call to the external foodify services. It is
// recoverable: the local state the caller was about to mutate stays untouched.
var ErrRemoteSync = errors.New("remote sync failed")

// Config carries the base URLs of the deployed services plus the backend's
// own credential pair for them. ServiceToken is installed as the initial
// access token; ServiceRefreshToken feeds the refresh-and-retry path when the
// access token expires.
type Config struct {
	AuthBaseURL         string
	CartBaseURL         string
	OrderBaseURL        string
	ServiceToken        string
	ServiceRefreshToken string
	Timeout             time.Duration
}

// Client talks to the external auth/cart/order services. Every request
// carries the session's bearer token in the "token" header; a 401/402
// response triggers one refresh-and-retry before the error is surfaced.
type Client struct {
	cfg        Config
	httpClient *http.Client

	mu           sync.Mutex
	accessToken  string
	refreshToken string
}

func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		cfg:          cfg,
		httpClient:   &http.Client{Timeout: timeout},
		accessToken:  cfg.ServiceToken,
		refreshToken: cfg.ServiceRefreshToken,
	}
}

// SetTokens replaces the credential pair installed at construction.
func (c *Client) SetTokens(access, refresh string) {
	c.mu.Lock()
	c.accessToken = access
	c.refreshToken = refresh
	c.mu.Unlock()
}

func (c *Client) tokens() (access, refresh string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.accessToken, c.refreshToken
}

func (c *Client) do(ctx context.Context, method, url string, body, out interface{}) error {
	if err := c.doOnce(ctx, method, url, body, out, false); err == nil {
		return nil
	} else if !errors.Is(err, errTokenExpired) {
		return err
	}

	if err := c.refreshAccessToken(ctx); err != nil {
		return fmt.Errorf("%w: token refresh: %v", ErrRemoteSync, err)
	}
	err := c.doOnce(ctx, method, url, body, out, true)
	if errors.Is(err, errTokenExpired) {
		return fmt.Errorf("%w: %s %s: unauthorized after refresh", ErrRemoteSync, method, url)
	}
	return err
}

var errTokenExpired = errors.New("token expired")

func (c *Client) doOnce(ctx context.Context, method, url string, body, out interface{}, retried bool) error {
	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	access, _ := c.tokens()
	if access != "" {
		req.Header.Set("token", access)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %v", ErrRemoteSync, method, url, err)
	}
	defer resp.Body.Close()

	// The deployed auth service signals an expired access token with 402
	// rather than 401; accept both.
	if (resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusPaymentRequired) && !retried {
		return errTokenExpired
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: %s %s: status %d", ErrRemoteSync, method, url, resp.StatusCode)
	}

	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

func (c *Client) refreshAccessToken(ctx context.Context) error {
	_, refresh := c.tokens()
	if refresh == "" {
		return errors.New("no refresh token")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.cfg.AuthBaseURL+"/api/auth/refresh-token", bytes.NewReader([]byte("{}")))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("token", refresh)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("refresh endpoint returned status %d", resp.StatusCode)
	}

	var body struct {
		AccessToken string `json:"accessToken"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return err
	}
	if body.AccessToken == "" {
		return errors.New("refresh response carried no access token")
	}

	c.mu.Lock()
	c.accessToken = body.AccessToken
	c.mu.Unlock()
	return nil
}

// ---- cart service ----

type cartMutationRequest struct {
	UserID   string `json:"userId"`
	ItemID   string `json:"itemId"`
	Quantity int    `json:"quantity,omitempty"`
}

func (c *Client) AddCartItem(ctx context.Context, userID, itemID string, quantity int) error {
	return c.do(ctx, http.MethodPost, c.cfg.CartBaseURL+"/api/cart/add",
		&cartMutationRequest{UserID: userID, ItemID: itemID, Quantity: quantity}, nil)
}

func (c *Client) DecrementCartItem(ctx context.Context, userID, itemID string, quantity int) error {
	return c.do(ctx, http.MethodPost, c.cfg.CartBaseURL+"/api/cart/remove",
		&cartMutationRequest{UserID: userID, ItemID: itemID, Quantity: quantity}, nil)
}

func (c *Client) RemoveCartLine(ctx context.Context, userID, itemID string) error {
	return c.do(ctx, http.MethodPost, c.cfg.CartBaseURL+"/api/cart/remove/item",
		&cartMutationRequest{UserID: userID, ItemID: itemID}, nil)
}

type remoteCartItem struct {
	ID           string  `json:"_id"`
	Name         string  `json:"name"`
	Price        float64 `json:"price"`
	Quantity     int     `json:"quantity"`
	Image        string  `json:"image"`
	RestaurantID string  `json:"restaurantId"`
}

// CartItems fetches the server-side cart for session resume. Records without
// an item ID are dropped, matching how the storefront hydrates.
func (c *Client) CartItems(ctx context.Context, userID string) ([]cart.LineItem, error) {
	var body struct {
		Items []remoteCartItem `json:"items"`
	}
	url := c.cfg.CartBaseURL + "/api/cart/items/userid/" + userID
	if err := c.do(ctx, http.MethodGet, url, nil, &body); err != nil {
		return nil, err
	}

	items := make([]cart.LineItem, 0, len(body.Items))
	for _, raw := range body.Items {
		if raw.ID == "" {
			continue
		}
		items = append(items, cart.LineItem{
			ItemID:       raw.ID,
			Name:         raw.Name,
			UnitPrice:    raw.Price,
			Quantity:     raw.Quantity,
			Image:        raw.Image,
			RestaurantID: raw.RestaurantID,
		})
	}
	return items, nil
}

// ---- order service ----

type PlaceOrderRequest struct {
	UserID        string                 `json:"userId"`
	RestaurantID  string                 `json:"restaurantId"`
	Items         []cart.LineItem        `json:"items"`
	Amount        float64                `json:"amount"`
	Address       map[string]interface{} `json:"address"`
	PaymentMethod string                 `json:"paymentMethod"`
}

func (c *Client) PlaceOrder(ctx context.Context, req *PlaceOrderRequest) (string, error) {
	var body struct {
		OrderID string `json:"orderId"`
		Success bool   `json:"success"`
	}
	if err := c.do(ctx, http.MethodPost, c.cfg.OrderBaseURL+"/api/order/place", req, &body); err != nil {
		return "", err
	}
	return body.OrderID, nil
}

// UpdateOrderStatus forwards an already-validated transition. It implements
// workflow.StatusUpdater.
func (c *Client) UpdateOrderStatus(ctx context.Context, orderID string, status string) error {
	url := c.cfg.OrderBaseURL + "/api/order/status/" + orderID
	return c.do(ctx, http.MethodPatch, url, map[string]string{"status": status}, nil)
}

type remoteOrder struct {
	ID           string           `json:"_id"`
	UserID       string           `json:"userId"`
	RestaurantID string           `json:"restaurantId"`
	Status       string           `json:"status"`
	Amount       float64          `json:"amount"`
	Items        []remoteCartItem `json:"items"`
}

// Order carries an upstream order with its status already normalized.
type Order struct {
	ID           string
	UserID       string
	RestaurantID string
	Status       workflow.Status
	Amount       float64
}

func (c *Client) OrderByID(ctx context.Context, orderID string) (*Order, error) {
	var raw remoteOrder
	if err := c.do(ctx, http.MethodGet, c.cfg.OrderBaseURL+"/api/order/"+orderID, nil, &raw); err != nil {
		return nil, err
	}
	return &Order{
		ID:           raw.ID,
		UserID:       raw.UserID,
		RestaurantID: raw.RestaurantID,
		Status:       workflow.Normalize(raw.Status),
		Amount:       raw.Amount,
	}, nil
}

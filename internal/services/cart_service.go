package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"foodify-backend/internal/cart"
	"foodify-backend/internal/models"
	"foodify-backend/internal/notify"
	"foodify-backend/internal/repositories"
	"foodify-backend/internal/upstream"
	"foodify-backend/pkg/cache"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

var ErrEmptyCart = errors.New("cart is empty")

// SessionStore persists a user's cart aggregate between requests. A missing
// session loads as an empty cart.
type SessionStore interface {
	Load(ctx context.Context, userID string) (*cart.Cart, error)
	Save(ctx context.Context, userID string, c *cart.Cart) error
	Delete(ctx context.Context, userID string) error
}

const cartSessionTTL = 24 * time.Hour

type redisSessionStore struct {
	cache *cache.RedisCache
}

func NewRedisSessionStore(cache *cache.RedisCache) SessionStore {
	return &redisSessionStore{cache: cache}
}

func (s *redisSessionStore) key(userID string) string {
	return "cart:session:" + userID
}

func (s *redisSessionStore) Load(ctx context.Context, userID string) (*cart.Cart, error) {
	c := cart.New()
	err := s.cache.Get(ctx, s.key(userID), c)
	if errors.Is(err, redis.Nil) {
		return cart.New(), nil
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (s *redisSessionStore) Save(ctx context.Context, userID string, c *cart.Cart) error {
	return s.cache.Set(ctx, s.key(userID), c, cartSessionTTL)
}

func (s *redisSessionStore) Delete(ctx context.Context, userID string) error {
	return s.cache.Delete(ctx, s.key(userID))
}

// CartSyncClient is the slice of the upstream client the cart service needs.
type CartSyncClient interface {
	AddCartItem(ctx context.Context, userID, itemID string, quantity int) error
	DecrementCartItem(ctx context.Context, userID, itemID string, quantity int) error
	RemoveCartLine(ctx context.Context, userID, itemID string) error
	CartItems(ctx context.Context, userID string) ([]cart.LineItem, error)
	PlaceOrder(ctx context.Context, req *upstream.PlaceOrderRequest) (string, error)
}

// CartService owns the session carts. Mutations are synced remote-first: the
// upstream cart service is updated before the local aggregate, so a failed
// sync leaves the session exactly as it was.
type CartService struct {
	sessions    SessionStore
	sync        CartSyncClient
	orderRepo   repositories.OrderRepository
	paymentRepo repositories.PaymentRepository
	hub         *notify.Hub
}

func NewCartService(
	sessions SessionStore,
	sync CartSyncClient,
	orderRepo repositories.OrderRepository,
	paymentRepo repositories.PaymentRepository,
	hub *notify.Hub,
) *CartService {
	return &CartService{
		sessions:    sessions,
		sync:        sync,
		orderRepo:   orderRepo,
		paymentRepo: paymentRepo,
		hub:         hub,
	}
}

type CartView struct {
	Items        []cart.LineItem `json:"items"`
	Subtotal     float64         `json:"subtotal"`
	RestaurantID string          `json:"restaurant_id"`
	ItemCount    int             `json:"item_count"`
}

func viewOf(c *cart.Cart) *CartView {
	return &CartView{
		Items:        c.Items(),
		Subtotal:     c.Subtotal(),
		RestaurantID: c.RestaurantID(),
		ItemCount:    c.Len(),
	}
}

func (s *CartService) Get(ctx context.Context, userID string) (*CartView, error) {
	c, err := s.sessions.Load(ctx, userID)
	if err != nil {
		return nil, err
	}
	return viewOf(c), nil
}

// Hydrate rebuilds the session cart from the server-side cart on session
// resume, replacing whatever the session held.
func (s *CartService) Hydrate(ctx context.Context, userID string) (*CartView, error) {
	items, err := s.sync.CartItems(ctx, userID)
	if err != nil {
		return nil, err
	}

	c := cart.New()
	for _, item := range items {
		if err := c.AddItem(item); err != nil {
			// server-side cart should already be consistent; drop anything
			// that is not
			continue
		}
	}

	if err := s.sessions.Save(ctx, userID, c); err != nil {
		return nil, err
	}
	return viewOf(c), nil
}

// AddItem validates the add against the aggregate first, so a cross-restaurant
// conflict is rejected without touching the network, then syncs and applies.
func (s *CartService) AddItem(ctx context.Context, userID string, item cart.LineItem) (*CartView, error) {
	c, err := s.sessions.Load(ctx, userID)
	if err != nil {
		return nil, err
	}

	next := c.Clone()
	if err := next.AddItem(item); err != nil {
		if errors.Is(err, cart.ErrCrossRestaurantConflict) {
			s.hub.Publish(notify.Notification{
				Type:    "cart_conflict",
				Level:   notify.LevelError,
				UserID:  userID,
				Message: err.Error(),
			})
		}
		return nil, err
	}

	if err := s.sync.AddCartItem(ctx, userID, item.ItemID, item.Quantity); err != nil {
		s.publishSyncFailure(userID, err)
		return nil, err
	}

	if err := s.sessions.Save(ctx, userID, next); err != nil {
		return nil, err
	}
	return viewOf(next), nil
}

// UpdateQuantity replaces an existing line's quantity; zero or below removes
// the line. Updating a missing item is a no-op.
func (s *CartService) UpdateQuantity(ctx context.Context, userID, itemID string, quantity int) (*CartView, error) {
	c, err := s.sessions.Load(ctx, userID)
	if err != nil {
		return nil, err
	}

	current, ok := c.Get(itemID)
	if !ok {
		return viewOf(c), nil
	}

	if quantity <= 0 {
		return s.RemoveItem(ctx, userID, itemID)
	}

	// The remote cart tracks unit-level adds and removals, so sync the delta.
	delta := quantity - current.Quantity
	switch {
	case delta > 0:
		err = s.sync.AddCartItem(ctx, userID, itemID, delta)
	case delta < 0:
		err = s.sync.DecrementCartItem(ctx, userID, itemID, -delta)
	}
	if err != nil {
		s.publishSyncFailure(userID, err)
		return nil, err
	}

	next := c.Clone()
	next.UpdateQuantity(itemID, quantity)
	if err := s.sessions.Save(ctx, userID, next); err != nil {
		return nil, err
	}
	return viewOf(next), nil
}

func (s *CartService) RemoveItem(ctx context.Context, userID, itemID string) (*CartView, error) {
	c, err := s.sessions.Load(ctx, userID)
	if err != nil {
		return nil, err
	}

	if _, ok := c.Get(itemID); !ok {
		return viewOf(c), nil
	}

	if err := s.sync.RemoveCartLine(ctx, userID, itemID); err != nil {
		s.publishSyncFailure(userID, err)
		return nil, err
	}

	next := c.Clone()
	next.RemoveItem(itemID)
	if err := s.sessions.Save(ctx, userID, next); err != nil {
		return nil, err
	}
	return viewOf(next), nil
}

// Clear removes every line, keeping local and remote state in step line by
// line so a mid-way sync failure never leaves them disagreeing.
func (s *CartService) Clear(ctx context.Context, userID string) error {
	c, err := s.sessions.Load(ctx, userID)
	if err != nil {
		return err
	}

	next := c.Clone()
	for _, item := range c.Items() {
		if err := s.sync.RemoveCartLine(ctx, userID, item.ItemID); err != nil {
			s.publishSyncFailure(userID, err)
			if saveErr := s.sessions.Save(ctx, userID, next); saveErr != nil {
				return fmt.Errorf("%w; saving partially cleared cart: %v", err, saveErr)
			}
			return err
		}
		next.RemoveItem(item.ItemID)
	}

	return s.sessions.Delete(ctx, userID)
}

type CheckoutRequest struct {
	DeliveryAddress map[string]interface{} `json:"delivery_address" binding:"required"`
	PaymentMethod   string                 `json:"payment_method" binding:"required"`
	DeliveryFee     float64                `json:"delivery_fee"`
}

type CheckoutResponse struct {
	OrderID       string  `json:"order_id"`
	PaymentID     string  `json:"payment_id"`
	TotalAmount   float64 `json:"total_amount"`
	PaymentMethod string  `json:"payment_method"`
	Status        string  `json:"status"`
}

// Checkout places the order upstream, mirrors it into the local order and
// payment tables for the admin dashboards, and clears the session cart.
func (s *CartService) Checkout(ctx context.Context, userID string, req *CheckoutRequest) (*CheckoutResponse, error) {
	c, err := s.sessions.Load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if c.Len() == 0 {
		return nil, ErrEmptyCart
	}

	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return nil, errors.New("invalid user ID")
	}
	restUUID, err := uuid.Parse(c.RestaurantID())
	if err != nil {
		return nil, errors.New("invalid restaurant ID")
	}

	subtotal := c.Subtotal()
	total := subtotal + req.DeliveryFee

	upstreamOrderID, err := s.sync.PlaceOrder(ctx, &upstream.PlaceOrderRequest{
		UserID:        userID,
		RestaurantID:  c.RestaurantID(),
		Items:         c.Items(),
		Amount:        total,
		Address:       req.DeliveryAddress,
		PaymentMethod: req.PaymentMethod,
	})
	if err != nil {
		s.publishSyncFailure(userID, err)
		return nil, err
	}

	itemsJSON := models.JSONB{}
	for _, item := range c.Items() {
		itemsJSON[item.ItemID] = map[string]interface{}{
			"name":       item.Name,
			"unit_price": item.UnitPrice,
			"quantity":   item.Quantity,
		}
	}

	order := &models.Order{
		UserID:          userUUID,
		RestaurantID:    restUUID,
		UpstreamOrderID: upstreamOrderID,
		Status:          "pending",
		Items:           itemsJSON,
		Subtotal:        subtotal,
		DeliveryFee:     req.DeliveryFee,
		TotalAmount:     total,
		PaymentMethod:   req.PaymentMethod,
		DeliveryAddress: req.DeliveryAddress,
		StatusLog:       models.JSONB{},
		CreatedAt:       time.Now(),
	}
	if err := s.orderRepo.Create(ctx, order); err != nil {
		return nil, err
	}

	payment := &models.Payment{
		OrderID:   order.ID,
		UserID:    userUUID,
		Amount:    total,
		Method:    req.PaymentMethod,
		Status:    "pending",
		CreatedAt: time.Now(),
		Metadata:  models.JSONB{},
	}
	if err := s.paymentRepo.Create(ctx, payment); err != nil {
		return nil, err
	}

	order.PaymentID = &payment.ID
	if err := s.orderRepo.Update(ctx, order); err != nil {
		return nil, err
	}

	if err := s.sessions.Delete(ctx, userID); err != nil {
		return nil, err
	}

	s.hub.Publish(notify.Notification{
		Type:    "order_confirmation",
		Level:   notify.LevelSuccess,
		UserID:  userID,
		Title:   "Order Confirmed",
		Message: fmt.Sprintf("Your order #%s has been placed", order.ID.String()[:8]),
		Metadata: map[string]interface{}{
			"order_id": order.ID.String(),
			"amount":   total,
		},
	})

	return &CheckoutResponse{
		OrderID:       order.ID.String(),
		PaymentID:     payment.ID.String(),
		TotalAmount:   total,
		PaymentMethod: req.PaymentMethod,
		Status:        "pending",
	}, nil
}

func (s *CartService) publishSyncFailure(userID string, err error) {
	s.hub.Publish(notify.Notification{
		Type:    "cart_sync_failed",
		Level:   notify.LevelError,
		UserID:  userID,
		Message: "Could not update your cart, please try again",
		Metadata: map[string]interface{}{
			"error": err.Error(),
		},
	})
}

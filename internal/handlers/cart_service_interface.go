package handlers

import (
	"context"

	"foodify-backend/internal/cart"
	"foodify-backend/internal/services"
)

// CartServiceInterface defines cart operations the handler depends on
type CartServiceInterface interface {
	Get(ctx context.Context, userID string) (*services.CartView, error)
	Hydrate(ctx context.Context, userID string) (*services.CartView, error)
	AddItem(ctx context.Context, userID string, item cart.LineItem) (*services.CartView, error)
	UpdateQuantity(ctx context.Context, userID, itemID string, quantity int) (*services.CartView, error)
	RemoveItem(ctx context.Context, userID, itemID string) (*services.CartView, error)
	Clear(ctx context.Context, userID string) error
	Checkout(ctx context.Context, userID string, req *services.CheckoutRequest) (*services.CheckoutResponse, error)
}

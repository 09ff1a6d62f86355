package handlers

import (
	"context"

	"foodify-backend/internal/services"

	"github.com/google/uuid"
)

// OrderServiceInterface defines order operations the handler depends on
type OrderServiceInterface interface {
	GetOrderByID(ctx context.Context, orderID uuid.UUID) (*services.OrderView, error)
	GetUserOrders(ctx context.Context, userID uuid.UUID, limit, offset int) ([]services.OrderView, error)
	GetRestaurantOrders(ctx context.Context, restaurantID uuid.UUID, limit, offset int) ([]services.OrderView, error)
	GetAllOrders(ctx context.Context, status string, limit, offset int) ([]services.OrderView, error)
	NextStatuses(ctx context.Context, orderID uuid.UUID) ([]string, error)
	RefreshStatus(ctx context.Context, orderID uuid.UUID) (*services.OrderView, error)
	UpdateStatus(ctx context.Context, orderID uuid.UUID, status string) (*services.OrderView, error)
	CancelOrder(ctx context.Context, orderID, userID uuid.UUID) (*services.OrderView, error)
}

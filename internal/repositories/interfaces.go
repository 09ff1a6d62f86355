package repositories

import (
	"context"

	"foodify-backend/internal/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserRepository interface for PostgreSQL user operations
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id uuid.UUID) error
	GetAll(ctx context.Context, limit, offset int) ([]models.User, error)
}

// RestaurantRepository interface for PostgreSQL restaurant operations
type RestaurantRepository interface {
	Create(ctx context.Context, restaurant *models.Restaurant) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Restaurant, error)
	GetByOwnerID(ctx context.Context, ownerID uuid.UUID) (*models.Restaurant, error)
	Update(ctx context.Context, restaurant *models.Restaurant) error
	Delete(ctx context.Context, id uuid.UUID) error
	GetAll(ctx context.Context, limit, offset int) ([]models.Restaurant, error)
	GetActive(ctx context.Context, limit, offset int) ([]models.Restaurant, error)
}

// OrderRepository interface for PostgreSQL order operations
type OrderRepository interface {
	Create(ctx context.Context, order *models.Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	Update(ctx context.Context, order *models.Order) error
	GetByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Order, error)
	GetByRestaurantID(ctx context.Context, restaurantID uuid.UUID, limit, offset int) ([]models.Order, error)
	GetByStatus(ctx context.Context, status string, limit, offset int) ([]models.Order, error)
	GetAll(ctx context.Context, limit, offset int) ([]models.Order, error)
}

// PaymentRepository interface for PostgreSQL payment operations
type PaymentRepository interface {
	Create(ctx context.Context, payment *models.Payment) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Payment, error)
	GetByOrderID(ctx context.Context, orderID uuid.UUID) (*models.Payment, error)
	Update(ctx context.Context, payment *models.Payment) error
}

// DishRepository interface for MongoDB catalog operations
type DishRepository interface {
	Create(ctx context.Context, dish *models.Dish) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Dish, error)
	Update(ctx context.Context, dish *models.Dish) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	GetAll(ctx context.Context, limit, offset int) ([]models.Dish, error)
	GetByRestaurantID(ctx context.Context, restaurantID string, limit, offset int) ([]models.Dish, error)
	Search(ctx context.Context, query string, limit, offset int) ([]models.Dish, error)
}

// DishCategoryRepository interface for MongoDB category operations
type DishCategoryRepository interface {
	Create(ctx context.Context, category *models.DishCategory) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.DishCategory, error)
	Update(ctx context.Context, category *models.DishCategory) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	GetActive(ctx context.Context) ([]models.DishCategory, error)
}

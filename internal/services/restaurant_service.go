package services

import (
	"context"
	"errors"
	"time"

	"foodify-backend/internal/models"
	"foodify-backend/internal/repositories"

	"github.com/google/uuid"
)

var ErrRestaurantNotFound = errors.New("restaurant not found")

type RestaurantService struct {
	restaurantRepo repositories.RestaurantRepository
	userRepo       repositories.UserRepository
}

func NewRestaurantService(restaurantRepo repositories.RestaurantRepository, userRepo repositories.UserRepository) *RestaurantService {
	return &RestaurantService{
		restaurantRepo: restaurantRepo,
		userRepo:       userRepo,
	}
}

type CreateRestaurantRequest struct {
	Name         string   `json:"name" binding:"required"`
	Description  string   `json:"description"`
	Image        string   `json:"image"`
	CuisineTypes []string `json:"cuisine_types"`
	DeliveryTime string   `json:"delivery_time"`
	DeliveryFee  float64  `json:"delivery_fee"`
	Offers       string   `json:"offers"`
}

// CreateRestaurant registers a restaurant under the given owner and promotes
// the owner to the restaurant role.
func (s *RestaurantService) CreateRestaurant(ctx context.Context, ownerID uuid.UUID, req *CreateRestaurantRequest) (*models.Restaurant, error) {
	owner, err := s.userRepo.GetByID(ctx, ownerID)
	if err != nil {
		return nil, ErrUserNotFound
	}

	restaurant := &models.Restaurant{
		Name:         req.Name,
		Description:  req.Description,
		Image:        req.Image,
		CuisineTypes: req.CuisineTypes,
		DeliveryTime: req.DeliveryTime,
		DeliveryFee:  req.DeliveryFee,
		Offers:       req.Offers,
		IsOpen:       true,
		Status:       "pending_approval",
		OwnerID:      ownerID,
		CreatedAt:    time.Now(),
	}
	if err := s.restaurantRepo.Create(ctx, restaurant); err != nil {
		return nil, err
	}

	owner.Role = "restaurant_owner"
	owner.RestaurantID = &restaurant.ID
	owner.UpdatedAt = time.Now()
	if err := s.userRepo.Update(ctx, owner); err != nil {
		return nil, err
	}

	return restaurant, nil
}

func (s *RestaurantService) GetRestaurant(ctx context.Context, id uuid.UUID) (*models.Restaurant, error) {
	restaurant, err := s.restaurantRepo.GetByID(ctx, id)
	if err != nil {
		return nil, ErrRestaurantNotFound
	}
	return restaurant, nil
}

// ListRestaurants returns only approved restaurants for the public directory.
func (s *RestaurantService) ListRestaurants(ctx context.Context, limit, offset int) ([]models.Restaurant, error) {
	return s.restaurantRepo.GetActive(ctx, limit, offset)
}

func (s *RestaurantService) ListAllRestaurants(ctx context.Context, limit, offset int) ([]models.Restaurant, error) {
	return s.restaurantRepo.GetAll(ctx, limit, offset)
}

type UpdateRestaurantRequest struct {
	Name         *string  `json:"name"`
	Description  *string  `json:"description"`
	Image        *string  `json:"image"`
	CuisineTypes []string `json:"cuisine_types"`
	DeliveryTime *string  `json:"delivery_time"`
	DeliveryFee  *float64 `json:"delivery_fee"`
	IsOpen       *bool    `json:"is_open"`
	Offers       *string  `json:"offers"`
}

func (s *RestaurantService) UpdateRestaurant(ctx context.Context, id uuid.UUID, req *UpdateRestaurantRequest) (*models.Restaurant, error) {
	restaurant, err := s.restaurantRepo.GetByID(ctx, id)
	if err != nil {
		return nil, ErrRestaurantNotFound
	}

	if req.Name != nil {
		restaurant.Name = *req.Name
	}
	if req.Description != nil {
		restaurant.Description = *req.Description
	}
	if req.Image != nil {
		restaurant.Image = *req.Image
	}
	if req.CuisineTypes != nil {
		restaurant.CuisineTypes = req.CuisineTypes
	}
	if req.DeliveryTime != nil {
		restaurant.DeliveryTime = *req.DeliveryTime
	}
	if req.DeliveryFee != nil {
		restaurant.DeliveryFee = *req.DeliveryFee
	}
	if req.IsOpen != nil {
		restaurant.IsOpen = *req.IsOpen
	}
	if req.Offers != nil {
		restaurant.Offers = *req.Offers
	}
	restaurant.UpdatedAt = time.Now()

	if err := s.restaurantRepo.Update(ctx, restaurant); err != nil {
		return nil, err
	}
	return restaurant, nil
}

// SetStatus is the admin switch: active restaurants show up in the public
// directory, suspended ones disappear from it.
func (s *RestaurantService) SetStatus(ctx context.Context, id uuid.UUID, status string) (*models.Restaurant, error) {
	switch status {
	case "active", "suspended", "pending_approval":
	default:
		return nil, errors.New("invalid restaurant status")
	}

	restaurant, err := s.restaurantRepo.GetByID(ctx, id)
	if err != nil {
		return nil, ErrRestaurantNotFound
	}

	restaurant.Status = status
	restaurant.UpdatedAt = time.Now()
	if err := s.restaurantRepo.Update(ctx, restaurant); err != nil {
		return nil, err
	}
	return restaurant, nil
}

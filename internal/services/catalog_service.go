package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"foodify-backend/internal/models"
	"foodify-backend/internal/repositories"
	"foodify-backend/pkg/cache"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var ErrDishNotFound = errors.New("dish not found")

const dishCacheTTL = 10 * time.Minute

// CatalogService serves the dish catalog from MongoDB with a Redis
// read-through cache on listing queries.
type CatalogService struct {
	dishRepo     repositories.DishRepository
	categoryRepo repositories.DishCategoryRepository
	cache        *cache.RedisCache
}

func NewCatalogService(
	dishRepo repositories.DishRepository,
	categoryRepo repositories.DishCategoryRepository,
	cache *cache.RedisCache,
) *CatalogService {
	return &CatalogService{
		dishRepo:     dishRepo,
		categoryRepo: categoryRepo,
		cache:        cache,
	}
}

type CreateDishRequest struct {
	RestaurantID string   `json:"restaurant_id" binding:"required"`
	Name         string   `json:"name" binding:"required"`
	Description  string   `json:"description"`
	Price        float64  `json:"price" binding:"required,gt=0"`
	Image        string   `json:"image"`
	Category     string   `json:"category" binding:"required"`
	IsVegetarian bool     `json:"is_vegetarian"`
	Tags         []string `json:"tags"`
}

func (s *CatalogService) CreateDish(ctx context.Context, req *CreateDishRequest) (*models.Dish, error) {
	dish := &models.Dish{
		RestaurantID: req.RestaurantID,
		Name:         req.Name,
		Description:  req.Description,
		Price:        req.Price,
		Image:        req.Image,
		Category:     req.Category,
		IsVegetarian: req.IsVegetarian,
		IsAvailable:  true,
		Tags:         req.Tags,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	if err := s.dishRepo.Create(ctx, dish); err != nil {
		return nil, err
	}

	s.invalidateRestaurant(ctx, req.RestaurantID)
	return dish, nil
}

func (s *CatalogService) GetDish(ctx context.Context, id string) (*models.Dish, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrDishNotFound
	}
	dish, err := s.dishRepo.GetByID(ctx, objID)
	if err != nil {
		return nil, ErrDishNotFound
	}
	return dish, nil
}

func (s *CatalogService) ListDishes(ctx context.Context, limit, offset int) ([]models.Dish, error) {
	cacheKey := fmt.Sprintf("catalog:dishes:%d:%d", limit, offset)

	var dishes []models.Dish
	if s.cache != nil {
		if err := s.cache.Get(ctx, cacheKey, &dishes); err == nil {
			return dishes, nil
		}
	}

	dishes, err := s.dishRepo.GetAll(ctx, limit, offset)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		s.cache.Set(ctx, cacheKey, dishes, dishCacheTTL)
	}
	return dishes, nil
}

func (s *CatalogService) ListRestaurantDishes(ctx context.Context, restaurantID string, limit, offset int) ([]models.Dish, error) {
	cacheKey := fmt.Sprintf("catalog:restaurant:%s:%d:%d", restaurantID, limit, offset)

	var dishes []models.Dish
	if s.cache != nil {
		if err := s.cache.Get(ctx, cacheKey, &dishes); err == nil {
			return dishes, nil
		}
	}

	dishes, err := s.dishRepo.GetByRestaurantID(ctx, restaurantID, limit, offset)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		s.cache.Set(ctx, cacheKey, dishes, dishCacheTTL)
	}
	return dishes, nil
}

func (s *CatalogService) SearchDishes(ctx context.Context, query string, limit, offset int) ([]models.Dish, error) {
	return s.dishRepo.Search(ctx, query, limit, offset)
}

type UpdateDishRequest struct {
	Name         *string  `json:"name"`
	Description  *string  `json:"description"`
	Price        *float64 `json:"price"`
	Image        *string  `json:"image"`
	Category     *string  `json:"category"`
	IsVegetarian *bool    `json:"is_vegetarian"`
	IsAvailable  *bool    `json:"is_available"`
	Tags         []string `json:"tags"`
}

func (s *CatalogService) UpdateDish(ctx context.Context, id string, req *UpdateDishRequest) (*models.Dish, error) {
	dish, err := s.GetDish(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		dish.Name = *req.Name
	}
	if req.Description != nil {
		dish.Description = *req.Description
	}
	if req.Price != nil {
		dish.Price = *req.Price
	}
	if req.Image != nil {
		dish.Image = *req.Image
	}
	if req.Category != nil {
		dish.Category = *req.Category
	}
	if req.IsVegetarian != nil {
		dish.IsVegetarian = *req.IsVegetarian
	}
	if req.IsAvailable != nil {
		dish.IsAvailable = *req.IsAvailable
	}
	if req.Tags != nil {
		dish.Tags = req.Tags
	}
	dish.UpdatedAt = time.Now()

	if err := s.dishRepo.Update(ctx, dish); err != nil {
		return nil, err
	}

	s.invalidateRestaurant(ctx, dish.RestaurantID)
	return dish, nil
}

func (s *CatalogService) DeleteDish(ctx context.Context, id string) error {
	dish, err := s.GetDish(ctx, id)
	if err != nil {
		return err
	}
	if err := s.dishRepo.Delete(ctx, dish.ID); err != nil {
		return err
	}
	s.invalidateRestaurant(ctx, dish.RestaurantID)
	return nil
}

func (s *CatalogService) ListCategories(ctx context.Context) ([]models.DishCategory, error) {
	return s.categoryRepo.GetActive(ctx)
}

func (s *CatalogService) invalidateRestaurant(ctx context.Context, restaurantID string) {
	if s.cache == nil {
		return
	}
	// Listing cache keys carry limit and offset, so only the first page is
	// worth invalidating eagerly; the rest expire on the TTL.
	s.cache.Delete(ctx, fmt.Sprintf("catalog:restaurant:%s:%d:%d", restaurantID, 20, 0))
	s.cache.Delete(ctx, "catalog:dishes:20:0")
}

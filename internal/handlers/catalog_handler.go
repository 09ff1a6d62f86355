package handlers

import (
	"errors"
	"net/http"

	"foodify-backend/internal/middleware"
	"foodify-backend/internal/services"

	"github.com/gin-gonic/gin"
)

type CatalogHandler struct {
	catalogService *services.CatalogService
}

func NewCatalogHandler(catalogService *services.CatalogService) *CatalogHandler {
	return &CatalogHandler{
		catalogService: catalogService,
	}
}

// RegisterRoutes registers the routes for the dish catalog
func (h *CatalogHandler) RegisterRoutes(router *gin.RouterGroup, authMiddleware *middleware.AuthMiddleware) {
	// Public catalog
	dishes := router.Group("/dishes")
	{
		dishes.GET("", h.ListDishes)
		dishes.GET("/search", h.SearchDishes)
		dishes.GET("/:dish_id", h.GetDish)
	}
	router.GET("/categories", h.ListCategories)
	router.GET("/restaurants/:restaurant_id/dishes", h.ListRestaurantDishes)

	// Catalog management
	manage := router.Group("/dishes", authMiddleware.AuthRequired(), authMiddleware.RestaurantOwnerRequired())
	{
		manage.POST("", h.CreateDish)
		manage.PUT("/:dish_id", h.UpdateDish)
		manage.DELETE("/:dish_id", h.DeleteDish)
	}
}

// ListDishes godoc
// @Summary List dishes
// @Tags catalog
// @Produce json
// @Success 200 {array} models.Dish
// @Router /dishes [get]
func (h *CatalogHandler) ListDishes(c *gin.Context) {
	limit, offset := pagination(c)
	dishes, err := h.catalogService.ListDishes(c.Request.Context(), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "Failed to list dishes",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, dishes)
}

// SearchDishes godoc
// @Summary Search dishes by name or tag
// @Tags catalog
// @Produce json
// @Param q query string true "Search query"
// @Success 200 {array} models.Dish
// @Router /dishes/search [get]
func (h *CatalogHandler) SearchDishes(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Search query required",
			Message: "Provide a q parameter",
		})
		return
	}

	limit, offset := pagination(c)
	dishes, err := h.catalogService.SearchDishes(c.Request.Context(), query, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "Search failed",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, dishes)
}

// GetDish godoc
// @Summary Get a dish by ID
// @Tags catalog
// @Produce json
// @Param dish_id path string true "Dish ID"
// @Success 200 {object} models.Dish
// @Failure 404 {object} ErrorResponse
// @Router /dishes/{dish_id} [get]
func (h *CatalogHandler) GetDish(c *gin.Context) {
	dish, err := h.catalogService.GetDish(c.Request.Context(), c.Param("dish_id"))
	if err != nil {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "Dish not found",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, dish)
}

// ListRestaurantDishes godoc
// @Summary List a restaurant's dishes
// @Tags catalog
// @Produce json
// @Param restaurant_id path string true "Restaurant ID"
// @Success 200 {array} models.Dish
// @Router /restaurants/{restaurant_id}/dishes [get]
func (h *CatalogHandler) ListRestaurantDishes(c *gin.Context) {
	limit, offset := pagination(c)
	dishes, err := h.catalogService.ListRestaurantDishes(c.Request.Context(), c.Param("restaurant_id"), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "Failed to list dishes",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, dishes)
}

// ListCategories godoc
// @Summary List active dish categories
// @Tags catalog
// @Produce json
// @Success 200 {array} models.DishCategory
// @Router /categories [get]
func (h *CatalogHandler) ListCategories(c *gin.Context) {
	categories, err := h.catalogService.ListCategories(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "Failed to list categories",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, categories)
}

// CreateDish godoc
// @Summary Add a dish to the catalog
// @Tags catalog
// @Accept json
// @Produce json
// @Param body body services.CreateDishRequest true "Dish data"
// @Success 201 {object} models.Dish
// @Router /dishes [post]
func (h *CatalogHandler) CreateDish(c *gin.Context) {
	var req services.CreateDishRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid request body",
			Message: err.Error(),
		})
		return
	}

	// Owners may only add dishes to their own restaurant.
	if middleware.GetUserRole(c) != "admin" && middleware.GetRestaurantID(c) != req.RestaurantID {
		c.JSON(http.StatusForbidden, ErrorResponse{
			Error:   "Forbidden",
			Message: "Restaurant does not belong to this user",
		})
		return
	}

	dish, err := h.catalogService.CreateDish(c.Request.Context(), &req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "Failed to create dish",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, dish)
}

// UpdateDish godoc
// @Summary Update a dish
// @Tags catalog
// @Accept json
// @Produce json
// @Param dish_id path string true "Dish ID"
// @Param body body services.UpdateDishRequest true "Dish fields"
// @Success 200 {object} models.Dish
// @Failure 404 {object} ErrorResponse
// @Router /dishes/{dish_id} [put]
func (h *CatalogHandler) UpdateDish(c *gin.Context) {
	var req services.UpdateDishRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid request body",
			Message: err.Error(),
		})
		return
	}

	if !h.ownsDish(c, c.Param("dish_id")) {
		return
	}

	dish, err := h.catalogService.UpdateDish(c.Request.Context(), c.Param("dish_id"), &req)
	if err != nil {
		c.JSON(catalogErrorStatus(err), ErrorResponse{
			Error:   "Failed to update dish",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, dish)
}

// DeleteDish godoc
// @Summary Remove a dish from the catalog
// @Tags catalog
// @Produce json
// @Param dish_id path string true "Dish ID"
// @Success 200 {object} map[string]string
// @Failure 404 {object} ErrorResponse
// @Router /dishes/{dish_id} [delete]
func (h *CatalogHandler) DeleteDish(c *gin.Context) {
	if !h.ownsDish(c, c.Param("dish_id")) {
		return
	}

	if err := h.catalogService.DeleteDish(c.Request.Context(), c.Param("dish_id")); err != nil {
		c.JSON(catalogErrorStatus(err), ErrorResponse{
			Error:   "Failed to delete dish",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Dish deleted"})
}

// ownsDish writes the error response itself when access is denied.
func (h *CatalogHandler) ownsDish(c *gin.Context, dishID string) bool {
	if middleware.GetUserRole(c) == "admin" {
		return true
	}

	dish, err := h.catalogService.GetDish(c.Request.Context(), dishID)
	if err != nil {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "Dish not found",
			Message: err.Error(),
		})
		return false
	}
	if dish.RestaurantID != middleware.GetRestaurantID(c) {
		c.JSON(http.StatusForbidden, ErrorResponse{
			Error:   "Forbidden",
			Message: "Restaurant does not belong to this user",
		})
		return false
	}
	return true
}

func catalogErrorStatus(err error) int {
	if errors.Is(err, services.ErrDishNotFound) {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

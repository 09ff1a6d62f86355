package handlers

import (
	"errors"
	"net/http"

	"foodify-backend/internal/middleware"
	"foodify-backend/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type RestaurantHandler struct {
	restaurantService *services.RestaurantService
}

func NewRestaurantHandler(restaurantService *services.RestaurantService) *RestaurantHandler {
	return &RestaurantHandler{
		restaurantService: restaurantService,
	}
}

// RegisterRoutes registers the routes for the restaurant directory
func (h *RestaurantHandler) RegisterRoutes(router *gin.RouterGroup, authMiddleware *middleware.AuthMiddleware) {
	// Public directory
	restaurants := router.Group("/restaurants")
	{
		restaurants.GET("", h.ListRestaurants)
		restaurants.GET("/:restaurant_id", h.GetRestaurant)
	}

	// Owner onboarding and management
	owner := router.Group("/restaurants", authMiddleware.AuthRequired())
	{
		owner.POST("", h.CreateRestaurant)
		owner.PUT("/:restaurant_id", h.UpdateRestaurant)
	}

	// Admin console
	admin := router.Group("/admin/restaurants", authMiddleware.AuthRequired(), authMiddleware.AdminRequired())
	{
		admin.GET("", h.ListAllRestaurants)
		admin.PATCH("/:restaurant_id/status", h.SetRestaurantStatus)
	}
}

// ListRestaurants godoc
// @Summary List active restaurants
// @Tags restaurants
// @Produce json
// @Success 200 {array} models.Restaurant
// @Router /restaurants [get]
func (h *RestaurantHandler) ListRestaurants(c *gin.Context) {
	limit, offset := pagination(c)
	restaurants, err := h.restaurantService.ListRestaurants(c.Request.Context(), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "Failed to list restaurants",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, restaurants)
}

// GetRestaurant godoc
// @Summary Get a restaurant by ID
// @Tags restaurants
// @Produce json
// @Param restaurant_id path string true "Restaurant ID"
// @Success 200 {object} models.Restaurant
// @Failure 404 {object} ErrorResponse
// @Router /restaurants/{restaurant_id} [get]
func (h *RestaurantHandler) GetRestaurant(c *gin.Context) {
	id, err := uuid.Parse(c.Param("restaurant_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid restaurant ID",
			Message: err.Error(),
		})
		return
	}

	restaurant, err := h.restaurantService.GetRestaurant(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "Restaurant not found",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, restaurant)
}

// CreateRestaurant godoc
// @Summary Register a restaurant under the authenticated user
// @Tags restaurants
// @Accept json
// @Produce json
// @Param body body services.CreateRestaurantRequest true "Restaurant data"
// @Success 201 {object} models.Restaurant
// @Router /restaurants [post]
func (h *RestaurantHandler) CreateRestaurant(c *gin.Context) {
	var req services.CreateRestaurantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid request body",
			Message: err.Error(),
		})
		return
	}

	ownerID, ok := middleware.GetUserUUID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "Unauthorized",
			Message: "Invalid user ID",
		})
		return
	}

	restaurant, err := h.restaurantService.CreateRestaurant(c.Request.Context(), ownerID, &req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "Failed to create restaurant",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, restaurant)
}

// UpdateRestaurant godoc
// @Summary Update restaurant details
// @Tags restaurants
// @Accept json
// @Produce json
// @Param restaurant_id path string true "Restaurant ID"
// @Param body body services.UpdateRestaurantRequest true "Restaurant fields"
// @Success 200 {object} models.Restaurant
// @Failure 403 {object} ErrorResponse
// @Router /restaurants/{restaurant_id} [put]
func (h *RestaurantHandler) UpdateRestaurant(c *gin.Context) {
	id, err := uuid.Parse(c.Param("restaurant_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid restaurant ID",
			Message: err.Error(),
		})
		return
	}

	// Owners may only edit their own restaurant; admins may edit any.
	if middleware.GetUserRole(c) != "admin" && middleware.GetRestaurantID(c) != id.String() {
		c.JSON(http.StatusForbidden, ErrorResponse{
			Error:   "Forbidden",
			Message: "Restaurant does not belong to this user",
		})
		return
	}

	var req services.UpdateRestaurantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid request body",
			Message: err.Error(),
		})
		return
	}

	restaurant, err := h.restaurantService.UpdateRestaurant(c.Request.Context(), id, &req)
	if err != nil {
		if errors.Is(err, services.ErrRestaurantNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error:   "Restaurant not found",
				Message: err.Error(),
			})
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "Failed to update restaurant",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, restaurant)
}

// ListAllRestaurants godoc
// @Summary List every restaurant regardless of status
// @Tags restaurants
// @Produce json
// @Success 200 {array} models.Restaurant
// @Router /admin/restaurants [get]
func (h *RestaurantHandler) ListAllRestaurants(c *gin.Context) {
	limit, offset := pagination(c)
	restaurants, err := h.restaurantService.ListAllRestaurants(c.Request.Context(), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "Failed to list restaurants",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, restaurants)
}

type SetRestaurantStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// SetRestaurantStatus godoc
// @Summary Activate or suspend a restaurant
// @Tags restaurants
// @Accept json
// @Produce json
// @Param restaurant_id path string true "Restaurant ID"
// @Param body body SetRestaurantStatusRequest true "New status"
// @Success 200 {object} models.Restaurant
// @Router /admin/restaurants/{restaurant_id}/status [patch]
func (h *RestaurantHandler) SetRestaurantStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("restaurant_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid restaurant ID",
			Message: err.Error(),
		})
		return
	}

	var req SetRestaurantStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid request body",
			Message: err.Error(),
		})
		return
	}

	restaurant, err := h.restaurantService.SetStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		if errors.Is(err, services.ErrRestaurantNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error:   "Restaurant not found",
				Message: err.Error(),
			})
			return
		}
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Failed to update status",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, restaurant)
}

// ErrorResponse is the error body returned by all handlers
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

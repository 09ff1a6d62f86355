package handlers

import (
	"errors"
	"net/http"

	"foodify-backend/internal/cart"
	"foodify-backend/internal/middleware"
	"foodify-backend/internal/services"
	"foodify-backend/internal/upstream"

	"github.com/gin-gonic/gin"
)

type CartHandler struct {
	cartService CartServiceInterface
}

func NewCartHandler(cartService CartServiceInterface) *CartHandler {
	return &CartHandler{
		cartService: cartService,
	}
}

// RegisterRoutes registers the routes for cart management
func (h *CartHandler) RegisterRoutes(router *gin.RouterGroup, authMiddleware *middleware.AuthMiddleware) {
	// All cart routes require authentication
	cartGroup := router.Group("/cart", authMiddleware.AuthRequired())
	{
		cartGroup.GET("", h.GetCart)
		cartGroup.POST("/hydrate", h.HydrateCart)
		cartGroup.POST("/items", h.AddToCart)
		cartGroup.PUT("/items/:item_id", h.UpdateCartItem)
		cartGroup.DELETE("/items/:item_id", h.RemoveFromCart)
		cartGroup.DELETE("", h.ClearCart)
		cartGroup.POST("/checkout", h.Checkout)
	}
}

// GetCart godoc
// @Summary Get user's cart
// @Description Get current user's session cart
// @Tags cart
// @Produce json
// @Success 200 {object} services.CartView
// @Failure 401 {object} ErrorResponse
// @Router /cart [get]
func (h *CartHandler) GetCart(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "Unauthorized",
			Message: "User ID not found",
		})
		return
	}

	view, err := h.cartService.Get(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "Failed to get cart",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, view)
}

// HydrateCart godoc
// @Summary Rebuild session cart
// @Description Rebuild the session cart from the server-side cart
// @Tags cart
// @Produce json
// @Success 200 {object} services.CartView
// @Failure 502 {object} ErrorResponse
// @Router /cart/hydrate [post]
func (h *CartHandler) HydrateCart(c *gin.Context) {
	userID := middleware.GetUserID(c)

	view, err := h.cartService.Hydrate(c.Request.Context(), userID)
	if err != nil {
		c.JSON(cartErrorStatus(err), ErrorResponse{
			Error:   "Failed to hydrate cart",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, view)
}

type AddToCartRequest struct {
	ItemID       string  `json:"item_id" binding:"required"`
	Name         string  `json:"name" binding:"required"`
	UnitPrice    float64 `json:"unit_price"`
	Quantity     int     `json:"quantity" binding:"required,min=1"`
	Image        string  `json:"image"`
	RestaurantID string  `json:"restaurant_id" binding:"required"`
}

// AddToCart godoc
// @Summary Add item to cart
// @Description Add an item to the cart, merging with an existing line
// @Tags cart
// @Accept json
// @Produce json
// @Param item body AddToCartRequest true "Cart item data"
// @Success 200 {object} services.CartView
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /cart/items [post]
func (h *CartHandler) AddToCart(c *gin.Context) {
	var req AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid request body",
			Message: err.Error(),
		})
		return
	}

	userID := middleware.GetUserID(c)

	view, err := h.cartService.AddItem(c.Request.Context(), userID, cart.LineItem{
		ItemID:       req.ItemID,
		Name:         req.Name,
		UnitPrice:    req.UnitPrice,
		Quantity:     req.Quantity,
		Image:        req.Image,
		RestaurantID: req.RestaurantID,
	})
	if err != nil {
		c.JSON(cartErrorStatus(err), ErrorResponse{
			Error:   "Failed to add item",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, view)
}

type UpdateCartItemRequest struct {
	Quantity int `json:"quantity"`
}

// UpdateCartItem godoc
// @Summary Update cart item quantity
// @Description Set a line's quantity; zero or below removes the line
// @Tags cart
// @Accept json
// @Produce json
// @Param item_id path string true "Item ID"
// @Param body body UpdateCartItemRequest true "New quantity"
// @Success 200 {object} services.CartView
// @Failure 400 {object} ErrorResponse
// @Router /cart/items/{item_id} [put]
func (h *CartHandler) UpdateCartItem(c *gin.Context) {
	var req UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid request body",
			Message: err.Error(),
		})
		return
	}

	userID := middleware.GetUserID(c)
	itemID := c.Param("item_id")

	view, err := h.cartService.UpdateQuantity(c.Request.Context(), userID, itemID, req.Quantity)
	if err != nil {
		c.JSON(cartErrorStatus(err), ErrorResponse{
			Error:   "Failed to update item",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, view)
}

// RemoveFromCart godoc
// @Summary Remove item from cart
// @Tags cart
// @Produce json
// @Param item_id path string true "Item ID"
// @Success 200 {object} services.CartView
// @Router /cart/items/{item_id} [delete]
func (h *CartHandler) RemoveFromCart(c *gin.Context) {
	userID := middleware.GetUserID(c)
	itemID := c.Param("item_id")

	view, err := h.cartService.RemoveItem(c.Request.Context(), userID, itemID)
	if err != nil {
		c.JSON(cartErrorStatus(err), ErrorResponse{
			Error:   "Failed to remove item",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, view)
}

// ClearCart godoc
// @Summary Clear the cart
// @Tags cart
// @Produce json
// @Success 200 {object} map[string]string
// @Router /cart [delete]
func (h *CartHandler) ClearCart(c *gin.Context) {
	userID := middleware.GetUserID(c)

	if err := h.cartService.Clear(c.Request.Context(), userID); err != nil {
		c.JSON(cartErrorStatus(err), ErrorResponse{
			Error:   "Failed to clear cart",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Cart cleared"})
}

// Checkout godoc
// @Summary Checkout the cart
// @Description Place the order and clear the session cart
// @Tags cart
// @Accept json
// @Produce json
// @Param body body services.CheckoutRequest true "Checkout data"
// @Success 200 {object} services.CheckoutResponse
// @Failure 400 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Router /cart/checkout [post]
func (h *CartHandler) Checkout(c *gin.Context) {
	var req services.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid request body",
			Message: err.Error(),
		})
		return
	}

	userID := middleware.GetUserID(c)

	resp, err := h.cartService.Checkout(c.Request.Context(), userID, &req)
	if err != nil {
		if errors.Is(err, services.ErrEmptyCart) {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "Cart is empty",
				Message: err.Error(),
			})
			return
		}
		c.JSON(cartErrorStatus(err), ErrorResponse{
			Error:   "Checkout failed",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, resp)
}

func cartErrorStatus(err error) int {
	switch {
	case errors.Is(err, cart.ErrCrossRestaurantConflict):
		return http.StatusConflict
	case errors.Is(err, cart.ErrInvalidQuantity), errors.Is(err, cart.ErrInvalidPrice):
		return http.StatusBadRequest
	case errors.Is(err, upstream.ErrRemoteSync):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

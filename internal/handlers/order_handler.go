package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"foodify-backend/internal/middleware"
	"foodify-backend/internal/services"
	"foodify-backend/internal/upstream"
	"foodify-backend/internal/workflow"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type OrderHandler struct {
	orderService OrderServiceInterface
}

func NewOrderHandler(orderService OrderServiceInterface) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
	}
}

// RegisterRoutes registers the routes for order management
func (h *OrderHandler) RegisterRoutes(router *gin.RouterGroup, authMiddleware *middleware.AuthMiddleware) {
	// Customer routes
	customer := router.Group("/", authMiddleware.AuthRequired())
	{
		customer.GET("/orders", h.GetMyOrders)
		customer.GET("/orders/:order_id", h.GetOrder)
		customer.GET("/orders/:order_id/next-statuses", h.GetNextStatuses)
		customer.POST("/orders/:order_id/refresh", h.RefreshOrderStatus)
		customer.POST("/orders/:order_id/cancel", h.CancelOrder)
	}

	// Restaurant dashboard
	restaurant := router.Group("/restaurant", authMiddleware.AuthRequired(), authMiddleware.RestaurantOwnerRequired())
	{
		restaurant.GET("/orders", h.GetRestaurantOrders)
		restaurant.PATCH("/orders/:order_id/status", h.UpdateOrderStatus)
	}

	// Super admin console
	admin := router.Group("/admin", authMiddleware.AuthRequired(), authMiddleware.AdminRequired())
	{
		admin.GET("/orders", h.GetAllOrders)
		admin.PATCH("/orders/:order_id/status", h.UpdateOrderStatus)
	}
}

func pagination(c *gin.Context) (limit, offset int) {
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// GetMyOrders godoc
// @Summary List the user's orders
// @Tags orders
// @Produce json
// @Success 200 {array} services.OrderView
// @Router /orders [get]
func (h *OrderHandler) GetMyOrders(c *gin.Context) {
	userID, ok := middleware.GetUserUUID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "Unauthorized",
			Message: "Invalid user ID",
		})
		return
	}

	limit, offset := pagination(c)
	orders, err := h.orderService.GetUserOrders(c.Request.Context(), userID, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "Failed to list orders",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, orders)
}

// GetOrder godoc
// @Summary Get an order
// @Tags orders
// @Produce json
// @Param order_id path string true "Order ID"
// @Success 200 {object} services.OrderView
// @Failure 404 {object} ErrorResponse
// @Router /orders/{order_id} [get]
func (h *OrderHandler) GetOrder(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("order_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid order ID",
			Message: err.Error(),
		})
		return
	}

	order, err := h.orderService.GetOrderByID(c.Request.Context(), orderID)
	if err != nil {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "Order not found",
			Message: err.Error(),
		})
		return
	}

	// Customers only see their own orders; staff see everything.
	role := middleware.GetUserRole(c)
	if role != "admin" && role != "restaurant_owner" && order.UserID != middleware.GetUserID(c) {
		c.JSON(http.StatusForbidden, ErrorResponse{
			Error:   "Forbidden",
			Message: "Order does not belong to this user",
		})
		return
	}

	c.JSON(http.StatusOK, order)
}

// GetNextStatuses godoc
// @Summary List legal next statuses for an order
// @Tags orders
// @Produce json
// @Param order_id path string true "Order ID"
// @Success 200 {object} map[string][]string
// @Router /orders/{order_id}/next-statuses [get]
func (h *OrderHandler) GetNextStatuses(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("order_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid order ID",
			Message: err.Error(),
		})
		return
	}

	next, err := h.orderService.NextStatuses(c.Request.Context(), orderID)
	if err != nil {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "Order not found",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"next_statuses": next})
}

// RefreshOrderStatus godoc
// @Summary Pull the latest order status from the order service
// @Tags orders
// @Produce json
// @Param order_id path string true "Order ID"
// @Success 200 {object} services.OrderView
// @Failure 502 {object} ErrorResponse
// @Router /orders/{order_id}/refresh [post]
func (h *OrderHandler) RefreshOrderStatus(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("order_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid order ID",
			Message: err.Error(),
		})
		return
	}

	order, err := h.orderService.GetOrderByID(c.Request.Context(), orderID)
	if err != nil {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "Order not found",
			Message: err.Error(),
		})
		return
	}

	role := middleware.GetUserRole(c)
	if role != "admin" && role != "restaurant_owner" && order.UserID != middleware.GetUserID(c) {
		c.JSON(http.StatusForbidden, ErrorResponse{
			Error:   "Forbidden",
			Message: "Order does not belong to this user",
		})
		return
	}

	refreshed, err := h.orderService.RefreshStatus(c.Request.Context(), orderID)
	if err != nil {
		c.JSON(orderErrorStatus(err), ErrorResponse{
			Error:   "Failed to refresh order status",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, refreshed)
}

// CancelOrder godoc
// @Summary Cancel a pending order
// @Tags orders
// @Produce json
// @Param order_id path string true "Order ID"
// @Success 200 {object} services.OrderView
// @Failure 409 {object} ErrorResponse
// @Router /orders/{order_id}/cancel [post]
func (h *OrderHandler) CancelOrder(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("order_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid order ID",
			Message: err.Error(),
		})
		return
	}

	userID, ok := middleware.GetUserUUID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "Unauthorized",
			Message: "Invalid user ID",
		})
		return
	}

	order, err := h.orderService.CancelOrder(c.Request.Context(), orderID, userID)
	if err != nil {
		c.JSON(orderErrorStatus(err), ErrorResponse{
			Error:   "Failed to cancel order",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, order)
}

// GetRestaurantOrders godoc
// @Summary List orders for the caller's restaurant
// @Tags orders
// @Produce json
// @Success 200 {array} services.OrderView
// @Router /orders/restaurant [get]
func (h *OrderHandler) GetRestaurantOrders(c *gin.Context) {
	restaurantID, err := uuid.Parse(middleware.GetRestaurantID(c))
	if err != nil {
		c.JSON(http.StatusForbidden, ErrorResponse{
			Error:   "Restaurant access required",
			Message: "No restaurant attached to this account",
		})
		return
	}

	limit, offset := pagination(c)
	orders, err := h.orderService.GetRestaurantOrders(c.Request.Context(), restaurantID, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "Failed to list orders",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, orders)
}

// GetAllOrders godoc
// @Summary List all orders, optionally filtered by status
// @Tags orders
// @Produce json
// @Param status query string false "Status filter"
// @Success 200 {array} services.OrderView
// @Router /orders/admin [get]
func (h *OrderHandler) GetAllOrders(c *gin.Context) {
	limit, offset := pagination(c)
	orders, err := h.orderService.GetAllOrders(c.Request.Context(), c.Query("status"), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "Failed to list orders",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, orders)
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateOrderStatus godoc
// @Summary Move an order to a new status
// @Description Applies a workflow transition; illegal transitions are rejected
// @Tags orders
// @Accept json
// @Produce json
// @Param order_id path string true "Order ID"
// @Param body body UpdateOrderStatusRequest true "Target status"
// @Success 200 {object} services.OrderView
// @Failure 409 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Router /orders/restaurant/{order_id}/status [patch]
func (h *OrderHandler) UpdateOrderStatus(c *gin.Context) {
	var req UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid request body",
			Message: err.Error(),
		})
		return
	}

	orderID, err := uuid.Parse(c.Param("order_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid order ID",
			Message: err.Error(),
		})
		return
	}

	order, err := h.orderService.UpdateStatus(c.Request.Context(), orderID, req.Status)
	if err != nil {
		c.JSON(orderErrorStatus(err), ErrorResponse{
			Error:   "Failed to update status",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, order)
}

func orderErrorStatus(err error) int {
	switch {
	case errors.Is(err, services.ErrOrderNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrNotOrderOwner):
		return http.StatusForbidden
	case errors.Is(err, workflow.ErrIllegalTransition):
		return http.StatusConflict
	case errors.Is(err, upstream.ErrRemoteSync):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

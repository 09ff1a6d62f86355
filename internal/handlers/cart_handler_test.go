package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"foodify-backend/internal/cart"
	"foodify-backend/internal/services"
	"foodify-backend/internal/upstream"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCartService struct {
	getFunc      func(ctx context.Context, userID string) (*services.CartView, error)
	hydrateFunc  func(ctx context.Context, userID string) (*services.CartView, error)
	addFunc      func(ctx context.Context, userID string, item cart.LineItem) (*services.CartView, error)
	updateFunc   func(ctx context.Context, userID, itemID string, quantity int) (*services.CartView, error)
	removeFunc   func(ctx context.Context, userID, itemID string) (*services.CartView, error)
	clearFunc    func(ctx context.Context, userID string) error
	checkoutFunc func(ctx context.Context, userID string, req *services.CheckoutRequest) (*services.CheckoutResponse, error)
}

func (f *fakeCartService) Get(ctx context.Context, userID string) (*services.CartView, error) {
	return f.getFunc(ctx, userID)
}

func (f *fakeCartService) Hydrate(ctx context.Context, userID string) (*services.CartView, error) {
	return f.hydrateFunc(ctx, userID)
}

func (f *fakeCartService) AddItem(ctx context.Context, userID string, item cart.LineItem) (*services.CartView, error) {
	return f.addFunc(ctx, userID, item)
}

func (f *fakeCartService) UpdateQuantity(ctx context.Context, userID, itemID string, quantity int) (*services.CartView, error) {
	return f.updateFunc(ctx, userID, itemID, quantity)
}

func (f *fakeCartService) RemoveItem(ctx context.Context, userID, itemID string) (*services.CartView, error) {
	return f.removeFunc(ctx, userID, itemID)
}

func (f *fakeCartService) Clear(ctx context.Context, userID string) error {
	return f.clearFunc(ctx, userID)
}

func (f *fakeCartService) Checkout(ctx context.Context, userID string, req *services.CheckoutRequest) (*services.CheckoutResponse, error) {
	return f.checkoutFunc(ctx, userID, req)
}

// cartRouter wires the handler without the JWT middleware; the test injects
// the authenticated user directly.
func cartRouter(svc CartServiceInterface, userID string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("user_id", userID)
		c.Next()
	})

	h := NewCartHandler(svc)
	group := router.Group("")
	group.GET("/cart", h.GetCart)
	group.POST("/cart/items", h.AddToCart)
	group.PUT("/cart/items/:item_id", h.UpdateCartItem)
	group.DELETE("/cart/items/:item_id", h.RemoveFromCart)
	group.DELETE("/cart", h.ClearCart)
	group.POST("/cart/checkout", h.Checkout)
	return router
}

func TestGetCartReturnsView(t *testing.T) {
	svc := &fakeCartService{
		getFunc: func(_ context.Context, userID string) (*services.CartView, error) {
			assert.Equal(t, "u1", userID)
			return &services.CartView{Subtotal: 500, ItemCount: 1, RestaurantID: "rest-1"}, nil
		},
	}
	router := cartRouter(svc, "u1")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/cart", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var view services.CartView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	assert.Equal(t, 500.0, view.Subtotal)
	assert.Equal(t, "rest-1", view.RestaurantID)
}

func TestAddToCartPassesItemThrough(t *testing.T) {
	var gotItem cart.LineItem
	svc := &fakeCartService{
		addFunc: func(_ context.Context, _ string, item cart.LineItem) (*services.CartView, error) {
			gotItem = item
			return &services.CartView{ItemCount: 1}, nil
		},
	}
	router := cartRouter(svc, "u1")

	body, _ := json.Marshal(AddToCartRequest{
		ItemID:       "dish-1",
		Name:         "Paneer Tikka",
		UnitPrice:    250,
		Quantity:     2,
		RestaurantID: "rest-1",
	})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/cart/items", bytes.NewReader(body))
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "dish-1", gotItem.ItemID)
	assert.Equal(t, 2, gotItem.Quantity)
}

func TestAddToCartRejectsInvalidBody(t *testing.T) {
	svc := &fakeCartService{}
	router := cartRouter(svc, "u1")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/cart/items", bytes.NewReader([]byte(`{"quantity": 0}`)))
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAddToCartConflictMapsTo409(t *testing.T) {
	svc := &fakeCartService{
		addFunc: func(context.Context, string, cart.LineItem) (*services.CartView, error) {
			return nil, cart.ErrCrossRestaurantConflict
		},
	}
	router := cartRouter(svc, "u1")

	body, _ := json.Marshal(AddToCartRequest{
		ItemID: "dish-9", Name: "Sushi", UnitPrice: 400, Quantity: 1, RestaurantID: "rest-2",
	})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/cart/items", bytes.NewReader(body))
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusConflict, w.Code)
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Contains(t, resp.Message, "same restaurant")
}

func TestSyncFailureMapsTo502(t *testing.T) {
	svc := &fakeCartService{
		updateFunc: func(context.Context, string, string, int) (*services.CartView, error) {
			return nil, fmt.Errorf("%w: cart service down", upstream.ErrRemoteSync)
		},
	}
	router := cartRouter(svc, "u1")

	body, _ := json.Marshal(UpdateCartItemRequest{Quantity: 3})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/cart/items/dish-1", bytes.NewReader(body))
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestRemoveFromCartUsesPathParam(t *testing.T) {
	var gotItemID string
	svc := &fakeCartService{
		removeFunc: func(_ context.Context, _, itemID string) (*services.CartView, error) {
			gotItemID = itemID
			return &services.CartView{}, nil
		},
	}
	router := cartRouter(svc, "u1")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/cart/items/dish-7", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "dish-7", gotItemID)
}

func TestCheckoutEmptyCartMapsTo400(t *testing.T) {
	svc := &fakeCartService{
		checkoutFunc: func(context.Context, string, *services.CheckoutRequest) (*services.CheckoutResponse, error) {
			return nil, services.ErrEmptyCart
		},
	}
	router := cartRouter(svc, "u1")

	body, _ := json.Marshal(services.CheckoutRequest{
		DeliveryAddress: map[string]interface{}{"street": "1 Main St"},
		PaymentMethod:   "cash",
	})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/cart/checkout", bytes.NewReader(body))
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCheckoutSuccess(t *testing.T) {
	svc := &fakeCartService{
		checkoutFunc: func(_ context.Context, userID string, req *services.CheckoutRequest) (*services.CheckoutResponse, error) {
			assert.Equal(t, "u1", userID)
			assert.Equal(t, "cash", req.PaymentMethod)
			return &services.CheckoutResponse{OrderID: "ord-1", TotalAmount: 530, Status: "pending"}, nil
		},
	}
	router := cartRouter(svc, "u1")

	body, _ := json.Marshal(services.CheckoutRequest{
		DeliveryAddress: map[string]interface{}{"street": "1 Main St"},
		PaymentMethod:   "cash",
		DeliveryFee:     30,
	})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/cart/checkout", bytes.NewReader(body))
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp services.CheckoutResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ord-1", resp.OrderID)
	assert.Equal(t, 530.0, resp.TotalAmount)
}

func TestClearCart(t *testing.T) {
	cleared := false
	svc := &fakeCartService{
		clearFunc: func(_ context.Context, userID string) error {
			cleared = true
			return nil
		},
	}
	router := cartRouter(svc, "u1")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/cart", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, cleared)
}

package upstream

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"foodify-backend/internal/workflow"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(cartURL, orderURL, authURL string) *Client {
	return NewClient(Config{
		AuthBaseURL:  authURL,
		CartBaseURL:  cartURL,
		OrderBaseURL: orderURL,
		Timeout:      2 * time.Second,
	})
}

func TestAddCartItemSendsTokenHeader(t *testing.T) {
	var gotToken string
	var gotBody map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotToken = r.Header.Get("token")
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := newTestClient(srv.URL, "", "")
	client.SetTokens("access-1", "refresh-1")

	err := client.AddCartItem(context.Background(), "u1", "dish-1", 2)
	require.NoError(t, err)

	assert.Equal(t, "access-1", gotToken)
	assert.Equal(t, "u1", gotBody["userId"])
	assert.Equal(t, "dish-1", gotBody["itemId"])
	assert.Equal(t, float64(2), gotBody["quantity"])
}

func TestExpiredTokenTriggersRefreshAndRetry(t *testing.T) {
	var refreshCalls int
	authSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		refreshCalls++
		assert.Equal(t, "/api/auth/refresh-token", r.URL.Path)
		assert.Equal(t, "refresh-1", r.Header.Get("token"))
		json.NewEncoder(w).Encode(map[string]string{"accessToken": "access-2"})
	}))
	defer authSrv.Close()

	var attempts int
	cartSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		// The deployed auth stack signals expiry with 402.
		if r.Header.Get("token") != "access-2" {
			w.WriteHeader(http.StatusPaymentRequired)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer cartSrv.Close()

	client := newTestClient(cartSrv.URL, "", authSrv.URL)
	client.SetTokens("stale", "refresh-1")

	err := client.AddCartItem(context.Background(), "u1", "dish-1", 1)
	require.NoError(t, err)

	assert.Equal(t, 1, refreshCalls)
	assert.Equal(t, 2, attempts)
}

func TestServiceCredentialInstalledAtConstruction(t *testing.T) {
	var gotToken string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotToken = r.Header.Get("token")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	// No SetTokens call: the config credential alone must authenticate.
	client := NewClient(Config{
		CartBaseURL:         srv.URL,
		ServiceToken:        "svc-access",
		ServiceRefreshToken: "svc-refresh",
		Timeout:             2 * time.Second,
	})

	err := client.AddCartItem(context.Background(), "u1", "dish-1", 1)
	require.NoError(t, err)
	assert.Equal(t, "svc-access", gotToken)
}

func TestServiceCredentialRefreshesOnExpiry(t *testing.T) {
	var refreshCalls int
	authSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		refreshCalls++
		assert.Equal(t, "svc-refresh", r.Header.Get("token"))
		json.NewEncoder(w).Encode(map[string]string{"accessToken": "svc-access-2"})
	}))
	defer authSrv.Close()

	cartSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("token") != "svc-access-2" {
			w.WriteHeader(http.StatusPaymentRequired)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer cartSrv.Close()

	client := NewClient(Config{
		AuthBaseURL:         authSrv.URL,
		CartBaseURL:         cartSrv.URL,
		ServiceToken:        "svc-stale",
		ServiceRefreshToken: "svc-refresh",
		Timeout:             2 * time.Second,
	})

	err := client.AddCartItem(context.Background(), "u1", "dish-1", 1)
	require.NoError(t, err)
	assert.Equal(t, 1, refreshCalls)
}

func TestRefreshFailureSurfacesRemoteSync(t *testing.T) {
	authSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer authSrv.Close()

	cartSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
	}))
	defer cartSrv.Close()

	client := newTestClient(cartSrv.URL, "", authSrv.URL)
	client.SetTokens("stale", "refresh-1")

	err := client.AddCartItem(context.Background(), "u1", "dish-1", 1)
	assert.ErrorIs(t, err, ErrRemoteSync)
}

func TestServerErrorWrapsRemoteSync(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := newTestClient(srv.URL, "", "")
	err := client.RemoveCartLine(context.Background(), "u1", "dish-1")
	assert.ErrorIs(t, err, ErrRemoteSync)
}

func TestCartItemsDropsRecordsWithoutID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/cart/items/userid/u1", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"items": []map[string]interface{}{
				{"_id": "dish-1", "name": "Paneer Tikka", "price": 250, "quantity": 2, "restaurantId": "rest-1"},
				{"name": "ghost row", "price": 10, "quantity": 1},
				{"_id": "dish-2", "name": "Butter Naan", "price": 50, "quantity": 4, "restaurantId": "rest-1"},
			},
		})
	}))
	defer srv.Close()

	client := newTestClient(srv.URL, "", "")
	items, err := client.CartItems(context.Background(), "u1")
	require.NoError(t, err)

	require.Len(t, items, 2)
	assert.Equal(t, "dish-1", items[0].ItemID)
	assert.Equal(t, 250.0, items[0].UnitPrice)
	assert.Equal(t, "dish-2", items[1].ItemID)
}

func TestPlaceOrderReturnsOrderID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/order/place", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		json.NewEncoder(w).Encode(map[string]interface{}{"orderId": "ord-77", "success": true})
	}))
	defer srv.Close()

	client := newTestClient("", srv.URL, "")
	orderID, err := client.PlaceOrder(context.Background(), &PlaceOrderRequest{
		UserID: "u1", RestaurantID: "rest-1", Amount: 600,
	})
	require.NoError(t, err)
	assert.Equal(t, "ord-77", orderID)
}

func TestUpdateOrderStatusPatchesUpstream(t *testing.T) {
	var gotMethod, gotPath, gotStatus string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		gotStatus = body["status"]
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := newTestClient("", srv.URL, "")
	err := client.UpdateOrderStatus(context.Background(), "ord-1", "accepted")
	require.NoError(t, err)

	assert.Equal(t, http.MethodPatch, gotMethod)
	assert.Equal(t, "/api/order/status/ord-1", gotPath)
	assert.Equal(t, "accepted", gotStatus)
}

func TestOrderByIDNormalizesStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"_id": "ord-1", "userId": "u1", "restaurantId": "rest-1",
			"status": "Food Processing", "amount": 600,
		})
	}))
	defer srv.Close()

	client := newTestClient("", srv.URL, "")
	order, err := client.OrderByID(context.Background(), "ord-1")
	require.NoError(t, err)

	assert.Equal(t, workflow.StatusPreparing, order.Status)
	assert.Equal(t, 600.0, order.Amount)
}

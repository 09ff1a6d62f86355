package services

import (
	"context"
	"fmt"
	"testing"

	"foodify-backend/internal/models"
	"foodify-backend/internal/notify"
	"foodify-backend/internal/upstream"
	"foodify-backend/internal/workflow"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStatusUpdater struct {
	updateFunc func(ctx context.Context, orderID, status string) error
	calls      []string
}

func (f *fakeStatusUpdater) UpdateOrderStatus(ctx context.Context, orderID, status string) error {
	f.calls = append(f.calls, orderID+":"+status)
	if f.updateFunc != nil {
		return f.updateFunc(ctx, orderID, status)
	}
	return nil
}

type fakeOrderFetcher struct {
	orderFunc func(ctx context.Context, orderID string) (*upstream.Order, error)
	calls     []string
}

func (f *fakeOrderFetcher) OrderByID(ctx context.Context, orderID string) (*upstream.Order, error) {
	f.calls = append(f.calls, orderID)
	if f.orderFunc != nil {
		return f.orderFunc(ctx, orderID)
	}
	return nil, ErrOrderNotFound
}

func pendingOrder(userID uuid.UUID) *models.Order {
	return &models.Order{
		ID:              uuid.New(),
		UserID:          userID,
		RestaurantID:    uuid.New(),
		UpstreamOrderID: "upstream-ord-1",
		Status:          "pending",
		Subtotal:        500,
		DeliveryFee:     30,
		TotalAmount:     530,
		PaymentMethod:   "cash",
		StatusLog:       models.JSONB{},
	}
}

func newOrderFixture(order *models.Order) (*OrderService, *fakeOrderRepo, *fakePaymentRepo, *fakeStatusUpdater, *notify.Hub) {
	orderRepo := &fakeOrderRepo{
		getFunc: func(ctx context.Context, id uuid.UUID) (*models.Order, error) {
			if order != nil && order.ID == id {
				return order, nil
			}
			return nil, ErrOrderNotFound
		},
	}
	paymentRepo := &fakePaymentRepo{}
	updater := &fakeStatusUpdater{}
	hub := notify.NewHub()
	svc := NewOrderService(orderRepo, paymentRepo, updater, &fakeOrderFetcher{}, hub, nil, nil)
	return svc, orderRepo, paymentRepo, updater, hub
}

func TestUpdateStatusAppliesLegalTransition(t *testing.T) {
	order := pendingOrder(uuid.New())
	svc, orderRepo, _, updater, hub := newOrderFixture(order)

	var toasts []notify.Notification
	hub.Subscribe(func(n notify.Notification) { toasts = append(toasts, n) })

	view, err := svc.UpdateStatus(context.Background(), order.ID, "accepted")
	require.NoError(t, err)

	assert.Equal(t, "accepted", view.Status)
	assert.Equal(t, []string{"upstream-ord-1:accepted"}, updater.calls)
	require.Len(t, orderRepo.updated, 1)
	assert.Equal(t, "accepted", orderRepo.updated[0].Status)
	assert.NotEmpty(t, orderRepo.updated[0].StatusLog)

	require.Len(t, toasts, 1)
	assert.Equal(t, "order_status", toasts[0].Type)
	assert.Equal(t, order.UserID.String(), toasts[0].UserID)
}

func TestUpdateStatusRejectsIllegalTransitionWithoutUpstreamCall(t *testing.T) {
	order := pendingOrder(uuid.New())
	svc, orderRepo, _, updater, _ := newOrderFixture(order)

	_, err := svc.UpdateStatus(context.Background(), order.ID, "completed")
	assert.ErrorIs(t, err, workflow.ErrIllegalTransition)

	assert.Empty(t, updater.calls)
	assert.Empty(t, orderRepo.updated)
	assert.Equal(t, "pending", order.Status)
}

func TestUpdateStatusNormalizesAliases(t *testing.T) {
	order := pendingOrder(uuid.New())
	order.Status = "Food Processing"
	svc, _, _, updater, _ := newOrderFixture(order)

	view, err := svc.UpdateStatus(context.Background(), order.ID, "Out For Delivery")
	require.NoError(t, err)

	assert.Equal(t, "out-for-delivery", view.Status)
	assert.Equal(t, []string{"upstream-ord-1:out-for-delivery"}, updater.calls)
}

func TestUpdateStatusUnknownOrder(t *testing.T) {
	svc, _, _, updater, _ := newOrderFixture(nil)

	_, err := svc.UpdateStatus(context.Background(), uuid.New(), "accepted")
	assert.ErrorIs(t, err, ErrOrderNotFound)
	assert.Empty(t, updater.calls)
}

func TestCompletedOrderMarksPaymentCompleted(t *testing.T) {
	order := pendingOrder(uuid.New())
	order.Status = "out-for-delivery"
	paymentID := uuid.New()
	order.PaymentID = &paymentID

	svc, _, paymentRepo, _, _ := newOrderFixture(order)
	paymentRepo.getFunc = func(ctx context.Context, id uuid.UUID) (*models.Payment, error) {
		return &models.Payment{ID: id, Status: "pending"}, nil
	}

	view, err := svc.UpdateStatus(context.Background(), order.ID, "delivered")
	require.NoError(t, err)

	assert.Equal(t, "completed", view.Status)
	require.Len(t, paymentRepo.updated, 1)
	assert.Equal(t, "completed", paymentRepo.updated[0].Status)
}

func TestCancelOrderByOwner(t *testing.T) {
	userID := uuid.New()
	order := pendingOrder(userID)
	svc, _, _, updater, _ := newOrderFixture(order)

	view, err := svc.CancelOrder(context.Background(), order.ID, userID)
	require.NoError(t, err)

	assert.Equal(t, "rejected", view.Status)
	assert.Equal(t, []string{"upstream-ord-1:rejected"}, updater.calls)
}

func TestCancelOrderByStrangerForbidden(t *testing.T) {
	order := pendingOrder(uuid.New())
	svc, _, _, updater, _ := newOrderFixture(order)

	_, err := svc.CancelOrder(context.Background(), order.ID, uuid.New())
	assert.ErrorIs(t, err, ErrNotOrderOwner)
	assert.Empty(t, updater.calls)
}

func TestCancelOrderPastPendingIsIllegal(t *testing.T) {
	userID := uuid.New()
	order := pendingOrder(userID)
	order.Status = "preparing"
	svc, _, _, updater, _ := newOrderFixture(order)

	_, err := svc.CancelOrder(context.Background(), order.ID, userID)
	assert.ErrorIs(t, err, workflow.ErrIllegalTransition)
	assert.Empty(t, updater.calls)
}

func TestOrderViewExposesNextStatuses(t *testing.T) {
	order := pendingOrder(uuid.New())
	svc, _, _, _, _ := newOrderFixture(order)

	view, err := svc.GetOrderByID(context.Background(), order.ID)
	require.NoError(t, err)

	assert.Equal(t, []string{"accepted", "rejected"}, view.NextStatuses)
	assert.NotEmpty(t, view.StatusMessage)
}

func TestNextStatusesForTerminalOrder(t *testing.T) {
	order := pendingOrder(uuid.New())
	order.Status = "delivered" // legacy spelling of completed
	svc, _, _, _, _ := newOrderFixture(order)

	next, err := svc.NextStatuses(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Empty(t, next)
}

func TestRefreshStatusMirrorsUpstreamChange(t *testing.T) {
	order := pendingOrder(uuid.New())
	svc, orderRepo, _, _, _ := newOrderFixture(order)

	fetcher := &fakeOrderFetcher{
		orderFunc: func(_ context.Context, orderID string) (*upstream.Order, error) {
			return &upstream.Order{ID: orderID, Status: workflow.StatusAccepted}, nil
		},
	}
	svc.fetcher = fetcher

	view, err := svc.RefreshStatus(context.Background(), order.ID)
	require.NoError(t, err)

	assert.Equal(t, "accepted", view.Status)
	assert.Equal(t, []string{"upstream-ord-1"}, fetcher.calls)
	require.Len(t, orderRepo.updated, 1)
	assert.Equal(t, "accepted", orderRepo.updated[0].Status)
	assert.NotEmpty(t, orderRepo.updated[0].StatusLog)
}

func TestRefreshStatusNoChangeSkipsWrite(t *testing.T) {
	order := pendingOrder(uuid.New())
	svc, orderRepo, _, _, _ := newOrderFixture(order)

	svc.fetcher = &fakeOrderFetcher{
		orderFunc: func(_ context.Context, orderID string) (*upstream.Order, error) {
			return &upstream.Order{ID: orderID, Status: workflow.StatusPending}, nil
		},
	}

	view, err := svc.RefreshStatus(context.Background(), order.ID)
	require.NoError(t, err)

	assert.Equal(t, "pending", view.Status)
	assert.Empty(t, orderRepo.updated)
}

func TestRefreshStatusIgnoresUnknownUpstreamStatus(t *testing.T) {
	order := pendingOrder(uuid.New())
	svc, orderRepo, _, _, _ := newOrderFixture(order)

	svc.fetcher = &fakeOrderFetcher{
		orderFunc: func(_ context.Context, orderID string) (*upstream.Order, error) {
			return &upstream.Order{ID: orderID, Status: workflow.Status("archived")}, nil
		},
	}

	view, err := svc.RefreshStatus(context.Background(), order.ID)
	require.NoError(t, err)

	assert.Equal(t, "pending", view.Status)
	assert.Empty(t, orderRepo.updated)
}

func TestRefreshStatusUpstreamErrorSurfaces(t *testing.T) {
	order := pendingOrder(uuid.New())
	svc, orderRepo, _, _, _ := newOrderFixture(order)

	svc.fetcher = &fakeOrderFetcher{
		orderFunc: func(context.Context, string) (*upstream.Order, error) {
			return nil, fmt.Errorf("%w: order service down", upstream.ErrRemoteSync)
		},
	}

	_, err := svc.RefreshStatus(context.Background(), order.ID)
	assert.ErrorIs(t, err, upstream.ErrRemoteSync)
	assert.Empty(t, orderRepo.updated)
	assert.Equal(t, "pending", order.Status)
}

package services

import (
	"context"
	"errors"
	"log"
	"time"

	"foodify-backend/internal/models"
	"foodify-backend/internal/notify"
	"foodify-backend/internal/repositories"
	"foodify-backend/internal/upstream"
	"foodify-backend/internal/workflow"
	"foodify-backend/pkg/messaging"

	"github.com/google/uuid"
)

var (
	ErrOrderNotFound = errors.New("order not found")
	ErrNotOrderOwner = errors.New("order does not belong to this user")
)

// OrderFetcher reads an order back from the upstream order service.
type OrderFetcher interface {
	OrderByID(ctx context.Context, orderID string) (*upstream.Order, error)
}

// OrderService drives the order status workflow. Status changes go through
// the workflow applier, which rejects illegal transitions before the upstream
// order service is ever called.
type OrderService struct {
	orderRepo   repositories.OrderRepository
	paymentRepo repositories.PaymentRepository
	applier     *workflow.Applier
	fetcher     OrderFetcher
	hub         *notify.Hub
	kafka       *messaging.KafkaProducer
	brokers     []string
}

func NewOrderService(
	orderRepo repositories.OrderRepository,
	paymentRepo repositories.PaymentRepository,
	updater workflow.StatusUpdater,
	fetcher OrderFetcher,
	hub *notify.Hub,
	kafka *messaging.KafkaProducer,
	brokers []string,
) *OrderService {
	return &OrderService{
		orderRepo:   orderRepo,
		paymentRepo: paymentRepo,
		applier:     workflow.NewApplier(updater),
		fetcher:     fetcher,
		hub:         hub,
		kafka:       kafka,
		brokers:     brokers,
	}
}

type OrderView struct {
	ID              string                 `json:"id"`
	UserID          string                 `json:"user_id"`
	RestaurantID    string                 `json:"restaurant_id"`
	Status          string                 `json:"status"`
	StatusMessage   string                 `json:"status_message"`
	NextStatuses    []string               `json:"next_statuses"`
	Items           map[string]interface{} `json:"items"`
	Subtotal        float64                `json:"subtotal"`
	DeliveryFee     float64                `json:"delivery_fee"`
	TotalAmount     float64                `json:"total_amount"`
	PaymentMethod   string                 `json:"payment_method"`
	DeliveryAddress map[string]interface{} `json:"delivery_address"`
	CreatedAt       time.Time              `json:"created_at"`
}

func orderView(o *models.Order) *OrderView {
	status := workflow.Normalize(o.Status)
	next := workflow.LegalNextStatuses(status)
	nextStrs := make([]string, len(next))
	for i, s := range next {
		nextStrs[i] = string(s)
	}

	return &OrderView{
		ID:              o.ID.String(),
		UserID:          o.UserID.String(),
		RestaurantID:    o.RestaurantID.String(),
		Status:          string(status),
		StatusMessage:   workflow.Message(status),
		NextStatuses:    nextStrs,
		Items:           o.Items,
		Subtotal:        o.Subtotal,
		DeliveryFee:     o.DeliveryFee,
		TotalAmount:     o.TotalAmount,
		PaymentMethod:   o.PaymentMethod,
		DeliveryAddress: o.DeliveryAddress,
		CreatedAt:       o.CreatedAt,
	}
}

func (s *OrderService) GetOrderByID(ctx context.Context, orderID uuid.UUID) (*OrderView, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, ErrOrderNotFound
	}
	return orderView(order), nil
}

func (s *OrderService) GetUserOrders(ctx context.Context, userID uuid.UUID, limit, offset int) ([]OrderView, error) {
	orders, err := s.orderRepo.GetByUserID(ctx, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	return orderViews(orders), nil
}

func (s *OrderService) GetRestaurantOrders(ctx context.Context, restaurantID uuid.UUID, limit, offset int) ([]OrderView, error) {
	orders, err := s.orderRepo.GetByRestaurantID(ctx, restaurantID, limit, offset)
	if err != nil {
		return nil, err
	}
	return orderViews(orders), nil
}

func (s *OrderService) GetAllOrders(ctx context.Context, status string, limit, offset int) ([]OrderView, error) {
	var (
		orders []models.Order
		err    error
	)
	if status != "" {
		orders, err = s.orderRepo.GetByStatus(ctx, string(workflow.Normalize(status)), limit, offset)
	} else {
		orders, err = s.orderRepo.GetAll(ctx, limit, offset)
	}
	if err != nil {
		return nil, err
	}
	return orderViews(orders), nil
}

func orderViews(orders []models.Order) []OrderView {
	views := make([]OrderView, len(orders))
	for i := range orders {
		views[i] = *orderView(&orders[i])
	}
	return views
}

// NextStatuses returns the statuses an order may move to from where it is now.
func (s *OrderService) NextStatuses(ctx context.Context, orderID uuid.UUID) ([]string, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, ErrOrderNotFound
	}
	next := workflow.LegalNextStatuses(workflow.Normalize(order.Status))
	out := make([]string, len(next))
	for i, st := range next {
		out[i] = string(st)
	}
	return out, nil
}

// UpdateStatus moves an order to a new status. The transition is validated
// against the current persisted status, applied upstream, then mirrored
// locally with a status log entry.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID uuid.UUID, rawStatus string) (*OrderView, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, ErrOrderNotFound
	}

	from := workflow.Normalize(order.Status)
	to := workflow.Normalize(rawStatus)

	if err := s.applier.Apply(ctx, order.UpstreamOrderID, from, to); err != nil {
		return nil, err
	}

	order.Status = string(to)
	if order.StatusLog == nil {
		order.StatusLog = models.JSONB{}
	}
	order.StatusLog[time.Now().Format(time.RFC3339Nano)] = string(to)
	order.UpdatedAt = time.Now()
	if err := s.orderRepo.Update(ctx, order); err != nil {
		return nil, err
	}

	if to == workflow.StatusCompleted {
		s.markPaymentCompleted(ctx, order)
	}

	s.publishStatusEvent(order, from, to)

	return orderView(order), nil
}

// RefreshStatus re-reads the order from the upstream order service and
// mirrors any status it has moved to since the last local update. The
// upstream record is authoritative, so the change bypasses the transition
// check; unknown upstream statuses are ignored.
func (s *OrderService) RefreshStatus(ctx context.Context, orderID uuid.UUID) (*OrderView, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, ErrOrderNotFound
	}
	if order.UpstreamOrderID == "" {
		return orderView(order), nil
	}

	remote, err := s.fetcher.OrderByID(ctx, order.UpstreamOrderID)
	if err != nil {
		return nil, err
	}

	from := workflow.Normalize(order.Status)
	if !workflow.Known(remote.Status) || remote.Status == from {
		return orderView(order), nil
	}

	order.Status = string(remote.Status)
	if order.StatusLog == nil {
		order.StatusLog = models.JSONB{}
	}
	order.StatusLog[time.Now().Format(time.RFC3339Nano)] = string(remote.Status)
	order.UpdatedAt = time.Now()
	if err := s.orderRepo.Update(ctx, order); err != nil {
		return nil, err
	}

	if remote.Status == workflow.StatusCompleted {
		s.markPaymentCompleted(ctx, order)
	}
	s.publishStatusEvent(order, from, remote.Status)

	return orderView(order), nil
}

// CancelOrder rejects a pending order on the customer's behalf.
func (s *OrderService) CancelOrder(ctx context.Context, orderID, userID uuid.UUID) (*OrderView, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, ErrOrderNotFound
	}
	if order.UserID != userID {
		return nil, ErrNotOrderOwner
	}
	return s.UpdateStatus(ctx, orderID, string(workflow.StatusRejected))
}

func (s *OrderService) markPaymentCompleted(ctx context.Context, order *models.Order) {
	if order.PaymentID == nil {
		return
	}
	payment, err := s.paymentRepo.GetByID(ctx, *order.PaymentID)
	if err != nil {
		log.Printf("Failed to load payment %s: %v", order.PaymentID, err)
		return
	}
	payment.Status = "completed"
	if err := s.paymentRepo.Update(ctx, payment); err != nil {
		log.Printf("Failed to update payment %s: %v", payment.ID, err)
	}
}

func (s *OrderService) publishStatusEvent(order *models.Order, from, to workflow.Status) {
	s.hub.Publish(notify.Notification{
		Type:    "order_status",
		Level:   notify.LevelInfo,
		UserID:  order.UserID.String(),
		Title:   "Order Update",
		Message: workflow.Message(to),
		Metadata: map[string]interface{}{
			"order_id": order.ID.String(),
			"status":   string(to),
		},
	})

	if s.kafka == nil {
		return
	}
	event := messaging.OrderEvent{
		Type:    "status_changed",
		OrderID: order.ID.String(),
		UserID:  order.UserID.String(),
		Data: map[string]interface{}{
			"from": string(from),
			"to":   string(to),
		},
	}
	if err := s.kafka.SendMessage("order_events", s.brokers, order.ID.String(), event); err != nil {
		log.Printf("Failed to publish order event: %v", err)
	}
}

package notify

import (
	"log"
	"sync"
	"time"

	"foodify-backend/pkg/messaging"
)

// Level mirrors the toast styling the storefront picks for a notification.
type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

type Notification struct {
	Type     string                 `json:"type"`
	Level    Level                  `json:"level"`
	UserID   string                 `json:"user_id"`
	Title    string                 `json:"title"`
	Message  string                 `json:"message"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
	At       time.Time              `json:"at"`
}

type Subscriber func(Notification)

// Hub fans user-facing notifications out to registered subscribers and,
// when configured, to the notification_events Kafka topic. It is passed to
// the components that raise messages instead of living as process-global
// state; subscribers detach through the function returned by Subscribe.
type Hub struct {
	mu     sync.Mutex
	subs   map[int]Subscriber
	nextID int

	producer *messaging.KafkaProducer
	brokers  []string
}

func NewHub() *Hub {
	return &Hub{subs: make(map[int]Subscriber)}
}

// WithKafka mirrors every published notification onto the
// notification_events topic. A nil producer leaves the hub local-only.
func (h *Hub) WithKafka(producer *messaging.KafkaProducer, brokers []string) *Hub {
	h.producer = producer
	h.brokers = brokers
	return h
}

// Subscribe registers fn and returns its detach function.
func (h *Hub) Subscribe(fn Subscriber) (unsubscribe func()) {
	h.mu.Lock()
	id := h.nextID
	h.nextID++
	h.subs[id] = fn
	h.mu.Unlock()

	return func() {
		h.mu.Lock()
		delete(h.subs, id)
		h.mu.Unlock()
	}
}

func (h *Hub) Publish(n Notification) {
	if n.At.IsZero() {
		n.At = time.Now()
	}

	h.mu.Lock()
	subs := make([]Subscriber, 0, len(h.subs))
	for _, fn := range h.subs {
		subs = append(subs, fn)
	}
	h.mu.Unlock()

	for _, fn := range subs {
		fn(n)
	}

	if h.producer != nil {
		event := messaging.NotificationEvent{
			Type:     n.Type,
			UserID:   n.UserID,
			Title:    n.Title,
			Message:  n.Message,
			Metadata: n.Metadata,
		}
		if err := h.producer.SendMessage("notification_events", h.brokers, n.UserID, event); err != nil {
			log.Printf("Failed to publish notification event: %v", err)
		}
	}
}

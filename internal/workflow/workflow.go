package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Status is a canonical order status. External order data carries several
// legacy spellings; Normalize maps those at the boundary so the transition
// table only ever sees canonical values.
type Status string

const (
	StatusPending        Status = "pending"
	StatusAccepted       Status = "accepted"
	StatusRejected       Status = "rejected"
	StatusPreparing      Status = "preparing"
	StatusOutForDelivery Status = "out-for-delivery"
	StatusCompleted      Status = "completed"
)

// ErrIllegalTransition is returned when a requested transition is not in the
// table. It is a local validation error; no request is sent upstream.
var ErrIllegalTransition = errors.New("illegal order status transition")

var transitions = map[Status][]Status{
	StatusPending:        {StatusAccepted, StatusRejected},
	StatusAccepted:       {StatusPreparing},
	StatusPreparing:      {StatusOutForDelivery},
	StatusOutForDelivery: {StatusCompleted},
	StatusRejected:       {},
	StatusCompleted:      {},
}

// aliases maps legacy status spellings carried by older order records and
// admin screens onto canonical statuses.
var aliases = map[string]Status{
	"delivered":       StatusCompleted,
	"in-process":      StatusPreparing,
	"food-processing": StatusPreparing,
	"placed":          StatusPending,
	"confirmed":       StatusAccepted,
	"cancelled":       StatusRejected,
}

// Normalize lowercases, trims and hyphenates a raw status string, then maps
// legacy aliases. Unrecognized input is returned as-is (lowercased) and will
// report Known() == false.
func Normalize(raw string) Status {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = strings.ReplaceAll(s, " ", "-")
	s = strings.ReplaceAll(s, "_", "-")
	if canonical, ok := aliases[s]; ok {
		return canonical
	}
	return Status(s)
}

// Known reports whether s is a canonical status.
func (s Status) Known() bool {
	_, ok := transitions[s]
	return ok
}

// Terminal reports whether s is canonical and has no outgoing transitions.
func (s Status) Terminal() bool {
	next, ok := transitions[s]
	return ok && len(next) == 0
}

// LegalNextStatuses returns the statuses an order in status s may move to.
// Unknown statuses get an empty set: the local check is advisory and failing
// closed keeps the backend the sole authority on anything we cannot classify.
func LegalNextStatuses(s Status) []Status {
	next := transitions[s]
	out := make([]Status, len(next))
	copy(out, next)
	return out
}

func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// StatusUpdater forwards a validated transition to the authoritative order
// service.
type StatusUpdater interface {
	UpdateOrderStatus(ctx context.Context, orderID string, status string) error
}

// Applier validates transitions locally before forwarding them. Validation
// failures never reach the network.
type Applier struct {
	updater StatusUpdater
}

func NewApplier(updater StatusUpdater) *Applier {
	return &Applier{updater: updater}
}

func (a *Applier) Apply(ctx context.Context, orderID string, from, to Status) error {
	if !CanTransition(from, to) {
		return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, from, to)
	}
	return a.updater.UpdateOrderStatus(ctx, orderID, string(to))
}

// Message returns the customer-facing text for a status change.
func Message(s Status) string {
	switch s {
	case StatusAccepted:
		return "Your order has been accepted by the restaurant"
	case StatusRejected:
		return "Your order has been rejected"
	case StatusPreparing:
		return "Your order is being prepared"
	case StatusOutForDelivery:
		return "Your order is on the way"
	case StatusCompleted:
		return "Your order has been delivered"
	}
	return "Your order status has been updated"
}

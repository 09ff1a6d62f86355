package cart

import (
	"encoding/json"
	"errors"
	"sort"
)

var (
	// ErrCrossRestaurantConflict is returned when an add would mix items
	// from two different restaurants in one cart. The cart is left unchanged.
	ErrCrossRestaurantConflict = errors.New("all items in an order must be from the same restaurant")

	ErrInvalidQuantity = errors.New("quantity must be at least 1")
	ErrInvalidPrice    = errors.New("unit price must not be negative")
)

// LineItem is one distinct dish and its quantity within a cart.
type LineItem struct {
	ItemID       string  `json:"item_id"`
	Name         string  `json:"name"`
	UnitPrice    float64 `json:"unit_price"`
	Quantity     int     `json:"quantity"`
	Image        string  `json:"image"`
	RestaurantID string  `json:"restaurant_id"`
}

// Cart holds the line items a shopper intends to purchase, keyed by item ID.
// A non-empty cart is bound to a single restaurant; adds from any other
// restaurant are rejected. The zero value is not usable, call New.
type Cart struct {
	items        map[string]LineItem
	restaurantID string
}

func New() *Cart {
	return &Cart{items: make(map[string]LineItem)}
}

// AddItem inserts a line item, merging quantities when the item is already
// present. The first add binds the cart to the item's restaurant.
func (c *Cart) AddItem(item LineItem) error {
	if item.Quantity < 1 {
		return ErrInvalidQuantity
	}
	if item.UnitPrice < 0 {
		return ErrInvalidPrice
	}

	if len(c.items) == 0 {
		c.restaurantID = item.RestaurantID
	} else if item.RestaurantID != c.restaurantID {
		return ErrCrossRestaurantConflict
	}

	if existing, ok := c.items[item.ItemID]; ok {
		existing.Quantity += item.Quantity
		c.items[item.ItemID] = existing
		return nil
	}

	c.items[item.ItemID] = item
	return nil
}

// RemoveItem deletes the line item if present; removing an absent item is a
// no-op. Emptying the cart clears the restaurant binding.
func (c *Cart) RemoveItem(itemID string) {
	delete(c.items, itemID)
	if len(c.items) == 0 {
		c.restaurantID = ""
	}
}

// UpdateQuantity replaces an existing line's quantity. A quantity of zero or
// below removes the line. Updating a missing item is a no-op; callers must
// AddItem first to create the line.
func (c *Cart) UpdateQuantity(itemID string, quantity int) {
	if quantity <= 0 {
		c.RemoveItem(itemID)
		return
	}
	if item, ok := c.items[itemID]; ok {
		item.Quantity = quantity
		c.items[itemID] = item
	}
}

// Clear empties the cart and unbinds the restaurant.
func (c *Cart) Clear() {
	c.items = make(map[string]LineItem)
	c.restaurantID = ""
}

// Subtotal is recomputed from the line items on every call.
func (c *Cart) Subtotal() float64 {
	var sum float64
	for _, item := range c.items {
		sum += item.UnitPrice * float64(item.Quantity)
	}
	return sum
}

func (c *Cart) Len() int {
	return len(c.items)
}

// RestaurantID returns the restaurant all current items belong to, or the
// empty string for an empty cart.
func (c *Cart) RestaurantID() string {
	return c.restaurantID
}

func (c *Cart) Get(itemID string) (LineItem, bool) {
	item, ok := c.items[itemID]
	return item, ok
}

// Items returns a snapshot of the line items sorted by item ID.
func (c *Cart) Items() []LineItem {
	items := make([]LineItem, 0, len(c.items))
	for _, item := range c.items {
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ItemID < items[j].ItemID })
	return items
}

// Clone returns an independent copy, used to keep mutations atomic when a
// paired remote sync may still fail.
func (c *Cart) Clone() *Cart {
	clone := &Cart{
		items:        make(map[string]LineItem, len(c.items)),
		restaurantID: c.restaurantID,
	}
	for id, item := range c.items {
		clone.items[id] = item
	}
	return clone
}

type cartState struct {
	RestaurantID string     `json:"restaurant_id"`
	Items        []LineItem `json:"items"`
}

func (c *Cart) MarshalJSON() ([]byte, error) {
	return json.Marshal(cartState{
		RestaurantID: c.restaurantID,
		Items:        c.Items(),
	})
}

func (c *Cart) UnmarshalJSON(data []byte) error {
	var state cartState
	if err := json.Unmarshal(data, &state); err != nil {
		return err
	}
	c.items = make(map[string]LineItem, len(state.Items))
	for _, item := range state.Items {
		c.items[item.ItemID] = item
	}
	c.restaurantID = state.RestaurantID
	if len(c.items) == 0 {
		c.restaurantID = ""
	}
	return nil
}

package cart

import (
	"encoding/json"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func paneer(qty int) LineItem {
	return LineItem{
		ItemID:       "dish-paneer",
		Name:         "Paneer Tikka",
		UnitPrice:    250,
		Quantity:     qty,
		RestaurantID: "rest-1",
	}
}

func naan(qty int) LineItem {
	return LineItem{
		ItemID:       "dish-naan",
		Name:         "Butter Naan",
		UnitPrice:    50,
		Quantity:     qty,
		RestaurantID: "rest-1",
	}
}

func TestAddItemMergesQuantities(t *testing.T) {
	c := New()

	require.NoError(t, c.AddItem(paneer(1)))
	require.NoError(t, c.AddItem(paneer(2)))

	item, ok := c.Get("dish-paneer")
	require.True(t, ok)
	assert.Equal(t, 3, item.Quantity)
	assert.Equal(t, 1, c.Len())
}

func TestAddItemValidation(t *testing.T) {
	c := New()

	err := c.AddItem(paneer(0))
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	bad := paneer(1)
	bad.UnitPrice = -1
	err = c.AddItem(bad)
	assert.ErrorIs(t, err, ErrInvalidPrice)

	assert.Equal(t, 0, c.Len())
}

func TestFirstAddBindsRestaurant(t *testing.T) {
	c := New()
	assert.Equal(t, "", c.RestaurantID())

	require.NoError(t, c.AddItem(paneer(1)))
	assert.Equal(t, "rest-1", c.RestaurantID())
}

func TestCrossRestaurantAddRejectedAndCartUnchanged(t *testing.T) {
	c := New()
	require.NoError(t, c.AddItem(paneer(2)))

	other := LineItem{
		ItemID:       "dish-sushi",
		Name:         "Salmon Roll",
		UnitPrice:    400,
		Quantity:     1,
		RestaurantID: "rest-2",
	}
	err := c.AddItem(other)
	assert.ErrorIs(t, err, ErrCrossRestaurantConflict)

	// Nothing about the cart may have changed.
	assert.Equal(t, 1, c.Len())
	assert.Equal(t, "rest-1", c.RestaurantID())
	assert.Equal(t, 500.0, c.Subtotal())
	_, ok := c.Get("dish-sushi")
	assert.False(t, ok)
}

func TestRemoveLastItemClearsBinding(t *testing.T) {
	c := New()
	require.NoError(t, c.AddItem(paneer(1)))

	c.RemoveItem("dish-paneer")

	assert.Equal(t, 0, c.Len())
	assert.Equal(t, "", c.RestaurantID())

	// A different restaurant is now acceptable.
	require.NoError(t, c.AddItem(LineItem{
		ItemID: "dish-sushi", Name: "Salmon Roll", UnitPrice: 400, Quantity: 1, RestaurantID: "rest-2",
	}))
	assert.Equal(t, "rest-2", c.RestaurantID())
}

func TestRemoveAbsentItemIsNoOp(t *testing.T) {
	c := New()
	require.NoError(t, c.AddItem(paneer(2)))

	c.RemoveItem("dish-unknown")

	assert.Equal(t, 1, c.Len())
	assert.Equal(t, 500.0, c.Subtotal())
}

func TestUpdateQuantityZeroRemovesLine(t *testing.T) {
	c := New()
	require.NoError(t, c.AddItem(paneer(3)))

	c.UpdateQuantity("dish-paneer", 0)
	_, ok := c.Get("dish-paneer")
	assert.False(t, ok)
	assert.Equal(t, "", c.RestaurantID())
}

func TestUpdateQuantityNegativeRemovesLine(t *testing.T) {
	c := New()
	require.NoError(t, c.AddItem(paneer(3)))

	c.UpdateQuantity("dish-paneer", -5)
	assert.Equal(t, 0, c.Len())
}

func TestUpdateQuantityMissingItemIsNoOp(t *testing.T) {
	c := New()
	require.NoError(t, c.AddItem(paneer(1)))

	c.UpdateQuantity("dish-unknown", 4)

	assert.Equal(t, 1, c.Len())
	_, ok := c.Get("dish-unknown")
	assert.False(t, ok)
}

func TestClearResetsEverything(t *testing.T) {
	c := New()
	require.NoError(t, c.AddItem(paneer(2)))
	require.NoError(t, c.AddItem(naan(4)))

	c.Clear()

	assert.Equal(t, 0, c.Len())
	assert.Equal(t, 0.0, c.Subtotal())
	assert.Equal(t, "", c.RestaurantID())
}

func TestItemsSnapshotIsSortedAndDetached(t *testing.T) {
	c := New()
	require.NoError(t, c.AddItem(paneer(1)))
	require.NoError(t, c.AddItem(naan(1)))

	items := c.Items()
	require.Len(t, items, 2)
	assert.Equal(t, "dish-naan", items[0].ItemID)
	assert.Equal(t, "dish-paneer", items[1].ItemID)

	// Mutating the snapshot must not touch the cart.
	items[0].Quantity = 99
	got, _ := c.Get("dish-naan")
	assert.Equal(t, 1, got.Quantity)
}

func TestCloneIsIndependent(t *testing.T) {
	c := New()
	require.NoError(t, c.AddItem(paneer(2)))

	clone := c.Clone()
	require.NoError(t, clone.AddItem(naan(1)))
	clone.UpdateQuantity("dish-paneer", 5)

	assert.Equal(t, 1, c.Len())
	got, _ := c.Get("dish-paneer")
	assert.Equal(t, 2, got.Quantity)
	assert.Equal(t, 2, clone.Len())
}

func TestSubtotalRandomized(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for trial := 0; trial < 50; trial++ {
		c := New()
		var want float64
		n := rng.Intn(10) + 1
		for i := 0; i < n; i++ {
			price := float64(rng.Intn(500)) / 2
			qty := rng.Intn(5) + 1
			item := LineItem{
				ItemID:       string(rune('a' + i)),
				Name:         "item",
				UnitPrice:    price,
				Quantity:     qty,
				RestaurantID: "rest-1",
			}
			require.NoError(t, c.AddItem(item))
			want += price * float64(qty)
		}
		assert.InDelta(t, want, c.Subtotal(), 1e-9)
	}
}

func TestJSONRoundTripKeepsBinding(t *testing.T) {
	c := New()
	require.NoError(t, c.AddItem(paneer(2)))
	require.NoError(t, c.AddItem(naan(1)))

	data, err := json.Marshal(c)
	require.NoError(t, err)

	restored := New()
	require.NoError(t, json.Unmarshal(data, restored))

	assert.Equal(t, "rest-1", restored.RestaurantID())
	assert.Equal(t, c.Subtotal(), restored.Subtotal())
	assert.Equal(t, c.Items(), restored.Items())
}

// Mirrors a shopper session: build up a cart, hit the restaurant conflict,
// adjust, check the bill at each step.
func TestShoppingSession(t *testing.T) {
	c := New()

	require.NoError(t, c.AddItem(LineItem{
		ItemID: "item-a", Name: "A", UnitPrice: 100, Quantity: 2, RestaurantID: "r1",
	}))
	require.NoError(t, c.AddItem(LineItem{
		ItemID: "item-b", Name: "B", UnitPrice: 50, Quantity: 1, RestaurantID: "r1",
	}))
	assert.Equal(t, 250.0, c.Subtotal())

	err := c.AddItem(LineItem{
		ItemID: "item-c", Name: "C", UnitPrice: 75, Quantity: 1, RestaurantID: "r2",
	})
	assert.ErrorIs(t, err, ErrCrossRestaurantConflict)
	assert.Equal(t, 250.0, c.Subtotal())

	c.RemoveItem("item-a")
	assert.Equal(t, 50.0, c.Subtotal())
	assert.Equal(t, 1, c.Len())
}

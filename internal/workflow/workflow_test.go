package workflow

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLegalNextStatuses(t *testing.T) {
	tests := []struct {
		status Status
		want   []Status
	}{
		{StatusPending, []Status{StatusAccepted, StatusRejected}},
		{StatusAccepted, []Status{StatusPreparing}},
		{StatusPreparing, []Status{StatusOutForDelivery}},
		{StatusOutForDelivery, []Status{StatusCompleted}},
		{StatusRejected, []Status{}},
		{StatusCompleted, []Status{}},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.want, LegalNextStatuses(tt.status))
		})
	}
}

func TestUnknownStatusHasNoTransitions(t *testing.T) {
	assert.Empty(t, LegalNextStatuses(Status("limbo")))
	assert.False(t, CanTransition(Status("limbo"), StatusPending))
	assert.False(t, Status("limbo").Known())
}

func TestCanTransition(t *testing.T) {
	assert.True(t, CanTransition(StatusPending, StatusAccepted))
	assert.True(t, CanTransition(StatusPending, StatusRejected))
	assert.True(t, CanTransition(StatusOutForDelivery, StatusCompleted))

	// No skipping ahead.
	assert.False(t, CanTransition(StatusPending, StatusPreparing))
	assert.False(t, CanTransition(StatusAccepted, StatusCompleted))

	// No leaving terminal states.
	assert.False(t, CanTransition(StatusCompleted, StatusPending))
	assert.False(t, CanTransition(StatusRejected, StatusAccepted))

	// No self loops.
	assert.False(t, CanTransition(StatusPreparing, StatusPreparing))
}

func TestTerminal(t *testing.T) {
	assert.True(t, StatusRejected.Terminal())
	assert.True(t, StatusCompleted.Terminal())
	assert.False(t, StatusPending.Terminal())
	assert.False(t, Status("limbo").Terminal())
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		raw  string
		want Status
	}{
		{"pending", StatusPending},
		{"Pending", StatusPending},
		{"  pending  ", StatusPending},
		{"placed", StatusPending},
		{"confirmed", StatusAccepted},
		{"cancelled", StatusRejected},
		{"delivered", StatusCompleted},
		{"in-process", StatusPreparing},
		{"in process", StatusPreparing},
		{"In Process", StatusPreparing},
		{"food processing", StatusPreparing},
		{"food_processing", StatusPreparing},
		{"out for delivery", StatusOutForDelivery},
		{"Out-For-Delivery", StatusOutForDelivery},
		{"gibberish", Status("gibberish")},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.raw))
		})
	}
}

func TestLegalNextStatusesReturnsCopy(t *testing.T) {
	first := LegalNextStatuses(StatusPending)
	first[0] = StatusCompleted

	again := LegalNextStatuses(StatusPending)
	assert.Equal(t, StatusAccepted, again[0])
}

type fakeUpdater struct {
	calls []string
	err   error
}

func (f *fakeUpdater) UpdateOrderStatus(ctx context.Context, orderID, status string) error {
	f.calls = append(f.calls, orderID+":"+status)
	return f.err
}

func TestApplierForwardsLegalTransition(t *testing.T) {
	updater := &fakeUpdater{}
	applier := NewApplier(updater)

	err := applier.Apply(context.Background(), "ord-1", StatusPending, StatusAccepted)
	require.NoError(t, err)
	assert.Equal(t, []string{"ord-1:accepted"}, updater.calls)
}

func TestApplierRejectsIllegalTransitionWithoutCalling(t *testing.T) {
	updater := &fakeUpdater{}
	applier := NewApplier(updater)

	err := applier.Apply(context.Background(), "ord-1", StatusPending, StatusCompleted)
	assert.ErrorIs(t, err, ErrIllegalTransition)
	assert.Empty(t, updater.calls)
}

func TestApplierPropagatesUpstreamError(t *testing.T) {
	boom := errors.New("upstream down")
	updater := &fakeUpdater{err: boom}
	applier := NewApplier(updater)

	err := applier.Apply(context.Background(), "ord-1", StatusAccepted, StatusPreparing)
	assert.ErrorIs(t, err, boom)
	assert.Len(t, updater.calls, 1)
}

func TestMessageCoversAllStatuses(t *testing.T) {
	for _, s := range []Status{StatusPending, StatusAccepted, StatusRejected, StatusPreparing, StatusOutForDelivery, StatusCompleted} {
		assert.NotEmpty(t, Message(s))
	}
}

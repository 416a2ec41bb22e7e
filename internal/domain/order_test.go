package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var orderStatuses = []OrderStatus{
	OrderStatusPending, OrderStatusPaymentFailed, OrderStatusPaid,
	OrderStatusProcessing, OrderStatusShipped, OrderStatusDelivered,
	OrderStatusCompleted, OrderStatusCancelled, OrderStatusRefunded,
	OrderStatusReturned, OrderStatusOnHold,
}

func TestOrderStatusTransitions(t *testing.T) {
	allowed := map[OrderStatus][]OrderStatus{
		OrderStatusPending:       {OrderStatusPaid, OrderStatusPaymentFailed, OrderStatusCancelled},
		OrderStatusPaid:          {OrderStatusProcessing, OrderStatusRefunded, OrderStatusCancelled},
		OrderStatusProcessing:    {OrderStatusShipped, OrderStatusCancelled},
		OrderStatusShipped:       {OrderStatusDelivered},
		OrderStatusDelivered:     {OrderStatusCompleted, OrderStatusReturned},
		OrderStatusPaymentFailed: {OrderStatusPending, OrderStatusCancelled},
	}

	for _, from := range orderStatuses {
		for _, to := range orderStatuses {
			err := from.CanTransitionTo(to)
			if contains(allowed[from], to) {
				assert.NoError(t, err, "%s -> %s should be legal", from, to)
				continue
			}
			var invalid *InvalidTransitionError
			require.ErrorAs(t, err, &invalid, "%s -> %s should be rejected", from, to)
			assert.Equal(t, string(from), invalid.From)
			assert.Equal(t, string(to), invalid.To)
		}
	}
}

func TestOrderSelfTransitionsRejected(t *testing.T) {
	for _, s := range orderStatuses {
		assert.Error(t, s.CanTransitionTo(s), "%s -> %s must not be legal", s, s)
	}
}

func TestOrderLifecycleRoundTrip(t *testing.T) {
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	order := &Order{ID: "o1", Status: OrderStatusPending, TotalCents: 4200}

	require.NoError(t, order.MarkAsPaid("pay1", start))
	require.NoError(t, order.MarkAsProcessing("ship1", start.Add(time.Minute)))
	require.NoError(t, order.MarkAsShipped("ship1", start.Add(2*time.Minute)))
	require.NoError(t, order.MarkAsDelivered(start.Add(3*time.Minute)))

	assert.Equal(t, OrderStatusDelivered, order.Status)
	require.NotNil(t, order.PaidAt)
	require.NotNil(t, order.ShippedAt)
	require.NotNil(t, order.DeliveredAt)
	assert.False(t, order.ShippedAt.Before(*order.PaidAt))
	assert.False(t, order.DeliveredAt.Before(*order.ShippedAt))
	assert.Equal(t, "pay1", *order.PaymentID)
	assert.Equal(t, "ship1", *order.ShipmentID)
}

func TestOrderShipFromPendingRejected(t *testing.T) {
	order := &Order{ID: "o1", Status: OrderStatusPending}

	err := order.MarkAsShipped("ship1", time.Now())

	var invalid *InvalidTransitionError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, OrderStatusPending, order.Status, "order must be unchanged")
	assert.Nil(t, order.ShipmentID)
	assert.Nil(t, order.ShippedAt)
}

func TestOrderMarkAsDeleted(t *testing.T) {
	now := time.Now()

	order := &Order{ID: "o1", Status: OrderStatusCompleted}
	err := order.MarkAsDeleted(now, 2)
	var invalidOp *InvalidOperationError
	require.ErrorAs(t, err, &invalidOp)
	assert.False(t, order.Deleted)

	require.NoError(t, order.MarkAsDeleted(now, 0))
	assert.True(t, order.Deleted)

	err = order.MarkAsDeleted(now, 0)
	require.ErrorAs(t, err, &invalidOp)
}

func contains[S ~string](set []S, v S) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

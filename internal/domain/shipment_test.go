package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShipmentStatusTransitions(t *testing.T) {
	statuses := []ShipmentStatus{
		ShipmentStatusPending, ShipmentStatusShipped, ShipmentStatusDelivered,
		ShipmentStatusOnHold, ShipmentStatusCancelled,
	}
	allowed := map[ShipmentStatus][]ShipmentStatus{
		ShipmentStatusPending: {ShipmentStatusShipped, ShipmentStatusOnHold, ShipmentStatusCancelled},
		ShipmentStatusShipped: {ShipmentStatusDelivered},
		ShipmentStatusOnHold:  {ShipmentStatusShipped, ShipmentStatusCancelled},
	}

	for _, from := range statuses {
		for _, to := range statuses {
			err := from.CanTransitionTo(to)
			if contains(allowed[from], to) {
				assert.NoError(t, err, "%s -> %s should be legal", from, to)
			} else {
				assert.Error(t, err, "%s -> %s should be rejected", from, to)
			}
		}
	}
}

func TestShipmentCancelAfterDeliveryRejected(t *testing.T) {
	now := time.Now()

	shipment := &Shipment{ID: "s1", Status: ShipmentStatusShipped}
	require.NoError(t, shipment.MarkAsDelivered(now))

	err := shipment.Cancel(now.Add(time.Minute))

	var invalid *InvalidTransitionError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, ShipmentStatusDelivered, shipment.Status)
}

func TestShipmentHoldAndResume(t *testing.T) {
	now := time.Now()

	shipment := &Shipment{ID: "s1", Status: ShipmentStatusPending}
	require.NoError(t, shipment.PutOnHold(now))
	require.NoError(t, shipment.MarkAsShipped(now.Add(time.Hour)))
	assert.Equal(t, ShipmentStatusShipped, shipment.Status)
	require.NotNil(t, shipment.ShippedAt)
}

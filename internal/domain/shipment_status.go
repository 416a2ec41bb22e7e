package domain

type ShipmentStatus string

const (
	ShipmentStatusPending   ShipmentStatus = "pending"
	ShipmentStatusShipped   ShipmentStatus = "shipped"
	ShipmentStatusDelivered ShipmentStatus = "delivered"
	ShipmentStatusOnHold    ShipmentStatus = "on_hold"
	ShipmentStatusCancelled ShipmentStatus = "cancelled"
)

// Delivered and Cancelled are terminal.
var shipmentTransitions = map[ShipmentStatus][]ShipmentStatus{
	ShipmentStatusPending: {ShipmentStatusShipped, ShipmentStatusOnHold, ShipmentStatusCancelled},
	ShipmentStatusShipped: {ShipmentStatusDelivered},
	ShipmentStatusOnHold:  {ShipmentStatusShipped, ShipmentStatusCancelled},
}

// CanTransitionTo reports whether the jump from s to target is legal.
func (s ShipmentStatus) CanTransitionTo(target ShipmentStatus) error {
	return canTransition("shipment", shipmentTransitions, s, target)
}

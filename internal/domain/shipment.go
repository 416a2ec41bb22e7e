package domain

import "time"

// Shipment is created only after payment fulfilment, one per order.
type Shipment struct {
	ID              string         `json:"id"`
	OrderID         string         `json:"orderId"`
	ShippingAddress Address        `json:"shippingAddress"`
	TrackingCode    string         `json:"trackingCode"`
	Status          ShipmentStatus `json:"status"`
	ShippedAt       *time.Time     `json:"shippedAt,omitempty"`
	DeliveredAt     *time.Time     `json:"deliveredAt,omitempty"`
	Version         int            `json:"version"`
	CreatedAt       time.Time      `json:"createdAt"`
	UpdatedAt       time.Time      `json:"updatedAt"`
}

// MarkAsShipped moves the shipment out of the warehouse.
func (s *Shipment) MarkAsShipped(when time.Time) error {
	if err := s.Status.CanTransitionTo(ShipmentStatusShipped); err != nil {
		return err
	}
	s.Status = ShipmentStatusShipped
	s.ShippedAt = &when
	s.UpdatedAt = when
	return nil
}

// MarkAsDelivered completes the shipment.
func (s *Shipment) MarkAsDelivered(when time.Time) error {
	if err := s.Status.CanTransitionTo(ShipmentStatusDelivered); err != nil {
		return err
	}
	s.Status = ShipmentStatusDelivered
	s.DeliveredAt = &when
	s.UpdatedAt = when
	return nil
}

// PutOnHold parks a pending shipment.
func (s *Shipment) PutOnHold(when time.Time) error {
	if err := s.Status.CanTransitionTo(ShipmentStatusOnHold); err != nil {
		return err
	}
	s.Status = ShipmentStatusOnHold
	s.UpdatedAt = when
	return nil
}

// Cancel aborts a shipment that has not been delivered.
func (s *Shipment) Cancel(when time.Time) error {
	if err := s.Status.CanTransitionTo(ShipmentStatusCancelled); err != nil {
		return err
	}
	s.Status = ShipmentStatusCancelled
	s.UpdatedAt = when
	return nil
}

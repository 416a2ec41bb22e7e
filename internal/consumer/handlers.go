package consumer

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"shopflow/internal/domain"
	"shopflow/internal/events"
)

// Consumer group names, one per reaction so each advances its own
// offsets.
const (
	GroupOrderFromCheckout  = "order.from_checkout"
	GroupOrderFromPayment   = "order.from_payment"
	GroupOrderFromRefund    = "order.from_refund"
	GroupOrderFromShipment  = "order.from_shipment"
	GroupPaymentFromOrder   = "payment.from_order"
	GroupShipmentFromPaid   = "shipment.from_paid"
	GroupInventoryReserve   = "inventory.reserve"
	GroupInventoryRelease   = "inventory.release"
	GroupCouponFromCheckout = "coupon.from_checkout"
)

// skipApplied swallows guard rejections. A transition the aggregate
// refuses on redelivery has already happened; failing here would wedge
// the partition.
func skipApplied(logger *zap.Logger, env events.Envelope, err error) error {
	var transition *domain.InvalidTransitionError
	var operation *domain.InvalidOperationError
	if errors.As(err, &transition) || errors.As(err, &operation) {
		logger.Info("skipping already-applied event",
			zap.String("event_id", env.EventID), zap.String("type", env.Type), zap.Error(err))
		return nil
	}
	return err
}

type orderService interface {
	CreateFromCheckout(ctx context.Context, checkout events.CartCheckedOut, when time.Time) (*domain.Order, error)
	MarkAsPaid(ctx context.Context, orderID, paymentID string, when time.Time) (*domain.Order, error)
	MarkAsPaymentFailed(ctx context.Context, orderID, paymentID string, when time.Time) (*domain.Order, error)
	MarkAsProcessing(ctx context.Context, orderID, shipmentID string, when time.Time) (*domain.Order, error)
	MarkAsShipped(ctx context.Context, orderID, shipmentID string, when time.Time) (*domain.Order, error)
	MarkAsDelivered(ctx context.Context, orderID string, when time.Time) (*domain.Order, error)
	MarkAsRefunded(ctx context.Context, orderID string, when time.Time) (*domain.Order, error)
}

// OrderFromCheckout opens an order for every checked-out cart.
func OrderFromCheckout(orders orderService) Handler {
	return func(ctx context.Context, env events.Envelope) error {
		var checkout events.CartCheckedOut
		if err := env.Decode(&checkout); err != nil {
			return err
		}
		_, err := orders.CreateFromCheckout(ctx, checkout, env.OccurredAt)
		return err
	}
}

// OrderFromPayment mirrors payment outcomes onto the order.
func OrderFromPayment(orders orderService, logger *zap.Logger) (fulfilled, cancelled Handler) {
	fulfilled = func(ctx context.Context, env events.Envelope) error {
		var paid events.PaymentFulfilled
		if err := env.Decode(&paid); err != nil {
			return err
		}
		_, err := orders.MarkAsPaid(ctx, paid.OrderID, paid.PaymentID, env.OccurredAt)
		return skipApplied(logger, env, err)
	}
	cancelled = func(ctx context.Context, env events.Envelope) error {
		var failed events.PaymentCancelled
		if err := env.Decode(&failed); err != nil {
			return err
		}
		_, err := orders.MarkAsPaymentFailed(ctx, failed.OrderID, failed.PaymentID, env.OccurredAt)
		return skipApplied(logger, env, err)
	}
	return fulfilled, cancelled
}

// OrderFromRefund mirrors a refunded payment onto the order.
func OrderFromRefund(orders orderService, logger *zap.Logger) Handler {
	return func(ctx context.Context, env events.Envelope) error {
		var refunded events.PaymentRefunded
		if err := env.Decode(&refunded); err != nil {
			return err
		}
		_, err := orders.MarkAsRefunded(ctx, refunded.OrderID, env.OccurredAt)
		return skipApplied(logger, env, err)
	}
}

// OrderFromShipment mirrors shipment progress onto the order. A created
// shipment moves the order to processing; shipped and delivered follow
// the status changes.
func OrderFromShipment(orders orderService, logger *zap.Logger) (created, statusChanged Handler) {
	created = func(ctx context.Context, env events.Envelope) error {
		var shipment events.ShipmentCreated
		if err := env.Decode(&shipment); err != nil {
			return err
		}
		_, err := orders.MarkAsProcessing(ctx, shipment.OrderID, shipment.ShipmentID, env.OccurredAt)
		return skipApplied(logger, env, err)
	}
	statusChanged = func(ctx context.Context, env events.Envelope) error {
		var change events.ShipmentStatusChanged
		if err := env.Decode(&change); err != nil {
			return err
		}
		var err error
		switch change.Status {
		case domain.ShipmentStatusShipped:
			_, err = orders.MarkAsShipped(ctx, change.OrderID, change.ShipmentID, change.StatusChangedAt)
		case domain.ShipmentStatusDelivered:
			_, err = orders.MarkAsDelivered(ctx, change.OrderID, change.StatusChangedAt)
		default:
			return nil
		}
		return skipApplied(logger, env, err)
	}
	return created, statusChanged
}

type paymentService interface {
	CreateAndCapture(ctx context.Context, created events.OrderCreated, method string, when time.Time) (*domain.Payment, error)
}

// PaymentFromOrder opens and captures a payment for every new order.
func PaymentFromOrder(payments paymentService, method string) Handler {
	return func(ctx context.Context, env events.Envelope) error {
		var created events.OrderCreated
		if err := env.Decode(&created); err != nil {
			return err
		}
		_, err := payments.CreateAndCapture(ctx, created, method, env.OccurredAt)
		return err
	}
}

type shipmentService interface {
	CreateForOrder(ctx context.Context, orderID string, address domain.Address, when time.Time) (*domain.Shipment, error)
}

type orderReader interface {
	Get(ctx context.Context, id string) (*domain.Order, error)
}

// ShipmentFromPaid opens a shipment once the payment clears, using the
// delivery address snapshotted on the order.
func ShipmentFromPaid(shipments shipmentService, orders orderReader) Handler {
	return func(ctx context.Context, env events.Envelope) error {
		var paid events.PaymentFulfilled
		if err := env.Decode(&paid); err != nil {
			return err
		}
		order, err := orders.Get(ctx, paid.OrderID)
		if err != nil {
			return err
		}
		_, err = shipments.CreateForOrder(ctx, order.ID, order.DeliveryAddress, env.OccurredAt)
		return err
	}
}

type inventoryService interface {
	ReserveForOrder(ctx context.Context, items []domain.OrderItem, when time.Time) error
	ReleaseForOrder(ctx context.Context, items []domain.OrderItem, when time.Time) error
}

// InventoryReserve decrements advisory stock when an order is created.
func InventoryReserve(inventory inventoryService) Handler {
	return func(ctx context.Context, env events.Envelope) error {
		var created events.OrderCreated
		if err := env.Decode(&created); err != nil {
			return err
		}
		return inventory.ReserveForOrder(ctx, created.Items, env.OccurredAt)
	}
}

// InventoryRelease puts stock back when a payment is cancelled.
func InventoryRelease(inventory inventoryService) Handler {
	return func(ctx context.Context, env events.Envelope) error {
		var cancelled events.PaymentCancelled
		if err := env.Decode(&cancelled); err != nil {
			return err
		}
		return inventory.ReleaseForOrder(ctx, cancelled.Items, env.OccurredAt)
	}
}

type couponService interface {
	MarkAsRedeemed(ctx context.Context, couponID string, when time.Time) (*domain.Coupon, error)
}

// CouponFromCheckout redeems every coupon applied to a checked-out cart.
func CouponFromCheckout(coupons couponService, logger *zap.Logger) Handler {
	return func(ctx context.Context, env events.Envelope) error {
		var checkout events.CartCheckedOut
		if err := env.Decode(&checkout); err != nil {
			return err
		}
		for _, couponID := range checkout.CouponIDs {
			_, err := coupons.MarkAsRedeemed(ctx, couponID, env.OccurredAt)
			if err = skipApplied(logger, env, err); err != nil {
				return err
			}
		}
		return nil
	}
}

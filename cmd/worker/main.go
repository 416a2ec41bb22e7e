package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"shopflow/internal/config"
	"shopflow/internal/consumer"
	"shopflow/internal/db"
	"shopflow/internal/events"
	"shopflow/internal/idempotency"
	"shopflow/internal/observability"
	"shopflow/internal/outbox"
	couponrepo "shopflow/internal/repository/coupon"
	orderrepo "shopflow/internal/repository/order"
	paymentrepo "shopflow/internal/repository/payment"
	shipmentrepo "shopflow/internal/repository/shipment"
	stockrepo "shopflow/internal/repository/stock"
	couponsvc "shopflow/internal/service/coupon"
	inventorysvc "shopflow/internal/service/inventory"
	ordersvc "shopflow/internal/service/order"
	paymentsvc "shopflow/internal/service/payment"
	shipmentsvc "shopflow/internal/service/shipment"
)

const consumerRestartBackoff = 2 * time.Second

func main() {
	cfg := config.FromEnv()
	logger, err := observability.NewLogger("worker")
	if err != nil {
		os.Stderr.WriteString("init logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dbpool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.Fatal("connect to db", zap.Error(err))
	}
	defer dbpool.Close()

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer redisClient.Close()
	dedup := idempotency.NewStore(redisClient)

	kafkaClient := events.NewClient(cfg.KafkaBrokers)
	metrics := observability.NewConsumerMetrics("worker")

	orderRepo := orderrepo.NewPostgres(dbpool)
	paymentRepo := paymentrepo.NewPostgres(dbpool)
	shipmentRepo := shipmentrepo.NewPostgres(dbpool)
	couponRepo := couponrepo.NewPostgres(dbpool)
	stockRepo := stockrepo.NewPostgres(dbpool)

	orderService := ordersvc.New(orderRepo)
	paymentService := paymentsvc.New(paymentRepo, paymentsvc.DefaultGateway(), cfg.CaptureTimeout)
	shipmentService := shipmentsvc.New(shipmentRepo)
	couponService := couponsvc.New(couponRepo, logger)
	inventoryService := inventorysvc.New(stockRepo, logger)

	orderFulfilled, orderFailed := consumer.OrderFromPayment(orderService, logger)
	shipmentCreated, shipmentChanged := consumer.OrderFromShipment(orderService, logger)

	type subscription struct {
		topic   string
		group   string
		handler consumer.Handler
	}
	subs := []subscription{
		{events.TopicCartCheckedOut, consumer.GroupOrderFromCheckout, consumer.OrderFromCheckout(orderService)},
		{events.TopicPaymentFulfilled, consumer.GroupOrderFromPayment, orderFulfilled},
		{events.TopicPaymentCancelled, consumer.GroupOrderFromPayment, orderFailed},
		{events.TopicPaymentRefunded, consumer.GroupOrderFromRefund, consumer.OrderFromRefund(orderService, logger)},
		{events.TopicShipmentCreated, consumer.GroupOrderFromShipment, shipmentCreated},
		{events.TopicShipmentStatusChanged, consumer.GroupOrderFromShipment, shipmentChanged},
		{events.TopicOrderCreated, consumer.GroupPaymentFromOrder, consumer.PaymentFromOrder(paymentService, "card")},
		{events.TopicPaymentFulfilled, consumer.GroupShipmentFromPaid, consumer.ShipmentFromPaid(shipmentService, orderService)},
		{events.TopicOrderCreated, consumer.GroupInventoryReserve, consumer.InventoryReserve(inventoryService)},
		{events.TopicPaymentCancelled, consumer.GroupInventoryRelease, consumer.InventoryRelease(inventoryService)},
		{events.TopicCartCheckedOut, consumer.GroupCouponFromCheckout, consumer.CouponFromCheckout(couponService, logger)},
	}

	var wg sync.WaitGroup
	for _, sub := range subs {
		runner := consumer.NewRunner(kafkaClient, sub.topic, cfg.KafkaGroupID+"."+sub.group, sub.handler, dedup, metrics, logger)
		wg.Add(1)
		go func() {
			defer wg.Done()
			runner.RunForever(ctx, consumerRestartBackoff)
		}()
	}

	relay := outbox.NewRelay(dbpool, kafkaClient, logger, cfg.OutboxPollInterval)
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := relay.Run(ctx); err != nil {
			logger.Error("outbox relay stopped", zap.Error(err))
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		sweepCoupons(ctx, couponService, logger, cfg.CouponSweepEvery)
	}()

	metricsSrv := &http.Server{Addr: ":9100", Handler: observability.Handler(), ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Warn("metrics server stopped", zap.Error(err))
		}
	}()

	logger.Info("worker started",
		zap.String("brokers", cfg.KafkaBrokers), zap.Int("consumers", len(subs)))

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	metricsSrv.Shutdown(shutdownCtx)

	wg.Wait()
	logger.Info("worker stopped")
}

func sweepCoupons(ctx context.Context, coupons *couponsvc.Service, logger *zap.Logger, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			expired, err := coupons.ExpireDue(ctx, now.UTC())
			if err != nil {
				logger.Warn("coupon sweep failed", zap.Error(err))
				continue
			}
			if expired > 0 {
				logger.Info("expired coupons", zap.Int("count", expired))
			}
		}
	}
}

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"shopflow/internal/config"
	"shopflow/internal/db"
	"shopflow/internal/httpserver"
	"shopflow/internal/observability"
	cartrepo "shopflow/internal/repository/cart"
	couponrepo "shopflow/internal/repository/coupon"
	orderrepo "shopflow/internal/repository/order"
	paymentrepo "shopflow/internal/repository/payment"
	productrepo "shopflow/internal/repository/product"
	shipmentrepo "shopflow/internal/repository/shipment"
	stockrepo "shopflow/internal/repository/stock"
	cartsvc "shopflow/internal/service/cart"
	couponsvc "shopflow/internal/service/coupon"
	inventorysvc "shopflow/internal/service/inventory"
	ordersvc "shopflow/internal/service/order"
	paymentsvc "shopflow/internal/service/payment"
	shipmentsvc "shopflow/internal/service/shipment"
)

func main() {
	cfg := config.FromEnv()
	logger, err := observability.NewLogger("api")
	if err != nil {
		os.Stderr.WriteString("init logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer logger.Sync()

	ctx := context.Background()
	dbpool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.Fatal("connect to db", zap.Error(err))
	}
	defer dbpool.Close()

	productRepo := productrepo.NewPostgres(dbpool)
	stockRepo := stockrepo.NewPostgres(dbpool)
	cartRepo := cartrepo.NewPostgres(dbpool)
	orderRepo := orderrepo.NewPostgres(dbpool)
	paymentRepo := paymentrepo.NewPostgres(dbpool)
	shipmentRepo := shipmentrepo.NewPostgres(dbpool)
	couponRepo := couponrepo.NewPostgres(dbpool)

	couponService := couponsvc.New(couponRepo, logger)
	cartService := cartsvc.New(cartRepo, productRepo, couponService, cfg.TaxRateBP)
	orderService := ordersvc.New(orderRepo)
	paymentService := paymentsvc.New(paymentRepo, paymentsvc.DefaultGateway(), cfg.CaptureTimeout)
	shipmentService := shipmentsvc.New(shipmentRepo)
	inventoryService := inventorysvc.New(stockRepo, logger)

	metrics := observability.NewHTTPMetrics("api")
	srv := httpserver.New(cfg.HTTPAddr, logger, dbpool, httpserver.Deps{
		Carts:     cartService,
		Orders:    orderService,
		Payments:  paymentService,
		Shipments: shipmentService,
		Coupons:   couponService,
		Inventory: inventoryService,
		Products:  productRepo,
	}, metrics)

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("starting http server", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		logger.Info("received signal, shutting down", zap.String("signal", sig.String()))
	case err := <-serverErr:
		logger.Error("server error", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	} else {
		logger.Info("server stopped")
	}
}

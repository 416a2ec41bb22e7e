package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	cartsvc "shopflow/internal/service/cart"
	couponsvc "shopflow/internal/service/coupon"
	inventorysvc "shopflow/internal/service/inventory"
	ordersvc "shopflow/internal/service/order"
	paymentsvc "shopflow/internal/service/payment"
	shipmentsvc "shopflow/internal/service/shipment"

	"shopflow/internal/observability"
	productrepo "shopflow/internal/repository/product"
)

// Deps carries the services the router exposes.
type Deps struct {
	Carts     *cartsvc.Service
	Orders    *ordersvc.Service
	Payments  *paymentsvc.Service
	Shipments *shipmentsvc.Service
	Coupons   *couponsvc.Service
	Inventory *inventorysvc.Service
	Products  productrepo.Repository
}

// Server wraps the HTTP server setup.
type Server struct {
	httpServer *http.Server
	logger     *zap.Logger
	db         *pgxpool.Pool
}

// New builds a Server with all routes wired.
func New(addr string, logger *zap.Logger, db *pgxpool.Pool, deps Deps, metrics *observability.HTTPMetrics) *Server {
	router := buildRouter(logger, db, deps, metrics)

	httpSrv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	return &Server{
		httpServer: httpSrv,
		logger:     logger,
		db:         db,
	}
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func readyHandler(db *pgxpool.Pool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if db == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "reason": "db not configured"})
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), time.Second)
		defer cancel()
		if err := db.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "reason": "db not reachable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	}
}

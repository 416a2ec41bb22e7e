package httpserver

import (
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"shopflow/internal/observability"
)

// buildRouter wires routes for the API.
func buildRouter(logger *zap.Logger, db *pgxpool.Pool, deps Deps, metrics *observability.HTTPMetrics) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), cors.Default())
	if metrics != nil {
		router.Use(metricsMiddleware(metrics))
	}

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(db))
	router.GET("/metrics", gin.WrapH(observability.Handler()))

	carts := cartHandlers{svc: deps.Carts, logger: logger}
	router.POST("/carts", carts.create)
	router.GET("/carts/active", carts.getActive)
	router.GET("/carts/:id", carts.get)
	router.DELETE("/carts/:id", carts.remove)
	router.POST("/carts/:id/lines", carts.addLine)
	router.PATCH("/carts/:id/lines/:lineId", carts.changeLine)
	router.POST("/carts/:id/coupons", carts.applyCoupon)
	router.POST("/carts/:id/checkout", carts.checkout)

	orders := orderHandlers{svc: deps.Orders, logger: logger}
	router.GET("/orders", orders.list)
	router.GET("/orders/:id", orders.get)
	router.POST("/orders/:id/cancel", orders.cancel)
	router.POST("/orders/:id/complete", orders.complete)
	router.POST("/orders/:id/return", orders.markReturned)
	router.DELETE("/orders/:id", orders.remove)

	payments := paymentHandlers{svc: deps.Payments, logger: logger}
	router.GET("/payments/:id", payments.get)
	router.GET("/orders/:id/payment", payments.getByOrder)
	router.POST("/payments/:id/fulfill", payments.fulfill)
	router.POST("/payments/:id/fail", payments.fail)
	router.POST("/payments/:id/refund", payments.refund)

	shipments := shipmentHandlers{svc: deps.Shipments, logger: logger}
	router.GET("/shipments/:id", shipments.get)
	router.GET("/orders/:id/shipment", shipments.getByOrder)
	router.POST("/shipments/:id/ship", shipments.ship)
	router.POST("/shipments/:id/deliver", shipments.deliver)
	router.POST("/shipments/:id/hold", shipments.hold)
	router.POST("/shipments/:id/cancel", shipments.cancel)

	coupons := couponHandlers{svc: deps.Coupons, logger: logger}
	router.POST("/coupons", coupons.create)
	router.GET("/coupons/:id", coupons.get)
	router.POST("/coupons/:id/assign", coupons.assign)
	router.POST("/coupons/:id/expire", coupons.expire)
	router.DELETE("/coupons/:id", coupons.remove)

	catalog := catalogHandlers{products: deps.Products, inventory: deps.Inventory, logger: logger}
	router.POST("/products", catalog.createProduct)
	router.GET("/products", catalog.listProducts)
	router.GET("/products/:id", catalog.getProduct)
	router.GET("/products/:id/stock/:variantId", catalog.getStock)
	router.PUT("/products/:id/stock/:variantId", catalog.setStock)

	return router
}

func metricsMiddleware(metrics *observability.HTTPMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		handler := c.FullPath()
		if handler == "" {
			handler = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		metrics.Requests.WithLabelValues(handler, status).Inc()
		metrics.LatencyMS.WithLabelValues(handler, status).Observe(float64(time.Since(start).Milliseconds()))
	}
}

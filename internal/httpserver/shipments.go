package httpserver

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	shipmentsvc "shopflow/internal/service/shipment"
)

// Shipment transitions are carrier/back-office operations, not
// customer-facing, so no ownership check applies.
type shipmentHandlers struct {
	svc    *shipmentsvc.Service
	logger *zap.Logger
}

func (h shipmentHandlers) get(c *gin.Context) {
	shipment, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondErr(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, shipment)
}

func (h shipmentHandlers) getByOrder(c *gin.Context) {
	shipment, err := h.svc.GetByOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondErr(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, shipment)
}

func (h shipmentHandlers) ship(c *gin.Context) {
	shipment, err := h.svc.MarkAsShipped(c.Request.Context(), c.Param("id"), time.Now().UTC())
	if err != nil {
		respondErr(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, shipment)
}

func (h shipmentHandlers) deliver(c *gin.Context) {
	shipment, err := h.svc.MarkAsDelivered(c.Request.Context(), c.Param("id"), time.Now().UTC())
	if err != nil {
		respondErr(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, shipment)
}

func (h shipmentHandlers) hold(c *gin.Context) {
	shipment, err := h.svc.PutOnHold(c.Request.Context(), c.Param("id"), time.Now().UTC())
	if err != nil {
		respondErr(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, shipment)
}

func (h shipmentHandlers) cancel(c *gin.Context) {
	shipment, err := h.svc.Cancel(c.Request.Context(), c.Param("id"), time.Now().UTC())
	if err != nil {
		respondErr(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, shipment)
}

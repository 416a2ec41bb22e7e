package httpserver

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	ordersvc "shopflow/internal/service/order"
)

type orderHandlers struct {
	svc    *ordersvc.Service
	logger *zap.Logger
}

func (h orderHandlers) list(c *gin.Context) {
	userID, ok := actorID(c)
	if !ok {
		return
	}
	orders, err := h.svc.ListByUser(c.Request.Context(), userID)
	if err != nil {
		respondErr(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders, "count": len(orders)})
}

func (h orderHandlers) get(c *gin.Context) {
	userID, ok := actorID(c)
	if !ok {
		return
	}
	order, err := h.svc.GetOwned(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		respondErr(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h orderHandlers) cancel(c *gin.Context) {
	userID, ok := actorID(c)
	if !ok {
		return
	}
	order, err := h.svc.MarkAsCancelled(c.Request.Context(), userID, c.Param("id"), time.Now().UTC())
	if err != nil {
		respondErr(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h orderHandlers) complete(c *gin.Context) {
	userID, ok := actorID(c)
	if !ok {
		return
	}
	order, err := h.svc.MarkAsCompleted(c.Request.Context(), userID, c.Param("id"), time.Now().UTC())
	if err != nil {
		respondErr(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h orderHandlers) markReturned(c *gin.Context) {
	userID, ok := actorID(c)
	if !ok {
		return
	}
	order, err := h.svc.MarkAsReturned(c.Request.Context(), userID, c.Param("id"), time.Now().UTC())
	if err != nil {
		respondErr(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h orderHandlers) remove(c *gin.Context) {
	userID, ok := actorID(c)
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), userID, c.Param("id"), time.Now().UTC()); err != nil {
		respondErr(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

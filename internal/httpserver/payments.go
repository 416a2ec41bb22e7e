package httpserver

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	paymentsvc "shopflow/internal/service/payment"
)

type paymentHandlers struct {
	svc    *paymentsvc.Service
	logger *zap.Logger
}

func (h paymentHandlers) get(c *gin.Context) {
	payment, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondErr(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, payment)
}

func (h paymentHandlers) getByOrder(c *gin.Context) {
	payment, err := h.svc.GetByOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondErr(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, payment)
}

type paymentWebhookRequest struct {
	Method string `json:"method"`
}

// fulfill is the provider-webhook path; repeating it is a no-op.
func (h paymentHandlers) fulfill(c *gin.Context) {
	var req paymentWebhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalid(c, err)
		return
	}
	payment, err := h.svc.MarkAsFulfilled(c.Request.Context(), c.Param("id"), req.Method, time.Now().UTC())
	if err != nil {
		respondErr(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, payment)
}

func (h paymentHandlers) fail(c *gin.Context) {
	var req paymentWebhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalid(c, err)
		return
	}
	payment, err := h.svc.MarkAsFailed(c.Request.Context(), c.Param("id"), req.Method, time.Now().UTC())
	if err != nil {
		respondErr(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, payment)
}

func (h paymentHandlers) refund(c *gin.Context) {
	payment, err := h.svc.Refund(c.Request.Context(), c.Param("id"), time.Now().UTC())
	if err != nil {
		respondErr(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, payment)
}

package httpserver

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"shopflow/internal/domain"
	cartsvc "shopflow/internal/service/cart"
)

type cartHandlers struct {
	svc    *cartsvc.Service
	logger *zap.Logger
}

type createCartRequest struct {
	Currency string `json:"currency" binding:"required"`
}

func (h cartHandlers) create(c *gin.Context) {
	userID, ok := actorID(c)
	if !ok {
		return
	}
	var req createCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalid(c, err)
		return
	}
	cart, err := h.svc.Create(c.Request.Context(), userID, req.Currency)
	if err != nil {
		respondErr(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, cart)
}

func (h cartHandlers) get(c *gin.Context) {
	userID, ok := actorID(c)
	if !ok {
		return
	}
	cart, err := h.svc.Get(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		respondErr(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

func (h cartHandlers) getActive(c *gin.Context) {
	userID, ok := actorID(c)
	if !ok {
		return
	}
	cart, err := h.svc.GetActive(c.Request.Context(), userID)
	if err != nil {
		respondErr(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

type addLineRequest struct {
	SKU       string `json:"sku" binding:"required"`
	VariantID string `json:"variantId"`
	Quantity  int    `json:"quantity" binding:"required"`
}

func (h cartHandlers) addLine(c *gin.Context) {
	userID, ok := actorID(c)
	if !ok {
		return
	}
	var req addLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalid(c, err)
		return
	}
	cart, err := h.svc.AddLineItem(c.Request.Context(), userID, c.Param("id"), req.SKU, req.VariantID, req.Quantity)
	if err != nil {
		respondErr(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

type changeLineRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

func (h cartHandlers) changeLine(c *gin.Context) {
	userID, ok := actorID(c)
	if !ok {
		return
	}
	var req changeLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalid(c, err)
		return
	}
	cart, err := h.svc.ChangeLineItemQuantity(c.Request.Context(), userID, c.Param("id"), c.Param("lineId"), *req.Quantity)
	if err != nil {
		respondErr(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

type applyCouponRequest struct {
	Code string `json:"code" binding:"required"`
}

func (h cartHandlers) applyCoupon(c *gin.Context) {
	userID, ok := actorID(c)
	if !ok {
		return
	}
	var req applyCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalid(c, err)
		return
	}
	cart, err := h.svc.ApplyCoupon(c.Request.Context(), userID, c.Param("id"), req.Code, time.Now().UTC())
	if err != nil {
		respondErr(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

type checkoutRequest struct {
	DeliveryAddress domain.Address `json:"deliveryAddress" binding:"required"`
}

func (h cartHandlers) checkout(c *gin.Context) {
	userID, ok := actorID(c)
	if !ok {
		return
	}
	var req checkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalid(c, err)
		return
	}
	cart, err := h.svc.Checkout(c.Request.Context(), userID, c.Param("id"), req.DeliveryAddress, time.Now().UTC())
	if err != nil {
		respondErr(c, h.logger, err)
		return
	}
	c.JSON(http.StatusAccepted, cart)
}

func (h cartHandlers) remove(c *gin.Context) {
	userID, ok := actorID(c)
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), userID, c.Param("id")); err != nil {
		respondErr(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

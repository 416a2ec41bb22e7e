package httpserver

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"shopflow/internal/domain"
	couponsvc "shopflow/internal/service/coupon"
)

type couponHandlers struct {
	svc    *couponsvc.Service
	logger *zap.Logger
}

type createCouponRequest struct {
	Code             string              `json:"code" binding:"required"`
	DiscountType     domain.DiscountType `json:"discountType" binding:"required"`
	DiscountValue    int64               `json:"discountValue" binding:"required"`
	ExpiryDate       time.Time           `json:"expiryDate" binding:"required"`
	MinPurchaseCents int64               `json:"minimumPurchaseAmountCents"`
}

func (h couponHandlers) create(c *gin.Context) {
	var req createCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalid(c, err)
		return
	}
	coupon, err := h.svc.Create(c.Request.Context(), couponsvc.CreateInput{
		Code:             req.Code,
		Discount:         domain.Discount{Type: req.DiscountType, Value: req.DiscountValue},
		ExpiryDate:       req.ExpiryDate,
		MinPurchaseCents: req.MinPurchaseCents,
	}, time.Now().UTC())
	if err != nil {
		respondErr(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, coupon)
}

func (h couponHandlers) get(c *gin.Context) {
	coupon, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondErr(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, coupon)
}

type assignCouponRequest struct {
	UserID string `json:"userId" binding:"required"`
}

func (h couponHandlers) assign(c *gin.Context) {
	var req assignCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalid(c, err)
		return
	}
	coupon, err := h.svc.AssignToUser(c.Request.Context(), c.Param("id"), req.UserID, time.Now().UTC())
	if err != nil {
		respondErr(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, coupon)
}

func (h couponHandlers) expire(c *gin.Context) {
	coupon, err := h.svc.SetExpired(c.Request.Context(), c.Param("id"), time.Now().UTC())
	if err != nil {
		respondErr(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, coupon)
}

func (h couponHandlers) remove(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id"), time.Now().UTC()); err != nil {
		respondErr(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

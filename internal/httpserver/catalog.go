package httpserver

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"shopflow/internal/domain"
	productrepo "shopflow/internal/repository/product"
	inventorysvc "shopflow/internal/service/inventory"
)

type catalogHandlers struct {
	products  productrepo.Repository
	inventory *inventorysvc.Service
	logger    *zap.Logger
}

type createProductRequest struct {
	SKU         string `json:"sku" binding:"required"`
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	PriceCents  int64  `json:"priceCents" binding:"required"`
	Currency    string `json:"currency" binding:"required"`
}

func (h catalogHandlers) createProduct(c *gin.Context) {
	var req createProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalid(c, err)
		return
	}
	product := &domain.Product{
		ID:          uuid.NewString(),
		SKU:         req.SKU,
		Name:        req.Name,
		Description: req.Description,
		PriceCents:  req.PriceCents,
		Currency:    req.Currency,
		CreatedAt:   time.Now().UTC(),
	}
	if err := h.products.Create(c.Request.Context(), product); err != nil {
		respondErr(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, product)
}

func (h catalogHandlers) listProducts(c *gin.Context) {
	products, err := h.products.List(c.Request.Context())
	if err != nil {
		respondErr(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products, "count": len(products)})
}

func (h catalogHandlers) getProduct(c *gin.Context) {
	product, err := h.products.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondErr(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h catalogHandlers) getStock(c *gin.Context) {
	level, err := h.inventory.Get(c.Request.Context(), c.Param("id"), c.Param("variantId"))
	if err != nil {
		respondErr(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, level)
}

type setStockRequest struct {
	Available *int `json:"available" binding:"required"`
}

func (h catalogHandlers) setStock(c *gin.Context) {
	var req setStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalid(c, err)
		return
	}
	if err := h.inventory.SetLevel(c.Request.Context(), c.Param("id"), c.Param("variantId"), *req.Available, time.Now().UTC()); err != nil {
		respondErr(c, h.logger, err)
		return
	}
	level, err := h.inventory.Get(c.Request.Context(), c.Param("id"), c.Param("variantId"))
	if err != nil {
		respondErr(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, level)
}

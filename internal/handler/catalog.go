package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

func (s *Server) listProducts(c *gin.Context) {
	products, err := s.products.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, products)
}

func (s *Server) getProduct(c *gin.Context) {
	p, err := s.products.GetByID(c.Request.Context(), c.Param("productID"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (s *Server) getProductStock(c *gin.Context) {
	stock, err := s.products.Stock(c.Request.Context(), c.Param("productID"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stock)
}

type updatePricingRequest struct {
	Price    decimal.Decimal `json:"price"`
	Discount decimal.Decimal `json:"discount"`
}

func (s *Server) updateProductPricing(c *gin.Context) {
	var req updatePricingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid json")
		return
	}
	if req.Price.IsNegative() || req.Discount.IsNegative() || req.Discount.GreaterThan(decimal.NewFromInt(100)) {
		badRequest(c, "price must be non-negative and discount within [0, 100]")
		return
	}

	p, err := s.products.UpdatePricing(c.Request.Context(), c.Param("productID"), req.Price, req.Discount)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

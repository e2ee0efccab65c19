package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type cartItemRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

func (s *Server) listCart(c *gin.Context) {
	items, err := s.customers.ListCart(c.Request.Context(), currentPrincipal(c).ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (s *Server) addCartItem(c *gin.Context) {
	var req cartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid json")
		return
	}
	if req.ProductID == "" || req.Quantity <= 0 {
		badRequest(c, "productId and a positive quantity are required")
		return
	}

	if err := s.customers.AddCartItem(c.Request.Context(), currentPrincipal(c).ID, req.ProductID, req.Quantity); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusCreated)
}

type updateCartItemRequest struct {
	Quantity int `json:"quantity"`
}

func (s *Server) updateCartItem(c *gin.Context) {
	var req updateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid json")
		return
	}
	if req.Quantity <= 0 {
		badRequest(c, "a positive quantity is required")
		return
	}

	if err := s.customers.UpdateCartItem(c.Request.Context(), currentPrincipal(c).ID, c.Param("productID"), req.Quantity); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) removeCartItem(c *gin.Context) {
	if err := s.customers.RemoveCartItem(c.Request.Context(), currentPrincipal(c).ID, c.Param("productID")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) clearCart(c *gin.Context) {
	if err := s.customers.ClearCart(c.Request.Context(), currentPrincipal(c).ID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) listAddresses(c *gin.Context) {
	addrs, err := s.customers.ListAddresses(c.Request.Context(), currentPrincipal(c).ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, addrs)
}

func (s *Server) listOrderHistory(c *gin.Context) {
	history, err := s.customers.ListHistory(c.Request.Context(), currentPrincipal(c).ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, history)
}

func (s *Server) listAvailableCoupons(c *gin.Context) {
	coupons, err := s.coupons.ListAvailable(c.Request.Context(), currentPrincipal(c).ID, time.Now())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, coupons)
}

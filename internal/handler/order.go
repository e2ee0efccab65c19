package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/meatkart/meatkart/internal/domain/order"
)

type checkoutRequest struct {
	Latitude     *float64 `json:"latitude"`
	Longitude    *float64 `json:"longitude"`
	Pincode      string   `json:"pincode"`
	Location     string   `json:"location"`
	Notes        string   `json:"notes"`
	IsUrgent     bool     `json:"isUrgent"`
	WalletPoints int      `json:"walletPoints"`
	CouponID     string   `json:"couponId"`
}

type orderResponse struct {
	ID                string           `json:"id"`
	CustomerID        string           `json:"customerId"`
	StoreID           string           `json:"storeId"`
	DeliveryPartnerID *string          `json:"deliveryPartnerId,omitempty"`
	Items             []order.LineItem `json:"items"`
	Amount            decimal.Decimal  `json:"amount"`
	Location          string           `json:"location,omitempty"`
	Pincode           string           `json:"pincode,omitempty"`
	Notes             string           `json:"notes,omitempty"`
	IsUrgent          bool             `json:"isUrgent"`
	Status            string           `json:"status"`
	EstimatedDelivery *time.Time       `json:"estimatedDelivery,omitempty"`
	ActualDelivery    *time.Time       `json:"actualDelivery,omitempty"`
	CreatedAt         time.Time        `json:"createdAt"`
}

func toOrderResponse(o *order.Order) orderResponse {
	return orderResponse{
		ID:                o.ID,
		CustomerID:        o.CustomerID,
		StoreID:           o.StoreID,
		DeliveryPartnerID: o.DeliveryPartnerID,
		Items:             o.Items,
		Amount:            o.Amount,
		Location:          o.Location,
		Pincode:           o.Pincode,
		Notes:             o.Notes,
		IsUrgent:          o.IsUrgent,
		Status:            string(o.Status),
		EstimatedDelivery: o.EstimatedDelivery,
		ActualDelivery:    o.ActualDelivery,
		CreatedAt:         o.CreatedAt,
	}
}

func (s *Server) checkout(c *gin.Context) {
	var req checkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid json")
		return
	}

	o, err := s.orders.Checkout(c.Request.Context(), order.CheckoutRequest{
		CustomerID:   currentPrincipal(c).ID,
		Latitude:     req.Latitude,
		Longitude:    req.Longitude,
		Pincode:      req.Pincode,
		Location:     req.Location,
		Notes:        req.Notes,
		IsUrgent:     req.IsUrgent,
		WalletPoints: req.WalletPoints,
		CouponID:     req.CouponID,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toOrderResponse(o))
}

func (s *Server) getOrder(c *gin.Context) {
	o, err := s.orders.Get(c.Request.Context(), c.Param("orderID"), currentPrincipal(c).ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(o))
}

func (s *Server) listOrders(c *gin.Context) {
	list, err := s.orders.ListForCustomer(c.Request.Context(), currentPrincipal(c).ID)
	if err != nil {
		respondError(c, err)
		return
	}
	out := make([]orderResponse, len(list))
	for i := range list {
		out[i] = toOrderResponse(&list[i])
	}
	c.JSON(http.StatusOK, out)
}

type cancelOrderRequest struct {
	Note string `json:"note"`
}

func (s *Server) cancelOrder(c *gin.Context) {
	var req cancelOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid json")
		return
	}

	o, err := s.orders.Cancel(c.Request.Context(), currentPrincipal(c).ID, c.Param("orderID"), req.Note)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(o))
}

type advanceStatusRequest struct {
	Status string `json:"status"`
}

func (s *Server) advanceOrderStatus(c *gin.Context) {
	var req advanceStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid json")
		return
	}
	to := order.Status(req.Status)
	if !to.Valid() {
		badRequest(c, "unknown status")
		return
	}

	o, err := s.orders.AdvanceStatus(c.Request.Context(), currentPrincipal(c).ID, c.Param("orderID"), to)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(o))
}

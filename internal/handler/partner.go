package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/meatkart/meatkart/internal/domain/partner"
)

func (s *Server) getOwnPartnerProfile(c *gin.Context) {
	p, err := s.partners.GetByID(c.Request.Context(), currentPrincipal(c).ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, partnerProfile(p))
}

func (s *Server) getPartner(c *gin.Context) {
	p, err := s.partners.GetByID(c.Request.Context(), c.Param("partnerID"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, partnerProfile(p))
}

// partnerProfile augments the stored record with the derived aggregate
// document status.
func partnerProfile(p *partner.DeliveryPartner) gin.H {
	return gin.H{
		"partner":        p,
		"documentStatus": p.OverallDocumentStatus(),
	}
}

type setDocumentStatusRequest struct {
	Status string `json:"status"`
}

func (s *Server) setPartnerDocumentStatus(c *gin.Context) {
	var req setDocumentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid json")
		return
	}
	status := partner.DocumentStatus(req.Status)
	switch status {
	case partner.DocPending, partner.DocVerified, partner.DocRejected:
	default:
		badRequest(c, "unknown document status")
		return
	}

	if err := s.partners.SetDocumentStatus(c.Request.Context(), c.Param("partnerID"), c.Param("docType"), status); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) scanOrder(c *gin.Context) {
	o, err := s.orders.Scan(c.Request.Context(), currentPrincipal(c).ID, c.Param("orderID"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(o))
}

type respondToOrderRequest struct {
	Action string `json:"action"`
}

// respondToOrder accepts or rejects a scanned order. Accepting is a claim:
// under concurrent accepts one partner wins and the rest get a conflict.
func (s *Server) respondToOrder(c *gin.Context) {
	var req respondToOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid json")
		return
	}

	p := currentPrincipal(c)
	var handle func(*gin.Context, string, string)
	switch req.Action {
	case "accept":
		handle = s.acceptOrder
	case "reject":
		handle = s.rejectOrder
	default:
		badRequest(c, "action must be accept or reject")
		return
	}
	handle(c, p.ID, c.Param("orderID"))
}

func (s *Server) acceptOrder(c *gin.Context, partnerID, orderID string) {
	o, err := s.orders.Accept(c.Request.Context(), partnerID, orderID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(o))
}

func (s *Server) rejectOrder(c *gin.Context, partnerID, orderID string) {
	o, err := s.orders.Reject(c.Request.Context(), partnerID, orderID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(o))
}

func (s *Server) startDelivery(c *gin.Context) {
	o, err := s.orders.StartDelivery(c.Request.Context(), currentPrincipal(c).ID, c.Param("orderID"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(o))
}

func (s *Server) completeDelivery(c *gin.Context) {
	o, err := s.orders.CompleteDelivery(c.Request.Context(), currentPrincipal(c).ID, c.Param("orderID"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(o))
}

type abortDeliveryRequest struct {
	Reason string `json:"reason"`
}

func (s *Server) abortDelivery(c *gin.Context) {
	var req abortDeliveryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid json")
		return
	}

	o, err := s.orders.AbortDelivery(c.Request.Context(), currentPrincipal(c).ID, c.Param("orderID"), req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(o))
}

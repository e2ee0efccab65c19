package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/meatkart/meatkart/internal/domain/store"
)

func (s *Server) getStore(c *gin.Context) {
	st, err := s.stores.GetByID(c.Request.Context(), c.Param("storeID"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

type updateStoreRequest struct {
	Name       *string           `json:"name"`
	Address    *string           `json:"address"`
	Phone      *string           `json:"phone"`
	Latitude   *float64          `json:"latitude"`
	Longitude  *float64          `json:"longitude"`
	Pincode    *int              `json:"pincode"`
	Categories *store.Categories `json:"categories"`
	IsActive   *bool             `json:"isActive"`
}

// updateStore patches a store through the field allow-list. Unknown request
// fields are dropped rather than merged into the record.
func (s *Server) updateStore(c *gin.Context) {
	var req updateStoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid json")
		return
	}

	st, err := s.stores.Update(c.Request.Context(), c.Param("storeID"), store.UpdateParams{
		Name:       req.Name,
		Address:    req.Address,
		Phone:      req.Phone,
		Latitude:   req.Latitude,
		Longitude:  req.Longitude,
		Pincode:    req.Pincode,
		Categories: req.Categories,
		IsActive:   req.IsActive,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

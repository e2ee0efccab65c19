package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/meatkart/meatkart/internal/domain/catalog"
	"github.com/meatkart/meatkart/internal/domain/coupon"
	"github.com/meatkart/meatkart/internal/domain/customer"
	"github.com/meatkart/meatkart/internal/domain/order"
	"github.com/meatkart/meatkart/internal/domain/partner"
	"github.com/meatkart/meatkart/internal/domain/store"
)

// errorResponse is the JSON error envelope. The shape matches what the rate
// limiting middleware emits so clients parse one format everywhere.
type errorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// respondError maps a domain error onto an HTTP status. Unrecognized errors
// become opaque 500s; the cause is logged, never sent to the client.
func respondError(c *gin.Context, err error) {
	status := statusFor(err)

	msg := err.Error()
	if status == http.StatusInternalServerError {
		zctx.From(c.Request.Context()).Error("Internal error", zap.Error(err))
		msg = "internal server error"
	}

	c.AbortWithStatusJSON(status, errorResponse{Code: status, Message: msg})
}

func statusFor(err error) int {
	var badPincode *store.InvalidPincodeError

	switch {
	case errors.As(err, &badPincode),
		errors.Is(err, order.ErrMissingCoordinates),
		errors.Is(err, order.ErrNoteRequired),
		errors.Is(err, order.ErrReasonRequired),
		errors.Is(err, order.ErrInvalidTransition):
		return http.StatusBadRequest

	case errors.Is(err, order.ErrNotFound),
		errors.Is(err, customer.ErrNotFound),
		errors.Is(err, customer.ErrNotInCart),
		errors.Is(err, store.ErrNotFound),
		errors.Is(err, catalog.ErrNotFound),
		errors.Is(err, coupon.ErrNotFound),
		errors.Is(err, partner.ErrNotFound):
		return http.StatusNotFound

	case errors.Is(err, order.ErrOrderTaken),
		errors.Is(err, customer.ErrAlreadyInCart):
		return http.StatusConflict

	case errors.Is(err, order.ErrEmptyCart),
		errors.Is(err, order.ErrInsufficientWallet),
		errors.Is(err, order.ErrMinimumOrderNotMet),
		errors.Is(err, store.ErrNoStoreAvailable),
		errors.Is(err, store.ErrNoManagerAssigned):
		return http.StatusUnprocessableEntity

	default:
		return http.StatusInternalServerError
	}
}

func badRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse{
		Code:    http.StatusBadRequest,
		Message: msg,
	})
}

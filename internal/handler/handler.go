// Package handler exposes the marketplace over HTTP.
//
// Authentication is delegated to the edge: upstream infrastructure
// terminates the session and forwards the verified principal in the
// X-Principal-ID and X-Principal-Role headers. Handlers only enforce which
// role may call which route.
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/meatkart/meatkart/internal/domain/catalog"
	"github.com/meatkart/meatkart/internal/domain/coupon"
	"github.com/meatkart/meatkart/internal/domain/customer"
	"github.com/meatkart/meatkart/internal/domain/order"
	"github.com/meatkart/meatkart/internal/domain/partner"
	"github.com/meatkart/meatkart/internal/domain/store"
)

// Principal roles accepted by the API.
const (
	RoleCustomer = "customer"
	RoleManager  = "manager"
	RolePartner  = "delivery_partner"
)

const (
	headerPrincipalID   = "X-Principal-ID"
	headerPrincipalRole = "X-Principal-Role"
)

// Server holds the HTTP surface and its domain dependencies.
type Server struct {
	engine    *gin.Engine
	orders    *order.Service
	products  catalog.Repository
	customers customer.Repository
	coupons   coupon.Repository
	partners  partner.Repository
	stores    store.Repository
}

// NewServer builds the gin engine with all routes registered. Recovery and
// request logging are handled by the outer middleware chain, so the engine
// itself stays bare.
func NewServer(
	orders *order.Service,
	products catalog.Repository,
	customers customer.Repository,
	coupons coupon.Repository,
	partners partner.Repository,
	stores store.Repository,
) *Server {
	gin.SetMode(gin.ReleaseMode)
	s := &Server{
		engine:    gin.New(),
		orders:    orders,
		products:  products,
		customers: customers,
		coupons:   coupons,
		partners:  partners,
		stores:    stores,
	}
	s.registerRoutes()
	return s
}

// Engine returns the underlying gin engine as an http.Handler.
func (s *Server) Engine() *gin.Engine { return s.engine }

// FindRoute resolves a request to its registered route template, e.g.
// "/api/order/:orderID". Used by instrumentation to bound cardinality.
func (s *Server) FindRoute(method, path string) (string, bool) {
	for _, ri := range s.engine.Routes() {
		if ri.Method != method {
			continue
		}
		if matchRoute(ri.Path, path) {
			return ri.Path, true
		}
	}
	return "", false
}

func (s *Server) registerRoutes() {
	api := s.engine.Group("/api")

	// Catalog is readable by any authenticated principal.
	api.GET("/product", s.withPrincipal(), s.listProducts)
	api.GET("/product/:productID", s.withPrincipal(), s.getProduct)
	api.GET("/product/:productID/stock", s.withPrincipal(), s.getProductStock)

	cust := api.Group("", s.withPrincipal(), s.requireRole(RoleCustomer))
	{
		cust.GET("/cart", s.listCart)
		cust.POST("/cart", s.addCartItem)
		cust.PUT("/cart/:productID", s.updateCartItem)
		cust.DELETE("/cart/:productID", s.removeCartItem)
		cust.DELETE("/cart", s.clearCart)

		cust.GET("/customer/addresses", s.listAddresses)
		cust.GET("/customer/coupons", s.listAvailableCoupons)
		cust.GET("/customer/history", s.listOrderHistory)

		cust.POST("/order", s.checkout)
		cust.GET("/order", s.listOrders)
		cust.POST("/order/:orderID/cancel", s.cancelOrder)
	}

	// Any participant may fetch a single order; the service decides
	// visibility.
	api.GET("/order/:orderID", s.withPrincipal(), s.getOrder)

	mgr := api.Group("", s.withPrincipal(), s.requireRole(RoleManager))
	{
		mgr.POST("/order/:orderID/status", s.advanceOrderStatus)
		mgr.GET("/store/:storeID", s.getStore)
		mgr.PATCH("/store/:storeID", s.updateStore)
		mgr.PATCH("/product/:productID/pricing", s.updateProductPricing)
		mgr.GET("/partners/:partnerID", s.getPartner)
		mgr.PATCH("/partners/:partnerID/document/:docType", s.setPartnerDocumentStatus)
	}

	dp := api.Group("/partner", s.withPrincipal(), s.requireRole(RolePartner))
	{
		dp.GET("/me", s.getOwnPartnerProfile)
		dp.GET("/order/:orderID", s.scanOrder)
		dp.POST("/order/:orderID/respond", s.respondToOrder)
		dp.POST("/order/:orderID/deliver", s.startDelivery)
		dp.POST("/order/:orderID/complete", s.completeDelivery)
		dp.POST("/order/:orderID/abort", s.abortDelivery)
	}
}

const principalKey = "principal"

type principal struct {
	ID   string
	Role string
}

// withPrincipal requires the forwarded identity headers on every API route.
func (s *Server) withPrincipal() gin.HandlerFunc {
	return func(c *gin.Context) {
		p := principal{
			ID:   c.GetHeader(headerPrincipalID),
			Role: c.GetHeader(headerPrincipalRole),
		}
		if p.ID == "" || p.Role == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse{
				Code:    http.StatusUnauthorized,
				Message: "missing principal",
			})
			return
		}
		c.Set(principalKey, p)
		c.Next()
	}
}

func (s *Server) requireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if currentPrincipal(c).Role != role {
			c.AbortWithStatusJSON(http.StatusForbidden, errorResponse{
				Code:    http.StatusForbidden,
				Message: "forbidden",
			})
			return
		}
		c.Next()
	}
}

func currentPrincipal(c *gin.Context) principal {
	p, _ := c.Get(principalKey)
	pr, _ := p.(principal)
	return pr
}

// matchRoute reports whether a concrete path matches a gin route template.
// Template segments starting with ':' or '*' match any single segment.
func matchRoute(tmpl, path string) bool {
	for {
		ti, pi := nextSegment(tmpl), nextSegment(path)
		if ti == "" && pi == "" {
			return true
		}
		if ti == "" || pi == "" {
			return false
		}
		// Segments carry their leading slash, so the parameter marker is
		// the second byte.
		param := len(ti) > 1 && (ti[1] == ':' || ti[1] == '*')
		if !param && ti != pi {
			return false
		}
		tmpl, path = tmpl[len(ti):], path[len(pi):]
	}
}

func nextSegment(p string) string {
	if p == "" {
		return ""
	}
	if p[0] == '/' {
		p = p[1:]
	}
	for i := 0; i < len(p); i++ {
		if p[i] == '/' {
			return "/" + p[:i]
		}
	}
	return "/" + p
}

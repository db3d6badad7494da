package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	mealdomain "github.com/roomstead/roomstead/internal/mealorder/domain"
)

type createMealOrderRequest struct {
	TenantID   string `json:"tenant_id"`
	TotalCents int64  `json:"total_cents"`
}

func (s *Server) CreateMealOrder(c *gin.Context) {
	var req createMealOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.mealSvc.Create(c.Request.Context(), mealdomain.CreateOrderRequest{
		TenantID:   strings.TrimSpace(req.TenantID),
		TotalCents: req.TotalCents,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) ListMealOrders(c *gin.Context) {
	var query struct {
		TenantID string `form:"tenant_id"`
		Month    string `form:"month"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.mealSvc.List(c.Request.Context(), mealdomain.ListOrderRequest{
		TenantID: strings.TrimSpace(query.TenantID),
		Month:    strings.TrimSpace(query.Month),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) MarkMealOrderDelivered(c *gin.Context) {
	resp, err := s.mealSvc.MarkDelivered(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) CancelMealOrder(c *gin.Context) {
	resp, err := s.mealSvc.Cancel(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

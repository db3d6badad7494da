package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	utilitydomain "github.com/roomstead/roomstead/internal/utilitybill/domain"
)

type createUtilityBillRequest struct {
	PropertyID string `json:"property_id"`
	Month      string `json:"month"`
	Kind       string `json:"kind"`
	Amount     int64  `json:"amount"`
}

func (s *Server) CreateUtilityBill(c *gin.Context) {
	var req createUtilityBillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.utilitySvc.Create(c.Request.Context(), utilitydomain.CreateBillRequest{
		PropertyID: strings.TrimSpace(req.PropertyID),
		Month:      strings.TrimSpace(req.Month),
		Kind:       strings.TrimSpace(req.Kind),
		Amount:     req.Amount,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) ListUtilityBills(c *gin.Context) {
	var query struct {
		PropertyID string `form:"property_id"`
		Month      string `form:"month"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.utilitySvc.List(c.Request.Context(), utilitydomain.ListBillRequest{
		PropertyID: strings.TrimSpace(query.PropertyID),
		Month:      strings.TrimSpace(query.Month),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) MarkUtilityBillPaid(c *gin.Context) {
	resp, err := s.utilitySvc.MarkPaid(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

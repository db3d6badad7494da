package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	rentdomain "github.com/roomstead/roomstead/internal/rent/domain"
)

type generateInvoicesRequest struct {
	Month   string `json:"month"`
	DueDate string `json:"due_date"`
}

type recordPaymentRequest struct {
	InvoiceID     string `json:"invoice_id"`
	AmountPaid    int64  `json:"amount_paid"`
	PaymentMethod string `json:"payment_method"`
}

func (s *Server) GenerateInvoices(c *gin.Context) {
	if !s.generateLimiter.Allow(c.ClientIP()) {
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": gin.H{
			"code":    "rate_limited",
			"message": "too many generation requests",
		}})
		return
	}

	var req generateInvoicesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.rentSvc.GenerateInvoices(c.Request.Context(), rentdomain.GenerateInvoicesRequest{
		Month:   strings.TrimSpace(req.Month),
		DueDate: strings.TrimSpace(req.DueDate),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListInvoices(c *gin.Context) {
	var query struct {
		PropertyID string `form:"property_id"`
		TenantID   string `form:"tenant_id"`
		Month      string `form:"month"`
		Status     string `form:"status"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.rentSvc.ListInvoices(c.Request.Context(), rentdomain.ListInvoicesRequest{
		PropertyID: strings.TrimSpace(query.PropertyID),
		TenantID:   strings.TrimSpace(query.TenantID),
		Month:      strings.TrimSpace(query.Month),
		Status:     strings.TrimSpace(query.Status),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListPayments(c *gin.Context) {
	var query struct {
		PropertyID string `form:"property_id"`
		TenantID   string `form:"tenant_id"`
		Month      string `form:"month"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.rentSvc.ListPayments(c.Request.Context(), rentdomain.ListPaymentsRequest{
		PropertyID: strings.TrimSpace(query.PropertyID),
		TenantID:   strings.TrimSpace(query.TenantID),
		Month:      strings.TrimSpace(query.Month),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) RecordPayment(c *gin.Context) {
	var req recordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.rentSvc.PayInvoice(c.Request.Context(), rentdomain.PayInvoiceRequest{
		InvoiceID:     strings.TrimSpace(req.InvoiceID),
		AmountPaid:    req.AmountPaid,
		PaymentMethod: strings.TrimSpace(req.PaymentMethod),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

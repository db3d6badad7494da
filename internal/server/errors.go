package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	ledgerdomain "github.com/roomstead/roomstead/internal/ledger/domain"
	mealdomain "github.com/roomstead/roomstead/internal/mealorder/domain"
	propertydomain "github.com/roomstead/roomstead/internal/property/domain"
	rentdomain "github.com/roomstead/roomstead/internal/rent/domain"
	roomdomain "github.com/roomstead/roomstead/internal/room/domain"
	sequencedomain "github.com/roomstead/roomstead/internal/sequence/domain"
	tenantdomain "github.com/roomstead/roomstead/internal/tenant/domain"
	utilitydomain "github.com/roomstead/roomstead/internal/utilitybill/domain"
	"go.uber.org/zap"
)

// apiError is the wire shape of every error response.
type apiError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

func (e *apiError) Error() string { return e.Code }

// ErrNotFound hides endpoints that should not exist for the caller.
var ErrNotFound = &apiError{Status: http.StatusNotFound, Code: "not_found", Message: "resource not found"}

func invalidRequestError() *apiError {
	return &apiError{Status: http.StatusBadRequest, Code: "invalid_request", Message: "invalid request body"}
}

func newValidationError(field, code, message string) *apiError {
	return &apiError{Status: http.StatusBadRequest, Code: code, Message: message, Field: field}
}

var notFoundErrors = []error{
	propertydomain.ErrPropertyNotFound,
	roomdomain.ErrRoomNotFound,
	roomdomain.ErrOccupantNotFound,
	tenantdomain.ErrTenantNotFound,
	utilitydomain.ErrBillNotFound,
	mealdomain.ErrOrderNotFound,
	rentdomain.ErrInvoiceNotFound,
}

var conflictErrors = []error{
	rentdomain.ErrInvoiceAlreadyPaid,
	utilitydomain.ErrBillAlreadyPaid,
	mealdomain.ErrOrderNotPending,
	roomdomain.ErrTenantAlreadyAssigned,
	roomdomain.ErrRoomFull,
	tenantdomain.ErrDuplicateEmail,
}

var validationErrors = []error{
	propertydomain.ErrInvalidID,
	propertydomain.ErrInvalidName,
	roomdomain.ErrInvalidID,
	roomdomain.ErrInvalidProperty,
	roomdomain.ErrInvalidLabel,
	roomdomain.ErrInvalidBaseRent,
	roomdomain.ErrInvalidCapacity,
	roomdomain.ErrInvalidTenant,
	roomdomain.ErrRoomInactive,
	tenantdomain.ErrInvalidID,
	tenantdomain.ErrInvalidName,
	tenantdomain.ErrInvalidEmail,
	utilitydomain.ErrInvalidID,
	utilitydomain.ErrInvalidProperty,
	utilitydomain.ErrInvalidMonth,
	utilitydomain.ErrInvalidKind,
	utilitydomain.ErrInvalidAmount,
	mealdomain.ErrInvalidID,
	mealdomain.ErrInvalidTenant,
	mealdomain.ErrInvalidAmount,
	mealdomain.ErrInvalidMonth,
	rentdomain.ErrInvalidMonth,
	rentdomain.ErrInvalidDueDate,
	rentdomain.ErrInvalidInvoiceID,
	rentdomain.ErrInvalidProperty,
	rentdomain.ErrInvalidTenant,
	rentdomain.ErrInvalidAmount,
	rentdomain.ErrInvalidMethod,
	rentdomain.ErrAmountMismatch,
	sequencedomain.ErrInvalidKind,
	ledgerdomain.ErrUnbalancedEntry,
}

func matches(err error, candidates []error) bool {
	for _, candidate := range candidates {
		if errors.Is(err, candidate) {
			return true
		}
	}
	return false
}

// AbortWithError maps domain sentinel errors onto HTTP statuses and writes
// the error envelope. Unknown errors become an opaque 500.
func AbortWithError(c *gin.Context, err error) {
	var api *apiError
	if errors.As(err, &api) {
		c.AbortWithStatusJSON(api.Status, gin.H{"error": api})
		return
	}

	switch {
	case matches(err, notFoundErrors):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": gin.H{
			"code":    err.Error(),
			"message": "resource not found",
		}})
	case matches(err, conflictErrors), matches(err, validationErrors):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": gin.H{
			"code":    err.Error(),
			"message": err.Error(),
		}})
	default:
		zap.L().Error("unhandled request error",
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": gin.H{
			"code":    "internal_error",
			"message": "internal server error",
		}})
	}
}

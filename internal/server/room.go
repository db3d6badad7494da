package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	roomdomain "github.com/roomstead/roomstead/internal/room/domain"
)

type createRoomRequest struct {
	PropertyID string `json:"property_id"`
	Label      string `json:"label"`
	BaseRent   int64  `json:"base_rent"`
	Capacity   int    `json:"capacity"`
}

type updateRoomRequest struct {
	Label    *string `json:"label"`
	BaseRent *int64  `json:"base_rent"`
	Capacity *int    `json:"capacity"`
	IsActive *bool   `json:"is_active"`
}

type assignOccupantRequest struct {
	TenantID string `json:"tenant_id"`
}

type transferOccupantRequest struct {
	ToRoomID string `json:"to_room_id"`
}

func (s *Server) CreateRoom(c *gin.Context) {
	var req createRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.roomSvc.Create(c.Request.Context(), roomdomain.CreateRoomRequest{
		PropertyID: strings.TrimSpace(req.PropertyID),
		Label:      strings.TrimSpace(req.Label),
		BaseRent:   req.BaseRent,
		Capacity:   req.Capacity,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) UpdateRoom(c *gin.Context) {
	var req updateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.roomSvc.Update(c.Request.Context(), roomdomain.UpdateRoomRequest{
		ID:       strings.TrimSpace(c.Param("id")),
		Label:    req.Label,
		BaseRent: req.BaseRent,
		Capacity: req.Capacity,
		IsActive: req.IsActive,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetRoomByID(c *gin.Context) {
	resp, err := s.roomSvc.GetByID(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListRooms(c *gin.Context) {
	var query struct {
		PropertyID string `form:"property_id"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.roomSvc.List(c.Request.Context(), strings.TrimSpace(query.PropertyID))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListOccupants(c *gin.Context) {
	resp, err := s.roomSvc.ListOccupants(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) AssignOccupant(c *gin.Context) {
	var req assignOccupantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.roomSvc.Assign(c.Request.Context(), roomdomain.AssignRequest{
		RoomID:   strings.TrimSpace(c.Param("id")),
		TenantID: strings.TrimSpace(req.TenantID),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) MoveOutOccupant(c *gin.Context) {
	err := s.roomSvc.MoveOut(
		c.Request.Context(),
		strings.TrimSpace(c.Param("id")),
		strings.TrimSpace(c.Param("tenantID")),
	)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) TransferOccupant(c *gin.Context) {
	var req transferOccupantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.roomSvc.Transfer(c.Request.Context(), roomdomain.TransferRequest{
		RoomID:   strings.TrimSpace(c.Param("id")),
		TenantID: strings.TrimSpace(c.Param("tenantID")),
		ToRoomID: strings.TrimSpace(req.ToRoomID),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

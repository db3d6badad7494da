package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/roomstead/roomstead/internal/audit/domain"
	"github.com/roomstead/roomstead/internal/events"
	propertydomain "github.com/roomstead/roomstead/internal/property/domain"
	roomdomain "github.com/roomstead/roomstead/internal/room/domain"
	tenantdomain "github.com/roomstead/roomstead/internal/tenant/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const occupantTargetType = "room_occupant"

type ServiceParam struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	GenID       *snowflake.Node
	PropertySvc propertydomain.Service
	TenantSvc   tenantdomain.Service
	Audit       auditdomain.Service
	Outbox      *events.Outbox
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	genID       *snowflake.Node
	propertySvc propertydomain.Service
	tenantSvc   tenantdomain.Service
	audit       auditdomain.Service
	outbox      *events.Outbox
}

func NewService(p ServiceParam) roomdomain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("room.service"),
		genID:       p.GenID,
		propertySvc: p.PropertySvc,
		tenantSvc:   p.TenantSvc,
		audit:       p.Audit,
		outbox:      p.Outbox,
	}
}

func (s *Service) Create(ctx context.Context, req roomdomain.CreateRoomRequest) (roomdomain.Room, error) {
	property, err := s.propertySvc.GetByID(ctx, req.PropertyID)
	if err != nil {
		return roomdomain.Room{}, err
	}

	label := strings.TrimSpace(req.Label)
	if label == "" {
		return roomdomain.Room{}, roomdomain.ErrInvalidLabel
	}
	if req.BaseRent < 0 {
		return roomdomain.Room{}, roomdomain.ErrInvalidBaseRent
	}
	capacity := req.Capacity
	if capacity <= 0 {
		capacity = 1
	}

	now := time.Now().UTC()
	record := roomdomain.Room{
		ID:         s.genID.Generate(),
		PropertyID: property.ID,
		Label:      label,
		BaseRent:   req.BaseRent,
		Capacity:   capacity,
		IsActive:   true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.db.WithContext(ctx).Create(&record).Error; err != nil {
		return roomdomain.Room{}, err
	}
	return record, nil
}

func (s *Service) Update(ctx context.Context, req roomdomain.UpdateRoomRequest) (roomdomain.Room, error) {
	record, err := s.GetByID(ctx, req.ID)
	if err != nil {
		return roomdomain.Room{}, err
	}

	if req.Label != nil {
		label := strings.TrimSpace(*req.Label)
		if label == "" {
			return roomdomain.Room{}, roomdomain.ErrInvalidLabel
		}
		record.Label = label
	}
	if req.BaseRent != nil {
		if *req.BaseRent < 0 {
			return roomdomain.Room{}, roomdomain.ErrInvalidBaseRent
		}
		record.BaseRent = *req.BaseRent
	}
	if req.Capacity != nil {
		if *req.Capacity <= 0 {
			return roomdomain.Room{}, roomdomain.ErrInvalidCapacity
		}
		record.Capacity = *req.Capacity
	}
	if req.IsActive != nil {
		record.IsActive = *req.IsActive
	}
	record.UpdatedAt = time.Now().UTC()

	if err := s.db.WithContext(ctx).Save(&record).Error; err != nil {
		return roomdomain.Room{}, err
	}
	return record, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (roomdomain.Room, error) {
	roomID, err := parseID(id, roomdomain.ErrInvalidID)
	if err != nil {
		return roomdomain.Room{}, err
	}

	var record roomdomain.Room
	result := s.db.WithContext(ctx).Where("id = ?", roomID).Limit(1).Find(&record)
	if result.Error != nil {
		return roomdomain.Room{}, result.Error
	}
	if record.ID == 0 {
		return roomdomain.Room{}, roomdomain.ErrRoomNotFound
	}
	return record, nil
}

func (s *Service) List(ctx context.Context, propertyID string) ([]roomdomain.Room, error) {
	query := s.db.WithContext(ctx).Model(&roomdomain.Room{})
	if strings.TrimSpace(propertyID) != "" {
		id, err := parseID(propertyID, roomdomain.ErrInvalidProperty)
		if err != nil {
			return nil, err
		}
		query = query.Where("property_id = ?", id)
	}

	var records []roomdomain.Room
	if err := query.Order("property_id ASC, label ASC").Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// Assign places a tenant into a room. The unique index on tenant_id makes
// the one-room-per-tenant rule hold even under concurrent assigns: the
// insert conflicts instead of racing a read-then-write check.
func (s *Service) Assign(ctx context.Context, req roomdomain.AssignRequest) (roomdomain.Occupant, error) {
	tenant, err := s.tenantSvc.GetByID(ctx, req.TenantID)
	if err != nil {
		return roomdomain.Occupant{}, err
	}

	var occupant roomdomain.Occupant
	var propertyID snowflake.ID
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		room, err := s.loadRoomTx(ctx, tx, req.RoomID)
		if err != nil {
			return err
		}
		if !room.IsActive {
			return roomdomain.ErrRoomInactive
		}
		propertyID = room.PropertyID

		count, err := s.countOccupantsTx(ctx, tx, room.ID)
		if err != nil {
			return err
		}
		if count >= int64(room.Capacity) {
			return roomdomain.ErrRoomFull
		}

		now := time.Now().UTC()
		occupant = roomdomain.Occupant{
			ID:        s.genID.Generate(),
			RoomID:    room.ID,
			TenantID:  tenant.ID,
			Since:     now,
			CreatedAt: now,
		}
		result := tx.WithContext(ctx).Exec(
			`INSERT INTO room_occupants (id, room_id, tenant_id, since, created_at)
			 VALUES (?, ?, ?, ?, ?)
			 ON CONFLICT (tenant_id) DO NOTHING`,
			occupant.ID,
			occupant.RoomID,
			occupant.TenantID,
			occupant.Since,
			occupant.CreatedAt,
		)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return roomdomain.ErrTenantAlreadyAssigned
		}
		return s.outbox.PublishTx(ctx, tx, events.Event{
			PropertyID: room.PropertyID,
			Type:       events.EventTenantAssigned,
			Payload: map[string]any{
				"occupant_id": occupant.ID.String(),
				"room_id":     occupant.RoomID.String(),
				"tenant_id":   occupant.TenantID.String(),
			},
			DedupeKey: "tenant_assigned:" + occupant.ID.String(),
		})
	})
	if err != nil {
		return roomdomain.Occupant{}, err
	}

	s.audit.Record(ctx, nil, auditdomain.RecordInput{
		PropertyID: &propertyID,
		ActorType:  auditdomain.ActorTypeOwner,
		Action:     "room.occupant_assigned",
		TargetType: occupantTargetType,
		TargetID:   occupant.ID.String(),
		Metadata: map[string]interface{}{
			"room_id":   occupant.RoomID.String(),
			"tenant_id": occupant.TenantID.String(),
		},
	})
	return occupant, nil
}

func (s *Service) MoveOut(ctx context.Context, roomID, tenantID string) error {
	tID, err := parseID(tenantID, roomdomain.ErrInvalidTenant)
	if err != nil {
		return err
	}

	var occupant roomdomain.Occupant
	var propertyID snowflake.ID
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		room, err := s.loadRoomTx(ctx, tx, roomID)
		if err != nil {
			return err
		}
		propertyID = room.PropertyID

		if err := tx.WithContext(ctx).Raw(
			`SELECT id, room_id, tenant_id, since, created_at
			 FROM room_occupants
			 WHERE room_id = ? AND tenant_id = ?`,
			room.ID,
			tID,
		).Scan(&occupant).Error; err != nil {
			return err
		}
		if occupant.ID == 0 {
			return roomdomain.ErrOccupantNotFound
		}

		result := tx.WithContext(ctx).Exec(
			`DELETE FROM room_occupants WHERE id = ?`,
			occupant.ID,
		)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return roomdomain.ErrOccupantNotFound
		}
		return s.outbox.PublishTx(ctx, tx, events.Event{
			PropertyID: room.PropertyID,
			Type:       events.EventTenantMovedOut,
			Payload: map[string]any{
				"occupant_id": occupant.ID.String(),
				"room_id":     occupant.RoomID.String(),
				"tenant_id":   occupant.TenantID.String(),
			},
			DedupeKey: "tenant_moved_out:" + occupant.ID.String(),
		})
	})
	if err != nil {
		return err
	}

	s.audit.Record(ctx, nil, auditdomain.RecordInput{
		PropertyID: &propertyID,
		ActorType:  auditdomain.ActorTypeOwner,
		Action:     "room.occupant_moved_out",
		TargetType: occupantTargetType,
		TargetID:   occupant.ID.String(),
		Metadata: map[string]interface{}{
			"room_id":   occupant.RoomID.String(),
			"tenant_id": occupant.TenantID.String(),
		},
	})
	return nil
}

// Transfer moves a tenant between rooms in one transaction so the occupancy
// mapping never shows the tenant in zero or two rooms.
func (s *Service) Transfer(ctx context.Context, req roomdomain.TransferRequest) (roomdomain.Occupant, error) {
	fromID, err := parseID(req.RoomID, roomdomain.ErrInvalidID)
	if err != nil {
		return roomdomain.Occupant{}, err
	}
	tenantID, err := parseID(req.TenantID, roomdomain.ErrInvalidTenant)
	if err != nil {
		return roomdomain.Occupant{}, err
	}

	var occupant roomdomain.Occupant
	var propertyID snowflake.ID
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		target, err := s.loadRoomTx(ctx, tx, req.ToRoomID)
		if err != nil {
			return err
		}
		if !target.IsActive {
			return roomdomain.ErrRoomInactive
		}
		if target.ID == fromID {
			return roomdomain.ErrInvalidID
		}
		propertyID = target.PropertyID

		count, err := s.countOccupantsTx(ctx, tx, target.ID)
		if err != nil {
			return err
		}
		if count >= int64(target.Capacity) {
			return roomdomain.ErrRoomFull
		}

		now := time.Now().UTC()
		result := tx.WithContext(ctx).Exec(
			`UPDATE room_occupants SET room_id = ?, since = ? WHERE room_id = ? AND tenant_id = ?`,
			target.ID,
			now,
			fromID,
			tenantID,
		)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return roomdomain.ErrOccupantNotFound
		}

		if err := tx.WithContext(ctx).Raw(
			`SELECT id, room_id, tenant_id, since, created_at
			 FROM room_occupants
			 WHERE room_id = ? AND tenant_id = ?`,
			target.ID,
			tenantID,
		).Scan(&occupant).Error; err != nil {
			return err
		}
		return s.outbox.PublishTx(ctx, tx, events.Event{
			PropertyID: target.PropertyID,
			Type:       events.EventTenantTransferred,
			Payload: map[string]any{
				"occupant_id":  occupant.ID.String(),
				"from_room_id": fromID.String(),
				"to_room_id":   target.ID.String(),
				"tenant_id":    occupant.TenantID.String(),
			},
			DedupeKey: "tenant_transferred:" + occupant.ID.String() + ":" + now.Format(time.RFC3339),
		})
	})
	if err != nil {
		return roomdomain.Occupant{}, err
	}

	s.audit.Record(ctx, nil, auditdomain.RecordInput{
		PropertyID: &propertyID,
		ActorType:  auditdomain.ActorTypeOwner,
		Action:     "room.occupant_transferred",
		TargetType: occupantTargetType,
		TargetID:   occupant.ID.String(),
		Metadata: map[string]interface{}{
			"from_room_id": fromID.String(),
			"to_room_id":   occupant.RoomID.String(),
			"tenant_id":    occupant.TenantID.String(),
		},
	})
	return occupant, nil
}

func (s *Service) ListOccupants(ctx context.Context, roomID string) ([]roomdomain.Occupant, error) {
	rID, err := parseID(roomID, roomdomain.ErrInvalidID)
	if err != nil {
		return nil, err
	}

	var records []roomdomain.Occupant
	if err := s.db.WithContext(ctx).
		Where("room_id = ?", rID).
		Order("since ASC").
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (s *Service) loadRoomTx(ctx context.Context, tx *gorm.DB, id string) (roomdomain.Room, error) {
	roomID, err := parseID(id, roomdomain.ErrInvalidID)
	if err != nil {
		return roomdomain.Room{}, err
	}

	var record roomdomain.Room
	result := tx.WithContext(ctx).Where("id = ?", roomID).Limit(1).Find(&record)
	if result.Error != nil {
		return roomdomain.Room{}, result.Error
	}
	if record.ID == 0 {
		return roomdomain.Room{}, roomdomain.ErrRoomNotFound
	}
	return record, nil
}

func (s *Service) countOccupantsTx(ctx context.Context, tx *gorm.DB, roomID snowflake.ID) (int64, error) {
	var count int64
	err := tx.WithContext(ctx).Raw(
		`SELECT COUNT(1) FROM room_occupants WHERE room_id = ?`,
		roomID,
	).Scan(&count).Error
	return count, err
}

func parseID(value string, invalid error) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil {
		return 0, invalid
	}
	return id, nil
}

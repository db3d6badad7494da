// Package seed bootstraps demo data for local development.
package seed

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

const (
	demoPropertyName    = "Kost Melati"
	demoPropertyAddress = "Jl. Melati No. 12"
)

var demoRooms = []struct {
	Label    string
	BaseRent int64
	Capacity int
}{
	{"A1", 10000, 2},
	{"A2", 12000, 1},
	{"B1", 8000, 2},
}

var demoTenants = []struct {
	Name  string
	Email string
}{
	{"Andi Wijaya", "andi@example.com"},
	{"Bella Santoso", "bella@example.com"},
}

// EnsureDemoData seeds one property with rooms and tenants when the database
// holds no properties. Re-running against seeded data is a no-op.
func EnsureDemoData(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Table("properties").Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return nil
		}

		now := time.Now().UTC()
		propertyID := node.Generate()
		if err := tx.Exec(
			`INSERT INTO properties (id, name, address, is_active, created_at, updated_at)
			 VALUES (?, ?, ?, TRUE, ?, ?)`,
			propertyID, demoPropertyName, demoPropertyAddress, now, now,
		).Error; err != nil {
			return err
		}

		for _, room := range demoRooms {
			if err := tx.Exec(
				`INSERT INTO rooms (id, property_id, label, base_rent, capacity, is_active, created_at, updated_at)
				 VALUES (?, ?, ?, ?, ?, TRUE, ?, ?)`,
				node.Generate(), propertyID, room.Label, room.BaseRent, room.Capacity, now, now,
			).Error; err != nil {
				return err
			}
		}

		for _, tenant := range demoTenants {
			if err := tx.Exec(
				`INSERT INTO tenants (id, name, email, created_at, updated_at)
				 VALUES (?, ?, ?, ?, ?)`,
				node.Generate(), tenant.Name, tenant.Email, now, now,
			).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

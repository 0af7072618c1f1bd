package repositories

import (
	"context"
	"testing"
	"time"

	"coldtrack/internal/adapters/persistence/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB opens an in-memory sqlite database with the full schema.
// The pool is pinned to one connection so every query sees the same
// in-memory database.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := models.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	return db
}

// seedVocabulary inserts the fixed roles and delivery statuses
func seedVocabulary(t *testing.T, db *gorm.DB) {
	t.Helper()

	roles := []models.Role{
		{Name: "admin"}, {Name: "driver"}, {Name: "receiver"}, {Name: "dispatcher"},
	}
	if err := db.Create(&roles).Error; err != nil {
		t.Fatalf("seed roles: %v", err)
	}

	statuses := []models.DeliveryStatus{
		{Name: "pending"}, {Name: "in_transit"}, {Name: "delivered"}, {Name: "completed"},
	}
	if err := db.Create(&statuses).Error; err != nil {
		t.Fatalf("seed statuses: %v", err)
	}
}

func mustCreateUser(t *testing.T, db *gorm.DB, username, roleName string) *models.User {
	t.Helper()

	var role models.Role
	if err := db.Where("name = ?", roleName).First(&role).Error; err != nil {
		t.Fatalf("role %s: %v", roleName, err)
	}

	user := &models.User{Username: username, Password: "x", RoleID: role.ID}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	return user
}

func statusID(t *testing.T, db *gorm.DB, name string) uint {
	t.Helper()

	var status models.DeliveryStatus
	if err := db.Where("name = ?", name).First(&status).Error; err != nil {
		t.Fatalf("status %s: %v", name, err)
	}
	return status.ID
}

func mustCreateDelivery(t *testing.T, db *gorm.DB, statusID, driverID, receiverID uint, temp float64) *models.Delivery {
	t.Helper()

	d := &models.Delivery{
		StatusID:           statusID,
		DriverID:           driverID,
		ReceiverID:         receiverID,
		CurrentTemperature: temp,
	}
	if err := db.Create(d).Error; err != nil {
		t.Fatalf("create delivery: %v", err)
	}
	return d
}

func mustCreateReading(t *testing.T, db *gorm.DB, sensorID string, temp float64, at time.Time) *models.SensorReading {
	t.Helper()

	r := &models.SensorReading{SensorID: sensorID, Temperature: temp, Timestamp: at}
	if err := db.Create(r).Error; err != nil {
		t.Fatalf("create reading: %v", err)
	}
	return r
}

func ctx() context.Context {
	return context.Background()
}

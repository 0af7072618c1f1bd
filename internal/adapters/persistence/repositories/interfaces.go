package repositories

import (
	"context"
	"time"

	"coldtrack/internal/adapters/persistence/models"
)

// UserRepository defines user repository interface
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, offset, limit int) ([]*models.User, int64, error)
	ListByRole(ctx context.Context, roleID uint) ([]*models.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
}

// RoleRepository defines role repository interface. Roles are a seeded,
// immutable vocabulary, so there is no update/delete surface.
type RoleRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Role, error)
	GetByName(ctx context.Context, name string) (*models.Role, error)
	List(ctx context.Context) ([]*models.Role, error)
}

// RefreshTokenRepository defines refresh token repository interface
type RefreshTokenRepository interface {
	Create(ctx context.Context, token *models.RefreshToken) error
	GetByTokenHash(ctx context.Context, tokenHash string) (*models.RefreshToken, error)
	Revoke(ctx context.Context, id uint) error
	RevokeAllByUserID(ctx context.Context, userID uint) error
	DeleteExpired(ctx context.Context) error
}

// StatusRepository defines delivery status repository interface. Statuses
// are seeded at startup and never mutated.
type StatusRepository interface {
	GetByID(ctx context.Context, id uint) (*models.DeliveryStatus, error)
	GetByName(ctx context.Context, name string) (*models.DeliveryStatus, error)
	List(ctx context.Context) ([]*models.DeliveryStatus, error)
}

// DeliveryStatusCounts maps status name to delivery count.
type DeliveryStatusCounts map[string]int64

// DeliveryRepository defines delivery repository interface
type DeliveryRepository interface {
	Create(ctx context.Context, delivery *models.Delivery) error
	GetByID(ctx context.Context, id uint) (*models.Delivery, error)
	List(ctx context.Context, offset, limit int) ([]*models.Delivery, int64, error)
	ListByStatus(ctx context.Context, statusID uint, offset, limit int) ([]*models.Delivery, int64, error)
	ListByDriver(ctx context.Context, driverID uint, offset, limit int) ([]*models.Delivery, int64, error)
	ListByReceiverAndStatus(ctx context.Context, receiverID, statusID uint, offset, limit int) ([]*models.Delivery, int64, error)
	Update(ctx context.Context, delivery *models.Delivery) error
	// UpdateStatusIf atomically moves a delivery from one status to another.
	// It reports false when the delivery no longer carries fromStatusID,
	// i.e. a concurrent transition won the race.
	UpdateStatusIf(ctx context.Context, id, fromStatusID, toStatusID uint) (bool, error)
	Delete(ctx context.Context, id uint) error

	CountTotal(ctx context.Context) (int64, error)
	CountByStatus(ctx context.Context) (DeliveryStatusCounts, error)
	AverageTemperature(ctx context.Context) (float64, error)
	CountByStatusSince(ctx context.Context, statusID uint, since time.Time) (int64, error)
}

// SensorReadingFilter narrows a sensor reading query. Zero values mean
// "no constraint".
type SensorReadingFilter struct {
	SensorID       string
	StartDate      *time.Time
	EndDate        *time.Time
	MinTemperature *float64
	MaxTemperature *float64
}

// SensorRepository defines sensor reading repository interface
type SensorRepository interface {
	Create(ctx context.Context, reading *models.SensorReading) error
	CreateBatch(ctx context.Context, readings []*models.SensorReading) error
	GetByID(ctx context.Context, id uint) (*models.SensorReading, error)
	List(ctx context.Context, offset, limit int) ([]*models.SensorReading, int64, error)
	ListBySensor(ctx context.Context, sensorID string, offset, limit int) ([]*models.SensorReading, int64, error)
	ListBySensorSince(ctx context.Context, sensorID string, since time.Time) ([]*models.SensorReading, error)
	ListAboveSince(ctx context.Context, threshold float64, since time.Time) ([]*models.SensorReading, error)
	Filter(ctx context.Context, filter *SensorReadingFilter, offset, limit int) ([]*models.SensorReading, int64, error)
	Latest(ctx context.Context, sensorID string) (*models.SensorReading, error)
	DistinctSensorIDs(ctx context.Context) ([]string, error)
}

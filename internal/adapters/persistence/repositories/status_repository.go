package repositories

import (
	"context"

	"coldtrack/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// statusRepository implements StatusRepository interface
type statusRepository struct {
	db *gorm.DB
}

// NewStatusRepository creates a new delivery status repository
func NewStatusRepository(db *gorm.DB) StatusRepository {
	return &statusRepository{db: db}
}

// GetByID gets a status by ID
func (r *statusRepository) GetByID(ctx context.Context, id uint) (*models.DeliveryStatus, error) {
	var status models.DeliveryStatus
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&status).Error
	if err != nil {
		return nil, err
	}
	return &status, nil
}

// GetByName gets a status by name
func (r *statusRepository) GetByName(ctx context.Context, name string) (*models.DeliveryStatus, error) {
	var status models.DeliveryStatus
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&status).Error
	if err != nil {
		return nil, err
	}
	return &status, nil
}

// List lists all statuses in seed (lifecycle) order
func (r *statusRepository) List(ctx context.Context) ([]*models.DeliveryStatus, error) {
	var statuses []*models.DeliveryStatus
	err := r.db.WithContext(ctx).Order("id").Find(&statuses).Error
	if err != nil {
		return nil, err
	}
	return statuses, nil
}

package repositories

import (
	"context"
	"time"

	"coldtrack/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// deliveryRepository implements DeliveryRepository interface
type deliveryRepository struct {
	db *gorm.DB
}

// NewDeliveryRepository creates a new delivery repository
func NewDeliveryRepository(db *gorm.DB) DeliveryRepository {
	return &deliveryRepository{db: db}
}

// Create creates a new delivery
func (r *deliveryRepository) Create(ctx context.Context, delivery *models.Delivery) error {
	return r.db.WithContext(ctx).Create(delivery).Error
}

// GetByID gets a delivery by ID with status, driver and receiver resolved
func (r *deliveryRepository) GetByID(ctx context.Context, id uint) (*models.Delivery, error) {
	var delivery models.Delivery
	err := r.db.WithContext(ctx).
		Preload("Status").Preload("Driver").Preload("Receiver").
		Where("id = ?", id).
		First(&delivery).Error
	if err != nil {
		return nil, err
	}
	return &delivery, nil
}

// List lists deliveries newest first with pagination
func (r *deliveryRepository) List(ctx context.Context, offset, limit int) ([]*models.Delivery, int64, error) {
	return r.list(ctx, offset, limit, "")
}

// ListByStatus lists deliveries carrying a status
func (r *deliveryRepository) ListByStatus(ctx context.Context, statusID uint, offset, limit int) ([]*models.Delivery, int64, error) {
	return r.list(ctx, offset, limit, "status_id = ?", statusID)
}

// ListByDriver lists deliveries assigned to a driver
func (r *deliveryRepository) ListByDriver(ctx context.Context, driverID uint, offset, limit int) ([]*models.Delivery, int64, error) {
	return r.list(ctx, offset, limit, "driver_id = ?", driverID)
}

// ListByReceiverAndStatus lists deliveries addressed to a receiver that
// carry the given status
func (r *deliveryRepository) ListByReceiverAndStatus(ctx context.Context, receiverID, statusID uint, offset, limit int) ([]*models.Delivery, int64, error) {
	return r.list(ctx, offset, limit, "receiver_id = ? AND status_id = ?", receiverID, statusID)
}

func (r *deliveryRepository) list(ctx context.Context, offset, limit int, cond string, args ...interface{}) ([]*models.Delivery, int64, error) {
	countQuery := r.db.WithContext(ctx).Model(&models.Delivery{})
	findQuery := r.db.WithContext(ctx).
		Preload("Status").Preload("Driver").Preload("Receiver").
		Order("created_at DESC").
		Offset(offset).Limit(limit)

	if cond != "" {
		countQuery = countQuery.Where(cond, args...)
		findQuery = findQuery.Where(cond, args...)
	}

	var total int64
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var deliveries []*models.Delivery
	if err := findQuery.Find(&deliveries).Error; err != nil {
		return nil, 0, err
	}

	return deliveries, total, nil
}

// Update saves a full delivery row (admin update path)
func (r *deliveryRepository) Update(ctx context.Context, delivery *models.Delivery) error {
	return r.db.WithContext(ctx).Save(delivery).Error
}

// UpdateStatusIf performs a compare-and-swap on the status column. The WHERE
// clause on the observed status serializes concurrent transition attempts:
// only one writer sees a row to update.
func (r *deliveryRepository) UpdateStatusIf(ctx context.Context, id, fromStatusID, toStatusID uint) (bool, error) {
	result := r.db.WithContext(ctx).Model(&models.Delivery{}).
		Where("id = ? AND status_id = ?", id, fromStatusID).
		Update("status_id", toStatusID)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// Delete deletes a delivery
func (r *deliveryRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Delivery{}, id).Error
}

// CountTotal counts all deliveries
func (r *deliveryRepository) CountTotal(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&models.Delivery{}).Count(&total).Error
	return total, err
}

// CountByStatus counts deliveries grouped by status name
func (r *deliveryRepository) CountByStatus(ctx context.Context) (DeliveryStatusCounts, error) {
	type row struct {
		Name  string
		Count int64
	}
	var rows []row

	err := r.db.WithContext(ctx).Model(&models.Delivery{}).
		Select("delivery_statuses.name AS name, COUNT(deliveries.id) AS count").
		Joins("JOIN delivery_statuses ON deliveries.status_id = delivery_statuses.id").
		Group("delivery_statuses.name").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(DeliveryStatusCounts, len(rows))
	for _, row := range rows {
		counts[row.Name] = row.Count
	}
	return counts, nil
}

// AverageTemperature averages current_temperature across all deliveries,
// 0 when there are none
func (r *deliveryRepository) AverageTemperature(ctx context.Context) (float64, error) {
	var avg float64
	err := r.db.WithContext(ctx).Model(&models.Delivery{}).
		Select("COALESCE(AVG(current_temperature), 0)").
		Scan(&avg).Error
	return avg, err
}

// CountByStatusSince counts deliveries carrying a status created at or
// after the given instant
func (r *deliveryRepository) CountByStatusSince(ctx context.Context, statusID uint, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Delivery{}).
		Where("status_id = ? AND created_at >= ?", statusID, since).
		Count(&count).Error
	return count, err
}

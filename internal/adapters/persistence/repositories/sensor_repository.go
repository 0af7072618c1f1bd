package repositories

import (
	"context"
	"time"

	"coldtrack/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// sensorRepository implements SensorRepository interface
type sensorRepository struct {
	db *gorm.DB
}

// NewSensorRepository creates a new sensor reading repository
func NewSensorRepository(db *gorm.DB) SensorRepository {
	return &sensorRepository{db: db}
}

// Create stores a single reading
func (r *sensorRepository) Create(ctx context.Context, reading *models.SensorReading) error {
	return r.db.WithContext(ctx).Create(reading).Error
}

// CreateBatch stores a batch of readings in one insert
func (r *sensorRepository) CreateBatch(ctx context.Context, readings []*models.SensorReading) error {
	if len(readings) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&readings).Error
}

// GetByID gets a reading by ID
func (r *sensorRepository) GetByID(ctx context.Context, id uint) (*models.SensorReading, error) {
	var reading models.SensorReading
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&reading).Error
	if err != nil {
		return nil, err
	}
	return &reading, nil
}

// List lists readings newest first with pagination
func (r *sensorRepository) List(ctx context.Context, offset, limit int) ([]*models.SensorReading, int64, error) {
	return r.list(ctx, offset, limit, "")
}

// ListBySensor lists readings of one sensor newest first
func (r *sensorRepository) ListBySensor(ctx context.Context, sensorID string, offset, limit int) ([]*models.SensorReading, int64, error) {
	return r.list(ctx, offset, limit, "sensor_id = ?", sensorID)
}

func (r *sensorRepository) list(ctx context.Context, offset, limit int, cond string, args ...interface{}) ([]*models.SensorReading, int64, error) {
	countQuery := r.db.WithContext(ctx).Model(&models.SensorReading{})
	findQuery := r.db.WithContext(ctx).
		Order("timestamp DESC").
		Offset(offset).Limit(limit)

	if cond != "" {
		countQuery = countQuery.Where(cond, args...)
		findQuery = findQuery.Where(cond, args...)
	}

	var total int64
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var readings []*models.SensorReading
	if err := findQuery.Find(&readings).Error; err != nil {
		return nil, 0, err
	}

	return readings, total, nil
}

// ListBySensorSince lists one sensor's readings within a trailing window,
// newest first
func (r *sensorRepository) ListBySensorSince(ctx context.Context, sensorID string, since time.Time) ([]*models.SensorReading, error) {
	var readings []*models.SensorReading
	err := r.db.WithContext(ctx).
		Where("sensor_id = ? AND timestamp >= ?", sensorID, since).
		Order("timestamp DESC").
		Find(&readings).Error
	if err != nil {
		return nil, err
	}
	return readings, nil
}

// ListAboveSince lists readings above a temperature threshold within a
// trailing window, newest first. Feeds the lookback alert report.
func (r *sensorRepository) ListAboveSince(ctx context.Context, threshold float64, since time.Time) ([]*models.SensorReading, error) {
	var readings []*models.SensorReading
	err := r.db.WithContext(ctx).
		Where("temperature > ? AND timestamp >= ?", threshold, since).
		Order("timestamp DESC").
		Find(&readings).Error
	if err != nil {
		return nil, err
	}
	return readings, nil
}

// Filter lists readings matching the filter, newest first with pagination
func (r *sensorRepository) Filter(ctx context.Context, filter *SensorReadingFilter, offset, limit int) ([]*models.SensorReading, int64, error) {
	apply := func(q *gorm.DB) *gorm.DB {
		if filter.SensorID != "" {
			q = q.Where("sensor_id = ?", filter.SensorID)
		}
		if filter.StartDate != nil {
			q = q.Where("timestamp >= ?", *filter.StartDate)
		}
		if filter.EndDate != nil {
			q = q.Where("timestamp <= ?", *filter.EndDate)
		}
		if filter.MinTemperature != nil {
			q = q.Where("temperature >= ?", *filter.MinTemperature)
		}
		if filter.MaxTemperature != nil {
			q = q.Where("temperature <= ?", *filter.MaxTemperature)
		}
		return q
	}

	var total int64
	if err := apply(r.db.WithContext(ctx).Model(&models.SensorReading{})).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var readings []*models.SensorReading
	err := apply(r.db.WithContext(ctx)).
		Order("timestamp DESC").
		Offset(offset).Limit(limit).
		Find(&readings).Error
	if err != nil {
		return nil, 0, err
	}

	return readings, total, nil
}

// Latest returns the most recent reading of a sensor
func (r *sensorRepository) Latest(ctx context.Context, sensorID string) (*models.SensorReading, error) {
	var reading models.SensorReading
	err := r.db.WithContext(ctx).
		Where("sensor_id = ?", sensorID).
		Order("timestamp DESC").
		First(&reading).Error
	if err != nil {
		return nil, err
	}
	return &reading, nil
}

// DistinctSensorIDs returns every sensor that has reported at least once
func (r *sensorRepository) DistinctSensorIDs(ctx context.Context) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Model(&models.SensorReading{}).
		Distinct("sensor_id").
		Order("sensor_id").
		Pluck("sensor_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

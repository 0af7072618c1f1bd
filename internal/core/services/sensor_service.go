package services

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"coldtrack/internal/adapters/persistence/models"
	"coldtrack/internal/adapters/persistence/repositories"
	"coldtrack/internal/core/domain"
	"coldtrack/internal/pkg/metrics"

	"gorm.io/gorm"
)

// MaxBatchSize caps the number of readings accepted in one batch request
const MaxBatchSize = 1000

// SensorService handles sensor telemetry business logic
type SensorService struct {
	sensorRepo repositories.SensorRepository
	hub        Broadcaster
}

// NewSensorService creates a new sensor service
func NewSensorService(sensorRepo repositories.SensorRepository, hub Broadcaster) *SensorService {
	return &SensorService{
		sensorRepo: sensorRepo,
		hub:        hub,
	}
}

// ReadingInput represents a single sensor reading submission
type ReadingInput struct {
	SensorID    string     `json:"sensor_id"`
	Temperature float64    `json:"temperature"`
	Timestamp   *time.Time `json:"timestamp"`
}

// IngestResult is returned for a single ingested reading
type IngestResult struct {
	Reading *models.SensorReading    `json:"reading"`
	Alert   *domain.TemperatureAlert `json:"alert,omitempty"`
}

// BatchResult summarizes a batch ingest
type BatchResult struct {
	Ingested int                        `json:"ingested"`
	Alerts   []*domain.TemperatureAlert `json:"alerts"`
}

// SensorStats represents per-sensor aggregate statistics over a window
type SensorStats struct {
	SensorID      string    `json:"sensor_id"`
	PeriodHours   int       `json:"period_hours"`
	AverageTemp   float64   `json:"average_temperature"`
	MinTemp       float64   `json:"min_temperature"`
	MaxTemp       float64   `json:"max_temperature"`
	ReadingsCount int       `json:"readings_count"`
	LastReadingAt time.Time `json:"last_reading_at"`
}

// AlertReport lists alert-level readings within a trailing window
type AlertReport struct {
	PeriodHours int                        `json:"period_hours"`
	Count       int                        `json:"count"`
	Alerts      []*domain.TemperatureAlert `json:"alerts"`
}

// Ingest stores a reading, evaluates it against the temperature
// thresholds and pushes the result to live subscribers
func (s *SensorService) Ingest(ctx context.Context, input *ReadingInput) (*IngestResult, error) {
	reading, err := s.buildReading(input)
	if err != nil {
		return nil, err
	}

	if err := s.sensorRepo.Create(ctx, reading); err != nil {
		return nil, err
	}
	metrics.SensorReadingsTotal.Inc()

	alert := domain.EvaluateTemperature(reading.Temperature, reading.SensorID)
	if alert != nil {
		metrics.TemperatureAlertsTotal.WithLabelValues(string(alert.AlertLevel)).Inc()
		log.Printf("🌡️ Temperature alert [%s]: sensor %s at %.1f°C",
			alert.AlertLevel, alert.SensorID, alert.Temperature)
	}

	s.broadcastReading(reading, alert)

	return &IngestResult{Reading: reading, Alert: alert}, nil
}

// IngestBatch stores up to MaxBatchSize readings in one write and
// broadcasts each of them
func (s *SensorService) IngestBatch(ctx context.Context, inputs []*ReadingInput) (*BatchResult, error) {
	if len(inputs) == 0 {
		return nil, domain.ErrInvalidInput
	}
	if len(inputs) > MaxBatchSize {
		return nil, domain.ErrInvalidInput
	}

	readings := make([]*models.SensorReading, 0, len(inputs))
	for _, input := range inputs {
		reading, err := s.buildReading(input)
		if err != nil {
			return nil, err
		}
		readings = append(readings, reading)
	}

	if err := s.sensorRepo.CreateBatch(ctx, readings); err != nil {
		return nil, err
	}

	result := &BatchResult{Ingested: len(readings), Alerts: []*domain.TemperatureAlert{}}
	for _, reading := range readings {
		metrics.SensorReadingsTotal.Inc()
		alert := domain.EvaluateTemperature(reading.Temperature, reading.SensorID)
		if alert != nil {
			metrics.TemperatureAlertsTotal.WithLabelValues(string(alert.AlertLevel)).Inc()
			result.Alerts = append(result.Alerts, alert)
		}
		s.broadcastReading(reading, alert)
	}

	log.Printf("✅ Ingested batch of %d readings (%d alerts)", result.Ingested, len(result.Alerts))
	return result, nil
}

// GetByID gets a single reading
func (s *SensorService) GetByID(ctx context.Context, id uint) (*models.SensorReading, error) {
	reading, err := s.sensorRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrSensorDataNotFound
		}
		return nil, err
	}
	return reading, nil
}

// List lists readings with pagination, newest first
func (s *SensorService) List(ctx context.Context, offset, limit int) ([]*models.SensorReading, int64, error) {
	return s.sensorRepo.List(ctx, offset, limit)
}

// ListBySensor lists readings for one sensor with pagination
func (s *SensorService) ListBySensor(ctx context.Context, sensorID string, offset, limit int) ([]*models.SensorReading, int64, error) {
	if strings.TrimSpace(sensorID) == "" {
		return nil, 0, domain.ErrInvalidInput
	}
	return s.sensorRepo.ListBySensor(ctx, sensorID, offset, limit)
}

// Filter lists readings matching the given filter with pagination
func (s *SensorService) Filter(ctx context.Context, filter *repositories.SensorReadingFilter, offset, limit int) ([]*models.SensorReading, int64, error) {
	if filter.StartDate != nil && filter.EndDate != nil && filter.EndDate.Before(*filter.StartDate) {
		return nil, 0, domain.ErrInvalidInput
	}
	if filter.MinTemperature != nil && filter.MaxTemperature != nil && *filter.MaxTemperature < *filter.MinTemperature {
		return nil, 0, domain.ErrInvalidInput
	}
	return s.sensorRepo.Filter(ctx, filter, offset, limit)
}

// Latest returns the most recent reading for a sensor
func (s *SensorService) Latest(ctx context.Context, sensorID string) (*models.SensorReading, error) {
	if strings.TrimSpace(sensorID) == "" {
		return nil, domain.ErrInvalidInput
	}

	reading, err := s.sensorRepo.Latest(ctx, sensorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrSensorDataNotFound
		}
		return nil, err
	}
	return reading, nil
}

// Stats computes per-sensor statistics over a trailing window. The window
// is clamped to [1, 168] hours and defaults to 24.
func (s *SensorService) Stats(ctx context.Context, sensorID string, hours int) (*SensorStats, error) {
	if strings.TrimSpace(sensorID) == "" {
		return nil, domain.ErrInvalidInput
	}

	hours = domain.ClampStatsPeriod(hours)
	since := time.Now().UTC().Add(-time.Duration(hours) * time.Hour)

	readings, err := s.sensorRepo.ListBySensorSince(ctx, sensorID, since)
	if err != nil {
		return nil, err
	}
	if len(readings) == 0 {
		return nil, domain.ErrSensorDataNotFound
	}

	stats := &SensorStats{
		SensorID:    sensorID,
		PeriodHours: hours,
		MinTemp:     readings[0].Temperature,
		MaxTemp:     readings[0].Temperature,
	}

	var sum float64
	for _, r := range readings {
		sum += r.Temperature
		if r.Temperature < stats.MinTemp {
			stats.MinTemp = r.Temperature
		}
		if r.Temperature > stats.MaxTemp {
			stats.MaxTemp = r.Temperature
		}
		if r.Timestamp.After(stats.LastReadingAt) {
			stats.LastReadingAt = r.Timestamp
		}
	}
	stats.ReadingsCount = len(readings)
	stats.AverageTemp = sum / float64(len(readings))

	return stats, nil
}

// AllStats computes per-sensor statistics for every known sensor.
// Sensors with no readings inside the window are skipped.
func (s *SensorService) AllStats(ctx context.Context, hours int) ([]*SensorStats, error) {
	sensorIDs, err := s.sensorRepo.DistinctSensorIDs(ctx)
	if err != nil {
		return nil, err
	}

	all := make([]*SensorStats, 0, len(sensorIDs))
	for _, id := range sensorIDs {
		stats, err := s.Stats(ctx, id, hours)
		if err != nil {
			if errors.Is(err, domain.ErrSensorDataNotFound) {
				continue
			}
			return nil, err
		}
		all = append(all, stats)
	}
	return all, nil
}

// Alerts re-evaluates readings above the high threshold within a trailing
// window and reports the resulting alerts
func (s *SensorService) Alerts(ctx context.Context, hours int) (*AlertReport, error) {
	hours = domain.ClampStatsPeriod(hours)
	since := time.Now().UTC().Add(-time.Duration(hours) * time.Hour)

	readings, err := s.sensorRepo.ListAboveSince(ctx, domain.HighTemperatureThreshold, since)
	if err != nil {
		return nil, err
	}

	alerts := make([]*domain.TemperatureAlert, 0, len(readings))
	for _, r := range readings {
		if alert := domain.EvaluateTemperature(r.Temperature, r.SensorID); alert != nil {
			alerts = append(alerts, alert)
		}
	}

	return &AlertReport{
		PeriodHours: hours,
		Count:       len(alerts),
		Alerts:      alerts,
	}, nil
}

// buildReading validates input and fills the timestamp default
func (s *SensorService) buildReading(input *ReadingInput) (*models.SensorReading, error) {
	sensorID := strings.TrimSpace(input.SensorID)
	if sensorID == "" {
		return nil, domain.ErrInvalidInput
	}

	timestamp := time.Now().UTC()
	if input.Timestamp != nil {
		timestamp = input.Timestamp.UTC()
	}

	return &models.SensorReading{
		SensorID:    sensorID,
		Temperature: input.Temperature,
		Timestamp:   timestamp,
	}, nil
}

// broadcastReading pushes a reading to live subscribers. Alert-level
// readings go out as type alert, everything else as type new_data.
func (s *SensorService) broadcastReading(reading *models.SensorReading, alert *domain.TemperatureAlert) {
	if s.hub == nil {
		return
	}

	msgType := WSTypeNewData
	if alert != nil {
		msgType = WSTypeAlert
	}

	s.hub.Broadcast(&WSMessage{
		Type:  msgType,
		Data:  reading,
		Alert: alert,
	})
}

package services

import (
	"context"
	"log"
	"time"

	"coldtrack/internal/adapters/persistence/repositories"
	"coldtrack/internal/core/domain"

	"github.com/robfig/cron/v3"
)

// MonitorService runs scheduled background jobs: a periodic alert sweep
// over recent readings and a daily delivery stats report.
type MonitorService struct {
	sensorRepo      repositories.SensorRepository
	deliveryService *DeliveryService
	hub             Broadcaster
	cron            *cron.Cron
}

// NewMonitorService creates a new monitor service
func NewMonitorService(
	sensorRepo repositories.SensorRepository,
	deliveryService *DeliveryService,
	hub Broadcaster,
) *MonitorService {
	return &MonitorService{
		sensorRepo:      sensorRepo,
		deliveryService: deliveryService,
		hub:             hub,
		cron:            cron.New(),
	}
}

// Start registers and launches the scheduled jobs
func (s *MonitorService) Start() error {
	if _, err := s.cron.AddFunc("@every 15m", s.sweepCriticalAlerts); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc("0 0 * * *", s.logDailyStats); err != nil {
		return err
	}

	s.cron.Start()
	log.Println("🚀 MonitorService started")
	return nil
}

// Stop stops the scheduler and waits for running jobs to finish
func (s *MonitorService) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Println("🛑 MonitorService stopped")
}

// sweepCriticalAlerts re-checks the last 15 minutes of readings and pushes
// any critical alerts to live subscribers. Catches readings that arrived
// in a batch or whose original broadcast had no subscribers yet.
func (s *MonitorService) sweepCriticalAlerts() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	since := time.Now().UTC().Add(-15 * time.Minute)
	readings, err := s.sensorRepo.ListAboveSince(ctx, domain.CriticalTemperatureThreshold, since)
	if err != nil {
		log.Printf("❌ Alert sweep query error: %v", err)
		return
	}

	for _, r := range readings {
		alert := domain.EvaluateTemperature(r.Temperature, r.SensorID)
		if alert == nil || alert.AlertLevel != domain.AlertLevelCritical {
			continue
		}
		s.hub.Broadcast(&WSMessage{
			Type:  WSTypeAlert,
			Data:  r,
			Alert: alert,
		})
	}

	if len(readings) > 0 {
		log.Printf("🌡️ Alert sweep: re-broadcast %d critical readings", len(readings))
	}
}

// logDailyStats logs aggregate delivery statistics once a day
func (s *MonitorService) logDailyStats() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	stats, err := s.deliveryService.Stats(ctx)
	if err != nil {
		log.Printf("❌ Daily stats error: %v", err)
		return
	}

	log.Printf("📊 Daily stats: %d deliveries total, %d completed today, avg temp %.1f°C",
		stats.TotalDeliveries, stats.CompletedToday, stats.AverageTemperature)
}

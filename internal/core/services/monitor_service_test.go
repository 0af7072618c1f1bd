package services

import (
	"context"
	"testing"
	"time"

	"coldtrack/internal/adapters/persistence/models"
	"coldtrack/internal/core/domain"
)

func TestMonitorService_SweepBroadcastsCriticalAlerts(t *testing.T) {
	var gotThreshold float64
	var gotSince time.Time
	sensorRepo := &fakeSensorRepo{
		listAboveSinceFn: func(ctx context.Context, threshold float64, since time.Time) ([]*models.SensorReading, error) {
			gotThreshold = threshold
			gotSince = since
			return []*models.SensorReading{
				{SensorID: "truck-1", Temperature: 12.5, Timestamp: time.Now().UTC()},
			}, nil
		},
	}
	hub := &fakeHub{}
	svc := NewMonitorService(sensorRepo, nil, hub)

	svc.sweepCriticalAlerts()

	if gotThreshold != domain.CriticalTemperatureThreshold {
		t.Errorf("threshold = %.1f, want %.1f", gotThreshold, domain.CriticalTemperatureThreshold)
	}
	if time.Since(gotSince) > 16*time.Minute {
		t.Errorf("sweep window starts at %v, want ~15 minutes back", gotSince)
	}

	msg := hub.last()
	if msg == nil {
		t.Fatal("no broadcast")
	}
	if msg.Type != WSTypeAlert {
		t.Errorf("message type = %s, want %s", msg.Type, WSTypeAlert)
	}
	if msg.Alert == nil || msg.Alert.AlertLevel != domain.AlertLevelCritical {
		t.Errorf("alert = %+v, want critical", msg.Alert)
	}
}

func TestMonitorService_StartStop(t *testing.T) {
	svc := NewMonitorService(&fakeSensorRepo{}, nil, &fakeHub{})

	if err := svc.Start(); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	svc.Stop()
}

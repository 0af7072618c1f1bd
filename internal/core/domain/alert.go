package domain

import (
	"fmt"
	"time"
)

// Temperature thresholds for refrigerated cargo, in °C.
const (
	HighTemperatureThreshold     = 8.0
	CriticalTemperatureThreshold = 10.0
)

// Stats/alert window bounds, in hours.
const (
	DefaultStatsPeriodHours = 24
	MaxStatsPeriodHours     = 168
)

// AlertLevel classifies a temperature reading.
type AlertLevel string

const (
	AlertLevelNormal   AlertLevel = "normal"
	AlertLevelHigh     AlertLevel = "high"
	AlertLevelCritical AlertLevel = "critical"
)

// TemperatureAlert is derived from a reading on demand; it is never persisted.
type TemperatureAlert struct {
	SensorID    string     `json:"sensor_id"`
	Temperature float64    `json:"temperature"`
	Timestamp   time.Time  `json:"timestamp"`
	AlertLevel  AlertLevel `json:"alert_level"`
	Message     string     `json:"message"`
}

// EvaluateTemperature classifies a reading against the thresholds. Readings
// at or below the high threshold produce no alert. The alert timestamp is
// the evaluation time, not the reading time: historical sweeps report when
// the alert was raised, not when the sample was taken.
func EvaluateTemperature(temperature float64, sensorID string) *TemperatureAlert {
	if temperature <= HighTemperatureThreshold {
		return nil
	}

	level := AlertLevelCritical
	if temperature <= CriticalTemperatureThreshold {
		level = AlertLevelHigh
	}

	return &TemperatureAlert{
		SensorID:    sensorID,
		Temperature: temperature,
		Timestamp:   time.Now().UTC(),
		AlertLevel:  level,
		Message:     fmt.Sprintf("high temperature reading: %.1f°C", temperature),
	}
}

// ClampStatsPeriod normalizes an hours parameter to the [1, MaxStatsPeriodHours]
// range, substituting the default when the value is unset or non-positive.
func ClampStatsPeriod(hours int) int {
	if hours <= 0 {
		return DefaultStatsPeriodHours
	}
	if hours > MaxStatsPeriodHours {
		return MaxStatsPeriodHours
	}
	return hours
}

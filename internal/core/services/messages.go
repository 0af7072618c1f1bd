package services

import "coldtrack/internal/core/domain"

// WS message types pushed to live subscribers
const (
	WSTypeNewData = "new_data"
	WSTypeAlert   = "alert"
	WSTypeStatus  = "status"
)

// WSMessage is the envelope broadcast over the notification hub
type WSMessage struct {
	Type  string                   `json:"type"`
	Data  interface{}              `json:"data"`
	Alert *domain.TemperatureAlert `json:"alert,omitempty"`
}

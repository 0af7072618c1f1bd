package domain

import "errors"

// Common domain errors
var (
	ErrNotFound                = errors.New("resource not found")
	ErrInvalidInput            = errors.New("invalid input")
	ErrDuplicateEntity         = errors.New("duplicate entity")
	ErrInvalidCredentials      = errors.New("invalid credentials")
	ErrInvalidToken            = errors.New("token invalid")
	ErrTokenExpired            = errors.New("token expired")
	ErrTokenRevoked            = errors.New("token revoked")
	ErrInsufficientPermissions = errors.New("insufficient permissions")
)

// Entity lookup errors
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrRoleNotFound       = errors.New("role not found")
	ErrDeliveryNotFound   = errors.New("delivery not found")
	ErrStatusNotFound     = errors.New("delivery status not found")
	ErrSensorDataNotFound = errors.New("sensor data not found")
)

// Delivery lifecycle errors
var (
	ErrUnknownStatus      = errors.New("unknown delivery status")
	ErrInvalidTransition  = errors.New("status transition not permitted")
	ErrSameDriverReceiver = errors.New("driver and receiver must be distinct users")
)

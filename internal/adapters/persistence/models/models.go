package models

import (
	"time"

	"gorm.io/gorm"
)

// ============================================================
// Auth & User Tables
// ============================================================

// Role represents the roles table. The four role names are seeded at
// startup and never mutated afterwards.
type Role struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"uniqueIndex;size:20;not null" json:"name"`
}

func (Role) TableName() string {
	return "roles"
}

// User represents the users table
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Username  string    `gorm:"uniqueIndex;size:50;not null" json:"username"`
	Password  string    `gorm:"size:255;not null" json:"-"`
	RoleID    uint      `gorm:"index;not null" json:"role_id"`
	Role      Role      `gorm:"foreignKey:RoleID" json:"-"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

// UserResponse DTO
type UserResponse struct {
	ID        uint      `json:"id"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

func (u *User) ToResponse() *UserResponse {
	return &UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Role:      u.Role.Name,
		CreatedAt: u.CreatedAt,
	}
}

// RefreshToken represents the refresh_tokens table. Tokens are stored as
// SHA-256 hashes and rotated on every refresh.
type RefreshToken struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    uint       `gorm:"index;not null" json:"user_id"`
	TokenHash string     `gorm:"size:255;not null;index" json:"-"`
	ExpiresAt time.Time  `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	RevokedAt *time.Time `gorm:"index" json:"revoked_at"`
	User      User       `gorm:"foreignKey:UserID" json:"-"`
}

func (RefreshToken) TableName() string {
	return "refresh_tokens"
}

func (rt *RefreshToken) IsRevoked() bool {
	return rt.RevokedAt != nil
}

func (rt *RefreshToken) IsExpired() bool {
	return time.Now().After(rt.ExpiresAt)
}

// ============================================================
// Delivery Tables
// ============================================================

// DeliveryStatus represents the delivery_statuses table. The fixed
// vocabulary (pending, in_transit, delivered, completed) is seeded at
// startup.
type DeliveryStatus struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"uniqueIndex;size:20;not null" json:"name"`
}

func (DeliveryStatus) TableName() string {
	return "delivery_statuses"
}

// Delivery represents the deliveries table
type Delivery struct {
	ID                 uint           `gorm:"primaryKey" json:"id"`
	StatusID           uint           `gorm:"index;not null" json:"status_id"`
	DriverID           uint           `gorm:"index;not null" json:"driver_id"`
	ReceiverID         uint           `gorm:"index;not null" json:"receiver_id"`
	CurrentTemperature float64        `json:"current_temperature"`
	CreatedAt          time.Time      `gorm:"autoCreateTime" json:"created_at"`
	Status             DeliveryStatus `gorm:"foreignKey:StatusID" json:"-"`
	Driver             User           `gorm:"foreignKey:DriverID;constraint:OnDelete:CASCADE" json:"-"`
	Receiver           User           `gorm:"foreignKey:ReceiverID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Delivery) TableName() string {
	return "deliveries"
}

// DeliveryResponse DTO with resolved relation names
type DeliveryResponse struct {
	ID                 uint      `json:"id"`
	Status             string    `json:"status"`
	DriverName         string    `json:"driver_name"`
	ReceiverName       string    `json:"receiver_name"`
	CurrentTemperature float64   `json:"current_temperature"`
	CreatedAt          time.Time `json:"created_at"`
}

func (d *Delivery) ToResponse() *DeliveryResponse {
	return &DeliveryResponse{
		ID:                 d.ID,
		Status:             d.Status.Name,
		DriverName:         d.Driver.Username,
		ReceiverName:       d.Receiver.Username,
		CurrentTemperature: d.CurrentTemperature,
		CreatedAt:          d.CreatedAt,
	}
}

// ============================================================
// Sensor Tables
// ============================================================

// SensorReading represents the sensor_readings table. Rows are append-only;
// readings are never linked to a delivery in storage.
type SensorReading struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	SensorID    string    `gorm:"index;size:64;not null" json:"sensor_id"`
	Temperature float64   `gorm:"not null" json:"temperature"`
	Timestamp   time.Time `gorm:"index;not null" json:"timestamp"`
}

func (SensorReading) TableName() string {
	return "sensor_readings"
}

// AutoMigrate runs auto migration for all tables
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&Role{},
		&User{},
		&RefreshToken{},
		&DeliveryStatus{},
		&Delivery{},
		&SensorReading{},
	)
}

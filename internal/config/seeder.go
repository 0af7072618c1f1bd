package config

import (
	"log"

	"coldtrack/internal/adapters/persistence/models"
	"coldtrack/internal/core/domain"
	"coldtrack/internal/pkg/password"

	"gorm.io/gorm"
)

// Seeder handles database seeding
type Seeder struct {
	db  *gorm.DB
	cfg *Config
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB, cfg *Config) *Seeder {
	return &Seeder{db: db, cfg: cfg}
}

// Run seeds the fixed vocabularies (roles, delivery statuses) and the
// bootstrap admin user. Idempotent: existing rows are left untouched.
func (s *Seeder) Run() error {
	log.Println("🌱 Running database seeders...")

	if err := s.seedRoles(); err != nil {
		return err
	}
	if err := s.seedDeliveryStatuses(); err != nil {
		return err
	}
	if err := s.seedAdminUser(); err != nil {
		return err
	}

	log.Println("✅ Database seeding completed")
	return nil
}

func (s *Seeder) seedRoles() error {
	var count int64
	if err := s.db.Model(&models.Role{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	roles := make([]models.Role, 0, len(domain.AllRoles))
	for _, r := range domain.AllRoles {
		roles = append(roles, models.Role{Name: r.String()})
	}

	if err := s.db.Create(&roles).Error; err != nil {
		return err
	}

	log.Printf("✅ Seeded %d roles", len(roles))
	return nil
}

func (s *Seeder) seedDeliveryStatuses() error {
	var count int64
	if err := s.db.Model(&models.DeliveryStatus{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	statuses := make([]models.DeliveryStatus, 0, len(domain.AllStatuses))
	for _, st := range domain.AllStatuses {
		statuses = append(statuses, models.DeliveryStatus{Name: st.String()})
	}

	if err := s.db.Create(&statuses).Error; err != nil {
		return err
	}

	log.Printf("✅ Seeded %d delivery statuses", len(statuses))
	return nil
}

// seedAdminUser seeds the bootstrap admin. Credentials come from
// SEED_ADMIN_USERNAME / SEED_ADMIN_PASSWORD; change them in production.
func (s *Seeder) seedAdminUser() error {
	var count int64
	if err := s.db.Model(&models.User{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	var adminRole models.Role
	if err := s.db.Where("name = ?", domain.RoleAdmin.String()).First(&adminRole).Error; err != nil {
		return err
	}

	hashedPassword, err := password.Hash(s.cfg.Seed.AdminPassword)
	if err != nil {
		return err
	}

	admin := &models.User{
		Username: s.cfg.Seed.AdminUsername,
		Password: hashedPassword,
		RoleID:   adminRole.ID,
	}

	if err := s.db.Create(admin).Error; err != nil {
		return err
	}

	log.Printf("✅ Admin user created: %s", admin.Username)
	return nil
}

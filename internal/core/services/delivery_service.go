package services

import (
	"context"
	"errors"
	"log"
	"time"

	"coldtrack/internal/adapters/persistence/models"
	"coldtrack/internal/adapters/persistence/repositories"
	"coldtrack/internal/core/domain"
	"coldtrack/internal/pkg/metrics"

	"gorm.io/gorm"
)

// Broadcaster pushes messages to live subscribers. Satisfied by *ws.Hub;
// injectable so services can be tested with a recording fake.
type Broadcaster interface {
	Broadcast(message interface{})
}

// Actor identifies the authenticated user performing an operation
type Actor struct {
	UserID uint
	Role   domain.Role
}

// DeliveryService handles delivery business logic
type DeliveryService struct {
	deliveryRepo repositories.DeliveryRepository
	statusRepo   repositories.StatusRepository
	userRepo     repositories.UserRepository
	hub          Broadcaster
}

// NewDeliveryService creates a new delivery service
func NewDeliveryService(
	deliveryRepo repositories.DeliveryRepository,
	statusRepo repositories.StatusRepository,
	userRepo repositories.UserRepository,
	hub Broadcaster,
) *DeliveryService {
	return &DeliveryService{
		deliveryRepo: deliveryRepo,
		statusRepo:   statusRepo,
		userRepo:     userRepo,
		hub:          hub,
	}
}

// CreateDeliveryInput represents delivery creation input
type CreateDeliveryInput struct {
	DriverID           uint    `json:"driver_id"`
	ReceiverID         uint    `json:"receiver_id"`
	CurrentTemperature float64 `json:"current_temperature"`
	Status             string  `json:"status"`
}

// UpdateDeliveryInput represents admin delivery update input
type UpdateDeliveryInput struct {
	DriverID           *uint    `json:"driver_id"`
	ReceiverID         *uint    `json:"receiver_id"`
	CurrentTemperature *float64 `json:"current_temperature"`
	Status             *string  `json:"status"`
}

// StatusUpdateResult is returned on a successful status transition
type StatusUpdateResult struct {
	Message   string `json:"message"`
	NewStatus string `json:"new_status"`
}

// DeliveryStats represents aggregate delivery statistics
type DeliveryStats struct {
	TotalDeliveries    int64            `json:"total_deliveries"`
	ByStatus           map[string]int64 `json:"by_status"`
	AverageTemperature float64          `json:"average_temperature"`
	CompletedToday     int64            `json:"completed_today"`
}

// Create creates a new delivery
func (s *DeliveryService) Create(ctx context.Context, input *CreateDeliveryInput) (*models.DeliveryResponse, error) {
	if input.DriverID == input.ReceiverID {
		return nil, domain.ErrSameDriverReceiver
	}

	driver, err := s.requireUserWithRole(ctx, input.DriverID, domain.RoleDriver)
	if err != nil {
		return nil, err
	}
	receiver, err := s.requireUserWithRole(ctx, input.ReceiverID, domain.RoleReceiver)
	if err != nil {
		return nil, err
	}

	statusName := input.Status
	if statusName == "" {
		statusName = domain.StatusPending.String()
	}
	if _, err := domain.ParseStatus(statusName); err != nil {
		return nil, err
	}

	status, err := s.statusRepo.GetByName(ctx, statusName)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrStatusNotFound
		}
		return nil, err
	}

	delivery := &models.Delivery{
		StatusID:           status.ID,
		DriverID:           driver.ID,
		ReceiverID:         receiver.ID,
		CurrentTemperature: input.CurrentTemperature,
		Status:             *status,
		Driver:             *driver,
		Receiver:           *receiver,
	}

	if err := s.deliveryRepo.Create(ctx, delivery); err != nil {
		return nil, err
	}

	log.Printf("✅ Delivery created: ID %d (driver %s → receiver %s)",
		delivery.ID, driver.Username, receiver.Username)
	return delivery.ToResponse(), nil
}

// GetByID gets a delivery visible to the actor
func (s *DeliveryService) GetByID(ctx context.Context, id uint, actor Actor) (*models.DeliveryResponse, error) {
	delivery, err := s.deliveryRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrDeliveryNotFound
		}
		return nil, err
	}

	if err := s.checkVisibility(delivery, actor); err != nil {
		return nil, err
	}
	return delivery.ToResponse(), nil
}

// List lists deliveries scoped to the actor's role. Drivers see their own
// deliveries, receivers see their own with status delivered, dispatchers
// and admins see everything.
func (s *DeliveryService) List(ctx context.Context, actor Actor, offset, limit int) ([]*models.DeliveryResponse, int64, error) {
	var (
		deliveries []*models.Delivery
		total      int64
		err        error
	)

	switch actor.Role {
	case domain.RoleAdmin, domain.RoleDispatcher:
		deliveries, total, err = s.deliveryRepo.List(ctx, offset, limit)
	case domain.RoleDriver:
		deliveries, total, err = s.deliveryRepo.ListByDriver(ctx, actor.UserID, offset, limit)
	case domain.RoleReceiver:
		var delivered *models.DeliveryStatus
		delivered, err = s.statusRepo.GetByName(ctx, domain.StatusDelivered.String())
		if err != nil {
			return nil, 0, err
		}
		deliveries, total, err = s.deliveryRepo.ListByReceiverAndStatus(ctx, actor.UserID, delivered.ID, offset, limit)
	default:
		return nil, 0, domain.ErrInsufficientPermissions
	}
	if err != nil {
		return nil, 0, err
	}

	responses := make([]*models.DeliveryResponse, 0, len(deliveries))
	for _, d := range deliveries {
		responses = append(responses, d.ToResponse())
	}
	return responses, total, nil
}

// ListByStatus lists deliveries in the given status
func (s *DeliveryService) ListByStatus(ctx context.Context, statusID uint, offset, limit int) ([]*models.DeliveryResponse, int64, error) {
	if _, err := s.statusRepo.GetByID(ctx, statusID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, domain.ErrStatusNotFound
		}
		return nil, 0, err
	}

	deliveries, total, err := s.deliveryRepo.ListByStatus(ctx, statusID, offset, limit)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]*models.DeliveryResponse, 0, len(deliveries))
	for _, d := range deliveries {
		responses = append(responses, d.ToResponse())
	}
	return responses, total, nil
}

// UpdateStatus applies a role-gated status transition. The write is
// conditional on the status the actor saw; a concurrent transition that
// lands first makes the conditional update match zero rows and the
// request fails without mutating anything.
func (s *DeliveryService) UpdateStatus(ctx context.Context, id uint, targetName string, actor Actor) (*StatusUpdateResult, error) {
	target, err := domain.ParseStatus(targetName)
	if err != nil {
		return nil, err
	}

	delivery, err := s.deliveryRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrDeliveryNotFound
		}
		return nil, err
	}

	if err := s.checkOwnership(delivery, actor); err != nil {
		metrics.StatusTransitionsTotal.WithLabelValues("forbidden").Inc()
		return nil, err
	}

	from, err := domain.ParseStatus(delivery.Status.Name)
	if err != nil {
		return nil, err
	}

	if !domain.CanTransition(from, target, actor.Role) {
		metrics.StatusTransitionsTotal.WithLabelValues("rejected").Inc()
		return nil, domain.ErrInvalidTransition
	}

	toStatus, err := s.statusRepo.GetByName(ctx, target.String())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrStatusNotFound
		}
		return nil, err
	}

	ok, err := s.deliveryRepo.UpdateStatusIf(ctx, delivery.ID, delivery.StatusID, toStatus.ID)
	if err != nil {
		return nil, err
	}
	if !ok {
		// Lost the race against a concurrent transition.
		metrics.StatusTransitionsTotal.WithLabelValues("conflict").Inc()
		return nil, domain.ErrInvalidTransition
	}

	metrics.StatusTransitionsTotal.WithLabelValues("ok").Inc()
	log.Printf("✅ Delivery %d: %s → %s by %s", delivery.ID, from, target, actor.Role)

	delivery.StatusID = toStatus.ID
	delivery.Status = *toStatus
	if s.hub != nil {
		s.hub.Broadcast(&WSMessage{
			Type: WSTypeStatus,
			Data: delivery.ToResponse(),
		})
	}

	return &StatusUpdateResult{
		Message:   "delivery status updated",
		NewStatus: target.String(),
	}, nil
}

// Update performs an unrestricted admin update of a delivery
func (s *DeliveryService) Update(ctx context.Context, id uint, input *UpdateDeliveryInput) (*models.DeliveryResponse, error) {
	delivery, err := s.deliveryRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrDeliveryNotFound
		}
		return nil, err
	}

	if input.DriverID != nil {
		driver, err := s.requireUserWithRole(ctx, *input.DriverID, domain.RoleDriver)
		if err != nil {
			return nil, err
		}
		delivery.DriverID = driver.ID
		delivery.Driver = *driver
	}
	if input.ReceiverID != nil {
		receiver, err := s.requireUserWithRole(ctx, *input.ReceiverID, domain.RoleReceiver)
		if err != nil {
			return nil, err
		}
		delivery.ReceiverID = receiver.ID
		delivery.Receiver = *receiver
	}
	if delivery.DriverID == delivery.ReceiverID {
		return nil, domain.ErrSameDriverReceiver
	}
	if input.CurrentTemperature != nil {
		delivery.CurrentTemperature = *input.CurrentTemperature
	}
	if input.Status != nil {
		if _, err := domain.ParseStatus(*input.Status); err != nil {
			return nil, err
		}
		status, err := s.statusRepo.GetByName(ctx, *input.Status)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, domain.ErrStatusNotFound
			}
			return nil, err
		}
		delivery.StatusID = status.ID
		delivery.Status = *status
	}

	if err := s.deliveryRepo.Update(ctx, delivery); err != nil {
		return nil, err
	}

	log.Printf("✅ Delivery updated: ID %d", delivery.ID)
	return delivery.ToResponse(), nil
}

// Delete deletes a delivery
func (s *DeliveryService) Delete(ctx context.Context, id uint) error {
	if _, err := s.deliveryRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrDeliveryNotFound
		}
		return err
	}

	if err := s.deliveryRepo.Delete(ctx, id); err != nil {
		return err
	}

	log.Printf("🗑️ Delivery deleted: ID %d", id)
	return nil
}

// Stats computes aggregate delivery statistics
func (s *DeliveryService) Stats(ctx context.Context) (*DeliveryStats, error) {
	total, err := s.deliveryRepo.CountTotal(ctx)
	if err != nil {
		return nil, err
	}

	byStatus, err := s.deliveryRepo.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}

	avgTemp, err := s.deliveryRepo.AverageTemperature(ctx)
	if err != nil {
		return nil, err
	}

	completed, err := s.statusRepo.GetByName(ctx, domain.StatusCompleted.String())
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	completedToday, err := s.deliveryRepo.CountByStatusSince(ctx, completed.ID, midnight)
	if err != nil {
		return nil, err
	}

	return &DeliveryStats{
		TotalDeliveries:    total,
		ByStatus:           byStatus,
		AverageTemperature: avgTemp,
		CompletedToday:     completedToday,
	}, nil
}

// requireUserWithRole loads a user and checks they hold the expected role
func (s *DeliveryService) requireUserWithRole(ctx context.Context, userID uint, role domain.Role) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	if user.Role.Name != role.String() {
		return nil, domain.ErrInvalidInput
	}
	return user, nil
}

// checkVisibility enforces role-scoped read access to a single delivery
func (s *DeliveryService) checkVisibility(delivery *models.Delivery, actor Actor) error {
	switch actor.Role {
	case domain.RoleAdmin, domain.RoleDispatcher:
		return nil
	case domain.RoleDriver:
		if delivery.DriverID == actor.UserID {
			return nil
		}
	case domain.RoleReceiver:
		if delivery.ReceiverID == actor.UserID {
			return nil
		}
	}
	return domain.ErrInsufficientPermissions
}

// checkOwnership ensures drivers and receivers only transition their own
// deliveries. Admins may transition anything; the transition table itself
// rejects every dispatcher move.
func (s *DeliveryService) checkOwnership(delivery *models.Delivery, actor Actor) error {
	switch actor.Role {
	case domain.RoleDriver:
		if delivery.DriverID != actor.UserID {
			return domain.ErrInsufficientPermissions
		}
	case domain.RoleReceiver:
		if delivery.ReceiverID != actor.UserID {
			return domain.ErrInsufficientPermissions
		}
	}
	return nil
}

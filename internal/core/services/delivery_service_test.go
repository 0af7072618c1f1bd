package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"coldtrack/internal/adapters/persistence/models"
	"coldtrack/internal/adapters/persistence/repositories"
	"coldtrack/internal/core/domain"

	"gorm.io/gorm"
)

// --- fakes ---

type fakeDeliveryRepo struct {
	getByIDFn        func(ctx context.Context, id uint) (*models.Delivery, error)
	updateStatusIfFn func(ctx context.Context, id, fromStatusID, toStatusID uint) (bool, error)
	listFn           func(ctx context.Context, offset, limit int) ([]*models.Delivery, int64, error)
	listByDriverFn   func(ctx context.Context, driverID uint, offset, limit int) ([]*models.Delivery, int64, error)
	listByRcvStFn    func(ctx context.Context, receiverID, statusID uint, offset, limit int) ([]*models.Delivery, int64, error)

	countTotalFn         func(ctx context.Context) (int64, error)
	countByStatusFn      func(ctx context.Context) (repositories.DeliveryStatusCounts, error)
	averageTemperatureFn func(ctx context.Context) (float64, error)
	countByStatusSinceFn func(ctx context.Context, statusID uint, since time.Time) (int64, error)
}

func (f *fakeDeliveryRepo) Create(ctx context.Context, delivery *models.Delivery) error { return nil }

func (f *fakeDeliveryRepo) GetByID(ctx context.Context, id uint) (*models.Delivery, error) {
	if f.getByIDFn != nil {
		return f.getByIDFn(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeDeliveryRepo) List(ctx context.Context, offset, limit int) ([]*models.Delivery, int64, error) {
	if f.listFn != nil {
		return f.listFn(ctx, offset, limit)
	}
	return nil, 0, nil
}

func (f *fakeDeliveryRepo) ListByStatus(ctx context.Context, statusID uint, offset, limit int) ([]*models.Delivery, int64, error) {
	return nil, 0, nil
}

func (f *fakeDeliveryRepo) ListByDriver(ctx context.Context, driverID uint, offset, limit int) ([]*models.Delivery, int64, error) {
	if f.listByDriverFn != nil {
		return f.listByDriverFn(ctx, driverID, offset, limit)
	}
	return nil, 0, nil
}

func (f *fakeDeliveryRepo) ListByReceiverAndStatus(ctx context.Context, receiverID, statusID uint, offset, limit int) ([]*models.Delivery, int64, error) {
	if f.listByRcvStFn != nil {
		return f.listByRcvStFn(ctx, receiverID, statusID, offset, limit)
	}
	return nil, 0, nil
}

func (f *fakeDeliveryRepo) Update(ctx context.Context, delivery *models.Delivery) error { return nil }

func (f *fakeDeliveryRepo) UpdateStatusIf(ctx context.Context, id, fromStatusID, toStatusID uint) (bool, error) {
	if f.updateStatusIfFn != nil {
		return f.updateStatusIfFn(ctx, id, fromStatusID, toStatusID)
	}
	return true, nil
}

func (f *fakeDeliveryRepo) Delete(ctx context.Context, id uint) error { return nil }

func (f *fakeDeliveryRepo) CountTotal(ctx context.Context) (int64, error) {
	if f.countTotalFn != nil {
		return f.countTotalFn(ctx)
	}
	return 0, nil
}

func (f *fakeDeliveryRepo) CountByStatus(ctx context.Context) (repositories.DeliveryStatusCounts, error) {
	if f.countByStatusFn != nil {
		return f.countByStatusFn(ctx)
	}
	return repositories.DeliveryStatusCounts{}, nil
}

func (f *fakeDeliveryRepo) AverageTemperature(ctx context.Context) (float64, error) {
	if f.averageTemperatureFn != nil {
		return f.averageTemperatureFn(ctx)
	}
	return 0, nil
}

func (f *fakeDeliveryRepo) CountByStatusSince(ctx context.Context, statusID uint, since time.Time) (int64, error) {
	if f.countByStatusSinceFn != nil {
		return f.countByStatusSinceFn(ctx, statusID, since)
	}
	return 0, nil
}

// fakeStatusRepo serves the seeded status vocabulary from memory
type fakeStatusRepo struct{}

var fakeStatuses = map[string]*models.DeliveryStatus{
	"pending":    {ID: 1, Name: "pending"},
	"in_transit": {ID: 2, Name: "in_transit"},
	"delivered":  {ID: 3, Name: "delivered"},
	"completed":  {ID: 4, Name: "completed"},
}

func (f *fakeStatusRepo) GetByID(ctx context.Context, id uint) (*models.DeliveryStatus, error) {
	for _, s := range fakeStatuses {
		if s.ID == id {
			return s, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeStatusRepo) GetByName(ctx context.Context, name string) (*models.DeliveryStatus, error) {
	if s, ok := fakeStatuses[name]; ok {
		return s, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeStatusRepo) List(ctx context.Context) ([]*models.DeliveryStatus, error) {
	out := make([]*models.DeliveryStatus, 0, len(fakeStatuses))
	for _, s := range fakeStatuses {
		out = append(out, s)
	}
	return out, nil
}

type fakeUserRepo struct {
	getByIDFn       func(ctx context.Context, id uint) (*models.User, error)
	getByUsernameFn func(ctx context.Context, username string) (*models.User, error)
	createFn        func(ctx context.Context, user *models.User) error
}

func (f *fakeUserRepo) Create(ctx context.Context, user *models.User) error {
	if f.createFn != nil {
		return f.createFn(ctx, user)
	}
	return nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id uint) (*models.User, error) {
	if f.getByIDFn != nil {
		return f.getByIDFn(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	if f.getByUsernameFn != nil {
		return f.getByUsernameFn(ctx, username)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) Update(ctx context.Context, user *models.User) error { return nil }
func (f *fakeUserRepo) Delete(ctx context.Context, id uint) error           { return nil }

func (f *fakeUserRepo) List(ctx context.Context, offset, limit int) ([]*models.User, int64, error) {
	return nil, 0, nil
}

func (f *fakeUserRepo) ListByRole(ctx context.Context, roleID uint) ([]*models.User, error) {
	return nil, nil
}

func (f *fakeUserRepo) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	return false, nil
}

// --- helpers ---

func userWithRole(id uint, username string, role domain.Role) *models.User {
	return &models.User{
		ID:       id,
		Username: username,
		Role:     models.Role{ID: id, Name: role.String()},
	}
}

func deliveryInStatus(id uint, statusName string, driverID, receiverID uint) *models.Delivery {
	status := fakeStatuses[statusName]
	return &models.Delivery{
		ID:         id,
		StatusID:   status.ID,
		DriverID:   driverID,
		ReceiverID: receiverID,
		Status:     *status,
	}
}

// --- tests ---

func TestDeliveryService_UpdateStatus_Transitions(t *testing.T) {
	tests := []struct {
		name    string
		from    string
		target  string
		actor   Actor
		wantErr error
	}{
		{"driver starts transit", "pending", "in_transit", Actor{UserID: 10, Role: domain.RoleDriver}, nil},
		{"driver delivers", "in_transit", "delivered", Actor{UserID: 10, Role: domain.RoleDriver}, nil},
		{"driver cannot complete", "delivered", "completed", Actor{UserID: 10, Role: domain.RoleDriver}, domain.ErrInvalidTransition},
		{"driver cannot skip", "pending", "delivered", Actor{UserID: 10, Role: domain.RoleDriver}, domain.ErrInvalidTransition},
		{"receiver completes", "delivered", "completed", Actor{UserID: 20, Role: domain.RoleReceiver}, nil},
		{"receiver cannot start", "pending", "in_transit", Actor{UserID: 20, Role: domain.RoleReceiver}, domain.ErrInvalidTransition},
		{"dispatcher has no moves", "pending", "in_transit", Actor{UserID: 30, Role: domain.RoleDispatcher}, domain.ErrInvalidTransition},
		{"admin overrides backwards", "completed", "pending", Actor{UserID: 1, Role: domain.RoleAdmin}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deliveryRepo := &fakeDeliveryRepo{
				getByIDFn: func(ctx context.Context, id uint) (*models.Delivery, error) {
					return deliveryInStatus(id, tt.from, 10, 20), nil
				},
			}
			hub := &fakeHub{}
			svc := NewDeliveryService(deliveryRepo, &fakeStatusRepo{}, &fakeUserRepo{}, hub)

			result, err := svc.UpdateStatus(context.Background(), 1, tt.target, tt.actor)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				if hub.count() != 0 {
					t.Error("failed transition must not broadcast")
				}
				return
			}

			if err != nil {
				t.Fatalf("UpdateStatus returned error: %v", err)
			}
			if result.NewStatus != tt.target {
				t.Errorf("new status = %s, want %s", result.NewStatus, tt.target)
			}

			msg := hub.last()
			if msg == nil || msg.Type != WSTypeStatus {
				t.Errorf("broadcast = %+v, want type %s", msg, WSTypeStatus)
			}
		})
	}
}

func TestDeliveryService_UpdateStatus_OwnershipChecks(t *testing.T) {
	deliveryRepo := &fakeDeliveryRepo{
		getByIDFn: func(ctx context.Context, id uint) (*models.Delivery, error) {
			return deliveryInStatus(id, "pending", 10, 20), nil
		},
	}
	svc := NewDeliveryService(deliveryRepo, &fakeStatusRepo{}, &fakeUserRepo{}, &fakeHub{})

	// another driver
	_, err := svc.UpdateStatus(context.Background(), 1, "in_transit", Actor{UserID: 99, Role: domain.RoleDriver})
	if !errors.Is(err, domain.ErrInsufficientPermissions) {
		t.Errorf("foreign driver: err = %v, want ErrInsufficientPermissions", err)
	}

	// another receiver
	deliveryRepo.getByIDFn = func(ctx context.Context, id uint) (*models.Delivery, error) {
		return deliveryInStatus(id, "delivered", 10, 20), nil
	}
	_, err = svc.UpdateStatus(context.Background(), 1, "completed", Actor{UserID: 99, Role: domain.RoleReceiver})
	if !errors.Is(err, domain.ErrInsufficientPermissions) {
		t.Errorf("foreign receiver: err = %v, want ErrInsufficientPermissions", err)
	}
}

func TestDeliveryService_UpdateStatus_ConditionalWrite(t *testing.T) {
	var gotFrom, gotTo uint
	deliveryRepo := &fakeDeliveryRepo{
		getByIDFn: func(ctx context.Context, id uint) (*models.Delivery, error) {
			return deliveryInStatus(id, "pending", 10, 20), nil
		},
		updateStatusIfFn: func(ctx context.Context, id, fromStatusID, toStatusID uint) (bool, error) {
			gotFrom, gotTo = fromStatusID, toStatusID
			return true, nil
		},
	}
	svc := NewDeliveryService(deliveryRepo, &fakeStatusRepo{}, &fakeUserRepo{}, &fakeHub{})

	_, err := svc.UpdateStatus(context.Background(), 1, "in_transit", Actor{UserID: 10, Role: domain.RoleDriver})
	if err != nil {
		t.Fatalf("UpdateStatus returned error: %v", err)
	}
	if gotFrom != fakeStatuses["pending"].ID || gotTo != fakeStatuses["in_transit"].ID {
		t.Errorf("conditional write used %d → %d", gotFrom, gotTo)
	}
}

// TestDeliveryService_UpdateStatus_LostRace simulates a concurrent
// transition landing first: the conditional update matches zero rows and
// the request fails without a broadcast.
func TestDeliveryService_UpdateStatus_LostRace(t *testing.T) {
	deliveryRepo := &fakeDeliveryRepo{
		getByIDFn: func(ctx context.Context, id uint) (*models.Delivery, error) {
			return deliveryInStatus(id, "pending", 10, 20), nil
		},
		updateStatusIfFn: func(ctx context.Context, id, fromStatusID, toStatusID uint) (bool, error) {
			return false, nil
		},
	}
	hub := &fakeHub{}
	svc := NewDeliveryService(deliveryRepo, &fakeStatusRepo{}, &fakeUserRepo{}, hub)

	_, err := svc.UpdateStatus(context.Background(), 1, "in_transit", Actor{UserID: 10, Role: domain.RoleDriver})
	if !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("err = %v, want ErrInvalidTransition", err)
	}
	if hub.count() != 0 {
		t.Error("lost race must not broadcast")
	}
}

func TestDeliveryService_UpdateStatus_UnknownStatus(t *testing.T) {
	svc := NewDeliveryService(&fakeDeliveryRepo{}, &fakeStatusRepo{}, &fakeUserRepo{}, &fakeHub{})

	_, err := svc.UpdateStatus(context.Background(), 1, "shipped", Actor{UserID: 1, Role: domain.RoleAdmin})
	if !errors.Is(err, domain.ErrUnknownStatus) {
		t.Fatalf("err = %v, want ErrUnknownStatus", err)
	}
}

func TestDeliveryService_Create_Validation(t *testing.T) {
	users := map[uint]*models.User{
		10: userWithRole(10, "dave", domain.RoleDriver),
		20: userWithRole(20, "rita", domain.RoleReceiver),
		30: userWithRole(30, "desk", domain.RoleDispatcher),
	}
	userRepo := &fakeUserRepo{
		getByIDFn: func(ctx context.Context, id uint) (*models.User, error) {
			if u, ok := users[id]; ok {
				return u, nil
			}
			return nil, gorm.ErrRecordNotFound
		},
	}
	svc := NewDeliveryService(&fakeDeliveryRepo{}, &fakeStatusRepo{}, userRepo, &fakeHub{})

	_, err := svc.Create(context.Background(), &CreateDeliveryInput{DriverID: 10, ReceiverID: 10})
	if !errors.Is(err, domain.ErrSameDriverReceiver) {
		t.Errorf("same user: err = %v, want ErrSameDriverReceiver", err)
	}

	_, err = svc.Create(context.Background(), &CreateDeliveryInput{DriverID: 99, ReceiverID: 20})
	if !errors.Is(err, domain.ErrUserNotFound) {
		t.Errorf("missing driver: err = %v, want ErrUserNotFound", err)
	}

	// dispatcher assigned as driver
	_, err = svc.Create(context.Background(), &CreateDeliveryInput{DriverID: 30, ReceiverID: 20})
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("wrong driver role: err = %v, want ErrInvalidInput", err)
	}

	resp, err := svc.Create(context.Background(), &CreateDeliveryInput{
		DriverID:           10,
		ReceiverID:         20,
		CurrentTemperature: 3.5,
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if resp.Status != "pending" {
		t.Errorf("default status = %s, want pending", resp.Status)
	}
	if resp.DriverName != "dave" || resp.ReceiverName != "rita" {
		t.Errorf("resolved names = %s/%s", resp.DriverName, resp.ReceiverName)
	}
}

func TestDeliveryService_List_RoleScoping(t *testing.T) {
	var calls []string
	deliveryRepo := &fakeDeliveryRepo{
		listFn: func(ctx context.Context, offset, limit int) ([]*models.Delivery, int64, error) {
			calls = append(calls, "all")
			return nil, 0, nil
		},
		listByDriverFn: func(ctx context.Context, driverID uint, offset, limit int) ([]*models.Delivery, int64, error) {
			calls = append(calls, "driver")
			return nil, 0, nil
		},
		listByRcvStFn: func(ctx context.Context, receiverID, statusID uint, offset, limit int) ([]*models.Delivery, int64, error) {
			calls = append(calls, "receiver")
			if statusID != fakeStatuses["delivered"].ID {
				t.Errorf("receiver listing used status %d, want delivered", statusID)
			}
			return nil, 0, nil
		},
	}
	svc := NewDeliveryService(deliveryRepo, &fakeStatusRepo{}, &fakeUserRepo{}, &fakeHub{})

	for _, actor := range []Actor{
		{UserID: 1, Role: domain.RoleAdmin},
		{UserID: 2, Role: domain.RoleDispatcher},
		{UserID: 10, Role: domain.RoleDriver},
		{UserID: 20, Role: domain.RoleReceiver},
	} {
		if _, _, err := svc.List(context.Background(), actor, 0, 100); err != nil {
			t.Fatalf("List(%s) returned error: %v", actor.Role, err)
		}
	}

	want := []string{"all", "all", "driver", "receiver"}
	if len(calls) != len(want) {
		t.Fatalf("calls = %v, want %v", calls, want)
	}
	for i := range want {
		if calls[i] != want[i] {
			t.Errorf("call %d = %s, want %s", i, calls[i], want[i])
		}
	}
}

func TestDeliveryService_Stats(t *testing.T) {
	deliveryRepo := &fakeDeliveryRepo{
		countTotalFn: func(ctx context.Context) (int64, error) { return 12, nil },
		countByStatusFn: func(ctx context.Context) (repositories.DeliveryStatusCounts, error) {
			return repositories.DeliveryStatusCounts{"pending": 5, "completed": 7}, nil
		},
		averageTemperatureFn: func(ctx context.Context) (float64, error) { return 4.2, nil },
		countByStatusSinceFn: func(ctx context.Context, statusID uint, since time.Time) (int64, error) {
			if statusID != fakeStatuses["completed"].ID {
				t.Errorf("counted status %d, want completed", statusID)
			}
			if since.After(time.Now().UTC()) {
				t.Errorf("since %v is in the future", since)
			}
			return 3, nil
		},
	}
	svc := NewDeliveryService(deliveryRepo, &fakeStatusRepo{}, &fakeUserRepo{}, &fakeHub{})

	stats, err := svc.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats returned error: %v", err)
	}

	if stats.TotalDeliveries != 12 {
		t.Errorf("total = %d, want 12", stats.TotalDeliveries)
	}
	if stats.ByStatus["pending"] != 5 || stats.ByStatus["completed"] != 7 {
		t.Errorf("by status = %v", stats.ByStatus)
	}
	if stats.AverageTemperature != 4.2 {
		t.Errorf("avg temp = %.2f, want 4.2", stats.AverageTemperature)
	}
	if stats.CompletedToday != 3 {
		t.Errorf("completed today = %d, want 3", stats.CompletedToday)
	}
}

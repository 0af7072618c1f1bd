package repositories

import (
	"testing"
	"time"
)

func TestDeliveryRepository_UpdateStatusIf(t *testing.T) {
	db := setupTestDB(t)
	seedVocabulary(t, db)
	repo := NewDeliveryRepository(db)

	driver := mustCreateUser(t, db, "dave", "driver")
	receiver := mustCreateUser(t, db, "rita", "receiver")
	pending := statusID(t, db, "pending")
	inTransit := statusID(t, db, "in_transit")
	delivered := statusID(t, db, "delivered")

	d := mustCreateDelivery(t, db, pending, driver.ID, receiver.ID, 4.0)

	ok, err := repo.UpdateStatusIf(ctx(), d.ID, pending, inTransit)
	if err != nil {
		t.Fatalf("UpdateStatusIf returned error: %v", err)
	}
	if !ok {
		t.Fatal("expected transition to apply")
	}

	got, err := repo.GetByID(ctx(), d.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.StatusID != inTransit {
		t.Fatalf("status id = %d, want %d", got.StatusID, inTransit)
	}

	// second writer still holding the stale observed status loses
	ok, err = repo.UpdateStatusIf(ctx(), d.ID, pending, delivered)
	if err != nil {
		t.Fatalf("UpdateStatusIf returned error: %v", err)
	}
	if ok {
		t.Fatal("stale conditional update must match zero rows")
	}

	got, _ = repo.GetByID(ctx(), d.ID)
	if got.StatusID != inTransit {
		t.Fatalf("lost writer mutated status to %d", got.StatusID)
	}
}

func TestDeliveryRepository_ListScopes(t *testing.T) {
	db := setupTestDB(t)
	seedVocabulary(t, db)
	repo := NewDeliveryRepository(db)

	driverA := mustCreateUser(t, db, "dave", "driver")
	driverB := mustCreateUser(t, db, "dina", "driver")
	receiver := mustCreateUser(t, db, "rita", "receiver")
	pending := statusID(t, db, "pending")
	delivered := statusID(t, db, "delivered")

	mustCreateDelivery(t, db, pending, driverA.ID, receiver.ID, 4.0)
	mustCreateDelivery(t, db, delivered, driverA.ID, receiver.ID, 5.0)
	mustCreateDelivery(t, db, delivered, driverB.ID, receiver.ID, 6.0)

	all, total, err := repo.List(ctx(), 0, 100)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 3 || len(all) != 3 {
		t.Fatalf("List = %d rows, total %d, want 3/3", len(all), total)
	}
	if all[0].Driver.Username == "" || all[0].Status.Name == "" {
		t.Error("relations not preloaded")
	}

	byDriver, total, err := repo.ListByDriver(ctx(), driverA.ID, 0, 100)
	if err != nil {
		t.Fatalf("ListByDriver: %v", err)
	}
	if total != 2 || len(byDriver) != 2 {
		t.Fatalf("ListByDriver = %d/%d, want 2/2", len(byDriver), total)
	}

	byReceiver, total, err := repo.ListByReceiverAndStatus(ctx(), receiver.ID, delivered, 0, 100)
	if err != nil {
		t.Fatalf("ListByReceiverAndStatus: %v", err)
	}
	if total != 2 || len(byReceiver) != 2 {
		t.Fatalf("ListByReceiverAndStatus = %d/%d, want 2/2", len(byReceiver), total)
	}

	byStatus, total, err := repo.ListByStatus(ctx(), pending, 0, 100)
	if err != nil {
		t.Fatalf("ListByStatus: %v", err)
	}
	if total != 1 || len(byStatus) != 1 {
		t.Fatalf("ListByStatus = %d/%d, want 1/1", len(byStatus), total)
	}

	// pagination trims rows but keeps the full count
	page, total, err := repo.List(ctx(), 0, 2)
	if err != nil {
		t.Fatalf("List page: %v", err)
	}
	if len(page) != 2 || total != 3 {
		t.Fatalf("page = %d rows, total %d, want 2 rows of 3", len(page), total)
	}
}

func TestDeliveryRepository_Aggregates(t *testing.T) {
	db := setupTestDB(t)
	seedVocabulary(t, db)
	repo := NewDeliveryRepository(db)

	avg, err := repo.AverageTemperature(ctx())
	if err != nil {
		t.Fatalf("AverageTemperature: %v", err)
	}
	if avg != 0 {
		t.Fatalf("avg on empty table = %.2f, want 0", avg)
	}

	driver := mustCreateUser(t, db, "dave", "driver")
	receiver := mustCreateUser(t, db, "rita", "receiver")
	pending := statusID(t, db, "pending")
	completed := statusID(t, db, "completed")

	mustCreateDelivery(t, db, pending, driver.ID, receiver.ID, 2.0)
	mustCreateDelivery(t, db, completed, driver.ID, receiver.ID, 4.0)
	mustCreateDelivery(t, db, completed, driver.ID, receiver.ID, 6.0)

	total, err := repo.CountTotal(ctx())
	if err != nil {
		t.Fatalf("CountTotal: %v", err)
	}
	if total != 3 {
		t.Fatalf("total = %d, want 3", total)
	}

	counts, err := repo.CountByStatus(ctx())
	if err != nil {
		t.Fatalf("CountByStatus: %v", err)
	}
	if counts["pending"] != 1 || counts["completed"] != 2 {
		t.Fatalf("counts = %v", counts)
	}

	avg, err = repo.AverageTemperature(ctx())
	if err != nil {
		t.Fatalf("AverageTemperature: %v", err)
	}
	if avg != 4.0 {
		t.Fatalf("avg = %.2f, want 4.0", avg)
	}

	since := time.Now().UTC().Add(-time.Hour)
	completedRecent, err := repo.CountByStatusSince(ctx(), completed, since)
	if err != nil {
		t.Fatalf("CountByStatusSince: %v", err)
	}
	if completedRecent != 2 {
		t.Fatalf("completed since = %d, want 2", completedRecent)
	}

	future := time.Now().UTC().Add(time.Hour)
	none, err := repo.CountByStatusSince(ctx(), completed, future)
	if err != nil {
		t.Fatalf("CountByStatusSince: %v", err)
	}
	if none != 0 {
		t.Fatalf("completed since future = %d, want 0", none)
	}
}

package repositories

import (
	"errors"
	"testing"
	"time"

	"coldtrack/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

func TestSensorRepository_WindowQueries(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSensorRepository(db)

	now := time.Now().UTC()
	mustCreateReading(t, db, "truck-1", 4.0, now.Add(-30*time.Minute))
	mustCreateReading(t, db, "truck-1", 9.5, now.Add(-10*time.Minute))
	mustCreateReading(t, db, "truck-1", 6.0, now.Add(-48*time.Hour))
	mustCreateReading(t, db, "truck-2", 11.0, now.Add(-5*time.Minute))

	within, err := repo.ListBySensorSince(ctx(), "truck-1", now.Add(-time.Hour))
	if err != nil {
		t.Fatalf("ListBySensorSince: %v", err)
	}
	if len(within) != 2 {
		t.Fatalf("window rows = %d, want 2", len(within))
	}
	// newest first
	if within[0].Temperature != 9.5 {
		t.Errorf("first row temp = %.1f, want newest 9.5", within[0].Temperature)
	}

	above, err := repo.ListAboveSince(ctx(), 8.0, now.Add(-time.Hour))
	if err != nil {
		t.Fatalf("ListAboveSince: %v", err)
	}
	if len(above) != 2 {
		t.Fatalf("above rows = %d, want 2", len(above))
	}
	for _, r := range above {
		if r.Temperature <= 8.0 {
			t.Errorf("reading %.1f at or below threshold returned", r.Temperature)
		}
	}
}

func TestSensorRepository_Latest(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSensorRepository(db)

	now := time.Now().UTC()
	mustCreateReading(t, db, "truck-1", 4.0, now.Add(-2*time.Hour))
	newest := mustCreateReading(t, db, "truck-1", 5.5, now)

	got, err := repo.Latest(ctx(), "truck-1")
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if got.ID != newest.ID {
		t.Fatalf("latest id = %d, want %d", got.ID, newest.ID)
	}

	if _, err := repo.Latest(ctx(), "ghost"); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("err = %v, want gorm.ErrRecordNotFound", err)
	}
}

func TestSensorRepository_Filter(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSensorRepository(db)

	now := time.Now().UTC()
	mustCreateReading(t, db, "truck-1", 4.0, now.Add(-3*time.Hour))
	mustCreateReading(t, db, "truck-1", 9.0, now.Add(-2*time.Hour))
	mustCreateReading(t, db, "truck-2", 9.0, now.Add(-1*time.Hour))

	start := now.Add(-4 * time.Hour)
	end := now
	minTemp := 8.0

	rows, total, err := repo.Filter(ctx(), &SensorReadingFilter{
		SensorID:       "truck-1",
		StartDate:      &start,
		EndDate:        &end,
		MinTemperature: &minTemp,
	}, 0, 100)
	if err != nil {
		t.Fatalf("Filter: %v", err)
	}
	if total != 1 || len(rows) != 1 {
		t.Fatalf("filter = %d/%d rows, want 1/1", len(rows), total)
	}
	if rows[0].SensorID != "truck-1" || rows[0].Temperature != 9.0 {
		t.Fatalf("filter row = %+v", rows[0])
	}

	// empty filter matches everything
	all, total, err := repo.Filter(ctx(), &SensorReadingFilter{}, 0, 100)
	if err != nil {
		t.Fatalf("Filter empty: %v", err)
	}
	if total != 3 || len(all) != 3 {
		t.Fatalf("empty filter = %d/%d rows, want 3/3", len(all), total)
	}
}

func TestSensorRepository_BatchAndDistinct(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSensorRepository(db)

	now := time.Now().UTC()
	batch := []*models.SensorReading{
		{SensorID: "truck-1", Temperature: 4, Timestamp: now},
		{SensorID: "truck-2", Temperature: 5, Timestamp: now},
		{SensorID: "truck-1", Temperature: 6, Timestamp: now},
	}
	if err := repo.CreateBatch(ctx(), batch); err != nil {
		t.Fatalf("CreateBatch: %v", err)
	}

	if err := repo.CreateBatch(ctx(), nil); err != nil {
		t.Fatalf("empty batch must be a no-op, got %v", err)
	}

	_, total, err := repo.List(ctx(), 0, 100)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 3 {
		t.Fatalf("total = %d, want 3", total)
	}

	ids, err := repo.DistinctSensorIDs(ctx())
	if err != nil {
		t.Fatalf("DistinctSensorIDs: %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("distinct ids = %v, want 2", ids)
	}
}

package repository_test

import (
	"database/sql"
	"fmt"
	"os"
	"testing"
	"time"

	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"autorenta/internal/db"
	apperrors "autorenta/internal/errors"
	"autorenta/internal/repository"
)

// These tests need a real Postgres with the migrations applied. They are
// skipped unless TEST_DSN is set.
func openTestDB(t *testing.T) *sql.DB {
	dsn := os.Getenv("TEST_DSN")
	if dsn == "" {
		t.Skip("TEST_DSN not set, skipping repository tests")
	}
	database, err := sql.Open("postgres", dsn)
	require.NoError(t, err)
	require.NoError(t, database.Ping())
	return database
}

func seedVehicleAndUser(t *testing.T, database *sql.DB) (vehicleID, userID int) {
	plate := fmt.Sprintf("TST%d", time.Now().UnixNano()%100000)
	err := database.QueryRow(
		`INSERT INTO vehicles (brand, model, plate, price_per_day, status) VALUES ('Kia', 'Rio', $1, 90, 'available') RETURNING id`,
		plate,
	).Scan(&vehicleID)
	require.NoError(t, err)

	email := fmt.Sprintf("test%d@example.com", time.Now().UnixNano())
	err = database.QueryRow(
		`INSERT INTO users (name, email, password_hash) VALUES ('Test', $1, 'x') RETURNING id`,
		email,
	).Scan(&userID)
	require.NoError(t, err)

	t.Cleanup(func() {
		database.Exec(`DELETE FROM reservation_status_history WHERE reservation_id IN (SELECT id FROM reservations WHERE vehicle_id = $1)`, vehicleID)
		database.Exec(`DELETE FROM reservations WHERE vehicle_id = $1`, vehicleID)
		database.Exec(`DELETE FROM vehicles WHERE id = $1`, vehicleID)
		database.Exec(`DELETE FROM users WHERE id = $1`, userID)
	})
	return vehicleID, userID
}

func TestReservationRoundTrip(t *testing.T) {
	database := openTestDB(t)
	defer database.Close()
	repo := repository.NewReservationRepository(database)

	vehicleID, userID := seedVehicleAndUser(t, database)

	start := time.Date(2030, 6, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(3 * 24 * time.Hour)
	res := &db.Reservation{
		UserID:           userID,
		VehicleID:        vehicleID,
		StartDate:        start,
		EndDate:          end,
		DurationDays:     3,
		TotalCost:        270,
		Status:           db.StatusPending,
		DeliveryLocation: "Airport",
		ReturnLocation:   "Downtown",
		StatusHistory: []db.StatusChange{{
			Status: db.StatusPending, Comment: "Reservation created", ChangedAt: time.Now().UTC(),
		}},
	}
	require.NoError(t, repo.Create(res))
	require.NotZero(t, res.ID)

	got, err := repo.GetByID(res.ID)
	require.NoError(t, err)
	assert.Equal(t, db.StatusPending, got.Status)
	assert.Equal(t, 3, got.DurationDays)
	assert.EqualValues(t, 270, got.TotalCost)
	require.Len(t, got.StatusHistory, 1)

	conflict, err := repo.HasConflict(vehicleID, start.Add(24*time.Hour), start.Add(2*24*time.Hour), 0)
	require.NoError(t, err)
	assert.True(t, conflict)

	conflict, err = repo.HasConflict(vehicleID, start.Add(24*time.Hour), start.Add(2*24*time.Hour), res.ID)
	require.NoError(t, err)
	assert.False(t, conflict)

	require.NoError(t, repo.UpdateStatus(res.ID, db.StatusCancelled, "Reservation cancelled"))

	got, err = repo.GetByID(res.ID)
	require.NoError(t, err)
	assert.Equal(t, db.StatusCancelled, got.Status)
	require.Len(t, got.StatusHistory, 2)
	assert.Equal(t, db.StatusCancelled, got.StatusHistory[1].Status)

	// Cancelled reservations never block.
	conflict, err = repo.HasConflict(vehicleID, start, end, 0)
	require.NoError(t, err)
	assert.False(t, conflict)
}

func TestCreateRejectsOverlapInTransaction(t *testing.T) {
	database := openTestDB(t)
	defer database.Close()
	repo := repository.NewReservationRepository(database)

	vehicleID, userID := seedVehicleAndUser(t, database)

	start := time.Date(2030, 7, 1, 0, 0, 0, 0, time.UTC)
	first := &db.Reservation{
		UserID: userID, VehicleID: vehicleID,
		StartDate: start, EndDate: start.Add(3 * 24 * time.Hour),
		DurationDays: 3, TotalCost: 270, Status: db.StatusPending,
		DeliveryLocation: "A", ReturnLocation: "B",
		StatusHistory: []db.StatusChange{{Status: db.StatusPending, ChangedAt: time.Now().UTC()}},
	}
	require.NoError(t, repo.Create(first))

	second := &db.Reservation{
		UserID: userID, VehicleID: vehicleID,
		StartDate: start.Add(24 * time.Hour), EndDate: start.Add(2 * 24 * time.Hour),
		DurationDays: 1, TotalCost: 90, Status: db.StatusPending,
		DeliveryLocation: "A", ReturnLocation: "B",
		StatusHistory: []db.StatusChange{{Status: db.StatusPending, ChangedAt: time.Now().UTC()}},
	}
	err := repo.Create(second)
	require.Error(t, err)
	assert.Equal(t, apperrors.KindConflict, apperrors.KindOf(err))
}

func TestGetByIDNotFound(t *testing.T) {
	database := openTestDB(t)
	defer database.Close()
	repo := repository.NewReservationRepository(database)

	_, err := repo.GetByID(-1)
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
}

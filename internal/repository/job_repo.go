package repository

import (
	"database/sql"
	"fmt"
	"log"

	"github.com/lib/pq"

	"autorenta/internal/db"
)

type JobRepository struct {
	DB *sql.DB
}

func NewJobRepository(database *sql.DB) *JobRepository {
	return &JobRepository{DB: database}
}

// HeldVehicleIDsWithoutActiveReservation finds vehicles stuck in 'held' with
// no active reservation explaining the hold. This happens when the vehicle
// status write failed after a reservation reached a terminal state.
func (r *JobRepository) HeldVehicleIDsWithoutActiveReservation() ([]int, error) {
	query := `
		SELECT v.id FROM vehicles v
		WHERE v.status = $1
		  AND NOT EXISTS (
			SELECT 1 FROM reservations r
			WHERE r.vehicle_id = v.id AND r.status = ANY($2)
		  )`
	rows, err := r.DB.Query(query, db.VehicleHeld, pq.Array(db.ActiveStatuses))
	if err != nil {
		return nil, fmt.Errorf("error querying orphaned held vehicles: %w", err)
	}
	defer rows.Close()

	var ids []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("error scanning vehicle ID: %w", err)
		}
		ids = append(ids, id)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error after iterating rows: %w", err)
	}
	return ids, nil
}

// ReleaseVehicles flips a batch of held vehicles back to available.
func (r *JobRepository) ReleaseVehicles(ids []int) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	result, err := r.DB.Exec(
		`UPDATE vehicles SET status = $1, updated_at = NOW() WHERE id = ANY($2) AND status = $3`,
		db.VehicleAvailable, pq.Array(ids), db.VehicleHeld,
	)
	if err != nil {
		return 0, fmt.Errorf("error releasing vehicles: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		log.Printf("Could not get rows affected: %v", err)
		return 0, nil
	}
	return affected, nil
}

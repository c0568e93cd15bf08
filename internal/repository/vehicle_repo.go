package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"autorenta/internal/db"
	apperrors "autorenta/internal/errors"
)

// VehicleRepository is the narrow gateway the booking engine uses to read a
// vehicle and flip its status between available and held. Catalog management
// (maintenance, inactive, pricing) belongs to a different surface and is
// never overridden here.
type VehicleRepository struct {
	DB *sql.DB
}

func NewVehicleRepository(database *sql.DB) *VehicleRepository {
	return &VehicleRepository{DB: database}
}

func (r *VehicleRepository) GetByID(id int) (*db.Vehicle, error) {
	var v db.Vehicle
	query := `
		SELECT id, brand, model, plate, price_per_day, status, created_at, updated_at
		FROM vehicles WHERE id = $1`
	err := r.DB.QueryRow(query, id).Scan(
		&v.ID, &v.Brand, &v.Model, &v.Plate, &v.PricePerDay, &v.Status, &v.CreatedAt, &v.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("vehicle %d not found", id)
		}
		return nil, fmt.Errorf("error querying vehicle %d: %w", id, err)
	}
	return &v, nil
}

func (r *VehicleRepository) ListAvailable() ([]db.Vehicle, error) {
	query := `
		SELECT id, brand, model, plate, price_per_day, status, created_at, updated_at
		FROM vehicles WHERE status = $1 ORDER BY brand, model`
	rows, err := r.DB.Query(query, db.VehicleAvailable)
	if err != nil {
		return nil, fmt.Errorf("error listing available vehicles: %w", err)
	}
	defer rows.Close()

	var vehicles []db.Vehicle
	for rows.Next() {
		var v db.Vehicle
		if err := rows.Scan(&v.ID, &v.Brand, &v.Model, &v.Plate, &v.PricePerDay, &v.Status, &v.CreatedAt, &v.UpdatedAt); err != nil {
			return nil, fmt.Errorf("error scanning vehicle: %w", err)
		}
		vehicles = append(vehicles, v)
	}
	return vehicles, rows.Err()
}

// MarkHeld commits the vehicle to an active reservation. Calling it on a
// vehicle already held is a no-op.
func (r *VehicleRepository) MarkHeld(id int) error {
	return r.setStatus(id, db.VehicleHeld, db.VehicleAvailable)
}

// MarkAvailable releases the vehicle after a reservation winds down. It only
// flips a held vehicle: maintenance and inactive are owned by the catalog
// and must survive a release.
func (r *VehicleRepository) MarkAvailable(id int) error {
	return r.setStatus(id, db.VehicleAvailable, db.VehicleHeld)
}

func (r *VehicleRepository) setStatus(id int, target, from db.VehicleStatus) error {
	result, err := r.DB.Exec(
		`UPDATE vehicles SET status = $1, updated_at = NOW() WHERE id = $2 AND status IN ($1, $3)`,
		target, id, from,
	)
	if err != nil {
		return fmt.Errorf("error updating vehicle %d status: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		// Either the vehicle does not exist or it is in a state this
		// gateway never touches. Only the former is an error.
		var exists bool
		if err := r.DB.QueryRow(`SELECT EXISTS(SELECT 1 FROM vehicles WHERE id = $1)`, id).Scan(&exists); err != nil {
			return fmt.Errorf("error checking vehicle %d: %w", id, err)
		}
		if !exists {
			return apperrors.NotFound("vehicle %d not found", id)
		}
	}
	return nil
}

package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/lib/pq"

	"autorenta/internal/db"
	"autorenta/internal/entities"
	apperrors "autorenta/internal/errors"
)

type ReservationRepository struct {
	DB *sql.DB
}

func NewReservationRepository(database *sql.DB) *ReservationRepository {
	return &ReservationRepository{DB: database}
}

// Create inserts the reservation and its first history entry in one
// transaction. The vehicle row is locked and the overlap scan re-run inside
// the transaction so two concurrent creates for the same vehicle cannot both
// pass the check.
func (r *ReservationRepository) Create(res *db.Reservation) error {
	tx, err := r.DB.Begin()
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}
	defer tx.Rollback()

	var vehicleStatus db.VehicleStatus
	err = tx.QueryRow(`SELECT status FROM vehicles WHERE id = $1 FOR UPDATE`, res.VehicleID).Scan(&vehicleStatus)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperrors.NotFound("vehicle %d not found", res.VehicleID)
		}
		return fmt.Errorf("error locking vehicle %d: %w", res.VehicleID, err)
	}
	if vehicleStatus != db.VehicleAvailable {
		return apperrors.Conflict("vehicle is not available for booking")
	}

	conflict, err := hasConflict(tx, res.VehicleID, res.StartDate, res.EndDate, 0)
	if err != nil {
		return err
	}
	if conflict {
		return apperrors.Conflict("vehicle already has a reservation in those dates")
	}

	query := `
		INSERT INTO reservations
		(user_id, vehicle_id, start_date, end_date, duration_days, total_cost, status,
		 payment_method, payment_completed, payment_receipt_ref,
		 delivery_location, return_location, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, NOW(), NOW())
		RETURNING id, created_at, updated_at`
	err = tx.QueryRow(query,
		res.UserID,
		res.VehicleID,
		res.StartDate,
		res.EndDate,
		res.DurationDays,
		res.TotalCost,
		res.Status,
		res.PaymentMethod,
		res.PaymentCompleted,
		res.PaymentReceiptRef,
		res.DeliveryLocation,
		res.ReturnLocation,
		res.Notes,
	).Scan(&res.ID, &res.CreatedAt, &res.UpdatedAt)
	if err != nil {
		return fmt.Errorf("error inserting reservation: %w", err)
	}

	for _, change := range res.StatusHistory {
		if err := appendHistory(tx, res.ID, change); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// HasConflict reports whether any active reservation on the vehicle
// intersects [start, end]. Touching endpoints count as overlapping.
// excludeID skips one reservation, used when re-checking an edit in place.
func (r *ReservationRepository) HasConflict(vehicleID int, start, end time.Time, excludeID int) (bool, error) {
	return hasConflict(r.DB, vehicleID, start, end, excludeID)
}

type queryer interface {
	QueryRow(query string, args ...interface{}) *sql.Row
}

func hasConflict(q queryer, vehicleID int, start, end time.Time, excludeID int) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM reservations
			WHERE vehicle_id = $1
			  AND status = ANY($2)
			  AND start_date <= $3
			  AND end_date >= $4
			  AND ($5 = 0 OR id <> $5)
		)`
	var conflict bool
	err := q.QueryRow(query, vehicleID, pq.Array(db.ActiveStatuses), end, start, excludeID).Scan(&conflict)
	if err != nil {
		return false, fmt.Errorf("error checking reservation overlap: %w", err)
	}
	return conflict, nil
}

func (r *ReservationRepository) GetByID(id int) (*db.Reservation, error) {
	var res db.Reservation
	query := `
		SELECT id, user_id, vehicle_id, start_date, end_date, duration_days, total_cost, status,
		       payment_method, payment_completed, payment_receipt_ref,
		       delivery_location, return_location, notes, created_at, updated_at
		FROM reservations WHERE id = $1`
	err := r.DB.QueryRow(query, id).Scan(
		&res.ID, &res.UserID, &res.VehicleID, &res.StartDate, &res.EndDate,
		&res.DurationDays, &res.TotalCost, &res.Status,
		&res.PaymentMethod, &res.PaymentCompleted, &res.PaymentReceiptRef,
		&res.DeliveryLocation, &res.ReturnLocation, &res.Notes,
		&res.CreatedAt, &res.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("reservation %d not found", id)
		}
		return nil, fmt.Errorf("error querying reservation %d: %w", id, err)
	}

	history, err := r.loadHistory(id)
	if err != nil {
		return nil, err
	}
	res.StatusHistory = history
	return &res, nil
}

func (r *ReservationRepository) loadHistory(reservationID int) ([]db.StatusChange, error) {
	rows, err := r.DB.Query(
		`SELECT status, comment, changed_at FROM reservation_status_history
		 WHERE reservation_id = $1 ORDER BY id`,
		reservationID,
	)
	if err != nil {
		return nil, fmt.Errorf("error querying status history: %w", err)
	}
	defer rows.Close()

	var history []db.StatusChange
	for rows.Next() {
		var c db.StatusChange
		if err := rows.Scan(&c.Status, &c.Comment, &c.ChangedAt); err != nil {
			return nil, fmt.Errorf("error scanning status history: %w", err)
		}
		history = append(history, c)
	}
	return history, rows.Err()
}

// UpdateDates rewrites the date range plus the derived duration and cost,
// re-running the overlap scan under the vehicle lock. A history entry is
// appended with the reservation's current status.
func (r *ReservationRepository) UpdateDates(res *db.Reservation, comment string) error {
	tx, err := r.DB.Begin()
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`SELECT 1 FROM vehicles WHERE id = $1 FOR UPDATE`, res.VehicleID); err != nil {
		return fmt.Errorf("error locking vehicle %d: %w", res.VehicleID, err)
	}

	conflict, err := hasConflict(tx, res.VehicleID, res.StartDate, res.EndDate, res.ID)
	if err != nil {
		return err
	}
	if conflict {
		return apperrors.Conflict("vehicle is not available in those dates")
	}

	query := `
		UPDATE reservations
		SET start_date = $1, end_date = $2, duration_days = $3, total_cost = $4, updated_at = NOW()
		WHERE id = $5
		RETURNING updated_at`
	err = tx.QueryRow(query, res.StartDate, res.EndDate, res.DurationDays, res.TotalCost, res.ID).Scan(&res.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperrors.NotFound("reservation %d not found", res.ID)
		}
		return fmt.Errorf("error updating reservation %d: %w", res.ID, err)
	}

	change := db.StatusChange{Status: res.Status, Comment: comment, ChangedAt: time.Now().UTC()}
	if err := appendHistory(tx, res.ID, change); err != nil {
		return err
	}
	res.StatusHistory = append(res.StatusHistory, change)

	return tx.Commit()
}

// UpdateStatus sets the new status and appends the matching history entry
// atomically.
func (r *ReservationRepository) UpdateStatus(id int, status db.ReservationStatus, comment string) error {
	tx, err := r.DB.Begin()
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(`UPDATE reservations SET status = $1, updated_at = NOW() WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("error updating reservation %d status: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return apperrors.NotFound("reservation %d not found", id)
	}

	change := db.StatusChange{Status: status, Comment: comment, ChangedAt: time.Now().UTC()}
	if err := appendHistory(tx, id, change); err != nil {
		return err
	}

	return tx.Commit()
}

type execer interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
}

func appendHistory(e execer, reservationID int, change db.StatusChange) error {
	_, err := e.Exec(
		`INSERT INTO reservation_status_history (reservation_id, status, comment, changed_at)
		 VALUES ($1, $2, $3, $4)`,
		reservationID, change.Status, change.Comment, change.ChangedAt,
	)
	if err != nil {
		return fmt.Errorf("error appending status history: %w", err)
	}
	return nil
}

// List returns a page of reservations matching the filter, newest first.
func (r *ReservationRepository) List(filter entities.ReservationFilter) (*entities.ReservationsList, error) {
	where := " WHERE 1=1"
	args := []interface{}{}
	idx := 1

	if filter.UserID != 0 {
		where += " AND user_id = $" + strconv.Itoa(idx)
		args = append(args, filter.UserID)
		idx++
	}
	if filter.VehicleID != 0 {
		where += " AND vehicle_id = $" + strconv.Itoa(idx)
		args = append(args, filter.VehicleID)
		idx++
	}
	if filter.Status != "" {
		where += " AND status = $" + strconv.Itoa(idx)
		args = append(args, filter.Status)
		idx++
	}
	if !filter.From.IsZero() {
		where += " AND start_date >= $" + strconv.Itoa(idx)
		args = append(args, filter.From)
		idx++
	}
	if !filter.To.IsZero() {
		where += " AND start_date <= $" + strconv.Itoa(idx)
		args = append(args, filter.To)
		idx++
	}

	var total int64
	if err := r.DB.QueryRow("SELECT COUNT(*) FROM reservations"+where, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("error counting reservations: %w", err)
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	limit := filter.Limit
	if limit < 1 {
		limit = 10
	}
	offset := (page - 1) * limit

	query := `
		SELECT id, user_id, vehicle_id, start_date, end_date, duration_days, total_cost, status,
		       payment_method, payment_completed, payment_receipt_ref,
		       delivery_location, return_location, notes, created_at, updated_at
		FROM reservations` + where +
		" ORDER BY created_at DESC LIMIT $" + strconv.Itoa(idx) + " OFFSET $" + strconv.Itoa(idx+1)
	args = append(args, limit, offset)

	rows, err := r.DB.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing reservations: %w", err)
	}
	defer rows.Close()

	reservations := []db.Reservation{}
	for rows.Next() {
		var res db.Reservation
		err := rows.Scan(
			&res.ID, &res.UserID, &res.VehicleID, &res.StartDate, &res.EndDate,
			&res.DurationDays, &res.TotalCost, &res.Status,
			&res.PaymentMethod, &res.PaymentCompleted, &res.PaymentReceiptRef,
			&res.DeliveryLocation, &res.ReturnLocation, &res.Notes,
			&res.CreatedAt, &res.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning reservation: %w", err)
		}
		reservations = append(reservations, res)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	totalPages := int((total + int64(limit) - 1) / int64(limit))
	return &entities.ReservationsList{
		Total:        total,
		Page:         page,
		Limit:        limit,
		TotalPages:   totalPages,
		Reservations: reservations,
	}, nil
}

// Stats aggregates counts by status, revenue over completed reservations and
// the five most-booked vehicles.
func (r *ReservationRepository) Stats() (*entities.ReservationStats, error) {
	stats := &entities.ReservationStats{ByStatus: map[db.ReservationStatus]int64{}}

	if err := r.DB.QueryRow(`SELECT COUNT(*) FROM reservations`).Scan(&stats.Total); err != nil {
		return nil, fmt.Errorf("error counting reservations: %w", err)
	}

	rows, err := r.DB.Query(`SELECT status, COUNT(*) FROM reservations GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("error grouping reservations by status: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var status db.ReservationStatus
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("error scanning status count: %w", err)
		}
		stats.ByStatus[status] = count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	err = r.DB.QueryRow(
		`SELECT COALESCE(SUM(total_cost), 0) FROM reservations WHERE status = $1`,
		db.StatusCompleted,
	).Scan(&stats.Revenue)
	if err != nil {
		return nil, fmt.Errorf("error summing revenue: %w", err)
	}

	topQuery := `
		SELECT v.id, v.brand, v.model, v.plate, COUNT(r.id) AS reservations, COALESCE(SUM(r.total_cost), 0) AS revenue
		FROM reservations r
		JOIN vehicles v ON v.id = r.vehicle_id
		GROUP BY v.id, v.brand, v.model, v.plate
		ORDER BY reservations DESC
		LIMIT 5`
	topRows, err := r.DB.Query(topQuery)
	if err != nil {
		return nil, fmt.Errorf("error querying top vehicles: %w", err)
	}
	defer topRows.Close()
	for topRows.Next() {
		var u entities.VehicleUsage
		if err := topRows.Scan(&u.VehicleID, &u.Brand, &u.Model, &u.Plate, &u.Reservations, &u.Revenue); err != nil {
			return nil, fmt.Errorf("error scanning vehicle usage: %w", err)
		}
		stats.TopVehicles = append(stats.TopVehicles, u)
	}
	return stats, topRows.Err()
}

package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"autorenta/internal/db"
	"autorenta/internal/entities"
)

type DashboardRepository struct {
	DB *sql.DB
}

func NewDashboardRepository(database *sql.DB) *DashboardRepository {
	return &DashboardRepository{DB: database}
}

// Summary collects the aggregate counters for the admin dashboard in one
// pass. Reads use the store's default consistency; these are informational.
func (r *DashboardRepository) Summary() (*entities.DashboardSummary, error) {
	s := &entities.DashboardSummary{ByStatus: map[db.ReservationStatus]int64{}}

	counts := []struct {
		query string
		args  []interface{}
		dest  *int64
	}{
		{`SELECT COUNT(*) FROM users WHERE role = $1`, []interface{}{db.RoleUser}, &s.TotalUsers},
		{`SELECT COUNT(*) FROM vehicles`, nil, &s.TotalVehicles},
		{`SELECT COUNT(*) FROM reservations`, nil, &s.TotalReservations},
		{`SELECT COUNT(*) FROM vehicles WHERE status = $1`, []interface{}{db.VehicleAvailable}, &s.AvailableVehicles},
		{`SELECT COUNT(*) FROM reservations WHERE status = ANY($1)`, []interface{}{pq.Array(db.ActiveStatuses)}, &s.ActiveReservations},
		{`SELECT COALESCE(SUM(total_cost), 0) FROM reservations WHERE status = $1`, []interface{}{db.StatusCompleted}, &s.Revenue},
	}
	for _, c := range counts {
		if err := r.DB.QueryRow(c.query, c.args...).Scan(c.dest); err != nil {
			return nil, fmt.Errorf("error querying dashboard counter: %w", err)
		}
	}

	now := time.Now().UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	err := r.DB.QueryRow(
		`SELECT COALESCE(SUM(total_cost), 0) FROM reservations WHERE status = $1 AND updated_at >= $2`,
		db.StatusCompleted, monthStart,
	).Scan(&s.MonthRevenue)
	if err != nil {
		return nil, fmt.Errorf("error querying month revenue: %w", err)
	}

	err = r.DB.QueryRow(`SELECT COUNT(*) FROM users WHERE created_at >= $1`, monthStart).Scan(&s.NewUsersThisMonth)
	if err != nil {
		return nil, fmt.Errorf("error counting new users: %w", err)
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
		s.ByStatus[status] = count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var heldVehicles int64
	err = r.DB.QueryRow(`SELECT COUNT(*) FROM vehicles WHERE status = $1`, db.VehicleHeld).Scan(&heldVehicles)
	if err != nil {
		return nil, fmt.Errorf("error counting held vehicles: %w", err)
	}
	if s.TotalVehicles > 0 {
		s.OccupancyRate = float64(heldVehicles) / float64(s.TotalVehicles) * 100
	}

	latest, err := r.latestReservations(5)
	if err != nil {
		return nil, err
	}
	s.LatestReservations = latest

	return s, nil
}

func (r *DashboardRepository) latestReservations(limit int) ([]db.Reservation, error) {
	query := `
		SELECT id, user_id, vehicle_id, start_date, end_date, duration_days, total_cost, status,
		       delivery_location, return_location, created_at, updated_at
		FROM reservations ORDER BY created_at DESC LIMIT $1`
	rows, err := r.DB.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("error querying latest reservations: %w", err)
	}
	defer rows.Close()

	var reservations []db.Reservation
	for rows.Next() {
		var res db.Reservation
		err := rows.Scan(
			&res.ID, &res.UserID, &res.VehicleID, &res.StartDate, &res.EndDate,
			&res.DurationDays, &res.TotalCost, &res.Status,
			&res.DeliveryLocation, &res.ReturnLocation, &res.CreatedAt, &res.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning reservation: %w", err)
		}
		reservations = append(reservations, res)
	}
	return reservations, rows.Err()
}

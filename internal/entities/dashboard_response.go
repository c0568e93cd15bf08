package entities

import "autorenta/internal/db"

// DashboardSummary backs the admin landing page.
type DashboardSummary struct {
	TotalUsers         int64                          `json:"total_users"`
	TotalVehicles      int64                          `json:"total_vehicles"`
	TotalReservations  int64                          `json:"total_reservations"`
	AvailableVehicles  int64                          `json:"available_vehicles"`
	ActiveReservations int64                          `json:"active_reservations"`
	Revenue            int64                          `json:"revenue"`
	MonthRevenue       int64                          `json:"month_revenue"`
	NewUsersThisMonth  int64                          `json:"new_users_this_month"`
	OccupancyRate      float64                        `json:"occupancy_rate"`
	ByStatus           map[db.ReservationStatus]int64 `json:"reservations_by_status"`
	LatestReservations []db.Reservation               `json:"latest_reservations"`
}

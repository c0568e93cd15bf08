package entities

import "autorenta/internal/db"

// VehicleUsage ranks a vehicle by how often it was booked.
type VehicleUsage struct {
	VehicleID    int    `json:"vehicle_id"`
	Brand        string `json:"brand"`
	Model        string `json:"model"`
	Plate        string `json:"plate"`
	Reservations int64  `json:"reservations"`
	Revenue      int64  `json:"revenue"`
}

// ReservationStats is the aggregate view over all reservations. Revenue only
// counts completed reservations.
type ReservationStats struct {
	Total       int64                          `json:"total"`
	ByStatus    map[db.ReservationStatus]int64 `json:"by_status"`
	Revenue     int64                          `json:"revenue"`
	TopVehicles []VehicleUsage                 `json:"top_vehicles"`
}

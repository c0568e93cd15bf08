package entities

import (
	"time"

	"autorenta/internal/db"
)

// ReservationFilter narrows admin listing queries. Zero values mean "no
// filter". UserID is forced to the caller for non-admins.
type ReservationFilter struct {
	UserID    int
	VehicleID int
	Status    db.ReservationStatus
	From      time.Time
	To        time.Time
	Page      int
	Limit     int
}

type ReservationsList struct {
	Total        int64            `json:"total"`
	Page         int              `json:"page"`
	Limit        int              `json:"limit"`
	TotalPages   int              `json:"total_pages"`
	Reservations []db.Reservation `json:"reservations"`
}

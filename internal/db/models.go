package db

import "time"

// ReservationStatus is the closed set of states a reservation moves through.
type ReservationStatus string

const (
	StatusPending    ReservationStatus = "pending"
	StatusConfirmed  ReservationStatus = "confirmed"
	StatusInProgress ReservationStatus = "in_progress"
	StatusCompleted  ReservationStatus = "completed"
	StatusCancelled  ReservationStatus = "cancelled"
)

// Valid reports whether s is one of the five defined statuses.
func (s ReservationStatus) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Active reports whether a reservation in this status blocks overlapping
// bookings on the same vehicle.
func (s ReservationStatus) Active() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusInProgress:
		return true
	}
	return false
}

// Releases reports whether entering this status frees the vehicle.
func (s ReservationStatus) Releases() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// ActiveStatuses is the set used in SQL IN clauses for overlap scans.
var ActiveStatuses = []string{
	string(StatusPending),
	string(StatusConfirmed),
	string(StatusInProgress),
}

type VehicleStatus string

const (
	VehicleAvailable   VehicleStatus = "available"
	VehicleHeld        VehicleStatus = "held"
	VehicleMaintenance VehicleStatus = "maintenance"
	VehicleInactive    VehicleStatus = "inactive"
)

// Vehicle is the partial catalog view the booking engine works with.
// Full catalog management lives elsewhere; the engine only reads the price
// and flips status between available and held.
type Vehicle struct {
	ID          int           `json:"id"`
	Brand       string        `json:"brand"`
	Model       string        `json:"model"`
	Plate       string        `json:"plate"`
	PricePerDay int64         `json:"price_per_day"`
	Status      VehicleStatus `json:"status"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// StatusChange is one entry of a reservation's append-only history.
type StatusChange struct {
	Status    ReservationStatus `json:"status"`
	Comment   string            `json:"comment"`
	ChangedAt time.Time         `json:"changed_at"`
}

type Reservation struct {
	ID                int               `json:"id"`
	UserID            int               `json:"user_id"`
	VehicleID         int               `json:"vehicle_id"`
	StartDate         time.Time         `json:"start_date"`
	EndDate           time.Time         `json:"end_date"`
	DurationDays      int               `json:"duration_days"`
	TotalCost         int64             `json:"total_cost"`
	Status            ReservationStatus `json:"status"`
	PaymentMethod     string            `json:"payment_method,omitempty"`
	PaymentCompleted  bool              `json:"payment_completed"`
	PaymentReceiptRef string            `json:"payment_receipt_ref,omitempty"`
	DeliveryLocation  string            `json:"delivery_location"`
	ReturnLocation    string            `json:"return_location"`
	Notes             string            `json:"notes,omitempty"`
	StatusHistory     []StatusChange    `json:"status_history"`
	CreatedAt         time.Time         `json:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at"`
}

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID           int       `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone"`
	Role         string    `json:"role"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

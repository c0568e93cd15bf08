package entities

import "time"

// CreateReservationInput is the validated service-level request to book a
// vehicle. Dates are already normalized to midnight UTC by the handler.
type CreateReservationInput struct {
	VehicleID        int
	StartDate        time.Time
	EndDate          time.Time
	DeliveryLocation string
	ReturnLocation   string
	Notes            string
	PaymentMethod    string
}

type UpdateDatesInput struct {
	StartDate time.Time
	EndDate   time.Time
}

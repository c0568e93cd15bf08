package api

// Wire-level request shapes. Dates travel as strings ("2006-01-02" or
// RFC3339) and are parsed before reaching the services.

type CreateReservationRequest struct {
	VehicleID        int    `json:"vehicle_id"`
	StartDate        string `json:"start_date"`
	EndDate          string `json:"end_date"`
	DeliveryLocation string `json:"delivery_location"`
	ReturnLocation   string `json:"return_location"`
	Notes            string `json:"notes"`
	PaymentMethod    string `json:"payment_method"`
}

type UpdateDatesRequest struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

type ChangeStatusRequest struct {
	Status  string `json:"status"`
	Comment string `json:"comment"`
}

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token string `json:"token"`
}

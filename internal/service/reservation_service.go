package service

import (
	"log"
	"strings"
	"sync"
	"time"

	"autorenta/internal/db"
	"autorenta/internal/entities"
	apperrors "autorenta/internal/errors"
	"autorenta/internal/utils"
)

const (
	maxReservationDays = 30
	maxNotesLength     = 300
)

// ReservationStore persists reservations. The Postgres implementation lives
// in internal/repository; tests use an in-memory one.
type ReservationStore interface {
	Create(res *db.Reservation) error
	GetByID(id int) (*db.Reservation, error)
	HasConflict(vehicleID int, start, end time.Time, excludeID int) (bool, error)
	UpdateDates(res *db.Reservation, comment string) error
	UpdateStatus(id int, status db.ReservationStatus, comment string) error
	List(filter entities.ReservationFilter) (*entities.ReservationsList, error)
	Stats() (*entities.ReservationStats, error)
}

// VehicleGateway is the narrow view of the vehicle catalog the engine needs:
// read a vehicle, hold it, release it. Both flips are idempotent and release
// never overrides maintenance or inactive.
type VehicleGateway interface {
	GetByID(id int) (*db.Vehicle, error)
	MarkHeld(id int) error
	MarkAvailable(id int) error
}

type ReservationService struct {
	store    ReservationStore
	vehicles VehicleGateway

	mu    sync.Mutex
	locks map[int]*sync.Mutex
}

func NewReservationService(store ReservationStore, vehicles VehicleGateway) *ReservationService {
	return &ReservationService{
		store:    store,
		vehicles: vehicles,
		locks:    make(map[int]*sync.Mutex),
	}
}

// lockVehicle serializes conflict-check-plus-write sequences per vehicle so
// two concurrent creates with overlapping ranges cannot both pass the scan.
// The Postgres store additionally locks the vehicle row in its transaction.
func (s *ReservationService) lockVehicle(vehicleID int) func() {
	s.mu.Lock()
	l, ok := s.locks[vehicleID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[vehicleID] = l
	}
	s.mu.Unlock()
	l.Lock()
	return l.Unlock
}

// Create books a vehicle for [StartDate, EndDate]. The reservation starts in
// pending with its first history entry, and the vehicle is marked held.
func (s *ReservationService) Create(userID int, in entities.CreateReservationInput) (*db.Reservation, error) {
	fields := map[string]string{}
	if in.VehicleID == 0 {
		fields["vehicle_id"] = "vehicle is required"
	}
	if in.StartDate.IsZero() {
		fields["start_date"] = "start date is required"
	}
	if in.EndDate.IsZero() {
		fields["end_date"] = "end date is required"
	}
	if strings.TrimSpace(in.DeliveryLocation) == "" {
		fields["delivery_location"] = "delivery location is required"
	}
	if strings.TrimSpace(in.ReturnLocation) == "" {
		fields["return_location"] = "return location is required"
	}
	if len(in.Notes) > maxNotesLength {
		fields["notes"] = "notes cannot exceed 300 characters"
	}
	if len(fields) > 0 {
		return nil, apperrors.FieldValidation("please complete all required fields", fields)
	}

	start := utils.StartOfDay(in.StartDate)
	end := utils.StartOfDay(in.EndDate)
	if err := validateDateRange(start, end); err != nil {
		return nil, err
	}

	unlock := s.lockVehicle(in.VehicleID)
	defer unlock()

	vehicle, err := s.vehicles.GetByID(in.VehicleID)
	if err != nil {
		return nil, err
	}
	if vehicle.Status != db.VehicleAvailable {
		return nil, apperrors.Conflict("vehicle is not available for booking")
	}

	conflict, err := s.store.HasConflict(in.VehicleID, start, end, 0)
	if err != nil {
		return nil, err
	}
	if conflict {
		return nil, apperrors.Conflict("vehicle already has a reservation in those dates")
	}

	days := utils.DurationDays(start, end)
	res := &db.Reservation{
		UserID:           userID,
		VehicleID:        in.VehicleID,
		StartDate:        start,
		EndDate:          end,
		DurationDays:     days,
		TotalCost:        int64(days) * vehicle.PricePerDay,
		Status:           db.StatusPending,
		PaymentMethod:    in.PaymentMethod,
		DeliveryLocation: in.DeliveryLocation,
		ReturnLocation:   in.ReturnLocation,
		Notes:            in.Notes,
		StatusHistory: []db.StatusChange{{
			Status:    db.StatusPending,
			Comment:   "Reservation created",
			ChangedAt: time.Now().UTC(),
		}},
	}

	if err := s.store.Create(res); err != nil {
		return nil, err
	}

	// Reservation write is the source of truth; the hold is applied after
	// and retried rather than rolling the reservation back.
	s.flipVehicle(res.VehicleID, s.vehicles.MarkHeld, "hold")

	return res, nil
}

// UpdateDates moves a pending or confirmed reservation to a new range,
// recomputing duration and cost at the vehicle's current price.
func (s *ReservationService) UpdateDates(id, actorID int, actorIsAdmin bool, in entities.UpdateDatesInput) (*db.Reservation, error) {
	res, err := s.store.GetByID(id)
	if err != nil {
		return nil, err
	}
	if !actorIsAdmin && res.UserID != actorID {
		return nil, apperrors.Forbidden("you do not have permission to edit this reservation")
	}
	if res.Status != db.StatusPending && res.Status != db.StatusConfirmed {
		return nil, apperrors.Conflict("only pending or confirmed reservations can be edited")
	}

	start := utils.StartOfDay(in.StartDate)
	end := utils.StartOfDay(in.EndDate)
	if err := validateDateRange(start, end); err != nil {
		return nil, err
	}

	unlock := s.lockVehicle(res.VehicleID)
	defer unlock()

	conflict, err := s.store.HasConflict(res.VehicleID, start, end, res.ID)
	if err != nil {
		return nil, err
	}
	if conflict {
		return nil, apperrors.Conflict("vehicle is not available in those dates")
	}

	vehicle, err := s.vehicles.GetByID(res.VehicleID)
	if err != nil {
		return nil, err
	}

	days := utils.DurationDays(start, end)
	res.StartDate = start
	res.EndDate = end
	res.DurationDays = days
	res.TotalCost = int64(days) * vehicle.PricePerDay

	if err := s.store.UpdateDates(res, "Dates updated"); err != nil {
		return nil, err
	}
	return res, nil
}

// Cancel moves the reservation to cancelled and releases the vehicle. A
// completed reservation can never be cancelled.
func (s *ReservationService) Cancel(id, actorID int, actorIsAdmin bool) (*db.Reservation, error) {
	res, err := s.store.GetByID(id)
	if err != nil {
		return nil, err
	}
	if !actorIsAdmin && res.UserID != actorID {
		return nil, apperrors.Forbidden("you do not have permission to cancel this reservation")
	}
	if res.Status == db.StatusCompleted {
		return nil, apperrors.Conflict("a completed reservation cannot be cancelled")
	}

	if err := s.store.UpdateStatus(id, db.StatusCancelled, "Reservation cancelled"); err != nil {
		return nil, err
	}

	s.flipVehicle(res.VehicleID, s.vehicles.MarkAvailable, "release")

	return s.store.GetByID(id)
}

// ChangeStatus is the admin-driven transition: any of the five statuses may
// be set from any other. Entering completed or cancelled releases the
// vehicle.
func (s *ReservationService) ChangeStatus(id int, status db.ReservationStatus, comment string) (*db.Reservation, error) {
	if !status.Valid() {
		return nil, apperrors.Validation("invalid status %q", status)
	}

	res, err := s.store.GetByID(id)
	if err != nil {
		return nil, err
	}

	if comment == "" {
		comment = "Status changed to " + string(status)
	}
	if err := s.store.UpdateStatus(id, status, comment); err != nil {
		return nil, err
	}

	if status.Releases() {
		s.flipVehicle(res.VehicleID, s.vehicles.MarkAvailable, "release")
	}

	return s.store.GetByID(id)
}

// GetForActor returns the reservation when the actor owns it or is an admin.
func (s *ReservationService) GetForActor(id, actorID int, actorIsAdmin bool) (*db.Reservation, error) {
	res, err := s.store.GetByID(id)
	if err != nil {
		return nil, err
	}
	if !actorIsAdmin && res.UserID != actorID {
		return nil, apperrors.Forbidden("you do not have permission to view this reservation")
	}
	return res, nil
}

// ListMine returns every reservation owned by the user, newest first.
func (s *ReservationService) ListMine(userID int) (*entities.ReservationsList, error) {
	return s.store.List(entities.ReservationFilter{UserID: userID, Limit: 100})
}

// List is the admin listing with filters and pagination.
func (s *ReservationService) List(filter entities.ReservationFilter) (*entities.ReservationsList, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, apperrors.Validation("invalid status %q", filter.Status)
	}
	return s.store.List(filter)
}

func (s *ReservationService) Stats() (*entities.ReservationStats, error) {
	return s.store.Stats()
}

// flipVehicle applies a vehicle status side effect with one retry. A failure
// after retry is logged and left to the reconciliation job; a stuck held
// vehicle costs less than a double booking or a vanished reservation.
func (s *ReservationService) flipVehicle(vehicleID int, flip func(int) error, action string) {
	err := flip(vehicleID)
	if err == nil {
		return
	}
	log.Printf("vehicle %d: %s failed, retrying: %v", vehicleID, action, err)
	if err := flip(vehicleID); err != nil {
		depErr := apperrors.Dependency("vehicle status update failed after retry", err)
		log.Printf("vehicle %d: %s left for reconciler: %v", vehicleID, action, depErr)
	}
}

func validateDateRange(start, end time.Time) error {
	today := utils.StartOfDay(time.Now())
	if start.Before(today) {
		return apperrors.Validation("start date must be today or later")
	}
	if !end.After(start) {
		return apperrors.Validation("end date must be after start date")
	}
	if utils.DurationDays(start, end) > maxReservationDays {
		return apperrors.Validation("a reservation cannot exceed %d days", maxReservationDays)
	}
	return nil
}

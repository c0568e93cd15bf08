package service

import (
	"fmt"
	"log"

	"autorenta/internal/repository"
)

type JobService struct {
	Repo *repository.JobRepository
}

func NewJobService(repo *repository.JobRepository) *JobService {
	return &JobService{Repo: repo}
}

// ReleaseOrphanedHolds releases vehicles left in 'held' with no active
// reservation. This is the compensation leg for vehicle status writes that
// failed after a reservation reached completed or cancelled; it never
// touches reservation statuses.
func (s *JobService) ReleaseOrphanedHolds() error {
	vehicleIDs, err := s.Repo.HeldVehicleIDsWithoutActiveReservation()
	if err != nil {
		return fmt.Errorf("reconciler: failed to find orphaned holds: %w", err)
	}

	if len(vehicleIDs) == 0 {
		return nil
	}

	log.Printf("Reconciler: found %d held vehicles without an active reservation. IDs: %v", len(vehicleIDs), vehicleIDs)

	released, err := s.Repo.ReleaseVehicles(vehicleIDs)
	if err != nil {
		return fmt.Errorf("reconciler: failed to release vehicles: %w", err)
	}

	log.Printf("Reconciler: released %d vehicles back to 'available'.", released)
	return nil
}

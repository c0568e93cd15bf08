package api

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	apperrors "autorenta/internal/errors"
	"autorenta/internal/repository"
)

// VehicleHandler exposes the read-only catalog views users browse before
// booking. Catalog mutations are not part of this service.
type VehicleHandler struct {
	Repo *repository.VehicleRepository
}

func NewVehicleHandler(repo *repository.VehicleRepository) *VehicleHandler {
	return &VehicleHandler{Repo: repo}
}

func (h *VehicleHandler) ListAvailable(w http.ResponseWriter, r *http.Request) {
	vehicles, err := h.Repo.ListAvailable()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, vehicles)
}

func (h *VehicleHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, apperrors.Validation("invalid vehicle ID"))
		return
	}
	vehicle, err := h.Repo.GetByID(id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, vehicle)
}

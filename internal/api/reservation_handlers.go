package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"autorenta/internal/auth"
	"autorenta/internal/entities"
	apperrors "autorenta/internal/errors"
	"autorenta/internal/service"
	"autorenta/internal/utils"
)

type ReservationHandler struct {
	Service *service.ReservationService
}

func NewReservationHandler(svc *service.ReservationService) *ReservationHandler {
	return &ReservationHandler{Service: svc}
}

func (h *ReservationHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req CreateReservationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.Validation("invalid request body"))
		return
	}

	in := entities.CreateReservationInput{
		VehicleID:        req.VehicleID,
		DeliveryLocation: req.DeliveryLocation,
		ReturnLocation:   req.ReturnLocation,
		Notes:            req.Notes,
		PaymentMethod:    req.PaymentMethod,
	}
	fields := map[string]string{}
	if req.StartDate != "" {
		start, err := utils.ParseDate(req.StartDate)
		if err != nil {
			fields["start_date"] = "invalid date"
		}
		in.StartDate = start
	}
	if req.EndDate != "" {
		end, err := utils.ParseDate(req.EndDate)
		if err != nil {
			fields["end_date"] = "invalid date"
		}
		in.EndDate = end
	}
	if len(fields) > 0 {
		writeError(w, apperrors.FieldValidation("invalid dates", fields))
		return
	}

	res, err := h.Service.Create(userID, in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func (h *ReservationHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	list, err := h.Service.ListMine(userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *ReservationHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, apperrors.Validation("invalid reservation ID"))
		return
	}
	userID, _ := auth.UserID(r)

	res, err := h.Service.GetForActor(id, userID, auth.IsAdmin(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *ReservationHandler) UpdateDates(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, apperrors.Validation("invalid reservation ID"))
		return
	}
	userID, _ := auth.UserID(r)

	var req UpdateDatesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.Validation("invalid request body"))
		return
	}
	start, err := utils.ParseDate(req.StartDate)
	if err != nil {
		writeError(w, apperrors.Validation("invalid start date"))
		return
	}
	end, err := utils.ParseDate(req.EndDate)
	if err != nil {
		writeError(w, apperrors.Validation("invalid end date"))
		return
	}

	res, err := h.Service.UpdateDates(id, userID, auth.IsAdmin(r), entities.UpdateDatesInput{StartDate: start, EndDate: end})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *ReservationHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, apperrors.Validation("invalid reservation ID"))
		return
	}
	userID, _ := auth.UserID(r)

	res, err := h.Service.Cancel(id, userID, auth.IsAdmin(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

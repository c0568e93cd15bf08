package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"autorenta/internal/db"
	"autorenta/internal/entities"
	apperrors "autorenta/internal/errors"
	"autorenta/internal/service"
	"autorenta/internal/utils"
)

type AdminHandler struct {
	Reservations *service.ReservationService
	Dashboard    *service.DashboardService
}

func NewAdminHandler(reservations *service.ReservationService, dashboard *service.DashboardService) *AdminHandler {
	return &AdminHandler{Reservations: reservations, Dashboard: dashboard}
}

func (h *AdminHandler) ListReservations(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := entities.ReservationFilter{
		Status: db.ReservationStatus(q.Get("status")),
	}
	if v := q.Get("vehicle_id"); v != "" {
		id, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, apperrors.Validation("invalid vehicle_id"))
			return
		}
		filter.VehicleID = id
	}
	if v := q.Get("user_id"); v != "" {
		id, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, apperrors.Validation("invalid user_id"))
			return
		}
		filter.UserID = id
	}
	if v := q.Get("from"); v != "" {
		from, err := utils.ParseDate(v)
		if err != nil {
			writeError(w, apperrors.Validation("invalid from date"))
			return
		}
		filter.From = from
	}
	if v := q.Get("to"); v != "" {
		to, err := utils.ParseDate(v)
		if err != nil {
			writeError(w, apperrors.Validation("invalid to date"))
			return
		}
		filter.To = to
	}
	filter.Page, _ = strconv.Atoi(q.Get("page"))
	filter.Limit, _ = strconv.Atoi(q.Get("limit"))

	list, err := h.Reservations.List(filter)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *AdminHandler) ChangeStatus(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, apperrors.Validation("invalid reservation ID"))
		return
	}

	var req ChangeStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.Validation("invalid request body"))
		return
	}
	if req.Status == "" {
		writeError(w, apperrors.Validation("status is required"))
		return
	}

	res, err := h.Reservations.ChangeStatus(id, db.ReservationStatus(req.Status), req.Comment)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *AdminHandler) ReservationStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Reservations.Stats()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *AdminHandler) DashboardSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.Dashboard.Summary()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

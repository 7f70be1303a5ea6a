package handler

import (
	"encoding/json"
	"net/http"

	"fleet-dispatch/internal/common/auth"
	"fleet-dispatch/internal/common/httpx"
	"fleet-dispatch/internal/shift/service"
)

type ShiftHandler struct {
	shifts *service.ShiftService
}

func NewShiftHandler(shifts *service.ShiftService) *ShiftHandler {
	return &ShiftHandler{shifts: shifts}
}

func (h *ShiftHandler) CreateShift(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.FromContext(r)
	if !ok {
		http.Error(w, "unauthenticated", http.StatusUnauthorized)
		return
	}

	var req service.CreateShiftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	shift, err := h.shifts.CreateShift(r.Context(), actor, req)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, shift)
}

func (h *ShiftHandler) GetShift(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.FromContext(r)
	if !ok {
		http.Error(w, "unauthenticated", http.StatusUnauthorized)
		return
	}

	shift, err := h.shifts.GetShift(r.Context(), actor, r.PathValue("shift_id"))
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, shift)
}

func (h *ShiftHandler) ListShifts(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.FromContext(r)
	if !ok {
		http.Error(w, "unauthenticated", http.StatusUnauthorized)
		return
	}

	shifts, err := h.shifts.ListShifts(r.Context(), actor, r.URL.Query().Get("agency"))
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, shifts)
}

func (h *ShiftHandler) UpdateShift(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.FromContext(r)
	if !ok {
		http.Error(w, "unauthenticated", http.StatusUnauthorized)
		return
	}

	var req service.UpdateShiftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	shift, err := h.shifts.UpdateShift(r.Context(), actor, r.PathValue("shift_id"), req)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, shift)
}

func (h *ShiftHandler) DeleteShift(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.FromContext(r)
	if !ok {
		http.Error(w, "unauthenticated", http.StatusUnauthorized)
		return
	}

	if err := h.shifts.DeleteShift(r.Context(), actor, r.PathValue("shift_id")); err != nil {
		httpx.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

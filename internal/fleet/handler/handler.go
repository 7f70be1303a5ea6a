package handler

import (
	"encoding/json"
	"net/http"

	"fleet-dispatch/internal/common/auth"
	"fleet-dispatch/internal/common/httpx"
	"fleet-dispatch/internal/fleet/model"
	"fleet-dispatch/internal/fleet/service"
)

type FleetHandler struct {
	registry *service.Registry
}

func NewFleetHandler(registry *service.Registry) *FleetHandler {
	return &FleetHandler{registry: registry}
}

func (h *FleetHandler) CreateBus(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.FromContext(r)
	if !ok {
		http.Error(w, "unauthenticated", http.StatusUnauthorized)
		return
	}

	var req service.CreateBusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	bus, err := h.registry.CreateBus(r.Context(), actor, req)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, bus)
}

func (h *FleetHandler) CreateDriver(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.FromContext(r)
	if !ok {
		http.Error(w, "unauthenticated", http.StatusUnauthorized)
		return
	}

	var req service.CreateDriverRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	driver, err := h.registry.CreateDriver(r.Context(), actor, req)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, driver)
}

type statusRequest struct {
	AgencyName string `json:"agency_name,omitempty"`
	Status     string `json:"status"`
}

func (h *FleetHandler) UpdateBusStatus(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.FromContext(r)
	if !ok {
		http.Error(w, "unauthenticated", http.StatusUnauthorized)
		return
	}

	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	err := h.registry.UpdateBusStatus(r.Context(), actor, req.AgencyName, r.PathValue("plate_number"), model.BusStatus(req.Status))
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *FleetHandler) UpdateDriverStatus(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.FromContext(r)
	if !ok {
		http.Error(w, "unauthenticated", http.StatusUnauthorized)
		return
	}

	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	err := h.registry.UpdateDriverStatus(r.Context(), actor, req.AgencyName, r.PathValue("driver"), model.DriverStatus(req.Status))
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *FleetHandler) ListBuses(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.FromContext(r)
	if !ok {
		http.Error(w, "unauthenticated", http.StatusUnauthorized)
		return
	}

	buses, err := h.registry.ListBuses(r.Context(), actor, r.URL.Query().Get("agency"))
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, buses)
}

func (h *FleetHandler) ListDrivers(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.FromContext(r)
	if !ok {
		http.Error(w, "unauthenticated", http.StatusUnauthorized)
		return
	}

	drivers, err := h.registry.ListDrivers(r.Context(), actor, r.URL.Query().Get("agency"))
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, drivers)
}

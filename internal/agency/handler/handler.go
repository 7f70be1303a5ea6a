package handler

import (
	"encoding/json"
	"net/http"

	"fleet-dispatch/internal/agency/service"
	"fleet-dispatch/internal/authz"
	"fleet-dispatch/internal/common/auth"
	"fleet-dispatch/internal/common/httpx"
)

type AgencyHandler struct {
	agencies *service.AgencyService
}

func NewAgencyHandler(agencies *service.AgencyService) *AgencyHandler {
	return &AgencyHandler{agencies: agencies}
}

func (h *AgencyHandler) CreateAgency(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.FromContext(r)
	if !ok {
		http.Error(w, "unauthenticated", http.StatusUnauthorized)
		return
	}

	var req service.CreateAgencyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	agency, err := h.agencies.CreateAgency(r.Context(), actor, req)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, agency)
}

func (h *AgencyHandler) DeleteAgency(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.FromContext(r)
	if !ok {
		http.Error(w, "unauthenticated", http.StatusUnauthorized)
		return
	}

	if err := h.agencies.DeleteAgency(r.Context(), actor, r.PathValue("name")); err != nil {
		httpx.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AgencyHandler) ListAgencies(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.FromContext(r)
	if !ok {
		http.Error(w, "unauthenticated", http.StatusUnauthorized)
		return
	}

	agencies, err := h.agencies.ListAgencies(r.Context(), actor)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, agencies)
}

func (h *AgencyHandler) ChangeUserRole(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.FromContext(r)
	if !ok {
		http.Error(w, "unauthenticated", http.StatusUnauthorized)
		return
	}

	var req struct {
		Role string `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	if err := h.agencies.ChangeUserRole(r.Context(), actor, r.PathValue("user_id"), authz.Role(req.Role)); err != nil {
		httpx.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

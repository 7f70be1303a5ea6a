package handler

import (
	"encoding/json"
	"net/http"

	"fleet-dispatch/internal/common/auth"
	"fleet-dispatch/internal/common/httpx"
	"fleet-dispatch/internal/parcel/handler/dto"
	"fleet-dispatch/internal/parcel/service"
)

type PackageHandler struct {
	packages *service.PackageService
}

func NewPackageHandler(packages *service.PackageService) *PackageHandler {
	return &PackageHandler{packages: packages}
}

func (h *PackageHandler) CreatePackage(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.FromContext(r)
	if !ok {
		http.Error(w, "unauthenticated", http.StatusUnauthorized)
		return
	}

	var req service.CreatePackageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	pkg, warning, err := h.packages.CreatePackage(r.Context(), actor, req)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, dto.PackageResponse{Package: pkg, Warning: warning})
}

func (h *PackageHandler) GetPackage(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.FromContext(r)
	if !ok {
		http.Error(w, "unauthenticated", http.StatusUnauthorized)
		return
	}

	pkg, err := h.packages.GetPackage(r.Context(), actor, r.PathValue("package_id"))
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, pkg)
}

func (h *PackageHandler) UpdatePackage(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.FromContext(r)
	if !ok {
		http.Error(w, "unauthenticated", http.StatusUnauthorized)
		return
	}

	var req service.UpdatePackageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	pkg, warning, err := h.packages.UpdatePackage(r.Context(), actor, r.PathValue("package_id"), req)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, dto.PackageResponse{Package: pkg, Warning: warning})
}

func (h *PackageHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.FromContext(r)
	if !ok {
		http.Error(w, "unauthenticated", http.StatusUnauthorized)
		return
	}

	var req dto.StatusChangeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	pkg, err := h.packages.UpdateStatus(r.Context(), actor, r.PathValue("package_id"), req.Status, req.Notes)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, pkg)
}

func (h *PackageHandler) DeletePackage(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.FromContext(r)
	if !ok {
		http.Error(w, "unauthenticated", http.StatusUnauthorized)
		return
	}

	if err := h.packages.DeletePackage(r.Context(), actor, r.PathValue("package_id")); err != nil {
		httpx.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

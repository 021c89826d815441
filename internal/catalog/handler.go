package catalog

import (
	"errors"
	"net/http"

	"github.com/ChefJodlak/prooptica-sub000/internal/http/respond"
)

// Handler serves the reference data to clients.
type Handler struct {
	catalog *Catalog
}

// NewHandler creates a catalog handler.
func NewHandler(c *Catalog) *Handler {
	return &Handler{catalog: c}
}

type catalogResponse struct {
	Salons      []Salon      `json:"salons"`
	Specialists []Specialist `json:"specialists"`
	Services    []Service    `json:"services"`
}

// GetCatalog handles GET /catalog.
func (h *Handler) GetCatalog(w http.ResponseWriter, _ *http.Request) {
	respond.JSON(w, http.StatusOK, catalogResponse{
		Salons:      nonNil(h.catalog.Salons()),
		Specialists: nonNil(h.catalog.Specialists()),
		Services:    nonNil(h.catalog.Services()),
	})
}

// GetEligibleSpecialists handles GET /catalog/eligible?salon=&service=.
func (h *Handler) GetEligibleSpecialists(w http.ResponseWriter, r *http.Request) {
	salonID := r.URL.Query().Get("salon")
	if _, err := h.catalog.Salon(salonID); err != nil {
		h.writeLookupError(w, err)
		return
	}
	svc, err := h.catalog.Service(r.URL.Query().Get("service"))
	if err != nil {
		h.writeLookupError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]any{
		"specialists": nonNil(h.catalog.EligibleSpecialists(salonID, svc)),
	})
}

func (h *Handler) writeLookupError(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrNotFound) {
		respond.Error(w, http.StatusNotFound, "not_found", err.Error())
		return
	}
	respond.Error(w, http.StatusInternalServerError, "internal_error", "internal server error")
}

func nonNil[T any](in []T) []T {
	if in == nil {
		return []T{}
	}
	return in
}

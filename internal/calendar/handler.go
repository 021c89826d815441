package calendar

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/ChefJodlak/prooptica-sub000/internal/http/respond"
	"github.com/ChefJodlak/prooptica-sub000/internal/portal"
	"github.com/ChefJodlak/prooptica-sub000/pkg/logging"
)

// Provider is the service behind the HTTP handler.
type Provider interface {
	Calendar(ctx context.Context, req Request) (*CalendarData, error)
}

// Handler serves GET /calendar.
type Handler struct {
	provider Provider
	logger   *logging.Logger
}

// NewHandler creates a calendar handler.
func NewHandler(provider Provider, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{provider: provider, logger: logger}
}

// GetCalendar handles GET /calendar?specialist=&weekStart=&direction=.
func (h *Handler) GetCalendar(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	specialistID := strings.TrimSpace(query.Get("specialist"))
	if specialistID == "" {
		respond.Error(w, http.StatusBadRequest, "invalid_specialist", "specialist is required")
		return
	}

	req := Request{
		SpecialistID: specialistID,
		Week: portal.WeekQuery{
			WeekStart: strings.TrimSpace(query.Get("weekStart")),
			Direction: portal.Direction(strings.TrimSpace(query.Get("direction"))),
		},
	}

	data, err := h.provider.Calendar(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, portal.ErrUnknownSpecialist):
			respond.Error(w, http.StatusBadRequest, "invalid_specialist", "unknown specialist")
		case errors.Is(err, ErrInvalidQuery):
			respond.Error(w, http.StatusBadRequest, "invalid_query", "weekStart (YYYY-MM-DD) and direction (next|prev) must be given together")
		case errors.Is(err, ErrUpstreamFailure):
			respond.Error(w, http.StatusBadGateway, "upstream_failure", "could not load calendar, try again")
		default:
			h.logger.Error("calendar request failed", "specialist_id", specialistID, "error", err)
			respond.Error(w, http.StatusInternalServerError, "internal_error", "internal server error")
		}
		return
	}

	w.Header().Set("Cache-Control", "no-store")
	respond.JSON(w, http.StatusOK, data)
}

package wizard

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ChefJodlak/prooptica-sub000/internal/bookingform"
	"github.com/ChefJodlak/prooptica-sub000/internal/http/respond"
	"github.com/ChefJodlak/prooptica-sub000/pkg/logging"
)

const maxBodyBytes = 64 << 10

// Handler exposes wizard sessions over HTTP.
type Handler struct {
	service *Service
	logger  *logging.Logger
}

// NewHandler creates a wizard handler.
func NewHandler(service *Service, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, logger: logger}
}

// Routes mounts the session endpoints.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/sessions", h.CreateSession)
	r.Get("/sessions/{id}", h.GetSession)
	r.Post("/sessions/{id}/actions", h.ApplyAction)
	r.Post("/sessions/{id}/submit", h.Submit)
}

type createSessionRequest struct {
	SalonID string `json:"salonId"`
}

type sessionResponse struct {
	ID string `json:"id"`
	View
}

type submitResponse struct {
	HandoffURL string `json:"handoffUrl"`
}

// CreateSession handles POST /wizard/sessions.
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := decode(w, r, &req); err != nil && !errors.Is(err, io.EOF) {
		respond.Error(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	session, err := h.service.Create(r.Context(), req.SalonID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	respond.JSON(w, http.StatusCreated, h.response(session))
}

// GetSession handles GET /wizard/sessions/{id}.
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	session, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, h.response(session))
}

// ApplyAction handles POST /wizard/sessions/{id}/actions.
func (h *Handler) ApplyAction(w http.ResponseWriter, r *http.Request) {
	var action Action
	if err := decode(w, r, &action); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	session, err := h.service.Apply(r.Context(), chi.URLParam(r, "id"), action)
	if err != nil {
		h.writeError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, h.response(session))
}

// Submit handles POST /wizard/sessions/{id}/submit.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	var form bookingform.Form
	if err := decode(w, r, &form); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	url, err := h.service.Submit(r.Context(), chi.URLParam(r, "id"), form)
	if err != nil {
		var verr *bookingform.ValidationError
		if errors.As(err, &verr) {
			respond.FieldErrors(w, verr.Fields)
			return
		}
		h.writeError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, submitResponse{HandoffURL: url})
}

func (h *Handler) response(session *Session) sessionResponse {
	return sessionResponse{ID: session.ID, View: h.service.Machine().View(session.Selection)}
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrSessionNotFound):
		respond.Error(w, http.StatusNotFound, "session_not_found", "wizard session not found or expired")
	case errors.Is(err, ErrNotFound):
		respond.Error(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, ErrUnknownAction):
		respond.Error(w, http.StatusBadRequest, "unknown_action", err.Error())
	case errors.Is(err, ErrStepNotReached):
		respond.Error(w, http.StatusConflict, "step_not_reached", err.Error())
	case errors.Is(err, ErrPhoneBookingOnly):
		respond.Error(w, http.StatusConflict, "phone_booking_only", "this service is booked by phone")
	case errors.Is(err, ErrIneligible):
		respond.Error(w, http.StatusUnprocessableEntity, "ineligible", err.Error())
	case errors.Is(err, bookingform.ErrSlotNotSelectable), errors.Is(err, bookingform.ErrHandoffURL):
		respond.Error(w, http.StatusUnprocessableEntity, "invalid_slot", err.Error())
	default:
		h.logger.Error("wizard request failed", "error", err)
		respond.Error(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func decode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/timevault/api/internal/request"
	"github.com/timevault/api/internal/services/tracking"
	"github.com/timevault/api/internal/timeutil"
	"github.com/timevault/api/internal/validation"
)

// TimeEntryHandler handles time entry requests
type TimeEntryHandler struct {
	service *tracking.Service
	now     func() time.Time
}

// NewTimeEntryHandler creates a new time entry handler
func NewTimeEntryHandler(service *tracking.Service) *TimeEntryHandler {
	return &TimeEntryHandler{service: service, now: time.Now}
}

// RegisterRoutes registers time entry routes on the given router
// The router should already have the /time_entries prefix
func (h *TimeEntryHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("", h.CreateEntry).Methods("POST")
	r.HandleFunc("/start/{activity_id}", h.StartEntry).Methods("POST")
	r.HandleFunc("/{id}/stop", h.StopEntry).Methods("PATCH")
	r.HandleFunc("/{id}", h.UpdateEntry).Methods("PATCH")
	r.HandleFunc("", h.ListEntries).Methods("GET")
	r.HandleFunc("/today", h.TodayEntries).Methods("GET")
	r.HandleFunc("/date/{date}", h.DateEntries).Methods("GET")
	r.HandleFunc("/month", h.MonthEntries).Methods("GET")
	r.HandleFunc("/year", h.YearEntries).Methods("GET")
	r.HandleFunc("/tags/{tag}", h.TagEntries).Methods("GET")
	r.HandleFunc("/running", h.RunningEntries).Methods("GET")
}

// CreateTimeEntryRequest represents a create time entry request
type CreateTimeEntryRequest struct {
	ActivityID    uuid.UUID           `json:"activity_id" validate:"required"`
	StartDatetime timeutil.Timestamp  `json:"start_datetime"`
	EndDatetime   *timeutil.Timestamp `json:"end_datetime"`
	Notes         *string             `json:"notes"`
	Tags          []string            `json:"tags"`
}

// UpdateTimeEntryRequest represents a time entry patch. Absent fields stay
// untouched; tags distinguishes absent from empty.
type UpdateTimeEntryRequest struct {
	EndDatetime *timeutil.Timestamp `json:"end_datetime"`
	Notes       *string             `json:"notes"`
	Tags        *[]string           `json:"tags"`
}

// respondTrackingError maps tracking service errors onto their HTTP responses
func respondTrackingError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, tracking.ErrActivityNotFound):
		respondError(w, http.StatusNotFound, "Activity not found")
	case errors.Is(err, tracking.ErrEntryNotFound):
		respondError(w, http.StatusNotFound, "Time entry not found")
	case errors.Is(err, tracking.ErrNotOwner):
		respondError(w, http.StatusForbidden, "Access denied")
	case errors.Is(err, tracking.ErrEntryRunning):
		respondError(w, http.StatusBadRequest, "Another time entry is already running. Please stop it first.")
	case errors.Is(err, tracking.ErrEntryNotRunning):
		respondError(w, http.StatusBadRequest, "Time entry is not running")
	default:
		respondError(w, http.StatusInternalServerError, fallback)
	}
}

// CreateEntry records a time entry with an explicit start and optional end
func (h *TimeEntryHandler) CreateEntry(w http.ResponseWriter, r *http.Request) {
	identity := request.IdentityFromContext(r)
	if identity == nil {
		respondError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	var req CreateTimeEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if maxBytesErr, ok := err.(*http.MaxBytesError); ok {
			respondError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("Request body exceeds maximum size of %d bytes", maxBytesErr.Limit))
			return
		}
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validation.Validate.Struct(req); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			for _, fieldError := range validationErrors {
				respondError(w, http.StatusBadRequest, fmt.Sprintf("Validation failed: %s", fieldError.Error()))
				return
			}
		}
		respondError(w, http.StatusBadRequest, "Validation failed")
		return
	}

	if req.StartDatetime.IsZero() {
		respondError(w, http.StatusBadRequest, "start_datetime is required")
		return
	}

	input := tracking.AddEntryInput{
		ActivityID: req.ActivityID,
		Start:      req.StartDatetime.Time,
		Tags:       req.Tags,
	}
	if req.EndDatetime != nil {
		input.End = &req.EndDatetime.Time
	}
	if req.Notes != nil {
		input.Notes = validation.SanitizeText(*req.Notes)
	}

	entry, err := h.service.AddEntry(r.Context(), identity.UserID, input)
	if err != nil {
		respondTrackingError(w, err, "Failed to create time entry")
		return
	}

	respondJSON(w, http.StatusOK, entry)
}

// StartEntry begins a running entry against an activity, starting now
func (h *TimeEntryHandler) StartEntry(w http.ResponseWriter, r *http.Request) {
	identity := request.IdentityFromContext(r)
	if identity == nil {
		respondError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	vars := mux.Vars(r)
	activityID, err := uuid.Parse(vars["activity_id"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid activity ID")
		return
	}

	entry, err := h.service.StartEntry(r.Context(), identity.UserID, activityID)
	if err != nil {
		respondTrackingError(w, err, "Failed to start time entry")
		return
	}

	respondJSON(w, http.StatusOK, entry)
}

// StopEntry stops a running entry, stamping its end and duration
func (h *TimeEntryHandler) StopEntry(w http.ResponseWriter, r *http.Request) {
	identity := request.IdentityFromContext(r)
	if identity == nil {
		respondError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	vars := mux.Vars(r)
	entryID, err := uuid.Parse(vars["id"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid time entry ID")
		return
	}

	entry, err := h.service.StopEntry(r.Context(), identity.UserID, entryID)
	if err != nil {
		respondTrackingError(w, err, "Failed to stop time entry")
		return
	}

	respondJSON(w, http.StatusOK, entry)
}

// UpdateEntry patches an entry's end datetime, notes, or tags
func (h *TimeEntryHandler) UpdateEntry(w http.ResponseWriter, r *http.Request) {
	identity := request.IdentityFromContext(r)
	if identity == nil {
		respondError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	vars := mux.Vars(r)
	entryID, err := uuid.Parse(vars["id"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid time entry ID")
		return
	}

	var req UpdateTimeEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if maxBytesErr, ok := err.(*http.MaxBytesError); ok {
			respondError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("Request body exceeds maximum size of %d bytes", maxBytesErr.Limit))
			return
		}
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	patch := tracking.EntryPatch{Tags: req.Tags}
	if req.EndDatetime != nil {
		patch.End = &req.EndDatetime.Time
	}
	if req.Notes != nil {
		notes := validation.SanitizeText(*req.Notes)
		patch.Notes = &notes
	}

	entry, err := h.service.UpdateEntry(r.Context(), identity.UserID, entryID, patch)
	if err != nil {
		respondTrackingError(w, err, "Failed to update time entry")
		return
	}

	respondJSON(w, http.StatusOK, entry)
}

// listWith runs the entry query and writes the list response
func (h *TimeEntryHandler) listWith(w http.ResponseWriter, r *http.Request, owner string, filter tracking.EntryFilter) {
	list, err := h.service.ListEntries(r.Context(), owner, filter)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to retrieve time entries")
		return
	}
	respondJSON(w, http.StatusOK, list)
}

// ListEntries lists all entries, optionally scoped to one activity
func (h *TimeEntryHandler) ListEntries(w http.ResponseWriter, r *http.Request) {
	identity := request.IdentityFromContext(r)
	if identity == nil {
		respondError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	var filter tracking.EntryFilter
	if raw := r.URL.Query().Get("activity_id"); raw != "" {
		activityID, err := uuid.Parse(raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid activity ID")
			return
		}
		filter.ActivityID = &activityID
	}

	h.listWith(w, r, identity.UserID, filter)
}

// TodayEntries lists entries whose start falls on the server's current
// calendar date, queried as a UTC day window
func (h *TimeEntryHandler) TodayEntries(w http.ResponseWriter, r *http.Request) {
	identity := request.IdentityFromContext(r)
	if identity == nil {
		respondError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	from, to := timeutil.DayBounds(h.now())
	h.listWith(w, r, identity.UserID, tracking.EntryFilter{StartFrom: &from, StartTo: &to})
}

// DateEntries lists entries whose start falls on the given date
func (h *TimeEntryHandler) DateEntries(w http.ResponseWriter, r *http.Request) {
	identity := request.IdentityFromContext(r)
	if identity == nil {
		respondError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	vars := mux.Vars(r)
	day, err := time.Parse("2006-01-02", vars["date"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid date format. Use YYYY-MM-DD")
		return
	}

	from, to := timeutil.DayBounds(day)
	h.listWith(w, r, identity.UserID, tracking.EntryFilter{StartFrom: &from, StartTo: &to})
}

// MonthEntries lists entries started in the server's current calendar
// month, queried as a UTC month window
func (h *TimeEntryHandler) MonthEntries(w http.ResponseWriter, r *http.Request) {
	identity := request.IdentityFromContext(r)
	if identity == nil {
		respondError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	from, to := timeutil.MonthBounds(h.now())
	h.listWith(w, r, identity.UserID, tracking.EntryFilter{StartFrom: &from, StartTo: &to})
}

// YearEntries lists entries started in the server's current calendar
// year, queried as a UTC year window
func (h *TimeEntryHandler) YearEntries(w http.ResponseWriter, r *http.Request) {
	identity := request.IdentityFromContext(r)
	if identity == nil {
		respondError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	from, to := timeutil.YearBounds(h.now())
	h.listWith(w, r, identity.UserID, tracking.EntryFilter{StartFrom: &from, StartTo: &to})
}

// TagEntries lists entries carrying the given tag
func (h *TimeEntryHandler) TagEntries(w http.ResponseWriter, r *http.Request) {
	identity := request.IdentityFromContext(r)
	if identity == nil {
		respondError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	vars := mux.Vars(r)
	tag := vars["tag"]
	h.listWith(w, r, identity.UserID, tracking.EntryFilter{Tag: &tag})
}

// RunningEntries lists the caller's currently running entries
func (h *TimeEntryHandler) RunningEntries(w http.ResponseWriter, r *http.Request) {
	identity := request.IdentityFromContext(r)
	if identity == nil {
		respondError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	entries, err := h.service.RunningEntries(r.Context(), identity.UserID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to retrieve time entries")
		return
	}

	respondJSON(w, http.StatusOK, entries)
}

package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/timevault/api/internal/request"
	"github.com/timevault/api/internal/services/tracking"
	"github.com/timevault/api/internal/validation"
)

// ActivityHandler handles activity-related requests
type ActivityHandler struct {
	service *tracking.Service
}

// NewActivityHandler creates a new activity handler
func NewActivityHandler(service *tracking.Service) *ActivityHandler {
	return &ActivityHandler{service: service}
}

// RegisterRoutes registers activity routes on the given router
// The router should already have the /activities prefix
func (h *ActivityHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("", h.CreateActivity).Methods("POST")
	r.HandleFunc("", h.ListActivities).Methods("GET")
}

// CreateActivityRequest represents a create activity request
type CreateActivityRequest struct {
	Name        string  `json:"name" validate:"required,max=255"`
	Description *string `json:"description"`
}

// CreateActivity creates a new activity owned by the caller
func (h *ActivityHandler) CreateActivity(w http.ResponseWriter, r *http.Request) {
	identity := request.IdentityFromContext(r)
	if identity == nil {
		respondError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	var req CreateActivityRequest
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

	req.Name = validation.SanitizeText(req.Name)
	if req.Name == "" {
		respondError(w, http.StatusBadRequest, "Name cannot be empty")
		return
	}

	activity, err := h.service.CreateActivity(r.Context(), identity.UserID, req.Name, req.Description)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to create activity")
		return
	}

	respondJSON(w, http.StatusOK, activity)
}

// ListActivities lists the caller's activities
func (h *ActivityHandler) ListActivities(w http.ResponseWriter, r *http.Request) {
	identity := request.IdentityFromContext(r)
	if identity == nil {
		respondError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	activities, err := h.service.ListActivities(r.Context(), identity.UserID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to retrieve activities")
		return
	}

	respondJSON(w, http.StatusOK, activities)
}

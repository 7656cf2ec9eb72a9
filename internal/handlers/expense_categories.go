package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/timevault/api/internal/models"
	"github.com/timevault/api/internal/request"
	"github.com/timevault/api/internal/services/expense"
	"github.com/timevault/api/internal/validation"
)

// ExpenseCategoryHandler handles expense category requests
type ExpenseCategoryHandler struct {
	service *expense.Service
}

// NewExpenseCategoryHandler creates a new expense category handler
func NewExpenseCategoryHandler(service *expense.Service) *ExpenseCategoryHandler {
	return &ExpenseCategoryHandler{service: service}
}

// RegisterRoutes registers expense category routes on the given router
// The router should already have the /expense_categories prefix
func (h *ExpenseCategoryHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("", h.CreateCategory).Methods("POST")
	r.HandleFunc("", h.ListCategories).Methods("GET")
}

// CreateExpenseCategoryRequest represents a create expense category request
type CreateExpenseCategoryRequest struct {
	Name string `json:"name" validate:"required,max=255"`
}

// CreateCategory creates a new expense category owned by the caller
func (h *ExpenseCategoryHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	identity := request.IdentityFromContext(r)
	if identity == nil {
		respondError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	var req CreateExpenseCategoryRequest
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

	category, err := h.service.CreateCategory(r.Context(), identity.UserID, req.Name)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to create expense category")
		return
	}

	respondJSON(w, http.StatusOK, category.Record())
}

// ListCategories lists the caller's expense categories
func (h *ExpenseCategoryHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	identity := request.IdentityFromContext(r)
	if identity == nil {
		respondError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	categories, err := h.service.ListCategories(r.Context(), identity.UserID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to retrieve expense categories")
		return
	}

	records := make([]models.ExpenseCategoryRecord, 0, len(categories))
	for _, category := range categories {
		records = append(records, category.Record())
	}

	respondJSON(w, http.StatusOK, records)
}

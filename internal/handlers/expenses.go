package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/timevault/api/internal/request"
	"github.com/timevault/api/internal/services/expense"
	"github.com/timevault/api/internal/validation"
)

// ExpenseHandler handles expense requests
type ExpenseHandler struct {
	service *expense.Service
}

// NewExpenseHandler creates a new expense handler
func NewExpenseHandler(service *expense.Service) *ExpenseHandler {
	return &ExpenseHandler{service: service}
}

// RegisterRoutes registers expense routes on the given router
// The router should already have the /expenses prefix
func (h *ExpenseHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("", h.CreateExpense).Methods("POST")
	r.HandleFunc("", h.ListExpenses).Methods("GET")
}

// CreateExpenseRequest represents a create expense request. Amount is a
// pointer so zero survives the required check.
type CreateExpenseRequest struct {
	Amount     *float64  `json:"amount" validate:"required"`
	CategoryID uuid.UUID `json:"category_id" validate:"required"`
}

// CreateExpense records an expense against one of the caller's categories
func (h *ExpenseHandler) CreateExpense(w http.ResponseWriter, r *http.Request) {
	identity := request.IdentityFromContext(r)
	if identity == nil {
		respondError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	var req CreateExpenseRequest
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

	created, err := h.service.CreateExpense(r.Context(), identity.UserID, *req.Amount, req.CategoryID)
	if err != nil {
		if errors.Is(err, expense.ErrCategoryNotFound) {
			respondError(w, http.StatusNotFound, "Category not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "Failed to create expense")
		return
	}

	respondJSON(w, http.StatusOK, created)
}

// ListExpenses lists the caller's expenses with category names joined
func (h *ExpenseHandler) ListExpenses(w http.ResponseWriter, r *http.Request) {
	identity := request.IdentityFromContext(r)
	if identity == nil {
		respondError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	expenses, err := h.service.ListExpenses(r.Context(), identity.UserID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to retrieve expenses")
		return
	}

	respondJSON(w, http.StatusOK, expenses)
}

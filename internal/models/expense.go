package models

import (
	"time"

	"github.com/google/uuid"
)

// ExpenseCategory is a user-defined bucket for expenses.
type ExpenseCategory struct {
	ID     uuid.UUID `json:"id"`
	Name   string    `json:"name"`
	UserID string    `json:"user_id"`
}

// Expense is a single spent amount filed under a category.
type Expense struct {
	ID         uuid.UUID `json:"id"`
	Amount     float64   `json:"amount"`
	CategoryID uuid.UUID `json:"category_id"`
	CreatedAt  time.Time `json:"created_at"`
	UserID     string    `json:"user_id"`
}

// ExpenseCategoryRecord is the wire form of a category.
type ExpenseCategoryRecord struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// Record strips the owner id for API responses.
func (c *ExpenseCategory) Record() ExpenseCategoryRecord {
	return ExpenseCategoryRecord{ID: c.ID, Name: c.Name}
}

// ExpenseWithCategory is the wire form of an expense: the expense joined
// with its category's name, "Unknown" when the category no longer exists.
type ExpenseWithCategory struct {
	ID           uuid.UUID `json:"id"`
	Amount       float64   `json:"amount"`
	CategoryID   uuid.UUID `json:"category_id"`
	CategoryName string    `json:"category_name"`
	CreatedAt    time.Time `json:"created_at"`
}

// WithCategory joins an expense with a resolved category name.
func (e *Expense) WithCategory(name string) ExpenseWithCategory {
	return ExpenseWithCategory{
		ID:           e.ID,
		Amount:       e.Amount,
		CategoryID:   e.CategoryID,
		CategoryName: name,
		CreatedAt:    e.CreatedAt,
	}
}

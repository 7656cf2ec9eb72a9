package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/timevault/api/internal/docstore"
	"github.com/timevault/api/internal/models"
)

const (
	collectionExpenseCategories = "expense_categories"
	collectionExpenses          = "expenses"
)

// ExpenseCategoryRepository handles expense category persistence.
type ExpenseCategoryRepository struct {
	store docstore.Store
}

// NewExpenseCategoryRepository creates a new expense category repository.
func NewExpenseCategoryRepository(store docstore.Store) *ExpenseCategoryRepository {
	return &ExpenseCategoryRepository{store: store}
}

// Create persists a new expense category.
func (r *ExpenseCategoryRepository) Create(ctx context.Context, category *models.ExpenseCategory) error {
	if err := r.store.Set(ctx, collectionExpenseCategories, category.ID.String(), category); err != nil {
		return fmt.Errorf("failed to create expense category: %w", err)
	}
	return nil
}

// GetByID retrieves an expense category by ID regardless of owner.
func (r *ExpenseCategoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.ExpenseCategory, error) {
	data, err := r.store.Get(ctx, collectionExpenseCategories, id.String())
	if err != nil {
		return nil, fmt.Errorf("failed to get expense category: %w", err)
	}
	return decodeExpenseCategory(data)
}

// ListByUser retrieves all expense categories owned by a user.
func (r *ExpenseCategoryRepository) ListByUser(ctx context.Context, userID string) ([]*models.ExpenseCategory, error) {
	docs, err := r.store.Query(ctx, collectionExpenseCategories, docstore.Query{
		Filters: []docstore.Filter{
			{Field: "user_id", Op: docstore.OpEq, Value: userID},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query expense categories: %w", err)
	}

	categories := make([]*models.ExpenseCategory, 0, len(docs))
	for _, data := range docs {
		category, err := decodeExpenseCategory(data)
		if err != nil {
			return nil, err
		}
		categories = append(categories, category)
	}
	return categories, nil
}

func decodeExpenseCategory(data json.RawMessage) (*models.ExpenseCategory, error) {
	var category models.ExpenseCategory
	if err := json.Unmarshal(data, &category); err != nil {
		return nil, fmt.Errorf("failed to unmarshal expense category: %w", err)
	}
	if category.ID == uuid.Nil {
		return nil, fmt.Errorf("expense category document missing id")
	}
	if category.Name == "" {
		return nil, fmt.Errorf("expense category %s missing name", category.ID)
	}
	if category.UserID == "" {
		return nil, fmt.Errorf("expense category %s missing user_id", category.ID)
	}
	return &category, nil
}

// ExpenseRepository handles expense persistence.
type ExpenseRepository struct {
	store docstore.Store
}

// NewExpenseRepository creates a new expense repository.
func NewExpenseRepository(store docstore.Store) *ExpenseRepository {
	return &ExpenseRepository{store: store}
}

// Create persists a new expense.
func (r *ExpenseRepository) Create(ctx context.Context, expense *models.Expense) error {
	if err := r.store.Set(ctx, collectionExpenses, expense.ID.String(), expense); err != nil {
		return fmt.Errorf("failed to create expense: %w", err)
	}
	return nil
}

// ListByUser retrieves all expenses owned by a user.
func (r *ExpenseRepository) ListByUser(ctx context.Context, userID string) ([]*models.Expense, error) {
	docs, err := r.store.Query(ctx, collectionExpenses, docstore.Query{
		Filters: []docstore.Filter{
			{Field: "user_id", Op: docstore.OpEq, Value: userID},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query expenses: %w", err)
	}

	expenses := make([]*models.Expense, 0, len(docs))
	for _, data := range docs {
		expense, err := decodeExpense(data)
		if err != nil {
			return nil, err
		}
		expenses = append(expenses, expense)
	}
	return expenses, nil
}

func decodeExpense(data json.RawMessage) (*models.Expense, error) {
	var expense models.Expense
	if err := json.Unmarshal(data, &expense); err != nil {
		return nil, fmt.Errorf("failed to unmarshal expense: %w", err)
	}
	if expense.ID == uuid.Nil {
		return nil, fmt.Errorf("expense document missing id")
	}
	if expense.CategoryID == uuid.Nil {
		return nil, fmt.Errorf("expense %s missing category_id", expense.ID)
	}
	if expense.UserID == "" {
		return nil, fmt.Errorf("expense %s missing user_id", expense.ID)
	}
	if expense.CreatedAt.IsZero() {
		return nil, fmt.Errorf("expense %s missing created_at", expense.ID)
	}
	expense.CreatedAt = expense.CreatedAt.UTC()
	return &expense, nil
}

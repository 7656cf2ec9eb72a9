package expense

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/timevault/api/internal/docstore"
	logpkg "github.com/timevault/api/internal/logger"
	"github.com/timevault/api/internal/models"
	"github.com/timevault/api/internal/observability"
	"github.com/timevault/api/internal/store"
)

// ErrCategoryNotFound indicates the expense category does not exist or
// is not owned by the caller.
var ErrCategoryNotFound = errors.New("category not found")

const categoryNameUnknown = "Unknown"

// Service owns expense categories and expenses.
type Service struct {
	categories *store.ExpenseCategoryRepository
	expenses   *store.ExpenseRepository
	logger     *zap.Logger
	now        func() time.Time
}

// NewService creates an expense service.
func NewService(categories *store.ExpenseCategoryRepository, expenses *store.ExpenseRepository, logger *zap.Logger) *Service {
	return &Service{
		categories: categories,
		expenses:   expenses,
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// CreateCategory creates a new expense category owned by the given user.
func (s *Service) CreateCategory(ctx context.Context, owner, name string) (*models.ExpenseCategory, error) {
	category := &models.ExpenseCategory{
		ID:     uuid.New(),
		Name:   name,
		UserID: owner,
	}

	if err := s.categories.Create(ctx, category); err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	s.logger.Info("expense_category_created",
		zap.String("category_id", category.ID.String()),
		zap.String("user_id", logpkg.SanitizeUserID(owner)))

	return category, nil
}

// ListCategories returns all expense categories owned by the given user.
func (s *Service) ListCategories(ctx context.Context, owner string) ([]*models.ExpenseCategory, error) {
	categories, err := s.categories.ListByUser(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

// CreateExpense records a spent amount under one of the user's
// categories.
func (s *Service) CreateExpense(ctx context.Context, owner string, amount float64, categoryID uuid.UUID) (*models.ExpenseWithCategory, error) {
	category, err := s.categories.GetByID(ctx, categoryID)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to load category: %w", err)
	}
	if category.UserID != owner {
		return nil, ErrCategoryNotFound
	}

	expense := &models.Expense{
		ID:         uuid.New(),
		Amount:     amount,
		CategoryID: categoryID,
		CreatedAt:  s.now(),
		UserID:     owner,
	}

	if err := s.expenses.Create(ctx, expense); err != nil {
		return nil, fmt.Errorf("failed to create expense: %w", err)
	}

	observability.RecordExpenseCreated()
	s.logger.Info("expense_created",
		zap.String("expense_id", expense.ID.String()),
		zap.String("category_id", categoryID.String()))

	joined := expense.WithCategory(category.Name)
	return &joined, nil
}

// ListExpenses returns the user's expenses with resolved category names,
// "Unknown" when a category no longer resolves.
func (s *Service) ListExpenses(ctx context.Context, owner string) ([]models.ExpenseWithCategory, error) {
	expenses, err := s.expenses.ListByUser(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}

	names := make(map[uuid.UUID]string)
	out := make([]models.ExpenseWithCategory, 0, len(expenses))
	for _, expense := range expenses {
		name, ok := names[expense.CategoryID]
		if !ok {
			name = s.categoryName(ctx, expense.CategoryID)
			names[expense.CategoryID] = name
		}
		out = append(out, expense.WithCategory(name))
	}
	return out, nil
}

func (s *Service) categoryName(ctx context.Context, categoryID uuid.UUID) string {
	category, err := s.categories.GetByID(ctx, categoryID)
	if err != nil {
		return categoryNameUnknown
	}
	return category.Name
}

package store

import (
	"context"
	"errors"

	"pocketrithm/internal/core"
)

// Typed errors decided at the data-access boundary. Callers branch with
// errors.Is; nothing outside this package inspects backend message text.
var (
	ErrNotFound    = errors.New("record not found")
	ErrDuplicate   = errors.New("duplicate record")
	ErrRateLimited = errors.New("rate limited")
)

// EntryFilter narrows expense/income listings. Nil date bounds mean
// unbounded; zero-value Type and Emotion mean no filter.
type EntryFilter struct {
	From    *core.Date
	To      *core.Date
	Type    core.ExpenseType
	Emotion string
}

// Store is the data-access surface shared by the supabase, sqlite and
// memory backends. Every operation is scoped to a user; listing order is
// date desc, created_at desc.
type Store interface {
	// Expenses
	CreateExpense(ctx context.Context, e *core.Expense) error
	GetExpense(ctx context.Context, userID, id string) (core.Expense, error)
	ListExpenses(ctx context.Context, userID string, f EntryFilter) ([]core.Expense, error)
	UpdateExpense(ctx context.Context, e *core.Expense) error
	DeleteExpense(ctx context.Context, userID, id string) error

	// Incomes
	CreateIncome(ctx context.Context, i *core.Income) error
	GetIncome(ctx context.Context, userID, id string) (core.Income, error)
	ListIncomes(ctx context.Context, userID string, f EntryFilter) ([]core.Income, error)
	UpdateIncome(ctx context.Context, i *core.Income) error
	DeleteIncome(ctx context.Context, userID, id string) error

	// Categories
	CreateCategory(ctx context.Context, c *core.Category) error
	ListCategories(ctx context.Context, userID string, kind core.CategoryKind) ([]core.Category, error)
	UpdateCategory(ctx context.Context, c *core.Category) error
	DeleteCategory(ctx context.Context, userID, id string) error
	ReorderCategories(ctx context.Context, userID string, kind core.CategoryKind, orderedIDs []string) error

	// Profile
	GetProfile(ctx context.Context, userID string) (core.Profile, error)
	UpsertProfile(ctx context.Context, p *core.Profile) error
	DeleteProfile(ctx context.Context, userID string) error

	// Monthly budgets. Get returns ErrNotFound on a genuine miss; callers
	// decide what a miss means.
	GetMonthlyBudget(ctx context.Context, userID string, month core.Period) (core.MonthlyBudget, error)
	UpsertMonthlyBudget(ctx context.Context, b *core.MonthlyBudget) error
	DeleteMonthlyBudget(ctx context.Context, userID string, month core.Period) error

	// Category budgets. Absence of a row is "no cap", not zero.
	ListCategoryBudgets(ctx context.Context, userID string, month core.Period) ([]core.CategoryMonthlyBudget, error)
	UpsertCategoryBudget(ctx context.Context, b *core.CategoryMonthlyBudget) error

	// Per-table purges for account deletion; each removes every row the
	// user owns in one table.
	DeleteAllExpenses(ctx context.Context, userID string) error
	DeleteAllIncomes(ctx context.Context, userID string) error
	DeleteAllCategories(ctx context.Context, userID string) error
	DeleteAllMonthlyBudgets(ctx context.Context, userID string) error
	DeleteAllCategoryBudgets(ctx context.Context, userID string) error

	Close() error
}

var (
	_ Store = (*Supabase)(nil)
	_ Store = (*SQLite)(nil)
	_ Store = (*Memory)(nil)
)

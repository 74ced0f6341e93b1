// Package budget resolves the budget a user is working against: monthly
// override first, profile default second, zero when neither is set. A
// store miss is a legitimate state here; only real failures propagate.
package budget

import (
	"context"
	"errors"
	"fmt"
	"math"

	"pocketrithm/internal/core"
	"pocketrithm/internal/log"
	"pocketrithm/internal/store"
)

type Service struct {
	store  store.Store
	logger *log.Logger
}

func NewService(st store.Store, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &Service{
		store:  st,
		logger: logger.WithComponent(log.ComponentBudget),
	}
}

// Effective returns the budget in force for the month: the monthly override
// if one exists, else the profile default, else 0. Store failures other
// than a miss are returned, never folded into a zero.
func (s *Service) Effective(ctx context.Context, userID string, month core.Period) (int64, error) {
	override, err := s.store.GetMonthlyBudget(ctx, userID, month)
	if err == nil {
		return override.TotalBudget, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return 0, fmt.Errorf("monthly budget lookup: %w", err)
	}

	profile, err := s.store.GetProfile(ctx, userID)
	if err == nil {
		return profile.DefaultBudget(), nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return 0, fmt.Errorf("profile lookup: %w", err)
	}
	return 0, nil
}

// Default returns the profile-level default budget, 0 when the profile is
// missing or has none set.
func (s *Service) Default(ctx context.Context, userID string) (int64, error) {
	profile, err := s.store.GetProfile(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return 0, nil
		}
		return 0, fmt.Errorf("profile lookup: %w", err)
	}
	return profile.DefaultBudget(), nil
}

// SetDefault updates the profile-level default budget.
func (s *Service) SetDefault(ctx context.Context, userID string, amount int64) error {
	profile, err := s.store.GetProfile(ctx, userID)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("profile lookup: %w", err)
		}
		profile = core.Profile{ID: userID}
	}
	profile.MonthlyBudget = &amount
	if err := s.store.UpsertProfile(ctx, &profile); err != nil {
		return fmt.Errorf("save profile default: %w", err)
	}
	return nil
}

// SetMonthly writes a month override. Submitting the profile default means
// "go back to the default", so the override row is deleted instead.
func (s *Service) SetMonthly(ctx context.Context, userID string, month core.Period, amount int64) error {
	var defaultBudget int64
	profile, err := s.store.GetProfile(ctx, userID)
	if err == nil {
		defaultBudget = profile.DefaultBudget()
	} else if !errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("profile lookup: %w", err)
	}

	if amount == defaultBudget {
		if err := s.store.DeleteMonthlyBudget(ctx, userID, month); err != nil && !errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("drop monthly override: %w", err)
		}
		s.logger.InfoContext(ctx, "Monthly override removed, default applies",
			log.FieldUserID, userID, log.FieldPeriod, string(month))
		return nil
	}

	b := core.MonthlyBudget{UserID: userID, Month: month, TotalBudget: amount}
	if err := s.store.UpsertMonthlyBudget(ctx, &b); err != nil {
		return fmt.Errorf("save monthly override: %w", err)
	}
	return nil
}

// ClearMonthly drops the override for the month regardless of value.
func (s *Service) ClearMonthly(ctx context.Context, userID string, month core.Period) error {
	if err := s.store.DeleteMonthlyBudget(ctx, userID, month); err != nil && !errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("drop monthly override: %w", err)
	}
	return nil
}

// Category returns a category's cap for the month. The bool reports whether
// a cap is set at all; absence is not the same as a zero cap.
func (s *Service) Category(ctx context.Context, userID, categoryID string, month core.Period) (int64, bool, error) {
	rows, err := s.store.ListCategoryBudgets(ctx, userID, month)
	if err != nil {
		return 0, false, fmt.Errorf("category budget lookup: %w", err)
	}
	for _, row := range rows {
		if row.CategoryID == categoryID {
			return row.Budget, true, nil
		}
	}
	return 0, false, nil
}

// AllCategories returns every explicit category cap for the month. Keys are
// category IDs; categories without a cap are absent.
func (s *Service) AllCategories(ctx context.Context, userID string, month core.Period) (map[string]int64, error) {
	rows, err := s.store.ListCategoryBudgets(ctx, userID, month)
	if err != nil {
		return nil, fmt.Errorf("category budget lookup: %w", err)
	}
	out := make(map[string]int64, len(rows))
	for _, row := range rows {
		out[row.CategoryID] = row.Budget
	}
	return out, nil
}

// SetCategories upserts the given category caps for the month. Only the
// entries present in the map are written; nothing is cleared.
func (s *Service) SetCategories(ctx context.Context, userID string, month core.Period, caps map[string]int64) error {
	for categoryID, amount := range caps {
		b := core.CategoryMonthlyBudget{
			UserID:     userID,
			CategoryID: categoryID,
			Month:      month,
			Budget:     amount,
		}
		if err := s.store.UpsertCategoryBudget(ctx, &b); err != nil {
			return fmt.Errorf("save category budget %s: %w", categoryID, err)
		}
	}
	return nil
}

// Suggested proposes a budget as 80% of the month's income.
func Suggested(income int64) int64 {
	return int64(math.Round(float64(income) * 0.8))
}

// PeriodIncome totals the user's income inside the month.
func (s *Service) PeriodIncome(ctx context.Context, userID string, month core.Period) (int64, error) {
	first, last := month.Bounds()
	incomes, err := s.store.ListIncomes(ctx, userID, store.EntryFilter{From: &first, To: &last})
	if err != nil {
		return 0, fmt.Errorf("list incomes: %w", err)
	}
	return core.SumIncomes(incomes), nil
}

// PeriodExpense totals the user's spending inside the month.
func (s *Service) PeriodExpense(ctx context.Context, userID string, month core.Period) (int64, error) {
	first, last := month.Bounds()
	expenses, err := s.store.ListExpenses(ctx, userID, store.EntryFilter{From: &first, To: &last})
	if err != nil {
		return 0, fmt.Errorf("list expenses: %w", err)
	}
	return core.SumExpenses(expenses), nil
}

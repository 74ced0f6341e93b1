package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/supabase-community/supabase-go"

	"pocketrithm/internal/core"
)

const (
	tableExpenses        = "expenses"
	tableIncomes         = "incomes"
	tableCategories      = "user_categories"
	tableProfiles        = "profiles"
	tableMonthlyBudgets  = "monthly_budgets"
	tableCategoryBudgets = "category_monthly_budgets"
)

// Supabase talks to the hosted backend through the PostgREST query builder.
// Server-side callers authenticate with the service-role key, which bypasses
// row-level security, so the user_id filter on every query is what enforces
// ownership.
type Supabase struct {
	client *supabase.Client
}

func NewSupabase(url, key string) (*Supabase, error) {
	client, err := supabase.NewClient(url, key, &supabase.ClientOptions{})
	if err != nil {
		return nil, fmt.Errorf("create supabase client: %w", err)
	}
	return &Supabase{client: client}, nil
}

func (s *Supabase) Close() error {
	return nil
}

// Expenses

func (s *Supabase) CreateExpense(ctx context.Context, e *core.Expense) error {
	e.GenerateID()
	data, _, err := s.client.From(tableExpenses).Insert(e, false, "", "", "").Execute()
	if err != nil {
		return classify(fmt.Errorf("create expense: %w", err))
	}
	var created []core.Expense
	if err := json.Unmarshal(data, &created); err != nil {
		return fmt.Errorf("parse created expense: %w", err)
	}
	if len(created) > 0 {
		*e = created[0]
	}
	return nil
}

func (s *Supabase) GetExpense(ctx context.Context, userID, id string) (core.Expense, error) {
	data, _, err := s.client.From(tableExpenses).
		Select("*", "", false).
		Eq("id", id).
		Eq("user_id", userID).
		Execute()
	if err != nil {
		return core.Expense{}, classify(fmt.Errorf("get expense: %w", err))
	}
	var rows []core.Expense
	if err := json.Unmarshal(data, &rows); err != nil {
		return core.Expense{}, fmt.Errorf("parse expense: %w", err)
	}
	if len(rows) == 0 {
		return core.Expense{}, fmt.Errorf("expense %s: %w", id, ErrNotFound)
	}
	return rows[0], nil
}

func (s *Supabase) ListExpenses(ctx context.Context, userID string, f EntryFilter) ([]core.Expense, error) {
	query := s.client.From(tableExpenses).
		Select("*", "", false).
		Eq("user_id", userID)
	if f.From != nil {
		query = query.Gte("date", f.From.String())
	}
	if f.To != nil {
		query = query.Lte("date", f.To.String())
	}
	if f.Type != "" {
		query = query.Eq("type", string(f.Type))
	}
	query = query.Order("date.desc", nil).Order("created_at.desc", nil)

	data, _, err := query.Execute()
	if err != nil {
		return nil, classify(fmt.Errorf("list expenses: %w", err))
	}
	var rows []core.Expense
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("parse expenses: %w", err)
	}
	return filterByEmotion(rows, f.Emotion), nil
}

// filterByEmotion narrows rows to those tagged with the given emotion.
// Array containment is filtered client-side; the rest of the filter is
// pushed down to the backend.
func filterByEmotion(rows []core.Expense, emotion string) []core.Expense {
	if emotion == "" {
		return rows
	}
	out := rows[:0]
	for _, r := range rows {
		for _, e := range r.Emotions {
			if e == emotion {
				out = append(out, r)
				break
			}
		}
	}
	return out
}

func (s *Supabase) UpdateExpense(ctx context.Context, e *core.Expense) error {
	_, _, err := s.client.From(tableExpenses).
		Update(e, "", "").
		Eq("id", e.ID).
		Eq("user_id", e.UserID).
		Execute()
	if err != nil {
		return classify(fmt.Errorf("update expense: %w", err))
	}
	return nil
}

func (s *Supabase) DeleteExpense(ctx context.Context, userID, id string) error {
	_, _, err := s.client.From(tableExpenses).
		Delete("", "").
		Eq("id", id).
		Eq("user_id", userID).
		Execute()
	if err != nil {
		return classify(fmt.Errorf("delete expense: %w", err))
	}
	return nil
}

// Incomes

func (s *Supabase) CreateIncome(ctx context.Context, i *core.Income) error {
	i.GenerateID()
	data, _, err := s.client.From(tableIncomes).Insert(i, false, "", "", "").Execute()
	if err != nil {
		return classify(fmt.Errorf("create income: %w", err))
	}
	var created []core.Income
	if err := json.Unmarshal(data, &created); err != nil {
		return fmt.Errorf("parse created income: %w", err)
	}
	if len(created) > 0 {
		*i = created[0]
	}
	return nil
}

func (s *Supabase) GetIncome(ctx context.Context, userID, id string) (core.Income, error) {
	data, _, err := s.client.From(tableIncomes).
		Select("*", "", false).
		Eq("id", id).
		Eq("user_id", userID).
		Execute()
	if err != nil {
		return core.Income{}, classify(fmt.Errorf("get income: %w", err))
	}
	var rows []core.Income
	if err := json.Unmarshal(data, &rows); err != nil {
		return core.Income{}, fmt.Errorf("parse income: %w", err)
	}
	if len(rows) == 0 {
		return core.Income{}, fmt.Errorf("income %s: %w", id, ErrNotFound)
	}
	return rows[0], nil
}

func (s *Supabase) ListIncomes(ctx context.Context, userID string, f EntryFilter) ([]core.Income, error) {
	query := s.client.From(tableIncomes).
		Select("*", "", false).
		Eq("user_id", userID)
	if f.From != nil {
		query = query.Gte("date", f.From.String())
	}
	if f.To != nil {
		query = query.Lte("date", f.To.String())
	}
	query = query.Order("date.desc", nil).Order("created_at.desc", nil)

	data, _, err := query.Execute()
	if err != nil {
		return nil, classify(fmt.Errorf("list incomes: %w", err))
	}
	var rows []core.Income
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("parse incomes: %w", err)
	}
	return rows, nil
}

func (s *Supabase) UpdateIncome(ctx context.Context, i *core.Income) error {
	_, _, err := s.client.From(tableIncomes).
		Update(i, "", "").
		Eq("id", i.ID).
		Eq("user_id", i.UserID).
		Execute()
	if err != nil {
		return classify(fmt.Errorf("update income: %w", err))
	}
	return nil
}

func (s *Supabase) DeleteIncome(ctx context.Context, userID, id string) error {
	_, _, err := s.client.From(tableIncomes).
		Delete("", "").
		Eq("id", id).
		Eq("user_id", userID).
		Execute()
	if err != nil {
		return classify(fmt.Errorf("delete income: %w", err))
	}
	return nil
}

// Categories

func (s *Supabase) CreateCategory(ctx context.Context, c *core.Category) error {
	c.GenerateID()
	data, _, err := s.client.From(tableCategories).Insert(c, false, "", "", "").Execute()
	if err != nil {
		return classify(fmt.Errorf("create category: %w", err))
	}
	var created []core.Category
	if err := json.Unmarshal(data, &created); err != nil {
		return fmt.Errorf("parse created category: %w", err)
	}
	if len(created) > 0 {
		*c = created[0]
	}
	return nil
}

func (s *Supabase) ListCategories(ctx context.Context, userID string, kind core.CategoryKind) ([]core.Category, error) {
	query := s.client.From(tableCategories).
		Select("*", "", false).
		Eq("user_id", userID)
	if kind != "" {
		query = query.Eq("type", string(kind))
	}
	query = query.Order("order_index.asc", nil)

	data, _, err := query.Execute()
	if err != nil {
		return nil, classify(fmt.Errorf("list categories: %w", err))
	}
	var rows []core.Category
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("parse categories: %w", err)
	}
	return rows, nil
}

func (s *Supabase) UpdateCategory(ctx context.Context, c *core.Category) error {
	_, _, err := s.client.From(tableCategories).
		Update(c, "", "").
		Eq("id", c.ID).
		Eq("user_id", c.UserID).
		Execute()
	if err != nil {
		return classify(fmt.Errorf("update category: %w", err))
	}
	return nil
}

func (s *Supabase) DeleteCategory(ctx context.Context, userID, id string) error {
	_, _, err := s.client.From(tableCategories).
		Delete("", "").
		Eq("id", id).
		Eq("user_id", userID).
		Execute()
	if err != nil {
		return classify(fmt.Errorf("delete category: %w", err))
	}
	return nil
}

func (s *Supabase) ReorderCategories(ctx context.Context, userID string, kind core.CategoryKind, orderedIDs []string) error {
	for idx, id := range orderedIDs {
		_, _, err := s.client.From(tableCategories).
			Update(map[string]any{"order_index": idx}, "", "").
			Eq("id", id).
			Eq("user_id", userID).
			Eq("type", string(kind)).
			Execute()
		if err != nil {
			return classify(fmt.Errorf("reorder category %s: %w", id, err))
		}
	}
	return nil
}

// Profile

func (s *Supabase) GetProfile(ctx context.Context, userID string) (core.Profile, error) {
	data, _, err := s.client.From(tableProfiles).
		Select("*", "", false).
		Eq("id", userID).
		Execute()
	if err != nil {
		return core.Profile{}, classify(fmt.Errorf("get profile: %w", err))
	}
	var rows []core.Profile
	if err := json.Unmarshal(data, &rows); err != nil {
		return core.Profile{}, fmt.Errorf("parse profile: %w", err)
	}
	if len(rows) == 0 {
		return core.Profile{}, fmt.Errorf("profile %s: %w", userID, ErrNotFound)
	}
	return rows[0], nil
}

func (s *Supabase) UpsertProfile(ctx context.Context, p *core.Profile) error {
	_, _, err := s.client.From(tableProfiles).Insert(p, true, "id", "", "").Execute()
	if err != nil {
		return classify(fmt.Errorf("upsert profile: %w", err))
	}
	return nil
}

func (s *Supabase) DeleteProfile(ctx context.Context, userID string) error {
	_, _, err := s.client.From(tableProfiles).
		Delete("", "").
		Eq("id", userID).
		Execute()
	if err != nil {
		return classify(fmt.Errorf("delete profile: %w", err))
	}
	return nil
}

// Budgets

func (s *Supabase) GetMonthlyBudget(ctx context.Context, userID string, month core.Period) (core.MonthlyBudget, error) {
	data, _, err := s.client.From(tableMonthlyBudgets).
		Select("*", "", false).
		Eq("user_id", userID).
		Eq("month", string(month)).
		Execute()
	if err != nil {
		return core.MonthlyBudget{}, classify(fmt.Errorf("get monthly budget: %w", err))
	}
	var rows []core.MonthlyBudget
	if err := json.Unmarshal(data, &rows); err != nil {
		return core.MonthlyBudget{}, fmt.Errorf("parse monthly budget: %w", err)
	}
	if len(rows) == 0 {
		return core.MonthlyBudget{}, fmt.Errorf("monthly budget %s: %w", month, ErrNotFound)
	}
	return rows[0], nil
}

func (s *Supabase) UpsertMonthlyBudget(ctx context.Context, b *core.MonthlyBudget) error {
	_, _, err := s.client.From(tableMonthlyBudgets).
		Insert(b, true, "user_id,month", "", "").
		Execute()
	if err != nil {
		return classify(fmt.Errorf("upsert monthly budget: %w", err))
	}
	return nil
}

func (s *Supabase) DeleteMonthlyBudget(ctx context.Context, userID string, month core.Period) error {
	_, _, err := s.client.From(tableMonthlyBudgets).
		Delete("", "").
		Eq("user_id", userID).
		Eq("month", string(month)).
		Execute()
	if err != nil {
		return classify(fmt.Errorf("delete monthly budget: %w", err))
	}
	return nil
}

func (s *Supabase) ListCategoryBudgets(ctx context.Context, userID string, month core.Period) ([]core.CategoryMonthlyBudget, error) {
	data, _, err := s.client.From(tableCategoryBudgets).
		Select("*", "", false).
		Eq("user_id", userID).
		Eq("month", string(month)).
		Execute()
	if err != nil {
		return nil, classify(fmt.Errorf("list category budgets: %w", err))
	}
	var rows []core.CategoryMonthlyBudget
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("parse category budgets: %w", err)
	}
	return rows, nil
}

func (s *Supabase) UpsertCategoryBudget(ctx context.Context, b *core.CategoryMonthlyBudget) error {
	_, _, err := s.client.From(tableCategoryBudgets).
		Insert(b, true, "user_id,category_id,month", "", "").
		Execute()
	if err != nil {
		return classify(fmt.Errorf("upsert category budget: %w", err))
	}
	return nil
}

// Account purges

func (s *Supabase) DeleteAllExpenses(ctx context.Context, userID string) error {
	return s.purge(tableExpenses, userID)
}

func (s *Supabase) DeleteAllIncomes(ctx context.Context, userID string) error {
	return s.purge(tableIncomes, userID)
}

func (s *Supabase) DeleteAllCategories(ctx context.Context, userID string) error {
	return s.purge(tableCategories, userID)
}

func (s *Supabase) DeleteAllMonthlyBudgets(ctx context.Context, userID string) error {
	return s.purge(tableMonthlyBudgets, userID)
}

func (s *Supabase) DeleteAllCategoryBudgets(ctx context.Context, userID string) error {
	return s.purge(tableCategoryBudgets, userID)
}

func (s *Supabase) purge(table, userID string) error {
	_, _, err := s.client.From(table).
		Delete("", "").
		Eq("user_id", userID).
		Execute()
	if err != nil {
		return classify(fmt.Errorf("purge %s: %w", table, err))
	}
	return nil
}

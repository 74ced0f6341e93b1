package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"pocketrithm/internal/core"
)

// Memory is the map-backed store used for development and as the test
// double in handler and service tests. It mirrors the backend's ordering
// and uniqueness rules.
type Memory struct {
	mu sync.RWMutex

	expenses        map[string]core.Expense
	incomes         map[string]core.Income
	categories      map[string]core.Category
	profiles        map[string]core.Profile
	monthlyBudgets  map[string]core.MonthlyBudget         // userID|month
	categoryBudgets map[string]core.CategoryMonthlyBudget // userID|categoryID|month
}

func NewMemory() *Memory {
	return &Memory{
		expenses:        make(map[string]core.Expense),
		incomes:         make(map[string]core.Income),
		categories:      make(map[string]core.Category),
		profiles:        make(map[string]core.Profile),
		monthlyBudgets:  make(map[string]core.MonthlyBudget),
		categoryBudgets: make(map[string]core.CategoryMonthlyBudget),
	}
}

func (m *Memory) Close() error {
	return nil
}

func budgetKey(userID string, month core.Period) string {
	return userID + "|" + string(month)
}

func categoryBudgetKey(userID, categoryID string, month core.Period) string {
	return userID + "|" + categoryID + "|" + string(month)
}

// Expenses

func (m *Memory) CreateExpense(ctx context.Context, e *core.Expense) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e.GenerateID()
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	m.expenses[e.ID] = *e
	return nil
}

func (m *Memory) GetExpense(ctx context.Context, userID, id string) (core.Expense, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.expenses[id]
	if !ok || e.UserID != userID {
		return core.Expense{}, fmt.Errorf("expense %s: %w", id, ErrNotFound)
	}
	return e, nil
}

func (m *Memory) ListExpenses(ctx context.Context, userID string, f EntryFilter) ([]core.Expense, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []core.Expense
	for _, e := range m.expenses {
		if e.UserID != userID {
			continue
		}
		if f.From != nil && e.Date.Before(f.From.Time) {
			continue
		}
		if f.To != nil && e.Date.After(f.To.Time) {
			continue
		}
		if f.Type != "" && e.Type != f.Type {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date.Time) {
			return out[i].Date.After(out[j].Date.Time)
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return filterByEmotion(out, f.Emotion), nil
}

func (m *Memory) UpdateExpense(ctx context.Context, e *core.Expense) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.expenses[e.ID]
	if !ok || existing.UserID != e.UserID {
		return fmt.Errorf("expense %s: %w", e.ID, ErrNotFound)
	}
	e.CreatedAt = existing.CreatedAt
	m.expenses[e.ID] = *e
	return nil
}

func (m *Memory) DeleteExpense(ctx context.Context, userID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.expenses[id]
	if !ok || e.UserID != userID {
		return fmt.Errorf("expense %s: %w", id, ErrNotFound)
	}
	delete(m.expenses, id)
	return nil
}

// Incomes

func (m *Memory) CreateIncome(ctx context.Context, i *core.Income) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	i.GenerateID()
	if i.CreatedAt.IsZero() {
		i.CreatedAt = time.Now().UTC()
	}
	m.incomes[i.ID] = *i
	return nil
}

func (m *Memory) GetIncome(ctx context.Context, userID, id string) (core.Income, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	i, ok := m.incomes[id]
	if !ok || i.UserID != userID {
		return core.Income{}, fmt.Errorf("income %s: %w", id, ErrNotFound)
	}
	return i, nil
}

func (m *Memory) ListIncomes(ctx context.Context, userID string, f EntryFilter) ([]core.Income, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []core.Income
	for _, i := range m.incomes {
		if i.UserID != userID {
			continue
		}
		if f.From != nil && i.Date.Before(f.From.Time) {
			continue
		}
		if f.To != nil && i.Date.After(f.To.Time) {
			continue
		}
		out = append(out, i)
	}
	sort.Slice(out, func(a, b int) bool {
		if !out[a].Date.Equal(out[b].Date.Time) {
			return out[a].Date.After(out[b].Date.Time)
		}
		return out[a].CreatedAt.After(out[b].CreatedAt)
	})
	return out, nil
}

func (m *Memory) UpdateIncome(ctx context.Context, i *core.Income) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.incomes[i.ID]
	if !ok || existing.UserID != i.UserID {
		return fmt.Errorf("income %s: %w", i.ID, ErrNotFound)
	}
	i.CreatedAt = existing.CreatedAt
	m.incomes[i.ID] = *i
	return nil
}

func (m *Memory) DeleteIncome(ctx context.Context, userID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	i, ok := m.incomes[id]
	if !ok || i.UserID != userID {
		return fmt.Errorf("income %s: %w", id, ErrNotFound)
	}
	delete(m.incomes, id)
	return nil
}

// Categories

func (m *Memory) CreateCategory(ctx context.Context, c *core.Category) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.categories {
		if existing.UserID == c.UserID && existing.Name == c.Name && existing.Kind == c.Kind {
			return fmt.Errorf("category %q: %w", c.Name, ErrDuplicate)
		}
	}
	c.GenerateID()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	m.categories[c.ID] = *c
	return nil
}

func (m *Memory) ListCategories(ctx context.Context, userID string, kind core.CategoryKind) ([]core.Category, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []core.Category
	for _, c := range m.categories {
		if c.UserID != userID {
			continue
		}
		if kind != "" && c.Kind != kind {
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].OrderIndex != out[j].OrderIndex {
			return out[i].OrderIndex < out[j].OrderIndex
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (m *Memory) UpdateCategory(ctx context.Context, c *core.Category) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.categories[c.ID]
	if !ok || existing.UserID != c.UserID {
		return fmt.Errorf("category %s: %w", c.ID, ErrNotFound)
	}
	c.Kind = existing.Kind
	c.CreatedAt = existing.CreatedAt
	m.categories[c.ID] = *c
	return nil
}

func (m *Memory) DeleteCategory(ctx context.Context, userID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.categories[id]
	if !ok || c.UserID != userID {
		return fmt.Errorf("category %s: %w", id, ErrNotFound)
	}
	delete(m.categories, id)
	return nil
}

func (m *Memory) ReorderCategories(ctx context.Context, userID string, kind core.CategoryKind, orderedIDs []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for idx, id := range orderedIDs {
		c, ok := m.categories[id]
		if !ok || c.UserID != userID || c.Kind != kind {
			continue
		}
		c.OrderIndex = idx
		m.categories[id] = c
	}
	return nil
}

// Profile

func (m *Memory) GetProfile(ctx context.Context, userID string) (core.Profile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.profiles[userID]
	if !ok {
		return core.Profile{}, fmt.Errorf("profile %s: %w", userID, ErrNotFound)
	}
	return p, nil
}

func (m *Memory) UpsertProfile(ctx context.Context, p *core.Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profiles[p.ID] = *p
	return nil
}

func (m *Memory) DeleteProfile(ctx context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.profiles, userID)
	return nil
}

// Budgets

func (m *Memory) GetMonthlyBudget(ctx context.Context, userID string, month core.Period) (core.MonthlyBudget, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.monthlyBudgets[budgetKey(userID, month)]
	if !ok {
		return core.MonthlyBudget{}, fmt.Errorf("monthly budget %s: %w", month, ErrNotFound)
	}
	return b, nil
}

func (m *Memory) UpsertMonthlyBudget(ctx context.Context, b *core.MonthlyBudget) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.monthlyBudgets[budgetKey(b.UserID, b.Month)] = *b
	return nil
}

func (m *Memory) DeleteMonthlyBudget(ctx context.Context, userID string, month core.Period) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.monthlyBudgets, budgetKey(userID, month))
	return nil
}

func (m *Memory) ListCategoryBudgets(ctx context.Context, userID string, month core.Period) ([]core.CategoryMonthlyBudget, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []core.CategoryMonthlyBudget
	for _, b := range m.categoryBudgets {
		if b.UserID == userID && b.Month == month {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CategoryID < out[j].CategoryID })
	return out, nil
}

func (m *Memory) UpsertCategoryBudget(ctx context.Context, b *core.CategoryMonthlyBudget) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.categoryBudgets[categoryBudgetKey(b.UserID, b.CategoryID, b.Month)] = *b
	return nil
}

// Account purges

func (m *Memory) DeleteAllExpenses(ctx context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, e := range m.expenses {
		if e.UserID == userID {
			delete(m.expenses, id)
		}
	}
	return nil
}

func (m *Memory) DeleteAllIncomes(ctx context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, i := range m.incomes {
		if i.UserID == userID {
			delete(m.incomes, id)
		}
	}
	return nil
}

func (m *Memory) DeleteAllCategories(ctx context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, c := range m.categories {
		if c.UserID == userID {
			delete(m.categories, id)
		}
	}
	return nil
}

func (m *Memory) DeleteAllMonthlyBudgets(ctx context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key, b := range m.monthlyBudgets {
		if b.UserID == userID {
			delete(m.monthlyBudgets, key)
		}
	}
	return nil
}

func (m *Memory) DeleteAllCategoryBudgets(ctx context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key, b := range m.categoryBudgets {
		if b.UserID == userID {
			delete(m.categoryBudgets, key)
		}
	}
	return nil
}

package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"pocketrithm/internal/core"
)

func TestMemoryExpenseCRUD(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	e := core.Expense{
		UserID:   "u1",
		Amount:   9000,
		Category: "Food",
		Type:     core.Need,
		Date:     core.NewDate(2024, 6, 3),
	}
	if err := m.CreateExpense(ctx, &e); err != nil {
		t.Fatalf("create: %v", err)
	}
	if e.ID == "" {
		t.Fatalf("create did not assign an ID")
	}

	got, err := m.GetExpense(ctx, "u1", e.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Amount != 9000 || got.Category != "Food" {
		t.Fatalf("got %+v", got)
	}

	// Other users cannot see it.
	if _, err := m.GetExpense(ctx, "u2", e.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("cross-user get = %v, want ErrNotFound", err)
	}

	e.Amount = 9500
	if err := m.UpdateExpense(ctx, &e); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, _ = m.GetExpense(ctx, "u1", e.ID)
	if got.Amount != 9500 {
		t.Fatalf("update not applied, amount = %d", got.Amount)
	}

	if err := m.DeleteExpense(ctx, "u1", e.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := m.GetExpense(ctx, "u1", e.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("get after delete = %v, want ErrNotFound", err)
	}
}

func TestMemoryListExpensesOrderAndFilter(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	seed := []core.Expense{
		{UserID: "u1", Amount: 100, Category: "Food", Type: core.Need, Date: core.NewDate(2024, 6, 1), CreatedAt: base},
		{UserID: "u1", Amount: 200, Category: "Cafe", Type: core.Desire, Emotions: []string{"joy"}, Date: core.NewDate(2024, 6, 3), CreatedAt: base.Add(time.Hour)},
		{UserID: "u1", Amount: 300, Category: "Shopping", Type: core.Lack, Date: core.NewDate(2024, 6, 3), CreatedAt: base.Add(2 * time.Hour)},
		{UserID: "u2", Amount: 400, Category: "Food", Type: core.Need, Date: core.NewDate(2024, 6, 2), CreatedAt: base},
	}
	for i := range seed {
		if err := m.CreateExpense(ctx, &seed[i]); err != nil {
			t.Fatalf("seed %d: %v", i, err)
		}
	}

	out, err := m.ListExpenses(ctx, "u1", EntryFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(out) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(out))
	}
	// Date desc, created_at desc.
	if out[0].Amount != 300 || out[1].Amount != 200 || out[2].Amount != 100 {
		t.Fatalf("wrong order: %d, %d, %d", out[0].Amount, out[1].Amount, out[2].Amount)
	}

	from := core.NewDate(2024, 6, 2)
	out, _ = m.ListExpenses(ctx, "u1", EntryFilter{From: &from})
	if len(out) != 2 {
		t.Fatalf("date filter: expected 2 rows, got %d", len(out))
	}

	out, _ = m.ListExpenses(ctx, "u1", EntryFilter{Type: core.Desire})
	if len(out) != 1 || out[0].Amount != 200 {
		t.Fatalf("type filter: %+v", out)
	}

	out, _ = m.ListExpenses(ctx, "u1", EntryFilter{Emotion: "joy"})
	if len(out) != 1 || out[0].Category != "Cafe" {
		t.Fatalf("emotion filter: %+v", out)
	}
}

func TestMemoryCategoryDuplicate(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	c := core.Category{UserID: "u1", Name: "Food", Kind: core.ExpenseCategory}
	if err := m.CreateCategory(ctx, &c); err != nil {
		t.Fatalf("create: %v", err)
	}

	dup := core.Category{UserID: "u1", Name: "Food", Kind: core.ExpenseCategory}
	if err := m.CreateCategory(ctx, &dup); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("duplicate create = %v, want ErrDuplicate", err)
	}

	// Same name under a different kind is fine.
	income := core.Category{UserID: "u1", Name: "Food", Kind: core.IncomeCategory}
	if err := m.CreateCategory(ctx, &income); err != nil {
		t.Fatalf("same name different kind: %v", err)
	}
}

func TestMemoryReorderCategories(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	names := []string{"Food", "Cafe", "Transport"}
	ids := make([]string, len(names))
	for i, name := range names {
		c := core.Category{UserID: "u1", Name: name, Kind: core.ExpenseCategory, OrderIndex: i}
		if err := m.CreateCategory(ctx, &c); err != nil {
			t.Fatalf("seed %s: %v", name, err)
		}
		ids[i] = c.ID
	}

	// Reverse the order.
	if err := m.ReorderCategories(ctx, "u1", core.ExpenseCategory, []string{ids[2], ids[1], ids[0]}); err != nil {
		t.Fatalf("reorder: %v", err)
	}

	out, _ := m.ListCategories(ctx, "u1", core.ExpenseCategory)
	if out[0].Name != "Transport" || out[2].Name != "Food" {
		t.Fatalf("reorder not applied: %s, %s, %s", out[0].Name, out[1].Name, out[2].Name)
	}
}

func TestMemoryMonthlyBudget(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	if _, err := m.GetMonthlyBudget(ctx, "u1", "2024-06"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("miss = %v, want ErrNotFound", err)
	}

	b := core.MonthlyBudget{UserID: "u1", Month: "2024-06", TotalBudget: 500000}
	if err := m.UpsertMonthlyBudget(ctx, &b); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	got, err := m.GetMonthlyBudget(ctx, "u1", "2024-06")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.TotalBudget != 500000 {
		t.Fatalf("total = %d, want 500000", got.TotalBudget)
	}

	// Upsert overwrites.
	b.TotalBudget = 400000
	_ = m.UpsertMonthlyBudget(ctx, &b)
	got, _ = m.GetMonthlyBudget(ctx, "u1", "2024-06")
	if got.TotalBudget != 400000 {
		t.Fatalf("total = %d, want 400000", got.TotalBudget)
	}

	if err := m.DeleteMonthlyBudget(ctx, "u1", "2024-06"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := m.GetMonthlyBudget(ctx, "u1", "2024-06"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("get after delete = %v, want ErrNotFound", err)
	}
}

func TestMemoryPurgeUserScoped(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	for _, user := range []string{"u1", "u2"} {
		e := core.Expense{UserID: user, Amount: 100, Category: "Food", Type: core.Need, Date: core.NewDate(2024, 6, 1)}
		_ = m.CreateExpense(ctx, &e)
		i := core.Income{UserID: user, Amount: 1000, Source: "Salary", Date: core.NewDate(2024, 6, 1)}
		_ = m.CreateIncome(ctx, &i)
	}

	if err := m.DeleteAllExpenses(ctx, "u1"); err != nil {
		t.Fatalf("purge expenses: %v", err)
	}
	if err := m.DeleteAllIncomes(ctx, "u1"); err != nil {
		t.Fatalf("purge incomes: %v", err)
	}

	u1, _ := m.ListExpenses(ctx, "u1", EntryFilter{})
	if len(u1) != 0 {
		t.Fatalf("u1 expenses survived purge: %d", len(u1))
	}
	u2, _ := m.ListExpenses(ctx, "u2", EntryFilter{})
	if len(u2) != 1 {
		t.Fatalf("u2 expenses affected by u1 purge: %d", len(u2))
	}
}

package services

import (
	"context"
	"errors"
	"testing"

	"pocketrithm/internal/amqp"
	"pocketrithm/internal/budget"
	"pocketrithm/internal/core"
	"pocketrithm/internal/store"
)

type capturingPublisher struct {
	messages []*amqp.EntrySyncMessage
	err      error
}

func (p *capturingPublisher) PublishEntrySync(ctx context.Context, msg *amqp.EntrySyncMessage) error {
	if p.err != nil {
		return p.err
	}
	p.messages = append(p.messages, msg)
	return nil
}

func newLedger(t *testing.T) (*Ledger, *store.Memory, *capturingPublisher) {
	t.Helper()
	mem := store.NewMemory()
	pub := &capturingPublisher{}
	budgets := budget.NewService(mem, nil)
	return NewLedger(mem, budgets, pub, nil), mem, pub
}

func TestCreateExpensePublishesSync(t *testing.T) {
	ctx := context.Background()
	ledger, mem, pub := newLedger(t)

	e := core.Expense{
		UserID:   "u1",
		Amount:   9000,
		Category: "Food",
		Type:     core.Need,
		Date:     core.NewDate(2024, 6, 3),
	}
	if err := ledger.CreateExpense(ctx, &e); err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := mem.GetExpense(ctx, "u1", e.ID); err != nil {
		t.Fatalf("expense not persisted: %v", err)
	}
	if len(pub.messages) != 1 {
		t.Fatalf("expected 1 sync message, got %d", len(pub.messages))
	}
	msg := pub.messages[0]
	if msg.Kind != amqp.KindExpense || msg.Op != amqp.OpUpsert || msg.ID != e.ID {
		t.Fatalf("message = %+v", msg)
	}
}

func TestCreateExpenseRejectsInvalid(t *testing.T) {
	ctx := context.Background()
	ledger, _, pub := newLedger(t)

	e := core.Expense{UserID: "u1", Amount: -5, Category: "Food", Type: core.Need, Date: core.NewDate(2024, 6, 3)}
	if err := ledger.CreateExpense(ctx, &e); !errors.Is(err, core.ErrInvalidAmount) {
		t.Fatalf("error = %v, want ErrInvalidAmount", err)
	}
	if len(pub.messages) != 0 {
		t.Fatalf("invalid entry must not publish, got %d messages", len(pub.messages))
	}
}

func TestCreateExpensePublishFailureIsNotFatal(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	pub := &capturingPublisher{err: errors.New("broker down")}
	ledger := NewLedger(mem, budget.NewService(mem, nil), pub, nil)

	e := core.Expense{UserID: "u1", Amount: 9000, Category: "Food", Type: core.Need, Date: core.NewDate(2024, 6, 3)}
	if err := ledger.CreateExpense(ctx, &e); err != nil {
		t.Fatalf("publish failure must not fail the create: %v", err)
	}
	if _, err := mem.GetExpense(ctx, "u1", e.ID); err != nil {
		t.Fatalf("expense not persisted: %v", err)
	}
}

func TestDeleteIncomePublishesDelete(t *testing.T) {
	ctx := context.Background()
	ledger, _, pub := newLedger(t)

	i := core.Income{UserID: "u1", Amount: 500000, Source: "Salary", Date: core.NewDate(2024, 6, 25)}
	if err := ledger.CreateIncome(ctx, &i); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := ledger.DeleteIncome(ctx, "u1", i.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if len(pub.messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(pub.messages))
	}
	last := pub.messages[1]
	if last.Kind != amqp.KindIncome || last.Op != amqp.OpDelete || last.ID != i.ID {
		t.Fatalf("delete message = %+v", last)
	}
}

func TestTransactions(t *testing.T) {
	ctx := context.Background()
	ledger, _, _ := newLedger(t)

	entries := []core.Expense{
		{UserID: "u1", Amount: 9000, Category: "Food", Type: core.Need, Date: core.NewDate(2024, 6, 3)},
		{UserID: "u1", Amount: 4000, Category: "Cafe", Type: core.Desire, Date: core.NewDate(2024, 6, 3)},
		{UserID: "u1", Amount: 7000, Category: "Food", Type: core.Need, Date: core.NewDate(2024, 7, 1)}, // next month
	}
	for i := range entries {
		if err := ledger.CreateExpense(ctx, &entries[i]); err != nil {
			t.Fatalf("seed %d: %v", i, err)
		}
	}
	income := core.Income{UserID: "u1", Amount: 500000, Source: "Salary", Date: core.NewDate(2024, 6, 25)}
	if err := ledger.CreateIncome(ctx, &income); err != nil {
		t.Fatalf("seed income: %v", err)
	}

	groups, err := ledger.Transactions(ctx, "u1", "2024-06")
	if err != nil {
		t.Fatalf("transactions: %v", err)
	}
	if len(groups) != 2 {
		t.Fatalf("expected 2 day buckets, got %d", len(groups))
	}
	// Newest day first.
	if groups[0].Date.String() != "2024-06-25" {
		t.Fatalf("first bucket = %s, want 2024-06-25", groups[0].Date)
	}
	if groups[0].IncomeTotal != 500000 {
		t.Fatalf("income total = %d, want 500000", groups[0].IncomeTotal)
	}
	if groups[1].ExpenseTotal != 13000 {
		t.Fatalf("expense total = %d, want 13000", groups[1].ExpenseTotal)
	}
}

func TestBuildDashboard(t *testing.T) {
	ctx := context.Background()
	ledger, mem, _ := newLedger(t)

	defaultBudget := int64(500000)
	p := core.Profile{ID: "u1", MonthlyBudget: &defaultBudget}
	_ = mem.UpsertProfile(ctx, &p)

	expenses := []core.Expense{
		{UserID: "u1", Amount: 90000, Category: "Food", Type: core.Need, Date: core.NewDate(2024, 6, 3)},
		{UserID: "u1", Amount: 30000, Category: "Cafe", Type: core.Desire, Date: core.NewDate(2024, 6, 5)},
		{UserID: "u1", Amount: 130000, Category: "Food", Type: core.Need, Date: core.NewDate(2024, 6, 10)},
	}
	for i := range expenses {
		if err := ledger.CreateExpense(ctx, &expenses[i]); err != nil {
			t.Fatalf("seed %d: %v", i, err)
		}
	}
	income := core.Income{UserID: "u1", Amount: 600000, Source: "Salary", Date: core.NewDate(2024, 6, 25)}
	_ = ledger.CreateIncome(ctx, &income)
	cap := core.CategoryMonthlyBudget{UserID: "u1", CategoryID: "food-id", Month: "2024-06", Budget: 250000}
	_ = mem.UpsertCategoryBudget(ctx, &cap)

	d, err := ledger.BuildDashboard(ctx, "u1", "2024-06")
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}

	if d.TotalExpense != 250000 {
		t.Fatalf("total expense = %d, want 250000", d.TotalExpense)
	}
	if d.TotalIncome != 600000 {
		t.Fatalf("total income = %d, want 600000", d.TotalIncome)
	}
	if d.Budget != 500000 {
		t.Fatalf("budget = %d, want 500000", d.Budget)
	}
	if d.BudgetUsagePct != 50 {
		t.Fatalf("usage = %d%%, want 50%%", d.BudgetUsagePct)
	}
	if d.Remaining != 250000 {
		t.Fatalf("remaining = %d, want 250000", d.Remaining)
	}
	if len(d.ByCategory) != 2 || d.ByCategory[0].Name != "Food" || d.ByCategory[0].Amount != 220000 {
		t.Fatalf("by category = %+v", d.ByCategory)
	}
	if d.ByType[core.Need] != 220000 || d.ByType[core.Desire] != 30000 {
		t.Fatalf("by type = %v", d.ByType)
	}
	if d.CategoryBudgets["food-id"] != 250000 {
		t.Fatalf("category budgets = %v", d.CategoryBudgets)
	}
	if d.SuggestedBudget != 480000 {
		t.Fatalf("suggested = %d, want 480000", d.SuggestedBudget)
	}
}

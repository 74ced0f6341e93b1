package services

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"pocketrithm/internal/amqp"
	"pocketrithm/internal/budget"
	"pocketrithm/internal/core"
	"pocketrithm/internal/log"
	"pocketrithm/internal/store"
)

// SyncPublisher queues a replication message for the sync worker. Nil when
// the primary backend is the hosted one and no replication is needed.
type SyncPublisher interface {
	PublishEntrySync(ctx context.Context, msg *amqp.EntrySyncMessage) error
}

// Ledger orchestrates entry CRUD: validate, persist, then queue the async
// sync message. Publishing failures are logged and never fail the request;
// the local write already succeeded.
type Ledger struct {
	store     store.Store
	budgets   *budget.Service
	publisher SyncPublisher
	logger    *log.Logger
}

func NewLedger(st store.Store, budgets *budget.Service, publisher SyncPublisher, logger *log.Logger) *Ledger {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &Ledger{
		store:     st,
		budgets:   budgets,
		publisher: publisher,
		logger:    logger.WithComponent(log.ComponentLedger),
	}
}

// Expenses

func (l *Ledger) CreateExpense(ctx context.Context, e *core.Expense) error {
	if err := e.Validate(); err != nil {
		return err
	}
	if err := l.store.CreateExpense(ctx, e); err != nil {
		return fmt.Errorf("save expense: %w", err)
	}
	l.publish(ctx, amqp.NewEntrySyncMessage(amqp.KindExpense, amqp.OpUpsert, e.ID, e.UserID))
	l.logger.InfoContext(ctx, "Expense saved",
		log.FieldEntryID, e.ID,
		log.FieldCategory, e.Category,
		log.FieldAmount, e.Amount)
	return nil
}

func (l *Ledger) GetExpense(ctx context.Context, userID, id string) (core.Expense, error) {
	return l.store.GetExpense(ctx, userID, id)
}

func (l *Ledger) ListExpenses(ctx context.Context, userID string, f store.EntryFilter) ([]core.Expense, error) {
	return l.store.ListExpenses(ctx, userID, f)
}

func (l *Ledger) UpdateExpense(ctx context.Context, e *core.Expense) error {
	if err := e.Validate(); err != nil {
		return err
	}
	if err := l.store.UpdateExpense(ctx, e); err != nil {
		return fmt.Errorf("update expense: %w", err)
	}
	l.publish(ctx, amqp.NewEntrySyncMessage(amqp.KindExpense, amqp.OpUpsert, e.ID, e.UserID))
	return nil
}

func (l *Ledger) DeleteExpense(ctx context.Context, userID, id string) error {
	if err := l.store.DeleteExpense(ctx, userID, id); err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	l.publish(ctx, amqp.NewEntrySyncMessage(amqp.KindExpense, amqp.OpDelete, id, userID))
	return nil
}

// Incomes

func (l *Ledger) CreateIncome(ctx context.Context, i *core.Income) error {
	if err := i.Validate(); err != nil {
		return err
	}
	if err := l.store.CreateIncome(ctx, i); err != nil {
		return fmt.Errorf("save income: %w", err)
	}
	l.publish(ctx, amqp.NewEntrySyncMessage(amqp.KindIncome, amqp.OpUpsert, i.ID, i.UserID))
	l.logger.InfoContext(ctx, "Income saved",
		log.FieldEntryID, i.ID,
		log.FieldAmount, i.Amount)
	return nil
}

func (l *Ledger) GetIncome(ctx context.Context, userID, id string) (core.Income, error) {
	return l.store.GetIncome(ctx, userID, id)
}

func (l *Ledger) ListIncomes(ctx context.Context, userID string, f store.EntryFilter) ([]core.Income, error) {
	return l.store.ListIncomes(ctx, userID, f)
}

func (l *Ledger) UpdateIncome(ctx context.Context, i *core.Income) error {
	if err := i.Validate(); err != nil {
		return err
	}
	if err := l.store.UpdateIncome(ctx, i); err != nil {
		return fmt.Errorf("update income: %w", err)
	}
	l.publish(ctx, amqp.NewEntrySyncMessage(amqp.KindIncome, amqp.OpUpsert, i.ID, i.UserID))
	return nil
}

func (l *Ledger) DeleteIncome(ctx context.Context, userID, id string) error {
	if err := l.store.DeleteIncome(ctx, userID, id); err != nil {
		return fmt.Errorf("delete income: %w", err)
	}
	l.publish(ctx, amqp.NewEntrySyncMessage(amqp.KindIncome, amqp.OpDelete, id, userID))
	return nil
}

func (l *Ledger) publish(ctx context.Context, msg *amqp.EntrySyncMessage) {
	if l.publisher == nil {
		return
	}
	if err := l.publisher.PublishEntrySync(ctx, msg); err != nil {
		l.logger.ErrorContext(ctx, "Failed to publish sync message",
			log.FieldEntryKind, msg.Kind,
			log.FieldEntryID, msg.ID,
			log.FieldError, err.Error())
	}
}

// Transactions returns the month's entries grouped by day, newest day
// first, with per-day totals.
func (l *Ledger) Transactions(ctx context.Context, userID string, month core.Period) ([]core.DayGroup, error) {
	first, last := month.Bounds()
	filter := store.EntryFilter{From: &first, To: &last}

	var (
		expenses []core.Expense
		incomes  []core.Income
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		expenses, err = l.store.ListExpenses(gctx, userID, filter)
		return err
	})
	g.Go(func() error {
		var err error
		incomes, err = l.store.ListIncomes(gctx, userID, filter)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load transactions: %w", err)
	}

	return core.GroupByDate(core.MergeEntries(expenses, incomes)), nil
}

// Dashboard is the month summary: totals, budget usage, and breakdowns.
type Dashboard struct {
	Month           core.Period                `json:"month"`
	TotalExpense    int64                      `json:"total_expense"`
	TotalIncome     int64                      `json:"total_income"`
	Budget          int64                      `json:"budget"`
	BudgetUsagePct  int64                      `json:"budget_usage_pct"`
	Remaining       int64                      `json:"remaining"`
	ByCategory      []core.CategoryAmount      `json:"by_category"`
	ByType          map[core.ExpenseType]int64 `json:"by_type"`
	CategoryBudgets map[string]int64           `json:"category_budgets"`
	SuggestedBudget int64                      `json:"suggested_budget"`
	Months          []core.Period              `json:"months"`
}

// dashboardMonths is how far back the month picker reaches.
const dashboardMonths = 6

// BuildDashboard assembles the month summary. The independent reads run
// concurrently and are joined before anything is computed.
func (l *Ledger) BuildDashboard(ctx context.Context, userID string, month core.Period) (Dashboard, error) {
	first, last := month.Bounds()
	filter := store.EntryFilter{From: &first, To: &last}

	var (
		expenses     []core.Expense
		incomes      []core.Income
		budgetAmount int64
		categoryCaps map[string]int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		expenses, err = l.store.ListExpenses(gctx, userID, filter)
		return err
	})
	g.Go(func() error {
		var err error
		incomes, err = l.store.ListIncomes(gctx, userID, filter)
		return err
	})
	g.Go(func() error {
		var err error
		budgetAmount, err = l.budgets.Effective(gctx, userID, month)
		return err
	})
	g.Go(func() error {
		var err error
		categoryCaps, err = l.budgets.AllCategories(gctx, userID, month)
		return err
	})
	if err := g.Wait(); err != nil {
		return Dashboard{}, fmt.Errorf("load dashboard: %w", err)
	}

	totalExpense := core.SumExpenses(expenses)
	totalIncome := core.SumIncomes(incomes)

	d := Dashboard{
		Month:           month,
		TotalExpense:    totalExpense,
		TotalIncome:     totalIncome,
		Budget:          budgetAmount,
		Remaining:       budgetAmount - totalExpense,
		ByCategory:      core.TopCategories(core.GroupByCategory(expenses)),
		ByType:          core.SumByType(expenses),
		CategoryBudgets: categoryCaps,
		SuggestedBudget: budget.Suggested(totalIncome),
		Months:          core.RecentPeriods(dashboardMonths),
	}
	if budgetAmount > 0 {
		d.BudgetUsagePct = int64(float64(totalExpense)/float64(budgetAmount)*100 + 0.5)
	}
	return d, nil
}

// Close releases the store and publisher connections.
func (l *Ledger) Close() error {
	var errs []error
	if l.store != nil {
		if err := l.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("store: %w", err))
		}
	}
	if closer, ok := l.publisher.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("close ledger: %v", errs)
	}
	return nil
}

package worker

import (
	"context"
	"errors"
	"testing"

	"pocketrithm/internal/amqp"
	"pocketrithm/internal/core"
	"pocketrithm/internal/store"
)

func newTestWorker() (*SyncWorker, *store.Memory, *store.Memory) {
	local := store.NewMemory()
	remote := store.NewMemory()
	return NewSyncWorker(local, remote, nil), local, remote
}

func TestHandleMessage_ExpenseUpsert(t *testing.T) {
	ctx := context.Background()
	w, local, remote := newTestWorker()

	e := core.Expense{
		UserID:   "u1",
		Amount:   9000,
		Category: "Food",
		Type:     core.Need,
		Date:     core.NewDate(2024, 6, 3),
	}
	if err := local.CreateExpense(ctx, &e); err != nil {
		t.Fatalf("seed local: %v", err)
	}

	msg := amqp.NewEntrySyncMessage(amqp.KindExpense, amqp.OpUpsert, e.ID, "u1")
	if err := w.HandleMessage(ctx, msg); err != nil {
		t.Fatalf("handle: %v", err)
	}

	got, err := remote.GetExpense(ctx, "u1", e.ID)
	if err != nil {
		t.Fatalf("expense not replicated: %v", err)
	}
	if got.Amount != 9000 || got.Category != "Food" {
		t.Fatalf("replicated expense = %+v", got)
	}
}

func TestHandleMessage_ExpenseUpsertIsIdempotent(t *testing.T) {
	ctx := context.Background()
	w, local, remote := newTestWorker()

	e := core.Expense{UserID: "u1", Amount: 9000, Category: "Food", Type: core.Need, Date: core.NewDate(2024, 6, 3)}
	if err := local.CreateExpense(ctx, &e); err != nil {
		t.Fatalf("seed local: %v", err)
	}

	msg := amqp.NewEntrySyncMessage(amqp.KindExpense, amqp.OpUpsert, e.ID, "u1")
	if err := w.HandleMessage(ctx, msg); err != nil {
		t.Fatalf("first delivery: %v", err)
	}

	// Amount changes locally, then the message is redelivered.
	e.Amount = 12000
	if err := local.UpdateExpense(ctx, &e); err != nil {
		t.Fatalf("update local: %v", err)
	}
	if err := w.HandleMessage(ctx, msg); err != nil {
		t.Fatalf("redelivery: %v", err)
	}

	got, err := remote.GetExpense(ctx, "u1", e.ID)
	if err != nil {
		t.Fatalf("get remote: %v", err)
	}
	if got.Amount != 12000 {
		t.Fatalf("remote amount = %d, want 12000", got.Amount)
	}
}

func TestHandleMessage_UpsertSkipsVanishedRow(t *testing.T) {
	ctx := context.Background()
	w, _, remote := newTestWorker()

	msg := amqp.NewEntrySyncMessage(amqp.KindExpense, amqp.OpUpsert, "gone", "u1")
	if err := w.HandleMessage(ctx, msg); err != nil {
		t.Fatalf("vanished row must not requeue: %v", err)
	}

	if _, err := remote.GetExpense(ctx, "u1", "gone"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("unexpected remote row, err = %v", err)
	}
}

func TestHandleMessage_IncomeDelete(t *testing.T) {
	ctx := context.Background()
	w, _, remote := newTestWorker()

	i := core.Income{UserID: "u1", Amount: 500000, Source: "Salary", Date: core.NewDate(2024, 6, 25)}
	if err := remote.CreateIncome(ctx, &i); err != nil {
		t.Fatalf("seed remote: %v", err)
	}

	msg := amqp.NewEntrySyncMessage(amqp.KindIncome, amqp.OpDelete, i.ID, "u1")
	if err := w.HandleMessage(ctx, msg); err != nil {
		t.Fatalf("handle: %v", err)
	}

	if _, err := remote.GetIncome(ctx, "u1", i.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("income still present, err = %v", err)
	}

	// Deleting again is fine; the row is already gone.
	if err := w.HandleMessage(ctx, msg); err != nil {
		t.Fatalf("redelivered delete: %v", err)
	}
}

func TestHandleMessage_UnknownKindIsDropped(t *testing.T) {
	ctx := context.Background()
	w, _, _ := newTestWorker()

	msg := amqp.NewEntrySyncMessage("transfer", amqp.OpUpsert, "x", "u1")
	if err := w.HandleMessage(ctx, msg); err != nil {
		t.Fatalf("unknown kind must be dropped, not requeued: %v", err)
	}
}

// failingStore errors on every expense write, standing in for a hosted
// backend outage.
type failingStore struct {
	store.Store
}

func (f failingStore) CreateExpense(ctx context.Context, e *core.Expense) error {
	return errors.New("remote unavailable")
}

func (f failingStore) UpdateExpense(ctx context.Context, e *core.Expense) error {
	return errors.New("remote unavailable")
}

func TestStatsCountProcessedAndFailed(t *testing.T) {
	ctx := context.Background()
	local := store.NewMemory()
	w := NewSyncWorker(local, failingStore{Store: store.NewMemory()}, nil)

	e := core.Expense{UserID: "u1", Amount: 9000, Category: "Food", Type: core.Need, Date: core.NewDate(2024, 6, 3)}
	if err := local.CreateExpense(ctx, &e); err != nil {
		t.Fatalf("seed local: %v", err)
	}

	if err := w.HandleMessage(ctx, amqp.NewEntrySyncMessage(amqp.KindExpense, amqp.OpUpsert, e.ID, "u1")); err == nil {
		t.Fatal("replication against a down backend should error")
	}
	if err := w.HandleMessage(ctx, amqp.NewEntrySyncMessage(amqp.KindExpense, amqp.OpDelete, e.ID, "u1")); err != nil {
		t.Fatalf("delete: %v", err)
	}

	processed, failed := w.Stats()
	if processed != 1 {
		t.Errorf("processed = %d, want 1", processed)
	}
	if failed != 1 {
		t.Errorf("failed = %d, want 1", failed)
	}
}

package worker

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"pocketrithm/internal/amqp"
	"pocketrithm/internal/log"
	"pocketrithm/internal/store"
)

// SyncWorker replicates locally written entries to the hosted backend. It
// consumes lightweight sync messages, loads the row from the local store,
// and mirrors the operation remotely.
type SyncWorker struct {
	local  store.Store
	remote store.Store
	logger *log.Logger

	processed int64
	failed    int64
}

func NewSyncWorker(local, remote store.Store, logger *log.Logger) *SyncWorker {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &SyncWorker{
		local:  local,
		remote: remote,
		logger: logger.WithComponent(log.ComponentWorker),
	}
}

// HandleMessage processes a single entry sync message. Returning an error
// nacks the delivery back onto the queue.
func (w *SyncWorker) HandleMessage(ctx context.Context, msg *amqp.EntrySyncMessage) error {
	err := w.handle(ctx, msg)
	if err != nil {
		atomic.AddInt64(&w.failed, 1)
		return err
	}
	atomic.AddInt64(&w.processed, 1)
	return nil
}

// Stats returns how many messages were handled and how many were nacked,
// for the periodic worker report.
func (w *SyncWorker) Stats() (processed, failed int64) {
	return atomic.LoadInt64(&w.processed), atomic.LoadInt64(&w.failed)
}

func (w *SyncWorker) handle(ctx context.Context, msg *amqp.EntrySyncMessage) error {
	w.logger.InfoContext(ctx, "Processing sync message",
		log.FieldEntryKind, msg.Kind,
		log.FieldOperation, msg.Op,
		log.FieldEntryID, msg.ID)

	switch {
	case msg.Kind == amqp.KindExpense && msg.Op == amqp.OpUpsert:
		return w.syncExpense(ctx, msg)
	case msg.Kind == amqp.KindExpense && msg.Op == amqp.OpDelete:
		return w.deleteRemote(ctx, msg, w.remote.DeleteExpense)
	case msg.Kind == amqp.KindIncome && msg.Op == amqp.OpUpsert:
		return w.syncIncome(ctx, msg)
	case msg.Kind == amqp.KindIncome && msg.Op == amqp.OpDelete:
		return w.deleteRemote(ctx, msg, w.remote.DeleteIncome)
	default:
		// Unknown messages are dropped, not requeued forever.
		w.logger.WarnContext(ctx, "Dropping unknown sync message",
			log.FieldEntryKind, msg.Kind,
			log.FieldOperation, msg.Op)
		return nil
	}
}

func (w *SyncWorker) syncExpense(ctx context.Context, msg *amqp.EntrySyncMessage) error {
	e, err := w.local.GetExpense(ctx, msg.UserID, msg.ID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Row deleted locally before this message was handled; the
			// delete message will follow.
			w.logger.WarnContext(ctx, "Expense vanished before sync, skipping",
				log.FieldEntryID, msg.ID)
			return nil
		}
		return fmt.Errorf("load expense: %w", err)
	}

	if err := w.upsertRemote(func() error {
		return w.remote.CreateExpense(ctx, &e)
	}, func() error {
		return w.remote.UpdateExpense(ctx, &e)
	}); err != nil {
		return fmt.Errorf("replicate expense: %w", err)
	}

	w.logger.InfoContext(ctx, "Expense replicated",
		log.FieldEntryID, e.ID,
		log.FieldAmount, e.Amount)
	return nil
}

func (w *SyncWorker) syncIncome(ctx context.Context, msg *amqp.EntrySyncMessage) error {
	i, err := w.local.GetIncome(ctx, msg.UserID, msg.ID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			w.logger.WarnContext(ctx, "Income vanished before sync, skipping",
				log.FieldEntryID, msg.ID)
			return nil
		}
		return fmt.Errorf("load income: %w", err)
	}

	if err := w.upsertRemote(func() error {
		return w.remote.CreateIncome(ctx, &i)
	}, func() error {
		return w.remote.UpdateIncome(ctx, &i)
	}); err != nil {
		return fmt.Errorf("replicate income: %w", err)
	}

	w.logger.InfoContext(ctx, "Income replicated",
		log.FieldEntryID, i.ID,
		log.FieldAmount, i.Amount)
	return nil
}

// upsertRemote tries a create first and falls back to an update when the
// row already exists remotely (a replayed message).
func (w *SyncWorker) upsertRemote(create, update func() error) error {
	err := create()
	if err == nil {
		return nil
	}
	if errors.Is(err, store.ErrDuplicate) {
		return update()
	}
	return err
}

func (w *SyncWorker) deleteRemote(ctx context.Context, msg *amqp.EntrySyncMessage, del func(context.Context, string, string) error) error {
	err := del(ctx, msg.UserID, msg.ID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("replicate delete: %w", err)
	}
	w.logger.InfoContext(ctx, "Remote entry deleted",
		log.FieldEntryKind, msg.Kind,
		log.FieldEntryID, msg.ID)
	return nil
}

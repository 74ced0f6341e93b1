package services

import (
	"context"
	"errors"
	"fmt"

	"pocketrithm/internal/core"
	"pocketrithm/internal/log"
	"pocketrithm/internal/store"
)

// Categories manages a user's category taxonomy.
type Categories struct {
	store  store.Store
	logger *log.Logger
}

func NewCategories(st store.Store, logger *log.Logger) *Categories {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &Categories{
		store:  st,
		logger: logger.WithComponent(log.ComponentLedger),
	}
}

func (c *Categories) Create(ctx context.Context, cat *core.Category) error {
	if err := cat.Validate(); err != nil {
		return err
	}
	if err := c.store.CreateCategory(ctx, cat); err != nil {
		return fmt.Errorf("create category: %w", err)
	}
	return nil
}

func (c *Categories) List(ctx context.Context, userID string, kind core.CategoryKind) ([]core.Category, error) {
	return c.store.ListCategories(ctx, userID, kind)
}

func (c *Categories) Update(ctx context.Context, cat *core.Category) error {
	if err := cat.Validate(); err != nil {
		return err
	}
	if err := c.store.UpdateCategory(ctx, cat); err != nil {
		return fmt.Errorf("update category: %w", err)
	}
	return nil
}

func (c *Categories) Delete(ctx context.Context, userID, id string) error {
	if err := c.store.DeleteCategory(ctx, userID, id); err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	return nil
}

// Reorder rewrites order_index for every listed category in one pass.
func (c *Categories) Reorder(ctx context.Context, userID string, kind core.CategoryKind, orderedIDs []string) error {
	if err := kind.Validate(); err != nil {
		return err
	}
	if err := c.store.ReorderCategories(ctx, userID, kind, orderedIDs); err != nil {
		return fmt.Errorf("reorder categories: %w", err)
	}
	return nil
}

// SeedDefaults inserts the built-in category sets. Categories the user
// already has (same name and kind) are skipped, so seeding is idempotent.
func (c *Categories) SeedDefaults(ctx context.Context, userID string) (int, error) {
	seeded := 0
	defaults := append(core.DefaultExpenseCategories(), core.DefaultIncomeCategories()...)
	for i := range defaults {
		cat := defaults[i]
		cat.UserID = userID
		err := c.store.CreateCategory(ctx, &cat)
		if err != nil {
			if errors.Is(err, store.ErrDuplicate) {
				continue
			}
			return seeded, fmt.Errorf("seed category %q: %w", cat.Name, err)
		}
		seeded++
	}
	c.logger.InfoContext(ctx, "Default categories seeded",
		log.FieldUserID, userID,
		"seeded", seeded)
	return seeded, nil
}

package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"pocketrithm/internal/auth"
	"pocketrithm/internal/log"
	"pocketrithm/internal/retry"
	"pocketrithm/internal/store"
)

// Account handles account deletion: purge the user's rows, remove the
// profile, delete the auth identity, sign out. Child purges are best-effort
// and reported as warnings; the identity delete is the step that must land.
type Account struct {
	store  store.Store
	admin  auth.Admin
	policy retry.Policy
	logger *log.Logger
}

// DefaultDeletePolicy retries the identity delete once when the provider
// reports a generic database error, which shows up when orphaned rows still
// reference the auth user.
func DefaultDeletePolicy() retry.Policy {
	return retry.Policy{
		MaxAttempts: 2,
		Backoff:     500 * time.Millisecond,
		Retryable:   isProviderDatabaseError,
	}
}

func isProviderDatabaseError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(strings.ToLower(err.Error()), "database error")
}

func NewAccount(st store.Store, admin auth.Admin, policy retry.Policy, logger *log.Logger) *Account {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &Account{
		store:  st,
		admin:  admin,
		policy: policy,
		logger: logger.WithComponent(log.ComponentAccount),
	}
}

// Delete removes the user's account. token is the caller's session token,
// used only for the final sign-out. Returned warnings are non-fatal
// problems from the best-effort steps.
func (a *Account) Delete(ctx context.Context, userID, token string) ([]string, error) {
	var (
		mu       sync.Mutex
		warnings []string
	)
	warn := func(step string, err error) {
		mu.Lock()
		warnings = append(warnings, fmt.Sprintf("%s: %v", step, err))
		mu.Unlock()
		a.logger.WarnContext(ctx, "Account deletion step failed, continuing",
			log.FieldUserID, userID,
			log.FieldOperation, step,
			log.FieldError, err.Error())
	}

	// Child rows go first, concurrently. Failures here leave orphans the
	// identity delete retry cleans up after, so they are warnings only.
	purges := []struct {
		name string
		fn   func(context.Context, string) error
	}{
		{"purge expenses", a.store.DeleteAllExpenses},
		{"purge incomes", a.store.DeleteAllIncomes},
		{"purge categories", a.store.DeleteAllCategories},
		{"purge monthly budgets", a.store.DeleteAllMonthlyBudgets},
		{"purge category budgets", a.store.DeleteAllCategoryBudgets},
	}
	g := new(errgroup.Group)
	for _, purge := range purges {
		purge := purge
		g.Go(func() error {
			if err := purge.fn(ctx, userID); err != nil {
				warn(purge.name, err)
			}
			return nil
		})
	}
	_ = g.Wait()

	if err := a.store.DeleteProfile(ctx, userID); err != nil {
		return warnings, fmt.Errorf("delete profile: %w", err)
	}

	// The identity delete can fail with a generic database error while the
	// profile row still lingers; re-purge it before the retry.
	err := a.policy.Do(ctx, func(attempt int) error {
		if attempt > 0 {
			a.logger.InfoContext(ctx, "Retrying identity delete after profile re-purge",
				log.FieldUserID, userID,
				log.FieldAttempt, attempt)
			if err := a.store.DeleteProfile(ctx, userID); err != nil {
				warn("re-purge profile", err)
			}
		}
		return a.admin.DeleteUser(ctx, userID)
	})
	if err != nil {
		return warnings, fmt.Errorf("delete auth identity: %w", err)
	}

	if token != "" {
		if err := a.admin.SignOut(ctx, token); err != nil {
			warn("sign out", err)
		}
	}

	a.logger.InfoContext(ctx, "Account deleted",
		log.FieldUserID, userID,
		"warnings", len(warnings))
	return warnings, nil
}

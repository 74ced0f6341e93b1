package store

import (
	"fmt"
	"strings"
)

// classify turns a raw backend error into one of the typed sentinels.
// PostgREST and sqlite both report constraint and lookup failures as
// message text; matching on that text happens here and nowhere else.
func classify(err error) error {
	if err == nil {
		return nil
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "duplicate key"),
		strings.Contains(msg, "unique constraint"),
		strings.Contains(msg, "23505"):
		return fmt.Errorf("%v: %w", err, ErrDuplicate)
	case strings.Contains(msg, "not found"),
		strings.Contains(msg, "no rows"),
		strings.Contains(msg, "pgrst116"):
		return fmt.Errorf("%v: %w", err, ErrNotFound)
	case strings.Contains(msg, "rate limit"),
		strings.Contains(msg, "too many requests"),
		strings.Contains(msg, "429"):
		return fmt.Errorf("%v: %w", err, ErrRateLimited)
	default:
		return err
	}
}

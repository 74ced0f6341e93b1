package http

import (
	"fmt"
	"net/http"

	"pocketrithm/internal/core"
	"pocketrithm/internal/store"
)

// entryFilterFrom maps list query parameters onto a store filter. A month
// parameter expands to the month's date bounds; explicit from/to win over it.
func entryFilterFrom(r *http.Request) (store.EntryFilter, error) {
	q := r.URL.Query()
	var f store.EntryFilter

	if m := q.Get("month"); m != "" {
		month, err := core.ParsePeriod(m)
		if err != nil {
			return f, err
		}
		first, last := month.Bounds()
		f.From, f.To = &first, &last
	}
	if v := q.Get("from"); v != "" {
		d, err := core.ParseDate(v)
		if err != nil {
			return f, fmt.Errorf("invalid from date %q: %w", v, err)
		}
		f.From = &d
	}
	if v := q.Get("to"); v != "" {
		d, err := core.ParseDate(v)
		if err != nil {
			return f, fmt.Errorf("invalid to date %q: %w", v, err)
		}
		f.To = &d
	}
	if v := q.Get("type"); v != "" {
		t := core.ExpenseType(v)
		if err := t.Validate(); err != nil {
			return f, err
		}
		f.Type = t
	}
	f.Emotion = q.Get("emotion")
	return f, nil
}

// monthParam reads the month from the path or query, defaulting to the
// current month when absent.
func monthParam(r *http.Request) (core.Period, error) {
	raw := r.PathValue("month")
	if raw == "" {
		raw = r.URL.Query().Get("month")
	}
	if raw == "" {
		return core.CurrentPeriod(), nil
	}
	return core.ParsePeriod(raw)
}

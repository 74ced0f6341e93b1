package core

import "sort"

const (
	ExpenseEntry EntryKind = "expense"
	IncomeEntry  EntryKind = "income"
)

type (
	// EntryKind tags a feed entry as money out or money in.
	EntryKind string

	// Entry is the unified feed view of an expense or an income record.
	Entry struct {
		ID          string      `json:"id"`
		Kind        EntryKind   `json:"kind"`
		Amount      int64       `json:"amount"`
		Category    string      `json:"category"`
		Title       string      `json:"title,omitempty"`
		Date        Date        `json:"date"`
		ExpenseType ExpenseType `json:"expense_type,omitempty"`
		Emotions    []string    `json:"emotions,omitempty"`
	}

	// DayGroup is one feed bucket: all entries sharing a calendar day plus
	// the day's totals.
	DayGroup struct {
		Date         Date    `json:"date"`
		Entries      []Entry `json:"entries"`
		IncomeTotal  int64   `json:"income_total"`
		ExpenseTotal int64   `json:"expense_total"`
	}

	// CategoryAmount is an amount aggregated under one category name.
	CategoryAmount struct {
		Name   string `json:"name"`
		Amount int64  `json:"amount"`
	}
)

// SumExpenses reduces a slice of expenses to its total. Empty input sums
// to zero, not an error.
func SumExpenses(records []Expense) int64 {
	var total int64
	for _, r := range records {
		total += r.Amount
	}
	return total
}

// SumIncomes is the income counterpart of SumExpenses.
func SumIncomes(records []Income) int64 {
	var total int64
	for _, r := range records {
		total += r.Amount
	}
	return total
}

// MergeEntries flattens expenses and incomes into a single feed slice,
// expenses first, preserving the order each slice arrived in.
func MergeEntries(expenses []Expense, incomes []Income) []Entry {
	entries := make([]Entry, 0, len(expenses)+len(incomes))
	for _, e := range expenses {
		entries = append(entries, Entry{
			ID:          e.ID,
			Kind:        ExpenseEntry,
			Amount:      e.Amount,
			Category:    e.Category,
			Title:       e.Reason,
			Date:        e.Date,
			ExpenseType: e.Type,
			Emotions:    e.Emotions,
		})
	}
	for _, i := range incomes {
		entries = append(entries, Entry{
			ID:       i.ID,
			Kind:     IncomeEntry,
			Amount:   i.Amount,
			Category: i.Source,
			Title:    i.Memo,
			Date:     i.Date,
		})
	}
	return entries
}

// GroupByDate partitions entries into one bucket per distinct calendar day,
// most recent day first. Within a day the input order is preserved: the
// backend already orders by date desc, created_at desc, and re-sorting here
// would discard that tie-break.
func GroupByDate(entries []Entry) []DayGroup {
	byDay := make(map[string]*DayGroup)
	keys := make([]string, 0)

	for _, entry := range entries {
		key := entry.Date.String()
		group, ok := byDay[key]
		if !ok {
			group = &DayGroup{Date: entry.Date}
			byDay[key] = group
			keys = append(keys, key)
		}
		group.Entries = append(group.Entries, entry)
		if entry.Kind == IncomeEntry {
			group.IncomeTotal += entry.Amount
		} else {
			group.ExpenseTotal += entry.Amount
		}
	}

	// YYYY-MM-DD keys sort lexicographically in date order.
	sort.Sort(sort.Reverse(sort.StringSlice(keys)))

	groups := make([]DayGroup, 0, len(keys))
	for _, key := range keys {
		groups = append(groups, *byDay[key])
	}
	return groups
}

// GroupByCategory sums expenses per category name. Categories with no
// expenses in the input are simply absent, never zero-filled.
func GroupByCategory(records []Expense) map[string]int64 {
	totals := make(map[string]int64)
	for _, r := range records {
		totals[r.Category] += r.Amount
	}
	return totals
}

// SumByType breaks expenses down into the need/desire/lack buckets.
func SumByType(records []Expense) map[ExpenseType]int64 {
	totals := make(map[ExpenseType]int64)
	for _, r := range records {
		totals[r.Type] += r.Amount
	}
	return totals
}

// TopCategories returns category totals sorted descending by amount,
// ties broken by name so the order is stable.
func TopCategories(totals map[string]int64) []CategoryAmount {
	out := make([]CategoryAmount, 0, len(totals))
	for name, amount := range totals {
		out = append(out, CategoryAmount{Name: name, Amount: amount})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Amount != out[j].Amount {
			return out[i].Amount > out[j].Amount
		}
		return out[i].Name < out[j].Name
	})
	return out
}

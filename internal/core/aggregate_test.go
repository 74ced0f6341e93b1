package core

import "testing"

func TestSumExpenses(t *testing.T) {
	if got := SumExpenses(nil); got != 0 {
		t.Fatalf("empty sum = %d, want 0", got)
	}
	records := []Expense{
		{Amount: 1200},
		{Amount: 3500},
		{Amount: 300},
	}
	if got := SumExpenses(records); got != 5000 {
		t.Fatalf("sum = %d, want 5000", got)
	}
}

func TestSumIncomes(t *testing.T) {
	if got := SumIncomes([]Income{}); got != 0 {
		t.Fatalf("empty sum = %d, want 0", got)
	}
	if got := SumIncomes([]Income{{Amount: 500000}, {Amount: 120000}}); got != 620000 {
		t.Fatalf("sum = %d, want 620000", got)
	}
}

func TestGroupByDate(t *testing.T) {
	// Input arrives pre-sorted by date desc, created_at desc.
	entries := MergeEntries(
		[]Expense{
			{ID: "e1", Amount: 9000, Category: "Food", Type: Need, Date: NewDate(2024, 6, 3)},
			{ID: "e2", Amount: 4000, Category: "Cafe", Type: Desire, Date: NewDate(2024, 6, 3)},
			{ID: "e3", Amount: 15000, Category: "Shopping", Type: Lack, Date: NewDate(2024, 6, 1)},
		},
		[]Income{
			{ID: "i1", Amount: 500000, Source: "Salary", Date: NewDate(2024, 6, 2)},
		},
	)

	groups := GroupByDate(entries)
	if len(groups) != 3 {
		t.Fatalf("expected 3 buckets, got %d", len(groups))
	}

	// Descending date order.
	wantDates := []Date{NewDate(2024, 6, 3), NewDate(2024, 6, 2), NewDate(2024, 6, 1)}
	for i, g := range groups {
		if !g.Date.Equal(wantDates[i].Time) {
			t.Fatalf("bucket %d date = %s, want %s", i, g.Date, wantDates[i])
		}
	}

	if groups[0].ExpenseTotal != 13000 || groups[0].IncomeTotal != 0 {
		t.Fatalf("bucket 0 totals = (%d, %d), want (13000, 0)", groups[0].ExpenseTotal, groups[0].IncomeTotal)
	}
	if groups[1].IncomeTotal != 500000 {
		t.Fatalf("bucket 1 income = %d, want 500000", groups[1].IncomeTotal)
	}
	if groups[2].ExpenseTotal != 15000 {
		t.Fatalf("bucket 2 expense = %d, want 15000", groups[2].ExpenseTotal)
	}

	// Input order within a day must survive: no re-sort, the backend's
	// created_at tie-break is authoritative.
	if groups[0].Entries[0].ID != "e1" || groups[0].Entries[1].ID != "e2" {
		t.Fatalf("within-day order changed: %s, %s", groups[0].Entries[0].ID, groups[0].Entries[1].ID)
	}
}

func TestGroupByCategory(t *testing.T) {
	records := []Expense{
		{Amount: 1000, Category: "Food"},
		{Amount: 2500, Category: "Food"},
		{Amount: 700, Category: "Transport"},
	}
	totals := GroupByCategory(records)
	if len(totals) != 2 {
		t.Fatalf("expected 2 categories, got %d", len(totals))
	}
	if totals["Food"] != 3500 || totals["Transport"] != 700 {
		t.Fatalf("totals = %v", totals)
	}
	if _, ok := totals["Shopping"]; ok {
		t.Fatalf("unseen category must be absent, not zero-filled")
	}
}

func TestSumByType(t *testing.T) {
	records := []Expense{
		{Amount: 1000, Type: Need},
		{Amount: 2000, Type: Need},
		{Amount: 500, Type: Desire},
	}
	totals := SumByType(records)
	if totals[Need] != 3000 || totals[Desire] != 500 {
		t.Fatalf("totals = %v", totals)
	}
	if _, ok := totals[Lack]; ok {
		t.Fatalf("lack bucket should be absent for this input")
	}
}

func TestTopCategories(t *testing.T) {
	out := TopCategories(map[string]int64{"Food": 3000, "Cafe": 3000, "Transport": 9000})
	if len(out) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(out))
	}
	if out[0].Name != "Transport" {
		t.Fatalf("first row = %q, want Transport", out[0].Name)
	}
	// Equal amounts fall back to name order.
	if out[1].Name != "Cafe" || out[2].Name != "Food" {
		t.Fatalf("tie order = %q, %q", out[1].Name, out[2].Name)
	}
}

package http

import (
	"bytes"
	"context"
	"net/http"
	"testing"

	"pocketrithm/internal/core"
	"pocketrithm/internal/services"
	"pocketrithm/internal/store"
)

func seedMonth(t *testing.T, mem *store.Memory) {
	t.Helper()
	ctx := context.Background()

	expenses := []core.Expense{
		{UserID: "u1", Amount: 90000, Category: "Food", Type: core.Need, Date: core.NewDate(2024, 6, 3)},
		{UserID: "u1", Amount: 30000, Category: "Cafe", Type: core.Desire, Date: core.NewDate(2024, 6, 5)},
	}
	for i := range expenses {
		if err := mem.CreateExpense(ctx, &expenses[i]); err != nil {
			t.Fatalf("seed expense %d: %v", i, err)
		}
	}
	income := core.Income{UserID: "u1", Amount: 600000, Source: "Salary", Date: core.NewDate(2024, 6, 25)}
	if err := mem.CreateIncome(ctx, &income); err != nil {
		t.Fatalf("seed income: %v", err)
	}
}

func TestDashboardEndpoint(t *testing.T) {
	s, mem := newTestServer(t)
	seedMonth(t, mem)

	rec := doRequest(t, s, http.MethodGet, "/api/dashboard?month=2024-06", nil, testToken)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	d := decodeBody[services.Dashboard](t, rec)
	if d.TotalExpense != 120000 {
		t.Fatalf("total expense = %d, want 120000", d.TotalExpense)
	}
	if d.TotalIncome != 600000 {
		t.Fatalf("total income = %d, want 600000", d.TotalIncome)
	}
	if d.SuggestedBudget != 480000 {
		t.Fatalf("suggested = %d, want 480000", d.SuggestedBudget)
	}
	if len(d.ByCategory) != 2 || d.ByCategory[0].Name != "Food" {
		t.Fatalf("by category = %+v", d.ByCategory)
	}
	if len(d.Months) != 6 || d.Months[0] != core.CurrentPeriod() {
		t.Fatalf("month picker = %v", d.Months)
	}
}

func TestTransactionsEndpoint(t *testing.T) {
	s, mem := newTestServer(t)
	seedMonth(t, mem)

	rec := doRequest(t, s, http.MethodGet, "/api/transactions?month=2024-06", nil, testToken)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	groups := decodeBody[[]core.DayGroup](t, rec)
	if len(groups) != 3 {
		t.Fatalf("day buckets = %d, want 3", len(groups))
	}
	if groups[0].Date.String() != "2024-06-25" {
		t.Fatalf("first bucket = %s, want newest day", groups[0].Date)
	}
}

func TestTransactionsEmptyMonth(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doRequest(t, s, http.MethodGet, "/api/transactions?month=2020-01", nil, testToken)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if body := rec.Body.String(); body != "[]\n" {
		t.Fatalf("empty feed body = %q", body)
	}
}

func TestDashboardChart(t *testing.T) {
	s, mem := newTestServer(t)
	seedMonth(t, mem)

	rec := doRequest(t, s, http.MethodGet, "/api/dashboard/chart?month=2024-06", nil, testToken)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/png" {
		t.Fatalf("content type = %q", ct)
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte{0x89, 'P', 'N', 'G'}) {
		t.Fatal("body is not a PNG")
	}
}

func TestDashboardChartNoData(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doRequest(t, s, http.MethodGet, "/api/dashboard/chart?month=2020-01", nil, testToken)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
}

func TestTypeChart(t *testing.T) {
	s, mem := newTestServer(t)
	seedMonth(t, mem)

	rec := doRequest(t, s, http.MethodGet, "/api/dashboard/chart/types?month=2024-06", nil, testToken)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/png" {
		t.Fatalf("content type = %q", ct)
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte{0x89, 'P', 'N', 'G'}) {
		t.Fatal("body is not a PNG")
	}
}

func TestTypeChartNoData(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doRequest(t, s, http.MethodGet, "/api/dashboard/chart/types?month=2020-01", nil, testToken)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
}

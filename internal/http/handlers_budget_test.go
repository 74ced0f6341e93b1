package http

import (
	"context"
	"net/http"
	"testing"

	"pocketrithm/internal/core"
)

func TestDefaultBudgetRoundTrip(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doRequest(t, s, http.MethodGet, "/api/budget", nil, testToken)
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d", rec.Code)
	}
	if got := decodeBody[budgetBody](t, rec); got.Amount != 0 {
		t.Fatalf("fresh default = %d, want 0", got.Amount)
	}

	rec = doRequest(t, s, http.MethodPut, "/api/budget", budgetBody{Amount: 500000}, testToken)
	if rec.Code != http.StatusOK {
		t.Fatalf("put status = %d", rec.Code)
	}

	rec = doRequest(t, s, http.MethodGet, "/api/budget", nil, testToken)
	if got := decodeBody[budgetBody](t, rec); got.Amount != 500000 {
		t.Fatalf("default = %d, want 500000", got.Amount)
	}
}

func TestMonthlyBudgetOverride(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doRequest(t, s, http.MethodPut, "/api/budget", budgetBody{Amount: 500000}, testToken)
	if rec.Code != http.StatusOK {
		t.Fatalf("set default status = %d", rec.Code)
	}

	// Without an override the month resolves to the default.
	rec = doRequest(t, s, http.MethodGet, "/api/budget/2024-06", nil, testToken)
	month := decodeBody[struct {
		Month  core.Period `json:"month"`
		Amount int64       `json:"amount"`
	}](t, rec)
	if month.Amount != 500000 {
		t.Fatalf("effective = %d, want default 500000", month.Amount)
	}

	rec = doRequest(t, s, http.MethodPut, "/api/budget/2024-06", budgetBody{Amount: 350000}, testToken)
	if rec.Code != http.StatusOK {
		t.Fatalf("override status = %d", rec.Code)
	}

	rec = doRequest(t, s, http.MethodGet, "/api/budget/2024-06", nil, testToken)
	month = decodeBody[struct {
		Month  core.Period `json:"month"`
		Amount int64       `json:"amount"`
	}](t, rec)
	if month.Amount != 350000 {
		t.Fatalf("effective = %d, want override 350000", month.Amount)
	}

	// Other months are untouched.
	rec = doRequest(t, s, http.MethodGet, "/api/budget/2024-07", nil, testToken)
	month = decodeBody[struct {
		Month  core.Period `json:"month"`
		Amount int64       `json:"amount"`
	}](t, rec)
	if month.Amount != 500000 {
		t.Fatalf("2024-07 effective = %d, want 500000", month.Amount)
	}

	rec = doRequest(t, s, http.MethodDelete, "/api/budget/2024-06", nil, testToken)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("clear status = %d", rec.Code)
	}

	rec = doRequest(t, s, http.MethodGet, "/api/budget/2024-06", nil, testToken)
	month = decodeBody[struct {
		Month  core.Period `json:"month"`
		Amount int64       `json:"amount"`
	}](t, rec)
	if month.Amount != 500000 {
		t.Fatalf("effective after clear = %d, want 500000", month.Amount)
	}
}

func TestNegativeBudgetRejected(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doRequest(t, s, http.MethodPut, "/api/budget", budgetBody{Amount: -1}, testToken)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
}

func TestCategoryBudgets(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doRequest(t, s, http.MethodGet, "/api/budget/2024-06/categories", nil, testToken)
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d", rec.Code)
	}
	if got := decodeBody[map[string]int64](t, rec); len(got) != 0 {
		t.Fatalf("fresh caps = %v, want empty", got)
	}

	caps := map[string]int64{"cat-food": 250000, "cat-cafe": 50000}
	rec = doRequest(t, s, http.MethodPut, "/api/budget/2024-06/categories", caps, testToken)
	if rec.Code != http.StatusOK {
		t.Fatalf("put status = %d", rec.Code)
	}

	rec = doRequest(t, s, http.MethodGet, "/api/budget/2024-06/categories", nil, testToken)
	got := decodeBody[map[string]int64](t, rec)
	if got["cat-food"] != 250000 || got["cat-cafe"] != 50000 {
		t.Fatalf("caps = %v", got)
	}
}

func TestDistributeBudget(t *testing.T) {
	s, mem := newTestServer(t)
	ctx := context.Background()

	cats := []core.Category{
		{UserID: "u1", Name: "Rent", Kind: core.ExpenseCategory},
		{UserID: "u1", Name: "Fun", Kind: core.ExpenseCategory},
	}
	for i := range cats {
		if err := mem.CreateCategory(ctx, &cats[i]); err != nil {
			t.Fatalf("seed %d: %v", i, err)
		}
	}

	rec := doRequest(t, s, http.MethodPost, "/api/budget/2024-06/distribute", map[string]any{
		"total":  100000,
		"ratios": map[string]float64{cats[0].ID: 60, cats[1].ID: 40},
	}, testToken)
	if rec.Code != http.StatusOK {
		t.Fatalf("distribute status = %d, body %s", rec.Code, rec.Body.String())
	}

	result := decodeBody[struct {
		Allocation map[string]int64 `json:"allocation"`
		RatioSum   float64          `json:"ratio_sum"`
	}](t, rec)
	if result.Allocation[cats[0].ID] != 60000 || result.Allocation[cats[1].ID] != 40000 {
		t.Fatalf("allocation = %v", result.Allocation)
	}
	if result.RatioSum != 100 {
		t.Fatalf("ratio sum = %v, want 100", result.RatioSum)
	}

	// The allocation is persisted as category caps.
	rec = doRequest(t, s, http.MethodGet, "/api/budget/2024-06/categories", nil, testToken)
	caps := decodeBody[map[string]int64](t, rec)
	if caps[cats[0].ID] != 60000 {
		t.Fatalf("persisted caps = %v", caps)
	}
}

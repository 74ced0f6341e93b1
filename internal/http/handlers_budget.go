package http

import (
	"net/http"

	"pocketrithm/internal/budget"
	"pocketrithm/internal/core"
)

type budgetBody struct {
	Amount int64 `json:"amount"`
}

func (s *Server) handleGetDefaultBudget(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())

	amount, err := s.budgets.Default(r.Context(), user.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, budgetBody{Amount: amount})
}

func (s *Server) handleSetDefaultBudget(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())

	var req budgetBody
	if err := decodeJSON(r, &req); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Amount < 0 {
		writeError(w, r, core.ErrInvalidAmount)
		return
	}

	if err := s.budgets.SetDefault(r.Context(), user.ID, req.Amount); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, req)
}

func (s *Server) handleGetMonthlyBudget(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())

	month, err := monthParam(r)
	if err != nil {
		writeErrorMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	amount, err := s.budgets.Effective(r.Context(), user.ID, month)
	if err != nil {
		writeError(w, r, err)
		return
	}
	income, err := s.budgets.PeriodIncome(r.Context(), user.ID, month)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, struct {
		Month     core.Period `json:"month"`
		Amount    int64       `json:"amount"`
		Suggested int64       `json:"suggested"`
	}{
		Month:     month,
		Amount:    amount,
		Suggested: budget.Suggested(income),
	})
}

func (s *Server) handleSetMonthlyBudget(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())

	month, err := monthParam(r)
	if err != nil {
		writeErrorMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	var req budgetBody
	if err := decodeJSON(r, &req); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Amount < 0 {
		writeError(w, r, core.ErrInvalidAmount)
		return
	}

	if err := s.budgets.SetMonthly(r.Context(), user.ID, month, req.Amount); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, req)
}

func (s *Server) handleClearMonthlyBudget(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())

	month, err := monthParam(r)
	if err != nil {
		writeErrorMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.budgets.ClearMonthly(r.Context(), user.ID, month); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleGetCategoryBudgets(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())

	month, err := monthParam(r)
	if err != nil {
		writeErrorMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	caps, err := s.budgets.AllCategories(r.Context(), user.ID, month)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if caps == nil {
		caps = map[string]int64{}
	}
	writeJSON(w, http.StatusOK, caps)
}

func (s *Server) handleSetCategoryBudgets(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())

	month, err := monthParam(r)
	if err != nil {
		writeErrorMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	var caps map[string]int64
	if err := decodeJSON(r, &caps); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	for _, amount := range caps {
		if amount < 0 {
			writeError(w, r, core.ErrInvalidAmount)
			return
		}
	}

	if err := s.budgets.SetCategories(r.Context(), user.ID, month, caps); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, caps)
}

// handleDistributeBudget splits a total across the user's expense
// categories by the given ratios (built-in ratios when omitted), persists
// the result as category caps, and returns the allocation.
func (s *Server) handleDistributeBudget(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())

	month, err := monthParam(r)
	if err != nil {
		writeErrorMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	var req struct {
		Total  int64              `json:"total"`
		Ratios map[string]float64 `json:"ratios,omitempty"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Total < 0 {
		writeError(w, r, core.ErrInvalidAmount)
		return
	}

	categories, err := s.categories.List(r.Context(), user.ID, core.ExpenseCategory)
	if err != nil {
		writeError(w, r, err)
		return
	}

	allocation := core.Distribute(req.Total, categories, req.Ratios)
	if err := s.budgets.SetCategories(r.Context(), user.ID, month, allocation); err != nil {
		writeError(w, r, err)
		return
	}

	// ratio_sum lets the form tell the user how far off 100% they are.
	writeJSON(w, http.StatusOK, struct {
		Allocation map[string]int64 `json:"allocation"`
		RatioSum   float64          `json:"ratio_sum"`
	}{
		Allocation: allocation,
		RatioSum:   core.RatioSum(req.Ratios),
	})
}

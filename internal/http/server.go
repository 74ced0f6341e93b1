package http

import (
	"context"
	"net/http"
	"sync"

	"pocketrithm/internal/auth"
	"pocketrithm/internal/budget"
	"pocketrithm/internal/charts"
	"pocketrithm/internal/log"
	"pocketrithm/internal/middleware/ratelimit"
	"pocketrithm/internal/middleware/security"
	"pocketrithm/internal/middleware/trace"
	"pocketrithm/internal/services"
	"pocketrithm/internal/store"
)

// Server is the JSON API surface. Every /api route runs behind the trace,
// security-header, rate-limit, and bearer-auth middleware; health probes
// bypass all of it.
type Server struct {
	http.Server

	ledger     *services.Ledger
	categories *services.Categories
	budgets    *budget.Service
	account    *services.Account
	profiles   store.Store
	renderer   *charts.Renderer
	verifier   auth.Verifier

	limiter      *ratelimit.Limiter
	detector     *security.Detector
	logger       *log.Logger
	shutdownOnce sync.Once
}

// Config carries the wiring for NewServer. RequestsPerMinute bounds
// mutating requests per client IP.
type Config struct {
	Addr              string
	RequestsPerMinute int

	Ledger     *services.Ledger
	Categories *services.Categories
	Budgets    *budget.Service
	Account    *services.Account
	Store      store.Store
	Verifier   auth.Verifier
	Logger     *log.Logger
}

// NewServer configures routes and middleware, returning a ready-to-run
// http.Server.
func NewServer(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}

	s := &Server{
		ledger:     cfg.Ledger,
		categories: cfg.Categories,
		budgets:    cfg.Budgets,
		account:    cfg.Account,
		profiles:   cfg.Store,
		renderer:   charts.NewRenderer(),
		verifier:   cfg.Verifier,
		detector:   security.NewDetector(),
		limiter: ratelimit.NewLimiter(ratelimit.Config{
			RequestsPerMinute: cfg.RequestsPerMinute,
		}),
		logger: logger.WithComponent(log.ComponentHTTP),
	}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	// Expenses
	mux.Handle("GET /api/expenses", s.api(s.handleListExpenses))
	mux.Handle("POST /api/expenses", s.api(s.handleCreateExpense))
	mux.Handle("GET /api/expenses/{id}", s.api(s.handleGetExpense))
	mux.Handle("PUT /api/expenses/{id}", s.api(s.handleUpdateExpense))
	mux.Handle("DELETE /api/expenses/{id}", s.api(s.handleDeleteExpense))

	// Incomes
	mux.Handle("GET /api/incomes", s.api(s.handleListIncomes))
	mux.Handle("POST /api/incomes", s.api(s.handleCreateIncome))
	mux.Handle("GET /api/incomes/{id}", s.api(s.handleGetIncome))
	mux.Handle("PUT /api/incomes/{id}", s.api(s.handleUpdateIncome))
	mux.Handle("DELETE /api/incomes/{id}", s.api(s.handleDeleteIncome))

	// Categories
	mux.Handle("GET /api/categories", s.api(s.handleListCategories))
	mux.Handle("POST /api/categories", s.api(s.handleCreateCategory))
	mux.Handle("PUT /api/categories/{id}", s.api(s.handleUpdateCategory))
	mux.Handle("DELETE /api/categories/{id}", s.api(s.handleDeleteCategory))
	mux.Handle("POST /api/categories/reorder", s.api(s.handleReorderCategories))
	mux.Handle("POST /api/categories/defaults", s.api(s.handleSeedCategories))

	// Profile
	mux.Handle("GET /api/profile", s.api(s.handleGetProfile))
	mux.Handle("PUT /api/profile", s.api(s.handleUpdateProfile))

	// Budgets
	mux.Handle("GET /api/budget", s.api(s.handleGetDefaultBudget))
	mux.Handle("PUT /api/budget", s.api(s.handleSetDefaultBudget))
	mux.Handle("GET /api/budget/{month}", s.api(s.handleGetMonthlyBudget))
	mux.Handle("PUT /api/budget/{month}", s.api(s.handleSetMonthlyBudget))
	mux.Handle("DELETE /api/budget/{month}", s.api(s.handleClearMonthlyBudget))
	mux.Handle("GET /api/budget/{month}/categories", s.api(s.handleGetCategoryBudgets))
	mux.Handle("PUT /api/budget/{month}/categories", s.api(s.handleSetCategoryBudgets))
	mux.Handle("POST /api/budget/{month}/distribute", s.api(s.handleDistributeBudget))

	// Dashboard and feed
	mux.Handle("GET /api/dashboard", s.api(s.handleDashboard))
	mux.Handle("GET /api/dashboard/chart", s.api(s.handleDashboardChart))
	mux.Handle("GET /api/dashboard/chart/types", s.api(s.handleTypeChart))
	mux.Handle("GET /api/transactions", s.api(s.handleTransactions))

	// Account
	mux.Handle("DELETE /api/account", s.api(s.handleDeleteAccount))

	traced := trace.NewMiddleware(s.detector.ExtractClientIP)
	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	limited := s.limiter.Middleware(s.detector.ExtractClientIP, s.onRateLimit)

	s.Server = http.Server{
		Addr:    cfg.Addr,
		Handler: traced.Middleware(headers.Middleware(limited(s.flagSuspicious(mux)))),
	}
	return s
}

// flagSuspicious logs probe traffic before routing. Requests are never
// blocked on the flag alone.
func (s *Server) flagSuspicious(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.detector.DetectSuspiciousRequest(r) {
			s.logger.WarnContext(r.Context(), "Suspicious request detected",
				log.FieldMethod, r.Method,
				log.FieldPath, r.URL.Path,
				log.FieldClientIP, s.detector.ExtractClientIP(r))
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) onRateLimit(w http.ResponseWriter, r *http.Request) {
	s.logger.WarnContext(r.Context(), "Rate limit exceeded",
		log.FieldClientIP, s.detector.ExtractClientIP(r),
		log.FieldMethod, r.Method,
		log.FieldPath, r.URL.Path)
	w.Header().Set("Retry-After", "60")
	writeErrorMessage(w, http.StatusTooManyRequests, "rate limit exceeded")
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// Shutdown stops the server and the limiter cleanup goroutine.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		if s.limiter != nil {
			s.limiter.Stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

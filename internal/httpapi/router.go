// Package httpapi wires the HTTP surface of the budgeting service.
// It keeps handlers thin, delegating the balance and carryover rules to
// the service layer.
package httpapi

import (
    "net/http"

    chi "github.com/go-chi/chi/v5"
    chimw "github.com/go-chi/chi/v5/middleware"
    "log/slog"

    "github.com/thgaskell/budget-sub000/internal/service/assignment"
    "github.com/thgaskell/budget-sub000/internal/service/report"
    "github.com/thgaskell/budget-sub000/internal/service/summary"
    "github.com/thgaskell/budget-sub000/internal/service/transaction"
)

// Server wires handlers and middleware using Chi. The services all share
// one ledger store; the summary service doubles as the recalculator the
// mutating services call after every write.
type Server struct {
    store       Store
    txnSvc      transaction.Service
    assignSvc   assignment.Service
    reportSvc   report.Service
    summarySvc  summary.Service
    log         *slog.Logger
    rt          *chi.Mux
}

// New constructs the HTTP server with routes and middleware.
func New(store Store, logger *slog.Logger) *Server {
    r := chi.NewRouter()
    r.Use(chimw.RequestID)
    r.Use(requestLogger(logger))
    r.Use(recoverer(logger))
    r.Use(metricsMiddleware)

    summarySvc := summary.New(store)
    s := &Server{
        store:      store,
        txnSvc:     transaction.New(store, summarySvc),
        assignSvc:  assignment.New(store, summarySvc),
        reportSvc:  report.New(store, summarySvc),
        summarySvc: summarySvc,
        rt:         r,
        log:        logger,
    }
    s.routes()
    return s
}

// Handler exposes the configured http.Handler.
func (s *Server) Handler() http.Handler { return s.rt }

// routes declares the public HTTP API endpoints.
func (s *Server) routes() {
    // Budgets
    s.rt.Post("/v1/budgets", s.postBudget)
    s.rt.Get("/v1/budgets", s.listBudgets)
    s.rt.Get("/v1/budgets/{id}", s.getBudget)
    s.rt.Get("/v1/budgets/{id}/ready-to-assign", s.getReadyToAssign)
    s.rt.Get("/v1/budgets/{id}/months/{month}", s.getMonthSummary)
    s.rt.Get("/v1/budgets/{id}/months/{month}/inherited", s.getInheritedAssignments)
    // Accounts
    s.rt.Post("/v1/accounts", s.postAccount)
    s.rt.Get("/v1/accounts", s.listAccounts)
    s.rt.Get("/v1/accounts/{id}", s.getAccount)
    s.rt.Get("/v1/accounts/{id}/balances", s.getAccountBalances)
    // Category groups and categories
    s.rt.Post("/v1/category-groups", s.postCategoryGroup)
    s.rt.Get("/v1/category-groups", s.listCategoryGroups)
    s.rt.Post("/v1/categories", s.postCategory)
    s.rt.Get("/v1/categories", s.listCategories)
    s.rt.Get("/v1/categories/defaults", s.getCategoryDefaults)
    s.rt.Get("/v1/categories/{id}/balances", s.getCategoryBalances)
    s.rt.Delete("/v1/categories/{id}", s.deleteCategory)
    // Payees
    s.rt.Post("/v1/payees", s.postPayee)
    s.rt.Get("/v1/payees", s.listPayees)
    // Transactions and transfers
    s.rt.Post("/v1/transactions", s.postTransaction)
    s.rt.Get("/v1/transactions", s.listTransactions)
    s.rt.Get("/v1/transactions/{id}", s.getTransaction)
    s.rt.Patch("/v1/transactions/{id}", s.patchTransaction)
    s.rt.Delete("/v1/transactions/{id}", s.deleteTransaction)
    s.rt.Post("/v1/transfers", s.postTransfer)
    // Assignments
    s.rt.Put("/v1/assignments", s.putAssignment)
    s.rt.Post("/v1/assignments/move", s.postAssignmentMove)
    // Ops
    s.rt.Get("/healthz", s.healthz)
    s.rt.Get("/readyz", s.readyz)
    s.rt.Method(http.MethodGet, "/metrics", metricsHandler())
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) }

func (s *Server) readyz(w http.ResponseWriter, r *http.Request) {
    if rc, ok := s.store.(ReadyChecker); ok {
        if err := rc.Ready(r.Context()); err != nil {
            w.WriteHeader(http.StatusServiceUnavailable)
            return
        }
    }
    w.WriteHeader(http.StatusOK)
}

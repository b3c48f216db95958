package httpapi

import (
    "net/http"

    chi "github.com/go-chi/chi/v5"
    "github.com/google/uuid"

    "github.com/thgaskell/budget-sub000/internal/budget"
)

// getReadyToAssign handles GET /v1/budgets/{id}/ready-to-assign?month=YYYY-MM.
func (s *Server) getReadyToAssign(w http.ResponseWriter, r *http.Request) {
    budgetID, err := uuid.Parse(chi.URLParam(r, "id"))
    if err != nil {
        badRequest(w, "invalid budget id")
        return
    }
    m, err := budget.ParseMonth(r.URL.Query().Get("month"))
    if err != nil {
        badRequest(w, "invalid month, want YYYY-MM")
        return
    }
    b, err := s.store.GetBudget(r.Context(), budgetID)
    if err != nil {
        writeServiceErr(w, err)
        return
    }
    rta, err := s.reportSvc.ReadyToAssign(r.Context(), budgetID, m)
    if err != nil {
        writeServiceErr(w, err)
        return
    }
    toJSON(w, http.StatusOK, readyToAssignResponse{
        BudgetID:      budgetID,
        Month:         m,
        ReadyToAssign: rta,
        Formatted:     amountString(b.Currency, rta),
    })
}

// getMonthSummary handles GET /v1/budgets/{id}/months/{month}, serving the
// cached closing figures and computing them on a miss.
func (s *Server) getMonthSummary(w http.ResponseWriter, r *http.Request) {
    budgetID, err := uuid.Parse(chi.URLParam(r, "id"))
    if err != nil {
        badRequest(w, "invalid budget id")
        return
    }
    m, err := budget.ParseMonth(chi.URLParam(r, "month"))
    if err != nil {
        badRequest(w, "invalid month, want YYYY-MM")
        return
    }
    if _, err := s.store.GetBudget(r.Context(), budgetID); err != nil {
        writeServiceErr(w, err)
        return
    }
    sum, err := s.summarySvc.GetOrCalculate(r.Context(), budgetID, m)
    if err != nil {
        writeServiceErr(w, err)
        return
    }
    toJSON(w, http.StatusOK, toMonthSummaryResponse(sum))
}

// getInheritedAssignments handles GET /v1/budgets/{id}/months/{month}/inherited,
// reporting each category's most recent assignment strictly before the month.
func (s *Server) getInheritedAssignments(w http.ResponseWriter, r *http.Request) {
    budgetID, err := uuid.Parse(chi.URLParam(r, "id"))
    if err != nil {
        badRequest(w, "invalid budget id")
        return
    }
    m, err := budget.ParseMonth(chi.URLParam(r, "month"))
    if err != nil {
        badRequest(w, "invalid month, want YYYY-MM")
        return
    }
    if _, err := s.store.GetBudget(r.Context(), budgetID); err != nil {
        writeServiceErr(w, err)
        return
    }
    inherited, err := s.summarySvc.LastAssignmentsBeforeMonth(r.Context(), budgetID, m)
    if err != nil {
        writeServiceErr(w, err)
        return
    }
    out := make([]assignmentResponse, 0, len(inherited))
    for _, a := range inherited {
        out = append(out, toAssignmentResponse(a))
    }
    toJSON(w, http.StatusOK, inheritedAssignmentsResponse{
        BudgetID:    budgetID,
        Month:       m,
        Assignments: out,
    })
}

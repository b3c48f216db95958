package httpapi

import (
    "encoding/json"
    "net/http"

    "github.com/google/uuid"

    "github.com/thgaskell/budget-sub000/internal/budget"
)

func (s *Server) postPayee(w http.ResponseWriter, r *http.Request) {
    if !requireJSON(w, r) {
        return
    }
    var req postPayeeRequest
    dec := json.NewDecoder(r.Body)
    dec.DisallowUnknownFields()
    if err := dec.Decode(&req); err != nil {
        badRequest(w, "invalid JSON: "+err.Error())
        return
    }
    if req.Name == "" {
        badRequest(w, "name is required")
        return
    }
    if _, err := s.store.GetBudget(r.Context(), req.BudgetID); err != nil {
        writeServiceErr(w, err)
        return
    }
    p := budget.Payee{ID: uuid.New(), BudgetID: req.BudgetID, Name: req.Name}
    saved, err := s.store.SavePayee(r.Context(), p)
    if err != nil {
        writeServiceErr(w, err)
        return
    }
    toJSON(w, http.StatusCreated, toPayeeResponse(saved))
}

func (s *Server) listPayees(w http.ResponseWriter, r *http.Request) {
    budgetID, err := uuid.Parse(r.URL.Query().Get("budget_id"))
    if err != nil {
        badRequest(w, "invalid budget_id")
        return
    }
    payees, err := s.store.PayeesByBudget(r.Context(), budgetID)
    if err != nil {
        writeServiceErr(w, err)
        return
    }
    out := make([]payeeResponse, 0, len(payees))
    for _, p := range payees {
        out = append(out, toPayeeResponse(p))
    }
    toJSON(w, http.StatusOK, out)
}

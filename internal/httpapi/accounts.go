package httpapi

import (
    "encoding/json"
    "net/http"

    chi "github.com/go-chi/chi/v5"
    "github.com/google/uuid"

    "github.com/thgaskell/budget-sub000/internal/budget"
)

func (s *Server) postAccount(w http.ResponseWriter, r *http.Request) {
    if !requireJSON(w, r) {
        return
    }
    var req postAccountRequest
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
    if !req.Type.Valid() {
        badRequest(w, "invalid account type")
        return
    }
    if _, err := s.store.GetBudget(r.Context(), req.BudgetID); err != nil {
        writeServiceErr(w, err)
        return
    }
    a := budget.Account{ID: uuid.New(), BudgetID: req.BudgetID, Name: req.Name, Type: req.Type, OnBudget: req.OnBudget}
    saved, err := s.store.SaveAccount(r.Context(), a)
    if err != nil {
        writeServiceErr(w, err)
        return
    }
    toJSON(w, http.StatusCreated, toAccountResponse(saved))
}

func (s *Server) listAccounts(w http.ResponseWriter, r *http.Request) {
    budgetID, err := uuid.Parse(r.URL.Query().Get("budget_id"))
    if err != nil {
        badRequest(w, "invalid budget_id")
        return
    }
    accounts, err := s.store.AccountsByBudget(r.Context(), budgetID)
    if err != nil {
        writeServiceErr(w, err)
        return
    }
    out := make([]accountResponse, 0, len(accounts))
    for _, a := range accounts {
        out = append(out, toAccountResponse(a))
    }
    toJSON(w, http.StatusOK, out)
}

func (s *Server) getAccount(w http.ResponseWriter, r *http.Request) {
    id, err := uuid.Parse(chi.URLParam(r, "id"))
    if err != nil {
        badRequest(w, "invalid account id")
        return
    }
    a, err := s.store.GetAccount(r.Context(), id)
    if err != nil {
        writeServiceErr(w, err)
        return
    }
    toJSON(w, http.StatusOK, toAccountResponse(a))
}

// getAccountBalances handles GET /v1/accounts/{id}/balances.
func (s *Server) getAccountBalances(w http.ResponseWriter, r *http.Request) {
    id, err := uuid.Parse(chi.URLParam(r, "id"))
    if err != nil {
        badRequest(w, "invalid account id")
        return
    }
    acc, err := s.store.GetAccount(r.Context(), id)
    if err != nil {
        writeServiceErr(w, err)
        return
    }
    bal, err := s.reportSvc.AccountBalances(r.Context(), id)
    if err != nil {
        writeServiceErr(w, err)
        return
    }
    currency := ""
    if b, err := s.store.GetBudget(r.Context(), acc.BudgetID); err == nil {
        currency = b.Currency
    }
    toJSON(w, http.StatusOK, accountBalancesResponse{
        AccountID:      id,
        Currency:       currency,
        ClearedMinor:   bal.Cleared,
        UnclearedMinor: bal.Uncleared,
        WorkingMinor:   bal.Working,
        Working:        amountString(currency, bal.Working),
    })
}

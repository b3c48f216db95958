package httpapi

import (
    "encoding/json"
    "net/http"

    chi "github.com/go-chi/chi/v5"
    "github.com/google/uuid"

    "github.com/thgaskell/budget-sub000/internal/budget"
    "github.com/thgaskell/budget-sub000/internal/meta"
)

func (s *Server) postTransaction(w http.ResponseWriter, r *http.Request) {
    if !requireJSON(w, r) {
        return
    }
    var req postTransactionRequest
    dec := json.NewDecoder(r.Body)
    dec.DisallowUnknownFields()
    if err := dec.Decode(&req); err != nil {
        badRequest(w, "invalid JSON: "+err.Error())
        return
    }
    t := budget.Transaction{
        AccountID:  req.AccountID,
        CategoryID: req.CategoryID,
        PayeeID:    req.PayeeID,
        Date:       budget.Date(req.Date),
        Amount:     req.AmountMinor,
        Memo:       req.Memo,
        Cleared:    req.Cleared,
        Metadata:   req.Metadata,
    }
    saved, err := s.txnSvc.Create(r.Context(), t)
    if err != nil {
        writeServiceErr(w, err)
        return
    }
    toJSON(w, http.StatusCreated, toTransactionResponse(saved))
}

// listTransactions handles GET /v1/transactions with either account_id or
// budget_id plus optional from/to date bounds.
func (s *Server) listTransactions(w http.ResponseWriter, r *http.Request) {
    q := r.URL.Query()
    var from, to *budget.Date
    if v := q.Get("from"); v != "" {
        d, err := budget.ParseDate(v)
        if err != nil {
            badRequest(w, "invalid from date, want YYYY-MM-DD")
            return
        }
        from = &d
    }
    if v := q.Get("to"); v != "" {
        d, err := budget.ParseDate(v)
        if err != nil {
            badRequest(w, "invalid to date, want YYYY-MM-DD")
            return
        }
        to = &d
    }

    var (
        txns []budget.Transaction
        err  error
    )
    switch {
    case q.Get("account_id") != "":
        id, perr := uuid.Parse(q.Get("account_id"))
        if perr != nil {
            badRequest(w, "invalid account_id")
            return
        }
        txns, err = s.store.TransactionsByAccount(r.Context(), id, from, to)
    case q.Get("budget_id") != "":
        id, perr := uuid.Parse(q.Get("budget_id"))
        if perr != nil {
            badRequest(w, "invalid budget_id")
            return
        }
        txns, err = s.store.TransactionsByBudget(r.Context(), id, from, to)
    default:
        badRequest(w, "account_id or budget_id is required")
        return
    }
    if err != nil {
        writeServiceErr(w, err)
        return
    }
    out := make([]transactionResponse, 0, len(txns))
    for _, t := range txns {
        out = append(out, toTransactionResponse(t))
    }
    toJSON(w, http.StatusOK, out)
}

func (s *Server) getTransaction(w http.ResponseWriter, r *http.Request) {
    id, err := uuid.Parse(chi.URLParam(r, "id"))
    if err != nil {
        badRequest(w, "invalid transaction id")
        return
    }
    t, err := s.store.GetTransaction(r.Context(), id)
    if err != nil {
        writeServiceErr(w, err)
        return
    }
    toJSON(w, http.StatusOK, toTransactionResponse(t))
}

func (s *Server) patchTransaction(w http.ResponseWriter, r *http.Request) {
    if !requireJSON(w, r) {
        return
    }
    id, err := uuid.Parse(chi.URLParam(r, "id"))
    if err != nil {
        badRequest(w, "invalid transaction id")
        return
    }
    var req patchTransactionRequest
    dec := json.NewDecoder(r.Body)
    dec.DisallowUnknownFields()
    if err := dec.Decode(&req); err != nil {
        badRequest(w, "invalid JSON: "+err.Error())
        return
    }
    t, err := s.store.GetTransaction(r.Context(), id)
    if err != nil {
        writeServiceErr(w, err)
        return
    }
    if req.AccountID != nil {
        t.AccountID = *req.AccountID
    }
    if req.CategoryID != nil {
        t.CategoryID = req.CategoryID
    }
    if req.PayeeID != nil {
        t.PayeeID = req.PayeeID
    }
    if req.Date != nil {
        t.Date = budget.Date(*req.Date)
    }
    if req.AmountMinor != nil {
        t.Amount = *req.AmountMinor
    }
    if req.Memo != nil {
        t.Memo = *req.Memo
    }
    if req.Cleared != nil {
        t.Cleared = *req.Cleared
    }
    if len(req.Metadata) > 0 {
        if t.Metadata == nil {
            t.Metadata = meta.New(nil)
        }
        t.Metadata.Merge(req.Metadata)
    }
    saved, err := s.txnSvc.Update(r.Context(), t)
    if err != nil {
        writeServiceErr(w, err)
        return
    }
    toJSON(w, http.StatusOK, toTransactionResponse(saved))
}

func (s *Server) deleteTransaction(w http.ResponseWriter, r *http.Request) {
    id, err := uuid.Parse(chi.URLParam(r, "id"))
    if err != nil {
        badRequest(w, "invalid transaction id")
        return
    }
    if err := s.txnSvc.Delete(r.Context(), id); err != nil {
        writeServiceErr(w, err)
        return
    }
    w.WriteHeader(http.StatusNoContent)
}

func (s *Server) postTransfer(w http.ResponseWriter, r *http.Request) {
    if !requireJSON(w, r) {
        return
    }
    var req postTransferRequest
    dec := json.NewDecoder(r.Body)
    dec.DisallowUnknownFields()
    if err := dec.Decode(&req); err != nil {
        badRequest(w, "invalid JSON: "+err.Error())
        return
    }
    from, to, err := s.txnSvc.CreateTransfer(r.Context(), req.FromAccountID, req.ToAccountID, budget.Date(req.Date), req.AmountMinor, req.Memo)
    if err != nil {
        writeServiceErr(w, err)
        return
    }
    toJSON(w, http.StatusCreated, transferResponse{
        From: toTransactionResponse(from),
        To:   toTransactionResponse(to),
    })
}

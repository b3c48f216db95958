package httpapi

import (
    "encoding/json"
    "errors"
    "net/http"

    chi "github.com/go-chi/chi/v5"
    "github.com/google/uuid"

    "github.com/thgaskell/budget-sub000/internal/budget"
    "github.com/thgaskell/budget-sub000/internal/errs"
)

func (s *Server) postCategoryGroup(w http.ResponseWriter, r *http.Request) {
    if !requireJSON(w, r) {
        return
    }
    var req postCategoryGroupRequest
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
    g := budget.CategoryGroup{ID: uuid.New(), BudgetID: req.BudgetID, Name: req.Name, SortOrder: req.SortOrder}
    saved, err := s.store.SaveCategoryGroup(r.Context(), g)
    if err != nil {
        writeServiceErr(w, err)
        return
    }
    toJSON(w, http.StatusCreated, toCategoryGroupResponse(saved))
}

func (s *Server) listCategoryGroups(w http.ResponseWriter, r *http.Request) {
    budgetID, err := uuid.Parse(r.URL.Query().Get("budget_id"))
    if err != nil {
        badRequest(w, "invalid budget_id")
        return
    }
    groups, err := s.store.CategoryGroupsByBudget(r.Context(), budgetID)
    if err != nil {
        writeServiceErr(w, err)
        return
    }
    out := make([]categoryGroupResponse, 0, len(groups))
    for _, g := range groups {
        out = append(out, toCategoryGroupResponse(g))
    }
    toJSON(w, http.StatusOK, out)
}

func (s *Server) postCategory(w http.ResponseWriter, r *http.Request) {
    if !requireJSON(w, r) {
        return
    }
    var req postCategoryRequest
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
    if _, err := s.store.GetCategoryGroup(r.Context(), req.GroupID); err != nil {
        writeServiceErr(w, err)
        return
    }
    c := budget.Category{ID: uuid.New(), GroupID: req.GroupID, Name: req.Name, SortOrder: req.SortOrder}
    saved, err := s.store.SaveCategory(r.Context(), c)
    if err != nil {
        writeServiceErr(w, err)
        return
    }
    toJSON(w, http.StatusCreated, toCategoryResponse(saved))
}

// listCategories handles GET /v1/categories with either group_id or
// budget_id.
func (s *Server) listCategories(w http.ResponseWriter, r *http.Request) {
    var (
        categories []budget.Category
        err        error
    )
    switch {
    case r.URL.Query().Get("group_id") != "":
        groupID, perr := uuid.Parse(r.URL.Query().Get("group_id"))
        if perr != nil {
            badRequest(w, "invalid group_id")
            return
        }
        categories, err = s.store.CategoriesByGroup(r.Context(), groupID)
    case r.URL.Query().Get("budget_id") != "":
        budgetID, perr := uuid.Parse(r.URL.Query().Get("budget_id"))
        if perr != nil {
            badRequest(w, "invalid budget_id")
            return
        }
        categories, err = s.store.CategoriesByBudget(r.Context(), budgetID)
    default:
        badRequest(w, "group_id or budget_id is required")
        return
    }
    if err != nil {
        writeServiceErr(w, err)
        return
    }
    out := make([]categoryResponse, 0, len(categories))
    for _, c := range categories {
        out = append(out, toCategoryResponse(c))
    }
    toJSON(w, http.StatusOK, out)
}

// getCategoryBalances handles GET /v1/categories/{id}/balances?month=YYYY-MM.
func (s *Server) getCategoryBalances(w http.ResponseWriter, r *http.Request) {
    id, err := uuid.Parse(chi.URLParam(r, "id"))
    if err != nil {
        badRequest(w, "invalid category id")
        return
    }
    m, err := budget.ParseMonth(r.URL.Query().Get("month"))
    if err != nil {
        badRequest(w, "invalid month, want YYYY-MM")
        return
    }
    bal, err := s.reportSvc.CategoryBalances(r.Context(), id, m)
    if err != nil {
        writeServiceErr(w, err)
        return
    }
    resp := categoryBalancesResponse{
        CategoryID:     id,
        Month:          m,
        AssignedMinor:  bal.Assigned,
        ActivityMinor:  bal.Activity,
        AvailableMinor: bal.Available,
    }
    if currency, ok := s.categoryCurrency(r, id); ok {
        resp.Available = amountString(currency, bal.Available)
    }
    toJSON(w, http.StatusOK, resp)
}

// deleteCategory removes a category after clearing its assignment rows so
// cached summaries are repaired before the row disappears.
func (s *Server) deleteCategory(w http.ResponseWriter, r *http.Request) {
    id, err := uuid.Parse(chi.URLParam(r, "id"))
    if err != nil {
        badRequest(w, "invalid category id")
        return
    }
    cat, err := s.store.GetCategory(r.Context(), id)
    if err != nil {
        writeServiceErr(w, err)
        return
    }
    grp, err := s.store.GetCategoryGroup(r.Context(), cat.GroupID)
    if err != nil {
        writeServiceErr(w, err)
        return
    }
    assigns, err := s.store.AssignmentsByBudget(r.Context(), grp.BudgetID)
    if err != nil {
        writeServiceErr(w, err)
        return
    }
    var months []budget.Month
    for _, a := range assigns {
        if a.CategoryID == id {
            months = append(months, a.Month)
        }
    }
    if err := s.assignSvc.Clear(r.Context(), id, months); err != nil {
        writeServiceErr(w, err)
        return
    }
    if err := s.store.DeleteCategory(r.Context(), id); err != nil && !errors.Is(err, errs.ErrNotFound) {
        writeServiceErr(w, err)
        return
    }
    w.WriteHeader(http.StatusNoContent)
}

// categoryCurrency resolves the currency of the budget owning a category,
// for display formatting only.
func (s *Server) categoryCurrency(r *http.Request, categoryID uuid.UUID) (string, bool) {
    cat, err := s.store.GetCategory(r.Context(), categoryID)
    if err != nil {
        return "", false
    }
    grp, err := s.store.GetCategoryGroup(r.Context(), cat.GroupID)
    if err != nil {
        return "", false
    }
    b, err := s.store.GetBudget(r.Context(), grp.BudgetID)
    if err != nil {
        return "", false
    }
    return b.Currency, true
}

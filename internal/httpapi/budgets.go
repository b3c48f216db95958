package httpapi

import (
    "context"
    "encoding/json"
    "net/http"
    "strings"

    chi "github.com/go-chi/chi/v5"
    "github.com/google/uuid"

    "github.com/thgaskell/budget-sub000/internal/budget"
    "github.com/thgaskell/budget-sub000/internal/dictionary"
)

func (s *Server) postBudget(w http.ResponseWriter, r *http.Request) {
    if !requireJSON(w, r) {
        return
    }
    var req postBudgetRequest
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
    if req.Currency == "" {
        badRequest(w, "currency is required")
        return
    }
    b := budget.Budget{ID: uuid.New(), Name: req.Name, Currency: strings.ToUpper(req.Currency)}
    saved, err := s.store.SaveBudget(r.Context(), b)
    if err != nil {
        writeServiceErr(w, err)
        return
    }
    if req.SeedDefaults {
        if err := s.seedDefaultCategories(r.Context(), saved.ID); err != nil {
            writeServiceErr(w, err)
            return
        }
    }
    toJSON(w, http.StatusCreated, toBudgetResponse(saved))
}

// seedDefaultCategories creates the curated starter groups and categories
// for a freshly created budget.
func (s *Server) seedDefaultCategories(ctx context.Context, budgetID uuid.UUID) error {
    for gi, def := range dictionary.Groups() {
        grp, err := s.store.SaveCategoryGroup(ctx, budget.CategoryGroup{
            ID:        uuid.New(),
            BudgetID:  budgetID,
            Name:      def.Label,
            SortOrder: gi,
        })
        if err != nil {
            return err
        }
        for ci, cat := range def.Categories {
            if _, err := s.store.SaveCategory(ctx, budget.Category{
                ID:        uuid.New(),
                GroupID:   grp.ID,
                Name:      cat.Label,
                SortOrder: ci,
            }); err != nil {
                return err
            }
        }
    }
    return nil
}

// getCategoryDefaults serves the curated template so clients can offer it
// before a budget exists.
func (s *Server) getCategoryDefaults(w http.ResponseWriter, _ *http.Request) {
    toJSON(w, http.StatusOK, struct {
        Groups []dictionary.GroupDef `json:"groups"`
    }{Groups: dictionary.Groups()})
}

func (s *Server) listBudgets(w http.ResponseWriter, r *http.Request) {
    budgets, err := s.store.ListBudgets(r.Context())
    if err != nil {
        writeServiceErr(w, err)
        return
    }
    out := make([]budgetResponse, 0, len(budgets))
    for _, b := range budgets {
        out = append(out, toBudgetResponse(b))
    }
    toJSON(w, http.StatusOK, out)
}

func (s *Server) getBudget(w http.ResponseWriter, r *http.Request) {
    id, err := uuid.Parse(chi.URLParam(r, "id"))
    if err != nil {
        badRequest(w, "invalid budget id")
        return
    }
    b, err := s.store.GetBudget(r.Context(), id)
    if err != nil {
        writeServiceErr(w, err)
        return
    }
    toJSON(w, http.StatusOK, toBudgetResponse(b))
}

package summary

import (
    "context"
    "testing"

    "github.com/google/uuid"

    "github.com/thgaskell/budget-sub000/internal/budget"
    "github.com/thgaskell/budget-sub000/internal/storage/memory"
)

type fixture struct {
    store    *memory.Store
    svc      Service
    budgetID uuid.UUID
    account  budget.Account
    cat      budget.Category
}

func newFixture(t *testing.T) *fixture {
    t.Helper()
    ctx := context.Background()
    store := memory.New()
    b, err := store.SaveBudget(ctx, budget.Budget{ID: uuid.New(), Name: "Test", Currency: "USD"})
    if err != nil {
        t.Fatalf("seed budget: %v", err)
    }
    acc, err := store.SaveAccount(ctx, budget.Account{ID: uuid.New(), BudgetID: b.ID, Name: "Checking", Type: budget.AccountTypeChecking, OnBudget: true})
    if err != nil {
        t.Fatalf("seed account: %v", err)
    }
    grp, err := store.SaveCategoryGroup(ctx, budget.CategoryGroup{ID: uuid.New(), BudgetID: b.ID, Name: "Essentials"})
    if err != nil {
        t.Fatalf("seed group: %v", err)
    }
    cat, err := store.SaveCategory(ctx, budget.Category{ID: uuid.New(), GroupID: grp.ID, Name: "Groceries"})
    if err != nil {
        t.Fatalf("seed category: %v", err)
    }
    return &fixture{store: store, svc: New(store), budgetID: b.ID, account: acc, cat: cat}
}

func (f *fixture) txn(t *testing.T, date budget.Date, amount int64, categoryID *uuid.UUID) {
    t.Helper()
    _, err := f.store.SaveTransaction(context.Background(), budget.Transaction{
        ID: uuid.New(), AccountID: f.account.ID, CategoryID: categoryID, Date: date, Amount: amount,
    })
    if err != nil {
        t.Fatalf("seed transaction: %v", err)
    }
}

func (f *fixture) assign(t *testing.T, categoryID uuid.UUID, m budget.Month, amount int64) {
    t.Helper()
    _, err := f.store.SaveAssignment(context.Background(), budget.Assignment{CategoryID: categoryID, Month: m, Amount: amount})
    if err != nil {
        t.Fatalf("seed assignment: %v", err)
    }
}

func TestGetOrCalculate_CarriesAvailableForward(t *testing.T) {
    f := newFixture(t)
    ctx := context.Background()

    f.txn(t, "2025-01-05", 100000, nil)
    f.assign(t, f.cat.ID, "2025-01", 10000)
    f.assign(t, f.cat.ID, "2025-02", 10000)
    f.assign(t, f.cat.ID, "2025-03", 10000)

    sum, err := f.svc.GetOrCalculate(ctx, f.budgetID, "2025-03")
    if err != nil {
        t.Fatalf("GetOrCalculate: %v", err)
    }
    if got := sum.CategoryBalances[f.cat.ID]; got != 30000 {
        t.Fatalf("expected accumulated 30000, got %d", got)
    }
    if sum.ClosingRTA != 70000 {
        t.Fatalf("expected closing RTA 70000, got %d", sum.ClosingRTA)
    }
}

func TestGetOrCalculate_NegativeBalanceCarriesAsDebt(t *testing.T) {
    f := newFixture(t)
    ctx := context.Background()

    f.txn(t, "2025-01-05", 100000, nil)
    f.assign(t, f.cat.ID, "2025-01", 10000)
    catID := f.cat.ID
    f.txn(t, "2025-01-20", -15000, &catID)

    sum, err := f.svc.GetOrCalculate(ctx, f.budgetID, "2025-02")
    if err != nil {
        t.Fatalf("GetOrCalculate: %v", err)
    }
    // Overspending is not forgiven at month end; the debt rides along.
    if got := sum.CategoryBalances[f.cat.ID]; got != -5000 {
        t.Fatalf("expected carried debt -5000, got %d", got)
    }
}

func TestGetOrCalculate_BackfillsEveryIntermediateMonth(t *testing.T) {
    f := newFixture(t)
    ctx := context.Background()

    f.txn(t, "2024-01-10", 50000, nil)
    f.assign(t, f.cat.ID, "2024-01", 20000)

    // Two years out: the fill must be iterative and cache the whole chain.
    far := budget.Month("2026-01")
    sum, err := f.svc.GetOrCalculate(ctx, f.budgetID, far)
    if err != nil {
        t.Fatalf("GetOrCalculate: %v", err)
    }
    if sum.ClosingRTA != 30000 {
        t.Fatalf("expected closing RTA 30000, got %d", sum.ClosingRTA)
    }

    sums, err := f.store.MonthSummariesByBudget(ctx, f.budgetID)
    if err != nil {
        t.Fatalf("MonthSummariesByBudget: %v", err)
    }
    if len(sums) != 25 { // 2024-01 through 2026-01
        t.Fatalf("expected 25 cached months, got %d", len(sums))
    }
    for i, s := range sums {
        if s.ClosingRTA != 30000 {
            t.Fatalf("month %s has RTA %d, want 30000", s.Month, s.ClosingRTA)
        }
        if got := s.CategoryBalances[f.cat.ID]; got != 20000 {
            t.Fatalf("month %s has balance %d, want 20000", s.Month, got)
        }
        if i > 0 && sums[i-1].Month.Next() != s.Month {
            t.Fatalf("gap in cached chain at %s", s.Month)
        }
    }
}

func TestGetOrCalculate_MonthBeforeAllData(t *testing.T) {
    f := newFixture(t)
    ctx := context.Background()

    f.txn(t, "2025-06-01", 100000, nil)

    sum, err := f.svc.GetOrCalculate(ctx, f.budgetID, "2024-01")
    if err != nil {
        t.Fatalf("GetOrCalculate: %v", err)
    }
    if sum.ClosingRTA != 0 {
        t.Fatalf("expected zero RTA before history, got %d", sum.ClosingRTA)
    }
    if got := sum.CategoryBalances[f.cat.ID]; got != 0 {
        t.Fatalf("expected zero balance before history, got %d", got)
    }
    // The base case is cached without dragging the whole history in.
    sums, err := f.store.MonthSummariesByBudget(ctx, f.budgetID)
    if err != nil {
        t.Fatalf("MonthSummariesByBudget: %v", err)
    }
    if len(sums) != 1 {
        t.Fatalf("expected only the requested month cached, got %d", len(sums))
    }
}

func TestGetOrCalculate_ReturnsCachedCopy(t *testing.T) {
    f := newFixture(t)
    ctx := context.Background()

    f.txn(t, "2025-01-05", 100000, nil)
    first, err := f.svc.GetOrCalculate(ctx, f.budgetID, "2025-01")
    if err != nil {
        t.Fatalf("GetOrCalculate: %v", err)
    }
    // Mutating the returned map must not poison the cache.
    first.CategoryBalances[f.cat.ID] = 999999

    again, err := f.svc.GetOrCalculate(ctx, f.budgetID, "2025-01")
    if err != nil {
        t.Fatalf("GetOrCalculate: %v", err)
    }
    if got := again.CategoryBalances[f.cat.ID]; got != 0 {
        t.Fatalf("cache was mutated through the returned map: %d", got)
    }
}

func TestRecalculateFromMonth_RepairsForward(t *testing.T) {
    f := newFixture(t)
    ctx := context.Background()

    f.txn(t, "2025-01-05", 100000, nil)
    f.assign(t, f.cat.ID, "2025-01", 10000)
    if _, err := f.svc.GetOrCalculate(ctx, f.budgetID, "2025-06"); err != nil {
        t.Fatalf("prime cache: %v", err)
    }

    // Back-dated February expense invalidates February onward.
    catID := f.cat.ID
    f.txn(t, "2025-02-14", -4000, &catID)
    if err := f.svc.RecalculateFromMonth(ctx, f.budgetID, "2025-02"); err != nil {
        t.Fatalf("RecalculateFromMonth: %v", err)
    }

    jan, err := f.store.GetMonthSummary(ctx, f.budgetID, "2025-01")
    if err != nil {
        t.Fatalf("get january: %v", err)
    }
    if got := jan.CategoryBalances[f.cat.ID]; got != 10000 {
        t.Fatalf("january must be untouched, got %d", got)
    }
    for m := budget.Month("2025-02"); m <= "2025-06"; m = m.Next() {
        sum, err := f.store.GetMonthSummary(ctx, f.budgetID, m)
        if err != nil {
            t.Fatalf("get %s: %v", m, err)
        }
        if got := sum.CategoryBalances[f.cat.ID]; got != 6000 {
            t.Fatalf("month %s has balance %d, want 6000", m, got)
        }
    }
}

func TestRecalculateFromMonth_NoOpWithoutCache(t *testing.T) {
    f := newFixture(t)
    ctx := context.Background()

    f.txn(t, "2025-01-05", 100000, nil)
    if err := f.svc.RecalculateFromMonth(ctx, f.budgetID, "2025-01"); err != nil {
        t.Fatalf("RecalculateFromMonth: %v", err)
    }
    sums, err := f.store.MonthSummariesByBudget(ctx, f.budgetID)
    if err != nil {
        t.Fatalf("MonthSummariesByBudget: %v", err)
    }
    if len(sums) != 0 {
        t.Fatalf("expected no summaries created, got %d", len(sums))
    }
}

func TestRecalculateFromMonth_StartAfterLatestCached(t *testing.T) {
    f := newFixture(t)
    ctx := context.Background()

    f.txn(t, "2025-01-05", 100000, nil)
    if _, err := f.svc.GetOrCalculate(ctx, f.budgetID, "2025-02"); err != nil {
        t.Fatalf("prime cache: %v", err)
    }
    if err := f.svc.RecalculateFromMonth(ctx, f.budgetID, "2025-09"); err != nil {
        t.Fatalf("RecalculateFromMonth: %v", err)
    }
    sums, err := f.store.MonthSummariesByBudget(ctx, f.budgetID)
    if err != nil {
        t.Fatalf("MonthSummariesByBudget: %v", err)
    }
    if len(sums) != 2 {
        t.Fatalf("nothing after the cache should be computed, got %d months", len(sums))
    }
}

func TestLastAssignmentsBeforeMonth(t *testing.T) {
    f := newFixture(t)
    ctx := context.Background()

    grp, err := f.store.GetCategoryGroup(ctx, f.cat.GroupID)
    if err != nil {
        t.Fatalf("get group: %v", err)
    }
    other, err := f.store.SaveCategory(ctx, budget.Category{ID: uuid.New(), GroupID: grp.ID, Name: "Rent"})
    if err != nil {
        t.Fatalf("seed category: %v", err)
    }

    f.assign(t, f.cat.ID, "2025-01", 10000)
    f.assign(t, f.cat.ID, "2025-03", 20000)
    f.assign(t, other.ID, "2025-04", 50000)

    got, err := f.svc.LastAssignmentsBeforeMonth(ctx, f.budgetID, "2025-04")
    if err != nil {
        t.Fatalf("LastAssignmentsBeforeMonth: %v", err)
    }
    if len(got) != 1 {
        t.Fatalf("expected 1 category with prior assignments, got %d", len(got))
    }
    a, ok := got[f.cat.ID]
    if !ok || a.Month != "2025-03" || a.Amount != 20000 {
        t.Fatalf("unexpected inherited assignment: %+v", a)
    }
}

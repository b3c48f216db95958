package assignment

import (
    "context"
    "errors"
    "testing"

    "github.com/google/uuid"

    "github.com/thgaskell/budget-sub000/internal/budget"
    "github.com/thgaskell/budget-sub000/internal/errs"
    "github.com/thgaskell/budget-sub000/internal/service/summary"
    "github.com/thgaskell/budget-sub000/internal/storage/memory"
)

type fixture struct {
    store     *memory.Store
    svc       Service
    budgetID  uuid.UUID
    groceries budget.Category
    rent      budget.Category
}

func newFixture(t *testing.T) *fixture {
    t.Helper()
    ctx := context.Background()
    store := memory.New()
    b, err := store.SaveBudget(ctx, budget.Budget{ID: uuid.New(), Name: "Test", Currency: "USD"})
    if err != nil {
        t.Fatalf("seed budget: %v", err)
    }
    if _, err := store.SaveAccount(ctx, budget.Account{ID: uuid.New(), BudgetID: b.ID, Name: "Checking", Type: budget.AccountTypeChecking, OnBudget: true}); err != nil {
        t.Fatalf("seed account: %v", err)
    }
    grp, _ := store.SaveCategoryGroup(ctx, budget.CategoryGroup{ID: uuid.New(), BudgetID: b.ID, Name: "Essentials"})
    groceries, _ := store.SaveCategory(ctx, budget.Category{ID: uuid.New(), GroupID: grp.ID, Name: "Groceries"})
    rent, _ := store.SaveCategory(ctx, budget.Category{ID: uuid.New(), GroupID: grp.ID, Name: "Rent", SortOrder: 1})
    return &fixture{store: store, svc: New(store, summary.New(store)), budgetID: b.ID, groceries: groceries, rent: rent}
}

func TestAssign_UpsertsAbsoluteAmount(t *testing.T) {
    f := newFixture(t)
    ctx := context.Background()

    if _, err := f.svc.Assign(ctx, f.groceries.ID, "2025-01", 10000); err != nil {
        t.Fatalf("Assign: %v", err)
    }
    // A second call replaces, it does not add.
    if _, err := f.svc.Assign(ctx, f.groceries.ID, "2025-01", 25000); err != nil {
        t.Fatalf("Assign: %v", err)
    }
    a, err := f.store.GetAssignment(ctx, f.groceries.ID, "2025-01")
    if err != nil {
        t.Fatalf("GetAssignment: %v", err)
    }
    if a.Amount != 25000 {
        t.Fatalf("expected 25000, got %d", a.Amount)
    }
}

func TestAssign_RejectsBadInput(t *testing.T) {
    f := newFixture(t)
    ctx := context.Background()

    if _, err := f.svc.Assign(ctx, f.groceries.ID, "January", 100); !errors.Is(err, errs.ErrInvalid) {
        t.Fatalf("expected ErrInvalid for malformed month, got %v", err)
    }
    if _, err := f.svc.Assign(ctx, uuid.New(), "2025-01", 100); !errors.Is(err, errs.ErrNotFound) {
        t.Fatalf("expected ErrNotFound for unknown category, got %v", err)
    }
}

func TestAssign_RepairsCachedSummaries(t *testing.T) {
    f := newFixture(t)
    ctx := context.Background()
    sums := summary.New(f.store)

    if _, err := sums.GetOrCalculate(ctx, f.budgetID, "2025-03"); err != nil {
        t.Fatalf("prime cache: %v", err)
    }
    if _, err := f.svc.Assign(ctx, f.groceries.ID, "2025-01", 10000); err != nil {
        t.Fatalf("Assign: %v", err)
    }
    mar, err := f.store.GetMonthSummary(ctx, f.budgetID, "2025-03")
    if err != nil {
        t.Fatalf("get march: %v", err)
    }
    if got := mar.CategoryBalances[f.groceries.ID]; got != 10000 {
        t.Fatalf("cached march not repaired: got %d", got)
    }
    if mar.ClosingRTA != -10000 {
        t.Fatalf("expected RTA -10000 after assigning unfunded money, got %d", mar.ClosingRTA)
    }
}

func TestMove_ConservesAssignedTotal(t *testing.T) {
    f := newFixture(t)
    ctx := context.Background()

    if _, err := f.svc.Assign(ctx, f.groceries.ID, "2025-01", 80000); err != nil {
        t.Fatalf("Assign: %v", err)
    }
    if err := f.svc.Move(ctx, f.groceries.ID, f.rent.ID, "2025-01", 30000); err != nil {
        t.Fatalf("Move: %v", err)
    }

    from, err := f.store.GetAssignment(ctx, f.groceries.ID, "2025-01")
    if err != nil {
        t.Fatalf("GetAssignment: %v", err)
    }
    to, err := f.store.GetAssignment(ctx, f.rent.ID, "2025-01")
    if err != nil {
        t.Fatalf("GetAssignment: %v", err)
    }
    if from.Amount != 50000 || to.Amount != 30000 {
        t.Fatalf("unexpected amounts after move: from=%d to=%d", from.Amount, to.Amount)
    }
    if from.Amount+to.Amount != 80000 {
        t.Fatalf("move changed the assigned total: %d", from.Amount+to.Amount)
    }
}

func TestMove_SourceMayGoNegative(t *testing.T) {
    f := newFixture(t)
    ctx := context.Background()

    // No prior assignment on the source; moving creates a negative row.
    if err := f.svc.Move(ctx, f.groceries.ID, f.rent.ID, "2025-01", 20000); err != nil {
        t.Fatalf("Move: %v", err)
    }
    from, err := f.store.GetAssignment(ctx, f.groceries.ID, "2025-01")
    if err != nil {
        t.Fatalf("GetAssignment: %v", err)
    }
    if from.Amount != -20000 {
        t.Fatalf("expected -20000 on source, got %d", from.Amount)
    }
}

func TestMove_Rejections(t *testing.T) {
    f := newFixture(t)
    ctx := context.Background()

    if err := f.svc.Move(ctx, f.groceries.ID, f.groceries.ID, "2025-01", 100); !errors.Is(err, errs.ErrInvalid) {
        t.Fatalf("expected ErrInvalid for same-category move, got %v", err)
    }
    if err := f.svc.Move(ctx, f.groceries.ID, uuid.New(), "2025-01", 100); !errors.Is(err, errs.ErrNotFound) {
        t.Fatalf("expected ErrNotFound for unknown target, got %v", err)
    }
    // The failed move must not have touched the source.
    if _, err := f.store.GetAssignment(ctx, f.groceries.ID, "2025-01"); !errors.Is(err, errs.ErrNotFound) {
        t.Fatalf("source was modified by a rejected move: %v", err)
    }
}

func TestClear_DeletesRowsAndRepairs(t *testing.T) {
    f := newFixture(t)
    ctx := context.Background()
    sums := summary.New(f.store)

    if _, err := f.svc.Assign(ctx, f.groceries.ID, "2025-01", 10000); err != nil {
        t.Fatalf("Assign: %v", err)
    }
    if _, err := f.svc.Assign(ctx, f.groceries.ID, "2025-02", 15000); err != nil {
        t.Fatalf("Assign: %v", err)
    }
    if _, err := sums.GetOrCalculate(ctx, f.budgetID, "2025-03"); err != nil {
        t.Fatalf("prime cache: %v", err)
    }

    if err := f.svc.Clear(ctx, f.groceries.ID, []budget.Month{"2025-02", "2025-01"}); err != nil {
        t.Fatalf("Clear: %v", err)
    }
    if _, err := f.store.GetAssignment(ctx, f.groceries.ID, "2025-01"); !errors.Is(err, errs.ErrNotFound) {
        t.Fatalf("january assignment still present: %v", err)
    }
    mar, err := f.store.GetMonthSummary(ctx, f.budgetID, "2025-03")
    if err != nil {
        t.Fatalf("get march: %v", err)
    }
    if got := mar.CategoryBalances[f.groceries.ID]; got != 0 {
        t.Fatalf("cached march not repaired after clear: got %d", got)
    }
    if mar.ClosingRTA != 0 {
        t.Fatalf("expected RTA restored to 0, got %d", mar.ClosingRTA)
    }
}

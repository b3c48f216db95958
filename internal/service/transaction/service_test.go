package transaction

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
    checking  budget.Account
    savings   budget.Account
    groceries budget.Category
}

func newFixture(t *testing.T) *fixture {
    t.Helper()
    ctx := context.Background()
    store := memory.New()
    b, err := store.SaveBudget(ctx, budget.Budget{ID: uuid.New(), Name: "Test", Currency: "USD"})
    if err != nil {
        t.Fatalf("seed budget: %v", err)
    }
    checking, _ := store.SaveAccount(ctx, budget.Account{ID: uuid.New(), BudgetID: b.ID, Name: "Checking", Type: budget.AccountTypeChecking, OnBudget: true})
    savings, _ := store.SaveAccount(ctx, budget.Account{ID: uuid.New(), BudgetID: b.ID, Name: "Savings", Type: budget.AccountTypeSavings, OnBudget: true})
    grp, _ := store.SaveCategoryGroup(ctx, budget.CategoryGroup{ID: uuid.New(), BudgetID: b.ID, Name: "Essentials"})
    groceries, _ := store.SaveCategory(ctx, budget.Category{ID: uuid.New(), GroupID: grp.ID, Name: "Groceries"})
    return &fixture{store: store, svc: New(store, summary.New(store)), budgetID: b.ID, checking: checking, savings: savings, groceries: groceries}
}

func TestCreate_ValidatesReferences(t *testing.T) {
    f := newFixture(t)
    ctx := context.Background()

    if _, err := f.svc.Create(ctx, budget.Transaction{AccountID: uuid.New(), Date: "2025-01-05", Amount: 100}); !errors.Is(err, errs.ErrNotFound) {
        t.Fatalf("expected ErrNotFound for unknown account, got %v", err)
    }
    badCat := uuid.New()
    if _, err := f.svc.Create(ctx, budget.Transaction{AccountID: f.checking.ID, CategoryID: &badCat, Date: "2025-01-05", Amount: 100}); !errors.Is(err, errs.ErrNotFound) {
        t.Fatalf("expected ErrNotFound for unknown category, got %v", err)
    }
    if _, err := f.svc.Create(ctx, budget.Transaction{AccountID: f.checking.ID, Date: "05-01-2025", Amount: 100}); !errors.Is(err, errs.ErrInvalid) {
        t.Fatalf("expected ErrInvalid for malformed date, got %v", err)
    }
}

func TestCreate_AssignsIDAndRepairsCache(t *testing.T) {
    f := newFixture(t)
    ctx := context.Background()
    sums := summary.New(f.store)

    saved, err := f.svc.Create(ctx, budget.Transaction{AccountID: f.checking.ID, Date: "2025-01-05", Amount: 100000, Cleared: true})
    if err != nil {
        t.Fatalf("Create: %v", err)
    }
    if saved.ID == uuid.Nil {
        t.Fatal("expected a generated id")
    }

    if _, err := sums.GetOrCalculate(ctx, f.budgetID, "2025-03"); err != nil {
        t.Fatalf("prime cache: %v", err)
    }
    // A second January inflow must flow through the cached chain.
    if _, err := f.svc.Create(ctx, budget.Transaction{AccountID: f.checking.ID, Date: "2025-01-20", Amount: 50000, Cleared: true}); err != nil {
        t.Fatalf("Create: %v", err)
    }
    mar, err := f.store.GetMonthSummary(ctx, f.budgetID, "2025-03")
    if err != nil {
        t.Fatalf("get march: %v", err)
    }
    if mar.ClosingRTA != 150000 {
        t.Fatalf("expected repaired RTA 150000, got %d", mar.ClosingRTA)
    }
}

func TestUpdate_MovingAcrossMonthsRepairsBothMonths(t *testing.T) {
    f := newFixture(t)
    ctx := context.Background()
    sums := summary.New(f.store)

    saved, err := f.svc.Create(ctx, budget.Transaction{AccountID: f.checking.ID, CategoryID: &f.groceries.ID, Date: "2025-03-10", Amount: -10000})
    if err != nil {
        t.Fatalf("Create: %v", err)
    }
    if _, err := sums.GetOrCalculate(ctx, f.budgetID, "2025-04"); err != nil {
        t.Fatalf("prime cache: %v", err)
    }

    // Move the expense back to January.
    saved.Date = "2025-01-10"
    if _, err := f.svc.Update(ctx, saved); err != nil {
        t.Fatalf("Update: %v", err)
    }

    jan, err := sums.GetOrCalculate(ctx, f.budgetID, "2025-01")
    if err != nil {
        t.Fatalf("january summary: %v", err)
    }
    if got := jan.CategoryBalances[f.groceries.ID]; got != -10000 {
        t.Fatalf("expected january activity -10000, got %d", got)
    }
    mar, err := f.store.GetMonthSummary(ctx, f.budgetID, "2025-03")
    if err != nil {
        t.Fatalf("get march: %v", err)
    }
    // March must still show the expense only once, carried from January.
    if got := mar.CategoryBalances[f.groceries.ID]; got != -10000 {
        t.Fatalf("expected march carryover -10000, got %d", got)
    }
}

func TestDelete_RemovesTransferCounterpart(t *testing.T) {
    f := newFixture(t)
    ctx := context.Background()

    out, in, err := f.svc.CreateTransfer(ctx, f.checking.ID, f.savings.ID, "2025-02-01", 20000, "to savings")
    if err != nil {
        t.Fatalf("CreateTransfer: %v", err)
    }
    if out.Amount != -20000 || in.Amount != 20000 {
        t.Fatalf("unexpected legs: out=%d in=%d", out.Amount, in.Amount)
    }
    if out.TransferAccountID == nil || *out.TransferAccountID != f.savings.ID {
        t.Fatalf("out leg missing transfer reference: %+v", out)
    }
    if in.TransferAccountID == nil || *in.TransferAccountID != f.checking.ID {
        t.Fatalf("in leg missing transfer reference: %+v", in)
    }

    if err := f.svc.Delete(ctx, out.ID); err != nil {
        t.Fatalf("Delete: %v", err)
    }
    if _, err := f.store.GetTransaction(ctx, in.ID); !errors.Is(err, errs.ErrNotFound) {
        t.Fatalf("counterpart survived: %v", err)
    }
}

func TestUpdate_TransferLegLinkFieldsAreImmutable(t *testing.T) {
    f := newFixture(t)
    ctx := context.Background()

    out, in, err := f.svc.CreateTransfer(ctx, f.checking.ID, f.savings.ID, "2025-02-01", 20000, "to savings")
    if err != nil {
        t.Fatalf("CreateTransfer: %v", err)
    }

    edited := out
    edited.Amount = -25000
    if _, err := f.svc.Update(ctx, edited); !errors.Is(err, errs.ErrInvalid) {
        t.Fatalf("expected ErrInvalid for amount edit on a transfer leg, got %v", err)
    }
    edited = out
    edited.Date = "2025-02-02"
    if _, err := f.svc.Update(ctx, edited); !errors.Is(err, errs.ErrInvalid) {
        t.Fatalf("expected ErrInvalid for date edit on a transfer leg, got %v", err)
    }
    edited = out
    edited.TransferAccountID = nil
    if _, err := f.svc.Update(ctx, edited); !errors.Is(err, errs.ErrInvalid) {
        t.Fatalf("expected ErrInvalid for clearing the transfer link, got %v", err)
    }

    // Memo and cleared edits leave the link intact.
    edited = out
    edited.Memo = "monthly savings"
    edited.Cleared = true
    if _, err := f.svc.Update(ctx, edited); err != nil {
        t.Fatalf("Update memo/cleared: %v", err)
    }

    // The counterpart must still be found after the allowed edit.
    if err := f.svc.Delete(ctx, out.ID); err != nil {
        t.Fatalf("Delete: %v", err)
    }
    if _, err := f.store.GetTransaction(ctx, in.ID); !errors.Is(err, errs.ErrNotFound) {
        t.Fatalf("counterpart survived: %v", err)
    }
}

func TestUpdate_CannotBecomeTransferLeg(t *testing.T) {
    f := newFixture(t)
    ctx := context.Background()

    saved, err := f.svc.Create(ctx, budget.Transaction{AccountID: f.checking.ID, Date: "2025-01-05", Amount: -5000})
    if err != nil {
        t.Fatalf("Create: %v", err)
    }
    saved.TransferAccountID = &f.savings.ID
    if _, err := f.svc.Update(ctx, saved); !errors.Is(err, errs.ErrInvalid) {
        t.Fatalf("expected ErrInvalid when adding a transfer link, got %v", err)
    }
}

func TestCreateTransfer_Rejections(t *testing.T) {
    f := newFixture(t)
    ctx := context.Background()

    if _, _, err := f.svc.CreateTransfer(ctx, f.checking.ID, f.checking.ID, "2025-02-01", 100, ""); !errors.Is(err, errs.ErrInvalid) {
        t.Fatalf("expected ErrInvalid for same-account transfer, got %v", err)
    }
    if _, _, err := f.svc.CreateTransfer(ctx, f.checking.ID, f.savings.ID, "2025-02-01", 0, ""); !errors.Is(err, errs.ErrInvalid) {
        t.Fatalf("expected ErrInvalid for non-positive amount, got %v", err)
    }
    if _, _, err := f.svc.CreateTransfer(ctx, f.checking.ID, uuid.New(), "2025-02-01", 100, ""); !errors.Is(err, errs.ErrNotFound) {
        t.Fatalf("expected ErrNotFound for unknown account, got %v", err)
    }
}

func TestCreateTransfer_BetweenOnBudgetAccountsKeepsRTA(t *testing.T) {
    f := newFixture(t)
    ctx := context.Background()
    sums := summary.New(f.store)

    if _, err := f.svc.Create(ctx, budget.Transaction{AccountID: f.checking.ID, Date: "2025-01-05", Amount: 100000}); err != nil {
        t.Fatalf("Create: %v", err)
    }
    if _, _, err := f.svc.CreateTransfer(ctx, f.checking.ID, f.savings.ID, "2025-01-10", 30000, ""); err != nil {
        t.Fatalf("CreateTransfer: %v", err)
    }

    sum, err := sums.GetOrCalculate(ctx, f.budgetID, "2025-01")
    if err != nil {
        t.Fatalf("GetOrCalculate: %v", err)
    }
    // The inflow leg of an on-budget transfer counts as an inflow; the
    // outflow leg never subtracts. Net effect on RTA is the inflow leg.
    if sum.ClosingRTA != 130000 {
        t.Fatalf("expected closing RTA 130000, got %d", sum.ClosingRTA)
    }
}

func TestDelete_UnknownTransaction(t *testing.T) {
    f := newFixture(t)
    if err := f.svc.Delete(context.Background(), uuid.New()); !errors.Is(err, errs.ErrNotFound) {
        t.Fatalf("expected ErrNotFound, got %v", err)
    }
}

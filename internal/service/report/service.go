// Package report implements the read-only calculators: account balances,
// per-month category balances, and the Ready to Assign pool. All functions
// are pure over the ledger store; none of them persist anything.
package report

import (
    "context"
    "errors"

    "github.com/google/uuid"

    "github.com/thgaskell/budget-sub000/internal/budget"
    "github.com/thgaskell/budget-sub000/internal/errs"
)

// Store defines the read operations needed by the calculators.
type Store interface {
    GetCategory(ctx context.Context, id uuid.UUID) (budget.Category, error)
    GetCategoryGroup(ctx context.Context, id uuid.UUID) (budget.CategoryGroup, error)
    GetAssignment(ctx context.Context, categoryID uuid.UUID, m budget.Month) (budget.Assignment, error)
    AssignmentsByBudget(ctx context.Context, budgetID uuid.UUID) ([]budget.Assignment, error)
    AccountsByBudget(ctx context.Context, budgetID uuid.UUID) ([]budget.Account, error)
    TransactionsByAccount(ctx context.Context, accountID uuid.UUID, from, to *budget.Date) ([]budget.Transaction, error)
    TransactionsByBudget(ctx context.Context, budgetID uuid.UUID, from, to *budget.Date) ([]budget.Transaction, error)
}

// Summaries provides cumulative closing balances; satisfied by the month
// summary cache service.
type Summaries interface {
    GetOrCalculate(ctx context.Context, budgetID uuid.UUID, m budget.Month) (budget.MonthSummary, error)
}

type Service interface {
    // AccountBalances partitions the account's transactions into cleared
    // and uncleared sums. An unknown or empty account yields all zeros.
    AccountBalances(ctx context.Context, accountID uuid.UUID) (budget.AccountBalance, error)
    // CategoryBalances returns assigned/activity/available for one month.
    // Available is the cumulative carryover figure, never assigned+activity.
    // Unresolvable categories yield all zeros rather than an error.
    CategoryBalances(ctx context.Context, categoryID uuid.UUID, m budget.Month) (budget.CategoryBalance, error)
    // ReadyToAssign computes the budget-wide unassigned pool through the
    // given month by a full historical scan.
    ReadyToAssign(ctx context.Context, budgetID uuid.UUID, through budget.Month) (int64, error)
}

type service struct {
    store     Store
    summaries Summaries
}

func New(store Store, summaries Summaries) Service {
    return &service{store: store, summaries: summaries}
}

func (s *service) AccountBalances(ctx context.Context, accountID uuid.UUID) (budget.AccountBalance, error) {
    txns, err := s.store.TransactionsByAccount(ctx, accountID, nil, nil)
    if err != nil {
        return budget.AccountBalance{}, err
    }
    var bal budget.AccountBalance
    for _, t := range txns {
        if t.Cleared {
            bal.Cleared += t.Amount
        } else {
            bal.Uncleared += t.Amount
        }
    }
    bal.Working = bal.Cleared + bal.Uncleared
    return bal, nil
}

func (s *service) CategoryBalances(ctx context.Context, categoryID uuid.UUID, m budget.Month) (budget.CategoryBalance, error) {
    // UI code calls this speculatively with stale ids; degrade to zeros
    // when the category or its group cannot be resolved.
    cat, err := s.store.GetCategory(ctx, categoryID)
    if errors.Is(err, errs.ErrNotFound) {
        return budget.CategoryBalance{}, nil
    }
    if err != nil {
        return budget.CategoryBalance{}, err
    }
    grp, err := s.store.GetCategoryGroup(ctx, cat.GroupID)
    if errors.Is(err, errs.ErrNotFound) {
        return budget.CategoryBalance{}, nil
    }
    if err != nil {
        return budget.CategoryBalance{}, err
    }

    var out budget.CategoryBalance
    if a, err := s.store.GetAssignment(ctx, categoryID, m); err == nil {
        out.Assigned = a.Amount
    } else if !errors.Is(err, errs.ErrNotFound) {
        return budget.CategoryBalance{}, err
    }

    first, last := m.FirstDay(), m.LastDay()
    txns, err := s.store.TransactionsByBudget(ctx, grp.BudgetID, &first, &last)
    if err != nil {
        return budget.CategoryBalance{}, err
    }
    for _, t := range txns {
        if t.CategoryID != nil && *t.CategoryID == categoryID {
            out.Activity += t.Amount
        }
    }

    sum, err := s.summaries.GetOrCalculate(ctx, grp.BudgetID, m)
    if err != nil {
        return budget.CategoryBalance{}, err
    }
    out.Available = sum.CategoryBalances[categoryID]
    return out, nil
}

func (s *service) ReadyToAssign(ctx context.Context, budgetID uuid.UUID, through budget.Month) (int64, error) {
    accounts, err := s.store.AccountsByBudget(ctx, budgetID)
    if err != nil {
        return 0, err
    }
    onBudget := make(map[uuid.UUID]bool, len(accounts))
    for _, a := range accounts {
        onBudget[a.ID] = a.OnBudget
    }

    // All inflows into on-budget accounts from the beginning of time
    // through the last day of the month. Outflows never reduce this pool;
    // categorized spending only moves category balances.
    last := through.LastDay()
    txns, err := s.store.TransactionsByBudget(ctx, budgetID, nil, &last)
    if err != nil {
        return 0, err
    }
    var inflows int64
    for _, t := range txns {
        if t.Amount > 0 && onBudget[t.AccountID] {
            inflows += t.Amount
        }
    }

    assigns, err := s.store.AssignmentsByBudget(ctx, budgetID)
    if err != nil {
        return 0, err
    }
    var assigned int64
    for _, a := range assigns {
        if a.Month <= through {
            assigned += a.Amount
        }
    }
    return inflows - assigned, nil
}

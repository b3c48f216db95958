// Package summary implements the month summary cache: memoized closing
// figures per (budget, month) with iterative backfill and forward repair.
package summary

import (
    "context"
    "errors"
    "fmt"

    "github.com/google/uuid"

    "github.com/thgaskell/budget-sub000/internal/budget"
    "github.com/thgaskell/budget-sub000/internal/errs"
)

// Store defines the ledger store operations needed by the cache.
type Store interface {
    AccountsByBudget(ctx context.Context, budgetID uuid.UUID) ([]budget.Account, error)
    CategoriesByBudget(ctx context.Context, budgetID uuid.UUID) ([]budget.Category, error)
    TransactionsByBudget(ctx context.Context, budgetID uuid.UUID, from, to *budget.Date) ([]budget.Transaction, error)
    AssignmentsByBudgetMonth(ctx context.Context, budgetID uuid.UUID, m budget.Month) ([]budget.Assignment, error)
    AssignmentsByBudget(ctx context.Context, budgetID uuid.UUID) ([]budget.Assignment, error)
    GetMonthSummary(ctx context.Context, budgetID uuid.UUID, m budget.Month) (budget.MonthSummary, error)
    MonthSummariesByBudget(ctx context.Context, budgetID uuid.UUID) ([]budget.MonthSummary, error)
    SaveMonthSummary(ctx context.Context, sum budget.MonthSummary) (budget.MonthSummary, error)
}

// Service maintains cached month summaries. It is the only component that
// persists derived data.
type Service interface {
    // Calculate computes one month's summary from the previous month's
    // closing figures (nil previous means beginning of time). It never
    // reads or writes the cache.
    Calculate(ctx context.Context, budgetID uuid.UUID, m budget.Month, prev *budget.MonthSummary) (budget.MonthSummary, error)
    // GetOrCalculate returns the cached summary for the month, computing
    // and caching it (and every intermediate month) when absent.
    GetOrCalculate(ctx context.Context, budgetID uuid.UUID, m budget.Month) (budget.MonthSummary, error)
    // RecalculateFromMonth recomputes and overwrites cached summaries from
    // start through the latest cached month. Callers must invoke it after
    // any mutation whose month is not strictly after every cached month.
    RecalculateFromMonth(ctx context.Context, budgetID uuid.UUID, start budget.Month) error
    // LastAssignmentsBeforeMonth returns, per category, the most recent
    // assignment strictly before the given month.
    LastAssignmentsBeforeMonth(ctx context.Context, budgetID uuid.UUID, before budget.Month) (map[uuid.UUID]budget.Assignment, error)
}

type service struct {
    store Store
}

func New(store Store) Service { return &service{store: store} }

func (s *service) Calculate(ctx context.Context, budgetID uuid.UUID, m budget.Month, prev *budget.MonthSummary) (budget.MonthSummary, error) {
    accounts, err := s.store.AccountsByBudget(ctx, budgetID)
    if err != nil {
        return budget.MonthSummary{}, err
    }
    onBudget := make(map[uuid.UUID]bool, len(accounts))
    for _, a := range accounts {
        onBudget[a.ID] = a.OnBudget
    }

    first, last := m.FirstDay(), m.LastDay()
    txns, err := s.store.TransactionsByBudget(ctx, budgetID, &first, &last)
    if err != nil {
        return budget.MonthSummary{}, err
    }
    assigns, err := s.store.AssignmentsByBudgetMonth(ctx, budgetID, m)
    if err != nil {
        return budget.MonthSummary{}, err
    }
    categories, err := s.store.CategoriesByBudget(ctx, budgetID)
    if err != nil {
        return budget.MonthSummary{}, err
    }

    // Opening figures come from the previous summary; zero at the
    // beginning of time.
    var openingRTA int64
    balances := make(map[uuid.UUID]int64, len(categories))
    for _, c := range categories {
        balances[c.ID] = 0
    }
    if prev != nil {
        openingRTA = prev.ClosingRTA
        for id, v := range prev.CategoryBalances {
            balances[id] = v
        }
    }

    // Inflows into on-budget accounts raise RTA; categorized activity
    // only moves category balances.
    var inflow int64
    for _, t := range txns {
        if t.Amount > 0 && onBudget[t.AccountID] {
            inflow += t.Amount
        }
        if t.CategoryID != nil {
            balances[*t.CategoryID] += t.Amount
        }
    }
    var totalAssigned int64
    for _, a := range assigns {
        totalAssigned += a.Amount
        balances[a.CategoryID] += a.Amount
    }

    return budget.MonthSummary{
        BudgetID:         budgetID,
        Month:            m,
        ClosingRTA:       openingRTA + inflow - totalAssigned,
        CategoryBalances: balances,
    }, nil
}

func (s *service) GetOrCalculate(ctx context.Context, budgetID uuid.UUID, m budget.Month) (budget.MonthSummary, error) {
    cached, err := s.store.GetMonthSummary(ctx, budgetID, m)
    if err == nil {
        return cached, nil
    }
    if !errors.Is(err, errs.ErrNotFound) {
        return budget.MonthSummary{}, err
    }

    earliest, ok, err := s.earliestDataMonth(ctx, budgetID)
    if err != nil {
        return budget.MonthSummary{}, err
    }
    if !ok || m < earliest {
        // Base case: the month precedes all data, so its summary is the
        // zero-based one. A single Calculate with no predecessor yields it.
        sum, err := s.Calculate(ctx, budgetID, m, nil)
        if err != nil {
            return budget.MonthSummary{}, err
        }
        return s.store.SaveMonthSummary(ctx, sum)
    }

    // Walk backward until a cached summary or the earliest data month
    // becomes the resume point.
    var prev *budget.MonthSummary
    start := earliest
    for cur := m.Prev(); cur >= earliest; cur = cur.Prev() {
        if cs, err := s.store.GetMonthSummary(ctx, budgetID, cur); err == nil {
            prev = &cs
            start = cur.Next()
            break
        } else if !errors.Is(err, errs.ErrNotFound) {
            return budget.MonthSummary{}, err
        }
    }

    // Forward fill iteratively, caching every intermediate month. History
    // can span many years; no recursion here.
    var out budget.MonthSummary
    for cur := start; cur <= m; cur = cur.Next() {
        sum, err := s.Calculate(ctx, budgetID, cur, prev)
        if err != nil {
            return budget.MonthSummary{}, err
        }
        if _, err := s.store.SaveMonthSummary(ctx, sum); err != nil {
            return budget.MonthSummary{}, fmt.Errorf("cache summary %s: %w", cur, err)
        }
        out = sum
        prev = &sum
    }
    return out, nil
}

func (s *service) RecalculateFromMonth(ctx context.Context, budgetID uuid.UUID, start budget.Month) error {
    sums, err := s.store.MonthSummariesByBudget(ctx, budgetID)
    if err != nil {
        return err
    }
    if len(sums) == 0 {
        return nil
    }
    latest := sums[len(sums)-1].Month
    if start > latest {
        // Nothing cached at or after the mutated month is stale.
        return nil
    }

    var prev *budget.MonthSummary
    p := start.Prev()
    if cs, err := s.store.GetMonthSummary(ctx, budgetID, p); err == nil {
        prev = &cs
    } else if !errors.Is(err, errs.ErrNotFound) {
        return err
    } else {
        earliest, ok, err := s.earliestDataMonth(ctx, budgetID)
        if err != nil {
            return err
        }
        if ok && p >= earliest {
            cs, err := s.GetOrCalculate(ctx, budgetID, p)
            if err != nil {
                return err
            }
            prev = &cs
        }
        // Otherwise start is at (or before) the beginning of history and
        // the chain restarts from zero.
    }

    for cur := start; cur <= latest; cur = cur.Next() {
        sum, err := s.Calculate(ctx, budgetID, cur, prev)
        if err != nil {
            return err
        }
        if _, err := s.store.SaveMonthSummary(ctx, sum); err != nil {
            return fmt.Errorf("recalculate summary %s: %w", cur, err)
        }
        prev = &sum
    }
    return nil
}

func (s *service) LastAssignmentsBeforeMonth(ctx context.Context, budgetID uuid.UUID, before budget.Month) (map[uuid.UUID]budget.Assignment, error) {
    assigns, err := s.store.AssignmentsByBudget(ctx, budgetID)
    if err != nil {
        return nil, err
    }
    out := make(map[uuid.UUID]budget.Assignment)
    for _, a := range assigns {
        // Boundary is exclusive: an assignment exactly at the month does
        // not count as inherited.
        if a.Month >= before {
            continue
        }
        if cur, ok := out[a.CategoryID]; !ok || a.Month > cur.Month {
            out[a.CategoryID] = a
        }
    }
    return out, nil
}

// earliestDataMonth finds the earliest month with any data at all: the
// earliest transaction date, assignment month, or stored summary.
func (s *service) earliestDataMonth(ctx context.Context, budgetID uuid.UUID) (budget.Month, bool, error) {
    var earliest budget.Month
    txns, err := s.store.TransactionsByBudget(ctx, budgetID, nil, nil)
    if err != nil {
        return "", false, err
    }
    if len(txns) > 0 {
        earliest = txns[0].Date.Month()
    }
    assigns, err := s.store.AssignmentsByBudget(ctx, budgetID)
    if err != nil {
        return "", false, err
    }
    for _, a := range assigns {
        if earliest == "" || a.Month < earliest {
            earliest = a.Month
        }
    }
    sums, err := s.store.MonthSummariesByBudget(ctx, budgetID)
    if err != nil {
        return "", false, err
    }
    if len(sums) > 0 {
        if earliest == "" || sums[0].Month < earliest {
            earliest = sums[0].Month
        }
    }
    return earliest, earliest != "", nil
}

// Package assignment implements assigning money to categories per month
// and moving it between categories.
package assignment

import (
    "context"
    "errors"
    "fmt"

    "github.com/google/uuid"

    "github.com/thgaskell/budget-sub000/internal/budget"
    "github.com/thgaskell/budget-sub000/internal/errs"
)

// Store defines the ledger store operations needed by the service.
type Store interface {
    GetCategory(ctx context.Context, id uuid.UUID) (budget.Category, error)
    GetCategoryGroup(ctx context.Context, id uuid.UUID) (budget.CategoryGroup, error)
    GetAssignment(ctx context.Context, categoryID uuid.UUID, m budget.Month) (budget.Assignment, error)
    SaveAssignment(ctx context.Context, a budget.Assignment) (budget.Assignment, error)
    DeleteAssignment(ctx context.Context, categoryID uuid.UUID, m budget.Month) error
}

// Recalculator repairs cached month summaries after a mutation; satisfied
// by the summary service.
type Recalculator interface {
    RecalculateFromMonth(ctx context.Context, budgetID uuid.UUID, start budget.Month) error
}

type Service interface {
    // Assign upserts the assignment row for (category, month) to exactly
    // amount. The amount is absolute, not a delta, and may be negative.
    Assign(ctx context.Context, categoryID uuid.UUID, m budget.Month, amount int64) (budget.Assignment, error)
    // Move shifts amount from one category to another within a month via
    // two independent Assign calls. The two writes are not atomic: a store
    // failure between them leaves the first applied and the second not.
    Move(ctx context.Context, fromID, toID uuid.UUID, m budget.Month, amount int64) error
    // Clear deletes the assignment rows for the given months; used when a
    // category is deleted.
    Clear(ctx context.Context, categoryID uuid.UUID, months []budget.Month) error
}

type service struct {
    store  Store
    recalc Recalculator
}

func New(store Store, recalc Recalculator) Service {
    return &service{store: store, recalc: recalc}
}

// budgetOf resolves the category's budget through its group, erroring with
// the invalid reference by name.
func (s *service) budgetOf(ctx context.Context, categoryID uuid.UUID) (uuid.UUID, error) {
    cat, err := s.store.GetCategory(ctx, categoryID)
    if errors.Is(err, errs.ErrNotFound) {
        return uuid.Nil, fmt.Errorf("unknown category %s: %w", categoryID, errs.ErrNotFound)
    }
    if err != nil {
        return uuid.Nil, err
    }
    grp, err := s.store.GetCategoryGroup(ctx, cat.GroupID)
    if errors.Is(err, errs.ErrNotFound) {
        return uuid.Nil, fmt.Errorf("unknown category group %s: %w", cat.GroupID, errs.ErrNotFound)
    }
    if err != nil {
        return uuid.Nil, err
    }
    return grp.BudgetID, nil
}

func (s *service) Assign(ctx context.Context, categoryID uuid.UUID, m budget.Month, amount int64) (budget.Assignment, error) {
    if _, err := budget.ParseMonth(string(m)); err != nil {
        return budget.Assignment{}, fmt.Errorf("%w: %v", errs.ErrInvalid, err)
    }
    budgetID, err := s.budgetOf(ctx, categoryID)
    if err != nil {
        return budget.Assignment{}, err
    }
    row, err := s.store.SaveAssignment(ctx, budget.Assignment{CategoryID: categoryID, Month: m, Amount: amount})
    if err != nil {
        return budget.Assignment{}, err
    }
    if err := s.recalc.RecalculateFromMonth(ctx, budgetID, m); err != nil {
        return budget.Assignment{}, err
    }
    return row, nil
}

func (s *service) Move(ctx context.Context, fromID, toID uuid.UUID, m budget.Month, amount int64) error {
    if fromID == toID {
        return fmt.Errorf("%w: cannot move within the same category", errs.ErrInvalid)
    }
    // Validate both references up front so a bad target does not leave the
    // source half-applied for no reason.
    if _, err := s.budgetOf(ctx, fromID); err != nil {
        return err
    }
    if _, err := s.budgetOf(ctx, toID); err != nil {
        return err
    }

    curFrom, err := s.currentAmount(ctx, fromID, m)
    if err != nil {
        return err
    }
    curTo, err := s.currentAmount(ctx, toID, m)
    if err != nil {
        return err
    }

    // The source side may go negative; a negative assignment is a valid
    // "net withdrawn this month" row.
    if _, err := s.Assign(ctx, fromID, m, curFrom-amount); err != nil {
        return err
    }
    if _, err := s.Assign(ctx, toID, m, curTo+amount); err != nil {
        return err
    }
    return nil
}

func (s *service) Clear(ctx context.Context, categoryID uuid.UUID, months []budget.Month) error {
    if len(months) == 0 {
        return nil
    }
    budgetID, err := s.budgetOf(ctx, categoryID)
    if err != nil {
        return err
    }
    earliest := months[0]
    for _, m := range months {
        if m < earliest {
            earliest = m
        }
        if err := s.store.DeleteAssignment(ctx, categoryID, m); err != nil && !errors.Is(err, errs.ErrNotFound) {
            return err
        }
    }
    return s.recalc.RecalculateFromMonth(ctx, budgetID, earliest)
}

func (s *service) currentAmount(ctx context.Context, categoryID uuid.UUID, m budget.Month) (int64, error) {
    a, err := s.store.GetAssignment(ctx, categoryID, m)
    if errors.Is(err, errs.ErrNotFound) {
        return 0, nil
    }
    if err != nil {
        return 0, err
    }
    return a.Amount, nil
}

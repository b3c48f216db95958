// Package transaction implements creating, editing, and deleting
// transactions, including two-sided transfers between accounts.
package transaction

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
    GetAccount(ctx context.Context, id uuid.UUID) (budget.Account, error)
    GetCategory(ctx context.Context, id uuid.UUID) (budget.Category, error)
    GetPayee(ctx context.Context, id uuid.UUID) (budget.Payee, error)
    GetTransaction(ctx context.Context, id uuid.UUID) (budget.Transaction, error)
    TransactionsByAccount(ctx context.Context, accountID uuid.UUID, from, to *budget.Date) ([]budget.Transaction, error)
    SaveTransaction(ctx context.Context, t budget.Transaction) (budget.Transaction, error)
    DeleteTransaction(ctx context.Context, id uuid.UUID) error
}

// Recalculator repairs cached month summaries after a mutation; satisfied
// by the summary service.
type Recalculator interface {
    RecalculateFromMonth(ctx context.Context, budgetID uuid.UUID, start budget.Month) error
}

type Service interface {
    Create(ctx context.Context, t budget.Transaction) (budget.Transaction, error)
    // Update edits a transaction. On a transfer leg only memo, cleared,
    // category, and metadata may change; amount, date, and account edits
    // are rejected because the counterpart leg is matched through them.
    Update(ctx context.Context, t budget.Transaction) (budget.Transaction, error)
    // Delete removes a transaction. Deleting a transfer leg also removes
    // its counterpart, matched by reverse account reference and same date.
    Delete(ctx context.Context, id uuid.UUID) error
    // CreateTransfer posts the two legs of a transfer of amount (minor
    // units, positive) from one account to another on the given date.
    CreateTransfer(ctx context.Context, fromAccountID, toAccountID uuid.UUID, date budget.Date, amount int64, memo string) (budget.Transaction, budget.Transaction, error)
}

type service struct {
    store  Store
    recalc Recalculator
}

func New(store Store, recalc Recalculator) Service {
    return &service{store: store, recalc: recalc}
}

// validate checks the transaction's references and date, returning the
// owning account so callers can reach the budget.
func (s *service) validate(ctx context.Context, t budget.Transaction) (budget.Account, error) {
    if _, err := budget.ParseDate(string(t.Date)); err != nil {
        return budget.Account{}, fmt.Errorf("%w: %v", errs.ErrInvalid, err)
    }
    acc, err := s.store.GetAccount(ctx, t.AccountID)
    if errors.Is(err, errs.ErrNotFound) {
        return budget.Account{}, fmt.Errorf("unknown account %s: %w", t.AccountID, errs.ErrNotFound)
    }
    if err != nil {
        return budget.Account{}, err
    }
    if t.CategoryID != nil {
        if _, err := s.store.GetCategory(ctx, *t.CategoryID); err != nil {
            if errors.Is(err, errs.ErrNotFound) {
                return budget.Account{}, fmt.Errorf("unknown category %s: %w", *t.CategoryID, errs.ErrNotFound)
            }
            return budget.Account{}, err
        }
    }
    if t.PayeeID != nil {
        if _, err := s.store.GetPayee(ctx, *t.PayeeID); err != nil {
            if errors.Is(err, errs.ErrNotFound) {
                return budget.Account{}, fmt.Errorf("unknown payee %s: %w", *t.PayeeID, errs.ErrNotFound)
            }
            return budget.Account{}, err
        }
    }
    if err := t.Metadata.Validate(); err != nil {
        return budget.Account{}, fmt.Errorf("%w: %v", errs.ErrInvalid, err)
    }
    return acc, nil
}

func (s *service) Create(ctx context.Context, t budget.Transaction) (budget.Transaction, error) {
    acc, err := s.validate(ctx, t)
    if err != nil {
        return budget.Transaction{}, err
    }
    if t.ID == uuid.Nil {
        t.ID = uuid.New()
    }
    saved, err := s.store.SaveTransaction(ctx, t)
    if err != nil {
        return budget.Transaction{}, err
    }
    if err := s.recalc.RecalculateFromMonth(ctx, acc.BudgetID, t.Date.Month()); err != nil {
        return budget.Transaction{}, err
    }
    return saved, nil
}

func (s *service) Update(ctx context.Context, t budget.Transaction) (budget.Transaction, error) {
    old, err := s.store.GetTransaction(ctx, t.ID)
    if errors.Is(err, errs.ErrNotFound) {
        return budget.Transaction{}, fmt.Errorf("unknown transaction %s: %w", t.ID, errs.ErrNotFound)
    }
    if err != nil {
        return budget.Transaction{}, err
    }
    if err := checkTransferEdit(old, t); err != nil {
        return budget.Transaction{}, err
    }
    acc, err := s.validate(ctx, t)
    if err != nil {
        return budget.Transaction{}, err
    }
    saved, err := s.store.SaveTransaction(ctx, t)
    if err != nil {
        return budget.Transaction{}, err
    }
    // Repair from the earlier of the two affected months so moving a
    // transaction across months invalidates the vacated month too.
    start := t.Date.Month()
    if om := old.Date.Month(); om < start {
        start = om
    }
    if err := s.recalc.RecalculateFromMonth(ctx, acc.BudgetID, start); err != nil {
        return budget.Transaction{}, err
    }
    if old.AccountID != acc.ID {
        if oldAcc, err := s.store.GetAccount(ctx, old.AccountID); err == nil && oldAcc.BudgetID != acc.BudgetID {
            if err := s.recalc.RecalculateFromMonth(ctx, oldAcc.BudgetID, start); err != nil {
                return budget.Transaction{}, err
            }
        }
    }
    return saved, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
    t, err := s.store.GetTransaction(ctx, id)
    if errors.Is(err, errs.ErrNotFound) {
        return fmt.Errorf("unknown transaction %s: %w", id, errs.ErrNotFound)
    }
    if err != nil {
        return err
    }
    acc, err := s.store.GetAccount(ctx, t.AccountID)
    if err != nil {
        return err
    }
    if err := s.store.DeleteTransaction(ctx, id); err != nil {
        return err
    }
    if t.IsTransfer() {
        if other, ok, err := s.findCounterpart(ctx, t); err != nil {
            return err
        } else if ok {
            if err := s.store.DeleteTransaction(ctx, other.ID); err != nil && !errors.Is(err, errs.ErrNotFound) {
                return err
            }
        }
    }
    return s.recalc.RecalculateFromMonth(ctx, acc.BudgetID, t.Date.Month())
}

func (s *service) CreateTransfer(ctx context.Context, fromAccountID, toAccountID uuid.UUID, date budget.Date, amount int64, memo string) (budget.Transaction, budget.Transaction, error) {
    if fromAccountID == toAccountID {
        return budget.Transaction{}, budget.Transaction{}, fmt.Errorf("%w: transfer requires two distinct accounts", errs.ErrInvalid)
    }
    if amount <= 0 {
        return budget.Transaction{}, budget.Transaction{}, fmt.Errorf("%w: transfer amount must be positive", errs.ErrInvalid)
    }
    if _, err := budget.ParseDate(string(date)); err != nil {
        return budget.Transaction{}, budget.Transaction{}, fmt.Errorf("%w: %v", errs.ErrInvalid, err)
    }
    from, err := s.store.GetAccount(ctx, fromAccountID)
    if errors.Is(err, errs.ErrNotFound) {
        return budget.Transaction{}, budget.Transaction{}, fmt.Errorf("unknown account %s: %w", fromAccountID, errs.ErrNotFound)
    }
    if err != nil {
        return budget.Transaction{}, budget.Transaction{}, err
    }
    to, err := s.store.GetAccount(ctx, toAccountID)
    if errors.Is(err, errs.ErrNotFound) {
        return budget.Transaction{}, budget.Transaction{}, fmt.Errorf("unknown account %s: %w", toAccountID, errs.ErrNotFound)
    }
    if err != nil {
        return budget.Transaction{}, budget.Transaction{}, err
    }
    if from.BudgetID != to.BudgetID {
        return budget.Transaction{}, budget.Transaction{}, fmt.Errorf("%w: transfer accounts belong to different budgets", errs.ErrInvalid)
    }

    outLeg := budget.Transaction{
        ID:                uuid.New(),
        AccountID:         fromAccountID,
        Date:              date,
        Amount:            -amount,
        Memo:              memo,
        TransferAccountID: &toAccountID,
    }
    inLeg := budget.Transaction{
        ID:                uuid.New(),
        AccountID:         toAccountID,
        Date:              date,
        Amount:            amount,
        Memo:              memo,
        TransferAccountID: &fromAccountID,
    }
    if _, err := s.store.SaveTransaction(ctx, outLeg); err != nil {
        return budget.Transaction{}, budget.Transaction{}, err
    }
    if _, err := s.store.SaveTransaction(ctx, inLeg); err != nil {
        return budget.Transaction{}, budget.Transaction{}, err
    }
    if err := s.recalc.RecalculateFromMonth(ctx, from.BudgetID, date.Month()); err != nil {
        return budget.Transaction{}, budget.Transaction{}, err
    }
    return outLeg, inLeg, nil
}

// checkTransferEdit rejects edits that would strand a transfer leg. The
// legs stay linked only through account, date, and negated amount, so
// changing any of those on one leg would break counterpart lookup; the
// transfer must be deleted and recreated instead.
func checkTransferEdit(old, t budget.Transaction) error {
    if !old.IsTransfer() {
        if t.TransferAccountID != nil {
            return fmt.Errorf("%w: a transaction cannot become a transfer leg", errs.ErrInvalid)
        }
        return nil
    }
    if t.TransferAccountID == nil || *t.TransferAccountID != *old.TransferAccountID {
        return fmt.Errorf("%w: transfer link cannot be changed", errs.ErrInvalid)
    }
    if t.Amount != old.Amount || t.Date != old.Date || t.AccountID != old.AccountID {
        return fmt.Errorf("%w: amount, date, and accounts of a transfer leg are fixed; delete and recreate the transfer", errs.ErrInvalid)
    }
    return nil
}

// findCounterpart locates the opposite leg of a transfer on the referenced
// account with the same date. Ambiguous when two transfers between the same
// accounts share a day; the first match wins.
func (s *service) findCounterpart(ctx context.Context, t budget.Transaction) (budget.Transaction, bool, error) {
    candidates, err := s.store.TransactionsByAccount(ctx, *t.TransferAccountID, &t.Date, &t.Date)
    if err != nil {
        return budget.Transaction{}, false, err
    }
    for _, c := range candidates {
        if c.TransferAccountID != nil && *c.TransferAccountID == t.AccountID && c.Amount == -t.Amount {
            return c, true, nil
        }
    }
    return budget.Transaction{}, false, nil
}

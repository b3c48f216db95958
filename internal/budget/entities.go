// Package budget defines the domain entities of the envelope-budgeting
// ledger. All monetary values are signed int64 amounts in minor currency
// units (cents); negative transaction amounts are outflows.
package budget

import (
    "github.com/google/uuid"

    "github.com/thgaskell/budget-sub000/internal/meta"
)

// AccountType enumerates the broad classification of an account.
type AccountType string

const (
    AccountTypeChecking AccountType = "checking"
    AccountTypeSavings  AccountType = "savings"
    AccountTypeCredit   AccountType = "credit"
    AccountTypeCash     AccountType = "cash"
    // AccountTypeTracking holds balances that are watched but never budgeted.
    AccountTypeTracking AccountType = "tracking"
)

// Valid reports whether t is a known account type.
func (t AccountType) Valid() bool {
    switch t {
    case AccountTypeChecking, AccountTypeSavings, AccountTypeCredit, AccountTypeCash, AccountTypeTracking:
        return true
    }
    return false
}

// Budget is the top-level container all other entities belong to.
type Budget struct {
    ID       uuid.UUID
    Name     string
    // Currency is the ISO code used to render minor-unit amounts for display.
    Currency string
}

// Account represents a real-world account holding money.
// Only accounts with OnBudget set contribute inflows to Ready to Assign.
type Account struct {
    ID       uuid.UUID
    BudgetID uuid.UUID
    Name     string
    Type     AccountType
    OnBudget bool
}

// CategoryGroup organizes categories for display. It carries no balance.
type CategoryGroup struct {
    ID        uuid.UUID
    BudgetID  uuid.UUID
    Name      string
    SortOrder int
}

// Category is a spending envelope. Balances are never stored on the
// category itself; they are always computed per (category, month).
type Category struct {
    ID        uuid.UUID
    GroupID   uuid.UUID
    Name      string
    SortOrder int
}

// Payee names the other party of a transaction.
type Payee struct {
    ID       uuid.UUID
    BudgetID uuid.UUID
    Name     string
}

// Transaction is a single movement of money on an account.
// A transfer is exactly two transactions with equal absolute amount,
// opposite sign, the same date, and each other's account in
// TransferAccountID.
type Transaction struct {
    ID         uuid.UUID
    AccountID  uuid.UUID
    CategoryID *uuid.UUID
    PayeeID    *uuid.UUID
    Date       Date
    // Amount in minor units; negative is an outflow.
    Amount  int64
    Memo    string
    Cleared bool
    // TransferAccountID marks this transaction as one leg of a transfer.
    TransferAccountID *uuid.UUID
    // Metadata holds import ids, sync markers, and similar free-form tags.
    Metadata meta.Metadata
}

// IsTransfer reports whether the transaction is a transfer leg.
func (t Transaction) IsTransfer() bool { return t.TransferAccountID != nil }

// Assignment is the money assigned to a category for one specific month
// only (not cumulative). Amount may be negative when money was pulled
// back out of the category for that month.
type Assignment struct {
    CategoryID uuid.UUID
    Month      Month
    Amount     int64
}

// MonthSummary caches the closing figures for one (budget, month) pair:
// Ready to Assign at month end and every category's cumulative available
// balance. It is always derivable from raw data; losing it is safe.
type MonthSummary struct {
    BudgetID   uuid.UUID
    Month      Month
    ClosingRTA int64
    // CategoryBalances maps category ID to its closing available balance.
    CategoryBalances map[uuid.UUID]int64
}

// Clone returns a deep copy so cached summaries can be handed out without
// sharing the balance map.
func (s MonthSummary) Clone() MonthSummary {
    out := s
    out.CategoryBalances = make(map[uuid.UUID]int64, len(s.CategoryBalances))
    for id, v := range s.CategoryBalances {
        out.CategoryBalances[id] = v
    }
    return out
}

// AccountBalance partitions an account's transactions by cleared state.
type AccountBalance struct {
    Cleared   int64
    Uncleared int64
    Working   int64
}

// CategoryBalance holds one category's figures for a single month.
// Available is cumulative across all prior months, not Assigned+Activity.
type CategoryBalance struct {
    Assigned  int64
    Activity  int64
    Available int64
}

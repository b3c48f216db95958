package httpapi

import (
    "github.com/google/uuid"
    "github.com/govalues/money"

    "github.com/thgaskell/budget-sub000/internal/budget"
    "github.com/thgaskell/budget-sub000/internal/meta"
)

// amountString renders a minor-unit amount in the budget currency for
// display alongside the raw integer. Empty on unknown currency codes.
func amountString(currency string, minor int64) string {
    a, err := money.NewAmountFromMinorUnits(currency, minor)
    if err != nil {
        return ""
    }
    return a.String()
}

// Budgets

type postBudgetRequest struct {
    Name     string `json:"name"`
    Currency string `json:"currency"`
    // SeedDefaults populates the budget with the curated starter
    // category groups.
    SeedDefaults bool `json:"seed_defaults,omitempty"`
}

type budgetResponse struct {
    ID       uuid.UUID `json:"id"`
    Name     string    `json:"name"`
    Currency string    `json:"currency"`
}

func toBudgetResponse(b budget.Budget) budgetResponse {
    return budgetResponse{ID: b.ID, Name: b.Name, Currency: b.Currency}
}

// Accounts

type postAccountRequest struct {
    BudgetID uuid.UUID          `json:"budget_id"`
    Name     string             `json:"name"`
    Type     budget.AccountType `json:"type"`
    OnBudget bool               `json:"on_budget"`
}

type accountResponse struct {
    ID       uuid.UUID          `json:"id"`
    BudgetID uuid.UUID          `json:"budget_id"`
    Name     string             `json:"name"`
    Type     budget.AccountType `json:"type"`
    OnBudget bool               `json:"on_budget"`
}

func toAccountResponse(a budget.Account) accountResponse {
    return accountResponse{ID: a.ID, BudgetID: a.BudgetID, Name: a.Name, Type: a.Type, OnBudget: a.OnBudget}
}

type accountBalancesResponse struct {
    AccountID      uuid.UUID `json:"account_id"`
    Currency       string    `json:"currency"`
    ClearedMinor   int64     `json:"cleared_minor"`
    UnclearedMinor int64     `json:"uncleared_minor"`
    WorkingMinor   int64     `json:"working_minor"`
    Working        string    `json:"working,omitempty"`
}

// Category groups and categories

type postCategoryGroupRequest struct {
    BudgetID  uuid.UUID `json:"budget_id"`
    Name      string    `json:"name"`
    SortOrder int       `json:"sort_order"`
}

type categoryGroupResponse struct {
    ID        uuid.UUID `json:"id"`
    BudgetID  uuid.UUID `json:"budget_id"`
    Name      string    `json:"name"`
    SortOrder int       `json:"sort_order"`
}

func toCategoryGroupResponse(g budget.CategoryGroup) categoryGroupResponse {
    return categoryGroupResponse{ID: g.ID, BudgetID: g.BudgetID, Name: g.Name, SortOrder: g.SortOrder}
}

type postCategoryRequest struct {
    GroupID   uuid.UUID `json:"group_id"`
    Name      string    `json:"name"`
    SortOrder int       `json:"sort_order"`
}

type categoryResponse struct {
    ID        uuid.UUID `json:"id"`
    GroupID   uuid.UUID `json:"group_id"`
    Name      string    `json:"name"`
    SortOrder int       `json:"sort_order"`
}

func toCategoryResponse(c budget.Category) categoryResponse {
    return categoryResponse{ID: c.ID, GroupID: c.GroupID, Name: c.Name, SortOrder: c.SortOrder}
}

type categoryBalancesResponse struct {
    CategoryID     uuid.UUID    `json:"category_id"`
    Month          budget.Month `json:"month"`
    AssignedMinor  int64        `json:"assigned_minor"`
    ActivityMinor  int64        `json:"activity_minor"`
    AvailableMinor int64        `json:"available_minor"`
    Available      string       `json:"available,omitempty"`
}

// Payees

type postPayeeRequest struct {
    BudgetID uuid.UUID `json:"budget_id"`
    Name     string    `json:"name"`
}

type payeeResponse struct {
    ID       uuid.UUID `json:"id"`
    BudgetID uuid.UUID `json:"budget_id"`
    Name     string    `json:"name"`
}

func toPayeeResponse(p budget.Payee) payeeResponse {
    return payeeResponse{ID: p.ID, BudgetID: p.BudgetID, Name: p.Name}
}

// Transactions

type postTransactionRequest struct {
    AccountID   uuid.UUID     `json:"account_id"`
    CategoryID  *uuid.UUID    `json:"category_id,omitempty"`
    PayeeID     *uuid.UUID    `json:"payee_id,omitempty"`
    Date        string        `json:"date"`
    AmountMinor int64         `json:"amount_minor"`
    Memo        string        `json:"memo,omitempty"`
    Cleared     bool          `json:"cleared"`
    Metadata    meta.Metadata `json:"metadata,omitempty"`
}

// patchTransactionRequest carries a partial edit; absent fields keep
// their stored values. Category and payee cannot be cleared via PATCH,
// and metadata pairs are merged into the stored map, not replaced.
type patchTransactionRequest struct {
    AccountID   *uuid.UUID    `json:"account_id,omitempty"`
    CategoryID  *uuid.UUID    `json:"category_id,omitempty"`
    PayeeID     *uuid.UUID    `json:"payee_id,omitempty"`
    Date        *string       `json:"date,omitempty"`
    AmountMinor *int64        `json:"amount_minor,omitempty"`
    Memo        *string       `json:"memo,omitempty"`
    Cleared     *bool         `json:"cleared,omitempty"`
    Metadata    meta.Metadata `json:"metadata,omitempty"`
}

type transactionResponse struct {
    ID                uuid.UUID     `json:"id"`
    AccountID         uuid.UUID     `json:"account_id"`
    CategoryID        *uuid.UUID    `json:"category_id,omitempty"`
    PayeeID           *uuid.UUID    `json:"payee_id,omitempty"`
    Date              string        `json:"date"`
    AmountMinor       int64         `json:"amount_minor"`
    Memo              string        `json:"memo,omitempty"`
    Cleared           bool          `json:"cleared"`
    TransferAccountID *uuid.UUID    `json:"transfer_account_id,omitempty"`
    Metadata          meta.Metadata `json:"metadata,omitempty"`
}

func toTransactionResponse(t budget.Transaction) transactionResponse {
    return transactionResponse{
        ID:                t.ID,
        AccountID:         t.AccountID,
        CategoryID:        t.CategoryID,
        PayeeID:           t.PayeeID,
        Date:              string(t.Date),
        AmountMinor:       t.Amount,
        Memo:              t.Memo,
        Cleared:           t.Cleared,
        TransferAccountID: t.TransferAccountID,
        Metadata:          t.Metadata,
    }
}

type postTransferRequest struct {
    FromAccountID uuid.UUID `json:"from_account_id"`
    ToAccountID   uuid.UUID `json:"to_account_id"`
    Date          string    `json:"date"`
    AmountMinor   int64     `json:"amount_minor"`
    Memo          string    `json:"memo,omitempty"`
}

type transferResponse struct {
    From transactionResponse `json:"from"`
    To   transactionResponse `json:"to"`
}

// Assignments

type putAssignmentRequest struct {
    CategoryID  uuid.UUID    `json:"category_id"`
    Month       budget.Month `json:"month"`
    AmountMinor int64        `json:"amount_minor"`
}

type assignmentResponse struct {
    CategoryID  uuid.UUID    `json:"category_id"`
    Month       budget.Month `json:"month"`
    AmountMinor int64        `json:"amount_minor"`
}

func toAssignmentResponse(a budget.Assignment) assignmentResponse {
    return assignmentResponse{CategoryID: a.CategoryID, Month: a.Month, AmountMinor: a.Amount}
}

type moveAssignmentRequest struct {
    FromCategoryID uuid.UUID    `json:"from_category_id"`
    ToCategoryID   uuid.UUID    `json:"to_category_id"`
    Month          budget.Month `json:"month"`
    AmountMinor    int64        `json:"amount_minor"`
}

// Months

type readyToAssignResponse struct {
    BudgetID      uuid.UUID    `json:"budget_id"`
    Month         budget.Month `json:"month"`
    ReadyToAssign int64        `json:"ready_to_assign_minor"`
    Formatted     string       `json:"ready_to_assign,omitempty"`
}

type monthSummaryResponse struct {
    BudgetID         uuid.UUID        `json:"budget_id"`
    Month            budget.Month     `json:"month"`
    ClosingRTAMinor  int64            `json:"closing_rta_minor"`
    CategoryBalances map[string]int64 `json:"category_balances"`
}

func toMonthSummaryResponse(sum budget.MonthSummary) monthSummaryResponse {
    balances := make(map[string]int64, len(sum.CategoryBalances))
    for id, v := range sum.CategoryBalances {
        balances[id.String()] = v
    }
    return monthSummaryResponse{
        BudgetID:         sum.BudgetID,
        Month:            sum.Month,
        ClosingRTAMinor:  sum.ClosingRTA,
        CategoryBalances: balances,
    }
}

type inheritedAssignmentsResponse struct {
    BudgetID    uuid.UUID            `json:"budget_id"`
    Month       budget.Month         `json:"month"`
    Assignments []assignmentResponse `json:"assignments"`
}

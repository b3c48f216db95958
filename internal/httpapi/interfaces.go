package httpapi

import (
    "context"

    "github.com/google/uuid"
    "github.com/thgaskell/budget-sub000/internal/budget"
)

// Store is the full ledger store contract the HTTP surface wires into the
// services. Both the memory and postgres stores satisfy it.
type Store interface {
    GetBudget(ctx context.Context, id uuid.UUID) (budget.Budget, error)
    ListBudgets(ctx context.Context) ([]budget.Budget, error)
    SaveBudget(ctx context.Context, b budget.Budget) (budget.Budget, error)

    GetAccount(ctx context.Context, id uuid.UUID) (budget.Account, error)
    AccountsByBudget(ctx context.Context, budgetID uuid.UUID) ([]budget.Account, error)
    SaveAccount(ctx context.Context, a budget.Account) (budget.Account, error)
    DeleteAccount(ctx context.Context, id uuid.UUID) error

    GetCategoryGroup(ctx context.Context, id uuid.UUID) (budget.CategoryGroup, error)
    CategoryGroupsByBudget(ctx context.Context, budgetID uuid.UUID) ([]budget.CategoryGroup, error)
    SaveCategoryGroup(ctx context.Context, g budget.CategoryGroup) (budget.CategoryGroup, error)
    DeleteCategoryGroup(ctx context.Context, id uuid.UUID) error

    GetCategory(ctx context.Context, id uuid.UUID) (budget.Category, error)
    CategoriesByGroup(ctx context.Context, groupID uuid.UUID) ([]budget.Category, error)
    CategoriesByBudget(ctx context.Context, budgetID uuid.UUID) ([]budget.Category, error)
    SaveCategory(ctx context.Context, c budget.Category) (budget.Category, error)
    DeleteCategory(ctx context.Context, id uuid.UUID) error

    GetPayee(ctx context.Context, id uuid.UUID) (budget.Payee, error)
    PayeesByBudget(ctx context.Context, budgetID uuid.UUID) ([]budget.Payee, error)
    SavePayee(ctx context.Context, p budget.Payee) (budget.Payee, error)
    DeletePayee(ctx context.Context, id uuid.UUID) error

    GetTransaction(ctx context.Context, id uuid.UUID) (budget.Transaction, error)
    TransactionsByAccount(ctx context.Context, accountID uuid.UUID, from, to *budget.Date) ([]budget.Transaction, error)
    TransactionsByBudget(ctx context.Context, budgetID uuid.UUID, from, to *budget.Date) ([]budget.Transaction, error)
    SaveTransaction(ctx context.Context, t budget.Transaction) (budget.Transaction, error)
    DeleteTransaction(ctx context.Context, id uuid.UUID) error

    GetAssignment(ctx context.Context, categoryID uuid.UUID, m budget.Month) (budget.Assignment, error)
    AssignmentsByBudgetMonth(ctx context.Context, budgetID uuid.UUID, m budget.Month) ([]budget.Assignment, error)
    AssignmentsByBudget(ctx context.Context, budgetID uuid.UUID) ([]budget.Assignment, error)
    SaveAssignment(ctx context.Context, a budget.Assignment) (budget.Assignment, error)
    DeleteAssignment(ctx context.Context, categoryID uuid.UUID, m budget.Month) error

    GetMonthSummary(ctx context.Context, budgetID uuid.UUID, m budget.Month) (budget.MonthSummary, error)
    MonthSummariesByBudget(ctx context.Context, budgetID uuid.UUID) ([]budget.MonthSummary, error)
    SaveMonthSummary(ctx context.Context, sum budget.MonthSummary) (budget.MonthSummary, error)
}

// ReadyChecker is optionally implemented by stores to indicate readiness.
type ReadyChecker interface {
    Ready(ctx context.Context) error
}

// Package postgres provides a pgx-backed storage implementation that
// satisfies the ledger store contract used by the services.
//
// It is intentionally small and explicit. Migrations that create the
// expected schema are run externally; this package focuses on mapping
// between the domain entities and SQL rows. Dates and months are stored as
// text ("YYYY-MM-DD" / "YYYY-MM") so SQL ordering matches the engine's
// lexical ordering.
package postgres

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"

    "github.com/google/uuid"
    "github.com/jackc/pgx/v5"
    "github.com/jackc/pgx/v5/pgxpool"

    "github.com/thgaskell/budget-sub000/internal/budget"
    "github.com/thgaskell/budget-sub000/internal/errs"
)

// Store holds a pgx connection pool and implements the ledger store
// contract. All methods are safe for concurrent use.
type Store struct {
    pool *pgxpool.Pool
}

// Open establishes a pgx pool using the provided connection string.
func Open(ctx context.Context, dsn string) (*Store, error) {
    cfg, err := pgxpool.ParseConfig(dsn)
    if err != nil {
        return nil, err
    }
    pool, err := pgxpool.NewWithConfig(ctx, cfg)
    if err != nil {
        return nil, err
    }
    if err := pool.Ping(ctx); err != nil {
        pool.Close()
        return nil, err
    }
    return &Store{pool: pool}, nil
}

// Close releases the underlying pool.
func (s *Store) Close() {
    if s.pool != nil {
        s.pool.Close()
    }
}

// Ready pings the pool to verify connectivity.
func (s *Store) Ready(ctx context.Context) error { return s.pool.Ping(ctx) }

// --- Budgets ---

func (s *Store) GetBudget(ctx context.Context, id uuid.UUID) (budget.Budget, error) {
    var b budget.Budget
    err := s.pool.QueryRow(ctx, `
        select id, name, currency from budgets where id = $1
    `, id).Scan(&b.ID, &b.Name, &b.Currency)
    if errors.Is(err, pgx.ErrNoRows) {
        return budget.Budget{}, errs.ErrNotFound
    }
    if err != nil {
        return budget.Budget{}, err
    }
    return b, nil
}

func (s *Store) ListBudgets(ctx context.Context) ([]budget.Budget, error) {
    rows, err := s.pool.Query(ctx, `select id, name, currency from budgets order by name`)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := make([]budget.Budget, 0)
    for rows.Next() {
        var b budget.Budget
        if err := rows.Scan(&b.ID, &b.Name, &b.Currency); err != nil {
            return nil, err
        }
        out = append(out, b)
    }
    return out, rows.Err()
}

func (s *Store) SaveBudget(ctx context.Context, b budget.Budget) (budget.Budget, error) {
    _, err := s.pool.Exec(ctx, `
        insert into budgets (id, name, currency)
        values ($1,$2,$3)
        on conflict (id) do update set name = excluded.name, currency = excluded.currency
    `, b.ID, b.Name, b.Currency)
    if err != nil {
        return budget.Budget{}, err
    }
    return b, nil
}

// --- Accounts ---

func (s *Store) GetAccount(ctx context.Context, id uuid.UUID) (budget.Account, error) {
    var a budget.Account
    err := s.pool.QueryRow(ctx, `
        select id, budget_id, name, type, on_budget from accounts where id = $1
    `, id).Scan(&a.ID, &a.BudgetID, &a.Name, &a.Type, &a.OnBudget)
    if errors.Is(err, pgx.ErrNoRows) {
        return budget.Account{}, errs.ErrNotFound
    }
    if err != nil {
        return budget.Account{}, err
    }
    return a, nil
}

func (s *Store) AccountsByBudget(ctx context.Context, budgetID uuid.UUID) ([]budget.Account, error) {
    rows, err := s.pool.Query(ctx, `
        select id, budget_id, name, type, on_budget
        from accounts
        where budget_id = $1
        order by name
    `, budgetID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := make([]budget.Account, 0)
    for rows.Next() {
        var a budget.Account
        if err := rows.Scan(&a.ID, &a.BudgetID, &a.Name, &a.Type, &a.OnBudget); err != nil {
            return nil, err
        }
        out = append(out, a)
    }
    return out, rows.Err()
}

func (s *Store) SaveAccount(ctx context.Context, a budget.Account) (budget.Account, error) {
    _, err := s.pool.Exec(ctx, `
        insert into accounts (id, budget_id, name, type, on_budget)
        values ($1,$2,$3,$4,$5)
        on conflict (id) do update
        set name = excluded.name, type = excluded.type, on_budget = excluded.on_budget
    `, a.ID, a.BudgetID, a.Name, a.Type, a.OnBudget)
    if err != nil {
        return budget.Account{}, err
    }
    return a, nil
}

func (s *Store) DeleteAccount(ctx context.Context, id uuid.UUID) error {
    ct, err := s.pool.Exec(ctx, `delete from accounts where id = $1`, id)
    if err != nil {
        return err
    }
    if ct.RowsAffected() == 0 {
        return errs.ErrNotFound
    }
    return nil
}

// --- Category groups ---

func (s *Store) GetCategoryGroup(ctx context.Context, id uuid.UUID) (budget.CategoryGroup, error) {
    var g budget.CategoryGroup
    err := s.pool.QueryRow(ctx, `
        select id, budget_id, name, sort_order from category_groups where id = $1
    `, id).Scan(&g.ID, &g.BudgetID, &g.Name, &g.SortOrder)
    if errors.Is(err, pgx.ErrNoRows) {
        return budget.CategoryGroup{}, errs.ErrNotFound
    }
    if err != nil {
        return budget.CategoryGroup{}, err
    }
    return g, nil
}

func (s *Store) CategoryGroupsByBudget(ctx context.Context, budgetID uuid.UUID) ([]budget.CategoryGroup, error) {
    rows, err := s.pool.Query(ctx, `
        select id, budget_id, name, sort_order
        from category_groups
        where budget_id = $1
        order by sort_order
    `, budgetID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := make([]budget.CategoryGroup, 0)
    for rows.Next() {
        var g budget.CategoryGroup
        if err := rows.Scan(&g.ID, &g.BudgetID, &g.Name, &g.SortOrder); err != nil {
            return nil, err
        }
        out = append(out, g)
    }
    return out, rows.Err()
}

func (s *Store) SaveCategoryGroup(ctx context.Context, g budget.CategoryGroup) (budget.CategoryGroup, error) {
    _, err := s.pool.Exec(ctx, `
        insert into category_groups (id, budget_id, name, sort_order)
        values ($1,$2,$3,$4)
        on conflict (id) do update
        set name = excluded.name, sort_order = excluded.sort_order
    `, g.ID, g.BudgetID, g.Name, g.SortOrder)
    if err != nil {
        return budget.CategoryGroup{}, err
    }
    return g, nil
}

func (s *Store) DeleteCategoryGroup(ctx context.Context, id uuid.UUID) error {
    ct, err := s.pool.Exec(ctx, `delete from category_groups where id = $1`, id)
    if err != nil {
        return err
    }
    if ct.RowsAffected() == 0 {
        return errs.ErrNotFound
    }
    return nil
}

// --- Categories ---

func (s *Store) GetCategory(ctx context.Context, id uuid.UUID) (budget.Category, error) {
    var c budget.Category
    err := s.pool.QueryRow(ctx, `
        select id, group_id, name, sort_order from categories where id = $1
    `, id).Scan(&c.ID, &c.GroupID, &c.Name, &c.SortOrder)
    if errors.Is(err, pgx.ErrNoRows) {
        return budget.Category{}, errs.ErrNotFound
    }
    if err != nil {
        return budget.Category{}, err
    }
    return c, nil
}

func (s *Store) CategoriesByGroup(ctx context.Context, groupID uuid.UUID) ([]budget.Category, error) {
    rows, err := s.pool.Query(ctx, `
        select id, group_id, name, sort_order
        from categories
        where group_id = $1
        order by sort_order
    `, groupID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    return scanCategories(rows)
}

func (s *Store) CategoriesByBudget(ctx context.Context, budgetID uuid.UUID) ([]budget.Category, error) {
    rows, err := s.pool.Query(ctx, `
        select c.id, c.group_id, c.name, c.sort_order
        from categories c
        join category_groups g on g.id = c.group_id
        where g.budget_id = $1
        order by g.sort_order, c.sort_order
    `, budgetID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    return scanCategories(rows)
}

func scanCategories(rows pgx.Rows) ([]budget.Category, error) {
    out := make([]budget.Category, 0)
    for rows.Next() {
        var c budget.Category
        if err := rows.Scan(&c.ID, &c.GroupID, &c.Name, &c.SortOrder); err != nil {
            return nil, err
        }
        out = append(out, c)
    }
    return out, rows.Err()
}

func (s *Store) SaveCategory(ctx context.Context, c budget.Category) (budget.Category, error) {
    _, err := s.pool.Exec(ctx, `
        insert into categories (id, group_id, name, sort_order)
        values ($1,$2,$3,$4)
        on conflict (id) do update
        set group_id = excluded.group_id, name = excluded.name, sort_order = excluded.sort_order
    `, c.ID, c.GroupID, c.Name, c.SortOrder)
    if err != nil {
        return budget.Category{}, err
    }
    return c, nil
}

func (s *Store) DeleteCategory(ctx context.Context, id uuid.UUID) error {
    ct, err := s.pool.Exec(ctx, `delete from categories where id = $1`, id)
    if err != nil {
        return err
    }
    if ct.RowsAffected() == 0 {
        return errs.ErrNotFound
    }
    return nil
}

// --- Payees ---

func (s *Store) GetPayee(ctx context.Context, id uuid.UUID) (budget.Payee, error) {
    var p budget.Payee
    err := s.pool.QueryRow(ctx, `
        select id, budget_id, name from payees where id = $1
    `, id).Scan(&p.ID, &p.BudgetID, &p.Name)
    if errors.Is(err, pgx.ErrNoRows) {
        return budget.Payee{}, errs.ErrNotFound
    }
    if err != nil {
        return budget.Payee{}, err
    }
    return p, nil
}

func (s *Store) PayeesByBudget(ctx context.Context, budgetID uuid.UUID) ([]budget.Payee, error) {
    rows, err := s.pool.Query(ctx, `
        select id, budget_id, name from payees where budget_id = $1 order by name
    `, budgetID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := make([]budget.Payee, 0)
    for rows.Next() {
        var p budget.Payee
        if err := rows.Scan(&p.ID, &p.BudgetID, &p.Name); err != nil {
            return nil, err
        }
        out = append(out, p)
    }
    return out, rows.Err()
}

func (s *Store) SavePayee(ctx context.Context, p budget.Payee) (budget.Payee, error) {
    _, err := s.pool.Exec(ctx, `
        insert into payees (id, budget_id, name)
        values ($1,$2,$3)
        on conflict (id) do update set name = excluded.name
    `, p.ID, p.BudgetID, p.Name)
    if err != nil {
        return budget.Payee{}, err
    }
    return p, nil
}

func (s *Store) DeletePayee(ctx context.Context, id uuid.UUID) error {
    ct, err := s.pool.Exec(ctx, `delete from payees where id = $1`, id)
    if err != nil {
        return err
    }
    if ct.RowsAffected() == 0 {
        return errs.ErrNotFound
    }
    return nil
}

// --- Transactions ---

const txnColumns = `id, account_id, category_id, payee_id, date, amount_minor, memo, cleared, transfer_account_id, metadata`

func (s *Store) GetTransaction(ctx context.Context, id uuid.UUID) (budget.Transaction, error) {
    row := s.pool.QueryRow(ctx, `
        select `+txnColumns+` from transactions where id = $1
    `, id)
    t, err := scanTransaction(row)
    if errors.Is(err, pgx.ErrNoRows) {
        return budget.Transaction{}, errs.ErrNotFound
    }
    return t, err
}

func (s *Store) TransactionsByAccount(ctx context.Context, accountID uuid.UUID, from, to *budget.Date) ([]budget.Transaction, error) {
    rows, err := s.pool.Query(ctx, `
        select `+txnColumns+`
        from transactions
        where account_id = $1
          and ($2::text is null or date >= $2)
          and ($3::text is null or date <= $3)
        order by date, id
    `, accountID, dateArg(from), dateArg(to))
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    return scanTransactions(rows)
}

func (s *Store) TransactionsByBudget(ctx context.Context, budgetID uuid.UUID, from, to *budget.Date) ([]budget.Transaction, error) {
    rows, err := s.pool.Query(ctx, `
        select `+prefixedTxnColumns("t")+`
        from transactions t
        join accounts a on a.id = t.account_id
        where a.budget_id = $1
          and ($2::text is null or t.date >= $2)
          and ($3::text is null or t.date <= $3)
        order by t.date, t.id
    `, budgetID, dateArg(from), dateArg(to))
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    return scanTransactions(rows)
}

func prefixedTxnColumns(alias string) string {
    return alias + ".id, " + alias + ".account_id, " + alias + ".category_id, " + alias + ".payee_id, " +
        alias + ".date, " + alias + ".amount_minor, " + alias + ".memo, " + alias + ".cleared, " +
        alias + ".transfer_account_id, " + alias + ".metadata"
}

func dateArg(d *budget.Date) *string {
    if d == nil {
        return nil
    }
    s := string(*d)
    return &s
}

func scanTransaction(row pgx.Row) (budget.Transaction, error) {
    var t budget.Transaction
    var date string
    var metadata []byte
    if err := row.Scan(&t.ID, &t.AccountID, &t.CategoryID, &t.PayeeID, &date, &t.Amount, &t.Memo, &t.Cleared, &t.TransferAccountID, &metadata); err != nil {
        return budget.Transaction{}, err
    }
    t.Date = budget.Date(date)
    if len(metadata) > 0 {
        if err := json.Unmarshal(metadata, &t.Metadata); err != nil {
            return budget.Transaction{}, fmt.Errorf("decode transaction metadata: %w", err)
        }
    }
    return t, nil
}

func scanTransactions(rows pgx.Rows) ([]budget.Transaction, error) {
    out := make([]budget.Transaction, 0)
    for rows.Next() {
        t, err := scanTransaction(rows)
        if err != nil {
            return nil, err
        }
        out = append(out, t)
    }
    return out, rows.Err()
}

func (s *Store) SaveTransaction(ctx context.Context, t budget.Transaction) (budget.Transaction, error) {
    metadata, err := t.Metadata.MarshalStableJSON()
    if err != nil {
        return budget.Transaction{}, fmt.Errorf("encode transaction metadata: %w", err)
    }
    _, err = s.pool.Exec(ctx, `
        insert into transactions (`+txnColumns+`)
        values ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
        on conflict (id) do update
        set account_id = excluded.account_id,
            category_id = excluded.category_id,
            payee_id = excluded.payee_id,
            date = excluded.date,
            amount_minor = excluded.amount_minor,
            memo = excluded.memo,
            cleared = excluded.cleared,
            transfer_account_id = excluded.transfer_account_id,
            metadata = excluded.metadata
    `, t.ID, t.AccountID, t.CategoryID, t.PayeeID, string(t.Date), t.Amount, t.Memo, t.Cleared, t.TransferAccountID, metadata)
    if err != nil {
        return budget.Transaction{}, err
    }
    return t, nil
}

func (s *Store) DeleteTransaction(ctx context.Context, id uuid.UUID) error {
    ct, err := s.pool.Exec(ctx, `delete from transactions where id = $1`, id)
    if err != nil {
        return err
    }
    if ct.RowsAffected() == 0 {
        return errs.ErrNotFound
    }
    return nil
}

// --- Assignments ---

func (s *Store) GetAssignment(ctx context.Context, categoryID uuid.UUID, m budget.Month) (budget.Assignment, error) {
    var a budget.Assignment
    var month string
    err := s.pool.QueryRow(ctx, `
        select category_id, month, amount_minor
        from assignments
        where category_id = $1 and month = $2
    `, categoryID, string(m)).Scan(&a.CategoryID, &month, &a.Amount)
    if errors.Is(err, pgx.ErrNoRows) {
        return budget.Assignment{}, errs.ErrNotFound
    }
    if err != nil {
        return budget.Assignment{}, err
    }
    a.Month = budget.Month(month)
    return a, nil
}

func (s *Store) AssignmentsByBudgetMonth(ctx context.Context, budgetID uuid.UUID, m budget.Month) ([]budget.Assignment, error) {
    rows, err := s.pool.Query(ctx, `
        select s.category_id, s.month, s.amount_minor
        from assignments s
        join categories c on c.id = s.category_id
        join category_groups g on g.id = c.group_id
        where g.budget_id = $1 and s.month = $2
        order by s.category_id
    `, budgetID, string(m))
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    return scanAssignments(rows)
}

func (s *Store) AssignmentsByBudget(ctx context.Context, budgetID uuid.UUID) ([]budget.Assignment, error) {
    rows, err := s.pool.Query(ctx, `
        select s.category_id, s.month, s.amount_minor
        from assignments s
        join categories c on c.id = s.category_id
        join category_groups g on g.id = c.group_id
        where g.budget_id = $1
        order by s.month, s.category_id
    `, budgetID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    return scanAssignments(rows)
}

func scanAssignments(rows pgx.Rows) ([]budget.Assignment, error) {
    out := make([]budget.Assignment, 0)
    for rows.Next() {
        var a budget.Assignment
        var month string
        if err := rows.Scan(&a.CategoryID, &month, &a.Amount); err != nil {
            return nil, err
        }
        a.Month = budget.Month(month)
        out = append(out, a)
    }
    return out, rows.Err()
}

func (s *Store) SaveAssignment(ctx context.Context, a budget.Assignment) (budget.Assignment, error) {
    _, err := s.pool.Exec(ctx, `
        insert into assignments (category_id, month, amount_minor)
        values ($1,$2,$3)
        on conflict (category_id, month) do update set amount_minor = excluded.amount_minor
    `, a.CategoryID, string(a.Month), a.Amount)
    if err != nil {
        return budget.Assignment{}, err
    }
    return a, nil
}

func (s *Store) DeleteAssignment(ctx context.Context, categoryID uuid.UUID, m budget.Month) error {
    ct, err := s.pool.Exec(ctx, `
        delete from assignments where category_id = $1 and month = $2
    `, categoryID, string(m))
    if err != nil {
        return err
    }
    if ct.RowsAffected() == 0 {
        return errs.ErrNotFound
    }
    return nil
}

// --- Month summaries ---

func (s *Store) GetMonthSummary(ctx context.Context, budgetID uuid.UUID, m budget.Month) (budget.MonthSummary, error) {
    var sum budget.MonthSummary
    var month string
    err := s.pool.QueryRow(ctx, `
        select budget_id, month, closing_rta_minor
        from month_summaries
        where budget_id = $1 and month = $2
    `, budgetID, string(m)).Scan(&sum.BudgetID, &month, &sum.ClosingRTA)
    if errors.Is(err, pgx.ErrNoRows) {
        return budget.MonthSummary{}, errs.ErrNotFound
    }
    if err != nil {
        return budget.MonthSummary{}, err
    }
    sum.Month = budget.Month(month)
    sum.CategoryBalances = make(map[uuid.UUID]int64)
    rows, err := s.pool.Query(ctx, `
        select category_id, balance_minor
        from month_summary_balances
        where budget_id = $1 and month = $2
    `, budgetID, string(m))
    if err != nil {
        return budget.MonthSummary{}, err
    }
    defer rows.Close()
    for rows.Next() {
        var id uuid.UUID
        var bal int64
        if err := rows.Scan(&id, &bal); err != nil {
            return budget.MonthSummary{}, err
        }
        sum.CategoryBalances[id] = bal
    }
    return sum, rows.Err()
}

func (s *Store) MonthSummariesByBudget(ctx context.Context, budgetID uuid.UUID) ([]budget.MonthSummary, error) {
    rows, err := s.pool.Query(ctx, `
        select budget_id, month, closing_rta_minor
        from month_summaries
        where budget_id = $1
        order by month
    `, budgetID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := make([]budget.MonthSummary, 0)
    for rows.Next() {
        var sum budget.MonthSummary
        var month string
        if err := rows.Scan(&sum.BudgetID, &month, &sum.ClosingRTA); err != nil {
            return nil, err
        }
        sum.Month = budget.Month(month)
        sum.CategoryBalances = make(map[uuid.UUID]int64)
        out = append(out, sum)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    if len(out) == 0 {
        return out, nil
    }
    balRows, err := s.pool.Query(ctx, `
        select month, category_id, balance_minor
        from month_summary_balances
        where budget_id = $1
    `, budgetID)
    if err != nil {
        return nil, err
    }
    defer balRows.Close()
    idx := make(map[budget.Month]*budget.MonthSummary, len(out))
    for i := range out {
        idx[out[i].Month] = &out[i]
    }
    for balRows.Next() {
        var month string
        var id uuid.UUID
        var bal int64
        if err := balRows.Scan(&month, &id, &bal); err != nil {
            return nil, err
        }
        if sum := idx[budget.Month(month)]; sum != nil {
            sum.CategoryBalances[id] = bal
        }
    }
    return out, balRows.Err()
}

// SaveMonthSummary replaces the summary row and its balance rows in one
// transaction so a cached month is never half-written.
func (s *Store) SaveMonthSummary(ctx context.Context, sum budget.MonthSummary) (budget.MonthSummary, error) {
    tx, err := s.pool.Begin(ctx)
    if err != nil {
        return budget.MonthSummary{}, err
    }
    defer func() { _ = tx.Rollback(ctx) }()
    if _, err := tx.Exec(ctx, `
        insert into month_summaries (budget_id, month, closing_rta_minor)
        values ($1,$2,$3)
        on conflict (budget_id, month) do update set closing_rta_minor = excluded.closing_rta_minor
    `, sum.BudgetID, string(sum.Month), sum.ClosingRTA); err != nil {
        return budget.MonthSummary{}, err
    }
    if _, err := tx.Exec(ctx, `
        delete from month_summary_balances where budget_id = $1 and month = $2
    `, sum.BudgetID, string(sum.Month)); err != nil {
        return budget.MonthSummary{}, err
    }
    for id, bal := range sum.CategoryBalances {
        if _, err := tx.Exec(ctx, `
            insert into month_summary_balances (budget_id, month, category_id, balance_minor)
            values ($1,$2,$3,$4)
        `, sum.BudgetID, string(sum.Month), id, bal); err != nil {
            return budget.MonthSummary{}, err
        }
    }
    if err := tx.Commit(ctx); err != nil {
        return budget.MonthSummary{}, err
    }
    return sum, nil
}

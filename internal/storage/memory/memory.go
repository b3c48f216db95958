package memory

// Package memory provides a simple in-memory implementation of the ledger
// store used for development and tests. It keeps code paths easy to follow
// while allowing a real DB to be plugged in later.
import (
    "context"
    "sort"
    "sync"

    "github.com/google/uuid"
    "github.com/thgaskell/budget-sub000/internal/budget"
    "github.com/thgaskell/budget-sub000/internal/errs"
)

// txnKey tracks ordering for transactions per account: sorted asc by (Date, ID).
type txnKey struct {
    Date budget.Date
    ID   uuid.UUID
}

// assignmentKey uniquely identifies an assignment row.
type assignmentKey struct {
    CategoryID uuid.UUID
    Month      budget.Month
}

// summaryKey uniquely identifies a cached month summary.
type summaryKey struct {
    BudgetID uuid.UUID
    Month    budget.Month
}

// Store is an in-memory implementation of the ledger store contract.
// It is guarded by an RWMutex for concurrent reads/writes.
type Store struct {
    mu           sync.RWMutex
    budgets      map[uuid.UUID]budget.Budget
    accounts     map[uuid.UUID]budget.Account
    groups       map[uuid.UUID]budget.CategoryGroup
    categories   map[uuid.UUID]budget.Category
    payees       map[uuid.UUID]budget.Payee
    transactions map[uuid.UUID]budget.Transaction
    // Per-account sorted index of transactions for ordered range scans
    txnKeysByAccount map[uuid.UUID][]txnKey
    assignments      map[assignmentKey]budget.Assignment
    summaries        map[summaryKey]budget.MonthSummary
}

// New constructs an empty in-memory store.
func New() *Store {
    return &Store{
        budgets:          make(map[uuid.UUID]budget.Budget),
        accounts:         make(map[uuid.UUID]budget.Account),
        groups:           make(map[uuid.UUID]budget.CategoryGroup),
        categories:       make(map[uuid.UUID]budget.Category),
        payees:           make(map[uuid.UUID]budget.Payee),
        transactions:     make(map[uuid.UUID]budget.Transaction),
        txnKeysByAccount: make(map[uuid.UUID][]txnKey),
        assignments:      make(map[assignmentKey]budget.Assignment),
        summaries:        make(map[summaryKey]budget.MonthSummary),
    }
}

// --- Budgets ---

func (s *Store) GetBudget(_ context.Context, id uuid.UUID) (budget.Budget, error) {
    s.mu.RLock()
    defer s.mu.RUnlock()
    b, ok := s.budgets[id]
    if !ok {
        return budget.Budget{}, errs.ErrNotFound
    }
    return b, nil
}

func (s *Store) ListBudgets(_ context.Context) ([]budget.Budget, error) {
    s.mu.RLock()
    defer s.mu.RUnlock()
    out := make([]budget.Budget, 0, len(s.budgets))
    for _, b := range s.budgets {
        out = append(out, b)
    }
    sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
    return out, nil
}

func (s *Store) SaveBudget(_ context.Context, b budget.Budget) (budget.Budget, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    s.budgets[b.ID] = b
    return b, nil
}

// --- Accounts ---

func (s *Store) GetAccount(_ context.Context, id uuid.UUID) (budget.Account, error) {
    s.mu.RLock()
    defer s.mu.RUnlock()
    a, ok := s.accounts[id]
    if !ok {
        return budget.Account{}, errs.ErrNotFound
    }
    return a, nil
}

func (s *Store) AccountsByBudget(_ context.Context, budgetID uuid.UUID) ([]budget.Account, error) {
    s.mu.RLock()
    defer s.mu.RUnlock()
    out := make([]budget.Account, 0)
    for _, a := range s.accounts {
        if a.BudgetID == budgetID {
            out = append(out, a)
        }
    }
    sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
    return out, nil
}

func (s *Store) SaveAccount(_ context.Context, a budget.Account) (budget.Account, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    s.accounts[a.ID] = a
    return a, nil
}

func (s *Store) DeleteAccount(_ context.Context, id uuid.UUID) error {
    s.mu.Lock()
    defer s.mu.Unlock()
    if _, ok := s.accounts[id]; !ok {
        return errs.ErrNotFound
    }
    delete(s.accounts, id)
    delete(s.txnKeysByAccount, id)
    return nil
}

// --- Category groups ---

func (s *Store) GetCategoryGroup(_ context.Context, id uuid.UUID) (budget.CategoryGroup, error) {
    s.mu.RLock()
    defer s.mu.RUnlock()
    g, ok := s.groups[id]
    if !ok {
        return budget.CategoryGroup{}, errs.ErrNotFound
    }
    return g, nil
}

func (s *Store) CategoryGroupsByBudget(_ context.Context, budgetID uuid.UUID) ([]budget.CategoryGroup, error) {
    s.mu.RLock()
    defer s.mu.RUnlock()
    out := make([]budget.CategoryGroup, 0)
    for _, g := range s.groups {
        if g.BudgetID == budgetID {
            out = append(out, g)
        }
    }
    sort.Slice(out, func(i, j int) bool { return out[i].SortOrder < out[j].SortOrder })
    return out, nil
}

func (s *Store) SaveCategoryGroup(_ context.Context, g budget.CategoryGroup) (budget.CategoryGroup, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    s.groups[g.ID] = g
    return g, nil
}

func (s *Store) DeleteCategoryGroup(_ context.Context, id uuid.UUID) error {
    s.mu.Lock()
    defer s.mu.Unlock()
    if _, ok := s.groups[id]; !ok {
        return errs.ErrNotFound
    }
    delete(s.groups, id)
    return nil
}

// --- Categories ---

func (s *Store) GetCategory(_ context.Context, id uuid.UUID) (budget.Category, error) {
    s.mu.RLock()
    defer s.mu.RUnlock()
    c, ok := s.categories[id]
    if !ok {
        return budget.Category{}, errs.ErrNotFound
    }
    return c, nil
}

func (s *Store) CategoriesByGroup(_ context.Context, groupID uuid.UUID) ([]budget.Category, error) {
    s.mu.RLock()
    defer s.mu.RUnlock()
    out := make([]budget.Category, 0)
    for _, c := range s.categories {
        if c.GroupID == groupID {
            out = append(out, c)
        }
    }
    sort.Slice(out, func(i, j int) bool { return out[i].SortOrder < out[j].SortOrder })
    return out, nil
}

// CategoriesByBudget joins categories through their groups, ordered by
// (group sort order, category sort order).
func (s *Store) CategoriesByBudget(_ context.Context, budgetID uuid.UUID) ([]budget.Category, error) {
    s.mu.RLock()
    defer s.mu.RUnlock()
    out := make([]budget.Category, 0)
    for _, c := range s.categories {
        g, ok := s.groups[c.GroupID]
        if ok && g.BudgetID == budgetID {
            out = append(out, c)
        }
    }
    sort.Slice(out, func(i, j int) bool {
        gi, gj := s.groups[out[i].GroupID], s.groups[out[j].GroupID]
        if gi.SortOrder != gj.SortOrder {
            return gi.SortOrder < gj.SortOrder
        }
        return out[i].SortOrder < out[j].SortOrder
    })
    return out, nil
}

func (s *Store) SaveCategory(_ context.Context, c budget.Category) (budget.Category, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    s.categories[c.ID] = c
    return c, nil
}

func (s *Store) DeleteCategory(_ context.Context, id uuid.UUID) error {
    s.mu.Lock()
    defer s.mu.Unlock()
    if _, ok := s.categories[id]; !ok {
        return errs.ErrNotFound
    }
    delete(s.categories, id)
    return nil
}

// --- Payees ---

func (s *Store) GetPayee(_ context.Context, id uuid.UUID) (budget.Payee, error) {
    s.mu.RLock()
    defer s.mu.RUnlock()
    p, ok := s.payees[id]
    if !ok {
        return budget.Payee{}, errs.ErrNotFound
    }
    return p, nil
}

func (s *Store) PayeesByBudget(_ context.Context, budgetID uuid.UUID) ([]budget.Payee, error) {
    s.mu.RLock()
    defer s.mu.RUnlock()
    out := make([]budget.Payee, 0)
    for _, p := range s.payees {
        if p.BudgetID == budgetID {
            out = append(out, p)
        }
    }
    sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
    return out, nil
}

func (s *Store) SavePayee(_ context.Context, p budget.Payee) (budget.Payee, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    s.payees[p.ID] = p
    return p, nil
}

func (s *Store) DeletePayee(_ context.Context, id uuid.UUID) error {
    s.mu.Lock()
    defer s.mu.Unlock()
    if _, ok := s.payees[id]; !ok {
        return errs.ErrNotFound
    }
    delete(s.payees, id)
    return nil
}

// --- Transactions ---

func (s *Store) GetTransaction(_ context.Context, id uuid.UUID) (budget.Transaction, error) {
    s.mu.RLock()
    defer s.mu.RUnlock()
    t, ok := s.transactions[id]
    if !ok {
        return budget.Transaction{}, errs.ErrNotFound
    }
    t.Metadata = t.Metadata.Clone()
    return t, nil
}

// TransactionsByAccount returns the account's transactions ascending by
// date, optionally restricted to the inclusive [from, to] range.
func (s *Store) TransactionsByAccount(_ context.Context, accountID uuid.UUID, from, to *budget.Date) ([]budget.Transaction, error) {
    s.mu.RLock()
    defer s.mu.RUnlock()
    keys := s.rangeByDateLocked(accountID, from, to)
    out := make([]budget.Transaction, 0, len(keys))
    for _, k := range keys {
        if t, ok := s.transactions[k.ID]; ok {
            out = append(out, t)
        }
    }
    return out, nil
}

// TransactionsByBudget joins transactions across all accounts of the
// budget, ascending by date.
func (s *Store) TransactionsByBudget(_ context.Context, budgetID uuid.UUID, from, to *budget.Date) ([]budget.Transaction, error) {
    s.mu.RLock()
    defer s.mu.RUnlock()
    out := make([]budget.Transaction, 0)
    for id, a := range s.accounts {
        if a.BudgetID != budgetID {
            continue
        }
        for _, k := range s.rangeByDateLocked(id, from, to) {
            if t, ok := s.transactions[k.ID]; ok {
                out = append(out, t)
            }
        }
    }
    sort.Slice(out, func(i, j int) bool {
        if out[i].Date != out[j].Date {
            return out[i].Date < out[j].Date
        }
        return out[i].ID.String() < out[j].ID.String()
    })
    return out, nil
}

// SaveTransaction upserts a transaction and maintains the per-account index.
func (s *Store) SaveTransaction(_ context.Context, t budget.Transaction) (budget.Transaction, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    if old, ok := s.transactions[t.ID]; ok {
        s.removeTxnIndexLocked(old.AccountID, txnKey{Date: old.Date, ID: old.ID})
    }
    // Copy the metadata map so later caller mutations do not leak in.
    t.Metadata = t.Metadata.Clone()
    s.transactions[t.ID] = t
    s.insertTxnIndexLocked(t.AccountID, txnKey{Date: t.Date, ID: t.ID})
    return t, nil
}

func (s *Store) DeleteTransaction(_ context.Context, id uuid.UUID) error {
    s.mu.Lock()
    defer s.mu.Unlock()
    t, ok := s.transactions[id]
    if !ok {
        return errs.ErrNotFound
    }
    delete(s.transactions, id)
    s.removeTxnIndexLocked(t.AccountID, txnKey{Date: t.Date, ID: t.ID})
    return nil
}

// --- Assignments ---

func (s *Store) GetAssignment(_ context.Context, categoryID uuid.UUID, m budget.Month) (budget.Assignment, error) {
    s.mu.RLock()
    defer s.mu.RUnlock()
    a, ok := s.assignments[assignmentKey{CategoryID: categoryID, Month: m}]
    if !ok {
        return budget.Assignment{}, errs.ErrNotFound
    }
    return a, nil
}

// AssignmentsByBudgetMonth returns all assignment rows of the budget for
// one month, joined through category -> group.
func (s *Store) AssignmentsByBudgetMonth(_ context.Context, budgetID uuid.UUID, m budget.Month) ([]budget.Assignment, error) {
    s.mu.RLock()
    defer s.mu.RUnlock()
    out := make([]budget.Assignment, 0)
    for k, a := range s.assignments {
        if k.Month != m {
            continue
        }
        if s.categoryInBudgetLocked(k.CategoryID, budgetID) {
            out = append(out, a)
        }
    }
    sort.Slice(out, func(i, j int) bool { return out[i].CategoryID.String() < out[j].CategoryID.String() })
    return out, nil
}

// AssignmentsByBudget returns every assignment row of the budget across
// all months, ascending by month.
func (s *Store) AssignmentsByBudget(_ context.Context, budgetID uuid.UUID) ([]budget.Assignment, error) {
    s.mu.RLock()
    defer s.mu.RUnlock()
    out := make([]budget.Assignment, 0)
    for k, a := range s.assignments {
        if s.categoryInBudgetLocked(k.CategoryID, budgetID) {
            out = append(out, a)
        }
    }
    sort.Slice(out, func(i, j int) bool {
        if out[i].Month != out[j].Month {
            return out[i].Month < out[j].Month
        }
        return out[i].CategoryID.String() < out[j].CategoryID.String()
    })
    return out, nil
}

func (s *Store) SaveAssignment(_ context.Context, a budget.Assignment) (budget.Assignment, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    s.assignments[assignmentKey{CategoryID: a.CategoryID, Month: a.Month}] = a
    return a, nil
}

func (s *Store) DeleteAssignment(_ context.Context, categoryID uuid.UUID, m budget.Month) error {
    s.mu.Lock()
    defer s.mu.Unlock()
    k := assignmentKey{CategoryID: categoryID, Month: m}
    if _, ok := s.assignments[k]; !ok {
        return errs.ErrNotFound
    }
    delete(s.assignments, k)
    return nil
}

// --- Month summaries ---

func (s *Store) GetMonthSummary(_ context.Context, budgetID uuid.UUID, m budget.Month) (budget.MonthSummary, error) {
    s.mu.RLock()
    defer s.mu.RUnlock()
    sum, ok := s.summaries[summaryKey{BudgetID: budgetID, Month: m}]
    if !ok {
        return budget.MonthSummary{}, errs.ErrNotFound
    }
    return sum.Clone(), nil
}

// MonthSummariesByBudget returns all cached summaries ascending by month.
func (s *Store) MonthSummariesByBudget(_ context.Context, budgetID uuid.UUID) ([]budget.MonthSummary, error) {
    s.mu.RLock()
    defer s.mu.RUnlock()
    out := make([]budget.MonthSummary, 0)
    for k, sum := range s.summaries {
        if k.BudgetID == budgetID {
            out = append(out, sum.Clone())
        }
    }
    sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
    return out, nil
}

func (s *Store) SaveMonthSummary(_ context.Context, sum budget.MonthSummary) (budget.MonthSummary, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    s.summaries[summaryKey{BudgetID: sum.BudgetID, Month: sum.Month}] = sum.Clone()
    return sum, nil
}

// --- internals ---

// categoryInBudgetLocked resolves category -> group -> budget.
// Caller must hold s.mu (read or write).
func (s *Store) categoryInBudgetLocked(categoryID, budgetID uuid.UUID) bool {
    c, ok := s.categories[categoryID]
    if !ok {
        return false
    }
    g, ok := s.groups[c.GroupID]
    return ok && g.BudgetID == budgetID
}

// insertTxnIndexLocked inserts k into the per-account sorted index, keeping
// order asc by (Date, ID). Caller must hold s.mu (write lock).
func (s *Store) insertTxnIndexLocked(accountID uuid.UUID, k txnKey) {
    keys := s.txnKeysByAccount[accountID]
    i := sort.Search(len(keys), func(i int) bool {
        if keys[i].Date != k.Date {
            return keys[i].Date > k.Date
        }
        return keys[i].ID.String() > k.ID.String()
    })
    if i == len(keys) {
        s.txnKeysByAccount[accountID] = append(keys, k)
        return
    }
    keys = append(keys, txnKey{})
    copy(keys[i+1:], keys[i:])
    keys[i] = k
    s.txnKeysByAccount[accountID] = keys
}

// removeTxnIndexLocked drops k from the per-account index if present.
// Caller must hold s.mu (write lock).
func (s *Store) removeTxnIndexLocked(accountID uuid.UUID, k txnKey) {
    keys := s.txnKeysByAccount[accountID]
    for i := range keys {
        if keys[i] == k {
            s.txnKeysByAccount[accountID] = append(keys[:i], keys[i+1:]...)
            return
        }
    }
}

// rangeByDateLocked returns the index keys within [from, to] inclusive for
// an account. Dates compare lexically. Caller must hold s.mu.
func (s *Store) rangeByDateLocked(accountID uuid.UUID, from, to *budget.Date) []txnKey {
    keys := s.txnKeysByAccount[accountID]
    if len(keys) == 0 {
        return nil
    }
    start := 0
    if from != nil {
        f := *from
        start = sort.Search(len(keys), func(i int) bool { return keys[i].Date >= f })
    }
    end := len(keys)
    if to != nil {
        t := *to
        end = sort.Search(len(keys), func(i int) bool { return keys[i].Date > t })
    }
    if start > end {
        return nil
    }
    subset := make([]txnKey, end-start)
    copy(subset, keys[start:end])
    return subset
}

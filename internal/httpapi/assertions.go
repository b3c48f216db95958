package httpapi

import (
    "github.com/thgaskell/budget-sub000/internal/storage/memory"
    "github.com/thgaskell/budget-sub000/internal/storage/postgres"
)

// Compile-time assertions that both store backends satisfy the HTTP API's
// store contract.
var (
    _ Store        = (*memory.Store)(nil)
    _ Store        = (*postgres.Store)(nil)
    _ ReadyChecker = (*postgres.Store)(nil)
)

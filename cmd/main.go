package main

import (
    "context"
    "fmt"
    "net/http"
    "os"
    "os/signal"
    "strings"
    "syscall"
    "time"

    "github.com/google/uuid"
    "log/slog"

    "github.com/thgaskell/budget-sub000/internal/budget"
    "github.com/thgaskell/budget-sub000/internal/config"
    "github.com/thgaskell/budget-sub000/internal/httpapi"
    "github.com/thgaskell/budget-sub000/internal/storage/memory"
    pgstore "github.com/thgaskell/budget-sub000/internal/storage/postgres"
)

func main() {
    ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
    defer stop()

    cfg := config.Load()
    logger := buildLogger(cfg)
    slog.SetDefault(logger)

    if err := cfg.Validate(); err != nil {
        logger.Error("invalid configuration", "err", err)
        os.Exit(1)
    }

    var store httpapi.Store
    var closeFn func()

    if cfg.DatabaseURL != "" {
        pg, err := pgstore.Open(ctx, cfg.DatabaseURL)
        if err != nil {
            logger.Error("failed to connect to postgres", "err", err)
            os.Exit(1)
        }
        closeFn = func() { pg.Close() }
        store = pg
        logger.Info("storage backend: postgres")
    } else {
        mem := memory.New()
        if cfg.DevSeed {
            seedDev(ctx, logger, mem)
        }
        store = mem
        logger.Info("storage backend: memory")
    }

    srv := &http.Server{
        Addr:              cfg.Addr,
        Handler:           httpapi.New(store, logger).Handler(),
        ReadTimeout:       cfg.ReadTimeout,
        ReadHeaderTimeout: cfg.ReadTimeout,
        WriteTimeout:      cfg.WriteTimeout,
        IdleTimeout:       cfg.IdleTimeout,
    }

    errCh := make(chan error, 1)
    go func() {
        logger.Info("budget service listening", "addr", srv.Addr)
        if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
            errCh <- err
        }
    }()

    select {
    case <-ctx.Done():
        ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
        defer cancel()
        if err := srv.Shutdown(ctxShutdown); err != nil {
            logger.Error("server shutdown error", "err", err)
        }
    case err := <-errCh:
        logger.Error("server error", "err", err)
    }
    if closeFn != nil {
        closeFn()
    }
}

// seedDev creates a demo budget so local compose runs have data to poke at.
func seedDev(ctx context.Context, l *slog.Logger, store *memory.Store) {
    b, err := store.SaveBudget(ctx, budget.Budget{ID: uuid.New(), Name: "Demo Budget", Currency: "USD"})
    if err != nil {
        l.Error("dev seed failed", "err", err)
        return
    }
    checking, _ := store.SaveAccount(ctx, budget.Account{ID: uuid.New(), BudgetID: b.ID, Name: "Checking", Type: budget.AccountTypeChecking, OnBudget: true})
    grp, _ := store.SaveCategoryGroup(ctx, budget.CategoryGroup{ID: uuid.New(), BudgetID: b.ID, Name: "Essentials"})
    groceries, _ := store.SaveCategory(ctx, budget.Category{ID: uuid.New(), GroupID: grp.ID, Name: "Groceries"})
    rent, _ := store.SaveCategory(ctx, budget.Category{ID: uuid.New(), GroupID: grp.ID, Name: "Rent", SortOrder: 1})

    l.Info("DEV seed (memory)",
        "budget_id", b.ID.String(),
        "checking_account_id", checking.ID.String(),
        "groceries_category_id", groceries.ID.String(),
        "rent_category_id", rent.ID.String(),
    )
    printDevSeedBanner(b, checking, groceries, rent)
}

// printDevSeedBanner prints ids to stdout for easy copy/paste.
func printDevSeedBanner(b budget.Budget, checking budget.Account, groceries, rent budget.Category) {
    fmt.Println("==================== DEV SEED ====================")
    fmt.Printf("budget_id: %s\n", b.ID.String())
    fmt.Printf("checking_account_id: %s\n", checking.ID.String())
    fmt.Printf("groceries_category_id: %s\n", groceries.ID.String())
    fmt.Printf("rent_category_id: %s\n", rent.ID.String())
    fmt.Println("==================================================")
}

// parseLogLevel maps env values to slog.Leveler
func parseLogLevel(s string) slog.Leveler {
    switch s {
    case "DEBUG", "debug":
        return slog.LevelDebug
    case "WARN", "WARNING", "warn", "warning":
        return slog.LevelWarn
    case "ERROR", "ERR", "error", "err":
        return slog.LevelError
    default:
        return slog.LevelInfo
    }
}

func buildLogger(cfg *config.Config) *slog.Logger {
    level := parseLogLevel(cfg.LogLevel)
    if strings.ToLower(cfg.LogFormat) == "text" {
        return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
    }
    // default to JSON
    return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}

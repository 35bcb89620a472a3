package main // Entry point package

import (
    "context"
    "log"
    "net/http"
    "os/signal"
    "syscall"
    "time"

    "github.com/joho/godotenv"
    "github.com/labstack/echo/v4"

    "github.com/iliyamo/stock-hold-reservation/internal/clock"
    "github.com/iliyamo/stock-hold-reservation/internal/config"
    "github.com/iliyamo/stock-hold-reservation/internal/database"
    "github.com/iliyamo/stock-hold-reservation/internal/engine"
    "github.com/iliyamo/stock-hold-reservation/internal/handler"
    "github.com/iliyamo/stock-hold-reservation/internal/queue"
    "github.com/iliyamo/stock-hold-reservation/internal/repository"
    "github.com/iliyamo/stock-hold-reservation/internal/router"
    "github.com/iliyamo/stock-hold-reservation/internal/scheduler"
    queue_publisher "github.com/iliyamo/stock-hold-reservation/internal/service"
)

func main() {
    // .env is a development convenience; absence is not an error.
    _ = godotenv.Load()

    cfg := config.Load()

    db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
    if err != nil {
        log.Fatalf("database: %v", err)
    }
    defer db.Close()

    ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
    defer stop()

    if err := database.EnsureSchema(ctx, db); err != nil {
        log.Fatalf("schema: %v", err)
    }

    store := repository.NewStore(db)
    clk := clock.System()
    eng := engine.New(store, clk, &queue_publisher.Publisher{}, engine.WithHoldTTL(cfg.HoldTTL))

    // The sweeper shares the engine's Expire path with manual
    // cancellation, so both reclaim stock under the same row lock.
    sweeper := scheduler.NewSweeper(eng, store, clk, cfg.SweepInterval, cfg.SweepBatch)
    go sweeper.Run(ctx)

    // Local stand-in for the external fan-out layer.
    go func() {
        if err := queue.StartEventConsumer(); err != nil {
            log.Printf("event consumer stopped: %v", err)
        }
    }()

    e := echo.New()
    e.HideBanner = true
    rdb := config.NewRedisClient()
    router.Register(e, router.Deps{
        Items:        handler.NewItemHandler(store),
        Reservations: handler.NewReservationHandler(eng, store),
        Admin:        handler.NewAdminHandler(store, cfg.Env, cfg.AdminKeyHash),
        Redis:        rdb,
        JWTSecret:    cfg.JWTSecret,
    })

    addr := ":" + cfg.Port
    log.Printf("listening on %s (env=%s, hold_ttl=%s)", addr, cfg.Env, cfg.HoldTTL)

    go func() {
        if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
            log.Fatalf("server: %v", err)
        }
    }()

    <-ctx.Done()
    log.Printf("shutting down")
    shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
    defer cancel()
    if err := e.Shutdown(shutdownCtx); err != nil {
        log.Printf("shutdown: %v", err)
    }
}

package repository

import (
    "context"
    "database/sql"
    "errors"
    "os"
    "sync"
    "testing"
    "time"

    _ "github.com/go-sql-driver/mysql"

    "github.com/iliyamo/stock-hold-reservation/internal/database"
    "github.com/iliyamo/stock-hold-reservation/internal/model"
)

// testStore opens the database named by TEST_DB_DSN and resets the
// catalog to a single known item.  Tests that need a live MySQL are
// skipped when the variable is unset, so the package still runs in
// environments without one.
func testStore(t *testing.T) *Store {
    t.Helper()
    dsn := os.Getenv("TEST_DB_DSN")
    if dsn == "" {
        t.Skip("TEST_DB_DSN not set; skipping database tests")
    }
    db, err := sql.Open("mysql", dsn)
    if err != nil {
        t.Fatalf("open database: %v", err)
    }
    t.Cleanup(func() { db.Close() })

    ctx := context.Background()
    if err := database.EnsureSchema(ctx, db); err != nil {
        t.Fatalf("ensure schema: %v", err)
    }
    store := NewStore(db)
    seed := []model.Item{{Name: "Test Ticket", PriceCents: 1000, TotalQuantity: 10}}
    if err := store.ResetCatalog(ctx, seed); err != nil {
        t.Fatalf("reset catalog: %v", err)
    }
    return store
}

func seededItemID(t *testing.T, s *Store) uint64 {
    t.Helper()
    items, err := s.ListItems(context.Background())
    if err != nil || len(items) != 1 {
        t.Fatalf("expected one seeded item, got %v err=%v", items, err)
    }
    return items[0].ID
}

func TestStockGuards(t *testing.T) {
    store := testStore(t)
    ctx := context.Background()
    itemID := seededItemID(t, store)

    err := store.WithTx(ctx, func(ctx context.Context) error {
        it, err := store.ItemForUpdate(ctx, itemID)
        if err != nil {
            return err
        }
        if it.AvailableQuantity != 10 {
            t.Fatalf("expected seeded availability 10, got %d", it.AvailableQuantity)
        }

        if _, err := store.DeductStock(ctx, itemID, 4); err != nil {
            t.Fatalf("deduct 4: %v", err)
        }
        if _, err := store.DeductStock(ctx, itemID, 7); !errors.Is(err, ErrInsufficientStock) {
            t.Fatalf("expected ErrInsufficientStock, got %v", err)
        }

        if _, err := store.RestoreStock(ctx, itemID, 4); err != nil {
            t.Fatalf("restore 4: %v", err)
        }
        // Back at 10 of 10: any further restore would exceed the total.
        if _, err := store.RestoreStock(ctx, itemID, 1); !errors.Is(err, ErrStockCorrupted) {
            t.Fatalf("expected ErrStockCorrupted, got %v", err)
        }
        return nil
    })
    if err != nil {
        t.Fatalf("transaction: %v", err)
    }
}

// TestConcurrentDeductions races transactions for the last units.  The
// FOR UPDATE read serializes them, so exactly floor(total/qty) may
// deduct and the rest observe the post-deduction quantity and fail.
func TestConcurrentDeductions(t *testing.T) {
    store := testStore(t) // seeds 10 units
    ctx := context.Background()
    itemID := seededItemID(t, store)
    const (
        total   = 10
        qty     = 3
        workers = 8
    )

    var wg sync.WaitGroup
    errs := make([]error, workers)
    for i := 0; i < workers; i++ {
        wg.Add(1)
        go func(i int) {
            defer wg.Done()
            errs[i] = store.WithTx(ctx, func(ctx context.Context) error {
                it, err := store.ItemForUpdate(ctx, itemID)
                if err != nil {
                    return err
                }
                if it.AvailableQuantity < qty {
                    return ErrInsufficientStock
                }
                _, err = store.DeductStock(ctx, itemID, qty)
                return err
            })
        }(i)
    }
    wg.Wait()

    wins, losses := 0, 0
    for _, err := range errs {
        switch {
        case err == nil:
            wins++
        case errors.Is(err, ErrInsufficientStock):
            losses++
        default:
            t.Fatalf("unexpected error under contention: %v", err)
        }
    }
    if wantWins := total / qty; wins != wantWins || losses != workers-wantWins {
        t.Fatalf("expected %d winners and %d losers, got %d/%d", wantWins, workers-wantWins, wins, losses)
    }

    items, err := store.ListItems(ctx)
    if err != nil {
        t.Fatalf("list items: %v", err)
    }
    if got := items[0].AvailableQuantity; got != total%qty {
        t.Fatalf("expected remainder %d, got %d", total%qty, got)
    }
}

func TestStockGuardFailureRollsBack(t *testing.T) {
    store := testStore(t)
    ctx := context.Background()
    itemID := seededItemID(t, store)

    wantErr := errors.New("abort")
    err := store.WithTx(ctx, func(ctx context.Context) error {
        if _, err := store.DeductStock(ctx, itemID, 5); err != nil {
            return err
        }
        return wantErr
    })
    if !errors.Is(err, wantErr) {
        t.Fatalf("expected the injected error, got %v", err)
    }

    items, err := store.ListItems(ctx)
    if err != nil {
        t.Fatalf("list items: %v", err)
    }
    if items[0].AvailableQuantity != 10 {
        t.Fatalf("expected rollback to availability 10, got %d", items[0].AvailableQuantity)
    }
}

func TestReservationRoundTrip(t *testing.T) {
    store := testStore(t)
    ctx := context.Background()
    itemID := seededItemID(t, store)
    deadline := time.Now().UTC().Add(5 * time.Minute).Truncate(time.Second)

    var id uint64
    err := store.WithTx(ctx, func(ctx context.Context) error {
        r := &model.Reservation{
            ActorID:   "itest-actor",
            ItemID:    itemID,
            Quantity:  2,
            Status:    model.StatusActive,
            ExpiresAt: deadline,
        }
        if err := store.CreateReservation(ctx, r); err != nil {
            return err
        }
        if r.CreatedAt.IsZero() || r.UpdatedAt.IsZero() {
            t.Fatalf("timestamp defaults not applied: %+v", r)
        }
        id = r.ID
        return nil
    })
    if err != nil {
        t.Fatalf("create: %v", err)
    }

    err = store.WithTx(ctx, func(ctx context.Context) error {
        active, err := store.ActiveReservation(ctx, "itest-actor", itemID)
        if err != nil {
            return err
        }
        if active == nil || active.ID != id || active.Quantity != 2 {
            t.Fatalf("unexpected active reservation: %+v", active)
        }

        active.Quantity = 5
        active.Status = model.StatusCompleted
        return store.SaveReservation(ctx, active)
    })
    if err != nil {
        t.Fatalf("save: %v", err)
    }

    err = store.WithTx(ctx, func(ctx context.Context) error {
        r, err := store.ReservationForUpdate(ctx, id)
        if err != nil {
            return err
        }
        if r.Quantity != 5 || r.Status != model.StatusCompleted {
            t.Fatalf("save did not persist: %+v", r)
        }
        active, err := store.ActiveReservation(ctx, "itest-actor", itemID)
        if err != nil {
            return err
        }
        if active != nil {
            t.Fatalf("completed reservation must not show as active: %+v", active)
        }
        return nil
    })
    if err != nil {
        t.Fatalf("verify: %v", err)
    }

    details, err := store.ListReservationsByActor(ctx, "itest-actor")
    if err != nil {
        t.Fatalf("list by actor: %v", err)
    }
    if len(details) != 1 || details[0].ItemName != "Test Ticket" {
        t.Fatalf("expected joined item snapshot, got %+v", details)
    }
}

func TestDueReservationIDs(t *testing.T) {
    store := testStore(t)
    ctx := context.Background()
    itemID := seededItemID(t, store)
    now := time.Now().UTC().Truncate(time.Second)

    mk := func(actor string, expiresAt time.Time) uint64 {
        var id uint64
        err := store.WithTx(ctx, func(ctx context.Context) error {
            r := &model.Reservation{
                ActorID:   actor,
                ItemID:    itemID,
                Quantity:  1,
                Status:    model.StatusActive,
                ExpiresAt: expiresAt,
            }
            if err := store.CreateReservation(ctx, r); err != nil {
                return err
            }
            id = r.ID
            return nil
        })
        if err != nil {
            t.Fatalf("create for %s: %v", actor, err)
        }
        return id
    }

    due := mk("due-actor", now.Add(-time.Minute))
    mk("live-actor", now.Add(time.Hour))

    ids, err := store.DueReservationIDs(ctx, now, 100)
    if err != nil {
        t.Fatalf("list due: %v", err)
    }
    if len(ids) != 1 || ids[0] != due {
        t.Fatalf("expected only the overdue reservation %d, got %v", due, ids)
    }

    // The bulk refresh pushes the whole actor window forward and takes
    // the reservation out of the due set.
    err = store.WithTx(ctx, func(ctx context.Context) error {
        return store.RefreshActorDeadlines(ctx, "due-actor", now.Add(time.Hour))
    })
    if err != nil {
        t.Fatalf("refresh deadlines: %v", err)
    }
    ids, err = store.DueReservationIDs(ctx, now, 100)
    if err != nil {
        t.Fatalf("list due after refresh: %v", err)
    }
    if len(ids) != 0 {
        t.Fatalf("expected no due reservations after refresh, got %v", ids)
    }
}

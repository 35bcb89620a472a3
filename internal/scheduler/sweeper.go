// Package scheduler runs the periodic expiration sweep.  It discovers
// ACTIVE reservations whose deadline has passed and drives each one
// through the engine's Expire path; it carries no business rules of
// its own.  Because Expire re-validates eligibility under the row
// lock, the sweep is safe to run on several instances at once and
// rediscovers anything missed across restarts.
package scheduler

import (
    "context"
    "log"
    "time"

    "github.com/iliyamo/stock-hold-reservation/internal/clock"
)

// Lifecycle is the slice of the engine the sweeper needs.
type Lifecycle interface {
    Expire(ctx context.Context, id uint64) (bool, error)
}

// DueLister yields candidate reservation ids; *repository.Store
// satisfies it.  The listing read takes no locks.
type DueLister interface {
    DueReservationIDs(ctx context.Context, now time.Time, limit int) ([]uint64, error)
}

// Sweeper polls for due reservations on a fixed interval.
type Sweeper struct {
    engine   Lifecycle
    store    DueLister
    clock    clock.Clock
    interval time.Duration
    batch    int
}

// NewSweeper constructs a Sweeper.  interval and batch fall back to
// sane defaults when non-positive.
func NewSweeper(engine Lifecycle, store DueLister, clk clock.Clock, interval time.Duration, batch int) *Sweeper {
    if interval <= 0 {
        interval = 15 * time.Second
    }
    if batch <= 0 {
        batch = 100
    }
    return &Sweeper{engine: engine, store: store, clock: clk, interval: interval, batch: batch}
}

// Run blocks until ctx is cancelled, sweeping once per interval.  A
// failed cycle only delays reclamation; it never corrupts state, so
// errors are logged and the ticker keeps going.
func (s *Sweeper) Run(ctx context.Context) {
    log.Printf("sweeper: started interval=%s batch=%d", s.interval, s.batch)
    ticker := time.NewTicker(s.interval)
    defer ticker.Stop()

    for {
        select {
        case <-ticker.C:
            if _, err := s.SweepOnce(ctx); err != nil {
                log.Printf("sweeper: sweep failed: %v", err)
            }
        case <-ctx.Done():
            log.Printf("sweeper: stopped")
            return
        }
    }
}

// SweepOnce expires every currently due reservation, up to the batch
// size, and returns how many actually transitioned.  Candidates whose
// deadline moved forward between the listing read and the row lock
// count as no-ops, not errors.
func (s *Sweeper) SweepOnce(ctx context.Context) (int, error) {
    ids, err := s.store.DueReservationIDs(ctx, s.clock.Now(), s.batch)
    if err != nil {
        return 0, err
    }
    expired := 0
    for _, id := range ids {
        ok, err := s.engine.Expire(ctx, id)
        if err != nil {
            // A corrupted item halts reclamation for that reservation
            // only; the rest of the batch still gets swept.
            log.Printf("sweeper: expire reservation %d failed: %v", id, err)
            continue
        }
        if ok {
            expired++
        }
    }
    if expired > 0 {
        log.Printf("sweeper: expired %d reservation(s)", expired)
    }
    return expired, nil
}

// Package engine implements the reservation lifecycle: create-or-extend,
// complete, cancel and expire.  Every operation runs as one database
// transaction through Store.WithTx, takes the row locks it needs, and
// emits its facts only after the transaction has committed.  The engine
// is the only component that mutates stock or reservation state.
package engine

import (
    "context"
    "log"
    "time"

    "github.com/iliyamo/stock-hold-reservation/internal/clock"
    "github.com/iliyamo/stock-hold-reservation/internal/model"
    "github.com/iliyamo/stock-hold-reservation/internal/queue"
    "github.com/iliyamo/stock-hold-reservation/internal/repository"
)

// Store is the persistence surface the engine drives.  Methods whose
// name ends in ForUpdate, and the two stock mutators, must only be
// called inside WithTx; *repository.Store satisfies this interface.
type Store interface {
    WithTx(ctx context.Context, fn func(ctx context.Context) error) error

    ItemForUpdate(ctx context.Context, itemID uint64) (*model.Item, error)
    DeductStock(ctx context.Context, itemID uint64, qty int) (*model.Item, error)
    RestoreStock(ctx context.Context, itemID uint64, qty int) (*model.Item, error)

    ActiveReservation(ctx context.Context, actorID string, itemID uint64) (*model.Reservation, error)
    ReservationForUpdate(ctx context.Context, id uint64) (*model.Reservation, error)
    CreateReservation(ctx context.Context, r *model.Reservation) error
    SaveReservation(ctx context.Context, r *model.Reservation) error
    RefreshActorDeadlines(ctx context.Context, actorID string, deadline time.Time) error
}

// Notifier receives one fact per committed transition.  Delivery is
// best effort; failures are logged and never fail the operation.
type Notifier interface {
    Publish(ctx context.Context, event queue.Event) error
}

// Engine orchestrates the reservation state machine over a Store.
type Engine struct {
    store    Store
    clock    clock.Clock
    notifier Notifier // may be nil
    holdTTL  time.Duration
}

// DefaultHoldTTL is how long an actor's holds live without further
// activity.  Every new or extended hold resets the window for all of
// the actor's active reservations.
const DefaultHoldTTL = 5 * time.Minute

// New constructs an Engine.  A nil notifier disables fact emission,
// which the tests and the admin tooling use.
func New(store Store, clk clock.Clock, notifier Notifier, opts ...Option) *Engine {
    e := &Engine{
        store:    store,
        clock:    clk,
        notifier: notifier,
        holdTTL:  DefaultHoldTTL,
    }
    for _, opt := range opts {
        opt(e)
    }
    return e
}

// Option customises an Engine at construction time.
type Option func(*Engine)

// WithHoldTTL overrides the default hold window.
func WithHoldTTL(d time.Duration) Option {
    return func(e *Engine) {
        if d > 0 {
            e.holdTTL = d
        }
    }
}

// CreateOrExtend places a hold of qty units on the item for the actor.
// When the actor already has an ACTIVE reservation for the item the
// quantities merge into that row; a second active row is never
// created.  Either way the deadline of every ACTIVE reservation the
// actor owns moves to now+TTL, so all of an actor's holds share one
// continuously refreshed expiration window.
//
// The item row is locked before availability is read, so two racing
// requests for the last units are totally ordered: the loser observes
// the post-deduction quantity and fails with ErrInsufficientStock
// without mutating anything.
func (e *Engine) CreateOrExtend(ctx context.Context, actorID string, itemID uint64, qty int) (*model.Reservation, error) {
    if qty <= 0 {
        return nil, repository.ErrInvalidQuantity
    }

    now := e.clock.Now()
    deadline := now.Add(e.holdTTL)
    var (
        res  *model.Reservation
        item *model.Item
    )

    err := e.store.WithTx(ctx, func(ctx context.Context) error {
        it, err := e.store.ItemForUpdate(ctx, itemID)
        if err != nil {
            return err
        }
        if it.AvailableQuantity < qty {
            return repository.ErrInsufficientStock
        }
        if item, err = e.store.DeductStock(ctx, itemID, qty); err != nil {
            return err
        }

        existing, err := e.store.ActiveReservation(ctx, actorID, itemID)
        if err != nil {
            return err
        }
        if existing != nil {
            existing.Quantity += qty
            existing.ExpiresAt = deadline
            if err := e.store.SaveReservation(ctx, existing); err != nil {
                return err
            }
            res = existing
        } else {
            r := &model.Reservation{
                ActorID:   actorID,
                ItemID:    itemID,
                Quantity:  qty,
                Status:    model.StatusActive,
                ExpiresAt: deadline,
            }
            if err := e.store.CreateReservation(ctx, r); err != nil {
                return err
            }
            res = r
        }

        // Global hold window: the bulk refresh runs in the same
        // transaction as the triggering hold, covering this
        // reservation and every other ACTIVE one the actor owns.
        return e.store.RefreshActorDeadlines(ctx, actorID, deadline)
    })
    if err != nil {
        return nil, err
    }

    e.emitStock(ctx, item, now)
    e.emit(ctx, queue.KindReservationCreated, res, now)
    return res, nil
}

// Complete marks an ACTIVE reservation as paid.  Stock was already
// deducted at hold time, so completion touches no quantities; it only
// pins the held units to the actor permanently.  Completing a terminal
// reservation fails with ErrAlreadyCompleted or ErrAlreadyExpired so
// the caller can word the rejection.  A deadline that has passed does
// not block completion: whoever takes the row lock first, this call or
// the sweeper, decides the outcome.
func (e *Engine) Complete(ctx context.Context, id uint64) (*model.Reservation, error) {
    now := e.clock.Now()
    var res *model.Reservation

    err := e.store.WithTx(ctx, func(ctx context.Context) error {
        r, err := e.store.ReservationForUpdate(ctx, id)
        if err != nil {
            return err
        }
        switch r.Status {
        case model.StatusCompleted:
            return repository.ErrAlreadyCompleted
        case model.StatusExpired:
            return repository.ErrAlreadyExpired
        }
        r.Status = model.StatusCompleted
        if err := e.store.SaveReservation(ctx, r); err != nil {
            return err
        }
        res = r
        return nil
    })
    if err != nil {
        return nil, err
    }

    e.emit(ctx, queue.KindReservationDone, res, now)
    return res, nil
}

// Cancel releases an ACTIVE reservation's stock and marks it EXPIRED.
// Cancelling a reservation that is already terminal returns the row
// unchanged with no error and, critically, no second stock restore: a
// double-clicked release must not break the conservation invariant.
func (e *Engine) Cancel(ctx context.Context, id uint64) (*model.Reservation, error) {
    now := e.clock.Now()
    var (
        res         *model.Reservation
        item        *model.Item
        transitions bool
    )

    err := e.store.WithTx(ctx, func(ctx context.Context) error {
        r, err := e.store.ReservationForUpdate(ctx, id)
        if err != nil {
            return err
        }
        if r.Terminal() {
            res = r
            return nil
        }
        if item, err = e.store.RestoreStock(ctx, r.ItemID, r.Quantity); err != nil {
            return err
        }
        r.Status = model.StatusExpired
        r.ExpiresAt = now
        if err := e.store.SaveReservation(ctx, r); err != nil {
            return err
        }
        res = r
        transitions = true
        return nil
    })
    if err != nil {
        return nil, err
    }

    if transitions {
        e.emitStock(ctx, item, now)
        e.emit(ctx, queue.KindReservationCancel, res, now)
    }
    return res, nil
}

// Expire reclaims the stock of a reservation whose deadline passed.
// Eligibility is re-checked under the row lock: a create-or-extend may
// have pushed the deadline forward after the sweeper read its
// candidate list, in which case this is a silent no-op.  Expire never
// acts on a stale snapshot of the deadline.
func (e *Engine) Expire(ctx context.Context, id uint64) (expired bool, err error) {
    now := e.clock.Now()
    var (
        res  *model.Reservation
        item *model.Item
    )

    err = e.store.WithTx(ctx, func(ctx context.Context) error {
        r, err := e.store.ReservationForUpdate(ctx, id)
        if err != nil {
            return err
        }
        if r.Status != model.StatusActive || r.ExpiresAt.After(now) {
            return nil
        }
        if item, err = e.store.RestoreStock(ctx, r.ItemID, r.Quantity); err != nil {
            return err
        }
        r.Status = model.StatusExpired
        if err := e.store.SaveReservation(ctx, r); err != nil {
            return err
        }
        res = r
        expired = true
        return nil
    })
    if err != nil {
        return false, err
    }

    if expired {
        e.emitStock(ctx, item, now)
        e.emit(ctx, queue.KindReservationExpired, res, now)
    }
    return expired, nil
}

func (e *Engine) emitStock(ctx context.Context, item *model.Item, now time.Time) {
    if e.notifier == nil || item == nil {
        return
    }
    ev := queue.Event{
        Kind:              queue.KindItemStockChanged,
        ItemID:            item.ID,
        AvailableQuantity: item.AvailableQuantity,
        OccurredAt:        now.Format(time.RFC3339),
    }
    if err := e.notifier.Publish(ctx, ev); err != nil {
        log.Printf("engine: publish %s failed: %v", ev.Kind, err)
    }
}

func (e *Engine) emit(ctx context.Context, kind string, r *model.Reservation, now time.Time) {
    if e.notifier == nil || r == nil {
        return
    }
    ev := queue.Event{
        Kind:          kind,
        ReservationID: r.ID,
        ActorID:       r.ActorID,
        ItemID:        r.ItemID,
        Quantity:      r.Quantity,
        Status:        r.Status,
        ExpiresAt:     r.ExpiresAt.Format(time.RFC3339),
        OccurredAt:    now.Format(time.RFC3339),
    }
    if err := e.notifier.Publish(ctx, ev); err != nil {
        log.Printf("engine: publish %s failed: %v", ev.Kind, err)
    }
}

// Package repository persists items and reservations in MySQL and
// defines the sentinel errors shared by the engine and the HTTP
// handlers.  Handlers compare against these values with errors.Is to
// choose a response status; the engine returns them unchanged.
package repository

import "errors"

// ErrItemNotFound is returned when a referenced item id does not
// exist.  Handlers translate it into a 404 response.
var ErrItemNotFound = errors.New("item not found")

// ErrReservationNotFound is returned when a referenced reservation id
// does not exist.  Handlers translate it into a 404 response.
var ErrReservationNotFound = errors.New("reservation not found")

// ErrInsufficientStock is returned when a deduction would push an
// item's available quantity below zero.  The transaction is aborted
// and nothing is mutated.  Handlers translate it into a 409 response.
var ErrInsufficientStock = errors.New("insufficient stock")

// ErrInvalidQuantity is returned when a hold is requested for a
// non-positive quantity.  Handlers translate it into a 400 response.
var ErrInvalidQuantity = errors.New("quantity must be positive")

// ErrAlreadyCompleted and ErrAlreadyExpired are returned by Complete
// when the reservation is already terminal.  They are distinct so the
// caller can tell the actor whether the hold was paid or lost.
var (
    ErrAlreadyCompleted = errors.New("reservation already completed")
    ErrAlreadyExpired   = errors.New("reservation already expired")
)

// ErrStockCorrupted signals that a restore would push an item's
// available quantity above its seeded total.  This never happens while
// the conservation invariant holds; it is surfaced loudly instead of
// clamped so the operator inspects the data rather than the bug being
// masked.
var ErrStockCorrupted = errors.New("stock restore exceeds total quantity")

package model

import "time"

// Reservation statuses.  ACTIVE is the only non-terminal state; once a
// reservation leaves it no further transition is permitted.
const (
    StatusActive    = "ACTIVE"
    StatusCompleted = "COMPLETED"
    StatusExpired   = "EXPIRED"
)

// Reservation is a time-bounded hold an actor placed on a quantity of
// one item's stock.  An actor has at most one ACTIVE reservation per
// item; repeat holds merge into the existing row.  ExpiresAt is only
// meaningful while the status is ACTIVE.
//
// Fields:
//  ID        – primary key identifier.
//  ActorID   – opaque identifier of the holding party.
//  ItemID    – item whose stock is held.
//  Quantity  – units currently held.
//  Status    – ACTIVE, COMPLETED or EXPIRED.
//  CreatedAt – creation timestamp.
//  UpdatedAt – last update timestamp.
//  ExpiresAt – deadline after which the sweeper reclaims the stock.
type Reservation struct {
    ID        uint64    `json:"id"`         // reservations.id
    ActorID   string    `json:"actor_id"`   // reservations.actor_id
    ItemID    uint64    `json:"item_id"`    // reservations.item_id
    Quantity  int       `json:"quantity"`   // reservations.quantity
    Status    string    `json:"status"`     // reservations.status
    CreatedAt time.Time `json:"created_at"` // reservations.created_at
    UpdatedAt time.Time `json:"updated_at"` // reservations.updated_at
    ExpiresAt time.Time `json:"expires_at"` // reservations.expires_at
}

// Terminal reports whether the reservation has left the ACTIVE state.
func (r *Reservation) Terminal() bool {
    return r.Status != StatusActive
}

// ReservationDetail pairs a reservation with a snapshot of its item for
// presentation.  It is assembled by the repository for listing
// endpoints and is never used by the lifecycle engine.
type ReservationDetail struct {
    Reservation
    ItemName       string `json:"item_name"`
    ItemPriceCents uint32 `json:"item_price_cents"`
}

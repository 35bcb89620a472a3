// Package queue defines message payloads exchanged over the message broker.
package queue

// Event kinds emitted by the lifecycle engine, one per committed
// transition.  Stock changes carry their own fact so downstream
// consumers can track availability without querying the database.
const (
    KindItemStockChanged   = "item.stock_changed"
    KindReservationCreated = "reservation.created_or_extended"
    KindReservationDone    = "reservation.completed"
    KindReservationCancel  = "reservation.cancelled"
    KindReservationExpired = "reservation.expired"
)

// Event is published to the reservation.events queue after the
// transaction that produced it has committed.  Fields are zero when
// they do not apply to the kind (an item fact has no reservation id
// and vice versa).
type Event struct {
    Kind              string `json:"kind"`
    ItemID            uint64 `json:"item_id,omitempty"`
    AvailableQuantity int    `json:"available_quantity,omitempty"`
    ReservationID     uint64 `json:"reservation_id,omitempty"`
    ActorID           string `json:"actor_id,omitempty"`
    Quantity          int    `json:"quantity,omitempty"`
    Status            string `json:"status,omitempty"`
    ExpiresAt         string `json:"expires_at,omitempty"`
    OccurredAt        string `json:"occurred_at"`
}

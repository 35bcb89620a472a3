package repository

import (
    "context"
    "database/sql"
    "errors"
    "time"

    "github.com/iliyamo/stock-hold-reservation/internal/model"
)

// Reservation store.  All timestamps are stored and compared in UTC;
// the DSN pins the session to UTC so DATETIME columns round-trip
// through time.Time without conversion.

const reservationColumns = `id, actor_id, item_id, quantity, status, created_at, updated_at, expires_at`

func scanReservation(row *sql.Row) (*model.Reservation, error) {
    var r model.Reservation
    err := row.Scan(&r.ID, &r.ActorID, &r.ItemID, &r.Quantity, &r.Status, &r.CreatedAt, &r.UpdatedAt, &r.ExpiresAt)
    if err != nil {
        return nil, err
    }
    return &r, nil
}

// ActiveReservation returns the actor's ACTIVE reservation for the
// item under an exclusive row lock, or nil when none exists.  The
// engine relies on the (actor, item, ACTIVE) row being unique to
// enforce the merge policy; call this only inside WithTx.
func (s *Store) ActiveReservation(ctx context.Context, actorID string, itemID uint64) (*model.Reservation, error) {
    const q = `SELECT ` + reservationColumns + ` FROM reservations
               WHERE actor_id = ? AND item_id = ? AND status = 'ACTIVE' FOR UPDATE`
    r, err := scanReservation(s.q(ctx).QueryRowContext(ctx, q, actorID, itemID))
    if errors.Is(err, sql.ErrNoRows) {
        return nil, nil
    }
    return r, err
}

// ReservationForUpdate loads a reservation by id under an exclusive
// row lock.  Complete, Cancel and Expire all serialise on this lock,
// so whichever commits first decides the terminal state.  Returns
// ErrReservationNotFound when the id does not exist.
func (s *Store) ReservationForUpdate(ctx context.Context, id uint64) (*model.Reservation, error) {
    const q = `SELECT ` + reservationColumns + ` FROM reservations WHERE id = ? FOR UPDATE`
    r, err := scanReservation(s.q(ctx).QueryRowContext(ctx, q, id))
    if errors.Is(err, sql.ErrNoRows) {
        return nil, ErrReservationNotFound
    }
    return r, err
}

// CreateReservation inserts a new ACTIVE reservation and populates the
// generated id and database-assigned timestamps on the passed record.
func (s *Store) CreateReservation(ctx context.Context, r *model.Reservation) error {
    const ins = `INSERT INTO reservations (actor_id, item_id, quantity, status, expires_at)
                 VALUES (?, ?, ?, ?, ?)`
    res, err := s.q(ctx).ExecContext(ctx, ins, r.ActorID, r.ItemID, r.Quantity, r.Status, r.ExpiresAt)
    if err != nil {
        return err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return err
    }
    r.ID = uint64(id)
    const sel = `SELECT ` + reservationColumns + ` FROM reservations WHERE id = ?`
    stored, err := scanReservation(s.q(ctx).QueryRowContext(ctx, sel, r.ID))
    if err != nil {
        return err
    }
    *r = *stored
    return nil
}

// SaveReservation persists in-place mutation of quantity, status and
// deadline for an existing row.
func (s *Store) SaveReservation(ctx context.Context, r *model.Reservation) error {
    const q = `UPDATE reservations
               SET quantity = ?, status = ?, expires_at = ?, updated_at = UTC_TIMESTAMP()
               WHERE id = ?`
    _, err := s.q(ctx).ExecContext(ctx, q, r.Quantity, r.Status, r.ExpiresAt, r.ID)
    return err
}

// RefreshActorDeadlines pushes the deadline of every ACTIVE
// reservation owned by the actor to the given instant.  Called from
// the same transaction as the triggering create-or-extend so the
// global hold window moves atomically with the new hold.
func (s *Store) RefreshActorDeadlines(ctx context.Context, actorID string, deadline time.Time) error {
    const q = `UPDATE reservations
               SET expires_at = ?, updated_at = UTC_TIMESTAMP()
               WHERE actor_id = ? AND status = 'ACTIVE'`
    _, err := s.q(ctx).ExecContext(ctx, q, deadline, actorID)
    return err
}

// DueReservationIDs returns ids of ACTIVE reservations whose deadline
// has passed, oldest deadline first.  The read takes no locks: the
// sweeper re-validates each candidate under the row lock before
// expiring it, so a stale id here is harmless.
func (s *Store) DueReservationIDs(ctx context.Context, now time.Time, limit int) ([]uint64, error) {
    const q = `SELECT id FROM reservations
               WHERE status = 'ACTIVE' AND expires_at <= ?
               ORDER BY expires_at LIMIT ?`
    rows, err := s.q(ctx).QueryContext(ctx, q, now, limit)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    var ids []uint64
    for rows.Next() {
        var id uint64
        if err := rows.Scan(&id); err != nil {
            return nil, err
        }
        ids = append(ids, id)
    }
    return ids, rows.Err()
}

// ListReservationsByActor returns all of the actor's reservations,
// terminal ones included, newest first, each with a snapshot of its
// item for display.  Consumed by the listing endpoint only.
func (s *Store) ListReservationsByActor(ctx context.Context, actorID string) ([]model.ReservationDetail, error) {
    const q = `SELECT r.id, r.actor_id, r.item_id, r.quantity, r.status,
                      r.created_at, r.updated_at, r.expires_at,
                      i.name, i.price_cents
               FROM reservations r
               JOIN items i ON i.id = r.item_id
               WHERE r.actor_id = ?
               ORDER BY r.created_at DESC, r.id DESC`
    rows, err := s.q(ctx).QueryContext(ctx, q, actorID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    details := make([]model.ReservationDetail, 0)
    for rows.Next() {
        var d model.ReservationDetail
        if err := rows.Scan(
            &d.ID, &d.ActorID, &d.ItemID, &d.Quantity, &d.Status,
            &d.CreatedAt, &d.UpdatedAt, &d.ExpiresAt,
            &d.ItemName, &d.ItemPriceCents,
        ); err != nil {
            return nil, err
        }
        details = append(details, d)
    }
    return details, rows.Err()
}

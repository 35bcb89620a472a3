package repository

import (
    "context"
    "database/sql"
    "errors"

    "github.com/iliyamo/stock-hold-reservation/internal/model"
)

// This file is the stock ledger: the only code that changes an item's
// available_quantity.  Both mutators assume the caller already holds
// the item row lock taken by ItemForUpdate inside the same WithTx.

const itemColumns = `id, name, price_cents, total_quantity, available_quantity, created_at, updated_at`

func scanItem(row *sql.Row) (*model.Item, error) {
    var it model.Item
    err := row.Scan(&it.ID, &it.Name, &it.PriceCents, &it.TotalQuantity, &it.AvailableQuantity, &it.CreatedAt, &it.UpdatedAt)
    if err != nil {
        return nil, err
    }
    return &it, nil
}

// ItemForUpdate loads an item under an exclusive row lock.  It must be
// called inside WithTx so the lock is held for the remainder of the
// unit of work.  Returns ErrItemNotFound when the id does not exist.
func (s *Store) ItemForUpdate(ctx context.Context, itemID uint64) (*model.Item, error) {
    const q = `SELECT ` + itemColumns + ` FROM items WHERE id = ? FOR UPDATE`
    it, err := scanItem(s.q(ctx).QueryRowContext(ctx, q, itemID))
    if errors.Is(err, sql.ErrNoRows) {
        return nil, ErrItemNotFound
    }
    return it, err
}

// DeductStock removes qty units from the item's available quantity and
// returns the updated row.  The guard in the statement repeats the
// availability check the engine already performed under the row lock;
// a zero-row update therefore means the caller skipped ItemForUpdate
// and is reported as insufficient stock rather than silently
// oversold.
func (s *Store) DeductStock(ctx context.Context, itemID uint64, qty int) (*model.Item, error) {
    const q = `UPDATE items
               SET available_quantity = available_quantity - ?, updated_at = UTC_TIMESTAMP()
               WHERE id = ? AND available_quantity >= ?`
    res, err := s.q(ctx).ExecContext(ctx, q, qty, itemID, qty)
    if err != nil {
        return nil, err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return nil, err
    }
    if n == 0 {
        return nil, ErrInsufficientStock
    }
    return s.itemByID(ctx, itemID)
}

// RestoreStock returns qty units to the item's available quantity.
// A restore that would exceed the item's seeded total is refused with
// ErrStockCorrupted: it can only mean stock was double-restored or the
// conservation invariant was broken upstream, and must not be clamped.
func (s *Store) RestoreStock(ctx context.Context, itemID uint64, qty int) (*model.Item, error) {
    const q = `UPDATE items
               SET available_quantity = available_quantity + ?, updated_at = UTC_TIMESTAMP()
               WHERE id = ? AND available_quantity + ? <= total_quantity`
    res, err := s.q(ctx).ExecContext(ctx, q, qty, itemID, qty)
    if err != nil {
        return nil, err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return nil, err
    }
    if n == 0 {
        if _, err := s.itemByID(ctx, itemID); errors.Is(err, ErrItemNotFound) {
            return nil, ErrItemNotFound
        }
        return nil, ErrStockCorrupted
    }
    return s.itemByID(ctx, itemID)
}

func (s *Store) itemByID(ctx context.Context, itemID uint64) (*model.Item, error) {
    const q = `SELECT ` + itemColumns + ` FROM items WHERE id = ?`
    it, err := scanItem(s.q(ctx).QueryRowContext(ctx, q, itemID))
    if errors.Is(err, sql.ErrNoRows) {
        return nil, ErrItemNotFound
    }
    return it, err
}

// ListItems returns the whole catalog ordered by id.  Consumed by the
// public listing endpoint only; the engine never reads availability
// through this method.
func (s *Store) ListItems(ctx context.Context) ([]model.Item, error) {
    const q = `SELECT ` + itemColumns + ` FROM items ORDER BY id`
    rows, err := s.q(ctx).QueryContext(ctx, q)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    items := make([]model.Item, 0)
    for rows.Next() {
        var it model.Item
        if err := rows.Scan(&it.ID, &it.Name, &it.PriceCents, &it.TotalQuantity, &it.AvailableQuantity, &it.CreatedAt, &it.UpdatedAt); err != nil {
            return nil, err
        }
        items = append(items, it)
    }
    return items, rows.Err()
}

// ResetCatalog removes every reservation and item, then seeds the
// provided catalog.  Runs in a single transaction; reservations are
// deleted first so no reservation ever references a missing item.
// This is the administrative reset from the demo tooling, not part of
// the lifecycle engine.
func (s *Store) ResetCatalog(ctx context.Context, items []model.Item) error {
    return s.WithTx(ctx, func(ctx context.Context) error {
        if _, err := s.q(ctx).ExecContext(ctx, `DELETE FROM reservations`); err != nil {
            return err
        }
        if _, err := s.q(ctx).ExecContext(ctx, `DELETE FROM items`); err != nil {
            return err
        }
        const ins = `INSERT INTO items (name, price_cents, total_quantity, available_quantity) VALUES (?, ?, ?, ?)`
        for _, it := range items {
            if _, err := s.q(ctx).ExecContext(ctx, ins, it.Name, it.PriceCents, it.TotalQuantity, it.TotalQuantity); err != nil {
                return err
            }
        }
        return nil
    })
}

package model

import "time"

// Item is a unit of sellable stock.  Its available quantity is the
// single source of truth for how many units can still be held; it is
// only ever changed inside an engine transaction while the item row
// is locked.
//
// Fields:
//  ID                – primary key identifier.
//  Name              – human readable product name (display only).
//  PriceCents        – unit price in cents (display only).
//  TotalQuantity     – quantity the catalog was seeded with.  The sum
//                      of AvailableQuantity and all ACTIVE reservation
//                      quantities must always equal this value.
//  AvailableQuantity – units not currently held or sold.
//  CreatedAt         – creation timestamp.
//  UpdatedAt         – last update timestamp.
type Item struct {
    ID                uint64    `json:"id"`                 // items.id
    Name              string    `json:"name"`               // items.name
    PriceCents        uint32    `json:"price_cents"`        // items.price_cents
    TotalQuantity     int       `json:"total_quantity"`     // items.total_quantity
    AvailableQuantity int       `json:"available_quantity"` // items.available_quantity
    CreatedAt         time.Time `json:"created_at"`         // items.created_at
    UpdatedAt         time.Time `json:"updated_at"`         // items.updated_at
}

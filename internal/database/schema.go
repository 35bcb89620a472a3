package database

import (
    "context"
    "database/sql"
    "fmt"
)

// schemaStatements holds the bootstrap DDL.  Function defaults other
// than CURRENT_TIMESTAMP must be parenthesized expressions; MySQL
// rejects the bare form.
var schemaStatements = []string{
    `CREATE TABLE IF NOT EXISTS items (
            id                 BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
            name               VARCHAR(255)    NOT NULL,
            price_cents        INT UNSIGNED    NOT NULL DEFAULT 0,
            total_quantity     INT             NOT NULL,
            available_quantity INT             NOT NULL,
            created_at         DATETIME        NOT NULL DEFAULT (UTC_TIMESTAMP()),
            updated_at         DATETIME        NOT NULL DEFAULT (UTC_TIMESTAMP()),
            PRIMARY KEY (id),
            CONSTRAINT chk_items_available_nonneg CHECK (available_quantity >= 0),
            CONSTRAINT chk_items_available_capped CHECK (available_quantity <= total_quantity)
        ) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
    `CREATE TABLE IF NOT EXISTS reservations (
            id         BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
            actor_id   VARCHAR(128)    NOT NULL,
            item_id    BIGINT UNSIGNED NOT NULL,
            quantity   INT             NOT NULL,
            status     ENUM('ACTIVE','COMPLETED','EXPIRED') NOT NULL DEFAULT 'ACTIVE',
            created_at DATETIME        NOT NULL DEFAULT (UTC_TIMESTAMP()),
            updated_at DATETIME        NOT NULL DEFAULT (UTC_TIMESTAMP()),
            expires_at DATETIME        NOT NULL,
            PRIMARY KEY (id),
            KEY idx_reservations_actor_item_status (actor_id, item_id, status),
            KEY idx_reservations_due (status, expires_at),
            CONSTRAINT fk_reservations_item FOREIGN KEY (item_id) REFERENCES items (id)
        ) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// EnsureSchema creates the two tables the service persists when they
// do not exist yet.  Statements are idempotent so several instances
// may start concurrently against the same database.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
    for _, stmt := range schemaStatements {
        if _, err := db.ExecContext(ctx, stmt); err != nil {
            return fmt.Errorf("ensure schema: %w", err)
        }
    }
    return nil
}

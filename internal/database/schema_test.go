package database

import (
    "regexp"
    "strings"
    "testing"
)

// MySQL only accepts CURRENT_TIMESTAMP as a bare column default; every
// other function default must be wrapped in parentheses.  A bare
// UTC_TIMESTAMP() default makes EnsureSchema fail on first start, so
// guard the DDL here where no database is needed.
func TestSchemaFunctionDefaultsAreParenthesized(t *testing.T) {
    t.Parallel()
    bare := regexp.MustCompile(`DEFAULT\s+UTC_TIMESTAMP`)
    for _, stmt := range schemaStatements {
        if bare.MatchString(stmt) {
            t.Fatalf("bare function default in DDL:\n%s", stmt)
        }
    }
}

func TestSchemaCoversBothTables(t *testing.T) {
    t.Parallel()
    var items, reservations bool
    for _, stmt := range schemaStatements {
        if strings.Contains(stmt, "CREATE TABLE IF NOT EXISTS items") {
            items = true
        }
        if strings.Contains(stmt, "CREATE TABLE IF NOT EXISTS reservations") {
            reservations = true
        }
    }
    if !items || !reservations {
        t.Fatalf("expected DDL for both tables, got items=%v reservations=%v", items, reservations)
    }
}

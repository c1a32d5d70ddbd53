package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"delivery-notify-service/internal/services"
)

// Dialect selects placeholder and DDL syntax for a SQL database.
type Dialect int

const (
	DialectSqlite Dialect = iota
	DialectPostgres
)

func (d Dialect) String() string {
	if d == DialectPostgres {
		return "postgres"
	}
	return "sqlite"
}

// placeholder returns the bind marker for the 1-based argument n.
func (d Dialect) placeholder(n int) string {
	if d == DialectPostgres {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}

const rowsTable = "delivery_rows"

// InitSchema creates the flattened delivery table.
// row_id keeps insertion order so deliveries load back in route order.
func InitSchema(db *sql.DB, dialect Dialect) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	idCol := "row_id INTEGER PRIMARY KEY AUTOINCREMENT"
	if dialect == DialectPostgres {
		idCol = "row_id BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY"
	}

	cols := make([]string, 0, len(services.Columns)+1)
	cols = append(cols, idCol)
	for _, c := range services.Columns {
		cols = append(cols, c+" TEXT NOT NULL DEFAULT ''")
	}

	statements := []string{
		fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n\t%s\n);", rowsTable, strings.Join(cols, ",\n\t")),
		fmt.Sprintf("CREATE INDEX IF NOT EXISTS idx_%s_batch_id ON %s(%s);", rowsTable, rowsTable, services.ColBatchID),
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for i, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}

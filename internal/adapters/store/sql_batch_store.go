package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"delivery-notify-service/internal/domain"
	"delivery-notify-service/internal/platform/obs"
	"delivery-notify-service/internal/services"
)

// SQLBatchStore implements ports.BatchStore over a database/sql handle
// (SQLite through modernc, Postgres through pgx).
type SQLBatchStore struct {
	DB      *sql.DB
	Dialect Dialect
}

func NewSqliteBatchStore(db *sql.DB) *SQLBatchStore {
	return &SQLBatchStore{DB: db, Dialect: DialectSqlite}
}

func NewPostgresBatchStore(db *sql.DB) *SQLBatchStore {
	return &SQLBatchStore{DB: db, Dialect: DialectPostgres}
}

// Load reads every row in insertion order and unflattens them.
func (s *SQLBatchStore) Load(ctx context.Context) (_ map[string]*domain.Batch, err error) {
	defer obs.Time(ctx, s.Dialect.String()+".store.Load")(&err)

	if s.DB == nil {
		return nil, errors.New("sql batch store: db is nil")
	}

	q := fmt.Sprintf("SELECT %s FROM %s ORDER BY row_id;", strings.Join(services.Columns, ", "), rowsTable)
	rows, err := s.DB.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("load batches: query %s table: %w", rowsTable, err)
	}
	defer rows.Close()

	out := make([]services.Row, 0, 64)
	cells := make([]string, len(services.Columns))
	dest := make([]any, len(cells))
	for i := range cells {
		dest[i] = &cells[i]
	}

	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("load batches: scan row: %w", err)
		}
		out = append(out, services.RowFromValues(services.Columns, cells))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load batches: row iteration: %w", err)
	}

	return services.Unflatten(out)
}

// Save replaces the table content with the flattened batches in one transaction.
func (s *SQLBatchStore) Save(ctx context.Context, batches map[string]*domain.Batch) (err error) {
	defer obs.Time(ctx, s.Dialect.String()+".store.Save")(&err)

	if s.DB == nil {
		return errors.New("sql batch store: db is nil")
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save batches: db begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM "+rowsTable+";"); err != nil {
		return fmt.Errorf("save batches: clear %s: %w", rowsTable, err)
	}

	ph := make([]string, len(services.Columns))
	for i := range ph {
		ph[i] = s.Dialect.placeholder(i + 1)
	}
	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s);",
		rowsTable, strings.Join(services.Columns, ", "), strings.Join(ph, ", "),
	))
	if err != nil {
		return fmt.Errorf("save batches: db prepare: %w", err)
	}
	defer stmt.Close()

	for _, r := range services.Flatten(batches) {
		vals := r.Values()
		args := make([]any, len(vals))
		for i, v := range vals {
			args[i] = v
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("save batches: insert batch_id=%s seq=%s: %w", r[services.ColBatchID], r[services.ColSequenceNumber], err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save batches: commit: %w", err)
	}

	return nil
}

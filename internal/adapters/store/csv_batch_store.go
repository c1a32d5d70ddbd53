package store

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"delivery-notify-service/internal/domain"
	"delivery-notify-service/internal/platform/obs"
	"delivery-notify-service/internal/services"
)

// CSVBatchStore keeps the flattened rows in one CSV file with a header line.
// Saves go to a temp file in the same directory and are renamed over Path.
type CSVBatchStore struct {
	Path string
}

func NewCSVBatchStore(path string) *CSVBatchStore {
	return &CSVBatchStore{Path: path}
}

// Load reads Path. A missing file is an empty collection.
func (s *CSVBatchStore) Load(ctx context.Context) (_ map[string]*domain.Batch, err error) {
	defer obs.Time(ctx, "csv.store.Load")(&err)

	f, err := os.Open(s.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]*domain.Batch{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load batches: open %s: %w", s.Path, err)
	}
	defer f.Close()

	rows, err := ReadRows(f)
	if err != nil {
		return nil, fmt.Errorf("load batches: %s: %w", s.Path, err)
	}
	return services.Unflatten(rows)
}

func (s *CSVBatchStore) Save(ctx context.Context, batches map[string]*domain.Batch) (err error) {
	defer obs.Time(ctx, "csv.store.Save")(&err)

	dir := filepath.Dir(s.Path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.Path)+".*")
	if err != nil {
		return fmt.Errorf("save batches: create temp in %s: %w", dir, err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	if err := WriteRows(tmp, services.Flatten(batches)); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("save batches: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("save batches: sync temp: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("save batches: close temp: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.Path); err != nil {
		return fmt.Errorf("save batches: rename into %s: %w", s.Path, err)
	}
	return nil
}

// ReadRows parses a header line followed by data lines. Columns are matched by
// header name, so files written with a different column order still load.
func ReadRows(r io.Reader) ([]services.Row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	// Spreadsheet exports often start with a UTF-8 BOM.
	if len(header) > 0 {
		header[0] = trimBOM(header[0])
	}

	var rows []services.Row
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read line %d: %w", len(rows)+2, err)
		}
		rows = append(rows, services.RowFromValues(header, rec))
	}
	return rows, nil
}

// WriteRows writes the header and rows in services.Columns order.
func WriteRows(w io.Writer, rows []services.Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(services.Columns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, r := range rows {
		if err := cw.Write(r.Values()); err != nil {
			return fmt.Errorf("write row batch_id=%s: %w", r[services.ColBatchID], err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func trimBOM(s string) string {
	const bom = "\ufeff"
	if len(s) >= len(bom) && s[:len(bom)] == bom {
		return s[len(bom):]
	}
	return s
}

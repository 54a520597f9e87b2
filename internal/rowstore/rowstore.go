// Package rowstore materializes a table's CSV rows file into an
// in-memory row set for the duration of one statement, and writes a row
// set back to CSV. NULL is the empty field; every other cell round-trips
// through coltype.Value so the invariant in the engine's design notes
// ("serialise... by a single central encoder/decoder") holds in one
// place.
package rowstore

import (
	"context"
	"encoding/csv"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"

	"csvgres/internal/coltype"
	"csvgres/internal/csverr"
	"csvgres/internal/ioworker"
	"csvgres/internal/metastore"
)

// Row is one record: column name to typed value.
type Row map[string]coltype.Value

// RowSet is an ordered sequence of rows, in CSV order.
type RowSet struct {
	Columns []string
	Rows    []Row
}

func (rs *RowSet) Len() int { return len(rs.Rows) }

// Clone returns a deep-enough copy for callers that filter/append
// without mutating the original row slice backing array.
func (rs *RowSet) Clone() *RowSet {
	out := &RowSet{Columns: append([]string(nil), rs.Columns...), Rows: append([]Row(nil), rs.Rows...)}
	return out
}

// Load reads the CSV rows file and decodes each cell against meta, off
// the worker pool. A missing trailing field in a row is treated as NULL
// per spec; every present field is type-coerced so a corrupted cell
// surfaces as TypeError rather than being read back as a raw string.
func Load(ctx context.Context, pool *ioworker.Pool, path string, meta *metastore.Metadata) (*RowSet, error) {
	records, err := ioworker.Submit(ctx, pool, func() ([][]string, error) {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r := csv.NewReader(f)
		r.FieldsPerRecord = -1
		return r.ReadAll()
	})
	if err != nil {
		if os.IsNotExist(err) {
			return nil, csverr.NotFoundf("table data file %s does not exist", path)
		}
		return nil, csverr.IO("failed to read CSV", err)
	}

	rs := &RowSet{Columns: meta.Columns()}
	if len(records) == 0 {
		return rs, nil
	}
	header := records[0]
	dataRows := records[1:]

	for _, record := range dataRows {
		row := Row{}
		for i, col := range header {
			cm, ok := meta.Get(col)
			if !ok {
				continue
			}
			var cell string
			if i < len(record) {
				cell = record[i]
			}
			v, err := decodeCell(cell, cm)
			if err != nil {
				return nil, err
			}
			row[col] = v
		}
		rs.Rows = append(rs.Rows, row)
	}
	return rs, nil
}

func decodeCell(cell string, cm *metastore.ColumnMeta) (coltype.Value, error) {
	if cell == "" {
		if cm.Type == "ARRAY" {
			return coltype.ArrayValue(nil), nil
		}
		return coltype.NullValue(), nil
	}
	return coltype.Coerce(cell, columnType(cm))
}

func columnType(cm *metastore.ColumnMeta) string {
	if cm.Type == "ARRAY" {
		return "ARRAY"
	}
	return cm.Type
}

// Save writes a header row (meta's column order) followed by one record
// per row, writing to a temp file and renaming into place. Standard CSV
// quoting rules apply via encoding/csv; NULL encodes as an empty field.
func Save(ctx context.Context, pool *ioworker.Pool, path string, meta *metastore.Metadata, rs *RowSet) error {
	cols := meta.Columns()
	return ioworker.SubmitVoid(ctx, pool, func() error {
		tmp := path + "." + uuid.NewString() + ".tmp"
		f, err := os.Create(tmp)
		if err != nil {
			return csverr.IO("failed to create temp CSV file", err)
		}
		w := csv.NewWriter(f)
		if err := w.Write(cols); err != nil {
			f.Close()
			return csverr.IO("failed to write CSV header", err)
		}
		for _, row := range rs.Rows {
			record := make([]string, len(cols))
			for i, col := range cols {
				if v, ok := row[col]; ok && !v.IsNull() {
					record[i] = v.String()
				}
			}
			if err := w.Write(record); err != nil {
				f.Close()
				return csverr.IO("failed to write CSV row", err)
			}
		}
		w.Flush()
		if err := w.Error(); err != nil {
			f.Close()
			return csverr.IO("failed to flush CSV", err)
		}
		if err := f.Close(); err != nil {
			return csverr.IO("failed to close temp CSV file", err)
		}
		if err := os.Rename(tmp, path); err != nil {
			return csverr.IO("failed to rename temp CSV file", err)
		}
		return nil
	})
}

// WriteEmpty writes just the header row for a brand-new table.
func WriteEmpty(ctx context.Context, pool *ioworker.Pool, path string, columns []string) error {
	return ioworker.SubmitVoid(ctx, pool, func() error {
		f, err := os.Create(path)
		if err != nil {
			return csverr.IO("failed to create CSV file", err)
		}
		defer f.Close()
		w := csv.NewWriter(f)
		if err := w.Write(columns); err != nil {
			return csverr.IO("failed to write CSV header", err)
		}
		w.Flush()
		return w.Error()
	})
}

// ReadHeader reads just the header line, without materializing the whole
// row set.
func ReadHeader(ctx context.Context, pool *ioworker.Pool, path string) ([]string, error) {
	return ioworker.Submit(ctx, pool, func() ([]string, error) {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r := csv.NewReader(f)
		header, err := r.Read()
		if err == io.EOF {
			return nil, nil
		}
		return header, err
	})
}

// SplitCSVValue doubles every single quote in s, the escaping a SQL
// string literal uses; it does not add the surrounding quotes.
func SplitCSVValue(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

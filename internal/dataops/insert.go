package dataops

import (
	"context"

	"github.com/pingcap/tidb/pkg/parser/ast"

	"csvgres/internal/coltype"
	"csvgres/internal/csverr"
	"csvgres/internal/ioworker"
	"csvgres/internal/metastore"
	"csvgres/internal/rowstore"
	"csvgres/internal/sqlast"
)

// Insert appends the rows described by ins to the table's row set,
// applying SERIAL assignment, default materialization, type coercion
// and NOT NULL/PRIMARY KEY/UNIQUE constraint checks before writing.
//
// Grounded on DataOperations.insert: build a row per VALUES tuple with
// every declared column defaulted to NULL, overlay the supplied values
// by position, fill SERIAL/default columns, coerce types, validate
// constraints against the existing-plus-new combined set, then persist
// both the CSV and the metadata (whose SERIAL counter advanced).
func Insert(ctx context.Context, pool *ioworker.Pool, databaseDir string, ins *sqlast.Insert) (int, error) {
	tc, err := loadTableContext(ctx, pool, databaseDir, ins.Table)
	if err != nil {
		return 0, err
	}

	insertColumns := ins.Columns
	if len(insertColumns) == 0 {
		insertColumns = tc.meta.Columns()
	}
	for _, col := range insertColumns {
		if !tc.meta.Has(col) {
			return 0, csverr.Schemaf("column %q does not exist in table %q", col, ins.Table)
		}
	}

	newRows := make([]row, 0, len(ins.Rows))
	for _, tuple := range ins.Rows {
		r, err := buildRow(insertColumns, tuple, tc.meta)
		if err != nil {
			return 0, err
		}
		newRows = append(newRows, r)
	}

	if err := fillSerialAndDefaults(newRows, tc.meta); err != nil {
		return 0, err
	}
	if err := coerceRows(newRows, tc.meta); err != nil {
		return 0, err
	}
	if err := checkNotNull(newRows, tc.meta); err != nil {
		return 0, err
	}

	combined := append(append([]row(nil), tc.rows.Rows...), newRows...)
	if err := checkUniqueAndPrimaryKey(combined, tc.meta); err != nil {
		return 0, err
	}
	tc.rows.Rows = combined

	if err := ioworker.Parallel(ctx, pool,
		func() error { return rowstore.Save(ctx, pool, tc.layout.CSVPath, tc.meta, tc.rows) },
		func() error { return metastore.Save(ctx, pool, tc.layout.MetaPath, tc.meta) },
	); err != nil {
		return 0, err
	}
	return len(newRows), nil
}

func buildRow(insertColumns []string, tuple []ast.ExprNode, meta *metastore.Metadata) (row, error) {
	r := row{}
	for _, col := range meta.Columns() {
		r[col] = coltype.NullValue()
	}
	for i, col := range insertColumns {
		if i >= len(tuple) {
			break
		}
		raw, isNull, isDefault, err := sqlast.Literal(tuple[i])
		if err != nil {
			return nil, err
		}
		if isDefault || isNull {
			continue
		}
		r[col] = coltype.StringValue(raw)
	}
	return r, nil
}

// fillSerialAndDefaults mutates rows in place, assigning SERIAL values
// from (and advancing) the column's counter, and materializing DEFAULT
// literals, for any cell still NULL after the VALUES overlay.
func fillSerialAndDefaults(rows []row, meta *metastore.Metadata) error {
	for _, col := range meta.Columns() {
		cm, _ := meta.Get(col)
		switch {
		case cm.IsSerial:
			for _, r := range rows {
				if r[col].IsNull() {
					r[col] = coltype.IntValue(cm.AutoIncrementCounter)
					cm.AutoIncrementCounter++
				}
			}
		case cm.Default != nil:
			for _, r := range rows {
				if !r[col].IsNull() {
					continue
				}
				if cm.Default.IsArray {
					r[col] = coltype.ArrayValue(nil)
					continue
				}
				v, err := coltype.Coerce(cm.Default.Literal, cm.Type)
				if err != nil {
					return err
				}
				r[col] = v
			}
		}
	}
	return nil
}

func coerceRows(rows []row, meta *metastore.Metadata) error {
	for _, col := range meta.Columns() {
		cm, _ := meta.Get(col)
		for _, r := range rows {
			v := r[col]
			if v.IsNull() {
				continue
			}
			coerced, err := coltype.Coerce(v, cm.Type)
			if err != nil {
				return csverr.Typef("type validation failed for column %q: %v", col, err)
			}
			r[col] = coerced
		}
	}
	return nil
}

func checkNotNull(rows []row, meta *metastore.Metadata) error {
	for _, col := range meta.Columns() {
		cm, _ := meta.Get(col)
		if !cm.NotNull && !cm.PrimaryKey {
			continue
		}
		for _, r := range rows {
			if r[col].IsNull() {
				return csverr.Constraintf("column %q cannot be NULL", col)
			}
		}
	}
	return nil
}

func checkUniqueAndPrimaryKey(rows []row, meta *metastore.Metadata) error {
	for _, col := range meta.Columns() {
		cm, _ := meta.Get(col)
		if !cm.Unique && !cm.PrimaryKey {
			continue
		}
		seen := make([]coltype.Value, 0, len(rows))
		for _, r := range rows {
			v := r[col]
			if v.IsNull() {
				continue
			}
			for _, s := range seen {
				if coltype.Equal(s, v) {
					kind := "unique"
					if cm.PrimaryKey {
						kind = "primary key"
					}
					return csverr.Constraintf("duplicate value in %s column %q", kind, col)
				}
			}
			seen = append(seen, v)
		}
	}
	return nil
}

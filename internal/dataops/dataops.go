// Package dataops implements INSERT, SELECT, UPDATE and DELETE: the
// four operations that read and rewrite a table's row set. Grounded on
// the Python original's DataOperations (data_ops.py), translated from
// its pandas DataFrame operations to the engine's rowstore.RowSet and
// from its sqlglot WHERE-string evaluation to the predicate package's
// compiled Func.
package dataops

import (
	"context"

	"csvgres/internal/csverr"
	"csvgres/internal/ioworker"
	"csvgres/internal/metastore"
	"csvgres/internal/rowstore"
	"csvgres/internal/tableops"
)

// row is a local alias so this package reads naturally against
// rowstore.Row without repeating the import everywhere.
type row = rowstore.Row

// tableContext bundles the paths, metadata and current row set for one
// statement's target table.
type tableContext struct {
	layout tableops.Layout
	meta   *metastore.Metadata
	rows   *rowstore.RowSet
}

func loadTableContext(ctx context.Context, pool *ioworker.Pool, databaseDir, table string) (*tableContext, error) {
	layout := tableops.NewLayout(databaseDir, table)
	meta, err := metastore.Load(ctx, pool, layout.MetaPath)
	if err != nil {
		if k, ok := csverr.Of(err); ok && k == csverr.KindNotFound {
			return nil, csverr.NotFoundf("table %q does not exist", table)
		}
		return nil, err
	}
	rows, err := rowstore.Load(ctx, pool, layout.CSVPath, meta)
	if err != nil {
		return nil, err
	}
	return &tableContext{layout: layout, meta: meta, rows: rows}, nil
}

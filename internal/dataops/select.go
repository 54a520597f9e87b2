package dataops

import (
	"context"

	"csvgres/internal/csverr"
	"csvgres/internal/ioworker"
	"csvgres/internal/predicate"
	"csvgres/internal/sqlast"
)

// Select filters the table's row set by sel's WHERE clause and projects
// the requested columns, returning rows in storage order.
//
// Grounded on DataOperations.select: read the CSV, apply df.query for
// WHERE, then either copy every column (Star) or project the requested
// column list, normalizing NaN to None (here: NULL) along the way.
func Select(ctx context.Context, pool *ioworker.Pool, databaseDir string, sel *sqlast.Select) ([]string, []row, error) {
	tc, err := loadTableContext(ctx, pool, databaseDir, sel.Table)
	if err != nil {
		return nil, nil, err
	}

	where, err := predicate.Compile(sel.Where)
	if err != nil {
		return nil, nil, err
	}

	columns := tc.meta.Columns()
	if !sel.Star {
		for _, proj := range sel.Projections {
			if !tc.meta.Has(proj.Column) {
				return nil, nil, csverr.Schemaf("column %q does not exist in table %q", proj.Column, sel.Table)
			}
		}
		columns = sel.Columns()
	}

	var out []row
	for _, r := range tc.rows.Rows {
		if !where(predicate.Row(r)) {
			continue
		}
		if sel.Star {
			out = append(out, r)
			continue
		}
		projected := row{}
		for _, proj := range sel.Projections {
			projected[proj.Output()] = r[proj.Column]
		}
		out = append(out, projected)
	}
	return columns, out, nil
}

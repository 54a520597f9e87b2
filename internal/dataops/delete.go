package dataops

import (
	"context"

	"csvgres/internal/ioworker"
	"csvgres/internal/predicate"
	"csvgres/internal/rowstore"
	"csvgres/internal/sqlast"
)

// Delete removes every row matching del's WHERE clause and persists the
// result, returning the number of rows removed. An absent WHERE clause
// wipes the table down to an empty row set, matching the original's
// "no where -> pd.DataFrame(columns=df.columns)" branch.
func Delete(ctx context.Context, pool *ioworker.Pool, databaseDir string, del *sqlast.Delete) (int, error) {
	tc, err := loadTableContext(ctx, pool, databaseDir, del.Table)
	if err != nil {
		return 0, err
	}

	if del.Where == nil {
		removed := len(tc.rows.Rows)
		tc.rows.Rows = nil
		if err := rowstore.Save(ctx, pool, tc.layout.CSVPath, tc.meta, tc.rows); err != nil {
			return 0, err
		}
		return removed, nil
	}

	where, err := predicate.Compile(del.Where)
	if err != nil {
		return 0, err
	}

	kept := tc.rows.Rows[:0:0]
	removed := 0
	for _, r := range tc.rows.Rows {
		if where(predicate.Row(r)) {
			removed++
			continue
		}
		kept = append(kept, r)
	}
	tc.rows.Rows = kept

	if err := rowstore.Save(ctx, pool, tc.layout.CSVPath, tc.meta, tc.rows); err != nil {
		return 0, err
	}
	return removed, nil
}

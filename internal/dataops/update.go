package dataops

import (
	"context"

	"github.com/pingcap/tidb/pkg/parser/ast"

	"csvgres/internal/coltype"
	"csvgres/internal/csverr"
	"csvgres/internal/ioworker"
	"csvgres/internal/metastore"
	"csvgres/internal/predicate"
	"csvgres/internal/rowstore"
	"csvgres/internal/sqlast"
)

// Update applies upd's SET assignments to every row matching its WHERE
// clause and persists the result, returning the number of rows touched.
//
// Grounded on DataOperations.update_row: build the row mask first, then
// for each SET expression either run the ARRAY append/remove algebra
// (DPipe/Sub in the original's sqlglot AST; opcode.LogicOr/opcode.Minus
// here, see sqlast.ArrayOp) or assign the literal directly. Like the
// original, updated cells are not re-run through constraint validation
// — see the design note on that tradeoff.
func Update(ctx context.Context, pool *ioworker.Pool, databaseDir string, upd *sqlast.Update) (int, error) {
	tc, err := loadTableContext(ctx, pool, databaseDir, upd.Table)
	if err != nil {
		return 0, err
	}

	where, err := predicate.Compile(upd.Where)
	if err != nil {
		return 0, err
	}

	touched := 0
	for _, r := range tc.rows.Rows {
		if !where(predicate.Row(r)) {
			continue
		}
		if err := applyAssignments(r, upd, tc.meta); err != nil {
			return 0, err
		}
		touched++
	}

	if err := rowstore.Save(ctx, pool, tc.layout.CSVPath, tc.meta, tc.rows); err != nil {
		return 0, err
	}
	return touched, nil
}

func applyAssignments(r row, upd *sqlast.Update, meta *metastore.Metadata) error {
	for _, set := range upd.Set {
		cm, ok := meta.Get(set.Column)
		if !ok {
			return csverr.Schemaf("column %q does not exist in table %q", set.Column, upd.Table)
		}

		if kind, operand, isArrayOp := sqlast.ArrayOp(set.Column, set.Expr); isArrayOp {
			if cm.Type != "ARRAY" {
				return csverr.Typef("column %q is not an ARRAY column", set.Column)
			}
			if err := applyArrayOp(r, set.Column, kind, operand); err != nil {
				return err
			}
			continue
		}

		raw, isNull, isDefault, err := sqlast.Literal(set.Expr)
		if err != nil {
			return err
		}
		if isDefault {
			return csverr.UnsupportedPredicate("DEFAULT is not supported in UPDATE SET")
		}
		if isNull {
			r[set.Column] = coltype.NullValue()
			continue
		}
		// No type re-validation is performed on UPDATE (spec.md §4.6 step
		// 3): the literal is assigned as-is rather than run through
		// coltype.Coerce against the column's declared type.
		r[set.Column] = coltype.StringValue(raw)
	}
	return nil
}

// applyArrayOp mutates the stored array cell for an append (||) or
// remove (-) operation. A non-array element (including an empty/NULL
// current cell) is treated as an empty array, the same try/except
// fallback the original's update_array/remove_from_array closures use.
func applyArrayOp(r row, col string, kind sqlast.ArrayOpKind, operand ast.ExprNode) error {
	raw, isNull, isDefault, err := sqlast.Literal(operand)
	if err != nil {
		return err
	}
	if isDefault || isNull {
		return csverr.Typef("array operation on column %q requires a literal operand", col)
	}
	operandValue := coltype.StringValue(raw)

	current := r[col]
	var elems []coltype.Value
	if current.IsArray() {
		elems = append([]coltype.Value(nil), current.Array...)
	}

	switch kind {
	case sqlast.ArrayOpAppend:
		found := false
		for _, e := range elems {
			if coltype.Equal(e, operandValue) {
				found = true
				break
			}
		}
		if !found {
			elems = append(elems, operandValue)
		}
	case sqlast.ArrayOpRemove:
		out := elems[:0:0]
		for _, e := range elems {
			if !coltype.Equal(e, operandValue) {
				out = append(out, e)
			}
		}
		elems = out
	}
	r[col] = coltype.ArrayValue(elems)
	return nil
}

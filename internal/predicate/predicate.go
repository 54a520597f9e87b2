// Package predicate lowers a WHERE expression AST node into a plain Go
// function over a row, the same "compile once, apply per row" shape the
// teacher's validate.go uses when it compiles compileAllowedNamePattern
// once instead of re-parsing a regex per table.
//
// Only the operators the spec lists (equality/inequality/ordering,
// IS [NOT] NULL, IN/NOT IN, AND/OR) are supported; anything else raises
// csverr.KindUnsupportedPredicate rather than silently matching
// everything or nothing.
package predicate

import (
	"github.com/pingcap/tidb/pkg/parser/ast"
	"github.com/pingcap/tidb/pkg/parser/opcode"

	"csvgres/internal/coltype"
	"csvgres/internal/csverr"
	"csvgres/internal/sqlast"
)

// Row is the minimal row shape a predicate evaluates against: a lookup
// from column name to its typed value. rowstore.Row satisfies this via
// its underlying map type.
type Row map[string]coltype.Value

// Func is a compiled predicate, ready to apply per row.
type Func func(Row) bool

// True matches every row, used for an absent WHERE clause.
func True(Row) bool { return true }

// Compile lowers expr into a Func. A nil expr yields True.
func Compile(expr ast.ExprNode) (Func, error) {
	if expr == nil {
		return True, nil
	}
	return compile(expr)
}

func compile(expr ast.ExprNode) (Func, error) {
	switch e := expr.(type) {
	case *ast.BinaryOperationExpr:
		return compileBinary(e)
	case *ast.IsNullExpr:
		return compileIsNull(e)
	case *ast.PatternInExpr:
		return compileIn(e)
	case *ast.ParenthesesExpr:
		return compile(e.Expr)
	default:
		return nil, csverr.UnsupportedPredicatef("unsupported WHERE expression of type %T", expr)
	}
}

func compileBinary(e *ast.BinaryOperationExpr) (Func, error) {
	switch e.Op {
	case opcode.LogicAnd:
		left, err := compile(e.L)
		if err != nil {
			return nil, err
		}
		right, err := compile(e.R)
		if err != nil {
			return nil, err
		}
		return func(r Row) bool { return left(r) && right(r) }, nil
	case opcode.LogicOr:
		left, err := compile(e.L)
		if err != nil {
			return nil, err
		}
		right, err := compile(e.R)
		if err != nil {
			return nil, err
		}
		return func(r Row) bool { return left(r) || right(r) }, nil
	case opcode.EQ, opcode.NE, opcode.GT, opcode.GE, opcode.LT, opcode.LE:
		return compileComparison(e)
	default:
		return nil, csverr.UnsupportedPredicatef("unsupported WHERE operator %s", e.Op)
	}
}

func compileComparison(e *ast.BinaryOperationExpr) (Func, error) {
	col, ok := columnName(e.L)
	lit := e.R
	if !ok {
		col, ok = columnName(e.R)
		lit = e.L
		if !ok {
			return nil, csverr.UnsupportedPredicate("WHERE comparisons must reference a column")
		}
		// Column was on the right; swap the comparison direction.
		return compareRow(col, flip(e.Op), lit)
	}
	return compareRow(col, e.Op, lit)
}

func flip(op opcode.Op) opcode.Op {
	switch op {
	case opcode.GT:
		return opcode.LT
	case opcode.GE:
		return opcode.LE
	case opcode.LT:
		return opcode.GT
	case opcode.LE:
		return opcode.GE
	default:
		return op
	}
}

func compareRow(col string, op opcode.Op, litExpr ast.ExprNode) (Func, error) {
	raw, isNull, isDefault, err := sqlast.Literal(litExpr)
	if err != nil {
		return nil, err
	}
	if isDefault {
		return nil, csverr.UnsupportedPredicate("DEFAULT is not a valid WHERE literal")
	}

	if isNull {
		switch op {
		case opcode.EQ:
			return func(r Row) bool { return r[col].IsNull() }, nil
		case opcode.NE:
			return func(r Row) bool { return !r[col].IsNull() }, nil
		default:
			return nil, csverr.UnsupportedPredicate("NULL only supports = and <>; use IS [NOT] NULL")
		}
	}

	lit := coltype.StringValue(raw)
	switch op {
	case opcode.EQ:
		return func(r Row) bool { return cellEquals(r[col], lit) }, nil
	case opcode.NE:
		return func(r Row) bool { v, ok := r[col]; return !ok || !cellEquals(v, lit) }, nil
	case opcode.GT, opcode.GE, opcode.LT, opcode.LE:
		return func(r Row) bool { return compareOrdered(r[col], lit, op) }, nil
	default:
		return nil, csverr.UnsupportedPredicatef("unsupported comparison operator %s", op)
	}
}

// cellEquals compares a stored cell against a raw literal string,
// coercing the literal to the cell's own representation first so
// "1" = 1 and 'x' = x compare the way a CSV cell naturally would.
func cellEquals(cell coltype.Value, lit coltype.Value) bool {
	switch {
	case cell.IsInt():
		n, err := parseInt(lit.Str)
		return err == nil && cell.Int == n
	case cell.IsFloat():
		f, err := parseFloat(lit.Str)
		return err == nil && cell.Float == f
	case cell.IsBool():
		b, err := parseBool(lit.Str)
		return err == nil && cell.Bool == b
	default:
		return cell.Str == lit.Str
	}
}

func compareOrdered(cell coltype.Value, lit coltype.Value, op opcode.Op) bool {
	var cmp int
	switch {
	case cell.IsInt():
		n, err := parseInt(lit.Str)
		if err != nil {
			return false
		}
		cmp = cmpInt64(cell.Int, n)
	case cell.IsFloat():
		f, err := parseFloat(lit.Str)
		if err != nil {
			return false
		}
		cmp = cmpFloat64(cell.Float, f)
	default:
		cmp = cmpString(cell.Str, lit.Str)
	}
	switch op {
	case opcode.GT:
		return cmp > 0
	case opcode.GE:
		return cmp >= 0
	case opcode.LT:
		return cmp < 0
	case opcode.LE:
		return cmp <= 0
	default:
		return false
	}
}

// compileIn lowers `col IN (v1, ..., vn)` / `col NOT IN (...)` into a
// membership test, the IN(col, v1...vn) predicate spec.md §4.9 describes:
// each list entry is a literal, coerced against the cell's own
// representation the same way a single comparison would be.
func compileIn(e *ast.PatternInExpr) (Func, error) {
	col, ok := columnName(e.Expr)
	if !ok {
		return nil, csverr.UnsupportedPredicate("IN must reference a column")
	}
	lits := make([]coltype.Value, 0, len(e.List))
	for _, item := range e.List {
		raw, isNull, isDefault, err := sqlast.Literal(item)
		if err != nil {
			return nil, err
		}
		if isDefault {
			return nil, csverr.UnsupportedPredicate("DEFAULT is not a valid IN list entry")
		}
		if isNull {
			return nil, csverr.UnsupportedPredicate("NULL is not a valid IN list entry; use IS [NOT] NULL")
		}
		lits = append(lits, coltype.StringValue(raw))
	}
	matches := func(r Row) bool {
		cell := r[col]
		for _, lit := range lits {
			if cellEquals(cell, lit) {
				return true
			}
		}
		return false
	}
	if e.Not {
		return func(r Row) bool { return !matches(r) }, nil
	}
	return matches, nil
}

func compileIsNull(e *ast.IsNullExpr) (Func, error) {
	col, ok := columnName(e.Expr)
	if !ok {
		return nil, csverr.UnsupportedPredicate("IS [NOT] NULL must reference a column")
	}
	if e.Not {
		return func(r Row) bool { return !r[col].IsNull() }, nil
	}
	return func(r Row) bool { return r[col].IsNull() }, nil
}

func columnName(expr ast.ExprNode) (string, bool) {
	colExpr, ok := expr.(*ast.ColumnNameExpr)
	if !ok {
		return "", false
	}
	return colExpr.Name.Name.O, true
}

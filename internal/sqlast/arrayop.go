package sqlast

import (
	"github.com/pingcap/tidb/pkg/parser/ast"
	"github.com/pingcap/tidb/pkg/parser/opcode"
)

// ArrayOpKind distinguishes the two array-algebra forms UPDATE SET
// supports: col = col || value (append) and col = col - value (remove).
type ArrayOpKind int

const (
	ArrayOpNone ArrayOpKind = iota
	ArrayOpAppend
	ArrayOpRemove
)

// ArrayOp inspects an UPDATE SET rhs expression and reports whether it
// is one of the two array operators and, if so, the operand expression
// (the value being appended or removed).
//
// Neither MySQL nor TiDB's grammar has a first-class "||" array-concat
// or array-difference operator: "||" parses as opcode.LogicOr (logical
// OR, unless PIPES_AS_CONCAT is set) and "-" parses as opcode.Minus
// (arithmetic subtraction). This engine repurposes both opcodes for
// array columns rather than adding grammar; a non-array column using
// either operator is rejected by the caller once it sees the column's
// declared type is not ARRAY.
func ArrayOp(colName string, expr ast.ExprNode) (ArrayOpKind, ast.ExprNode, bool) {
	bin, ok := expr.(*ast.BinaryOperationExpr)
	if !ok {
		return ArrayOpNone, nil, false
	}
	left, leftIsCol := columnRef(bin.L)
	if !leftIsCol || left != colName {
		return ArrayOpNone, nil, false
	}
	switch bin.Op {
	case opcode.LogicOr:
		return ArrayOpAppend, bin.R, true
	case opcode.Minus:
		return ArrayOpRemove, bin.R, true
	default:
		return ArrayOpNone, nil, false
	}
}

func columnRef(expr ast.ExprNode) (string, bool) {
	colExpr, ok := expr.(*ast.ColumnNameExpr)
	if !ok {
		return "", false
	}
	return colExpr.Name.Name.O, true
}

// Package sqlast turns SQL text into the handful of statement shapes
// this engine executes, using the same real SQL grammar the teacher
// parses schema dumps with: github.com/pingcap/tidb/pkg/parser. Where
// the teacher type-switches on *ast.CreateTableStmt to build a
// core.Table, this package type-switches on the eight statement kinds
// the engine supports and extracts just the fields each operation
// needs.
package sqlast

import (
	"strings"
	"sync"

	"github.com/pingcap/tidb/pkg/parser"
	"github.com/pingcap/tidb/pkg/parser/ast"
	"github.com/pingcap/tidb/pkg/parser/format"
	_ "github.com/pingcap/tidb/pkg/parser/test_driver"

	"csvgres/internal/csverr"
)

// p is one package-level, long-lived parser, same as the teacher's single
// *parser.Parser field. *parser.Parser is not safe for concurrent use, so
// every call into it holds pMu.
var (
	p   = parser.New()
	pMu sync.Mutex
)

// ParseOne parses sql, which must contain exactly one statement, and
// returns its AST root. Multiple statements or a parse failure are both
// reported as csverr.Parse.
func ParseOne(sql string) (ast.StmtNode, error) {
	trimmed := strings.TrimSpace(sql)
	if trimmed == "" {
		return nil, csverr.Parse("empty statement")
	}
	pMu.Lock()
	stmtNodes, _, err := p.Parse(trimmed, "", "")
	pMu.Unlock()
	if err != nil {
		return nil, csverr.Wrap(csverr.KindParseError, "failed to parse SQL", err)
	}
	if len(stmtNodes) != 1 {
		return nil, csverr.Parsef("expected exactly one statement, got %d", len(stmtNodes))
	}
	return stmtNodes[0], nil
}

// Restore renders an expression node back to SQL text, the same
// format.NewRestoreCtx technique the teacher's exprToString uses to turn
// a DEFAULT/ON UPDATE expression back into a string it can store.
func Restore(expr ast.ExprNode) (string, error) {
	var sb strings.Builder
	ctx := format.NewRestoreCtx(format.DefaultRestoreFlags, &sb)
	if err := expr.Restore(ctx); err != nil {
		return "", csverr.Wrap(csverr.KindParseError, "failed to restore expression", err)
	}
	return strings.TrimSpace(sb.String()), nil
}

// Literal renders expr to its raw textual form and reports whether it is
// the SQL NULL literal or the DEFAULT keyword, so callers can special
// case both before handing the rest to coltype.Coerce.
func Literal(expr ast.ExprNode) (raw string, isNull bool, isDefault bool, err error) {
	if _, ok := expr.(*ast.DefaultExpr); ok {
		return "", false, true, nil
	}
	s, err := Restore(expr)
	if err != nil {
		return "", false, false, err
	}
	if strings.EqualFold(s, "NULL") {
		return "", true, false, nil
	}
	return unquoteStringLiteral(s), false, false, nil
}

// unquoteStringLiteral strips a single layer of SQL single-quoting,
// mirroring the teacher's tryUnquoteSQLStringLiteral: a restored string
// literal still carries its surrounding quotes and doubled-quote
// escaping, which callers storing the raw value do not want to see
// twice (once here, once in coltype.Coerce's own stripQuotes).
func unquoteStringLiteral(s string) string {
	if len(s) >= 2 && s[0] == '\'' && s[len(s)-1] == '\'' {
		return strings.ReplaceAll(s[1:len(s)-1], "''", "'")
	}
	return s
}

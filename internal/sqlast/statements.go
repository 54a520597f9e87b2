package sqlast

import (
	"strings"

	"github.com/pingcap/tidb/pkg/parser/ast"

	"csvgres/internal/csverr"
)

// CreateDatabase is the subset of CREATE DATABASE the engine cares
// about: the target name and whether IF NOT EXISTS was given.
type CreateDatabase struct {
	Name        string
	IfNotExists bool
}

// DropDatabase mirrors CreateDatabase for DROP DATABASE.
type DropDatabase struct {
	Name     string
	IfExists bool
}

// AsCreateDatabase extracts a CreateDatabase, or reports that stmt is
// not a CREATE DATABASE statement.
func AsCreateDatabase(stmt ast.StmtNode) (*CreateDatabase, bool) {
	s, ok := stmt.(*ast.CreateDatabaseStmt)
	if !ok {
		return nil, false
	}
	return &CreateDatabase{Name: s.Name.O, IfNotExists: s.IfNotExists}, true
}

// AsDropDatabase extracts a DropDatabase.
func AsDropDatabase(stmt ast.StmtNode) (*DropDatabase, bool) {
	s, ok := stmt.(*ast.DropDatabaseStmt)
	if !ok {
		return nil, false
	}
	return &DropDatabase{Name: s.Name.O, IfExists: s.IfExists}, true
}

// ColumnDef is one CREATE TABLE column, with the subset of options the
// engine's metadata sidecar records, grounded on the teacher's
// parseColumns switch over ast.ColumnOption kinds.
type ColumnDef struct {
	Name                string
	Type                string
	IsSerial            bool
	NotNull             bool
	PrimaryKey          bool
	Unique              bool
	HasDefault          bool
	DefaultIsArray      bool
	Default             string
	InitialCounterValue int64
}

// CreateTable is the subset of CREATE TABLE the engine cares about.
type CreateTable struct {
	Database    string
	Table       string
	IfNotExists bool
	Columns     []ColumnDef
}

// AsCreateTable extracts a CreateTable, including per-column
// constraints and the SERIAL heuristic: the declared type string
// contains "SERIAL", the same substring check the Python original uses
// (str(col.kind).lower() == "serial") since neither grammar has a
// first-class SERIAL column option.
func AsCreateTable(stmt ast.StmtNode) (*CreateTable, bool, error) {
	s, ok := stmt.(*ast.CreateTableStmt)
	if !ok {
		return nil, false, nil
	}
	ct := &CreateTable{
		Database:    s.Table.Schema.O,
		Table:       s.Table.Name.O,
		IfNotExists: s.IfNotExists,
	}
	for _, colDef := range s.Cols {
		cd := ColumnDef{
			Name: colDef.Name.Name.O,
			Type: columnTypeString(colDef),
		}
		if containsFold(cd.Type, "SERIAL") {
			cd.IsSerial = true
			cd.NotNull = true
			cd.InitialCounterValue = 1
		}
		for _, opt := range colDef.Options {
			switch opt.Tp {
			case ast.ColumnOptionNotNull:
				cd.NotNull = true
			case ast.ColumnOptionNull:
				cd.NotNull = false
			case ast.ColumnOptionPrimaryKey:
				cd.PrimaryKey = true
				cd.NotNull = true
			case ast.ColumnOptionUniqKey:
				cd.Unique = true
			case ast.ColumnOptionAutoIncrement:
				cd.IsSerial = true
			case ast.ColumnOptionDefaultValue:
				raw, isNull, isDefault, err := Literal(opt.Expr)
				if err != nil {
					return nil, true, err
				}
				if !isNull && !isDefault {
					cd.HasDefault = true
					cd.Default = raw
				}
			}
		}
		if containsFold(cd.Type, "ARRAY") && !cd.HasDefault {
			cd.HasDefault = true
			cd.DefaultIsArray = true
		}
		ct.Columns = append(ct.Columns, cd)
	}
	for _, constraint := range s.Constraints {
		switch constraint.Tp {
		case ast.ConstraintPrimaryKey:
			for _, key := range constraint.Keys {
				markColumn(ct.Columns, key.Column.Name.O, func(c *ColumnDef) { c.PrimaryKey = true; c.NotNull = true })
			}
		case ast.ConstraintUniq, ast.ConstraintUniqKey, ast.ConstraintUniqIndex:
			for _, key := range constraint.Keys {
				markColumn(ct.Columns, key.Column.Name.O, func(c *ColumnDef) { c.Unique = true })
			}
		}
	}
	return ct, true, nil
}

func markColumn(cols []ColumnDef, name string, fn func(*ColumnDef)) {
	for i := range cols {
		if cols[i].Name == name {
			fn(&cols[i])
		}
	}
}

func columnTypeString(colDef *ast.ColumnDef) string {
	if colDef.Tp == nil {
		return ""
	}
	return colDef.Tp.String()
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToUpper(s), strings.ToUpper(substr))
}

// DropTable is the subset of DROP TABLE the engine cares about; only
// the first named table is used since the engine drops one table per
// statement.
type DropTable struct {
	Database string
	Table    string
	IfExists bool
}

func AsDropTable(stmt ast.StmtNode) (*DropTable, bool, error) {
	s, ok := stmt.(*ast.DropTableStmt)
	if !ok {
		return nil, false, nil
	}
	if len(s.Tables) == 0 {
		return nil, true, csverr.Parse("DROP TABLE requires a table name")
	}
	t := s.Tables[0]
	return &DropTable{Database: t.Schema.O, Table: t.Name.O, IfExists: s.IfExists}, true, nil
}

// Insert is the subset of INSERT the engine cares about: a single
// target table, an explicit or implicit column list, and one row of
// literal values per VALUES tuple.
type Insert struct {
	Database string
	Table    string
	Columns  []string
	Rows     [][]ast.ExprNode
}

func AsInsert(stmt ast.StmtNode) (*Insert, bool, error) {
	s, ok := stmt.(*ast.InsertStmt)
	if !ok {
		return nil, false, nil
	}
	tableName, err := singleTableName(s.Table)
	if err != nil {
		return nil, true, err
	}
	ins := &Insert{Database: tableName.Schema.O, Table: tableName.Name.O}
	for _, c := range s.Columns {
		ins.Columns = append(ins.Columns, c.Name.O)
	}
	ins.Rows = s.Lists
	return ins, true, nil
}

// Projection is one non-star SELECT projection entry: Column is the
// source column to read, Alias is the "AS alias" name if present. Output
// returns the key the projected value is returned under: the alias if
// present, else the column name (spec.md §4.5 step 3).
type Projection struct {
	Column string
	Alias  string
}

func (p Projection) Output() string {
	if p.Alias != "" {
		return p.Alias
	}
	return p.Column
}

// Select is the subset of SELECT the engine cares about: a single
// source table, a star-or-column projection, and an optional WHERE
// expression (lowered separately by package predicate).
type Select struct {
	Database    string
	Table       string
	Star        bool
	Projections []Projection
	Where       ast.ExprNode
}

// Columns returns the projection's output keys, in projection order; for
// a raw column with no alias that is just the column name.
func (s *Select) Columns() []string {
	cols := make([]string, len(s.Projections))
	for i, p := range s.Projections {
		cols[i] = p.Output()
	}
	return cols
}

func AsSelect(stmt ast.StmtNode) (*Select, bool, error) {
	s, ok := stmt.(*ast.SelectStmt)
	if !ok {
		return nil, false, nil
	}
	tableName, err := tableNameFromRefs(s.From)
	if err != nil {
		return nil, true, err
	}
	sel := &Select{Database: tableName.Schema.O, Table: tableName.Name.O, Where: s.Where}
	if s.Fields == nil || len(s.Fields.Fields) == 0 {
		sel.Star = true
		return sel, true, nil
	}
	for _, f := range s.Fields.Fields {
		if f.WildCard != nil {
			sel.Star = true
			continue
		}
		if colExpr, ok := f.Expr.(*ast.ColumnNameExpr); ok {
			sel.Projections = append(sel.Projections, Projection{
				Column: colExpr.Name.Name.O,
				Alias:  f.AsName.O,
			})
		}
	}
	return sel, true, nil
}

// Assignment is one UPDATE ... SET column = expr entry.
type Assignment struct {
	Column string
	Expr   ast.ExprNode
}

// Update is the subset of UPDATE the engine cares about.
type Update struct {
	Database string
	Table    string
	Set      []Assignment
	Where    ast.ExprNode
}

func AsUpdate(stmt ast.StmtNode) (*Update, bool, error) {
	s, ok := stmt.(*ast.UpdateStmt)
	if !ok {
		return nil, false, nil
	}
	tableName, err := tableNameFromRefs(s.TableRefs)
	if err != nil {
		return nil, true, err
	}
	u := &Update{Database: tableName.Schema.O, Table: tableName.Name.O, Where: s.Where}
	for _, a := range s.List {
		u.Set = append(u.Set, Assignment{Column: a.Column.Name.O, Expr: a.Expr})
	}
	return u, true, nil
}

// Delete is the subset of DELETE the engine cares about.
type Delete struct {
	Database string
	Table    string
	Where    ast.ExprNode
}

func AsDelete(stmt ast.StmtNode) (*Delete, bool, error) {
	s, ok := stmt.(*ast.DeleteStmt)
	if !ok {
		return nil, false, nil
	}
	tableName, err := tableNameFromRefs(s.TableRefs)
	if err != nil {
		return nil, true, err
	}
	return &Delete{Database: tableName.Schema.O, Table: tableName.Name.O, Where: s.Where}, true, nil
}

func singleTableName(refs *ast.TableRefsClause) (*ast.TableName, error) {
	return tableNameFromRefs(refs)
}

func tableNameFromRefs(refs *ast.TableRefsClause) (*ast.TableName, error) {
	if refs == nil || refs.TableRefs == nil {
		return nil, csverr.Parse("statement has no target table")
	}
	src := refs.TableRefs.Left
	if src == nil {
		return nil, csverr.Parse("statement has no target table")
	}
	if t, ok := src.(*ast.TableSource); ok {
		if tn, ok := t.Source.(*ast.TableName); ok {
			return tn, nil
		}
	}
	if tn, ok := src.(*ast.TableName); ok {
		return tn, nil
	}
	return nil, csverr.Parse("unsupported table reference")
}

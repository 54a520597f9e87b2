// Package engine implements the Csvgres controller: the single entry
// point that dispatches a parsed statement (or a non-SQL "\c"/"connect"
// command) to the dbops/tableops/dataops packages against whichever
// database is currently selected.
//
// Grounded on the Python original's Csvgres façade (transformer/controller.py)
// and its current_database state machine (utils/csv_database.py's
// connect_database), and on the teacher's dialect.registry pattern for
// guarding shared mutable state with a sync.RWMutex.
package engine

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"csvgres/internal/coltype"
	"csvgres/internal/csverr"
	"csvgres/internal/dataops"
	"csvgres/internal/dbops"
	"csvgres/internal/ioworker"
	"csvgres/internal/sqlast"
	"csvgres/internal/tableops"
)

// DefaultWorkerPoolSize lets a caller pass 0 to Open and get
// GOMAXPROCS-sized concurrency, the same default ioworker.New applies.
const DefaultWorkerPoolSize = 0

// Csvgres is the engine's single-process controller. One instance owns
// one root directory and one "current database" selection; callers that
// need independent sessions against the same root should each hold
// their own Csvgres (selection is per-controller, not per-root).
type Csvgres struct {
	root string
	pool *ioworker.Pool

	mu      sync.RWMutex
	current string
}

// Open constructs a controller rooted at dir and ensures the directory
// exists, mirroring the original's Csvgres.init(). poolSize <= 0 uses
// ioworker's GOMAXPROCS default.
func Open(dir string, poolSize int) (*Csvgres, error) {
	if err := os.MkdirAll(dir, dbops.DirPerm); err != nil {
		return nil, csverr.IO("failed to create root data directory", err)
	}
	return &Csvgres{root: dir, pool: ioworker.New(poolSize)}, nil
}

// CurrentDatabase returns the selected database name, or "" if none is
// selected yet.
func (c *Csvgres) CurrentDatabase() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current
}

// Result is the outcome of executing one statement: Rows/Columns are
// populated only for SELECT, RowsAffected only for INSERT/UPDATE/DELETE.
type Result struct {
	Columns      []string
	Rows         []map[string]any
	RowsAffected int
	Message      string
}

// IsConnectCommand reports whether line is a "\c db" / "connect db"
// command rather than SQL, so callers (the REPL, exec) can route it to
// Connect instead of Execute.
func IsConnectCommand(line string) bool {
	fields := strings.Fields(strings.TrimSpace(line))
	if len(fields) == 0 {
		return false
	}
	switch fields[0] {
	case `\c`, `\connect`, "c", "connect":
		return true
	default:
		return false
	}
}

// Connect switches the current database, validating the target exists
// and is a directory first. Matches connect_database's exact grammar:
// exactly two whitespace-separated tokens, the first one of
// \c/\connect/c/connect.
func (c *Csvgres) Connect(ctx context.Context, line string) error {
	fields := strings.Fields(strings.TrimSpace(line))
	if len(fields) != 2 || !IsConnectCommand(line) {
		return csverr.Parse(`invalid connect command, use "c dbname" or "connect dbname"`)
	}
	name := fields[1]
	exists, err := dbops.Exists(ctx, c.pool, c.root, name)
	if err != nil {
		return err
	}
	if !exists {
		return csverr.NotFoundf("database %q does not exist", name)
	}
	c.mu.Lock()
	c.current = name
	c.mu.Unlock()
	return nil
}

func (c *Csvgres) requireDatabase(explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.current == "" {
		return "", csverr.Schema("not connected to any database; use connect first")
	}
	return c.current, nil
}

// Execute parses and runs one SQL statement. A statement that names its
// own database (e.g. "CREATE TABLE db.users (...)") uses that database;
// otherwise the currently connected database is used.
func (c *Csvgres) Execute(ctx context.Context, sql string) (*Result, error) {
	stmt, err := sqlast.ParseOne(sql)
	if err != nil {
		return nil, err
	}

	if cd, ok := sqlast.AsCreateDatabase(stmt); ok {
		if err := dbops.CreateDatabase(ctx, c.pool, c.root, cd.Name, cd.IfNotExists); err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.current = cd.Name
		c.mu.Unlock()
		return &Result{Message: "database created"}, nil
	}

	if dd, ok := sqlast.AsDropDatabase(stmt); ok {
		if err := dbops.DropDatabase(ctx, c.pool, c.root, dd.Name, dd.IfExists); err != nil {
			return nil, err
		}
		c.mu.Lock()
		if c.current == dd.Name {
			c.current = ""
		}
		c.mu.Unlock()
		return &Result{Message: "database dropped"}, nil
	}

	if ct, ok, err := sqlast.AsCreateTable(stmt); ok {
		if err != nil {
			return nil, err
		}
		dbName, err := c.requireDatabase(ct.Database)
		if err != nil {
			return nil, err
		}
		if err := tableops.CreateTable(ctx, c.pool, c.databaseDir(dbName), ct); err != nil {
			return nil, err
		}
		return &Result{Message: "table created"}, nil
	}

	if dt, ok, err := sqlast.AsDropTable(stmt); ok {
		if err != nil {
			return nil, err
		}
		dbName, err := c.requireDatabase(dt.Database)
		if err != nil {
			return nil, err
		}
		if err := tableops.DropTable(ctx, c.pool, c.databaseDir(dbName), dt.Table, dt.IfExists); err != nil {
			return nil, err
		}
		return &Result{Message: "table dropped"}, nil
	}

	if ins, ok, err := sqlast.AsInsert(stmt); ok {
		if err != nil {
			return nil, err
		}
		dbName, err := c.requireDatabase(ins.Database)
		if err != nil {
			return nil, err
		}
		n, err := dataops.Insert(ctx, c.pool, c.databaseDir(dbName), ins)
		if err != nil {
			return nil, err
		}
		return &Result{RowsAffected: n, Message: "rows inserted"}, nil
	}

	if sel, ok, err := sqlast.AsSelect(stmt); ok {
		if err != nil {
			return nil, err
		}
		dbName, err := c.requireDatabase(sel.Database)
		if err != nil {
			return nil, err
		}
		cols, rows, err := dataops.Select(ctx, c.pool, c.databaseDir(dbName), sel)
		if err != nil {
			return nil, err
		}
		return &Result{Columns: cols, Rows: toNativeRows(cols, rows)}, nil
	}

	if upd, ok, err := sqlast.AsUpdate(stmt); ok {
		if err != nil {
			return nil, err
		}
		dbName, err := c.requireDatabase(upd.Database)
		if err != nil {
			return nil, err
		}
		n, err := dataops.Update(ctx, c.pool, c.databaseDir(dbName), upd)
		if err != nil {
			return nil, err
		}
		return &Result{RowsAffected: n, Message: "rows updated"}, nil
	}

	if del, ok, err := sqlast.AsDelete(stmt); ok {
		if err != nil {
			return nil, err
		}
		dbName, err := c.requireDatabase(del.Database)
		if err != nil {
			return nil, err
		}
		n, err := dataops.Delete(ctx, c.pool, c.databaseDir(dbName), del)
		if err != nil {
			return nil, err
		}
		return &Result{RowsAffected: n, Message: "rows deleted"}, nil
	}

	return nil, csverr.Parsef("unsupported statement")
}

func (c *Csvgres) databaseDir(name string) string {
	return filepath.Join(c.root, name)
}

func toNativeRows(cols []string, rows []dataopsRow) []map[string]any {
	out := make([]map[string]any, 0, len(rows))
	for _, r := range rows {
		m := make(map[string]any, len(cols))
		for _, col := range cols {
			m[col] = valueNative(r, col)
		}
		out = append(out, m)
	}
	return out
}

// dataopsRow mirrors dataops' row alias locally, since dataops does not
// export it under that name.
type dataopsRow = map[string]coltype.Value

func valueNative(r dataopsRow, col string) any {
	v, ok := r[col]
	if !ok {
		return nil
	}
	return v.Native()
}

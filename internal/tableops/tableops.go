// Package tableops implements CREATE TABLE / DROP TABLE: each table is
// a CSV rows file under <database>/tables/ plus a JSON metadata sidecar
// under <database>/.metadata/, written together. Grounded on the Python
// original's TableOperations.create_table/drop_table, which builds both
// paths from the same table name and runs the CSV write and the
// metadata write concurrently via asyncio.gather — here that becomes
// ioworker.Parallel over the same two writes.
package tableops

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"csvgres/internal/csverr"
	"csvgres/internal/dbops"
	"csvgres/internal/ioworker"
	"csvgres/internal/metastore"
	"csvgres/internal/rowstore"
	"csvgres/internal/sqlast"
)

// Layout resolves the directory and file paths for one table within a
// database directory, matching the original's tables/ and .metadata/
// subdirectories.
type Layout struct {
	DatabaseDir string
	TablesDir   string
	MetadataDir string
	CSVPath     string
	MetaPath    string
}

func NewLayout(databaseDir, table string) Layout {
	tablesDir := filepath.Join(databaseDir, "tables")
	metadataDir := filepath.Join(databaseDir, ".metadata")
	return Layout{
		DatabaseDir: databaseDir,
		TablesDir:   tablesDir,
		MetadataDir: metadataDir,
		CSVPath:     filepath.Join(tablesDir, table+".csv"),
		MetaPath:    filepath.Join(metadataDir, table+".json"),
	}
}

// BuildMetadata converts the parsed CREATE TABLE column list into the
// engine's persisted Metadata shape, in declaration order.
func BuildMetadata(ct *sqlast.CreateTable) *metastore.Metadata {
	m := metastore.New()
	for _, col := range ct.Columns {
		cm := &metastore.ColumnMeta{Type: col.Type}
		isArray := containsArray(col.Type)
		if isArray {
			cm.ArrayType = arrayElementType(col.Type)
		}
		if col.IsSerial {
			cm.IsSerial = true
			initial := col.InitialCounterValue
			if initial == 0 {
				initial = 1
			}
			cm.InitialCounterValue = initial
			cm.AutoIncrementCounter = initial
		}
		if col.PrimaryKey {
			cm.PrimaryKey = true
		} else if col.NotNull {
			cm.NotNull = true
		}
		if !col.PrimaryKey && col.Unique {
			cm.Unique = true
		}
		if col.HasDefault && !col.IsSerial {
			if col.DefaultIsArray {
				cm.Default = metastore.ArrayDefault()
			} else {
				cm.Default = metastore.StringDefault(col.Default)
			}
		}
		m.Add(col.Name, cm)
	}
	return m
}

func containsArray(declared string) bool {
	return strings.Contains(strings.ToUpper(declared), "ARRAY")
}

// arrayElementType extracts the element type from a declared type like
// "INT ARRAY" or "ARRAY<INT>"; unparsed forms fall back to "TEXT".
func arrayElementType(declared string) string {
	upper := strings.ToUpper(strings.TrimSpace(declared))
	if strings.HasPrefix(upper, "ARRAY<") && strings.HasSuffix(upper, ">") {
		return strings.TrimSpace(upper[len("ARRAY<") : len(upper)-1])
	}
	if idx := strings.Index(upper, "ARRAY"); idx > 0 {
		return strings.TrimSpace(upper[:idx])
	}
	return "TEXT"
}

// CreateTable creates the tables/ and .metadata/ directories if needed,
// then writes the empty CSV header and the metadata sidecar in
// parallel. Fails with AlreadyExists if the table's CSV already exists.
func CreateTable(ctx context.Context, pool *ioworker.Pool, databaseDir string, ct *sqlast.CreateTable) error {
	layout := NewLayout(databaseDir, ct.Table)

	exists, err := fileExists(ctx, pool, layout.CSVPath)
	if err != nil {
		return err
	}
	if exists {
		if ct.IfNotExists {
			return nil
		}
		return csverr.AlreadyExistsf("table %q already exists", ct.Table)
	}

	if err := ioworker.SubmitVoid(ctx, pool, func() error {
		if err := os.MkdirAll(layout.TablesDir, dbops.DirPerm); err != nil {
			return csverr.IO("failed to create tables directory", err)
		}
		if err := os.MkdirAll(layout.MetadataDir, dbops.DirPerm); err != nil {
			return csverr.IO("failed to create metadata directory", err)
		}
		return nil
	}); err != nil {
		return err
	}

	meta := BuildMetadata(ct)

	return ioworker.Parallel(ctx, pool,
		func() error { return rowstore.WriteEmpty(ctx, pool, layout.CSVPath, meta.Columns()) },
		func() error { return metastore.Save(ctx, pool, layout.MetaPath, meta) },
	)
}

// DropTable removes a table's CSV and metadata sidecar.
func DropTable(ctx context.Context, pool *ioworker.Pool, databaseDir, table string, ifExists bool) error {
	layout := NewLayout(databaseDir, table)

	exists, err := fileExists(ctx, pool, layout.CSVPath)
	if err != nil {
		return err
	}
	if !exists {
		if ifExists {
			return nil
		}
		return csverr.NotFoundf("table %q does not exist", table)
	}

	return ioworker.Parallel(ctx, pool,
		func() error { return removeIfExists(ctx, pool, layout.CSVPath) },
		func() error { return removeIfExists(ctx, pool, layout.MetaPath) },
	)
}

func fileExists(ctx context.Context, pool *ioworker.Pool, path string) (bool, error) {
	return ioworker.Submit(ctx, pool, func() (bool, error) {
		_, err := os.Stat(path)
		if err == nil {
			return true, nil
		}
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, csverr.IO("failed to stat table file", err)
	})
}

func removeIfExists(ctx context.Context, pool *ioworker.Pool, path string) error {
	return ioworker.SubmitVoid(ctx, pool, func() error {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return csverr.IO("failed to remove file", err)
		}
		return nil
	})
}

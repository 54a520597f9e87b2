// Package dbops implements CREATE DATABASE / DROP DATABASE: each
// database is one directory under the engine's root. Grounded on the
// Python original's DatabaseOperations.create_database/drop_database
// (os.makedirs/shutil.rmtree dispatched to a thread pool), translated
// to os.MkdirAll/os.RemoveAll dispatched onto the engine's ioworker.Pool.
package dbops

import (
	"context"
	"os"
	"path/filepath"

	"csvgres/internal/csverr"
	"csvgres/internal/ioworker"
)

// DirPerm is the mode new database and table directories are created
// with, matching the original's os.makedirs(mode=0o755).
const DirPerm = 0o755

// CreateDatabase creates root/name as a new directory. ifNotExists
// suppresses the AlreadyExists error when the directory is already
// present, mirroring CREATE DATABASE IF NOT EXISTS.
func CreateDatabase(ctx context.Context, pool *ioworker.Pool, root, name string, ifNotExists bool) error {
	path := filepath.Join(root, name)
	return ioworker.SubmitVoid(ctx, pool, func() error {
		if _, err := os.Stat(path); err == nil {
			if ifNotExists {
				return nil
			}
			return csverr.AlreadyExistsf("database %q already exists", name)
		}
		if err := os.MkdirAll(path, DirPerm); err != nil {
			return csverr.IO("failed to create database directory", err)
		}
		return nil
	})
}

// DropDatabase removes root/name and everything under it. ifExists
// suppresses the NotFound error when the directory is already absent.
func DropDatabase(ctx context.Context, pool *ioworker.Pool, root, name string, ifExists bool) error {
	path := filepath.Join(root, name)
	return ioworker.SubmitVoid(ctx, pool, func() error {
		if _, err := os.Stat(path); err != nil {
			if os.IsNotExist(err) {
				if ifExists {
					return nil
				}
				return csverr.NotFoundf("database %q does not exist", name)
			}
			return csverr.IO("failed to stat database directory", err)
		}
		if err := os.RemoveAll(path); err != nil {
			return csverr.IO("failed to remove database directory", err)
		}
		return nil
	})
}

// Exists reports whether root/name is a database directory, used by the
// \c / connect state machine to validate its target before switching.
func Exists(ctx context.Context, pool *ioworker.Pool, root, name string) (bool, error) {
	path := filepath.Join(root, name)
	return ioworker.Submit(ctx, pool, func() (bool, error) {
		info, err := os.Stat(path)
		if err != nil {
			if os.IsNotExist(err) {
				return false, nil
			}
			return false, csverr.IO("failed to stat database directory", err)
		}
		return info.IsDir(), nil
	})
}

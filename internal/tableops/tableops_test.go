package tableops_test

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"

	"csvgres/internal/csverr"
	"csvgres/internal/ioworker"
	"csvgres/internal/sqlast"
	"csvgres/internal/tableops"
)

func TestCreateAndDropTable(t *testing.T) {
	dir := t.TempDir()
	pool := ioworker.New(2)
	ctx := context.Background()

	stmt, err := sqlast.ParseOne(`CREATE TABLE users (
		id SERIAL PRIMARY KEY,
		email VARCHAR(255) NOT NULL UNIQUE,
		tags ARRAY
	)`)
	assert.NoError(t, err)
	ct, ok, err := sqlast.AsCreateTable(stmt)
	assert.NoError(t, err)
	assert.True(t, ok)

	t.Run("creates the CSV and metadata sidecar", func(t *testing.T) {
		assert.NoError(t, tableops.CreateTable(ctx, pool, dir, ct))
		layout := tableops.NewLayout(dir, "users")
		_, err := os.Stat(layout.CSVPath)
		assert.NoError(t, err)
		_, err = os.Stat(layout.MetaPath)
		assert.NoError(t, err)
	})

	t.Run("rejects a duplicate table", func(t *testing.T) {
		err := tableops.CreateTable(ctx, pool, dir, ct)
		assert.Error(t, err)
		kind, ok := csverr.Of(err)
		assert.True(t, ok)
		assert.Equal(t, csverr.KindAlreadyExists, kind)
	})

	t.Run("BuildMetadata records the SERIAL, PRIMARY KEY and UNIQUE flags", func(t *testing.T) {
		meta := tableops.BuildMetadata(ct)
		idMeta, ok := meta.Get("id")
		assert.True(t, ok)
		assert.True(t, idMeta.IsSerial)
		assert.True(t, idMeta.PrimaryKey)

		emailMeta, ok := meta.Get("email")
		assert.True(t, ok)
		assert.True(t, emailMeta.Unique)

		tagsMeta, ok := meta.Get("tags")
		assert.True(t, ok)
		assert.NotNil(t, tagsMeta.Default)
		assert.True(t, tagsMeta.Default.IsArray)
	})

	t.Run("DropTable removes both files", func(t *testing.T) {
		assert.NoError(t, tableops.DropTable(ctx, pool, dir, "users", false))
		layout := tableops.NewLayout(dir, "users")
		_, err := os.Stat(layout.CSVPath)
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("DropTable without IF EXISTS reports NotFound", func(t *testing.T) {
		err := tableops.DropTable(ctx, pool, dir, "users", false)
		assert.Error(t, err)
		kind, ok := csverr.Of(err)
		assert.True(t, ok)
		assert.Equal(t, csverr.KindNotFound, kind)
	})
}

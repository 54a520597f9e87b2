package metastore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"csvgres/internal/csverr"
	"csvgres/internal/ioworker"
)

func TestMetadataOrderPreservation(t *testing.T) {
	t.Run("JSON round trip preserves column declaration order", func(t *testing.T) {
		m := New()
		m.Add("id", &ColumnMeta{Type: "INT", IsSerial: true, PrimaryKey: true})
		m.Add("name", &ColumnMeta{Type: "VARCHAR(255)", NotNull: true})
		m.Add("tags", &ColumnMeta{Type: "ARRAY", ArrayType: "TEXT", Default: ArrayDefault()})

		data, err := m.MarshalJSON()
		assert.NoError(t, err)

		var reloaded Metadata
		assert.NoError(t, reloaded.UnmarshalJSON(data))
		assert.Equal(t, []string{"id", "name", "tags"}, reloaded.Columns())

		tagsMeta, ok := reloaded.Get("tags")
		assert.True(t, ok)
		assert.True(t, tagsMeta.Default.IsArray)
	})

	t.Run("encodes with two-space indentation", func(t *testing.T) {
		m := New()
		m.Add("id", &ColumnMeta{Type: "INT"})
		data, err := m.MarshalJSON()
		assert.NoError(t, err)
		assert.Contains(t, string(data), "\n  \"columns\"")
	})
}

func TestLoadSave(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "users.json")
	pool := ioworker.New(2)
	ctx := context.Background()

	t.Run("Load reports NotFound for a missing sidecar", func(t *testing.T) {
		_, err := Load(ctx, pool, path)
		kind, ok := csverr.Of(err)
		assert.True(t, ok)
		assert.Equal(t, csverr.KindNotFound, kind)
	})

	t.Run("Save then Load round trips", func(t *testing.T) {
		m := New()
		m.Add("id", &ColumnMeta{Type: "INT", IsSerial: true})
		assert.NoError(t, Save(ctx, pool, path, m))

		loaded, err := Load(ctx, pool, path)
		assert.NoError(t, err)
		assert.Equal(t, 1, loaded.Len())

		raw, err := os.ReadFile(path)
		assert.NoError(t, err)
		assert.Contains(t, string(raw), "is_serial")
	})
}

package sqlast_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"csvgres/internal/sqlast"
)

func TestParseOne(t *testing.T) {
	t.Run("rejects empty input", func(t *testing.T) {
		_, err := sqlast.ParseOne("   ")
		assert.Error(t, err)
	})

	t.Run("rejects multiple statements", func(t *testing.T) {
		_, err := sqlast.ParseOne("SELECT 1; SELECT 2;")
		assert.Error(t, err)
	})

	t.Run("parses a single statement", func(t *testing.T) {
		stmt, err := sqlast.ParseOne("CREATE DATABASE shop")
		assert.NoError(t, err)
		assert.NotNil(t, stmt)
	})
}

func TestAsCreateDatabase(t *testing.T) {
	stmt, err := sqlast.ParseOne("CREATE DATABASE IF NOT EXISTS shop")
	assert.NoError(t, err)
	cd, ok := sqlast.AsCreateDatabase(stmt)
	assert.True(t, ok)
	assert.Equal(t, "shop", cd.Name)
	assert.True(t, cd.IfNotExists)
}

func TestAsDropDatabase(t *testing.T) {
	stmt, err := sqlast.ParseOne("DROP DATABASE IF EXISTS shop")
	assert.NoError(t, err)
	dd, ok := sqlast.AsDropDatabase(stmt)
	assert.True(t, ok)
	assert.Equal(t, "shop", dd.Name)
	assert.True(t, dd.IfExists)
}

func TestAsCreateTable(t *testing.T) {
	t.Run("extracts SERIAL, PRIMARY KEY and NOT NULL columns", func(t *testing.T) {
		stmt, err := sqlast.ParseOne(`CREATE TABLE users (
			id SERIAL PRIMARY KEY,
			email VARCHAR(255) NOT NULL UNIQUE,
			bio TEXT DEFAULT 'n/a'
		)`)
		assert.NoError(t, err)
		ct, ok, err := sqlast.AsCreateTable(stmt)
		assert.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "users", ct.Table)
		assert.Len(t, ct.Columns, 3)

		id := ct.Columns[0]
		assert.True(t, id.IsSerial)
		assert.True(t, id.PrimaryKey)
		assert.True(t, id.NotNull)

		email := ct.Columns[1]
		assert.True(t, email.NotNull)
		assert.True(t, email.Unique)

		bio := ct.Columns[2]
		assert.True(t, bio.HasDefault)
		assert.Equal(t, "n/a", bio.Default)
	})

	t.Run("table-level PRIMARY KEY constraint marks the column", func(t *testing.T) {
		stmt, err := sqlast.ParseOne(`CREATE TABLE orders (id INT, PRIMARY KEY (id))`)
		assert.NoError(t, err)
		ct, ok, err := sqlast.AsCreateTable(stmt)
		assert.NoError(t, err)
		assert.True(t, ok)
		assert.True(t, ct.Columns[0].PrimaryKey)
		assert.True(t, ct.Columns[0].NotNull)
	})
}

func TestAsInsert(t *testing.T) {
	stmt, err := sqlast.ParseOne("INSERT INTO users (id, email) VALUES (1, 'a@b.com')")
	assert.NoError(t, err)
	ins, ok, err := sqlast.AsInsert(stmt)
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "users", ins.Table)
	assert.Equal(t, []string{"id", "email"}, ins.Columns)
	assert.Len(t, ins.Rows, 1)
	assert.Len(t, ins.Rows[0], 2)
}

func TestAsSelect(t *testing.T) {
	t.Run("star projection", func(t *testing.T) {
		stmt, err := sqlast.ParseOne("SELECT * FROM users")
		assert.NoError(t, err)
		sel, ok, err := sqlast.AsSelect(stmt)
		assert.NoError(t, err)
		assert.True(t, ok)
		assert.True(t, sel.Star)
	})

	t.Run("column projection", func(t *testing.T) {
		stmt, err := sqlast.ParseOne("SELECT id, email FROM users")
		assert.NoError(t, err)
		sel, ok, err := sqlast.AsSelect(stmt)
		assert.NoError(t, err)
		assert.True(t, ok)
		assert.False(t, sel.Star)
		assert.Equal(t, []string{"id", "email"}, sel.Columns())
	})

	t.Run("aliased projection returns the alias as the output key", func(t *testing.T) {
		stmt, err := sqlast.ParseOne("SELECT email AS contact FROM users")
		assert.NoError(t, err)
		sel, ok, err := sqlast.AsSelect(stmt)
		assert.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, []string{"contact"}, sel.Columns())
		assert.Equal(t, "email", sel.Projections[0].Column)
	})
}

func TestAsUpdate(t *testing.T) {
	stmt, err := sqlast.ParseOne("UPDATE users SET email = 'new@b.com' WHERE id = 1")
	assert.NoError(t, err)
	upd, ok, err := sqlast.AsUpdate(stmt)
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "users", upd.Table)
	assert.Len(t, upd.Set, 1)
	assert.Equal(t, "email", upd.Set[0].Column)
	assert.NotNil(t, upd.Where)
}

func TestAsDelete(t *testing.T) {
	stmt, err := sqlast.ParseOne("DELETE FROM users WHERE id = 1")
	assert.NoError(t, err)
	del, ok, err := sqlast.AsDelete(stmt)
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "users", del.Table)
	assert.NotNil(t, del.Where)
}

func TestArrayOp(t *testing.T) {
	t.Run("|| is append", func(t *testing.T) {
		stmt, err := sqlast.ParseOne("UPDATE users SET tags = tags || 'vip'")
		assert.NoError(t, err)
		upd, ok, err := sqlast.AsUpdate(stmt)
		assert.NoError(t, err)
		assert.True(t, ok)
		kind, _, isArrayOp := sqlast.ArrayOp("tags", upd.Set[0].Expr)
		assert.True(t, isArrayOp)
		assert.Equal(t, sqlast.ArrayOpAppend, kind)
	})

	t.Run("- is remove", func(t *testing.T) {
		stmt, err := sqlast.ParseOne("UPDATE users SET tags = tags - 'vip'")
		assert.NoError(t, err)
		upd, ok, err := sqlast.AsUpdate(stmt)
		assert.NoError(t, err)
		assert.True(t, ok)
		kind, _, isArrayOp := sqlast.ArrayOp("tags", upd.Set[0].Expr)
		assert.True(t, isArrayOp)
		assert.Equal(t, sqlast.ArrayOpRemove, kind)
	})

	t.Run("plain assignment is not an array op", func(t *testing.T) {
		stmt, err := sqlast.ParseOne("UPDATE users SET email = 'x@y.com'")
		assert.NoError(t, err)
		upd, ok, err := sqlast.AsUpdate(stmt)
		assert.NoError(t, err)
		assert.True(t, ok)
		_, _, isArrayOp := sqlast.ArrayOp("email", upd.Set[0].Expr)
		assert.False(t, isArrayOp)
	})
}

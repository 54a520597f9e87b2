package predicate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"csvgres/internal/coltype"
	"csvgres/internal/csverr"
	"csvgres/internal/predicate"
	"csvgres/internal/sqlast"
)

func whereOf(t *testing.T, sql string) predicate.Func {
	t.Helper()
	stmt, err := sqlast.ParseOne(sql)
	assert.NoError(t, err)
	sel, ok, err := sqlast.AsSelect(stmt)
	assert.NoError(t, err)
	assert.True(t, ok)
	fn, err := predicate.Compile(sel.Where)
	assert.NoError(t, err)
	return fn
}

func TestCompileComparisons(t *testing.T) {
	row := predicate.Row{
		"age":  coltype.IntValue(30),
		"name": coltype.StringValue("alice"),
	}

	t.Run("equality on int column", func(t *testing.T) {
		fn := whereOf(t, "SELECT * FROM t WHERE age = 30")
		assert.True(t, fn(row))
	})

	t.Run("inequality", func(t *testing.T) {
		fn := whereOf(t, "SELECT * FROM t WHERE age <> 30")
		assert.False(t, fn(row))
	})

	t.Run("ordering", func(t *testing.T) {
		fn := whereOf(t, "SELECT * FROM t WHERE age > 18")
		assert.True(t, fn(row))
		fn = whereOf(t, "SELECT * FROM t WHERE age < 18")
		assert.False(t, fn(row))
	})

	t.Run("string equality", func(t *testing.T) {
		fn := whereOf(t, "SELECT * FROM t WHERE name = 'alice'")
		assert.True(t, fn(row))
	})

	t.Run("AND combines two comparisons", func(t *testing.T) {
		fn := whereOf(t, "SELECT * FROM t WHERE age > 18 AND name = 'alice'")
		assert.True(t, fn(row))
	})

	t.Run("literal-first comparisons flip the operator", func(t *testing.T) {
		fn := whereOf(t, "SELECT * FROM t WHERE 18 < age")
		assert.True(t, fn(row))
	})
}

func TestCompileIsNull(t *testing.T) {
	rowWithNull := predicate.Row{"email": coltype.NullValue()}
	rowWithValue := predicate.Row{"email": coltype.StringValue("a@b.com")}

	t.Run("IS NULL", func(t *testing.T) {
		fn := whereOf(t, "SELECT * FROM t WHERE email IS NULL")
		assert.True(t, fn(rowWithNull))
		assert.False(t, fn(rowWithValue))
	})

	t.Run("IS NOT NULL", func(t *testing.T) {
		fn := whereOf(t, "SELECT * FROM t WHERE email IS NOT NULL")
		assert.False(t, fn(rowWithNull))
		assert.True(t, fn(rowWithValue))
	})
}

func TestCompileIn(t *testing.T) {
	row := predicate.Row{
		"id":   coltype.IntValue(2),
		"name": coltype.StringValue("bob"),
	}

	t.Run("IN matches one of the listed values", func(t *testing.T) {
		fn := whereOf(t, "SELECT * FROM t WHERE id IN (1, 2, 3)")
		assert.True(t, fn(row))
		fn = whereOf(t, "SELECT * FROM t WHERE id IN (4, 5)")
		assert.False(t, fn(row))
	})

	t.Run("IN matches string entries", func(t *testing.T) {
		fn := whereOf(t, "SELECT * FROM t WHERE name IN ('alice', 'bob')")
		assert.True(t, fn(row))
	})

	t.Run("NOT IN negates the membership test", func(t *testing.T) {
		fn := whereOf(t, "SELECT * FROM t WHERE id NOT IN (1, 2, 3)")
		assert.False(t, fn(row))
		fn = whereOf(t, "SELECT * FROM t WHERE id NOT IN (4, 5)")
		assert.True(t, fn(row))
	})
}

func TestCompileUnsupported(t *testing.T) {
	t.Run("LIKE is rejected as unsupported", func(t *testing.T) {
		stmt, err := sqlast.ParseOne("SELECT * FROM t WHERE name LIKE 'a%'")
		assert.NoError(t, err)
		sel, ok, err := sqlast.AsSelect(stmt)
		assert.NoError(t, err)
		assert.True(t, ok)
		_, err = predicate.Compile(sel.Where)
		assert.Error(t, err)
		kind, ok := csverr.Of(err)
		assert.True(t, ok)
		assert.Equal(t, csverr.KindUnsupportedPredicate, kind)
	})
}

package coltype

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValueStringRoundTrip(t *testing.T) {
	t.Run("int", func(t *testing.T) {
		v := IntValue(42)
		assert.Equal(t, "42", v.String())
	})

	t.Run("float", func(t *testing.T) {
		v := FloatValue(3.5)
		assert.Equal(t, "3.5", v.String())
	})

	t.Run("null renders empty", func(t *testing.T) {
		v := NullValue()
		assert.Equal(t, "", v.String())
		assert.True(t, v.IsNull())
	})

	t.Run("string passthrough", func(t *testing.T) {
		v := StringValue("hello")
		assert.Equal(t, "hello", v.String())
	})
}

func TestFormatAndParseArray(t *testing.T) {
	t.Run("round trips string elements", func(t *testing.T) {
		elems := []Value{StringValue("a"), StringValue("b")}
		s := FormatArray(elems)
		assert.Equal(t, "['a', 'b']", s)

		parsed, err := ParseArray(s)
		assert.NoError(t, err)
		assert.Len(t, parsed, 2)
		assert.True(t, Equal(parsed[0], StringValue("a")))
		assert.True(t, Equal(parsed[1], StringValue("b")))
	})

	t.Run("empty array forms", func(t *testing.T) {
		parsed, err := ParseArray("")
		assert.NoError(t, err)
		assert.Empty(t, parsed)

		parsed, err = ParseArray("[]")
		assert.NoError(t, err)
		assert.Empty(t, parsed)
	})

	t.Run("mixed numeric elements", func(t *testing.T) {
		parsed, err := ParseArray("[1, 2.5, 'x']")
		assert.NoError(t, err)
		assert.True(t, parsed[0].IsInt())
		assert.True(t, parsed[1].IsFloat())
		assert.True(t, parsed[2].IsString())
	})

	t.Run("malformed literal rejected", func(t *testing.T) {
		_, err := ParseArray("not an array")
		assert.Error(t, err)
	})

	t.Run("element containing a comma stays whole", func(t *testing.T) {
		parsed, err := ParseArray("['a,b', 'c']")
		assert.NoError(t, err)
		assert.Len(t, parsed, 2)
		assert.Equal(t, "a,b", parsed[0].Str)
	})
}

func TestEqual(t *testing.T) {
	t.Run("cross int/float numeric equality", func(t *testing.T) {
		assert.True(t, Equal(IntValue(2), FloatValue(2.0)))
	})

	t.Run("nulls only equal each other", func(t *testing.T) {
		assert.True(t, Equal(NullValue(), NullValue()))
		assert.False(t, Equal(NullValue(), IntValue(0)))
	})

	t.Run("arrays compare elementwise", func(t *testing.T) {
		a := ArrayValue([]Value{IntValue(1), StringValue("x")})
		b := ArrayValue([]Value{IntValue(1), StringValue("x")})
		c := ArrayValue([]Value{IntValue(1), StringValue("y")})
		assert.True(t, Equal(a, b))
		assert.False(t, Equal(a, c))
	})
}

// Package coltype implements the engine's typed value model: the single
// Value sum type every cell round-trips through, the column-type coercion
// rules of a column's declared SQL type, and the one helper that parses
// and prints the textual array literal form. Keeping all three in one
// package is deliberate (see the design note in the array storage
// section of the spec this engine implements): the CSV round-trip
// invariant only holds if encoding and decoding never diverge, so both
// directions live next to each other here.
package coltype

import (
	"fmt"
	"strconv"
	"strings"
)

// Value is the dynamic value every row cell holds. Exactly one of the
// typed fields is meaningful; Null reports the SQL NULL case, which is
// distinct from an empty string.
type Value struct {
	Null   bool
	Int    int64
	Float  float64
	Str    string
	Bool   bool
	Array  []Value
	kind    kind
}

type kind int

const (
	kindNull kind = iota
	kindInt
	kindFloat
	kindString
	kindBool
	kindArray
)

func NullValue() Value       { return Value{Null: true, kind: kindNull} }
func IntValue(v int64) Value { return Value{Int: v, kind: kindInt} }
func FloatValue(v float64) Value { return Value{Float: v, kind: kindFloat} }
func StringValue(v string) Value { return Value{Str: v, kind: kindString} }
func BoolValue(v bool) Value     { return Value{Bool: v, kind: kindBool} }
func ArrayValue(v []Value) Value { return Value{Array: v, kind: kindArray} }

func (v Value) IsNull() bool  { return v.kind == kindNull || v.Null }
func (v Value) IsInt() bool   { return v.kind == kindInt }
func (v Value) IsFloat() bool { return v.kind == kindFloat }
func (v Value) IsString() bool { return v.kind == kindString }
func (v Value) IsBool() bool  { return v.kind == kindBool }
func (v Value) IsArray() bool { return v.kind == kindArray }

// Native returns the value as a plain Go value (nil, int64, float64,
// string, bool, or []any), used when handing rows to callers that want
// idiomatic Go types instead of the Value wrapper (e.g. the SELECT result
// set).
func (v Value) Native() any {
	switch {
	case v.IsNull():
		return nil
	case v.IsInt():
		return v.Int
	case v.IsFloat():
		return v.Float
	case v.IsString():
		return v.Str
	case v.IsBool():
		return v.Bool
	case v.IsArray():
		out := make([]any, len(v.Array))
		for i, e := range v.Array {
			out[i] = e.Native()
		}
		return out
	default:
		return nil
	}
}

// String renders the value the way it is stored in a CSV cell.
func (v Value) String() string {
	switch {
	case v.IsNull():
		return ""
	case v.IsInt():
		return strconv.FormatInt(v.Int, 10)
	case v.IsFloat():
		return strconv.FormatFloat(v.Float, 'f', -1, 64)
	case v.IsString():
		return v.Str
	case v.IsBool():
		return strconv.FormatBool(v.Bool)
	case v.IsArray():
		return FormatArray(v.Array)
	default:
		return ""
	}
}

// FormatArray renders an array value in the engine's one well-known
// textual list form: ['a', 'b']. Non-string elements are printed without
// quotes. This is the single place that produces the form; ParseArray is
// the single place that consumes it.
func FormatArray(elems []Value) string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, e := range elems {
		if i > 0 {
			sb.WriteString(", ")
		}
		if e.IsString() {
			sb.WriteByte('\'')
			sb.WriteString(strings.ReplaceAll(e.Str, "'", "\\'"))
			sb.WriteByte('\'')
		} else {
			sb.WriteString(e.String())
		}
	}
	sb.WriteByte(']')
	return sb.String()
}

// ParseArray parses the engine's textual list form back into a []Value.
// A blank cell or the literal "[]" both mean the empty array. Malformed
// cells are rejected as TypeError by the caller (coerce.go), per the
// spec's array-storage design note: confine all parsing to one helper
// and reject malformed cells rather than guessing.
func ParseArray(s string) ([]Value, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "[]" {
		return []Value{}, nil
	}
	if len(s) < 2 || s[0] != '[' || s[len(s)-1] != ']' {
		return nil, fmt.Errorf("malformed array literal %q", s)
	}
	inner := s[1 : len(s)-1]
	elems, err := splitArrayElements(inner)
	if err != nil {
		return nil, err
	}
	out := make([]Value, 0, len(elems))
	for _, raw := range elems {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		out = append(out, parseArrayElement(raw))
	}
	return out, nil
}

// splitArrayElements splits the comma-separated interior of an array
// literal while respecting single-quoted strings, so an element value
// containing a comma (e.g. 'a,b') does not get split in two.
func splitArrayElements(inner string) ([]string, error) {
	var elems []string
	var cur strings.Builder
	inQuote := false
	for i := 0; i < len(inner); i++ {
		c := inner[i]
		switch {
		case c == '\'' && (i == 0 || inner[i-1] != '\\'):
			inQuote = !inQuote
			cur.WriteByte(c)
		case c == ',' && !inQuote:
			elems = append(elems, cur.String())
			cur.Reset()
		default:
			cur.WriteByte(c)
		}
	}
	if inQuote {
		return nil, fmt.Errorf("unterminated quoted element in array literal")
	}
	if strings.TrimSpace(cur.String()) != "" || len(elems) > 0 {
		elems = append(elems, cur.String())
	}
	return elems, nil
}

func parseArrayElement(raw string) Value {
	if len(raw) >= 2 && raw[0] == '\'' && raw[len(raw)-1] == '\'' {
		return StringValue(strings.ReplaceAll(raw[1:len(raw)-1], "\\'", "'"))
	}
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return IntValue(n)
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return FloatValue(f)
	}
	return StringValue(raw)
}

// Equal reports whether two values are the same, used by array
// append/remove (§ update operations) to test membership.
func Equal(a, b Value) bool {
	if a.IsNull() || b.IsNull() {
		return a.IsNull() && b.IsNull()
	}
	if a.kind != b.kind {
		// Cross int/float comparisons still count as equal when numerically equal.
		af, aok := numeric(a)
		bf, bok := numeric(b)
		return aok && bok && af == bf
	}
	switch {
	case a.IsInt():
		return a.Int == b.Int
	case a.IsFloat():
		return a.Float == b.Float
	case a.IsString():
		return a.Str == b.Str
	case a.IsBool():
		return a.Bool == b.Bool
	case a.IsArray():
		if len(a.Array) != len(b.Array) {
			return false
		}
		for i := range a.Array {
			if !Equal(a.Array[i], b.Array[i]) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

func numeric(v Value) (float64, bool) {
	switch {
	case v.IsInt():
		return float64(v.Int), true
	case v.IsFloat():
		return v.Float, true
	default:
		return 0, false
	}
}
